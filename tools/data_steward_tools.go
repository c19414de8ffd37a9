package tools

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/SaiNageswarS/opentargets-agent/agentboot"
	"github.com/SaiNageswarS/opentargets-agent/opentargets"
	"github.com/SaiNageswarS/opentargets-agent/schema"
	"github.com/ollama/ollama/api"
)

const (
	SearchDiseaseByName = "search_disease_by_name"
	GetDiseaseTargets   = "get_disease_targets"
	GetTargetDrugs      = "get_target_drugs"
	GetDrugsInfo        = "get_drugs_info"
)

func DataStewardTools(client OpenTargets) []agentboot.MCPTool {
	return []agentboot.MCPTool{
		searchDiseaseTool(client),
		diseaseTargetsTool(client),
		targetDrugsTool(client),
		drugsInfoTool(client),
	}
}

func searchDiseaseTool(client OpenTargets) agentboot.MCPTool {
	return agentboot.NewMCPToolBuilder(SearchDiseaseByName,
		"Search for a disease by name (e.g. 'asthma', 'diabetes') and return the EFO/MONDO id of the best match (e.g. 'MONDO_0004979'). Use this when you have a disease name but need its id.").
		StringParam("disease_name", "Disease name to search for.", true).
		WithHandler(handler(SearchDiseaseByName, func(ctx context.Context, params api.ToolCallFunctionArguments, emit func(*schema.ToolResultChunk)) error {
			name, err := agentboot.ArgString(params, "disease_name")
			if err != nil {
				return err
			}

			hit, err := client.SearchDisease(ctx, name)
			if errors.Is(err, opentargets.ErrNotFound) {
				emit(agentboot.NewToolResultChunk().
					Title("Disease search: " + name).
					Sentences(fmt.Sprintf("No disease matching %q was found.", name)).
					Build())
				return nil
			}
			if err != nil {
				return err
			}

			emit(agentboot.NewToolResultChunk().
				Title("Disease search: "+name).
				Sentences(fmt.Sprintf("%s: %s (%s)", name, hit.ID, hit.Name)).
				MetadataKV("disease_id", hit.ID).
				Build())
			return nil
		})).
		Build()
}

func diseaseTargetsTool(client OpenTargets) agentboot.MCPTool {
	return agentboot.NewMCPToolBuilder(GetDiseaseTargets,
		"List targets associated with a disease, highest association score first.").
		StringParam("disease_id", "Disease id, e.g. 'MONDO_0004979'.", true).
		IntParam("limit", "Maximum number of targets to return (default 10).", false).
		BoolParam("return_ensembl_ids", "Return Ensembl ids when true (default), gene symbols when false.", false).
		WithHandler(handler(GetDiseaseTargets, func(ctx context.Context, params api.ToolCallFunctionArguments, emit func(*schema.ToolResultChunk)) error {
			diseaseID, err := agentboot.ArgString(params, "disease_id")
			if err != nil {
				return err
			}
			limit, err := agentboot.ArgInt(params, "limit", opentargets.DefaultLimit)
			if err != nil {
				return err
			}
			ensembl, err := agentboot.ArgBool(params, "return_ensembl_ids", true)
			if err != nil {
				return err
			}

			rows, err := client.DiseaseAssociations(ctx, diseaseID, limit)
			if err != nil {
				return err
			}

			chunk := agentboot.NewToolResultChunk().
				Title("Targets associated with "+diseaseID).
				MetadataKV("disease_id", diseaseID).
				MetadataKV("count", strconv.Itoa(len(rows)))
			if len(rows) == 0 {
				chunk.Sentences("No associated targets found.")
			}

			ids := make([]string, len(rows))
			for i, r := range rows {
				primary, other := r.Target.ID, r.Target.ApprovedSymbol
				if !ensembl {
					primary, other = other, primary
				}
				ids[i] = primary
				chunk.Sentences(fmt.Sprintf("%d. %s (%s), association score %.3f", i+1, primary, other, r.Score))
			}
			if len(ids) > 0 {
				chunk.MetadataKV("targets", strings.Join(ids, ","))
			}

			emit(chunk.Build())
			return nil
		})).
		Build()
}

func targetDrugsTool(client OpenTargets) agentboot.MCPTool {
	return agentboot.NewMCPToolBuilder(GetTargetDrugs,
		"Get known drugs for one or more targets, as drug names per Ensembl id.").
		StringSliceParam("target_ids", "Ensembl ids, e.g. ['ENSG00000157764'].", true).
		IntParam("limit", "Maximum number of drugs per target (default 10).", false).
		WithHandler(handler(GetTargetDrugs, func(ctx context.Context, params api.ToolCallFunctionArguments, emit func(*schema.ToolResultChunk)) error {
			ids, err := idsArg(params, "target_ids")
			if err != nil {
				return err
			}
			limit, err := agentboot.ArgInt(params, "limit", opentargets.DefaultLimit)
			if err != nil {
				return err
			}

			drugs, err := client.TargetDrugs(ctx, ids, limit)
			if err != nil {
				return err
			}

			for _, id := range ids {
				names, ok := drugs[id]
				if !ok {
					continue
				}
				chunk := agentboot.NewToolResultChunk().
					Title("Known drugs for "+id).
					MetadataKV("target_id", id)
				if len(names) == 0 {
					chunk.Sentences("No known drugs.")
				} else {
					chunk.Sentences(names...)
				}
				emit(chunk.Build())
			}
			return nil
		})).
		Build()
}

func drugsInfoTool(client OpenTargets) agentboot.MCPTool {
	return agentboot.NewMCPToolBuilder(GetDrugsInfo,
		"Get drug details: ChEMBL id, name, description, maximum clinical trial phase and mechanisms of action with their targets.").
		StringSliceParam("drug_ids", "Drug names (when search_by_name is true) or ChEMBL ids.", true).
		BoolParam("search_by_name", "Treat drug_ids as names (default true) or as ChEMBL ids.", false).
		WithHandler(handler(GetDrugsInfo, func(ctx context.Context, params api.ToolCallFunctionArguments, emit func(*schema.ToolResultChunk)) error {
			ids, err := idsArg(params, "drug_ids")
			if err != nil {
				return err
			}
			byName, err := agentboot.ArgBool(params, "search_by_name", true)
			if err != nil {
				return err
			}

			infos, err := client.DrugsInfo(ctx, ids, byName)
			if err != nil {
				return err
			}

			for _, id := range ids {
				info, ok := infos[id]
				if !ok {
					continue
				}
				emit(drugChunk(id, info))
			}
			return nil
		})).
		Build()
}

func drugChunk(key string, info opentargets.DrugInfo) *schema.ToolResultChunk {
	chunk := agentboot.NewToolResultChunk().Title("Drug " + key)
	if info.Error != "" {
		return chunk.Error(info.Error).Build()
	}

	chunk.MetadataKV("chembl_id", info.ID).
		Sentences(fmt.Sprintf("%s (%s)", info.Name, info.ID))
	if info.MaximumClinicalTrialPhase != nil {
		chunk.MetadataKV("max_phase", strconv.FormatFloat(*info.MaximumClinicalTrialPhase, 'f', -1, 64)).
			Sentences(fmt.Sprintf("Maximum clinical trial phase: %s", strconv.FormatFloat(*info.MaximumClinicalTrialPhase, 'f', -1, 64)))
	}
	if info.Description != "" {
		chunk.Sentences(info.Description)
	}
	for _, moa := range info.MechanismsOfAction {
		targets := make([]string, len(moa.Targets))
		for i, t := range moa.Targets {
			targets[i] = fmt.Sprintf("%s/%s", t.ApprovedSymbol, t.ID)
		}
		chunk.Sentences(fmt.Sprintf("Mechanism: %s; action type %s; target %s [%s]",
			moa.MechanismOfAction, moa.ActionType, moa.TargetName, strings.Join(targets, ", ")))
	}
	return chunk.Build()
}
