package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/SaiNageswarS/opentargets-agent/agentboot"
	"github.com/SaiNageswarS/opentargets-agent/opentargets"
	"github.com/SaiNageswarS/opentargets-agent/schema"
	"github.com/ollama/ollama/api"
)

const (
	GetTargetTractability      = "get_target_tractability"
	GetTargetChemicalProbes    = "get_target_chemical_probes"
	GetTargetPrioritization    = "get_target_prioritization"
	GetTargetSafetyInformation = "get_target_safety_information"
)

type reportFunc func(ctx context.Context, ensemblIDs []string) (map[string]opentargets.TargetReport, error)

func SafetyTools(client OpenTargets) []agentboot.MCPTool {
	return []agentboot.MCPTool{
		targetReportTool(GetTargetTractability,
			"Get small molecule, antibody, PROTAC and other modality tractability assessments for targets.",
			"Tractability", client.TargetTractability, tractabilityLines),
		targetReportTool(GetTargetChemicalProbes,
			"Get chemical probes for targets with quality flags and probe scores.",
			"Chemical probes", client.TargetChemicalProbes, chemicalProbeLines),
		targetReportTool(GetTargetPrioritization,
			"Get target prioritisation factors (precedence, tractability, doability, safety) for targets.",
			"Prioritisation", client.TargetPrioritisation, prioritisationLines),
		targetReportTool(GetTargetSafetyInformation,
			"Get known safety liabilities for targets: adverse events, affected tissues, effects and supporting studies.",
			"Safety liabilities", client.TargetSafety, safetyLines),
	}
}

func targetReportTool(name, description, section string, fetch reportFunc, lines func(opentargets.TargetReport) []string) agentboot.MCPTool {
	return agentboot.NewMCPToolBuilder(name, description).
		StringSliceParam("ensembl_ids", "Ensembl gene ids, e.g. ['ENSG00000157764'].", true).
		WithHandler(handler(name, func(ctx context.Context, params api.ToolCallFunctionArguments, emit func(*schema.ToolResultChunk)) error {
			ids, err := idsArg(params, "ensembl_ids")
			if err != nil {
				return err
			}

			reports, err := fetch(ctx, ids)
			if err != nil {
				return err
			}

			for _, id := range ids {
				report, ok := reports[id]
				if !ok {
					continue
				}

				title := section + " for " + id
				if report.ApprovedSymbol != "" {
					title = fmt.Sprintf("%s for %s (%s)", section, report.ApprovedSymbol, id)
				}
				chunk := agentboot.NewToolResultChunk().Title(title).MetadataKV("ensembl_id", id)

				if len(report.Errors) > 0 {
					emit(chunk.Error(joinErrors(report.Errors)).Build())
					continue
				}

				body := lines(report)
				if len(body) == 0 {
					body = []string{"No data."}
				}
				emit(chunk.Sentences(body...).Build())
			}
			return nil
		})).
		Build()
}

func tractabilityLines(r opentargets.TargetReport) []string {
	out := make([]string, 0, len(r.Tractability))
	for _, t := range r.Tractability {
		answer := "no"
		if t.Value {
			answer = "yes"
		}
		out = append(out, fmt.Sprintf("%s / %s: %s", t.Modality, t.Label, answer))
	}
	return out
}

func chemicalProbeLines(r opentargets.TargetReport) []string {
	out := make([]string, 0, len(r.ChemicalProbes))
	for _, p := range r.ChemicalProbes {
		quality := "not high quality"
		if p.IsHighQuality {
			quality = "high quality"
		}
		line := fmt.Sprintf("%s: %s; ProbeMiner %s; Probes&Drugs %s; in cells %s; in organisms %s",
			p.ID, quality, formatScore(p.ProbeMinerScore), formatScore(p.ProbesDrugsScore),
			formatScore(p.ScoreInCells), formatScore(p.ScoreInOrganisms))
		if len(p.MechanismOfAction) > 0 {
			line += "; mechanism " + strings.Join(p.MechanismOfAction, ", ")
		}
		if p.Control != "" {
			line += "; control " + p.Control
		}
		out = append(out, line)
	}
	return out
}

func prioritisationLines(r opentargets.TargetReport) []string {
	if r.Prioritisation == nil {
		return nil
	}
	out := make([]string, 0, len(r.Prioritisation.Items))
	for _, item := range r.Prioritisation.Items {
		out = append(out, item.Key+": "+item.Value)
	}
	return out
}

func safetyLines(r opentargets.TargetReport) []string {
	out := make([]string, 0, len(r.SafetyLiabilities))
	for _, l := range r.SafetyLiabilities {
		parts := []string{l.Event}
		if l.EventID != "" {
			parts[0] += " (" + l.EventID + ")"
		}

		var tissues []string
		for _, b := range l.Biosamples {
			if label := firstNonEmpty(b.TissueLabel, b.CellLabel); label != "" {
				tissues = append(tissues, label)
			}
		}
		if len(tissues) > 0 {
			parts = append(parts, "biosamples: "+strings.Join(tissues, ", "))
		}

		var effects []string
		for _, e := range l.Effects {
			effects = append(effects, strings.TrimSpace(e.Direction+" "+e.Dosing))
		}
		if len(effects) > 0 {
			parts = append(parts, "effects: "+strings.Join(effects, ", "))
		}

		if l.Datasource != "" {
			parts = append(parts, "source: "+l.Datasource)
		}
		if l.Literature != "" {
			parts = append(parts, "PMID "+l.Literature)
		}
		out = append(out, strings.Join(parts, "; "))
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
