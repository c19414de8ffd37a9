package tools

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/SaiNageswarS/opentargets-agent/agentboot"
	"github.com/SaiNageswarS/opentargets-agent/opentargets"
	"github.com/SaiNageswarS/opentargets-agent/schema"
	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOpenTargets struct {
	err error

	gotLimit   int
	gotByName  bool
	gotTargets []string
}

func (f *fakeOpenTargets) SearchDisease(ctx context.Context, name string) (opentargets.SearchHit, error) {
	if f.err != nil {
		return opentargets.SearchHit{}, f.err
	}
	if name != "asthma" {
		return opentargets.SearchHit{}, fmt.Errorf("disease %q: %w", name, opentargets.ErrNotFound)
	}
	return opentargets.SearchHit{ID: "MONDO_0004979", Name: "asthma", Entity: "disease"}, nil
}

func (f *fakeOpenTargets) DiseaseAssociations(ctx context.Context, diseaseID string, limit int) ([]opentargets.AssociatedTarget, error) {
	f.gotLimit = limit
	return []opentargets.AssociatedTarget{
		{Score: 0.85, Target: opentargets.TargetRef{ID: "ENSG00000113525", ApprovedSymbol: "IL5"}},
		{Score: 0.62, Target: opentargets.TargetRef{ID: "ENSG00000169194", ApprovedSymbol: "IL13"}},
	}, nil
}

func (f *fakeOpenTargets) TargetDrugs(ctx context.Context, targetIDs []string, limit int) (map[string][]string, error) {
	f.gotTargets = targetIDs
	f.gotLimit = limit
	return map[string][]string{
		"ENSG00000113525": {"MEPOLIZUMAB", "RESLIZUMAB"},
		"ENSG00000000000": {},
	}, nil
}

func (f *fakeOpenTargets) DrugsInfo(ctx context.Context, ids []string, searchByName bool) (map[string]opentargets.DrugInfo, error) {
	f.gotByName = searchByName
	phase := 4.0
	return map[string]opentargets.DrugInfo{
		"vemurafenib": {
			ID: "CHEMBL1229517", Name: "VEMURAFENIB", Description: "Small molecule drug", MaximumClinicalTrialPhase: &phase,
			MechanismsOfAction: []opentargets.MechanismOfAction{{
				MechanismOfAction: "Serine/threonine-protein kinase B-raf inhibitor",
				ActionType:        "INHIBITOR",
				TargetName:        "Serine/threonine-protein kinase B-raf",
				Targets:           []opentargets.TargetRef{{ID: "ENSG00000157764", ApprovedSymbol: "BRAF"}},
			}},
		},
		"unobtainium": {Error: `drug "unobtainium": not found`},
	}, nil
}

func (f *fakeOpenTargets) TargetTractability(ctx context.Context, ids []string) (map[string]opentargets.TargetReport, error) {
	return map[string]opentargets.TargetReport{
		"ENSG00000157764": {ID: "ENSG00000157764", ApprovedSymbol: "BRAF", Tractability: []opentargets.Tractability{
			{Modality: "SM", Label: "Approved Drug", Value: true},
			{Modality: "AB", Label: "GO CC high conf", Value: false},
		}},
		"ENSG_bad": {ID: "ENSG_bad", Errors: []opentargets.GraphQLError{{Message: "invalid id"}}},
	}, nil
}

func (f *fakeOpenTargets) TargetChemicalProbes(ctx context.Context, ids []string) (map[string]opentargets.TargetReport, error) {
	score := 0.5
	return map[string]opentargets.TargetReport{
		"ENSG00000157764": {ID: "ENSG00000157764", ChemicalProbes: []opentargets.ChemicalProbe{
			{ID: "PLX4720", IsHighQuality: true, ProbeMinerScore: &score, MechanismOfAction: []string{"inhibitor"}},
		}},
	}, nil
}

func (f *fakeOpenTargets) TargetPrioritisation(ctx context.Context, ids []string) (map[string]opentargets.TargetReport, error) {
	return map[string]opentargets.TargetReport{
		"ENSG00000157764": {ID: "ENSG00000157764", Prioritisation: &opentargets.Prioritisation{Items: []opentargets.PrioritisationItem{
			{Key: "isCancerDriverGene", Value: "1"},
		}}},
		"ENSG00000000001": {ID: "ENSG00000000001"},
	}, nil
}

func (f *fakeOpenTargets) TargetSafety(ctx context.Context, ids []string) (map[string]opentargets.TargetReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return map[string]opentargets.TargetReport{
		"ENSG00000157764": {ID: "ENSG00000157764", SafetyLiabilities: []opentargets.SafetyLiability{{
			Event:      "cardiac arrhythmia",
			EventID:    "EFO_0004269",
			Biosamples: []opentargets.Biosample{{TissueLabel: "heart"}},
			Effects:    []opentargets.SafetyEffect{{Direction: "Inhibition/Decrease/Downregulation", Dosing: "general"}},
			Datasource: "Lynch et al. (2017)",
			Literature: "28216264",
		}}},
	}, nil
}

func runTool(t *testing.T, client OpenTargets, name string, params api.ToolCallFunctionArguments) []*schema.ToolResultChunk {
	t.Helper()

	tool, ok := NewRegistry(OpenTargetsTools(client)...)[name]
	require.True(t, ok, "tool %s not registered", name)

	var chunks []*schema.ToolResultChunk
	for c := range tool.Handler(context.Background(), params) {
		chunks = append(chunks, c)
	}
	return chunks
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(OpenTargetsTools(&fakeOpenTargets{})...)
	assert.Len(t, r, 8)

	resolved, err := r.Resolve([]string{GetTargetSafetyInformation, SearchDiseaseByName})
	require.NoError(t, err)
	assert.Equal(t, GetTargetSafetyInformation, resolved[0].Function.Name)
	assert.Equal(t, SearchDiseaseByName, resolved[1].Function.Name)

	_, err = r.Resolve([]string{"get_weather"})
	assert.ErrorContains(t, err, "get_weather")
}

func TestToolSchemas(t *testing.T) {
	tests := []struct {
		tool     string
		required []string
		optional []string
	}{
		{SearchDiseaseByName, []string{"disease_name"}, nil},
		{GetDiseaseTargets, []string{"disease_id"}, []string{"limit", "return_ensembl_ids"}},
		{GetTargetDrugs, []string{"target_ids"}, []string{"limit"}},
		{GetDrugsInfo, []string{"drug_ids"}, []string{"search_by_name"}},
		{GetTargetTractability, []string{"ensembl_ids"}, nil},
		{GetTargetChemicalProbes, []string{"ensembl_ids"}, nil},
		{GetTargetPrioritization, []string{"ensembl_ids"}, nil},
		{GetTargetSafetyInformation, []string{"ensembl_ids"}, nil},
	}

	r := NewRegistry(OpenTargetsTools(&fakeOpenTargets{})...)
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			fn := r[tt.tool].Function
			assert.Equal(t, tt.required, fn.Parameters.Required)
			assert.Len(t, fn.Parameters.Properties, len(tt.required)+len(tt.optional))
			for _, p := range tt.optional {
				assert.Contains(t, fn.Parameters.Properties, p)
			}
			assert.NotEmpty(t, fn.Description)
		})
	}
}

func TestSearchDiseaseByName(t *testing.T) {
	chunks := runTool(t, &fakeOpenTargets{}, SearchDiseaseByName, api.ToolCallFunctionArguments{"disease_name": "asthma"})
	require.Len(t, chunks, 1)
	assert.Equal(t, "MONDO_0004979", chunks[0].Metadata["disease_id"])
	assert.Equal(t, []string{"asthma: MONDO_0004979 (asthma)"}, chunks[0].Sentences)
	assert.Equal(t, attribution, chunks[0].Attribution)

	chunks = runTool(t, &fakeOpenTargets{}, SearchDiseaseByName, api.ToolCallFunctionArguments{"disease_name": "zzz"})
	require.Len(t, chunks, 1)
	assert.Empty(t, chunks[0].Error)
	assert.Contains(t, chunks[0].Sentences[0], "No disease matching")

	chunks = runTool(t, &fakeOpenTargets{}, SearchDiseaseByName, api.ToolCallFunctionArguments{})
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Error, "disease_name")
}

func TestGetDiseaseTargets(t *testing.T) {
	client := &fakeOpenTargets{}

	chunks := runTool(t, client, GetDiseaseTargets, api.ToolCallFunctionArguments{"disease_id": "MONDO_0004979", "limit": 2.0})
	require.Len(t, chunks, 1)
	assert.Equal(t, 2, client.gotLimit)
	assert.Equal(t, "ENSG00000113525,ENSG00000169194", chunks[0].Metadata["targets"])
	assert.Equal(t, "1. ENSG00000113525 (IL5), association score 0.850", chunks[0].Sentences[0])

	chunks = runTool(t, client, GetDiseaseTargets, api.ToolCallFunctionArguments{"disease_id": "MONDO_0004979", "return_ensembl_ids": false})
	require.Len(t, chunks, 1)
	assert.Equal(t, opentargets.DefaultLimit, client.gotLimit)
	assert.Equal(t, "IL5,IL13", chunks[0].Metadata["targets"])

	chunks = runTool(t, client, GetDiseaseTargets, api.ToolCallFunctionArguments{"disease_id": "MONDO_0004979", "limit": "many"})
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Error, "limit")
}

func TestGetTargetDrugs(t *testing.T) {
	client := &fakeOpenTargets{}

	chunks := runTool(t, client, GetTargetDrugs, api.ToolCallFunctionArguments{"target_ids": []any{"ENSG00000113525", "ENSG00000000000"}})
	require.Len(t, chunks, 2)
	assert.Equal(t, []string{"ENSG00000113525", "ENSG00000000000"}, client.gotTargets)
	assert.Equal(t, []string{"MEPOLIZUMAB", "RESLIZUMAB"}, chunks[0].Sentences)
	assert.Equal(t, []string{"No known drugs."}, chunks[1].Sentences)
}

func TestGetDrugsInfo(t *testing.T) {
	client := &fakeOpenTargets{}

	chunks := runTool(t, client, GetDrugsInfo, api.ToolCallFunctionArguments{"drug_ids": []any{"vemurafenib", "unobtainium"}})
	require.Len(t, chunks, 2)
	assert.True(t, client.gotByName)

	assert.Equal(t, "CHEMBL1229517", chunks[0].Metadata["chembl_id"])
	assert.Equal(t, "4", chunks[0].Metadata["max_phase"])
	assert.Contains(t, chunks[0].Sentences, "Mechanism: Serine/threonine-protein kinase B-raf inhibitor; action type INHIBITOR; target Serine/threonine-protein kinase B-raf [BRAF/ENSG00000157764]")
	assert.Contains(t, chunks[1].Error, "not found")

	runTool(t, client, GetDrugsInfo, api.ToolCallFunctionArguments{"drug_ids": []any{"CHEMBL1229517"}, "search_by_name": false})
	assert.False(t, client.gotByName)
}

func TestSafetyTools(t *testing.T) {
	client := &fakeOpenTargets{}

	chunks := runTool(t, client, GetTargetTractability, api.ToolCallFunctionArguments{"ensembl_ids": []any{"ENSG00000157764", "ENSG_bad", "ENSG_absent"}})
	require.Len(t, chunks, 2)
	assert.Equal(t, "Tractability for BRAF (ENSG00000157764)", chunks[0].Title)
	assert.Equal(t, []string{"SM / Approved Drug: yes", "AB / GO CC high conf: no"}, chunks[0].Sentences)
	assert.Equal(t, "invalid id", chunks[1].Error)

	chunks = runTool(t, client, GetTargetChemicalProbes, api.ToolCallFunctionArguments{"ensembl_ids": []any{"ENSG00000157764"}})
	require.Len(t, chunks, 1)
	assert.Equal(t, "PLX4720: high quality; ProbeMiner 0.50; Probes&Drugs n/a; in cells n/a; in organisms n/a; mechanism inhibitor", chunks[0].Sentences[0])

	chunks = runTool(t, client, GetTargetPrioritization, api.ToolCallFunctionArguments{"ensembl_ids": "ENSG00000157764, ENSG00000000001"})
	require.Len(t, chunks, 2)
	assert.Equal(t, []string{"isCancerDriverGene: 1"}, chunks[0].Sentences)
	assert.Equal(t, []string{"No data."}, chunks[1].Sentences)

	chunks = runTool(t, client, GetTargetSafetyInformation, api.ToolCallFunctionArguments{"ensembl_ids": []any{"ENSG00000157764"}})
	require.Len(t, chunks, 1)
	assert.Equal(t, "cardiac arrhythmia (EFO_0004269); biosamples: heart; effects: Inhibition/Decrease/Downregulation general; source: Lynch et al. (2017); PMID 28216264", chunks[0].Sentences[0])
}

func TestRepeatedIDsAreFetchedOnce(t *testing.T) {
	client := &fakeOpenTargets{}

	chunks := runTool(t, client, GetTargetDrugs, api.ToolCallFunctionArguments{"target_ids": []any{"ENSG00000113525", "ENSG00000113525"}})
	require.Len(t, chunks, 1)
	assert.Equal(t, []string{"ENSG00000113525"}, client.gotTargets)

	chunks = runTool(t, client, GetDrugsInfo, api.ToolCallFunctionArguments{"drug_ids": "vemurafenib, vemurafenib"})
	assert.Len(t, chunks, 1)

	chunks = runTool(t, client, GetTargetTractability, api.ToolCallFunctionArguments{"ensembl_ids": []any{"ENSG00000157764", " ENSG00000157764"}})
	assert.Len(t, chunks, 1)
}

func TestTransportErrorBecomesChunk(t *testing.T) {
	client := &fakeOpenTargets{err: errors.New("open targets target_safety: status 502")}

	chunks := runTool(t, client, GetTargetSafetyInformation, api.ToolCallFunctionArguments{"ensembl_ids": []any{"ENSG00000157764"}})
	require.Len(t, chunks, 1)
	assert.Equal(t, GetTargetSafetyInformation, chunks[0].Title)
	assert.Contains(t, chunks[0].Error, "502")
}

func TestToolsRenderThroughAgent(t *testing.T) {
	tool := NewRegistry(OpenTargetsTools(&fakeOpenTargets{})...)[SearchDiseaseByName]
	agent := agentboot.NewAgentBuilder().AddTool(tool).Build()

	out, err := agent.RunTool(context.Background(), &agentboot.NoOpProgressReporter{}, "asthma id?",
		&api.ToolCall{Function: api.ToolCallFunction{Name: SearchDiseaseByName, Arguments: api.ToolCallFunctionArguments{"disease_name": "asthma"}}})

	require.NoError(t, err)
	assert.Contains(t, out, "### Disease search: asthma")
	assert.Contains(t, out, "disease_id=MONDO_0004979")
	assert.Contains(t, out, "Source: "+attribution)
}
