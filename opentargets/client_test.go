package opentargets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SaiNageswarS/opentargets-agent/cache"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var operationName = regexp.MustCompile(`query (\w+)\(`)

// fakePlatform answers GraphQL requests from canned responses keyed by
// operation name and a variable value.
type fakePlatform struct {
	mu        sync.Mutex
	responses map[string]string
	requests  atomic.Int32
	status    int
}

func (f *fakePlatform) handle(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)
	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte("upstream down"))
		return
	}

	var req graphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	op := operationName.FindStringSubmatch(req.Query)[1]
	key := op
	for _, v := range []string{"queryString", "efoId", "ensemblId", "chemblId"} {
		if s, ok := req.Variables[v].(string); ok {
			key = op + ":" + s
		}
	}

	f.mu.Lock()
	body, ok := f.responses[key]
	f.mu.Unlock()
	if !ok {
		body = `{"data": {"target": null, "drug": null, "disease": null, "search": {"hits": []}}}`
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func newFakeClient(t *testing.T, responses map[string]string, opts ...Option) (*Client, *fakePlatform) {
	t.Helper()

	f := &fakePlatform{responses: responses}
	server := httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(server.Close)

	opts = append([]Option{WithURL(server.URL), WithRateLimit(0, 0)}, opts...)
	return NewClient(opts...), f
}

func TestSearchDisease(t *testing.T) {
	client, _ := newFakeClient(t, map[string]string{
		"Search:asthma": `{"data": {"search": {"hits": [
			{"id": "MONDO_0004979", "name": "asthma", "entity": "disease", "score": 12.5},
			{"id": "EFO_0000270", "name": "asthma attack", "entity": "disease", "score": 3.1}
		]}}}`,
	})

	hit, err := client.SearchDisease(context.Background(), "asthma")
	require.NoError(t, err)
	assert.Equal(t, "MONDO_0004979", hit.ID)

	_, err = client.SearchDisease(context.Background(), "notadisease")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = client.SearchDisease(context.Background(), "  ")
	assert.Error(t, err)
}

func TestDiseaseTargets(t *testing.T) {
	client, _ := newFakeClient(t, map[string]string{
		"DiseaseTargets:MONDO_0004979": `{"data": {"disease": {"id": "MONDO_0004979", "name": "asthma", "associatedTargets": {"count": 3, "rows": [
			{"score": 0.71, "target": {"id": "ENSG00000113302", "approvedSymbol": "IL12B"}},
			{"score": 0.85, "target": {"id": "ENSG00000113525", "approvedSymbol": "IL5"}},
			{"score": 0.62, "target": {"id": "ENSG00000169194", "approvedSymbol": "IL13"}}
		]}}}}`,
	})

	ids, err := client.DiseaseTargets(context.Background(), "MONDO_0004979", 2, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"ENSG00000113525", "ENSG00000113302"}, ids)

	symbols, err := client.DiseaseTargets(context.Background(), "MONDO_0004979", 0, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"IL5", "IL12B", "IL13"}, symbols)

	_, err = client.DiseaseTargets(context.Background(), "EFO_missing", 5, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTargetDrugs(t *testing.T) {
	client, _ := newFakeClient(t, map[string]string{
		"TargetDrugs:ENSG00000157764": `{"data": {"target": {"id": "ENSG00000157764", "approvedSymbol": "BRAF", "knownDrugs": {"count": 4, "rows": [
			{"drugId": "CHEMBL1229517", "prefName": "VEMURAFENIB", "phase": 4},
			{"drugId": "CHEMBL1229517", "prefName": "VEMURAFENIB", "phase": 4},
			{"drugId": "CHEMBL2028663", "prefName": "DABRAFENIB", "phase": 4},
			{"drugId": "CHEMBL3301612", "prefName": "ENCORAFENIB", "phase": 4}
		]}}}}`,
	})

	drugs, err := client.TargetDrugs(context.Background(), []string{"ENSG00000157764", "ENSG_unknown", "ENSG00000157764"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"VEMURAFENIB", "DABRAFENIB"}, drugs["ENSG00000157764"])
	assert.Empty(t, drugs["ENSG_unknown"])
	assert.Len(t, drugs, 2)

	empty, err := client.TargetDrugs(context.Background(), nil, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDrugsInfo(t *testing.T) {
	client, _ := newFakeClient(t, map[string]string{
		"Search:vemurafenib": `{"data": {"search": {"hits": [{"id": "CHEMBL1229517", "name": "VEMURAFENIB", "entity": "drug", "score": 40}]}}}`,
		"DrugInfo:CHEMBL1229517": `{"data": {"drug": {
			"id": "CHEMBL1229517", "name": "VEMURAFENIB", "description": "Small molecule drug",
			"maximumClinicalTrialPhase": 4,
			"mechanismsOfAction": {"rows": [{"mechanismOfAction": "Serine/threonine-protein kinase B-raf inhibitor", "actionType": "INHIBITOR", "targetName": "Serine/threonine-protein kinase B-raf", "targets": [{"id": "ENSG00000157764", "approvedSymbol": "BRAF"}]}]}
		}}}`,
	})

	byName, err := client.DrugsInfo(context.Background(), []string{"vemurafenib", "unobtainium"}, true)
	require.NoError(t, err)

	v := byName["vemurafenib"]
	assert.Equal(t, "CHEMBL1229517", v.ID)
	require.NotNil(t, v.MaximumClinicalTrialPhase)
	assert.Equal(t, 4.0, *v.MaximumClinicalTrialPhase)
	require.Len(t, v.MechanismsOfAction, 1)
	assert.Equal(t, "INHIBITOR", v.MechanismsOfAction[0].ActionType)
	assert.Equal(t, "BRAF", v.MechanismsOfAction[0].Targets[0].ApprovedSymbol)

	assert.Contains(t, byName["unobtainium"].Error, "not found")

	byID, err := client.DrugsInfo(context.Background(), []string{"CHEMBL1229517"}, false)
	require.NoError(t, err)
	assert.Equal(t, "VEMURAFENIB", byID["CHEMBL1229517"].Name)
}

func TestTargetReports(t *testing.T) {
	client, _ := newFakeClient(t, map[string]string{
		"TargetTractability:ENSG00000141510": `{"data": {"target": {"id": "ENSG00000141510", "approvedSymbol": "TP53", "tractability": [
			{"modality": "SM", "value": false, "label": "Approved Drug"},
			{"modality": "AB", "value": true, "label": "GO CC high conf"}
		]}}}`,
		"TargetTractability:ENSG_bad": `{"data": {"target": null}, "errors": [{"message": "invalid id"}]}`,
		"TargetSafety:ENSG00000141510": `{"data": {"target": {"id": "ENSG00000141510", "safetyLiabilities": [
			{"event": "cardiac arrhythmia", "eventId": "EFO_0004269", "biosamples": [{"tissueLabel": "heart", "tissueId": "UBERON_0000948"}], "effects": [{"direction": "Activation/Increase/Upregulation", "dosing": "acute"}], "studies": [{"name": "study", "type": "in vivo", "description": "mouse"}], "datasource": "ToxCast", "literature": "12345", "url": "https://example.org"}
		]}}}`,
		"TargetPrioritisation:ENSG00000141510": `{"data": {"target": {"id": "ENSG00000141510", "prioritisation": {"items": [{"key": "isCancerDriverGene", "value": "-1"}]}}}}`,
		"TargetChemicalProbes:ENSG00000141510": `{"data": {"target": {"id": "ENSG00000141510", "chemicalProbes": [{"id": "PK11000", "isHighQuality": true, "probeMinerScore": 0.5, "urls": [{"niceName": "Probes&Drugs", "url": "https://x"}]}]}}}`,
	})
	ctx := context.Background()

	tract, err := client.TargetTractability(ctx, []string{"ENSG00000141510", "ENSG_bad", "ENSG_missing"})
	require.NoError(t, err)
	require.Len(t, tract, 3)
	assert.Equal(t, "TP53", tract["ENSG00000141510"].ApprovedSymbol)
	assert.Len(t, tract["ENSG00000141510"].Tractability, 2)
	assert.Equal(t, "invalid id", tract["ENSG_bad"].Errors[0].Message)
	assert.Contains(t, tract["ENSG_missing"].Errors[0].Message, "no target")

	safety, err := client.TargetSafety(ctx, []string{"ENSG00000141510"})
	require.NoError(t, err)
	liab := safety["ENSG00000141510"].SafetyLiabilities
	require.Len(t, liab, 1)
	assert.Equal(t, "heart", liab[0].Biosamples[0].TissueLabel)
	assert.Equal(t, "12345", liab[0].Literature)

	prio, err := client.TargetPrioritisation(ctx, []string{"ENSG00000141510"})
	require.NoError(t, err)
	assert.Equal(t, "isCancerDriverGene", prio["ENSG00000141510"].Prioritisation.Items[0].Key)

	probes, err := client.TargetChemicalProbes(ctx, []string{"ENSG00000141510"})
	require.NoError(t, err)
	require.Len(t, probes["ENSG00000141510"].ChemicalProbes, 1)
	assert.True(t, probes["ENSG00000141510"].ChemicalProbes[0].IsHighQuality)
}

func TestHTTPErrorFailsCall(t *testing.T) {
	client, f := newFakeClient(t, nil)
	f.status = http.StatusBadGateway

	_, err := client.TargetSafety(context.Background(), []string{"ENSG00000141510"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")

	var qe *QueryError
	assert.False(t, errors.As(err, &qe))
}

func TestResponsesAreCached(t *testing.T) {
	mr := miniredis.RunT(t)
	rc, err := cache.NewRedisCache(context.Background(), cache.NewRedisClient(cache.RedisConfig{Addr: mr.Addr()}), "")
	require.NoError(t, err)

	client, f := newFakeClient(t, map[string]string{
		"Search:asthma": `{"data": {"search": {"hits": [{"id": "MONDO_0004979", "name": "asthma", "entity": "disease", "score": 1}]}}}`,
	}, WithCache(rc, time.Minute))

	for i := 0; i < 3; i++ {
		hit, err := client.SearchDisease(context.Background(), "asthma")
		require.NoError(t, err)
		assert.Equal(t, "MONDO_0004979", hit.ID)
	}
	assert.Equal(t, int32(1), f.requests.Load())
}

func TestGraphQLErrorsAreNotCached(t *testing.T) {
	mr := miniredis.RunT(t)
	rc, err := cache.NewRedisCache(context.Background(), cache.NewRedisClient(cache.RedisConfig{Addr: mr.Addr()}), "")
	require.NoError(t, err)

	client, f := newFakeClient(t, map[string]string{
		"TargetSafety:ENSG_bad": `{"data": null, "errors": [{"message": "boom"}]}`,
	}, WithCache(rc, time.Minute))

	for i := 0; i < 2; i++ {
		_, err := client.TargetSafety(context.Background(), []string{"ENSG_bad"})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), f.requests.Load())
}

func TestQueryErrorMessage(t *testing.T) {
	err := &QueryError{Operation: "target_safety", Errors: []GraphQLError{{Message: "a"}, {Message: "b"}}}
	assert.Equal(t, "open targets target_safety: a; b", err.Error())
}

func TestRateLimitSpacesRequests(t *testing.T) {
	client, f := newFakeClient(t, nil, WithRateLimit(10, 1))

	start := time.Now()
	for _, name := range []string{"asthma", "psoriasis", "melanoma"} {
		_, err := client.SearchDisease(context.Background(), name)
		assert.ErrorIs(t, err, ErrNotFound)
	}

	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
	assert.Equal(t, int32(3), f.requests.Load())
}

func TestRateLimitStopsOnCancelledContext(t *testing.T) {
	client, f := newFakeClient(t, nil, WithRateLimit(0.01, 1))

	_, err := client.SearchDisease(context.Background(), "asthma")
	require.ErrorIs(t, err, ErrNotFound)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.SearchDisease(ctx, "psoriasis")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), f.requests.Load())
}
