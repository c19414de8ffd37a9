package opentargets

import (
	"context"
	"errors"
	"fmt"

	"github.com/SaiNageswarS/go-collection-boot/async"
)

// TargetTractability returns antibody, small molecule and other modality
// tractability assessments per Ensembl id.
func (c *Client) TargetTractability(ctx context.Context, ensemblIDs []string) (map[string]TargetReport, error) {
	return c.targetReports(ctx, "target_tractability", tractabilityQuery, ensemblIDs)
}

// TargetChemicalProbes returns chemical probes with quality scores per Ensembl id.
func (c *Client) TargetChemicalProbes(ctx context.Context, ensemblIDs []string) (map[string]TargetReport, error) {
	return c.targetReports(ctx, "target_chemical_probes", chemicalProbesQuery, ensemblIDs)
}

// TargetPrioritisation returns the precedence, tractability, doability and
// safety prioritisation factors per Ensembl id.
func (c *Client) TargetPrioritisation(ctx context.Context, ensemblIDs []string) (map[string]TargetReport, error) {
	return c.targetReports(ctx, "target_prioritisation", prioritisationQuery, ensemblIDs)
}

// TargetSafety returns known safety liabilities per Ensembl id.
func (c *Client) TargetSafety(ctx context.Context, ensemblIDs []string) (map[string]TargetReport, error) {
	return c.targetReports(ctx, "target_safety", safetyQuery, ensemblIDs)
}

// targetReports runs one target-level query per id concurrently. GraphQL
// errors and unknown ids are recorded on that id's report.
func (c *Client) targetReports(ctx context.Context, operation, query string, ids []string) (map[string]TargetReport, error) {
	tasks := make([]<-chan async.Result[TargetReport], 0, len(ids))
	for _, id := range dedupe(ids) {
		tasks = append(tasks, async.Go(func() (TargetReport, error) {
			return c.targetReport(ctx, operation, query, id)
		}))
	}

	if len(tasks) == 0 {
		return map[string]TargetReport{}, nil
	}

	reports, err := async.AwaitAll(tasks...)
	if err != nil {
		return nil, err
	}

	out := make(map[string]TargetReport, len(reports))
	for _, r := range reports {
		out[r.ID] = r
	}
	return out, nil
}

func (c *Client) targetReport(ctx context.Context, operation, query, id string) (TargetReport, error) {
	var data struct {
		Target *TargetReport `json:"target"`
	}

	err := c.query(ctx, operation, query, map[string]any{"ensemblId": id}, &data)

	var qe *QueryError
	if errors.As(err, &qe) {
		return TargetReport{ID: id, Errors: qe.Errors}, nil
	}
	if err != nil {
		return TargetReport{}, err
	}

	if data.Target == nil {
		return TargetReport{ID: id, Errors: []GraphQLError{{Message: fmt.Sprintf("no target with id %s", id)}}}, nil
	}

	report := *data.Target
	report.ID = id
	return report, nil
}
