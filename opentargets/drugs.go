package opentargets

import (
	"context"
	"errors"
	"fmt"

	"github.com/SaiNageswarS/go-collection-boot/async"
)

type drugResult struct {
	key  string
	info DrugInfo
}

// DrugsInfo fetches drug details. ids are drug names when searchByName is
// true, ChEMBL ids otherwise. Inputs that cannot be resolved get an entry with
// Error set; transport failures fail the whole call.
func (c *Client) DrugsInfo(ctx context.Context, ids []string, searchByName bool) (map[string]DrugInfo, error) {
	tasks := make([]<-chan async.Result[drugResult], 0, len(ids))
	for _, id := range dedupe(ids) {
		tasks = append(tasks, async.Go(func() (drugResult, error) {
			info, err := c.drugInfo(ctx, id, searchByName)
			if errors.Is(err, ErrNotFound) {
				return drugResult{key: id, info: DrugInfo{Error: err.Error()}}, nil
			}
			var qe *QueryError
			if errors.As(err, &qe) {
				return drugResult{key: id, info: DrugInfo{Error: qe.Error()}}, nil
			}
			return drugResult{key: id, info: info}, err
		}))
	}

	if len(tasks) == 0 {
		return map[string]DrugInfo{}, nil
	}

	results, err := async.AwaitAll(tasks...)
	if err != nil {
		return nil, err
	}

	out := make(map[string]DrugInfo, len(results))
	for _, r := range results {
		out[r.key] = r.info
	}
	return out, nil
}

func (c *Client) drugInfo(ctx context.Context, id string, searchByName bool) (DrugInfo, error) {
	chemblID := id
	if searchByName {
		hits, err := c.search(ctx, id, "drug")
		if err != nil {
			return DrugInfo{}, err
		}
		if len(hits) == 0 {
			return DrugInfo{}, fmt.Errorf("drug %q: %w", id, ErrNotFound)
		}
		chemblID = hits[0].ID
	}

	var data struct {
		Drug *struct {
			ID                        string   `json:"id"`
			Name                      string   `json:"name"`
			Description               string   `json:"description"`
			MaximumClinicalTrialPhase *float64 `json:"maximumClinicalTrialPhase"`
			MechanismsOfAction        *struct {
				Rows []MechanismOfAction `json:"rows"`
			} `json:"mechanismsOfAction"`
		} `json:"drug"`
	}

	if err := c.query(ctx, "drug_info", drugQuery, map[string]any{"chemblId": chemblID}, &data); err != nil {
		return DrugInfo{}, err
	}
	if data.Drug == nil {
		return DrugInfo{}, fmt.Errorf("drug %q: %w", chemblID, ErrNotFound)
	}

	info := DrugInfo{
		ID:                        data.Drug.ID,
		Name:                      data.Drug.Name,
		Description:               data.Drug.Description,
		MaximumClinicalTrialPhase: data.Drug.MaximumClinicalTrialPhase,
	}
	if data.Drug.MechanismsOfAction != nil {
		info.MechanismsOfAction = data.Drug.MechanismsOfAction.Rows
	}
	return info, nil
}
