package opentargets

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/SaiNageswarS/go-collection-boot/async"
)

func (c *Client) search(ctx context.Context, text, entity string) ([]SearchHit, error) {
	var data struct {
		Search struct {
			Hits []SearchHit `json:"hits"`
		} `json:"search"`
	}

	err := c.query(ctx, "search_"+entity, searchQuery, map[string]any{
		"queryString": text,
		"entityNames": []string{entity},
	}, &data)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(data.Search.Hits))
	for _, h := range data.Search.Hits {
		if h.Entity == "" || h.Entity == entity {
			hits = append(hits, h)
		}
	}
	return hits, nil
}

// SearchDisease resolves a disease name to its best EFO/MONDO match.
func (c *Client) SearchDisease(ctx context.Context, name string) (SearchHit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return SearchHit{}, fmt.Errorf("disease name is empty")
	}

	hits, err := c.search(ctx, name, "disease")
	if err != nil {
		return SearchHit{}, err
	}
	if len(hits) == 0 {
		return SearchHit{}, fmt.Errorf("disease %q: %w", name, ErrNotFound)
	}
	return hits[0], nil
}

// DiseaseTargets lists targets associated with a disease, highest association
// score first. It returns Ensembl ids, or approved symbols when
// returnEnsemblIDs is false.
func (c *Client) DiseaseTargets(ctx context.Context, diseaseID string, limit int, returnEnsemblIDs bool) ([]string, error) {
	rows, err := c.DiseaseAssociations(ctx, diseaseID, limit)
	if err != nil {
		return nil, err
	}

	out := make([]string, len(rows))
	for i, r := range rows {
		if returnEnsemblIDs {
			out[i] = r.Target.ID
		} else {
			out[i] = r.Target.ApprovedSymbol
		}
	}
	return out, nil
}

// DiseaseAssociations is DiseaseTargets with scores kept.
func (c *Client) DiseaseAssociations(ctx context.Context, diseaseID string, limit int) ([]AssociatedTarget, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var data struct {
		Disease *struct {
			ID                string `json:"id"`
			Name              string `json:"name"`
			AssociatedTargets struct {
				Count int                `json:"count"`
				Rows  []AssociatedTarget `json:"rows"`
			} `json:"associatedTargets"`
		} `json:"disease"`
	}

	err := c.query(ctx, "disease_targets", diseaseTargetsQuery, map[string]any{
		"efoId": diseaseID,
		"size":  limit,
	}, &data)
	if err != nil {
		return nil, err
	}
	if data.Disease == nil {
		return nil, fmt.Errorf("disease %q: %w", diseaseID, ErrNotFound)
	}

	rows := data.Disease.AssociatedTargets.Rows
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Score > rows[j].Score })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

type targetDrugs struct {
	targetID string
	names    []string
}

// TargetDrugs returns known drug names per target, deduplicated in the order
// the API ranks them and capped at limit per target. Unknown targets map to an
// empty list.
func (c *Client) TargetDrugs(ctx context.Context, targetIDs []string, limit int) (map[string][]string, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	tasks := make([]<-chan async.Result[targetDrugs], 0, len(targetIDs))
	for _, id := range dedupe(targetIDs) {
		tasks = append(tasks, async.Go(func() (targetDrugs, error) {
			names, err := c.targetDrugs(ctx, id, limit)
			return targetDrugs{targetID: id, names: names}, err
		}))
	}

	if len(tasks) == 0 {
		return map[string][]string{}, nil
	}

	results, err := async.AwaitAll(tasks...)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]string, len(results))
	for _, r := range results {
		out[r.targetID] = r.names
	}
	return out, nil
}

func (c *Client) targetDrugs(ctx context.Context, targetID string, limit int) ([]string, error) {
	var data struct {
		Target *struct {
			KnownDrugs *struct {
				Rows []struct {
					DrugID   string `json:"drugId"`
					PrefName string `json:"prefName"`
				} `json:"rows"`
			} `json:"knownDrugs"`
		} `json:"target"`
	}

	// knownDrugs has one row per drug and indication, so over-fetch.
	size := limit * 10
	if size < 50 {
		size = 50
	}

	err := c.query(ctx, "target_drugs", targetDrugsQuery, map[string]any{
		"ensemblId": targetID,
		"size":      size,
	}, &data)
	if err != nil {
		return nil, err
	}

	names := []string{}
	if data.Target == nil || data.Target.KnownDrugs == nil {
		return names, nil
	}

	seen := map[string]bool{}
	for _, row := range data.Target.KnownDrugs.Rows {
		name := row.PrefName
		if name == "" {
			name = row.DrugID
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
		if len(names) == limit {
			break
		}
	}
	return names, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
