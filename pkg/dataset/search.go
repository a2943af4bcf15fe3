package dataset

import (
	"sort"
	"strings"
)

// Field relevance for drug search. A name hit outranks a condition hit,
// which outranks a side-effect hit; a record keeps its single best score.
const (
	scoreNameMatch       = 0.9
	scoreConditionMatch  = 0.7
	scoreSideEffectMatch = 0.5
)

// SearchHit is one drug search result.
type SearchHit struct {
	Record DrugRecord `json:"record"`
	Score  float64    `json:"score"`
	Field  string     `json:"field"`
}

// Search finds drugs whose name, treated conditions or side effects
// contain the query, case-insensitive. Results come back sorted by
// descending score, ties in catalog order, at most limit hits.
func (c *Catalog) Search(query string, limit int) []SearchHit {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || limit <= 0 {
		return nil
	}

	var hits []SearchHit
	for _, rec := range c.records {
		score, field := matchRecord(rec, query)
		if score == 0 {
			continue
		}
		hits = append(hits, SearchHit{Record: rec, Score: score, Field: field})
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Score > hits[b].Score
	})
	if limit > len(hits) {
		limit = len(hits)
	}
	return hits[:limit]
}

func matchRecord(rec DrugRecord, query string) (float64, string) {
	if strings.Contains(strings.ToLower(rec.Name), query) {
		return scoreNameMatch, "name"
	}
	for _, cond := range rec.Conditions {
		if strings.Contains(strings.ToLower(cond), query) {
			return scoreConditionMatch, "condition"
		}
	}
	for _, se := range rec.SideEffects {
		if strings.Contains(strings.ToLower(se), query) {
			return scoreSideEffectMatch, "side_effect"
		}
	}
	return 0, ""
}
