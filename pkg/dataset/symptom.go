package dataset

import (
	"sort"
	"strings"
)

// Symptom match confidence ramps linearly with the number of matched
// symptoms and saturates below certainty: medical recommendations from a
// lookup table must never claim full confidence.
const (
	symptomBaseConfidence = 0.6
	symptomStepConfidence = 0.1
	symptomMaxConfidence  = 0.95
)

// SymptomHit is a drug whose symptom list overlaps the query symptoms.
type SymptomHit struct {
	Record          DrugRecord `json:"record"`
	MatchedSymptoms []string   `json:"matched_symptoms"`
	Confidence      float64    `json:"confidence"`
}

// MatchSymptoms finds drugs covering the given symptoms by
// case-insensitive substring overlap against each record's symptom list.
// Results are sorted by match count descending, ties in catalog order,
// at most limit hits.
func (c *Catalog) MatchSymptoms(symptoms []string, limit int) []SymptomHit {
	if limit <= 0 {
		return nil
	}

	normalized := make([]string, 0, len(symptoms))
	for _, s := range symptoms {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			normalized = append(normalized, s)
		}
	}
	if len(normalized) == 0 {
		return nil
	}

	var hits []SymptomHit
	for _, rec := range c.records {
		matched := matchedSymptoms(rec, normalized)
		if len(matched) == 0 {
			continue
		}
		hits = append(hits, SymptomHit{
			Record:          rec,
			MatchedSymptoms: matched,
			Confidence:      SymptomConfidence(len(matched)),
		})
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return len(hits[a].MatchedSymptoms) > len(hits[b].MatchedSymptoms)
	})
	if limit > len(hits) {
		limit = len(hits)
	}
	return hits[:limit]
}

// SymptomConfidence maps a match count to a confidence in
// [symptomBaseConfidence+step, symptomMaxConfidence].
func SymptomConfidence(matches int) float64 {
	conf := symptomBaseConfidence + symptomStepConfidence*float64(matches)
	if conf > symptomMaxConfidence {
		return symptomMaxConfidence
	}
	return conf
}

func matchedSymptoms(rec DrugRecord, queries []string) []string {
	var matched []string
	for _, q := range queries {
		for _, s := range rec.Symptoms {
			if strings.Contains(strings.ToLower(s), q) {
				matched = append(matched, q)
				break
			}
		}
	}
	return matched
}
