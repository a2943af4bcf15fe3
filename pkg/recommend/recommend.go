// Package recommend implements the symptom-to-drug recommendation
// pipeline: symptom text is mapped onto knowledge graph seeds, the graph
// is expanded around them, catalog matches are scored and the combined
// evidence is explained by a generation model.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/medassist-ai/medassist/backend/internal/util"
	"github.com/medassist-ai/medassist/backend/pkg/ai"
	"github.com/medassist-ai/medassist/backend/pkg/dataset"
	"github.com/medassist-ai/medassist/backend/pkg/index"
	"github.com/medassist-ai/medassist/backend/pkg/kg"
	"github.com/medassist-ai/medassist/backend/pkg/logger"
	"github.com/medassist-ai/medassist/backend/pkg/rerank"
)

const (
	defaultMaxHops    = 2
	defaultMaxNodes   = 50
	defaultMaxTriples = 30
)

// Request carries the user's symptom description.
type Request struct {
	Symptoms       []string
	AdditionalInfo string
	TopK           int
}

// Recommendation is one suggested drug with its supporting evidence.
type Recommendation struct {
	DrugName        string   `json:"drug_name"`
	Description     string   `json:"description,omitempty"`
	MatchedSymptoms []string `json:"matched_symptoms"`
	Confidence      float64  `json:"confidence"`
}

// Result is the full pipeline output.
type Result struct {
	Recommendations   []Recommendation `json:"recommendations"`
	AIExplanation     string           `json:"ai_explanation,omitempty"`
	EntitiesExtracted []string         `json:"entities_extracted"`
	SeedNodes         []string         `json:"seed_nodes"`
	TotalMatches      int              `json:"total_matches"`
}

// GraphHolder publishes the current knowledge graph snapshot.
type GraphHolder interface {
	Graph() kg.Graph
}

// Recommender wires the graph, the drug catalog, the re-ranker and the
// explanation model into one pipeline.
type Recommender struct {
	graphs    GraphHolder
	catalog   *dataset.Catalog
	reranker  *rerank.Reranker
	generator ai.GenerationClient

	maxHops    int
	maxNodes   int
	maxTriples int
}

// NewRecommender creates a pipeline with default expansion bounds.
// reranker and generator may be nil; the pipeline then skips semantic
// re-ranking and the AI explanation respectively.
func NewRecommender(graphs GraphHolder, catalog *dataset.Catalog, reranker *rerank.Reranker, generator ai.GenerationClient) *Recommender {
	return &Recommender{
		graphs:     graphs,
		catalog:    catalog,
		reranker:   reranker,
		generator:  generator,
		maxHops:    defaultMaxHops,
		maxNodes:   defaultMaxNodes,
		maxTriples: defaultMaxTriples,
	}
}

// Recommend runs the full pipeline. Graph and model failures degrade the
// result instead of failing it: recommendations from the catalog always
// come back when any symptom matches.
func (r *Recommender) Recommend(ctx context.Context, req Request) (Result, error) {
	if req.TopK <= 0 {
		return Result{}, fmt.Errorf("top_k must be positive, got %d", req.TopK)
	}

	entities := r.extractEntities(req)
	if len(entities) == 0 {
		return Result{}, errors.New("no usable symptoms in request")
	}

	result := Result{EntitiesExtracted: entities}

	graph := r.graphs.Graph()
	var expanded []kg.Node
	if graph != nil {
		result.SeedNodes = kg.MatchSeeds(graph, entities, kg.DefaultSeedsPerToken)
		expanded = kg.Expand(graph, result.SeedNodes, r.maxHops, r.maxNodes)
	}

	hits := r.catalog.MatchSymptoms(entities, req.TopK)
	result.TotalMatches = len(hits)

	hits = r.rerankHits(ctx, req, hits)

	for _, hit := range hits {
		result.Recommendations = append(result.Recommendations, Recommendation{
			DrugName:        hit.Record.Name,
			Description:     hit.Record.Description,
			MatchedSymptoms: hit.MatchedSymptoms,
			Confidence:      hit.Confidence,
		})
	}

	if r.generator != nil && len(result.Recommendations) > 0 {
		result.AIExplanation = r.explain(ctx, req, result, graph, expanded)
	}

	return result, nil
}

// extractEntities normalizes the symptom list plus any entities found in
// the free-text field into deduplicated lowercase tokens.
func (r *Recommender) extractEntities(req Request) []string {
	var raw []string
	for _, s := range req.Symptoms {
		s = strings.ToLower(strings.TrimSpace(util.CleanText(s)))
		if s != "" {
			raw = append(raw, s)
		}
	}
	if info := strings.TrimSpace(req.AdditionalInfo); info != "" {
		for _, tok := range util.Tokenize(util.CleanText(info)) {
			if len(tok) >= 3 && r.knownEntity(tok) {
				raw = append(raw, tok)
			}
		}
	}
	return util.DedupeTokens(raw)
}

// knownEntity reports whether a free-text token names something the
// catalog knows about. Keeps filler words out of the entity list.
func (r *Recommender) knownEntity(token string) bool {
	for _, rec := range r.catalog.Records() {
		for _, s := range rec.Symptoms {
			if strings.Contains(strings.ToLower(s), token) {
				return true
			}
		}
		for _, c := range rec.Conditions {
			if strings.Contains(strings.ToLower(c), token) {
				return true
			}
		}
	}
	return false
}

// rerankHits reorders catalog hits by semantic similarity to the symptom
// description. Match-count order is kept when no reranker is configured
// or embedding fails.
func (r *Recommender) rerankHits(ctx context.Context, req Request, hits []dataset.SymptomHit) []dataset.SymptomHit {
	if r.reranker == nil || len(hits) < 2 {
		return hits
	}

	byName := make(map[string]dataset.SymptomHit, len(hits))
	docs := make([]index.Document, 0, len(hits))
	for _, hit := range hits {
		byName[hit.Record.Name] = hit
		text := hit.Record.Description
		if text == "" {
			text = strings.Join(hit.Record.Symptoms, ", ")
		}
		docs = append(docs, index.Document{ID: hit.Record.Name, Text: text})
	}

	query := strings.Join(req.Symptoms, ", ")
	if req.AdditionalInfo != "" {
		query += ". " + req.AdditionalInfo
	}

	ranked, err := r.reranker.RankTexts(ctx, query, docs)
	if err != nil {
		logger.Warn("[Recommend] Rerank failed, keeping match order", "err", err)
		return hits
	}

	out := make([]dataset.SymptomHit, 0, len(ranked))
	for _, rk := range ranked {
		out = append(out, byName[rk.Document.ID])
	}
	return out
}

// explain asks the generation model for a short grounded explanation.
// Failure returns an empty explanation, never an error.
func (r *Recommender) explain(ctx context.Context, req Request, result Result, graph kg.Graph, expanded []kg.Node) string {
	drugs := make([]string, 0, len(result.Recommendations))
	for _, rec := range result.Recommendations {
		drugs = append(drugs, rec.DrugName)
	}

	var contextBlock strings.Builder
	if graph != nil && len(expanded) > 0 {
		ids := make([]string, 0, len(expanded))
		for _, n := range expanded {
			ids = append(ids, n.ID)
		}
		if triples := kg.Triples(graph, ids, r.maxTriples); triples != "" {
			contextBlock.WriteString("Knowledge graph relations:\n")
			contextBlock.WriteString(triples)
			contextBlock.WriteString("\n\n")
		}
	}
	for _, rec := range result.Recommendations {
		fmt.Fprintf(&contextBlock, "%s: matches %s (confidence %.2f)\n",
			rec.DrugName, strings.Join(rec.MatchedSymptoms, ", "), rec.Confidence)
	}

	prompt := fmt.Sprintf("%s\n\n%s", contextBlock.String(),
		ai.ExplanationPrompt(req.Symptoms, drugs))

	text, err := util.RetryIfWithContext(ctx, 2, func(err error) bool {
		if errors.Is(err, ai.ErrEmptyGeneration) {
			return false
		}
		return ai.IsTransient(err)
	}, func(rCtx context.Context) (string, error) {
		return r.generator.GenerateCompletion(rCtx, prompt, ai.WithSystemPrompts(ai.RecommendationPrompt))
	})
	if err != nil {
		logger.Warn("[Recommend] Explanation failed", "err", err)
		return ""
	}
	return strings.TrimSpace(text)
}
