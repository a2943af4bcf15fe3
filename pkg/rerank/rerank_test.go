package rerank

import (
	"context"
	"errors"
	"testing"

	"github.com/medassist-ai/medassist/backend/pkg/index"
)

func TestRankDescending(t *testing.T) {
	query := []float32{1, 0}
	candidates := []Candidate{
		{Document: index.Document{ID: "doc1"}, Embedding: []float32{0.3, 0.9539392}},
		{Document: index.Document{ID: "doc2"}, Embedding: []float32{0.9, 0.43588989}},
		{Document: index.Document{ID: "doc3"}, Embedding: []float32{0.6, 0.8}},
	}

	ranked, err := Rank(query, candidates)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}

	want := []string{"doc2", "doc3", "doc1"}
	for i := range want {
		if ranked[i].Document.ID != want[i] {
			t.Fatalf("expected order %v, got %s at %d", want, ranked[i].Document.ID, i)
		}
	}
	if ranked[0].Score < ranked[1].Score || ranked[1].Score < ranked[2].Score {
		t.Fatalf("scores not descending: %v", ranked)
	}
}

func TestRankTiesKeepInputOrder(t *testing.T) {
	query := []float32{1, 0}
	candidates := []Candidate{
		{Document: index.Document{ID: "first"}, Embedding: []float32{0.5, 0}},
		{Document: index.Document{ID: "second"}, Embedding: []float32{0.5, 0}},
	}

	ranked, err := Rank(query, candidates)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if ranked[0].Document.ID != "first" || ranked[1].Document.ID != "second" {
		t.Fatalf("expected input order preserved on ties, got %v", ranked)
	}
}

func TestRankDimensionMismatch(t *testing.T) {
	_, err := Rank([]float32{1, 0}, []Candidate{
		{Document: index.Document{ID: "bad"}, Embedding: []float32{1, 0, 0}},
	})
	if !errors.Is(err, index.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

type textEmbedder struct {
	vecs map[string][]float32
	err  error
}

func (f *textEmbedder) GenerateEmbedding(_ context.Context, input []byte) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vecs[string(input)], nil
}

func TestRankTexts(t *testing.T) {
	embedder := &textEmbedder{vecs: map[string][]float32{
		"headache":        {1, 0},
		"aspirin info":    {0.9, 0.43588989},
		"vitamin d facts": {0.1, 0.99498744},
	}}
	r := New(embedder)

	ranked, err := r.RankTexts(context.Background(), "headache", []index.Document{
		{ID: "doc1", Text: "vitamin d facts"},
		{ID: "doc2", Text: "aspirin info"},
	})
	if err != nil {
		t.Fatalf("rank texts: %v", err)
	}
	if ranked[0].Document.ID != "doc2" {
		t.Fatalf("expected doc2 first, got %s", ranked[0].Document.ID)
	}
}

func TestRankTextsEmbeddingFailure(t *testing.T) {
	r := New(&textEmbedder{err: errors.New("model offline")})
	if _, err := r.RankTexts(context.Background(), "q", []index.Document{{ID: "doc1", Text: "x"}}); err == nil {
		t.Fatal("expected error from failed embedding")
	}
}
