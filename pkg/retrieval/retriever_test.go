package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/medassist-ai/medassist/backend/pkg/index"
)

var corpus = []index.Document{
	{ID: "doc1", Text: "Paracetamol treats fever and mild pain."},
	{ID: "doc2", Text: "Ibuprofen reduces inflammation and relieves headache."},
	{ID: "doc3", Text: "Antihistamines help with allergic reactions."},
}

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) GenerateEmbedding(_ context.Context, _ []byte) ([]float32, error) {
	return f.vec, f.err
}

func loadedIndex(t *testing.T, vectors [][]float32, docs []index.Document) *index.Index {
	t.Helper()
	ix := index.New(index.MetricInnerProduct)
	if err := ix.Load(vectors, docs); err != nil {
		t.Fatalf("load: %v", err)
	}
	return ix
}

func TestKeywordRetrieveOverlapOrder(t *testing.T) {
	r := NewKeywordRetriever(corpus)

	results := r.Retrieve("does ibuprofen help with headache", 3)
	if len(results) == 0 {
		t.Fatal("expected keyword matches")
	}
	if results[0].Document.ID != "doc2" {
		t.Fatalf("expected doc2 first, got %s", results[0].Document.ID)
	}
}

func TestKeywordRetrieveNoOverlap(t *testing.T) {
	r := NewKeywordRetriever(corpus)
	if results := r.Retrieve("quantum chromodynamics", 3); len(results) != 0 {
		t.Fatalf("expected no matches, got %v", results)
	}
}

func TestKeywordRetrieveTiesCorpusOrder(t *testing.T) {
	r := NewKeywordRetriever(corpus)

	// "and" appears in doc1 and doc2 with equal overlap.
	results := r.Retrieve("and", 2)
	if len(results) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(results))
	}
	if results[0].Document.ID != "doc1" || results[1].Document.ID != "doc2" {
		t.Fatalf("expected corpus order [doc1 doc2], got [%s %s]",
			results[0].Document.ID, results[1].Document.ID)
	}
}

func TestRetrieveSemantic(t *testing.T) {
	ix := loadedIndex(t, [][]float32{
		{0.2, 0},
		{0.9, 0},
		{0.1, 0},
	}, corpus)
	r := NewRetriever(ix, &fakeEmbedder{vec: []float32{1, 0}}, NewKeywordRetriever(corpus))

	got, err := r.Retrieve(context.Background(), "headache relief", 2)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if got.Method != MethodSemantic {
		t.Fatalf("expected semantic method, got %s", got.Method)
	}
	if got.Results[0].Document.ID != "doc2" {
		t.Fatalf("expected doc2 first, got %s", got.Results[0].Document.ID)
	}
}

func TestRetrieveFallbackOnMissingIndex(t *testing.T) {
	r := NewRetriever(nil, &fakeEmbedder{vec: []float32{1, 0}}, NewKeywordRetriever(corpus))

	got, err := r.Retrieve(context.Background(), "ibuprofen headache", 2)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if got.Method != MethodKeyword {
		t.Fatalf("expected keyword method, got %s", got.Method)
	}
	for _, res := range got.Results {
		if res.Score != FallbackScore {
			t.Fatalf("expected fallback score %v, got %v", FallbackScore, res.Score)
		}
	}
}

func TestRetrieveFallbackOnEmbeddingFailure(t *testing.T) {
	ix := loadedIndex(t, [][]float32{{1, 0}, {0, 1}, {1, 1}}, corpus)
	r := NewRetriever(ix, &fakeEmbedder{err: errors.New("model offline")}, NewKeywordRetriever(corpus))

	got, err := r.Retrieve(context.Background(), "fever pain", 2)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if got.Method != MethodKeyword {
		t.Fatalf("expected keyword fallback, got %s", got.Method)
	}
	if len(got.Results) == 0 || got.Results[0].Document.ID != "doc1" {
		t.Fatalf("expected doc1 via keyword overlap, got %v", got.Results)
	}
}

func TestRetrieveDimensionMismatchPropagates(t *testing.T) {
	ix := loadedIndex(t, [][]float32{{1, 0}, {0, 1}, {1, 1}}, corpus)
	r := NewRetriever(ix, &fakeEmbedder{vec: []float32{1, 0, 0}}, NewKeywordRetriever(corpus))

	_, err := r.Retrieve(context.Background(), "fever", 2)
	if !errors.Is(err, index.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestRetrieveDuplicateIDsStillFillK(t *testing.T) {
	// Two rows share doc1's id and rank highest; dedupe must not shrink
	// the result below k when a distinct document exists further down.
	docs := []index.Document{
		{ID: "doc1", Text: "Paracetamol treats fever and mild pain."},
		{ID: "doc1", Text: "Paracetamol treats fever and mild pain."},
		{ID: "doc2", Text: "Ibuprofen reduces inflammation and relieves headache."},
	}
	ix := loadedIndex(t, [][]float32{{0.9, 0}, {0.8, 0}, {0.5, 0}}, docs)
	r := NewRetriever(ix, &fakeEmbedder{vec: []float32{1, 0}}, NewKeywordRetriever(docs))

	got, err := r.Retrieve(context.Background(), "fever", 2)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(got.Results) != 2 {
		t.Fatalf("expected 2 distinct documents, got %d", len(got.Results))
	}
	if got.Results[0].Document.ID != "doc1" || got.Results[1].Document.ID != "doc2" {
		t.Fatalf("expected [doc1 doc2], got [%s %s]",
			got.Results[0].Document.ID, got.Results[1].Document.ID)
	}
}

func TestRetrieveCancelledContext(t *testing.T) {
	ix := loadedIndex(t, [][]float32{{1, 0}, {0, 1}, {1, 1}}, corpus)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRetriever(ix, &fakeEmbedder{err: context.Canceled}, NewKeywordRetriever(corpus))
	if _, err := r.Retrieve(ctx, "fever", 2); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestContextText(t *testing.T) {
	blob := ContextText([]index.Result{
		{Document: corpus[0]},
		{Document: corpus[1]},
	})
	want := "Paracetamol treats fever and mild pain.\n\nIbuprofen reduces inflammation and relieves headache."
	if blob != want {
		t.Fatalf("expected %q, got %q", want, blob)
	}
}
