package dataset

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

const catalogCSV = `drug_name,conditions,symptoms,side_effects,description
Paracetamol,fever;mild pain,fever;headache;body ache,nausea,Common analgesic and antipyretic
Ibuprofen,inflammation;arthritis,headache;joint pain;fever,stomach upset;dizziness,Nonsteroidal anti-inflammatory drug
Loratadine,allergic rhinitis,sneezing;runny nose;itchy eyes,drowsiness,Second generation antihistamine
`

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := ParseCatalog([]byte(catalogCSV))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	return c
}

func TestParseCatalog(t *testing.T) {
	c := testCatalog(t)
	if c.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", c.Len())
	}

	rec, ok := c.Get("paracetamol")
	if !ok {
		t.Fatal("expected paracetamol in catalog")
	}
	if len(rec.Symptoms) != 3 || rec.Symptoms[1] != "headache" {
		t.Fatalf("unexpected symptoms: %v", rec.Symptoms)
	}
	if len(rec.Conditions) != 2 {
		t.Fatalf("unexpected conditions: %v", rec.Conditions)
	}
}

func TestParseCatalogMissingNameColumn(t *testing.T) {
	if _, err := ParseCatalog([]byte("foo,bar\n1,2\n")); err == nil {
		t.Fatal("expected error for missing drug_name column")
	}
}

func TestParseCatalogEmpty(t *testing.T) {
	if _, err := ParseCatalog([]byte("drug_name,conditions\n")); err == nil {
		t.Fatal("expected error for catalog without records")
	}
}

func TestSearchFieldScores(t *testing.T) {
	c := testCatalog(t)

	tests := []struct {
		name      string
		query     string
		wantDrug  string
		wantScore float64
		wantField string
	}{
		{"name match", "ibupro", "Ibuprofen", 0.9, "name"},
		{"condition match", "arthritis", "Ibuprofen", 0.7, "condition"},
		{"side effect match", "drowsiness", "Loratadine", 0.5, "side_effect"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := c.Search(tt.query, 5)
			if len(hits) == 0 {
				t.Fatalf("expected hits for %q", tt.query)
			}
			if hits[0].Record.Name != tt.wantDrug {
				t.Fatalf("expected %s, got %s", tt.wantDrug, hits[0].Record.Name)
			}
			if hits[0].Score != tt.wantScore || hits[0].Field != tt.wantField {
				t.Fatalf("expected score %v field %s, got %v %s",
					tt.wantScore, tt.wantField, hits[0].Score, hits[0].Field)
			}
		})
	}
}

func TestSearchOrdering(t *testing.T) {
	c := testCatalog(t)

	// "fever" is a condition for Paracetamol and only a symptom for
	// Ibuprofen, so only Paracetamol matches at condition score.
	hits := c.Search("fever", 5)
	if len(hits) != 1 || hits[0].Record.Name != "Paracetamol" {
		t.Fatalf("expected only Paracetamol, got %v", hits)
	}
}

func TestSearchNoMatch(t *testing.T) {
	c := testCatalog(t)
	if hits := c.Search("warfarin", 5); len(hits) != 0 {
		t.Fatalf("expected no hits, got %v", hits)
	}
}

func TestMatchSymptoms(t *testing.T) {
	c := testCatalog(t)

	hits := c.MatchSymptoms([]string{"headache", "fever"}, 5)
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	// Both match twice; catalog order breaks the tie.
	if hits[0].Record.Name != "Paracetamol" || hits[1].Record.Name != "Ibuprofen" {
		t.Fatalf("unexpected order: %s, %s", hits[0].Record.Name, hits[1].Record.Name)
	}
	if hits[0].Confidence != 0.8 {
		t.Fatalf("expected confidence 0.8 for 2 matches, got %v", hits[0].Confidence)
	}
}

func TestSymptomConfidenceSaturates(t *testing.T) {
	if got := SymptomConfidence(1); got != 0.7 {
		t.Fatalf("expected 0.7, got %v", got)
	}
	if got := SymptomConfidence(10); got != 0.95 {
		t.Fatalf("expected saturation at 0.95, got %v", got)
	}
}

func TestMatchSymptomsNoOverlap(t *testing.T) {
	c := testCatalog(t)
	if hits := c.MatchSymptoms([]string{"hallucinations"}, 5); len(hits) != 0 {
		t.Fatalf("expected no hits, got %v", hits)
	}
}

func TestLoaderCachesAndCollapses(t *testing.T) {
	var fetches atomic.Int32
	l := NewLoader(func(key string) ([]byte, error) {
		fetches.Add(1)
		return []byte(catalogCSV), nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Load("catalog.csv"); err != nil {
				t.Errorf("load: %v", err)
			}
		}()
	}
	wg.Wait()

	if _, err := l.Load("catalog.csv"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if n := fetches.Load(); n != 1 {
		t.Fatalf("expected exactly 1 fetch, got %d", n)
	}
}

func TestLoaderFetchError(t *testing.T) {
	wantErr := errors.New("object not found")
	l := NewLoader(func(key string) ([]byte, error) {
		return nil, wantErr
	})
	if _, err := l.Load("missing.csv"); !errors.Is(err, wantErr) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}
