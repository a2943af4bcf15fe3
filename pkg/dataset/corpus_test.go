package dataset

import (
	"strings"
	"testing"

	"github.com/medassist-ai/medassist/backend/pkg/kg"
)

func TestBuildDocuments(t *testing.T) {
	c := testCatalog(t)

	docs := BuildDocuments(c, "drugs_v1")
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}
	if docs[0].ID != "drugs_v1/paracetamol" {
		t.Fatalf("unexpected document id: %s", docs[0].ID)
	}
	if docs[0].Source != "drugs_v1" {
		t.Fatalf("unexpected source: %s", docs[0].Source)
	}
	if !strings.Contains(docs[0].Text, "Treats fever, mild pain") {
		t.Fatalf("expected conditions in passage, got %q", docs[0].Text)
	}
	if !strings.Contains(docs[0].Text, "side effects include nausea") {
		t.Fatalf("expected side effects in passage, got %q", docs[0].Text)
	}
}

func TestBuildGraph(t *testing.T) {
	c := testCatalog(t)

	nodes, edges := BuildGraph(c)

	byID := make(map[string]kg.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	if _, ok := byID["DRUG::paracetamol"]; !ok {
		t.Fatalf("expected drug node, got %v", nodes)
	}
	if n := byID["CONDITION::fever"]; n.Type != kg.NodeCondition {
		t.Fatalf("expected condition node for fever, got %+v", n)
	}
	if n := byID["SIDE_EFFECT::drowsiness"]; n.Type != kg.NodeSideEffect {
		t.Fatalf("expected side effect node, got %+v", n)
	}

	var treats bool
	for _, e := range edges {
		if e.Source == "DRUG::paracetamol" && e.Target == "CONDITION::fever" && e.Relation == "TREATS" {
			treats = true
			if e.Weight != 0.9 {
				t.Fatalf("expected weight 0.9, got %v", e.Weight)
			}
		}
	}
	if !treats {
		t.Fatal("expected TREATS edge from paracetamol to fever")
	}

	// Shared symptom nodes are not duplicated.
	headaches := 0
	for _, n := range nodes {
		if n.ID == "SYMPTOM::headache" {
			headaches++
		}
	}
	if headaches != 1 {
		t.Fatalf("expected a single headache node, got %d", headaches)
	}
}
