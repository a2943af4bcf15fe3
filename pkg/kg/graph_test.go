package kg

import (
	"strings"
	"testing"
)

func buildDirected(t *testing.T) *DirectedGraph {
	t.Helper()
	g := NewDirected()
	g.AddNode(Node{ID: NodeID(NodeDrug, "Paracetamol"), Type: NodeDrug, Label: "paracetamol"})
	g.AddNode(Node{ID: NodeID(NodeCondition, "Fever"), Type: NodeCondition, Label: "fever"})
	g.AddNode(Node{ID: NodeID(NodeSymptom, "Headache"), Type: NodeSymptom, Label: "headache"})
	g.AddNode(Node{ID: NodeID(NodeSideEffect, "Nausea"), Type: NodeSideEffect, Label: "nausea"})

	edges := []Edge{
		{Source: "DRUG::paracetamol", Target: "CONDITION::fever", Relation: "TREATS", Weight: 0.9},
		{Source: "DRUG::paracetamol", Target: "SYMPTOM::headache", Relation: "RELIEVES", Weight: 0.8},
		{Source: "DRUG::paracetamol", Target: "SIDE_EFFECT::nausea", Relation: "CAUSES", Weight: 0.3},
	}
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("add edge: %v", err)
		}
	}
	return g
}

func TestNodeID(t *testing.T) {
	if got := NodeID(NodeDrug, "  Paracetamol "); got != "DRUG::paracetamol" {
		t.Fatalf("expected DRUG::paracetamol, got %q", got)
	}
}

func TestAddEdgeMissingEndpoint(t *testing.T) {
	g := NewDirected()
	g.AddNode(Node{ID: "DRUG::a", Type: NodeDrug, Label: "a"})
	err := g.AddEdge(Edge{Source: "DRUG::a", Target: "CONDITION::missing", Relation: "TREATS", Weight: 1})
	if err == nil {
		t.Fatal("expected error for missing edge target")
	}
}

func TestAddEdgeWeightRange(t *testing.T) {
	g := buildDirected(t)
	err := g.AddEdge(Edge{Source: "DRUG::paracetamol", Target: "CONDITION::fever", Relation: "TREATS", Weight: 1.5})
	if err == nil {
		t.Fatal("expected error for weight outside [0, 1]")
	}
}

func TestDirectedNeighborsBothDirections(t *testing.T) {
	g := buildDirected(t)

	// fever only has an incoming edge; Neighbors must still surface the
	// drug that treats it.
	got := g.Neighbors("CONDITION::fever")
	if len(got) != 1 || got[0] != "DRUG::paracetamol" {
		t.Fatalf("expected [DRUG::paracetamol], got %v", got)
	}

	got = g.Neighbors("DRUG::paracetamol")
	if len(got) != 3 {
		t.Fatalf("expected 3 neighbors, got %v", got)
	}
}

func TestUndirectedNeighbors(t *testing.T) {
	g := NewUndirected()
	for _, id := range []string{"A", "B", "C"} {
		g.AddNode(Node{ID: id, Type: NodeCondition, Label: strings.ToLower(id)})
	}
	if err := g.AddEdge(Edge{Source: "A", Target: "B", Relation: "RELATED", Weight: 1}); err != nil {
		t.Fatalf("add edge: %v", err)
	}
	if err := g.AddEdge(Edge{Source: "B", Target: "C", Relation: "RELATED", Weight: 1}); err != nil {
		t.Fatalf("add edge: %v", err)
	}

	if got := g.Neighbors("B"); len(got) != 2 {
		t.Fatalf("expected 2 neighbors of B, got %v", got)
	}
	if got := g.Neighbors("A"); len(got) != 1 || got[0] != "B" {
		t.Fatalf("expected [B], got %v", got)
	}
}

func TestExpandUndirectedChain(t *testing.T) {
	g := NewUndirected()
	for _, id := range []string{"A", "B", "C"} {
		g.AddNode(Node{ID: id, Type: NodeCondition, Label: strings.ToLower(id)})
	}
	g.AddEdge(Edge{Source: "A", Target: "B", Relation: "RELATED", Weight: 1})
	g.AddEdge(Edge{Source: "B", Target: "C", Relation: "RELATED", Weight: 1})

	nodes := Expand(g, []string{"A"}, 2, 100)
	if len(nodes) != 3 {
		t.Fatalf("expected {A B C}, got %v", nodes)
	}
}

func TestExpandReachesTreatingDrug(t *testing.T) {
	g := buildDirected(t)

	nodes := Expand(g, []string{"CONDITION::fever"}, 2, 100)
	ids := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = true
	}
	if !ids["DRUG::paracetamol"] {
		t.Fatalf("expected expansion from fever to reach paracetamol, got %v", nodes)
	}
	// Two hops from fever crosses the drug to its other relations.
	if !ids["SYMPTOM::headache"] || !ids["SIDE_EFFECT::nausea"] {
		t.Fatalf("expected 2-hop frontier to include headache and nausea, got %v", nodes)
	}
}

func TestExpandAbsentSeed(t *testing.T) {
	g := buildDirected(t)
	if nodes := Expand(g, []string{"DRUG::unknown"}, 2, 100); len(nodes) != 0 {
		t.Fatalf("expected empty expansion for absent seed, got %v", nodes)
	}
}

func TestExpandNodeCap(t *testing.T) {
	g := buildDirected(t)
	nodes := Expand(g, []string{"DRUG::paracetamol"}, 2, 2)
	if len(nodes) != 2 {
		t.Fatalf("expected expansion capped at 2 nodes, got %d", len(nodes))
	}
	// Seed itself is always within the cap.
	found := false
	for _, n := range nodes {
		if n.ID == "DRUG::paracetamol" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected seed node inside capped expansion")
	}
}

func TestExpandZeroHops(t *testing.T) {
	g := buildDirected(t)
	nodes := Expand(g, []string{"DRUG::paracetamol"}, 0, 100)
	if len(nodes) != 1 || nodes[0].ID != "DRUG::paracetamol" {
		t.Fatalf("expected only the seed at 0 hops, got %v", nodes)
	}
}

func TestMatchSeeds(t *testing.T) {
	g := buildDirected(t)

	seeds := MatchSeeds(g, []string{"fever", "headache", "xyz"}, 5)
	want := []string{"CONDITION::fever", "SYMPTOM::headache"}
	if len(seeds) != len(want) {
		t.Fatalf("expected %v, got %v", want, seeds)
	}
	for i := range want {
		if seeds[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, seeds)
		}
	}
}

func TestMatchSeedsShortTokensSkipped(t *testing.T) {
	g := buildDirected(t)
	if seeds := MatchSeeds(g, []string{"a", "is"}, 5); len(seeds) != 0 {
		t.Fatalf("expected no seeds for short tokens, got %v", seeds)
	}
}

func TestTriples(t *testing.T) {
	g := buildDirected(t)

	out := Triples(g, []string{"DRUG::paracetamol"}, 10)
	if !strings.Contains(out, "paracetamol --TREATS--> fever") {
		t.Fatalf("expected TREATS triple, got %q", out)
	}
	if !strings.Contains(out, "paracetamol --CAUSES--> nausea") {
		t.Fatalf("expected CAUSES triple, got %q", out)
	}

	limited := Triples(g, []string{"DRUG::paracetamol"}, 1)
	if lines := strings.Split(limited, "\n"); len(lines) != 1 {
		t.Fatalf("expected a single triple, got %q", limited)
	}
}

func TestGraphMLRoundTrip(t *testing.T) {
	g := buildDirected(t)

	var b strings.Builder
	if err := WriteGraphML(&b, g, true); err != nil {
		t.Fatalf("write graphml: %v", err)
	}

	parsed, err := ParseGraphML(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("parse graphml: %v", err)
	}
	if parsed.NodeCount() != g.NodeCount() || parsed.EdgeCount() != g.EdgeCount() {
		t.Fatalf("expected %d nodes %d edges, got %d nodes %d edges",
			g.NodeCount(), g.EdgeCount(), parsed.NodeCount(), parsed.EdgeCount())
	}

	n, ok := parsed.Node("DRUG::paracetamol")
	if !ok || n.Type != NodeDrug || n.Label != "paracetamol" {
		t.Fatalf("expected typed paracetamol node, got %+v", n)
	}
}

func TestGraphMLEdgeDefaultUndirected(t *testing.T) {
	doc := `<?xml version="1.0"?>
<graphml>
  <key id="d1" for="node" attr.name="label"/>
  <graph edgedefault="undirected">
    <node id="A"><data key="d1">a</data></node>
    <node id="B"><data key="d1">b</data></node>
    <edge source="A" target="B"/>
  </graph>
</graphml>`

	g, err := ParseGraphML(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("parse graphml: %v", err)
	}
	if _, ok := g.(*UndirectedGraph); !ok {
		t.Fatalf("expected undirected graph, got %T", g)
	}
	if got := g.Neighbors("B"); len(got) != 1 || got[0] != "A" {
		t.Fatalf("expected symmetric adjacency, got %v", got)
	}
}
