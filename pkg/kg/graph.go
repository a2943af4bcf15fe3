// Package kg models the medical knowledge graph: typed drug, condition,
// symptom and side-effect nodes connected by weighted relations, with
// bounded breadth-first expansion for retrieval augmentation.
package kg

import (
	"fmt"
	"sort"
	"strings"
)

// NodeType classifies a graph node.
type NodeType string

const (
	NodeDrug       NodeType = "DRUG"
	NodeCondition  NodeType = "CONDITION"
	NodeSymptom    NodeType = "SYMPTOM"
	NodeSideEffect NodeType = "SIDE_EFFECT"
)

// Node is a single entity in the knowledge graph.
type Node struct {
	ID    string            `json:"id"`
	Type  NodeType          `json:"type"`
	Label string            `json:"label"`
	Props map[string]string `json:"props,omitempty"`
}

// Edge is a typed relation between two existing nodes. Weight is a
// relevance strength in [0, 1].
type Edge struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Relation string  `json:"relation"`
	Weight   float64 `json:"weight"`
}

// Graph is the read side of a knowledge graph. Neighbors hides the
// directedness of the underlying structure: for a directed graph it
// returns successors and predecessors alike, for an undirected graph the
// plain adjacency. Expansion code must only ever go through this method.
type Graph interface {
	HasNode(id string) bool
	Node(id string) (Node, bool)
	Neighbors(id string) []string
	Nodes() []Node
	Edges() []Edge
	NodeCount() int
	EdgeCount() int
}

// NodeID builds the canonical namespaced node identifier, e.g.
// "DRUG::paracetamol". Labels are lowercased and trimmed so the same
// entity spelled differently across datasets maps to one node.
func NodeID(t NodeType, label string) string {
	return fmt.Sprintf("%s::%s", t, strings.ToLower(strings.TrimSpace(label)))
}

type adjacency map[string]map[string]struct{}

func (a adjacency) add(from, to string) {
	set, ok := a[from]
	if !ok {
		set = make(map[string]struct{})
		a[from] = set
	}
	set[to] = struct{}{}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DirectedGraph stores edges with direction but reports neighbors in both
// directions, so expansion from a target node still reaches its sources.
type DirectedGraph struct {
	nodes map[string]Node
	succ  adjacency
	pred  adjacency
	edges []Edge
}

// NewDirected creates an empty directed graph.
func NewDirected() *DirectedGraph {
	return &DirectedGraph{
		nodes: make(map[string]Node),
		succ:  make(adjacency),
		pred:  make(adjacency),
	}
}

// AddNode inserts or replaces a node.
func (g *DirectedGraph) AddNode(n Node) {
	g.nodes[n.ID] = n
}

// AddEdge inserts a directed edge. Both endpoints must already exist.
func (g *DirectedGraph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.Source]; !ok {
		return fmt.Errorf("edge source %q not in graph", e.Source)
	}
	if _, ok := g.nodes[e.Target]; !ok {
		return fmt.Errorf("edge target %q not in graph", e.Target)
	}
	if e.Weight < 0 || e.Weight > 1 {
		return fmt.Errorf("edge weight %v outside [0, 1]", e.Weight)
	}
	g.succ.add(e.Source, e.Target)
	g.pred.add(e.Target, e.Source)
	g.edges = append(g.edges, e)
	return nil
}

func (g *DirectedGraph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

func (g *DirectedGraph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Neighbors returns the union of successors and predecessors, sorted for
// deterministic traversal.
func (g *DirectedGraph) Neighbors(id string) []string {
	merged := make(map[string]struct{})
	for to := range g.succ[id] {
		merged[to] = struct{}{}
	}
	for from := range g.pred[id] {
		merged[from] = struct{}{}
	}
	return sortedKeys(merged)
}

func (g *DirectedGraph) Nodes() []Node  { return collectNodes(g.nodes) }
func (g *DirectedGraph) Edges() []Edge  { return g.edges }
func (g *DirectedGraph) NodeCount() int { return len(g.nodes) }
func (g *DirectedGraph) EdgeCount() int { return len(g.edges) }

// UndirectedGraph stores symmetric adjacency.
type UndirectedGraph struct {
	nodes map[string]Node
	adj   adjacency
	edges []Edge
}

// NewUndirected creates an empty undirected graph.
func NewUndirected() *UndirectedGraph {
	return &UndirectedGraph{
		nodes: make(map[string]Node),
		adj:   make(adjacency),
	}
}

// AddNode inserts or replaces a node.
func (g *UndirectedGraph) AddNode(n Node) {
	g.nodes[n.ID] = n
}

// AddEdge inserts a symmetric edge. Both endpoints must already exist.
func (g *UndirectedGraph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.Source]; !ok {
		return fmt.Errorf("edge source %q not in graph", e.Source)
	}
	if _, ok := g.nodes[e.Target]; !ok {
		return fmt.Errorf("edge target %q not in graph", e.Target)
	}
	if e.Weight < 0 || e.Weight > 1 {
		return fmt.Errorf("edge weight %v outside [0, 1]", e.Weight)
	}
	g.adj.add(e.Source, e.Target)
	g.adj.add(e.Target, e.Source)
	g.edges = append(g.edges, e)
	return nil
}

func (g *UndirectedGraph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

func (g *UndirectedGraph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

func (g *UndirectedGraph) Neighbors(id string) []string {
	return sortedKeys(g.adj[id])
}

func (g *UndirectedGraph) Nodes() []Node  { return collectNodes(g.nodes) }
func (g *UndirectedGraph) Edges() []Edge  { return g.edges }
func (g *UndirectedGraph) NodeCount() int { return len(g.nodes) }
func (g *UndirectedGraph) EdgeCount() int { return len(g.edges) }

func collectNodes(m map[string]Node) []Node {
	out := make([]Node, 0, len(m))
	for _, n := range m {
		out = append(out, n)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

var (
	_ Graph = (*DirectedGraph)(nil)
	_ Graph = (*UndirectedGraph)(nil)
)
