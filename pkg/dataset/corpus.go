package dataset

import (
	"fmt"
	"strings"

	"github.com/medassist-ai/medassist/backend/internal/util"
	"github.com/medassist-ai/medassist/backend/pkg/index"
	"github.com/medassist-ai/medassist/backend/pkg/kg"
)

// Relation weights for catalog-derived edges. Treating a condition is
// the strongest signal, a side effect the weakest.
const (
	weightTreats   = 0.9
	weightRelieves = 0.8
	weightCauses   = 0.3
)

// BuildDocuments renders each catalog record as one retrievable passage.
// Document ids are stable across re-ingestion so upserts land on the
// same rows.
func BuildDocuments(c *Catalog, dataset string) []index.Document {
	docs := make([]index.Document, 0, c.Len())
	for _, rec := range c.records {
		var b strings.Builder
		b.WriteString(rec.Name)
		if rec.Description != "" {
			b.WriteString(": ")
			b.WriteString(rec.Description)
		}
		b.WriteString(".")
		if len(rec.Conditions) > 0 {
			fmt.Fprintf(&b, " Treats %s.", strings.Join(rec.Conditions, ", "))
		}
		if len(rec.Symptoms) > 0 {
			fmt.Fprintf(&b, " Helps with symptoms such as %s.", strings.Join(rec.Symptoms, ", "))
		}
		if len(rec.SideEffects) > 0 {
			fmt.Fprintf(&b, " Possible side effects include %s.", strings.Join(rec.SideEffects, ", "))
		}

		docs = append(docs, index.Document{
			ID:     fmt.Sprintf("%s/%s", dataset, strings.ToLower(rec.Name)),
			Text:   util.CleanText(b.String()),
			Source: dataset,
		})
	}
	return docs
}

// BuildGraph derives knowledge graph nodes and edges from the catalog.
// Every drug links to the conditions it treats, the symptoms it relieves
// and the side effects it causes.
func BuildGraph(c *Catalog) ([]kg.Node, []kg.Edge) {
	g := kg.NewDirected()

	addNode := func(t kg.NodeType, label string) string {
		id := kg.NodeID(t, label)
		if !g.HasNode(id) {
			g.AddNode(kg.Node{ID: id, Type: t, Label: strings.ToLower(strings.TrimSpace(label))})
		}
		return id
	}

	for _, rec := range c.records {
		drugID := addNode(kg.NodeDrug, rec.Name)
		for _, cond := range rec.Conditions {
			condID := addNode(kg.NodeCondition, cond)
			g.AddEdge(kg.Edge{Source: drugID, Target: condID, Relation: "TREATS", Weight: weightTreats})
		}
		for _, sym := range rec.Symptoms {
			symID := addNode(kg.NodeSymptom, sym)
			g.AddEdge(kg.Edge{Source: drugID, Target: symID, Relation: "RELIEVES", Weight: weightRelieves})
		}
		for _, se := range rec.SideEffects {
			seID := addNode(kg.NodeSideEffect, se)
			g.AddEdge(kg.Edge{Source: drugID, Target: seID, Relation: "CAUSES", Weight: weightCauses})
		}
	}

	return g.Nodes(), g.Edges()
}
