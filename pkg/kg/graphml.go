package kg

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type graphmlKey struct {
	ID   string `xml:"id,attr"`
	For  string `xml:"for,attr"`
	Name string `xml:"attr.name,attr"`
}

type graphmlData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

type graphmlNode struct {
	ID   string        `xml:"id,attr"`
	Data []graphmlData `xml:"data"`
}

type graphmlEdge struct {
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	Data   []graphmlData `xml:"data"`
}

type graphmlGraph struct {
	EdgeDefault string        `xml:"edgedefault,attr"`
	Nodes       []graphmlNode `xml:"node"`
	Edges       []graphmlEdge `xml:"edge"`
}

type graphmlDoc struct {
	XMLName xml.Name     `xml:"graphml"`
	Keys    []graphmlKey `xml:"key"`
	Graph   graphmlGraph `xml:"graph"`
}

// ParseGraphML reads a GraphML document into a Graph, honoring the
// document's edgedefault to pick the directed or undirected variant.
// Node "type" and "label" attributes map onto Node fields; any other
// attribute lands in Props. Edge "relation" and "weight" map onto Edge
// fields, weight defaulting to 1 when absent.
func ParseGraphML(r io.Reader) (Graph, error) {
	var doc graphmlDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding graphml: %w", err)
	}

	keyNames := make(map[string]string, len(doc.Keys))
	for _, k := range doc.Keys {
		keyNames[k.ID] = k.Name
	}
	attr := func(data []graphmlData, name string) string {
		for _, d := range data {
			n, ok := keyNames[d.Key]
			if !ok {
				n = d.Key
			}
			if n == name {
				return strings.TrimSpace(d.Value)
			}
		}
		return ""
	}

	directed := !strings.EqualFold(doc.Graph.EdgeDefault, "undirected")

	buildNode := func(gn graphmlNode) Node {
		n := Node{ID: gn.ID, Label: attr(gn.Data, "label")}
		if t := attr(gn.Data, "type"); t != "" {
			n.Type = NodeType(strings.ToUpper(t))
		}
		if n.Label == "" {
			// Fall back to the label half of a namespaced id.
			if _, after, ok := strings.Cut(gn.ID, "::"); ok {
				n.Label = after
			} else {
				n.Label = gn.ID
			}
		}
		for _, d := range gn.Data {
			name, ok := keyNames[d.Key]
			if !ok {
				name = d.Key
			}
			if name == "label" || name == "type" {
				continue
			}
			if n.Props == nil {
				n.Props = make(map[string]string)
			}
			n.Props[name] = strings.TrimSpace(d.Value)
		}
		return n
	}

	buildEdge := func(ge graphmlEdge) (Edge, error) {
		e := Edge{
			Source:   ge.Source,
			Target:   ge.Target,
			Relation: attr(ge.Data, "relation"),
			Weight:   1,
		}
		if w := attr(ge.Data, "weight"); w != "" {
			parsed, err := strconv.ParseFloat(w, 64)
			if err != nil {
				return Edge{}, fmt.Errorf("parsing edge weight %q: %w", w, err)
			}
			e.Weight = parsed
		}
		return e, nil
	}

	if directed {
		g := NewDirected()
		for _, gn := range doc.Graph.Nodes {
			g.AddNode(buildNode(gn))
		}
		for _, ge := range doc.Graph.Edges {
			e, err := buildEdge(ge)
			if err != nil {
				return nil, err
			}
			if err := g.AddEdge(e); err != nil {
				return nil, err
			}
		}
		return g, nil
	}

	g := NewUndirected()
	for _, gn := range doc.Graph.Nodes {
		g.AddNode(buildNode(gn))
	}
	for _, ge := range doc.Graph.Edges {
		e, err := buildEdge(ge)
		if err != nil {
			return nil, err
		}
		if err := g.AddEdge(e); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// WriteGraphML serializes a graph as a GraphML document.
func WriteGraphML(w io.Writer, g Graph, directed bool) error {
	edgeDefault := "directed"
	if !directed {
		edgeDefault = "undirected"
	}

	doc := graphmlDoc{
		Keys: []graphmlKey{
			{ID: "d0", For: "node", Name: "type"},
			{ID: "d1", For: "node", Name: "label"},
			{ID: "d2", For: "edge", Name: "relation"},
			{ID: "d3", For: "edge", Name: "weight"},
		},
		Graph: graphmlGraph{EdgeDefault: edgeDefault},
	}

	for _, n := range g.Nodes() {
		gn := graphmlNode{ID: n.ID, Data: []graphmlData{
			{Key: "d0", Value: string(n.Type)},
			{Key: "d1", Value: n.Label},
		}}
		doc.Graph.Nodes = append(doc.Graph.Nodes, gn)
	}
	for _, e := range g.Edges() {
		doc.Graph.Edges = append(doc.Graph.Edges, graphmlEdge{
			Source: e.Source,
			Target: e.Target,
			Data: []graphmlData{
				{Key: "d2", Value: e.Relation},
				{Key: "d3", Value: strconv.FormatFloat(e.Weight, 'g', -1, 64)},
			},
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding graphml: %w", err)
	}
	return enc.Close()
}
