package kg

import (
	"fmt"
	"strings"
)

// Triples renders the relations touching the given node set as one
// "source --RELATION--> target" line per edge, using node labels rather
// than namespaced ids. At most maxTriples lines are produced so the
// rendered block stays within a prompt budget.
func Triples(g Graph, nodeIDs []string, maxTriples int) string {
	if maxTriples <= 0 {
		return ""
	}

	inSet := make(map[string]struct{}, len(nodeIDs))
	for _, id := range nodeIDs {
		inSet[id] = struct{}{}
	}

	var b strings.Builder
	count := 0
	for _, e := range g.Edges() {
		if count >= maxTriples {
			break
		}
		_, srcIn := inSet[e.Source]
		_, dstIn := inSet[e.Target]
		if !srcIn && !dstIn {
			continue
		}
		src, ok := g.Node(e.Source)
		if !ok {
			continue
		}
		dst, ok := g.Node(e.Target)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s --%s--> %s\n", src.Label, e.Relation, dst.Label)
		count++
	}
	return strings.TrimRight(b.String(), "\n")
}
