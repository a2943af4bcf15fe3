package kg

import "sort"

// Expand walks the graph breadth-first from the given seed nodes and
// returns every node reachable within maxHops, capped at maxNodes total.
// The cap is enforced breadth-first: nearer nodes always win over farther
// ones. Seeds absent from the graph are skipped; no seeds present in the
// graph yields an empty set.
func Expand(g Graph, seeds []string, maxHops, maxNodes int) []Node {
	if maxNodes <= 0 {
		return nil
	}

	visited := make(map[string]struct{})
	var frontier []string
	for _, s := range seeds {
		if !g.HasNode(s) {
			continue
		}
		if _, seen := visited[s]; seen {
			continue
		}
		visited[s] = struct{}{}
		frontier = append(frontier, s)
		if len(visited) >= maxNodes {
			break
		}
	}

	for hop := 0; hop < maxHops && len(frontier) > 0 && len(visited) < maxNodes; hop++ {
		var next []string
		for _, id := range frontier {
			for _, nb := range g.Neighbors(id) {
				if _, seen := visited[nb]; seen {
					continue
				}
				visited[nb] = struct{}{}
				next = append(next, nb)
				if len(visited) >= maxNodes {
					break
				}
			}
			if len(visited) >= maxNodes {
				break
			}
		}
		frontier = next
	}

	out := make([]Node, 0, len(visited))
	for id := range visited {
		if n, ok := g.Node(id); ok {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}
