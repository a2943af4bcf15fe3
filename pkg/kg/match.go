package kg

import (
	"sort"
	"strings"
)

// DefaultSeedsPerToken bounds how many nodes a single query token may
// contribute as expansion seeds.
const DefaultSeedsPerToken = 5

// MatchSeeds maps free-text query tokens onto graph nodes by
// case-insensitive substring match against node labels. Each token
// contributes at most perToken seeds so a generic word cannot flood the
// expansion frontier. The result is deduplicated and sorted.
func MatchSeeds(g Graph, tokens []string, perToken int) []string {
	if perToken <= 0 {
		perToken = DefaultSeedsPerToken
	}

	seen := make(map[string]struct{})
	nodes := g.Nodes()
	for _, tok := range tokens {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if len(tok) < 3 {
			continue
		}
		matched := 0
		for _, n := range nodes {
			if matched >= perToken {
				break
			}
			label := strings.ToLower(n.Label)
			if label == tok || strings.Contains(label, tok) {
				if _, ok := seen[n.ID]; !ok {
					seen[n.ID] = struct{}{}
					matched++
				}
			}
		}
	}

	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
