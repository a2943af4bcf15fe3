package pgx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/medassist-ai/medassist/backend/pkg/kg"
	"github.com/medassist-ai/medassist/backend/pkg/logger"
	"github.com/medassist-ai/medassist/backend/pkg/store"
)

const graphChunk = 500

// SaveGraph merges nodes and edges into the stored knowledge graph in a
// single transaction. Nodes go in before edges so the edge foreign keys
// always resolve; re-ingesting a dataset updates in place rather than
// duplicating.
func (s *CorpusDBStorage) SaveGraph(ctx context.Context, nodes []kg.Node, edges []kg.Edge) error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = store.ChunkRange(len(nodes), graphChunk, func(start, end int) error {
		logger.Debug("[Store][SaveGraph] Saving node chunk", "nodes", end-start)
		for _, n := range nodes[start:end] {
			props, err := json.Marshal(n.Props)
			if err != nil {
				return fmt.Errorf("encoding props for node %q: %w", n.ID, err)
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO graph_nodes (public_id, node_type, label, props)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (public_id) DO UPDATE
				SET node_type = EXCLUDED.node_type,
				    label = EXCLUDED.label,
				    props = EXCLUDED.props`,
				n.ID, string(n.Type), n.Label, props)
			if err != nil {
				return fmt.Errorf("inserting node %q: %w", n.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = store.ChunkRange(len(edges), graphChunk, func(start, end int) error {
		logger.Debug("[Store][SaveGraph] Saving edge chunk", "edges", end-start)
		for _, e := range edges[start:end] {
			_, err := tx.Exec(ctx, `
				INSERT INTO graph_edges (source_id, target_id, relation, weight)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (source_id, target_id, relation) DO UPDATE
				SET weight = EXCLUDED.weight`,
				e.Source, e.Target, e.Relation, e.Weight)
			if err != nil {
				return fmt.Errorf("inserting edge %s -> %s: %w", e.Source, e.Target, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// LoadGraph returns all stored nodes and edges.
func (s *CorpusDBStorage) LoadGraph(ctx context.Context) ([]kg.Node, []kg.Edge, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT public_id, node_type, label, props
		FROM graph_nodes
		ORDER BY id`)
	if err != nil {
		return nil, nil, fmt.Errorf("loading graph nodes: %w", err)
	}
	defer rows.Close()

	var nodes []kg.Node
	for rows.Next() {
		var (
			n        kg.Node
			nodeType string
			props    []byte
		)
		if err := rows.Scan(&n.ID, &nodeType, &n.Label, &props); err != nil {
			return nil, nil, fmt.Errorf("scanning graph node: %w", err)
		}
		n.Type = kg.NodeType(nodeType)
		if len(props) > 0 {
			if err := json.Unmarshal(props, &n.Props); err != nil {
				return nil, nil, fmt.Errorf("decoding props for node %q: %w", n.ID, err)
			}
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	rows.Close()

	edgeRows, err := s.conn.Query(ctx, `
		SELECT source_id, target_id, relation, weight
		FROM graph_edges
		ORDER BY id`)
	if err != nil {
		return nil, nil, fmt.Errorf("loading graph edges: %w", err)
	}
	defer edgeRows.Close()

	var edges []kg.Edge
	for edgeRows.Next() {
		var e kg.Edge
		if err := edgeRows.Scan(&e.Source, &e.Target, &e.Relation, &e.Weight); err != nil {
			return nil, nil, fmt.Errorf("scanning graph edge: %w", err)
		}
		edges = append(edges, e)
	}
	return nodes, edges, edgeRows.Err()
}
