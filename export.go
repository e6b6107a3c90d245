// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package ctxgraph

import (
	"fmt"

	"github.com/dominikbraun/graph"
)

// Export projects the hypergraph's child relationships into a directed
// github.com/dominikbraun/graph, one vertex per TokenID and one edge per
// (parent, child) pair appearing in any child-pattern, grounded on the
// graph.New/AddVertex/AddEdge usage in the pack's cortex graph searcher.
// The projection is read-only tooling for callers that want to run generic
// graph algorithms (shortest path between two tokens, reachability) over
// the store's structure; the engine itself never depends on it.
func (g *Graph) Export() (graph.Graph[TokenID, TokenID], error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	dg := graph.New(func(id TokenID) TokenID { return id }, graph.Directed(), graph.PreventCycles())

	for id, v := range g.arena {
		if v == nil {
			continue
		}
		if err := dg.AddVertex(TokenID(id)); err != nil {
			return nil, fmt.Errorf("ctxgraph: export vertex #%d: %w", id, err)
		}
	}

	for id, v := range g.arena {
		if v == nil {
			continue
		}
		seen := make(map[TokenID]bool)
		for _, pat := range v.Children {
			for _, child := range pat {
				if seen[child.ID] {
					continue
				}
				seen[child.ID] = true
				if err := dg.AddEdge(TokenID(id), child.ID); err != nil {
					return nil, fmt.Errorf("ctxgraph: export edge #%d->#%d: %w", id, child.ID, err)
				}
			}
		}
	}

	return dg, nil
}

// ShortestDescentPath finds the shortest chain of child relationships from
// from down to to, if any, using graph.ShortestPath over the Export()
// projection. It is a convenience for callers inspecting why two tokens are
// related, not something the engine itself calls.
func (g *Graph) ShortestDescentPath(from, to TokenID) ([]TokenID, error) {
	dg, err := g.Export()
	if err != nil {
		return nil, err
	}
	return graph.ShortestPath(dg, from, to)
}
