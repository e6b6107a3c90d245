// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package ctxgraph

import (
	"iter"
	"slices"

	"github.com/mankinskin/ctxgraph/internal/iterutil"
)

const descendantStackThreshold = 25

// descendantFrame is one level of pending siblings in a depth-first
// descendant walk, the same "stack of sibling slices" shape fox.Iter.Prefix
// uses to walk static/param/wildcard edges without recursion.
type descendantFrame struct {
	tokens []Token
}

// Iter provides a set of range iterators over a point-in-time snapshot of
// the Graph (spec §6 "no wire protocol... implementations are free to add
// any number of external drivers"; these iterators are one such driver,
// grounded on fox.Iter's read-lock-free, snapshot-style range functions).
// An Iter observes the arena as of the moment it was created and does not
// see subsequent mutations — the same contract fox.Iter documents for its
// routing-tree snapshots.
type Iter struct {
	arena []*Vertex
}

// NewIter snapshots g's current vertex arena for iteration.
func NewIter(g *Graph) Iter {
	g.mu.RLock()
	defer g.mu.RUnlock()
	snap := make([]*Vertex, len(g.arena))
	copy(snap, g.arena)
	return Iter{arena: snap}
}

// All ranges over every live token in the snapshot, in TokenID order.
func (it Iter) All() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for id, v := range it.arena {
			if v == nil {
				continue
			}
			if !yield(Token{ID: TokenID(id), Width: v.Width}) {
				return
			}
		}
	}
}

// Atoms ranges over every atom (width-1, childless) token in the snapshot.
func (it Iter) Atoms() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for tok := range it.All() {
			v := it.arena[tok.ID]
			if v.IsAtom() && !yield(tok) {
				return
			}
		}
	}
}

// Descendants ranges over every token reachable below root by following any
// child-pattern of any vertex, depth-first, each token yielded at most once.
// It walks an explicit stack of sibling frames rather than recursing, the
// same non-recursive style fox.Iter.Prefix uses to walk the routing tree.
func (it Iter) Descendants(root Token) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		if int(root.ID) >= len(it.arena) || it.arena[root.ID] == nil {
			return
		}

		var stack []descendantFrame
		if cap(stack) < descendantStackThreshold {
			stack = make([]descendantFrame, 0, descendantStackThreshold)
		}
		visited := make(map[TokenID]bool)

		push := func(toks []Token) {
			if len(toks) > 0 {
				stack = append(stack, descendantFrame{tokens: toks})
			}
		}

		v := it.arena[root.ID]
		for _, pat := range v.Children {
			push(pat)
		}

		for len(stack) > 0 {
			n := len(stack)
			frame := stack[n-1]
			tok := frame.tokens[0]
			if len(frame.tokens) > 1 {
				stack[n-1].tokens = frame.tokens[1:]
			} else {
				stack = stack[:n-1]
			}

			if visited[tok.ID] {
				continue
			}
			visited[tok.ID] = true
			if !yield(tok) {
				return
			}

			if int(tok.ID) < len(it.arena) && it.arena[tok.ID] != nil {
				for _, pat := range it.arena[tok.ID].Children {
					push(pat)
				}
			}
		}
	}
}

// IDs adapts any token sequence to a sequence of bare TokenIDs, useful when a
// caller only needs identity and not width (e.g. building a visited-set).
func IDs(seq iter.Seq[Token]) iter.Seq[TokenID] {
	return iterutil.Map(seq, func(t Token) TokenID { return t.ID })
}

// Ancestors ranges over every vertex that transitively contains root as a
// descendant, widest first at each level (the same tie-break search.go uses
// when climbing).
func (it Iter) Ancestors(root Token) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		if int(root.ID) >= len(it.arena) || it.arena[root.ID] == nil {
			return
		}
		visited := make(map[TokenID]bool)
		frontier := []TokenID{root.ID}
		for len(frontier) > 0 {
			cur := frontier[0]
			frontier = frontier[1:]
			v := it.arena[cur]
			if v == nil {
				continue
			}
			parents := make([]TokenID, 0, len(v.Parents))
			for pid := range v.Parents {
				parents = append(parents, pid)
			}
			slices.SortFunc(parents, func(a, b TokenID) int {
				if wa, wb := v.Parents[a].Width, v.Parents[b].Width; wa != wb {
					return wb - wa
				}
				return int(a) - int(b)
			})
			for _, pid := range parents {
				if visited[pid] {
					continue
				}
				visited[pid] = true
				pv := it.arena[pid]
				if pv == nil {
					continue
				}
				if !yield(pv.Token()) {
					return
				}
				frontier = append(frontier, pid)
			}
		}
	}
}
