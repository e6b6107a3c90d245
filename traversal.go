// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package ctxgraph

import "container/heap"

// SearchKind selects the direction policy a traversal walks patterns in.
// The engine currently only drives KindForward (left-to-right, matching
// spec §4.4's query-prefix contract); the type is kept distinct from a bare
// bool so a future postfix-matching mode (walking patterns right-to-left for
// suffix queries) is an additive change, not a signature break.
type SearchKind uint8

const (
	KindForward SearchKind = iota
)

// edgeCursor is the index-side cursor of a RootCursor: a position within one
// child-pattern of one vertex, the "stand at a token, descend to its
// first/last sub-child" primitive of spec §4.3 specialized to walking along
// a single already-chosen pattern edge (the radix-tree analogue: once on an
// edge, advancing means moving along that edge's key, not re-descending).
type edgeCursor struct {
	Root      Token
	AtRoot    bool // true: no pattern chosen yet, current token is Root itself
	PatternID PatternID
	SubIndex  int
}

// newEdgeCursorAtRoot creates a cursor sitting on root with no pattern
// entered yet, used when root is an atom or has not been matched beyond its
// own identity.
func newEdgeCursorAtRoot(root Token) edgeCursor {
	return edgeCursor{Root: root, AtRoot: true}
}

// enterPattern moves the cursor onto pid at index, the form used once a
// parent-exploration step has located root's next sibling to compare.
func enterPattern(root Token, pid PatternID, index int) edgeCursor {
	return edgeCursor{Root: root, PatternID: pid, SubIndex: index}
}

// currentToken resolves the token this cursor is presently standing on.
func (e edgeCursor) currentToken(g *Graph) (Token, error) {
	if e.AtRoot {
		return e.Root, nil
	}
	v, err := g.GetVertex(e.Root)
	if err != nil {
		return Token{}, err
	}
	pat, ok := v.Children[e.PatternID]
	if !ok {
		return Token{}, &InsertInvariantViolationError{Reason: "edge cursor references a dropped pattern id"}
	}
	if e.SubIndex < 0 || e.SubIndex >= len(pat) {
		return Token{}, &InsertInvariantViolationError{Reason: "edge cursor sub-index out of range"}
	}
	return pat[e.SubIndex], nil
}

// offsetInRoot returns the atom offset, relative to Root, of the cursor's
// current token: the sum of the widths of every sibling before SubIndex in
// the current pattern.
func (e edgeCursor) offsetInRoot(g *Graph) (int, error) {
	if e.AtRoot {
		return 0, nil
	}
	v, err := g.GetVertex(e.Root)
	if err != nil {
		return 0, err
	}
	pat := v.Children[e.PatternID]
	off := 0
	for i := 0; i < e.SubIndex && i < len(pat); i++ {
		off += pat[i].Width
	}
	return off, nil
}

// next advances the cursor by one sub-child within the same pattern. ok is
// false when the pattern is exhausted (spec §4.3 ChildExhausted); the
// cursor is returned unchanged in that case.
func (e edgeCursor) next(g *Graph) (edgeCursor, bool, error) {
	if e.AtRoot {
		return e, false, nil
	}
	v, err := g.GetVertex(e.Root)
	if err != nil {
		return e, false, err
	}
	pat := v.Children[e.PatternID]
	if e.SubIndex+1 >= len(pat) {
		return e, false, nil
	}
	e.SubIndex++
	return e, true, nil
}

// AdvanceCursorsResult classifies the outcome of one comparison step between
// the query cursor and the index cursor (spec §4.3 RootCursor transitions).
type AdvanceCursorsResult uint8

const (
	AdvanceBothAdvanced AdvanceCursorsResult = iota
	AdvanceQueryExhausted
	AdvanceChildExhausted
	AdvanceMismatch
)

// advanceBothFromMatch compares query[queryIdx] against ec's current token.
// On equality it advances both cursors one step and reports which of
// BothAdvanced/QueryExhausted/ChildExhausted applies; on inequality it
// reports Mismatch without advancing anything (spec §4.3
// advance_both_from_match).
func advanceBothFromMatch(g *Graph, ec edgeCursor, query []Token, queryIdx int) (edgeCursor, int, AdvanceCursorsResult, error) {
	if ec.AtRoot {
		// A bare root cursor has no pattern entered yet, so there is nothing
		// left to compare within it; climbing to a parent is always required
		// before the next query token can be checked against a sibling.
		return ec, queryIdx, AdvanceChildExhausted, nil
	}
	cur, err := ec.currentToken(g)
	if err != nil {
		return ec, queryIdx, AdvanceMismatch, err
	}
	if cur.ID != query[queryIdx].ID {
		return ec, queryIdx, AdvanceMismatch, nil
	}
	queryIdx++
	if queryIdx == len(query) {
		return ec, queryIdx, AdvanceQueryExhausted, nil
	}
	nec, ok, err := ec.next(g)
	if err != nil {
		return ec, queryIdx, AdvanceMismatch, err
	}
	if !ok {
		return ec, queryIdx, AdvanceChildExhausted, nil
	}
	return nec, queryIdx, AdvanceBothAdvanced, nil
}

// iterateUntilConclusion repeats advanceBothFromMatch until it reaches
// anything other than BothAdvanced, i.e. until a conclusive EndReason-worthy
// outcome (spec §4.3 iterate_until_conclusion).
func iterateUntilConclusion(g *Graph, ec edgeCursor, query []Token, queryIdx int) (edgeCursor, int, AdvanceCursorsResult, error) {
	for {
		nec, nIdx, result, err := advanceBothFromMatch(g, ec, query, queryIdx)
		if err != nil {
			return ec, queryIdx, result, err
		}
		if result != AdvanceBothAdvanced {
			return nec, nIdx, result, nil
		}
		ec, queryIdx = nec, nIdx
	}
}

// parentCandidate is one (parent, pattern, location-of-child) to try
// extending the index cursor through, discovered while climbing from a
// ChildExhausted or Mismatched vertex (spec §4.4 step 3 "parent
// exploration").
type parentCandidate struct {
	parent    TokenID
	width     int
	patternID PatternID
	index     int // the exhausted/mismatched child's position within parent's pattern
	seq       uint64
}

// candidateHeap is a container/heap.Interface max-heap ordered by parent
// width descending, with insertion-order tie-breaking — the same shape as
// an audio-mixer's priority-by-urgency scheduling queue, specialized to
// spec §4.4's "BinaryHeap by parent width, descending" tie-break rule.
type candidateHeap []parentCandidate

func (h candidateHeap) Len() int { return len(h) }

func (h candidateHeap) Less(i, j int) bool {
	if h[i].width != h[j].width {
		return h[i].width > h[j].width
	}
	return h[i].seq < h[j].seq
}

func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x any) {
	*h = append(*h, x.(parentCandidate))
}

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// ParentBatch is the set of candidates sharing the widest parent width seen
// at the head of the queue, exploration's natural unit of work (spec §4.3
// get_parent_batch "groups by parent width for widest-first exploration").
type ParentBatch struct {
	Width      int
	Candidates []parentCandidate
}

// getParentBatch reads child's parent index and returns every (parent,
// pattern, index) location of child within a parent vertex, grouped by
// width, widest first; pattern-id ordering within a width is left to the
// caller's heap so ties stay deterministic via insertion sequence.
func getParentBatch(g *Graph, child TokenID) ([]parentCandidate, error) {
	ids, err := g.parentsSortedByWidthDesc(Token{ID: child})
	if err != nil {
		return nil, err
	}
	v, err := g.GetVertex(Token{ID: child})
	if err != nil {
		return nil, err
	}
	var out []parentCandidate
	for _, pid := range ids {
		entry := v.Parents[pid]
		for _, loc := range entry.Locations {
			out = append(out, parentCandidate{
				parent:    pid,
				width:     entry.Width,
				patternID: loc.PatternID,
				index:     loc.Index,
			})
		}
	}
	return out, nil
}

// pushCandidates enqueues every candidate in batch onto q, stamping each
// with the next insertion sequence number so same-width candidates keep
// deterministic FIFO tie-breaking.
func pushCandidates(q *candidateHeap, batch []parentCandidate, nextSeq *uint64) {
	for _, c := range batch {
		c.seq = *nextSeq
		*nextSeq++
		heap.Push(q, c)
	}
}
