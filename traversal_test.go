// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package ctxgraph

import (
	"container/heap"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdgeCursorAtRootCurrentToken(t *testing.T) {
	g := New()
	root := g.InternAtom([]byte("a"))
	ec := newEdgeCursorAtRoot(root)

	tok, err := ec.currentToken(g)
	require.NoError(t, err)
	assert.Equal(t, root.ID, tok.ID)

	off, err := ec.offsetInRoot(g)
	require.NoError(t, err)
	assert.Equal(t, 0, off)

	_, ok, err := ec.next(g)
	require.NoError(t, err)
	assert.False(t, ok, "a root-only cursor has nothing to advance into")
}

func TestEdgeCursorWalksWithinPattern(t *testing.T) {
	g := New()
	a, b, c := g.InternAtom([]byte("a")), g.InternAtom([]byte("b")), g.InternAtom([]byte("c"))
	abc, err := g.InsertOrGetPattern([]Token{a, b, c})
	require.NoError(t, err)
	v, err := g.GetVertex(abc)
	require.NoError(t, err)
	pid := v.sortedPatternIDs()[0]

	ec := enterPattern(abc, pid, 0)
	tok, err := ec.currentToken(g)
	require.NoError(t, err)
	assert.Equal(t, a.ID, tok.ID)

	ec, ok, err := ec.next(g)
	require.NoError(t, err)
	require.True(t, ok)
	tok, err = ec.currentToken(g)
	require.NoError(t, err)
	assert.Equal(t, b.ID, tok.ID)

	off, err := ec.offsetInRoot(g)
	require.NoError(t, err)
	assert.Equal(t, 1, off)

	ec, ok, err = ec.next(g)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = ec.next(g)
	require.NoError(t, err)
	assert.False(t, ok, "pattern is exhausted after its last sub-child")
}

func TestAdvanceBothFromMatchOutcomes(t *testing.T) {
	g := New()
	a, b, c := g.InternAtom([]byte("a")), g.InternAtom([]byte("b")), g.InternAtom([]byte("c"))
	ab, err := g.InsertOrGetPattern([]Token{a, b})
	require.NoError(t, err)
	v, err := g.GetVertex(ab)
	require.NoError(t, err)
	pid := v.sortedPatternIDs()[0]
	ec := enterPattern(ab, pid, 0)

	t.Run("mismatch", func(t *testing.T) {
		_, _, result, err := advanceBothFromMatch(g, ec, []Token{c}, 0)
		require.NoError(t, err)
		assert.Equal(t, AdvanceMismatch, result)
	})

	t.Run("both advanced then query exhausted", func(t *testing.T) {
		query := []Token{a, b}
		nec, nIdx, result, err := advanceBothFromMatch(g, ec, query, 0)
		require.NoError(t, err)
		assert.Equal(t, AdvanceBothAdvanced, result)
		assert.Equal(t, 1, nIdx)

		_, nIdx2, result2, err := advanceBothFromMatch(g, nec, query, nIdx)
		require.NoError(t, err)
		assert.Equal(t, AdvanceQueryExhausted, result2)
		assert.Equal(t, 2, nIdx2)
	})

	t.Run("child exhausted when query outlives the pattern", func(t *testing.T) {
		query := []Token{a, b, c}
		nec, nIdx, result, err := advanceBothFromMatch(g, ec, query, 0)
		require.NoError(t, err)
		require.Equal(t, AdvanceBothAdvanced, result)

		_, _, result2, err := advanceBothFromMatch(g, nec, query, nIdx)
		require.NoError(t, err)
		assert.Equal(t, AdvanceChildExhausted, result2)
	})
}

func TestCandidateHeapOrdersByWidthThenInsertionOrder(t *testing.T) {
	var h candidateHeap
	heap.Push(&h, parentCandidate{parent: 1, width: 2, seq: 0})
	heap.Push(&h, parentCandidate{parent: 2, width: 5, seq: 1})
	heap.Push(&h, parentCandidate{parent: 3, width: 5, seq: 2})
	heap.Push(&h, parentCandidate{parent: 4, width: 1, seq: 3})

	first := heap.Pop(&h).(parentCandidate)
	second := heap.Pop(&h).(parentCandidate)
	third := heap.Pop(&h).(parentCandidate)
	fourth := heap.Pop(&h).(parentCandidate)

	assert.Equal(t, TokenID(2), first.parent, "widest width wins")
	assert.Equal(t, TokenID(3), second.parent, "ties broken by earlier insertion sequence")
	assert.Equal(t, TokenID(1), third.parent)
	assert.Equal(t, TokenID(4), fourth.parent)
}

func TestGetParentBatchGroupsByWidthDescending(t *testing.T) {
	g := New()
	a, b := g.InternAtom([]byte("a")), g.InternAtom([]byte("b"))
	ab, err := g.InsertOrGetPattern([]Token{a, b})
	require.NoError(t, err)
	c := g.InternAtom([]byte("c"))
	abc, err := g.InsertOrGetPattern([]Token{ab, c})
	require.NoError(t, err)
	_ = abc

	batch, err := getParentBatch(g, a.ID)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, ab.ID, batch[0].parent)
	assert.Equal(t, 0, batch[0].index)
}
