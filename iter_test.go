// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package ctxgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect[T any](seq func(func(T) bool)) []T {
	var out []T
	seq(func(v T) bool {
		out = append(out, v)
		return true
	})
	return out
}

func TestIterAllIncludesAtomsAndComposites(t *testing.T) {
	g := New()
	a, b := g.InternAtom([]byte("a")), g.InternAtom([]byte("b"))
	ab, err := g.InsertOrGetPattern([]Token{a, b})
	require.NoError(t, err)

	all := collect(NewIter(g).All())
	ids := make(map[TokenID]bool)
	for _, tok := range all {
		ids[tok.ID] = true
	}
	assert.True(t, ids[a.ID])
	assert.True(t, ids[b.ID])
	assert.True(t, ids[ab.ID])
}

func TestIterAtomsExcludesComposites(t *testing.T) {
	g := New()
	a, b := g.InternAtom([]byte("a")), g.InternAtom([]byte("b"))
	ab, err := g.InsertOrGetPattern([]Token{a, b})
	require.NoError(t, err)

	atoms := collect(NewIter(g).Atoms())
	for _, tok := range atoms {
		assert.NotEqual(t, ab.ID, tok.ID)
	}
	assert.Len(t, atoms, 2)
}

func TestIterDescendantsVisitsEachTokenOnce(t *testing.T) {
	g := New()
	a, b, c := g.InternAtom([]byte("a")), g.InternAtom([]byte("b")), g.InternAtom([]byte("c"))
	bc, err := g.InsertOrGetPattern([]Token{b, c})
	require.NoError(t, err)
	abc, err := g.InsertOrGetPattern([]Token{a, bc})
	require.NoError(t, err)

	desc := collect(NewIter(g).Descendants(abc))
	ids := make(map[TokenID]int)
	for _, tok := range desc {
		ids[tok.ID]++
	}
	assert.Equal(t, 1, ids[a.ID])
	assert.Equal(t, 1, ids[bc.ID])
	assert.Equal(t, 1, ids[b.ID])
	assert.Equal(t, 1, ids[c.ID])
	assert.NotContains(t, ids, abc.ID, "a root is not its own descendant")
}

func TestIterDescendantsOfUnknownTokenYieldsNothing(t *testing.T) {
	g := New()
	desc := collect(NewIter(g).Descendants(Token{ID: 999, Width: 1}))
	assert.Empty(t, desc)
}

func TestIterAncestorsWalksUpToEveryParent(t *testing.T) {
	g := New()
	a, b, c := g.InternAtom([]byte("a")), g.InternAtom([]byte("b")), g.InternAtom([]byte("c"))
	bc, err := g.InsertOrGetPattern([]Token{b, c})
	require.NoError(t, err)
	abc, err := g.InsertOrGetPattern([]Token{a, bc})
	require.NoError(t, err)

	anc := collect(NewIter(g).Ancestors(c))
	ids := make(map[TokenID]bool)
	for _, tok := range anc {
		ids[tok.ID] = true
	}
	assert.True(t, ids[bc.ID])
	assert.True(t, ids[abc.ID])
}

func TestIterSnapshotDoesNotSeeLaterMutations(t *testing.T) {
	g := New()
	a := g.InternAtom([]byte("a"))
	it := NewIter(g)
	g.InternAtom([]byte("b"))

	all := collect(it.All())
	assert.Len(t, all, 1)
	assert.Equal(t, a.ID, all[0].ID)
}

func TestIDsAdaptsTokenSequenceToBareIDs(t *testing.T) {
	g := New()
	a, b := g.InternAtom([]byte("a")), g.InternAtom([]byte("b"))
	_, err := g.InsertOrGetPattern([]Token{a, b})
	require.NoError(t, err)

	ids := collect(IDs(NewIter(g).Atoms()))
	assert.ElementsMatch(t, []TokenID{a.ID, b.ID}, ids)
}

func TestIterRangeFunctionStopsEarly(t *testing.T) {
	g := New()
	g.InternAtom([]byte("a"))
	g.InternAtom([]byte("b"))
	g.InternAtom([]byte("c"))

	count := 0
	for range NewIter(g).All() {
		count++
		if count == 1 {
			break
		}
	}
	assert.Equal(t, 1, count)
}
