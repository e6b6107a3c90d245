// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package ctxgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportProducesOneVertexPerToken(t *testing.T) {
	g := New()
	a, b := g.InternAtom([]byte("a")), g.InternAtom([]byte("b"))
	ab, err := g.InsertOrGetPattern([]Token{a, b})
	require.NoError(t, err)

	dg, err := g.Export()
	require.NoError(t, err)

	order, err := dg.Order()
	require.NoError(t, err)
	assert.Equal(t, 3, order, "a, b, and ab must each be one vertex")

	_, err = dg.Edge(ab.ID, a.ID)
	require.NoError(t, err)
	_, err = dg.Edge(ab.ID, b.ID)
	require.NoError(t, err)
}

func TestExportDeduplicatesRepeatedChildWithinPattern(t *testing.T) {
	g := New()
	a := g.InternAtom([]byte("a"))
	aa, err := g.InsertOrGetPattern([]Token{a, a})
	require.NoError(t, err)

	dg, err := g.Export()
	require.NoError(t, err)

	size, err := dg.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size, "a repeated child must still be exactly one edge")
	_ = aa
}

func TestShortestDescentPathFindsChildChain(t *testing.T) {
	g := New()
	a, b, c := g.InternAtom([]byte("a")), g.InternAtom([]byte("b")), g.InternAtom([]byte("c"))
	bc, err := g.InsertOrGetPattern([]Token{b, c})
	require.NoError(t, err)
	abc, err := g.InsertOrGetPattern([]Token{a, bc})
	require.NoError(t, err)

	path, err := g.ShortestDescentPath(abc.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []TokenID{abc.ID, bc.ID, c.ID}, path)
}

func TestShortestDescentPathUnreachableErrors(t *testing.T) {
	g := New()
	a, b := g.InternAtom([]byte("a")), g.InternAtom([]byte("b"))

	_, err := g.ShortestDescentPath(a.ID, b.ID)
	require.Error(t, err, "two unrelated atoms must have no descent path between them")
}
