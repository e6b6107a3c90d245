// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package ctxgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSearchBasicMatch is scenario A: a query that exactly spans an existing
// flat composite must report EntireRootCoverage of that composite.
func TestSearchBasicMatch(t *testing.T) {
	g := New()
	a, b, c := g.InternAtom([]byte("a")), g.InternAtom([]byte("b")), g.InternAtom([]byte("c"))
	abc, err := g.InsertOrGetPattern([]Token{a, b, c})
	require.NoError(t, err)

	resp, err := Search(g, []Token{a, b, c})
	require.NoError(t, err)

	assert.True(t, resp.QueryExhausted(3))
	assert.True(t, resp.IsFullToken())
	require.NotNil(t, resp.BestMatch)
	assert.Equal(t, 3, resp.BestMatch.Width)

	cov, ok := resp.FoundPath.(EntireRootCoverage)
	require.True(t, ok)
	assert.Equal(t, abc.ID, cov.Root().ID)
}

// TestSearchMismatchRollsBackToLastConfirmedMatch is scenario B: a query that
// diverges from every stored pattern must report the widest atom/vertex
// still confirmed, not the speculative climb that failed.
func TestSearchMismatchRollsBackToLastConfirmedMatch(t *testing.T) {
	g := New()
	a, b, c := g.InternAtom([]byte("a")), g.InternAtom([]byte("b")), g.InternAtom([]byte("c"))
	_, err := g.InsertOrGetPattern([]Token{a, b})
	require.NoError(t, err)

	resp, err := Search(g, []Token{a, c})
	require.NoError(t, err)

	assert.False(t, resp.QueryExhausted(2))
	assert.Equal(t, AtomPosition(1), resp.CheckpointPosition)

	cov, ok := resp.FoundPath.(EntireRootCoverage)
	require.True(t, ok, "a mismatched query must roll back to the atom itself, not the abandoned climb")
	assert.Equal(t, a.ID, cov.Root().ID)
}

// TestSearchPrefixCoverageWhenQueryStopsShortOfRoot is a plain prefix case: a
// query that matches the start of a wider composite, but is shorter than it
// and never mismatches, must report PrefixCoverage rather than EntireRoot.
func TestSearchPrefixCoverageWhenQueryStopsShortOfRoot(t *testing.T) {
	g := New()
	a, b, c := g.InternAtom([]byte("a")), g.InternAtom([]byte("b")), g.InternAtom([]byte("c"))
	abc, err := g.InsertOrGetPattern([]Token{a, b, c})
	require.NoError(t, err)

	resp, err := Search(g, []Token{a, b})
	require.NoError(t, err)

	require.True(t, resp.QueryExhausted(2))
	assert.False(t, resp.IsFullToken())

	cov, ok := resp.FoundPath.(PrefixCoverage)
	require.True(t, ok)
	assert.Equal(t, abc.ID, cov.Root().ID)
}

// TestSearchMismatchAfterClimbTracksCursorPastCheckpoint is scenario C
// (prefix extension required): a query that fully matches an existing
// composite, then climbs into that composite's parent and makes some further
// progress there before finally mismatching, must report a cursor_position
// strictly past checkpoint_position — the speculative front's furthest
// reach, not the confirmed rollback point (spec §8 Scenario C).
func TestSearchMismatchAfterClimbTracksCursorPastCheckpoint(t *testing.T) {
	g := New()
	h, e, l, o := g.InternAtom([]byte("h")), g.InternAtom([]byte("e")), g.InternAtom([]byte("l")), g.InternAtom([]byte("o"))
	y, z, q := g.InternAtom([]byte("y")), g.InternAtom([]byte("z")), g.InternAtom([]byte("q"))

	hello, err := g.InsertOrGetPattern([]Token{h, e, l, l, o})
	require.NoError(t, err)
	_, err = g.InsertOrGetPattern([]Token{hello, y, z})
	require.NoError(t, err)

	// The query matches "hello" in full, then "y" (one atom past the
	// composite boundary), then diverges: the store has "z" there, not "q".
	resp, err := Search(g, []Token{h, e, l, l, o, y, q})
	require.NoError(t, err)

	assert.Equal(t, AtomPosition(5), resp.CheckpointPosition)
	assert.Greater(t, resp.CursorPosition, resp.CheckpointPosition)
	assert.Equal(t, AtomPosition(6), resp.CursorPosition)

	require.NotNil(t, resp.BestMatch)
	assert.Equal(t, 5, resp.BestMatch.Width)

	cov, ok := resp.FoundPath.(EntireRootCoverage)
	require.True(t, ok, "the confirmed match must still roll back to the fully-matched composite")
	assert.Equal(t, hello.ID, cov.Root().ID)
}

// TestSearchCancelReturnsPartialProgressWithoutError is scenario F: a
// cancellation source that fires immediately must stop the main loop before
// any further climbing, but still return a valid, usable Response.
func TestSearchCancelReturnsPartialProgressWithoutError(t *testing.T) {
	g := New()
	a, b := g.InternAtom([]byte("a")), g.InternAtom([]byte("b"))
	_, err := g.InsertOrGetPattern([]Token{a, b})
	require.NoError(t, err)

	resp, err := Search(g, []Token{a, b}, WithCancel(func() bool { return true }))
	require.NoError(t, err)

	assert.False(t, resp.QueryExhausted(2), "cancellation must stop short of the full query")
	require.NotNil(t, resp.BestMatch)
	assert.Equal(t, 1, resp.BestMatch.Width)
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	g := New()
	_, err := Search(g, nil)
	require.Error(t, err)
	var invalid *InvalidPatternError
	require.ErrorAs(t, err, &invalid)
}

func TestEndReasonString(t *testing.T) {
	cases := []struct {
		reason EndReason
		want   string
	}{
		{ReasonQueryExhausted, "query_exhausted"},
		{ReasonChildExhausted, "child_exhausted"},
		{ReasonMismatch, "mismatch"},
		{EndReason(99), "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.reason.String())
		})
	}
}
