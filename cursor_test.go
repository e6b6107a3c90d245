// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package ctxgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorStateString(t *testing.T) {
	cases := []struct {
		state CursorState
		want  string
	}{
		{StateMatched, "matched"},
		{StateCandidate, "candidate"},
		{StateMismatched, "mismatched"},
		{CursorState(99), "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.state.String())
		})
	}
}

func TestNewCursorStartsAtRootAsCandidate(t *testing.T) {
	g := New()
	root := g.InternAtom([]byte("a"))
	c := NewCursor[StartRole](root, 0)

	assert.Equal(t, StateCandidate, c.State)
	leaf, err := c.LeafToken(g)
	require.NoError(t, err)
	assert.Equal(t, root.ID, leaf.ID)
}

func TestCheckpointedToCandidateDiscardsCurrent(t *testing.T) {
	ck := NewCheckpointed(5)
	ck.Current = 9

	cand := ck.ToCandidate()
	assert.Equal(t, 5, cand.Current)
	assert.Equal(t, 5, cand.Checkpoint)
	assert.Equal(t, 9, ck.Current, "ToCandidate must not mutate the receiver")
}

func TestToMatchedCommitsCurrent(t *testing.T) {
	ck := NewCheckpointed(1)
	ck.Current = 7

	matched := ToMatched(ck)
	assert.Equal(t, 7, matched.Current)
	assert.Equal(t, 7, matched.Checkpoint)
}

func TestToMismatchedReturnsCheckpoint(t *testing.T) {
	ck := NewCheckpointed(1)
	ck.Current = 42

	assert.Equal(t, 1, ToMismatched(ck))
}
