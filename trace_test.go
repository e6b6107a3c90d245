// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package ctxgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSplitIsDeduplicated(t *testing.T) {
	tc := NewTraceCache(0)
	tc.RecordSplit(1, 3)
	tc.RecordSplit(1, 3)
	tc.RecordSplit(1, 5)

	assert.ElementsMatch(t, []AtomPosition{3, 5}, tc.Splits(1))
}

func TestSplitsOnUnknownVertexIsNil(t *testing.T) {
	tc := NewTraceCache(0)
	assert.Nil(t, tc.Splits(42))
}

func TestRecordBottomUpAlsoRecordsSplitOnParent(t *testing.T) {
	tc := NewTraceCache(0)
	tc.RecordBottomUp(10, 20, 4)

	entry, ok := tc.BottomUp(10, 20)
	require.True(t, ok)
	assert.Equal(t, []AtomPosition{4}, entry.Splits)
	assert.Equal(t, []AtomPosition{4}, tc.Splits(20))
}

func TestBottomUpMissReportsNotFound(t *testing.T) {
	tc := NewTraceCache(0)
	_, ok := tc.BottomUp(1, 2)
	assert.False(t, ok)
}

func TestRecordTopDownKeysByChildNotParent(t *testing.T) {
	tc := NewTraceCache(0)
	loc := ChildLocation{Parent: 5, PatternID: 1, SubIndex: 0}
	tc.RecordTopDown(5, 7, loc)

	got, ok := tc.TopDown(5, 7)
	require.True(t, ok)
	assert.Equal(t, loc, got.Location)

	// A different child under the same parent must not collide.
	_, ok = tc.TopDown(5, 8)
	assert.False(t, ok)
}

func TestTopDownCacheRespectsLRULimit(t *testing.T) {
	tc := NewTraceCache(1)
	tc.RecordTopDown(1, 100, ChildLocation{Parent: 1, SubIndex: 0})
	tc.RecordTopDown(1, 200, ChildLocation{Parent: 1, SubIndex: 1})

	// With capacity 1, the first entry must have been evicted.
	_, ok := tc.TopDown(1, 100)
	assert.False(t, ok)
	_, ok = tc.TopDown(1, 200)
	assert.True(t, ok)
}
