// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package ctxgraph

import lru "github.com/hashicorp/golang-lru/v2"

// BottomUpEntry records, for one parent vertex reached while climbing from a
// query-matched token, the atom offsets (root-relative) at which that parent
// must be split to admit the match's boundary (spec §3 TraceCache.bottom_up).
type BottomUpEntry struct {
	Splits []AtomPosition
}

// hasSplit reports whether off is already recorded, keeping split recording
// idempotent (spec §4.5 "pre-computed, deduplicated").
func (e *BottomUpEntry) hasSplit(off AtomPosition) bool {
	for _, s := range e.Splits {
		if s == off {
			return true
		}
	}
	return false
}

// recordSplit appends off if not already present.
func (e *BottomUpEntry) recordSplit(off AtomPosition) {
	if !e.hasSplit(off) {
		e.Splits = append(e.Splits, off)
	}
}

// TopDownEntry records the single descent already taken into one child
// vertex from its parent during this session (spec §3 TraceCache.top_down).
type TopDownEntry struct {
	Location ChildLocation
}

// VertexCache is the per-vertex half of a TraceCache: the parents reached by
// climbing from this vertex, and the descents already taken into its
// children (spec §3 VertexCache).
type VertexCache struct {
	BottomUp map[TokenID]*BottomUpEntry
	topDown  *lru.Cache[TokenID, TopDownEntry]
	// topDownUnbounded backs top_down when no WithTopDownCacheLimit option
	// was supplied; exactly one of topDown/topDownUnbounded is non-nil.
	topDownUnbounded map[TokenID]TopDownEntry
}

func newVertexCache(topDownLimit int) *VertexCache {
	vc := &VertexCache{BottomUp: make(map[TokenID]*BottomUpEntry)}
	if topDownLimit > 0 {
		c, err := lru.New[TokenID, TopDownEntry](topDownLimit)
		if err != nil {
			// Only returns an error for a non-positive size, excluded above.
			panic(err)
		}
		vc.topDown = c
	} else {
		vc.topDownUnbounded = make(map[TokenID]TopDownEntry)
	}
	return vc
}

func (vc *VertexCache) topDownGet(child TokenID) (TopDownEntry, bool) {
	if vc.topDown != nil {
		return vc.topDown.Get(child)
	}
	e, ok := vc.topDownUnbounded[child]
	return e, ok
}

func (vc *VertexCache) topDownPut(child TokenID, e TopDownEntry) {
	if vc.topDown != nil {
		vc.topDown.Add(child, e)
		return
	}
	vc.topDownUnbounded[child] = e
}

func (vc *VertexCache) bottomUpEntry(parent TokenID) *BottomUpEntry {
	e, ok := vc.BottomUp[parent]
	if !ok {
		e = &BottomUpEntry{}
		vc.BottomUp[parent] = e
	}
	return e
}

// TraceCache is the session-local memoization threaded, by mutable
// reference, through one search and the split/join that may follow it (spec
// §3 TraceCache, §9 Design Notes "single-owner value threaded through the
// session; never globally mutable"). A TraceCache must never be reused
// across independent sessions or shared between concurrent Graph mutations.
type TraceCache struct {
	byToken           map[TokenID]*VertexCache
	topDownCacheLimit int
}

// NewTraceCache creates an empty TraceCache. topDownCacheLimit bounds each
// vertex's top_down memoization to an LRU of that size when > 0 (see
// WithTopDownCacheLimit); zero means unbounded, the default.
func NewTraceCache(topDownCacheLimit int) *TraceCache {
	return &TraceCache{
		byToken:           make(map[TokenID]*VertexCache),
		topDownCacheLimit: topDownCacheLimit,
	}
}

func (tc *TraceCache) vertexCache(tok TokenID) *VertexCache {
	vc, ok := tc.byToken[tok]
	if !ok {
		vc = newVertexCache(tc.topDownCacheLimit)
		tc.byToken[tok] = vc
	}
	return vc
}

// RecordSplit memoizes that vertex must be decomposable at offset (spec §4.5
// "Splits are pre-computed, deduplicated, and cached in the TraceCache").
func (tc *TraceCache) RecordSplit(vertex TokenID, offset AtomPosition) {
	tc.vertexCache(vertex).bottomUpEntry(vertex).recordSplit(offset)
}

// Splits returns the recorded split offsets for vertex, or nil if none.
func (tc *TraceCache) Splits(vertex TokenID) []AtomPosition {
	vc, ok := tc.byToken[vertex]
	if !ok {
		return nil
	}
	e, ok := vc.BottomUp[vertex]
	if !ok {
		return nil
	}
	return e.Splits
}

// RecordBottomUp memoizes that climbing from child reached parent, inducing
// a split of parent at offset (root-relative atoms).
func (tc *TraceCache) RecordBottomUp(child, parent TokenID, offset AtomPosition) {
	tc.vertexCache(child).bottomUpEntry(parent).recordSplit(offset)
	tc.RecordSplit(parent, offset)
}

// BottomUp returns the BottomUpEntry recorded for parent as reached from
// child, or nil and false if no such climb has been memoized.
func (tc *TraceCache) BottomUp(child, parent TokenID) (*BottomUpEntry, bool) {
	vc, ok := tc.byToken[child]
	if !ok {
		return nil, false
	}
	e, ok := vc.BottomUp[parent]
	return e, ok
}

// RecordTopDown memoizes that the descent from parent into child via loc has
// already been taken this session.
func (tc *TraceCache) RecordTopDown(parent, child TokenID, loc ChildLocation) {
	tc.vertexCache(parent).topDownPut(child, TopDownEntry{Location: loc})
}

// TopDown returns the previously recorded descent from parent into child, if
// any.
func (tc *TraceCache) TopDown(parent, child TokenID) (TopDownEntry, bool) {
	vc, ok := tc.byToken[parent]
	if !ok {
		return TopDownEntry{}, false
	}
	return vc.topDownGet(child)
}
