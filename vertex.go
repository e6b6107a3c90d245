// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package ctxgraph

import (
	"slices"
	"strconv"
	"strings"

	"github.com/mankinskin/ctxgraph/internal/slicesutil"
)

// PatternID identifies one child-pattern within a single Vertex. It is
// opaque outside that vertex: the same numeric value in two different
// vertices names unrelated patterns (spec §3 Pattern).
type PatternID uint32

// Pattern is an ordered sequence of at least two Tokens stored under one
// PatternID in a composite Vertex's Children map. Multiple patterns on the
// same vertex are alternate decompositions of the same span (spec §3
// Vertex.children).
type Pattern []Token

// Width returns the sum of the widths of the tokens in p, i.e. the number of
// atoms this pattern covers when read left to right.
func (p Pattern) Width() int {
	w := 0
	for _, t := range p {
		w += t.Width
	}
	return w
}

// equalTokens reports whether p and other name exactly the same tokens in
// the same order, i.e. they are the same decomposition.
func (p Pattern) equalTokens(other Pattern) bool {
	return slices.Equal(p, other)
}

// ChildLocation addresses one occurrence of a token inside one child-pattern
// of one parent vertex: (parent_vertex, pattern_id, sub_index) in spec §3.
type ChildLocation struct {
	Parent    TokenID
	PatternID PatternID
	SubIndex  int
}

// PatternLocation is a ChildLocation with the parent vertex left implicit
// (it is always the ParentEntry's own key) — spec §3 "the set of
// (pattern-id, position-in-pattern) locations".
type PatternLocation struct {
	PatternID PatternID
	Index     int
}

// ParentEntry is the inverse record stored on a child token for one parent
// vertex it appears in: every (pattern, position) the child occupies in that
// parent, plus the parent's own width cached for ordering (spec §3
// Vertex.parents).
type ParentEntry struct {
	Width     int
	Locations []PatternLocation
}

func (pe *ParentEntry) hasLocation(pid PatternID, idx int) bool {
	for _, l := range pe.Locations {
		if l.PatternID == pid && l.Index == idx {
			return true
		}
	}
	return false
}

// VertexKey is the content address of a Vertex (spec §3 Vertex.key). Atoms
// are keyed by their externally supplied byte key. Composites are keyed by
// the length-prefixed concatenation of the atom keys they flatten to, built
// from their immediate children's keys (an atom child contributes its own
// key, a composite child its already-flattened sequence). Because of that
// flattening, concatenation is associative: any two
// alternate decompositions of the same atom span (e.g. [a,bc] and [ab,c] for
// "abc") compute the identical composite key, regardless of where the split
// falls (spec §8 property 9, scenario E/D). A disjoint "A:"/"C:" prefix
// keeps atom keys from ever colliding with composite keys.
type VertexKey struct {
	content string
}

func atomKey(external []byte) VertexKey {
	return VertexKey{content: "A:" + string(external)}
}

// compositeKeyFromChildKeys derives the canonical key for a composite from
// the ordered list of its immediate children's own VertexKey content. A
// composite child's content is spliced in without its "C:" prefix (it is
// already a length-prefixed atom-key sequence), so the result depends only on
// the flattened atom sequence.
func compositeKeyFromChildKeys(childKeys []string) VertexKey {
	sb := strings.Builder{}
	sb.WriteString("C:")
	for _, k := range childKeys {
		if rest, ok := strings.CutPrefix(k, "C:"); ok {
			sb.WriteString(rest)
			continue
		}
		sb.WriteString(strconv.Itoa(len(k)))
		sb.WriteByte(':')
		sb.WriteString(k)
	}
	return VertexKey{content: sb.String()}
}

// Vertex is the stored record behind a Token (spec §3). Atoms have an empty
// Children map; composites have at least one child-pattern. Children only
// ever grows by appending alternate decompositions (never mutated or
// removed); Parents only ever grows (spec §3 Lifecycle).
type Vertex struct {
	ID       TokenID
	Key      VertexKey
	Width    int
	Children map[PatternID]Pattern
	Parents  map[TokenID]*ParentEntry
	nextPID  PatternID
}

func newAtomVertex(id TokenID, key VertexKey) *Vertex {
	return &Vertex{
		ID:      id,
		Key:     key,
		Width:   1,
		Parents: make(map[TokenID]*ParentEntry),
	}
}

func newCompositeVertex(id TokenID, key VertexKey, width int) *Vertex {
	return &Vertex{
		ID:       id,
		Key:      key,
		Width:    width,
		Children: make(map[PatternID]Pattern),
		Parents:  make(map[TokenID]*ParentEntry),
	}
}

// IsAtom reports whether v has width 1 and no decompositions.
func (v *Vertex) IsAtom() bool {
	return len(v.Children) == 0
}

// Token returns the Token handle for this vertex.
func (v *Vertex) Token() Token {
	return Token{ID: v.ID, Width: v.Width}
}

// hasPattern reports whether seq already appears verbatim as a child-pattern
// of v, used to keep insertion idempotent (spec §4.1 step 1, §8 property 2).
func (v *Vertex) hasPattern(seq Pattern) (PatternID, bool) {
	for pid, p := range v.Children {
		if p.equalTokens(seq) {
			return pid, true
		}
	}
	return 0, false
}

// addPattern appends seq as a new alternate child-pattern and returns its
// PatternID. Callers must have already validated the width sum and
// uniqueness.
func (v *Vertex) addPattern(seq Pattern) PatternID {
	pid := v.nextPID
	v.nextPID++
	clone := slices.Clone(seq)
	if v.Children == nil {
		v.Children = make(map[PatternID]Pattern)
	}
	v.Children[pid] = clone
	return pid
}

// sortedPatternIDs returns this vertex's pattern ids in ascending order, the
// deterministic tie-break spec §4.4 requires ("stable pattern-id") whenever
// multiple decompositions of equal width are considered.
func (v *Vertex) sortedPatternIDs() []PatternID {
	ids := make([]PatternID, 0, len(v.Children))
	for pid := range v.Children {
		ids = append(ids, pid)
	}
	slices.Sort(ids)
	return ids
}

// prefixChild returns the first sub-child token of the given child-pattern
// along with its ChildLocation, used by Graph.PrefixChildren.
func (v *Vertex) prefixChild(pid PatternID) (Token, ChildLocation) {
	p := v.Children[pid]
	return p[0], ChildLocation{Parent: v.ID, PatternID: pid, SubIndex: 0}
}

// postfixChild is the Postfix analogue of prefixChild: the last sub-child.
func (v *Vertex) postfixChild(pid PatternID) (Token, ChildLocation) {
	p := v.Children[pid]
	i := len(p) - 1
	return p[i], ChildLocation{Parent: v.ID, PatternID: pid, SubIndex: i}
}

// patternsEqualUnsortedKeys is a thin wrapper kept to exercise
// internal/slicesutil from the vertex layer: it is used by the join engine
// to check, without caring about ordering, whether the set of patterns
// surviving a rebuild is identical to the set that existed before it (spec
// §8 property 8, alternate-decomposition preservation).
func patternsEqualUnsortedKeys(a, b []PatternID) bool {
	return slicesutil.EqualUnsorted(a, b)
}
