// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package ctxgraph

import (
	"slices"
	"sync"
)

// Graph is a contextual hypergraph store: an arena of vertices addressed by
// TokenID, plus a content-address index from VertexKey back to TokenID.
//
// Graph is the single owner of every vertex it returns a Token for; a Token
// is a handle whose lifetime equals the Graph's (spec §3 Ownership). Reads
// (LookupByKey, Search, PrefixChildren, PostfixChildren) may run concurrently
// with each other; any mutation (InsertOrGetPattern, AddAlternatePattern, and
// the split+join sequence in split.go/join.go) must hold the exclusive lock
// for its entire duration, mirroring the single-writer/multi-reader contract
// fox.Tree documents on Handle/Update (spec §5).
type Graph struct {
	mu       sync.RWMutex
	arena    []*Vertex // arena[0] is never used; TokenID 0 is invalid.
	byKey    map[VertexKey]TokenID
	observer Observer
}

// New creates an empty Graph.
func New(opts ...GraphOption) *Graph {
	g := &Graph{
		arena: make([]*Vertex, 1, 64), // reserve slot 0 as invalidTokenID
		byKey: make(map[VertexKey]TokenID, 64),
	}
	cfg := defaultGraphConfig()
	for _, o := range opts {
		o.applyGraph(&cfg)
	}
	g.observer = cfg.observer
	if g.observer == nil {
		g.observer = NoopObserver{}
	}
	if cfg.arenaCapacity > 0 {
		g.arena = make([]*Vertex, 1, cfg.arenaCapacity+1)
	}
	return g
}

// vertexAt returns the vertex for id without locking; callers must already
// hold mu (read or write).
func (g *Graph) vertexAt(id TokenID) (*Vertex, error) {
	if id == invalidTokenID || int(id) >= len(g.arena) || g.arena[id] == nil {
		return nil, &UnknownTokenError{Token: id}
	}
	return g.arena[id], nil
}

// GetVertex returns the vertex behind tok. The returned *Vertex is the same
// pointer the Graph owns, not a copy: the caller must not mutate it, and it
// reflects mutations that writers make after GetVertex returns.
// This is the read-side counterpart to the internal vertexAt+write pattern
// used by InsertOrGetPattern/AddAlternatePattern.
func (g *Graph) GetVertex(tok Token) (*Vertex, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.vertexAt(tok.ID)
}

// LookupByKey returns the Token already registered under key, if any.
func (g *Graph) LookupByKey(key VertexKey) (Token, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.byKey[key]
	if !ok {
		return Token{}, false
	}
	return g.arena[id].Token(), true
}

func (g *Graph) allocate(v *Vertex) TokenID {
	id := TokenID(len(g.arena))
	v.ID = id
	g.arena = append(g.arena, v)
	g.byKey[v.Key] = id
	return id
}

// InternAtom returns the existing atom for externalKey, or creates a new
// width-1 vertex for it (spec §4.1 intern_atom — total, never fails).
func (g *Graph) InternAtom(externalKey []byte) Token {
	key := atomKey(externalKey)

	g.mu.RLock()
	if id, ok := g.byKey[key]; ok {
		tok := g.arena[id].Token()
		g.mu.RUnlock()
		return tok
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()
	if id, ok := g.byKey[key]; ok {
		return g.arena[id].Token()
	}
	v := newAtomVertex(invalidTokenID, key)
	g.allocate(v)
	g.observer.OnVertexCreated(v.ID, true)
	return v.Token()
}

// InsertOrGet is the external-interface name for InsertOrGetPattern (spec §8
// Graph.InsertOrGet): a single composite token always needs at least two
// children, so the two identifiers cover the same operation.
func (g *Graph) InsertOrGet(seq []Token) (Token, error) {
	return g.InsertOrGetPattern(seq)
}

// InsertOrGetPattern implements spec §4.1 insert_or_get_pattern: it requires
// len(seq) >= 2, computes the canonical key of seq, and either appends seq as
// a new alternate pattern to the existing vertex with that key (unless it is
// already present, in which case this is a no-op) or creates a brand new
// composite vertex for it. The caller must hold no lock; InsertOrGetPattern
// takes the write lock for its whole duration.
func (g *Graph) InsertOrGetPattern(seq []Token) (Token, error) {
	if len(seq) < 2 {
		return Token{}, &InvalidPatternError{Len: len(seq), Reason: "pattern must have at least 2 tokens"}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	childKeys := make([]string, len(seq))
	for i, t := range seq {
		v, err := g.vertexAt(t.ID)
		if err != nil {
			return Token{}, err
		}
		childKeys[i] = v.Key.content
	}

	width := Pattern(seq).Width()
	probeKey := compositeKeyFromChildKeys(childKeys)

	if id, ok := g.byKey[probeKey]; ok {
		v := g.arena[id]
		if v.Width != width {
			return Token{}, &WidthConflictError{Vertex: id, WantWidth: v.Width, GotWidth: width}
		}
		if _, exists := v.hasPattern(seq); exists {
			return v.Token(), nil
		}
		return g.graftPattern(v, seq), nil
	}

	v := newCompositeVertex(invalidTokenID, probeKey, width)
	g.allocate(v)
	pid := v.addPattern(seq)
	g.linkPatternParents(v, pid, seq)
	g.observer.OnVertexCreated(v.ID, false)
	return v.Token(), nil
}

// AddAlternatePattern implements spec §4.1 add_alternate_pattern: it grafts a
// second (or later) decomposition onto an existing composite vertex. Pre:
// sum of seq's widths must equal v.Width.
func (g *Graph) AddAlternatePattern(tok Token, seq []Token) (PatternID, error) {
	if len(seq) < 2 {
		return 0, &InvalidPatternError{Len: len(seq), Reason: "pattern must have at least 2 tokens"}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	v, err := g.vertexAt(tok.ID)
	if err != nil {
		return 0, err
	}
	for _, t := range seq {
		if _, err := g.vertexAt(t.ID); err != nil {
			return 0, err
		}
	}
	width := Pattern(seq).Width()
	if width != v.Width {
		return 0, &WidthConflictError{Vertex: tok.ID, WantWidth: v.Width, GotWidth: width}
	}
	if pid, exists := v.hasPattern(seq); exists {
		return pid, nil
	}
	return v.addPattern(seq), g.linkPatternParentsErr(v, seq)
}

// graftPattern appends seq to v (v must already have the right width) and
// wires the parent index; callers must already hold the write lock.
func (g *Graph) graftPattern(v *Vertex, seq []Token) Token {
	pid := v.addPattern(seq)
	g.linkPatternParents(v, pid, seq)
	return v.Token()
}

func (g *Graph) linkPatternParents(v *Vertex, pid PatternID, seq []Token) {
	for i, t := range seq {
		child := g.arena[t.ID]
		pe, ok := child.Parents[v.ID]
		if !ok {
			pe = &ParentEntry{Width: v.Width}
			child.Parents[v.ID] = pe
		}
		loc := PatternLocation{PatternID: pid, Index: i}
		if !pe.hasLocation(loc.PatternID, loc.Index) {
			pe.Locations = append(pe.Locations, loc)
		}
	}
}

// linkPatternParentsErr mirrors linkPatternParents but is used right after
// AddAlternatePattern already appended the pattern, so it needs to discover
// the PatternID it was assigned; kept as a distinct, simple helper rather
// than threading the id back through addPattern's return in two different
// shapes.
func (g *Graph) linkPatternParentsErr(v *Vertex, seq []Token) error {
	pid, ok := v.hasPattern(seq)
	if !ok {
		return &InsertInvariantViolationError{Reason: "pattern vanished immediately after being added"}
	}
	g.linkPatternParents(v, pid, seq)
	return nil
}

// PrefixChildren returns, for each child-pattern of tok, the first sub-child
// token and the ChildLocation addressing it (spec §4.1).
func (g *Graph) PrefixChildren(tok Token) ([]Token, []ChildLocation, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, err := g.vertexAt(tok.ID)
	if err != nil {
		return nil, nil, err
	}
	ids := v.sortedPatternIDs()
	toks := make([]Token, 0, len(ids))
	locs := make([]ChildLocation, 0, len(ids))
	for _, pid := range ids {
		t, loc := v.prefixChild(pid)
		toks = append(toks, t)
		locs = append(locs, loc)
	}
	return toks, locs, nil
}

// PostfixChildren is the Postfix analogue of PrefixChildren: the last
// sub-child of each child-pattern.
func (g *Graph) PostfixChildren(tok Token) ([]Token, []ChildLocation, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, err := g.vertexAt(tok.ID)
	if err != nil {
		return nil, nil, err
	}
	ids := v.sortedPatternIDs()
	toks := make([]Token, 0, len(ids))
	locs := make([]ChildLocation, 0, len(ids))
	for _, pid := range ids {
		t, loc := v.postfixChild(pid)
		toks = append(toks, t)
		locs = append(locs, loc)
	}
	return toks, locs, nil
}

// tokenAtLocation resolves a ChildLocation to the Token it addresses.
// Callers must hold at least the read lock.
func (g *Graph) tokenAtLocation(loc ChildLocation) (Token, error) {
	v, err := g.vertexAt(loc.Parent)
	if err != nil {
		return Token{}, err
	}
	p, ok := v.Children[loc.PatternID]
	if !ok || loc.SubIndex < 0 || loc.SubIndex >= len(p) {
		return Token{}, &InsertInvariantViolationError{Reason: "dangling child location"}
	}
	return p[loc.SubIndex], nil
}

// parentsSortedByWidthDesc returns tok's parent vertex ids ordered by cached
// parent width, descending, then by TokenID ascending for determinism — the
// first stage of the widest-first exploration order spec §4.4 requires.
// Callers must hold at least the read lock.
func (g *Graph) parentsSortedByWidthDesc(tok Token) ([]TokenID, error) {
	v, err := g.vertexAt(tok.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]TokenID, 0, len(v.Parents))
	for pid := range v.Parents {
		ids = append(ids, pid)
	}
	slices.SortFunc(ids, func(a, b TokenID) int {
		wa, wb := v.Parents[a].Width, v.Parents[b].Width
		if wa != wb {
			return wb - wa
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})
	return ids, nil
}
