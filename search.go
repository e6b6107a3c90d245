// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package ctxgraph

import "container/heap"

// EndReason classifies why the main loop of Search stopped advancing one
// candidate index cursor (spec §4.3/§4.4 EndReason, §8 glossary).
type EndReason uint8

const (
	ReasonQueryExhausted EndReason = iota
	ReasonChildExhausted
	ReasonMismatch
)

func (r EndReason) String() string {
	switch r {
	case ReasonQueryExhausted:
		return "query_exhausted"
	case ReasonChildExhausted:
		return "child_exhausted"
	case ReasonMismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}

// PathCoverage describes how a matched prefix aligns with the widest root
// vertex it was found inside (spec §3 Response.found_path). It is a sealed
// interface the same way Role is, since the set of alignments is closed.
type PathCoverage interface {
	pathCoverageSealed()
	// Root returns the vertex this coverage is expressed relative to.
	Root() Token
}

// EntireRootCoverage reports that the matched prefix equals the full width
// of Root: the widest pre-existing vertex found (spec §3 EntireRoot).
type EntireRootCoverage struct {
	root Token
}

func (EntireRootCoverage) pathCoverageSealed() {}
func (c EntireRootCoverage) Root() Token       { return c.root }

// PrefixCoverage reports that the matched prefix starts at Root's own start
// but ends before Root's full width (spec §3 Prefix(RootedRolePath<Start>)).
type PrefixCoverage struct {
	Path RootedRolePath[StartRole]
}

func (PrefixCoverage) pathCoverageSealed() {}
func (c PrefixCoverage) Root() Token       { return c.Path.Root }

// PostfixCoverage reports that the matched prefix ends at Root's own end but
// starts strictly inside it (spec §3 Postfix(RootedRolePath<End>)).
type PostfixCoverage struct {
	Path RootedRolePath[EndRole]
}

func (PostfixCoverage) pathCoverageSealed() {}
func (c PostfixCoverage) Root() Token       { return c.Path.Root }

// RangeCoverage reports that the matched prefix lies strictly inside Root on
// both ends (spec §3 Range/Infix(RootedRangePath)). The engine does not
// currently distinguish a single-edge Infix from a multi-level Range; see
// DESIGN.md for that Open Question's resolution.
type RangeCoverage struct {
	Path RootedRangePath
}

func (RangeCoverage) pathCoverageSealed() {}
func (c RangeCoverage) Root() Token       { return c.Path.Root }

// MatchResult is the widest confirmed match observed during a search (spec
// §3 MatchResult).
type MatchResult struct {
	Width int
	Path  PathCoverage
}

// Response is the outcome of a Search (spec §3 Response).
type Response struct {
	CursorPosition     AtomPosition
	CheckpointPosition AtomPosition
	BestMatch          *MatchResult
	FoundPath          PathCoverage
}

// QueryExhausted reports whether the confirmed prefix covers the whole
// query (spec §3 query_exhausted).
func (r Response) QueryExhausted(queryLen int) bool {
	return int(r.CheckpointPosition) >= queryLen
}

// IsFullToken reports whether found_path is EntireRoot.
func (r Response) IsFullToken() bool {
	_, ok := r.FoundPath.(EntireRootCoverage)
	return ok
}

// climbState is the mutable bookkeeping Search threads through its main
// loop: the current index cursor, the climb chain recorded so far (used to
// build Prefix/Postfix/Range coverage), and whether the climb so far has
// stayed flush with every ancestor's own start.
type climbState struct {
	ec            edgeCursor
	chain         []ChildLocation // innermost-first; reverse for root-down order
	startIsPrefix bool
}

// Search is the external-interface name for the Search function (spec §8
// Graph.Search), letting callers drive a query off the graph value itself.
func (g *Graph) Search(query []Token, opts ...SearchOption) (Response, error) {
	return Search(g, query, opts...)
}

// Search drives the traversal in traversal.go over query until the widest
// valid match is found (spec §4.4). query must have at least one token,
// each already a Token known to g (typically produced by InternAtom or a
// prior InsertOrGetPattern/AddAlternatePattern call).
func Search(g *Graph, query []Token, opts ...SearchOption) (Response, error) {
	if len(query) == 0 {
		return Response{}, &InvalidPatternError{Len: 0, Reason: "query must have at least 1 token"}
	}

	cfg := defaultSearchConfig()
	for _, o := range opts {
		o.applySearch(&cfg)
	}
	tc := NewTraceCache(cfg.topDownCacheLimit)

	state := climbState{ec: newEdgeCursorAtRoot(query[0]), startIsPrefix: true}
	queryIdx := 1
	checkpoint := state
	checkpointQueryIdx := queryIdx
	checkpointAtomPos := AtomPosition(query[0].Width)
	cursorAtomPos := checkpointAtomPos

	var best *MatchResult
	updateBest := func(st climbState, atomPos AtomPosition, g *Graph) {
		width := int(atomPos)
		if best != nil && best.Width >= width {
			return
		}
		path := classifyCoverage(g, st)
		best = &MatchResult{Width: width, Path: path}
		g.observer.OnBestMatchUpdate(width)
	}
	updateBest(state, checkpointAtomPos, g)

	var q candidateHeap
	var nextSeq uint64

	for {
		if cfg.cancel() {
			break
		}
		if queryIdx >= len(query) {
			break
		}

		prevQueryIdx := queryIdx
		nec, nIdx, result, err := iterateUntilConclusion(g, state.ec, query, queryIdx)
		if err != nil {
			return Response{}, err
		}
		consumed := sumWidths(query[prevQueryIdx:nIdx])

		switch result {
		case AdvanceQueryExhausted:
			state.ec = nec
			queryIdx = nIdx
			cursorAtomPos += consumed
			checkpoint = state
			checkpointQueryIdx = queryIdx
			checkpointAtomPos = cursorAtomPos
			updateBest(state, checkpointAtomPos, g)
			g.observer.OnStateTransition(ReasonQueryExhausted, checkpointAtomPos)
			goto done

		case AdvanceChildExhausted:
			state.ec = nec
			queryIdx = nIdx
			cursorAtomPos += consumed
			checkpoint = state
			checkpointQueryIdx = queryIdx
			checkpointAtomPos = cursorAtomPos
			updateBest(state, checkpointAtomPos, g)
			g.observer.OnStateTransition(ReasonChildExhausted, checkpointAtomPos)

			batch, err := getParentBatch(g, state.ec.Root.ID)
			if err != nil {
				return Response{}, err
			}
			if len(batch) == 0 {
				goto done
			}
			pushCandidates(&q, batch, &nextSeq)

			// The climbed position is only a candidate for the next
			// comparison, not yet confirmed: checkpoint must stay at the
			// position recorded just above until that comparison succeeds,
			// or a later Mismatch would have nothing correct to roll back to.
			nextEc, ok, err := popClimb(g, &q, &nextSeq, tc, int(checkpointAtomPos), &state)
			if err != nil {
				return Response{}, err
			}
			if !ok {
				goto done
			}
			state.ec = nextEc

		case AdvanceMismatch:
			g.observer.OnStateTransition(ReasonMismatch, checkpointAtomPos)
			// The speculative front got as far as checkpointAtomPos+consumed
			// before the mismatching comparison; that progress is real even
			// though it is discarded from state/queryIdx below, so
			// cursorAtomPos must record it rather than collapse back to the
			// checkpoint (spec Scenario C: cursor_position > checkpoint_position).
			if furthest := checkpointAtomPos + consumed; furthest > cursorAtomPos {
				cursorAtomPos = furthest
			}
			state = checkpoint
			queryIdx = checkpointQueryIdx

			nextEc, ok, err := popClimb(g, &q, &nextSeq, tc, int(checkpointAtomPos), &state)
			if err != nil {
				return Response{}, err
			}
			if !ok {
				goto done
			}
			state.ec = nextEc
		}
	}

done:
	found := classifyCoverage(g, checkpoint)
	return Response{
		CursorPosition:     cursorAtomPos,
		CheckpointPosition: checkpointAtomPos,
		BestMatch:          best,
		FoundPath:          found,
	}, nil
}

func sumWidths(toks []Token) AtomPosition {
	w := 0
	for _, t := range toks {
		w += t.Width
	}
	return AtomPosition(w)
}

// popClimb pops the widest pending candidate, recording the climb step onto
// state's chain and updating startIsPrefix, then returns the edgeCursor
// standing just past the exhausted vertex inside its parent's pattern. It
// keeps climbing through fully-exhausted parents (pushing their own parents)
// until it finds one with room to continue, or the queue drains.
func popClimb(g *Graph, q *candidateHeap, nextSeq *uint64, tc *TraceCache, atomOffset int, state *climbState) (edgeCursor, bool, error) {
	for q.Len() > 0 {
		c := heap.Pop(q).(parentCandidate)
		parentV, err := g.GetVertex(Token{ID: c.parent})
		if err != nil {
			return edgeCursor{}, false, err
		}
		pat := parentV.Children[c.patternID]
		tc.RecordSplit(c.parent, AtomPosition(atomOffset))
		g.observer.OnSplitRecorded(c.parent, AtomPosition(atomOffset))

		loc := ChildLocation{Parent: c.parent, PatternID: c.patternID, SubIndex: c.index}
		state.chain = append(state.chain, loc)
		if c.index != 0 {
			state.startIsPrefix = false
		}

		if c.index+1 < len(pat) {
			return enterPattern(parentV.Token(), c.patternID, c.index+1), true, nil
		}
		more, err := getParentBatch(g, c.parent)
		if err != nil {
			return edgeCursor{}, false, err
		}
		pushCandidates(q, more, nextSeq)
	}
	return edgeCursor{}, false, nil
}

// classifyCoverage builds the PathCoverage variant for st, per spec §4.4
// "is_full_token beats same-width Prefix" and the Prefix/Postfix/Range rules
// derived from whether the climb chain ever left a non-zero parent index.
func classifyCoverage(g *Graph, st climbState) PathCoverage {
	root := st.ec.Root
	endIsSuffix := isAtEndOfPattern(g, st.ec)

	if len(st.chain) == 0 {
		if st.startIsPrefix && endIsSuffix {
			return EntireRootCoverage{root: root}
		}
		if st.startIsPrefix {
			p := NewRootedRolePath[StartRole](root, 0)
			return PrefixCoverage{Path: p}
		}
		if endIsSuffix {
			p := NewRootedRolePath[EndRole](root, 0)
			return PostfixCoverage{Path: p}
		}
		rp := NewRootedRangePath(root, 0, 0)
		return RangeCoverage{Path: rp}
	}

	locs := reversedLocations(st.chain)
	if st.startIsPrefix && endIsSuffix {
		return EntireRootCoverage{root: root}
	}
	if st.startIsPrefix {
		p := RootedRolePath[StartRole]{RolePath: RolePath[StartRole]{Locations: locs}, Root: root}
		return PrefixCoverage{Path: p}
	}
	if endIsSuffix {
		p := RootedRolePath[EndRole]{RolePath: RolePath[EndRole]{Locations: locs}, Root: root}
		return PostfixCoverage{Path: p}
	}
	rp := RootedRangePath{Root: root, Start: RolePath[StartRole]{Locations: locs}, End: RolePath[EndRole]{Locations: locs}}
	return RangeCoverage{Path: rp}
}

func reversedLocations(chain []ChildLocation) []ChildLocation {
	out := make([]ChildLocation, len(chain))
	for i, l := range chain {
		out[len(chain)-1-i] = l
	}
	return out
}

func isAtEndOfPattern(g *Graph, ec edgeCursor) bool {
	if ec.AtRoot {
		return true
	}
	v, err := g.GetVertex(ec.Root)
	if err != nil {
		return false
	}
	pat := v.Children[ec.PatternID]
	return ec.SubIndex == len(pat)-1
}
