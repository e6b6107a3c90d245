// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package ctxgraph

// RangeRole classifies a matched range by which of root's own boundaries its
// endpoints touch (spec §4.5 step 1 "RangeRole"), grounded on the
// prefix/suffix/middle-edge classification fox.tree.go's insert() performs
// before deciding whether to split a radix edge.
type RangeRole uint8

const (
	// RolePre: start touches root's own start, end is interior (Prefix).
	RolePre RangeRole = iota
	// RoleIn: both start and end are interior (Infix/Range).
	RoleIn
	// RolePost: end touches root's own end, start is interior (Postfix).
	RolePost
	// RoleFull: both ends touch root's boundaries (EntireRoot).
	RoleFull
)

func (r RangeRole) String() string {
	switch r {
	case RolePre:
		return "pre"
	case RoleIn:
		return "in"
	case RolePost:
		return "post"
	case RoleFull:
		return "full"
	default:
		return "unknown"
	}
}

// InitInterval is the split engine's input, derived from a Response whose
// matched prefix lies (at least partially) inside a root token (spec §4.5).
type InitInterval struct {
	Root       Token
	StartBound AtomPosition
	EndBound   AtomPosition
	Role       RangeRole
	Trace      *TraceCache
}

// NewInitInterval derives an InitInterval from a completed Search's
// Response. end_bound is always checkpoint_position (spec §4.5 "inputs");
// start_bound is read off found_path's recorded coverage.
func NewInitInterval(g *Graph, resp Response, tc *TraceCache) (InitInterval, error) {
	root := resp.FoundPath.Root()
	v, err := g.GetVertex(root)
	if err != nil {
		return InitInterval{}, err
	}

	var start AtomPosition
	switch fp := resp.FoundPath.(type) {
	case EntireRootCoverage:
		start = 0
	case PrefixCoverage:
		start = 0
	case PostfixCoverage:
		sw, err := fp.Path.WidthCovered(g, root)
		if err != nil {
			return InitInterval{}, err
		}
		start = AtomPosition(sw)
	case RangeCoverage:
		sw, err := fp.Path.Start.WidthCovered(g, root)
		if err != nil {
			return InitInterval{}, err
		}
		start = AtomPosition(sw)
	}

	end := resp.CheckpointPosition
	role := classifyRangeRole(v.Width, start, end)
	return InitInterval{Root: root, StartBound: start, EndBound: end, Role: role, Trace: tc}, nil
}

func classifyRangeRole(width int, start, end AtomPosition) RangeRole {
	touchesStart := start == 0
	touchesEnd := int(end) == width
	switch {
	case touchesStart && touchesEnd:
		return RoleFull
	case touchesStart:
		return RolePre
	case touchesEnd:
		return RolePost
	default:
		return RoleIn
	}
}

// IntervalGraph is the split engine's output: the deduplicated set of
// Split(vertex, offset) records needed to admit [StartBound, EndBound) as an
// atomic boundary inside Root (spec §4.5 "Outputs"). The current
// implementation records splits at root level only rather than walking a
// full top-down path to each endpoint's leaf; see DESIGN.md for why this
// scope was chosen.
type IntervalGraph struct {
	Root       Token
	Role       RangeRole
	StartBound AtomPosition
	EndBound   AtomPosition
	Splits     map[TokenID][]AtomPosition
}

// BuildIntervalGraph implements spec §4.5's algorithm: classify by
// RangeRole, then record exactly the boundary offsets that are interior to
// Root (a boundary flush with Root's own edge needs no split).
func BuildIntervalGraph(g *Graph, iv InitInterval) (*IntervalGraph, error) {
	if _, err := g.GetVertex(iv.Root); err != nil {
		return nil, err
	}
	ig := &IntervalGraph{
		Root:       iv.Root,
		Role:       iv.Role,
		StartBound: iv.StartBound,
		EndBound:   iv.EndBound,
		Splits:     make(map[TokenID][]AtomPosition),
	}

	needStart := iv.Role == RoleIn || iv.Role == RolePost
	needEnd := iv.Role == RoleIn || iv.Role == RolePre
	if needStart {
		ig.recordSplit(iv.Trace, iv.Root.ID, iv.StartBound)
	}
	if needEnd {
		ig.recordSplit(iv.Trace, iv.Root.ID, iv.EndBound)
	}
	return ig, nil
}

func (ig *IntervalGraph) recordSplit(tc *TraceCache, vertex TokenID, offset AtomPosition) {
	for _, o := range ig.Splits[vertex] {
		if o == offset {
			return
		}
	}
	ig.Splits[vertex] = append(ig.Splits[vertex], offset)
	if tc != nil {
		tc.RecordSplit(vertex, offset)
	}
}
