// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package ctxgraph

import "errors"

// errEmptyPath is returned by LeafToken when a RolePath has no locations yet
// (the path sits exactly at its root, with no descent recorded).
var errEmptyPath = errors.New("ctxgraph: path has no locations")

// RolePath is a role-generic, role-parameterized anchored descent within one
// root token: root_entry (which child of the root was entered first) plus an
// ordered sequence of ChildLocations (spec §3 RolePath<R>). A RolePath[R] is
// deliberately the SAME type regardless of R, with PathAccessor implemented
// once on it generically — Design Notes §9 warns against writing the
// accessor twice for the same struct, which would happen if Start and End
// paths were distinct concrete types.
//
// A RolePath[StartRole]'s Locations record a bottom-up climb followed by a
// top-down descent; its "leaf" (the last Location) is the deepest descendant
// reached. A RolePath[EndRole]'s Locations record a pure top-down descent
// from the root; its leaf is likewise the last Location. The structural
// representation coincides on purpose — only the construction history
// differs, which is why one generic accessor suffices.
type RolePath[R Role] struct {
	RootEntry int
	Locations []ChildLocation
}

// NewRolePath creates an empty RolePath anchored at the given root_entry
// (the index of the child of the role's root that the descent begins at).
func NewRolePath[R Role](rootEntry int) RolePath[R] {
	return RolePath[R]{RootEntry: rootEntry}
}

// StartPath and EndPath name RolePath instantiated at a fixed role, for call
// sites that never need to abstract over R (spec §9 "concrete-role accessor
// pair... where the role is fixed").
type (
	StartPath = RolePath[StartRole]
	EndPath   = RolePath[EndRole]
)

// PathAccessor is the role-generic capability set: access and extend the
// descent, resolve its leaf token, and measure the atoms it covers. It is
// implemented once, as a method set on *RolePath[R] for any R, rather than
// once per concrete role.
type PathAccessor interface {
	Path() []ChildLocation
	AppendLocation(loc ChildLocation)
	LeafToken(g *Graph) (Token, error)
	WidthCovered(g *Graph, root Token) (int, error)
}

var (
	_ PathAccessor = (*RolePath[StartRole])(nil)
	_ PathAccessor = (*RolePath[EndRole])(nil)
)

// Path returns the ordered ChildLocations recorded so far.
func (p *RolePath[R]) Path() []ChildLocation { return p.Locations }

// AppendLocation descends one level, recording loc as the new leaf.
func (p *RolePath[R]) AppendLocation(loc ChildLocation) {
	p.Locations = append(p.Locations, loc)
}

// LeafToken resolves the token at the path's active end: for both roles,
// the token addressed by the last recorded ChildLocation (see type doc).
func (p *RolePath[R]) LeafToken(g *Graph) (Token, error) {
	if len(p.Locations) == 0 {
		return Token{}, errEmptyPath
	}
	return g.tokenAtLocation(p.Locations[len(p.Locations)-1])
}

// WidthCovered returns the atom offset, relative to root, at which this
// path's leaf begins: the sum of the widths of every sibling token that
// precedes the path's descent at each level. This is the quantity both the
// search engine's atom_position and the split engine's split offsets are
// expressed in.
func (p *RolePath[R]) WidthCovered(g *Graph, root Token) (int, error) {
	width := 0
	cur := root
	for _, loc := range p.Locations {
		v, err := g.GetVertex(cur)
		if err != nil {
			return 0, err
		}
		pat, ok := v.Children[loc.PatternID]
		if !ok {
			return 0, &InsertInvariantViolationError{Reason: "dangling pattern id in path"}
		}
		for i := 0; i < loc.SubIndex && i < len(pat); i++ {
			width += pat[i].Width
		}
		if loc.SubIndex >= len(pat) {
			return 0, &InsertInvariantViolationError{Reason: "dangling sub-index in path"}
		}
		cur = pat[loc.SubIndex]
	}
	return width, nil
}

// RootedRolePath pairs a RolePath with the owned Root token it is anchored
// to (spec §3 RootedRolePath<R, Root>).
type RootedRolePath[R Role] struct {
	RolePath[R]
	Root Token
}

// NewRootedRolePath anchors an empty RolePath at root.
func NewRootedRolePath[R Role](root Token, rootEntry int) RootedRolePath[R] {
	return RootedRolePath[R]{RolePath: NewRolePath[R](rootEntry), Root: root}
}

// RootedRangePath delimits a contiguous sub-range of Root with a Start-role
// and an End-role RolePath (spec §3 RootedRangePath<Root>).
type RootedRangePath struct {
	Root  Token
	Start RolePath[StartRole]
	End   RolePath[EndRole]
}

// NewRootedRangePath anchors an empty range at root.
func NewRootedRangePath(root Token, startEntry, endEntry int) RootedRangePath {
	return RootedRangePath{
		Root:  root,
		Start: NewRolePath[StartRole](startEntry),
		End:   NewRolePath[EndRole](endEntry),
	}
}

// StartPath returns the Start-role sub-path.
func (r *RootedRangePath) StartPath() *RolePath[StartRole] { return &r.Start }

// EndPath returns the End-role sub-path.
func (r *RootedRangePath) EndPath() *RolePath[EndRole] { return &r.End }

// Bounds returns the [start, end) atom range, relative to Root, that this
// range path delimits. end is the start offset of End's leaf's own width
// added to its own covered width, i.e. the atom position just past End's
// leaf.
func (r *RootedRangePath) Bounds(g *Graph) (start, end AtomPosition, err error) {
	sw, err := r.Start.WidthCovered(g, r.Root)
	if err != nil {
		return 0, 0, err
	}
	ew, err := r.End.WidthCovered(g, r.Root)
	if err != nil {
		return 0, 0, err
	}
	leaf, err := r.End.LeafToken(g)
	if err != nil {
		return 0, 0, err
	}
	return AtomPosition(sw), AtomPosition(ew + leaf.Width), nil
}

// AdvanceEnd descends End one level: if End's current leaf is a composite,
// it appends the location of the last child of the leaf's lowest-PatternID
// pattern, which leaves the range's end bound (and so width(start..end) > 0)
// unchanged; if the leaf is an atom it is a no-op.
func (r *RootedRangePath) AdvanceEnd(g *Graph) error {
	leaf, err := r.End.LeafToken(g)
	if err != nil {
		return err
	}
	v, err := g.GetVertex(leaf)
	if err != nil {
		return err
	}
	if v.IsAtom() {
		return nil
	}
	_, loc := v.postfixChild(v.sortedPatternIDs()[0])
	r.End.AppendLocation(loc)
	return nil
}

// AdvanceStart is the Start-role mirror of AdvanceEnd: it descends into the
// first child of Start's current leaf.
func (r *RootedRangePath) AdvanceStart(g *Graph) error {
	leaf, err := r.Start.LeafToken(g)
	if err != nil {
		return err
	}
	v, err := g.GetVertex(leaf)
	if err != nil {
		return err
	}
	if v.IsAtom() {
		return nil
	}
	_, loc := v.prefixChild(v.sortedPatternIDs()[0])
	r.Start.AppendLocation(loc)
	return nil
}
