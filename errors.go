// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package ctxgraph

import (
	"errors"
	"fmt"
)

// Sentinel errors for the taxonomy in spec §7. Each is surfaced verbatim to
// callers; none are recovered internally. Cancellation is deliberately not a
// sentinel here: per spec §7 it is a normal outcome folded into a successful
// Response, never an error value.
var (
	ErrUnknownToken             = errors.New("ctxgraph: unknown token")
	ErrInvalidPattern           = errors.New("ctxgraph: invalid pattern")
	ErrWidthConflict            = errors.New("ctxgraph: width conflict")
	ErrTraceCacheMiss           = errors.New("ctxgraph: trace cache miss")
	ErrInsertInvariantViolation = errors.New("ctxgraph: insert invariant violation")
)

// UnknownTokenError reports that a Token handle does not resolve to any
// vertex in the Graph it was presented to.
type UnknownTokenError struct {
	Token TokenID
}

func (e *UnknownTokenError) Error() string {
	return fmt.Sprintf("ctxgraph: unknown token #%d", e.Token)
}

func (e *UnknownTokenError) Unwrap() error { return ErrUnknownToken }

// InvalidPatternError reports a pattern that violates the minimum-length or
// width-sum requirements of spec §4.1.
type InvalidPatternError struct {
	Len       int
	WantWidth int
	GotWidth  int
	Reason    string
}

func (e *InvalidPatternError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("ctxgraph: invalid pattern: %s", e.Reason)
	}
	return fmt.Sprintf("ctxgraph: invalid pattern: len=%d width=%d want=%d", e.Len, e.GotWidth, e.WantWidth)
}

func (e *InvalidPatternError) Unwrap() error { return ErrInvalidPattern }

// WidthConflictError reports that AddAlternatePattern was asked to graft a
// pattern whose total width disagrees with the vertex it targets.
type WidthConflictError struct {
	Vertex    TokenID
	WantWidth int
	GotWidth  int
}

func (e *WidthConflictError) Error() string {
	return fmt.Sprintf("ctxgraph: width conflict on vertex #%d: want %d, got %d", e.Vertex, e.WantWidth, e.GotWidth)
}

func (e *WidthConflictError) Unwrap() error { return ErrWidthConflict }

// CacheMissError reports that Join needed a split offset in the TraceCache
// that was never recorded there (see checkSplitsRecorded in join.go) — an
// engine-internal bug, not a user error (spec §7).
type CacheMissError struct {
	Vertex TokenID
	Kind   string // "bottom_up" or "top_down"
}

func (e *CacheMissError) Error() string {
	return fmt.Sprintf("ctxgraph: trace cache miss for vertex #%d (%s)", e.Vertex, e.Kind)
}

func (e *CacheMissError) Unwrap() error { return ErrTraceCacheMiss }

// InsertInvariantViolationError reports that a join would have broken a
// store invariant (singleton pattern, width mismatch, missing split) had it
// proceeded. Join validates its preconditions before mutating; its one later
// check, that every pre-existing pattern ID survived AddAlternatePattern,
// runs after the graft (spec §7).
type InsertInvariantViolationError struct {
	Reason string
}

func (e *InsertInvariantViolationError) Error() string {
	return fmt.Sprintf("ctxgraph: insert invariant violation: %s", e.Reason)
}

func (e *InsertInvariantViolationError) Unwrap() error { return ErrInsertInvariantViolation }
