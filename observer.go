// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package ctxgraph

import (
	"context"
	"log/slog"
)

// Observer receives structured, side-effect-only events emitted by the store,
// search, split and join engines (spec §6 "observability sink"). Observer
// implementations must never influence algorithmic results — every method
// returns nothing and callers never inspect a return value to decide what to
// do next.
type Observer interface {
	// OnVertexCreated fires when InternAtom or InsertOrGetPattern allocates a
	// brand new vertex (as opposed to returning or extending an existing one).
	OnVertexCreated(id TokenID, isAtom bool)
	// OnStateTransition fires on every EndReason the search state machine
	// reaches: QueryExhausted, ChildExhausted, Mismatch.
	OnStateTransition(reason EndReason, atomPosition AtomPosition)
	// OnBestMatchUpdate fires whenever Search widens its best_match.
	OnBestMatchUpdate(width int)
	// OnSplitRecorded fires each time Search climbs into a parent and records
	// the current atom offset as a split of that parent in its TraceCache.
	// BuildIntervalGraph's own split records do not emit it.
	OnSplitRecorded(vertex TokenID, offset AtomPosition)
	// OnWrapperCreated fires when Join has grafted a new alternate
	// child-pattern onto root; wrapper is the target token of that join. No
	// separate wrapper vertex is created, and a RoleFull join, which adds no
	// pattern, does not emit it.
	OnWrapperCreated(wrapper TokenID, root TokenID)
}

// NoopObserver discards every event. It is the default Observer and its zero
// value is ready to use.
type NoopObserver struct{}

func (NoopObserver) OnVertexCreated(TokenID, bool)          {}
func (NoopObserver) OnStateTransition(EndReason, AtomPosition) {}
func (NoopObserver) OnBestMatchUpdate(int)                  {}
func (NoopObserver) OnSplitRecorded(TokenID, AtomPosition)  {}
func (NoopObserver) OnWrapperCreated(TokenID, TokenID)      {}

// slogObserver logs every event through an slog.Handler, grounded on
// fox.Logger's middleware (logger.go): each event becomes one structured
// record, leveled by how load-bearing the event is to debugging rather than
// fox's HTTP-status-bucket scheme.
type slogObserver struct {
	log *slog.Logger
}

// NewSlogObserver returns an Observer that logs every event as a structured
// slog record through handler. Vertex creation and split/wrapper recording
// log at Debug (high-volume, structural detail); state transitions and
// best-match growth log at Info (the events a caller actually watches a
// search's progress through). A nil handler falls back to
// slog.Default().Handler().
func NewSlogObserver(handler slog.Handler) Observer {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &slogObserver{log: slog.New(handler)}
}

func (o *slogObserver) OnVertexCreated(id TokenID, isAtom bool) {
	o.log.LogAttrs(context.Background(), slog.LevelDebug, "vertex created",
		slog.Uint64("token", uint64(id)),
		slog.Bool("atom", isAtom),
	)
}

func (o *slogObserver) OnStateTransition(reason EndReason, pos AtomPosition) {
	o.log.LogAttrs(context.Background(), slog.LevelInfo, "search state transition",
		slog.String("reason", reason.String()),
		slog.Int("atom_position", int(pos)),
	)
}

func (o *slogObserver) OnBestMatchUpdate(width int) {
	o.log.LogAttrs(context.Background(), slog.LevelInfo, "best match widened",
		slog.Int("width", width),
	)
}

func (o *slogObserver) OnSplitRecorded(vertex TokenID, offset AtomPosition) {
	o.log.LogAttrs(context.Background(), slog.LevelDebug, "split recorded",
		slog.Uint64("vertex", uint64(vertex)),
		slog.Int("offset", int(offset)),
	)
}

func (o *slogObserver) OnWrapperCreated(wrapper, root TokenID) {
	o.log.LogAttrs(context.Background(), slog.LevelDebug, "wrapper created",
		slog.Uint64("wrapper", uint64(wrapper)),
		slog.Uint64("root", uint64(root)),
	)
}
