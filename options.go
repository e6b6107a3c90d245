// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package ctxgraph

// GraphOption configures a Graph at construction time, grounded on fox's
// functional-option pattern (options.go WithXxx constructors over a single
// Option interface). Configuration loading from files or environment stays
// an external collaborator per spec §1/§6 non-goals; only the in-code shape
// of configuration is carried from the teacher.
type GraphOption interface {
	applyGraph(*graphConfig)
}

type graphConfig struct {
	arenaCapacity int
	observer      Observer
}

func defaultGraphConfig() graphConfig {
	return graphConfig{arenaCapacity: 0, observer: NoopObserver{}}
}

type graphOptionFunc func(*graphConfig)

func (f graphOptionFunc) applyGraph(c *graphConfig) { f(c) }

// WithArenaCapacity preallocates the vertex arena for n vertices, avoiding
// reallocation churn when the approximate corpus size is known up front.
func WithArenaCapacity(n int) GraphOption {
	return graphOptionFunc(func(c *graphConfig) {
		if n > 0 {
			c.arenaCapacity = n
		}
	})
}

// WithObserver attaches an Observer that receives structured, side-effect
// only events from every engine (spec §6). The default is NoopObserver.
func WithObserver(o Observer) GraphOption {
	return graphOptionFunc(func(c *graphConfig) {
		if o != nil {
			c.observer = o
		}
	})
}

// SearchOption configures one Search or Read call, grounded on the same
// functional-option idiom as GraphOption but scoped per-call rather than
// per-store (fox distinguishes GlobalOption from PathOption the same way).
type SearchOption interface {
	applySearch(*searchConfig)
}

type searchConfig struct {
	cancel            func() bool
	topDownCacheLimit int
}

func defaultSearchConfig() searchConfig {
	return searchConfig{cancel: func() bool { return false }}
}

type searchOptionFunc func(*searchConfig)

func (f searchOptionFunc) applySearch(c *searchConfig) { f(c) }

// WithCancel supplies a cooperative cancellation source checked once per
// main-loop iteration (spec §5/§7 Cancelled). When cancel returns true, the
// in-progress Response is returned as-is with its best_match intact; this is
// a normal outcome, never an error.
func WithCancel(cancel func() bool) SearchOption {
	return searchOptionFunc(func(c *searchConfig) {
		if cancel != nil {
			c.cancel = cancel
		}
	})
}

// WithTopDownCacheLimit bounds TraceCache's top_down memoization to the n
// most recently touched child vertices using an LRU, instead of the default
// unbounded map. Long-running Read sessions over a very wide corpus are the
// intended use (see SPEC_FULL.md §5 domain stack).
func WithTopDownCacheLimit(n int) SearchOption {
	return searchOptionFunc(func(c *searchConfig) {
		if n > 0 {
			c.topDownCacheLimit = n
		}
	})
}
