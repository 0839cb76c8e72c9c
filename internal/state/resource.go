// Package state holds client-side snapshots of server-owned storefront
// resources and keeps their loading, mutating and error flags.
//
// A Resource never patches its snapshot locally: every successful call
// replaces it with the server's response, and every failure is turned into
// the Error field instead of being returned to the caller.
package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"storefront-sync/internal/client"
	"storefront-sync/internal/utils"
)

// Status is a point-in-time view of a resource.
// A nil Snapshot means not loaded yet; an empty Error means no error.
type Status[T any] struct {
	Snapshot *T
	Loading  bool
	Mutating bool
	Error    string
}

// HasError reports whether the last attempt failed
func (s Status[T]) HasError() bool {
	return s.Error != ""
}

// MutationPolicy decides what happens when mutations overlap
type MutationPolicy int

const (
	// LastWriteWins lets overlapping mutations run concurrently; whichever
	// response is applied last becomes the snapshot.
	LastWriteWins MutationPolicy = iota
	// Serialized runs one mutation at a time per resource, in issue order.
	Serialized
)

func (p MutationPolicy) String() string {
	if p == Serialized {
		return "serialized"
	}
	return "last-write-wins"
}

// ParseMutationPolicy maps a config value to a policy, defaulting to LastWriteWins
func ParseMutationPolicy(s string) MutationPolicy {
	switch s {
	case "serialized", "serialised", "serial":
		return Serialized
	default:
		return LastWriteWins
	}
}

// Recorder receives one call per finished operation
type Recorder interface {
	RecordOperation(ctx context.Context, resource, op string, duration time.Duration, err error)
}

type noopRecorder struct{}

func (noopRecorder) RecordOperation(context.Context, string, string, time.Duration, error) {}

// Options configures a resource
type Options struct {
	// AutoLoad makes Mount call Reload
	AutoLoad bool
	Policy   MutationPolicy
	Logger   *slog.Logger
	Recorder Recorder
}

// DefaultOptions mirrors a view that loads on mount
func DefaultOptions() Options {
	return Options{AutoLoad: true}
}

// Resource manages one resource's fetch/mutate lifecycle
type Resource[T any] struct {
	name         string
	loadFallback string
	fetch        func(ctx context.Context) (*T, error)
	opts         Options
	logger       *slog.Logger
	recorder     Recorder

	mu        sync.RWMutex
	status    Status[T]
	loads     int
	mutations int

	// serializes mutations under the Serialized policy
	writeSlot chan struct{}

	listenersMu sync.Mutex
	listeners   map[int]func()
	nextID      int

	// onReplace runs under mu after every snapshot replacement
	onReplace func(*T)
}

// NewResource creates a resource whose Reload calls fetch.
// loadFallback is the message shown when a reload fails without a usable error.
func NewResource[T any](name, loadFallback string, fetch func(ctx context.Context) (*T, error), opts Options) *Resource[T] {
	r := &Resource[T]{
		name:         name,
		loadFallback: loadFallback,
		fetch:        fetch,
		opts:         opts,
		logger:       utils.OrDefault(opts.Logger).With("resource", name),
		recorder:     opts.Recorder,
		writeSlot:    make(chan struct{}, 1),
		listeners:    make(map[int]func()),
	}
	if r.recorder == nil {
		r.recorder = noopRecorder{}
	}
	return r
}

// Name returns the resource name used in logs and metrics
func (r *Resource[T]) Name() string {
	return r.name
}

// Status returns a copy of the current state
func (r *Resource[T]) Status() Status[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// Snapshot returns the current snapshot, or nil when absent
func (r *Resource[T]) Snapshot() *T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status.Snapshot
}

// Mount performs the automatic load if AutoLoad is set
func (r *Resource[T]) Mount(ctx context.Context) {
	if r.opts.AutoLoad {
		r.Reload(ctx)
	}
}

// Subscribe registers fn to run after every state change and returns a
// function that removes it. fn runs on the goroutine that changed the state.
func (r *Resource[T]) Subscribe(fn func()) (unsubscribe func()) {
	r.listenersMu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.listenersMu.Lock()
			delete(r.listeners, id)
			r.listenersMu.Unlock()
		})
	}
}

// Reload fetches the full resource. On failure the previous snapshot is kept.
func (r *Resource[T]) Reload(ctx context.Context) {
	r.update(func(s *Status[T]) {
		r.loads++
		s.Loading = true
		s.Error = ""
	})

	start := time.Now()
	snapshot, err := r.fetch(ctx)
	r.recorder.RecordOperation(ctx, r.name, "reload", time.Since(start), err)

	r.update(func(s *Status[T]) {
		r.loads--
		s.Loading = r.loads > 0
		if err != nil {
			s.Error = client.Describe(err, r.loadFallback)
			return
		}
		r.replace(s, snapshot)
	})

	if err != nil {
		r.logger.Warn("Reload failed", "error", err, "kind", client.Classify(err).String())
	} else {
		r.logger.Debug("Reload completed", "duration", time.Since(start))
	}
}

// mutate runs one write call and replaces the snapshot with its result
func (r *Resource[T]) mutate(ctx context.Context, op, fallback string, call func(ctx context.Context) (*T, error)) {
	if r.opts.Policy == Serialized {
		select {
		case r.writeSlot <- struct{}{}:
			defer func() { <-r.writeSlot }()
		case <-ctx.Done():
			r.update(func(s *Status[T]) {
				s.Error = fallback
			})
			r.logger.Warn("Mutation abandoned while waiting for the previous one", "op", op, "error", ctx.Err())
			return
		}
	}

	r.update(func(s *Status[T]) {
		r.mutations++
		s.Mutating = true
		s.Error = ""
	})

	start := time.Now()
	snapshot, err := call(ctx)
	r.recorder.RecordOperation(ctx, r.name, op, time.Since(start), err)

	r.update(func(s *Status[T]) {
		r.mutations--
		s.Mutating = r.mutations > 0
		if err != nil {
			s.Error = client.Describe(err, fallback)
			return
		}
		r.replace(s, snapshot)
	})

	if err != nil {
		r.logger.Warn("Mutation failed", "op", op, "error", err, "kind", client.Classify(err).String())
	} else {
		r.logger.Debug("Mutation applied", "op", op, "duration", time.Since(start))
	}
}

func (r *Resource[T]) replace(s *Status[T], snapshot *T) {
	s.Snapshot = snapshot
	if r.onReplace != nil {
		r.onReplace(snapshot)
	}
}

// update applies fn under the lock and then notifies listeners
func (r *Resource[T]) update(fn func(s *Status[T])) {
	r.mu.Lock()
	fn(&r.status)
	r.mu.Unlock()
	r.notify()
}

func (r *Resource[T]) notify() {
	r.listenersMu.Lock()
	fns := make([]func(), 0, len(r.listeners))
	for _, fn := range r.listeners {
		fns = append(fns, fn)
	}
	r.listenersMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
