// Package tasks runs fire-and-forget operations on their own goroutines and
// lets a single owner collect the results later without blocking.
//
// The table is owned by one goroutine. Spawned goroutines only write their
// own entry's result and then close its done channel, so the owner can read
// the result after observing the close without taking a lock.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var ErrUnknownHandle = errors.New("unknown task handle")
var ErrNotFinished = errors.New("task not finished")

type Kind string

const (
	KindRegister Kind = "register"
	KindArena    Kind = "arena"
	KindMove     Kind = "move"
	KindLogs     Kind = "logs"
)

type ID uint64

// Handle identifies one spawned operation. Gen is whatever generation the
// owner was in when it spawned the operation.
type Handle struct {
	ID   ID
	Kind Kind
	Gen  uint64
}

type entry struct {
	handle Handle
	done   chan struct{}
	value  any
	err    error
}

func (e *entry) finished() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}

type Supervisor struct {
	ctx     context.Context
	nextID  ID
	entries map[ID]*entry
	wg      sync.WaitGroup
}

// New returns a Supervisor whose operations receive ctx. Operations are never
// cancelled individually; ctx is only for process shutdown.
func New(ctx context.Context) *Supervisor {
	return &Supervisor{
		ctx:     ctx,
		entries: make(map[ID]*entry),
	}
}

// Spawn starts op on a new goroutine and tracks it until harvested.
func Spawn[T any](s *Supervisor, kind Kind, gen uint64, op func(ctx context.Context) (T, error)) Handle {
	s.nextID++
	e := &entry{
		handle: Handle{ID: s.nextID, Kind: kind, Gen: gen},
		done:   make(chan struct{}),
	}
	s.entries[e.handle.ID] = e

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(e.done)
		defer func() {
			if r := recover(); r != nil {
				e.err = fmt.Errorf("%s task panicked: %v", kind, r)
			}
		}()
		e.value, e.err = op(s.ctx)
	}()

	return e.handle
}

// Finished returns the handles of kind whose operation has completed, oldest
// first. It never waits.
func (s *Supervisor) Finished(kind Kind) []Handle {
	var out []Handle
	for _, e := range s.entries {
		if e.handle.Kind == kind && e.finished() {
			out = append(out, e.handle)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Pending counts tracked entries of kind, finished or not.
func (s *Supervisor) Pending(kind Kind) int {
	n := 0
	for _, e := range s.entries {
		if e.handle.Kind == kind {
			n++
		}
	}
	return n
}

// Retag moves every tracked entry of kind to generation gen.
func (s *Supervisor) Retag(kind Kind, gen uint64) {
	for _, e := range s.entries {
		if e.handle.Kind == kind {
			e.handle.Gen = gen
		}
	}
}

// Harvest removes a finished entry and returns its result. The error is the
// operation's own error, or ErrUnknownHandle / ErrNotFinished.
func Harvest[T any](s *Supervisor, h Handle) (T, error) {
	var zero T

	e, ok := s.entries[h.ID]
	if !ok {
		return zero, ErrUnknownHandle
	}
	if !e.finished() {
		return zero, ErrNotFinished
	}
	delete(s.entries, h.ID)

	if e.err != nil {
		return zero, e.err
	}
	v, ok := e.value.(T)
	if !ok && e.value != nil {
		return zero, fmt.Errorf("%s task: result is %T, not %T", h.Kind, e.value, zero)
	}
	return v, nil
}

// Wait blocks until every spawned goroutine has returned. Results stay in the
// table until harvested.
func (s *Supervisor) Wait() {
	s.wg.Wait()
}
