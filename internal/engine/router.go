package engine

import (
	"sort"

	"github.com/DoyleJ11/arena-sync/internal/world"
	"github.com/DoyleJ11/arena-sync/pkg/types"
)

// Intent is something a collaborator asks the engine to do.
type Intent interface{ isIntent() }

type SubmitMoves struct {
	AntID string
	Path  []world.Hex
}

type RequestReconnect struct{}

type RequestLogs struct{}

func (SubmitMoves) isIntent()      {}
func (RequestReconnect) isIntent() {}
func (RequestLogs) isIntent()      {}

// Enqueuer is the narrow capability handed to whatever decides moves.
type Enqueuer interface {
	Enqueue(Intent) bool
}

type Limiter interface {
	TryAcquire() bool
}

// Router collects move intents between flushes. A later intent for the same
// ant replaces the earlier one.
type Router struct {
	pending map[string][]world.Hex
}

func NewRouter() *Router {
	return &Router{pending: make(map[string][]world.Hex)}
}

func (r *Router) Queue(m SubmitMoves) {
	r.pending[m.AntID] = m.Path
}

func (r *Router) Pending() int { return len(r.pending) }

// Clear drops every pending move and reports how many there were.
func (r *Router) Clear() int {
	n := len(r.pending)
	clear(r.pending)
	return n
}

// Batch drains the pending set into one request, ordered by ant id.
func (r *Router) Batch() types.MoveRequest {
	ids := make([]string, 0, len(r.pending))
	for id := range r.pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	req := types.MoveRequest{Moves: make([]types.MoveCommand, 0, len(ids))}
	for _, id := range ids {
		path := make([]types.Hex, len(r.pending[id]))
		for i, h := range r.pending[id] {
			path[i] = types.Hex{Q: h.Q, R: h.R}
		}
		req.Moves = append(req.Moves, types.MoveCommand{Ant: id, Path: path})
	}
	clear(r.pending)
	return req
}
