package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/arena-sync/internal/config"
	"github.com/DoyleJ11/arena-sync/internal/ratelimit"
	"github.com/DoyleJ11/arena-sync/internal/tasks"
	"github.com/DoyleJ11/arena-sync/pkg/types"
)

// API is the game server as seen by the engine. *transport.Client satisfies it.
type API interface {
	Register(ctx context.Context) (types.RegistrationResponse, error)
	Arena(ctx context.Context) (types.ArenaResponse, error)
	Move(ctx context.Context, req types.MoveRequest) (types.MoveResponse, error)
	Logs(ctx context.Context) ([]types.LogMessage, error)
}

const inboxSize = 64

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLimiter(l Limiter) Option {
	return func(e *Engine) { e.limiter = l }
}

// Engine keeps the local session in step with the server. Tick and Run must
// be called from a single goroutine; Enqueue and Inbox are safe from any.
type Engine struct {
	api     API
	tasks   *tasks.Supervisor
	sched   *Scheduler
	rec     *Reconciler
	router  *Router
	limiter Limiter
	sess    *Session
	sink    Sink
	inbox   chan Intent
	// published is the last status handed to the sink.
	published Status
	log       *zap.Logger
	now       func() time.Time
}

func New(ctx context.Context, cfg config.Session, api API, sink Sink, log *zap.Logger, opts ...Option) *Engine {
	if sink == nil {
		sink = discardSink{}
	}
	e := &Engine{
		api:    api,
		tasks:  tasks.New(ctx),
		sched:  NewScheduler(cfg.TickRate, cfg.AutoReconnect, cfg.PollFailureLimit),
		router: NewRouter(),
		sess:   NewSession(),
		sink:   sink,
		inbox:  make(chan Intent, inboxSize),
		log:    log.Named("engine"),
		now:    time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	if e.limiter == nil {
		e.limiter = ratelimit.NewWithClock(ratelimit.DefaultInterval, e.now)
	}
	e.published = e.sess.Status
	e.rec = &Reconciler{
		tasks: e.tasks,
		sched: e.sched,
		sink:  e.sink,
		log:   e.log,
		now:   e.now,
	}
	return e
}

// Inbox exposes the intent queue so callers can block on a full queue if
// they prefer that to Enqueue's refusal.
func (e *Engine) Inbox() chan<- Intent { return e.inbox }

// Enqueue hands an intent to the engine without blocking. It returns false
// when the queue is full.
func (e *Engine) Enqueue(i Intent) bool {
	select {
	case e.inbox <- i:
		return true
	default:
		return false
	}
}

func (e *Engine) Session() *Session { return e.sess }
func (e *Engine) State() State      { return e.sched.State() }
func (e *Engine) Backoff() Backoff  { return e.sched.Backoff() }

// Pending reports tracked operations of kind, finished or not.
func (e *Engine) Pending(kind tasks.Kind) int { return e.tasks.Pending(kind) }

func (e *Engine) PendingMoves() int { return e.router.Pending() }

// Tick runs one scheduling step. Finished work is applied before any new
// operation is considered, and at most one operation per kind is spawned.
func (e *Engine) Tick(elapsed time.Duration) {
	if e.rec.Drain(e.sess) {
		e.log.Warn("arena polls keep failing, reconnecting")
		e.reconnect()
	}

	e.drainInbox()

	switch e.sched.onTick(elapsed, e.sess, e.tasks.Pending(tasks.KindRegister) > 0, e.tasks.Pending(tasks.KindArena) > 0) {
	case actRegister:
		e.spawnRegister()
	case actPoll:
		e.spawnPoll()
	}

	e.flushMoves()
	e.publishStatus()
}

// publishStatus emits StatusChanged once per tick at most, and only when some
// field differs from what was last published.
func (e *Engine) publishStatus() {
	e.sess.Status.State = e.sched.state
	if e.sess.Status == e.published {
		return
	}
	e.published = e.sess.Status
	e.sink.Publish(StatusChanged{Status: e.sess.Status})
}

// Run drives Tick from ticks until ctx is done, then waits for in-flight
// operations to return.
func (e *Engine) Run(ctx context.Context, ticks <-chan time.Time) error {
	last := e.now()
	for {
		select {
		case <-ctx.Done():
			e.tasks.Wait()
			return nil

		case t := <-ticks:
			elapsed := t.Sub(last)
			if elapsed < 0 {
				elapsed = 0
			}
			last = t
			e.Tick(elapsed)
		}
	}
}

func (e *Engine) drainInbox() {
	for {
		select {
		case i := <-e.inbox:
			switch msg := i.(type) {
			case SubmitMoves:
				e.router.Queue(msg)

			case RequestReconnect:
				e.log.Info("reconnect requested")
				e.reconnect()

			case RequestLogs:
				e.requestLogs()
			}
		default:
			return
		}
	}
}

// reconnect drops the registration and any unsent moves, then starts over
// from the base backoff regardless of any running timer.
func (e *Engine) reconnect() {
	clearRegistration(e.sess, e.sink)
	if n := e.router.Clear(); n > 0 {
		e.log.Info("discarding unsent moves", zap.Int("moves", n))
	}
	e.sched.forceReconnect()
	e.sess.setStatus(false, "Reconnecting...")

	if e.tasks.Pending(tasks.KindRegister) > 0 {
		// Keep the single registration already running instead of adding a
		// second one; its answer now belongs to the new generation.
		e.tasks.Retag(tasks.KindRegister, e.sched.gen)
		e.log.Debug("adopting in-flight registration", zap.Uint64("gen", e.sched.gen))
		return
	}
	e.spawnRegister()
}

func (e *Engine) spawnRegister() {
	e.sess.Status.LastAttempt = e.now()
	e.log.Info("registration attempt",
		zap.Int("attempt", e.sched.backoff.Attempts+1),
		zap.Stringer("state", e.sched.state),
	)
	tasks.Spawn(e.tasks, tasks.KindRegister, e.sched.gen, e.api.Register)
}

func (e *Engine) spawnPoll() {
	e.log.Debug("polling arena")
	tasks.Spawn(e.tasks, tasks.KindArena, e.sched.gen, e.api.Arena)
}

func (e *Engine) requestLogs() {
	if !e.sess.Registered() {
		e.log.Warn("logs requested while not registered")
		return
	}
	if e.tasks.Pending(tasks.KindLogs) > 0 {
		return
	}
	e.log.Info("requesting game logs")
	tasks.Spawn(e.tasks, tasks.KindLogs, e.sched.gen, e.api.Logs)
}

func (e *Engine) flushMoves() {
	if e.router.Pending() == 0 || e.sched.state != StateActive || !e.sess.Registered() {
		return
	}
	if e.tasks.Pending(tasks.KindMove) > 0 {
		return
	}
	if !e.limiter.TryAcquire() {
		return
	}

	req := e.router.Batch()
	e.log.Info("sending move batch", zap.Int("moves", len(req.Moves)))
	tasks.Spawn(e.tasks, tasks.KindMove, e.sched.gen, func(ctx context.Context) (types.MoveResponse, error) {
		return e.api.Move(ctx, req)
	})
}
