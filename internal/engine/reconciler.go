package engine

import (
	"errors"
	"fmt"
	"time"

	opt "github.com/repeale/fp-go/option"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/DoyleJ11/arena-sync/internal/tasks"
	"github.com/DoyleJ11/arena-sync/internal/transport"
	"github.com/DoyleJ11/arena-sync/internal/world"
	"github.com/DoyleJ11/arena-sync/pkg/types"
)

// Reconciler applies finished operations to the session. Every finished
// entry it sees is harvested and therefore removed, whatever the outcome.
type Reconciler struct {
	tasks *tasks.Supervisor
	sched *Scheduler
	sink  Sink
	log   *zap.Logger
	now   func() time.Time
}

// Drain runs one pass over every operation kind. It reports whether the
// arena poll failure streak asks for a reconnect.
func (r *Reconciler) Drain(sess *Session) (reconnect bool) {
	r.drainRegister(sess)
	reconnect = r.drainArena(sess)
	r.drainMoves(sess)
	r.drainLogs()
	return reconnect
}

func (r *Reconciler) stale(h tasks.Handle) bool {
	if h.Gen == r.sched.gen {
		return false
	}
	r.log.Debug("dropping result from before reconnect",
		zap.String("kind", string(h.Kind)),
		zap.Uint64("gen", h.Gen),
		zap.Uint64("current_gen", r.sched.gen),
	)
	return true
}

func (r *Reconciler) drainRegister(sess *Session) {
	for _, h := range r.tasks.Finished(tasks.KindRegister) {
		resp, err := tasks.Harvest[types.RegistrationResponse](r.tasks, h)
		if r.stale(h) {
			continue
		}
		sess.Status.LastAttempt = r.now()

		if err != nil {
			r.registrationFailed(sess, err)
			continue
		}

		reg := registrationFrom(resp)
		sess.Registration = opt.Some(reg)
		r.sched.onRegistered()

		r.log.Info("registered",
			zap.String("realm", reg.Realm),
			zap.String("name", reg.Name),
			zap.Duration("lobby_ends_in", reg.LobbyEndsIn),
		)
		sess.setStatus(true, connectedMessage(reg))
		r.sink.Publish(Registered{Registration: reg})
	}
}

func (r *Reconciler) registrationFailed(sess *Session, err error) {
	if classifyRegistration(err) == failureSoft {
		r.sched.onSoftFailure()
		msg := nextRoundMessage(err.Error())
		r.log.Info("no active game, waiting for next round", zap.String("status", msg))
		sess.setStatus(false, msg)
		return
	}

	clearRegistration(sess, r.sink)
	r.sched.onHardFailure()

	fields := []zap.Field{
		zap.Error(err),
		zap.Int("attempts", r.sched.backoff.Attempts),
		zap.Duration("retry_in", r.sched.backoff.Current),
	}
	if kind, ok := transport.KindOf(err); ok {
		fields = append(fields, zap.Stringer("kind", kind))
	}
	r.log.Error("registration failed", fields...)
	sess.setStatus(false, "Registration failed: "+err.Error())
}

func (r *Reconciler) drainArena(sess *Session) (reconnect bool) {
	for _, h := range r.tasks.Finished(tasks.KindArena) {
		resp, err := tasks.Harvest[types.ArenaResponse](r.tasks, h)
		if r.stale(h) {
			continue
		}

		if err != nil {
			r.log.Error("arena poll failed", zap.Error(err))
			// The last good world stays in place.
			sess.setStatus(false, "Arena poll failed: "+err.Error())
			if r.sched.onPollFailure() {
				reconnect = true
			}
			continue
		}

		r.sched.onPollSuccess()
		r.apply(sess, resp)
		if opt.IsSome(sess.Registration) {
			sess.setStatus(true, connectedMessage(sess.Registration.Value))
		}
	}
	return reconnect
}

func (r *Reconciler) drainMoves(sess *Session) {
	for _, h := range r.tasks.Finished(tasks.KindMove) {
		resp, err := tasks.Harvest[types.MoveResponse](r.tasks, h)
		if r.stale(h) {
			continue
		}

		if err != nil {
			// A rejected batch says nothing about the connection itself.
			r.log.Error("move batch failed", zap.Error(err))
			continue
		}

		r.apply(sess, resp.ArenaResponse)

		if len(resp.Errors) > 0 {
			var errs error
			for _, msg := range resp.Errors {
				errs = multierr.Append(errs, errors.New(msg))
			}
			r.log.Warn("move batch had rejected commands",
				zap.Int("rejected", len(resp.Errors)),
				zap.Error(errs),
			)
			continue
		}
		r.log.Debug("move batch applied", zap.Int("turn", resp.TurnNo))
	}
}

func (r *Reconciler) drainLogs() {
	for _, h := range r.tasks.Finished(tasks.KindLogs) {
		logs, err := tasks.Harvest[[]types.LogMessage](r.tasks, h)
		if r.stale(h) {
			continue
		}

		if err != nil {
			r.log.Error("fetch logs failed", zap.Error(err))
			continue
		}

		r.log.Info("received game logs", zap.Int("count", len(logs)))
		for _, l := range logs {
			r.log.Info("game log", zap.String("time", l.Time), zap.String("message", l.Message))
		}
		r.sink.Publish(LogsReceived{Logs: logs})
	}
}

// apply swaps in a freshly built world. Nothing of the previous one is kept.
func (r *Reconciler) apply(sess *Session, resp types.ArenaResponse) {
	w := world.FromArena(resp, r.now())
	sess.World = &w
	sess.Version++
	r.log.Debug("world updated", zap.Int("turn", w.Turn), zap.Int("version", sess.Version))
	r.sink.Publish(SnapshotUpdated{Version: sess.Version, World: sess.World})
}

func connectedMessage(reg Registration) string {
	return fmt.Sprintf("Connected to %s as %s", reg.Realm, reg.Name)
}

func clearRegistration(sess *Session, sink Sink) {
	if !sess.Registered() {
		return
	}
	sess.Registration = opt.None[Registration]()
	sink.Publish(Unregistered{})
}
