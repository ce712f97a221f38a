package engine

import (
	"fmt"
	"time"
)

type State int

const (
	StateIdle State = iota
	StateRegistering
	StateWaitingForLobby
	StateActive
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRegistering:
		return "registering"
	case StateWaitingForLobby:
		return "waiting_for_lobby"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	for _, st := range []State{StateIdle, StateRegistering, StateWaitingForLobby, StateActive} {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown scheduler state %q", b)
}

type action int

const (
	actNone action = iota
	actRegister
	actPoll
)

// Scheduler decides once per tick whether to register, wait, or poll. It
// never performs I/O itself; the engine acts on what onTick returns.
type Scheduler struct {
	state      State
	backoff    Backoff
	regTimer   timer
	lobbyTimer timer
	pollTimer  timer

	// autoReconnect only gates recovery from a failing poll streak.
	autoReconnect    bool
	pollFailureLimit int

	// gen is bumped on every forced reconnect. Operations carry the gen they
	// were spawned in and results from an older gen are dropped.
	gen uint64

	pollFailures int
}

func NewScheduler(pollInterval time.Duration, autoReconnect bool, pollFailureLimit int) *Scheduler {
	b := NewBackoff()
	return &Scheduler{
		state:            StateIdle,
		backoff:          b,
		regTimer:         newTimer(b.Current),
		lobbyTimer:       newTimer(LobbyRetryInterval),
		pollTimer:        newTimer(pollInterval),
		autoReconnect:    autoReconnect,
		pollFailureLimit: pollFailureLimit,
	}
}

func (s *Scheduler) State() State       { return s.state }
func (s *Scheduler) Backoff() Backoff   { return s.backoff }
func (s *Scheduler) Generation() uint64 { return s.gen }

func (s *Scheduler) onTick(elapsed time.Duration, sess *Session, registerInFlight, pollInFlight bool) action {
	switch s.state {
	case StateIdle:
		s.state = StateRegistering
		s.regTimer.setPeriod(s.backoff.Current)

	case StateRegistering:
		if s.regTimer.tick(elapsed) && !sess.Registered() && !registerInFlight {
			return actRegister
		}

	case StateWaitingForLobby:
		if s.lobbyTimer.tick(elapsed) && !registerInFlight {
			return actRegister
		}

	case StateActive:
		if s.pollTimer.tick(elapsed) && sess.Registered() && !pollInFlight {
			return actPoll
		}
	}
	return actNone
}

func (s *Scheduler) onRegistered() {
	s.backoff.Reset(false)
	s.regTimer.setPeriod(s.backoff.Current)
	s.pollTimer.reset()
	s.pollFailures = 0
	s.state = StateActive
}

// onSoftFailure parks the scheduler until the next round opens. The attempt
// counter is left alone.
func (s *Scheduler) onSoftFailure() {
	s.backoff.Reset(true)
	s.regTimer.setPeriod(s.backoff.Current)
	s.lobbyTimer.reset()
	s.state = StateWaitingForLobby
}

func (s *Scheduler) onHardFailure() {
	s.backoff.Escalate()
	s.regTimer.setPeriod(s.backoff.Current)
	s.state = StateRegistering
}

func (s *Scheduler) onPollSuccess() {
	s.pollFailures = 0
}

// onPollFailure reports whether the failure streak should force a reconnect.
func (s *Scheduler) onPollFailure() bool {
	s.pollFailures++
	return s.autoReconnect && s.pollFailureLimit > 0 && s.pollFailures >= s.pollFailureLimit
}

func (s *Scheduler) forceReconnect() {
	s.gen++
	s.backoff.Reset(false)
	s.regTimer.setPeriod(s.backoff.Current)
	s.pollFailures = 0
	s.state = StateRegistering
}
