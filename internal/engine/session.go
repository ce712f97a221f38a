package engine

import (
	"time"

	opt "github.com/repeale/fp-go/option"

	"github.com/DoyleJ11/arena-sync/internal/world"
	"github.com/DoyleJ11/arena-sync/pkg/types"
)

type Registration struct {
	Realm       string        `json:"realm"`
	Name        string        `json:"name"`
	LobbyEndsIn time.Duration `json:"lobby_ends_in"`
	NextTurn    float64       `json:"next_turn"`
}

func registrationFrom(r types.RegistrationResponse) Registration {
	return Registration{
		Realm:       r.Realm,
		Name:        r.Name,
		LobbyEndsIn: time.Duration(r.LobbyEndsIn) * time.Second,
		NextTurn:    r.NextTurn,
	}
}

type Status struct {
	Connected   bool      `json:"connected"`
	Message     string    `json:"message"`
	State       State     `json:"state"`
	LastAttempt time.Time `json:"last_attempt"`
}

// Session is all mutable state shared by the scheduler and the reconciler.
// Only the goroutine that calls Engine.Tick touches it.
type Session struct {
	Registration opt.Option[Registration]
	Status       Status
	World        *world.State
	Version      int
}

func NewSession() *Session {
	empty := world.NewEmptyState()
	return &Session{
		Registration: opt.None[Registration](),
		Status:       Status{Message: "Disconnected"},
		World:        &empty,
	}
}

func (s *Session) Registered() bool {
	return opt.IsSome(s.Registration)
}

func (s *Session) setStatus(connected bool, msg string) {
	s.Status.Connected = connected
	s.Status.Message = msg
}
