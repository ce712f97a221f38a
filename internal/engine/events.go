package engine

import (
	"github.com/DoyleJ11/arena-sync/internal/world"
	"github.com/DoyleJ11/arena-sync/pkg/types"
)

type Event interface{ isEvent() }

type StatusChanged struct {
	Status Status
}

// SnapshotUpdated carries a world that is never modified again.
type SnapshotUpdated struct {
	Version int
	World   *world.State
}

type Registered struct {
	Registration Registration
}

// Unregistered follows a reconnect or a hard registration failure that
// dropped a held registration.
type Unregistered struct{}

type LogsReceived struct {
	Logs []types.LogMessage
}

func (StatusChanged) isEvent()   {}
func (SnapshotUpdated) isEvent() {}
func (Registered) isEvent()      {}
func (Unregistered) isEvent()    {}
func (LogsReceived) isEvent()    {}

// Sink receives events on the scheduling goroutine. Publish must not block.
type Sink interface {
	Publish(Event)
}

type SinkFunc func(Event)

func (f SinkFunc) Publish(e Event) { f(e) }

type discardSink struct{}

func (discardSink) Publish(Event) {}
