package types

import (
	"github.com/DoyleJ11/arena-sync/internal/engine"
	"github.com/DoyleJ11/arena-sync/internal/world"
	arena "github.com/DoyleJ11/arena-sync/pkg/types"
)

// ClientMessage is what a collaborator sends over the event stream.
type ClientMessage struct {
	Type string      `json:"type"` // "SubmitMoves" | "RequestReconnect" | "RequestLogs"
	Ant  string      `json:"ant,omitempty"`
	Path []arena.Hex `json:"path,omitempty"`
}

type ServerMessage struct {
	Type         string               `json:"type"` // "Status" | "Snapshot" | "Registered" | "Unregistered" | "Logs" | "Error"
	Version      int                  `json:"version,omitempty"`
	Status       *engine.Status       `json:"status,omitempty"`
	World        *world.State         `json:"world,omitempty"`
	Registration *engine.Registration `json:"registration,omitempty"`
	Logs         []arena.LogMessage   `json:"logs,omitempty"`
	Error        string               `json:"error,omitempty"`
}

// StatusView is the body of GET /status.
type StatusView struct {
	Status       engine.Status        `json:"status"`
	State        engine.State         `json:"state"`
	Registration *engine.Registration `json:"registration,omitempty"`
	Version      int                  `json:"version"`
	Counts       world.Counts         `json:"counts"`
	Subscribers  int                  `json:"subscribers"`
}

// ArenaView is the body of GET /arena.
type ArenaView struct {
	Version int          `json:"version"`
	World   *world.State `json:"world"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
