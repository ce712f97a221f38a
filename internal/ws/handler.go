package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/DoyleJ11/arena-sync/internal/engine"
	"github.com/DoyleJ11/arena-sync/internal/hub"
	"github.com/DoyleJ11/arena-sync/internal/types"
	"github.com/DoyleJ11/arena-sync/internal/world"
)

const (
	outboxSize   = 16
	writeTimeout = 3 * time.Second
)

// Handler streams engine events to the client and turns client messages
// into engine intents.
func Handler(h *hub.Hub, eng engine.Enqueuer, log *zap.Logger) http.HandlerFunc {
	log = log.Named("ws")
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			log.Warn("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID, events := h.Subscribe(outboxSize)
		defer h.Unsubscribe(clientID)
		log := log.With(zap.String("client_id", clientID))
		log.Info("client connected")

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		send := func(msg types.ServerMessage) error {
			wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
			defer wcancel()
			return wsjson.Write(wctx, conn, msg)
		}

		// Writer goroutine
		go func() {
			defer cancel()
			for ev := range events {
				msg, ok := toServerMessage(ev)
				if !ok {
					continue
				}
				if err := send(msg); err != nil {
					log.Debug("write failed", zap.Error(err))
					return
				}
			}
			if ctx.Err() == nil {
				// The hub dropped us for falling behind, or is shutting down.
				conn.Close(websocket.StatusTryAgainLater, "subscription ended")
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					log.Info("client disconnected")
				default:
					log.Debug("read ended", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = send(types.ServerMessage{Type: "Error", Error: "bad json"})
				continue
			}

			intent, ok := toIntent(cm)
			if !ok {
				_ = send(types.ServerMessage{Type: "Error", Error: "invalid message"})
				continue
			}

			if !eng.Enqueue(intent) {
				log.Warn("engine inbox full, intent refused", zap.String("type", cm.Type))
				_ = send(types.ServerMessage{Type: "Error", Error: "engine busy"})
			}
		}
	}
}

func toIntent(m types.ClientMessage) (engine.Intent, bool) {
	switch m.Type {
	case "SubmitMoves":
		if m.Ant == "" {
			return nil, false
		}
		path := make([]world.Hex, len(m.Path))
		for i, h := range m.Path {
			path[i] = world.Hex{Q: h.Q, R: h.R}
		}
		return engine.SubmitMoves{AntID: m.Ant, Path: path}, true
	case "RequestReconnect":
		return engine.RequestReconnect{}, true
	case "RequestLogs":
		return engine.RequestLogs{}, true
	default:
		return nil, false
	}
}

func toServerMessage(ev engine.Event) (types.ServerMessage, bool) {
	switch e := ev.(type) {
	case engine.StatusChanged:
		st := e.Status
		return types.ServerMessage{Type: "Status", Status: &st}, true
	case engine.SnapshotUpdated:
		return types.ServerMessage{Type: "Snapshot", Version: e.Version, World: e.World}, true
	case engine.Registered:
		reg := e.Registration
		return types.ServerMessage{Type: "Registered", Registration: &reg}, true
	case engine.Unregistered:
		return types.ServerMessage{Type: "Unregistered"}, true
	case engine.LogsReceived:
		return types.ServerMessage{Type: "Logs", Logs: e.Logs}, true
	default:
		return types.ServerMessage{}, false
	}
}
