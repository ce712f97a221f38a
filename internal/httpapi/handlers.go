package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/DoyleJ11/arena-sync/internal/engine"
	"github.com/DoyleJ11/arena-sync/internal/hub"
	"github.com/DoyleJ11/arena-sync/internal/types"
	"github.com/DoyleJ11/arena-sync/internal/world"
	arena "github.com/DoyleJ11/arena-sync/pkg/types"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg})
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func Status(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := h.View()
		out := types.StatusView{
			Status:       v.Status,
			State:        v.Status.State,
			Registration: v.Registration,
			Version:      v.Version,
			Subscribers:  v.NumClients,
		}
		if v.World != nil {
			out.Counts = v.World.Counts()
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// Arena serves the latest snapshot, or 404 before the first successful poll.
func Arena(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := h.View()
		if v.World == nil {
			writeError(w, http.StatusNotFound, "no snapshot yet")
			return
		}
		writeJSON(w, http.StatusOK, types.ArenaView{Version: v.Version, World: v.World})
	}
}

// Logs serves the most recently fetched game logs.
func Logs(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logs := h.View().Logs
		if logs == nil {
			logs = []arena.LogMessage{}
		}
		writeJSON(w, http.StatusOK, logs)
	}
}

func SubmitMoves(eng engine.Enqueuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req arena.MoveRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if len(req.Moves) == 0 {
			writeError(w, http.StatusBadRequest, "no moves")
			return
		}
		for _, m := range req.Moves {
			if m.Ant == "" {
				writeError(w, http.StatusBadRequest, "move without ant id")
				return
			}
		}

		for i, m := range req.Moves {
			path := make([]world.Hex, len(m.Path))
			for j, h := range m.Path {
				path[j] = world.Hex{Q: h.Q, R: h.R}
			}
			if !eng.Enqueue(engine.SubmitMoves{AntID: m.Ant, Path: path}) {
				writeJSON(w, http.StatusServiceUnavailable, map[string]any{
					"error":    "engine busy",
					"accepted": i,
				})
				return
			}
		}
		writeJSON(w, http.StatusAccepted, map[string]int{"accepted": len(req.Moves)})
	}
}

func Reconnect(eng engine.Enqueuer) http.HandlerFunc {
	return enqueue(eng, engine.RequestReconnect{})
}

func RequestLogs(eng engine.Enqueuer) http.HandlerFunc {
	return enqueue(eng, engine.RequestLogs{})
}

func enqueue(eng engine.Enqueuer, intent engine.Intent) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !eng.Enqueue(intent) {
			writeError(w, http.StatusServiceUnavailable, "engine busy")
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}
