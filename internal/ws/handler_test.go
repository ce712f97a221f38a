package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DoyleJ11/arena-sync/internal/engine"
	"github.com/DoyleJ11/arena-sync/internal/hub"
	"github.com/DoyleJ11/arena-sync/internal/types"
	"github.com/DoyleJ11/arena-sync/internal/world"
	arena "github.com/DoyleJ11/arena-sync/pkg/types"
)

type chanEngine chan engine.Intent

func (c chanEngine) Enqueue(i engine.Intent) bool {
	select {
	case c <- i:
		return true
	default:
		return false
	}
}

func dial(t *testing.T, h *hub.Hub, eng engine.Enqueuer) *websocket.Conn {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/ws", Handler(h, eng, zap.NewNop()))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func readMsg(t *testing.T, conn *websocket.Conn) types.ServerMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	var msg types.ServerMessage
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	return msg
}

func writeMsg(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, conn, v))
}

func TestHandler_StreamsEvents(t *testing.T) {
	h := hub.New(zap.NewNop())
	conn := dial(t, h, make(chanEngine, 4))

	first := readMsg(t, conn)
	require.Equal(t, "Status", first.Type)
	require.NotNil(t, first.Status)
	require.Equal(t, "Disconnected", first.Status.Message)
	require.Equal(t, engine.StateIdle, first.Status.State)

	w := world.FromArena(arena.ArenaResponse{TurnNo: 5}, time.Now())
	h.Publish(engine.SnapshotUpdated{Version: 1, World: &w})

	snap := readMsg(t, conn)
	require.Equal(t, "Snapshot", snap.Type)
	require.Equal(t, 1, snap.Version)
	require.NotNil(t, snap.World)
	require.Equal(t, 5, snap.World.Turn)

	h.Publish(engine.LogsReceived{Logs: []arena.LogMessage{{Message: "hi"}}})
	logs := readMsg(t, conn)
	require.Equal(t, "Logs", logs.Type)
	require.Len(t, logs.Logs, 1)
}

func TestHandler_ClientMessagesBecomeIntents(t *testing.T) {
	h := hub.New(zap.NewNop())
	eng := make(chanEngine, 4)
	conn := dial(t, h, eng)
	readMsg(t, conn) // initial status

	writeMsg(t, conn, types.ClientMessage{Type: "SubmitMoves", Ant: "a1", Path: []arena.Hex{{Q: 2, R: 3}}})
	writeMsg(t, conn, types.ClientMessage{Type: "RequestReconnect"})
	writeMsg(t, conn, types.ClientMessage{Type: "RequestLogs"})

	want := []engine.Intent{
		engine.SubmitMoves{AntID: "a1", Path: []world.Hex{{Q: 2, R: 3}}},
		engine.RequestReconnect{},
		engine.RequestLogs{},
	}
	for _, w := range want {
		select {
		case got := <-eng:
			require.Equal(t, w, got)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %T", w)
		}
	}
}

func TestHandler_RejectsBadMessages(t *testing.T) {
	h := hub.New(zap.NewNop())
	eng := make(chanEngine, 4)
	conn := dial(t, h, eng)
	readMsg(t, conn)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{not json`)))
	msg := readMsg(t, conn)
	require.Equal(t, "Error", msg.Type)
	require.Equal(t, "bad json", msg.Error)

	writeMsg(t, conn, types.ClientMessage{Type: "LockPick"})
	msg = readMsg(t, conn)
	require.Equal(t, "Error", msg.Type)
	require.Equal(t, "invalid message", msg.Error)

	require.Empty(t, eng)
}

func TestHandler_InboxFull(t *testing.T) {
	h := hub.New(zap.NewNop())
	conn := dial(t, h, make(chanEngine)) // unbuffered: every Enqueue is refused
	readMsg(t, conn)

	writeMsg(t, conn, types.ClientMessage{Type: "RequestLogs"})
	msg := readMsg(t, conn)
	require.Equal(t, "Error", msg.Type)
	require.Equal(t, "engine busy", msg.Error)
}

func TestToIntent_SubmitMovesNeedsAnt(t *testing.T) {
	if _, ok := toIntent(types.ClientMessage{Type: "SubmitMoves"}); ok {
		t.Fatalf("expected SubmitMoves without ant to be rejected")
	}
}
