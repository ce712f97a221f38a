package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/arena-sync/internal/config"
	"github.com/DoyleJ11/arena-sync/internal/transport"
	"github.com/DoyleJ11/arena-sync/pkg/types"
)

type fakeAPI struct {
	mu       sync.Mutex
	register func() (types.RegistrationResponse, error)
	arena    func() (types.ArenaResponse, error)
	move     func(types.MoveRequest) (types.MoveResponse, error)
	logs     func() ([]types.LogMessage, error)
	calls    map[string]int
	moves    []types.MoveRequest
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		register: func() (types.RegistrationResponse, error) {
			return types.RegistrationResponse{Realm: "r1", Name: "bot1", LobbyEndsIn: 120}, nil
		},
		arena: func() (types.ArenaResponse, error) { return types.ArenaResponse{TurnNo: 1}, nil },
		move: func(types.MoveRequest) (types.MoveResponse, error) {
			return types.MoveResponse{}, nil
		},
		logs:  func() ([]types.LogMessage, error) { return nil, nil },
		calls: map[string]int{},
	}
}

func (f *fakeAPI) Register(ctx context.Context) (types.RegistrationResponse, error) {
	f.mu.Lock()
	f.calls["register"]++
	fn := f.register
	f.mu.Unlock()
	return fn()
}

func (f *fakeAPI) Arena(ctx context.Context) (types.ArenaResponse, error) {
	f.mu.Lock()
	f.calls["arena"]++
	fn := f.arena
	f.mu.Unlock()
	return fn()
}

func (f *fakeAPI) Move(ctx context.Context, req types.MoveRequest) (types.MoveResponse, error) {
	f.mu.Lock()
	f.calls["move"]++
	f.moves = append(f.moves, req)
	fn := f.move
	f.mu.Unlock()
	return fn(req)
}

func (f *fakeAPI) Logs(ctx context.Context) ([]types.LogMessage, error) {
	f.mu.Lock()
	f.calls["logs"]++
	fn := f.logs
	f.mu.Unlock()
	return fn()
}

func (f *fakeAPI) set(apply func(f *fakeAPI)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	apply(f)
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

type allowAll struct{}

func (allowAll) TryAcquire() bool { return true }

type denyAll struct{}

func (denyAll) TryAcquire() bool { return false }

// waitStarted blocks until a held operation has begun running.
func waitStarted(t *testing.T, started <-chan struct{}) {
	t.Helper()
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatalf("operation never started")
	}
}

type harness struct {
	t      *testing.T
	e      *Engine
	api    *fakeAPI
	events []Event
	clock  time.Time
}

func testSession() config.Session {
	return config.Session{
		URL:              "https://arena.example",
		Token:            "tok",
		TickRate:         time.Second,
		AutoReconnect:    true,
		Timeout:          time.Second,
		PollFailureLimit: 0,
	}
}

func newHarness(t *testing.T, cfg config.Session, opts ...Option) *harness {
	t.Helper()
	h := &harness{t: t, api: newFakeAPI(), clock: time.Unix(1_700_000_000, 0)}
	sink := SinkFunc(func(ev Event) { h.events = append(h.events, ev) })

	all := append([]Option{WithClock(h.now), WithLimiter(allowAll{})}, opts...)
	h.e = New(context.Background(), cfg, h.api, sink, zap.NewNop(), all...)
	return h
}

func (h *harness) now() time.Time { return h.clock }

func (h *harness) tick(d time.Duration) {
	h.clock = h.clock.Add(d)
	h.e.Tick(d)
}

// settle lets every spawned operation finish and applies the results.
func (h *harness) settle() {
	h.e.tasks.Wait()
	h.e.Tick(0)
}

// register drives a fresh engine to Active through the first timer firing.
func (h *harness) register() {
	h.t.Helper()
	h.tick(0)
	h.tick(DefaultBackoffBase)
	h.settle()
	if h.e.State() != StateActive {
		h.t.Fatalf("want active after registration, got %v", h.e.State())
	}
}

func (h *harness) lastStatus() Status {
	h.t.Helper()
	st := h.statusEvents()
	if len(st) == 0 {
		h.t.Fatalf("no status published")
	}
	return st[len(st)-1]
}

func (h *harness) statusEvents() []Status {
	var out []Status
	for _, ev := range h.events {
		if sc, ok := ev.(StatusChanged); ok {
			out = append(out, sc.Status)
		}
	}
	return out
}

func refused() error {
	return &transport.Error{Kind: transport.KindTransport, Op: "register", Err: errors.New("dial tcp: connection refused")}
}

func lobbyClosed(body string) error {
	return &transport.Error{Kind: transport.KindProtocol, Op: "register", Status: 400, Body: body}
}
