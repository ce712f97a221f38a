package hub

import (
	"github.com/google/uuid"
	"github.com/sasha-s/go-deadlock"
	"go.uber.org/zap"

	"github.com/DoyleJ11/arena-sync/internal/engine"
	"github.com/DoyleJ11/arena-sync/internal/world"
	"github.com/DoyleJ11/arena-sync/pkg/types"
)

// minBuffer leaves room for the status, snapshot and registration sent on join.
const minBuffer = 4

// View is a consistent copy of everything the hub caches.
type View struct {
	Status       engine.Status
	Registration *engine.Registration
	Version      int
	World        *world.State
	Logs         []types.LogMessage
	NumClients   int
}

// Hub is the read side of the engine. It implements engine.Sink, keeps the
// latest status and snapshot, and fans events out to subscribers.
type Hub struct {
	mu      deadlock.RWMutex
	status  engine.Status
	reg     *engine.Registration
	version int
	world   *world.State
	logs    []types.LogMessage
	clients map[string]chan engine.Event
	closed  bool
	log     *zap.Logger
}

func New(log *zap.Logger) *Hub {
	return &Hub{
		status:  engine.Status{Message: "Disconnected"},
		clients: make(map[string]chan engine.Event),
		log:     log.Named("hub"),
	}
}

// Publish records ev and forwards it to every subscriber without blocking.
func (h *Hub) Publish(ev engine.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch e := ev.(type) {
	case engine.StatusChanged:
		h.status = e.Status
	case engine.SnapshotUpdated:
		h.version = e.Version
		h.world = e.World
	case engine.Registered:
		reg := e.Registration
		h.reg = &reg
	case engine.Unregistered:
		h.reg = nil
	case engine.LogsReceived:
		h.logs = e.Logs
	}

	h.broadcast(ev)
}

func (h *Hub) broadcast(ev engine.Event) {
	for id, ch := range h.clients {
		select {
		case ch <- ev:
		default:
			// Subscriber is slow or full; drop it.
			close(ch)
			delete(h.clients, id)
			h.log.Warn("dropping slow subscriber", zap.String("client_id", id))
		}
	}
}

// Subscribe registers a new subscriber and queues the current state on its
// channel right away. The channel is closed when the subscriber is dropped,
// unsubscribed, or the hub closes.
func (h *Hub) Subscribe(buffer int) (string, <-chan engine.Event) {
	if buffer < minBuffer {
		buffer = minBuffer
	}
	id := uuid.NewString()
	ch := make(chan engine.Event, buffer)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(ch)
		return id, ch
	}

	ch <- engine.StatusChanged{Status: h.status}
	if h.reg != nil {
		ch <- engine.Registered{Registration: *h.reg}
	}
	if h.world != nil {
		ch <- engine.SnapshotUpdated{Version: h.version, World: h.world}
	}
	h.clients[id] = ch
	h.log.Debug("subscriber joined", zap.String("client_id", id), zap.Int("clients", len(h.clients)))
	return id, ch
}

func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.clients[id]; ok {
		close(ch)
		delete(h.clients, id)
		h.log.Debug("subscriber left", zap.String("client_id", id))
	}
}

// Close ends every subscription. Later Publish calls only update the cache.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.clients {
		close(ch)
		delete(h.clients, id)
	}
	h.closed = true
}

func (h *Hub) View() View {
	h.mu.RLock()
	defer h.mu.RUnlock()

	v := View{
		Status:     h.status,
		Version:    h.version,
		World:      h.world,
		Logs:       h.logs,
		NumClients: len(h.clients),
	}
	if h.reg != nil {
		reg := *h.reg
		v.Registration = &reg
	}
	return v
}
