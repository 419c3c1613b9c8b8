package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/tmccall/arenad/internal/broadcast"
	"github.com/tmccall/arenad/internal/model"
)

// Hub tracks every connected client and the named channels they belong to.
// It is the transport half of the publish/subscribe collaborator: the core
// talks to it only through the broadcast.Publisher interface plus the
// disconnect callback.
type Hub struct {
	logger *slog.Logger

	mu       sync.RWMutex
	clients  map[model.PlayerID]*Client
	channels map[string]map[model.PlayerID]*Client

	onDisconnect func(model.PlayerID)
}

// Ensure Hub implements the interface
var _ broadcast.Publisher = (*Hub)(nil)

// NewHub creates a Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:   logger.With(slog.String("component", "ws")),
		clients:  make(map[model.PlayerID]*Client),
		channels: make(map[string]map[model.PlayerID]*Client),
	}
}

// SetDisconnectHandler installs the callback invoked after a client has been
// fully removed from the hub. Must be called before clients connect.
func (h *Hub) SetDisconnectHandler(fn func(model.PlayerID)) {
	h.onDisconnect = fn
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("client connected",
		slog.String("client_id", string(c.id)),
		slog.Int("total_clients", count))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.id)
	for name, members := range h.channels {
		delete(members, c.id)
		if len(members) == 0 {
			delete(h.channels, name)
		}
	}
	count := len(h.clients)
	close(c.send)
	h.mu.Unlock()

	h.logger.Info("client disconnected",
		slog.String("client_id", string(c.id)),
		slog.Duration("connection_duration", time.Since(c.connectedAt)),
		slog.Int("total_clients", count))
	if h.onDisconnect != nil {
		h.onDisconnect(c.id)
	}
}

// Join subscribes a client to a named channel
func (h *Hub) Join(clientID model.PlayerID, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[clientID]
	if !ok {
		return
	}
	members, ok := h.channels[channel]
	if !ok {
		members = make(map[model.PlayerID]*Client)
		h.channels[channel] = members
	}
	members[clientID] = c
}

// Leave removes a client from a named channel
func (h *Hub) Leave(clientID model.PlayerID, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.channels[channel]
	if !ok {
		return
	}
	delete(members, clientID)
	if len(members) == 0 {
		delete(h.channels, channel)
	}
}

// ToChannel emits an event to every member of a channel
func (h *Hub) ToChannel(channel string, event string, payload any) {
	msg, err := encodeEvent(event, payload)
	if err != nil {
		h.logger.Error("event encode failed",
			slog.String("event", event),
			slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.channels[channel] {
		h.deliver(c, event, msg)
	}
}

// ToClient emits an event to a single client
func (h *Hub) ToClient(clientID model.PlayerID, event string, payload any) {
	msg, err := encodeEvent(event, payload)
	if err != nil {
		h.logger.Error("event encode failed",
			slog.String("event", event),
			slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.clients[clientID]; ok {
		h.deliver(c, event, msg)
	}
}

// deliver never blocks; a client whose buffer is full loses the message
func (h *Hub) deliver(c *Client, event string, msg []byte) {
	select {
	case c.send <- msg:
	default:
		h.logger.Warn("message dropped - client buffer full",
			slog.String("client_id", string(c.id)),
			slog.String("event", event))
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ChannelSize returns the number of members of a channel
func (h *Hub) ChannelSize(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

type outboundEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func encodeEvent(event string, payload any) ([]byte, error) {
	return json.Marshal(outboundEnvelope{Event: event, Data: payload})
}
