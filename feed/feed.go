// Package feed streams exchange lifecycle events to websocket
// subscribers as JSON envelopes of the form {"channel": ..., "data": ...}.
package feed

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	blueocean "github.com/blueoceanlabs/exchange-go"
)

// Channel names published by the hub.
const (
	ChannelOrderApproved  = "order.approved"
	ChannelOrderCancelled = "order.cancelled"
	ChannelOrdersMatched  = "orders.matched"
)

// Envelope is the wire frame sent to every subscriber.
type Envelope struct {
	Channel string      `json:"channel"`
	Data    interface{} `json:"data"`
}

// Hub fans exchange events out to connected websocket clients. It
// implements the exchange's notifier interface, so it can be passed
// directly as Params.Notifier.
type Hub struct {
	mu       sync.Mutex
	conns    map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
	log      logrus.FieldLogger
}

var _ blueocean.Notifier = (*Hub)(nil)

// NewHub returns an empty hub. A nil logger falls back to the standard
// logrus logger.
func NewHub(log logrus.FieldLogger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		conns: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: log,
	}
}

// ServeHTTP upgrades the request to a websocket and registers the
// connection for broadcasts until the peer disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	// Drain incoming frames so close handshakes and pings are
	// processed; the feed itself is write-only.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// OrderApproved broadcasts an approval event.
func (h *Hub) OrderApproved(ev blueocean.OrderApprovedEvent) {
	h.broadcast(ChannelOrderApproved, ev)
}

// OrderCancelled broadcasts a cancellation event.
func (h *Hub) OrderCancelled(ev blueocean.OrderCancelledEvent) {
	h.broadcast(ChannelOrderCancelled, ev)
}

// OrdersMatched broadcasts a settlement event.
func (h *Hub) OrdersMatched(ev blueocean.OrdersMatchedEvent) {
	h.broadcast(ChannelOrdersMatched, ev)
}

func (h *Hub) broadcast(channel string, data interface{}) {
	payload, err := json.Marshal(Envelope{Channel: channel, Data: data})
	if err != nil {
		h.log.WithError(err).Error("failed to encode feed event")
		return
	}
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.drop(c)
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.conns[conn]
	delete(h.conns, conn)
	h.mu.Unlock()
	if ok {
		conn.Close()
	}
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := h.conns
	h.conns = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()
	for c := range conns {
		c.Close()
	}
}
