// Package statusfeed pushes swap status updates to long-lived websocket
// clients, so an operator UI or counterparty-facing dashboard doesn't have
// to poll the driver for NextAction() projections.
package statusfeed

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/hashlockd/swapd/internal/swapfsm"
	"github.com/hashlockd/swapd/pkg/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// StatusEvent is one status push for a single swap.
type StatusEvent struct {
	SwapID    uuid.UUID          `json:"swap_id"`
	Alpha     swapfsm.HtlcStatus `json:"alpha_status"`
	Beta      swapfsm.HtlcStatus `json:"beta_status"`
	Terminal  bool               `json:"terminal"`
	Timestamp int64              `json:"timestamp"`
}

// Subscription is a client's request to (un)watch specific swap IDs. A
// client watching no IDs receives every swap; an empty SwapIDs list
// changes nothing.
type Subscription struct {
	Action  string      `json:"action"` // "subscribe" or "unsubscribe"
	SwapIDs []uuid.UUID `json:"swap_ids"`
}

// Client is one connected websocket consumer of the status feed.
type Client struct {
	conn    *websocket.Conn
	send    chan []byte
	watches map[uuid.UUID]bool // empty means "all"
	mu      sync.RWMutex
	hub     *Hub
}

// Hub fans StatusEvents out to every interested Client.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan StatusEvent
	register   chan *Client
	unregister chan *Client
	log        *logging.Logger
}

// NewHub constructs a Hub. Call Run in its own goroutine before accepting
// connections via ServeHTTP.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan StatusEvent, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        logging.GetDefault().Component("statusfeed"),
	}
}

// Run processes registrations and broadcasts forever: Hub has no stop
// method and its channels are never closed, so Run blocks for the life of
// the process.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.log.Debug("status feed client connected", "clients", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.log.Debug("status feed client disconnected", "clients", len(h.clients))

		case ev := <-h.broadcast:
			data, err := json.Marshal(ev)
			if err != nil {
				h.log.Error("marshal status event failed", "error", err)
				continue
			}
			for c := range h.clients {
				c.mu.RLock()
				interested := len(c.watches) == 0 || c.watches[ev.SwapID]
				c.mu.RUnlock()
				if !interested {
					continue
				}
				select {
				case c.send <- data:
				default:
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// Push publishes a status event for one swap, dropping it if the
// broadcast channel is saturated (status pushes are a convenience, never
// load-bearing for swap correctness).
func (h *Hub) Push(swapID uuid.UUID, state swapfsm.SwapState) {
	ev := StatusEvent{
		SwapID:    swapID,
		Alpha:     state.Alpha,
		Beta:      state.Beta,
		Terminal:  state.IsTerminal(),
		Timestamp: time.Now().Unix(),
	}
	select {
	case h.broadcast <- ev:
	default:
		h.log.Warn("status feed broadcast channel full, dropping event", "swap_id", swapID)
	}
}

// ServeHTTP upgrades an HTTP request to a websocket and registers the
// resulting Client with the hub.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &Client{
		conn:    conn,
		send:    make(chan []byte, 64),
		watches: make(map[uuid.UUID]bool),
		hub:     h,
	}
	h.register <- c

	go c.writePump()
	go c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var sub Subscription
		if err := json.Unmarshal(message, &sub); err == nil {
			c.applySubscription(sub)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) applySubscription(sub Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range sub.SwapIDs {
		switch sub.Action {
		case "subscribe":
			c.watches[id] = true
		case "unsubscribe":
			delete(c.watches, id)
		}
	}
}
