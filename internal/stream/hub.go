package stream

import (
	"encoding/json"
	"sync"

	"telemetry-service/internal/logging"
)

// Hub maintains the set of live-feed clients and fans messages out to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	logger     *logging.Logger
}

func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Infof("Live feed client registered: %s", client.conn.RemoteAddr())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Infof("Live feed client unregistered: %s", client.conn.RemoteAddr())
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// slow client, drop it
					close(client.send)
					delete(h.clients, client)
					h.logger.Warnf("Live feed client %s too slow, removing", client.conn.RemoteAddr())
				}
			}
			h.mu.Unlock()
		}
	}
}

// Stop terminates Run and closes every client.
func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish queues a {type, payload} message without blocking.
func (h *Hub) Publish(kind string, payload interface{}) {
	messageBytes, err := json.Marshal(map[string]interface{}{"type": kind, "payload": payload})
	if err != nil {
		h.logger.Errorf("Error marshalling %s for broadcast: %v", kind, err)
		return
	}
	select {
	case h.broadcast <- messageBytes:
	default:
		h.logger.Warnf("Live feed buffer full, dropping %s message", kind)
	}
}
