package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Event represents a WebSocket event sent to dashboard clients.
type Event struct {
	Type string      `json:"type"` // "links_added", "video_rated", "videos_cleared"
	Time time.Time   `json:"time"`
	Data interface{} `json:"data,omitempty"`
}

// Hub maintains the set of active WebSocket clients and broadcasts live
// rating activity to them. It implements the rating service's
// ActivityListener.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan *Event
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	log        *slog.Logger
}

// NewHub creates a new Hub instance.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// Run starts the hub's event loop. Should be called in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) emit(eventType string, data interface{}) {
	select {
	case h.broadcast <- &Event{Type: eventType, Time: time.Now(), Data: data}:
	default:
		// Slow consumers must not block the rating path.
		if h.log != nil {
			h.log.Warn("ws broadcast buffer full, dropping event", slog.String("type", eventType))
		}
	}
}

// LinksAdded notifies clients that a submission batch was stored.
func (h *Hub) LinksAdded(count int) {
	h.emit("links_added", map[string]int{"count": count})
}

// VideoRated notifies clients that a video received a rating.
func (h *Hub) VideoRated(link string, score int64) {
	h.emit("video_rated", map[string]interface{}{
		"link":  link,
		"score": score,
	})
}

// VideosCleared notifies clients that the table was truncated.
func (h *Hub) VideosCleared() {
	h.emit("videos_cleared", nil)
}
