package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"edhumeni-admin/internal/observability"
)

// Toast is the wire format pushed to UI pages.
type Toast struct {
	Level   string `json:"level"` // "success" or "error"
	Message string `json:"message"`
}

// Hub fans toasts out to every connected UI page of the operator. It
// implements Notifier; emitting with no pages connected drops the toast.
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	done chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop and blocks until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			slog.Info("notification hub shutting down")
			return ctx.Err()

		case client := <-h.register:
			h.clients[client] = true
			observability.NotificationClientsActive.Set(float64(len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			observability.NotificationClientsActive.Set(float64(len(h.clients)))

		case data := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					// Slow page: drop it rather than stall the hub.
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

func (h *Hub) shutdown() {
	close(h.done)
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

// Register adds a UI page connection to the hub.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister removes a UI page connection.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) ShowSuccess(message string) {
	h.push(Toast{Level: "success", Message: message})
}

func (h *Hub) ShowError(message string) {
	h.push(Toast{Level: "error", Message: message})
}

func (h *Hub) push(t Toast) {
	data, err := json.Marshal(t)
	if err != nil {
		slog.Error("failed to marshal toast", slog.String("error", err.Error()))
		return
	}

	observability.NotificationsTotal.WithLabelValues(t.Level).Inc()

	select {
	case h.broadcast <- data:
	case <-h.done:
	default:
		// Full buffer: toasts are best-effort, drop.
	}
}
