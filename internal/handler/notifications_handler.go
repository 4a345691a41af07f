package handler

import (
	"log/slog"
	"net/http"

	"edhumeni-admin/internal/middleware"
	"edhumeni-admin/internal/notify"
	"edhumeni-admin/internal/session"

	"github.com/gorilla/websocket"
)

// NotificationsHandler upgrades UI pages onto the toast hub.
type NotificationsHandler struct {
	hub      *notify.Hub
	ctrl     *session.Controller
	upgrader websocket.Upgrader
}

func NewNotificationsHandler(hub *notify.Hub, ctrl *session.Controller, allowedOrigins string) *NotificationsHandler {
	origins := middleware.ParseOrigins(allowedOrigins)

	return &NotificationsHandler{
		hub:  hub,
		ctrl: ctrl,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, o := range origins {
					if o == origin || o == "*" {
						return true
					}
				}
				return false
			},
		},
	}
}

// HandleConnection upgrades the request and attaches the page to the hub.
func (h *NotificationsHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	if !h.ctrl.IsAuthenticated(r.Context()) {
		http.Error(w, `{"error":"Not authenticated"}`, http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := notify.NewClient(h.hub, conn)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
