package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Dias221467/Beer_Rating/internal/models"
	"github.com/Dias221467/Beer_Rating/internal/services"
	"github.com/Dias221467/Beer_Rating/pkg/logger"
	"github.com/Dias221467/Beer_Rating/pkg/middleware"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// WSMessage is one frame of the pending request stream.
type WSMessage struct {
	Type     string                  `json:"type"`
	Requests []models.PendingRequest `json:"requests"`
}

type RequestStreamHandler struct {
	Service  *services.FriendService
	upgrader websocket.Upgrader
}

// NewRequestStreamHandler accepts WebSocket connections from the given
// origins. A "*" entry allows any origin.
func NewRequestStreamHandler(service *services.FriendService, allowedOrigins []string) *RequestStreamHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &RequestStreamHandler{
		Service: service,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// PendingRequestsWebSocketHandler pushes the caller's pending friend requests
// whenever they change, until the client disconnects.
func (h *RequestStreamHandler) PendingRequestsWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID := claims.UserID

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := h.Service.SubscribePendingRequests(ctx, userID)
	if err != nil {
		writeError(w, err, "Could not load friend requests.")
		return
	}
	defer sub.Close()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	logger.Log.WithField("userID", userID).Info("WebSocket connected")
	defer logger.Log.WithField("userID", userID).Info("WebSocket disconnected")

	// Clients only listen; reading detects the close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case list, ok := <-sub.Updates():
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(WSMessage{Type: "pending_requests", Requests: list}); err != nil {
				logger.Log.WithError(err).Warn("WebSocket write failed")
				return
			}
		}
	}
}
