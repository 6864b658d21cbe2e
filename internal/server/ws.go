package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// EmotionsHandler sends every frame result published to a hub to websocket
// clients as a JSON text message.
type EmotionsHandler struct {
	hub *Hub
}

// NewEmotionsHandler creates a new EmotionsHandler reading from hub.
func NewEmotionsHandler(hub *Hub) *EmotionsHandler {
	return &EmotionsHandler{hub: hub}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EmotionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	results, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	log.WithField("remote", r.RemoteAddr).Debug("Emotion feed client connected")

	// Incoming messages are discarded; reading detects the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case msg, ok := <-results:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}
