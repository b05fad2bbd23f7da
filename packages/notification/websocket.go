package notification

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/iotaledger/hive.go/logger"
)

const (
	webSocketWriteTimeout = 3 * time.Second
	webSocketBufferSize   = 100
)

// region WebSocketHub /////////////////////////////////////////////////////////////////////////////////////////////////

// WebSocketHub sends every notification as a text message to all connected websocket clients. Clients that do not
// keep up lose notifications.
type WebSocketHub struct {
	upgrader websocket.Upgrader
	clients  map[uint64]chan string
	nextID   uint64
	mutex    sync.Mutex
	log      *logger.Logger
}

// NewWebSocketHub creates a WebSocketHub without clients.
func NewWebSocketHub(log *logger.Logger) *WebSocketHub {
	return &WebSocketHub{
		upgrader: websocket.Upgrader{
			HandshakeTimeout: webSocketWriteTimeout,
			CheckOrigin:      func(r *http.Request) bool { return true },
		},
		clients: make(map[uint64]chan string),
		log:     log,
	}
}

// Publish broadcasts the notification to the connected clients.
func (h *WebSocketHub) Publish(topic string, args ...interface{}) {
	line := Line(topic, args...)

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for _, client := range h.clients {
		select {
		case client <- line:
		default:
		}
	}
}

// Clients returns the number of connected clients.
func (h *WebSocketHub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	return len(h.clients)
}

// ServeHTTP upgrades the request to a websocket connection and streams the notifications until the client
// disconnects.
func (h *WebSocketHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debugf("failed to upgrade websocket connection: %s", err)
		return
	}
	defer conn.Close()

	clientID, client := h.register()
	defer h.remove(clientID)

	// the client does not send anything, reading only notices the disconnect
	disconnected := make(chan struct{})
	go func() {
		defer close(disconnected)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-disconnected:
			return
		case line := <-client:
			if err := conn.SetWriteDeadline(time.Now().Add(webSocketWriteTimeout)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				h.log.Debugf("failed to write to websocket client %d: %s", clientID, err)
				return
			}
		}
	}
}

func (h *WebSocketHub) register() (uint64, chan string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	clientID := h.nextID
	h.nextID++
	h.clients[clientID] = make(chan string, webSocketBufferSize)

	return clientID, h.clients[clientID]
}

func (h *WebSocketHub) remove(clientID uint64) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	delete(h.clients, clientID)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
