package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wrenlab/sectorscope/internal/scoring"
	"github.com/wrenlab/sectorscope/pkg/logger"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Dashboard clients connect from other origins in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub pushes freshly computed rankings to connected websocket clients.
// Clients are write-only from the server's perspective; inbound messages
// are discarded.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan *scoring.Result
	logger  *logger.Logger
}

// NewHub creates an empty hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]chan *scoring.Result),
		logger:  log.WithField("component", "ws"),
	}
}

// Broadcast queues a scoring result to every connected client. Slow clients
// drop updates instead of blocking the broadcaster.
func (h *Hub) Broadcast(res *scoring.Result) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, ch := range h.clients {
		select {
		case ch <- res:
		default:
			h.logger.WithField("remote", conn.RemoteAddr().String()).Warn("Dropping update for slow client")
		}
	}
}

// ServeWS upgrades the connection and streams score updates until the
// client disconnects.
// GET /ws/scores
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	ch := make(chan *scoring.Result, 4)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()

	h.logger.WithField("remote", conn.RemoteAddr().String()).Info("Websocket client connected")

	go h.writePump(conn, ch)
	h.readPump(conn)
}

// readPump drains inbound frames so pings/pongs and close frames are
// processed; any read error ends the session.
func (h *Hub) readPump(conn *websocket.Conn) {
	defer h.drop(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(conn *websocket.Conn, ch chan *scoring.Result) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	defer h.drop(conn)

	for {
		select {
		case res, ok := <-ch:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(res); err != nil {
				h.logger.WithError(err).Debug("Websocket write failed")
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// drop unregisters and closes a client connection. Safe to call twice.
func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if ch, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(ch)
	}
	h.mu.Unlock()
	conn.Close()
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
