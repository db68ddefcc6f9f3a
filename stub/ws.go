package stub

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"socialclient/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// broadcastHub fans feed events out to every connected client.
type broadcastHub struct {
	mu    sync.RWMutex
	conns []*websocket.Conn
}

func newBroadcastHub() *broadcastHub {
	return &broadcastHub{}
}

func (h *broadcastHub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns = append(h.conns, conn)
}

func (h *broadcastHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, c := range h.conns {
		if c == conn {
			h.conns = append(h.conns[:i], h.conns[i+1:]...)
			return
		}
	}
}

func (h *broadcastHub) broadcast(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, conn := range h.conns {
		_ = conn.WriteMessage(websocket.TextMessage, message)
	}
}

func feedPostedEvent(item models.FeedItem) []byte {
	data, _ := json.Marshal(gin.H{
		"event":      "feed_posted",
		"post_id":    item.ID,
		"author_id":  item.AuthorID,
		"created_at": item.CreatedAt.Format(time.RFC3339),
	})
	return data
}

// wsFeed upgrades the connection and subscribes it to feed events.
func (s *Server) wsFeed(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s.hub.add(conn)
	defer s.hub.remove(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
