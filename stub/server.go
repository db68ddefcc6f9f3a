// Package stub is an in-process stand-in for the remote social API. It
// serves the exact wire shapes the gateway consumes and supports failure
// injection, which makes it the fixture for integration tests and the
// backend for local development via cmd/stubserver.
package stub

import (
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"socialclient/models"
)

// Server holds the in-memory state behind the fake API.
type Server struct {
	engine *gin.Engine

	mu         sync.Mutex
	posts      []models.FeedItem // newest-first
	categories map[int64]string
	likes      map[int64]map[int64]bool // post id -> liker set
	threads    map[int64][]models.ChatMessage
	bubbles    []models.Bubble
	groups     []models.Group
	nextPostID int64
	nextMsgID  int64
	nextGrpID  int64

	// op -> remaining injected failures
	failures map[string][]int

	hub *broadcastHub
}

func NewServer() *Server {
	s := &Server{
		categories: map[int64]string{},
		likes:      map[int64]map[int64]bool{},
		threads:    map[int64][]models.ChatMessage{},
		failures:   map[string][]int{},
		hub:        newBroadcastHub(),
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api/v1", bearerAuth())
	api.GET("/feed", s.getFeed)
	api.POST("/posts/create", s.createPost)
	api.POST("/posts/:id/like", s.toggleLike)
	api.DELETE("/posts/:id", s.deletePost)
	api.GET("/dialog/:thread_id/list", s.listThread)
	api.POST("/dialog/:thread_id/send", s.sendMessage)
	api.GET("/bubbles", s.getBubbles)
	api.GET("/groups", s.getGroups)
	api.POST("/groups/create", s.createGroup)

	r.GET("/ws/feed", bearerAuth(), s.wsFeed)

	s.engine = r
	return s
}

// Engine exposes the router for httptest and for cmd/stubserver.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// bearerAuth resolves tokens of the form "token-<user id>". Anything else is
// rejected, which is how tests exercise the Unauthorized path.
func bearerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer token-") {
			idStr := strings.TrimPrefix(authHeader, "Bearer token-")
			if userID, err := strconv.ParseInt(idStr, 10, 64); err == nil {
				c.Set("user_id", userID)
				c.Next()
				return
			}
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		c.Abort()
	}
}

// Token returns a credential the bearerAuth middleware accepts.
func Token(userID int64) string {
	return "token-" + strconv.FormatInt(userID, 10)
}

// FailNext arranges for the next calls of an operation to answer with the
// given HTTP statuses, in order. Operations: feed, create_post, toggle_like,
// delete_post, list_thread, send_message, bubbles, groups, create_group.
func (s *Server) FailNext(op string, statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = append(s.failures[op], statuses...)
}

// takeFailure pops an injected failure for the operation, if any. Callers
// hold the lock.
func (s *Server) takeFailure(op string) (int, bool) {
	queue := s.failures[op]
	if len(queue) == 0 {
		return 0, false
	}
	status := queue[0]
	s.failures[op] = queue[1:]
	return status, true
}

func failBody(status int) gin.H {
	if status >= 500 {
		return gin.H{"error": "internal error"}
	}
	return gin.H{"error": "rejected", "fields": gin.H{"content": "invalid"}}
}
