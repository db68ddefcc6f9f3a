package stub

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"socialclient/models"
)

const cursorPrefix = "after:"

// getFeed serves one page: {results, next, count}. The cursor is an opaque
// "after:<id>" token; a missing next signals end of data.
func (s *Server) getFeed(c *gin.Context) {
	userID := c.GetInt64("user_id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if status, ok := s.takeFailure("feed"); ok {
		c.JSON(status, failBody(status))
		return
	}

	filter := c.Query("filter")
	limit := 20
	if parsed, err := strconv.Atoi(c.Query("limit")); err == nil && parsed > 0 && parsed <= 100 {
		limit = parsed
	}
	var afterID int64
	if cursor := c.Query("cursor"); strings.HasPrefix(cursor, cursorPrefix) {
		afterID, _ = strconv.ParseInt(strings.TrimPrefix(cursor, cursorPrefix), 10, 64)
	}

	filtered := make([]models.FeedItem, 0, len(s.posts))
	for _, post := range s.posts {
		if filter != "" && s.categories[post.ID] != filter {
			continue
		}
		filtered = append(filtered, post)
	}

	start := 0
	if afterID != 0 {
		for i, post := range filtered {
			if post.ID == afterID {
				start = i + 1
				break
			}
		}
	}

	end := start + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	results := make([]models.FeedItem, 0, end-start)
	for _, post := range filtered[start:end] {
		post.LikeCount = len(s.likes[post.ID])
		post.Liked = s.likes[post.ID][userID]
		results = append(results, post)
	}

	next := ""
	if end < len(filtered) && len(results) > 0 {
		next = cursorPrefix + strconv.FormatInt(results[len(results)-1].ID, 10)
	}

	c.JSON(http.StatusOK, models.Page{Results: results, Next: next, Count: len(filtered)})
}

func (s *Server) createPost(c *gin.Context) {
	userID := c.GetInt64("user_id")
	var req struct {
		Content  string                   `json:"content" binding:"required"`
		Location *models.Location         `json:"location"`
		Event    *models.EventInfo        `json:"event"`
		Audience models.AudienceSelection `json:"audience"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Invalid request",
			"fields": gin.H{"content": "required"},
		})
		return
	}

	s.mu.Lock()
	if status, ok := s.takeFailure("create_post"); ok {
		s.mu.Unlock()
		c.JSON(status, failBody(status))
		return
	}
	s.nextPostID++
	item := models.FeedItem{
		ID:         s.nextPostID,
		AuthorID:   userID,
		AuthorName: "user " + strconv.FormatInt(userID, 10),
		Content:    req.Content,
		Location:   req.Location,
		Event:      req.Event,
		FriendPost: true,
		CreatedAt:  time.Now().UTC(),
	}
	s.posts = append([]models.FeedItem{item}, s.posts...)
	s.mu.Unlock()

	s.hub.broadcast(feedPostedEvent(item))
	c.JSON(http.StatusCreated, item)
}

func (s *Server) toggleLike(c *gin.Context) {
	userID := c.GetInt64("user_id")
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post id"})
		return
	}
	var req struct {
		Like bool `json:"like"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if status, ok := s.takeFailure("toggle_like"); ok {
		c.JSON(status, failBody(status))
		return
	}
	if !s.postExists(postID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if s.likes[postID] == nil {
		s.likes[postID] = map[int64]bool{}
	}
	if req.Like {
		s.likes[postID][userID] = true
	} else {
		delete(s.likes[postID], userID)
	}
	c.JSON(http.StatusOK, gin.H{"like_count": len(s.likes[postID])})
}

func (s *Server) deletePost(c *gin.Context) {
	userID := c.GetInt64("user_id")
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if status, ok := s.takeFailure("delete_post"); ok {
		c.JSON(status, failBody(status))
		return
	}
	for i, post := range s.posts {
		if post.ID == postID {
			if post.AuthorID != userID {
				c.JSON(http.StatusForbidden, gin.H{"error": "Not your post"})
				return
			}
			s.posts = append(s.posts[:i], s.posts[i+1:]...)
			delete(s.likes, postID)
			c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
}

func (s *Server) listThread(c *gin.Context) {
	threadID, err := strconv.ParseInt(c.Param("thread_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid thread id"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if status, ok := s.takeFailure("list_thread"); ok {
		c.JSON(status, failBody(status))
		return
	}
	msgs := s.threads[threadID]
	out := make([]models.ChatMessage, len(msgs))
	copy(out, msgs)
	c.JSON(http.StatusOK, gin.H{"messages": out})
}

func (s *Server) sendMessage(c *gin.Context) {
	userID := c.GetInt64("user_id")
	threadID, err := strconv.ParseInt(c.Param("thread_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid thread id"})
		return
	}
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Invalid request",
			"fields": gin.H{"text": "required"},
		})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if status, ok := s.takeFailure("send_message"); ok {
		c.JSON(status, failBody(status))
		return
	}
	s.nextMsgID++
	msg := models.ChatMessage{
		ID:         models.FlexInt64(s.nextMsgID),
		FromUserID: models.FlexInt64(userID),
		From:       &models.UserRef{ID: userID, Nickname: "user " + strconv.FormatInt(userID, 10)},
		Text:       req.Text,
		CreatedAt:  models.UnixTime(time.Now().UTC()),
	}
	s.threads[threadID] = append(s.threads[threadID], msg)
	c.JSON(http.StatusCreated, msg)
}

// getBubbles answers with "label" as the display field, one of the shapes
// the tolerant decoder must handle.
func (s *Server) getBubbles(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status, ok := s.takeFailure("bubbles"); ok {
		c.JSON(status, failBody(status))
		return
	}
	results := make([]gin.H, 0, len(s.bubbles))
	for _, b := range s.bubbles {
		results = append(results, gin.H{"id": b.ID, "label": b.Name})
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (s *Server) getGroups(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status, ok := s.takeFailure("groups"); ok {
		c.JSON(status, failBody(status))
		return
	}
	results := make([]gin.H, 0, len(s.groups))
	for _, g := range s.groups {
		results = append(results, gin.H{"id": g.ID, "name": g.Name, "member_ids": g.MemberIDs})
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (s *Server) createGroup(c *gin.Context) {
	var req struct {
		Name      string  `json:"name" binding:"required"`
		MemberIDs []int64 `json:"member_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Invalid request",
			"fields": gin.H{"name": "required"},
		})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if status, ok := s.takeFailure("create_group"); ok {
		c.JSON(status, failBody(status))
		return
	}
	s.nextGrpID++
	group := models.Group{ID: s.nextGrpID, Name: req.Name, MemberIDs: req.MemberIDs}
	s.groups = append(s.groups, group)
	c.JSON(http.StatusCreated, group)
}

func (s *Server) postExists(id int64) bool {
	for _, post := range s.posts {
		if post.ID == id {
			return true
		}
	}
	return false
}
