package stub

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"socialclient/models"
)

// SeedBubbles installs the viewer's social contexts.
func (s *Server) SeedBubbles(bubbles ...models.Bubble) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bubbles = append(s.bubbles, bubbles...)
}

// SeedPost inserts a post at the head of the feed and returns it. Every post
// appears in the unfiltered feed; a named filter matches only posts seeded
// with that category.
func (s *Server) SeedPost(authorID int64, content, category string, likeCount int) models.FeedItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPostID++
	item := models.FeedItem{
		ID:         s.nextPostID,
		AuthorID:   authorID,
		AuthorName: fmt.Sprintf("user %d", authorID),
		Content:    content,
		FriendPost: true,
		CreatedAt:  time.Now().UTC(),
	}
	if category != "" {
		s.categories[item.ID] = category
	}
	if likeCount > 0 {
		s.likes[item.ID] = map[int64]bool{}
		for i := 0; i < likeCount; i++ {
			// synthetic likers outside any real user id range
			s.likes[item.ID][int64(1000000+i)] = true
		}
	}
	s.posts = append([]models.FeedItem{item}, s.posts...)
	return item
}

// SeedRandomPosts fills the feed with fake content for local development.
func (s *Server) SeedRandomPosts(n int, categories ...string) {
	for i := 0; i < n; i++ {
		category := ""
		if len(categories) > 0 {
			category = categories[gofakeit.Number(0, len(categories)-1)]
		}
		s.SeedPost(
			int64(gofakeit.Number(1, 50)),
			gofakeit.Sentence(gofakeit.Number(4, 15)),
			category,
			gofakeit.Number(0, 40),
		)
	}
}

// SeedMessage appends a confirmed message to a thread and returns it.
func (s *Server) SeedMessage(threadID, fromUserID int64, text string) models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextMsgID++
	msg := models.ChatMessage{
		ID:         models.FlexInt64(s.nextMsgID),
		FromUserID: models.FlexInt64(fromUserID),
		From:       &models.UserRef{ID: fromUserID, Nickname: gofakeit.Username()},
		Text:       text,
		CreatedAt:  models.UnixTime(time.Now().UTC()),
	}
	s.threads[threadID] = append(s.threads[threadID], msg)
	return msg
}
