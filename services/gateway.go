package services

import (
	"context"

	"socialclient/models"
)

// Gateway is the slice of the remote API the sync services depend on.
// *gateway.Client satisfies it; tests substitute scripted fakes.
type Gateway interface {
	FetchFeedPage(ctx context.Context, cursor, filter string, limit int) (*models.Page, error)
	FetchThread(ctx context.Context, threadID int64) ([]models.ChatMessage, error)
	SubmitPost(ctx context.Context, payload models.CreatePostPayload) (*models.FeedItem, error)
	ToggleLike(ctx context.Context, itemID int64, like bool) (int, error)
	DeletePost(ctx context.Context, itemID int64) error
	SendMessage(ctx context.Context, threadID int64, text string) (*models.ChatMessage, error)
	FetchBubbles(ctx context.Context) ([]models.Bubble, error)
	FetchGroups(ctx context.Context) ([]models.Group, error)
	CreateGroup(ctx context.Context, name string, memberIDs []int64) (*models.Group, error)
}

// Event - a re-render signal handed to the navigation layer.
type Event string

const (
	EventPageLoaded    Event = "page_loaded"
	EventItemUpdated   Event = "item_updated"
	EventItemDeleted   Event = "item_deleted"
	EventThreadUpdated Event = "thread_updated"
	EventNewContent    Event = "new_content"
	EventOfflineCached Event = "offline_cached"
)

// Notifier receives change signals. A nil notifier is valid.
type Notifier func(Event)

func (n Notifier) emit(e Event) {
	if n != nil {
		n(e)
	}
}
