package models

import "time"

// Location - optional geotag attached to a post
type Location struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Label string  `json:"label,omitempty"`
}

// EventInfo - extra metadata carried by posts that announce an event
type EventInfo struct {
	Title    string    `json:"title"`
	StartsAt time.Time `json:"starts_at"`
}

// FeedItem - one post in the activity stream as rendered by the client.
// ID is server-assigned and unique within a snapshot. Liked and LikeCount
// are mutated only through the mutation coordinator.
type FeedItem struct {
	ID           int64      `json:"id"`
	AuthorID     int64      `json:"author_id"`
	AuthorName   string     `json:"author_name"`
	Content      string     `json:"content"`
	Images       []string   `json:"images,omitempty"`
	Location     *Location  `json:"location,omitempty"`
	Event        *EventInfo `json:"event,omitempty"`
	LikeCount    int        `json:"like_count"`
	CommentCount int        `json:"comment_count"`
	Liked        bool       `json:"liked"`
	FriendPost   bool       `json:"friend_post,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// IsEvent reports whether the post carries event metadata.
func (f FeedItem) IsEvent() bool {
	return f.Event != nil
}

// Page - one page of feed results. An empty Next means the server reported
// no further page.
type Page struct {
	Results []FeedItem `json:"results"`
	Next    string     `json:"next"`
	Count   int        `json:"count"`
}

// HasNext reports whether the server advertised a continuation cursor.
func (p Page) HasNext() bool {
	return p.Next != ""
}

// CreatePostPayload - what the composer UI hands to the coordinator
type CreatePostPayload struct {
	Content  string
	Images   [][]byte
	Location *Location
	Event    *EventInfo
	Audience AudienceSelection
}
