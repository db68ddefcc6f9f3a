package models

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// ChatMessage - one message of a chat thread. The backend may serialize ids
// and timestamps as strings, hence the flexible types.
//
// Messages created optimistically on send carry a negative provisional ID
// until the server echoes the real one; negative ids can never collide with
// server-assigned ids.
type ChatMessage struct {
	ID         FlexInt64 `json:"id"`
	FromUserID FlexInt64 `json:"from_id"`
	From       *UserRef  `json:"from,omitempty"`
	Text       string    `json:"text"`
	Images     []string  `json:"images,omitempty"`
	CreatedAt  UnixTime  `json:"created_at"`
}

// SenderName returns the name rendered next to the message.
func (m ChatMessage) SenderName() string {
	if m.From != nil {
		return m.From.DisplayName()
	}
	return "user " + strconv.FormatInt(m.FromUserID.Int64(), 10)
}

// Provisional reports whether the message still awaits server confirmation.
func (m ChatMessage) Provisional() bool {
	return m.ID < 0
}

// Mine reports whether the viewer authored the message.
func (m ChatMessage) Mine(viewerID int64) bool {
	return m.FromUserID.Int64() == viewerID
}

const activityScheme = "activity://"

// ActivityLink - a shared-activity reference embedded in a message body,
// written as activity://<id>/<title>.
type ActivityLink struct {
	ActivityID int64
	Title      string
}

// ActivityLink extracts the shared-activity classification from the body
// text. The second return is false for plain text messages.
func (m ChatMessage) ActivityLink() (ActivityLink, bool) {
	if !strings.HasPrefix(m.Text, activityScheme) {
		return ActivityLink{}, false
	}
	rest := strings.TrimPrefix(m.Text, activityScheme)
	idPart, title, _ := strings.Cut(rest, "/")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return ActivityLink{}, false
	}
	return ActivityLink{ActivityID: id, Title: title}, true
}

var provisionalSeq int64

// NextProvisionalID returns a fresh negative id for an unconfirmed message.
func NextProvisionalID() int64 {
	return -atomic.AddInt64(&provisionalSeq, 1)
}
