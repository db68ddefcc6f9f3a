package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatMessageDecodeFlexibleShapes(t *testing.T) {
	// ids and timestamps arrive as numbers or strings depending on backend
	payloads := []string{
		`{"id":7,"from_id":3,"text":"hi","created_at":1700000000}`,
		`{"id":"7","from_id":"3","text":"hi","created_at":"1700000000"}`,
	}
	for _, payload := range payloads {
		var msg ChatMessage
		require.NoError(t, json.Unmarshal([]byte(payload), &msg))
		assert.EqualValues(t, 7, msg.ID)
		assert.EqualValues(t, 3, msg.FromUserID)
		assert.Equal(t, time.Unix(1700000000, 0).UTC(), msg.CreatedAt.Time())
	}
}

func TestSenderName(t *testing.T) {
	anonymous := ChatMessage{FromUserID: 3}
	assert.Equal(t, "user 3", anonymous.SenderName())

	withProfile := ChatMessage{
		FromUserID: 3,
		From:       &UserRef{ID: 3, Nickname: "alex", FirstName: "Alex", LastName: "Kim"},
	}
	assert.Equal(t, "Alex Kim", withProfile.SenderName())
}

func TestActivityLink(t *testing.T) {
	msg := ChatMessage{Text: "activity://42/Climbing night"}
	link, ok := msg.ActivityLink()
	require.True(t, ok)
	assert.EqualValues(t, 42, link.ActivityID)
	assert.Equal(t, "Climbing night", link.Title)

	plain := ChatMessage{Text: "see you at 42/Climbing night"}
	_, ok = plain.ActivityLink()
	assert.False(t, ok)

	malformed := ChatMessage{Text: "activity://not-a-number/x"}
	_, ok = malformed.ActivityLink()
	assert.False(t, ok)
}

func TestProvisionalIDs(t *testing.T) {
	a := NextProvisionalID()
	b := NextProvisionalID()
	require.Less(t, a, int64(0))
	require.Less(t, b, int64(0))
	require.NotEqual(t, a, b)

	msg := ChatMessage{ID: FlexInt64(a)}
	assert.True(t, msg.Provisional())
	assert.False(t, ChatMessage{ID: 10}.Provisional())
}

func TestPageHasNext(t *testing.T) {
	assert.True(t, Page{Next: "after:10"}.HasNext())
	assert.False(t, Page{}.HasNext())
}
