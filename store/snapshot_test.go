package store

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialclient/models"
)

func feedItem(id int64, likes int) models.FeedItem {
	return models.FeedItem{
		ID:         id,
		AuthorID:   id * 10,
		AuthorName: "author",
		Content:    "post",
		LikeCount:  likes,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestUpsertIsIdempotent(t *testing.T) {
	s := NewSnapshot()
	s.Replace([]models.FeedItem{feedItem(3, 0), feedItem(2, 0), feedItem(1, 0)})

	updated := feedItem(2, 7)
	s.Upsert(updated)
	once := s.Items()
	s.Upsert(updated)
	twice := s.Items()

	require.Empty(t, cmp.Diff(once, twice))
	require.Equal(t, []int64{3, 2, 1}, s.IDs())
}

func TestUpsertNeverMovesExistingItem(t *testing.T) {
	s := NewSnapshot()
	s.Replace([]models.FeedItem{feedItem(3, 0), feedItem(2, 0), feedItem(1, 0)})

	updated := feedItem(2, 99)
	updated.Liked = true
	s.Upsert(updated)

	require.Equal(t, []int64{3, 2, 1}, s.IDs())
	got, ok := s.Get(2)
	require.True(t, ok)
	assert.True(t, got.Liked)
	assert.Equal(t, 99, got.LikeCount)
}

func TestUpsertInsertsNewAtHead(t *testing.T) {
	s := NewSnapshot()
	s.Replace([]models.FeedItem{feedItem(2, 0), feedItem(1, 0)})

	s.Upsert(feedItem(5, 0))
	require.Equal(t, []int64{5, 2, 1}, s.IDs())
}

func TestPrependSkipsKnownIDs(t *testing.T) {
	s := NewSnapshot()
	s.Replace([]models.FeedItem{feedItem(3, 0), feedItem(2, 0)})

	s.Prepend([]models.FeedItem{feedItem(5, 0), feedItem(4, 0), feedItem(3, 0)})
	require.Equal(t, []int64{5, 4, 3, 2}, s.IDs())
}

func TestAppendPageIsIdempotent(t *testing.T) {
	s := NewSnapshot()
	s.Replace([]models.FeedItem{feedItem(10, 0), feedItem(9, 0)})

	page := []models.FeedItem{feedItem(8, 0), feedItem(7, 0)}
	require.Equal(t, 2, s.AppendPage(page))
	require.Equal(t, 0, s.AppendPage(page))
	require.Equal(t, []int64{10, 9, 8, 7}, s.IDs())
}

func TestRemove(t *testing.T) {
	s := NewSnapshot()
	s.Replace([]models.FeedItem{feedItem(3, 0), feedItem(2, 0), feedItem(1, 0)})

	s.Remove(2)
	require.Equal(t, []int64{3, 1}, s.IDs())

	// removing an absent id is a no-op
	s.Remove(42)
	require.Equal(t, []int64{3, 1}, s.IDs())
}

func TestReplaceDropsDuplicateIDs(t *testing.T) {
	s := NewSnapshot()
	s.Replace([]models.FeedItem{feedItem(1, 0), feedItem(2, 0), feedItem(1, 5)})
	require.Equal(t, []int64{1, 2}, s.IDs())
}
