package store

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialclient/models"
)

func TestSnapshotRoundTrip(t *testing.T) {
	src := NewSnapshot()
	items := make([]models.FeedItem, 0, 5)
	for i := int64(5); i >= 1; i-- {
		it := feedItem(i, int(i))
		if i%2 == 0 {
			it.Liked = true
		}
		items = append(items, it)
	}
	src.Replace(items)

	p := NewPersister(NewMemoryKV(), "feed_snapshot")
	require.NoError(t, p.Save(context.Background(), src))

	dst := NewSnapshot()
	require.NoError(t, p.Load(context.Background(), dst))

	require.Empty(t, cmp.Diff(src.Items(), dst.Items()))
	require.Equal(t, src.IDs(), dst.IDs())
}

func TestPersisterLoadMissingKey(t *testing.T) {
	p := NewPersister(NewMemoryKV(), "never_saved")
	err := p.Load(context.Background(), NewSnapshot())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRestoreRejectsUnknownVersion(t *testing.T) {
	s := NewSnapshot()
	err := s.RestoreFromPersistable([]byte(`{"version":99,"items":[]}`))
	require.Error(t, err)
	assert.Zero(t, s.Len())
}

func TestMemoryKVCopiesBlobs(t *testing.T) {
	kv := NewMemoryKV()
	blob := []byte(`{"a":1}`)
	require.NoError(t, kv.Set(context.Background(), "k", blob))
	blob[0] = 'x'

	got, err := kv.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), got)
}
