package services_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialclient/gateway"
	"socialclient/models"
	"socialclient/services"
	"socialclient/store"
)

func serverThread(ids ...int64) []models.ChatMessage {
	msgs := make([]models.ChatMessage, 0, len(ids))
	for _, id := range ids {
		msgs = append(msgs, models.ChatMessage{
			ID:         models.FlexInt64(id),
			FromUserID: 2,
			Text:       fmt.Sprintf("message %d", id),
			CreatedAt:  models.UnixTime(time.Now().UTC()),
		})
	}
	return msgs
}

func TestPollerMergesChangedThread(t *testing.T) {
	thread := store.NewThread()
	gw := &fakeGateway{
		fetchThread: func(int64) ([]models.ChatMessage, error) {
			return serverThread(1, 2), nil
		},
	}
	rec := newEventRecorder()
	poller := services.NewThreadPoller(gw, thread, 7, 10*time.Millisecond, rec.notify)
	poller.Start()
	defer poller.Stop()

	require.True(t, rec.waitFor(services.EventThreadUpdated, 2*time.Second))
	assert.Equal(t, 2, thread.Len())
}

func TestPollerUnchangedThreadRaisesNoSignal(t *testing.T) {
	thread := store.NewThread()
	thread.Replace(serverThread(1, 2))

	var calls int32
	gw := &fakeGateway{
		fetchThread: func(int64) ([]models.ChatMessage, error) {
			atomic.AddInt32(&calls, 1)
			return serverThread(1, 2), nil
		},
	}
	rec := newEventRecorder()
	poller := services.NewThreadPoller(gw, thread, 7, 10*time.Millisecond, rec.notify)
	poller.Start()
	defer poller.Stop()

	// let several ticks run
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) >= 3
	}, 2*time.Second, 5*time.Millisecond)
	assert.Empty(t, rec.drain())
}

func TestPollerStopBarsLateMerge(t *testing.T) {
	thread := store.NewThread()
	entered := make(chan struct{})
	release := make(chan struct{})
	var once int32
	gw := &fakeGateway{
		fetchThread: func(int64) ([]models.ChatMessage, error) {
			if atomic.CompareAndSwapInt32(&once, 0, 1) {
				close(entered)
			}
			<-release
			return serverThread(1, 2, 3), nil
		},
	}
	rec := newEventRecorder()
	poller := services.NewThreadPoller(gw, thread, 7, 10*time.Millisecond, rec.notify)
	poller.Start()

	<-entered
	poller.Stop()
	close(release)

	// the in-flight tick completed after Stop; its result must not land
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, thread.Len())
	assert.Empty(t, rec.drain())
}

func TestPollerSurvivesFailedTicks(t *testing.T) {
	thread := store.NewThread()
	var calls int32
	gw := &fakeGateway{
		fetchThread: func(int64) ([]models.ChatMessage, error) {
			if atomic.AddInt32(&calls, 1) == 1 {
				return nil, fmt.Errorf("%w: flaky network", gateway.ErrUnreachable)
			}
			return serverThread(1), nil
		},
	}
	rec := newEventRecorder()
	poller := services.NewThreadPoller(gw, thread, 7, 10*time.Millisecond, rec.notify)
	poller.Start()
	defer poller.Stop()

	require.True(t, rec.waitFor(services.EventThreadUpdated, 2*time.Second))
	assert.Equal(t, 1, thread.Len())
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(2))
}

func TestPollerIsSingleUse(t *testing.T) {
	var calls int32
	gw := &fakeGateway{
		fetchThread: func(int64) ([]models.ChatMessage, error) {
			atomic.AddInt32(&calls, 1)
			return nil, nil
		},
	}
	poller := services.NewThreadPoller(gw, store.NewThread(), 7, 10*time.Millisecond, nil)
	poller.Stop()
	poller.Start()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestFeedCheckerMergesFreshAndRefreshed(t *testing.T) {
	snap := store.NewSnapshot()
	snap.Replace([]models.FeedItem{
		{ID: 2, Content: "b", LikeCount: 1},
		{ID: 1, Content: "a"},
	})
	gw := &fakeGateway{
		fetchFeedPage: func(string, string, int) (*models.Page, error) {
			return &models.Page{Results: []models.FeedItem{
				{ID: 3, Content: "new"},
				{ID: 2, Content: "b", LikeCount: 4},
				{ID: 1, Content: "a"},
			}}, nil
		},
	}
	rec := newEventRecorder()
	checker := services.NewFeedChecker(gw, snap, rec.notify, 10, nil, nil)

	checker.Check(context.Background())
	assert.True(t, rec.contains(services.EventNewContent))
	assert.Equal(t, []int64{3, 2, 1}, snap.IDs())
	item, _ := snap.Get(2)
	assert.Equal(t, 4, item.LikeCount)
}

func TestFeedCheckerNeverClobbersPendingItems(t *testing.T) {
	snap := store.NewSnapshot()
	snap.Replace([]models.FeedItem{
		{ID: 2, Content: "b", LikeCount: 5, Liked: true}, // optimistic, unreconciled
		{ID: 1, Content: "a"},
	})
	gw := &fakeGateway{
		fetchFeedPage: func(string, string, int) (*models.Page, error) {
			return &models.Page{Results: []models.FeedItem{
				{ID: 2, Content: "b", LikeCount: 4},
				{ID: 1, Content: "a"},
			}}, nil
		},
	}
	pending := func(id int64) bool { return id == 2 }
	checker := services.NewFeedChecker(gw, snap, nil, 10, pending, nil)

	checker.Check(context.Background())
	item, _ := snap.Get(2)
	assert.True(t, item.Liked)
	assert.Equal(t, 5, item.LikeCount)
}

func TestFeedCheckerUnchangedPageRaisesNoSignal(t *testing.T) {
	snap := store.NewSnapshot()
	snap.Replace([]models.FeedItem{{ID: 1, Content: "a"}})
	gw := &fakeGateway{
		fetchFeedPage: func(string, string, int) (*models.Page, error) {
			return &models.Page{Results: []models.FeedItem{{ID: 1, Content: "a"}}}, nil
		},
	}
	rec := newEventRecorder()
	checker := services.NewFeedChecker(gw, snap, rec.notify, 10, nil, nil)

	checker.Check(context.Background())
	assert.Empty(t, rec.drain())
}

func TestFeedCheckerStopBarsMerge(t *testing.T) {
	snap := store.NewSnapshot()
	gw := &fakeGateway{
		fetchFeedPage: func(string, string, int) (*models.Page, error) {
			return &models.Page{Results: []models.FeedItem{{ID: 1}}}, nil
		},
	}
	checker := services.NewFeedChecker(gw, snap, nil, 10, nil, nil)
	checker.Stop()

	checker.Check(context.Background())
	assert.Zero(t, snap.Len())
}

func TestFeedCheckerUsesActiveFilter(t *testing.T) {
	var gotFilter string
	gw := &fakeGateway{
		fetchFeedPage: func(_, filter string, _ int) (*models.Page, error) {
			gotFilter = filter
			return &models.Page{}, nil
		},
	}
	checker := services.NewFeedChecker(gw, store.NewSnapshot(), nil, 10, nil, func() string { return "music" })

	checker.Check(context.Background())
	assert.Equal(t, "music", gotFilter)
}
