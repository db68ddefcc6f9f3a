package services_test

import (
	"context"
	"errors"
	"time"

	"socialclient/models"
	"socialclient/services"
)

var errNotScripted = errors.New("fake gateway: operation not scripted")

// fakeGateway scripts individual operations per test; unscripted calls fail
// loudly.
type fakeGateway struct {
	fetchFeedPage func(cursor, filter string, limit int) (*models.Page, error)
	fetchThread   func(threadID int64) ([]models.ChatMessage, error)
	submitPost    func(payload models.CreatePostPayload) (*models.FeedItem, error)
	toggleLike    func(itemID int64, like bool) (int, error)
	deletePost    func(itemID int64) error
	sendMessage   func(threadID int64, text string) (*models.ChatMessage, error)
	fetchBubbles  func() ([]models.Bubble, error)
	fetchGroups   func() ([]models.Group, error)
	createGroup   func(name string, memberIDs []int64) (*models.Group, error)
}

func (f *fakeGateway) FetchFeedPage(_ context.Context, cursor, filter string, limit int) (*models.Page, error) {
	if f.fetchFeedPage == nil {
		return nil, errNotScripted
	}
	return f.fetchFeedPage(cursor, filter, limit)
}

func (f *fakeGateway) FetchThread(_ context.Context, threadID int64) ([]models.ChatMessage, error) {
	if f.fetchThread == nil {
		return nil, errNotScripted
	}
	return f.fetchThread(threadID)
}

func (f *fakeGateway) SubmitPost(_ context.Context, payload models.CreatePostPayload) (*models.FeedItem, error) {
	if f.submitPost == nil {
		return nil, errNotScripted
	}
	return f.submitPost(payload)
}

func (f *fakeGateway) ToggleLike(_ context.Context, itemID int64, like bool) (int, error) {
	if f.toggleLike == nil {
		return 0, errNotScripted
	}
	return f.toggleLike(itemID, like)
}

func (f *fakeGateway) DeletePost(_ context.Context, itemID int64) error {
	if f.deletePost == nil {
		return errNotScripted
	}
	return f.deletePost(itemID)
}

func (f *fakeGateway) SendMessage(_ context.Context, threadID int64, text string) (*models.ChatMessage, error) {
	if f.sendMessage == nil {
		return nil, errNotScripted
	}
	return f.sendMessage(threadID, text)
}

func (f *fakeGateway) FetchBubbles(_ context.Context) ([]models.Bubble, error) {
	if f.fetchBubbles == nil {
		return nil, errNotScripted
	}
	return f.fetchBubbles()
}

func (f *fakeGateway) FetchGroups(_ context.Context) ([]models.Group, error) {
	if f.fetchGroups == nil {
		return nil, errNotScripted
	}
	return f.fetchGroups()
}

func (f *fakeGateway) CreateGroup(_ context.Context, name string, memberIDs []int64) (*models.Group, error) {
	if f.createGroup == nil {
		return nil, errNotScripted
	}
	return f.createGroup(name, memberIDs)
}

// eventRecorder collects emitted re-render signals.
type eventRecorder struct {
	ch chan services.Event
}

func newEventRecorder() *eventRecorder {
	return &eventRecorder{ch: make(chan services.Event, 64)}
}

func (r *eventRecorder) notify(e services.Event) {
	select {
	case r.ch <- e:
	default:
	}
}

// drain returns everything recorded so far without blocking.
func (r *eventRecorder) drain() []services.Event {
	var out []services.Event
	for {
		select {
		case e := <-r.ch:
			out = append(out, e)
		default:
			return out
		}
	}
}

func (r *eventRecorder) contains(event services.Event) bool {
	for _, e := range r.drain() {
		if e == event {
			return true
		}
	}
	return false
}

// waitFor blocks until the event arrives or the timeout expires.
func (r *eventRecorder) waitFor(event services.Event, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		select {
		case e := <-r.ch:
			if e == event {
				return true
			}
		case <-deadline:
			return false
		}
	}
}
