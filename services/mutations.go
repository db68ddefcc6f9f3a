package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"socialclient/models"
	"socialclient/store"
)

// MutationState - the three-state machine of one pending mutation, plus the
// discarded terminal for responses superseded by a newer operation on the
// same item.
type MutationState int

const (
	StateApplied MutationState = iota
	StateConfirmed
	StateRolledBack
	StateDiscarded
)

func (s MutationState) String() string {
	switch s {
	case StateApplied:
		return "applied"
	case StateConfirmed:
		return "confirmed"
	case StateRolledBack:
		return "rolled_back"
	case StateDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// pendingItem tracks the in-flight operations of one feed item. The baseline
// is captured when the pending count goes 0 -> 1, so a rollback always
// restores the state the burst of toggles started from.
type pendingItem struct {
	count         int
	baselineLiked bool
	baselineCount int
}

// Coordinator applies user mutations optimistically and reconciles them with
// the gateway: counter overwrite from the server on success, exact rollback
// on failure, sequence-number discard for responses that a later operation
// on the same item has superseded.
type Coordinator struct {
	gw     Gateway
	snap   *store.Snapshot
	notify Notifier

	// invoked after a confirmed post creation, wired to the feed
	// freshness check
	postCreated func()

	mu         sync.Mutex
	seq        uint64
	lastIssued map[int64]uint64
	pending    map[int64]*pendingItem
}

func NewCoordinator(gw Gateway, snap *store.Snapshot, notify Notifier) *Coordinator {
	return &Coordinator{
		gw:         gw,
		snap:       snap,
		notify:     notify,
		lastIssued: map[int64]uint64{},
		pending:    map[int64]*pendingItem{},
	}
}

// SetPostCreatedHook registers the callback fired after a confirmed post
// creation.
func (c *Coordinator) SetPostCreatedHook(f func()) {
	c.postCreated = f
}

// HasPending reports whether the item has unreconciled optimistic state.
// Poller merges must not clobber such items.
func (c *Coordinator) HasPending(itemID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[itemID] != nil
}

// ToggleLike flips the viewer's like on the item. The local flag and counter
// change before the network call; the server's counter wins on success, and
// a failure restores the pre-mutation baseline exactly.
func (c *Coordinator) ToggleLike(ctx context.Context, itemID int64) (MutationState, error) {
	c.mu.Lock()
	item, ok := c.snap.Get(itemID)
	if !ok {
		c.mu.Unlock()
		return StateRolledBack, fmt.Errorf("item %d not in snapshot", itemID)
	}

	p := c.pending[itemID]
	if p == nil {
		p = &pendingItem{baselineLiked: item.Liked, baselineCount: item.LikeCount}
		c.pending[itemID] = p
	}
	p.count++
	c.seq++
	seq := c.seq
	c.lastIssued[itemID] = seq

	target := !item.Liked
	updated := item
	updated.Liked = target
	if target {
		updated.LikeCount = item.LikeCount + 1
	} else if item.LikeCount > 0 {
		updated.LikeCount = item.LikeCount - 1
	}
	c.snap.Upsert(updated)
	c.mu.Unlock()
	c.notify.emit(EventItemUpdated)

	serverCount, err := c.gw.ToggleLike(ctx, itemID, target)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lastIssued[itemID] != seq {
		// A newer toggle was issued while this one was in flight; its
		// reconciliation is authoritative, this response is dropped.
		if p := c.pending[itemID]; p != nil {
			p.count--
		}
		mutationsTotal.WithLabelValues("toggle_like", outcomeDiscarded).Inc()
		logrus.Debugf("discarding stale toggle response for item %d (seq %d)", itemID, seq)
		return StateDiscarded, nil
	}

	p = c.pending[itemID]
	if err != nil {
		if p != nil {
			if cur, ok := c.snap.Get(itemID); ok {
				cur.Liked = p.baselineLiked
				cur.LikeCount = p.baselineCount
				c.snap.Upsert(cur)
			}
		}
		delete(c.pending, itemID)
		mutationsTotal.WithLabelValues("toggle_like", outcomeRolledBack).Inc()
		c.notify.emit(EventItemUpdated)
		return StateRolledBack, fmt.Errorf("toggle like on %d: %w", itemID, err)
	}

	if cur, ok := c.snap.Get(itemID); ok {
		cur.Liked = target
		cur.LikeCount = serverCount
		c.snap.Upsert(cur)
	}
	delete(c.pending, itemID)
	mutationsTotal.WithLabelValues("toggle_like", outcomeConfirmed).Inc()
	c.notify.emit(EventItemUpdated)
	return StateConfirmed, nil
}

// CreatePost submits a new post and prepends the server's echo into the
// snapshot. Creation is not optimistic: the composer stays open until the
// server answers, and validation errors surface verbatim.
func (c *Coordinator) CreatePost(ctx context.Context, payload models.CreatePostPayload) (*models.FeedItem, error) {
	item, err := c.gw.SubmitPost(ctx, payload)
	if err != nil {
		mutationsTotal.WithLabelValues("create_post", outcomeRolledBack).Inc()
		return nil, fmt.Errorf("create post: %w", err)
	}
	c.snap.Prepend([]models.FeedItem{*item})
	mutationsTotal.WithLabelValues("create_post", outcomeConfirmed).Inc()
	c.notify.emit(EventItemUpdated)
	if c.postCreated != nil {
		c.postCreated()
	}
	return item, nil
}

// DeletePost removes a post. Deletion is confirm-then-remove: the item
// leaves the snapshot only after the gateway acknowledges, since reinserting
// a removed entry on failure would be jarring.
func (c *Coordinator) DeletePost(ctx context.Context, itemID int64) error {
	if err := c.gw.DeletePost(ctx, itemID); err != nil {
		mutationsTotal.WithLabelValues("delete_post", outcomeRolledBack).Inc()
		return fmt.Errorf("delete post %d: %w", itemID, err)
	}
	c.snap.Remove(itemID)
	mutationsTotal.WithLabelValues("delete_post", outcomeConfirmed).Inc()
	c.notify.emit(EventItemDeleted)
	return nil
}

// SendMessage appends a provisional message to the thread immediately, then
// confirms it with the server-assigned id or removes it on failure.
func (c *Coordinator) SendMessage(ctx context.Context, thread *store.Thread, threadID, viewerID int64, text string) (models.ChatMessage, error) {
	provisional := models.ChatMessage{
		ID:         models.FlexInt64(models.NextProvisionalID()),
		FromUserID: models.FlexInt64(viewerID),
		Text:       text,
		CreatedAt:  models.UnixTime(time.Now().UTC()),
	}
	thread.Append(provisional)
	c.notify.emit(EventThreadUpdated)

	confirmed, err := c.gw.SendMessage(ctx, threadID, text)
	if err != nil {
		thread.Remove(provisional.ID.Int64())
		mutationsTotal.WithLabelValues("send_message", outcomeRolledBack).Inc()
		c.notify.emit(EventThreadUpdated)
		return models.ChatMessage{}, fmt.Errorf("send message: %w", err)
	}

	thread.Confirm(provisional.ID.Int64(), *confirmed)
	mutationsTotal.WithLabelValues("send_message", outcomeConfirmed).Inc()
	c.notify.emit(EventThreadUpdated)
	return *confirmed, nil
}
