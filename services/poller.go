package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"socialclient/models"
	"socialclient/store"
)

// ThreadPoller re-fetches one chat thread at a fixed interval and merges the
// authoritative copy when it differs from the rendered one. Failed ticks are
// logged and skipped; the loop never stops on its own. Stop guarantees that
// no tick fires afterwards and that a tick already in flight cannot merge
// its late result.
type ThreadPoller struct {
	gw       Gateway
	thread   *store.Thread
	threadID int64
	interval time.Duration
	notify   Notifier

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
	running bool
}

func NewThreadPoller(gw Gateway, thread *store.Thread, threadID int64, interval time.Duration, notify Notifier) *ThreadPoller {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &ThreadPoller{gw: gw, thread: thread, threadID: threadID, interval: interval, notify: notify}
}

// Start launches the polling loop. Calling Start on a running or stopped
// poller is a no-op; a poller is single-use.
func (p *ThreadPoller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running || p.stopped {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.running = true
	go p.loop(ctx)
}

// Stop cancels the loop and bars any in-flight tick from merging.
func (p *ThreadPoller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	p.running = false
	if p.cancel != nil {
		p.cancel()
	}
}

func (p *ThreadPoller) loop(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *ThreadPoller) tick(ctx context.Context) {
	msgs, err := p.gw.FetchThread(ctx, p.threadID)
	if err != nil {
		// Transient failures skip the tick, they never stop polling.
		pollerTicksTotal.WithLabelValues(tickError).Inc()
		logrus.Debugf("thread %d poll skipped: %v", p.threadID, err)
		return
	}

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		pollerTicksTotal.WithLabelValues(tickDiscarded).Inc()
		return
	}
	curCount, curMax := p.thread.Signature()
	newCount, newMax := signatureOf(msgs)
	if curCount == newCount && curMax == newMax {
		p.mu.Unlock()
		pollerTicksTotal.WithLabelValues(tickUnchanged).Inc()
		return
	}
	p.thread.Replace(msgs)
	p.mu.Unlock()

	pollerTicksTotal.WithLabelValues(tickChanged).Inc()
	p.notify.emit(EventThreadUpdated)
}

func signatureOf(msgs []models.ChatMessage) (int, int64) {
	count := 0
	var maxID int64
	for _, m := range msgs {
		if m.Provisional() {
			continue
		}
		count++
		if m.ID.Int64() > maxID {
			maxID = m.ID.Int64()
		}
	}
	return count, maxID
}

// FeedChecker is the event-driven freshness check for the feed: dormant
// until poked by a confirmed post creation or a push event, it re-fetches
// the first page and merges what is new. Items with unreconciled optimistic
// state are never clobbered.
type FeedChecker struct {
	gw       Gateway
	snap     *store.Snapshot
	notify   Notifier
	pageSize int

	// skip filters out items the mutation coordinator still owns
	skip func(id int64) bool
	// filter supplies the active interest filter at check time
	filter func() string

	mu       sync.Mutex
	checking bool
	stopped  bool
}

func NewFeedChecker(gw Gateway, snap *store.Snapshot, notify Notifier, pageSize int, skip func(id int64) bool, filter func() string) *FeedChecker {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &FeedChecker{gw: gw, snap: snap, notify: notify, pageSize: pageSize, skip: skip, filter: filter}
}

// Stop bars further checks and any in-flight check from merging.
func (f *FeedChecker) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

// Check fetches the first page and merges new or refreshed items. Concurrent
// checks collapse into one. Emits EventNewContent only when something
// actually changed.
func (f *FeedChecker) Check(ctx context.Context) {
	f.mu.Lock()
	if f.checking || f.stopped {
		f.mu.Unlock()
		return
	}
	f.checking = true
	f.mu.Unlock()

	filter := ""
	if f.filter != nil {
		filter = f.filter()
	}
	page, err := f.gw.FetchFeedPage(ctx, "", filter, f.pageSize)

	f.mu.Lock()
	f.checking = false
	if f.stopped {
		f.mu.Unlock()
		pollerTicksTotal.WithLabelValues(tickDiscarded).Inc()
		return
	}
	f.mu.Unlock()

	if err != nil {
		pollerTicksTotal.WithLabelValues(tickError).Inc()
		logrus.Debugf("feed freshness check skipped: %v", err)
		return
	}

	changed := f.merge(page.Results)
	if changed {
		pollerTicksTotal.WithLabelValues(tickChanged).Inc()
		f.notify.emit(EventNewContent)
	} else {
		pollerTicksTotal.WithLabelValues(tickUnchanged).Inc()
	}
}

// merge prepends unseen items and refreshes stale duplicate-id entries via
// upsert, preserving their positions.
func (f *FeedChecker) merge(results []models.FeedItem) bool {
	changed := false
	fresh := make([]models.FeedItem, 0, len(results))
	for _, item := range results {
		if f.skip != nil && f.skip(item.ID) {
			continue
		}
		existing, ok := f.snap.Get(item.ID)
		if !ok {
			fresh = append(fresh, item)
			continue
		}
		if existing.LikeCount != item.LikeCount ||
			existing.CommentCount != item.CommentCount ||
			existing.Liked != item.Liked {
			f.snap.Upsert(item)
			changed = true
		}
	}
	if len(fresh) > 0 {
		f.snap.Prepend(fresh)
		changed = true
	}
	return changed
}
