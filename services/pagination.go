package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"socialclient/gateway"
	"socialclient/store"
)

// PageManager owns the pagination cursor and feeds pages into the snapshot.
// Loads are single-flight: a load issued while another is in flight is
// dropped, not queued, which also guarantees page N+1 is never processed
// before page N's append has completed.
type PageManager struct {
	gw       Gateway
	snap     *store.Snapshot
	persist  *store.Persister
	notify   Notifier
	pageSize int

	mu       sync.Mutex
	filter   string
	next     string
	hasMore  bool
	inFlight bool
	loaded   bool
	offline  bool
}

// NewPageManager builds a manager. persist may be nil when no offline cache
// is configured.
func NewPageManager(gw Gateway, snap *store.Snapshot, persist *store.Persister, notify Notifier, pageSize int) *PageManager {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &PageManager{gw: gw, snap: snap, persist: persist, notify: notify, pageSize: pageSize}
}

// HasMore reports whether the server has advertised a further page.
func (m *PageManager) HasMore() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasMore
}

// Offline reports whether the rendered list is a cached fallback. The UI
// shows the offline banner while this is true.
func (m *PageManager) Offline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offline
}

// Filter returns the active interest-category filter, empty for all.
func (m *PageManager) Filter() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter
}

// LoadFirstPage resets the cursor and replaces the snapshot with the first
// page for the given filter. When the backend is unreachable it falls back
// to the last persisted snapshot, if any, and flags the list as offline.
func (m *PageManager) LoadFirstPage(ctx context.Context, filter string) error {
	m.mu.Lock()
	if m.inFlight {
		m.mu.Unlock()
		return nil
	}
	m.inFlight = true
	m.mu.Unlock()

	page, err := m.gw.FetchFeedPage(ctx, "", filter, m.pageSize)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight = false

	if err != nil {
		if readRecoverable(err) && m.persist != nil {
			if cacheErr := m.persist.Load(ctx, m.snap); cacheErr == nil {
				m.filter = filter
				m.next = ""
				m.hasMore = false
				m.loaded = true
				m.offline = true
				pageLoadsTotal.WithLabelValues("first", "cached").Inc()
				m.notify.emit(EventOfflineCached)
				logrus.Infof("feed unreachable, showing cached snapshot (%d items)", m.snap.Len())
				return nil
			}
		}
		pageLoadsTotal.WithLabelValues("first", "error").Inc()
		return fmt.Errorf("load first page: %w", err)
	}

	m.filter = filter
	m.snap.Replace(page.Results)
	m.next = page.Next
	m.hasMore = page.HasNext()
	m.loaded = true
	m.offline = false
	pageLoadsTotal.WithLabelValues("first", "ok").Inc()
	m.notify.emit(EventPageLoaded)
	m.persistSnapshot()
	return nil
}

// SetFilter switches the active interest-category chip. Identical to a
// first-page load: cursor and snapshot are rebuilt, never merged across
// filters.
func (m *PageManager) SetFilter(ctx context.Context, filter string) error {
	return m.LoadFirstPage(ctx, filter)
}

// LoadNextPage appends the next page. No-op when the end of data has been
// reached, when a load is already in flight, or when rendering the offline
// fallback.
func (m *PageManager) LoadNextPage(ctx context.Context) error {
	m.mu.Lock()
	if !m.loaded || !m.hasMore || m.inFlight || m.offline {
		m.mu.Unlock()
		return nil
	}
	m.inFlight = true
	cursor := m.next
	filter := m.filter
	m.mu.Unlock()

	page, err := m.gw.FetchFeedPage(ctx, cursor, filter, m.pageSize)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight = false

	if err != nil {
		pageLoadsTotal.WithLabelValues("next", "error").Inc()
		return fmt.Errorf("load next page: %w", err)
	}

	m.snap.AppendPage(page.Results)
	m.next = page.Next
	m.hasMore = page.HasNext()
	pageLoadsTotal.WithLabelValues("next", "ok").Inc()
	m.notify.emit(EventPageLoaded)
	m.persistSnapshot()
	return nil
}

// persistSnapshot saves the current snapshot in the background. The
// persister re-reads the snapshot at save time, so a save racing later
// merges never writes a stale captured list.
func (m *PageManager) persistSnapshot() {
	if m.persist == nil {
		return
	}
	go func() {
		if err := m.persist.Save(context.Background(), m.snap); err != nil {
			logrus.Warnf("failed to persist feed snapshot: %v", err)
		}
	}()
}

// readRecoverable reports whether a read failure may fall back to cached
// data. Unauthorized never does: it forces re-authentication.
func readRecoverable(err error) bool {
	var srvErr *gateway.ServerError
	return errors.Is(err, gateway.ErrUnreachable) || errors.As(err, &srvErr)
}
