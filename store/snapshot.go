package store

import (
	"sync"

	"socialclient/models"
)

// Snapshot holds the ordered, newest-first list of feed items the UI
// renders. It is the only shared mutable state of the sync layer; every
// write goes through one of the sanctioned primitives below, each of which
// computes a full replacement list before swapping it in.
type Snapshot struct {
	mu    sync.RWMutex
	items []models.FeedItem
	index map[int64]int
}

func NewSnapshot() *Snapshot {
	return &Snapshot{index: map[int64]int{}}
}

// Items returns a copy of the current ordered list.
func (s *Snapshot) Items() []models.FeedItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.FeedItem, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the item with the given id, if present.
func (s *Snapshot) Get(id int64) (models.FeedItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.index[id]
	if !ok {
		return models.FeedItem{}, false
	}
	return s.items[pos], true
}

func (s *Snapshot) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// IDs returns the ids in list order.
func (s *Snapshot) IDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, len(s.items))
	for i, item := range s.items {
		ids[i] = item.ID
	}
	return ids
}

// Replace discards the current list entirely.
func (s *Snapshot) Replace(items []models.FeedItem) {
	next := make([]models.FeedItem, 0, len(items))
	seen := map[int64]struct{}{}
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		next = append(next, item)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.swap(next)
}

// Prepend inserts items before all existing entries. Items whose id is
// already present are dropped from the inserted batch instead of moving the
// existing entry.
func (s *Snapshot) Prepend(items []models.FeedItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fresh := make([]models.FeedItem, 0, len(items))
	for _, item := range items {
		if _, exists := s.index[item.ID]; !exists {
			fresh = append(fresh, item)
		}
	}
	next := make([]models.FeedItem, 0, len(fresh)+len(s.items))
	next = append(next, fresh...)
	next = append(next, s.items...)
	s.swap(next)
}

// AppendPage merges a fetched page onto the tail. Ids already present are
// skipped, so merging the same page twice is a no-op. Returns the number of
// newly appended items.
func (s *Snapshot) AppendPage(items []models.FeedItem) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]models.FeedItem, len(s.items), len(s.items)+len(items))
	copy(next, s.items)
	appended := 0
	for _, item := range items {
		if _, exists := s.index[item.ID]; exists {
			continue
		}
		next = append(next, item)
		s.index[item.ID] = 0 // real positions rebuilt in swap
		appended++
	}
	s.swap(next)
	return appended
}

// Upsert is the single merge primitive: replace-by-id in place, or insert at
// the head when the id is new. An existing item never moves position, so the
// call is idempotent.
func (s *Snapshot) Upsert(item models.FeedItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pos, exists := s.index[item.ID]; exists {
		next := make([]models.FeedItem, len(s.items))
		copy(next, s.items)
		next[pos] = item
		s.swap(next)
		return
	}
	next := make([]models.FeedItem, 0, len(s.items)+1)
	next = append(next, item)
	next = append(next, s.items...)
	s.swap(next)
}

// Remove deletes the item with the given id, if present.
func (s *Snapshot) Remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos, ok := s.index[id]
	if !ok {
		return
	}
	next := make([]models.FeedItem, 0, len(s.items)-1)
	next = append(next, s.items[:pos]...)
	next = append(next, s.items[pos+1:]...)
	s.swap(next)
}

// swap installs a new list and rebuilds the id index. Callers hold the lock.
func (s *Snapshot) swap(next []models.FeedItem) {
	index := make(map[int64]int, len(next))
	for i, item := range next {
		index[item.ID] = i
	}
	s.items = next
	s.index = index
}
