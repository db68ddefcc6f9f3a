package store

import (
	"sync"

	"socialclient/models"
)

// Thread holds the messages of one chat thread, oldest-first. Thread fetches
// are full-replace, but messages sent optimistically and not yet confirmed
// survive a replace so the viewer never sees their own message vanish.
type Thread struct {
	mu   sync.RWMutex
	msgs []models.ChatMessage
}

func NewThread() *Thread {
	return &Thread{}
}

// Messages returns a copy of the current ordered list.
func (t *Thread) Messages() []models.ChatMessage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.ChatMessage, len(t.msgs))
	copy(out, t.msgs)
	return out
}

func (t *Thread) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.msgs)
}

// Signature returns (count, max id) over confirmed messages. The poller
// compares signatures to decide whether a fetched thread differs from the
// rendered one; provisional entries are excluded since the server does not
// know them yet.
func (t *Thread) Signature() (int, int64) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	count := 0
	var maxID int64
	for _, m := range t.msgs {
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

// Replace installs the authoritative server copy of the thread, carrying
// still-unconfirmed provisional messages over to the tail.
func (t *Thread) Replace(server []models.ChatMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	next := make([]models.ChatMessage, 0, len(server)+2)
	next = append(next, server...)
	for _, m := range t.msgs {
		if m.Provisional() {
			next = append(next, m)
		}
	}
	t.msgs = next
}

// Append adds a message at the tail (optimistic send).
func (t *Thread) Append(msg models.ChatMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	next := make([]models.ChatMessage, 0, len(t.msgs)+1)
	next = append(next, t.msgs...)
	next = append(next, msg)
	t.msgs = next
}

// Confirm replaces a provisional entry with the server-confirmed message,
// exactly once. If a poll already merged the confirmed copy, the provisional
// entry is dropped instead of producing a duplicate visible message.
func (t *Thread) Confirm(provisionalID int64, confirmed models.ChatMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	next := make([]models.ChatMessage, 0, len(t.msgs))
	confirmedPresent := false
	for _, m := range t.msgs {
		if m.ID == confirmed.ID {
			confirmedPresent = true
		}
	}
	for _, m := range t.msgs {
		switch {
		case m.ID.Int64() == provisionalID:
			if !confirmedPresent {
				next = append(next, confirmed)
			}
		default:
			next = append(next, m)
		}
	}
	t.msgs = next
}

// Remove discards a message, used for failed provisional sends.
func (t *Thread) Remove(id int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	next := make([]models.ChatMessage, 0, len(t.msgs))
	for _, m := range t.msgs {
		if m.ID.Int64() != id {
			next = append(next, m)
		}
	}
	t.msgs = next
}
