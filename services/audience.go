package services

import (
	"context"
	"fmt"
	"sync"

	"socialclient/models"
)

// AudienceResolver reduces the three independently editable selection layers
// (social-context bubbles, individuals, saved groups) into one canonical
// payload. "Public" is derived state: all of the viewer's bubbles selected
// and nothing else.
type AudienceResolver struct {
	gw Gateway

	mu         sync.Mutex
	bubbles    []models.Bubble
	groups     []models.Group
	selBubbles map[int64]bool
	selMembers map[int64]bool
	selGroups  map[int64]bool
	loaded     bool
}

func NewAudienceResolver(gw Gateway) *AudienceResolver {
	return &AudienceResolver{
		gw:         gw,
		selBubbles: map[int64]bool{},
		selMembers: map[int64]bool{},
		selGroups:  map[int64]bool{},
	}
}

// Load fetches the viewer's bubbles and saved groups and resets the working
// selection to the default: every bubble selected, no individuals, no
// groups — which is the public state.
func (r *AudienceResolver) Load(ctx context.Context) error {
	bubbles, err := r.gw.FetchBubbles(ctx)
	if err != nil {
		return fmt.Errorf("load bubbles: %w", err)
	}
	groups, err := r.gw.FetchGroups(ctx)
	if err != nil {
		return fmt.Errorf("load groups: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.bubbles = bubbles
	r.groups = groups
	r.selBubbles = make(map[int64]bool, len(bubbles))
	for _, b := range bubbles {
		r.selBubbles[b.ID] = true
	}
	r.selMembers = map[int64]bool{}
	r.selGroups = map[int64]bool{}
	r.loaded = true
	return nil
}

// Bubbles returns the viewer's available social contexts.
func (r *AudienceResolver) Bubbles() []models.Bubble {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Bubble, len(r.bubbles))
	copy(out, r.bubbles)
	return out
}

// Groups returns the viewer's saved groups.
func (r *AudienceResolver) Groups() []models.Group {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Group, len(r.groups))
	copy(out, r.groups)
	return out
}

// ToggleBubble flips one social context in or out of the selection.
func (r *AudienceResolver) ToggleBubble(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bubbles {
		if b.ID == id {
			if r.selBubbles[id] {
				delete(r.selBubbles, id)
			} else {
				r.selBubbles[id] = true
			}
			return nil
		}
	}
	return fmt.Errorf("unknown bubble %d", id)
}

func (r *AudienceResolver) AddMember(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selMembers[id] = true
}

func (r *AudienceResolver) RemoveMember(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.selMembers, id)
}

// ToggleGroup flips a saved group in or out of the selection.
func (r *AudienceResolver) ToggleGroup(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.groups {
		if g.ID == id {
			if r.selGroups[id] {
				delete(r.selGroups, id)
			} else {
				r.selGroups[id] = true
			}
			return nil
		}
	}
	return fmt.Errorf("unknown group %d", id)
}

// IsPublic recomputes the derived public flag. It is never stored.
func (r *AudienceResolver) IsPublic() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isPublicLocked()
}

func (r *AudienceResolver) isPublicLocked() bool {
	if len(r.selMembers) > 0 || len(r.selGroups) > 0 {
		return false
	}
	if len(r.selBubbles) != len(r.bubbles) {
		return false
	}
	for _, b := range r.bubbles {
		if !r.selBubbles[b.ID] {
			return false
		}
	}
	return len(r.bubbles) > 0
}

// Confirm finalizes the working selection into an immutable payload. The
// returned snapshot is detached: later toggles do not affect it.
func (r *AudienceResolver) Confirm() models.AudienceSelection {
	r.mu.Lock()
	defer r.mu.Unlock()
	return models.NewAudienceSelection(
		r.isPublicLocked(),
		keys(r.selBubbles),
		keys(r.selMembers),
		keys(r.selGroups),
	)
}

// CreateGroup saves the currently selected individuals as a named group. On
// failure the working selection is left untouched; on success the new group
// becomes available but is not auto-selected.
func (r *AudienceResolver) CreateGroup(ctx context.Context, name string) (*models.Group, error) {
	r.mu.Lock()
	members := keys(r.selMembers)
	r.mu.Unlock()
	if len(members) == 0 {
		return nil, fmt.Errorf("cannot save an empty group")
	}

	group, err := r.gw.CreateGroup(ctx, name, members)
	if err != nil {
		return nil, fmt.Errorf("create group %q: %w", name, err)
	}

	r.mu.Lock()
	r.groups = append(r.groups, *group)
	r.mu.Unlock()
	return group, nil
}

func keys(set map[int64]bool) []int64 {
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
