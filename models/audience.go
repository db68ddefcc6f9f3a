package models

import "sort"

// Bubble - a social context the viewer belongs to, used both for chat
// threading and as a default post-visibility scope
type Bubble struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Group - a named, saved set of recipients
type Group struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	MemberIDs []int64 `json:"member_ids"`
}

// AudienceSelection - the finalized visibility scope of a new post. Public
// is derived by the resolver, never set independently: it is true iff every
// bubble of the viewer is selected and no individuals or groups are.
type AudienceSelection struct {
	Public    bool    `json:"public"`
	BubbleIDs []int64 `json:"bubble_ids"`
	MemberIDs []int64 `json:"member_ids"`
	GroupIDs  []int64 `json:"group_ids"`
}

// NewAudienceSelection copies and sorts the id sets so the payload is a
// stable, detached snapshot of the resolver's working state.
func NewAudienceSelection(public bool, bubbles, members, groups []int64) AudienceSelection {
	return AudienceSelection{
		Public:    public,
		BubbleIDs: sortedCopy(bubbles),
		MemberIDs: sortedCopy(members),
		GroupIDs:  sortedCopy(groups),
	}
}

func sortedCopy(ids []int64) []int64 {
	out := make([]int64, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
