package models

// UserRef - the author/sender reference embedded in feed items and messages
type UserRef struct {
	ID        int64  `json:"id"`
	Nickname  string `json:"nickname"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
}

// DisplayName returns the name the client renders next to a post.
func (u UserRef) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Nickname
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
