package entity

// ProspectList is a user-curated, named subset of prospects.
type ProspectList struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	CreatedAt   int64          `json:"createdAt"`
	UpdatedAt   int64          `json:"updatedAt"`
	Prospects   []SearchResult `json:"prospects"`
	Color       string         `json:"color,omitempty"`
}

// Contains reports whether a prospect with the given identity key is on the list.
func (l ProspectList) Contains(key string) bool {
	for _, p := range l.Prospects {
		if p.IdentityKey() == key {
			return true
		}
	}
	return false
}
