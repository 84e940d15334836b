package domain

import "time"

// Timestamps carries the created_at/updated_at pair shared by every
// persisted entity. Embed it by value.
type Timestamps struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Touch refreshes UpdatedAt and, on first call, initializes CreatedAt
// to the same instant so the pair starts out equal.
func (t *Timestamps) Touch(now time.Time) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
}

// IsEdited reports whether the record was modified after creation.
func (t Timestamps) IsEdited() bool {
	return !t.CreatedAt.Equal(t.UpdatedAt)
}
