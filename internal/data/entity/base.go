package entity

import "time"

// Base carries the server-assigned identity and audit timestamps.
type Base struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsDraft reports whether the server has not assigned an identifier yet.
func (b Base) IsDraft() bool {
	return b.ID == ""
}
