package models

import "time"

// Notification is a transient advisory derived from current ledger
// state; nothing is stored, so the same conditions produce the same
// notifications on every read.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // info, warning, error
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
