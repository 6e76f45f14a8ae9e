package models

import "time"

// ActivityEvent is a single entry of a user's activity log.
type ActivityEvent struct {
	EventID     string    `json:"event_id"`
	UserID      int64     `json:"user_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // REGISTER | LOGIN | POST_CREATE | POST_EDIT | POST_DELETE | PROFILE_UPDATE
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
