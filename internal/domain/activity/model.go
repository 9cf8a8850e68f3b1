package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeRecordCreated    ActivityType = "record_created"
	TypeRecordUpdated    ActivityType = "record_updated"
	TypeRecordDeleted    ActivityType = "record_deleted"
	TypeFavouriteToggled ActivityType = "favourite_toggled"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	ProjectID    *int64       `json:"project_id,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
