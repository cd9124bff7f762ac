package model

import "time"

// ScheduledNotification is a reminder handed to the dispatcher and
// journaled so it survives a restart.
type ScheduledNotification struct {
	// ID is the dispatcher handle for this notification.
	ID string `json:"id" db:"id"`

	// TaskID links this notification to the task it reminds about.
	TaskID string `json:"task_id" db:"task_id"`

	// Title is the task title at scheduling time.
	Title string `json:"title" db:"title"`

	// Label describes the offset, e.g. "in 2 hrs".
	Label string `json:"label" db:"label"`

	// FireAt is the absolute time the notification should be delivered.
	FireAt time.Time `json:"fire_at" db:"fire_at"`

	// RequiresInteraction asks the delivery channel not to auto-dismiss.
	RequiresInteraction bool `json:"requires_interaction" db:"requires_interaction"`

	// Sent indicates whether the notification has been delivered.
	Sent bool `json:"sent" db:"sent"`

	// CreatedAt is when the notification was scheduled.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
