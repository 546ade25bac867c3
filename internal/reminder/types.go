package reminder

import (
	"time"

	"github.com/rs/xid"
)

// Reminder represents one scheduled alert. A reminder's identity is fixed
// at creation; there is no update operation, only add and remove.
type Reminder struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	DueAt     time.Time `json:"due_at"`
	CreatedAt time.Time `json:"created_at"`

	// LinkedTaskID is a weak reference to an external task. The task may
	// disappear independently; nothing here depends on it existing.
	LinkedTaskID string `json:"linked_task_id,omitempty"`
}

// NewID returns a fresh opaque reminder identifier.
func NewID() string {
	return xid.New().String()
}

// Due reports whether the reminder is due at the given instant.
func (r Reminder) Due(now time.Time) bool {
	return !r.DueAt.After(now)
}

// normalize pins both timestamps to UTC so the durable file always carries
// trailing-Z RFC3339 values regardless of host timezone.
func (r Reminder) normalize() Reminder {
	r.DueAt = r.DueAt.UTC()
	r.CreatedAt = r.CreatedAt.UTC()
	return r
}
