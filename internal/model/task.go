package model

import "time"

// Status is the workflow state of a task. Any status may move to any
// other, including back to an earlier one; no transition ordering is
// enforced.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Priority ranks a task. Priorities are ordinal: low < medium < high.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a single to-do item, owned by exactly one user.
type Task struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	OwnerID     uint       `gorm:"index" json:"owner_id"`
	CategoryID  *uint      `gorm:"index" json:"category_id"`
	Title       string     `gorm:"size:255" json:"title"`
	Description string     `gorm:"size:2000" json:"description"`
	Status      Status     `gorm:"size:50;default:pending" json:"status"`
	Priority    Priority   `gorm:"size:20;default:medium" json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
