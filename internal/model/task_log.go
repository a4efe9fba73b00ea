package model

import "time"

// TaskLog is one entry in a task's append-only status history. Entries
// are written only by the task service, exactly one per status-affecting
// mutation, and are never updated afterwards. OldStatus is nil only for
// the entry recorded at task creation.
type TaskLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TaskID    uint      `gorm:"index" json:"task_id"`
	OldStatus *Status   `gorm:"size:50" json:"old_status"`
	NewStatus Status    `gorm:"size:50" json:"new_status"`
	ChangedBy uint      `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
	Notes     string    `json:"notes"`
}
