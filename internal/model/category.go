package model

import "time"

// Category groups tasks by area (work, health, study, etc.). Names are
// unique per owner and compared case-sensitively.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OwnerID     uint      `gorm:"index:idx_owner_category_name,unique" json:"owner_id"`
	Name        string    `gorm:"index:idx_owner_category_name,unique;size:100" json:"name"`
	Description string    `gorm:"size:500" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// TaskCount is derived from the live task table, never stored.
	TaskCount int64 `gorm:"-" json:"task_count"`
}
