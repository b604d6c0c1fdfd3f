package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeadlineStatus values are persisted as literal strings.
type DeadlineStatus string

const (
	StatusPending DeadlineStatus = "pending"
	StatusDone    DeadlineStatus = "done"
	StatusSkipped DeadlineStatus = "skipped"
)

// Valid reports whether s is one of the persisted status literals.
func (s DeadlineStatus) Valid() bool {
	switch s {
	case StatusPending, StatusDone, StatusSkipped:
		return true
	}
	return false
}

// Deadline represents a dated obligation, optionally recurring.
//
// Invariants maintained by the services layer:
//   - CompletedAt is non-nil iff Status == done.
//   - BaseDueAt is non-nil iff RecurrenceRule is non-nil; it anchors the
//     offsets the recurrence resolver computes and is reset to DueAt every
//     time recurrence is (re)enabled.
type Deadline struct {
	ID             string         `gorm:"type:char(36);primaryKey" json:"id"`
	Title          string         `gorm:"size:255;not null" json:"title"`
	DueAt          time.Time      `gorm:"not null;index" json:"due_at"`
	Notes          string         `gorm:"type:text" json:"notes,omitempty"`
	Status         DeadlineStatus `gorm:"size:16;not null;default:pending;index" json:"status"`
	RecurrenceRule *string        `gorm:"size:255" json:"recurrence_rule,omitempty"`
	BaseDueAt      *time.Time     `json:"base_due_at,omitempty"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	AssetID        *string        `gorm:"type:char(36);index" json:"asset_id,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// BeforeCreate assigns a server-side id when the caller did not provide one.
func (d *Deadline) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// TableName overrides the table name for Deadline
func (Deadline) TableName() string {
	return "deadlines"
}
