package model

import "time"

// ShiftStatus is the state of an operational shift.
type ShiftStatus string

const (
	ShiftOpen   ShiftStatus = "open"
	ShiftClosed ShiftStatus = "closed"
)

// Shift is an operational window opened and closed by a manager.
// Staff authentication is gated on an open shift existing.
type Shift struct {
	ID         int64       `gorm:"primaryKey" json:"id"`
	StartedAt  time.Time   `gorm:"not null" json:"startedAt"`
	EndedAt    *time.Time  `json:"endedAt,omitempty"`
	OpenedByID int64       `gorm:"index;not null" json:"openedById"`
	Status     ShiftStatus `gorm:"size:20;not null;default:open" json:"status"`

	// Associations
	OpenedBy User `gorm:"foreignKey:OpenedByID" json:"-"`
}
