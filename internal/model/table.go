package model

import "time"

// TableStatus is the occupancy state of a dining table.
type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
	TableBilling   TableStatus = "billing"
)

// Table represents a physical table in the dining room.
type Table struct {
	ID        int64       `gorm:"primaryKey" json:"id"`
	Number    int         `gorm:"uniqueIndex;not null" json:"number"`
	Status    TableStatus `gorm:"size:20;not null;default:available" json:"status"`
	CreatedAt time.Time   `gorm:"not null" json:"-"`
	UpdatedAt time.Time   `gorm:"not null" json:"-"`

	// Associations
	Orders []Order `gorm:"foreignKey:TableID" json:"orders,omitempty"`
}
