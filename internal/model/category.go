package model

import "time"

// Station is the preparation area a category's items are routed to.
type Station string

const (
	StationKitchen Station = "kitchen"
	StationBar     Station = "bar"
)

// Category groups menu items by preparation station.
type Category struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Station   Station   `gorm:"size:20;not null;default:kitchen" json:"station"`
	CreatedAt time.Time `gorm:"not null" json:"-"`
	UpdatedAt time.Time `gorm:"not null" json:"-"`

	// Associations
	Items []MenuItem `gorm:"foreignKey:CategoryID" json:"items,omitempty"`
}
