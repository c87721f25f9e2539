package model

import "time"

// PushSubscription holds a waitstaff device's browser push subscription.
// A device subscribes to the tables it covers and is notified when an
// item for one of them is ready to serve.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Tables []*Table `gorm:"many2many:subscription_table_mapping;"`
}
