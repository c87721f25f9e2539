package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of a whole order. It advances
// monotonically through staff actions; "paid" is terminal.
type OrderStatus string

const (
	OrderReceived  OrderStatus = "received"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderDelivered OrderStatus = "delivered"
	OrderPaid      OrderStatus = "paid"
)

// Valid reports whether s is a member of the order status vocabulary.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderReceived, OrderPreparing, OrderReady, OrderDelivered, OrderPaid:
		return true
	}
	return false
}

// OrderLineStatus is the per-line preparation state. Lines have no
// "paid" state; payment is tracked on the order.
type OrderLineStatus string

const (
	LineReceived  OrderLineStatus = "received"
	LinePreparing OrderLineStatus = "preparing"
	LineReady     OrderLineStatus = "ready"
	LineDelivered OrderLineStatus = "delivered"
)

// Valid reports whether s is a member of the line status vocabulary.
func (s OrderLineStatus) Valid() bool {
	switch s {
	case LineReceived, LinePreparing, LineReady, LineDelivered:
		return true
	}
	return false
}

// Order is a single submission of items for one table.
type Order struct {
	ID        int64       `gorm:"primaryKey" json:"id"`
	TableID   int64       `gorm:"index;not null" json:"tableId"`
	Status    OrderStatus `gorm:"size:20;not null;default:received" json:"status"`
	CreatedAt time.Time   `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time   `gorm:"not null" json:"-"`

	// Associations
	Table Table       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Lines []OrderLine `gorm:"foreignKey:OrderID" json:"lines,omitempty"`
}

// OrderLine is one item position within an order. UnitPrice is copied
// from the menu item when the line is created and never recalculated.
type OrderLine struct {
	ID         int64           `gorm:"primaryKey" json:"id"`
	OrderID    int64           `gorm:"index;not null" json:"orderId"`
	MenuItemID int64           `gorm:"index;not null" json:"menuItemId"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unitPrice"`
	Note       string          `json:"note"`
	Status     OrderLineStatus `gorm:"size:20;not null;default:received" json:"status"`
	CreatedAt  time.Time       `gorm:"not null" json:"-"`
	UpdatedAt  time.Time       `gorm:"not null" json:"-"`

	// Associations
	Order    Order    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	MenuItem MenuItem `gorm:"constraint:OnDelete:CASCADE" json:"menuItem"`
}
