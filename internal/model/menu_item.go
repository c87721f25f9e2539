package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MenuItem is a sellable product. Price is exact fixed-point money;
// order lines snapshot it at creation time.
type MenuItem struct {
	ID          int64           `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:128;not null" json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CategoryID  int64           `gorm:"index;not null" json:"categoryId"`
	Available   bool            `gorm:"not null;default:true" json:"available"`
	CreatedAt   time.Time       `gorm:"not null" json:"-"`
	UpdatedAt   time.Time       `gorm:"not null" json:"-"`

	// Associations
	Category Category `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
