package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	gorm.Model
	VendorID    uint `gorm:"not null;index"`
	Vendor      User
	Name        string `gorm:"not null"`
	Description string
	Price       decimal.Decimal `gorm:"not null;type:decimal(10,2)"`
	Available   bool            `gorm:"not null;default:true"`
	Images      []ProductImage  `gorm:"constraint:OnDelete:CASCADE"`
}
