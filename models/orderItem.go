package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	FulfillmentStatusPending    = "pending"
	FulfillmentStatusProcessing = "processing"
	FulfillmentStatusShipped    = "shipped"
	FulfillmentStatusDelivered  = "delivered"
	FulfillmentStatusCancelled  = "cancelled"
)

// 檢查出貨狀態是否為五種合法值之一
func ValidFulfillmentStatus(status string) bool {
	switch status {
	case FulfillmentStatusPending,
		FulfillmentStatusProcessing,
		FulfillmentStatusShipped,
		FulfillmentStatusDelivered,
		FulfillmentStatusCancelled:
		return true
	}
	return false
}

// Price是下單當下的快照，商品或廠商被刪除時保留此列並將參照設為NULL
type OrderItem struct {
	gorm.Model
	OrderID           uint `gorm:"not null;index"`
	ProductID         *uint
	Product           *Product        `gorm:"constraint:OnDelete:SET NULL"`
	VendorID          *uint           `gorm:"index"`
	Vendor            *User           `gorm:"constraint:OnDelete:SET NULL"`
	Quantity          uint            `gorm:"not null"`
	Price             decimal.Decimal `gorm:"not null;type:decimal(10,2)"`
	FulfillmentStatus string          `gorm:"not null;default:pending"`
}
