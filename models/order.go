package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusReturned   = "returned"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// Total在建立訂單時計算完成後不再變動，商品改價不影響已成立的訂單
type Order struct {
	gorm.Model
	UserID        uint `gorm:"not null;index"`
	User          User
	OrderItems    []OrderItem     `gorm:"constraint:OnDelete:CASCADE"`
	Total         decimal.Decimal `gorm:"not null;type:decimal(10,2)"`
	Status        string          `gorm:"not null;default:pending"`
	PaymentStatus string          `gorm:"not null;default:pending"`
	IsCancelled   bool            `gorm:"not null;default:false"`
	IsReturned    bool            `gorm:"not null;default:false"`
	CancelReason  string
	ReturnReason  string
}
