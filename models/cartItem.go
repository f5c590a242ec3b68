package models

import "gorm.io/gorm"

// 同一個使用者對同一個商品只會有一列，重複加入只增加數量
type CartItem struct {
	gorm.Model
	UserID    uint `gorm:"not null;uniqueIndex:idx_cart_user_product"`
	User      User
	ProductID uint    `gorm:"not null;uniqueIndex:idx_cart_user_product"`
	Product   Product `gorm:"constraint:OnDelete:CASCADE"`
	Quantity  uint    `gorm:"not null;default:1"`
}
