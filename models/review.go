package models

import "gorm.io/gorm"

// 每個使用者對同一個商品只能評價一次，且必須購買過該商品
type Review struct {
	gorm.Model
	ProductID uint    `gorm:"not null;uniqueIndex:idx_review_product_user"`
	Product   Product `gorm:"constraint:OnDelete:CASCADE"`
	UserID    uint    `gorm:"not null;uniqueIndex:idx_review_product_user"`
	User      User
	Rating    uint `gorm:"not null"`
	Comment   string
}
