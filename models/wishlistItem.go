package models

import "gorm.io/gorm"

type WishlistItem struct {
	gorm.Model
	UserID    uint `gorm:"not null;uniqueIndex:idx_wishlist_user_product"`
	User      User
	ProductID uint    `gorm:"not null;uniqueIndex:idx_wishlist_user_product"`
	Product   Product `gorm:"constraint:OnDelete:CASCADE"`
}
