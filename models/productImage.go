package models

import "gorm.io/gorm"

type ProductImage struct {
	gorm.Model
	ProductID uint   `gorm:"not null;index"`
	ImageURL  string `gorm:"not null"`
}
