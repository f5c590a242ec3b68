package models

import "gorm.io/gorm"

const (
	RoleUser   = "user"
	RoleVendor = "vendor"
	RoleAdmin  = "admin"
)

type User struct {
	gorm.Model
	Username    string `gorm:"unique;not null"`
	Email       string `gorm:"unique;not null"`
	Password    string `gorm:"not null"`
	Name        string
	Phone       string
	Role        string    `gorm:"not null;default:user"`
	Products    []Product `gorm:"foreignKey:VendorID"`
	Orders      []Order
	LoginTokens []LoginToken
}
