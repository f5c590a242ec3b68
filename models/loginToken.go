package models

import (
	"time"

	"gorm.io/gorm"
)

// 登出或過期時從此表刪除，驗證時查不到即視為失效
type LoginToken struct {
	gorm.Model
	Token          string `gorm:"not null;index"`
	ExpirationTime time.Time
	UserID         uint `gorm:"not null;index"`
	Role           string
}
