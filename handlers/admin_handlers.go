package handlers

import (
	"fusionmart/models"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 查詢使用者列表
func GetUserListHandler(c *gin.Context, db *gorm.DB) {
	//嘗試獲取使用者列表
	var userList []struct {
		Id       uint
		Username string
		Email    string
		Name     string
		Role     string
	}
	err := db.
		Model(&models.User{}).
		Select("Id", "Username", "Email", "Name", "Role").
		Find(&userList).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法獲取使用者列表",
			"error":   err.Error(),
		})
		return
	}

	//檢查使用者列表是否為空
	if len(userList) == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "使用者列表為空",
		})
		return
	}

	//成功獲取使用者列表
	c.JSON(http.StatusOK, gin.H{
		"message":  "成功獲取使用者列表",
		"userList": userList,
	})
}
