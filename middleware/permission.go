package middleware

import (
	"fusionmart/models"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func checkRole(c *gin.Context, requiredRole string) {
	role, exists := c.Get("Role")
	if !exists {
		log.Println("無法取得Role")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "錯誤",
		})
		c.Abort()
		return
	}
	if role != requiredRole {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "沒有權限",
		})
		c.Abort()
		return
	}

	c.Next()
	return
}

// 檢查是否有admin權限，沒有則中止請求
func CheckAdminPermissionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		checkRole(c, models.RoleAdmin)
	}
}

// 檢查是否為廠商，沒有則中止請求
func CheckVendorPermissionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		checkRole(c, models.RoleVendor)
	}
}

// 檢查是否為一般使用者(購物者)，沒有則中止請求
func CheckUserPermissionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		checkRole(c, models.RoleUser)
	}
}
