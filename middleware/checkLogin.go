package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 需登入的路由群組共用，沒有通過Token驗證的請求直接擋下
func CheckLoginMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get("UserID"); !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "請先登入",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
