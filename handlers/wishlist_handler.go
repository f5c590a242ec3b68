package handlers

import (
	"fusionmart/models"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 查詢願望清單
func GetWishlistHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	var wishlistItems []models.WishlistItem
	err := db.
		Where("user_id = ?", userID).
		Preload("Product").
		Find(&wishlistItems).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢願望清單失敗",
			"error":   err.Error(),
		})
		return
	}

	var wishlistData []gin.H
	for _, item := range wishlistItems {
		wishlistData = append(wishlistData, gin.H{
			"ProductID": item.ProductID,
			"Name":      item.Product.Name,
			"Price":     item.Product.Price,
			"Available": item.Product.Available,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "成功查詢願望清單",
		"wishlistData": wishlistData,
	})
}

// 新增商品至願望清單，重複加入視為成功
func AddToWishlistHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	var wishlistReq struct {
		ProductID uint `json:"productID" binding:"required"`
	}
	if err := c.ShouldBindJSON(&wishlistReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定請求資料錯誤",
			"error":   err.Error(),
		})
		return
	}

	//檢查商品是否存在
	var product models.Product
	err := db.First(&product, "id = ?", wishlistReq.ProductID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "找不到此商品",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢商品錯誤",
			"error":   err.Error(),
		})
		return
	}

	var wishlistItem models.WishlistItem
	err = db.
		Where("user_id = ? AND product_id = ?", userID, wishlistReq.ProductID).
		FirstOrCreate(&wishlistItem, models.WishlistItem{
			UserID:    userID.(uint),
			ProductID: wishlistReq.ProductID,
		}).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "新增商品至願望清單失敗",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "成功新增商品至願望清單",
		"productID": wishlistReq.ProductID,
	})
}

// 刪除願望清單商品
func RemoveFromWishlistHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	var removeReq struct {
		ProductID uint `json:"productID" binding:"required"`
	}
	if err := c.ShouldBindJSON(&removeReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定請求資料錯誤",
			"error":   err.Error(),
		})
		return
	}

	result := db.
		Where("user_id = ? AND product_id = ?", userID, removeReq.ProductID).
		Delete(&models.WishlistItem{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "刪除願望清單商品錯誤",
			"error":   result.Error.Error(),
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"message": "願望清單沒有此商品",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "成功刪除願望清單商品",
		"productID": removeReq.ProductID,
	})
}
