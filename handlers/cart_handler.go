package handlers

import (
	"fusionmart/models"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 查詢購物車商品
func GetCartHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	var cartItems []models.CartItem
	err := db.
		Where("user_id = ?", userID).
		Preload("Product").
		Find(&cartItems).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢購物車失敗",
			"error":   err.Error(),
		})
		return
	}

	var cartItemsData []gin.H
	for _, cartItem := range cartItems {
		cartItemsData = append(cartItemsData, gin.H{
			"ProductID": cartItem.ProductID,
			"Name":      cartItem.Product.Name,
			"Price":     cartItem.Product.Price,
			"Available": cartItem.Product.Available,
			"Quantity":  cartItem.Quantity,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "成功查詢購物車",
		"cartItemsData": cartItemsData,
	})
}

// 新增商品至購物車，重複加入時累加數量
func AddToCartHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	var cartItemReq struct {
		ProductID uint `json:"productID" binding:"required"`
		Quantity  uint `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&cartItemReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定請求資料錯誤",
			"error":   err.Error(),
		})
		return
	}
	if cartItemReq.Quantity == 0 {
		cartItemReq.Quantity = 1
	}

	//檢查商品是否存在
	var product models.Product
	err := db.First(&product, "id = ?", cartItemReq.ProductID).Error
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

	//查詢購物車是否已有此商品
	var cartItem models.CartItem
	err = db.
		Where("user_id = ? AND product_id = ?", userID, cartItemReq.ProductID).
		First(&cartItem).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			//購物車沒有相同商品，新增此商品至購物車
			err := db.Create(&models.CartItem{
				UserID:    userID.(uint),
				ProductID: cartItemReq.ProductID,
				Quantity:  cartItemReq.Quantity,
			}).Error
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"message": "新增商品至購物車失敗",
					"error":   err.Error(),
				})
				return
			}

			c.JSON(http.StatusCreated, gin.H{
				"message":   "成功新增商品至購物車",
				"productID": cartItemReq.ProductID,
				"Quantity":  cartItemReq.Quantity,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢購物車商品錯誤",
			"error":   err.Error(),
		})
		return
	}

	//購物車有相同商品，增加商品數量
	cartItem.Quantity += cartItemReq.Quantity
	err = db.Model(&cartItem).Update("quantity", cartItem.Quantity).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "更新購物車商品數量失敗",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "成功更新購物車商品數量",
		"productID": cartItem.ProductID,
		"Quantity":  cartItem.Quantity,
	})
	return
}

// 刪除購物車商品
func RemoveFromCartHandler(c *gin.Context, db *gorm.DB) {
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
		Delete(&models.CartItem{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "刪除購物車商品錯誤",
			"error":   result.Error.Error(),
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"message": "購物車沒有此商品",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "成功刪除購物車商品",
		"productID": removeReq.ProductID,
	})
	return
}
