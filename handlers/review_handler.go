package handlers

import (
	"fusionmart/models"
	"fusionmart/orders"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 查詢商品評價列表，無須登入
func GetProductReviewsHandler(c *gin.Context, db *gorm.DB) {
	productID := c.Param("productID")

	var product models.Product
	err := db.Where("id = ? AND available = ?", productID, true).First(&product).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "找不到此商品",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢商品失敗",
			"error":   err.Error(),
		})
		return
	}

	var reviews []models.Review
	err = db.
		Where("product_id = ?", product.ID).
		Preload("User").
		Order("created_at DESC").
		Find(&reviews).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢評價列表失敗",
			"error":   err.Error(),
		})
		return
	}

	var reviewsData []gin.H
	for _, review := range reviews {
		reviewsData = append(reviewsData, gin.H{
			"ID":        review.ID,
			"UserName":  review.User.Name,
			"Rating":    review.Rating,
			"Comment":   review.Comment,
			"CreatedAt": review.CreatedAt,
			"UpdatedAt": review.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "成功查詢評價列表",
		"reviewsData": reviewsData,
	})
}

// 新增商品評價，必須購買過此商品且尚未評價過
func CreateReviewHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	productID := c.Param("productID")

	var product models.Product
	err := db.Where("id = ? AND available = ?", productID, true).First(&product).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "找不到此商品",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢商品失敗",
			"error":   err.Error(),
		})
		return
	}

	var reviewReq struct {
		Rating  uint   `json:"rating" binding:"required"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&reviewReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定請求資料錯誤",
			"error":   err.Error(),
		})
		return
	}

	if reviewReq.Rating < 1 || reviewReq.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "評分必須介於1到5之間",
		})
		return
	}

	//必須購買過此商品才能評價
	purchased, err := orders.UserHasPurchasedProduct(db, userID.(uint), product.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "檢查購買紀錄失敗",
			"error":   err.Error(),
		})
		return
	}
	if !purchased {
		c.JSON(http.StatusForbidden, gin.H{
			"message": "必須購買過此商品才能評價",
		})
		return
	}

	//檢查是否已評價過
	var existingReview models.Review
	err = db.
		Where("product_id = ? AND user_id = ?", product.ID, userID).
		First(&existingReview).
		Error
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "已評價過此商品",
		})
		return
	}
	if err != gorm.ErrRecordNotFound {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢評價失敗",
			"error":   err.Error(),
		})
		return
	}

	review := models.Review{
		ProductID: product.ID,
		UserID:    userID.(uint),
		Rating:    reviewReq.Rating,
		Comment:   reviewReq.Comment,
	}
	if err := db.Create(&review).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "新增評價失敗",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "成功新增評價",
		"ReviewID": review.ID,
	})
}

// 修改評價，只有評價的作者可以修改
func UpdateReviewHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	productID := c.Param("productID")
	reviewID := c.Param("reviewID")

	var review models.Review
	err := db.
		Where("id = ? AND product_id = ?", reviewID, productID).
		First(&review).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "找不到此評價",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢評價失敗",
			"error":   err.Error(),
		})
		return
	}

	if review.UserID != userID.(uint) {
		c.JSON(http.StatusForbidden, gin.H{
			"message": "沒有權限",
		})
		return
	}

	var reviewReq struct {
		Rating  *uint   `json:"rating"`
		Comment *string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&reviewReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定請求資料錯誤",
			"error":   err.Error(),
		})
		return
	}

	if reviewReq.Rating != nil {
		if *reviewReq.Rating < 1 || *reviewReq.Rating > 5 {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "評分必須介於1到5之間",
			})
			return
		}
		review.Rating = *reviewReq.Rating
	}
	if reviewReq.Comment != nil {
		review.Comment = *reviewReq.Comment
	}

	if err := db.Save(&review).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "修改評價失敗",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "成功修改評價",
	})
}

// 刪除評價，只有評價的作者可以刪除
func DeleteReviewHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	productID := c.Param("productID")
	reviewID := c.Param("reviewID")

	var review models.Review
	err := db.
		Where("id = ? AND product_id = ?", reviewID, productID).
		First(&review).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "找不到此評價",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢評價失敗",
			"error":   err.Error(),
		})
		return
	}

	if review.UserID != userID.(uint) {
		c.JSON(http.StatusForbidden, gin.H{
			"message": "沒有權限",
		})
		return
	}

	if err := db.Delete(&review).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "刪除評價失敗",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "成功刪除評價",
	})
}
