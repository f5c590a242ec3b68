package handlers

import (
	"fmt"
	"fusionmart/models"
	"fusionmart/orders"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const maxProductImages = 4

func isValidImageExtensions(file *multipart.FileHeader) bool {
	allowExtensions := []string{".jpg", ".jpeg", ".png"}
	fileExt := strings.ToLower(filepath.Ext(file.Filename))
	for _, allowExt := range allowExtensions {
		if fileExt == allowExt {
			return true
		}
	}
	return false
}

// 查詢廠商自己的商品列表
func GetVendorProductsHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	var products []models.Product
	err := db.
		Where("vendor_id = ?", userID).
		Preload("Images").
		Find(&products).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢商品列表失敗",
			"error":   err.Error(),
		})
		return
	}

	var productsData []gin.H
	for _, product := range products {
		productsData = append(productsData, gin.H{
			"ID":          product.ID,
			"Name":        product.Name,
			"Price":       product.Price,
			"Description": product.Description,
			"Available":   product.Available,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "成功查詢商品列表",
		"products": productsData,
	})
}

// 新增商品
func CreateProductHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	var newProductReq struct {
		Name        string          `json:"name" binding:"required"`
		Price       decimal.Decimal `json:"price" binding:"required"`
		Description string          `json:"description"`
		Available   *bool           `json:"available"`
	}
	if err := c.ShouldBindJSON(&newProductReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定請求資料錯誤",
			"error":   err.Error(),
		})
		return
	}

	if newProductReq.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "商品價格不得為負數",
		})
		return
	}

	available := true
	if newProductReq.Available != nil {
		available = *newProductReq.Available
	}

	product := models.Product{
		VendorID:    userID.(uint),
		Name:        newProductReq.Name,
		Price:       newProductReq.Price,
		Description: newProductReq.Description,
		Available:   available,
	}

	if err := db.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "新增商品失敗",
			"error":   err.Error(),
		})
		return
	}

	if err, msg := UpdateProductToRedis(c, rdb, &product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": msg,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "成功新增商品",
		"product": gin.H{
			"ID":        product.ID,
			"Name":      product.Name,
			"Price":     product.Price,
			"Available": product.Available,
		},
	})
}

// 查詢廠商自己的商品詳細資料
func GetVendorProductDataHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	productID := c.Param("productID")

	var product models.Product
	err := db.
		Where("id = ? AND vendor_id = ?", productID, userID).
		Preload("Images").
		First(&product).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "找不到此商品",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢商品資料失敗",
			"error":   err.Error(),
		})
		return
	}

	var imageURLs []string
	for _, image := range product.Images {
		imageURLs = append(imageURLs, image.ImageURL)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "成功查詢商品資料",
		"product": gin.H{
			"ID":          product.ID,
			"Name":        product.Name,
			"Price":       product.Price,
			"Description": product.Description,
			"Available":   product.Available,
			"Images":      imageURLs,
		},
	})
}

// 修改商品，只有商品的廠商可以修改
func UpdateProductHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	productID := c.Param("productID")

	var productDataReq struct {
		Name        *string          `json:"name"`
		Price       *decimal.Decimal `json:"price"`
		Description *string          `json:"description"`
		Available   *bool            `json:"available"`
	}
	if err := c.ShouldBindJSON(&productDataReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定請求資料錯誤",
			"error":   err.Error(),
		})
		return
	}

	var product models.Product
	err := db.
		Where("id = ? AND vendor_id = ?", productID, userID).
		First(&product).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "找不到此商品",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢商品資料失敗",
			"error":   err.Error(),
		})
		return
	}

	if productDataReq.Name != nil {
		product.Name = *productDataReq.Name
	}
	if productDataReq.Price != nil {
		if productDataReq.Price.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "商品價格不得為負數",
			})
			return
		}
		//已成立訂單內的價格是快照，改價不影響舊訂單
		product.Price = *productDataReq.Price
	}
	if productDataReq.Description != nil {
		product.Description = *productDataReq.Description
	}
	if productDataReq.Available != nil {
		product.Available = *productDataReq.Available
	}

	if err := db.Save(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "修改商品資料失敗",
			"error":   err.Error(),
		})
		return
	}

	if err, msg := UpdateProductToRedis(c, rdb, &product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": msg,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "成功修改商品資料",
	})
}

// 刪除商品，已成立訂單的項目保留價格快照不受影響
func DeleteProductHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	productID := c.Param("productID")

	var product models.Product
	err := db.
		Where("id = ? AND vendor_id = ?", productID, userID).
		First(&product).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "找不到此商品",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查找此商品失敗",
			"error":   err.Error(),
		})
		return
	}

	if err := db.Delete(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "刪除商品失敗",
			"error":   err.Error(),
		})
		return
	}

	if err, msg := DeleteProductFromRedis(c, rdb, product.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": msg,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "成功刪除商品",
	})
}

// 上傳商品圖片，每個商品最多4張
func UploadProductImagesHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	productID := c.Param("productID")

	var product models.Product
	err := db.
		Where("id = ? AND vendor_id = ?", productID, userID).
		First(&product).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "找不到此商品",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢商品資料失敗",
			"error":   err.Error(),
		})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定圖片失敗",
			"error":   err.Error(),
		})
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "沒有上傳任何圖片",
		})
		return
	}

	var imagesCount int64
	err = db.
		Model(&models.ProductImage{}).
		Where("product_id = ?", product.ID).
		Count(&imagesCount).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢商品圖片數量失敗",
			"error":   err.Error(),
		})
		return
	}
	if int(imagesCount)+len(files) > maxProductImages {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "每個商品最多只能有4張圖片",
		})
		return
	}

	uploadsDir := "./uploads"
	//檢查uploads資料夾是否存在，如不存在則創建
	if _, err := os.Stat(uploadsDir); err != nil {
		if os.IsNotExist(err) {
			if err := os.Mkdir(uploadsDir, 0755); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"message": "建立uploads資料夾失敗",
					"error":   err.Error(),
				})
				return
			}
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "檢查uploads資料夾失敗",
				"error":   err.Error(),
			})
			return
		}
	}

	var imageURLs []string
	for _, file := range files {
		if !isValidImageExtensions(file) {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "圖片檔案格式錯誤",
			})
			return
		}

		imageName := fmt.Sprintf("%s%s", uuid.New().String(), filepath.Ext(file.Filename))
		filePath := filepath.Join(uploadsDir, imageName)
		if err := c.SaveUploadedFile(file, filePath); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "儲存圖片失敗",
				"error":   err.Error(),
			})
			return
		}

		imageURL := "/" + filepath.ToSlash(filePath)
		err := db.Create(&models.ProductImage{
			ProductID: product.ID,
			ImageURL:  imageURL,
		}).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "儲存商品圖片資料失敗",
				"error":   err.Error(),
			})
			return
		}

		imageURLs = append(imageURLs, imageURL)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "成功上傳圖片",
		"imageURLs": imageURLs,
	})
}

// 查詢廠商自己的訂單項目列表
func GetVendorOrderItemsHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	var orderItems []models.OrderItem
	err := db.
		Where("vendor_id = ?", userID).
		Preload("Product").
		Order("id DESC").
		Find(&orderItems).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢訂單項目列表失敗",
			"error":   err.Error(),
		})
		return
	}

	var orderItemsData []gin.H
	for _, item := range orderItems {
		itemData := gin.H{
			"ID":                item.ID,
			"OrderID":           item.OrderID,
			"Quantity":          item.Quantity,
			"Price":             item.Price,
			"FulfillmentStatus": item.FulfillmentStatus,
		}
		if item.Product != nil {
			itemData["ProductName"] = item.Product.Name
		}
		orderItemsData = append(orderItemsData, itemData)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "成功查詢訂單項目列表",
		"orderItemsData": orderItemsData,
	})
}

// 更新訂單項目的出貨狀態，只有該項目的廠商可以更新
func UpdateOrderItemStatusHandler(c *gin.Context, db *gorm.DB) {
	principal, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	orderItemID, err := strconv.ParseUint(c.Param("orderItemID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "訂單項目ID輸入錯誤",
			"error":   err.Error(),
		})
		return
	}

	var statusReq struct {
		FulfillmentStatus string `json:"fulfillment_status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&statusReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定請求資料錯誤",
			"error":   err.Error(),
		})
		return
	}

	orderItem, err := orders.UpdateFulfillment(db, principal, uint(orderItemID), statusReq.FulfillmentStatus)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "成功更新出貨狀態",
		"OrderItemID":       orderItem.ID,
		"FulfillmentStatus": orderItem.FulfillmentStatus,
	})
}
