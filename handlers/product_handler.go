package handlers

import (
	"encoding/json"
	"fmt"
	"fusionmart/models"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const productCacheKey = "products"

func min(x, y int) int {
	if x < y {
		return x
	}
	return y
}

// 更新Redis內的商品快取，下架商品直接移除
func UpdateProductToRedis(c *gin.Context, rdb *redis.Client, product *models.Product) (error, string) {
	score := strconv.Itoa(int(product.ID))

	err := rdb.ZRemRangeByScore(c, productCacheKey, score, score).Err()
	if err != nil {
		return err, "無法將商品資料從Redis刪除"
	}

	if !product.Available {
		return nil, ""
	}

	productJSON, err := json.Marshal(product)
	if err != nil {
		return err, "無法序列化商品資料"
	}

	err = rdb.ZAdd(c, productCacheKey, redis.Z{
		Score:  float64(product.ID),
		Member: productJSON,
	}).Err()
	if err != nil {
		return err, "無法將商品資料加入Redis"
	}

	return nil, ""
}

// 從Redis移除商品快取
func DeleteProductFromRedis(c *gin.Context, rdb *redis.Client, productID uint) (error, string) {
	score := strconv.Itoa(int(productID))

	err := rdb.ZRemRangeByScore(c, productCacheKey, score, score).Err()
	if err != nil {
		return err, "無法將商品資料從Redis刪除"
	}

	return nil, ""
}

// 從資料庫讀取上架商品並重建Redis快取
func reloadProductsToRedis(c *gin.Context, db *gorm.DB, rdb *redis.Client) error {
	var products []models.Product
	err := db.Where("available = ?", true).Find(&products).Error
	if err != nil {
		return err
	}

	rdb.Del(c, productCacheKey)

	for _, product := range products {
		productJSON, err := json.Marshal(product)
		if err != nil {
			fmt.Printf("無法序列化商品資料: %v\n", err)
			continue
		}

		err = rdb.ZAdd(c, productCacheKey, redis.Z{
			Score:  float64(product.ID),
			Member: productJSON,
		}).Err()
		if err != nil {
			fmt.Printf("無法將商品資料加入Redis: %v\n", err)
			continue
		}
	}

	return nil
}

// 查詢商品列表，可用search參數以名稱過濾
func GetProductListHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	limit := c.DefaultQuery("limit", "10")
	limitInt, err := strconv.Atoi(limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "查詢數量輸入錯誤",
			"error":   err.Error(),
		})
		return
	}
	//限制最高查詢數量為50
	if limitInt > 50 {
		limitInt = 50
	}
	if limitInt < 1 {
		limitInt = 10
	}

	offset := c.DefaultQuery("offset", "0")
	offsetInt, err := strconv.Atoi(offset)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "offset輸入錯誤",
			"error":   err.Error(),
		})
		return
	}
	if offsetInt < 0 {
		offsetInt = 0
	}

	search := c.Query("search")

	//嘗試從Redis讀取商品列表，快取是空的則從資料庫重建
	redisProducts, err := rdb.ZRange(c, productCacheKey, 0, -1).Result()
	if err != nil || len(redisProducts) == 0 {
		if err := reloadProductsToRedis(c, db, rdb); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "無法讀取商品列表",
				"error":   err.Error(),
			})
			return
		}

		//再次嘗試從Redis讀取商品列表
		redisProducts, err = rdb.ZRange(c, productCacheKey, 0, -1).Result()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "無法從Redis讀取商品列表",
				"error":   err.Error(),
			})
			return
		}
	}

	//遍歷從Redis讀出的商品列表，過濾名稱不符合搜尋字串的商品
	var productsData []gin.H
	for _, redisProduct := range redisProducts {
		var productUnmarshal models.Product
		err = json.Unmarshal([]byte(redisProduct), &productUnmarshal)
		if err != nil {
			fmt.Printf("無法反序列化商品資料: %v\n", err)
			continue
		}

		if search != "" && !strings.Contains(strings.ToLower(productUnmarshal.Name), strings.ToLower(search)) {
			continue
		}

		productsData = append(productsData, gin.H{
			"ID":          productUnmarshal.ID,
			"Name":        productUnmarshal.Name,
			"Price":       productUnmarshal.Price,
			"Description": productUnmarshal.Description,
			"VendorID":    productUnmarshal.VendorID,
		})
	}

	totalCount := len(productsData)

	//預防offset跟limit超出搜尋結果切片
	if offsetInt >= totalCount && totalCount != 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"message":    "offset超過商品數量",
			"totalCount": totalCount,
		})
		return
	}
	if totalCount == 0 {
		productsData = []gin.H{}
		offsetInt = 0
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "成功讀取商品列表",
		"products":   productsData[offsetInt:min(offsetInt+limitInt, totalCount)],
		"totalCount": totalCount,
	})
}

// 查詢商品詳細資料，只回傳上架中的商品
func GetProductDataHandler(c *gin.Context, db *gorm.DB) {
	productID := c.Param("productID")

	var product models.Product
	err := db.
		Where("id = ? AND available = ?", productID, true).
		Preload("Vendor").
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
			"VendorName":  product.Vendor.Name,
			"Images":      imageURLs,
		},
	})
}
