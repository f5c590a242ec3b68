package handlers

import (
	"errors"
	"fusionmart/models"
	"fusionmart/notification"
	"fusionmart/orders"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 從Context取得已驗證的呼叫者
func currentPrincipal(c *gin.Context) (orders.Principal, bool) {
	userID, ok := c.Get("UserID")
	if !ok {
		return orders.Principal{}, false
	}
	role := ""
	if r, ok := c.Get("Role"); ok {
		role, _ = r.(string)
	}
	return orders.Principal{UserID: userID.(uint), Role: role}, true
}

// 將訂單核心的錯誤分類對應至HTTP狀態碼
func respondOrderError(c *gin.Context, err error) {
	var orderErr *orders.Error
	if errors.As(err, &orderErr) {
		status := http.StatusInternalServerError
		switch orderErr.Kind {
		case orders.KindNotFound:
			status = http.StatusNotFound
		case orders.KindInvalidState, orders.KindInvalidInput:
			status = http.StatusBadRequest
		case orders.KindForbidden:
			status = http.StatusForbidden
		}
		c.JSON(status, gin.H{
			"message": orderErr.Reason,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"message": "訂單操作失敗",
		"error":   err.Error(),
	})
}

func orderItemsData(orderItems []models.OrderItem) []gin.H {
	var itemsData []gin.H
	for _, item := range orderItems {
		itemData := gin.H{
			"ID":                item.ID,
			"Quantity":          item.Quantity,
			"Price":             item.Price,
			"FulfillmentStatus": item.FulfillmentStatus,
		}
		if item.ProductID != nil {
			itemData["ProductID"] = *item.ProductID
		}
		if item.VendorID != nil {
			itemData["VendorID"] = *item.VendorID
		}
		if item.Product != nil {
			itemData["Name"] = item.Product.Name
		}
		itemsData = append(itemsData, itemData)
	}
	return itemsData
}

// 送出訂單並清空購物車
func PlaceOrderHandler(c *gin.Context, db *gorm.DB) {
	principal, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	order, err := orders.PlaceOrder(db, principal)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":        "成功送出訂單",
		"OrderID":        order.ID,
		"Total":          order.Total,
		"Status":         order.Status,
		"PaymentStatus":  order.PaymentStatus,
		"orderItemsData": orderItemsData(order.OrderItems),
	})
}

// 查詢訂單列表
func GetOrderListHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	var userOrders []models.Order
	err := db.Where("user_id = ?", userID).Find(&userOrders).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢訂單列表失敗",
			"error":   err.Error(),
		})
		return
	}

	var orderList []gin.H
	for _, order := range userOrders {
		orderList = append(orderList, gin.H{
			"OrderID":       order.ID,
			"OrderTime":     order.CreatedAt,
			"Total":         order.Total,
			"Status":        order.Status,
			"PaymentStatus": order.PaymentStatus,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "成功查詢訂單列表",
		"orderList": orderList,
	})
}

// 查詢訂單詳細資訊
func GetOrderDataHandler(c *gin.Context, db *gorm.DB) {
	orderID := c.Param("orderID")
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	var order models.Order
	err := db.
		Where("id = ? AND user_id = ?", orderID, userID).
		Preload("OrderItems").
		Preload("OrderItems.Product").
		First(&order).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "找不到此訂單",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢訂單失敗",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "成功查詢訂單",
		"OrderID":        order.ID,
		"OrderTime":      order.CreatedAt,
		"Total":          order.Total,
		"Status":         order.Status,
		"PaymentStatus":  order.PaymentStatus,
		"IsCancelled":    order.IsCancelled,
		"IsReturned":     order.IsReturned,
		"CancelReason":   order.CancelReason,
		"ReturnReason":   order.ReturnReason,
		"orderItemsData": orderItemsData(order.OrderItems),
	})
}

func parseOrderID(c *gin.Context) (uint, bool) {
	orderID, err := strconv.ParseUint(c.Param("orderID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "訂單ID輸入錯誤",
			"error":   err.Error(),
		})
		return 0, false
	}
	return uint(orderID), true
}

// 結帳，已付款的訂單直接回傳成功且不重寄通知
func CheckoutOrderHandler(c *gin.Context, db *gorm.DB, mailer notification.Mailer) {
	principal, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	order, alreadyPaid, err := orders.CheckoutOrder(db, mailer, principal, orderID)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	if alreadyPaid {
		c.JSON(http.StatusOK, gin.H{
			"message": "訂單已付款",
			"OrderID": order.ID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "付款成功，已通知買家與廠商",
		"OrderID":       order.ID,
		"PaymentStatus": order.PaymentStatus,
	})
}

// 取消訂單
func CancelOrderHandler(c *gin.Context, db *gorm.DB) {
	principal, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	var cancelReq struct {
		Reason string `json:"reason"`
	}
	//reason可省略
	_ = c.ShouldBindJSON(&cancelReq)

	order, err := orders.CancelOrder(db, principal, orderID, cancelReq.Reason)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "成功取消訂單",
		"OrderID": order.ID,
		"Status":  order.Status,
	})
}

// 退貨申請
func ReturnOrderHandler(c *gin.Context, db *gorm.DB) {
	principal, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	var returnReq struct {
		Reason string `json:"reason"`
	}
	//reason可省略
	_ = c.ShouldBindJSON(&returnReq)

	order, err := orders.ReturnOrder(db, principal, orderID, returnReq.Reason)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "退貨申請成功",
		"OrderID": order.ID,
		"Status":  order.Status,
	})
}
