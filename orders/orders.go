package orders

import (
	"errors"
	"fmt"
	"fusionmart/models"
	"fusionmart/notification"
	"log"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Principal 已通過身分驗證的呼叫者，由middleware從JWT取出後傳入每個核心操作
type Principal struct {
	UserID uint
	Role   string
}

// SQLite不支援FOR UPDATE，寫入本身已序列化
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// PlaceOrder 將購物車轉換為訂單:鎖定購物車列、以當下價格快照每個商品與其廠商、
// 建立訂單與訂單項目並清空購物車，全部在同一個事務內完成
func PlaceOrder(db *gorm.DB, principal Principal) (*models.Order, error) {
	var order *models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		var cartItems []models.CartItem
		err := lockForUpdate(tx).
			Where("user_id = ?", principal.UserID).
			Find(&cartItems).
			Error
		if err != nil {
			return err
		}
		if len(cartItems) == 0 {
			return invalidState("購物車是空的")
		}

		total := decimal.Zero
		orderItems := make([]models.OrderItem, 0, len(cartItems))
		for _, cartItem := range cartItems {
			var product models.Product
			err := lockForUpdate(tx).
				First(&product, "id = ?", cartItem.ProductID).
				Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					//商品在讀取與下單之間被刪除，整筆訂單回滾
					return invalidState("購物車內含已不存在的商品")
				}
				return err
			}

			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(cartItem.Quantity))))

			productID := product.ID
			vendorID := product.VendorID
			orderItems = append(orderItems, models.OrderItem{
				ProductID:         &productID,
				VendorID:          &vendorID,
				Quantity:          cartItem.Quantity,
				Price:             product.Price,
				FulfillmentStatus: models.FulfillmentStatusPending,
			})
		}

		newOrder := models.Order{
			UserID:        principal.UserID,
			OrderItems:    orderItems,
			Total:         total,
			Status:        models.OrderStatusPending,
			PaymentStatus: models.PaymentStatusPending,
		}
		if err := tx.Create(&newOrder).Error; err != nil {
			return err
		}

		err = tx.
			Where("user_id = ?", principal.UserID).
			Delete(&models.CartItem{}).
			Error
		if err != nil {
			return err
		}

		order = &newOrder
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// CheckoutOrder 將付款狀態轉為paid。已付款的訂單視為成功且不重寄通知。
// 通知在事務提交後寄出，寄送失敗只記錄不回滾付款狀態
func CheckoutOrder(db *gorm.DB, mailer notification.Mailer, principal Principal, orderID uint) (*models.Order, bool, error) {
	var order models.Order
	alreadyPaid := false
	err := db.Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).
			First(&order, "id = ? AND user_id = ?", orderID, principal.UserID).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("找不到此訂單")
			}
			return err
		}

		if order.PaymentStatus == models.PaymentStatusPaid {
			alreadyPaid = true
			return nil
		}

		//實際金流整合在此之外，這裡僅模擬付款成功
		order.PaymentStatus = models.PaymentStatusPaid
		return tx.Model(&order).Update("payment_status", models.PaymentStatusPaid).Error
	})
	if err != nil {
		return nil, false, err
	}
	if alreadyPaid {
		return &order, true, nil
	}

	sendCheckoutMails(db, mailer, order.ID)
	return &order, false, nil
}

// 付款成功後通知買家，並依廠商分組通知每個廠商一次
func sendCheckoutMails(db *gorm.DB, mailer notification.Mailer, orderID uint) {
	var order models.Order
	err := db.
		Preload("User").
		Preload("OrderItems").
		Preload("OrderItems.Product").
		Preload("OrderItems.Vendor").
		First(&order, "id = ?", orderID).
		Error
	if err != nil {
		log.Printf("讀取訂單 %d 寄送通知失敗: %v", orderID, err)
		return
	}

	subject := "Your FusionMart Order Payment Successful!"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour order #%d payment was received successfully. We will notify you when your order ships!",
		order.User.Name, order.ID,
	)
	if err := mailer.Send(order.User.Email, subject, body); err != nil {
		log.Printf("寄送買家付款通知失敗: %v", err)
	}

	type vendorGroup struct {
		vendor       *models.User
		productNames []string
	}
	groups := make(map[uint]*vendorGroup)
	for i := range order.OrderItems {
		item := &order.OrderItems[i]
		if item.Vendor == nil {
			continue
		}
		name := "(商品已下架)"
		if item.Product != nil {
			name = item.Product.Name
		}
		group, ok := groups[item.Vendor.ID]
		if !ok {
			group = &vendorGroup{vendor: item.Vendor}
			groups[item.Vendor.ID] = group
		}
		group.productNames = append(group.productNames, name)
	}

	vendorIDs := make([]uint, 0, len(groups))
	for vendorID := range groups {
		vendorIDs = append(vendorIDs, vendorID)
	}
	sort.Slice(vendorIDs, func(i, j int) bool { return vendorIDs[i] < vendorIDs[j] })

	for _, vendorID := range vendorIDs {
		group := groups[vendorID]
		vendorSubject := "Order Placed for Your Product on FusionMart"
		vendorBody := fmt.Sprintf(
			"Hello %s,\n\nA user has paid for order #%d including your products: %s. Please process this order.",
			group.vendor.Name, order.ID, strings.Join(group.productNames, ", "),
		)
		if err := mailer.Send(group.vendor.Email, vendorSubject, vendorBody); err != nil {
			log.Printf("寄送廠商 %d 出貨通知失敗: %v", vendorID, err)
		}
	}
}

// CancelOrder 取消訂單。已送達的訂單必須走退貨流程，已取消的訂單不能再取消
func CancelOrder(db *gorm.DB, principal Principal, orderID uint, reason string) (*models.Order, error) {
	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).
			First(&order, "id = ? AND user_id = ?", orderID, principal.UserID).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("找不到此訂單")
			}
			return err
		}

		if order.Status == models.OrderStatusDelivered {
			return invalidState("訂單已送達，請改用退貨申請")
		}
		if order.IsCancelled {
			return invalidState("訂單已取消")
		}

		order.IsCancelled = true
		order.CancelReason = reason
		order.Status = models.OrderStatusCancelled
		return tx.Model(&order).Updates(map[string]interface{}{
			"is_cancelled":  true,
			"cancel_reason": reason,
			"status":        models.OrderStatusCancelled,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// ReturnOrder 退貨申請。只有已送達且尚未退貨的訂單可以退貨
func ReturnOrder(db *gorm.DB, principal Principal, orderID uint, reason string) (*models.Order, error) {
	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).
			First(&order, "id = ? AND user_id = ?", orderID, principal.UserID).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("找不到此訂單")
			}
			return err
		}

		if order.Status != models.OrderStatusDelivered {
			return invalidState("訂單尚未送達，無法退貨")
		}
		if order.IsReturned {
			return invalidState("訂單已退貨")
		}

		order.IsReturned = true
		order.ReturnReason = reason
		order.Status = models.OrderStatusReturned
		return tx.Model(&order).Updates(map[string]interface{}{
			"is_returned":   true,
			"return_reason": reason,
			"status":        models.OrderStatusReturned,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// UpdateFulfillment 廠商更新自己項目的出貨狀態。
// 各項目獨立更新，訂單本身的Status不會由項目狀態推導
func UpdateFulfillment(db *gorm.DB, principal Principal, orderItemID uint, status string) (*models.OrderItem, error) {
	if principal.Role != models.RoleVendor {
		return nil, forbidden("只有廠商可以更新出貨狀態")
	}
	if !models.ValidFulfillmentStatus(status) {
		return nil, invalidInput("無效的出貨狀態")
	}

	var orderItem models.OrderItem
	err := db.Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).
			First(&orderItem, "id = ? AND vendor_id = ?", orderItemID, principal.UserID).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				//不屬於此廠商的項目與不存在的項目回應相同，避免洩漏資料
				return notFound("找不到此訂單項目")
			}
			return err
		}

		orderItem.FulfillmentStatus = status
		return tx.Model(&orderItem).Update("fulfillment_status", status).Error
	})
	if err != nil {
		return nil, err
	}

	return &orderItem, nil
}

// UserHasPurchasedProduct 檢查使用者是否購買過此商品，評價功能以此作為門檻
func UserHasPurchasedProduct(db *gorm.DB, userID uint, productID uint) (bool, error) {
	var count int64
	err := db.
		Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND order_items.product_id = ?", userID, productID).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
