package orders_test

import (
	"fmt"
	"fusionmart/models"
	"fusionmart/orders"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeMailer 記錄寄出的通知信，實際不寄送
type fakeMailer struct {
	sent []sentMail
}

type sentMail struct {
	To      string
	Subject string
}

func (m *fakeMailer) Send(to string, subject string, body string) error {
	m.sent = append(m.sent, sentMail{To: to, Subject: subject})
	return nil
}

func (m *fakeMailer) Close() error {
	return nil
}

// newTestDB 使用SQLite記憶體資料庫。SQLite會序列化寫入，
// FOR UPDATE鎖定只在MySQL上生效，並行搶鎖的情境不在這裡驗證
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
	)
	require.NoError(t, err)

	return db
}

func createUser(t *testing.T, db *gorm.DB, username string, role string) *models.User {
	t.Helper()

	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		Name:     username,
		Role:     role,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createProduct(t *testing.T, db *gorm.DB, vendor *models.User, name string, price string) *models.Product {
	t.Helper()

	product := models.Product{
		VendorID:  vendor.ID,
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Available: true,
	}
	require.NoError(t, db.Create(&product).Error)
	return &product
}

func addToCart(t *testing.T, db *gorm.DB, user *models.User, product *models.Product, quantity uint) {
	t.Helper()

	require.NoError(t, db.Create(&models.CartItem{
		UserID:    user.ID,
		ProductID: product.ID,
		Quantity:  quantity,
	}).Error)
}

func requireOrderError(t *testing.T, err error, kind orders.Kind) {
	t.Helper()

	require.Error(t, err)
	orderErr, ok := err.(*orders.Error)
	require.True(t, ok, "expected *orders.Error, got %T", err)
	assert.Equal(t, kind, orderErr.Kind)
	assert.NotEmpty(t, orderErr.Reason)
}

func TestPlaceOrderComputesTotalAndClearsCart(t *testing.T) {
	db := newTestDB(t)
	vendor := createUser(t, db, "vendor_one", models.RoleVendor)
	buyer := createUser(t, db, "buyer_one", models.RoleUser)
	p1 := createProduct(t, db, vendor, "Keyboard", "10.00")
	p2 := createProduct(t, db, vendor, "Mouse", "5.00")
	addToCart(t, db, buyer, p1, 2)
	addToCart(t, db, buyer, p2, 1)

	order, err := orders.PlaceOrder(db, orders.Principal{UserID: buyer.ID, Role: models.RoleUser})
	require.NoError(t, err)

	assert.True(t, order.Total.Equal(decimal.RequireFromString("25.00")),
		"total = %s", order.Total)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	require.Len(t, order.OrderItems, 2)

	for _, item := range order.OrderItems {
		require.NotNil(t, item.VendorID)
		assert.Equal(t, vendor.ID, *item.VendorID)
		assert.Equal(t, models.FulfillmentStatusPending, item.FulfillmentStatus)
	}

	//購物車必須清空
	var cartCount int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", buyer.ID).Count(&cartCount).Error)
	assert.Equal(t, int64(0), cartCount)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	db := newTestDB(t)
	buyer := createUser(t, db, "buyer_two", models.RoleUser)

	_, err := orders.PlaceOrder(db, orders.Principal{UserID: buyer.ID, Role: models.RoleUser})
	requireOrderError(t, err, orders.KindInvalidState)

	//不能留下任何訂單
	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Equal(t, int64(0), orderCount)
}

func TestPlaceOrderSnapshotsPrice(t *testing.T) {
	db := newTestDB(t)
	vendor := createUser(t, db, "vendor_two", models.RoleVendor)
	buyer := createUser(t, db, "buyer_three", models.RoleUser)
	product := createProduct(t, db, vendor, "Monitor", "100.00")
	addToCart(t, db, buyer, product, 1)

	order, err := orders.PlaceOrder(db, orders.Principal{UserID: buyer.ID, Role: models.RoleUser})
	require.NoError(t, err)

	//下單後改價，不影響已成立的訂單
	require.NoError(t, db.Model(product).Update("price", decimal.RequireFromString("999.99")).Error)

	var item models.OrderItem
	require.NoError(t, db.First(&item, "order_id = ?", order.ID).Error)
	assert.True(t, item.Price.Equal(decimal.RequireFromString("100.00")), "price = %s", item.Price)

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, "id = ?", order.ID).Error)
	assert.True(t, reloaded.Total.Equal(decimal.RequireFromString("100.00")), "total = %s", reloaded.Total)
}

func TestPlaceOrderRollsBackWhenProductDeleted(t *testing.T) {
	db := newTestDB(t)
	vendor := createUser(t, db, "vendor_kkk", models.RoleVendor)
	buyer := createUser(t, db, "buyer_thirteen", models.RoleUser)
	p1 := createProduct(t, db, vendor, "Tablet", "200.00")
	p2 := createProduct(t, db, vendor, "Stylus", "25.00")
	addToCart(t, db, buyer, p1, 1)
	addToCart(t, db, buyer, p2, 1)

	//下單前商品被刪除，整筆訂單必須回滾
	require.NoError(t, db.Delete(p2).Error)

	_, err := orders.PlaceOrder(db, orders.Principal{UserID: buyer.ID, Role: models.RoleUser})
	requireOrderError(t, err, orders.KindInvalidState)

	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Equal(t, int64(0), orderCount)

	//購物車必須原封不動，包含已刪除商品的那一列
	var cartCount int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", buyer.ID).Count(&cartCount).Error)
	assert.Equal(t, int64(2), cartCount)
}

func TestCheckoutNotifiesBuyerAndDistinctVendors(t *testing.T) {
	db := newTestDB(t)
	vendorA := createUser(t, db, "vendor_aaa", models.RoleVendor)
	vendorB := createUser(t, db, "vendor_bbb", models.RoleVendor)
	buyer := createUser(t, db, "buyer_four", models.RoleUser)
	p1 := createProduct(t, db, vendorA, "Desk", "50.00")
	p2 := createProduct(t, db, vendorA, "Chair", "30.00")
	p3 := createProduct(t, db, vendorB, "Lamp", "20.00")
	addToCart(t, db, buyer, p1, 1)
	addToCart(t, db, buyer, p2, 1)
	addToCart(t, db, buyer, p3, 1)

	principal := orders.Principal{UserID: buyer.ID, Role: models.RoleUser}
	order, err := orders.PlaceOrder(db, principal)
	require.NoError(t, err)

	mailer := &fakeMailer{}
	paid, alreadyPaid, err := orders.CheckoutOrder(db, mailer, principal, order.ID)
	require.NoError(t, err)
	assert.False(t, alreadyPaid)
	assert.Equal(t, models.PaymentStatusPaid, paid.PaymentStatus)

	//買家一封，vendorA的兩個商品合併為一封，vendorB一封
	require.Len(t, mailer.sent, 3)
	recipients := make(map[string]int)
	for _, mail := range mailer.sent {
		recipients[mail.To]++
	}
	assert.Equal(t, 1, recipients[buyer.Email])
	assert.Equal(t, 1, recipients[vendorA.Email])
	assert.Equal(t, 1, recipients[vendorB.Email])
}

func TestCheckoutIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	vendor := createUser(t, db, "vendor_ccc", models.RoleVendor)
	buyer := createUser(t, db, "buyer_five", models.RoleUser)
	product := createProduct(t, db, vendor, "Webcam", "15.00")
	addToCart(t, db, buyer, product, 1)

	principal := orders.Principal{UserID: buyer.ID, Role: models.RoleUser}
	order, err := orders.PlaceOrder(db, principal)
	require.NoError(t, err)

	mailer := &fakeMailer{}
	_, alreadyPaid, err := orders.CheckoutOrder(db, mailer, principal, order.ID)
	require.NoError(t, err)
	assert.False(t, alreadyPaid)
	firstMailCount := len(mailer.sent)

	//第二次結帳視為成功，但不重寄通知
	paid, alreadyPaid, err := orders.CheckoutOrder(db, mailer, principal, order.ID)
	require.NoError(t, err)
	assert.True(t, alreadyPaid)
	assert.Equal(t, models.PaymentStatusPaid, paid.PaymentStatus)
	assert.Len(t, mailer.sent, firstMailCount)
}

func TestCheckoutRejectsNonOwner(t *testing.T) {
	db := newTestDB(t)
	vendor := createUser(t, db, "vendor_ddd", models.RoleVendor)
	buyer := createUser(t, db, "buyer_six", models.RoleUser)
	other := createUser(t, db, "buyer_other", models.RoleUser)
	product := createProduct(t, db, vendor, "Cable", "3.00")
	addToCart(t, db, buyer, product, 1)

	order, err := orders.PlaceOrder(db, orders.Principal{UserID: buyer.ID, Role: models.RoleUser})
	require.NoError(t, err)

	mailer := &fakeMailer{}
	_, _, err = orders.CheckoutOrder(db, mailer, orders.Principal{UserID: other.ID, Role: models.RoleUser}, order.ID)
	requireOrderError(t, err, orders.KindNotFound)
	assert.Empty(t, mailer.sent)
}

func TestCancelOrder(t *testing.T) {
	db := newTestDB(t)
	vendor := createUser(t, db, "vendor_eee", models.RoleVendor)
	buyer := createUser(t, db, "buyer_seven", models.RoleUser)
	product := createProduct(t, db, vendor, "Headset", "40.00")
	addToCart(t, db, buyer, product, 1)

	principal := orders.Principal{UserID: buyer.ID, Role: models.RoleUser}
	order, err := orders.PlaceOrder(db, principal)
	require.NoError(t, err)

	cancelled, err := orders.CancelOrder(db, principal, order.ID, "changed mind")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.True(t, cancelled.IsCancelled)
	assert.Equal(t, "changed mind", cancelled.CancelReason)

	//第二次取消必須失敗
	_, err = orders.CancelOrder(db, principal, order.ID, "again")
	requireOrderError(t, err, orders.KindInvalidState)
}

func TestCancelOrderRejectsDelivered(t *testing.T) {
	db := newTestDB(t)
	vendor := createUser(t, db, "vendor_fff", models.RoleVendor)
	buyer := createUser(t, db, "buyer_eight", models.RoleUser)
	product := createProduct(t, db, vendor, "Speaker", "60.00")
	addToCart(t, db, buyer, product, 1)

	principal := orders.Principal{UserID: buyer.ID, Role: models.RoleUser}
	order, err := orders.PlaceOrder(db, principal)
	require.NoError(t, err)

	require.NoError(t, db.Model(order).Update("status", models.OrderStatusDelivered).Error)

	//已送達的訂單必須走退貨流程
	_, err = orders.CancelOrder(db, principal, order.ID, "too late")
	requireOrderError(t, err, orders.KindInvalidState)
}

func TestReturnOrder(t *testing.T) {
	db := newTestDB(t)
	vendor := createUser(t, db, "vendor_ggg", models.RoleVendor)
	buyer := createUser(t, db, "buyer_nine", models.RoleUser)
	product := createProduct(t, db, vendor, "Printer", "120.00")
	addToCart(t, db, buyer, product, 1)

	principal := orders.Principal{UserID: buyer.ID, Role: models.RoleUser}
	order, err := orders.PlaceOrder(db, principal)
	require.NoError(t, err)

	//尚未送達不能退貨
	require.NoError(t, db.Model(order).Update("status", models.OrderStatusShipped).Error)
	_, err = orders.ReturnOrder(db, principal, order.ID, "defective")
	requireOrderError(t, err, orders.KindInvalidState)

	require.NoError(t, db.Model(order).Update("status", models.OrderStatusDelivered).Error)
	returned, err := orders.ReturnOrder(db, principal, order.ID, "defective")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusReturned, returned.Status)
	assert.True(t, returned.IsReturned)
	assert.Equal(t, "defective", returned.ReturnReason)

	//第二次退貨必須失敗
	_, err = orders.ReturnOrder(db, principal, order.ID, "again")
	requireOrderError(t, err, orders.KindInvalidState)
}

func TestUpdateFulfillment(t *testing.T) {
	db := newTestDB(t)
	vendorA := createUser(t, db, "vendor_hhh", models.RoleVendor)
	vendorB := createUser(t, db, "vendor_iii", models.RoleVendor)
	buyer := createUser(t, db, "buyer_ten", models.RoleUser)
	product := createProduct(t, db, vendorA, "Router", "80.00")
	addToCart(t, db, buyer, product, 1)

	order, err := orders.PlaceOrder(db, orders.Principal{UserID: buyer.ID, Role: models.RoleUser})
	require.NoError(t, err)
	require.Len(t, order.OrderItems, 1)
	itemID := order.OrderItems[0].ID

	//項目的廠商可以更新出貨狀態
	item, err := orders.UpdateFulfillment(db,
		orders.Principal{UserID: vendorA.ID, Role: models.RoleVendor},
		itemID, models.FulfillmentStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, models.FulfillmentStatusShipped, item.FulfillmentStatus)

	//訂單本身的狀態不會由項目狀態推導
	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, "id = ?", order.ID).Error)
	assert.Equal(t, models.OrderStatusPending, reloaded.Status)

	//不合法的出貨狀態
	_, err = orders.UpdateFulfillment(db,
		orders.Principal{UserID: vendorA.ID, Role: models.RoleVendor},
		itemID, "teleported")
	requireOrderError(t, err, orders.KindInvalidInput)

	//不是此項目的廠商
	_, err = orders.UpdateFulfillment(db,
		orders.Principal{UserID: vendorB.ID, Role: models.RoleVendor},
		itemID, models.FulfillmentStatusDelivered)
	requireOrderError(t, err, orders.KindNotFound)

	//不是廠商角色
	_, err = orders.UpdateFulfillment(db,
		orders.Principal{UserID: buyer.ID, Role: models.RoleUser},
		itemID, models.FulfillmentStatusDelivered)
	requireOrderError(t, err, orders.KindForbidden)
}

func TestUserHasPurchasedProduct(t *testing.T) {
	db := newTestDB(t)
	vendor := createUser(t, db, "vendor_jjj", models.RoleVendor)
	buyer := createUser(t, db, "buyer_eleven", models.RoleUser)
	other := createUser(t, db, "buyer_twelve", models.RoleUser)
	product := createProduct(t, db, vendor, "SSD", "70.00")
	addToCart(t, db, buyer, product, 1)

	purchased, err := orders.UserHasPurchasedProduct(db, buyer.ID, product.ID)
	require.NoError(t, err)
	assert.False(t, purchased)

	_, err = orders.PlaceOrder(db, orders.Principal{UserID: buyer.ID, Role: models.RoleUser})
	require.NoError(t, err)

	purchased, err = orders.UserHasPurchasedProduct(db, buyer.ID, product.ID)
	require.NoError(t, err)
	assert.True(t, purchased)

	//沒買過的使用者不算
	purchased, err = orders.UserHasPurchasedProduct(db, other.ID, product.ID)
	require.NoError(t, err)
	assert.False(t, purchased)
}
