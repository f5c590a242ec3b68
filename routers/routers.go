package routers

import (
	"fusionmart/handlers"
	"fusionmart/middleware"
	"fusionmart/notification"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func SetupRouters(db *gorm.DB, rdb *redis.Client, mailer notification.Mailer) *gin.Engine {
	//建立Gin路由器
	router := gin.Default()
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Authorization")
		c.Next()
	})
	err := router.SetTrustedProxies(nil)
	if err != nil {
		return nil
	}

	//設定商品圖片靜態資源路徑
	router.Static("/uploads", "./uploads")

	router.OPTIONS("/*path", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	////無須權限，使用中間件檢查是否登入
	router.Use(middleware.AuthMiddleware(db))
	{
		//查詢商品列表
		router.GET("/api/v1/products", func(context *gin.Context) {
			handlers.GetProductListHandler(context, db, rdb)
		})
		//查詢商品詳細資料
		router.GET("/api/v1/products/:productID", func(context *gin.Context) {
			handlers.GetProductDataHandler(context, db)
		})
		//查詢商品評價列表
		router.GET("/api/v1/products/:productID/reviews", func(context *gin.Context) {
			handlers.GetProductReviewsHandler(context, db)
		})
		//註冊帳號
		router.POST("/api/v1/register", func(context *gin.Context) {
			handlers.RegisterHandler(context, db)
		})
		//登入帳號
		router.POST("/api/v1/login", func(context *gin.Context) {
			handlers.LoginHandler(context, db)
		})

		////需要登入，使用中間件檢查是否登入
		loginRequired := router.Group("/api/v1")
		loginRequired.Use(middleware.CheckLoginMiddleware())
		{
			//查詢使用者資料
			loginRequired.GET("/users/profile", func(context *gin.Context) {
				handlers.GetUserProfileHandler(context, db)
			})
			//修改使用者資料
			loginRequired.PATCH("/users/profile", func(context *gin.Context) {
				handlers.UpdateUserProfileHandler(context, db)
			})
			//登出
			loginRequired.POST("/logout", func(context *gin.Context) {
				handlers.LogOutHandler(context, db)
			})
			//新增商品評價
			loginRequired.POST("/products/:productID/reviews", func(context *gin.Context) {
				handlers.CreateReviewHandler(context, db)
			})
			//修改商品評價
			loginRequired.PATCH("/products/:productID/reviews/:reviewID", func(context *gin.Context) {
				handlers.UpdateReviewHandler(context, db)
			})
			//刪除商品評價
			loginRequired.DELETE("/products/:productID/reviews/:reviewID", func(context *gin.Context) {
				handlers.DeleteReviewHandler(context, db)
			})

			////需要user身分，使用中間件檢查購物者權限
			userRequired := loginRequired.Group("")
			userRequired.Use(middleware.CheckUserPermissionMiddleware())
			{
				//查詢購物車商品
				userRequired.GET("/cart", func(context *gin.Context) {
					handlers.GetCartHandler(context, db)
				})
				//新增商品至購物車
				userRequired.POST("/cart/add", func(context *gin.Context) {
					handlers.AddToCartHandler(context, db)
				})
				//刪除購物車商品
				userRequired.POST("/cart/remove", func(context *gin.Context) {
					handlers.RemoveFromCartHandler(context, db)
				})
				//查詢願望清單
				userRequired.GET("/wishlist", func(context *gin.Context) {
					handlers.GetWishlistHandler(context, db)
				})
				//新增商品至願望清單
				userRequired.POST("/wishlist/add", func(context *gin.Context) {
					handlers.AddToWishlistHandler(context, db)
				})
				//刪除願望清單商品
				userRequired.POST("/wishlist/remove", func(context *gin.Context) {
					handlers.RemoveFromWishlistHandler(context, db)
				})
				//送出訂單並清空購物車
				userRequired.POST("/orders/place", func(context *gin.Context) {
					handlers.PlaceOrderHandler(context, db)
				})
				//查詢訂單列表
				userRequired.GET("/orders", func(context *gin.Context) {
					handlers.GetOrderListHandler(context, db)
				})
				//查詢訂單詳細資訊
				userRequired.GET("/orders/:orderID", func(context *gin.Context) {
					handlers.GetOrderDataHandler(context, db)
				})
				//結帳
				userRequired.POST("/orders/:orderID/checkout", func(context *gin.Context) {
					handlers.CheckoutOrderHandler(context, db, mailer)
				})
				//取消訂單
				userRequired.POST("/orders/:orderID/cancel", func(context *gin.Context) {
					handlers.CancelOrderHandler(context, db)
				})
				//退貨申請
				userRequired.POST("/orders/:orderID/return", func(context *gin.Context) {
					handlers.ReturnOrderHandler(context, db)
				})
			}

			////需要vendor身分，使用中間件檢查廠商權限
			vendorRequired := loginRequired.Group("/vendor")
			vendorRequired.Use(middleware.CheckVendorPermissionMiddleware())
			{
				//查詢廠商商品列表
				vendorRequired.GET("/products", func(context *gin.Context) {
					handlers.GetVendorProductsHandler(context, db)
				})
				//新增商品
				vendorRequired.POST("/products", func(context *gin.Context) {
					handlers.CreateProductHandler(context, db, rdb)
				})
				//查詢廠商商品詳細資料
				vendorRequired.GET("/products/:productID", func(context *gin.Context) {
					handlers.GetVendorProductDataHandler(context, db)
				})
				//修改商品
				vendorRequired.PATCH("/products/:productID", func(context *gin.Context) {
					handlers.UpdateProductHandler(context, db, rdb)
				})
				//刪除商品
				vendorRequired.DELETE("/products/:productID", func(context *gin.Context) {
					handlers.DeleteProductHandler(context, db, rdb)
				})
				//上傳商品圖片
				vendorRequired.POST("/products/:productID/images", func(context *gin.Context) {
					handlers.UploadProductImagesHandler(context, db)
				})
				//查詢廠商訂單項目列表
				vendorRequired.GET("/order-items", func(context *gin.Context) {
					handlers.GetVendorOrderItemsHandler(context, db)
				})
				//更新訂單項目出貨狀態
				vendorRequired.PATCH("/order-items/:orderItemID", func(context *gin.Context) {
					handlers.UpdateOrderItemStatusHandler(context, db)
				})
			}

			////需要admin身分，使用中間件檢查admin權限
			adminRequired := loginRequired.Group("/admin")
			adminRequired.Use(middleware.CheckAdminPermissionMiddleware())
			{
				//查詢使用者列表
				adminRequired.GET("/users", func(context *gin.Context) {
					handlers.GetUserListHandler(context, db)
				})
			}
		}
	}

	return router
}
