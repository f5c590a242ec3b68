package main

import (
	"fusionmart/config"
	"fusionmart/routers"
)

func main() {
	db, err := config.SetupMySQLConnection()
	if err != nil {
		panic("無法連接到資料庫")
	}
	defer func() {
		dbInstance, _ := db.DB()
		_ = dbInstance.Close()
	}()

	rdb, err := config.SetupRedisConnection()
	if err != nil {
		panic("無法連接到Redis")
	}
	defer rdb.Close()

	mailer, err := config.SetupMailer()
	if err != nil {
		panic("無法建立通知服務")
	}
	defer mailer.Close()

	router := routers.SetupRouters(db, rdb, mailer)
	router.Run(":3000")
}
