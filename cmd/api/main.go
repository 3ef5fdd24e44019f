package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"shop/internal/config"
	"shop/internal/domain/model"
	"shop/internal/handler"
	"shop/internal/infra/db"
	infraRepo "shop/internal/infra/repository"
	"shop/internal/logger"
	"shop/internal/notification"
	"shop/internal/server"
	"shop/internal/usecase"
	"shop/internal/validator"
)

func main() {
	//.envはあれば読む（本番は環境変数のみ）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger.Init(cfg.GoEnv)
	defer logger.Sync()
	log := logger.L()

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Address{},
		&model.Product{},
		&model.ProductVariant{},
		&model.Order{},
		&model.OrderItem{},
		&model.Coupon{},
		&model.CouponUsage{},
		&model.InventoryAdjustment{},
		&model.AuditLog{},
	); err != nil {
		log.Fatal("migrate failed", zap.Error(err))
	}

	//注文番号の採番用シーケンス
	seq := fmt.Sprintf("CREATE SEQUENCE IF NOT EXISTS %s START 1000", infraRepo.OrderNumberSequence)
	if err := gormDB.Exec(seq).Error; err != nil {
		log.Fatal("create sequence failed", zap.Error(err))
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	couponRepo := infraRepo.NewCouponGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	mailer := notification.NewLogMailer(log)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg, userRepo, validator.NewAuthValidator(userRepo))
	productUC := usecase.NewProductUsecase(productRepo, txm, auditRepo)
	cartUC := usecase.NewCartUsecase(txm)
	checkoutUC := usecase.NewCheckoutUsecase(txm, orderRepo, userRepo, mailer, log)
	orderUC := usecase.NewOrderUsecase(txm, orderRepo, orderItemRepo)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, orderRepo, auditRepo)
	couponUC := usecase.NewCouponUsecase(couponRepo, auditRepo)
	addressUC := usecase.NewAddressUsecase(addressRepo)

	//Handler生成
	h := server.Handlers{
		Auth:         handler.NewAuthHandler(authUC),
		Product:      handler.NewProductHandler(productUC),
		Cart:         handler.NewCartHandler(cartUC, checkoutUC),
		Order:        handler.NewOrderHandler(orderUC),
		Address:      handler.NewAddressHandler(addressUC),
		Coupon:       handler.NewCouponHandler(couponUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		AdminProduct: handler.NewAdminProductHandler(productUC, cfg),
	}

	log.Info("starting server", zap.String("port", cfg.Port), zap.String("env", cfg.GoEnv))
	if err := server.Start(cfg, log, h); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
