package main

import (
	"os"
	"time"

	"app/internal/cart"
	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/shipping"
	"app/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

func main() {
	//.envは無ければ環境変数だけで動かす
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	//ログ設定（devは読みやすいコンソール出力）
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.GoEnv == "dev" {
		zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	log := zlog.Logger

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	if err := gormDB.AutoMigrate(
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
	); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	//カートスナップショットの置き場
	cartStorage := infraRepo.NewCartStorageGorm(gormDB)
	if err := cartStorage.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("cart storage migrate failed")
	}

	//送料表（SHIPPING_RATESがあれば差し替え）
	table, err := shipping.ParseTable(cfg.ShippingRates)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid shipping rates")
	}

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	tx := infraRepo.NewTxManagerGorm(gormDB)

	//セッションごとのカート置き場
	carts := cart.NewRegistry(cartStorage, log)

	//Usecase生成
	productUC := usecase.NewProductUsecase(productRepo)
	cartUC := usecase.NewCartUsecase(carts, productRepo)
	checkoutUC := usecase.NewCheckoutUsecase(carts, tx, table)
	orderUC := usecase.NewOrderUsecase(orderRepo, orderItemRepo)

	//Handler生成
	productH := handler.NewProductHandler(productUC)
	cartH := handler.NewCartHandler(cartUC)
	checkoutH := handler.NewCheckoutHandler(checkoutUC)
	orderH := handler.NewOrderHandler(orderUC)

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	e := server.New(cfg, log, productH, cartH, checkoutH, orderH)
	log.Info().Str("addr", addr).Msg("starting api server")
	if err := server.Start(addr, e); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
