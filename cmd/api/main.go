package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopbuilder/internal/config"
	"shopbuilder/internal/db"
	"shopbuilder/internal/httpserver"
	cartrepo "shopbuilder/internal/repository/cart"
	merchantrepo "shopbuilder/internal/repository/merchant"
	orderrepo "shopbuilder/internal/repository/order"
	productrepo "shopbuilder/internal/repository/product"
	settingsrepo "shopbuilder/internal/repository/settings"
	shoprepo "shopbuilder/internal/repository/shop"
	tokenrepo "shopbuilder/internal/repository/token"
	cartsvc "shopbuilder/internal/service/cart"
	checkoutsvc "shopbuilder/internal/service/checkout"
	merchantsvc "shopbuilder/internal/service/merchant"
	ordersvc "shopbuilder/internal/service/order"
	productsvc "shopbuilder/internal/service/product"
	settingssvc "shopbuilder/internal/service/settings"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	// Session carts live in redis when configured, in process memory
	// otherwise.
	var cartRepo cartrepo.Repository
	if cfg.RedisAddr != "" {
		redisClient, err := db.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Fatalf("connect to redis: %v", err)
		}
		defer redisClient.Close()
		cartRepo = cartrepo.NewRedis(redisClient, 24*time.Hour)
		logger.Printf("using redis cart store at %s", cfg.RedisAddr)
	} else {
		cartRepo = cartrepo.NewMemory()
		logger.Printf("using in-memory cart store")
	}

	shopRepo := shoprepo.NewPostgres(dbpool)
	merchantRepo := merchantrepo.NewPostgres(dbpool, logger)
	tokenRepo := tokenrepo.NewPostgres(dbpool)
	productRepo := productrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	settingsRepo := settingsrepo.NewPostgres(dbpool)

	cartService := cartsvc.New(cartRepo)
	productService := productsvc.New(productRepo)
	orderService := ordersvc.New(orderRepo)
	settingsService := settingssvc.New(settingsRepo, settingssvc.Defaults{
		CODFeeCents:           cfg.CODFeeCents,
		FreeShippingFromCents: cfg.FreeShippingThresholdCents,
	})
	checkoutService := checkoutsvc.New(cartService, orderService, cfg.FreeShippingThresholdCents, logger)
	merchantService := merchantsvc.New(merchantRepo, tokenRepo)

	srv := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		ShopRepo:    shopRepo,
		CartSvc:     cartService,
		CheckoutSvc: checkoutService,
		SettingsSvc: settingsService,
		ProductSvc:  productService,
		OrderSvc:    orderService,
		MerchantSvc: merchantService,
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
