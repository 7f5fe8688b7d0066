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

	"github.com/redis/go-redis/v9"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/events"
	httpapi "github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/media"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/sequence"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/shipping"
)

// publisher covers every event the storefront emits.
type publisher interface {
	catalog.EventPublisher
	order.EventPublisher
	checkout.EventPublisher
}

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "[storefront-service] ", log.LstdFlags|log.Lmicroseconds)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.AdminJWTSecret == "" {
		logger.Printf("warning: ADMIN_JWT_SECRET is empty, admin routes will reject every request")
	}

	// --- DB ---
	if cfg.RunMigrations {
		if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
			logger.Fatalf("db migrate: %v", err)
		}
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatalf("redis connect: %v", err)
	}

	// --- Object storage ---
	uploader, err := media.NewS3Uploader(ctx, media.Options{
		Bucket:        cfg.S3Bucket,
		Region:        cfg.S3Region,
		Endpoint:      cfg.S3Endpoint,
		PublicBaseURL: cfg.S3PublicBaseURL,
		AccessKeyID:   cfg.S3AccessKeyID,
		SecretKey:     cfg.S3SecretKey,
		Timeout:       cfg.UploadTimeout,
	})
	if err != nil {
		logger.Fatalf("s3 uploader: %v", err)
	}

	// --- AMQP ---
	var pub publisher = events.NoopPublisher{Logger: logger}
	if cfg.PublishEvents {
		conn, err := events.Dial(cfg.RabbitURL)
		if err != nil {
			logger.Fatalf("%v", err)
		}
		defer conn.Close()

		p, err := events.NewPublisher(conn, sequence.NewCounter(pool), events.PublisherOptions{})
		if err != nil {
			logger.Fatalf("events publisher: %v", err)
		}
		defer p.Close()
		pub = p
	}

	// --- Services ---
	catalogSvc := catalog.NewService(catalog.NewPostgresRepository(pool), uploader, pub, logger)
	orderRepo := order.NewPostgresRepository(pool)
	shippingSvc := shipping.NewService(shipping.NewPostgresRepository(pool))
	cartSvc := cart.NewService(cart.NewRedisStore(rdb, cfg.CartTTL, logger), catalogSvc, logger)

	h := httpapi.NewHandler(httpapi.Deps{
		Logger:            logger,
		Catalog:           catalogSvc,
		Cart:              cartSvc,
		Checkout:          checkout.NewService(cartSvc, shippingSvc, orderRepo, pub, logger),
		Orders:            order.NewService(orderRepo, pub, logger),
		Shipping:          shippingSvc,
		ShopName:          cfg.ShopName,
		LowStockThreshold: cfg.LowStockThreshold,
		UploadTimeout:     cfg.UploadTimeout,
	})
	r := httpapi.NewRouter(h, httpapi.RouterOptions{
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		AdminJWTSecret:   cfg.AdminJWTSecret,
	})

	// --- HTTP ---
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Printf("http listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Printf("shutdown signal: %s", sig)
	case err := <-errCh:
		logger.Printf("fatal error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = httpServer.Shutdown(shutdownCtx)
	cancel()

	logger.Printf("shutdown complete")
}
