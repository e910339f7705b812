package main

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-restaurant-orders/internal/config"
	"github.com/ariefcatur/go-restaurant-orders/internal/httpx"
	kafkax "github.com/ariefcatur/go-restaurant-orders/internal/kafka"
	"github.com/ariefcatur/go-restaurant-orders/internal/logging"
	"github.com/ariefcatur/go-restaurant-orders/internal/memstore"
	"github.com/ariefcatur/go-restaurant-orders/internal/menu"
	"github.com/ariefcatur/go-restaurant-orders/internal/orders"
	"github.com/ariefcatur/go-restaurant-orders/internal/postgres"
	"github.com/ariefcatur/go-restaurant-orders/internal/promotions"
	"github.com/ariefcatur/go-restaurant-orders/internal/redisx"
	"github.com/ariefcatur/go-restaurant-orders/internal/uploads"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

type cache interface {
	orders.Cache
	Close() error
}

type publisher interface {
	orders.Publisher
	Close()
	WaitClosed()
}

type discardPublisher struct{ kafkax.Discard }

func (discardPublisher) Close()      {}
func (discardPublisher) WaitClosed() {}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Store
	var (
		orderStore orders.Store
		menuStore  menu.Store
		promoStore promotions.Store
	)
	if cfg.PostgresDSN != "" {
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db, logger); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
		orderStore = &orders.Repo{DB: db}
		menuStore = &menu.Repo{DB: db}
		promoStore = &promotions.Repo{DB: db}
	} else {
		logger.Warn("POSTGRES_DSN not set, using in-memory store")
		orderStore = memstore.NewOrders()
		menuStore = memstore.NewMenu()
		promoStore = memstore.NewPromotions()
	}

	// Upload dir disiapkan di awal, bukan saat file pertama masuk
	files, err := uploads.New(cfg.UploadDir, logger)
	if err != nil {
		logger.Fatal("uploads", zap.Error(err))
	}

	// Redis
	var c cache = redisx.Nop{}
	if cfg.RedisAddr != "" {
		rc := redisx.NewCache(redisx.New(cfg.RedisAddr))
		if err := rc.Ping(ctx); err != nil {
			logger.Warn("redis unreachable, cache calls will miss", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		c = rc
	}
	defer c.Close()

	// Kafka producer
	var prod publisher = discardPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		p := kafkax.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, 1024, logger)
		p.Start()
		prod = p
	}

	// Services & handlers
	router := httpx.NewRouter(logger)
	(&httpx.OrdersHandler{
		Service: &orders.Service{Store: orderStore, Files: files, Cache: c, Events: prod, Log: logger, Producer: cfg.ServiceName},
		Log:     logger,
	}).Register(router)
	(&httpx.MenuHandler{
		Service: &menu.Service{Store: menuStore, Files: files, Cache: c, Log: logger},
		Log:     logger,
	}).Register(router)
	(&httpx.PromotionsHandler{
		Service: &promotions.Service{Store: promoStore, Files: files, Cache: c, Log: logger},
		Log:     logger,
	}).Register(router)
	httpx.Mount(router, uploads.URLPrefix, files.Handler())

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr(), Handler: router, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	// graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
	prod.Close()      // tutup inbox -> flush & close writer
	prod.WaitClosed() // drain
}
