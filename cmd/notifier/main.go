package main

import (
	"context"
	"github.com/ariefcatur/go-restaurant-orders/internal/config"
	kafkax "github.com/ariefcatur/go-restaurant-orders/internal/kafka"
	"github.com/ariefcatur/go-restaurant-orders/internal/kitchen"
	"github.com/ariefcatur/go-restaurant-orders/internal/logging"
	"github.com/ariefcatur/go-restaurant-orders/internal/redisx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"log"
	"os/signal"
	"syscall"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	service := cfg.ServiceName + "-kitchen"
	logger, err := logging.New(service, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	if len(cfg.KafkaBrokers) == 0 {
		logger.Fatal("KAFKA_BROKERS is required for the notifier")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis untuk dedup event; tanpa redis setiap event dianggap baru
	var dedup kitchen.Deduper = redisx.Nop{}
	if cfg.RedisAddr != "" {
		rc := redisx.NewCache(redisx.New(cfg.RedisAddr))
		defer rc.Close()
		dedup = rc
	}

	n := &kitchen.Notifier{Dedup: dedup, Log: logger, ServiceName: service}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.NotifierGroup, cfg.KafkaTopic, cfg.NotifierWorkers, logger)

	logger.Info("kitchen notifier started",
		zap.String("group", cfg.NotifierGroup),
		zap.String("topic", cfg.KafkaTopic),
		zap.Int("workers", cfg.NotifierWorkers))
	if err := cons.Start(ctx, n.HandleOrderEvent); err != nil {
		logger.Error("consumer exit", zap.Error(err))
	}
	logger.Info("kitchen notifier stopped")
}
