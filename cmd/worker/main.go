package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightline/config"
	"github.com/Domenick1991/flightline/internal/kafka"
	"github.com/Domenick1991/flightline/internal/logging"
	"github.com/Domenick1991/flightline/internal/notify"
	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.NotificationsTopic == "" {
		logger.Fatal("worker needs kafka.brokers and kafka.notifications_topic")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	notifier := notify.NewNotifier(notify.NewLogSink(logger), logger)

	logger.Info("worker started", zap.String("topic", cfg.Kafka.NotificationsTopic), zap.String("group", cfg.Kafka.GroupID))
	err = consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
		event, err := kafka.DecodeEvent(msg)
		if err != nil {
			logger.Warn("decode event failed", zap.Int64("offset", msg.Offset), zap.Error(err))
			return nil
		}
		if err := notifier.Handle(ctx, event); err != nil {
			logger.Error("notification failed", zap.String("type", event.Type), zap.Error(err))
		}
		return nil
	})
	if err != nil {
		logger.Fatal("consumer stopped", zap.Error(err))
	}
	logger.Info("worker stopped")
}
