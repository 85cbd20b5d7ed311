package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aturgenev/skyreserve/config"
	"github.com/aturgenev/skyreserve/internal/email"
	"github.com/aturgenev/skyreserve/internal/kafka"
	"github.com/aturgenev/skyreserve/internal/logger"
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
	logger.InitLoggers(cfg.Logging.Dir)

	if len(cfg.Kafka.Brokers) == 0 {
		log.Fatal("worker requires kafka brokers in config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender()

	log.Printf("notification worker consuming %s", cfg.Kafka.NotificationsTopic)
	if err := consumer.Consume(ctx, emailSender.Send); err != nil && ctx.Err() == nil {
		log.Printf("consumer stopped: %v", err)
	}
}
