package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"openspace/internal/notifications"
	"openspace/pkg/config"
	"openspace/pkg/kafka"
	kafka_config "openspace/pkg/kafka/config"
	kafka_middleware "openspace/pkg/kafka/middleware"
)

const ServiceName = "openspace-notifier"

// The notifier drains notification events published by the API (NOTIFIER=kafka)
// and delivers them through SendGrid. Failed deliveries are retried and then
// parked on the dead-letter topic.
func main() {
	cfg := config.LoadRelay(ServiceName)

	kcfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kcfg.LogConfiguration(cfg.Log.Info)

	relay := notifications.NewRelay(initGateway(cfg))

	consumer, err := kafka.NewConsumer(kcfg, cfg.NotificationsTopic, relay.Handle, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create consumer", "topic", cfg.NotificationsTopic, "error", err)
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting notification relay", "topic", cfg.NotificationsTopic, "group", kcfg.ConsumerGroup)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
	cfg.Log.Info("Notification relay stopped")
}

func initGateway(cfg *config.RelayConfig) notifications.Gateway {
	if cfg.Notifier == config.NotifierLog {
		return notifications.NewLogGateway(cfg.Log)
	}
	return notifications.NewSendGridGateway(cfg.SendGridAPIKey, cfg.SendGridFromEmail, cfg.SendGridFromName, cfg.Log)
}
