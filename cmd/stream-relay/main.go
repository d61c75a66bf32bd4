package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/sanchitrk/payment-stream-service/internal/config"
	"github.com/sanchitrk/payment-stream-service/internal/payment/application"
	"github.com/sanchitrk/payment-stream-service/pkg/idempotency"
	"github.com/sanchitrk/payment-stream-service/pkg/logging"
	"github.com/sanchitrk/payment-stream-service/pkg/shutdown"
	"github.com/sanchitrk/payment-stream-service/pkg/streamrelay"
	"github.com/sanchitrk/payment-stream-service/pkg/tracing"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)
	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, "stream-relay", cfg.OTLPEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Username: cfg.RedisUsername,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer func() { _ = rdb.Close() }()

	if err := ensureKafkaTopics(ctx, cfg.KafkaBrokers(), []string{cfg.SuccessTopic, cfg.FailedTopic}); err != nil {
		log.Error("kafka topic bootstrap failed", "err", err)
		os.Exit(1)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers()...),
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
	}
	defer func() { _ = writer.Close() }()

	dispatch := streamrelay.NewDispatcher(log, writer, map[string]string{
		application.StreamPaymentSuccess: cfg.SuccessTopic,
		application.StreamPaymentFailed:  cfg.FailedTopic,
	})
	idem := idempotency.NewStore(rdb, cfg.IdempotencyTTL)

	relayID := "stream-relay-" + uuid.NewString()
	relay := streamrelay.NewRelay(log, rdb, dispatch, idem, relayID,
		[]string{application.StreamPaymentSuccess, application.StreamPaymentFailed},
		cfg.RelayBlock,
	)

	if err := relay.Run(ctx); err != nil {
		log.Error("relay stopped", "err", err)
		os.Exit(1)
	}
	log.Info("stream-relay shutdown")
}

func ensureKafkaTopics(ctx context.Context, brokers, topics []string) error {
	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		return fmt.Errorf("dial kafka broker: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("resolve kafka controller: %w", err)
	}
	controllerConn, err := kafka.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		return fmt.Errorf("dial kafka controller: %w", err)
	}
	defer controllerConn.Close()

	topicConfigs := make([]kafka.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	if err := controllerConn.CreateTopics(topicConfigs...); err != nil && err != kafka.TopicAlreadyExists {
		return fmt.Errorf("create kafka topics: %w", err)
	}
	return nil
}
