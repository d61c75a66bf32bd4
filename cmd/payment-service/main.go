package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/sanchitrk/payment-stream-service/internal/config"
	"github.com/sanchitrk/payment-stream-service/internal/order/infrastructure/memory"
	orderpg "github.com/sanchitrk/payment-stream-service/internal/order/infrastructure/postgres"
	"github.com/sanchitrk/payment-stream-service/internal/payment/application"
	"github.com/sanchitrk/payment-stream-service/internal/payment/infrastructure/gateway"
	payhttp "github.com/sanchitrk/payment-stream-service/internal/payment/infrastructure/http"
	"github.com/sanchitrk/payment-stream-service/internal/payment/infrastructure/stream"
	"github.com/sanchitrk/payment-stream-service/pkg/logging"
	"github.com/sanchitrk/payment-stream-service/pkg/shutdown"
	"github.com/sanchitrk/payment-stream-service/pkg/streamid"
	"github.com/sanchitrk/payment-stream-service/pkg/tracing"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)
	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, "payment-service", cfg.OTLPEndpoint, log)
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

	gen := streamid.New()
	publisher := stream.NewPublisher(log, rdb, gen, cfg.StreamMaxLen, cfg.ApproximateTrim)

	var orders application.OrderLookup
	if cfg.PostgresURL != "" {
		if err := runMigrations(cfg.PostgresURL); err != nil {
			log.Error("migrations failed", "err", err)
			os.Exit(1)
		}
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Error("pg connect failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()
		orders = orderpg.NewRepository(log, pool)
	} else {
		log.Info("no PG_URL configured, serving the in-memory demo order store")
		orders = memory.NewLookup(memory.DemoOrder("ORD1"))
	}

	svc := application.NewService(log, orders,
		gateway.NewCreditCard(cfg.GatewayDelay),
		gateway.NewPaypal(cfg.GatewayDelay),
		gateway.NewBankTransfer(cfg.GatewayDelay),
		publisher,
	)
	handler := payhttp.NewHandler(log, svc)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler.Routes(),
	}
	go func() {
		<-ctx.Done()
		shutCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		_ = srv.Shutdown(shutCtx)
	}()

	log.Info("payment-service listening", "addr", cfg.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
	log.Info("payment-service shutdown")
}

func runMigrations(pgURL string) error {
	m, err := migrate.New("file://migrations", pgURL)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
