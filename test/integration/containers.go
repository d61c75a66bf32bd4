package integration

import (
	"context"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

type Env struct {
	Redis    *tcredis.RedisContainer
	PG       *postgres.PostgresContainer
	RedisURL string
	PGURL    string
	Cancel   context.CancelFunc
}

func Setup(ctx context.Context) (*Env, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)

	redisC, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		cancel()
		return nil, err
	}

	redisURL, err := redisC.ConnectionString(ctx)
	if err != nil {
		cancel()
		return nil, err
	}

	pgC, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("payments"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		cancel()
		return nil, err
	}

	return &Env{
		Redis:    redisC,
		PG:       pgC,
		RedisURL: redisURL,
		PGURL:    pgURL,
		Cancel:   cancel,
	}, nil
}

func (e *Env) Teardown(ctx context.Context) {
	e.Cancel()
	_ = e.PG.Terminate(ctx)
	_ = e.Redis.Terminate(ctx)
}
