package integration

import (
	"context"
	"log/slog"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanchitrk/payment-stream-service/internal/order/domain"
	"github.com/sanchitrk/payment-stream-service/internal/order/infrastructure/postgres"
)

func TestOrderRepository_FindByID(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	m, err := migrate.New("file://../../migrations", env.PGURL)
	require.NoError(t, err)
	require.NoError(t, m.Up())
	_, _ = m.Close()

	pool, err := pgxpool.New(ctx, env.PGURL)
	require.NoError(t, err)
	defer pool.Close()

	_, err = pool.Exec(ctx, `
		INSERT INTO orders (order_id, order_total, currency, customer_id, customer_name, payment_method, payment_status)
		VALUES ('ORD1', 199.99, 'IDR', 'CUST1001', 'Test Customer', 'CREDIT_CARD', 'PENDING_PAYMENT')
	`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `
		INSERT INTO order_details (order_id, product_id, product_name, product_price, quantity, subtotal, total_price)
		VALUES ('ORD1', 'PROD1', 'Widget', 199.99, 1, 199.99, 199.99)
	`)
	require.NoError(t, err)

	repo := postgres.NewRepository(slog.New(slog.DiscardHandler), pool)

	order, err := repo.FindByID(ctx, "ORD1")
	require.NoError(t, err)
	assert.Equal(t, "ORD1", order.OrderID)
	assert.True(t, order.OrderTotal.Equal(decimal.RequireFromString("199.99")))
	assert.Equal(t, "IDR", order.Currency)
	assert.True(t, order.AwaitingPayment())
	require.Len(t, order.Details, 1)
	assert.Equal(t, "PROD1", order.Details[0].ProductID)
	assert.Equal(t, 1, order.Details[0].Quantity)

	_, err = repo.FindByID(ctx, "NOPE")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
