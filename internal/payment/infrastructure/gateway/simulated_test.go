package gateway

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanchitrk/payment-stream-service/internal/payment/domain"
)

func TestCreditCard_SuccessfulCharge(t *testing.T) {
	fixed := time.UnixMilli(1700000000000).UTC()
	g := NewCreditCard(time.Millisecond, WithClock(func() time.Time { return fixed }))

	outcome, err := g.Process(context.Background(), domain.CreditCardCharge{OrderID: "ORD1"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, outcome.PaymentStatus)
	assert.Equal(t, "TXN1700000000000", outcome.TransactionID)
	assert.True(t, strings.HasPrefix(outcome.TransactionID, "TXN"))
	assert.Equal(t, fixed, outcome.CreatedAt)
	assert.True(t, outcome.Succeeded())
}

func TestPaypal_DeclinedCharge(t *testing.T) {
	g := NewPaypal(time.Millisecond, WithDecline(func(orderID string) bool { return orderID == "ORD-BAD" }))

	outcome, err := g.Process(context.Background(), domain.PaypalCharge{OrderID: "ORD-BAD"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, outcome.PaymentStatus)
	assert.Empty(t, outcome.TransactionID)
	assert.False(t, outcome.Succeeded())
}

func TestBankTransfer_CancellationAbortsRoundTrip(t *testing.T) {
	g := NewBankTransfer(time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	outcome, err := g.Process(ctx, domain.BankTransferCharge{OrderID: "ORD1"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, outcome, "an interrupted call must not yield a partial outcome")
	assert.Less(t, time.Since(start), time.Second, "cancellation must not wait out the gateway delay")
}

func TestNewCreditCard_DefaultsDelay(t *testing.T) {
	g := NewCreditCard(0)
	assert.Equal(t, DefaultDelay, g.delay)
}
