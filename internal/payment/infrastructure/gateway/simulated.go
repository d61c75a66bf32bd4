// Package gateway provides simulated payment-gateway processors, one per
// payment method. Each waits out a configured round-trip delay and reports an
// outcome; a canceled context aborts the wait and surfaces as an error, never
// as a partial outcome.
package gateway

import (
	"context"
	"strconv"
	"time"

	"github.com/sanchitrk/payment-stream-service/internal/payment/domain"
)

// DefaultDelay mirrors the 2s round trip of a typical gateway sandbox.
const DefaultDelay = 2 * time.Second

type core struct {
	delay   time.Duration
	decline func(orderID string) bool
	now     func() time.Time
}

// Option configures a simulated processor.
type Option func(*core)

// WithDecline installs a predicate that rejects charges for matching orders,
// producing a FAILED outcome with no transaction ID.
func WithDecline(decline func(orderID string) bool) Option {
	return func(c *core) { c.decline = decline }
}

// WithClock overrides the transaction timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *core) { c.now = now }
}

func newCore(delay time.Duration, opts []Option) core {
	c := core{delay: delay, now: func() time.Time { return time.Now().UTC() }}
	if c.delay <= 0 {
		c.delay = DefaultDelay
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c core) process(ctx context.Context, orderID string) (domain.PaymentOutcome, error) {
	timer := time.NewTimer(c.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return domain.PaymentOutcome{}, ctx.Err()
	case <-timer.C:
	}

	now := c.now()
	if c.decline != nil && c.decline(orderID) {
		return domain.PaymentOutcome{PaymentStatus: domain.StatusFailed, CreatedAt: now}, nil
	}
	return domain.PaymentOutcome{
		TransactionID: "TXN" + strconv.FormatInt(now.UnixMilli(), 10),
		PaymentStatus: domain.StatusSuccess,
		CreatedAt:     now,
	}, nil
}

type CreditCard struct{ core }

func NewCreditCard(delay time.Duration, opts ...Option) *CreditCard {
	return &CreditCard{core: newCore(delay, opts)}
}

func (g *CreditCard) Process(ctx context.Context, charge domain.CreditCardCharge) (domain.PaymentOutcome, error) {
	return g.process(ctx, charge.OrderID)
}

type Paypal struct{ core }

func NewPaypal(delay time.Duration, opts ...Option) *Paypal {
	return &Paypal{core: newCore(delay, opts)}
}

func (g *Paypal) Process(ctx context.Context, charge domain.PaypalCharge) (domain.PaymentOutcome, error) {
	return g.process(ctx, charge.OrderID)
}

type BankTransfer struct{ core }

func NewBankTransfer(delay time.Duration, opts ...Option) *BankTransfer {
	return &BankTransfer{core: newCore(delay, opts)}
}

func (g *BankTransfer) Process(ctx context.Context, charge domain.BankTransferCharge) (domain.PaymentOutcome, error) {
	return g.process(ctx, charge.OrderID)
}
