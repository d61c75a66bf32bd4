package application

import (
	"context"

	orderdomain "github.com/sanchitrk/payment-stream-service/internal/order/domain"
	"github.com/sanchitrk/payment-stream-service/internal/payment/domain"
	"github.com/sanchitrk/payment-stream-service/pkg/streamid"
)

// OrderLookup resolves the order a payment refers to.
type OrderLookup interface {
	FindByID(ctx context.Context, orderID string) (orderdomain.Order, error)
}

// Per-method gateway processors. Each resolves a narrowed charge into an
// outcome, or returns an error when the round trip was interrupted.
type CreditCardProcessor interface {
	Process(ctx context.Context, charge domain.CreditCardCharge) (domain.PaymentOutcome, error)
}

type PaypalProcessor interface {
	Process(ctx context.Context, charge domain.PaypalCharge) (domain.PaymentOutcome, error)
}

type BankTransferProcessor interface {
	Process(ctx context.Context, charge domain.BankTransferCharge) (domain.PaymentOutcome, error)
}

// EventPublisher appends a record to a named bounded stream and returns the
// identifier the log assigned.
type EventPublisher interface {
	Publish(ctx context.Context, stream string, payload any) (streamid.ID, error)
}
