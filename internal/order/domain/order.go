package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by lookups when no order matches the given ID.
var ErrNotFound = errors.New("order not found")

const (
	PaymentStatusPending = "PENDING_PAYMENT"
	PaymentStatusPaid    = "PAID"
	PaymentStatusFailed  = "FAILED"
)

type Order struct {
	OrderID         string
	OrderDate       time.Time
	OrderStatus     string
	OrderTotal      decimal.Decimal
	Currency        string
	CustomerID      string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	PaymentMethod   string
	PaymentStatus   string
	ShippingAddress string
	ShippingMethod  string
	DeliveryDate    time.Time
	TaxAmount       decimal.Decimal
	DiscountCode    string
	DiscountAmount  decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Details         []OrderDetail
}

type OrderDetail struct {
	ProductID       string
	ProductName     string
	ProductPrice    decimal.Decimal
	Quantity        int
	Subtotal        decimal.Decimal
	DiscountAmount  decimal.Decimal
	TotalPrice      decimal.Decimal
	ProductImageURL string
	Notes           string
}

// AwaitingPayment reports whether the order can still accept a payment.
func (o Order) AwaitingPayment() bool {
	return strings.EqualFold(o.PaymentStatus, PaymentStatusPending)
}
