// Package memory provides an in-memory OrderLookup used when no order
// database is configured, mirroring the simulated order store of early
// deployments.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sanchitrk/payment-stream-service/internal/order/domain"
)

type Lookup struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

func NewLookup(orders ...domain.Order) *Lookup {
	l := &Lookup{orders: make(map[string]domain.Order, len(orders))}
	for _, o := range orders {
		l.orders[o.OrderID] = o
	}
	return l
}

func (l *Lookup) Put(o domain.Order) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.orders[o.OrderID] = o
}

func (l *Lookup) FindByID(_ context.Context, orderID string) (domain.Order, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	o, ok := l.orders[orderID]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	return o, nil
}

// DemoOrder seeds a payable order with the same shape the simulated store
// used to return: 199.99 IDR, awaiting payment, one line item.
func DemoOrder(orderID string) domain.Order {
	now := time.Now().UTC()
	price := decimal.RequireFromString("99.99")
	qty := 2
	subtotal := price.Mul(decimal.NewFromInt(int64(qty)))
	discount := decimal.RequireFromString("10.00")

	return domain.Order{
		OrderID:         orderID,
		OrderDate:       now,
		OrderStatus:     "PENDING",
		OrderTotal:      decimal.RequireFromString("199.99"),
		Currency:        "IDR",
		CustomerID:      "CUST1001",
		CustomerName:    "Agus Yulianto",
		CustomerEmail:   "agus_yulianto@example.com",
		CustomerPhone:   "+62-811-222-3333",
		PaymentMethod:   "CREDIT_CARD",
		PaymentStatus:   domain.PaymentStatusPending,
		ShippingAddress: "Jl. Melati V No. 8, Solo, Jawa Tengah, Indonesia",
		ShippingMethod:  "STANDARD",
		DeliveryDate:    now.AddDate(0, 0, 5),
		TaxAmount:       decimal.RequireFromString("9.99"),
		DiscountCode:    "DISCOUNT10",
		DiscountAmount:  discount,
		CreatedAt:       now,
		UpdatedAt:       now,
		Details: []domain.OrderDetail{{
			ProductID:       "PROD1001",
			ProductName:     "Product A",
			ProductPrice:    price,
			Quantity:        qty,
			Subtotal:        subtotal,
			DiscountAmount:  discount,
			TotalPrice:      subtotal.Sub(discount),
			ProductImageURL: "https://example.com/product-a.jpg",
		}},
	}
}
