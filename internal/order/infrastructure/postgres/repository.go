package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sanchitrk/payment-stream-service/internal/order/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT order_id, order_date, order_status, order_total::text, currency,
		       customer_id, customer_name, customer_email, customer_phone,
		       payment_method, payment_status,
		       shipping_address, shipping_method, delivery_date,
		       tax_amount::text, discount_code, discount_amount::text,
		       created_at, updated_at
		FROM orders
		WHERE order_id = $1
	`, orderID)

	var o domain.Order
	var total, tax, discount string
	err := row.Scan(
		&o.OrderID, &o.OrderDate, &o.OrderStatus, &total, &o.Currency,
		&o.CustomerID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.PaymentMethod, &o.PaymentStatus,
		&o.ShippingAddress, &o.ShippingMethod, &o.DeliveryDate,
		&tax, &o.DiscountCode, &discount,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("query order %s: %w", orderID, err)
	}

	if o.OrderTotal, err = decimal.NewFromString(total); err != nil {
		return domain.Order{}, fmt.Errorf("order %s: bad order_total %q: %w", orderID, total, err)
	}
	if o.TaxAmount, err = decimal.NewFromString(tax); err != nil {
		return domain.Order{}, fmt.Errorf("order %s: bad tax_amount %q: %w", orderID, tax, err)
	}
	if o.DiscountAmount, err = decimal.NewFromString(discount); err != nil {
		return domain.Order{}, fmt.Errorf("order %s: bad discount_amount %q: %w", orderID, discount, err)
	}

	if o.Details, err = r.findDetails(ctx, orderID); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (r *Repository) findDetails(ctx context.Context, orderID string) ([]domain.OrderDetail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT product_id, product_name, product_price::text, quantity,
		       subtotal::text, discount_amount::text, total_price::text,
		       product_image_url, notes
		FROM order_details
		WHERE order_id = $1
		ORDER BY product_id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order details %s: %w", orderID, err)
	}
	defer rows.Close()

	var details []domain.OrderDetail
	for rows.Next() {
		var d domain.OrderDetail
		var price, subtotal, discount, total string
		if err := rows.Scan(
			&d.ProductID, &d.ProductName, &price, &d.Quantity,
			&subtotal, &discount, &total,
			&d.ProductImageURL, &d.Notes,
		); err != nil {
			return nil, fmt.Errorf("scan order detail for %s: %w", orderID, err)
		}
		if d.ProductPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("order %s: bad product_price %q: %w", orderID, price, err)
		}
		if d.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
			return nil, fmt.Errorf("order %s: bad subtotal %q: %w", orderID, subtotal, err)
		}
		if d.DiscountAmount, err = decimal.NewFromString(discount); err != nil {
			return nil, fmt.Errorf("order %s: bad discount_amount %q: %w", orderID, discount, err)
		}
		if d.TotalPrice, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("order %s: bad total_price %q: %w", orderID, total, err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
