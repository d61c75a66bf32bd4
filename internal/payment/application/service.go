package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	orderdomain "github.com/sanchitrk/payment-stream-service/internal/order/domain"
	"github.com/sanchitrk/payment-stream-service/internal/payment/domain"
)

// Logical stream names the pipeline publishes to.
const (
	StreamPaymentSuccess = "PAYMENT_SUCCESS"
	StreamPaymentFailed  = "PAYMENT_FAILED"
)

// Service owns the validate -> dispatch -> route state machine for one
// payment request. It holds no cross-request state; all collaborators are
// passed at construction.
type Service struct {
	log       *slog.Logger
	orders    OrderLookup
	cards     CreditCardProcessor
	paypal    PaypalProcessor
	bank      BankTransferProcessor
	publisher EventPublisher
	tracer    trace.Tracer
}

func NewService(log *slog.Logger, orders OrderLookup, cards CreditCardProcessor, paypal PaypalProcessor, bank BankTransferProcessor, publisher EventPublisher) *Service {
	return &Service{
		log:       log,
		orders:    orders,
		cards:     cards,
		paypal:    paypal,
		bank:      bank,
		publisher: publisher,
		tracer:    otel.Tracer("payment-orchestrator"),
	}
}

// CreateOrderPayment validates the request, resolves it through the
// method-specific processor and routes the result: a success record to
// PAYMENT_SUCCESS, the original request to PAYMENT_FAILED. The success
// record is published before it is returned, so callers never see a success
// that was not recorded. Validation rejections publish nothing.
func (s *Service) CreateOrderPayment(ctx context.Context, req domain.PaymentRequest) (domain.OrderPaymentRecord, error) {
	ctx, span := s.tracer.Start(ctx, "CreateOrderPayment")
	defer span.End()

	method, err := s.validate(ctx, req)
	if err != nil {
		s.log.Warn("payment request rejected", "order_id", req.OrderID, "err", err)
		return domain.OrderPaymentRecord{}, err
	}

	outcome, procErr := s.dispatch(ctx, method, req)
	if procErr != nil || !outcome.Succeeded() {
		return domain.OrderPaymentRecord{}, s.routeFailure(ctx, req, outcome, procErr)
	}

	now := time.Now().UTC()
	record := buildRecord(req, method, outcome, now)

	id, err := s.publisher.Publish(ctx, StreamPaymentSuccess, record)
	if err != nil {
		s.log.Error("success event publish failed", "order_id", req.OrderID, "err", err)
		return domain.OrderPaymentRecord{}, err
	}

	s.log.Info("payment succeeded",
		"order_id", req.OrderID,
		"transaction_id", outcome.TransactionID,
		"stream", StreamPaymentSuccess,
		"record_id", id.String(),
	)
	return record, nil
}

func (s *Service) validate(ctx context.Context, req domain.PaymentRequest) (domain.Method, error) {
	if req.OrderID == "" {
		return "", &domain.ValidationError{Field: "orderId", Reason: "must not be empty"}
	}
	if req.Amount.Sign() <= 0 {
		return "", &domain.ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if req.Currency == "" {
		return "", &domain.ValidationError{Field: "currency", Reason: "must not be empty"}
	}
	if req.PaymentMethod == "" {
		return "", &domain.ValidationError{Field: "paymentMethod", Reason: "must not be empty"}
	}

	method, ok := domain.ParseMethod(req.PaymentMethod)
	if !ok {
		return "", &domain.ValidationError{Field: "paymentMethod", Reason: fmt.Sprintf("unrecognized method %q", req.PaymentMethod)}
	}

	switch method {
	case domain.MethodCreditCard:
		if req.CardNumber == "" || req.CardExpiry == "" || req.CardCVV == "" {
			return "", &domain.ValidationError{Field: "paymentMethod", Reason: "credit card payments require cardNumber, cardExpiry and cardCvv"}
		}
	case domain.MethodPaypal:
		if req.PaypalEmail == "" {
			return "", &domain.ValidationError{Field: "paymentMethod", Reason: "paypal payments require paypalEmail"}
		}
	case domain.MethodBankTransfer:
		if req.BankAccount == "" || req.BankName == "" {
			return "", &domain.ValidationError{Field: "paymentMethod", Reason: "bank transfers require bankAccount and bankName"}
		}
	}

	order, err := s.orders.FindByID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, orderdomain.ErrNotFound) {
			return "", &domain.ValidationError{Field: "orderId", Reason: fmt.Sprintf("order %s not found", req.OrderID)}
		}
		return "", fmt.Errorf("order lookup for %s: %w", req.OrderID, err)
	}
	if !order.AwaitingPayment() {
		return "", &domain.ValidationError{Field: "orderId", Reason: fmt.Sprintf("order payment status is %q, want %q", order.PaymentStatus, orderdomain.PaymentStatusPending)}
	}
	if !order.OrderTotal.Equal(req.Amount) {
		return "", &domain.ValidationError{Field: "amount", Reason: "payment amount does not match order total"}
	}
	return method, nil
}

func (s *Service) dispatch(ctx context.Context, method domain.Method, req domain.PaymentRequest) (domain.PaymentOutcome, error) {
	switch method {
	case domain.MethodCreditCard:
		return s.cards.Process(ctx, domain.CreditCardCharge{
			OrderID:    req.OrderID,
			Amount:     req.Amount,
			Currency:   req.Currency,
			CardNumber: req.CardNumber,
			CardExpiry: req.CardExpiry,
			CardCVV:    req.CardCVV,
		})
	case domain.MethodPaypal:
		return s.paypal.Process(ctx, domain.PaypalCharge{
			OrderID:     req.OrderID,
			Amount:      req.Amount,
			Currency:    req.Currency,
			PaypalEmail: req.PaypalEmail,
		})
	case domain.MethodBankTransfer:
		return s.bank.Process(ctx, domain.BankTransferCharge{
			OrderID:     req.OrderID,
			Amount:      req.Amount,
			Currency:    req.Currency,
			BankAccount: req.BankAccount,
			BankName:    req.BankName,
		})
	}
	return domain.PaymentOutcome{}, fmt.Errorf("no processor for method %s", method)
}

// routeFailure publishes the original request to the failure stream and
// returns the ProcessingFailure. The publish runs on an uncancelable context:
// an interrupted processor call must still leave a recorded outcome.
func (s *Service) routeFailure(ctx context.Context, req domain.PaymentRequest, outcome domain.PaymentOutcome, procErr error) error {
	failure := &domain.ProcessingFailure{
		OrderID:       req.OrderID,
		Status:        outcome.PaymentStatus,
		TransactionID: outcome.TransactionID,
		Err:           procErr,
	}

	id, pubErr := s.publisher.Publish(context.WithoutCancel(ctx), StreamPaymentFailed, req)
	if pubErr != nil {
		s.log.Error("failure event publish failed", "order_id", req.OrderID, "err", pubErr)
		return errors.Join(failure, pubErr)
	}

	s.log.Warn("payment failed",
		"order_id", req.OrderID,
		"status", string(outcome.PaymentStatus),
		"stream", StreamPaymentFailed,
		"record_id", id.String(),
		"err", procErr,
	)
	return failure
}

func buildRecord(req domain.PaymentRequest, method domain.Method, outcome domain.PaymentOutcome, now time.Time) domain.OrderPaymentRecord {
	record := domain.OrderPaymentRecord{
		OrderID:       req.OrderID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		PaymentMethod: method,
		PaymentStatus: outcome.PaymentStatus,
		TransactionID: outcome.TransactionID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	switch method {
	case domain.MethodCreditCard:
		record.CardNumber = req.CardNumber
		record.CardExpiry = req.CardExpiry
		record.CardCVV = req.CardCVV
	case domain.MethodPaypal:
		record.PaypalEmail = req.PaypalEmail
	case domain.MethodBankTransfer:
		record.BankAccount = req.BankAccount
		record.BankName = req.BankName
	}
	return record
}
