package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/sanchitrk/payment-stream-service/internal/payment/application"
	"github.com/sanchitrk/payment-stream-service/internal/payment/domain"
	"github.com/sanchitrk/payment-stream-service/internal/payment/infrastructure/stream"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("payment-http"),
	}
}

// envelope mirrors the wire shape downstream clients already parse:
// {statusCode, message, data}.
type envelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
}

type createOrderPaymentResponse struct {
	OrderID       string          `json:"orderId"`
	TransactionID string          `json:"transactionId"`
	PaymentStatus domain.Status   `json:"paymentStatus"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentMethod domain.Method   `json:"paymentMethod"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Post("/api/v1/order-payment", h.createOrderPayment)

	return r
}

func (h *Handler) createOrderPayment(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrderPayment")
	defer span.End()

	var req domain.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	record, err := h.service.CreateOrderPayment(ctx, req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respond(w, http.StatusCreated, "order payment created successfully", createOrderPaymentResponse{
		OrderID:       record.OrderID,
		TransactionID: record.TransactionID,
		PaymentStatus: record.PaymentStatus,
		Amount:        record.Amount,
		Currency:      record.Currency,
		PaymentMethod: record.PaymentMethod,
		CreatedAt:     record.CreatedAt,
	})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var vErr *domain.ValidationError
	var procErr *domain.ProcessingFailure
	var pubErr *stream.PublishError

	switch {
	case errors.As(err, &vErr):
		h.respond(w, http.StatusBadRequest, vErr.Error(), nil)
	case errors.As(err, &pubErr):
		// event bus unavailable; when a declined payment could not be
		// recorded the message carries both
		msg := pubErr.Error()
		if errors.As(err, &procErr) {
			msg = procErr.Error() + "; " + pubErr.Error()
		}
		h.respond(w, http.StatusServiceUnavailable, msg, nil)
	case errors.As(err, &procErr):
		h.respond(w, http.StatusUnprocessableEntity, procErr.Error(), nil)
	default:
		h.log.Error("order payment failed", "err", err)
		h.respond(w, http.StatusInternalServerError, "internal error", nil)
	}
}

func (h *Handler) respond(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{StatusCode: status, Message: message, Data: data}); err != nil {
		h.log.Error("response encode failed", "err", err)
	}
}
