package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Method is a supported payment method.
type Method string

const (
	MethodCreditCard   Method = "CREDIT_CARD"
	MethodPaypal       Method = "PAYPAL"
	MethodBankTransfer Method = "BANK_TRANSFER"
)

// ParseMethod matches a method name case-insensitively.
func ParseMethod(s string) (Method, bool) {
	switch {
	case strings.EqualFold(s, string(MethodCreditCard)):
		return MethodCreditCard, true
	case strings.EqualFold(s, string(MethodPaypal)):
		return MethodPaypal, true
	case strings.EqualFold(s, string(MethodBankTransfer)):
		return MethodBankTransfer, true
	}
	return "", false
}

// Status is a gateway-reported payment status.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// PaymentRequest is the ingress payload for one payment attempt. Only the
// credential subset matching PaymentMethod is expected to be set.
type PaymentRequest struct {
	OrderID       string          `json:"orderId"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"paymentMethod"`

	CardNumber string `json:"cardNumber,omitempty"`
	CardExpiry string `json:"cardExpiry,omitempty"`
	CardCVV    string `json:"cardCvv,omitempty"`

	PaypalEmail string `json:"paypalEmail,omitempty"`

	BankAccount string `json:"bankAccount,omitempty"`
	BankName    string `json:"bankName,omitempty"`
}

// CreditCardCharge is the narrowed request handed to the card processor.
type CreditCardCharge struct {
	OrderID    string
	Amount     decimal.Decimal
	Currency   string
	CardNumber string
	CardExpiry string
	CardCVV    string
}

type PaypalCharge struct {
	OrderID     string
	Amount      decimal.Decimal
	Currency    string
	PaypalEmail string
}

type BankTransferCharge struct {
	OrderID     string
	Amount      decimal.Decimal
	Currency    string
	BankAccount string
	BankName    string
}

// PaymentOutcome is what a gateway processor resolved for one charge.
type PaymentOutcome struct {
	TransactionID string    `json:"transactionId"`
	PaymentStatus Status    `json:"paymentStatus"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Succeeded reports whether the outcome carries a usable transaction.
// An empty transaction ID signals failure regardless of the status field.
func (o PaymentOutcome) Succeeded() bool {
	return o.TransactionID != "" && o.PaymentStatus == StatusSuccess
}

// OrderPaymentRecord is the published representation of a resolved payment:
// the request's economic fields, the method's credential subset and the
// gateway outcome.
type OrderPaymentRecord struct {
	OrderID       string          `json:"orderId"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentMethod Method          `json:"paymentMethod"`
	PaymentStatus Status          `json:"paymentStatus"`

	CardNumber string `json:"cardNumber,omitempty"`
	CardExpiry string `json:"cardExpiry,omitempty"`
	CardCVV    string `json:"cardCvv,omitempty"`

	PaypalEmail string `json:"paypalEmail,omitempty"`

	BankAccount string `json:"bankAccount,omitempty"`
	BankName    string `json:"bankName,omitempty"`

	TransactionID string    `json:"transactionId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
