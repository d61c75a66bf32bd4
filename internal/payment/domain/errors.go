package domain

import "fmt"

// ValidationError rejects a malformed or business-inconsistent payment
// request before any processing or publishing happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid payment request: %s: %s", e.Field, e.Reason)
}

// ProcessingFailure reports a payment the gateway declined, returned an
// unusable outcome for, or never finished (cancellation). A failure event has
// already been published by the time callers see this error.
type ProcessingFailure struct {
	OrderID       string
	Status        Status
	TransactionID string
	Err           error
}

func (e *ProcessingFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment processing failed for order %s: %v", e.OrderID, e.Err)
	}
	return fmt.Sprintf("payment processing failed for order %s: status %q, transaction %q", e.OrderID, e.Status, e.TransactionID)
}

func (e *ProcessingFailure) Unwrap() error { return e.Err }
