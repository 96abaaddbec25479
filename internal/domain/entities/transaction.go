package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TransactionStatus is the settlement state of a payment
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

// Transaction records one checkout session. ExternalRef is the provider session id.
type Transaction struct {
	ID          uuid.UUID         `json:"id"`
	UserID      uuid.UUID         `json:"userId"`
	AmountCents int64             `json:"-"`
	Currency    string            `json:"currency"`
	PackageType PackageType       `json:"packageType"`
	Status      TransactionStatus `json:"status"`
	ExternalRef string            `json:"externalRef"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// Amount returns the decimal amount, e.g. "250.00"
func (t *Transaction) Amount() string {
	return FormatCents(t.AmountCents)
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	type alias Transaction
	return json.Marshal(struct {
		alias
		Amount string `json:"amount"`
	}{alias: alias(t), Amount: t.Amount()})
}

// CheckoutInput starts a hosted checkout
type CheckoutInput struct {
	UserID      uuid.UUID   `json:"userId" binding:"required"`
	PackageType PackageType `json:"packageType" binding:"required,oneof=individual couple family"`
}

// PaymentRedirectInput is posted by the client after the provider redirect
type PaymentRedirectInput struct {
	UserID    uuid.UUID `json:"userId" binding:"required"`
	SessionID string    `json:"sessionId" binding:"required"`
}

// ConfirmPaymentInput is the reconciliation contract shared by redirect and webhook
type ConfirmPaymentInput struct {
	UserID      uuid.UUID
	SessionID   string
	CustomerID  string
	PackageType PackageType
	AmountCents int64
	Currency    string
}

// ReconcileResult reports the outcome of a reconciliation
type ReconcileResult struct {
	Transaction *Transaction `json:"transaction"`
	Duplicate   bool         `json:"duplicate"`
}

// CancelResult reports the outcome of a cancelled checkout
type CancelResult struct {
	Notice string `json:"notice"`
}

// CheckoutSessionRequest is sent to the hosted checkout provider
type CheckoutSessionRequest struct {
	ClientReferenceID string
	CustomerEmail     string
	PackageType       PackageType
	AmountCents       int64
	Currency          string
	SuccessURL        string
	CancelURL         string
}

// Provider session payment states
const (
	SessionPaymentPaid   = "paid"
	SessionPaymentUnpaid = "unpaid"
	SessionStatusExpired = "expired"
)

// CheckoutSession is the provider view of a checkout
type CheckoutSession struct {
	ID                string            `json:"id"`
	URL               string            `json:"url"`
	ClientReferenceID string            `json:"client_reference_id"`
	CustomerID        string            `json:"customer"`
	PaymentStatus     string            `json:"payment_status"`
	Status            string            `json:"status"`
	AmountTotal       int64             `json:"amount_total"`
	Currency          string            `json:"currency"`
	Metadata          map[string]string `json:"metadata"`
}

// WebhookEvent is a verified provider event
type WebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object CheckoutSession `json:"object"`
	} `json:"data"`
}

// Webhook event types handled by reconciliation
const (
	EventCheckoutCompleted      = "checkout.session.completed"
	EventCheckoutAsyncSucceeded = "checkout.session.async_payment_succeeded"
	EventCheckoutExpired        = "checkout.session.expired"
	EventCheckoutAsyncFailed    = "checkout.session.async_payment_failed"
)
