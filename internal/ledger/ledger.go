package ledger

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates no transaction matched the given identifier.
var ErrNotFound = errors.New("transaction not found")

const (
	// StatusPending marks a push request accepted by the gateway but not yet confirmed.
	StatusPending = "Pending"
	// StatusSuccess marks a push the customer authorized.
	StatusSuccess = "Success"
	// StatusFailed marks a push the customer declined or that timed out.
	StatusFailed = "Failed"
)

// Transaction is a single ledger record. Status is stored verbatim as reported
// by the gateway callback; consumers map unrecognized values to a neutral
// display state rather than rejecting them.
type Transaction struct {
	ID                string    `json:"id"`
	Phone             string    `json:"phone"`
	Amount            int64     `json:"amount"`
	OrderNumber       string    `json:"order_number"`
	Description       string    `json:"description"`
	Status            string    `json:"status"`
	CheckoutRequestID string    `json:"checkout_request_id,omitempty"`
	MerchantRequestID string    `json:"merchant_request_id,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

// Store defines the contract implemented by transaction store backends (e.g. Postgres).
type Store interface {
	Insert(ctx context.Context, tx Transaction) error
	UpdateStatusByCheckoutID(ctx context.Context, checkoutRequestID, status string) error
	List(ctx context.Context) ([]Transaction, error)
	ListByStatus(ctx context.Context, status string) ([]Transaction, error)
}
