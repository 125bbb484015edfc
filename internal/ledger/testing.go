package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Fixture inserts a transaction with sensible defaults for tests and returns it.
func Fixture(store Store, orderNumber, status string, ts time.Time) Transaction {
	tx := Transaction{
		ID:                uuid.NewString(),
		Phone:             "254712345678",
		Amount:            100,
		OrderNumber:       orderNumber,
		Description:       "test payment",
		Status:            status,
		CheckoutRequestID: "ws_CO_" + orderNumber,
		MerchantRequestID: "mr_" + orderNumber,
		Timestamp:         ts,
	}
	_ = store.Insert(context.Background(), tx)
	return tx
}
