package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists transactions in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed transaction store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the transactions table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `CREATE TABLE IF NOT EXISTS transactions (
        id UUID PRIMARY KEY,
        phone TEXT NOT NULL,
        amount BIGINT NOT NULL,
        order_number TEXT NOT NULL,
        description TEXT NOT NULL,
        status TEXT NOT NULL,
        checkout_request_id TEXT,
        merchant_request_id TEXT,
        timestamp TIMESTAMPTZ NOT NULL DEFAULT now()
    )`)
	if err != nil {
		return fmt.Errorf("ensure transactions schema: %w", err)
	}
	return nil
}

// Insert stores a new transaction record.
func (s *PostgresStore) Insert(ctx context.Context, tx Transaction) error {
	_, err := s.db.Exec(ctx, `INSERT INTO transactions
        (id, phone, amount, order_number, description, status, checkout_request_id, merchant_request_id, timestamp)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		tx.ID, tx.Phone, tx.Amount, tx.OrderNumber, tx.Description, tx.Status,
		tx.CheckoutRequestID, tx.MerchantRequestID, tx.Timestamp)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// UpdateStatusByCheckoutID updates the status of the transaction created for
// the given gateway checkout request.
func (s *PostgresStore) UpdateStatusByCheckoutID(ctx context.Context, checkoutRequestID, status string) error {
	tag, err := s.db.Exec(ctx, `UPDATE transactions SET status = $1 WHERE checkout_request_id = $2`,
		status, checkoutRequestID)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns every transaction, newest first.
func (s *PostgresStore) List(ctx context.Context) ([]Transaction, error) {
	rows, err := s.db.Query(ctx, `SELECT id, phone, amount, order_number, description, status,
        COALESCE(checkout_request_id, ''), COALESCE(merchant_request_id, ''), timestamp
        FROM transactions ORDER BY timestamp DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return scanTransactions(rows)
}

// ListByStatus returns transactions with the given status, newest first.
func (s *PostgresStore) ListByStatus(ctx context.Context, status string) ([]Transaction, error) {
	rows, err := s.db.Query(ctx, `SELECT id, phone, amount, order_number, description, status,
        COALESCE(checkout_request_id, ''), COALESCE(merchant_request_id, ''), timestamp
        FROM transactions WHERE status = $1 ORDER BY timestamp DESC`, status)
	if err != nil {
		return nil, fmt.Errorf("list transactions by status: %w", err)
	}
	return scanTransactions(rows)
}

func scanTransactions(rows pgx.Rows) ([]Transaction, error) {
	defer rows.Close()
	var out []Transaction
	for rows.Next() {
		var tx Transaction
		if err := rows.Scan(&tx.ID, &tx.Phone, &tx.Amount, &tx.OrderNumber, &tx.Description,
			&tx.Status, &tx.CheckoutRequestID, &tx.MerchantRequestID, &tx.Timestamp); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
