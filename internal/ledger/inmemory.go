package ledger

import (
	"context"
	"sort"
	"sync"
)

type inMemoryStore struct {
	mu           sync.RWMutex
	transactions []Transaction
}

// NewInMemory creates a concurrency-safe in-memory store useful for unit tests
// and local development without a database.
func NewInMemory() Store {
	return &inMemoryStore{}
}

func (s *inMemoryStore) Insert(_ context.Context, tx Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, tx)
	return nil
}

func (s *inMemoryStore) UpdateStatusByCheckoutID(_ context.Context, checkoutRequestID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.transactions {
		if s.transactions[i].CheckoutRequestID == checkoutRequestID {
			s.transactions[i].Status = status
			return nil
		}
	}
	return ErrNotFound
}

func (s *inMemoryStore) List(_ context.Context) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedCopy(s.transactions, func(Transaction) bool { return true }), nil
}

func (s *inMemoryStore) ListByStatus(_ context.Context, status string) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedCopy(s.transactions, func(tx Transaction) bool { return tx.Status == status }), nil
}

// sortedCopy returns matching transactions newest first, mirroring the
// ordering the Postgres backend produces.
func sortedCopy(transactions []Transaction, keep func(Transaction) bool) []Transaction {
	out := make([]Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if keep(tx) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}
