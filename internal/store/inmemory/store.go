// Package inmemory is the in-memory ReceiptStore. It is safe for concurrent
// use; data is lost on restart. Deployments that need durability pair it
// with the BigQuery archival repository.
package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tsaito/receipt-ledger/internal/domain"
	"github.com/tsaito/receipt-ledger/internal/store"
)

// Store keeps receipts in a map guarded by a RWMutex.
type Store struct {
	mu       sync.RWMutex
	receipts map[string]domain.Receipt
}

// NewStore creates an empty in-memory receipt store.
func NewStore() *Store {
	return &Store{receipts: make(map[string]domain.Receipt)}
}

// Save implements ReceiptStore. The receipt is cloned on the way in so the
// caller cannot mutate stored state afterwards.
func (s *Store) Save(ctx context.Context, rcpt *domain.Receipt) error {
	if rcpt.ID == "" {
		return fmt.Errorf("receipt ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.receipts[rcpt.ID] = rcpt.Clone()
	return nil
}

// Get implements ReceiptStore.
func (s *Store) Get(ctx context.Context, id string) (*domain.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rcpt, ok := s.receipts[id]
	if !ok {
		return nil, fmt.Errorf("receipt not found: %s", id)
	}
	out := rcpt.Clone()
	return &out, nil
}

// List implements ReceiptStore.
func (s *Store) List(ctx context.Context, filter store.Filter) ([]*domain.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Receipt
	for _, rcpt := range s.receipts {
		if filter.Status != "" && rcpt.Status != filter.Status {
			continue
		}
		if filter.NeedsReview != nil && rcpt.NeedsReview != *filter.NeedsReview {
			continue
		}
		out := rcpt.Clone()
		result = append(result, &out)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*domain.Receipt{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

// Snapshot implements ReceiptStore. Every receipt is cloned, so the slice
// is a consistent, immutable view for the ledger aggregator.
func (s *Store) Snapshot(ctx context.Context) ([]domain.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Receipt, 0, len(s.receipts))
	for _, rcpt := range s.receipts {
		out = append(out, rcpt.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Ensure Store implements ReceiptStore.
var _ store.ReceiptStore = (*Store)(nil)
