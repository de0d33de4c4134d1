// Package store holds accepted receipts between extraction and ledger
// export.
package store

import (
	"context"

	"github.com/tsaito/receipt-ledger/internal/domain"
)

// Filter narrows List results.
type Filter struct {
	Status      domain.ReceiptStatus
	NeedsReview *bool
	Limit       int
	Offset      int
}

// ReceiptStore is the persistence boundary for receipts. The ledger
// aggregator never reads the store directly; it consumes the immutable
// slice returned by Snapshot.
type ReceiptStore interface {
	// Save inserts or replaces a receipt.
	Save(ctx context.Context, rcpt *domain.Receipt) error

	// Get retrieves one receipt by id.
	Get(ctx context.Context, id string) (*domain.Receipt, error)

	// List retrieves receipts matching the filter, ordered by creation
	// time then id.
	List(ctx context.Context, filter Filter) ([]*domain.Receipt, error)

	// Snapshot returns a deep copy of every stored receipt. The returned
	// slice is detached from the store: later writes never show through,
	// which is what lets the aggregator run without coordination.
	Snapshot(ctx context.Context) ([]domain.Receipt, error)
}
