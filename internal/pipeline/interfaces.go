package pipeline

import (
	"context"

	"github.com/tsaito/receipt-ledger/internal/domain"
)

// ImageStorage fetches receipt image bytes for the parser.
type ImageStorage interface {
	// Fetch downloads the object behind a gs:// URI.
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// VisionParser sends a receipt image to an OCR/vision model and returns the
// raw JSON output as a generic map. The pipeline owns turning that map into
// typed domain values.
type VisionParser interface {
	ParseReceipt(ctx context.Context, image []byte, mimeType string) (map[string]interface{}, error)
}

// Archiver persists completed receipts outside the in-process store. Used
// for the BigQuery archival repository; a nil Archiver disables archival.
type Archiver interface {
	ArchiveReceipt(ctx context.Context, rcpt *domain.Receipt) error
}

// ReviewNotifier pushes receipts flagged for review to an external board so
// a human can inspect them. A nil ReviewNotifier disables the sync.
type ReviewNotifier interface {
	NotifyReview(ctx context.Context, rcpt *domain.Receipt) error
}
