package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/tsaito/receipt-ledger/internal/domain"
	"github.com/tsaito/receipt-ledger/internal/validation"
)

const queryPageSize = 100

// Syncer maintains one review-board page per flagged receipt.
type Syncer struct {
	client     NotionService
	databaseID string
}

// NewSyncer wires a Syncer against one review database.
func NewSyncer(client NotionService, databaseID string) *Syncer {
	return &Syncer{client: client, databaseID: databaseID}
}

// NotifyReview creates a page for the receipt on the review board,
// including a summary of the validation findings that flagged it. A
// receipt that already has a page is skipped, so a retried pipeline run
// does not grow duplicates.
func (s *Syncer) NotifyReview(ctx context.Context, rcpt *domain.Receipt) error {
	exists, err := s.hasPage(ctx, rcpt.ID)
	if err != nil {
		return fmt.Errorf("NotifyReview: receipt %s: %w", rcpt.ID, err)
	}
	if exists {
		return nil
	}

	props := ReceiptToNotionProperties(rcpt)
	if reasons := ReviewReasons(validation.Validate(rcpt.Data)); reasons != "" {
		props["Review Reasons"] = richText(reasons)
	}

	if _, err := s.client.CreatePage(ctx, s.databaseID, props); err != nil {
		return fmt.Errorf("NotifyReview: receipt %s: %w", rcpt.ID, err)
	}
	return nil
}

// hasPage walks the review database looking for a page titled with the
// receipt id. Handles pagination via the database cursor.
func (s *Syncer) hasPage(ctx context.Context, receiptID string) (bool, error) {
	var cursor notionapi.Cursor
	for {
		req := &notionapi.DatabaseQueryRequest{PageSize: queryPageSize}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := s.client.QueryDatabase(ctx, s.databaseID, req)
		if err != nil {
			return false, fmt.Errorf("hasPage: %w", err)
		}

		for _, page := range resp.Results {
			if pageReceiptID(page) == receiptID {
				return true, nil
			}
		}

		if !resp.HasMore {
			return false, nil
		}
		cursor = resp.NextCursor
	}
}

// pageReceiptID extracts the receipt id from a review page's title
// property. Returns empty string if not found.
func pageReceiptID(page notionapi.Page) string {
	prop, ok := page.Properties["Receipt ID"]
	if !ok {
		return ""
	}
	title, ok := prop.(*notionapi.TitleProperty)
	if !ok || len(title.Title) == 0 {
		return ""
	}
	return title.Title[0].PlainText
}
