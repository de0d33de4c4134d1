// Package bigquery archives processed receipts into the warehouse so
// ledger history survives process restarts and can be queried by period.
package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/tsaito/receipt-ledger/internal/domain"
)

const (
	receiptsTable = "receipts"
	dateFormat    = "2006-01-02"
)

// Repository reads and writes receipt rows in a single dataset.
type Repository struct {
	client  *bigquery.Client
	project string
	dataset string
}

// NewRepository creates a client for the given project and dataset. With an
// empty credentialsFile, Application Default Credentials are used.
func NewRepository(ctx context.Context, project, dataset, credentialsFile string) (*Repository, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := bigquery.NewClient(ctx, project, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: bigquery client: %w", err)
	}
	return NewRepositoryWithClient(client, project, dataset), nil
}

// NewRepositoryWithClient wraps an existing client. The caller keeps
// ownership of the client's lifetime.
func NewRepositoryWithClient(client *bigquery.Client, project, dataset string) *Repository {
	return &Repository{client: client, project: project, dataset: dataset}
}

// Close releases the underlying client.
func (r *Repository) Close() error {
	return r.client.Close()
}

// ArchiveReceipt inserts one processed receipt into the receipts table.
func (r *Repository) ArchiveReceipt(ctx context.Context, rcpt *domain.Receipt) error {
	table := r.client.DatasetInProject(r.project, r.dataset).Table(receiptsTable)
	if err := table.Inserter().Put(ctx, rowFromReceipt(rcpt)); err != nil {
		return fmt.Errorf("ArchiveReceipt: inserting row: %w", err)
	}
	return nil
}

// QueryReceiptsByDateRange returns archived receipt rows with a transaction
// date inside [startDate, endDate], ordered by date then receipt id.
func (r *Repository) QueryReceiptsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*ReceiptRow, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT
			receipt_id,
			status,
			image_uri,
			issuer_name,
			t_number,
			transaction_date,
			subtotal_excluding_tax,
			total_amount,
			tax_breakdown,
			category,
			payment_method,
			confidence,
			needs_review,
			notes,
			created_ts,
			updated_ts
		FROM %s.%s
		WHERE transaction_date >= @start_date
		  AND transaction_date <= @end_date
		ORDER BY transaction_date, receipt_id
	`, r.dataset, receiptsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "start_date", Value: startDate.Format(dateFormat)},
		{Name: "end_date", Value: endDate.Format(dateFormat)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryReceiptsByDateRange: query read: %w", err)
	}

	var rows []*ReceiptRow
	for {
		var row ReceiptRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryReceiptsByDateRange: iter next: %w", err)
		}
		rows = append(rows, &row)
	}
	return rows, nil
}

// ReceiptsByDateRange rehydrates archived receipts dated inside
// [from, to], for rebuilding a ledger after the in-memory store is gone.
// Rows with a NULL transaction date never match the range predicate, so
// archive-sourced ledgers cover dated receipts only.
func (r *Repository) ReceiptsByDateRange(ctx context.Context, from, to time.Time) ([]domain.Receipt, error) {
	rows, err := r.QueryReceiptsByDateRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("ReceiptsByDateRange: %w", err)
	}
	receipts := make([]domain.Receipt, 0, len(rows))
	for _, row := range rows {
		receipts = append(receipts, receiptFromRow(row))
	}
	return receipts, nil
}
