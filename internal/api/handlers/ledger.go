package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tsaito/receipt-ledger/internal/api/middleware"
	"github.com/tsaito/receipt-ledger/internal/domain"
	"github.com/tsaito/receipt-ledger/internal/export"
	"github.com/tsaito/receipt-ledger/internal/ledger"
	"github.com/tsaito/receipt-ledger/internal/store"
)

const ledgerDateFormat = "2006-01-02"

// ReceiptArchive rehydrates receipts from the warehouse so a ledger can be
// rebuilt after the in-memory store has been restarted.
type ReceiptArchive interface {
	ReceiptsByDateRange(ctx context.Context, from, to time.Time) ([]domain.Receipt, error)
}

// LedgerHandler builds and serves ledger exports.
type LedgerHandler struct {
	store   store.ReceiptStore
	archive ReceiptArchive // nil when no warehouse is configured
	log     zerolog.Logger
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(st store.ReceiptStore, archive ReceiptArchive, log zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{store: st, archive: archive, log: log}
}

// ExportLedger handles GET /api/ledger?from=&to=&format=json|xlsx&source=store|archive.
// The sheet is built fresh on every call, from a store snapshot by default
// or from the warehouse when source=archive.
func (h *LedgerHandler) ExportLedger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	now := time.Now()
	from := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	to := now
	var err error

	if v := query.Get("from"); v != "" {
		from, err = time.Parse(ledgerDateFormat, v)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid from date format")
			return
		}
	}
	if v := query.Get("to"); v != "" {
		to, err = time.Parse(ledgerDateFormat, v)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid to date format")
			return
		}
	}
	if to.Before(from) {
		middleware.WriteError(w, http.StatusBadRequest, "to must not precede from")
		return
	}

	var receipts []domain.Receipt
	switch query.Get("source") {
	case "", "store":
		receipts, err = h.store.Snapshot(ctx)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to snapshot receipts")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to read receipts")
			return
		}
	case "archive":
		if h.archive == nil {
			middleware.WriteError(w, http.StatusServiceUnavailable, "No receipt archive configured")
			return
		}
		receipts, err = h.archive.ReceiptsByDateRange(ctx, from, to)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to read receipt archive")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to read receipt archive")
			return
		}
	default:
		middleware.WriteError(w, http.StatusBadRequest, "Unsupported source")
		return
	}

	// Completed receipts only. The requested range is not a row filter: a
	// receipt dated outside it still lands in the buckets of its own date,
	// and receipts with no usable date stay in so the aggregator reports
	// them as faults instead of dropping them.
	accepted := make([]domain.Receipt, 0, len(receipts))
	for _, rcpt := range receipts {
		if rcpt.Status != domain.StatusCompleted {
			continue
		}
		accepted = append(accepted, rcpt)
	}

	sheet, faults := ledger.Build(accepted, from, to)

	switch query.Get("format") {
	case "", "json":
		middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"sheet":  sheet,
			"faults": faults,
		})
	case "xlsx":
		filename := fmt.Sprintf("ledger-%s-%s.xlsx", from.Format(ledgerDateFormat), to.Format(ledgerDateFormat))
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		if err := export.Write(sheet, w); err != nil {
			h.log.Error().Err(err).Msg("Failed to write ledger workbook")
		}
	default:
		middleware.WriteError(w, http.StatusBadRequest, "Unsupported format")
	}
}
