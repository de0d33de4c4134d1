// Package handlers implements the HTTP endpoints for uploading receipts,
// tracking extraction jobs, and exporting the ledger.
package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tsaito/receipt-ledger/internal/api/middleware"
	"github.com/tsaito/receipt-ledger/internal/domain"
	"github.com/tsaito/receipt-ledger/internal/gcs"
	"github.com/tsaito/receipt-ledger/internal/jobs"
	"github.com/tsaito/receipt-ledger/internal/store"
)

// ReceiptsHandler handles receipt upload and retrieval endpoints.
type ReceiptsHandler struct {
	store     store.ReceiptStore
	bucket    *gcs.Bucket
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewReceiptsHandler creates a new receipts handler.
func NewReceiptsHandler(st store.ReceiptStore, bucket *gcs.Bucket, publisher jobs.Publisher, log zerolog.Logger) *ReceiptsHandler {
	return &ReceiptsHandler{
		store:     st,
		bucket:    bucket,
		publisher: publisher,
		log:       log,
	}
}

// UploadReceipt handles POST /api/receipts/upload.
// The request body is the raw image; filename and content type come from
// the query string and headers. The image lands in GCS, a pending receipt
// record is created, and an extraction job is enqueued.
func (h *ReceiptsHandler) UploadReceipt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.bucket == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Uploads are not configured")
		return
	}

	filename := filepath.Base(r.URL.Query().Get("filename"))
	if filename == "" || filename == "." {
		filename = "receipt.jpg"
	}
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	receiptID := uuid.New().String()
	objectName := fmt.Sprintf("receipts/%s/%s-%s", time.Now().Format("2006/01/02"), receiptID, filename)

	imageURI, err := h.bucket.Upload(ctx, objectName, contentType, r.Body)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to upload receipt image")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to upload receipt image")
		return
	}

	now := time.Now().UTC()
	rcpt := &domain.Receipt{
		ID:        receiptID,
		Status:    domain.StatusPending,
		ImageURI:  imageURI,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.store.Save(ctx, rcpt); err != nil {
		h.log.Error().Err(err).Msg("Failed to save receipt record")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save receipt record")
		return
	}

	job := &jobs.ExtractReceiptJob{
		ReceiptID: receiptID,
		ImageURI:  imageURI,
		MimeType:  contentType,
	}
	if err := h.publisher.PublishExtractReceipt(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue extraction job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue extraction job")
		return
	}

	h.log.Info().
		Str("receipt_id", receiptID).
		Str("job_id", job.JobID).
		Str("image_uri", imageURI).
		Msg("Receipt uploaded and extraction enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"receipt_id": receiptID,
		"job_id":     job.JobID,
		"image_uri":  imageURI,
		"status":     string(rcpt.Status),
	})
}

// ListReceipts handles GET /api/receipts.
func (h *ReceiptsHandler) ListReceipts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	filter := store.Filter{
		Status: domain.ReceiptStatus(query.Get("status")),
	}
	if v := query.Get("needs_review"); v != "" {
		needsReview, err := strconv.ParseBool(v)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid needs_review value")
			return
		}
		filter.NeedsReview = &needsReview
	}
	if v := query.Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			filter.Limit = limit
		}
	}
	if v := query.Get("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil {
			filter.Offset = offset
		}
	}

	receipts, err := h.store.List(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list receipts")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list receipts")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"receipts": receipts,
		"count":    len(receipts),
	})
}

// GetReceipt handles GET /api/receipts/{id}.
func (h *ReceiptsHandler) GetReceipt(w http.ResponseWriter, r *http.Request, receiptID string) {
	ctx := r.Context()

	rcpt, err := h.store.Get(ctx, receiptID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Receipt not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, rcpt)
}
