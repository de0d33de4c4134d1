package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tsaito/receipt-ledger/internal/depreciation"
	"github.com/tsaito/receipt-ledger/internal/domain"
	"github.com/tsaito/receipt-ledger/internal/store"
	"github.com/tsaito/receipt-ledger/internal/validation"
)

// PipelineStep is a single stage of receipt processing.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	ReceiptID  string
	ImageURI   string
	MimeType   string
	ImageBytes []byte

	RawModelOutput map[string]interface{}

	Data       domain.ExtractedData
	Confidence domain.ConfidenceScore
	Validation validation.Result
	AssetNote  *depreciation.Note

	Receipt *domain.Receipt
}

// FetchImageStep loads the receipt image from object storage.
type FetchImageStep struct {
	Storage ImageStorage
}

func (s *FetchImageStep) Execute(ctx context.Context, state *PipelineState) error {
	img, err := s.Storage.Fetch(ctx, state.ImageURI)
	if err != nil {
		return fmt.Errorf("FetchImageStep: %w", err)
	}
	state.ImageBytes = img
	return nil
}

// ParseReceiptStep sends the image to the vision model.
type ParseReceiptStep struct {
	Parser VisionParser
}

func (s *ParseReceiptStep) Execute(ctx context.Context, state *PipelineState) error {
	raw, err := s.Parser.ParseReceipt(ctx, state.ImageBytes, state.MimeType)
	if err != nil {
		return fmt.Errorf("ParseReceiptStep: %w", err)
	}
	state.RawModelOutput = raw
	return nil
}

// TransformStep converts raw model output into typed extraction values.
type TransformStep struct{}

func (s *TransformStep) Execute(ctx context.Context, state *PipelineState) error {
	data, conf, err := transformModelOutput(state.RawModelOutput)
	if err != nil {
		return fmt.Errorf("TransformStep: %w", err)
	}
	state.Data = data
	state.Confidence = conf
	return nil
}

// ValidateStep runs field and arithmetic checks over the extraction.
type ValidateStep struct{}

func (s *ValidateStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Validation = validation.Validate(state.Data)
	return nil
}

// ClassifyAssetStep attaches a depreciation note when the receipt looks
// like an equipment purchase above the asset threshold.
type ClassifyAssetStep struct {
	Classifier *depreciation.Classifier
}

func (s *ClassifyAssetStep) Execute(ctx context.Context, state *PipelineState) error {
	if !s.Classifier.RequiresConsideration(state.Data) {
		return nil
	}
	asOf := state.Data.TransactionDate
	if asOf.IsZero() {
		asOf = time.Now()
	}
	note := s.Classifier.Note(state.Data.TotalAmount, asOf)
	if note == nil {
		return nil
	}
	state.AssetNote = note
	state.Validation.AddWarning(validation.WarnDepreciationRequired, map[string]interface{}{
		"amount": state.Data.TotalAmount,
		"method": string(note.Method),
	})
	return nil
}

// ReviewStep decides whether a human has to look at the receipt.
type ReviewStep struct {
	Policy validation.ReviewPolicy
}

func (s *ReviewStep) Execute(ctx context.Context, state *PipelineState) error {
	needsReview := s.Policy.NeedsReview(state.Confidence, state.Validation)

	status := domain.StatusCompleted
	if !state.Validation.IsValid {
		status = domain.StatusManual
	}

	now := time.Now().UTC()
	receipt := &domain.Receipt{
		ID:          state.ReceiptID,
		Status:      status,
		ImageURI:    state.ImageURI,
		CreatedAt:   now,
		UpdatedAt:   now,
		Data:        state.Data,
		Confidence:  state.Confidence,
		NeedsReview: needsReview,
	}
	if state.AssetNote != nil {
		receipt.Notes = state.AssetNote.Text
	}
	state.Receipt = receipt
	return nil
}

// StoreReceiptStep persists the processed receipt.
type StoreReceiptStep struct {
	Store store.ReceiptStore
}

func (s *StoreReceiptStep) Execute(ctx context.Context, state *PipelineState) error {
	if err := s.Store.Save(ctx, state.Receipt); err != nil {
		return fmt.Errorf("StoreReceiptStep: %w", err)
	}
	return nil
}

// ArchiveReceiptStep writes the receipt to the warehouse. Optional.
type ArchiveReceiptStep struct {
	Archiver Archiver
	Log      zerolog.Logger
}

func (s *ArchiveReceiptStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Archiver == nil {
		return nil
	}
	if err := s.Archiver.ArchiveReceipt(ctx, state.Receipt); err != nil {
		// Archival is best effort. The receipt is already stored.
		s.Log.Warn().Err(err).Str("receipt_id", state.ReceiptID).Msg("archive failed")
	}
	return nil
}

// NotifyReviewStep pushes review-flagged receipts to the notifier. Optional.
type NotifyReviewStep struct {
	Notifier ReviewNotifier
	Log      zerolog.Logger
}

func (s *NotifyReviewStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Notifier == nil || !state.Receipt.NeedsReview {
		return nil
	}
	if err := s.Notifier.NotifyReview(ctx, state.Receipt); err != nil {
		s.Log.Warn().Err(err).Str("receipt_id", state.ReceiptID).Msg("review notification failed")
	}
	return nil
}
