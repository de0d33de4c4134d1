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

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
	log   zerolog.Logger
}

// NewPipeline creates a pipeline from the given steps.
func NewPipeline(log zerolog.Logger, steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps, log: log}
}

// Execute runs all steps sequentially. The first failing step aborts the
// run; state written by earlier steps is left intact for the caller.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// Deps bundles everything the receipt pipeline needs. Archiver and
// Notifier may be nil to disable those stages.
type Deps struct {
	Storage    ImageStorage
	Parser     VisionParser
	Store      store.ReceiptStore
	Classifier *depreciation.Classifier
	Policy     validation.ReviewPolicy
	Archiver   Archiver
	Notifier   ReviewNotifier
	Log        zerolog.Logger
}

// NewReceiptPipeline wires the standard stages for processing a single
// receipt image end to end.
func NewReceiptPipeline(d Deps) *Pipeline {
	return NewPipeline(d.Log,
		&FetchImageStep{Storage: d.Storage},
		&ParseReceiptStep{Parser: d.Parser},
		&TransformStep{},
		&ValidateStep{},
		&ClassifyAssetStep{Classifier: d.Classifier},
		&ReviewStep{Policy: d.Policy},
		&StoreReceiptStep{Store: d.Store},
		&ArchiveReceiptStep{Archiver: d.Archiver, Log: d.Log},
		&NotifyReviewStep{Notifier: d.Notifier, Log: d.Log},
	)
}

// Processor runs the receipt pipeline and records terminal failures on
// the stored receipt so a stuck job never leaves a receipt in limbo.
type Processor struct {
	pipeline *Pipeline
	store    store.ReceiptStore
	log      zerolog.Logger
}

// NewProcessor builds a Processor around the standard pipeline.
func NewProcessor(d Deps) *Processor {
	return &Processor{
		pipeline: NewReceiptPipeline(d),
		store:    d.Store,
		log:      d.Log,
	}
}

// ProcessReceipt runs the full extraction for one uploaded image. On
// pipeline failure the receipt is stored with StatusFailed and the error
// message in Notes, then the error is returned for the job layer to retry.
func (p *Processor) ProcessReceipt(ctx context.Context, receiptID, imageURI, mimeType string) (*domain.Receipt, error) {
	p.log.Info().
		Str("receipt_id", receiptID).
		Str("image_uri", imageURI).
		Msg("processing receipt")

	state := &PipelineState{
		ReceiptID: receiptID,
		ImageURI:  imageURI,
		MimeType:  mimeType,
	}
	if err := p.pipeline.Execute(ctx, state); err != nil {
		p.markFailed(ctx, state, err)
		return nil, fmt.Errorf("ProcessReceipt: %w", err)
	}

	p.log.Info().
		Str("receipt_id", receiptID).
		Str("status", string(state.Receipt.Status)).
		Bool("needs_review", state.Receipt.NeedsReview).
		Msg("receipt processed")
	return state.Receipt, nil
}

func (p *Processor) markFailed(ctx context.Context, state *PipelineState, cause error) {
	now := time.Now().UTC()
	receipt := &domain.Receipt{
		ID:        state.ReceiptID,
		Status:    domain.StatusFailed,
		ImageURI:  state.ImageURI,
		CreatedAt: now,
		UpdatedAt: now,
		Notes:     cause.Error(),
	}
	if existing, err := p.store.Get(ctx, state.ReceiptID); err == nil {
		receipt.CreatedAt = existing.CreatedAt
	}
	if err := p.store.Save(ctx, receipt); err != nil {
		p.log.Error().Err(err).Str("receipt_id", state.ReceiptID).Msg("failed to record receipt failure")
	}
}
