package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tsaito/receipt-ledger/internal/config"
	"github.com/tsaito/receipt-ledger/internal/depreciation"
	"github.com/tsaito/receipt-ledger/internal/gcs"
	infraBQ "github.com/tsaito/receipt-ledger/internal/infra/bigquery"
	"github.com/tsaito/receipt-ledger/internal/jobs"
	jobsmem "github.com/tsaito/receipt-ledger/internal/jobs/inmemory"
	"github.com/tsaito/receipt-ledger/internal/logger"
	"github.com/tsaito/receipt-ledger/internal/notionsync"
	"github.com/tsaito/receipt-ledger/internal/pipeline"
	storemem "github.com/tsaito/receipt-ledger/internal/store/inmemory"
	"github.com/tsaito/receipt-ledger/internal/validation"
)

// Standalone extraction worker. Runs its own queue; with a shared broker
// (Cloud Tasks, Pub/Sub) this process would scale independently of the API.
func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bucket, err := gcs.NewBucket(ctx, cfg.GCSBucket, cfg.CredentialsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create GCS bucket client")
	}
	defer bucket.Close()

	var archiver pipeline.Archiver
	if cfg.BigQueryProject != "" {
		repo, err := infraBQ.NewRepository(ctx, cfg.BigQueryProject, cfg.BigQueryDataset, cfg.CredentialsFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery repository")
		}
		defer repo.Close()
		archiver = repo
	}

	var notifier pipeline.ReviewNotifier
	if cfg.NotionToken != "" && cfg.NotionDatabaseID != "" {
		notifier = notionsync.NewSyncer(notionsync.NewNotionClient(cfg.NotionToken), cfg.NotionDatabaseID)
	}

	processor := pipeline.NewProcessor(pipeline.Deps{
		Storage:    bucket,
		Parser:     pipeline.NewGeminiParser(cfg.GeminiModel),
		Store:      storemem.NewStore(),
		Classifier: depreciation.NewClassifier(cfg.TaxRules.Depreciation()),
		Policy:     validation.DefaultReviewPolicy,
		Archiver:   archiver,
		Notifier:   notifier,
		Log:        log,
	})

	jobStore := jobsmem.NewStore()
	jobQueue := jobsmem.NewQueue(100, 5, jobStore)

	handler := func(ctx context.Context, job jobs.Job) error {
		extractJob, ok := job.(*jobs.ExtractReceiptJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}
		_, err := processor.ProcessReceipt(ctx, extractJob.ReceiptID, extractJob.ImageURI, extractJob.MimeType)
		return err
	}

	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Msg("Worker service started, waiting for jobs...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Queue shutdown failed")
	}

	log.Info().Msg("Worker service stopped")
}
