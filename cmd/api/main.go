package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tsaito/receipt-ledger/internal/api/handlers"
	"github.com/tsaito/receipt-ledger/internal/api/middleware"
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

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()

	var bucket *gcs.Bucket
	if cfg.GCSBucket != "" {
		bucket, err = gcs.NewBucket(ctx, cfg.GCSBucket, cfg.CredentialsFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create GCS bucket client")
		}
		defer bucket.Close()
	} else {
		log.Warn().Msg("No GCS bucket configured - receipt uploads will be disabled")
	}

	var archiver pipeline.Archiver
	var archive handlers.ReceiptArchive
	if cfg.BigQueryProject != "" {
		repo, err := infraBQ.NewRepository(ctx, cfg.BigQueryProject, cfg.BigQueryDataset, cfg.CredentialsFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery repository")
		}
		defer repo.Close()
		archiver = repo
		archive = repo
	}

	var notifier pipeline.ReviewNotifier
	if cfg.NotionToken != "" && cfg.NotionDatabaseID != "" {
		notifier = notionsync.NewSyncer(notionsync.NewNotionClient(cfg.NotionToken), cfg.NotionDatabaseID)
	}

	receiptStore := storemem.NewStore()
	jobStore := jobsmem.NewStore()
	jobQueue := jobsmem.NewQueue(100, 5, jobStore)

	var storage pipeline.ImageStorage
	if bucket != nil {
		storage = bucket
	}

	processor := pipeline.NewProcessor(pipeline.Deps{
		Storage:    storage,
		Parser:     pipeline.NewGeminiParser(cfg.GeminiModel),
		Store:      receiptStore,
		Classifier: depreciation.NewClassifier(cfg.TaxRules.Depreciation()),
		Policy:     validation.DefaultReviewPolicy,
		Archiver:   archiver,
		Notifier:   notifier,
		Log:        log,
	})

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		extractJob, ok := job.(*jobs.ExtractReceiptJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}
		_, err := processor.ProcessReceipt(ctx, extractJob.ReceiptID, extractJob.ImageURI, extractJob.MimeType)
		return err
	}

	go func() {
		log.Info().Msg("Starting extraction worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Extraction worker stopped with error")
		}
	}()

	receiptsHandler := handlers.NewReceiptsHandler(receiptStore, bucket, jobQueue, log)
	ledgerHandler := handlers.NewLedgerHandler(receiptStore, archive, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/receipts/upload", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			receiptsHandler.UploadReceipt(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/receipts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			receiptsHandler.ListReceipts(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/receipts/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			receiptID := strings.TrimPrefix(r.URL.Path, "/api/receipts/")
			if receiptID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Receipt ID is required")
				return
			}
			receiptsHandler.GetReceipt(w, r, receiptID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/ledger", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			ledgerHandler.ExportLedger(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cancelWorker()
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Job queue shutdown failed")
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("API server stopped")
}
