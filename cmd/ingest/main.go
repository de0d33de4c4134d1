package main

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/tsaito/receipt-ledger/internal/config"
	"github.com/tsaito/receipt-ledger/internal/depreciation"
	"github.com/tsaito/receipt-ledger/internal/gcs"
	"github.com/tsaito/receipt-ledger/internal/logger"
	"github.com/tsaito/receipt-ledger/internal/pipeline"
	storemem "github.com/tsaito/receipt-ledger/internal/store/inmemory"
	"github.com/tsaito/receipt-ledger/internal/validation"
)

// One-shot CLI: upload a local receipt image and run the extraction
// pipeline over it synchronously.
func main() {
	log := logger.New()

	var (
		imagePath = flag.String("image", "", "Local path of the receipt image to ingest")
		imageURI  = flag.String("image-uri", "", "gs:// URI of an already uploaded image")
	)
	flag.Parse()

	if *imagePath == "" && *imageURI == "" {
		log.Fatal().Msg("Either --image or --image-uri is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	bucket, err := gcs.NewBucket(ctx, cfg.GCSBucket, cfg.CredentialsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create GCS bucket client")
	}
	defer bucket.Close()

	receiptID := uuid.New().String()
	mimeType := "image/jpeg"

	uri := *imageURI
	if uri == "" {
		f, err := os.Open(*imagePath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open image")
		}
		defer f.Close()

		if t := mime.TypeByExtension(filepath.Ext(*imagePath)); t != "" {
			mimeType = t
		}
		objectName := fmt.Sprintf("receipts/%s/%s-%s", time.Now().Format("2006/01/02"), receiptID, filepath.Base(*imagePath))
		uri, err = bucket.Upload(ctx, objectName, mimeType, f)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to upload image")
		}
		log.Info().Str("image_uri", uri).Msg("Image uploaded")
	}

	processor := pipeline.NewProcessor(pipeline.Deps{
		Storage:    bucket,
		Parser:     pipeline.NewGeminiParser(cfg.GeminiModel),
		Store:      storemem.NewStore(),
		Classifier: depreciation.NewClassifier(cfg.TaxRules.Depreciation()),
		Policy:     validation.DefaultReviewPolicy,
		Log:        log,
	})

	rcpt, err := processor.ProcessReceipt(ctx, receiptID, uri, mimeType)
	if err != nil {
		log.Fatal().Err(err).Msg("Extraction failed")
	}

	fmt.Printf("receipt %s: status=%s needs_review=%v issuer=%q total=%d\n",
		rcpt.ID, rcpt.Status, rcpt.NeedsReview, rcpt.Data.IssuerName, rcpt.Data.TotalAmount)
}
