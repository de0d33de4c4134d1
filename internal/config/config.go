// Package config loads service configuration from the environment, with an
// optional .env file for local development. The tax-rule constants live
// here rather than inside the classifier so the host (and tests) can
// override them when the law changes.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/tsaito/receipt-ledger/internal/depreciation"
)

// Config is the full service configuration.
type Config struct {
	Port int `envconfig:"PORT" default:"8080"`

	// GCSBucket holds uploaded receipt images. Empty disables uploads.
	GCSBucket string `envconfig:"GCS_BUCKET"`

	// CredentialsFile is an optional service-account key for the Google
	// clients. Empty falls back to Application Default Credentials.
	CredentialsFile string `envconfig:"GOOGLE_CREDENTIALS_FILE"`

	BigQueryProject string `envconfig:"BIGQUERY_PROJECT"`
	BigQueryDataset string `envconfig:"BIGQUERY_DATASET" default:"bookkeeping"`

	GeminiModel string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`

	NotionToken      string `envconfig:"NOTION_TOKEN"`
	NotionDatabaseID string `envconfig:"NOTION_REVIEW_DATABASE_ID"`

	TaxRules TaxRules
}

// TaxRules carries the yen thresholds and cutover date for the depreciation
// classifier.
type TaxRules struct {
	EquipmentThreshold    int64  `envconfig:"EQUIPMENT_THRESHOLD" default:"100000"`
	SmallAssetLimitBefore int64  `envconfig:"SMALL_ASSET_LIMIT_BEFORE" default:"200000"`
	SmallAssetLimitAfter  int64  `envconfig:"SMALL_ASSET_LIMIT_AFTER" default:"300000"`
	SmallAssetCutover     string `envconfig:"SMALL_ASSET_CUTOVER" default:"2026-04-01"`
	LumpSumBand           int64  `envconfig:"LUMP_SUM_BAND" default:"200000"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; its absence is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if _, err := cfg.TaxRules.cutoverDate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

func (t TaxRules) cutoverDate() (time.Time, error) {
	d, err := time.Parse("2006-01-02", t.SmallAssetCutover)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid SMALL_ASSET_CUTOVER %q: %w", t.SmallAssetCutover, err)
	}
	return d, nil
}

// Depreciation materializes the rule table consumed by the classifier.
// Load has already checked the cutover date, so parsing cannot fail here.
func (t TaxRules) Depreciation() depreciation.Config {
	cutover, _ := t.cutoverDate()
	return depreciation.Config{
		EquipmentThreshold: t.EquipmentThreshold,
		SmallAssetLimits: []depreciation.LimitEntry{
			{EffectiveFrom: time.Time{}, Limit: t.SmallAssetLimitBefore},
			{EffectiveFrom: cutover, Limit: t.SmallAssetLimitAfter},
		},
		LumpSumBand: t.LumpSumBand,
	}
}
