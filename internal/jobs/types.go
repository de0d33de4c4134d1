// Package jobs defines the asynchronous work items that drive receipt
// extraction and the queue abstractions they flow through.
package jobs

import (
	"context"
	"time"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeExtractReceipt represents a receipt extraction job.
	JobTypeExtractReceipt JobType = "extract_receipt"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed permanently.
	JobStatusFailed JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and is being retried.
	JobStatusRetrying JobStatus = "retrying"
)

// ExtractReceiptJob asks a worker to run the extraction pipeline over one
// uploaded receipt image.
type ExtractReceiptJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// ReceiptID is the receipt the extraction result is stored under.
	ReceiptID string `json:"receipt_id"`

	// ImageURI is the gs:// URI of the uploaded image.
	ImageURI string `json:"image_uri"`

	// MimeType is the content type of the uploaded image.
	MimeType string `json:"mime_type"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	// RetryCount is the number of times this job has been retried.
	RetryCount int `json:"retry_count"`

	// MaxRetries is the maximum number of retries allowed.
	MaxRetries int `json:"max_retries"`
}

// Job is a generic interface for all job types.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *ExtractReceiptJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *ExtractReceiptJob) GetType() JobType {
	return JobTypeExtractReceipt
}

// GetStatus implements the Job interface.
func (j *ExtractReceiptJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher defines the interface for publishing jobs to a queue.
// The abstraction allows swapping the in-memory queue for Cloud Tasks or
// Pub/Sub without touching the API layer.
type Publisher interface {
	// PublishExtractReceipt publishes a receipt extraction job.
	PublishExtractReceipt(ctx context.Context, job *ExtractReceiptJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job.
// It should return an error if the job failed and should be retried.
type JobHandler func(ctx context.Context, job Job) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *ExtractReceiptJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*ExtractReceiptJob, error)

	// ListJobs retrieves jobs with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*ExtractReceiptJob, error)

	// UpdateJobStatus updates the status of a job.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// ReceiptID filters jobs by receipt ID.
	ReceiptID string

	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
