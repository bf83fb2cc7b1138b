package job

import "jobscraper/internal/core/listing"

// Job is the internal status record for one asynchronous scrape.
type Job struct {
	JobID   string           `json:"job_id"`
	Field   string           `json:"field"`
	Region  string           `json:"region"`
	Status  Status           `json:"status"`
	Outcome *listing.Outcome `json:"outcome,omitempty"`
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)
