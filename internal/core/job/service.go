package job

import (
	"context"
	"fmt"

	"jobscraper/internal/core/listing"
	rds "jobscraper/internal/platform/redis"
)

// Service stores async scrape-job status in redis. Records are
// ephemeral: terminal states live for an hour, in-flight ones for ten
// minutes.
type Service struct{ redis *rds.Service }

func NewService(redis *rds.Service) *Service { return &Service{redis: redis} }

func (s *Service) Get(ctx context.Context, jobID string) (*Job, error) {
	var j Job
	if err := s.redis.CacheGet(ctx, key(jobID), &j); err != nil {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}
	return &j, nil
}

func (s *Service) InitPending(ctx context.Context, jobID, field, region string) error {
	return s.store(ctx, Job{JobID: jobID, Field: field, Region: region, Status: StatusPending})
}

func (s *Service) SetProcessing(ctx context.Context, jobID string) error {
	j, err := s.Get(ctx, jobID)
	if err != nil {
		return err
	}
	j.Status = StatusProcessing
	return s.store(ctx, *j)
}

// Complete records the outcome. The job status mirrors the outcome's
// terminal status: anything that produced postings counts as completed.
func (s *Service) Complete(ctx context.Context, jobID string, out listing.Outcome) error {
	j, err := s.Get(ctx, jobID)
	if err != nil {
		j = &Job{JobID: jobID}
	}
	if out.Status == listing.StatusFailed {
		j.Status = StatusFailed
	} else {
		j.Status = StatusCompleted
	}
	j.Outcome = &out
	return s.store(ctx, *j)
}

func (s *Service) store(ctx context.Context, j Job) error {
	return s.redis.CacheSet(ctx, key(j.JobID), j, ttl(j.Status))
}

func key(id string) string { return "scrapejob:" + id }

func ttl(s Status) int {
	if s == StatusCompleted || s == StatusFailed {
		return 3600
	}
	return 600
}
