package scrape

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"jobscraper/internal/core/job"
	tasks "jobscraper/internal/platform/tasks"
)

const TaskTypeScrape = "scrape:task"

// Payload carries one queued scrape through the task broker.
type Payload struct {
	JobID    string `json:"job_id"`
	Field    string `json:"field"`
	Region   string `json:"region"`
	MaxPages int    `json:"max_pages"`
}

// Async ties the scrape service to the task queue and the job store.
type Async struct {
	svc   Runner
	jobs  *job.Service
	tasks *tasks.Client

	maxRetries int
}

func NewAsync(svc Runner, jobs *job.Service, t *tasks.Client, maxRetries int) *Async {
	return &Async{svc: svc, jobs: jobs, tasks: t, maxRetries: maxRetries}
}

// Enqueue registers a pending job and queues the scrape task.
func (a *Async) Enqueue(ctx context.Context, p Payload) (string, error) {
	p.JobID = uuid.NewString()
	if err := a.jobs.InitPending(ctx, p.JobID, p.Field, p.Region); err != nil {
		return "", err
	}
	body, _ := json.Marshal(p)
	if err := a.tasks.Enqueue(asynq.NewTask(TaskTypeScrape, body), "default", a.maxRetries); err != nil {
		return "", err
	}
	return p.JobID, nil
}

// HandleTask is the asynq worker entry point. The outcome, terminal or
// degraded, is always written back to the job store; the task itself
// only fails on broker-level problems so asynq does not re-run a scrape
// that already produced an outcome.
func (a *Async) HandleTask(ctx context.Context, task *asynq.Task) error {
	var p Payload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return err
	}
	if err := a.jobs.SetProcessing(ctx, p.JobID); err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	out := a.svc.Run(runCtx, Request{Field: p.Field, Region: p.Region, MaxPages: p.MaxPages})
	return a.jobs.Complete(ctx, p.JobID, out)
}
