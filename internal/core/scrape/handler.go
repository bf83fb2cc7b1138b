package scrape

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"jobscraper/internal/core/job"
	"jobscraper/internal/core/listing"
	"jobscraper/internal/utils/parser"
)

// Runner executes one scrape job and always yields an outcome.
type Runner interface {
	Run(ctx context.Context, req Request) listing.Outcome
}

type Handler struct {
	svc   Runner
	async *Async
	jobs  *job.Service

	pageLimitDefault int
	pageLimitMax     int
}

func NewHandler(svc Runner, async *Async, jobs *job.Service, pageLimitDefault, pageLimitMax int) *Handler {
	return &Handler{svc: svc, async: async, jobs: jobs, pageLimitDefault: pageLimitDefault, pageLimitMax: pageLimitMax}
}

type searchParams struct {
	Field     string `form:"field"`
	Region    string `form:"region"`
	PageLimit int    `form:"page_limit"`
}

type searchResponse struct {
	Success    bool              `json:"success"`
	Field      string            `json:"field"`
	Region     string            `json:"region"`
	Count      int               `json:"count"`
	Jobs       []listing.Posting `json:"jobs"`
	Pages      int               `json:"pages_visited"`
	Status     listing.Status    `json:"status"`
	CapReached bool              `json:"cap_reached"`
	Error      string            `json:"error,omitempty"`
	Meta       meta              `json:"meta"`
}

type meta struct {
	TS int64 `json:"ts"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// HandleSearch runs a scrape synchronously: the request blocks until
// the outcome is ready. The caller always receives the structured
// outcome, including for failed jobs.
func (h *Handler) HandleSearch(c *fiber.Ctx) error {
	var p searchParams
	if err := parser.ParseQuery(c, &p); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid query"})
	}
	if strings.TrimSpace(p.Field) == "" || strings.TrimSpace(p.Region) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "field and region are required"})
	}

	out := h.svc.Run(c.Context(), Request{
		Field:    p.Field,
		Region:   p.Region,
		MaxPages: h.clampPages(p.PageLimit),
	})

	resp := searchResponse{
		Success:    out.Status != listing.StatusFailed,
		Field:      p.Field,
		Region:     p.Region,
		Count:      len(out.Postings),
		Jobs:       out.Postings,
		Pages:      out.Pages,
		Status:     out.Status,
		CapReached: out.CapReached,
		Error:      out.Error,
		Meta:       meta{TS: time.Now().UTC().Unix()},
	}
	return c.Status(statusCode(out)).JSON(resp)
}

type createRequest struct {
	Field     string `json:"field"`
	Region    string `json:"region"`
	PageLimit int    `json:"page_limit"`
}

// HandleCreate queues an asynchronous scrape and returns its job id.
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid body"})
	}
	if strings.TrimSpace(req.Field) == "" || strings.TrimSpace(req.Region) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "field and region are required"})
	}
	id, err := h.async.Enqueue(c.Context(), Payload{
		Field:    req.Field,
		Region:   req.Region,
		MaxPages: h.clampPages(req.PageLimit),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "job_id": id})
}

// HandleGet returns the status (and, when terminal, the outcome) of an
// asynchronous scrape.
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	id := c.Params("jobId")
	j, err := h.jobs.Get(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "not_found"})
	}
	return c.JSON(fiber.Map{"success": true, "job": j})
}

// clampPages applies the configured default and upper bound. Page
// validation happens here at the boundary, not inside the core.
func (h *Handler) clampPages(n int) int {
	if n <= 0 {
		return h.pageLimitDefault
	}
	if h.pageLimitMax > 0 && n > h.pageLimitMax {
		return h.pageLimitMax
	}
	return n
}

// statusCode maps outcome status to HTTP. Partial results and completed
// runs are successes; a job that collected nothing maps by cause.
func statusCode(out listing.Outcome) int {
	if out.Status != listing.StatusFailed {
		return fiber.StatusOK
	}
	msg := strings.ToLower(out.Error)
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return fiber.StatusGatewayTimeout
	case strings.Contains(msg, "launch"):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusBadGateway
	}
}
