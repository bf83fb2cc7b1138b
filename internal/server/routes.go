package server

import (
	"github.com/gofiber/fiber/v2"

	"jobscraper/internal/config"
	"jobscraper/internal/core/job"
	"jobscraper/internal/core/scrape"
	"jobscraper/internal/health"
	"jobscraper/internal/platform/redis"
)

type Dependencies struct {
	Config config.Config
	Scrape scrape.Runner
	Async  *scrape.Async
	Jobs   *job.Service
	Redis  *redis.Service
}

func RegisterRoutes(app *fiber.App, d Dependencies) *health.HealthHandler {
	healthHandler := health.NewHealthHandler(d.Redis)
	app.Get("/v1/health", health.HealthLimiter(), healthHandler.HandleHealth)

	api := app.Group("/v1", TokenAuth(d.Config.APIToken))

	h := scrape.NewHandler(d.Scrape, d.Async, d.Jobs, d.Config.PageLimitDefault, d.Config.PageLimitMax)
	api.Get("/search", h.HandleSearch)
	api.Post("/scrapes", h.HandleCreate)
	api.Get("/scrapes/:jobId", h.HandleGet)

	return healthHandler
}
