package main

import (
	"bytes"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	"jobscraper/internal/config"
	"jobscraper/internal/core/job"
	"jobscraper/internal/core/karriere"
	"jobscraper/internal/core/scrape"
	"jobscraper/internal/logger"
	rds "jobscraper/internal/platform/redis"
	tasks "jobscraper/internal/platform/tasks"
	"jobscraper/internal/server"
	"jobscraper/internal/worker"
)

func main() {
	cfg := config.Load()
	log.Printf("[jobscraper] starting at %s (env=%s)\n", cfg.HTTPAddr, cfg.AppEnv)

	logr := logger.New("main")

	siteProfile, err := karriere.LoadProfile(cfg.SiteProfileFile)
	if err != nil {
		log.Fatalf("site profile: %v", err)
	}
	site := karriere.New(siteProfile)

	// Redis client
	redisSvc, err := rds.New(rds.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer redisSvc.Close()

	// Asynq client and server. Worker concurrency matches the browser
	// budget: each task holds a full browser process while it runs.
	taskClient := tasks.New(redisSvc)
	asynqServer := asynq.NewServer(redisSvc.AsynqRedisOpt(), asynq.Config{
		Concurrency: cfg.ScrapeConcurrency,
		Queues:      map[string]int{"default": 1},
	})

	// Core services
	jobSvc := job.NewService(redisSvc)
	scrapeSvc := scrape.NewService(cfg, site)
	asyncSvc := scrape.NewAsync(scrapeSvc, jobSvc, taskClient, cfg.TaskMaxRetries)

	// Worker mux
	mux := worker.NewMux()
	mux.HandleFunc(scrape.TaskTypeScrape, asyncSvc.HandleTask)

	go func() {
		if err := asynqServer.Start(mux.Mux()); err != nil {
			log.Printf("[worker] stopped: %v\n", err)
		}
	}()

	// HTTP server
	app := fiber.New(fiber.Config{
		AppName: "Karriere Scraper Engine",
		JSONEncoder: func(v interface{}) ([]byte, error) {
			var buf bytes.Buffer
			encoder := json.NewEncoder(&buf)
			encoder.SetEscapeHTML(false)
			if err := encoder.Encode(v); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		},
	})

	deps := server.Dependencies{
		Config: cfg,
		Scrape: scrapeSvc,
		Async:  asyncSvc,
		Jobs:   jobSvc,
		Redis:  redisSvc,
	}
	healthHandler := server.RegisterRoutes(app, deps)
	healthHandler.SetReady()

	// Graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdown
		logr.LogInfo("Shutting down...")
		asynqServer.Shutdown()
		_ = app.ShutdownWithTimeout(5 * time.Second)
	}()

	if err := app.Listen(cfg.HTTPAddr); err != nil {
		log.Fatalf("server listen: %v", err)
	}
}
