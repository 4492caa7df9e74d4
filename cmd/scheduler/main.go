// Command scheduler runs the background worker that pushes leads to the
// configured CRMs.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"leadscope_backend/internal/crm"
	"leadscope_backend/internal/leads"
	leadrepo "leadscope_backend/internal/leads/repository"
	"leadscope_backend/internal/scheduler"
	"leadscope_backend/platform/config"
	"leadscope_backend/platform/db"
	"leadscope_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	if err := run(cfg, log); err != nil {
		log.Error("scheduler stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	if cfg.GetRedisURL() == "" {
		return errors.New("REDIS_URL is required for the scheduler")
	}
	log.Info("starting scheduler", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	syncStore := leads.NewPublicService(leadrepo.New(pool))
	crmService := crm.NewService(syncStore, cfg, log)
	for _, target := range []string{crm.TargetSalesforce, crm.TargetHubSpot} {
		if !crmService.Enabled(target) {
			log.Warn("CRM target not configured; its sync jobs will be dropped", "target", target)
		}
	}

	worker, err := scheduler.NewWorker(cfg, crmService, log)
	if err != nil {
		return fmt.Errorf("init worker: %w", err)
	}
	worker.Run(ctx)
	return nil
}
