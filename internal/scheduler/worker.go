package scheduler

import (
	"context"
	"errors"
	"fmt"

	"leadscope_backend/internal/crm"
	"leadscope_backend/internal/leads"
	"leadscope_backend/platform/config"
	"leadscope_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// CRMSyncer performs one lead push.
type CRMSyncer interface {
	Sync(ctx context.Context, leadID uuid.UUID, target string) (string, error)
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	crm    CRMSyncer
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, syncer CRMSyncer, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
		crm:    syncer,
		log:    log,
	}
	w.mux.HandleFunc(TaskCRMSync, w.handleCRMSync)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// handleCRMSync retries transient failures. Bad payloads, deleted leads and
// targets without credentials are not retried.
func (w *Worker) handleCRMSync(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseCRMSyncPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	_, err = w.crm.Sync(ctx, leadID, payload.Target)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, leads.ErrLeadNotFound):
		w.log.Warn("crm sync skipped, lead deleted", "lead_id", leadID, "target", payload.Target)
		return nil
	case errors.Is(err, crm.ErrTargetDisabled), errors.Is(err, crm.ErrUnknownTarget):
		w.log.Warn("crm sync skipped", "lead_id", leadID, "target", payload.Target, "reason", err.Error())
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	default:
		return err
	}
}

var _ crm.Enqueuer = (*Client)(nil)
var _ CRMSyncer = (*crm.Service)(nil)
