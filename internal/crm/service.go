package crm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"leadscope_backend/internal/crm/client"
	"leadscope_backend/internal/leads"
	"leadscope_backend/platform/apperr"
	"leadscope_backend/platform/config"
	"leadscope_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type target struct {
	push     PushFunc
	record   func(ctx context.Context, id uuid.UUID, remoteID string) error
	existing func(l leads.Lead) *string
}

// Service performs lead pushes. Targets without credentials are left out.
type Service struct {
	store   leads.SyncStore
	targets map[string]target
	log     *logger.Logger
}

// NewService builds the pushers enabled in cfg.
func NewService(store leads.SyncStore, cfg config.CRMConfig, log *logger.Logger) *Service {
	pushers := map[string]PushFunc{}
	if cfg.IsSalesforceEnabled() {
		pushers[TargetSalesforce] = client.NewSalesforce(cfg.GetSalesforceInstanceURL(), cfg.GetSalesforceAccessToken()).CreateLead
	}
	if cfg.IsHubSpotEnabled() {
		pushers[TargetHubSpot] = client.NewHubSpot(cfg.GetHubSpotAccessToken()).CreateContact
	}
	return NewServiceWithPushers(store, pushers, log)
}

// NewServiceWithPushers wires explicit push functions keyed by target name.
func NewServiceWithPushers(store leads.SyncStore, pushers map[string]PushFunc, log *logger.Logger) *Service {
	s := &Service{store: store, targets: map[string]target{}, log: log}
	if push, ok := pushers[TargetSalesforce]; ok {
		s.targets[TargetSalesforce] = target{
			push:     push,
			record:   store.RecordSalesforceID,
			existing: func(l leads.Lead) *string { return l.SalesforceID },
		}
	}
	if push, ok := pushers[TargetHubSpot]; ok {
		s.targets[TargetHubSpot] = target{
			push:     push,
			record:   store.RecordHubSpotID,
			existing: func(l leads.Lead) *string { return l.HubSpotID },
		}
	}
	return s
}

// Enabled reports whether name has credentials configured.
func (s *Service) Enabled(name string) bool {
	_, ok := s.targets[name]
	return ok
}

// Sync pushes one lead to one target and stores the remote id. A lead that
// already carries an id for the target is not pushed again.
func (s *Service) Sync(ctx context.Context, leadID uuid.UUID, name string) (string, error) {
	t, ok := s.targets[name]
	if !ok {
		if name != TargetSalesforce && name != TargetHubSpot {
			return "", ErrUnknownTarget
		}
		return "", ErrTargetDisabled
	}

	lead, err := s.store.GetLeadForSync(ctx, leadID)
	if err != nil {
		return "", err
	}
	if existing := t.existing(lead); existing != nil && *existing != "" {
		return *existing, nil
	}

	remoteID, err := t.push(ctx, ContactFromLead(lead))
	if err != nil {
		s.log.ExternalCallFailed(name, "push_lead", err)
		return "", fmt.Errorf("push lead to %s: %w", name, err)
	}
	if err := t.record(ctx, leadID, remoteID); err != nil {
		return "", err
	}
	s.log.Info("lead synced to crm", "lead_id", leadID, "target", name, "remote_id", remoteID)
	return remoteID, nil
}

// SyncAll pushes to every target concurrently and returns the remote ids.
// It is used when no job queue is configured.
func (s *Service) SyncAll(ctx context.Context, leadID uuid.UUID, names []string) (map[string]string, error) {
	var mu sync.Mutex
	out := make(map[string]string, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		g.Go(func() error {
			id, err := s.Sync(gctx, leadID, name)
			if err != nil {
				return err
			}
			mu.Lock()
			out[name] = id
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, leads.ErrLeadNotFound) {
			return nil, apperr.NotFound("lead not found")
		}
		return nil, apperr.Upstream("crm sync failed", err)
	}
	return out, nil
}
