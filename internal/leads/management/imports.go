package management

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"leadscope_backend/internal/events"
	"leadscope_backend/internal/leads/transport"
	"leadscope_backend/platform/apperr"
	"leadscope_backend/platform/validator"

	"github.com/google/uuid"
)

// maxReportedImportErrors caps the error list returned to the client.
const maxReportedImportErrors = 10

// Import creates leads row by row. Existing (username, platform) pairs are
// reported as failures and left untouched. source names the origin for the
// LeadsImported event, e.g. "csv" or "scrape".
func (s *Service) Import(ctx context.Context, userID uuid.UUID, rows []transport.LeadInput, source string) (transport.ImportResponse, error) {
	resp := transport.ImportResponse{Errors: []string{}}

	for idx, row := range rows {
		rowErr := s.importRow(ctx, userID, row)
		if rowErr == nil {
			resp.Imported++
			continue
		}
		if ctx.Err() != nil {
			return resp, ctx.Err()
		}
		resp.Failed++
		if len(resp.Errors) < maxReportedImportErrors {
			resp.Errors = append(resp.Errors, fmt.Sprintf("Row %d: %s", idx+1, rowErr))
		}
	}

	s.bus.Publish(ctx, events.LeadsImported{
		BaseEvent: events.NewBaseEvent(),
		UserID:    userID,
		Source:    source,
		Imported:  resp.Imported,
		Failed:    resp.Failed,
	})
	return resp, nil
}

func (s *Service) importRow(ctx context.Context, userID uuid.UUID, row transport.LeadInput) error {
	row = NormalizeInput(row)
	if err := s.val.Struct(row); err != nil {
		return describeValidation(err)
	}

	exists, err := s.repo.Exists(ctx, userID, row.Username, row.Platform)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("lead already exists - %s", row.Username)
	}

	if _, err := s.create(ctx, userID, row); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return fmt.Errorf("lead already exists - %s", row.Username)
		}
		return err
	}
	return nil
}

func describeValidation(err error) error {
	fields := validator.Fields(err)
	if len(fields) == 0 {
		return err
	}
	names := make([]string, 0, len(fields))
	for field, tag := range fields {
		names = append(names, fmt.Sprintf("%s (%s)", field, tag))
	}
	sort.Strings(names)
	return errors.New("invalid " + strings.Join(names, ", "))
}
