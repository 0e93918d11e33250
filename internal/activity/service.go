package activity

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/access"
	activityDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/activity"
	"github.com/prometheus/client_golang/prometheus"
)

type RepositoryAPI interface {
	Create(ctx context.Context, log *activityDatamodel.ActivityLog) error
	ListByOrganization(ctx context.Context, organizationID int64, limit int) ([]*activityDatamodel.ActivityLog, error)
}

// Recorder is what other services use to append to the trail.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

type Service struct {
	repo     RepositoryAPI
	logger   *slog.Logger
	failures prometheus.Counter
}

// NewService wires the recorder. reg may be nil, in which case the failure
// counter is kept but not exported.
func NewService(repo RepositoryAPI, logger *slog.Logger, reg prometheus.Registerer) *Service {
	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "activity_record_failures_total",
		Help: "Activity log entries that could not be written.",
	})
	if reg != nil {
		if err := reg.Register(failures); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				failures = are.ExistingCollector.(prometheus.Counter)
			} else {
				logger.Warn("failed to register activity metrics", "error", err)
			}
		}
	}
	return &Service{
		repo:     repo,
		logger:   logger,
		failures: failures,
	}
}

// Record appends entry to the trail. It never fails the caller.
func (s *Service) Record(ctx context.Context, entry Entry) {
	if entry.OrganizationID == nil {
		s.logger.Debug("skipping activity without organization", "action", entry.Action, "user_id", entry.UserID)
		return
	}

	if err := s.repo.Create(ctx, entry.toDataModel(*entry.OrganizationID)); err != nil {
		s.failures.Inc()
		s.logger.Error("failed to record activity",
			"error", err,
			"action", entry.Action,
			"user_id", entry.UserID,
			"organization_id", *entry.OrganizationID)
	}
}

// List returns the newest entries of the organization the caller is scoped to.
func (s *Service) List(ctx context.Context, actor *internal.User, organizationID int64, limit int) ([]*Activity, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}

	limit = ClampLimit(limit, DefaultListLimit, MaxListLimit)
	logs, err := s.repo.ListByOrganization(ctx, organizationID, limit)
	if err != nil {
		s.logger.Error("failed to list activity", "error", err, "organization_id", organizationID)
		return nil, internal.NewInternalError("failed to list activity", err)
	}

	out := make([]*Activity, 0, len(logs))
	for _, l := range logs {
		out = append(out, FromDataModel(l))
	}
	return out, nil
}
