package system

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/access"
	"github.com/frahmantamala/admin-dashboard/internal/activity"
)

type RepositoryAPI interface {
	OrganizationStats(ctx context.Context) ([]*OrganizationStats, error)
	RecentActivity(ctx context.Context, limit int) ([]*ActivityEntry, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) Metrics(ctx context.Context, actor *internal.User) (*Metrics, error) {
	if err := access.RequireSuperadmin(actor); err != nil {
		return nil, err
	}

	stats, err := s.repo.OrganizationStats(ctx)
	if err != nil {
		s.logger.Error("failed to aggregate organization stats", "error", err)
		return nil, internal.NewInternalError("failed to fetch system metrics", err)
	}
	return Summarize(stats), nil
}

// Activity returns the newest entries across every organization.
func (s *Service) Activity(ctx context.Context, actor *internal.User, limit int) ([]*ActivityEntry, error) {
	if err := access.RequireSuperadmin(actor); err != nil {
		return nil, err
	}

	limit = activity.ClampLimit(limit, DefaultActivityLimit, activity.MaxListLimit)
	entries, err := s.repo.RecentActivity(ctx, limit)
	if err != nil {
		s.logger.Error("failed to list system activity", "error", err, "limit", limit)
		return nil, internal.NewInternalError("failed to fetch system activity", err)
	}
	if entries == nil {
		entries = []*ActivityEntry{}
	}
	return entries, nil
}
