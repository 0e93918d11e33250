package invitation

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/access"
	"github.com/frahmantamala/admin-dashboard/internal/activity"
	"github.com/frahmantamala/admin-dashboard/internal/auth"
	invitationDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/invitation"
	"github.com/frahmantamala/admin-dashboard/internal/core/events"
)

// resetTokenRetention is how long spent reset tokens are kept before purging.
const resetTokenRetention = 24 * time.Hour

type RepositoryAPI interface {
	access.OrganizationChecker

	UserExists(ctx context.Context, email string) (bool, error)
	HasPendingInvitation(ctx context.Context, email string, now time.Time) (bool, error)
	Create(ctx context.Context, invitation *invitationDatamodel.UserInvitation) error
	DeleteSpentResetTokens(ctx context.Context, now, createdBefore time.Time) (int64, error)
	ListExpiredInvitations(ctx context.Context, from, to time.Time) ([]*invitationDatamodel.UserInvitation, error)
}

type Service struct {
	repo      RepositoryAPI
	activity  activity.Recorder
	publisher events.Publisher
	logger    *slog.Logger
	ttl       time.Duration
	now       func() time.Time
}

func NewService(repo RepositoryAPI, recorder activity.Recorder, publisher events.Publisher, logger *slog.Logger, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		repo:      repo,
		activity:  recorder,
		publisher: publisher,
		logger:    logger,
		ttl:       ttl,
		now:       time.Now,
	}
}

func (s *Service) Create(ctx context.Context, actor *internal.User, organizationID int64, dto CreateInvitationDTO) (*Invitation, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if internal.Role(dto.Role) == internal.RoleSuperadmin {
		s.logger.Warn("superadmin invitation attempt", "actor_id", actor.ID)
		return nil, internal.ErrRoleEscalation
	}
	if err := access.EnsureOrganization(ctx, s.repo, actor, organizationID); err != nil {
		return nil, err
	}

	exists, err := s.repo.UserExists(ctx, dto.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to check user", err)
	}
	if exists {
		return nil, internal.ErrUserAlreadyExists
	}

	now := s.now()
	pending, err := s.repo.HasPendingInvitation(ctx, dto.Email, now)
	if err != nil {
		return nil, internal.NewInternalError("failed to check invitations", err)
	}
	if pending {
		return nil, internal.ErrInvitationPending
	}

	token, err := auth.GenerateRandomToken()
	if err != nil {
		return nil, internal.NewInternalError("failed to generate token", err)
	}

	row := &invitationDatamodel.UserInvitation{
		Email:          dto.Email,
		Role:           dto.Role,
		OrganizationID: &organizationID,
		InvitedBy:      actor.ID,
		Token:          token,
		Purpose:        invitationDatamodel.PurposeInvite,
		ExpiresAt:      now.Add(s.ttl),
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create invitation", "error", err, "organization_id", organizationID)
		return nil, internal.NewInternalError("failed to create invitation", err)
	}

	s.activity.Record(ctx, activity.Entry{
		UserID:         actor.ID,
		OrganizationID: &organizationID,
		Action:         activity.ActionUserInvited,
		Resource:       "invitation",
		ResourceID:     row.ID,
		Metadata:       map[string]interface{}{"email": row.Email, "role": row.Role},
	})

	event := events.NewInvitationCreatedEvent(row.ID, row.Email, row.Role, organizationID, actor.ID, token, row.ExpiresAt)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish invitation event", "error", err, "invitation_id", row.ID)
	}

	return FromDataModel(row), nil
}

// PurgeResetTokens removes password reset tokens that were used or expired
// more than a day ago.
func (s *Service) PurgeResetTokens(ctx context.Context) (int64, error) {
	now := s.now()
	n, err := s.repo.DeleteSpentResetTokens(ctx, now, now.Add(-resetTokenRetention))
	if err != nil {
		s.logger.Error("failed to purge reset tokens", "error", err)
		return 0, err
	}
	s.logger.Info("purged reset tokens", "count", n)
	return n, nil
}

// ReportExpired logs invitations that expired unaccepted during the last
// window.
func (s *Service) ReportExpired(ctx context.Context, window time.Duration) (int, error) {
	now := s.now()
	rows, err := s.repo.ListExpiredInvitations(ctx, now.Add(-window), now)
	if err != nil {
		s.logger.Error("failed to list expired invitations", "error", err)
		return 0, err
	}
	for _, row := range rows {
		s.logger.Info("invitation expired unaccepted",
			"invitation_id", row.ID,
			"organization_id", row.OrganizationID,
			"invited_by", row.InvitedBy,
			"expired_at", row.ExpiresAt)
	}
	return len(rows), nil
}
