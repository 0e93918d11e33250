package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/access"
	"github.com/frahmantamala/admin-dashboard/internal/activity"
	"github.com/frahmantamala/admin-dashboard/internal/auth"
	userDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type RepositoryAPI interface {
	ListByOrganization(ctx context.Context, organizationID int64) ([]*userDatamodel.User, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	GetByUsername(ctx context.Context, username string) (*userDatamodel.User, error)
	Create(ctx context.Context, user *userDatamodel.User) error
	OrganizationExists(ctx context.Context, organizationID int64) (bool, error)
}

type Service struct {
	repo       RepositoryAPI
	activity   activity.Recorder
	logger     *slog.Logger
	bcryptCost int
}

func NewService(repo RepositoryAPI, recorder activity.Recorder, logger *slog.Logger, bcryptCost int) *Service {
	return &Service{
		repo:       repo,
		activity:   recorder,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

func (s *Service) List(ctx context.Context, actor *internal.User, organizationID int64) ([]*User, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByOrganization(ctx, organizationID)
	if err != nil {
		s.logger.Error("failed to list users", "error", err, "organization_id", organizationID)
		return nil, internal.NewInternalError("failed to list users", err)
	}

	users := make([]*User, 0, len(rows))
	for _, row := range rows {
		users = append(users, FromDataModel(row))
	}
	return users, nil
}

// Create adds a user. Admins create users in their own organization and can
// never mint superadmins; superadmins carry no organization.
func (s *Service) Create(ctx context.Context, actor *internal.User, dto CreateUserDTO) (*User, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	role := internal.Role(dto.Role)
	if role == internal.RoleSuperadmin && !actor.IsSuperadmin() {
		s.logger.Warn("role escalation attempt", "actor_id", actor.ID)
		return nil, internal.ErrRoleEscalation
	}

	var orgID *int64
	if role != internal.RoleSuperadmin {
		scope, err := access.ResolveScope(actor, dto.OrganizationID)
		if err != nil {
			return nil, err
		}
		if err := access.EnsureOrganization(ctx, s.repo, actor, scope); err != nil {
			return nil, err
		}
		orgID = &scope
	}

	if existing, err := s.repo.GetByEmail(ctx, dto.Email); err != nil {
		return nil, internal.NewInternalError("failed to check email", err)
	} else if existing != nil {
		return nil, internal.ErrEmailTaken
	}
	if existing, err := s.repo.GetByUsername(ctx, dto.Username); err != nil {
		return nil, internal.NewInternalError("failed to check username", err)
	} else if existing != nil {
		return nil, internal.ErrUsernameTaken
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	row := &userDatamodel.User{
		Username:       dto.Username,
		Email:          dto.Email,
		PasswordHash:   hash,
		Name:           dto.Name,
		Role:           string(role),
		OrganizationID: orgID,
		IsActive:       true,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, internal.ErrEmailTaken
		}
		s.logger.Error("failed to create user", "error", err)
		return nil, internal.NewInternalError("failed to create user", err)
	}

	s.activity.Record(ctx, activity.Entry{
		UserID:         actor.ID,
		OrganizationID: actorOrg(actor, orgID),
		Action:         activity.ActionUserCreated,
		Resource:       "user",
		ResourceID:     row.ID,
		Metadata:       map[string]interface{}{"email": row.Email, "role": row.Role},
	})
	s.logger.Info("user created", "user_id", row.ID, "role", row.Role, "created_by", actor.ID)
	return FromDataModel(row), nil
}

// actorOrg picks the organization an audit entry belongs to: the one acted
// on, falling back to the actor's own.
func actorOrg(actor *internal.User, target *int64) *int64 {
	if target != nil {
		return target
	}
	return actor.OrganizationID
}
