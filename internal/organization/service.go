package organization

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/access"
	"github.com/frahmantamala/admin-dashboard/internal/activity"
	"github.com/frahmantamala/admin-dashboard/internal/auth"
	organizationDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/organization"
	userDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/user"
	"github.com/frahmantamala/admin-dashboard/internal/user"
	"gorm.io/gorm"
)

const temporaryPasswordLength = 12

type RepositoryAPI interface {
	List(ctx context.Context) ([]*organizationDatamodel.Organization, error)
	GetByID(ctx context.Context, id int64) (*organizationDatamodel.Organization, error)
	// Create inserts org and, when admin is non-nil, its first admin in the
	// same transaction.
	Create(ctx context.Context, org *organizationDatamodel.Organization, admin *userDatamodel.User) error
	Update(ctx context.Context, org *organizationDatamodel.Organization) error
	CountUsers(ctx context.Context, id int64) (int64, error)
	EmailOrUsernameTaken(ctx context.Context, email, username string) (emailTaken, usernameTaken bool, err error)
}

type Service struct {
	repo       RepositoryAPI
	activity   activity.Recorder
	logger     *slog.Logger
	bcryptCost int
	now        func() time.Time
}

func NewService(repo RepositoryAPI, recorder activity.Recorder, logger *slog.Logger, bcryptCost int) *Service {
	return &Service{
		repo:       repo,
		activity:   recorder,
		logger:     logger,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

func (s *Service) List(ctx context.Context, actor *internal.User) ([]OrganizationResponse, error) {
	if err := access.RequireSuperadmin(actor); err != nil {
		return nil, err
	}

	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list organizations", "error", err)
		return nil, internal.NewInternalError("failed to list organizations", err)
	}

	responses := make([]OrganizationResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, FromDataModel(row).ToResponse())
	}
	return responses, nil
}

func (s *Service) Get(ctx context.Context, actor *internal.User, id int64) (*OrganizationResponse, error) {
	if err := access.RequireSuperadmin(actor); err != nil {
		return nil, err
	}

	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	response := FromDataModel(row).ToResponse()
	return &response, nil
}

func (s *Service) Create(ctx context.Context, actor *internal.User, dto CreateOrganizationDTO) (*CreateOrganizationResponse, error) {
	if err := access.RequireSuperadmin(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	org := &organizationDatamodel.Organization{
		Name:     dto.Name,
		Domain:   dto.Domain,
		Industry: dto.Industry,
		Size:     dto.Size,
		Settings: dto.Settings,
	}
	if org.Settings == nil {
		org.Settings = map[string]interface{}{}
	}

	var (
		admin    *userDatamodel.User
		password string
	)
	if dto.Admin != nil {
		emailTaken, usernameTaken, err := s.repo.EmailOrUsernameTaken(ctx, dto.Admin.Email, dto.Admin.Username)
		if err != nil {
			return nil, internal.NewInternalError("failed to check admin uniqueness", err)
		}
		if emailTaken {
			return nil, internal.ErrEmailTaken
		}
		if usernameTaken {
			return nil, internal.ErrUsernameTaken
		}

		password, err = auth.GenerateTemporaryPassword(temporaryPasswordLength)
		if err != nil {
			return nil, internal.NewInternalError("failed to generate password", err)
		}
		hash, err := auth.HashPassword(password, s.bcryptCost)
		if err != nil {
			return nil, internal.NewInternalError("failed to hash password", err)
		}
		admin = &userDatamodel.User{
			Username:     dto.Admin.Username,
			Email:        dto.Admin.Email,
			PasswordHash: hash,
			Name:         dto.Admin.Name,
			Role:         string(internal.RoleAdmin),
			IsActive:     true,
		}
	}

	if err := s.repo.Create(ctx, org, admin); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, internal.ErrEmailTaken
		}
		s.logger.Error("failed to create organization", "error", err, "name", dto.Name)
		return nil, internal.NewInternalError("failed to create organization", err)
	}

	metadata := map[string]interface{}{"name": org.Name}
	if admin != nil {
		metadata["adminEmail"] = admin.Email
	}
	s.activity.Record(ctx, activity.Entry{
		UserID:         actor.ID,
		OrganizationID: &org.ID,
		Action:         activity.ActionOrganizationCreated,
		Resource:       "organization",
		ResourceID:     org.ID,
		Metadata:       metadata,
	})
	s.logger.Info("organization created", "organization_id", org.ID, "with_admin", admin != nil)

	response := &CreateOrganizationResponse{Organization: FromDataModel(org).ToResponse()}
	if admin != nil {
		response.Admin = &BootstrapAdminResponse{
			User:              user.FromDataModel(admin),
			TemporaryPassword: password,
		}
	}
	return response, nil
}

func (s *Service) Update(ctx context.Context, actor *internal.User, id int64, dto UpdateOrganizationDTO) (*OrganizationResponse, error) {
	if err := access.RequireSuperadmin(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		row.Name = *dto.Name
	}
	if dto.Domain != nil {
		row.Domain = dto.Domain
	}
	if dto.Industry != nil {
		row.Industry = dto.Industry
	}
	if dto.Size != nil {
		row.Size = dto.Size
	}
	if dto.Settings != nil {
		row.Settings = dto.Settings
	}

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update organization", "error", err, "organization_id", id)
		return nil, internal.NewInternalError("failed to update organization", err)
	}

	response := FromDataModel(row).ToResponse()
	return &response, nil
}

// Delete soft-deletes an organization that no longer has users.
func (s *Service) Delete(ctx context.Context, actor *internal.User, id int64) error {
	if err := access.RequireSuperadmin(actor); err != nil {
		return err
	}

	row, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountUsers(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to count organization users", err)
	}
	if count > 0 {
		return internal.ErrOrganizationHasUsers
	}

	now := s.now()
	settings := make(map[string]interface{}, len(row.Settings)+1)
	for k, v := range row.Settings {
		settings[k] = v
	}
	settings["deleted"] = true

	row.Name += deletedSuffix
	row.Settings = settings
	row.DeletedAt = &now

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to delete organization", "error", err, "organization_id", id)
		return internal.NewInternalError("failed to delete organization", err)
	}

	s.logger.Info("organization deleted", "organization_id", id, "deleted_by", actor.ID)
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (*organizationDatamodel.Organization, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load organization", err)
	}
	if row == nil || row.DeletedAt != nil {
		return nil, internal.ErrOrganizationNotFound
	}
	return row, nil
}
