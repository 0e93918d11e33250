package folder

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/access"
	"github.com/frahmantamala/admin-dashboard/internal/activity"
	folderDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/folder"
)

type RepositoryAPI interface {
	access.OrganizationChecker

	ListByOrganization(ctx context.Context, organizationID int64) ([]*folderDatamodel.Folder, error)
	GetByID(ctx context.Context, id int64) (*folderDatamodel.Folder, error)
	Create(ctx context.Context, folder *folderDatamodel.Folder) error
}

type Service struct {
	repo     RepositoryAPI
	activity activity.Recorder
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, recorder activity.Recorder, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		activity: recorder,
		logger:   logger,
	}
}

func (s *Service) List(ctx context.Context, actor *internal.User, organizationID int64) ([]*Folder, error) {
	if actor == nil {
		return nil, internal.ErrUnauthenticated
	}

	rows, err := s.repo.ListByOrganization(ctx, organizationID)
	if err != nil {
		s.logger.Error("failed to list folders", "error", err, "organization_id", organizationID)
		return nil, internal.NewInternalError("failed to list folders", err)
	}

	folders := make([]*Folder, 0, len(rows))
	for _, row := range rows {
		folders = append(folders, FromDataModel(row))
	}
	return folders, nil
}

func (s *Service) Create(ctx context.Context, actor *internal.User, organizationID int64, dto CreateFolderDTO) (*Folder, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := access.EnsureOrganization(ctx, s.repo, actor, organizationID); err != nil {
		return nil, err
	}

	if dto.ParentID != nil {
		if err := s.checkParent(ctx, organizationID, *dto.ParentID); err != nil {
			return nil, err
		}
	}

	row := &folderDatamodel.Folder{
		Name:           dto.Name,
		ParentID:       dto.ParentID,
		OrganizationID: organizationID,
		CreatedBy:      actor.ID,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create folder", "error", err, "organization_id", organizationID)
		return nil, internal.NewInternalError("failed to create folder", err)
	}

	s.activity.Record(ctx, activity.Entry{
		UserID:         actor.ID,
		OrganizationID: &organizationID,
		Action:         activity.ActionFolderCreated,
		Resource:       "folder",
		ResourceID:     row.ID,
		Metadata:       map[string]interface{}{"name": row.Name},
	})
	return FromDataModel(row), nil
}

// checkParent requires the parent to live in the same organization and its
// ancestor chain to terminate.
func (s *Service) checkParent(ctx context.Context, organizationID, parentID int64) error {
	seen := make(map[int64]struct{})
	next := &parentID
	for next != nil {
		if _, ok := seen[*next]; ok {
			s.logger.Warn("folder ancestor cycle detected", "folder_id", *next, "organization_id", organizationID)
			return internal.ErrFolderCycle
		}
		seen[*next] = struct{}{}

		f, err := s.repo.GetByID(ctx, *next)
		if err != nil {
			return internal.NewInternalError("failed to load folder", err)
		}
		if f == nil || f.OrganizationID != organizationID {
			return internal.ErrFolderNotFound
		}
		next = f.ParentID
	}
	return nil
}
