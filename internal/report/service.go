package report

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/access"
	"github.com/frahmantamala/admin-dashboard/internal/activity"
	folderDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/folder"
	reportDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/report"
	userDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/user"
	"github.com/frahmantamala/admin-dashboard/internal/filestore"
)

type RepositoryAPI interface {
	access.PermissionLookup
	access.OrganizationChecker

	ListByOrganization(ctx context.Context, organizationID int64, fileTypes ...string) ([]*reportDatamodel.Report, error)
	ListStarred(ctx context.Context, userID int64) ([]*reportDatamodel.Report, error)
	GetByID(ctx context.Context, id int64) (*reportDatamodel.Report, error)
	// Create inserts the report together with its creator's owner grant.
	Create(ctx context.Context, report *reportDatamodel.Report) error
	Update(ctx context.Context, report *reportDatamodel.Report) error
	IncrementViewCount(ctx context.Context, id int64) error
	// SetStarred sets the flag, or flips it when starred is nil.
	SetStarred(ctx context.Context, id int64, starred *bool) error

	ListPermissions(ctx context.Context, reportID int64) ([]*reportDatamodel.ReportPermission, error)
	UpsertPermission(ctx context.Context, permission *reportDatamodel.ReportPermission) error

	GetUserByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetFolder(ctx context.Context, id int64) (*folderDatamodel.Folder, error)
}

type Service struct {
	repo           RepositoryAPI
	evaluator      *access.Evaluator
	store          filestore.Store
	activity       activity.Recorder
	logger         *slog.Logger
	maxUploadBytes int64
}

func NewService(repo RepositoryAPI, store filestore.Store, recorder activity.Recorder, logger *slog.Logger, maxUploadBytes int64) *Service {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Service{
		repo:           repo,
		evaluator:      access.NewEvaluator(repo),
		store:          store,
		activity:       recorder,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

func (s *Service) List(ctx context.Context, actor *internal.User, organizationID int64) ([]*Report, error) {
	if actor == nil {
		return nil, internal.ErrUnauthenticated
	}
	rows, err := s.repo.ListByOrganization(ctx, organizationID)
	if err != nil {
		s.logger.Error("failed to list reports", "error", err, "organization_id", organizationID)
		return nil, internal.NewInternalError("failed to list reports", err)
	}
	return toReports(rows), nil
}

// ListStarred returns the caller's own starred reports.
func (s *Service) ListStarred(ctx context.Context, actor *internal.User) ([]*Report, error) {
	if actor == nil {
		return nil, internal.ErrUnauthenticated
	}
	rows, err := s.repo.ListStarred(ctx, actor.ID)
	if err != nil {
		s.logger.Error("failed to list starred reports", "error", err, "user_id", actor.ID)
		return nil, internal.NewInternalError("failed to list reports", err)
	}
	return toReports(rows), nil
}

// DataSources lists the reports usable as chart data.
func (s *Service) DataSources(ctx context.Context, actor *internal.User, organizationID int64) ([]*Report, error) {
	if actor == nil {
		return nil, internal.ErrUnauthenticated
	}
	rows, err := s.repo.ListByOrganization(ctx, organizationID, DataSourceTypes...)
	if err != nil {
		s.logger.Error("failed to list data sources", "error", err, "organization_id", organizationID)
		return nil, internal.NewInternalError("failed to list data sources", err)
	}
	return toReports(rows), nil
}

// Get returns a report and counts the view.
func (s *Service) Get(ctx context.Context, actor *internal.User, id int64) (*Report, error) {
	row, err := s.authorize(ctx, actor, id, access.LevelViewer)
	if err != nil {
		return nil, err
	}

	if err := s.repo.IncrementViewCount(ctx, id); err != nil {
		s.logger.Error("failed to increment view count", "error", err, "report_id", id)
		return nil, internal.NewInternalError("failed to load report", err)
	}
	return s.reload(ctx, row)
}

func (s *Service) Create(ctx context.Context, actor *internal.User, organizationID int64, dto CreateReportDTO) (*Report, error) {
	if actor == nil {
		return nil, internal.ErrUnauthenticated
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := access.EnsureOrganization(ctx, s.repo, actor, organizationID); err != nil {
		return nil, err
	}
	if err := s.checkFolder(ctx, organizationID, dto.FolderID); err != nil {
		return nil, err
	}

	row := &reportDatamodel.Report{
		Name:           dto.Name,
		FileType:       dto.FileType,
		FileSize:       dto.FileSize,
		FolderID:       dto.FolderID,
		OrganizationID: organizationID,
		CreatedBy:      actor.ID,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create report", "error", err, "organization_id", organizationID)
		return nil, internal.NewInternalError("failed to create report", err)
	}

	s.record(ctx, actor, row, activity.ActionReportCreated, map[string]interface{}{
		"name":     row.Name,
		"fileType": row.FileType,
	})
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, actor *internal.User, id int64, dto UpdateReportDTO) (*Report, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	row, err := s.authorize(ctx, actor, id, access.LevelEditor)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if dto.Name != nil && *dto.Name != row.Name {
		changes["name"] = *dto.Name
		row.Name = *dto.Name
	}
	if dto.FolderID != nil {
		if *dto.FolderID == 0 {
			row.FolderID = nil
		} else {
			if err := s.checkFolder(ctx, row.OrganizationID, dto.FolderID); err != nil {
				return nil, err
			}
			row.FolderID = dto.FolderID
		}
		changes["folderId"] = row.FolderID
	}

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update report", "error", err, "report_id", id)
		return nil, internal.NewInternalError("failed to update report", err)
	}

	s.record(ctx, actor, row, activity.ActionReportUpdated, changes)
	return s.reload(ctx, row)
}

// SetStar sets the star flag, or toggles it when starred is nil.
func (s *Service) SetStar(ctx context.Context, actor *internal.User, id int64, starred *bool) (*Report, error) {
	row, err := s.authorize(ctx, actor, id, access.LevelViewer)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetStarred(ctx, id, starred); err != nil {
		s.logger.Error("failed to star report", "error", err, "report_id", id)
		return nil, internal.NewInternalError("failed to update report", err)
	}
	return s.reload(ctx, row)
}

func (s *Service) ListPermissions(ctx context.Context, actor *internal.User, id int64) ([]*Permission, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.evaluator.CanManage(ctx, actor, refOf(row)); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListPermissions(ctx, id)
	if err != nil {
		s.logger.Error("failed to list report permissions", "error", err, "report_id", id)
		return nil, internal.NewInternalError("failed to list permissions", err)
	}
	out := make([]*Permission, 0, len(rows))
	for _, p := range rows {
		out = append(out, PermissionFromDataModel(p))
	}
	return out, nil
}

// GrantPermission shares a report with a member of its organization. A
// repeated grant replaces the previous level.
func (s *Service) GrantPermission(ctx context.Context, actor *internal.User, id int64, dto GrantPermissionDTO) (*Permission, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.SameTenant(actor, row.OrganizationID); err != nil {
		s.logger.Warn("cross-tenant grant attempt", "actor_id", actor.ID, "report_id", id)
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}
	level, err := access.ParseLevel(dto.Permission)
	if err != nil {
		return nil, err
	}

	grantee, err := s.repo.GetUserByID(ctx, dto.UserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load grantee", err)
	}
	if grantee == nil {
		if actor.IsSuperadmin() {
			return nil, internal.ErrUserNotFound
		}
		return nil, internal.ErrGranteeOutsideTenant
	}
	if grantee.OrganizationID == nil || *grantee.OrganizationID != row.OrganizationID {
		return nil, internal.ErrGranteeOutsideTenant
	}

	grant := &reportDatamodel.ReportPermission{
		ReportID:   row.ID,
		UserID:     grantee.ID,
		Permission: level.String(),
		GrantedBy:  actor.ID,
	}
	if err := s.repo.UpsertPermission(ctx, grant); err != nil {
		s.logger.Error("failed to grant permission", "error", err, "report_id", id, "user_id", grantee.ID)
		return nil, internal.NewInternalError("failed to grant permission", err)
	}

	s.record(ctx, actor, row, activity.ActionPermissionGranted, map[string]interface{}{
		"permission": grant.Permission,
		"userId":     grantee.ID,
	})
	return PermissionFromDataModel(grant), nil
}

func (s *Service) authorize(ctx context.Context, actor *internal.User, id int64, required access.Level) (*reportDatamodel.Report, error) {
	if actor == nil {
		return nil, internal.ErrUnauthenticated
	}
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.evaluator.CanAccess(ctx, actor, refOf(row), required); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *Service) load(ctx context.Context, id int64) (*reportDatamodel.Report, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load report", err)
	}
	if row == nil {
		return nil, internal.ErrReportNotFound
	}
	return row, nil
}

func (s *Service) reload(ctx context.Context, row *reportDatamodel.Report) (*Report, error) {
	fresh, err := s.load(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	return FromDataModel(fresh), nil
}

func (s *Service) checkFolder(ctx context.Context, organizationID int64, folderID *int64) error {
	if folderID == nil {
		return nil
	}
	f, err := s.repo.GetFolder(ctx, *folderID)
	if err != nil {
		return internal.NewInternalError("failed to load folder", err)
	}
	if f == nil || f.OrganizationID != organizationID {
		return internal.ErrFolderNotFound
	}
	return nil
}

func (s *Service) record(ctx context.Context, actor *internal.User, row *reportDatamodel.Report, action string, metadata map[string]interface{}) {
	orgID := row.OrganizationID
	s.activity.Record(ctx, activity.Entry{
		UserID:         actor.ID,
		OrganizationID: &orgID,
		Action:         action,
		Resource:       "report",
		ResourceID:     row.ID,
		Metadata:       metadata,
	})
}

func toReports(rows []*reportDatamodel.Report) []*Report {
	out := make([]*Report, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromDataModel(r))
	}
	return out
}
