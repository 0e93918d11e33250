package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/admin-dashboard/internal/access"
	folderDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/folder"
	organizationDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/organization"
	reportDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/report"
	userDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/user"
	"github.com/frahmantamala/admin-dashboard/internal/report"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) report.RepositoryAPI {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) ListByOrganization(ctx context.Context, organizationID int64, fileTypes ...string) ([]*reportDatamodel.Report, error) {
	var reports []*reportDatamodel.Report
	q := r.db.WithContext(ctx).Where("organization_id = ?", organizationID)
	if len(fileTypes) > 0 {
		q = q.Where("file_type IN ?", fileTypes)
	}
	err := q.Order("updated_at DESC, id DESC").Find(&reports).Error
	return reports, err
}

func (r *ReportRepository) ListStarred(ctx context.Context, userID int64) ([]*reportDatamodel.Report, error) {
	var reports []*reportDatamodel.Report
	err := r.db.WithContext(ctx).
		Where("created_by = ? AND is_starred = ?", userID, true).
		Order("updated_at DESC, id DESC").
		Find(&reports).Error
	return reports, err
}

func (r *ReportRepository) GetByID(ctx context.Context, id int64) (*reportDatamodel.Report, error) {
	var rep reportDatamodel.Report
	if err := r.db.WithContext(ctx).First(&rep, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rep, nil
}

func (r *ReportRepository) Create(ctx context.Context, rep *reportDatamodel.Report) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rep).Error; err != nil {
			return err
		}
		owner := &reportDatamodel.ReportPermission{
			ReportID:   rep.ID,
			UserID:     rep.CreatedBy,
			Permission: access.LevelOwner.String(),
			GrantedBy:  rep.CreatedBy,
		}
		return tx.Create(owner).Error
	})
}

// Update writes the editable metadata only. view_count and is_starred have
// their own statements and must never be written back from a loaded row.
func (r *ReportRepository) Update(ctx context.Context, rep *reportDatamodel.Report) error {
	return r.db.WithContext(ctx).Model(rep).
		Select("name", "folder_id", "updated_at").
		Updates(rep).Error
}

// IncrementViewCount bumps the counter in a single statement so concurrent
// reads never lose an increment. updated_at is left alone.
func (r *ReportRepository) IncrementViewCount(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&reportDatamodel.Report{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

func (r *ReportRepository) SetStarred(ctx context.Context, id int64, starred *bool) error {
	var value interface{} = gorm.Expr("NOT is_starred")
	if starred != nil {
		value = *starred
	}
	return r.db.WithContext(ctx).Model(&reportDatamodel.Report{}).
		Where("id = ?", id).
		Update("is_starred", value).Error
}

func (r *ReportRepository) ListPermissions(ctx context.Context, reportID int64) ([]*reportDatamodel.ReportPermission, error) {
	var permissions []*reportDatamodel.ReportPermission
	err := r.db.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("created_at ASC, id ASC").
		Find(&permissions).Error
	return permissions, err
}

func (r *ReportRepository) UpsertPermission(ctx context.Context, p *reportDatamodel.ReportPermission) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "report_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"permission", "granted_by"}),
	}).Create(p).Error
	if err != nil {
		return err
	}
	// On conflict the returned id is not reliable across drivers.
	var stored reportDatamodel.ReportPermission
	err = r.db.WithContext(ctx).
		Where("report_id = ? AND user_id = ?", p.ReportID, p.UserID).
		First(&stored).Error
	if err != nil {
		return err
	}
	*p = stored
	return nil
}

func (r *ReportRepository) FindLevel(ctx context.Context, reportID, userID int64) (access.Level, bool, error) {
	var p reportDatamodel.ReportPermission
	err := r.db.WithContext(ctx).
		Where("report_id = ? AND user_id = ?", reportID, userID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access.LevelNone, false, nil
		}
		return access.LevelNone, false, err
	}
	level, err := access.ParseLevel(p.Permission)
	if err != nil {
		return access.LevelNone, false, err
	}
	return level, true, nil
}

func (r *ReportRepository) GetUserByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *ReportRepository) GetFolder(ctx context.Context, id int64) (*folderDatamodel.Folder, error) {
	var f folderDatamodel.Folder
	if err := r.db.WithContext(ctx).First(&f, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (r *ReportRepository) OrganizationExists(ctx context.Context, organizationID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&organizationDatamodel.Organization{}).
		Where("id = ? AND deleted_at IS NULL", organizationID).
		Count(&count).Error
	return count > 0, err
}
