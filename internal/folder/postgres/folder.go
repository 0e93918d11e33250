package postgres

import (
	"context"
	"errors"

	folderDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/folder"
	organizationDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/organization"
	"github.com/frahmantamala/admin-dashboard/internal/folder"
	"gorm.io/gorm"
)

type FolderRepository struct {
	db *gorm.DB
}

func NewFolderRepository(db *gorm.DB) folder.RepositoryAPI {
	return &FolderRepository{db: db}
}

func (r *FolderRepository) ListByOrganization(ctx context.Context, organizationID int64) ([]*folderDatamodel.Folder, error) {
	var folders []*folderDatamodel.Folder
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("name ASC, id ASC").
		Find(&folders).Error
	return folders, err
}

func (r *FolderRepository) GetByID(ctx context.Context, id int64) (*folderDatamodel.Folder, error) {
	var f folderDatamodel.Folder
	err := r.db.WithContext(ctx).First(&f, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (r *FolderRepository) Create(ctx context.Context, f *folderDatamodel.Folder) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *FolderRepository) OrganizationExists(ctx context.Context, organizationID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&organizationDatamodel.Organization{}).
		Where("id = ? AND deleted_at IS NULL", organizationID).
		Count(&count).Error
	return count > 0, err
}
