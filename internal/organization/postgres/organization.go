package postgres

import (
	"context"
	"errors"

	organizationDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/organization"
	userDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/user"
	"github.com/frahmantamala/admin-dashboard/internal/organization"
	"gorm.io/gorm"
)

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) organization.RepositoryAPI {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) List(ctx context.Context) ([]*organizationDatamodel.Organization, error) {
	var orgs []*organizationDatamodel.Organization
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Order("created_at DESC, id DESC").
		Find(&orgs).Error
	return orgs, err
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id int64) (*organizationDatamodel.Organization, error) {
	var org organizationDatamodel.Organization
	err := r.db.WithContext(ctx).First(&org, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}

func (r *OrganizationRepository) Create(ctx context.Context, org *organizationDatamodel.Organization, admin *userDatamodel.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return err
		}
		if admin == nil {
			return nil
		}
		admin.OrganizationID = &org.ID
		return tx.Create(admin).Error
	})
}

func (r *OrganizationRepository) Update(ctx context.Context, org *organizationDatamodel.Organization) error {
	return r.db.WithContext(ctx).Save(org).Error
}

func (r *OrganizationRepository) CountUsers(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("organization_id = ?", id).
		Count(&count).Error
	return count, err
}

func (r *OrganizationRepository) EmailOrUsernameTaken(ctx context.Context, email, username string) (bool, bool, error) {
	var emails, usernames int64
	if err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("LOWER(email) = LOWER(?)", email).Count(&emails).Error; err != nil {
		return false, false, err
	}
	if err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("username = ?", username).Count(&usernames).Error; err != nil {
		return false, false, err
	}
	return emails > 0, usernames > 0, nil
}
