package postgres

import (
	"context"
	"errors"

	organizationDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/organization"
	userDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/user"
	"github.com/frahmantamala/admin-dashboard/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) ListByOrganization(ctx context.Context, organizationID int64) ([]*userDatamodel.User, error) {
	var users []*userDatamodel.User
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("created_at DESC, id DESC").
		Find(&users).Error
	return users, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	return r.first(ctx, "LOWER(email) = LOWER(?)", email)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*userDatamodel.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *UserRepository) first(ctx context.Context, query string, arg interface{}) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) OrganizationExists(ctx context.Context, organizationID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&organizationDatamodel.Organization{}).
		Where("id = ? AND deleted_at IS NULL", organizationID).
		Count(&count).Error
	return count > 0, err
}
