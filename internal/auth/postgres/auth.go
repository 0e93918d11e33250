package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/admin-dashboard/internal/auth"
	invitationDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/invitation"
	userDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

var _ auth.Repository = (*Repository)(nil)

func (r *Repository) GetUserByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	return r.findUser(ctx, "id = ?", id)
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	return r.findUser(ctx, "LOWER(email) = LOWER(?)", email)
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*userDatamodel.User, error) {
	return r.findUser(ctx, "username = ?", username)
}

func (r *Repository) findUser(ctx context.Context, query string, arg interface{}) (*userDatamodel.User, error) {
	var user userDatamodel.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) UpdateLastActive(ctx context.Context, userID int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Update("last_active_at", at).Error
}

func (r *Repository) GetInvitationByToken(ctx context.Context, token string) (*invitationDatamodel.UserInvitation, error) {
	var inv invitationDatamodel.UserInvitation
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *Repository) CreateInvitation(ctx context.Context, inv *invitationDatamodel.UserInvitation) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *Repository) AcceptInvitation(ctx context.Context, invitationID int64, user *userDatamodel.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := consume(tx, invitationID); err != nil {
			return err
		}
		return tx.Create(user).Error
	})
}

func (r *Repository) ResetPassword(ctx context.Context, invitationID, userID int64, passwordHash string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := consume(tx, invitationID); err != nil {
			return err
		}
		return tx.Model(&userDatamodel.User{}).
			Where("id = ?", userID).
			Update("password_hash", passwordHash).Error
	})
}

// consume flips is_accepted only if it is still false, so a token can be
// spent once even under concurrent requests.
func consume(tx *gorm.DB, invitationID int64) error {
	res := tx.Model(&invitationDatamodel.UserInvitation{}).
		Where("id = ? AND is_accepted = ?", invitationID, false).
		Update("is_accepted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return auth.ErrTokenConsumed
	}
	return nil
}
