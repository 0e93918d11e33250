package postgres

import (
	"context"
	"time"

	invitationDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/invitation"
	organizationDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/organization"
	userDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/user"
	"github.com/frahmantamala/admin-dashboard/internal/invitation"
	"gorm.io/gorm"
)

type InvitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) invitation.RepositoryAPI {
	return &InvitationRepository{db: db}
}

func (r *InvitationRepository) UserExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("LOWER(email) = LOWER(?)", email).
		Count(&count).Error
	return count > 0, err
}

func (r *InvitationRepository) HasPendingInvitation(ctx context.Context, email string, now time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&invitationDatamodel.UserInvitation{}).
		Where("LOWER(email) = LOWER(?) AND purpose = ? AND is_accepted = ? AND expires_at > ?",
			email, invitationDatamodel.PurposeInvite, false, now).
		Count(&count).Error
	return count > 0, err
}

func (r *InvitationRepository) Create(ctx context.Context, inv *invitationDatamodel.UserInvitation) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *InvitationRepository) DeleteSpentResetTokens(ctx context.Context, now, createdBefore time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("purpose = ? AND (is_accepted = ? OR expires_at <= ?) AND created_at < ?",
			invitationDatamodel.PurposePasswordReset, true, now, createdBefore).
		Delete(&invitationDatamodel.UserInvitation{})
	return result.RowsAffected, result.Error
}

func (r *InvitationRepository) ListExpiredInvitations(ctx context.Context, from, to time.Time) ([]*invitationDatamodel.UserInvitation, error) {
	var rows []*invitationDatamodel.UserInvitation
	err := r.db.WithContext(ctx).
		Where("purpose = ? AND is_accepted = ? AND expires_at > ? AND expires_at <= ?",
			invitationDatamodel.PurposeInvite, false, from, to).
		Order("expires_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *InvitationRepository) OrganizationExists(ctx context.Context, organizationID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&organizationDatamodel.Organization{}).
		Where("id = ? AND deleted_at IS NULL", organizationID).
		Count(&count).Error
	return count > 0, err
}
