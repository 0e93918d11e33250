package postgres

import (
	"context"

	"github.com/frahmantamala/admin-dashboard/internal/activity"
	activityDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/activity"
	"gorm.io/gorm"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) activity.RepositoryAPI {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, log *activityDatamodel.ActivityLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *ActivityRepository) ListByOrganization(ctx context.Context, organizationID int64, limit int) ([]*activityDatamodel.ActivityLog, error) {
	var logs []*activityDatamodel.ActivityLog
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
