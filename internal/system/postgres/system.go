package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/frahmantamala/admin-dashboard/internal/activity"
	"github.com/frahmantamala/admin-dashboard/internal/system"
	"github.com/jmoiron/sqlx"
)

const organizationStatsQuery = `
SELECT o.id, o.name, o.domain, o.industry, o.size, o.created_at,
	(SELECT COUNT(*) FROM users u WHERE u.organization_id = o.id) AS user_count,
	(SELECT COUNT(*) FROM users u WHERE u.organization_id = o.id AND u.role = 'admin') AS admin_count,
	(SELECT COUNT(*) FROM reports r WHERE r.organization_id = o.id) AS report_count
FROM organizations o
WHERE o.deleted_at IS NULL
ORDER BY o.id`

const recentActivityQuery = `
SELECT a.id, a.user_id, a.organization_id, o.name AS organization_name,
	a.action, a.resource, a.resource_id, a.metadata, a.created_at
FROM activity_logs a
JOIN organizations o ON o.id = a.organization_id
ORDER BY a.created_at DESC, a.id DESC
LIMIT $1`

type organizationStatsRow struct {
	ID          int64          `db:"id"`
	Name        string         `db:"name"`
	Domain      sql.NullString `db:"domain"`
	Industry    sql.NullString `db:"industry"`
	Size        sql.NullString `db:"size"`
	CreatedAt   time.Time      `db:"created_at"`
	UserCount   int64          `db:"user_count"`
	AdminCount  int64          `db:"admin_count"`
	ReportCount int64          `db:"report_count"`
}

type activityRow struct {
	ID               int64          `db:"id"`
	UserID           int64          `db:"user_id"`
	OrganizationID   int64          `db:"organization_id"`
	OrganizationName string         `db:"organization_name"`
	Action           string         `db:"action"`
	Resource         sql.NullString `db:"resource"`
	ResourceID       sql.NullString `db:"resource_id"`
	Metadata         []byte         `db:"metadata"`
	CreatedAt        time.Time      `db:"created_at"`
}

type SystemRepository struct {
	db *sqlx.DB
}

func NewSystemRepository(db *sqlx.DB) system.RepositoryAPI {
	return &SystemRepository{db: db}
}

func (r *SystemRepository) OrganizationStats(ctx context.Context) ([]*system.OrganizationStats, error) {
	var rows []organizationStatsRow
	if err := r.db.SelectContext(ctx, &rows, organizationStatsQuery); err != nil {
		return nil, err
	}

	stats := make([]*system.OrganizationStats, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, &system.OrganizationStats{
			ID:          row.ID,
			Name:        row.Name,
			Domain:      nullable(row.Domain),
			Industry:    nullable(row.Industry),
			Size:        nullable(row.Size),
			UserCount:   row.UserCount,
			ReportCount: row.ReportCount,
			AdminCount:  row.AdminCount,
			CreatedAt:   row.CreatedAt,
		})
	}
	return stats, nil
}

func (r *SystemRepository) RecentActivity(ctx context.Context, limit int) ([]*system.ActivityEntry, error) {
	var rows []activityRow
	if err := r.db.SelectContext(ctx, &rows, recentActivityQuery, limit); err != nil {
		return nil, err
	}

	entries := make([]*system.ActivityEntry, 0, len(rows))
	for _, row := range rows {
		entry := &system.ActivityEntry{
			Activity: activity.Activity{
				ID:             row.ID,
				UserID:         row.UserID,
				OrganizationID: row.OrganizationID,
				Action:         row.Action,
				Resource:       nullable(row.Resource),
				ResourceID:     nullable(row.ResourceID),
				CreatedAt:      row.CreatedAt,
			},
			OrganizationName: row.OrganizationName,
		}
		if len(row.Metadata) > 0 && string(row.Metadata) != "null" {
			if err := json.Unmarshal(row.Metadata, &entry.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata of activity %d: %w", row.ID, err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
