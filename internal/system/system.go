package system

import (
	"time"

	"github.com/frahmantamala/admin-dashboard/internal/activity"
)

const (
	HealthHealthy = "healthy"

	DefaultActivityLimit = 20
)

// OrganizationStats is one live organization with its head counts.
type OrganizationStats struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Domain      *string   `json:"domain,omitempty"`
	Industry    *string   `json:"industry,omitempty"`
	Size        *string   `json:"size,omitempty"`
	UserCount   int64     `json:"userCount"`
	ReportCount int64     `json:"reportCount"`
	AdminCount  int64     `json:"adminCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Metrics struct {
	TotalOrganizations  int                  `json:"totalOrganizations"`
	TotalUsers          int64                `json:"totalUsers"`
	TotalReports        int64                `json:"totalReports"`
	ActiveOrganizations int                  `json:"activeOrganizations"`
	SystemHealth        string               `json:"systemHealth"`
	Organizations       []*OrganizationStats `json:"organizations"`
}

// ActivityEntry is an activity log row enriched with its tenant name.
type ActivityEntry struct {
	activity.Activity
	OrganizationName string `json:"organizationName"`
}

// Summarize folds per-organization stats into the dashboard totals. An
// organization counts as active once it has at least one user.
func Summarize(stats []*OrganizationStats) *Metrics {
	m := &Metrics{
		TotalOrganizations: len(stats),
		SystemHealth:       HealthHealthy,
		Organizations:      stats,
	}
	if m.Organizations == nil {
		m.Organizations = []*OrganizationStats{}
	}
	for _, s := range stats {
		m.TotalUsers += s.UserCount
		m.TotalReports += s.ReportCount
		if s.UserCount > 0 {
			m.ActiveOrganizations++
		}
	}
	return m
}
