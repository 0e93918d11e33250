package activity

import (
	"strconv"
	"time"

	activityDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/activity"
)

const (
	ActionLogin               = "login"
	ActionRegister            = "register"
	ActionPasswordReset       = "password_reset"
	ActionOrganizationCreated = "organization_created"
	ActionUserCreated         = "user_created"
	ActionFolderCreated       = "folder_created"
	ActionReportCreated       = "report_created"
	ActionReportUpdated       = "report_updated"
	ActionReportUploaded      = "report_uploaded"
	ActionPermissionGranted   = "permission_granted"
	ActionUserInvited         = "user_invited"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// Entry is one audit record as produced by a service.
type Entry struct {
	UserID         int64
	OrganizationID *int64
	Action         string
	Resource       string
	ResourceID     int64
	Metadata       map[string]interface{}
}

type Activity struct {
	ID             int64                  `json:"id"`
	UserID         int64                  `json:"userId"`
	OrganizationID int64                  `json:"organizationId"`
	Action         string                 `json:"action"`
	Resource       *string                `json:"resource,omitempty"`
	ResourceID     *string                `json:"resourceId,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
}

func FromDataModel(a *activityDatamodel.ActivityLog) *Activity {
	return &Activity{
		ID:             a.ID,
		UserID:         a.UserID,
		OrganizationID: a.OrganizationID,
		Action:         a.Action,
		Resource:       a.Resource,
		ResourceID:     a.ResourceID,
		Metadata:       a.Metadata,
		CreatedAt:      a.CreatedAt,
	}
}

func (e Entry) toDataModel(orgID int64) *activityDatamodel.ActivityLog {
	log := &activityDatamodel.ActivityLog{
		UserID:         e.UserID,
		OrganizationID: orgID,
		Action:         e.Action,
		Metadata:       e.Metadata,
	}
	if e.Resource != "" {
		resource := e.Resource
		log.Resource = &resource
	}
	if e.ResourceID != 0 {
		id := strconv.FormatInt(e.ResourceID, 10)
		log.ResourceID = &id
	}
	return log
}

// ClampLimit applies the default and the ceiling to a requested page size.
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
