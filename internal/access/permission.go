package access

import (
	"context"
	"fmt"
	"strings"

	"github.com/frahmantamala/admin-dashboard/internal"
)

// Level is a report sharing level. Higher levels imply the lower ones.
type Level int

const (
	LevelNone Level = iota
	LevelViewer
	LevelCommenter
	LevelEditor
	LevelOwner
)

// Levels lists the grantable levels from weakest to strongest.
var Levels = []Level{LevelViewer, LevelCommenter, LevelEditor, LevelOwner}

var levelNames = map[Level]string{
	LevelViewer:    "viewer",
	LevelCommenter: "commenter",
	LevelEditor:    "editor",
	LevelOwner:     "owner",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "none"
}

func (l Level) Satisfies(required Level) bool {
	return l != LevelNone && l >= required
}

func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for level, name := range levelNames {
		if name == s {
			return level, nil
		}
	}
	return LevelNone, internal.NewValidationError(
		fmt.Sprintf("invalid permission %q: must be one of owner, editor, commenter, viewer", s),
		internal.ErrCodeInvalidPermission)
}

// ReportRef is the slice of a report the evaluator needs.
type ReportRef struct {
	ID             int64
	OrganizationID int64
	CreatedBy      int64
}

type PermissionLookup interface {
	// FindLevel returns the granted level, or found=false when no grant exists.
	FindLevel(ctx context.Context, reportID, userID int64) (level Level, found bool, err error)
}

type Evaluator struct {
	lookup PermissionLookup
}

func NewEvaluator(lookup PermissionLookup) *Evaluator {
	return &Evaluator{lookup: lookup}
}

// CanAccess decides whether user may act on report at the required level.
// The tenant check always runs before any grant lookup.
func (e *Evaluator) CanAccess(ctx context.Context, user *internal.User, report ReportRef, required Level) error {
	if user == nil {
		return internal.ErrUnauthenticated
	}
	if user.IsSuperadmin() {
		return nil
	}
	if !user.InOrganization(report.OrganizationID) {
		return internal.ErrCrossTenantAccess
	}
	if report.CreatedBy == user.ID {
		return nil
	}

	level, found, err := e.lookup.FindLevel(ctx, report.ID, user.ID)
	if err != nil {
		return internal.NewInternalError("failed to check report permission", err)
	}
	if found && level.Satisfies(required) {
		return nil
	}
	return internal.ErrInsufficientLevel
}

// CanManage gates listing a report's grants: the report owner, or any admin
// of the report's organization.
func (e *Evaluator) CanManage(ctx context.Context, user *internal.User, report ReportRef) error {
	if err := SameTenant(user, report.OrganizationID); err != nil {
		return err
	}
	if user.IsAdmin() {
		return nil
	}
	return e.CanAccess(ctx, user, report, LevelOwner)
}
