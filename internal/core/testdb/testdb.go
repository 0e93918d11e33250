// Package testdb opens an in-memory sqlite database with every table the
// repositories use. It exists for tests only.
package testdb

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing/fstest"

	activityDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/activity"
	folderDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/folder"
	invitationDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/invitation"
	organizationDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/organization"
	reportDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/report"
	userDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/user"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a database whose tables come from the gorm models.
func Open() (*gorm.DB, error) {
	db, err := open()
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&organizationDatamodel.Organization{},
		&userDatamodel.User{},
		&folderDatamodel.Folder{},
		&reportDatamodel.Report{},
		&reportDatamodel.ReportPermission{},
		&activityDatamodel.ActivityLog{},
		&invitationDatamodel.UserInvitation{},
	)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// OpenMigrated returns a database built by running the goose migrations in
// dir, so check constraints and expression indexes match the real schema.
// Foreign keys stay unenforced, as sqlite does by default.
func OpenMigrated(ctx context.Context, dir string) (*gorm.DB, error) {
	fsys, err := SQLiteMigrations(dir)
	if err != nil {
		return nil, err
	}

	db, err := open()
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	provider, err := goose.NewProvider(database.DialectSQLite3, sqlDB, fsys)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return nil, fmt.Errorf("goose up: %w", err)
	}
	return db, nil
}

var sqliteDialect = strings.NewReplacer(
	"BIGSERIAL PRIMARY KEY", "INTEGER PRIMARY KEY AUTOINCREMENT",
	"'{}'::jsonb", "'{}'",
	"JSONB", "TEXT",
	"TIMESTAMPTZ", "DATETIME",
	"NOW()", "CURRENT_TIMESTAMP",
)

// SQLiteMigrations reads the .sql migrations in dir and rewrites the
// postgres-only column types and defaults. Constraints are left untouched.
func SQLiteMigrations(dir string) (fs.FS, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no migrations in %s", dir)
	}

	fsys := fstest.MapFS{}
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		fsys[filepath.Base(path)] = &fstest.MapFile{Data: []byte(sqliteDialect.Replace(string(raw)))}
	}
	return fsys, nil
}

// A single connection keeps every query on the same in-memory instance.
func open() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}
