package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/access"
	"github.com/frahmantamala/admin-dashboard/internal/auth"
	folderDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/folder"
	organizationDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/organization"
	reportDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/report"
	userDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/user"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const demoOrganizationName = "Demo Organization"

var (
	seedEmail    string
	seedPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Insert a superadmin and a demo organization with an admin, a folder and a report. Existing rows are left alone.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, lg, err := setup()
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gormDB, err := initGorm(db, lg)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if err := seed(cmd.Context(), gormDB, cfg.Security.BCryptCost); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	},
}

func seed(ctx context.Context, db *gorm.DB, bcryptCost int) error {
	hash, err := auth.HashPassword(seedPassword, bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	superadmin, created, err := ensureUser(ctx, db, &userDatamodel.User{
		Username:     "superadmin",
		Email:        seedEmail,
		PasswordHash: hash,
		Name:         "Super Admin",
		Role:         string(internal.RoleSuperadmin),
		IsActive:     true,
	})
	if err != nil {
		return err
	}
	printSeeded("superadmin", superadmin.Email, created)

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var org organizationDatamodel.Organization
		err := tx.Where("name = ? AND deleted_at IS NULL", demoOrganizationName).First(&org).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			org = organizationDatamodel.Organization{
				Name:     demoOrganizationName,
				Settings: map[string]interface{}{},
			}
			if err := tx.Create(&org).Error; err != nil {
				return fmt.Errorf("insert organization: %w", err)
			}
			printSeeded("organization", org.Name, true)
		} else if err != nil {
			return err
		}

		admin, created, err := ensureUser(ctx, tx, &userDatamodel.User{
			Username:       "demo-admin",
			Email:          "admin@demo.local",
			PasswordHash:   hash,
			Name:           "Demo Admin",
			Role:           string(internal.RoleAdmin),
			OrganizationID: &org.ID,
			IsActive:       true,
		})
		if err != nil {
			return err
		}
		printSeeded("admin", admin.Email, created)

		var folder folderDatamodel.Folder
		err = tx.Where("organization_id = ? AND name = ?", org.ID, "Finance").First(&folder).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			folder = folderDatamodel.Folder{Name: "Finance", OrganizationID: org.ID, CreatedBy: admin.ID}
			if err := tx.Create(&folder).Error; err != nil {
				return fmt.Errorf("insert folder: %w", err)
			}
			printSeeded("folder", folder.Name, true)
		} else if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&reportDatamodel.Report{}).Where("organization_id = ?", org.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		r := reportDatamodel.Report{
			Name:           "Quarterly Revenue",
			FileType:       "xlsx",
			FolderID:       &folder.ID,
			OrganizationID: org.ID,
			CreatedBy:      admin.ID,
		}
		if err := tx.Create(&r).Error; err != nil {
			return fmt.Errorf("insert report: %w", err)
		}
		if err := tx.Create(&reportDatamodel.ReportPermission{
			ReportID:   r.ID,
			UserID:     admin.ID,
			Permission: access.LevelOwner.String(),
			GrantedBy:  admin.ID,
		}).Error; err != nil {
			return fmt.Errorf("insert owner permission: %w", err)
		}
		printSeeded("report", r.Name, true)
		return nil
	})
}

// ensureUser inserts u unless a user with the same email exists.
func ensureUser(ctx context.Context, db *gorm.DB, u *userDatamodel.User) (*userDatamodel.User, bool, error) {
	var existing userDatamodel.User
	err := db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", u.Email).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, false, fmt.Errorf("insert user %s: %w", u.Email, err)
	}
	return u, true, nil
}

func printSeeded(kind, name string, created bool) {
	if created {
		fmt.Printf("Seeded %s: %s\n", kind, name)
		return
	}
	fmt.Printf("%s already exists: %s\n", kind, name)
}

func init() {
	seedCmd.Flags().StringVar(&seedEmail, "email", "superadmin@example.com", "superadmin email")
	seedCmd.Flags().StringVar(&seedPassword, "password", "ChangeMe123!", "password for seeded accounts")
}
