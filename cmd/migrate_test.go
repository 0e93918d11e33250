package cmd

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/access"
	invitationDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/invitation"
	reportDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/report"
	userDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/user"
	"github.com/frahmantamala/admin-dashboard/internal/core/testdb"
	"github.com/frahmantamala/admin-dashboard/internal/report"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
	"gorm.io/gorm"
)

const migrationsDir = "../db/migrations"

var quoted = regexp.MustCompile(`'([^']+)'`)

// checkValues returns the quoted literals of the named IN (...) constraint.
func checkValues(file, constraint string) []string {
	raw, err := os.ReadFile(filepath.Join(migrationsDir, file))
	Expect(err).NotTo(HaveOccurred())

	re := regexp.MustCompile(`CONSTRAINT ` + constraint + ` CHECK \(([^\n]*)\)`)
	m := re.FindStringSubmatch(string(raw))
	Expect(m).NotTo(BeNil(), constraint)

	var values []string
	for _, q := range quoted.FindAllStringSubmatch(m[1], -1) {
		values = append(values, q[1])
	}
	return values
}

var _ = Describe("Migrations", func() {
	var (
		ctx context.Context
		db  *gorm.DB
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = testdb.OpenMigrated(ctx, migrationsDir)
		Expect(err).NotTo(HaveOccurred())
	})

	It("rolls every migration back down", func() {
		fsys, err := testdb.SQLiteMigrations(migrationsDir)
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())

		provider, err := goose.NewProvider(database.DialectSQLite3, sqlDB, fsys)
		Expect(err).NotTo(HaveOccurred())
		version, err := provider.GetDBVersion(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(Equal(int64(5)))

		_, err = provider.DownTo(ctx, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(db.Migrator().HasTable("reports")).To(BeFalse())
	})

	Describe("check constraints", func() {
		It("allow exactly the grantable share levels", func() {
			var names []string
			for _, level := range access.Levels {
				names = append(names, level.String())
			}
			Expect(checkValues("00004_create_reports.sql", "report_permissions_level_check")).To(ConsistOf(names))
		})

		It("allow exactly the supported file types", func() {
			Expect(checkValues("00004_create_reports.sql", "reports_file_type_check")).To(ConsistOf(report.FileTypes))
		})

		It("allow exactly the known roles", func() {
			Expect(checkValues("00002_create_users.sql", "users_role_check")).To(ConsistOf(
				string(internal.RoleSuperadmin), string(internal.RoleAdmin), string(internal.RoleUser)))
		})

		It("reject a file type outside the set", func() {
			err := db.Create(&reportDatamodel.Report{Name: "x", FileType: "exe", OrganizationID: 1, CreatedBy: 1}).Error
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("users", func() {
		newUser := func(username, email string, role internal.Role, org *int64) *userDatamodel.User {
			return &userDatamodel.User{
				Username: username, Email: email, PasswordHash: "digest", Name: username,
				Role: string(role), OrganizationID: org, IsActive: true,
			}
		}

		It("requires an organization for everyone but superadmins", func() {
			Expect(db.Create(newUser("root", "root@acme.io", internal.RoleSuperadmin, nil)).Error).To(Succeed())
			Expect(db.Create(newUser("drifter", "drifter@acme.io", internal.RoleUser, nil)).Error).To(HaveOccurred())

			org := int64(1)
			Expect(db.Create(newUser("member", "member@acme.io", internal.RoleUser, &org)).Error).To(Succeed())
		})

		It("treats emails case-insensitively", func() {
			org := int64(1)
			Expect(db.Create(newUser("ops", "Ops@acme.io", internal.RoleAdmin, &org)).Error).To(Succeed())
			Expect(db.Create(newUser("ops2", "ops@ACME.io", internal.RoleUser, &org)).Error).To(HaveOccurred())
		})
	})

	Describe("user_invitations", func() {
		It("limits invites to admin and user roles but lets reset tokens carry any role", func() {
			org := int64(1)
			invite := func(token, role, purpose string) error {
				return db.Create(&invitationDatamodel.UserInvitation{
					Email: "new@acme.io", Role: role, OrganizationID: &org, InvitedBy: 1,
					Token: token, Purpose: purpose, ExpiresAt: time.Now().Add(time.Hour),
				}).Error
			}

			Expect(invite("t1", "admin", invitationDatamodel.PurposeInvite)).To(Succeed())
			Expect(invite("t2", "superadmin", invitationDatamodel.PurposeInvite)).To(HaveOccurred())
			Expect(invite("t3", "superadmin", invitationDatamodel.PurposePasswordReset)).To(Succeed())
			Expect(invite("t4", "user", "magic_link")).To(HaveOccurred())
			Expect(invite("t1", "user", invitationDatamodel.PurposeInvite)).To(HaveOccurred())
		})
	})
})
