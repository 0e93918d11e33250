package user_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/frahmantamala/admin-dashboard/internal"
	userDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/user"
	"github.com/frahmantamala/admin-dashboard/internal/transport"
	"github.com/frahmantamala/admin-dashboard/internal/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

var _ = Describe("User Handler", func() {
	var (
		repo    *MockRepository
		handler *user.Handler
	)

	BeforeEach(func() {
		repo = &MockRepository{
			orgs: map[int64]bool{10: true},
			users: []*userDatamodel.User{
				{ID: 2, Username: "alice", Email: "alice@acme.io", Role: "admin", OrganizationID: orgID(10), IsActive: true},
				{ID: 4, Username: "carol", Email: "carol@globex.io", Role: "admin", OrganizationID: orgID(20), IsActive: true},
			},
		}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 4}))
		service := user.NewService(repo, &MockRecorder{}, logger, bcrypt.MinCost)
		handler = user.NewHandler(&transport.BaseHandler{Logger: logger}, service)
	})

	do := func(fn http.HandlerFunc, actor *internal.User, method, target, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		req = req.WithContext(internal.ContextWithUser(req.Context(), actor))
		w := httptest.NewRecorder()
		fn(w, req)
		return w
	}

	It("lists users of the superadmin's chosen organization", func() {
		superadmin := &internal.User{ID: 1, Role: internal.RoleSuperadmin}
		w := do(handler.ListUsers, superadmin, http.MethodGet, "/users?organizationId=20", "")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp user.UsersResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Users).To(HaveLen(1))
		Expect(resp.Users[0].Username).To(Equal("carol"))
	})

	It("returns 400 when a superadmin omits organizationId", func() {
		superadmin := &internal.User{ID: 1, Role: internal.RoleSuperadmin}
		w := do(handler.ListUsers, superadmin, http.MethodGet, "/users", "")
		Expect(w.Code).To(Equal(http.StatusBadRequest))

		var resp transport.ErrorResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Error).To(Equal(string(internal.ErrCodeOrganizationRequired)))
	})

	It("never serializes the password hash", func() {
		admin := &internal.User{ID: 2, Role: internal.RoleAdmin, OrganizationID: orgID(10)}
		w := do(handler.CreateUser, admin, http.MethodPost, "/users",
			`{"username":"dave","email":"dave@acme.io","password":"correct-horse","name":"Dave"}`)
		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(w.Body.String()).NotTo(ContainSubstring("password"))
		Expect(w.Body.String()).NotTo(ContainSubstring("$2a$"))
	})

	It("returns 403 when an admin tries to create a superadmin", func() {
		admin := &internal.User{ID: 2, Role: internal.RoleAdmin, OrganizationID: orgID(10)}
		w := do(handler.CreateUser, admin, http.MethodPost, "/users",
			`{"username":"eve","email":"eve@acme.io","password":"correct-horse","name":"Eve","role":"superadmin"}`)
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("returns 401 without an identity", func() {
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		w := httptest.NewRecorder()
		handler.ListUsers(w, req)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})
})
