package organization_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/organization"
	"github.com/frahmantamala/admin-dashboard/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

var _ = Describe("Organization Handler", func() {
	var (
		repo       *MockRepository
		handler    *organization.Handler
		superadmin *internal.User
	)

	BeforeEach(func() {
		repo = NewMockRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 4}))
		service := organization.NewService(repo, &MockRecorder{}, logger, bcrypt.MinCost)
		handler = organization.NewHandler(&transport.BaseHandler{Logger: logger}, service)
		superadmin = &internal.User{ID: 1, Role: internal.RoleSuperadmin}
	})

	do := func(fn http.HandlerFunc, actor *internal.User, method, target, id, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		ctx := internal.ContextWithUser(req.Context(), actor)
		if id != "" {
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", id)
			ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
		}
		w := httptest.NewRecorder()
		fn(w, req.WithContext(ctx))
		return w
	}

	It("creates an organization and returns 201", func() {
		w := do(handler.CreateOrganization, superadmin, http.MethodPost, "/organizations", "",
			`{"name":"Acme","admin":{"email":"ops@acme.io","name":"Ops","username":"ops"}}`)
		Expect(w.Code).To(Equal(http.StatusCreated))

		var resp organization.CreateOrganizationResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Organization.Name).To(Equal("Acme"))
		Expect(resp.Admin.TemporaryPassword).NotTo(BeEmpty())
	})

	It("forbids admins", func() {
		admin := &internal.User{ID: 2, Role: internal.RoleAdmin, OrganizationID: orgID(1)}
		w := do(handler.ListOrganizations, admin, http.MethodGet, "/organizations", "", "")
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("returns 409 when deleting an organization with users", func() {
		w := do(handler.CreateOrganization, superadmin, http.MethodPost, "/organizations", "", `{"name":"Acme"}`)
		Expect(w.Code).To(Equal(http.StatusCreated))
		repo.userCounts[1] = 1

		w = do(handler.DeleteOrganization, superadmin, http.MethodDelete, "/organizations/1", "1", "")
		Expect(w.Code).To(Equal(http.StatusConflict))

		var resp transport.ErrorResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Error).To(Equal(string(internal.ErrCodeOrganizationHasUsers)))
	})

	It("rejects a malformed id", func() {
		w := do(handler.GetOrganization, superadmin, http.MethodGet, "/organizations/abc", "abc", "")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
