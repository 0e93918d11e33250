package invitation_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/invitation"
	"github.com/frahmantamala/admin-dashboard/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Invitation Handler", func() {
	var (
		repo    *MockRepository
		handler *invitation.Handler
	)

	BeforeEach(func() {
		repo = &MockRepository{users: map[string]bool{}}
		logger := quietLogger()
		service := invitation.NewService(repo, &MockRecorder{}, &MockPublisher{}, logger, 0)
		handler = invitation.NewHandler(&transport.BaseHandler{Logger: logger}, service)
	})

	post := func(actor *internal.User, target, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
		req = req.WithContext(internal.ContextWithUser(req.Context(), actor))
		w := httptest.NewRecorder()
		handler.CreateInvitation(w, req)
		return w
	}

	It("invites into the admin's own organization whatever the body says", func() {
		admin := &internal.User{ID: 2, Role: internal.RoleAdmin, OrganizationID: orgID(10)}
		w := post(admin, "/invitations", `{"email":"new@acme.io","role":"user","organizationId":20}`)
		Expect(w.Code).To(Equal(http.StatusCreated))

		var inv invitation.Invitation
		Expect(json.NewDecoder(w.Body).Decode(&inv)).To(Succeed())
		Expect(inv.OrganizationID).To(Equal(int64(10)))
	})

	It("returns 403 for a superadmin role", func() {
		admin := &internal.User{ID: 2, Role: internal.RoleAdmin, OrganizationID: orgID(10)}
		w := post(admin, "/invitations", `{"email":"new@acme.io","role":"superadmin"}`)
		Expect(w.Code).To(Equal(http.StatusForbidden))

		var resp transport.ErrorResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Error).To(Equal(string(internal.ErrCodeRoleEscalation)))
	})

	It("requires superadmins to name the organization", func() {
		superadmin := &internal.User{ID: 1, Role: internal.RoleSuperadmin}
		w := post(superadmin, "/invitations", `{"email":"new@acme.io"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))

		w = post(superadmin, "/invitations", `{"email":"new@acme.io","organizationId":30}`)
		Expect(w.Code).To(Equal(http.StatusCreated))
	})
})
