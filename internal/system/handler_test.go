package system_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/activity"
	"github.com/frahmantamala/admin-dashboard/internal/system"
	"github.com/frahmantamala/admin-dashboard/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("System Handler", func() {
	var (
		repo    *MockRepository
		handler *system.Handler
	)

	BeforeEach(func() {
		repo = &MockRepository{
			Stats: []*system.OrganizationStats{{ID: 10, Name: "Acme", UserCount: 2, AdminCount: 1, ReportCount: 4}},
			Entries: []*system.ActivityEntry{
				{Activity: activity.Activity{ID: 2, OrganizationID: 10, Action: activity.ActionReportCreated}, OrganizationName: "Acme"},
				{Activity: activity.Activity{ID: 1, OrganizationID: 10, Action: activity.ActionLogin}, OrganizationName: "Acme"},
			},
		}
		logger := quietLogger()
		handler = system.NewHandler(&transport.BaseHandler{Logger: logger}, system.NewService(repo, logger))
	})

	request := func(user *internal.User, target string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		if user != nil {
			req = req.WithContext(internal.ContextWithUser(req.Context(), user))
		}
		return req
	}

	It("serves metrics to superadmins", func() {
		w := httptest.NewRecorder()
		handler.GetMetrics(w, request(&internal.User{ID: 1, Role: internal.RoleSuperadmin}, "/system/metrics"))
		Expect(w.Code).To(Equal(http.StatusOK))

		var body map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body).To(HaveKeyWithValue("totalOrganizations", BeNumerically("==", 1)))
		Expect(body).To(HaveKeyWithValue("systemHealth", "healthy"))
		Expect(body["organizations"]).To(HaveLen(1))
	})

	It("returns 403 to admins and 401 without identity", func() {
		w := httptest.NewRecorder()
		handler.GetMetrics(w, request(&internal.User{ID: 2, Role: internal.RoleAdmin, OrganizationID: orgID(10)}, "/system/metrics"))
		Expect(w.Code).To(Equal(http.StatusForbidden))

		w = httptest.NewRecorder()
		handler.GetActivity(w, request(nil, "/system/activity"))
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("flattens activity entries with their organization name", func() {
		w := httptest.NewRecorder()
		handler.GetActivity(w, request(&internal.User{ID: 1, Role: internal.RoleSuperadmin}, "/system/activity?limit=1"))
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(repo.LastLimit).To(Equal(1))

		var body struct {
			Activities []map[string]interface{} `json:"activities"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body.Activities).To(HaveLen(1))
		Expect(body.Activities[0]).To(HaveKeyWithValue("organizationName", "Acme"))
		Expect(body.Activities[0]).To(HaveKeyWithValue("action", activity.ActionReportCreated))
	})
})
