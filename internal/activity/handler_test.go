package activity_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/activity"
	"github.com/frahmantamala/admin-dashboard/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Activity Handler", func() {
	var (
		repo    *MockRepository
		handler *activity.Handler
	)

	BeforeEach(func() {
		repo = &MockRepository{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 4}))
		service := activity.NewService(repo, logger, nil)
		handler = activity.NewHandler(&transport.BaseHandler{Logger: logger}, service)

		service.Record(context.Background(), activity.Entry{UserID: 2, OrganizationID: orgID(10), Action: activity.ActionLogin})
		service.Record(context.Background(), activity.Entry{UserID: 9, OrganizationID: orgID(20), Action: activity.ActionLogin})
	})

	serve := func(user *internal.User, target string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req = req.WithContext(internal.ContextWithUser(req.Context(), user))
		w := httptest.NewRecorder()
		handler.ListActivity(w, req)
		return w
	}

	It("ignores a foreign organizationId from an admin", func() {
		admin := &internal.User{ID: 2, Role: internal.RoleAdmin, OrganizationID: orgID(10)}
		w := serve(admin, "/activity?organizationId=20")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp activity.ActivitiesResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Activities).To(HaveLen(1))
		Expect(resp.Activities[0].OrganizationID).To(Equal(int64(10)))
	})

	It("requires superadmins to pick an organization", func() {
		superadmin := &internal.User{ID: 1, Role: internal.RoleSuperadmin}
		w := serve(superadmin, "/activity")
		Expect(w.Code).To(Equal(http.StatusBadRequest))

		var resp transport.ErrorResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Error).To(Equal(string(internal.ErrCodeOrganizationRequired)))

		w = serve(superadmin, "/activity?organizationId=20")
		Expect(w.Code).To(Equal(http.StatusOK))
	})
})
