package report_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"

	"github.com/frahmantamala/admin-dashboard/internal"
	userDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/user"
	"github.com/frahmantamala/admin-dashboard/internal/report"
	"github.com/frahmantamala/admin-dashboard/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Report Handler", func() {
	var (
		repo    *MockRepository
		handler *report.Handler
		ownerA  *internal.User
		adminB  *internal.User
	)

	BeforeEach(func() {
		repo = NewMockRepository()
		logger := quietLogger()
		service := report.NewService(repo, NewMockStore(), &MockRecorder{}, logger, report.DefaultMaxUploadBytes)
		handler = report.NewHandler(&transport.BaseHandler{Logger: logger}, service)

		ownerA = &internal.User{ID: 3, Role: internal.RoleUser, OrganizationID: orgID(10)}
		adminB = &internal.User{ID: 5, Role: internal.RoleAdmin, OrganizationID: orgID(20)}
		repo.users[3] = &userDatamodel.User{ID: 3, Role: "user", OrganizationID: orgID(10)}
		repo.users[5] = &userDatamodel.User{ID: 5, Role: "admin", OrganizationID: orgID(20)}
	})

	do := func(fn http.HandlerFunc, actor *internal.User, req *http.Request, id string) *httptest.ResponseRecorder {
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

	jsonRequest := func(method, target, body string) *http.Request {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	createReport := func() int64 {
		w := do(handler.CreateReport, ownerA, jsonRequest(http.MethodPost, "/reports", `{"name":"Q3","fileType":"pdf","organizationId":20}`), "")
		Expect(w.Code).To(Equal(http.StatusCreated))
		var r report.Report
		Expect(json.NewDecoder(w.Body).Decode(&r)).To(Succeed())
		Expect(r.OrganizationID).To(Equal(int64(10)))
		return r.ID
	}

	It("returns 403 when an admin of another organization grants access", func() {
		id := createReport()
		w := do(handler.GrantPermission, adminB, jsonRequest(http.MethodPost, "/reports/1/permissions", `{"userId":5,"permission":"viewer"}`), "1")
		Expect(w.Code).To(Equal(http.StatusForbidden))
		Expect(id).To(Equal(int64(1)))
	})

	It("returns the report and counts the view", func() {
		createReport()
		w := do(handler.GetReport, ownerA, httptest.NewRequest(http.MethodGet, "/reports/1", nil), "1")
		Expect(w.Code).To(Equal(http.StatusOK))

		var r report.Report
		Expect(json.NewDecoder(w.Body).Decode(&r)).To(Succeed())
		Expect(r.ViewCount).To(Equal(int64(1)))
	})

	It("toggles the star when no body is sent", func() {
		createReport()
		w := do(handler.StarReport, ownerA, httptest.NewRequest(http.MethodPatch, "/reports/1/star", nil), "1")
		Expect(w.Code).To(Equal(http.StatusOK))

		w = do(handler.ListReports, ownerA, httptest.NewRequest(http.MethodGet, "/reports?starred=true", nil), "")
		var resp report.ReportsResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Reports).To(HaveLen(1))
	})

	It("uploads and downloads a file", func() {
		body := &bytes.Buffer{}
		mw := multipart.NewWriter(body)
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Disposition": {`form-data; name="file"; filename="deck.pdf"`},
			"Content-Type":        {"application/pdf"},
		})
		Expect(err).NotTo(HaveOccurred())
		_, err = io.WriteString(part, pdfBytes)
		Expect(err).NotTo(HaveOccurred())
		Expect(mw.WriteField("name", "Board deck")).To(Succeed())
		Expect(mw.Close()).To(Succeed())

		req := httptest.NewRequest(http.MethodPost, "/reports/upload", body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := do(handler.UploadReport, ownerA, req, "")
		Expect(w.Code).To(Equal(http.StatusCreated))

		var r report.Report
		Expect(json.NewDecoder(w.Body).Decode(&r)).To(Succeed())
		Expect(r.Name).To(Equal("Board deck"))

		w = do(handler.DownloadReport, ownerA, httptest.NewRequest(http.MethodGet, "/reports/1/download", nil), "1")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(Equal("application/pdf"))
		Expect(w.Header().Get("Content-Disposition")).To(ContainSubstring("Board deck.pdf"))
		Expect(w.Body.String()).To(Equal(pdfBytes))
	})

	It("returns 400 when the upload has no file", func() {
		body := &bytes.Buffer{}
		mw := multipart.NewWriter(body)
		Expect(mw.WriteField("name", "nothing")).To(Succeed())
		Expect(mw.Close()).To(Succeed())

		req := httptest.NewRequest(http.MethodPost, "/reports/upload", body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := do(handler.UploadReport, ownerA, req, "")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("requires superadmins to scope the list", func() {
		superadmin := &internal.User{ID: 1, Role: internal.RoleSuperadmin}
		w := do(handler.ListReports, superadmin, httptest.NewRequest(http.MethodGet, "/reports", nil), "")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
