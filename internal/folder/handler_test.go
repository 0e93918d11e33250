package folder_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/folder"
	"github.com/frahmantamala/admin-dashboard/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Folder Handler", func() {
	var (
		repo    *MockRepository
		handler *folder.Handler
	)

	BeforeEach(func() {
		repo = NewMockRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 4}))
		handler = folder.NewHandler(&transport.BaseHandler{Logger: logger}, folder.NewService(repo, &MockRecorder{}, logger))
	})

	do := func(fn http.HandlerFunc, actor *internal.User, method, target, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		req = req.WithContext(internal.ContextWithUser(req.Context(), actor))
		w := httptest.NewRecorder()
		fn(w, req)
		return w
	}

	It("returns 403 when a regular user creates a folder", func() {
		member := &internal.User{ID: 3, Role: internal.RoleUser, OrganizationID: orgID(10)}
		w := do(handler.CreateFolder, member, http.MethodPost, "/folders", `{"name":"Finance"}`)
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("creates the folder in the superadmin's chosen organization", func() {
		superadmin := &internal.User{ID: 1, Role: internal.RoleSuperadmin}
		w := do(handler.CreateFolder, superadmin, http.MethodPost, "/folders?organizationId=20", `{"name":"Finance"}`)
		Expect(w.Code).To(Equal(http.StatusCreated))

		var f folder.Folder
		Expect(json.NewDecoder(w.Body).Decode(&f)).To(Succeed())
		Expect(f.OrganizationID).To(Equal(int64(20)))
	})

	It("pins admins to their own organization", func() {
		admin := &internal.User{ID: 2, Role: internal.RoleAdmin, OrganizationID: orgID(10)}
		w := do(handler.CreateFolder, admin, http.MethodPost, "/folders", `{"name":"Finance","organizationId":20}`)
		Expect(w.Code).To(Equal(http.StatusCreated))

		w = do(handler.ListFolders, admin, http.MethodGet, "/folders?organizationId=20", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var resp folder.FoldersResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Folders).To(HaveLen(1))
		Expect(resp.Folders[0].OrganizationID).To(Equal(int64(10)))
	})
})
