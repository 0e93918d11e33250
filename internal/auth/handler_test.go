package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/auth"
	userDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/user"
	"github.com/frahmantamala/admin-dashboard/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

var _ = Describe("Auth Handler", func() {
	var (
		repo     *mockRepository
		tokenGen *auth.JWTTokenGenerator
		handler  *auth.Handler
		rbac     *auth.RBACAuthorization
		token    string
	)

	BeforeEach(func() {
		repo = newMockRepository()
		tokenGen = auth.NewJWTTokenGenerator(testSecret, time.Hour)
		service := auth.NewService(repo, tokenGen, &mockRecorder{}, &mockPublisher{}, quietLogger(), internal.SecurityConfig{BCryptCost: bcrypt.MinCost})
		handler = auth.NewHandler(transport.NewBaseHandler(quietLogger()), service)
		rbac = auth.NewRBACAuthorization(quietLogger())

		repo.addUser(&userDatamodel.User{
			ID: 1, Username: "bob", Email: "bob@acme.io", Name: "Bob",
			Role: string(internal.RoleUser), OrganizationID: orgID(10), IsActive: true,
		}, "correct-password")
		token, _, _ = tokenGen.GenerateAccessToken(1, "bob@acme.io")
	})

	echoUser := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := internal.UserFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_ = json.NewEncoder(w).Encode(user)
	})

	Describe("AuthMiddleware", func() {
		It("attaches the resolved user", func() {
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			handler.AuthMiddleware(echoUser).ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			var user internal.User
			Expect(json.NewDecoder(w.Body).Decode(&user)).To(Succeed())
			Expect(user.Email).To(Equal("bob@acme.io"))
		})

		It("returns 401 with an error code when the header is missing", func() {
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			w := httptest.NewRecorder()
			handler.AuthMiddleware(echoUser).ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			var resp transport.ErrorResponse
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Error).To(Equal(string(internal.ErrCodeUnauthenticated)))
		})

		It("returns 401 for a garbage token", func() {
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			req.Header.Set("Authorization", "Bearer not.a.jwt")
			w := httptest.NewRecorder()
			handler.AuthMiddleware(echoUser).ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("OptionalAuthMiddleware", func() {
		It("continues anonymously on a bad token", func() {
			req := httptest.NewRequest(http.MethodPost, "/auth/forgot-password", nil)
			req.Header.Set("Authorization", "Bearer not.a.jwt")
			w := httptest.NewRecorder()
			handler.OptionalAuthMiddleware(echoUser).ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusNoContent))
		})
	})

	Describe("RBAC", func() {
		It("forbids a user role on admin routes", func() {
			req := httptest.NewRequest(http.MethodPost, "/folders", nil)
			req = req.WithContext(internal.ContextWithUser(context.Background(), &internal.User{ID: 1, Role: internal.RoleUser, OrganizationID: orgID(10)}))
			w := httptest.NewRecorder()
			rbac.RequireAdmin()(echoUser).ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusForbidden))
		})

		It("returns 401 when no identity is present", func() {
			req := httptest.NewRequest(http.MethodGet, "/organizations", nil)
			w := httptest.NewRecorder()
			rbac.RequireSuperadmin()(echoUser).ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("Login", func() {
		It("returns 401 for bad credentials", func() {
			body, _ := json.Marshal(auth.LoginDTO{Email: "bob@acme.io", Password: "wrong-password"})
			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
			w := httptest.NewRecorder()
			handler.Login(w, req)
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("returns 400 for a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte("{")))
			w := httptest.NewRecorder()
			handler.Login(w, req)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns a token", func() {
			body, _ := json.Marshal(auth.LoginDTO{Email: "bob@acme.io", Password: "correct-password"})
			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
			w := httptest.NewRecorder()
			handler.Login(w, req)
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp auth.AuthResponse
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Token).NotTo(BeEmpty())
			Expect(resp.User.Email).To(Equal("bob@acme.io"))
		})
	})
})
