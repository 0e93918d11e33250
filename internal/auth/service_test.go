package auth_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/activity"
	"github.com/frahmantamala/admin-dashboard/internal/auth"
	invitationDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/invitation"
	userDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/user"
	"github.com/frahmantamala/admin-dashboard/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Module Suite")
}

const testSecret = "test-secret-test-secret-test-secret!"

type mockRepository struct {
	users       map[int64]*userDatamodel.User
	invitations map[string]*invitationDatamodel.UserInvitation
	nextID      int64
	failError   error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:       make(map[int64]*userDatamodel.User),
		invitations: make(map[string]*invitationDatamodel.UserInvitation),
		nextID:      100,
	}
}

func (m *mockRepository) addUser(u *userDatamodel.User, password string) *userDatamodel.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u.PasswordHash = string(hash)
	m.users[u.ID] = u
	return u
}

func (m *mockRepository) GetUserByID(_ context.Context, id int64) (*userDatamodel.User, error) {
	if m.failError != nil {
		return nil, m.failError
	}
	return m.users[id], nil
}

func (m *mockRepository) GetUserByEmail(_ context.Context, email string) (*userDatamodel.User, error) {
	if m.failError != nil {
		return nil, m.failError
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockRepository) GetUserByUsername(_ context.Context, username string) (*userDatamodel.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockRepository) UpdateLastActive(_ context.Context, userID int64, at time.Time) error {
	if u, ok := m.users[userID]; ok {
		u.LastActiveAt = &at
	}
	return nil
}

func (m *mockRepository) GetInvitationByToken(_ context.Context, token string) (*invitationDatamodel.UserInvitation, error) {
	if m.failError != nil {
		return nil, m.failError
	}
	return m.invitations[token], nil
}

func (m *mockRepository) CreateInvitation(_ context.Context, inv *invitationDatamodel.UserInvitation) error {
	if m.failError != nil {
		return m.failError
	}
	m.nextID++
	inv.ID = m.nextID
	m.invitations[inv.Token] = inv
	return nil
}

func (m *mockRepository) invitationByID(id int64) *invitationDatamodel.UserInvitation {
	for _, inv := range m.invitations {
		if inv.ID == id {
			return inv
		}
	}
	return nil
}

func (m *mockRepository) AcceptInvitation(_ context.Context, invitationID int64, user *userDatamodel.User) error {
	inv := m.invitationByID(invitationID)
	if inv == nil || inv.IsAccepted {
		return auth.ErrTokenConsumed
	}
	inv.IsAccepted = true
	m.nextID++
	user.ID = m.nextID
	m.users[user.ID] = user
	return nil
}

func (m *mockRepository) ResetPassword(_ context.Context, invitationID, userID int64, passwordHash string) error {
	inv := m.invitationByID(invitationID)
	if inv == nil || inv.IsAccepted {
		return auth.ErrTokenConsumed
	}
	inv.IsAccepted = true
	m.users[userID].PasswordHash = passwordHash
	return nil
}

type mockRecorder struct {
	mu      sync.Mutex
	entries []activity.Entry
}

func (m *mockRecorder) Record(_ context.Context, e activity.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
}

func (m *mockRecorder) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}

type mockPublisher struct {
	published []events.Event
}

func (m *mockPublisher) Publish(_ context.Context, e events.Event) error {
	m.published = append(m.published, e)
	return nil
}

func orgID(id int64) *int64 { return &id }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 4}))
}

var _ = Describe("AuthService", func() {
	var (
		repo      *mockRepository
		recorder  *mockRecorder
		publisher *mockPublisher
		tokenGen  *auth.JWTTokenGenerator
		service   *auth.Service
		ctx       context.Context
		alice     *userDatamodel.User
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = newMockRepository()
		recorder = &mockRecorder{}
		publisher = &mockPublisher{}
		tokenGen = auth.NewJWTTokenGenerator(testSecret, time.Hour)
		service = auth.NewService(repo, tokenGen, recorder, publisher, quietLogger(), internal.SecurityConfig{
			BCryptCost:    bcrypt.MinCost,
			ResetTokenTTL: time.Hour,
		})

		alice = repo.addUser(&userDatamodel.User{
			ID:             1,
			Username:       "alice",
			Email:          "alice@acme.io",
			Name:           "Alice",
			Role:           string(internal.RoleAdmin),
			OrganizationID: orgID(10),
			IsActive:       true,
		}, "correct-password")
	})

	Describe("Authenticate", func() {
		It("returns the user, a token and its lifetime", func() {
			resp, err := service.Authenticate(ctx, auth.LoginDTO{Email: "Alice@Acme.io ", Password: "correct-password"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Token).NotTo(BeEmpty())
			Expect(resp.ExpiresIn).To(BeNumerically("~", 3600, 2))
			Expect(resp.User.ID).To(Equal(int64(1)))
			Expect(resp.User.LastActiveAt).NotTo(BeNil())
			Expect(recorder.actions()).To(ConsistOf(activity.ActionLogin))
		})

		It("rejects a wrong password", func() {
			_, err := service.Authenticate(ctx, auth.LoginDTO{Email: "alice@acme.io", Password: "nope-nope"})
			Expect(err).To(Equal(internal.ErrInvalidCredentials))
		})

		It("rejects unknown emails the same way", func() {
			_, err := service.Authenticate(ctx, auth.LoginDTO{Email: "ghost@acme.io", Password: "whatever1"})
			Expect(err).To(Equal(internal.ErrInvalidCredentials))
		})

		It("rejects inactive users", func() {
			alice.IsActive = false
			_, err := service.Authenticate(ctx, auth.LoginDTO{Email: "alice@acme.io", Password: "correct-password"})
			Expect(err).To(Equal(internal.ErrUserInactive))
		})
	})

	Describe("ResolveIdentity", func() {
		It("reloads role and organization from the user row", func() {
			token, _, err := tokenGen.GenerateAccessToken(alice.ID, alice.Email)
			Expect(err).NotTo(HaveOccurred())

			alice.Role = string(internal.RoleUser)
			alice.OrganizationID = orgID(99)

			user, err := service.ResolveIdentity(ctx, token)
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Role).To(Equal(internal.RoleUser))
			Expect(*user.OrganizationID).To(Equal(int64(99)))
		})

		It("fails for deleted or deactivated users", func() {
			token, _, _ := tokenGen.GenerateAccessToken(alice.ID, alice.Email)
			alice.IsActive = false
			_, err := service.ResolveIdentity(ctx, token)
			Expect(err).To(Equal(internal.ErrUserInactive))

			delete(repo.users, alice.ID)
			_, err = service.ResolveIdentity(ctx, token)
			Expect(err).To(Equal(internal.ErrUnauthenticated))
		})

		It("fails for tokens signed with another secret", func() {
			other := auth.NewJWTTokenGenerator("another-secret-another-secret-!!", time.Hour)
			token, _, _ := other.GenerateAccessToken(alice.ID, alice.Email)
			_, err := service.ResolveIdentity(ctx, token)
			Expect(err).To(Equal(internal.ErrInvalidToken))
		})

		It("fails for expired tokens", func() {
			expired := auth.NewJWTTokenGenerator(testSecret, -time.Minute)
			token, _, _ := expired.GenerateAccessToken(alice.ID, alice.Email)
			_, err := service.ResolveIdentity(ctx, token)
			Expect(err).To(Equal(internal.ErrTokenExpired))
		})
	})

	Describe("Register", func() {
		var invite *invitationDatamodel.UserInvitation

		BeforeEach(func() {
			invite = &invitationDatamodel.UserInvitation{
				Email:          "new.hire@acme.io",
				Role:           string(internal.RoleUser),
				OrganizationID: orgID(10),
				InvitedBy:      alice.ID,
				Token:          "invite-token",
				Purpose:        invitationDatamodel.PurposeInvite,
				ExpiresAt:      time.Now().Add(24 * time.Hour),
			}
			Expect(repo.CreateInvitation(ctx, invite)).To(Succeed())
		})

		It("creates the user in the inviting organization", func() {
			resp, err := service.Register(ctx, auth.RegisterDTO{Token: "invite-token", Password: "long-enough", Name: "New Hire"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.User.Username).To(Equal("new.hire"))
			Expect(resp.User.Role).To(Equal(internal.RoleUser))
			Expect(*resp.User.OrganizationID).To(Equal(int64(10)))
			Expect(resp.Token).NotTo(BeEmpty())
			Expect(invite.IsAccepted).To(BeTrue())
			Expect(recorder.actions()).To(ContainElement(activity.ActionRegister))
		})

		It("is single use", func() {
			_, err := service.Register(ctx, auth.RegisterDTO{Token: "invite-token", Password: "long-enough", Name: "New Hire"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Register(ctx, auth.RegisterDTO{Token: "invite-token", Password: "long-enough", Name: "Again"})
			Expect(err).To(Equal(internal.ErrInvitationAlreadyAccepted))
		})

		It("distinguishes expired from unknown tokens", func() {
			invite.ExpiresAt = time.Now().Add(-time.Minute)
			_, err := service.Register(ctx, auth.RegisterDTO{Token: "invite-token", Password: "long-enough", Name: "Late"})
			Expect(err).To(Equal(internal.ErrInvitationExpired))

			_, err = service.Register(ctx, auth.RegisterDTO{Token: "nope", Password: "long-enough", Name: "Who"})
			Expect(err).To(Equal(internal.ErrInvitationNotFound))
		})

		It("reports accepted before expired", func() {
			invite.IsAccepted = true
			invite.ExpiresAt = time.Now().Add(-time.Minute)
			_, err := service.Register(ctx, auth.RegisterDTO{Token: "invite-token", Password: "long-enough", Name: "Late"})
			Expect(err).To(Equal(internal.ErrInvitationAlreadyAccepted))
		})

		It("refuses when the email already has an account", func() {
			invite.Email = alice.Email
			_, err := service.Register(ctx, auth.RegisterDTO{Token: "invite-token", Password: "long-enough", Name: "Dup"})
			Expect(err).To(Equal(internal.ErrUserAlreadyExists))
		})

		It("does not accept reset tokens", func() {
			invite.Purpose = invitationDatamodel.PurposePasswordReset
			_, err := service.Register(ctx, auth.RegisterDTO{Token: "invite-token", Password: "long-enough", Name: "X"})
			Expect(err).To(Equal(internal.ErrInvitationNotFound))
		})

		It("enforces the password policy", func() {
			_, err := service.Register(ctx, auth.RegisterDTO{Token: "invite-token", Password: "short", Name: "X"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			details := appErr.Details.(internal.ValidationErrors)
			Expect(details.Errors[0].Code).To(Equal(string(internal.ErrCodePasswordTooShort)))
		})
	})

	Describe("ForgotPassword and ResetPassword", func() {
		It("answers identically for unknown emails", func() {
			known, err := service.ForgotPassword(ctx, auth.ForgotPasswordDTO{Email: "alice@acme.io"}, nil)
			Expect(err).NotTo(HaveOccurred())
			unknown, err := service.ForgotPassword(ctx, auth.ForgotPasswordDTO{Email: "ghost@acme.io"}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(unknown).To(Equal(known))
			Expect(publisher.published).To(HaveLen(1))
		})

		It("still answers when storage fails", func() {
			repo.failError = errors.New("db down")
			resp, err := service.ForgotPassword(ctx, auth.ForgotPasswordDTO{Email: "alice@acme.io"}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Message).NotTo(BeEmpty())
		})

		It("resets the password once with the published token", func() {
			_, err := service.ForgotPassword(ctx, auth.ForgotPasswordDTO{Email: "alice@acme.io"}, nil)
			Expect(err).NotTo(HaveOccurred())
			evt := publisher.published[0].(*events.PasswordResetRequestedEvent)
			Expect(evt.UserID).To(Equal(alice.ID))

			_, err = service.ResetPassword(ctx, auth.ResetPasswordDTO{Token: evt.Token, Password: "brand-new-pass"})
			Expect(err).NotTo(HaveOccurred())
			Expect(bcrypt.CompareHashAndPassword([]byte(alice.PasswordHash), []byte("brand-new-pass"))).To(Succeed())
			Expect(recorder.actions()).To(ContainElement(activity.ActionPasswordReset))

			_, err = service.ResetPassword(ctx, auth.ResetPasswordDTO{Token: evt.Token, Password: "another-pass"})
			Expect(err).To(Equal(internal.ErrInvitationAlreadyAccepted))
		})

		It("does not accept invitation tokens", func() {
			Expect(repo.CreateInvitation(ctx, &invitationDatamodel.UserInvitation{
				Email: "alice@acme.io", Token: "invite-only", Purpose: invitationDatamodel.PurposeInvite,
				ExpiresAt: time.Now().Add(time.Hour),
			})).To(Succeed())
			_, err := service.ResetPassword(ctx, auth.ResetPasswordDTO{Token: "invite-only", Password: "brand-new-pass"})
			Expect(err).To(Equal(internal.ErrInvitationNotFound))
		})
	})
})
