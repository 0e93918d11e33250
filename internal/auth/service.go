package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/activity"
	invitationDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/invitation"
	userDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/user"
	"github.com/frahmantamala/admin-dashboard/internal/core/events"
	"gorm.io/gorm"
)

// ErrTokenConsumed is returned by the repository when a token was accepted
// concurrently between the check and the write.
var ErrTokenConsumed = errors.New("token already consumed")

const forgotPasswordMessage = "If the email exists, a reset link has been sent"

type Repository interface {
	GetUserByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetUserByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	GetUserByUsername(ctx context.Context, username string) (*userDatamodel.User, error)
	UpdateLastActive(ctx context.Context, userID int64, at time.Time) error
	GetInvitationByToken(ctx context.Context, token string) (*invitationDatamodel.UserInvitation, error)
	CreateInvitation(ctx context.Context, inv *invitationDatamodel.UserInvitation) error
	// AcceptInvitation creates user and consumes the invitation atomically.
	AcceptInvitation(ctx context.Context, invitationID int64, user *userDatamodel.User) error
	// ResetPassword updates the digest and consumes the token atomically.
	ResetPassword(ctx context.Context, invitationID, userID int64, passwordHash string) error
}

// Service is the main auth service with dependencies
type Service struct {
	repo           Repository
	tokenGenerator TokenGenerator
	activity       activity.Recorder
	publisher      events.Publisher
	logger         *slog.Logger
	bcryptCost     int
	resetTokenTTL  time.Duration
	now            func() time.Time
}

func NewService(repo Repository, tokenGen TokenGenerator, recorder activity.Recorder, publisher events.Publisher, logger *slog.Logger, cfg internal.SecurityConfig) *Service {
	ttl := cfg.ResetTokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		activity:       recorder,
		publisher:      publisher,
		logger:         logger,
		bcryptCost:     cfg.BCryptCost,
		resetTokenTTL:  ttl,
		now:            time.Now,
	}
}

// ResolveIdentity verifies the bearer token and reloads the user behind it.
func (s *Service) ResolveIdentity(ctx context.Context, bearer string) (*internal.User, error) {
	if bearer == "" {
		return nil, internal.ErrUnauthenticated
	}

	claims, err := s.tokenGenerator.ValidateToken(bearer)
	if err != nil {
		return nil, err
	}

	row, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if row == nil {
		return nil, internal.ErrUnauthenticated
	}
	if !row.IsActive {
		return nil, internal.ErrUserInactive
	}
	return ToIdentity(row), nil
}

// Authenticate validates credentials and returns a token
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (*AuthResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetUserByEmail(ctx, dto.Email)
	if err != nil {
		s.logger.Error("failed to load user for login", "error", err)
		return nil, internal.NewInternalError("failed to authenticate", err)
	}
	if row == nil || !CheckPassword(row.PasswordHash, dto.Password) {
		return nil, internal.ErrInvalidCredentials
	}
	if !row.IsActive {
		return nil, internal.ErrUserInactive
	}

	now := s.now()
	if err := s.repo.UpdateLastActive(ctx, row.ID, now); err != nil {
		s.logger.Warn("failed to update last active", "error", err, "user_id", row.ID)
	} else {
		row.LastActiveAt = &now
	}

	resp, err := s.issue(row)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, activity.Entry{
		UserID:         row.ID,
		OrganizationID: row.OrganizationID,
		Action:         activity.ActionLogin,
		Resource:       "user",
		ResourceID:     row.ID,
	})
	s.logger.Info("user logged in", "user_id", row.ID)
	return resp, nil
}

// Register accepts an invitation and creates the invited account.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*AuthResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	inv, err := s.usableToken(ctx, dto.Token, invitationDatamodel.PurposeInvite)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetUserByEmail(ctx, inv.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to check existing user", err)
	}
	if existing != nil {
		return nil, internal.ErrUserAlreadyExists
	}

	username := dto.Username
	if username == "" {
		username = strings.SplitN(inv.Email, "@", 2)[0]
	}
	taken, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, internal.NewInternalError("failed to check username", err)
	}
	if taken != nil {
		return nil, internal.ErrUsernameTaken
	}

	hash, err := HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	row := &userDatamodel.User{
		Username:       username,
		Email:          inv.Email,
		PasswordHash:   hash,
		Name:           dto.Name,
		Role:           inv.Role,
		OrganizationID: inv.OrganizationID,
		IsActive:       true,
	}
	if err := s.repo.AcceptInvitation(ctx, inv.ID, row); err != nil {
		switch {
		case errors.Is(err, ErrTokenConsumed):
			return nil, internal.ErrInvitationAlreadyAccepted
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, internal.ErrUserAlreadyExists
		}
		s.logger.Error("failed to accept invitation", "error", err, "invitation_id", inv.ID)
		return nil, internal.NewInternalError("failed to create account", err)
	}

	s.activity.Record(ctx, activity.Entry{
		UserID:         row.ID,
		OrganizationID: row.OrganizationID,
		Action:         activity.ActionRegister,
		Resource:       "user",
		ResourceID:     row.ID,
	})
	s.logger.Info("invitation accepted", "user_id", row.ID, "invitation_id", inv.ID)
	return s.issue(row)
}

// ForgotPassword never reveals whether the email is registered.
func (s *Service) ForgotPassword(ctx context.Context, dto ForgotPasswordDTO, requester *internal.User) (*MessageResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	resp := &MessageResponse{Message: forgotPasswordMessage}

	log := s.logger
	if requester != nil {
		log = log.With("requested_by", requester.ID)
	}

	row, err := s.repo.GetUserByEmail(ctx, dto.Email)
	if err != nil {
		log.Error("failed to look up user for password reset", "error", err)
		return resp, nil
	}
	if row == nil || !row.IsActive {
		log.Info("password reset requested for unknown or inactive account")
		return resp, nil
	}

	token, err := GenerateRandomToken()
	if err != nil {
		log.Error("failed to generate reset token", "error", err)
		return resp, nil
	}

	inv := &invitationDatamodel.UserInvitation{
		Email:          row.Email,
		Role:           row.Role,
		OrganizationID: row.OrganizationID,
		InvitedBy:      row.ID,
		Token:          token,
		Purpose:        invitationDatamodel.PurposePasswordReset,
		ExpiresAt:      s.now().Add(s.resetTokenTTL),
	}
	if err := s.repo.CreateInvitation(ctx, inv); err != nil {
		log.Error("failed to store reset token", "error", err, "user_id", row.ID)
		return resp, nil
	}

	if err := s.publisher.Publish(ctx, events.NewPasswordResetRequestedEvent(row.ID, row.Email, token, inv.ExpiresAt)); err != nil {
		log.Error("failed to publish password reset event", "error", err, "user_id", row.ID)
	}
	log.Info("password reset requested", "user_id", row.ID)
	return resp, nil
}

func (s *Service) ResetPassword(ctx context.Context, dto ResetPasswordDTO) (*MessageResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	inv, err := s.usableToken(ctx, dto.Token, invitationDatamodel.PurposePasswordReset)
	if err != nil {
		return nil, err
	}

	row, err := s.repo.GetUserByEmail(ctx, inv.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if row == nil {
		return nil, internal.ErrInvitationNotFound
	}

	hash, err := HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	if err := s.repo.ResetPassword(ctx, inv.ID, row.ID, hash); err != nil {
		if errors.Is(err, ErrTokenConsumed) {
			return nil, internal.ErrInvitationAlreadyAccepted
		}
		s.logger.Error("failed to reset password", "error", err, "user_id", row.ID)
		return nil, internal.NewInternalError("failed to reset password", err)
	}

	s.activity.Record(ctx, activity.Entry{
		UserID:         row.ID,
		OrganizationID: row.OrganizationID,
		Action:         activity.ActionPasswordReset,
		Resource:       "user",
		ResourceID:     row.ID,
	})
	s.logger.Info("password reset", "user_id", row.ID)
	return &MessageResponse{Message: "Password reset successfully"}, nil
}

// Me returns the caller's profile.
func (s *Service) Me(ctx context.Context, user *internal.User) (*internal.User, error) {
	if user == nil {
		return nil, internal.ErrUnauthenticated
	}
	return user, nil
}

// usableToken runs the ordered token checks: exists, unused, unexpired.
func (s *Service) usableToken(ctx context.Context, token, purpose string) (*invitationDatamodel.UserInvitation, error) {
	inv, err := s.repo.GetInvitationByToken(ctx, token)
	if err != nil {
		return nil, internal.NewInternalError("failed to load token", err)
	}
	if inv == nil || inv.Purpose != purpose {
		return nil, internal.ErrInvitationNotFound
	}
	if inv.IsAccepted {
		return nil, internal.ErrInvitationAlreadyAccepted
	}
	if inv.Expired(s.now()) {
		return nil, internal.ErrInvitationExpired
	}
	return inv, nil
}

func (s *Service) issue(row *userDatamodel.User) (*AuthResponse, error) {
	token, expiresAt, err := s.tokenGenerator.GenerateAccessToken(row.ID, row.Email)
	if err != nil {
		s.logger.Error("failed to sign token", "error", err, "user_id", row.ID)
		return nil, internal.NewInternalError("failed to issue token", err)
	}
	return &AuthResponse{
		User:      ToIdentity(row),
		Token:     token,
		ExpiresIn: int64(expiresAt.Sub(s.now()).Seconds()),
	}, nil
}
