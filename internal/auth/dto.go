package auth

import (
	"strings"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/core/common/validation"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d *LoginDTO) Validate() *internal.AppError {
	d.Email = normalizeEmail(d.Email)
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email()
	v.Field("password", d.Password).Required()
	return v.Validate()
}

// RegisterDTO accepts an invitation.
type RegisterDTO struct {
	Token    string `json:"token"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
}

func (d *RegisterDTO) Validate() *internal.AppError {
	d.Name = strings.TrimSpace(d.Name)
	d.Username = strings.TrimSpace(d.Username)
	v := validation.NewValidator()
	v.Field("token", d.Token).Required()
	v.Field("password", d.Password).Required().Password()
	v.Field("name", d.Name).Required().MaxLength(255)
	v.Field("username", d.Username).MaxLength(100)
	return v.Validate()
}

type ForgotPasswordDTO struct {
	Email string `json:"email"`
}

func (d *ForgotPasswordDTO) Validate() *internal.AppError {
	d.Email = normalizeEmail(d.Email)
	return validation.ValidateEmail(d.Email)
}

type ResetPasswordDTO struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (d *ResetPasswordDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("token", d.Token).Required()
	v.Field("password", d.Password).Required().Password()
	return v.Validate()
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	User      *internal.User `json:"user"`
	Token     string         `json:"token"`
	ExpiresIn int64          `json:"expiresIn"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
