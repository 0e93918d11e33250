package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/frahmantamala/admin-dashboard/internal"
	userDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/user"
	"github.com/golang-jwt/jwt/v5"
)

// TokenGenerator creates and verifies access tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID int64, email string) (token string, expiresAt time.Time, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims only identify the subject. Role and organization are always read
// from the live user row.
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	Secret         []byte
	AccessTokenTTL time.Duration
	now            func() time.Time
}

func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		Secret:         []byte(secret),
		AccessTokenTTL: ttl,
		now:            time.Now,
	}
}

// GenerateAccessToken creates a new access token
func (j *JWTTokenGenerator) GenerateAccessToken(userID int64, email string) (string, time.Time, error) {
	now := j.now()
	expiresAt := now.Add(j.AccessTokenTTL)

	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   strconv.FormatInt(userID, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.Secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates a JWT token and returns claims
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(j.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}

// ToIdentity converts a user row into the request identity.
func ToIdentity(u *userDatamodel.User) *internal.User {
	return &internal.User{
		ID:             u.ID,
		Email:          u.Email,
		Username:       u.Username,
		Name:           u.Name,
		Role:           internal.Role(u.Role),
		OrganizationID: u.OrganizationID,
		IsActive:       u.IsActive,
		LastActiveAt:   u.LastActiveAt,
		CreatedAt:      u.CreatedAt,
	}
}
