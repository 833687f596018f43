// Package auth implements registration, login, and profile flows.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/projexhq/projex-api/internal/apperr"
	"github.com/projexhq/projex-api/internal/models"
	"github.com/projexhq/projex-api/internal/password"
	"github.com/projexhq/projex-api/internal/revocation"
	"github.com/projexhq/projex-api/internal/token"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ErrInvalidCredentials is returned when login fails. It deliberately
// does not distinguish unknown email from wrong password.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", apperr.ErrUnauthorized)

const minPasswordLength = 6

// UserStore is the account persistence surface the service needs.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// Service encapsulates account flows.
type Service struct {
	users    UserStore
	tokenSvc *token.Service
	hasher   *password.Hasher
	revoker  *revocation.Store
	logger   *zap.Logger
}

// Dependencies aggregates constructor inputs.
type Dependencies struct {
	Users    UserStore
	TokenSvc *token.Service
	Hasher   *password.Hasher
	Revoker  *revocation.Store
	Logger   *zap.Logger
}

// New initialises the auth service.
func New(deps Dependencies) *Service {
	return &Service{
		users:    deps.Users,
		tokenSvc: deps.TokenSvc,
		hasher:   deps.Hasher,
		revoker:  deps.Revoker,
		logger:   deps.Logger,
	}
}

// RegisterInput captures the registration payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput captures the login payload.
type LoginInput struct {
	Email    string
	Password string
}

// UpdateProfileInput carries optional profile changes; nil fields are
// left untouched.
type UpdateProfileInput struct {
	Name           *string
	Email          *string
	Password       *string
	ProfilePicture *string
}

// AuthResult is returned from register and login.
type AuthResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// Register creates a new account and returns a signed token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("name is required")
	}
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, apperr.Validation("email is required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperr.Validation("password must be at least %d characters", minPasswordLength)
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: hashed,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

// Login authenticates a user with email and password.
func (s *Service) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.hasher.Compare(user.Password, in.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueToken(user)
}

// GetUser loads the account behind an authenticated request.
func (s *Service) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}

// UpdateProfile applies the caller's profile changes.
func (s *Service) UpdateProfile(ctx context.Context, userID primitive.ObjectID, in UpdateProfileInput) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email == "" {
			return nil, apperr.Validation("email cannot be empty")
		}
		user.Email = email
	}
	if in.Password != nil {
		if len(*in.Password) < minPasswordLength {
			return nil, apperr.Validation("password must be at least %d characters", minPasswordLength)
		}
		hashed, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.Password = hashed
	}
	if in.ProfilePicture != nil {
		user.ProfilePicture = *in.ProfilePicture
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout revokes the presented token until its natural expiry.
func (s *Service) Logout(ctx context.Context, claims *token.Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *Service) issueToken(user *models.User) (*AuthResult, error) {
	signed, exp, err := s.tokenSvc.Mint(user.ID.Hex(), user.Email)
	if err != nil {
		return nil, fmt.Errorf("mint token: %w", err)
	}
	return &AuthResult{User: user, Token: signed, ExpiresAt: exp}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
