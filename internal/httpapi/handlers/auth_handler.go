package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	authmiddleware "github.com/projexhq/projex-api/internal/httpapi/middleware"
	"github.com/projexhq/projex-api/internal/models"
	"github.com/projexhq/projex-api/internal/services/auth"
	"github.com/projexhq/projex-api/internal/token"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AuthService describes the account layer capabilities used by HTTP handlers.
type AuthService interface {
	Register(ctx context.Context, in auth.RegisterInput) (*auth.AuthResult, error)
	Login(ctx context.Context, in auth.LoginInput) (*auth.AuthResult, error)
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, in auth.UpdateProfileInput) (*models.User, error)
	Logout(ctx context.Context, claims *token.Claims) error
}

// AuthHandler exposes HTTP endpoints for account flows.
type AuthHandler struct {
	service AuthService
	uploads *UploadSaver
	logger  *zap.Logger
	errors  errorMapper
}

// NewAuthHandler constructs a handler.
func NewAuthHandler(service AuthService, uploads *UploadSaver, logger *zap.Logger, production bool) *AuthHandler {
	return &AuthHandler{
		service: service,
		uploads: uploads,
		logger:  logger,
		errors:  errorMapper{logger: logger, production: production},
	}
}

// Register handles user registration requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON payload", nil)
		return
	}

	result, err := h.service.Register(r.Context(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse(result))
}

// Login authenticates a user and issues a token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON payload", nil)
		return
	}

	result, err := h.service.Login(r.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse(result))
}

// Me returns the authenticated user profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := authmiddleware.UserIDFromContext(r.Context())
	if !ok {
		writeMissingAuth(w)
		return
	}

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Logout revokes the presented token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := authmiddleware.ClaimsFromContext(r.Context())
	if !ok {
		writeMissingAuth(w)
		return
	}

	if err := h.service.Logout(r.Context(), claims); err != nil {
		h.errors.handle(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// UpdateProfile applies profile changes. The request is multipart when
// it carries a new profile picture, plain JSON otherwise.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := authmiddleware.UserIDFromContext(r.Context())
	if !ok {
		writeMissingAuth(w)
		return
	}

	in := auth.UpdateProfileInput{}
	if isMultipart(r) {
		saved, err := h.uploads.Save(r, "file")
		if err != nil && !errors.Is(err, ErrNoFile) {
			h.errors.handle(w, r, err)
			return
		}
		if saved != nil {
			in.ProfilePicture = &saved.Path
		}
		if v := r.FormValue("name"); v != "" {
			in.Name = &v
		}
		if v := r.FormValue("email"); v != "" {
			in.Email = &v
		}
		if v := r.FormValue("password"); v != "" {
			in.Password = &v
		}
	} else {
		var req updateProfileRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON payload", nil)
			return
		}
		in.Name = req.Name
		in.Email = req.Email
		in.Password = req.Password
	}

	user, err := h.service.UpdateProfile(r.Context(), userID, in)
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func authResponse(result *auth.AuthResult) map[string]any {
	return map[string]any{
		"token":      result.Token,
		"token_type": "Bearer",
		"expires_in": int(time.Until(result.ExpiresAt).Seconds()),
		"user":       result.User,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}
