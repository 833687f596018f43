package handlers

import (
	"context"
	"net/http"

	"github.com/projexhq/projex-api/internal/activity"
	authmiddleware "github.com/projexhq/projex-api/internal/httpapi/middleware"
	"github.com/projexhq/projex-api/internal/models"
	"github.com/projexhq/projex-api/internal/services/project"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ProjectService describes the project layer capabilities used by HTTP handlers.
type ProjectService interface {
	Create(ctx context.Context, actor primitive.ObjectID, in project.CreateInput) (*models.Project, error)
	List(ctx context.Context, caller primitive.ObjectID) ([]project.View, error)
	Update(ctx context.Context, caller, projectID primitive.ObjectID, in project.UpdateInput) (*models.Project, error)
	Delete(ctx context.Context, caller, projectID primitive.ObjectID, meta activity.Meta) error
	AddMember(ctx context.Context, caller, projectID primitive.ObjectID, in project.AddMemberInput) ([]models.Member, error)
	RemoveMember(ctx context.Context, caller, projectID primitive.ObjectID, in project.RemoveMemberInput) ([]models.Member, error)
	UpdateMemberRole(ctx context.Context, caller, projectID primitive.ObjectID, in project.UpdateRoleInput) ([]models.Member, error)
}

// ProjectHandler exposes HTTP endpoints for project flows.
type ProjectHandler struct {
	service ProjectService
	logger  *zap.Logger
	errors  errorMapper
}

// NewProjectHandler constructs a handler.
func NewProjectHandler(service ProjectService, logger *zap.Logger, production bool) *ProjectHandler {
	return &ProjectHandler{
		service: service,
		logger:  logger,
		errors:  errorMapper{logger: logger, production: production},
	}
}

// List returns the caller's projects.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := authmiddleware.UserIDFromContext(r.Context())
	if !ok {
		writeMissingAuth(w)
		return
	}

	views, err := h.service.List(r.Context(), caller)
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// Create stores a new project owned by the caller.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := authmiddleware.UserIDFromContext(r.Context())
	if !ok {
		writeMissingAuth(w)
		return
	}

	var req createProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON payload", nil)
		return
	}

	created, err := h.service.Create(r.Context(), caller, project.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Meta:        requestMeta(r),
	})
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update applies project changes.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := authmiddleware.UserIDFromContext(r.Context())
	if !ok {
		writeMissingAuth(w)
		return
	}
	projectID, err := pathID(r, "projectID")
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}

	var req updateProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON payload", nil)
		return
	}

	updated, err := h.service.Update(r.Context(), caller, projectID, project.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Meta:        requestMeta(r),
	})
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes a project.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := authmiddleware.UserIDFromContext(r.Context())
	if !ok {
		writeMissingAuth(w)
		return
	}
	projectID, err := pathID(r, "projectID")
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), caller, projectID, requestMeta(r)); err != nil {
		h.errors.handle(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": projectID.Hex()})
}

// AddMember invites a user to the project by email.
func (h *ProjectHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	caller, ok := authmiddleware.UserIDFromContext(r.Context())
	if !ok {
		writeMissingAuth(w)
		return
	}
	projectID, err := pathID(r, "projectID")
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}

	var req addMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON payload", nil)
		return
	}

	members, err := h.service.AddMember(r.Context(), caller, projectID, project.AddMemberInput{
		Email: req.Email,
		Role:  models.Role(req.Role),
		Meta:  requestMeta(r),
	})
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// RemoveMember drops a member from the project.
func (h *ProjectHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	caller, ok := authmiddleware.UserIDFromContext(r.Context())
	if !ok {
		writeMissingAuth(w)
		return
	}
	projectID, err := pathID(r, "projectID")
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}

	var req removeMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON payload", nil)
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid userId", nil)
		return
	}

	members, err := h.service.RemoveMember(r.Context(), caller, projectID, project.RemoveMemberInput{
		UserID: userID,
		Meta:   requestMeta(r),
	})
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// UpdateMemberRole changes a member's role.
func (h *ProjectHandler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	caller, ok := authmiddleware.UserIDFromContext(r.Context())
	if !ok {
		writeMissingAuth(w)
		return
	}
	projectID, err := pathID(r, "projectID")
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}

	var req updateMemberRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON payload", nil)
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid userId", nil)
		return
	}

	members, err := h.service.UpdateMemberRole(r.Context(), caller, projectID, project.UpdateRoleInput{
		UserID: userID,
		Role:   models.Role(req.Role),
		Meta:   requestMeta(r),
	})
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type addMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type removeMemberRequest struct {
	UserID string `json:"userId"`
}

type updateMemberRoleRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}
