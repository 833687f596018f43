package handlers

import (
	"context"
	"net/http"

	authmiddleware "github.com/projexhq/projex-api/internal/httpapi/middleware"
	"github.com/projexhq/projex-api/internal/services/activityfeed"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ActivityService describes the feed capabilities used by HTTP handlers.
type ActivityService interface {
	ProjectActivity(ctx context.Context, projectID primitive.ObjectID, page, limit int) (*activityfeed.Page, error)
	UserActivity(ctx context.Context, userID primitive.ObjectID, page, limit int) (*activityfeed.Page, error)
}

// ActivityHandler exposes the activity feed read endpoints.
type ActivityHandler struct {
	service ActivityService
	logger  *zap.Logger
	errors  errorMapper
}

// NewActivityHandler constructs a handler.
func NewActivityHandler(service ActivityService, logger *zap.Logger, production bool) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger,
		errors:  errorMapper{logger: logger, production: production},
	}
}

// ProjectActivity returns one page of a project's audit records.
func (h *ActivityHandler) ProjectActivity(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectID")
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}

	page, err := h.service.ProjectActivity(r.Context(), projectID,
		queryInt(r, "page", 1), queryInt(r, "limit", 20))
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// UserActivity returns one page of the caller's own audit records.
func (h *ActivityHandler) UserActivity(w http.ResponseWriter, r *http.Request) {
	caller, ok := authmiddleware.UserIDFromContext(r.Context())
	if !ok {
		writeMissingAuth(w)
		return
	}

	page, err := h.service.UserActivity(r.Context(), caller,
		queryInt(r, "page", 1), queryInt(r, "limit", 20))
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
