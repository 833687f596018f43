package handlers

import (
	"context"
	"net/http"

	authmiddleware "github.com/projexhq/projex-api/internal/httpapi/middleware"
	"github.com/projexhq/projex-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// NotificationService describes the notification capabilities used by
// HTTP handlers.
type NotificationService interface {
	List(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	MarkRead(ctx context.Context, caller, notificationID primitive.ObjectID) (*models.Notification, error)
}

// NotificationHandler exposes the notification endpoints.
type NotificationHandler struct {
	service NotificationService
	logger  *zap.Logger
	errors  errorMapper
}

// NewNotificationHandler constructs a handler.
func NewNotificationHandler(service NotificationService, logger *zap.Logger, production bool) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		logger:  logger,
		errors:  errorMapper{logger: logger, production: production},
	}
}

// List returns the caller's notifications, newest first.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := authmiddleware.UserIDFromContext(r.Context())
	if !ok {
		writeMissingAuth(w)
		return
	}

	notifications, err := h.service.List(r.Context(), caller)
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

// MarkRead flips one of the caller's notifications to read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	caller, ok := authmiddleware.UserIDFromContext(r.Context())
	if !ok {
		writeMissingAuth(w)
		return
	}
	notificationID, err := pathID(r, "notificationID")
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}

	notification, err := h.service.MarkRead(r.Context(), caller, notificationID)
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notification)
}
