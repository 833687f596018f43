// Package notification serves the per-user notification feed and the
// mark-read transition.
package notification

import (
	"context"

	"github.com/projexhq/projex-api/internal/apperr"
	"github.com/projexhq/projex-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is the persistence surface for notifications.
type Store interface {
	ListByRecipient(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	MarkRead(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
}

// Service reads and updates notifications.
type Service struct {
	store Store
}

// New initialises the notification service.
func New(store Store) *Service {
	return &Service{store: store}
}

// List returns every notification for the user, newest first, read or
// unread alike.
func (s *Service) List(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	return s.store.ListByRecipient(ctx, userID)
}

// MarkRead flips a notification to read. Only the recipient may do so;
// marking an already-read notification succeeds again with no change.
func (s *Service) MarkRead(ctx context.Context, caller, notificationID primitive.ObjectID) (*models.Notification, error) {
	notification, err := s.store.FindByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if notification.Recipient != caller {
		return nil, apperr.Forbidden("only the recipient may mark a notification read")
	}
	return s.store.MarkRead(ctx, notificationID)
}
