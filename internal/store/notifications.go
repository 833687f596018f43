package store

import (
	"context"
	"fmt"
	"time"

	"github.com/projexhq/projex-api/internal/apperr"
	"github.com/projexhq/projex-api/internal/database"
	"github.com/projexhq/projex-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Notifications persists per-user notification documents.
type Notifications struct {
	coll *mongo.Collection
}

// NewNotifications constructs a Notifications store.
func NewNotifications(db *mongo.Database) *Notifications {
	return &Notifications{coll: db.Collection(database.CollNotifications)}
}

// Insert stores a new unread notification.
func (s *Notifications) Insert(ctx context.Context, notification *models.Notification) error {
	now := time.Now().UTC()
	notification.ID = primitive.NewObjectID()
	notification.Read = false
	notification.CreatedAt = now
	notification.UpdatedAt = now

	if _, err := s.coll.InsertOne(ctx, notification); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// FindByID loads a notification by id.
func (s *Notifications) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	var notification models.Notification
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&notification)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("notification")
		}
		return nil, fmt.Errorf("find notification: %w", err)
	}
	return &notification, nil
}

// ListByRecipient returns all of a user's notifications, newest first,
// read or not.
func (s *Notifications) ListByRecipient(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find notifications: %w", err)
	}
	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead flips read to true and returns the updated document. The
// write is idempotent; marking an already-read notification is a no-op.
func (s *Notifications) MarkRead(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var notification models.Notification
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"read": true, "updatedAt": time.Now().UTC()}},
		opts,
	).Decode(&notification)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("notification")
		}
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return &notification, nil
}
