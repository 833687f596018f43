package store

import (
	"context"
	"fmt"
	"time"

	"github.com/projexhq/projex-api/internal/database"
	"github.com/projexhq/projex-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ActivityLogs persists the append-only audit trail. Records are never
// updated or deleted here; the store exposes insert and read paths only.
type ActivityLogs struct {
	coll *mongo.Collection
}

// NewActivityLogs constructs an ActivityLogs store.
func NewActivityLogs(db *mongo.Database) *ActivityLogs {
	return &ActivityLogs{coll: db.Collection(database.CollActivityLogs)}
}

// Insert appends one audit record.
func (s *ActivityLogs) Insert(ctx context.Context, record *models.AuditRecord) error {
	record.ID = primitive.NewObjectID()
	record.CreatedAt = time.Now().UTC()
	if record.Metadata == nil {
		record.Metadata = map[string]any{}
	}
	if _, err := s.coll.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// ListByProject returns a page of a project's records, newest first.
func (s *ActivityLogs) ListByProject(ctx context.Context, projectID primitive.ObjectID, skip, limit int64) ([]models.AuditRecord, error) {
	return s.list(ctx, bson.M{"project": projectID}, skip, limit)
}

// CountByProject counts a project's records.
func (s *ActivityLogs) CountByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	return s.count(ctx, bson.M{"project": projectID})
}

// ListByActor returns a page of a user's records, newest first.
func (s *ActivityLogs) ListByActor(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.AuditRecord, error) {
	return s.list(ctx, bson.M{"user": userID}, skip, limit)
}

// CountByActor counts a user's records.
func (s *ActivityLogs) CountByActor(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.count(ctx, bson.M{"user": userID})
}

func (s *ActivityLogs) list(ctx context.Context, filter bson.M, skip, limit int64) ([]models.AuditRecord, error) {
	// Secondary sort on _id keeps records with identical timestamps in
	// insertion order, so pages never overlap or skip across requests.
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find audit records: %w", err)
	}
	records := []models.AuditRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode audit records: %w", err)
	}
	return records, nil
}

func (s *ActivityLogs) count(ctx context.Context, filter bson.M) (int64, error) {
	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count audit records: %w", err)
	}
	return total, nil
}
