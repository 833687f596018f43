package database

import (
	"context"
	"fmt"
	"time"

	"github.com/projexhq/projex-api/internal/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names used across the store layer.
const (
	CollUsers         = "users"
	CollProjects      = "projects"
	CollTasks         = "tasks"
	CollActivityLogs  = "activity_logs"
	CollNotifications = "notifications"
)

// NewClient initialises a MongoDB client and verifies connectivity.
func NewClient(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetMaxPoolSize(cfg.MaxPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the query paths rely on. Activity
// logs and notifications are read newest-first keyed by foreign
// reference, so those get compound indexes.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	users := db.Collection(CollUsers).Indexes()
	if _, err := users.CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	projects := db.Collection(CollProjects).Indexes()
	if _, err := projects.CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "members.user", Value: 1}},
	}); err != nil {
		return fmt.Errorf("create project indexes: %w", err)
	}

	tasks := db.Collection(CollTasks).Indexes()
	if _, err := tasks.CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "project", Value: 1}},
	}); err != nil {
		return fmt.Errorf("create task indexes: %w", err)
	}

	activity := db.Collection(CollActivityLogs).Indexes()
	if _, err := activity.CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "project", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
	}); err != nil {
		return fmt.Errorf("create activity log indexes: %w", err)
	}

	notifications := db.Collection(CollNotifications).Indexes()
	if _, err := notifications.CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
	}); err != nil {
		return fmt.Errorf("create notification indexes: %w", err)
	}

	return nil
}
