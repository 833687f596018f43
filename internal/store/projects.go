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
)

// Projects persists project documents.
type Projects struct {
	coll *mongo.Collection
}

// NewProjects constructs a Projects store.
func NewProjects(db *mongo.Database) *Projects {
	return &Projects{coll: db.Collection(database.CollProjects)}
}

// Insert stores a new project, assigning its id and timestamps.
func (s *Projects) Insert(ctx context.Context, project *models.Project) error {
	now := time.Now().UTC()
	project.ID = primitive.NewObjectID()
	project.CreatedAt = now
	project.UpdatedAt = now

	if _, err := s.coll.InsertOne(ctx, project); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// FindByID loads a project by id.
func (s *Projects) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	var project models.Project
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&project)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("project")
		}
		return nil, fmt.Errorf("find project: %w", err)
	}
	return &project, nil
}

// FindByMember returns every project the user belongs to.
func (s *Projects) FindByMember(ctx context.Context, userID primitive.ObjectID) ([]models.Project, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"members.user": userID})
	if err != nil {
		return nil, fmt.Errorf("find projects by member: %w", err)
	}
	projects := []models.Project{}
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	return projects, nil
}

// Update persists the mutable fields of a project, members included.
func (s *Projects) Update(ctx context.Context, project *models.Project) error {
	project.UpdatedAt = time.Now().UTC()
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": project.ID}, bson.M{"$set": bson.M{
		"name":        project.Name,
		"description": project.Description,
		"members":     project.Members,
		"updatedAt":   project.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("project")
	}
	return nil
}

// Delete removes a project document.
func (s *Projects) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("project")
	}
	return nil
}
