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

// Tasks persists task documents.
type Tasks struct {
	coll *mongo.Collection
}

// NewTasks constructs a Tasks store.
func NewTasks(db *mongo.Database) *Tasks {
	return &Tasks{coll: db.Collection(database.CollTasks)}
}

// Insert stores a new task, assigning its id and timestamps.
func (s *Tasks) Insert(ctx context.Context, task *models.Task) error {
	now := time.Now().UTC()
	task.ID = primitive.NewObjectID()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Comments == nil {
		task.Comments = []models.Comment{}
	}
	if task.Attachments == nil {
		task.Attachments = []models.Attachment{}
	}
	if task.TimeTracked == nil {
		task.TimeTracked = []models.TimeEntry{}
	}

	if _, err := s.coll.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// FindByID loads a task by id.
func (s *Tasks) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("task")
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &task, nil
}

// FindByProject returns the tasks belonging to a single project.
func (s *Tasks) FindByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Task, error) {
	return s.findAll(ctx, bson.M{"project": projectID})
}

// FindByProjects returns the tasks across the given projects.
func (s *Tasks) FindByProjects(ctx context.Context, projectIDs []primitive.ObjectID) ([]models.Task, error) {
	if len(projectIDs) == 0 {
		return []models.Task{}, nil
	}
	return s.findAll(ctx, bson.M{"project": bson.M{"$in": projectIDs}})
}

func (s *Tasks) findAll(ctx context.Context, filter bson.M) ([]models.Task, error) {
	cursor, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	tasks := []models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return tasks, nil
}

// Update persists the full mutable state of a task.
func (s *Tasks) Update(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now().UTC()
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": task.ID}, bson.M{"$set": bson.M{
		"name":        task.Name,
		"description": task.Description,
		"status":      task.Status,
		"priority":    task.Priority,
		"dueDate":     task.DueDate,
		"assignedTo":  task.AssignedTo,
		"comments":    task.Comments,
		"attachments": task.Attachments,
		"timeTracked": task.TimeTracked,
		"updatedAt":   task.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("task")
	}
	return nil
}

// Delete removes a task document.
func (s *Tasks) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("task")
	}
	return nil
}
