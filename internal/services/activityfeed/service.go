// Package activityfeed serves paginated reads over the audit trail.
package activityfeed

import (
	"context"

	"github.com/projexhq/projex-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultPage  = 1
	defaultLimit = 20
)

// Store is the read surface over the audit trail.
type Store interface {
	ListByProject(ctx context.Context, projectID primitive.ObjectID, skip, limit int64) ([]models.AuditRecord, error)
	CountByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error)
	ListByActor(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.AuditRecord, error)
	CountByActor(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// Page is one page of audit records plus pagination totals.
type Page struct {
	Logs        []models.AuditRecord `json:"logs"`
	CurrentPage int                  `json:"currentPage"`
	TotalPages  int64                `json:"totalPages"`
	TotalLogs   int64                `json:"totalLogs"`
}

// Service reads the activity feeds.
type Service struct {
	store Store
}

// New initialises the feed service.
func New(store Store) *Service {
	return &Service{store: store}
}

// ProjectActivity returns one page of a project's records, newest first.
func (s *Service) ProjectActivity(ctx context.Context, projectID primitive.ObjectID, page, limit int) (*Page, error) {
	page, limit = normalize(page, limit)
	logs, err := s.store.ListByProject(ctx, projectID, skip(page, limit), int64(limit))
	if err != nil {
		return nil, err
	}
	total, err := s.store.CountByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return newPage(logs, page, limit, total), nil
}

// UserActivity returns one page of a user's records, newest first.
func (s *Service) UserActivity(ctx context.Context, userID primitive.ObjectID, page, limit int) (*Page, error) {
	page, limit = normalize(page, limit)
	logs, err := s.store.ListByActor(ctx, userID, skip(page, limit), int64(limit))
	if err != nil {
		return nil, err
	}
	total, err := s.store.CountByActor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return newPage(logs, page, limit, total), nil
}

func normalize(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}

func skip(page, limit int) int64 {
	return int64(page-1) * int64(limit)
}

func newPage(logs []models.AuditRecord, page, limit int, total int64) *Page {
	return &Page{
		Logs:        logs,
		CurrentPage: page,
		TotalPages:  totalPages(total, limit),
		TotalLogs:   total,
	}
}

// totalPages is ceil(total / limit).
func totalPages(total int64, limit int) int64 {
	return (total + int64(limit) - 1) / int64(limit)
}
