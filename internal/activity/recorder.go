// Package activity writes the append-only audit trail. Recording is
// best-effort by contract: a failed write must never fail the mutation
// that triggered it, so every failure path here logs and returns nil.
package activity

import (
	"context"
	"strings"

	"github.com/projexhq/projex-api/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var writeFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "activity_write_failures_total",
	Help: "Audit record writes that failed and were dropped.",
})

// Inserter is the single store capability the recorder needs.
type Inserter interface {
	Insert(ctx context.Context, record *models.AuditRecord) error
}

// Meta carries request-scoped context attached to each record.
type Meta struct {
	IPAddress string
	UserAgent string
}

// Entry represents one audit event before it is persisted.
type Entry struct {
	Actor    primitive.ObjectID
	Project  primitive.ObjectID
	Action   models.Action
	Details  string
	Metadata map[string]any
	Meta     Meta
}

// Recorder persists audit entries.
type Recorder struct {
	store  Inserter
	logger *zap.Logger
}

// NewRecorder constructs a Recorder.
func NewRecorder(store Inserter, logger *zap.Logger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

// Record persists an audit entry. It returns the stored record, or nil
// if the entry was rejected or the write failed. Errors are logged and
// swallowed; callers must not depend on the outcome.
func (r *Recorder) Record(ctx context.Context, entry Entry) *models.AuditRecord {
	if !models.ValidAction(entry.Action) {
		r.logger.Warn("dropping audit entry with unknown action",
			zap.String("action", string(entry.Action)))
		return nil
	}
	if strings.TrimSpace(entry.Details) == "" {
		r.logger.Warn("dropping audit entry with empty details",
			zap.String("action", string(entry.Action)))
		return nil
	}

	record := &models.AuditRecord{
		Actor:     entry.Actor,
		Project:   entry.Project,
		Action:    entry.Action,
		Details:   entry.Details,
		Metadata:  entry.Metadata,
		IPAddress: entry.Meta.IPAddress,
		UserAgent: entry.Meta.UserAgent,
	}

	if err := r.store.Insert(ctx, record); err != nil {
		writeFailures.Inc()
		r.logger.Warn("failed to persist audit record",
			zap.String("action", string(entry.Action)),
			zap.Error(err))
		return nil
	}
	return record
}
