// Package notify emits per-user notifications. Like the activity
// recorder, emission is best-effort at every call site: a failed insert
// is logged and dropped, never returned to the mutation that caused it.
package notify

import (
	"context"
	"fmt"

	"github.com/projexhq/projex-api/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var writeFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "notification_write_failures_total",
	Help: "Notification writes that failed and were dropped.",
})

// Inserter is the single store capability the notifier needs.
type Inserter interface {
	Insert(ctx context.Context, notification *models.Notification) error
}

// Notifier persists notifications.
type Notifier struct {
	store  Inserter
	logger *zap.Logger
}

// NewNotifier constructs a Notifier.
func NewNotifier(store Inserter, logger *zap.Logger) *Notifier {
	return &Notifier{store: store, logger: logger}
}

// Notify inserts an unread notification for the recipient. It returns
// the stored notification, or nil if the message was invalid or the
// write failed.
func (n *Notifier) Notify(ctx context.Context, recipient primitive.ObjectID, message, link string) *models.Notification {
	if message == "" || link == "" {
		n.logger.Warn("dropping notification with empty message or link",
			zap.String("recipient", recipient.Hex()))
		return nil
	}

	notification := &models.Notification{
		Recipient: recipient,
		Message:   message,
		Link:      link,
	}
	if err := n.store.Insert(ctx, notification); err != nil {
		writeFailures.Inc()
		n.logger.Warn("failed to persist notification",
			zap.String("recipient", recipient.Hex()),
			zap.Error(err))
		return nil
	}
	return notification
}

// MemberAddedMessage is the text sent when a user joins a project.
func MemberAddedMessage(projectName string) string {
	return fmt.Sprintf("You have been added to the project '%s'", projectName)
}

// TaskAssignedMessage is the text sent when a task is assigned.
func TaskAssignedMessage(taskName string) string {
	return fmt.Sprintf("You have been assigned to the task '%s'", taskName)
}

// ProjectLink is the app-relative path notifications point at.
func ProjectLink(projectID primitive.ObjectID) string {
	return fmt.Sprintf("/project/%s", projectID.Hex())
}

// ShouldNotifyAssignment decides whether an assignee transition warrants
// a notification: the new assignee must be set and differ from the
// previous one. nil to nil and same-to-same transitions never notify.
func ShouldNotifyAssignment(prev, next *primitive.ObjectID) bool {
	if next == nil {
		return false
	}
	if prev == nil {
		return true
	}
	return *prev != *next
}
