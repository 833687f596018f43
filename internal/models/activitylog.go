package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Action identifies a domain event recorded in the activity log. The set
// is closed; unknown values are rejected at the recorder boundary.
type Action string

const (
	ActionProjectCreated    Action = "project_created"
	ActionProjectUpdated    Action = "project_updated"
	ActionProjectDeleted    Action = "project_deleted"
	ActionMemberAdded       Action = "member_added"
	ActionMemberRemoved     Action = "member_removed"
	ActionMemberRoleUpdated Action = "member_role_updated"
	ActionTaskCreated       Action = "task_created"
	ActionTaskUpdated       Action = "task_updated"
	ActionTaskDeleted       Action = "task_deleted"
	ActionTaskStatusChanged Action = "task_status_changed"
	ActionTaskAssigned      Action = "task_assigned"
	ActionCommentAdded      Action = "comment_added"
	ActionFileUploaded      Action = "file_uploaded"
	ActionTimeLogged        Action = "time_logged"
)

// ValidAction reports whether a belongs to the closed action set.
func ValidAction(a Action) bool {
	switch a {
	case ActionProjectCreated, ActionProjectUpdated, ActionProjectDeleted,
		ActionMemberAdded, ActionMemberRemoved, ActionMemberRoleUpdated,
		ActionTaskCreated, ActionTaskUpdated, ActionTaskDeleted,
		ActionTaskStatusChanged, ActionTaskAssigned,
		ActionCommentAdded, ActionFileUploaded, ActionTimeLogged:
		return true
	}
	return false
}

// AuditRecord is an immutable activity log entry. Records are inserted
// once and never updated or deleted by application code.
type AuditRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Actor     primitive.ObjectID `bson:"user" json:"user"`
	Project   primitive.ObjectID `bson:"project" json:"project"`
	Action    Action             `bson:"action" json:"action"`
	Details   string             `bson:"details" json:"details"`
	Metadata  map[string]any     `bson:"metadata" json:"metadata"`
	IPAddress string             `bson:"ipAddress,omitempty" json:"ipAddress,omitempty"`
	UserAgent string             `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
