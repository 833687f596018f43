package activity

import (
	"fmt"

	"github.com/projexhq/projex-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Entry constructors for each action in the closed set. Details and
// metadata keys match what the activity feed renders.

func ProjectCreated(actor, project primitive.ObjectID, projectName string, meta Meta) Entry {
	return Entry{
		Actor:    actor,
		Project:  project,
		Action:   models.ActionProjectCreated,
		Details:  fmt.Sprintf("Created project %q", projectName),
		Metadata: map[string]any{"projectName": projectName},
		Meta:     meta,
	}
}

func ProjectUpdated(actor, project primitive.ObjectID, changes map[string]any, meta Meta) Entry {
	return Entry{
		Actor:    actor,
		Project:  project,
		Action:   models.ActionProjectUpdated,
		Details:  "Updated project details",
		Metadata: map[string]any{"changes": changes},
		Meta:     meta,
	}
}

func ProjectDeleted(actor, project primitive.ObjectID, projectName string, meta Meta) Entry {
	return Entry{
		Actor:    actor,
		Project:  project,
		Action:   models.ActionProjectDeleted,
		Details:  fmt.Sprintf("Deleted project %q", projectName),
		Metadata: map[string]any{"projectName": projectName},
		Meta:     meta,
	}
}

func MemberAdded(actor, project primitive.ObjectID, memberEmail string, role models.Role, meta Meta) Entry {
	return Entry{
		Actor:    actor,
		Project:  project,
		Action:   models.ActionMemberAdded,
		Details:  fmt.Sprintf("Added %s as %s", memberEmail, role),
		Metadata: map[string]any{"memberEmail": memberEmail, "role": string(role)},
		Meta:     meta,
	}
}

func MemberRemoved(actor, project primitive.ObjectID, memberEmail string, meta Meta) Entry {
	return Entry{
		Actor:    actor,
		Project:  project,
		Action:   models.ActionMemberRemoved,
		Details:  fmt.Sprintf("Removed %s from project", memberEmail),
		Metadata: map[string]any{"memberEmail": memberEmail},
		Meta:     meta,
	}
}

func MemberRoleUpdated(actor, project primitive.ObjectID, memberEmail string, oldRole, newRole models.Role, meta Meta) Entry {
	return Entry{
		Actor:   actor,
		Project: project,
		Action:  models.ActionMemberRoleUpdated,
		Details: fmt.Sprintf("Changed %s's role from %s to %s", memberEmail, oldRole, newRole),
		Metadata: map[string]any{
			"memberEmail": memberEmail,
			"oldRole":     string(oldRole),
			"newRole":     string(newRole),
		},
		Meta: meta,
	}
}

func TaskCreated(actor, project primitive.ObjectID, taskName string, meta Meta) Entry {
	return Entry{
		Actor:    actor,
		Project:  project,
		Action:   models.ActionTaskCreated,
		Details:  fmt.Sprintf("Created task %q", taskName),
		Metadata: map[string]any{"taskName": taskName},
		Meta:     meta,
	}
}

func TaskUpdated(actor, project, task primitive.ObjectID, taskName string, changes map[string]any, meta Meta) Entry {
	return Entry{
		Actor:   actor,
		Project: project,
		Action:  models.ActionTaskUpdated,
		Details: fmt.Sprintf("Updated task %q", taskName),
		Metadata: map[string]any{
			"taskId":   task.Hex(),
			"taskName": taskName,
			"changes":  changes,
		},
		Meta: meta,
	}
}

func TaskDeleted(actor, project primitive.ObjectID, taskName string, meta Meta) Entry {
	return Entry{
		Actor:    actor,
		Project:  project,
		Action:   models.ActionTaskDeleted,
		Details:  fmt.Sprintf("Deleted task %q", taskName),
		Metadata: map[string]any{"taskName": taskName},
		Meta:     meta,
	}
}

func TaskStatusChanged(actor, project, task primitive.ObjectID, taskName string, oldStatus, newStatus models.TaskStatus, meta Meta) Entry {
	return Entry{
		Actor:   actor,
		Project: project,
		Action:  models.ActionTaskStatusChanged,
		Details: fmt.Sprintf("Changed status of %q from %s to %s", taskName, oldStatus, newStatus),
		Metadata: map[string]any{
			"taskId":    task.Hex(),
			"taskName":  taskName,
			"oldStatus": string(oldStatus),
			"newStatus": string(newStatus),
		},
		Meta: meta,
	}
}

func TaskAssigned(actor, project, task primitive.ObjectID, taskName, assigneeName string, meta Meta) Entry {
	return Entry{
		Actor:   actor,
		Project: project,
		Action:  models.ActionTaskAssigned,
		Details: fmt.Sprintf("Assigned %q to %s", taskName, assigneeName),
		Metadata: map[string]any{
			"taskId":         task.Hex(),
			"taskName":       taskName,
			"assignedToName": assigneeName,
		},
		Meta: meta,
	}
}

func CommentAdded(actor, project, task primitive.ObjectID, taskName string, meta Meta) Entry {
	return Entry{
		Actor:    actor,
		Project:  project,
		Action:   models.ActionCommentAdded,
		Details:  fmt.Sprintf("Added comment on task %q", taskName),
		Metadata: map[string]any{"taskId": task.Hex(), "taskName": taskName},
		Meta:     meta,
	}
}

func FileUploaded(actor, project, task primitive.ObjectID, taskName, fileName string, meta Meta) Entry {
	return Entry{
		Actor:   actor,
		Project: project,
		Action:  models.ActionFileUploaded,
		Details: fmt.Sprintf("Uploaded file %q to task %q", fileName, taskName),
		Metadata: map[string]any{
			"taskId":   task.Hex(),
			"taskName": taskName,
			"fileName": fileName,
		},
		Meta: meta,
	}
}

func TimeLogged(actor, project, task primitive.ObjectID, taskName string, seconds int64, meta Meta) Entry {
	return Entry{
		Actor:   actor,
		Project: project,
		Action:  models.ActionTimeLogged,
		Details: fmt.Sprintf("Logged %d seconds on task %q", seconds, taskName),
		Metadata: map[string]any{
			"taskId":        task.Hex(),
			"taskName":      taskName,
			"timeInSeconds": seconds,
		},
		Meta: meta,
	}
}
