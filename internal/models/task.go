package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskStatus is a kanban column. Any transition between statuses is
// allowed; changes are only recorded, never rejected.
type TaskStatus string

const (
	StatusToDo       TaskStatus = "To Do"
	StatusInProgress TaskStatus = "In Progress"
	StatusDone       TaskStatus = "Done"
)

// ValidStatus reports whether s is a known task status.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// TaskPriority orders tasks within a column.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

// ValidPriority reports whether p is a known task priority.
func ValidPriority(p TaskPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Comment is an embedded task comment.
type Comment struct {
	Text string             `bson:"text" json:"text"`
	User primitive.ObjectID `bson:"user" json:"user"`
	Date time.Time          `bson:"date" json:"date"`
}

// Attachment records metadata for an uploaded file.
type Attachment struct {
	Filename string `bson:"filename" json:"filename"`
	Path     string `bson:"path" json:"path"`
	Mimetype string `bson:"mimetype,omitempty" json:"mimetype,omitempty"`
	Size     int64  `bson:"size,omitempty" json:"size,omitempty"`
}

// TimeEntry records tracked time in seconds.
type TimeEntry struct {
	User primitive.ObjectID `bson:"user" json:"user"`
	Time int64              `bson:"time" json:"time"`
	Date time.Time          `bson:"date" json:"date"`
}

// Task is a kanban card within a project.
type Task struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Project     primitive.ObjectID  `bson:"project" json:"project"`
	User        primitive.ObjectID  `bson:"user" json:"user"`
	Name        string              `bson:"name" json:"name"`
	Description string              `bson:"description" json:"description"`
	Status      TaskStatus          `bson:"status" json:"status"`
	Priority    TaskPriority        `bson:"priority" json:"priority"`
	DueDate     *time.Time          `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	AssignedTo  *primitive.ObjectID `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	Comments    []Comment           `bson:"comments" json:"comments"`
	Attachments []Attachment        `bson:"attachments" json:"attachments"`
	TimeTracked []TimeEntry         `bson:"timeTracked" json:"timeTracked"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}
