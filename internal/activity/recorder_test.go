package activity

import (
	"context"
	"errors"
	"testing"

	"github.com/projexhq/projex-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeInserter struct {
	records []*models.AuditRecord
	err     error
}

func (f *fakeInserter) Insert(_ context.Context, record *models.AuditRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, record)
	return nil
}

func TestRecordPersistsEntry(t *testing.T) {
	store := &fakeInserter{}
	recorder := NewRecorder(store, zap.NewNop())

	actor := primitive.NewObjectID()
	project := primitive.NewObjectID()
	meta := Meta{IPAddress: "10.0.0.1", UserAgent: "test-agent"}

	record := recorder.Record(context.Background(), ProjectCreated(actor, project, "Apollo", meta))

	require.NotNil(t, record)
	require.Len(t, store.records, 1)
	assert.Equal(t, actor, record.Actor)
	assert.Equal(t, project, record.Project)
	assert.Equal(t, models.ActionProjectCreated, record.Action)
	assert.Equal(t, `Created project "Apollo"`, record.Details)
	assert.Equal(t, "Apollo", record.Metadata["projectName"])
	assert.Equal(t, "10.0.0.1", record.IPAddress)
	assert.Equal(t, "test-agent", record.UserAgent)
}

func TestRecordRejectsUnknownAction(t *testing.T) {
	store := &fakeInserter{}
	recorder := NewRecorder(store, zap.NewNop())

	record := recorder.Record(context.Background(), Entry{
		Actor:   primitive.NewObjectID(),
		Project: primitive.NewObjectID(),
		Action:  models.Action("project_exploded"),
		Details: "something",
	})

	assert.Nil(t, record)
	assert.Empty(t, store.records)
}

func TestRecordRejectsEmptyDetails(t *testing.T) {
	store := &fakeInserter{}
	recorder := NewRecorder(store, zap.NewNop())

	record := recorder.Record(context.Background(), Entry{
		Actor:   primitive.NewObjectID(),
		Project: primitive.NewObjectID(),
		Action:  models.ActionTaskCreated,
		Details: "   ",
	})

	assert.Nil(t, record)
	assert.Empty(t, store.records)
}

func TestRecordSwallowsStoreFailure(t *testing.T) {
	store := &fakeInserter{err: errors.New("write concern error")}
	recorder := NewRecorder(store, zap.NewNop())

	record := recorder.Record(context.Background(),
		TaskCreated(primitive.NewObjectID(), primitive.NewObjectID(), "Deploy", Meta{}))

	assert.Nil(t, record)
}

func TestEntryDetailsTexts(t *testing.T) {
	actor := primitive.NewObjectID()
	project := primitive.NewObjectID()
	task := primitive.NewObjectID()

	tests := []struct {
		name    string
		entry   Entry
		action  models.Action
		details string
	}{
		{
			name:    "member added",
			entry:   MemberAdded(actor, project, "dev@example.com", models.RoleEditor, Meta{}),
			action:  models.ActionMemberAdded,
			details: "Added dev@example.com as Editor",
		},
		{
			name:    "member removed",
			entry:   MemberRemoved(actor, project, "dev@example.com", Meta{}),
			action:  models.ActionMemberRemoved,
			details: "Removed dev@example.com from project",
		},
		{
			name:    "member role updated",
			entry:   MemberRoleUpdated(actor, project, "dev@example.com", models.RoleViewer, models.RoleAdmin, Meta{}),
			action:  models.ActionMemberRoleUpdated,
			details: "Changed dev@example.com's role from Viewer to Admin",
		},
		{
			name:    "task status changed",
			entry:   TaskStatusChanged(actor, project, task, "Deploy", models.StatusToDo, models.StatusDone, Meta{}),
			action:  models.ActionTaskStatusChanged,
			details: `Changed status of "Deploy" from To Do to Done`,
		},
		{
			name:    "task assigned",
			entry:   TaskAssigned(actor, project, task, "Deploy", "Ada", Meta{}),
			action:  models.ActionTaskAssigned,
			details: `Assigned "Deploy" to Ada`,
		},
		{
			name:    "file uploaded",
			entry:   FileUploaded(actor, project, task, "Deploy", "diagram.png", Meta{}),
			action:  models.ActionFileUploaded,
			details: `Uploaded file "diagram.png" to task "Deploy"`,
		},
		{
			name:    "time logged",
			entry:   TimeLogged(actor, project, task, "Deploy", 3600, Meta{}),
			action:  models.ActionTimeLogged,
			details: `Logged 3600 seconds on task "Deploy"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.action, tt.entry.Action)
			assert.Equal(t, tt.details, tt.entry.Details)
			assert.True(t, models.ValidAction(tt.entry.Action))
		})
	}
}
