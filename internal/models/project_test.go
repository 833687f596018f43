package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMembershipChecks(t *testing.T) {
	owner := primitive.NewObjectID()
	editor := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	project := Project{
		Owner: owner,
		Members: []Member{
			{User: owner, Role: RoleAdmin},
			{User: editor, Role: RoleEditor},
		},
	}

	assert.True(t, project.IsMember(owner))
	assert.True(t, project.IsMember(editor))
	assert.False(t, project.IsMember(stranger))

	assert.True(t, project.IsAdmin(owner))
	assert.False(t, project.IsAdmin(editor))
	assert.False(t, project.IsAdmin(stranger))

	m := project.MemberOf(editor)
	assert.NotNil(t, m)
	assert.Equal(t, RoleEditor, m.Role)
	assert.Nil(t, project.MemberOf(stranger))
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleAdmin))
	assert.True(t, ValidRole(RoleEditor))
	assert.True(t, ValidRole(RoleViewer))
	assert.False(t, ValidRole(Role("Superuser")))
	assert.False(t, ValidRole(Role("")))
}

func TestValidStatusAndPriority(t *testing.T) {
	assert.True(t, ValidStatus(StatusToDo))
	assert.True(t, ValidStatus(StatusInProgress))
	assert.True(t, ValidStatus(StatusDone))
	assert.False(t, ValidStatus(TaskStatus("Blocked")))

	assert.True(t, ValidPriority(PriorityLow))
	assert.True(t, ValidPriority(PriorityMedium))
	assert.True(t, ValidPriority(PriorityHigh))
	assert.False(t, ValidPriority(TaskPriority("Urgent")))
}

func TestValidAction(t *testing.T) {
	assert.True(t, ValidAction(ActionProjectCreated))
	assert.True(t, ValidAction(ActionTimeLogged))
	assert.False(t, ValidAction(Action("project_exploded")))
}
