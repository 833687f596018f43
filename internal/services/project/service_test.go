package project

import (
	"context"
	"testing"

	"github.com/projexhq/projex-api/internal/activity"
	"github.com/projexhq/projex-api/internal/apperr"
	"github.com/projexhq/projex-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeProjects struct {
	byID    map[primitive.ObjectID]*models.Project
	updated *models.Project
	deleted []primitive.ObjectID
}

func newFakeProjects(projects ...*models.Project) *fakeProjects {
	f := &fakeProjects{byID: map[primitive.ObjectID]*models.Project{}}
	for _, p := range projects {
		f.byID[p.ID] = p
	}
	return f
}

func (f *fakeProjects) Insert(_ context.Context, p *models.Project) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	f.byID[p.ID] = p
	return nil
}

func (f *fakeProjects) FindByID(_ context.Context, id primitive.ObjectID) (*models.Project, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("project")
	}
	copied := *p
	copied.Members = append([]models.Member(nil), p.Members...)
	return &copied, nil
}

func (f *fakeProjects) FindByMember(_ context.Context, userID primitive.ObjectID) ([]models.Project, error) {
	var out []models.Project
	for _, p := range f.byID {
		if p.IsMember(userID) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProjects) Update(_ context.Context, p *models.Project) error {
	f.byID[p.ID] = p
	f.updated = p
	return nil
}

func (f *fakeProjects) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeUsers struct {
	byEmail map[string]*models.User
	byID    map[primitive.ObjectID]*models.User
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{byEmail: map[string]*models.User{}, byID: map[primitive.ObjectID]*models.User{}}
	for _, u := range users {
		f.byEmail[u.Email] = u
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	return u, nil
}

func (f *fakeUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	return u, nil
}

func (f *fakeUsers) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakeRecorder struct {
	entries []activity.Entry
}

func (f *fakeRecorder) Record(_ context.Context, entry activity.Entry) *models.AuditRecord {
	f.entries = append(f.entries, entry)
	return &models.AuditRecord{Action: entry.Action}
}

type fakeNotifier struct {
	recipients []primitive.ObjectID
	messages   []string
	links      []string
}

func (f *fakeNotifier) Notify(_ context.Context, recipient primitive.ObjectID, message, link string) *models.Notification {
	f.recipients = append(f.recipients, recipient)
	f.messages = append(f.messages, message)
	f.links = append(f.links, link)
	return &models.Notification{Recipient: recipient, Message: message, Link: link}
}

type projectFixture struct {
	service  *Service
	projects *fakeProjects
	users    *fakeUsers
	recorder *fakeRecorder
	notifier *fakeNotifier
}

func newProjectFixture(projects *fakeProjects, users *fakeUsers) *projectFixture {
	recorder := &fakeRecorder{}
	notifier := &fakeNotifier{}
	return &projectFixture{
		service: New(Dependencies{
			Projects: projects,
			Users:    users,
			Recorder: recorder,
			Notifier: notifier,
			Logger:   zap.NewNop(),
		}),
		projects: projects,
		users:    users,
		recorder: recorder,
		notifier: notifier,
	}
}

func TestCreateSeedsOwnerAsAdmin(t *testing.T) {
	owner := primitive.NewObjectID()
	f := newProjectFixture(newFakeProjects(), newFakeUsers())

	project, err := f.service.Create(context.Background(), owner, CreateInput{
		Name:        "  Apollo  ",
		Description: "Lunar program",
	})

	require.NoError(t, err)
	assert.Equal(t, "Apollo", project.Name)
	assert.Equal(t, owner, project.Owner)
	require.Len(t, project.Members, 1)
	assert.Equal(t, owner, project.Members[0].User)
	assert.Equal(t, models.RoleAdmin, project.Members[0].Role)

	require.Len(t, f.recorder.entries, 1)
	assert.Equal(t, models.ActionProjectCreated, f.recorder.entries[0].Action)
	assert.Empty(t, f.notifier.recipients)
}

func TestCreateRequiresNameAndDescription(t *testing.T) {
	f := newProjectFixture(newFakeProjects(), newFakeUsers())

	_, err := f.service.Create(context.Background(), primitive.NewObjectID(), CreateInput{Description: "d"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.service.Create(context.Background(), primitive.NewObjectID(), CreateInput{Name: "n"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpdateRequiresOwner(t *testing.T) {
	owner := primitive.NewObjectID()
	member := primitive.NewObjectID()
	project := &models.Project{
		ID:    primitive.NewObjectID(),
		Owner: owner,
		Name:  "Apollo",
		Members: []models.Member{
			{User: owner, Role: models.RoleAdmin},
			{User: member, Role: models.RoleAdmin},
		},
	}
	f := newProjectFixture(newFakeProjects(project), newFakeUsers())

	name := "Artemis"
	_, err := f.service.Update(context.Background(), member, project.ID, UpdateInput{Name: &name})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	updated, err := f.service.Update(context.Background(), owner, project.ID, UpdateInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Artemis", updated.Name)

	require.Len(t, f.recorder.entries, 1)
	assert.Equal(t, models.ActionProjectUpdated, f.recorder.entries[0].Action)
	changes, ok := f.recorder.entries[0].Metadata["changes"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Artemis", changes["name"])
}

func TestDeleteRequiresOwner(t *testing.T) {
	owner := primitive.NewObjectID()
	admin := primitive.NewObjectID()
	project := &models.Project{
		ID:    primitive.NewObjectID(),
		Owner: owner,
		Name:  "Apollo",
		Members: []models.Member{
			{User: owner, Role: models.RoleAdmin},
			{User: admin, Role: models.RoleAdmin},
		},
	}
	f := newProjectFixture(newFakeProjects(project), newFakeUsers())

	err := f.service.Delete(context.Background(), admin, project.ID, activity.Meta{})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	err = f.service.Delete(context.Background(), owner, project.ID, activity.Meta{})
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{project.ID}, f.projects.deleted)
	require.Len(t, f.recorder.entries, 1)
	assert.Equal(t, models.ActionProjectDeleted, f.recorder.entries[0].Action)
}

func TestAddMemberNotifiesAndAudits(t *testing.T) {
	owner := primitive.NewObjectID()
	invitee := &models.User{ID: primitive.NewObjectID(), Name: "Ada", Email: "ada@example.com"}
	project := &models.Project{
		ID:      primitive.NewObjectID(),
		Owner:   owner,
		Name:    "Apollo",
		Members: []models.Member{{User: owner, Role: models.RoleAdmin}},
	}
	f := newProjectFixture(newFakeProjects(project), newFakeUsers(invitee))

	members, err := f.service.AddMember(context.Background(), owner, project.ID, AddMemberInput{
		Email: " Ada@Example.com ",
		Role:  models.RoleEditor,
	})

	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, invitee.ID, members[1].User)
	assert.Equal(t, models.RoleEditor, members[1].Role)

	require.Len(t, f.notifier.recipients, 1)
	assert.Equal(t, invitee.ID, f.notifier.recipients[0])
	assert.Equal(t, "You have been added to the project 'Apollo'", f.notifier.messages[0])
	assert.Equal(t, "/project/"+project.ID.Hex(), f.notifier.links[0])

	require.Len(t, f.recorder.entries, 1)
	assert.Equal(t, models.ActionMemberAdded, f.recorder.entries[0].Action)
}

func TestAddMemberDefaultsToViewer(t *testing.T) {
	owner := primitive.NewObjectID()
	invitee := &models.User{ID: primitive.NewObjectID(), Email: "ada@example.com"}
	project := &models.Project{
		ID:      primitive.NewObjectID(),
		Owner:   owner,
		Members: []models.Member{{User: owner, Role: models.RoleAdmin}},
	}
	f := newProjectFixture(newFakeProjects(project), newFakeUsers(invitee))

	members, err := f.service.AddMember(context.Background(), owner, project.ID, AddMemberInput{
		Email: "ada@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, members[1].Role)
}

func TestAddMemberRequiresAdminRole(t *testing.T) {
	owner := primitive.NewObjectID()
	editor := primitive.NewObjectID()
	project := &models.Project{
		ID:    primitive.NewObjectID(),
		Owner: owner,
		Members: []models.Member{
			{User: owner, Role: models.RoleAdmin},
			{User: editor, Role: models.RoleEditor},
		},
	}
	f := newProjectFixture(newFakeProjects(project), newFakeUsers())

	_, err := f.service.AddMember(context.Background(), editor, project.ID, AddMemberInput{
		Email: "ada@example.com",
	})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestAddMemberRejectsDuplicate(t *testing.T) {
	owner := primitive.NewObjectID()
	existing := &models.User{ID: primitive.NewObjectID(), Email: "ada@example.com"}
	project := &models.Project{
		ID:    primitive.NewObjectID(),
		Owner: owner,
		Members: []models.Member{
			{User: owner, Role: models.RoleAdmin},
			{User: existing.ID, Role: models.RoleViewer},
		},
	}
	f := newProjectFixture(newFakeProjects(project), newFakeUsers(existing))

	_, err := f.service.AddMember(context.Background(), owner, project.ID, AddMemberInput{
		Email: "ada@example.com",
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Empty(t, f.notifier.recipients)
	assert.Empty(t, f.recorder.entries)
}

func TestAddMemberUnknownUser(t *testing.T) {
	owner := primitive.NewObjectID()
	project := &models.Project{
		ID:      primitive.NewObjectID(),
		Owner:   owner,
		Members: []models.Member{{User: owner, Role: models.RoleAdmin}},
	}
	f := newProjectFixture(newFakeProjects(project), newFakeUsers())

	_, err := f.service.AddMember(context.Background(), owner, project.ID, AddMemberInput{
		Email: "ghost@example.com",
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRemoveMemberProtectsOwner(t *testing.T) {
	owner := primitive.NewObjectID()
	project := &models.Project{
		ID:      primitive.NewObjectID(),
		Owner:   owner,
		Members: []models.Member{{User: owner, Role: models.RoleAdmin}},
	}
	f := newProjectFixture(newFakeProjects(project), newFakeUsers())

	_, err := f.service.RemoveMember(context.Background(), owner, project.ID, RemoveMemberInput{UserID: owner})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRemoveMember(t *testing.T) {
	owner := primitive.NewObjectID()
	member := &models.User{ID: primitive.NewObjectID(), Email: "ada@example.com"}
	project := &models.Project{
		ID:    primitive.NewObjectID(),
		Owner: owner,
		Members: []models.Member{
			{User: owner, Role: models.RoleAdmin},
			{User: member.ID, Role: models.RoleViewer},
		},
	}
	f := newProjectFixture(newFakeProjects(project), newFakeUsers(member))

	members, err := f.service.RemoveMember(context.Background(), owner, project.ID, RemoveMemberInput{UserID: member.ID})
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, owner, members[0].User)

	require.Len(t, f.recorder.entries, 1)
	assert.Equal(t, models.ActionMemberRemoved, f.recorder.entries[0].Action)
	assert.Equal(t, "Removed ada@example.com from project", f.recorder.entries[0].Details)
}

func TestRemoveMemberNotAMember(t *testing.T) {
	owner := primitive.NewObjectID()
	project := &models.Project{
		ID:      primitive.NewObjectID(),
		Owner:   owner,
		Members: []models.Member{{User: owner, Role: models.RoleAdmin}},
	}
	f := newProjectFixture(newFakeProjects(project), newFakeUsers())

	_, err := f.service.RemoveMember(context.Background(), owner, project.ID, RemoveMemberInput{
		UserID: primitive.NewObjectID(),
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateMemberRole(t *testing.T) {
	owner := primitive.NewObjectID()
	member := &models.User{ID: primitive.NewObjectID(), Email: "ada@example.com"}
	project := &models.Project{
		ID:    primitive.NewObjectID(),
		Owner: owner,
		Members: []models.Member{
			{User: owner, Role: models.RoleAdmin},
			{User: member.ID, Role: models.RoleViewer},
		},
	}
	f := newProjectFixture(newFakeProjects(project), newFakeUsers(member))

	members, err := f.service.UpdateMemberRole(context.Background(), owner, project.ID, UpdateRoleInput{
		UserID: member.ID,
		Role:   models.RoleEditor,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleEditor, members[1].Role)

	require.Len(t, f.recorder.entries, 1)
	assert.Equal(t, models.ActionMemberRoleUpdated, f.recorder.entries[0].Action)
	assert.Equal(t, "Changed ada@example.com's role from Viewer to Editor", f.recorder.entries[0].Details)
}

func TestUpdateMemberRoleRejectsUnknownRole(t *testing.T) {
	owner := primitive.NewObjectID()
	member := primitive.NewObjectID()
	project := &models.Project{
		ID:    primitive.NewObjectID(),
		Owner: owner,
		Members: []models.Member{
			{User: owner, Role: models.RoleAdmin},
			{User: member, Role: models.RoleViewer},
		},
	}
	f := newProjectFixture(newFakeProjects(project), newFakeUsers())

	_, err := f.service.UpdateMemberRole(context.Background(), owner, project.ID, UpdateRoleInput{
		UserID: member,
		Role:   models.Role("Superuser"),
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestListPopulatesMembers(t *testing.T) {
	owner := &models.User{ID: primitive.NewObjectID(), Name: "Ada", Email: "ada@example.com"}
	project := &models.Project{
		ID:      primitive.NewObjectID(),
		Owner:   owner.ID,
		Name:    "Apollo",
		Members: []models.Member{{User: owner.ID, Role: models.RoleAdmin}},
	}
	f := newProjectFixture(newFakeProjects(project), newFakeUsers(owner))

	views, err := f.service.List(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Len(t, views[0].Members, 1)
	assert.Equal(t, "Ada", views[0].Members[0].User.Name)
	assert.Equal(t, models.RoleAdmin, views[0].Members[0].Role)
}
