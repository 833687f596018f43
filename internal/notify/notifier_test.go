package notify

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
	notifications []*models.Notification
	err           error
}

func (f *fakeInserter) Insert(_ context.Context, n *models.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.notifications = append(f.notifications, n)
	return nil
}

func TestNotifyPersistsUnread(t *testing.T) {
	store := &fakeInserter{}
	notifier := NewNotifier(store, zap.NewNop())

	recipient := primitive.NewObjectID()
	project := primitive.NewObjectID()

	n := notifier.Notify(context.Background(), recipient,
		MemberAddedMessage("Apollo"), ProjectLink(project))

	require.NotNil(t, n)
	require.Len(t, store.notifications, 1)
	assert.Equal(t, recipient, n.Recipient)
	assert.Equal(t, "You have been added to the project 'Apollo'", n.Message)
	assert.Equal(t, "/project/"+project.Hex(), n.Link)
	assert.False(t, n.Read)
}

func TestNotifyRejectsEmptyMessage(t *testing.T) {
	store := &fakeInserter{}
	notifier := NewNotifier(store, zap.NewNop())

	assert.Nil(t, notifier.Notify(context.Background(), primitive.NewObjectID(), "", "/project/x"))
	assert.Nil(t, notifier.Notify(context.Background(), primitive.NewObjectID(), "hello", ""))
	assert.Empty(t, store.notifications)
}

func TestNotifySwallowsStoreFailure(t *testing.T) {
	store := &fakeInserter{err: errors.New("socket closed")}
	notifier := NewNotifier(store, zap.NewNop())

	n := notifier.Notify(context.Background(), primitive.NewObjectID(),
		TaskAssignedMessage("Deploy"), ProjectLink(primitive.NewObjectID()))

	assert.Nil(t, n)
}

func TestShouldNotifyAssignment(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	tests := []struct {
		name string
		prev *primitive.ObjectID
		next *primitive.ObjectID
		want bool
	}{
		{"nil to nil", nil, nil, false},
		{"nil to user", nil, &a, true},
		{"user to nil", &a, nil, false},
		{"same user", &a, &a, false},
		{"different user", &a, &b, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldNotifyAssignment(tt.prev, tt.next))
		})
	}
}
