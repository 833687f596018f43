// Package task implements task mutations: the kanban card lifecycle,
// comments, attachments, and time tracking. Update diffs the stored
// snapshot against the incoming changes before writing, since the
// previous assignee and status are needed to decide side effects and
// are lost once the write lands.
package task

import (
	"context"
	"strings"
	"time"

	"github.com/projexhq/projex-api/internal/activity"
	"github.com/projexhq/projex-api/internal/apperr"
	"github.com/projexhq/projex-api/internal/models"
	"github.com/projexhq/projex-api/internal/notify"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// TaskStore is the persistence surface for task documents.
type TaskStore interface {
	Insert(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	FindByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Task, error)
	FindByProjects(ctx context.Context, projectIDs []primitive.ObjectID) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ProjectFinder resolves the project a task belongs to.
type ProjectFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error)
	FindByMember(ctx context.Context, userID primitive.ObjectID) ([]models.Project, error)
}

// UserFinder resolves assignees for audit details.
type UserFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Recorder writes audit records, best effort.
type Recorder interface {
	Record(ctx context.Context, entry activity.Entry) *models.AuditRecord
}

// Notifier emits notifications, best effort.
type Notifier interface {
	Notify(ctx context.Context, recipient primitive.ObjectID, message, link string) *models.Notification
}

// Service encapsulates task flows.
type Service struct {
	tasks    TaskStore
	projects ProjectFinder
	users    UserFinder
	recorder Recorder
	notifier Notifier
	logger   *zap.Logger
}

// Dependencies aggregates constructor inputs.
type Dependencies struct {
	Tasks    TaskStore
	Projects ProjectFinder
	Users    UserFinder
	Recorder Recorder
	Notifier Notifier
	Logger   *zap.Logger
}

// New initialises the task service.
func New(deps Dependencies) *Service {
	return &Service{
		tasks:    deps.Tasks,
		projects: deps.Projects,
		users:    deps.Users,
		recorder: deps.Recorder,
		notifier: deps.Notifier,
		logger:   deps.Logger,
	}
}

// CreateInput captures the create-task payload.
type CreateInput struct {
	Name        string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	DueDate     *time.Time
	AssignedTo  *primitive.ObjectID
	Meta        activity.Meta
}

// UpdateInput carries optional task changes; nil fields are untouched.
// ClearAssignee unassigns the task; it wins over AssignedTo.
type UpdateInput struct {
	Name          *string
	Description   *string
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	DueDate       *time.Time
	AssignedTo    *primitive.ObjectID
	ClearAssignee bool
	Meta          activity.Meta
}

// CommentInput captures a new comment.
type CommentInput struct {
	Text string
	Meta activity.Meta
}

// AttachmentInput carries stored-file metadata; the handler owns the
// actual file placement.
type AttachmentInput struct {
	Filename string
	Path     string
	Mimetype string
	Size     int64
	Meta     activity.Meta
}

// TimeInput captures a tracked-time entry in seconds.
type TimeInput struct {
	Seconds int64
	Meta    activity.Meta
}

// MineItem is a task annotated with its project name for cross-project
// listings.
type MineItem struct {
	models.Task
	ProjectName string `json:"projectName"`
}

// Create stores a new task in a project. The caller must be a member.
// Assigning at creation notifies the assignee.
func (s *Service) Create(ctx context.Context, actor, projectID primitive.ObjectID, in CreateInput) (*models.Task, error) {
	project, err := s.memberProject(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("name is required")
	}

	status := in.Status
	if status == "" {
		status = models.StatusToDo
	}
	if !models.ValidStatus(status) {
		return nil, apperr.Validation("unknown status %q", in.Status)
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		return nil, apperr.Validation("unknown priority %q", in.Priority)
	}

	task := &models.Task{
		Project:     project.ID,
		User:        actor,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     in.DueDate,
		AssignedTo:  in.AssignedTo,
	}
	if err := s.tasks.Insert(ctx, task); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, activity.TaskCreated(actor, project.ID, task.Name, in.Meta))
	if task.AssignedTo != nil {
		s.notifier.Notify(ctx, *task.AssignedTo,
			notify.TaskAssignedMessage(task.Name), notify.ProjectLink(task.Project))
	}
	return task, nil
}

// ListByProject returns a project's tasks. The caller must be a member.
func (s *Service) ListByProject(ctx context.Context, caller, projectID primitive.ObjectID) ([]models.Task, error) {
	if _, err := s.memberProject(ctx, caller, projectID); err != nil {
		return nil, err
	}
	return s.tasks.FindByProject(ctx, projectID)
}

// ListMine returns the caller's tasks across every project they belong
// to, annotated with project names.
func (s *Service) ListMine(ctx context.Context, caller primitive.ObjectID) ([]MineItem, error) {
	projects, err := s.projects.FindByMember(ctx, caller)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(projects))
	names := make(map[primitive.ObjectID]string, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
		names[p.ID] = p.Name
	}

	tasks, err := s.tasks.FindByProjects(ctx, ids)
	if err != nil {
		return nil, err
	}
	items := make([]MineItem, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, MineItem{Task: t, ProjectName: names[t.Project]})
	}
	return items, nil
}

// Update applies changes to a task. Status changes and reassignments
// are audited under their specific actions; any other change is audited
// as a generic update. A reassignment to a new, non-empty assignee
// notifies them; re-sending the same assignee does not.
func (s *Service) Update(ctx context.Context, actor, taskID primitive.ObjectID, in UpdateInput) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.memberProject(ctx, actor, task.Project); err != nil {
		return nil, err
	}

	prevStatus := task.Status
	prevAssigned := task.AssignedTo

	changes := map[string]any{}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		task.Name = strings.TrimSpace(*in.Name)
		changes["name"] = task.Name
	}
	if in.Description != nil {
		task.Description = *in.Description
		changes["description"] = task.Description
	}
	if in.Status != nil {
		if !models.ValidStatus(*in.Status) {
			return nil, apperr.Validation("unknown status %q", *in.Status)
		}
		task.Status = *in.Status
		changes["status"] = string(task.Status)
	}
	if in.Priority != nil {
		if !models.ValidPriority(*in.Priority) {
			return nil, apperr.Validation("unknown priority %q", *in.Priority)
		}
		task.Priority = *in.Priority
		changes["priority"] = string(task.Priority)
	}
	if in.DueDate != nil {
		task.DueDate = in.DueDate
		changes["dueDate"] = in.DueDate
	}
	if in.ClearAssignee {
		task.AssignedTo = nil
		changes["assignedTo"] = nil
	} else if in.AssignedTo != nil {
		task.AssignedTo = in.AssignedTo
		changes["assignedTo"] = in.AssignedTo.Hex()
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	assigneeChanged := notify.ShouldNotifyAssignment(prevAssigned, task.AssignedTo)
	switch {
	case task.Status != prevStatus:
		s.recorder.Record(ctx, activity.TaskStatusChanged(
			actor, task.Project, task.ID, task.Name, prevStatus, task.Status, in.Meta))
	case assigneeChanged:
		s.recorder.Record(ctx, activity.TaskAssigned(
			actor, task.Project, task.ID, task.Name, s.assigneeName(ctx, *task.AssignedTo), in.Meta))
	default:
		s.recorder.Record(ctx, activity.TaskUpdated(
			actor, task.Project, task.ID, task.Name, changes, in.Meta))
	}

	if assigneeChanged {
		s.notifier.Notify(ctx, *task.AssignedTo,
			notify.TaskAssignedMessage(task.Name), notify.ProjectLink(task.Project))
	}
	return task, nil
}

// Delete removes a task. The caller must be a project member.
func (s *Service) Delete(ctx context.Context, actor, taskID primitive.ObjectID, meta activity.Meta) error {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return err
	}
	if _, err := s.memberProject(ctx, actor, task.Project); err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return err
	}

	s.recorder.Record(ctx, activity.TaskDeleted(actor, task.Project, task.Name, meta))
	return nil
}

// AddComment appends a comment and returns the task's comment list.
func (s *Service) AddComment(ctx context.Context, actor, taskID primitive.ObjectID, in CommentInput) ([]models.Comment, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, apperr.Validation("text is required")
	}
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.memberProject(ctx, actor, task.Project); err != nil {
		return nil, err
	}

	task.Comments = append(task.Comments, models.Comment{
		Text: in.Text,
		User: actor,
		Date: time.Now().UTC(),
	})
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, activity.CommentAdded(actor, task.Project, task.ID, task.Name, in.Meta))
	return task.Comments, nil
}

// AddAttachment appends stored-file metadata and returns the task's
// attachment list.
func (s *Service) AddAttachment(ctx context.Context, actor, taskID primitive.ObjectID, in AttachmentInput) ([]models.Attachment, error) {
	if in.Filename == "" {
		return nil, apperr.Validation("a file is required")
	}
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.memberProject(ctx, actor, task.Project); err != nil {
		return nil, err
	}

	task.Attachments = append(task.Attachments, models.Attachment{
		Filename: in.Filename,
		Path:     in.Path,
		Mimetype: in.Mimetype,
		Size:     in.Size,
	})
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, activity.FileUploaded(actor, task.Project, task.ID, task.Name, in.Filename, in.Meta))
	return task.Attachments, nil
}

// LogTime appends a tracked-time entry and returns the task's entries.
func (s *Service) LogTime(ctx context.Context, actor, taskID primitive.ObjectID, in TimeInput) ([]models.TimeEntry, error) {
	if in.Seconds <= 0 {
		return nil, apperr.Validation("time must be a positive number of seconds")
	}
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.memberProject(ctx, actor, task.Project); err != nil {
		return nil, err
	}

	task.TimeTracked = append(task.TimeTracked, models.TimeEntry{
		User: actor,
		Time: in.Seconds,
		Date: time.Now().UTC(),
	})
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, activity.TimeLogged(actor, task.Project, task.ID, task.Name, in.Seconds, in.Meta))
	return task.TimeTracked, nil
}

// memberProject loads the project and requires the caller to be one of
// its members, matched on the membership's user id.
func (s *Service) memberProject(ctx context.Context, caller, projectID primitive.ObjectID) (*models.Project, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.IsMember(caller) {
		return nil, apperr.Forbidden("caller is not a member of the project")
	}
	return project, nil
}

// assigneeName resolves the assignee for audit details, falling back to
// the raw id when the lookup fails.
func (s *Service) assigneeName(ctx context.Context, userID primitive.ObjectID) string {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to resolve assignee for audit record",
			zap.String("user", userID.Hex()), zap.Error(err))
		return userID.Hex()
	}
	return user.Name
}
