// Package project implements project and membership mutations. Every
// mutation follows the same sequence: authorize, validate, primary
// write, then best-effort audit and notification side effects whose
// outcome never reaches the caller.
package project

import (
	"context"
	"strings"

	"github.com/projexhq/projex-api/internal/activity"
	"github.com/projexhq/projex-api/internal/apperr"
	"github.com/projexhq/projex-api/internal/models"
	"github.com/projexhq/projex-api/internal/notify"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ProjectStore is the persistence surface for project documents.
type ProjectStore interface {
	Insert(ctx context.Context, project *models.Project) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error)
	FindByMember(ctx context.Context, userID primitive.ObjectID) ([]models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// UserFinder resolves users referenced by membership operations.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

// Recorder writes audit records, best effort.
type Recorder interface {
	Record(ctx context.Context, entry activity.Entry) *models.AuditRecord
}

// Notifier emits notifications, best effort.
type Notifier interface {
	Notify(ctx context.Context, recipient primitive.ObjectID, message, link string) *models.Notification
}

// Service encapsulates project flows.
type Service struct {
	projects ProjectStore
	users    UserFinder
	recorder Recorder
	notifier Notifier
	logger   *zap.Logger
}

// Dependencies aggregates constructor inputs.
type Dependencies struct {
	Projects ProjectStore
	Users    UserFinder
	Recorder Recorder
	Notifier Notifier
	Logger   *zap.Logger
}

// New initialises the project service.
func New(deps Dependencies) *Service {
	return &Service{
		projects: deps.Projects,
		users:    deps.Users,
		recorder: deps.Recorder,
		notifier: deps.Notifier,
		logger:   deps.Logger,
	}
}

// CreateInput captures the create-project payload.
type CreateInput struct {
	Name        string
	Description string
	Meta        activity.Meta
}

// UpdateInput carries optional project changes.
type UpdateInput struct {
	Name        *string
	Description *string
	Meta        activity.Meta
}

// AddMemberInput identifies the invitee by email.
type AddMemberInput struct {
	Email string
	Role  models.Role
	Meta  activity.Meta
}

// RemoveMemberInput identifies the member to drop.
type RemoveMemberInput struct {
	UserID primitive.ObjectID
	Meta   activity.Meta
}

// UpdateRoleInput changes a member's role.
type UpdateRoleInput struct {
	UserID primitive.ObjectID
	Role   models.Role
	Meta   activity.Meta
}

// MemberView is a membership entry with the user populated.
type MemberView struct {
	User models.UserSummary `json:"user"`
	Role models.Role        `json:"role"`
}

// View is a project with member users populated for display.
type View struct {
	models.Project
	Members []MemberView `json:"members"`
}

// Create stores a new project. The creator becomes the owner and is
// seeded into the member list with the Admin role.
func (s *Service) Create(ctx context.Context, actor primitive.ObjectID, in CreateInput) (*models.Project, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("name is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, apperr.Validation("description is required")
	}

	project := &models.Project{
		Owner:       actor,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Members:     []models.Member{{User: actor, Role: models.RoleAdmin}},
	}
	if err := s.projects.Insert(ctx, project); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, activity.ProjectCreated(actor, project.ID, project.Name, in.Meta))
	return project, nil
}

// List returns every project the caller belongs to, members populated.
func (s *Service) List(ctx context.Context, caller primitive.ObjectID) ([]View, error) {
	projects, err := s.projects.FindByMember(ctx, caller)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, projects)
}

// Update applies name/description changes. Only the owner may update.
func (s *Service) Update(ctx context.Context, caller, projectID primitive.ObjectID, in UpdateInput) (*models.Project, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.Owner != caller {
		return nil, apperr.Forbidden("only the project owner may update the project")
	}

	changes := map[string]any{}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		project.Name = strings.TrimSpace(*in.Name)
		changes["name"] = project.Name
	}
	if in.Description != nil {
		if strings.TrimSpace(*in.Description) == "" {
			return nil, apperr.Validation("description cannot be empty")
		}
		project.Description = strings.TrimSpace(*in.Description)
		changes["description"] = project.Description
	}

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, activity.ProjectUpdated(caller, project.ID, changes, in.Meta))
	return project, nil
}

// Delete removes a project. Only the owner may delete.
func (s *Service) Delete(ctx context.Context, caller, projectID primitive.ObjectID, meta activity.Meta) error {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return err
	}
	if project.Owner != caller {
		return apperr.Forbidden("only the project owner may delete the project")
	}

	if err := s.projects.Delete(ctx, projectID); err != nil {
		return err
	}

	s.recorder.Record(ctx, activity.ProjectDeleted(caller, project.ID, project.Name, meta))
	return nil
}

// AddMember invites an existing user by email. The caller must hold the
// Admin role in the project. The new member is notified.
func (s *Service) AddMember(ctx context.Context, caller, projectID primitive.ObjectID, in AddMemberInput) ([]models.Member, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.IsAdmin(caller) {
		return nil, apperr.Forbidden("caller is not a project admin")
	}

	role := in.Role
	if role == "" {
		role = models.RoleViewer
	}
	if !models.ValidRole(role) {
		return nil, apperr.Validation("unknown role %q", in.Role)
	}

	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return nil, err
	}
	if project.IsMember(user.ID) {
		return nil, apperr.Conflict("user is already a member of the project")
	}

	project.Members = append(project.Members, models.Member{User: user.ID, Role: role})
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, user.ID, notify.MemberAddedMessage(project.Name), notify.ProjectLink(project.ID))
	s.recorder.Record(ctx, activity.MemberAdded(caller, project.ID, user.Email, role, in.Meta))
	return project.Members, nil
}

// RemoveMember drops a member. The caller must hold the Admin role; the
// owner cannot be removed.
func (s *Service) RemoveMember(ctx context.Context, caller, projectID primitive.ObjectID, in RemoveMemberInput) ([]models.Member, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.IsAdmin(caller) {
		return nil, apperr.Forbidden("caller is not a project admin")
	}
	if in.UserID == project.Owner {
		return nil, apperr.Validation("the project owner cannot be removed")
	}
	if !project.IsMember(in.UserID) {
		return nil, apperr.NotFound("member")
	}

	members := project.Members[:0]
	for _, m := range project.Members {
		if m.User != in.UserID {
			members = append(members, m)
		}
	}
	project.Members = members
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, activity.MemberRemoved(caller, project.ID, s.memberEmail(ctx, in.UserID), in.Meta))
	return project.Members, nil
}

// UpdateMemberRole changes a member's role. The caller must hold the
// Admin role in the project.
func (s *Service) UpdateMemberRole(ctx context.Context, caller, projectID primitive.ObjectID, in UpdateRoleInput) ([]models.Member, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.IsAdmin(caller) {
		return nil, apperr.Forbidden("caller is not a project admin")
	}
	if !models.ValidRole(in.Role) {
		return nil, apperr.Validation("unknown role %q", in.Role)
	}

	member := project.MemberOf(in.UserID)
	if member == nil {
		return nil, apperr.NotFound("member")
	}

	oldRole := member.Role
	member.Role = in.Role
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, activity.MemberRoleUpdated(caller, project.ID, s.memberEmail(ctx, in.UserID), oldRole, in.Role, in.Meta))
	return project.Members, nil
}

// memberEmail resolves a member's email for audit details, falling back
// to the raw id when the lookup fails.
func (s *Service) memberEmail(ctx context.Context, userID primitive.ObjectID) string {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to resolve member email for audit record",
			zap.String("user", userID.Hex()), zap.Error(err))
		return userID.Hex()
	}
	return user.Email
}

func (s *Service) populate(ctx context.Context, projects []models.Project) ([]View, error) {
	idSet := map[primitive.ObjectID]struct{}{}
	for _, p := range projects {
		for _, m := range p.Members {
			idSet[m.User] = struct{}{}
		}
	}
	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.UserSummary, len(users))
	for i := range users {
		byID[users[i].ID] = users[i].Summary()
	}

	views := make([]View, 0, len(projects))
	for _, p := range projects {
		view := View{Project: p, Members: make([]MemberView, 0, len(p.Members))}
		for _, m := range p.Members {
			summary, ok := byID[m.User]
			if !ok {
				summary = models.UserSummary{ID: m.User}
			}
			view.Members = append(view.Members, MemberView{User: summary, Role: m.Role})
		}
		views = append(views, view)
	}
	return views, nil
}
