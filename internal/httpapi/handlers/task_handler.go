package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/projexhq/projex-api/internal/activity"
	authmiddleware "github.com/projexhq/projex-api/internal/httpapi/middleware"
	"github.com/projexhq/projex-api/internal/models"
	"github.com/projexhq/projex-api/internal/services/task"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// TaskService describes the task layer capabilities used by HTTP handlers.
type TaskService interface {
	Create(ctx context.Context, actor, projectID primitive.ObjectID, in task.CreateInput) (*models.Task, error)
	ListByProject(ctx context.Context, caller, projectID primitive.ObjectID) ([]models.Task, error)
	ListMine(ctx context.Context, caller primitive.ObjectID) ([]task.MineItem, error)
	Update(ctx context.Context, actor, taskID primitive.ObjectID, in task.UpdateInput) (*models.Task, error)
	Delete(ctx context.Context, actor, taskID primitive.ObjectID, meta activity.Meta) error
	AddComment(ctx context.Context, actor, taskID primitive.ObjectID, in task.CommentInput) ([]models.Comment, error)
	AddAttachment(ctx context.Context, actor, taskID primitive.ObjectID, in task.AttachmentInput) ([]models.Attachment, error)
	LogTime(ctx context.Context, actor, taskID primitive.ObjectID, in task.TimeInput) ([]models.TimeEntry, error)
}

// TaskHandler exposes HTTP endpoints for task flows.
type TaskHandler struct {
	service TaskService
	uploads *UploadSaver
	logger  *zap.Logger
	errors  errorMapper
}

// NewTaskHandler constructs a handler.
func NewTaskHandler(service TaskService, uploads *UploadSaver, logger *zap.Logger, production bool) *TaskHandler {
	return &TaskHandler{
		service: service,
		uploads: uploads,
		logger:  logger,
		errors:  errorMapper{logger: logger, production: production},
	}
}

// ListByProject returns a project's tasks.
func (h *TaskHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	caller, ok := authmiddleware.UserIDFromContext(r.Context())
	if !ok {
		writeMissingAuth(w)
		return
	}
	projectID, err := pathID(r, "projectID")
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}

	tasks, err := h.service.ListByProject(r.Context(), caller, projectID)
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// ListMine returns the caller's tasks across all their projects.
func (h *TaskHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	caller, ok := authmiddleware.UserIDFromContext(r.Context())
	if !ok {
		writeMissingAuth(w)
		return
	}

	items, err := h.service.ListMine(r.Context(), caller)
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Create stores a new task in a project.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := authmiddleware.UserIDFromContext(r.Context())
	if !ok {
		writeMissingAuth(w)
		return
	}
	projectID, err := pathID(r, "projectID")
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}

	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON payload", nil)
		return
	}

	in := task.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      models.TaskStatus(req.Status),
		Priority:    models.TaskPriority(req.Priority),
		DueDate:     req.DueDate,
		Meta:        requestMeta(r),
	}
	if req.AssignedTo != nil {
		assignee, err := primitive.ObjectIDFromHex(*req.AssignedTo)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid assignedTo", nil)
			return
		}
		in.AssignedTo = &assignee
	}

	created, err := h.service.Create(r.Context(), caller, projectID, in)
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update applies task changes.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := authmiddleware.UserIDFromContext(r.Context())
	if !ok {
		writeMissingAuth(w)
		return
	}
	taskID, err := pathID(r, "taskID")
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}

	var req updateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON payload", nil)
		return
	}

	in := task.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		DueDate:     req.DueDate,
		Meta:        requestMeta(r),
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		in.Status = &status
	}
	if req.Priority != nil {
		priority := models.TaskPriority(*req.Priority)
		in.Priority = &priority
	}
	if req.AssignedTo != nil {
		if *req.AssignedTo == "" {
			in.ClearAssignee = true
		} else {
			assignee, err := primitive.ObjectIDFromHex(*req.AssignedTo)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_request", "invalid assignedTo", nil)
				return
			}
			in.AssignedTo = &assignee
		}
	}

	updated, err := h.service.Update(r.Context(), caller, taskID, in)
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes a task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := authmiddleware.UserIDFromContext(r.Context())
	if !ok {
		writeMissingAuth(w)
		return
	}
	taskID, err := pathID(r, "taskID")
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), caller, taskID, requestMeta(r)); err != nil {
		h.errors.handle(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": taskID.Hex()})
}

// AddComment appends a comment to a task.
func (h *TaskHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	caller, ok := authmiddleware.UserIDFromContext(r.Context())
	if !ok {
		writeMissingAuth(w)
		return
	}
	taskID, err := pathID(r, "taskID")
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}

	var req addCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON payload", nil)
		return
	}

	comments, err := h.service.AddComment(r.Context(), caller, taskID, task.CommentInput{
		Text: req.Text,
		Meta: requestMeta(r),
	})
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comments)
}

// AddAttachment stores an uploaded file and appends its metadata.
func (h *TaskHandler) AddAttachment(w http.ResponseWriter, r *http.Request) {
	caller, ok := authmiddleware.UserIDFromContext(r.Context())
	if !ok {
		writeMissingAuth(w)
		return
	}
	taskID, err := pathID(r, "taskID")
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}

	saved, err := h.uploads.Save(r, "file")
	if err != nil {
		if errors.Is(err, ErrNoFile) {
			writeError(w, http.StatusBadRequest, "invalid_request", "please upload a file", nil)
			return
		}
		h.errors.handle(w, r, err)
		return
	}

	attachments, err := h.service.AddAttachment(r.Context(), caller, taskID, task.AttachmentInput{
		Filename: saved.Filename,
		Path:     saved.Path,
		Mimetype: saved.Mimetype,
		Size:     saved.Size,
		Meta:     requestMeta(r),
	})
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, attachments)
}

// LogTime appends a tracked-time entry to a task.
func (h *TaskHandler) LogTime(w http.ResponseWriter, r *http.Request) {
	caller, ok := authmiddleware.UserIDFromContext(r.Context())
	if !ok {
		writeMissingAuth(w)
		return
	}
	taskID, err := pathID(r, "taskID")
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}

	var req logTimeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON payload", nil)
		return
	}

	entries, err := h.service.LogTime(r.Context(), caller, taskID, task.TimeInput{
		Seconds: req.Time,
		Meta:    requestMeta(r),
	})
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entries)
}

type createTaskRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	AssignedTo  *string    `json:"assignedTo"`
}

type updateTaskRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	AssignedTo  *string    `json:"assignedTo"`
}

type addCommentRequest struct {
	Text string `json:"text"`
}

type logTimeRequest struct {
	Time int64 `json:"time"`
}
