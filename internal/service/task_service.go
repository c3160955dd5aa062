package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"tasktracker/internal/apperr"
	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

const maxTitleLen = 200

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Status      string
}

// TaskPatch is a partial update. Nil fields are left unchanged;
// ClearDueDate removes an existing due date.
type TaskPatch struct {
	Title        *string
	Description  *string
	DueDate      *time.Time
	ClearDueDate bool
	Status       *string
}

// TaskService wraps task-related business logic. Every call takes the
// owning user id explicitly; ownership is never read from ambient state.
type TaskService struct {
	tasks *repository.TaskRepository
}

func NewTaskService(tasks *repository.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

// Create stores a new task for userID. The owner always comes from the
// authenticated caller; any client-supplied owner is discarded upstream.
func (s *TaskService) Create(ctx context.Context, userID uint, input TaskInput) (*model.Task, error) {
	fields := make(map[string]string)
	title := strings.TrimSpace(input.Title)
	if msg := validateTitle(title); msg != "" {
		fields["title"] = msg
	}

	status := input.Status
	if status == "" {
		status = model.StatusPending
	}
	if !model.ValidStatus(status) {
		fields["status"] = fmt.Sprintf("%q is not a valid status", status)
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields)
	}

	task := &model.Task{
		UserID:      userID,
		Title:       title,
		Description: input.Description,
		DueDate:     input.DueDate,
		Status:      status,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// List returns the user's tasks, most recently created first.
func (s *TaskService) List(ctx context.Context, userID uint) ([]model.Task, error) {
	return s.tasks.ListByUser(ctx, userID)
}

// Get returns the task only when it belongs to userID. A task owned by
// another account reports not found, never forbidden.
func (s *TaskService) Get(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "task not found")
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return task, nil
}

// Update applies a partial update through the same ownership-scoped
// lookup as Get and refreshes the update timestamp.
func (s *TaskService) Update(ctx context.Context, userID, taskID uint, patch TaskPatch) (*model.Task, error) {
	task, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]string)
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if msg := validateTitle(title); msg != "" {
			fields["title"] = msg
		} else {
			task.Title = title
		}
	}
	if patch.Status != nil {
		if !model.ValidStatus(*patch.Status) {
			fields["status"] = fmt.Sprintf("%q is not a valid status", *patch.Status)
		} else {
			task.Status = *patch.Status
		}
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields)
	}

	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.ClearDueDate {
		task.DueDate = nil
	} else if patch.DueDate != nil {
		task.DueDate = patch.DueDate
	}

	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes the task after the same ownership-scoped lookup.
func (s *TaskService) Delete(ctx context.Context, userID, taskID uint) error {
	if _, err := s.Get(ctx, userID, taskID); err != nil {
		return err
	}
	return s.tasks.Delete(ctx, userID, taskID)
}

func validateTitle(title string) string {
	if title == "" {
		return "title is required"
	}
	if len([]rune(title)) > maxTitleLen {
		return fmt.Sprintf("title must be at most %d characters", maxTitleLen)
	}
	return ""
}
