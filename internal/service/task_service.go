package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"tugasku/internal/model"
	"tugasku/internal/repository"
)

const (
	maxTitleLen       = 255
	maxDescriptionLen = 2000
)

// TaskInput represents data required to create a task. Zero values for
// Status and Priority fall back to pending/medium.
type TaskInput struct {
	Title       string
	Description string
	Status      model.Status
	Priority    model.Priority
	DueDate     *time.Time
	CategoryID  *uint
}

// TaskUpdate carries a partial update. Nil pointers mean "leave the
// field alone". DueDate and CategoryID are nullable, so clearing them
// is signalled separately from omitting them.
type TaskUpdate struct {
	Title         *string
	Description   *string
	Status        *model.Status
	StatusNotes   string
	Priority      *model.Priority
	DueDate       *time.Time
	DueDateSet    bool
	CategoryID    *uint
	CategoryIDSet bool
}

// TaskService wraps task business rules: validation, category
// referential checks, and the status history invariant. Every status
// change writes exactly one log entry in the same transaction as the
// task itself, so a task's stored status always matches the newest
// entry of its history.
type TaskService struct {
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
}

func NewTaskService(taskRepo *repository.TaskRepository, categoryRepo *repository.CategoryRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo, categoryRepo: categoryRepo}
}

func (s *TaskService) Create(ctx context.Context, ownerID uint, input TaskInput) (*model.Task, error) {
	title := strings.TrimSpace(input.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	description := strings.TrimSpace(input.Description)
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = model.StatusPending
	}
	if !status.Valid() {
		return nil, &model.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", status)}
	}

	priority := input.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.Valid() {
		return nil, &model.ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown priority %q", priority)}
	}

	if input.CategoryID != nil {
		if err := s.checkCategory(ctx, ownerID, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	task := &model.Task{
		OwnerID:     ownerID,
		CategoryID:  input.CategoryID,
		Title:       title,
		Description: description,
		Status:      status,
		Priority:    priority,
		DueDate:     input.DueDate,
	}
	entry := &model.TaskLog{
		OldStatus: nil,
		NewStatus: status,
		ChangedBy: ownerID,
		ChangedAt: time.Now(),
		Notes:     "Task created",
	}

	if err := s.taskRepo.CreateWithLog(ctx, task, entry); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, ownerID, taskID uint, update TaskUpdate) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		task.Title = title
	}
	if update.Description != nil {
		description := strings.TrimSpace(*update.Description)
		if err := validateDescription(description); err != nil {
			return nil, err
		}
		task.Description = description
	}
	if update.Status != nil && !update.Status.Valid() {
		return nil, &model.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", *update.Status)}
	}
	if update.Priority != nil {
		if !update.Priority.Valid() {
			return nil, &model.ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown priority %q", *update.Priority)}
		}
		task.Priority = *update.Priority
	}
	if update.DueDateSet {
		task.DueDate = update.DueDate
	}
	if update.CategoryIDSet {
		if update.CategoryID != nil {
			if err := s.checkCategory(ctx, ownerID, *update.CategoryID); err != nil {
				return nil, err
			}
		}
		task.CategoryID = update.CategoryID
		task.Category = nil
	}

	// A status change is the only mutation that appends to the history.
	// Re-asserting the current status writes no entry.
	var entry *model.TaskLog
	if update.Status != nil && *update.Status != task.Status {
		oldStatus := task.Status
		task.Status = *update.Status

		notes := update.StatusNotes
		if notes == "" {
			notes = fmt.Sprintf("Status changed from %s to %s", oldStatus, task.Status)
		}
		entry = &model.TaskLog{
			OldStatus: &oldStatus,
			NewStatus: task.Status,
			ChangedBy: ownerID,
			ChangedAt: time.Now(),
			Notes:     notes,
		}
	}

	if err := s.taskRepo.SaveWithLog(ctx, task, entry); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID, taskID uint) error {
	if _, err := s.taskRepo.FindByID(ctx, ownerID, taskID); err != nil {
		return err
	}
	return s.taskRepo.DeleteWithLogs(ctx, ownerID, taskID)
}

// Get returns a task with its full status history, oldest entry first.
func (s *TaskService) Get(ctx context.Context, ownerID, taskID uint) (*model.Task, []model.TaskLog, error) {
	task, err := s.taskRepo.FindByID(ctx, ownerID, taskID)
	if err != nil {
		return nil, nil, err
	}
	logs, err := s.taskRepo.Logs(ctx, task.ID)
	if err != nil {
		return nil, nil, err
	}
	return task, logs, nil
}

// List applies a validated filter over the owner's tasks.
func (s *TaskService) List(ctx context.Context, ownerID uint, filter repository.TaskFilter) ([]model.Task, repository.Pagination, error) {
	if err := validateFilter(filter); err != nil {
		return nil, repository.Pagination{}, err
	}
	return s.taskRepo.List(ctx, ownerID, filter)
}

// checkCategory resolves a category reference against the same owner.
// A missing or foreign category is a validation failure of the task
// payload, not a not-found on the task operation.
func (s *TaskService) checkCategory(ctx context.Context, ownerID, categoryID uint) error {
	if _, err := s.categoryRepo.FindByID(ctx, ownerID, categoryID); err != nil {
		var notFound *model.NotFoundError
		if errors.As(err, &notFound) {
			return &model.ValidationError{Field: "category_id", Reason: fmt.Sprintf("category %d not found", categoryID)}
		}
		return err
	}
	return nil
}

func validateTitle(title string) error {
	if title == "" {
		return &model.ValidationError{Field: "title", Reason: "title is required"}
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return &model.ValidationError{Field: "title", Reason: fmt.Sprintf("title must be at most %d characters", maxTitleLen)}
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return &model.ValidationError{Field: "description", Reason: fmt.Sprintf("description must be at most %d characters", maxDescriptionLen)}
	}
	return nil
}

func validateFilter(filter repository.TaskFilter) error {
	if filter.Status != "" && !filter.Status.Valid() {
		return &model.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", filter.Status)}
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		return &model.ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown priority %q", filter.Priority)}
	}
	switch filter.SortBy {
	case "", repository.SortByCreatedAt, repository.SortByTitle, repository.SortByDueDate, repository.SortByPriority:
	default:
		return &model.ValidationError{Field: "sort_by", Reason: fmt.Sprintf("unknown sort key %q", filter.SortBy)}
	}
	switch strings.ToLower(filter.SortOrder) {
	case "", "asc", "desc":
	default:
		return &model.ValidationError{Field: "sort_order", Reason: fmt.Sprintf("sort order must be asc or desc, got %q", filter.SortOrder)}
	}
	return nil
}
