package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"tugasku/internal/model"
)

// Sort keys accepted by TaskFilter.
const (
	SortByCreatedAt = "created_at"
	SortByTitle     = "title"
	SortByDueDate   = "due_date"
	SortByPriority  = "priority"
)

// TaskFilter describes one task list query: conjunctive filters, a
// single sort key, and a 1-based page.
type TaskFilter struct {
	Search     string
	CategoryID *uint
	Status     model.Status
	Priority   model.Priority
	SortBy     string
	SortOrder  string
	Page       int
	PageSize   int
}

// Pagination reports where a page sits in the filtered result set.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
	Pages    int   `json:"pages"`
	HasNext  bool  `json:"has_next"`
	HasPrev  bool  `json:"has_prev"`
}

// TaskRepository handles CRUD for tasks and their status logs.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// CreateWithLog inserts a task together with its initial status log
// entry in one transaction.
func (r *TaskRepository) CreateWithLog(ctx context.Context, task *model.Task, entry *model.TaskLog) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}
		entry.TaskID = task.ID
		return tx.Create(entry).Error
	})
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// SaveWithLog persists a modified task. When entry is non-nil the
// status changed and the log entry is written in the same transaction;
// a failure rolls back both.
func (r *TaskRepository) SaveWithLog(ctx context.Context, task *model.Task, entry *model.TaskLog) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Category").Save(task).Error; err != nil {
			return err
		}
		if entry == nil {
			return nil
		}
		entry.TaskID = task.ID
		return tx.Create(entry).Error
	})
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// DeleteWithLogs removes a task and all its log entries atomically.
// The task row is deleted first, owner-scoped; when no row matches the
// log entries are left untouched and a NotFoundError is returned.
func (r *TaskRepository) DeleteWithLogs(ctx context.Context, ownerID, taskID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("owner_id = ? AND id = ?", ownerID, taskID).Delete(&model.Task{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &model.NotFoundError{Resource: "task", ID: taskID}
		}
		return tx.Where("task_id = ?", taskID).Delete(&model.TaskLog{}).Error
	})
	if err != nil {
		var notFound *model.NotFoundError
		if errors.As(err, &notFound) {
			return err
		}
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, ownerID, taskID uint) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Preload("Category").
		Where("owner_id = ? AND id = ?", ownerID, taskID).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &model.NotFoundError{Resource: "task", ID: taskID}
	}
	if err != nil {
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &task, nil
}

// Logs returns a task's status history, oldest first.
func (r *TaskRepository) Logs(ctx context.Context, taskID uint) ([]model.TaskLog, error) {
	var logs []model.TaskLog
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).
		Order("changed_at ASC, id ASC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list task logs: %w", err)
	}
	return logs, nil
}

// List runs a filtered, sorted, paginated query over one owner's tasks.
// The sort is made deterministic by an id ASC tiebreak, so repeated
// calls with the same filter always produce the same pages. A page past
// the end yields an empty slice with correct metadata.
func (r *TaskRepository) List(ctx context.Context, ownerID uint, filter TaskFilter) ([]model.Task, Pagination, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 {
		size = 20
	}

	base := r.db.WithContext(ctx).Model(&model.Task{}).Where("owner_id = ?", ownerID)
	if search := strings.TrimSpace(filter.Search); search != "" {
		base = base.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if filter.CategoryID != nil {
		base = base.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Status != "" {
		base = base.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		base = base.Where("priority = ?", filter.Priority)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("count tasks: %w", err)
	}

	var tasks []model.Task
	err := base.Order(orderClause(filter.SortBy, filter.SortOrder)).Order("id ASC").
		Offset((page - 1) * size).Limit(size).
		Preload("Category").Find(&tasks).Error
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("list tasks: %w", err)
	}

	pages := int(math.Ceil(float64(total) / float64(size)))
	return tasks, Pagination{
		Page:     page,
		PageSize: size,
		Total:    total,
		Pages:    pages,
		HasNext:  page < pages,
		HasPrev:  page > 1,
	}, nil
}

// orderClause maps a sort key to SQL. Priority sorts by rank, not
// alphabetically: desc yields high, medium, low.
func orderClause(sortBy, sortOrder string) string {
	dir := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		dir = "ASC"
	}
	switch sortBy {
	case SortByTitle:
		return "title " + dir
	case SortByDueDate:
		return "due_date " + dir
	case SortByPriority:
		return "CASE priority WHEN 'low' THEN 0 WHEN 'medium' THEN 1 WHEN 'high' THEN 2 END " + dir
	default:
		return "created_at " + dir
	}
}

// Recent returns the n most recently created tasks, newest first.
func (r *TaskRepository) Recent(ctx context.Context, ownerID uint, n int) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").Limit(n).
		Preload("Category").Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("recent tasks: %w", err)
	}
	return tasks, nil
}

// CountByStatus returns how many of the owner's tasks sit in each status.
func (r *TaskRepository) CountByStatus(ctx context.Context, ownerID uint) (map[model.Status]int64, error) {
	var rows []struct {
		Status model.Status
		N      int64
	}
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("status, COUNT(*) AS n").Where("owner_id = ?", ownerID).
		Group("status").Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count tasks by status: %w", err)
	}
	counts := make(map[model.Status]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.N
	}
	return counts, nil
}

// CountByCategory returns task counts keyed by category id for one owner.
func (r *TaskRepository) CountByCategory(ctx context.Context, ownerID uint) (map[uint]int64, error) {
	var rows []struct {
		CategoryID uint
		N          int64
	}
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("category_id, COUNT(*) AS n").
		Where("owner_id = ? AND category_id IS NOT NULL", ownerID).
		Group("category_id").Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count tasks by category: %w", err)
	}
	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.N
	}
	return counts, nil
}

// CountOverdue counts unfinished tasks whose due date has passed.
func (r *TaskRepository) CountOverdue(ctx context.Context, ownerID uint, now time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("owner_id = ? AND due_date IS NOT NULL AND due_date < ? AND status <> ?",
			ownerID, now, model.StatusCompleted).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count overdue tasks: %w", err)
	}
	return n, nil
}
