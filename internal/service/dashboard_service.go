package service

import (
	"context"

	"tugasku/internal/model"
	"tugasku/internal/repository"
)

const recentTaskLimit = 5

// Statistics counts the owner's tasks by status.
type Statistics struct {
	TotalTasks      int64 `json:"total_tasks"`
	PendingTasks    int64 `json:"pending_tasks"`
	InProgressTasks int64 `json:"in_progress_tasks"`
	CompletedTasks  int64 `json:"completed_tasks"`
}

// CategoryStat pairs a category with its live task count.
type CategoryStat struct {
	Category  model.Category `json:"category"`
	TaskCount int64          `json:"task_count"`
}

// Dashboard is the owner's summary view.
type Dashboard struct {
	Statistics    Statistics     `json:"statistics"`
	RecentTasks   []model.Task   `json:"recent_tasks"`
	CategoryStats []CategoryStat `json:"category_stats"`
}

// DashboardService derives summary views from live task and category
// data. It holds no state and caches nothing, so a dashboard is always
// consistent with the mutations that preceded it.
type DashboardService struct {
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
}

func NewDashboardService(taskRepo *repository.TaskRepository, categoryRepo *repository.CategoryRepository) *DashboardService {
	return &DashboardService{taskRepo: taskRepo, categoryRepo: categoryRepo}
}

func (s *DashboardService) Overview(ctx context.Context, ownerID uint) (*Dashboard, error) {
	counts, err := s.taskRepo.CountByStatus(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	recent, err := s.taskRepo.Recent(ctx, ownerID, recentTaskLimit)
	if err != nil {
		return nil, err
	}

	categories, err := s.categoryRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	catCounts, err := s.taskRepo.CountByCategory(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	// Only categories that actually hold tasks show up in the stats.
	stats := make([]CategoryStat, 0, len(categories))
	for _, category := range categories {
		n := catCounts[category.ID]
		if n == 0 {
			continue
		}
		category.TaskCount = n
		stats = append(stats, CategoryStat{Category: category, TaskCount: n})
	}

	return &Dashboard{
		Statistics: Statistics{
			TotalTasks:      counts[model.StatusPending] + counts[model.StatusInProgress] + counts[model.StatusCompleted],
			PendingTasks:    counts[model.StatusPending],
			InProgressTasks: counts[model.StatusInProgress],
			CompletedTasks:  counts[model.StatusCompleted],
		},
		RecentTasks:   recent,
		CategoryStats: stats,
	}, nil
}
