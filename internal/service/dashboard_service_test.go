package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tugasku/internal/model"
	"tugasku/internal/service"
)

func TestDashboardStatistics(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := e.tasks.Create(ctx, e.owner, service.TaskInput{Title: fmt.Sprintf("pending %d", i)})
		require.NoError(t, err)
	}
	for i := 0; i < 2; i++ {
		_, err := e.tasks.Create(ctx, e.owner, service.TaskInput{Title: fmt.Sprintf("busy %d", i), Status: model.StatusInProgress})
		require.NoError(t, err)
	}
	_, err := e.tasks.Create(ctx, e.owner, service.TaskInput{Title: "done", Status: model.StatusCompleted})
	require.NoError(t, err)

	// Another owner's tasks never leak into the dashboard.
	_, err = e.tasks.Create(ctx, e.other, service.TaskInput{Title: "not mine"})
	require.NoError(t, err)

	dashboard, err := e.dashboard.Overview(ctx, e.owner)
	require.NoError(t, err)
	assert.Equal(t, int64(6), dashboard.Statistics.TotalTasks)
	assert.Equal(t, int64(3), dashboard.Statistics.PendingTasks)
	assert.Equal(t, int64(2), dashboard.Statistics.InProgressTasks)
	assert.Equal(t, int64(1), dashboard.Statistics.CompletedTasks)
}

func TestDashboardRecentTasksNewestFirst(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	for i := 1; i <= 7; i++ {
		_, err := e.tasks.Create(ctx, e.owner, service.TaskInput{Title: fmt.Sprintf("task %d", i)})
		require.NoError(t, err)
	}

	dashboard, err := e.dashboard.Overview(ctx, e.owner)
	require.NoError(t, err)
	require.Len(t, dashboard.RecentTasks, 5)

	titles := make([]string, len(dashboard.RecentTasks))
	for i, task := range dashboard.RecentTasks {
		titles[i] = task.Title
	}
	assert.Equal(t, []string{"task 7", "task 6", "task 5", "task 4", "task 3"}, titles)
}

func TestDashboardCategoryStatsSkipEmptyCategories(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	work, err := e.categories.Create(ctx, e.owner, "Work", "")
	require.NoError(t, err)
	_, err = e.categories.Create(ctx, e.owner, "Empty", "")
	require.NoError(t, err)

	_, err = e.tasks.Create(ctx, e.owner, service.TaskInput{Title: "report", CategoryID: &work.ID})
	require.NoError(t, err)
	_, err = e.tasks.Create(ctx, e.owner, service.TaskInput{Title: "slides", CategoryID: &work.ID})
	require.NoError(t, err)

	dashboard, err := e.dashboard.Overview(ctx, e.owner)
	require.NoError(t, err)
	require.Len(t, dashboard.CategoryStats, 1)
	assert.Equal(t, "Work", dashboard.CategoryStats[0].Category.Name)
	assert.Equal(t, int64(2), dashboard.CategoryStats[0].TaskCount)
}

func TestDashboardReflectsMutationsImmediately(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	task, err := e.tasks.Create(ctx, e.owner, service.TaskInput{Title: "flip me"})
	require.NoError(t, err)

	completed := model.StatusCompleted
	_, err = e.tasks.Update(ctx, e.owner, task.ID, service.TaskUpdate{Status: &completed})
	require.NoError(t, err)

	dashboard, err := e.dashboard.Overview(ctx, e.owner)
	require.NoError(t, err)
	assert.Equal(t, int64(0), dashboard.Statistics.PendingTasks)
	assert.Equal(t, int64(1), dashboard.Statistics.CompletedTasks)
}
