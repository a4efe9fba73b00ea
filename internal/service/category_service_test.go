package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tugasku/internal/model"
	"tugasku/internal/service"
)

func TestCreateCategoryValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	var validation *model.ValidationError

	_, err := e.categories.Create(ctx, e.owner, "  ", "")
	require.ErrorAs(t, err, &validation)

	_, err = e.categories.Create(ctx, e.owner, strings.Repeat("x", 101), "")
	require.ErrorAs(t, err, &validation)

	_, err = e.categories.Create(ctx, e.owner, strings.Repeat("я", 101), "")
	require.ErrorAs(t, err, &validation)

	_, err = e.categories.Create(ctx, e.owner, "Work", strings.Repeat("x", 501))
	require.ErrorAs(t, err, &validation)
}

func TestCategoryNameUniquePerOwner(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.categories.Create(ctx, e.owner, "Work", "")
	require.NoError(t, err)

	var conflict *model.ConflictError
	_, err = e.categories.Create(ctx, e.owner, "Work", "")
	require.ErrorAs(t, err, &conflict)

	// Comparison is case-sensitive: "work" is a different category.
	_, err = e.categories.Create(ctx, e.owner, "work", "")
	require.NoError(t, err)

	// Another owner may reuse the name freely.
	_, err = e.categories.Create(ctx, e.other, "Work", "")
	require.NoError(t, err)
}

func TestUpdateCategory(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	work, err := e.categories.Create(ctx, e.owner, "Work", "old")
	require.NoError(t, err)
	_, err = e.categories.Create(ctx, e.owner, "Health", "")
	require.NoError(t, err)

	// Renaming onto another category's name collides.
	name := "Health"
	var conflict *model.ConflictError
	_, err = e.categories.Update(ctx, e.owner, work.ID, service.CategoryInput{Name: &name})
	require.ErrorAs(t, err, &conflict)

	// Re-asserting its own name is fine, and partial updates leave
	// omitted fields alone.
	name = "Work"
	desc := "new description"
	updated, err := e.categories.Update(ctx, e.owner, work.ID, service.CategoryInput{Name: &name, Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Work", updated.Name)
	assert.Equal(t, "new description", updated.Description)

	var notFound *model.NotFoundError
	_, err = e.categories.Update(ctx, e.other, work.ID, service.CategoryInput{Description: &desc})
	require.ErrorAs(t, err, &notFound)
}

func TestDeleteCategoryBlockedWhileReferenced(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	work, err := e.categories.Create(ctx, e.owner, "Work", "")
	require.NoError(t, err)
	task, err := e.tasks.Create(ctx, e.owner, service.TaskInput{Title: "Write report", CategoryID: &work.ID})
	require.NoError(t, err)

	var conflict *model.ConflictError
	err = e.categories.Delete(ctx, e.owner, work.ID)
	require.ErrorAs(t, err, &conflict)

	// Unlink the task, then deletion goes through.
	_, err = e.tasks.Update(ctx, e.owner, task.ID, service.TaskUpdate{CategoryIDSet: true})
	require.NoError(t, err)

	require.NoError(t, e.categories.Delete(ctx, e.owner, work.ID))

	categories, err := e.categories.List(ctx, e.owner)
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestDeleteCategoryUnknown(t *testing.T) {
	e := newEnv(t)

	var notFound *model.NotFoundError
	err := e.categories.Delete(context.Background(), e.owner, 42)
	require.ErrorAs(t, err, &notFound)
}

func TestListCategoriesOrderedWithLiveCounts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	study, err := e.categories.Create(ctx, e.owner, "Study", "")
	require.NoError(t, err)
	health, err := e.categories.Create(ctx, e.owner, "Health", "")
	require.NoError(t, err)
	_, err = e.categories.Create(ctx, e.owner, "Work", "")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := e.tasks.Create(ctx, e.owner, service.TaskInput{Title: "studying", CategoryID: &study.ID})
		require.NoError(t, err)
	}
	task, err := e.tasks.Create(ctx, e.owner, service.TaskInput{Title: "run", CategoryID: &health.ID})
	require.NoError(t, err)

	categories, err := e.categories.List(ctx, e.owner)
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, []string{"Health", "Study", "Work"}, []string{categories[0].Name, categories[1].Name, categories[2].Name})
	assert.Equal(t, int64(1), categories[0].TaskCount)
	assert.Equal(t, int64(3), categories[1].TaskCount)
	assert.Equal(t, int64(0), categories[2].TaskCount)

	// Counts come from the live task table, not a stored counter.
	require.NoError(t, e.tasks.Delete(ctx, e.owner, task.ID))
	categories, err = e.categories.List(ctx, e.owner)
	require.NoError(t, err)
	assert.Equal(t, int64(0), categories[0].TaskCount)
}
