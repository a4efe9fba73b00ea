package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"tugasku/internal/model"
)

// CategoryRepository manages task categories.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) Save(ctx context.Context, category *model.Category) error {
	if err := r.db.WithContext(ctx).Save(category).Error; err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, ownerID, categoryID uint) (*model.Category, error) {
	var category model.Category
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, categoryID).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &model.NotFoundError{Resource: "category", ID: categoryID}
	}
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	return &category, nil
}

// FindByName looks up a category by exact name. Names are compared
// case-sensitively; "Work" and "work" are distinct categories.
func (r *CategoryRepository) FindByName(ctx context.Context, ownerID uint, name string) (*model.Category, error) {
	var category model.Category
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND name = ?", ownerID, name).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by name: %w", err)
	}
	return &category, nil
}

// ListByOwner returns the owner's categories ordered by name. Task
// counts are not filled in here; callers derive them from the task
// store so the counts always reflect live task state.
func (r *CategoryRepository) ListByOwner(ctx context.Context, ownerID uint) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).
		Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Delete removes a category unless tasks still reference it. The
// reference count is taken inside the delete transaction so a task
// moved into the category concurrently cannot be orphaned.
func (r *CategoryRepository) Delete(ctx context.Context, ownerID, categoryID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category model.Category
		err := tx.Where("owner_id = ? AND id = ?", ownerID, categoryID).First(&category).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.NotFoundError{Resource: "category", ID: categoryID}
		}
		if err != nil {
			return fmt.Errorf("find category: %w", err)
		}

		var n int64
		if err := tx.Model(&model.Task{}).Where("category_id = ?", categoryID).Count(&n).Error; err != nil {
			return fmt.Errorf("count category tasks: %w", err)
		}
		if n > 0 {
			return &model.ConflictError{
				Reason: fmt.Sprintf("cannot delete category: it has %d associated tasks", n),
			}
		}

		if err := tx.Delete(&model.Category{}, categoryID).Error; err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
}
