package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"tugasku/internal/model"
	"tugasku/internal/repository"
)

const (
	maxCategoryNameLen = 100
	maxCategoryDescLen = 500
)

// CategoryInput carries create/update data for a category. On update,
// nil pointers leave the field unchanged.
type CategoryInput struct {
	Name        *string
	Description *string
}

// CategoryService enforces category rules: owner-scoped case-sensitive
// name uniqueness and the "no delete while referenced" invariant. Task
// counts on listed categories come from the task store.
type CategoryService struct {
	repo     *repository.CategoryRepository
	taskRepo *repository.TaskRepository
}

func NewCategoryService(repo *repository.CategoryRepository, taskRepo *repository.TaskRepository) *CategoryService {
	return &CategoryService{repo: repo, taskRepo: taskRepo}
}

func (s *CategoryService) Create(ctx context.Context, ownerID uint, name, description string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}
	description = strings.TrimSpace(description)
	if err := validateCategoryDescription(description); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByName(ctx, ownerID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &model.ConflictError{Reason: fmt.Sprintf("category %q already exists", name)}
	}

	category := &model.Category{
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, ownerID, categoryID uint, input CategoryInput) (*model.Category, error) {
	category, err := s.repo.FindByID(ctx, ownerID, categoryID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if err := validateCategoryName(name); err != nil {
			return nil, err
		}
		if name != category.Name {
			existing, err := s.repo.FindByName(ctx, ownerID, name)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != category.ID {
				return nil, &model.ConflictError{Reason: fmt.Sprintf("category %q already exists", name)}
			}
		}
		category.Name = name
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if err := validateCategoryDescription(description); err != nil {
			return nil, err
		}
		category.Description = description
	}

	if err := s.repo.Save(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete fails with a ConflictError while any task references the
// category; the reference count is read inside the delete transaction.
func (s *CategoryService) Delete(ctx context.Context, ownerID, categoryID uint) error {
	return s.repo.Delete(ctx, ownerID, categoryID)
}

// List returns the owner's categories ordered by name, each with its
// live task count.
func (s *CategoryService) List(ctx context.Context, ownerID uint) ([]model.Category, error) {
	categories, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	counts, err := s.taskRepo.CountByCategory(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		categories[i].TaskCount = counts[categories[i].ID]
	}
	return categories, nil
}

func validateCategoryName(name string) error {
	if name == "" {
		return &model.ValidationError{Field: "name", Reason: "name is required"}
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLen {
		return &model.ValidationError{Field: "name", Reason: fmt.Sprintf("name must be at most %d characters", maxCategoryNameLen)}
	}
	return nil
}

func validateCategoryDescription(description string) error {
	if utf8.RuneCountInString(description) > maxCategoryDescLen {
		return &model.ValidationError{Field: "description", Reason: fmt.Sprintf("description must be at most %d characters", maxCategoryDescLen)}
	}
	return nil
}
