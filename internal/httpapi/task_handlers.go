package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"tugasku/internal/model"
	"tugasku/internal/repository"
	"tugasku/internal/service"
)

type taskPayload struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	StatusNotes *string `json:"status_notes"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"due_date"`
	CategoryID  *uint   `json:"category_id"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var payload taskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeError(w, &model.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	input := service.TaskInput{CategoryID: payload.CategoryID}
	if payload.Title != nil {
		input.Title = *payload.Title
	}
	if payload.Description != nil {
		input.Description = *payload.Description
	}
	if payload.Status != nil {
		input.Status = model.Status(*payload.Status)
	}
	if payload.Priority != nil {
		input.Priority = model.Priority(*payload.Priority)
	}
	if payload.DueDate != nil && *payload.DueDate != "" {
		due, err := parseDate(*payload.DueDate)
		if err != nil {
			s.writeError(w, err)
			return
		}
		input.DueDate = &due
	}

	task, err := s.tasks.Create(r.Context(), currentUser(r).ID, input)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Task created successfully",
		"task":    task,
	})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	task, logs, err := s.tasks.Get(r.Context(), currentUser(r).ID, id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"task": task,
		"logs": logs,
	})
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// Decode twice: once for values, once to tell "field: null" apart
	// from an absent field on the nullable columns.
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.writeError(w, &model.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}
	var payload taskPayload
	if err := decodeRaw(raw, &payload); err != nil {
		s.writeError(w, &model.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	update := service.TaskUpdate{
		Title:       payload.Title,
		Description: payload.Description,
	}
	if payload.Status != nil {
		status := model.Status(*payload.Status)
		update.Status = &status
	}
	if payload.StatusNotes != nil {
		update.StatusNotes = *payload.StatusNotes
	}
	if payload.Priority != nil {
		priority := model.Priority(*payload.Priority)
		update.Priority = &priority
	}
	if _, present := raw["due_date"]; present {
		update.DueDateSet = true
		if payload.DueDate != nil && *payload.DueDate != "" {
			due, err := parseDate(*payload.DueDate)
			if err != nil {
				s.writeError(w, err)
				return
			}
			update.DueDate = &due
		}
	}
	if _, present := raw["category_id"]; present {
		update.CategoryIDSet = true
		update.CategoryID = payload.CategoryID
	}

	task, err := s.tasks.Update(r.Context(), currentUser(r).ID, id, update)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Task updated successfully",
		"task":    task,
	})
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.tasks.Delete(r.Context(), currentUser(r).ID, id); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	filter, err := s.parseTaskFilter(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	tasks, pagination, err := s.tasks.List(r.Context(), currentUser(r).ID, filter)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tasks":      tasks,
		"pagination": pagination,
	})
}

func (s *Server) parseTaskFilter(r *http.Request) (repository.TaskFilter, error) {
	q := r.URL.Query()
	filter := repository.TaskFilter{
		Search:    q.Get("search"),
		Status:    model.Status(q.Get("status")),
		Priority:  model.Priority(q.Get("priority")),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
		Page:      1,
		PageSize:  s.cfg.DefaultPageSize,
	}

	if raw := q.Get("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return filter, &model.ValidationError{Field: "category_id", Reason: "must be a positive integer"}
		}
		categoryID := uint(id)
		filter.CategoryID = &categoryID
	}
	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return filter, &model.ValidationError{Field: "page", Reason: "must be a positive integer"}
		}
		filter.Page = page
	}
	if raw := q.Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			return filter, &model.ValidationError{Field: "page_size", Reason: "must be a positive integer"}
		}
		if size > s.cfg.MaxPageSize {
			size = s.cfg.MaxPageSize
		}
		filter.PageSize = size
	}
	return filter, nil
}

func pathID(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, &model.ValidationError{Field: "id", Reason: "must be a positive integer"}
	}
	return uint(id), nil
}

// parseDate accepts RFC 3339 timestamps or plain calendar dates.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Time{}, &model.ValidationError{Field: "due_date", Reason: "invalid date format, use ISO format"}
}

func decodeRaw(raw map[string]json.RawMessage, dst *taskPayload) error {
	buf, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(buf, dst)
}
