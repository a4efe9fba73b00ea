package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tugasku/internal/model"
	"tugasku/internal/repository"
)

// ReminderService produces periodic task summaries for operators. It
// only reads live data; it never mutates tasks or their history.
type ReminderService struct {
	taskRepo *repository.TaskRepository
	userRepo *repository.UserRepository
	log      *zap.Logger
}

func NewReminderService(taskRepo *repository.TaskRepository, userRepo *repository.UserRepository, log *zap.Logger) *ReminderService {
	return &ReminderService{taskRepo: taskRepo, userRepo: userRepo, log: log}
}

// LogSummaries writes one log line per active user with open and
// overdue task counts.
func (s *ReminderService) LogSummaries(ctx context.Context, now time.Time) error {
	users, err := s.userRepo.ListActive(ctx)
	if err != nil {
		return err
	}

	for _, user := range users {
		counts, err := s.taskRepo.CountByStatus(ctx, user.ID)
		if err != nil {
			return err
		}
		overdue, err := s.taskRepo.CountOverdue(ctx, user.ID, now)
		if err != nil {
			return err
		}

		open := counts[model.StatusPending] + counts[model.StatusInProgress]
		if open == 0 && overdue == 0 {
			continue
		}
		s.log.Info("task summary",
			zap.String("username", user.Username),
			zap.Int64("open", open),
			zap.Int64("overdue", overdue),
			zap.Int64("completed", counts[model.StatusCompleted]),
		)
	}
	return nil
}
