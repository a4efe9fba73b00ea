package service

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SchedulerService drives the periodic summary jobs. It is read-only
// infrastructure: scheduled jobs observe task state, never mutate it.
type SchedulerService struct {
	cron *cron.Cron
	log  *zap.Logger
}

func NewSchedulerService(loc *time.Location, log *zap.Logger) *SchedulerService {
	return &SchedulerService{
		cron: cron.New(cron.WithLocation(loc), cron.WithSeconds()),
		log:  log,
	}
}

// ScheduleDaily runs job once a day at the given wall-clock time,
// formatted HH:MM.
func (s *SchedulerService) ScheduleDaily(at string, job func()) error {
	clock, err := time.Parse("15:04", at)
	if err != nil {
		return fmt.Errorf("invalid report time %q, expected HH:MM", at)
	}
	// cron spec fields: second minute hour dom month dow
	spec := fmt.Sprintf("0 %d %d * * *", clock.Minute(), clock.Hour())
	if _, err := s.cron.AddFunc(spec, job); err != nil {
		return fmt.Errorf("schedule daily job: %w", err)
	}
	s.log.Info("daily summary scheduled", zap.String("at", at))
	return nil
}

// ScheduleInterval runs job on a fixed period, rounded to whole seconds.
func (s *SchedulerService) ScheduleInterval(every time.Duration, job func()) error {
	every = every.Round(time.Second)
	if every < time.Second {
		return fmt.Errorf("report interval must be at least one second")
	}
	if _, err := s.cron.AddFunc("@every "+every.String(), job); err != nil {
		return fmt.Errorf("schedule interval job: %w", err)
	}
	s.log.Info("summary interval scheduled", zap.Duration("every", every))
	return nil
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for any running job to finish.
func (s *SchedulerService) Stop() {
	<-s.cron.Stop().Done()
}
