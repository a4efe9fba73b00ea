package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"tugasku/internal/config"
	"tugasku/internal/httpapi"
	"tugasku/internal/logger"
	"tugasku/internal/repository"
	"tugasku/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.Development)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("open database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiration)
	categorySvc := service.NewCategoryService(categoryRepo, taskRepo)
	taskSvc := service.NewTaskService(taskRepo, categoryRepo)
	dashboardSvc := service.NewDashboardService(taskRepo, categoryRepo)
	reminderSvc := service.NewReminderService(taskRepo, userRepo, zlog)

	if cfg.ReportTime != "" || cfg.ReportInterval > 0 {
		scheduler := service.NewSchedulerService(time.Local, zlog)
		job := func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := reminderSvc.LogSummaries(jobCtx, time.Now()); err != nil {
				zlog.Warn("task summary job", zap.Error(err))
			}
		}
		if cfg.ReportTime != "" {
			if err := scheduler.ScheduleDaily(cfg.ReportTime, job); err != nil {
				zlog.Fatal("schedule daily summary", zap.Error(err))
			}
		} else {
			if err := scheduler.ScheduleInterval(cfg.ReportInterval, job); err != nil {
				zlog.Fatal("schedule summary interval", zap.Error(err))
			}
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	server := httpapi.New(cfg, zlog, authSvc, taskSvc, categorySvc, dashboardSvc)
	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		zlog.Fatal("server stopped with error", zap.Error(err))
	}
	zlog.Info("shutdown complete")
}
