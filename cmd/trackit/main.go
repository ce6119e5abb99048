package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"

	"trackit/internal/bot"
	"trackit/internal/cli"
	"trackit/internal/config"
	"trackit/internal/repository"
	"trackit/internal/service"
	"trackit/internal/store"
	"trackit/internal/supabase"
)

const (
	retryBaseDelay = 100 * time.Millisecond
	reportTimeout  = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := config.NewLogger(cfg, os.Stderr)

	st, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	taskSvc := service.NewTaskService(store.NewRetrying(st, cfg.StoreRetries, retryBaseDelay, logger), logger)
	reminderSvc := service.NewReminderService(taskSvc)

	app := &cli.App{
		Tasks:    taskSvc,
		Now:      time.Now,
		Location: cfg.Location,
		Color:    isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
		RunBot: func(ctx context.Context) error {
			return runBot(ctx, &cfg, taskSvc, reminderSvc, logger)
		},
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

func openStore(cfg config.Config, logger logrus.FieldLogger) (store.Store, func(), error) {
	switch cfg.Store {
	case config.StoreSupabase:
		st, err := supabase.NewTaskStore(cfg.SupabaseURL, cfg.SupabaseKey, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("supabase: %w", err)
		}
		return st, func() {}, nil
	default:
		db, err := repository.NewDB(cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("db: %w", err)
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}
		return repository.NewTaskRepository(db), closeDB, nil
	}
}

func runBot(ctx context.Context, cfg *config.Config, taskSvc *service.TaskService, reminderSvc *service.ReminderService, logger *logrus.Logger) error {
	telegramBot, err := bot.New(cfg, taskSvc, reminderSvc, logger)
	if err != nil {
		return fmt.Errorf("bot: %w", err)
	}

	scheduler := service.NewSchedulerService(cfg.Location, logger)
	if _, err := scheduler.ScheduleDaily(cfg.ReportTime, "daily_report", reportTimeout, telegramBot.SendDailyReport); err != nil {
		return fmt.Errorf("schedule daily report: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	logger.WithField("report_time", cfg.ReportTime).Info("trackit bot started")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("bot stopped with error: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}
