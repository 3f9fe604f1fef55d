package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"weekly-planner/internal/config"
	"weekly-planner/internal/lock"
	"weekly-planner/internal/notify"
	"weekly-planner/internal/repository"
	"weekly-planner/internal/service"
)

const lockPrefix = "weeklyplanner:lock:"

// app holds the wired components shared by every subcommand.
type app struct {
	cfg config.Config
	db  *gorm.DB

	userRepo   *repository.UserRepository
	taskRepo   *repository.TaskRepository
	seriesRepo *repository.RecurringTaskRepository
	tagRepo    *repository.TagRepository

	dispatcher *notify.Dispatcher
	natsSink   *notify.NATSSink
	redis      *redis.Client

	tasks     *service.TaskService
	users     *service.UserService
	reports   *service.ReportService
	reminders *service.ReminderService
	generator *service.RecurrenceService
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	a := &app{
		cfg:        cfg,
		db:         db,
		userRepo:   repository.NewUserRepository(db),
		taskRepo:   repository.NewTaskRepository(db),
		seriesRepo: repository.NewRecurringTaskRepository(db),
		tagRepo:    repository.NewTagRepository(db),
		dispatcher: notify.NewDispatcher(notify.NewLogSink(log.New(os.Stdout, "[notify] ", log.LstdFlags))),
	}

	if cfg.NATSURL != "" {
		sink, err := notify.ConnectNATS(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("nats: %w", err)
		}
		a.natsSink = sink
		a.dispatcher.AddSink(sink)
		log.Printf("[info] publishing notifications to %s", cfg.NATSSubject)
	}

	var locker lock.Locker = lock.NewLocal()
	if cfg.RedisURL != "" {
		client, err := lock.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.redis = client
		locker = lock.NewRedis(client, lockPrefix, 0)
		log.Printf("[info] generator locks held in redis")
	}

	loc := cfg.Location()
	a.tasks = service.NewTaskService(a.taskRepo, a.dispatcher, loc)
	a.users = service.NewUserService(a.userRepo)
	a.reports = service.NewReportService(a.taskRepo, loc)
	a.reminders = service.NewReminderService(a.taskRepo, a.dispatcher, cfg.ReminderWindow)
	a.generator = service.NewRecurrenceService(a.seriesRepo, a.taskRepo, locker, a.dispatcher, loc)
	return a, nil
}

func (a *app) defaultActor() service.Actor {
	return service.Actor{UserID: a.cfg.DefaultUserID, CompanyID: a.cfg.CompanyID}
}

// close drains pending notifications, then releases connections in reverse order of acquisition.
func (a *app) close(ctx context.Context) {
	if err := a.dispatcher.Wait(ctx); err != nil {
		log.Printf("[warn] pending notifications dropped: %v", err)
	}
	if a.natsSink != nil {
		if err := a.natsSink.Close(); err != nil {
			log.Printf("[warn] close nats: %v", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Printf("[warn] close redis: %v", err)
		}
	}
	if sqlDB, err := a.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("[warn] close db: %v", err)
		}
	}
}
