package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/spf13/cobra"

	"weekly-planner/internal/bot"
	"weekly-planner/internal/httpapi"
	"weekly-planner/internal/service"
)

const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the scheduler and the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.close(drainCtx)
	}()

	var telegramBot *bot.Bot
	if a.cfg.TelegramToken != "" {
		telegramBot, err = bot.New(a.cfg.TelegramToken, a.userRepo, a.tasks, a.reports, a.cfg.Location())
		if err != nil {
			return fmt.Errorf("bot: %w", err)
		}
		a.dispatcher.AddSink(telegramBot)
	} else {
		log.Println("[info] TELEGRAM_TOKEN not set, bot disabled")
	}

	scheduler := service.NewSchedulerService(a.cfg.Location())
	if err := scheduleJobs(scheduler, a, telegramBot); err != nil {
		return err
	}

	app := httpapi.New(httpapi.Deps{
		Tasks:        a.tasks,
		Reports:      a.reports,
		Users:        a.users,
		Generator:    a.generator,
		Tags:         a.tagRepo,
		WeeksBuffer:  a.cfg.WeeksBuffer,
		DefaultActor: a.defaultActor(),
	})

	// catch up before the first tick
	if result, err := a.generator.Run(ctx, a.cfg.WeeksBuffer); err != nil {
		log.Printf("[warn] initial generation: %v", err)
	} else {
		log.Printf("[info] initial generation created %d task(s)", result.Created)
	}

	scheduler.Start()

	botCtx, cancelBot := context.WithCancel(ctx)
	defer cancelBot()
	if telegramBot != nil {
		go func() {
			if err := telegramBot.Start(botCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("[warn] bot stopped with error: %v", err)
			}
		}()
	}

	listenErr := make(chan error, 1)
	go func() {
		log.Printf("[info] weekly planner listening on %s", a.cfg.HTTPAddr)
		listenErr <- app.Listen(a.cfg.HTTPAddr)
	}()

	// runs the operations concurrently once SIGINT or SIGTERM arrives
	wait := gfshutdown.GracefulShutdown(ctx, shutdownTimeout, map[string]gfshutdown.Operation{
		"http": func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
		"scheduler": func(ctx context.Context) error {
			return scheduler.Stop(ctx)
		},
		"bot": func(context.Context) error {
			cancelBot()
			return nil
		},
	})

	select {
	case code := <-wait:
		return shutdownResult(code)
	case err := <-listenErr:
		if err == nil {
			// Listen returns nil once the shutdown operations closed it
			return shutdownResult(<-wait)
		}
		cancelBot()
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if stopErr := scheduler.Stop(stopCtx); stopErr != nil {
			log.Printf("[warn] stop scheduler: %v", stopErr)
		}
		return fmt.Errorf("http server: %w", err)
	}
}

func shutdownResult(code int) error {
	if code != 0 {
		return fmt.Errorf("shutdown finished with exit code %d", code)
	}
	log.Println("[info] shutdown complete")
	return nil
}

func scheduleJobs(scheduler *service.SchedulerService, a *app, telegramBot *bot.Bot) error {
	if _, err := scheduler.ScheduleInterval("generate", a.cfg.GenerateInterval, func(ctx context.Context) error {
		result, err := a.generator.Run(ctx, a.cfg.WeeksBuffer)
		if err != nil {
			return err
		}
		if len(result.Errors) > 0 {
			log.Printf("[warn] generation: %d error(s), first: %s", len(result.Errors), result.Errors[0].Message)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("schedule generator: %w", err)
	}

	if _, err := scheduler.ScheduleDaily("reminders", a.cfg.ReminderTime, func(ctx context.Context) error {
		_, err := a.reminders.SendDueReminders(ctx, time.Now())
		return err
	}); err != nil {
		return fmt.Errorf("schedule reminders: %w", err)
	}

	if telegramBot != nil {
		if _, err := scheduler.ScheduleWeekly("weekly-report", time.Monday, a.cfg.WeeklyReportTime, telegramBot.SendWeeklyReports); err != nil {
			return fmt.Errorf("schedule weekly report: %w", err)
		}
	}
	return nil
}
