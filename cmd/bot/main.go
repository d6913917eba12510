package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"attendance-bot/internal/api"
	"attendance-bot/internal/config"
	"attendance-bot/internal/handler"
	"attendance-bot/internal/logging"
	"attendance-bot/internal/repository"
	"attendance-bot/internal/scheduler"
	"attendance-bot/internal/service"
	"attendance-bot/pkg/telegram"
)

func main() {
	logrus.Info("Initializing config...")
	cfg := config.GetBotConfig()
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		logrus.WithError(err).Warn("Invalid LOG_LEVEL, keeping info")
	}
	logger := logging.New()
	logger.WithField("timezone", cfg.Location.String()).Info("Config initialized")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.WithError(err).Fatal("Failed to get database instance")
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			logger.WithError(err).Warn("Error closing database")
		}
	}()

	repos, err := repository.NewRepositories(db, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create repositories")
	}
	store := repository.NewStore(repos)

	guardService := service.NewGuardService(store, cfg.Location, cfg.FetchTimeout, time.Now, logger)
	userService := service.NewUserService(repos.Users, logger)
	workScheduleService := service.NewWorkScheduleService(repos.Schedules, store, logger)
	holidayService := service.NewHolidayService(repos.Holidays, logger)
	attendanceService := service.NewAttendanceService(repos.Attendance, guardService, cfg.Location, time.Now, logger)
	absenceService := service.NewAbsenceService(repos, guardService, cfg.Location, time.Now, logger)

	if err := userService.InitializeAdmin(ctx, cfg.BaseAdminChatID); err != nil {
		logger.WithError(err).Warn("Failed to initialize admin")
	} else {
		logger.WithField("chat_id", cfg.BaseAdminChatID).Info("Admin initialized")
	}

	if cfg.HolidaysFile != "" {
		n, err := holidayService.LoadFromJSON(ctx, cfg.HolidaysFile)
		if err != nil {
			logger.WithError(err).WithField("file", cfg.HolidaysFile).Warn("Failed to load holidays")
		} else {
			logger.WithField("count", n).Info("Holidays loaded")
		}
	}

	client, err := telegram.NewClient(cfg.TelegramToken, cfg.TelegramDebug)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create Telegram client")
	}
	logger.Infof("Authorized on account %s", client.Bot.Self.UserName)

	botHandler := handler.NewHandler(
		client,
		userService,
		workScheduleService,
		holidayService,
		guardService,
		attendanceService,
		absenceService,
		cfg,
		logger,
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		updates := client.Bot.GetUpdatesChan(client.UpdateConfig)
		botHandler.HandleUpdates(ctx, updates)
		client.Bot.StopReceivingUpdates()
		return nil
	})

	if cfg.HTTPAddr != "" {
		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           api.NewRouter(api.NewHandler(guardService, time.Now, logger), cfg.CORSOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			logger.WithField("addr", cfg.HTTPAddr).Info("HTTP API listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if cfg.DigestCron != "" {
		sched := scheduler.New(cfg.Location, logger)
		digest := scheduler.NewDigest(attendanceService, client, cfg.BaseAdminChatID, cfg.Location, time.Now, logger)
		if err := sched.AddDigest(ctx, cfg.DigestCron, digest); err != nil {
			logger.WithError(err).Fatal("Failed to schedule lateness digest")
		}
		g.Go(func() error { return sched.Run(ctx) })
	}

	logger.Info("Bot started. Press Ctrl+C to stop.")
	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("Bot stopped with error")
		return
	}
	logger.Info("Bot stopped gracefully")
}
