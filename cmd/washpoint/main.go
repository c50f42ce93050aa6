package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"washpoint/internal/config"
	"washpoint/internal/database"
	"washpoint/internal/domain"
	"washpoint/internal/events"
	"washpoint/internal/logging"
	"washpoint/internal/metrics"
	"washpoint/internal/models"
	"washpoint/internal/notify"
	"washpoint/internal/repository"
	"washpoint/internal/service"
	"washpoint/internal/tracker"
	"washpoint/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка инициализации базы данных")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, sessions := initSessionRepository(ctx, cfg, &logger)
	defer func() { _ = repository.Close(redisClient) }()

	eventBus := events.NewEventBus()
	subscribeEventLog(eventBus, &logger)

	notifier, err := buildNotifier(cfg, &logger)
	if err != nil {
		return err
	}

	if cfg.Monitoring.PrometheusEnabled {
		startMetricsListener(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	var exporter domain.ExportEnqueuer
	if cfg.Exports.Enabled {
		writer := worker.NewXLSXWriter(filepath.Join(cfg.Exports.Path, "bookings.xlsx"))
		exportWorker := worker.NewExportWorker(db, db, writer, worker.RetryPolicy{}, &logger)
		go exportWorker.Start(ctx)
		exporter = exportWorker
	}

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	bookingService := service.NewBookingService(db, eventBus, notifier, exporter, cfg.Booking, &logger)
	reviewService := service.NewReviewService(db, eventBus, notifier, exporter, &logger)
	trackerService := service.NewTrackerService(db, eventBus, notifier, sessions, &logger)

	logger.Info().Str("environment", cfg.App.Environment).Msg("washpoint started")

	runDemo(ctx, cfg.Tracker, bookingService, reviewService, trackerService, &logger)

	<-ctx.Done()
	logger.Info().Msg("Shutdown complete.")
	return nil
}

// runDemo walks one booking through the whole lifecycle: create, confirm,
// then let the simulated cleaning drive the stage tracker until the
// completion notification fires. Harmless to rerun: each pass creates its
// own booking.
func runDemo(
	ctx context.Context,
	cfg config.TrackerConfig,
	bookings domain.BookingService,
	reviews domain.ReviewService,
	trackerSvc domain.TrackerService,
	logger *zerolog.Logger,
) {
	booking, err := bookings.Create(ctx, demoRequest())
	if err != nil {
		logger.Error().Err(err).Msg("demo booking create failed")
		return
	}

	if _, err := reviews.SetStatus(ctx, booking.ID, models.StatusConfirmed); err != nil {
		logger.Error().Err(err).Str("booking_id", booking.ID).Msg("demo booking confirm failed")
		return
	}

	sim := tracker.NewSimulator(cfg.TickInterval, cfg.AdvanceDelay, logger,
		tracker.WithStageCallback(func(stageID string) {
			updated, err := trackerSvc.ToggleStage(ctx, booking.ID, stageID)
			if err != nil {
				logger.Error().Err(err).Str("stage", stageID).Msg("demo stage toggle failed")
				return
			}
			logger.Info().
				Str("booking_id", booking.ID).
				Str("stage", stageID).
				Int("progress", trackerSvc.Progress(updated)).
				Msg("cleaning stage finished")
		}),
	)
	sim.Start(ctx)

	go func() {
		select {
		case <-ctx.Done():
			sim.Stop()
		case <-sim.Done():
		}
	}()
}

func demoRequest() models.CreateBookingRequest {
	return models.CreateBookingRequest{
		Name:        "Demo Customer",
		Email:       "demo@washpoint.local",
		Phone:       "+1 555 0100",
		VehicleType: models.VehicleCar,
		ServiceType: models.ServiceFull,
		Date:        time.Now().AddDate(0, 0, 1),
		Time:        "10:00",
	}
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "main").Logger()

	return cfg, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg == nil {
		return os.ErrInvalid
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для базы данных")
		return err
	}
	if cfg.Exports.Enabled {
		if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
			logger.Error().Err(err).Msg("Ошибка создания директории для экспорта")
			return err
		}
	}
	return nil
}

func initSessionRepository(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, domain.SessionRepository) {
	fallback := repository.NewMemorySessionRepository(cfg.Tracker.SessionTTL)
	if !cfg.Redis.Enabled {
		return nil, fallback
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable")
	}

	primary := repository.NewRedisSessionRepository(redisClient, cfg.Tracker.SessionTTL)
	return redisClient, repository.NewFailoverSessionRepository(primary, fallback, logger)
}

func buildNotifier(cfg *config.Config, logger *zerolog.Logger) (domain.Notifier, error) {
	sinks := []notify.Notifier{notify.NewLogNotifier(logger)}

	if cfg.Telegram.Enabled {
		tg, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.AdminChatID, logger)
		if err != nil {
			logger.Error().Err(err).Msg("Ошибка создания Telegram-нотификатора")
			return nil, err
		}
		sinks = append(sinks, tg)
	}

	return notify.NewMultiNotifier(sinks...), nil
}

func startMetricsListener(ctx context.Context, port int, logger *zerolog.Logger) {
	metrics.Register()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		logger.Info().Int("port", port).Msg("metrics listener started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics listener error")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
}

// subscribeEventLog wires a logging consumer onto the bus so every domain
// event is visible in structured output.
func subscribeEventLog(bus *events.EventBus, logger *zerolog.Logger) {
	logHandler := func(ev *events.Event) error {
		logger.Info().
			Str("event", ev.Type).
			RawJSON("payload", ev.Payload).
			Msg("domain event")
		return nil
	}

	bus.Subscribe(events.EventBookingCreated, logHandler)
	bus.Subscribe(events.EventBookingConfirmed, logHandler)
	bus.Subscribe(events.EventBookingRejected, logHandler)
	bus.Subscribe(events.EventStageToggled, logHandler)
	bus.Subscribe(events.EventCleaningCompleted, logHandler)
}
