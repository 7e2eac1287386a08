// Command eventapp serves the event lifecycle HTTP API.
//
// @title Event Lifecycle API
// @version 1.0
// @description Schedules events, enrolls participants and moves events through SCHEDULED, PAST, CANCELED and ARCHIVED.
// @host localhost:8080
// @BasePath /
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"eventapp/config"
	"eventapp/internal/adapters/email"
	"eventapp/internal/adapters/natsbus"
	"eventapp/internal/adapters/nominatim"
	"eventapp/internal/clock"
	deliveryhttp "eventapp/internal/delivery/http"
	"eventapp/internal/delivery/http/controllers"
	"eventapp/internal/delivery/http/middleware"
	"eventapp/internal/domain"
	"eventapp/internal/repository/postgres"
	"eventapp/internal/scheduler"
	"eventapp/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("eventapp stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DBUrl, 30*time.Second, logger)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	clk := clock.NewSimulated(clock.System())
	if cfg.CurrentDate != "" {
		if _, err := clk.SetCurrentDate(cfg.CurrentDate); err != nil {
			return err
		}
		logger.Info("simulated clock set", "date", cfg.CurrentDate)
	}

	eventRepo := postgres.NewEventRepository(db, clk.Now().Location())
	eventTypeRepo := postgres.NewEventTypeRepository(db)
	participantRepo := postgres.NewParticipantRepository(db)

	var locations domain.LocationLookup = nominatim.NewClient(&http.Client{Timeout: 10 * time.Second}, nominatim.Config{
		BaseURL:           cfg.NominatimURL,
		UserAgent:         cfg.NominatimUserAgent,
		RequestsPerSecond: 1,
	})
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		locations = nominatim.NewCachedLookup(locations, rdb, cfg.LocationCacheTTL, logger)
	}

	sinks, closeSinks, err := notificationSinks(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSinks()

	policy, err := cfg.ArchivePolicy()
	if err != nil {
		return err
	}
	refreshPolicy, err := cfg.RefreshPolicy()
	if err != nil {
		return err
	}
	eventService := services.NewEventService(
		eventRepo,
		eventTypeRepo,
		participantRepo,
		services.NewNotificationDispatcher(logger, sinks...),
		clk,
		locations,
		policy,
		refreshPolicy,
		cfg.RequestTimeout,
		logger,
	)

	refresher, err := scheduler.NewRefreshScheduler(cfg.RefreshCron, eventService, logger)
	if err != nil {
		return err
	}
	refresher.Start()
	defer func() { <-refresher.Stop().Done() }()

	router := deliveryhttp.NewRouter(
		controllers.NewEventController(logger, eventService),
		controllers.NewCatalogController(logger, eventService),
	)
	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, router))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment, "archive_policy", policy.String(), "refresh_policy", refreshPolicy.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// notificationSinks builds the email sink and, when NATS_URL is set, the NATS publisher.
func notificationSinks(cfg *config.Config, logger *slog.Logger) ([]domain.NotificationSink, func(), error) {
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:          cfg.Email.AWSRegion,
			AccessKeyID:     cfg.Email.AWSAccessKeyID,
			SecretAccessKey: cfg.Email.AWSSecretAccessKey,
		},
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return nil, nil, err
	}
	sinks := []domain.NotificationSink{
		services.NewEmailNotificationSink(services.NewEmailService(mailer, renderer, logger)),
	}

	if cfg.NATSURL == "" {
		return sinks, func() {}, nil
	}
	publisher, err := natsbus.Connect(cfg.NATSURL, cfg.NATSSubjectPrefix, logger)
	if err != nil {
		return nil, nil, err
	}
	return append(sinks, publisher), publisher.Close, nil
}
