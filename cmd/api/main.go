package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/maintenance-service/internal/api/http"
	"github.com/spec-kit/maintenance-service/internal/api/http/handlers"
	"github.com/spec-kit/maintenance-service/internal/auth"
	"github.com/spec-kit/maintenance-service/internal/blob"
	"github.com/spec-kit/maintenance-service/internal/config"
	"github.com/spec-kit/maintenance-service/internal/events"
	"github.com/spec-kit/maintenance-service/internal/notify"
	"github.com/spec-kit/maintenance-service/internal/observability"
	"github.com/spec-kit/maintenance-service/internal/persistence"
	"github.com/spec-kit/maintenance-service/internal/repository"
	"github.com/spec-kit/maintenance-service/internal/service"
	"github.com/spec-kit/maintenance-service/internal/store"
	"github.com/spec-kit/maintenance-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	rows := store.NewSheetClient(cfg.Sheet, logger)
	guard := store.NewGuard(cfg.Guard.AcquireTimeout(), logger)
	retrier := store.NewRetrier(cfg.Retry, logger)

	requestStore := repository.NewRequestStore(rows, cfg.Sheet.RequestsTable, guard, retrier, logger)
	userStore := repository.NewUserStore(rows, cfg.Sheet.UsersTable, guard, retrier, logger)

	dispatcher := events.NewInMemoryDispatcher()
	uploader := blob.NewHTTPUploader(cfg.Blob, logger)

	requestService := service.NewRequestService(service.RequestDependencies{
		RequestStore: requestStore,
		Uploader:     uploader,
		Retrier:      retrier,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	userService := service.NewUserService(userStore, dispatcher, cfg.Directory.CacheTTL(), logger)

	channel := notify.NewWebhookChannel(cfg.Notification, logger)
	journal := notify.NewJournal(redis.Client, cfg.Notification.JournalTTL(), logger)
	notificationService := service.NewNotificationService(dispatcher, channel, journal, cfg.Notification, logger)
	worker.StartNotificationWorker(notificationService)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewMiddleware(tokens, userService)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, rows, redis),
		Requests:       handlers.NewRequestsHandler(requestService, cfg.App),
		Users:          handlers.NewUsersHandler(userService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
