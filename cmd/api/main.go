package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/request-workflow/internal/api/http"
	"github.com/spec-kit/request-workflow/internal/api/http/handlers"
	"github.com/spec-kit/request-workflow/internal/auth"
	"github.com/spec-kit/request-workflow/internal/config"
	"github.com/spec-kit/request-workflow/internal/events"
	"github.com/spec-kit/request-workflow/internal/observability"
	"github.com/spec-kit/request-workflow/internal/persistence"
	"github.com/spec-kit/request-workflow/internal/repository"
	"github.com/spec-kit/request-workflow/internal/service"
	"github.com/spec-kit/request-workflow/internal/staging"
	"github.com/spec-kit/request-workflow/internal/worker"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)
	employeeRepo := repository.NewEmployeeRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	stagingStore := staging.NewStore(redis.Client, cfg.Staging.TTL())

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		AttachmentRepo: attachmentRepo,
		DepartmentRepo: departmentRepo,
		EmployeeRepo:   employeeRepo,
		HistoryRepo:    historyRepo,
		Stager:         stagingStore,
		Dispatcher:     dispatcher,
	})
	interactionService := service.NewInteractionService(ticketService, stagingStore, cfg.Staging.TTL())
	authService := service.NewAuthService(*cfg, employeeRepo)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	if cfg.Notification.SyncDelivery {
		notificationService.RegisterHandlers()
	} else {
		notificationWorker := worker.StartNotificationWorker(dispatcher, notificationService, logger, 256, 2)
		defer notificationWorker.Stop()
	}

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), employeeRepo)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Employees:      handlers.NewEmployeesHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Sessions:       handlers.NewSessionsHandler(interactionService),
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
