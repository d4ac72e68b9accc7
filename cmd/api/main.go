package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/fixflow/repair-service/internal/api/http"
	"github.com/fixflow/repair-service/internal/api/http/handlers"
	"github.com/fixflow/repair-service/internal/auth"
	"github.com/fixflow/repair-service/internal/config"
	"github.com/fixflow/repair-service/internal/events"
	"github.com/fixflow/repair-service/internal/observability"
	"github.com/fixflow/repair-service/internal/persistence"
	"github.com/fixflow/repair-service/internal/repository"
	"github.com/fixflow/repair-service/internal/service"
	"github.com/fixflow/repair-service/internal/worker"
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
	adminRepo := repository.NewAdminRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	branchRepo := repository.NewBranchRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	visitRepo := repository.NewVisitRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	authService := service.NewAuthService(adminRepo, staffRepo, tokens, cfg.Auth.BcryptCost, logger)
	branchService := service.NewBranchService(branchRepo, staffRepo, logger)
	staffService := service.NewStaffService(staffRepo, branchRepo, cfg.Auth.BcryptCost, logger)
	ticketService := service.NewTicketService(ticketRepo, visitRepo, staffRepo, branchRepo, dispatcher, logger)
	customerService := service.NewCustomerService(visitRepo, logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(tokens, authService)
	loginLimiter := auth.LoginRateLimiter(cfg.RateLimit, redis.Handle(), logger)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, cfg, logger, metrics)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Branches:       handlers.NewBranchesHandler(branchService),
		Staff:          handlers.NewStaffHandler(staffService),
		Services:       handlers.NewServicesHandler(ticketService),
		Customers:      handlers.NewCustomersHandler(customerService),
		AuthMiddleware: authMiddleware,
		LoginLimiter:   loginLimiter,
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
