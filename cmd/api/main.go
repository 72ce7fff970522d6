package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/itsm-console/internal/api/http"
	"github.com/spec-kit/itsm-console/internal/api/http/handlers"
	"github.com/spec-kit/itsm-console/internal/auth"
	"github.com/spec-kit/itsm-console/internal/cache"
	"github.com/spec-kit/itsm-console/internal/config"
	"github.com/spec-kit/itsm-console/internal/events"
	"github.com/spec-kit/itsm-console/internal/observability"
	"github.com/spec-kit/itsm-console/internal/persistence"
	"github.com/spec-kit/itsm-console/internal/repository"
	"github.com/spec-kit/itsm-console/internal/service"
	"github.com/spec-kit/itsm-console/internal/session"
	"github.com/spec-kit/itsm-console/internal/worker"
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
	profileRepo := repository.NewProfileRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	assetRepo := repository.NewAssetRepository(pool)

	views := cache.NewRedisCache(redis.Client, logger)
	modeStore := session.NewRedisModeStore(redis.Client)
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		ProfileRepo: profileRepo,
		Views:       views,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		CommentRepo: commentRepo,
		ProfileRepo: profileRepo,
		Views:       views,
		Dispatcher:  dispatcher,
		SLA:         cfg.SLA,
	})
	roleService := service.NewRoleService(service.RoleDependencies{
		RoleRepo:    roleRepo,
		ProfileRepo: profileRepo,
		Views:       views,
		Dispatcher:  dispatcher,
	})
	assetService := service.NewAssetService(service.AssetDependencies{
		AssetRepo:   assetRepo,
		ProfileRepo: profileRepo,
		Views:       views,
		Dispatcher:  dispatcher,
	})

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	slaMonitor := worker.NewSLAMonitor(ticketRepo, dispatcher, logger, cfg.SLA.ScanSpec)
	if err := slaMonitor.Start(ctx); err != nil {
		logger.Fatal("failed to start sla monitor", zap.Error(err))
	}
	defer slaMonitor.Stop()

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), profileRepo, roleRepo, modeStore)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		PortalTickets:  handlers.NewPortalTicketsHandler(ticketService),
		Users:          handlers.NewUsersHandler(roleService, authService),
		Assets:         handlers.NewAssetsHandler(assetService),
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
