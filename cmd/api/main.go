package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/storefront/internal/api/http"
	"github.com/spec-kit/storefront/internal/api/http/handlers"
	"github.com/spec-kit/storefront/internal/auth"
	"github.com/spec-kit/storefront/internal/config"
	"github.com/spec-kit/storefront/internal/docstore"
	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/internal/events"
	"github.com/spec-kit/storefront/internal/observability"
	"github.com/spec-kit/storefront/internal/permission"
	"github.com/spec-kit/storefront/internal/persistence"
	"github.com/spec-kit/storefront/internal/repository"
	"github.com/spec-kit/storefront/internal/service"
	"github.com/spec-kit/storefront/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	backend, closeBackend, err := persistence.OpenBackend(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open document store", zap.Error(err))
	}
	defer closeBackend()

	var cache docstore.Cache
	var redis *persistence.Redis
	switch cfg.Store.Cache {
	case config.CacheMemory:
		cache = docstore.NewMemoryCache(cfg.Store.CacheTTL())
	case config.CacheRedis:
		redis = persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		cache = docstore.NewRedisCache(redis.Client, cfg.Store.CacheTTL())
	}

	client := docstore.NewClient(backend, docstore.Options{
		Cache:        cache,
		Connectivity: docstore.NewConnectivity(!cfg.Store.StartOffline),
		Logger:       logger,
		Metrics:      metrics,
		Uncached:     []string{domain.CollectionAuthCredentials},
	})

	monitorDone := make(chan struct{})
	go func() {
		defer close(monitorDone)
		client.MonitorConnectivity(ctx, cfg.Store.MonitorInterval(), cfg.Store.PingTimeout())
	}()

	userRepo := repository.NewUserRepository(client)
	productRepo := repository.NewProductRepository(client)
	orderRepo := repository.NewOrderRepository(client)
	ticketRepo := repository.NewTicketRepository(client)
	faqRepo := repository.NewFAQRepository(client)
	settingsRepo := repository.NewSettingsRepository(client)
	backupRepo := repository.NewBackupRepository(client)

	authenticator := auth.NewAuthenticator(repository.NewCredentialRepository(client), userRepo,
		auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		auth.Options{
			BcryptCost:       cfg.Auth.BcryptCost,
			BootstrapAdminID: cfg.Auth.BootstrapAdminID,
			SignInPerMinute:  cfg.Auth.SignInPerMinute,
			Logger:           logger,
		})
	resolver := permission.NewResolver(userRepo, logger)

	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notify))

	productService := service.NewProductService(service.ProductDependencies{ProductRepo: productRepo, Logger: logger})
	faqService := service.NewFAQService(faqRepo, logger)
	orderService := service.NewOrderService(service.OrderDependencies{
		OrderRepo:   orderRepo,
		ProductRepo: productRepo,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	userService := service.NewUserService(service.UserDependencies{
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	settingsService := service.NewSettingsService(settingsRepo, logger)
	backupService := service.NewBackupService(service.BackupDependencies{
		Store:      client,
		BackupRepo: backupRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	scheduler := worker.NewBackupScheduler(worker.BackupSchedulerConfig{
		Backups:         backupService,
		Settings:        settingsService,
		Logger:          logger,
		AutoInterval:    time.Duration(cfg.Backup.AutoIntervalMinutes) * time.Minute,
		CleanupInterval: time.Duration(cfg.Backup.CleanupIntervalMin) * time.Minute,
		RetentionDays:   cfg.Backup.RetentionDays,
	})
	scheduler.Start(ctx)

	deps := map[string]handlers.Pinger{"store": client}
	if redis != nil {
		deps["redis"] = redis
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, BodyLimit: cfg.App.BodyLimit()})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps),
		Auth:           handlers.NewAuthHandler(authenticator),
		Catalog:        handlers.NewCatalogHandler(productService, faqService),
		Orders:         handlers.NewOrdersHandler(orderService),
		Tickets:        handlers.NewTicketsHandler(ticketService, userService),
		Me:             handlers.NewMeHandler(userService, resolver, authenticator),
		Users:          handlers.NewUsersHandler(userService),
		Products:       handlers.NewProductsHandler(productService),
		FAQs:           handlers.NewFAQsHandler(faqService),
		Settings:       handlers.NewSettingsHandler(settingsService),
		Backups:        handlers.NewBackupsHandler(backupService),
		Dashboard:      handlers.NewDashboardHandler(service.NewDashboardService(orderRepo, userRepo, ticketRepo)),
		AuthMiddleware: auth.NewMiddleware(authenticator),
		Permissions:    resolver,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	scheduler.Wait()
	<-monitorDone
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
