package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/storefront/internal/auth"
	"github.com/spec-kit/storefront/internal/config"
	"github.com/spec-kit/storefront/internal/docstore"
	"github.com/spec-kit/storefront/internal/observability"
	"github.com/spec-kit/storefront/internal/persistence"
	"github.com/spec-kit/storefront/internal/repository"
)

func main() {
	log.SetFlags(0)
	userID := flag.String("user", "", "user id to promote to super_admin")
	timeout := flag.Duration("timeout", 30*time.Second, "overall deadline")
	flag.Parse()

	if *userID == "" {
		log.Fatal("usage: provision -user <id>")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Store.Backend == config.BackendMemory {
		log.Fatal("provision needs a persistent STORE_BACKEND (mongo or postgres)")
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	backend, closeBackend, err := persistence.OpenBackend(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open document store", zap.Error(err))
	}
	defer closeBackend()

	client := docstore.NewClient(backend, docstore.Options{Logger: logger})
	provisioner := auth.NewProvisioner(repository.NewUserRepository(client), logger)
	if err := provisioner.PromoteSuperAdmin(ctx, *userID); err != nil {
		logger.Fatal("promotion failed", zap.String("user_id", *userID), zap.Error(err))
	}
	logger.Info("user promoted", zap.String("user_id", *userID))
}
