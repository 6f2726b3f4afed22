package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/platops/tenant-engine/internal/api"
	"github.com/platops/tenant-engine/internal/core/domain"
	"github.com/platops/tenant-engine/internal/core/ports"
	"github.com/platops/tenant-engine/internal/core/service"
	"github.com/platops/tenant-engine/internal/infrastructure/config"
	mongodb "github.com/platops/tenant-engine/internal/infrastructure/db/mongo"
	redisdb "github.com/platops/tenant-engine/internal/infrastructure/db/redis"
	"github.com/platops/tenant-engine/internal/infrastructure/identity"
	"github.com/platops/tenant-engine/internal/infrastructure/notify"
	"github.com/platops/tenant-engine/internal/infrastructure/queue"
	"github.com/platops/tenant-engine/internal/infrastructure/scheduler"
	"github.com/platops/tenant-engine/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// --- Backing stores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	// --- Repositories ---
	tenantRepo := mongodb.NewTenantRepository(db, cfg.Mongo.Timeout)
	roleRepo := mongodb.NewRoleRepository(db, cfg.Mongo.Timeout)
	invitationRepo := mongodb.NewInvitationRepository(db, cfg.Mongo.Timeout)
	tenantCache := redisdb.NewTenantCache(rdb, cfg.Redis.CacheTTL, cfg.Redis.Timeout)

	if err := roleRepo.Seed(ctx, domain.DefaultRoleCatalog); err != nil {
		log.Fatal().Err(err).Msg("role catalog seed failed")
	}

	// --- Identity provider ---
	var verifier ports.TokenVerifier
	if cfg.Auth.Mode == config.AuthModeHS {
		log.Warn().Msg("HS256 token verification enabled; do not use outside development")
		verifier = identity.NewHSVerifier(cfg.Auth.HSSecret)
	} else {
		verifier, err = identity.NewOIDCVerifier(ctx, cfg.Auth.IssuerURL, cfg.Auth.ClientID)
		if err != nil {
			log.Fatal().Err(err).Msg("identity provider discovery failed")
		}
	}
	idp := identity.NewAdminClient(cfg.Identity.AdminURL, cfg.Identity.AdminToken, cfg.Identity.Timeout)

	// --- Services ---
	registry := service.NewRegistry(tenantRepo, roleRepo, tenantCache, log)
	authorizer := service.NewAuthorizer(registry, log)
	tenantService := service.NewTenantService(tenantRepo, registry, log)
	userService := service.NewUserService(idp, registry, log)
	invitationService := service.NewInvitationService(
		invitationRepo, idp, registry,
		cfg.Invitation.ExpiryDays, cfg.Invitation.CredentialLength, log,
	)

	// --- Background workers ---
	dispatcher := queue.NewDispatcher(cfg.Invitation.DeliveryWorkers, notify.NewLogSender(log), invitationService, log)
	dispatcher.Start(ctx)

	sweeper := scheduler.NewSweeper(invitationService, cfg.Invitation.SweepSchedule, log)
	if err := sweeper.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("sweeper start failed")
	}
	defer sweeper.Stop()

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Verifier:    verifier,
		Authorizer:  authorizer,
		Tenants:     tenantService,
		Users:       userService,
		Invitations: invitationService,
		Catalog:     registry,
		Deliveries:  dispatcher,
		Mongo:       db,
		Redis:       rdb,
		Logger:      log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			// Startup failure (port bound, bad listener): unblock the
			// shutdown path instead of idling with no server.
			log.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("tenant engine started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
}
