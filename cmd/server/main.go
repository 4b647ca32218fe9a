package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"poseidon-capital/backend/internal/audit"
	auditrepo "poseidon-capital/backend/internal/audit/repository"
	bidlistrepo "poseidon-capital/backend/internal/bidlist/repository"
	"poseidon-capital/backend/internal/config"
	curvepointrepo "poseidon-capital/backend/internal/curvepoint/repository"
	"poseidon-capital/backend/internal/db"
	"poseidon-capital/backend/internal/keycloak"
	ratingrepo "poseidon-capital/backend/internal/rating/repository"
	rulenamerepo "poseidon-capital/backend/internal/rulename/repository"
	"poseidon-capital/backend/internal/server"
	traderepo "poseidon-capital/backend/internal/trade/repository"
	userrepo "poseidon-capital/backend/internal/user/repository"
	userservice "poseidon-capital/backend/internal/user/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	setupLogging(cfg)

	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}
	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db")
	}
	defer conn.Close()

	kc, err := keycloak.NewClient(keycloak.Config{
		ServerURL:     cfg.KeycloakServerURL,
		AdminRealm:    cfg.KeycloakAdminRealm,
		AdminUsername: cfg.KeycloakAdminUsername,
		AdminPassword: cfg.KeycloakAdminPassword,
		ClientID:      cfg.KeycloakClientID,
		TargetRealm:   cfg.KeycloakTargetRealm,
		Timeout:       cfg.KeycloakCallTimeout(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("keycloak")
	}

	auditLogs := auditrepo.NewPostgresRepository(conn)
	recorder := audit.NewLogger(auditLogs, audit.ClientIPFromContext)
	userSvc := userservice.NewService(kc, userrepo.NewPostgresRepository(conn), recorder)

	router := server.NewRouter(server.Deps{
		UserService:    userSvc,
		Recorder:       recorder,
		HealthPinger:   conn,
		AuditRepo:      auditLogs,
		BidListRepo:    bidlistrepo.NewPostgresRepository(conn),
		CurvePointRepo: curvepointrepo.NewPostgresRepository(conn),
		RatingRepo:     ratingrepo.NewPostgresRepository(conn),
		RuleNameRepo:   rulenamerepo.NewPostgresRepository(conn),
		TradeRepo:      traderepo.NewPostgresRepository(conn),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("serve")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	log.Info().Msg("HTTP server stopped")
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
