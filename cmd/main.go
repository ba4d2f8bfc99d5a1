package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/beachrally/tournament-server/brackets"
	"github.com/beachrally/tournament-server/config"
	"github.com/beachrally/tournament-server/db"
	"github.com/beachrally/tournament-server/handlers"
	"github.com/beachrally/tournament-server/repositories"
	api "github.com/beachrally/tournament-server/routes"
	"github.com/beachrally/tournament-server/services"
	"github.com/beachrally/tournament-server/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	var uploader storage.FileUploader
	if cfg.LogoStorageConfigured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.S3AccountID,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			BucketName:      cfg.S3BucketName,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize object storage", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("object storage initialized", slog.String("bucket", cfg.S3BucketName))
	} else {
		logger.Info("object storage not configured, logo uploads disabled")
	}

	wsHub := brackets.NewHub(logger)
	go wsHub.Run()
	logger.Info("websocket hub started")

	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	poolRepo := repositories.NewPostgresPoolRepository(dbConn)
	poolMatchRepo := repositories.NewPostgresPoolMatchRepository(dbConn)
	standingRepo := repositories.NewPostgresStandingRepository(dbConn)
	updateRepo := repositories.NewPostgresUpdateRepository(dbConn)
	locationRepo := repositories.NewPostgresLocationRepository(dbConn)

	authService := services.NewAuthService(cfg.AdminPassword, cfg.JWTSecretKey)
	tournamentService := services.NewTournamentService(
		tournamentRepo,
		teamRepo,
		poolRepo,
		updateRepo,
		uploader,
		wsHub,
	)
	teamService := services.NewTeamService(teamRepo, tournamentRepo)
	matchService := services.NewMatchService(dbConn, matchRepo, teamRepo, updateRepo, wsHub)
	poolService := services.NewPoolService(
		dbConn,
		tournamentRepo,
		teamRepo,
		poolRepo,
		poolMatchRepo,
		standingRepo,
		updateRepo,
		wsHub,
	)
	bracketService := services.NewBracketService(
		dbConn,
		tournamentRepo,
		teamRepo,
		matchRepo,
		poolRepo,
		standingRepo,
		updateRepo,
		brackets.NewSingleEliminationGenerator(),
		wsHub,
	)
	locationService := services.NewLocationService(locationRepo)
	logger.Info("services initialized")

	h := api.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Tournament: handlers.NewTournamentHandler(tournamentService),
		Team:       handlers.NewTeamHandler(teamService),
		Match:      handlers.NewMatchHandler(matchService, bracketService),
		Pool:       handlers.NewPoolHandler(poolService),
		PoolMatch:  handlers.NewPoolMatchHandler(poolService),
		Location:   handlers.NewLocationHandler(locationService),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, tournamentService),
	}

	router := chi.NewRouter()
	api.SetupRoutes(router, h, cfg.JWTSecretKey, cfg.CORSOrigins)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}
