// @title           VR Score Keeper API
// @version         1.0
// @description     Score keeping and live standings for VR tournaments.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
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

	"github.com/Dosada05/vr-score-keeper/config"
	"github.com/Dosada05/vr-score-keeper/db"
	_ "github.com/Dosada05/vr-score-keeper/docs"
	"github.com/Dosada05/vr-score-keeper/handlers"
	"github.com/Dosada05/vr-score-keeper/live"
	"github.com/Dosada05/vr-score-keeper/repositories"
	api "github.com/Dosada05/vr-score-keeper/routes"
	"github.com/Dosada05/vr-score-keeper/services"
	"github.com/Dosada05/vr-score-keeper/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.Int("win_threshold", cfg.Standings.WinThreshold),
		slog.String("tie_break", string(cfg.Standings.TieBreak)),
		slog.String("active_selection", string(cfg.Standings.ActiveSelection)),
	)

	if cfg.AutoMigrate {
		version, err := db.MigrateUp(cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("database schema up to date", slog.Uint64("version", uint64(version)))
	}

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	var uploader storage.FileUploader
	if cfg.R2.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(context.Background(), storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			BucketName:      cfg.R2.BucketName,
			PublicBaseURL:   cfg.R2.PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("object storage not configured, avatar uploads disabled")
	}

	hubDone := make(chan struct{})
	hub := live.NewHub(logger)
	go hub.Run(hubDone)
	logger.Info("live standings hub started")

	tx := repositories.NewSQLTransactor(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	rosterRepo := repositories.NewPostgresRosterRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	scoreRepo := repositories.NewPostgresScoreRepository(dbConn)

	standingsService := services.NewStandingsService(
		tournamentRepo, rosterRepo, matchRepo, scoreRepo,
		tx, hub, uploader, cfg.Standings, logger,
	)
	authService := services.NewAuthService(userRepo, logger)
	userService := services.NewUserService(userRepo, logger)
	tournamentService := services.NewTournamentService(
		tournamentRepo, playerRepo, rosterRepo, matchRepo,
		standingsService, uploader, logger,
	)
	playerService := services.NewPlayerService(playerRepo, tournamentRepo, uploader, logger)
	matchService := services.NewMatchService(matchRepo, tournamentRepo, scoreRepo, standingsService, tx, logger)
	scoreService := services.NewScoreService(
		scoreRepo, matchRepo, tournamentRepo, rosterRepo,
		standingsService, tx, logger,
	)

	if cfg.AdminUsername != "" {
		created, err := userService.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			logger.Error("failed to bootstrap admin account", slog.Any("error", err))
			os.Exit(1)
		}
		if created {
			logger.Info("admin account created", slog.String("username", cfg.AdminUsername))
		}
	}

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:       handlers.NewAuthHandler(authService, cfg.JWTSecretKey, cfg.TokenTTL),
		Home:       handlers.NewHomeHandler(standingsService),
		Health:     handlers.NewHealthHandler(dbConn),
		Tournament: handlers.NewTournamentHandler(tournamentService, standingsService, matchService),
		Player:     handlers.NewPlayerHandler(playerService),
		Match:      handlers.NewMatchHandler(matchService, scoreService),
		Score:      handlers.NewScoreHandler(scoreService),
		User:       handlers.NewUserHandler(userService),
		WebSocket:  handlers.NewWebSocketHandler(hub, tournamentService, standingsService, logger),
	}, api.Options{
		JWTSecret:      cfg.JWTSecretKey,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         logger,
	})
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

	exitCode := 0
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			exitCode = 1
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			exitCode = 1
		} else {
			logger.Info("server shutdown complete")
		}
	}

	// Hijacked websocket connections outlive Shutdown; the hub closes them.
	close(hubDone)
	logger.Info("application exited")
	if exitCode != 0 {
		// os.Exit skips deferred calls, so close the pool first.
		_ = dbConn.Close()
		os.Exit(exitCode)
	}
}
