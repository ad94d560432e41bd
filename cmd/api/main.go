package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	cognitopkg "github.com/authbridge/authbridge/internal/cognito"
	"github.com/authbridge/authbridge/internal/config"
	"github.com/authbridge/authbridge/internal/guard"
	authhttp "github.com/authbridge/authbridge/internal/http"
	"github.com/authbridge/authbridge/internal/middleware"
	"github.com/authbridge/authbridge/internal/repository"
	"github.com/authbridge/authbridge/internal/service"
	"github.com/authbridge/authbridge/internal/store"
)

func main() {
	// Initial logger at info level; reconfigured after config load
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(context.Background()); err != nil {
		logger.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.ParseLogLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("config loaded",
		"env", cfg.AppEnv,
		"port", cfg.ServerPort,
		"store_driver", cfg.StoreDriver,
		"log_level", cfg.LogLevel,
	)

	// The memory driver keeps everything in-process so local runs need no
	// database; postgres backs both the user records and the token store.
	var (
		userRepo   repository.UserRepository
		tokenStore store.Store
	)
	switch cfg.StoreDriver {
	case "postgres":
		db, err := sql.Open("postgres", cfg.DB.DSN())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
		defer cancelPing()
		if err := db.PingContext(pingCtx); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		logger.Info("database connected")

		userRepo = repository.NewPostgresUser(db)
		tokenStore = store.NewPostgresStore(db)
	default:
		userRepo = repository.NewMemoryUser()
		tokenStore = store.NewMemoryStore()
	}

	// Cognito client
	cognitoClient, err := cognitopkg.NewAWSClient(
		ctx,
		cfg.Cognito.Region,
		cfg.Cognito.UserPoolID,
		cfg.Cognito.AppClientID,
		cfg.Cognito.AppClientSecret,
	)
	if err != nil {
		return err
	}
	logger.Info("cognito client initialized", "region", cfg.Cognito.Region)

	policy := cognitopkg.NewPolicyResolver(cognitoClient)

	// Guard: the authentication state machine
	g := guard.New(cognitoClient, userRepo, tokenStore, guard.Config{
		AddMissingLocalUser:     cfg.Features.AddMissingLocalUser,
		ForcePasswordChange:     cfg.Features.ForcePasswordChange,
		ForcePasswordAutoUpdate: cfg.Features.ForcePasswordAutoUpdate,
	}, logger)

	// Services
	userSvc := service.NewUserService(cognitoClient, userRepo, cfg.Mapping, cfg.Features.AllowDeleteUser)
	mfaSvc := service.NewMFAService(cognitoClient, cfg.Cognito.MFAIssuer)

	// Auth middleware
	authCfg := middleware.AuthConfig{
		Authenticator: g,
		ParseToken: func(r *http.Request) (string, error) {
			return guard.ParseToken(r, guard.DefaultSessionCookie)
		},
		PublicPaths: authhttp.PublicPaths(),
	}
	if cfg.Features.VerifyTokenSignature {
		authCfg.VerifySignature = true
		authCfg.JWKSClient = middleware.NewJWKSClient(middleware.CognitoJWKSURL(cfg.Cognito.Region, cfg.Cognito.UserPoolID))
		authCfg.Issuer = middleware.CognitoIssuer(cfg.Cognito.Region, cfg.Cognito.UserPoolID)
	}
	auth, err := middleware.NewAuth(authCfg)
	if err != nil {
		return fmt.Errorf("failed to create auth middleware: %w", err)
	}

	router := authhttp.NewRouter(g, cognitoClient, policy, userSvc, mfaSvc)
	srv := authhttp.NewServer(cfg.ServerPort, logger, router, auth)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	logger.Info("server starting", "port", cfg.ServerPort)

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server stopped gracefully")
	return nil
}
