package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/sessionauth/api/handler"
	"github.com/fastygo/sessionauth/internal/config"
	"github.com/fastygo/sessionauth/internal/gate"
	"github.com/fastygo/sessionauth/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/sessionauth/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/sessionauth/internal/infrastructure/redis"
	"github.com/fastygo/sessionauth/internal/middleware"
	"github.com/fastygo/sessionauth/internal/router"
	"github.com/fastygo/sessionauth/internal/services/lifecycle"
	"github.com/fastygo/sessionauth/internal/session"
	"github.com/fastygo/sessionauth/pkg/httpcontext"
	"github.com/fastygo/sessionauth/pkg/logger"
	"github.com/fastygo/sessionauth/repository"
	boltRepo "github.com/fastygo/sessionauth/repository/bolt"
	"github.com/fastygo/sessionauth/repository/memory"
	"github.com/fastygo/sessionauth/repository/postgres"
	redisRepo "github.com/fastygo/sessionauth/repository/redis"
	authUC "github.com/fastygo/sessionauth/usecase/auth"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server (default)",
	RunE:  runServe,
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config error: %w", err)
	}
	zapLogger, err := logger.New(logger.Config{
		Level:     cfg.Logger.Level,
		Encoding:  cfg.Logger.Encoding,
		RedactPII: cfg.Logger.RedactPII,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("logger error: %w", err)
	}
	return cfg, zapLogger, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, zapLogger, err := loadConfig()
	if err != nil {
		return err
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)
	defer func() {
		if err := manager.Shutdown(context.Background()); err != nil {
			zapLogger.Error("graceful shutdown error", zap.Error(err))
		}
	}()

	mon := monitor.New(cfg.Monitor.Interval, zapLogger)

	var pool *pgxpool.Pool
	if cfg.NeedsPostgres() {
		if err := pgInfra.RunMigrations(cfg, false, zapLogger); err != nil {
			return fmt.Errorf("migrations failed: %w", err)
		}
		pool, err = pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
		if err != nil {
			return fmt.Errorf("postgres connection failed: %w", err)
		}
		manager.Register("postgres", pgInfra.Close(pool))
		mon.Register("postgresql", monitor.PostgresProbe(pool), 0)
	}

	var userRepo repository.UserRepository
	if cfg.Auth.UserBackend == config.BackendMemory {
		userRepo = memory.NewUserRepository()
	} else {
		userRepo = postgres.NewUserRepository(pool)
	}

	sessionRepo, err := openSessionRepository(appCtx, cfg, pool, manager, mon, zapLogger)
	if err != nil {
		return err
	}

	var store session.Store
	var sessionCount apiHandler.Counter
	if cfg.UsesSessions() {
		store, err = session.New(
			session.Config{Kind: session.Kind(cfg.Auth.Type), Duration: cfg.SessionDuration()},
			session.Deps{Users: userRepo, Sessions: sessionRepo},
			session.WithLogger(zapLogger),
		)
		if err != nil {
			return err
		}
		if c, ok := store.(session.Counter); ok {
			sessionCount = c
		}
	}

	if err := mon.Start(); err != nil {
		return fmt.Errorf("monitor schedule: %w", err)
	}
	manager.RegisterStop("monitor", mon.Stop)

	authUseCase := authUC.New(userRepo, store, cfg.Auth.SessionName, zapLogger)
	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Session: apiHandler.NewAuthHandler(authUseCase, apiHandler.CookieOptions{
			Secure: cfg.Auth.CookieSecure,
			MaxAge: cfg.SessionDuration(),
		}, ctxAdapter, zapLogger),
		Users:  apiHandler.NewUserHandler(authUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, userRepo, sessionCount, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.Auth(middleware.AuthOptions{
		Gate:       gate.New(cfg.Auth.ExcludedPaths),
		CookieName: cfg.Auth.SessionName,
		Resolve:    middleware.ResolverFor(cfg.Auth.Type, authUseCase),
		Adapter:    ctxAdapter,
		Logger:     zapLogger,
	})

	server := &fasthttp.Server{
		Handler:      router.New(handlers, authMiddleware),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	serveErr := make(chan error, 1)
	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("auth_type", cfg.Auth.Type),
			zap.Duration("session_duration", cfg.SessionDuration()),
		)
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			serveErr <- err
			cancel()
		}
	}()

	manager.Register("http_server", server.ShutdownWithContext)

	<-appCtx.Done()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server crashed: %w", err)
	default:
		return nil
	}
}

// openSessionRepository connects the SESSION_BACKEND store used by
// session_db_auth. Other schemes keep no session records outside memory.
func openSessionRepository(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, manager *lifecycle.Manager, mon *monitor.Monitor, zapLogger *zap.Logger) (repository.SessionRepository, error) {
	if cfg.Auth.Type != config.AuthSessionStorage {
		return nil, nil
	}

	switch cfg.Auth.SessionBackend {
	case config.BackendRedis:
		client, err := redisInfra.NewClient(ctx, cfg.Redis, zapLogger)
		if err != nil {
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		manager.Register("redis", redisInfra.Close(client))
		mon.Register("redis", monitor.RedisProbe(client), 0)
		return redisRepo.NewSessionRepository(client, cfg.Redis.KeyPrefix), nil
	case config.BackendBolt:
		store, err := boltRepo.Open(cfg.Bolt.Path, cfg.Bolt.Bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to open session store: %w", err)
		}
		manager.RegisterCloser("bolt", store)
		mon.Register("bolt", monitor.CountProbe(store), 0)
		zapLogger.Info("bolt session store opened", zap.String("path", cfg.Bolt.Path))
		return store, nil
	default:
		return postgres.NewSessionRepository(pool), nil
	}
}
