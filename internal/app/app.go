package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/pinned/internal/config"
	"github.com/MrSnakeDoc/pinned/internal/httpserver"
	"github.com/MrSnakeDoc/pinned/internal/httpserver/deps"
	"github.com/MrSnakeDoc/pinned/internal/logger"
	"github.com/MrSnakeDoc/pinned/internal/redis"
	"github.com/MrSnakeDoc/pinned/internal/scheduler"
	"github.com/MrSnakeDoc/pinned/internal/store"
	memorystore "github.com/MrSnakeDoc/pinned/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/pinned/internal/store/redis"
	"github.com/MrSnakeDoc/pinned/internal/store/sqlstore"
	"github.com/MrSnakeDoc/pinned/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	store       store.CommentStore
	redisClient *goredis.Client
	retention   *scheduler.RetentionCollector
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Open the comment store early - fail fast if unavailable
	commentStore, redisClient, err := openStore(cfg, loggerClient)
	if err != nil {
		return nil, err
	}
	loggerClient.Info("comment store initialized",
		logger.String("backend", commentStore.Name()))

	retention := scheduler.NewRetentionCollector(
		commentStore,
		loggerClient,
		cfg.RetentionInterval,
		cfg.ClosedRetention,
	)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		AllowedHosts:    cfg.AllowedHosts,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		AllowedOrigins:  cfg.AllowedOrigins,
		TrustProxy:      cfg.TrustProxy,
		Store:           commentStore,
		RateLimitBurst:  cfg.RateLimitBurst,
		RateLimitPerMin: cfg.RateLimitPerMin,
		MaxBodyBytes:    cfg.MaxBodyBytes,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		store:       commentStore,
		redisClient: redisClient,
		retention:   retention,
	}, nil
}

func openStore(cfg *config.Config, log logger.Logger) (store.CommentStore, *goredis.Client, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(context.Background(), redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return redisstore.NewStore(client), client, nil

	case config.BackendMemory:
		log.Warn("using in-memory comment store, comments are lost on restart")
		return memorystore.NewStore(), nil, nil

	default:
		log.Infof("Opening SQLite database at %s", cfg.SQLitePath)
		s, err := sqlstore.Open(cfg.SQLitePath, cfg.SQLiteDebug, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return s, nil, nil
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Pinned v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Pinned %s", version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.server.Start(); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if a.retention.Enabled() {
			a.logger.Info("retention collector started",
				logger.Duration("retention", a.cfg.ClosedRetention),
				logger.Duration("interval", a.cfg.RetentionInterval))
		}
		return a.retention.Run(gctx)
	})

	// Shutdown on signal, or when the server died on its own
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("⏳ Shutting down gracefully...")

		a.retention.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := a.server.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
		return nil
	})

	err := g.Wait()
	a.close()
	if err != nil {
		return err
	}

	a.logger.Info("✅ Pinned stopped cleanly")
	return nil
}

func (a *App) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warnf("failed to close %s store: %v", a.store.Name(), err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	_ = a.logger.Sync()
}
