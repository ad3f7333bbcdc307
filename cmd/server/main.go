package main

import (
	"context"
	"fmt"
	"log"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskboard/api/handler"
	"github.com/fastygo/taskboard/internal/config"
	boltInfra "github.com/fastygo/taskboard/internal/infrastructure/bolt"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/taskboard/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/taskboard/internal/infrastructure/redis"
	sqliteInfra "github.com/fastygo/taskboard/internal/infrastructure/sqlite"
	"github.com/fastygo/taskboard/internal/middleware"
	"github.com/fastygo/taskboard/internal/router"
	"github.com/fastygo/taskboard/internal/services/lifecycle"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/repository"
	boltRepo "github.com/fastygo/taskboard/repository/bolt"
	pgRepo "github.com/fastygo/taskboard/repository/postgres"
	sqliteRepo "github.com/fastygo/taskboard/repository/sqlite"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
		Service:     cfg.AppName,
		Environment: cfg.Environment,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	taskRepo, err := openStore(appCtx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("task store unavailable", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	manager.Register("store", lifecycle.CloseFunc(taskRepo.Close))

	var redisClient *goRedis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.Register("redis", lifecycle.CloseFunc(redisClient.Close))
	}

	var redisPinger monitor.Pinger
	if redisClient != nil {
		redisPinger = monitor.RedisPinger(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	mon := monitor.New(taskRepo, cfg.Store.Driver, redisPinger, cfg.Monitor.Interval, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop(ctx)
		return nil
	})

	taskUseCase := taskUC.New(taskRepo, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Task:   apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}
	r := router.New(handlers, cfg.HTTP.BasePath, zapLogger)

	mws := []func(fasthttp.RequestHandler) fasthttp.RequestHandler{
		middleware.AccessLog(zapLogger),
		middleware.SecureHeaders,
	}
	if cfg.RateLimit.Enabled {
		mws = append(mws, middleware.RateLimit(newLimiter(cfg, redisClient), cfg.RateLimit.Message, zapLogger))
	}
	mws = append(mws, middleware.CORS(cfg.CORS.AllowedOrigins))

	server := &fasthttp.Server{
		Handler:            middleware.Chain(r.Handler, mws...),
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		MaxRequestBodySize: cfg.HTTP.MaxRequestBodySize,
		Concurrency:        cfg.HTTP.MaxConn,
		Name:               cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("base_path", cfg.HTTP.BasePath),
			zap.String("store", cfg.Store.Driver),
		)
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *config.Config, zl *zap.Logger) (repository.TaskRepository, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		db, err := sqliteInfra.Open(ctx, cfg.Store, zl)
		if err != nil {
			return nil, err
		}
		return sqliteRepo.NewTaskRepository(db), nil

	case config.DriverPostgres:
		if err := pgInfra.RunMigrations(cfg, zl); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, zl)
		if err != nil {
			return nil, err
		}
		return pgRepo.NewTaskRepository(pool), nil

	case config.DriverBolt:
		db, err := boltInfra.Open(cfg.Store.Path, zl, boltRepo.Bucket)
		if err != nil {
			return nil, err
		}
		return boltRepo.NewTaskRepository(db), nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
}

func newLimiter(cfg *config.Config, client *goRedis.Client) middleware.Limiter {
	if client != nil {
		return middleware.NewRedisLimiter(client, cfg.AppName+":ratelimit:", cfg.RateLimit.Max, cfg.RateLimit.Window)
	}
	return middleware.NewMemoryLimiter(cfg.RateLimit.Max, cfg.RateLimit.Window)
}
