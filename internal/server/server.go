package server

import (
	"codequest/configs"
	"codequest/internal/cache"
	"codequest/internal/dbs"
	"codequest/internal/events"
	"codequest/internal/logger"
	"codequest/internal/services"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Options struct {
	EnvFile string
	Migrate bool
	Seed    bool
}

// StartGinServer wires the service from configuration and serves until
// SIGINT or SIGTERM.
func StartGinServer(opts Options) error {
	config := configs.LoadConfig(opts.EnvFile)

	logger.InitLogger(config.IsProduction())
	defer logger.SyncLogger()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := dbs.Open(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if opts.Migrate {
		if err := dbs.Migrate(ctx, db); err != nil {
			return err
		}
	}

	appCache := cache.NewNoopCache()
	var publisher services.EventPublisher = events.NoopPublisher{}
	rdb, err := dbs.NewRedis(ctx, config)
	if err != nil {
		logger.Log.Warn("Redis unavailable, running without cache and submission events", zap.Error(err))
	} else {
		defer rdb.Close()
		appCache = cache.NewRedisCache(rdb)
		publisher = events.NewRedisPublisher(rdb, config.SubmissionEventsStream)
	}

	evaluator := newEvaluator(ctx, config)
	if closer, ok := evaluator.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	app := NewApp(config, db, appCache, evaluator, publisher)

	if opts.Seed {
		if _, err := app.Seeder.Seed(ctx); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              ":" + config.ServerPort,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("Starting server", zap.String("addr", srv.Addr), zap.String("db_driver", config.DBDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// evaluatorRunner adapts CodeRunner so the Docker client can be closed on
// shutdown.
type evaluatorRunner struct {
	*services.CodeRunner
	runtime *services.DockerRuntime
}

func (e evaluatorRunner) Close() error {
	return e.runtime.Close()
}

func newEvaluator(ctx context.Context, config *configs.Config) services.Evaluator {
	if !config.EvaluatorEnabled {
		logger.Log.Info("Code evaluation disabled")
		return services.UnavailableEvaluator{}
	}

	runtime, err := services.NewDockerRuntime(ctx, config.EvaluatorMemoryMB)
	if err != nil {
		logger.Log.Warn("Docker unavailable, submissions will be rejected", zap.Error(err))
		return services.UnavailableEvaluator{}
	}

	return evaluatorRunner{
		CodeRunner: services.NewCodeRunner(runtime, config.EvaluatorTimeout),
		runtime:    runtime,
	}
}
