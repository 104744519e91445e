package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/studyflow/backend/api/handler"
	"github.com/studyflow/backend/domain"
	"github.com/studyflow/backend/internal/config"
	"github.com/studyflow/backend/internal/corpus"
	"github.com/studyflow/backend/internal/feature"
	"github.com/studyflow/backend/internal/infrastructure/modelstore"
	"github.com/studyflow/backend/internal/infrastructure/monitor"
	pgInfra "github.com/studyflow/backend/internal/infrastructure/postgres"
	redisInfra "github.com/studyflow/backend/internal/infrastructure/redis"
	"github.com/studyflow/backend/internal/middleware"
	"github.com/studyflow/backend/internal/router"
	"github.com/studyflow/backend/internal/services"
	"github.com/studyflow/backend/internal/services/lifecycle"
	"github.com/studyflow/backend/pkg/httpcontext"
	"github.com/studyflow/backend/pkg/logger"
	"github.com/studyflow/backend/repository/postgres"
	redisRepo "github.com/studyflow/backend/repository/redis"
	authUC "github.com/studyflow/backend/usecase/auth"
	"github.com/studyflow/backend/usecase/estimation"
	taskUC "github.com/studyflow/backend/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	store, err := modelstore.Open(cfg.Model.StorePath, "model")
	if err != nil {
		zapLogger.Fatal("failed to open model store", zap.Error(err))
	}
	manager.Register("model_store", func(ctx context.Context) error {
		return store.Close()
	})

	mon := monitor.New(pool, redisClient, store, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.JWT.SessionTTL)
	insightCache := redisRepo.NewInsightCache(redisClient, cfg.Model.InsightCacheTTL)

	estimator := estimation.New(store, feature.ForestConfig{
		Trees:       cfg.Model.Trees,
		MaxDepth:    cfg.Model.MaxDepth,
		MinLeafSize: cfg.Model.MinLeafSize,
		Seed:        cfg.Model.Seed,
	}, zapLogger)
	if err := estimator.Restore(appCtx); err != nil {
		zapLogger.Warn("could not restore model snapshot", zap.Error(err))
	}

	taskUseCase := taskUC.New(taskRepo, estimator, insightCache, zapLogger)
	if rows := loadBootstrapCorpus(cfg.Model.CorpusPath, zapLogger); rows != nil {
		taskUseCase.WithBootstrapCorpus(rows)
	}
	if !estimator.Ready() {
		if err := taskUseCase.Retrain(appCtx); err != nil {
			zapLogger.Warn("initial training skipped", zap.Error(err))
		}
	}

	retrainer := services.NewRetrainer(taskUseCase.Retrain, zapLogger, services.RetrainerConfig{
		Interval: cfg.Model.RetrainInterval,
	})
	retrainer.Start()
	manager.Register("retrainer", func(ctx context.Context) error {
		retrainer.Stop(ctx)
		return nil
	})

	authUseCase := authUC.New(userRepo, sessionRepo, cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:   apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, cfg.JWT.SessionTTL),
		Task:   apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

func loadBootstrapCorpus(path string, zapLogger *zap.Logger) []domain.Outcome {
	if path == "" {
		return nil
	}
	rows, err := corpus.LoadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			zapLogger.Info("no bootstrap corpus found", zap.String("path", path))
		} else {
			zapLogger.Warn("could not load bootstrap corpus", zap.String("path", path), zap.Error(err))
		}
		return nil
	}
	zapLogger.Info("bootstrap corpus loaded", zap.String("path", path), zap.Int("rows", len(rows)))
	return rows
}
