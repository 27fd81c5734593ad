package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	_ "github.com/lib/pq" // PostgreSQL driver

	"herald/internal/api"
	"herald/internal/config"
	"herald/internal/constants"
	"herald/internal/history"
	"herald/internal/inference"
	"herald/internal/logger"
	"herald/internal/orchestrator"
	"herald/internal/results"
	"herald/internal/routing"
	"herald/internal/rules"
	"herald/internal/triage"
	"herald/internal/urgency"
	"herald/pkg/bootstrap"
	"herald/pkg/cel"
	"herald/pkg/health"
	"herald/pkg/logging"
	"herald/pkg/metrics"
	"herald/pkg/middleware"
	"herald/pkg/migrations"
	"herald/pkg/models"
	"herald/pkg/ratelimit"
	"herald/pkg/tracing"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type App struct {
	*bootstrap.Base
	dbConnector    *bootstrap.DatabaseConnector
	db             *sql.DB
	redisClient    *redis.Client
	mongoClient    *mongo.Client
	service        *triage.Service
	tracerProvider *tracing.TracerProvider
	server         *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName("triage-service")
	}
	return &App{
		Base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.initDatabases(ctx); err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}

	if err := a.initService(ctx); err != nil {
		return fmt.Errorf("failed to initialize service: %w", err)
	}

	if err := a.InitBroker("triage-service"); err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	tp, err := tracing.Init(a.Config.Tracing, "triage-service")
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	metrics.RegisterTriageMetrics()
	metrics.RegisterBrokerMetrics()
	metrics.RegisterCircuitBreakerMetrics()
	if a.Config.API.RateLimit.Enabled {
		metrics.RegisterAPIMetrics()
	}

	if err := a.initHTTPServer(ctx); err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	return nil
}

func (a *App) initDatabases(ctx context.Context) error {
	db, err := a.dbConnector.InitPostgreSQL(ctx)
	if err != nil {
		return err
	}
	a.db = db

	if a.Config.History.CacheEnabled {
		rdb, err := a.dbConnector.InitRedis(ctx)
		if err != nil {
			initCtx := logging.WithServiceName(ctx, "triage-service")
			a.Logger.WarnwCtx(initCtx, "Redis unavailable, history cache disabled",
				"error", err,
			)
		} else {
			a.redisClient = rdb
		}
	}

	mongoClient, err := a.dbConnector.InitMongoDB(ctx)
	if err != nil {
		initCtx := logging.WithServiceName(ctx, "triage-service")
		a.Logger.WarnwCtx(initCtx, "MongoDB unavailable, results will not be persisted",
			"error", err,
		)
	} else {
		a.mongoClient = mongoClient
	}

	return nil
}

// historyReader builds the layered sender-history lookup: PostgreSQL at
// the bottom, Redis cache-aside when enabled, circuit breaker on top.
// Without a database every lookup degrades to first-contact semantics.
func (a *App) historyReader() history.Reader {
	if a.db == nil {
		a.Logger.Warnw("No PostgreSQL configured, sender history disabled")
		return history.ReaderFunc(func(ctx context.Context, tenantID, userID, senderID string) (*history.SenderHistory, error) {
			return nil, nil
		})
	}

	var reader history.Reader = history.NewPostgresReader(a.db, a.Logger)

	if a.redisClient != nil {
		ttl := time.Duration(a.Config.History.CacheTTLSeconds) * time.Second
		reader = history.NewCachedReader(reader, a.redisClient, ttl, a.Logger)
	}

	return history.NewBreakerReader(reader, a.Config.History.LookupTimeout, a.Logger)
}

func (a *App) initService(ctx context.Context) error {
	capability, err := inference.New(a.Config.Inference, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create inference capability: %w", err)
	}

	var spamPolicy *cel.Evaluator
	if a.Config.Routing.SpamPolicy != "" {
		spamPolicy, err = cel.NewEvaluator(a.Config.Routing.SpamPolicy)
		if err != nil {
			return fmt.Errorf("invalid spam policy expression: %w", err)
		}
	}

	o := orchestrator.New(
		rules.NewEngine(a.Logger),
		urgency.NewClassifier(capability, a.historyReader(), a.Logger),
		routing.NewClassifier(capability, spamPolicy, a.Logger),
		a.Logger,
	)

	var repo results.Repository
	if a.mongoClient != nil {
		dbName := a.Config.Database.MongoDB.Database
		if dbName == "" {
			dbName = constants.DefaultMongoDBName
		}
		mongoDB := a.mongoClient.Database(dbName)

		if err := migrations.EnsureMongoCollection(ctx, mongoDB); err != nil {
			initCtx := logging.WithServiceName(ctx, "triage-service")
			a.Logger.WarnwCtx(initCtx, "Failed to ensure result indexes",
				"error", err,
			)
		}
		repo = results.NewRepository(mongoDB)
	}

	a.service = triage.NewService(o, repo, a.Logger)
	return nil
}

func (a *App) initHTTPServer(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.Config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware("triage-service"))
	}

	router.Use(middleware.RecoveryMiddleware(a.Logger))
	router.Use(middleware.LoggerMiddleware(a.Logger))
	router.Use(middleware.RequestIDMiddleware())

	if a.Config.API.RateLimit.Enabled {
		rateLimitConfig := ratelimit.RateLimitConfig{
			RPS:             a.Config.API.RateLimit.RPS,
			Burst:           a.Config.API.RateLimit.Burst,
			CleanupInterval: time.Duration(a.Config.API.RateLimit.CleanupInterval) * time.Second,
			MaxAge:          time.Duration(a.Config.API.RateLimit.MaxAge) * time.Second,
		}
		router.Use(ratelimit.RateLimitMiddleware(rateLimitConfig))
		a.Logger.InfowCtx(ctx, "Rate limiting enabled", "rps", rateLimitConfig.RPS, "burst", rateLimitConfig.Burst)
	}

	api.NewHandler(a.service, a.Logger).RegisterRoutes(router)

	healthRegistry := health.NewCheckerRegistry()
	if a.db != nil {
		healthRegistry.Register(health.NewPostgreSQLChecker(a.db))
	}
	if a.redisClient != nil {
		healthRegistry.Register(health.NewRedisChecker(a.redisClient))
	}
	if a.mongoClient != nil {
		healthRegistry.Register(health.NewMongoDBChecker(a.mongoClient))
	}

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler: router,
	}

	return nil
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	if a.server != nil {
		g.Go(func() error {
			a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
			if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("HTTP server error: %w", err)
			}
			return nil
		})
	}

	inputTopic := a.Config.Broker.Kafka.InputTopic
	if inputTopic == "" {
		inputTopic = constants.DefaultInputTopic
	}
	g.Go(func() error {
		return a.Consumer.Consume(gCtx, inputTopic, a.handleMessage)
	})

	return g.Wait()
}

func (a *App) handleMessage(ctx context.Context, msg *models.NormalizedMessage) error {
	result, err := a.service.Process(ctx, msg)
	if err != nil {
		a.Logger.ErrorwCtx(ctx, "Triage error",
			"error", err,
		)
		return err
	}

	outputTopic := a.Config.Broker.Kafka.OutputTopic
	if outputTopic == "" {
		outputTopic = constants.DefaultOutputTopic
	}

	// Key by tenant and sender so one conversation stays on one partition.
	key := fmt.Sprintf("%s:%s", msg.TenantID, msg.SenderID)
	if err := a.Producer.Publish(ctx, outputTopic, key, result); err != nil {
		a.Logger.ErrorwCtx(ctx, "Failed to publish triage decision",
			"error", err,
			"output_topic", outputTopic,
		)
		return err
	}

	a.Logger.InfowCtx(ctx, "Message triaged",
		"decision", result.Decision,
		"confidence", result.Confidence,
		"category", result.Category,
	)

	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	shutdownCtx := logging.WithServiceName(ctx, "triage-service")
	a.Logger.InfowCtx(shutdownCtx, "Shutting down triage service")

	additionalShutdown := func(ctx context.Context) []error {
		var errs []error

		if a.server != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()
			if err := a.server.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("HTTP server shutdown error: %w", err))
			}
		}

		if a.tracerProvider != nil {
			if err := a.tracerProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
			}
		}

		errs = append(errs, a.dbConnector.ShutdownDatabases(ctx, a.redisClient, a.db, a.mongoClient)...)

		return errs
	}

	return a.Base.Shutdown(ctx, additionalShutdown)
}
