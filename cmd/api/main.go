package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectoinject/ectocontainer"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/mylesweissleder/newday-graph/config"
	"github.com/mylesweissleder/newday-graph/internal/repositories/analytics"
	"github.com/mylesweissleder/newday-graph/internal/repositories/candidate"
	"github.com/mylesweissleder/newday-graph/internal/repositories/contact"
	"github.com/mylesweissleder/newday-graph/internal/repositories/discoveryjob"
	"github.com/mylesweissleder/newday-graph/internal/repositories/relationship"
	analyticsservice "github.com/mylesweissleder/newday-graph/pkg/analytics"
	"github.com/mylesweissleder/newday-graph/pkg/database"
	"github.com/mylesweissleder/newday-graph/pkg/discovery"
	"github.com/mylesweissleder/newday-graph/pkg/events"
	"github.com/mylesweissleder/newday-graph/pkg/graph"
	"github.com/mylesweissleder/newday-graph/pkg/kafka"
	"github.com/mylesweissleder/newday-graph/pkg/middleware"
	"github.com/mylesweissleder/newday-graph/pkg/paths"
	"github.com/mylesweissleder/newday-graph/pkg/relationships"
	contactroutes "github.com/mylesweissleder/newday-graph/pkg/routes/contact"
	discoveryroutes "github.com/mylesweissleder/newday-graph/pkg/routes/discovery"
	"github.com/mylesweissleder/newday-graph/pkg/routes/health"
	pathroutes "github.com/mylesweissleder/newday-graph/pkg/routes/path"
	relationshiproutes "github.com/mylesweissleder/newday-graph/pkg/routes/relationship"
	"github.com/mylesweissleder/newday-graph/pkg/startup"
	"github.com/mylesweissleder/newday-graph/pkg/tracing"
)

var version = "dev"

// bootDependency adapts a start/stop pair to the startup orchestrator
type bootDependency struct {
	name      string
	dependsOn []string
	start     func(ctx context.Context) error
	stop      func(ctx context.Context) error
}

func (d *bootDependency) GetName() string     { return d.name }
func (d *bootDependency) DependsOn() []string { return d.dependsOn }

func (d *bootDependency) Start(ctx context.Context) error {
	if d.start == nil {
		return nil
	}
	return d.start(ctx)
}

func (d *bootDependency) Stop(ctx context.Context) error {
	if d.stop == nil {
		return nil
	}
	return d.stop(ctx)
}

func main() {
	_ = godotenv.Load()

	cfg := config.Config{}
	if err := ectoenv.BindEnv(&cfg); err != nil {
		panic(fmt.Errorf("failed to read configuration: %w", err))
	}

	zapLogger, err := newZapLogger(cfg)
	if err != nil {
		panic(fmt.Errorf("failed to create logger: %w", err))
	}
	defer zapLogger.Sync()
	logger := zapadapter.NewZapEctoLogger(zapLogger, nil)

	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	tracing.SetTracer(tp.Tracer(cfg.AppName))

	ctx := context.Background()

	sqlxDB, err := sqlx.Open(cfg.DatabaseDriver, postgresDSN(cfg))
	if err != nil {
		logger.WithError(err).Error("Failed to open database connection")
		os.Exit(1)
	}
	sqlxDB.SetMaxOpenConns(cfg.DatabaseMaxOpenConns)
	sqlxDB.SetMaxIdleConns(cfg.DatabaseMaxIdleConns)
	sqlxDB.SetConnMaxLifetime(cfg.DatabaseConnMaxLifetime)
	db := database.NewDatabaseInstance(sqlxDB, logger)

	var graphClient *graph.Client
	var mirror *graph.Mirror
	if cfg.GraphDBEnabled {
		graphClient, err = graph.NewClient(graph.Config{
			Host:     cfg.GraphDBHost,
			Port:     cfg.GraphDBPort,
			Username: cfg.GraphDBUser,
			Password: cfg.GraphDBPassword,
		}, logger)
		if err != nil {
			logger.WithError(err).Error("Failed to create graph client")
			os.Exit(1)
		}
		mirror = graph.NewMirror(graphClient, logger)
	}

	var producer *kafka.Producer
	if cfg.KafkaEnabled {
		producer = kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaOutputTopic,
			BatchSize:    cfg.KafkaBatchSize,
			BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
			RequiredAcks: cfg.KafkaRequiredAcks,
			Compression:  cfg.KafkaCompression,
		}, logger)
	}
	emitter := events.NewEmitter(producer, logger)

	contactRepo := contact.NewRepository(db, logger)
	relationshipRepo := relationship.NewRepository(db, logger)
	candidateRepo := candidate.NewRepository(db, logger)
	analyticsRepo := analytics.NewRepository(db, logger)
	jobRepo := discoveryjob.NewRepository(db, logger)

	analyticsService := analyticsservice.NewService(relationshipRepo, contactRepo, analyticsRepo, analyticsservice.Config{
		StaleAfter:      cfg.AnalyticsStaleAfter,
		DirectWeight:    cfg.InfluenceDirectWeight,
		ReachWeight:     cfg.InfluenceReachWeight,
		StrengthWeight:  cfg.InfluenceStrengthWeight,
		BetweenWeight:   cfg.InfluenceBetweenWeight,
		DiversityWeight: cfg.InfluenceDiversityWeight,
		ScoreDivisor:    cfg.InfluenceScoreDivisor,
		CompanyCap:      cfg.DiversityCompanyCap,
		TierCap:         cfg.DiversityTierCap,
		LocationCap:     cfg.DiversityLocationCap,
	}, logger)

	pathService := paths.NewService(relationshipRepo, contactRepo, paths.Config{
		DefaultMaxDegrees: cfg.PathMaxDepth,
		MaxDegreeCap:      cfg.ReachabilityLimit,
		MaxResults:        cfg.PathMaxResults,
	}, logger)

	relationshipService := relationships.NewService(relationshipRepo, contactRepo, analyticsService, mirror, emitter, logger)

	discoveryService := discovery.NewService(contactRepo, relationshipRepo, candidateRepo, jobRepo, db, mirror, emitter, discovery.Config{
		TopCandidates:      cfg.DiscoveryTopCandidates,
		MinConfidence:      cfg.DiscoveryMinConfidence,
		HighConfidence:     cfg.DiscoveryHighConfidence,
		ApproveMaxStrength: cfg.DiscoveryApproveMaxStrength,
		WorkerCount:        cfg.DiscoveryWorkerCount,
	}, logger)

	container, err := ectoinject.NewDIDefaultContainer()
	if err != nil {
		logger.WithError(err).Error("Failed to create DI container")
		os.Exit(1)
	}
	registerInstance(logger, container, logger)
	registerInstance(logger, container, relationshipService)
	registerInstance(logger, container, pathService)
	registerInstance(logger, container, analyticsService)
	registerInstance(logger, container, discoveryService)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.ReadHeaderTimeout = time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = cfg.MaxHeaderBytes

	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	e.HTTPErrorHandler = middleware.Error(logger)

	var graphPinger health.GraphPinger
	if graphClient != nil {
		graphPinger = graphClient
	}
	checker := health.NewChecker(sqlxDB, graphPinger, version)
	checker.RegisterRoutes(e)

	api := e.Group("/api/v1")
	relationshiproutes.Register(api.Group("/relationships"))
	contactroutes.Register(api.Group("/contacts"))
	pathroutes.Register(api.Group("/paths"))
	discoveryroutes.Register(api.Group("/discovery"))

	boot := startup.NewStartup(logger, cfg.StartupMaxAttempts)
	boot.AddDependency(&bootDependency{
		name: "postgres",
		start: func(ctx context.Context) error {
			if err := sqlxDB.PingContext(ctx); err != nil {
				return err
			}
			driver, err := migratepostgres.WithInstance(sqlxDB.DB, &migratepostgres.Config{})
			if err != nil {
				return err
			}
			migrations := database.NewMigrationService(logger, &database.MigrationConfig{
				MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
				Version:             uint(cfg.DatabaseMigrationVersion),
				Force:               cfg.DatabaseMigrationForce,
			})
			return migrations.Migrate(cfg.DatabaseName, driver)
		},
		stop: func(ctx context.Context) error {
			return sqlxDB.Close()
		},
	})
	if graphClient != nil {
		boot.AddDependency(&bootDependency{
			name:  "graph",
			start: graphClient.VerifyConnectivity,
			stop:  graphClient.Close,
		})
	}
	if producer != nil {
		boot.AddDependency(&bootDependency{
			name: "kafka",
			stop: func(ctx context.Context) error {
				return producer.Close()
			},
		})
	}
	boot.AddDependency(&bootDependency{
		name:      "http-server",
		dependsOn: []string{"postgres"},
		start: func(ctx context.Context) error {
			go func() {
				if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil {
					logger.WithError(err).Info("HTTP server stopped")
				}
			}()
			return nil
		},
		stop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})

	if err := boot.Start(ctx); err != nil {
		logger.WithError(err).Error("Startup failed")
		os.Exit(1)
	}
	checker.SetReady(true)
	logger.WithField("port", cfg.Port).Infof("%s listening on port %d", cfg.AppName, cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	checker.SetReady(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := boot.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Error("Shutdown did not complete cleanly")
	}
}

func newZapLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.PrettyLogs {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func postgresDSN(cfg config.Config) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DatabaseHost, cfg.DatabasePort, cfg.DatabaseUserName, cfg.DatabasePassword, cfg.DatabaseName, cfg.DatabaseSSLMode,
	)
}

func registerInstance[T any](logger ectologger.Logger, container ectocontainer.DIContainer, instance T) {
	if err := ectoinject.RegisterInstance[T](container, instance); err != nil {
		logger.WithError(err).Error("Failed to register dependency")
		os.Exit(1)
	}
}
