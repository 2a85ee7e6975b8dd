package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	dataagg "github.com/devlabsgt/backend/internal/data/aggregates"
	beneficiaryrepo "github.com/devlabsgt/backend/internal/data/repos/beneficiary"
	identityrepo "github.com/devlabsgt/backend/internal/data/repos/identity"
	projectsrepo "github.com/devlabsgt/backend/internal/data/repos/projects"
	registryrepo "github.com/devlabsgt/backend/internal/data/repos/registry"
	"github.com/devlabsgt/backend/internal/db"
	apphttp "github.com/devlabsgt/backend/internal/http"
	httpH "github.com/devlabsgt/backend/internal/http/handlers"
	httpMW "github.com/devlabsgt/backend/internal/http/middleware"
	"github.com/devlabsgt/backend/internal/observability"
	"github.com/devlabsgt/backend/internal/platform/logger"
	"github.com/devlabsgt/backend/internal/platform/sendgrid"
	"github.com/devlabsgt/backend/internal/services"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Log    *logger.Logger
	DB     *gorm.DB
	Cfg    Config
	Server *apphttp.Server

	sweep        *services.SweepService
	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	log, err := logger.New("")
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	if cfg.Mode != "" {
		if relog, err := logger.New(cfg.Mode); err == nil {
			log = relog
		}
	}

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "ngo-backend",
		Environment: cfg.Environment,
		Version:     cfg.ServiceVersion,
	})

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
	}

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// Repos
	userRepo := identityrepo.NewUserRepo(theDB, log)
	tokenRepo := identityrepo.NewTokenRepo(theDB, log)
	donorRepo := registryrepo.NewDonorRepo(theDB, log)
	objectiveRepo := registryrepo.NewObjectiveRepo(theDB, log)
	lineRepo := registryrepo.NewLineRepo(theDB, log)
	mailConfigRepo := registryrepo.NewMailConfigRepo(theDB, log)
	beneficiaryRepo := beneficiaryrepo.NewBeneficiaryRepo(theDB, log)
	projectRepo := projectsrepo.NewProjectRepo(theDB, log)

	// Aggregate
	projectAggregate := dataagg.NewProjectAggregate(dataagg.BaseDeps{
		DB:    theDB,
		Log:   log,
		Hooks: dataagg.NewObservabilityHooks(metrics),
	}, projectRepo, beneficiaryRepo)

	// Services
	authService := services.NewAuthService(theDB, log, userRepo, tokenRepo, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	userService := services.NewUserService(theDB, log, userRepo)
	registryService := services.NewRegistryService(theDB, log, donorRepo, objectiveRepo, lineRepo)
	beneficiaryService := services.NewBeneficiaryService(theDB, log, beneficiaryRepo)

	sendgridClient, err := sendgrid.NewFromEnv(log)
	if err != nil {
		log.Warn("sendgrid client unavailable, recovery mail disabled", "error", err)
	}
	mailerService := services.NewMailerService(log, sendgridClient, mailConfigRepo, metrics)
	recoveryService := services.NewRecoveryService(log, rdb, userRepo, userService, mailerService, cfg.RecoveryCodeTTL)

	bucketService, err := services.NewBucketService(log)
	if err != nil {
		log.Warn("bucket service unavailable, evidence uploads disabled", "error", err)
	}
	projectService := services.NewProjectService(log, projectAggregate, projectRepo, userRepo, bucketService)

	sweepService := services.NewSweepService(log, projectAggregate, metrics)

	if err := userService.EnsureDefaultSuper(context.Background()); err != nil {
		log.Warn("default super seed failed", "error", err)
	}

	// HTTP
	authMiddleware := httpMW.NewAuthMiddleware(log, authService)
	server := apphttp.NewServer(apphttp.RouterConfig{
		Log:                log,
		Metrics:            metrics,
		AuthMiddleware:     authMiddleware,
		AuthHandler:        httpH.NewAuthHandler(authService, recoveryService),
		UserHandler:        httpH.NewUserHandler(authService, userService),
		RegistryHandler:    httpH.NewRegistryHandler(registryService),
		BeneficiaryHandler: httpH.NewBeneficiaryHandler(beneficiaryService),
		ProjectHandler:     httpH.NewProjectHandler(projectService),
		SweepHandler:       httpH.NewSweepHandler(sweepService),
		MailConfigHandler:  httpH.NewMailConfigHandler(mailerService),
		HealthHandler:      httpH.NewHealthHandler(theDB),
	})

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Server:       server,
		sweep:        sweepService,
		otelShutdown: otelShutdown,
	}, nil
}

func (a *App) Start() error {
	if a == nil || a.sweep == nil {
		return nil
	}
	return a.sweep.Start()
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(":" + a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.sweep != nil {
		a.sweep.Stop()
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
