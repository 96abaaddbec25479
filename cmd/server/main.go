package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"dvlottery.backend/internal/config"
	"dvlottery.backend/internal/domain/entities"
	datasource "dvlottery.backend/internal/infrastructure/datasources/postgres"
	"dvlottery.backend/internal/infrastructure/email"
	"dvlottery.backend/internal/infrastructure/jobs"
	"dvlottery.backend/internal/infrastructure/messaging"
	"dvlottery.backend/internal/infrastructure/metrics"
	"dvlottery.backend/internal/infrastructure/payment"
	"dvlottery.backend/internal/infrastructure/repositories"
	"dvlottery.backend/internal/infrastructure/storage"
	"dvlottery.backend/internal/interfaces/http/handlers"
	"dvlottery.backend/internal/interfaces/http/middleware"
	"dvlottery.backend/internal/usecases"
	"dvlottery.backend/pkg/jwt"
	"dvlottery.backend/pkg/logger"
	"dvlottery.backend/pkg/redis"
	"dvlottery.backend/pkg/tracer"
)

const serviceName = "dvlottery-backend"

type eventPublisher interface {
	usecases.EventPublisher
	Close()
}

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initTracer = tracer.Init
	initRedis  = redis.Init
	openSQL    = datasource.NewConnection
	migrateDB  = datasource.RunMigrations
	openDB     = func(sqlDB *sql.DB) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			Conn:                 sqlDB,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	newSessionStore = redis.NewSessionStore
	newEmailSender  = email.NewSender
	newPublisher    = func(cfg config.NATSConfig, l *zap.Logger) (eventPublisher, error) {
		if cfg.URL == "" {
			return messaging.NoopPublisher{}, nil
		}
		return messaging.NewNATSPublisher(cfg, l)
	}
	newPhotoStorage = func(ctx context.Context, cfg config.StorageConfig, l *zap.Logger) (usecases.PhotoStorage, error) {
		s, err := storage.NewMinioPhotoStorage(ctx, cfg, l)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	runServer = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	defer logger.Sync()
	ctx := context.Background()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	tp := initTracer(serviceName, cfg.Server.Version, cfg.Tracing.Endpoint)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		tracer.Shutdown(shutdownCtx, tp)
	}()

	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	defer func() { _ = redis.Close() }()
	logger.Info(ctx, "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	sqlDB, err := openSQL(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer sqlDB.Close()

	if cfg.Server.MigrateOnStart {
		if err := migrateDB(ctx, sqlDB); err != nil {
			return err
		}
		logger.Info(ctx, "Database migrations applied")
	}

	db, err := openDB(sqlDB)
	if err != nil {
		return fmt.Errorf("failed to open gorm session: %w", err)
	}
	logger.Info(ctx, "Connected to PostgreSQL")

	jwtService := jwt.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	sessionStore, err := newSessionStore(cfg.Security.SessionEncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	sender, err := newEmailSender(cfg.Email, logger.Named("email"))
	if err != nil {
		return fmt.Errorf("failed to initialize email sender: %w", err)
	}

	publisher, err := newPublisher(cfg.NATS, logger.Named("events"))
	if err != nil {
		logger.Warn(ctx, "Event bus unavailable, events will be dropped", zap.Error(err))
		publisher = messaging.NoopPublisher{}
	}
	defer publisher.Close()

	var photoStorage usecases.PhotoStorage
	if s, err := newPhotoStorage(ctx, cfg.Storage, logger.Named("storage")); err != nil {
		if !errors.Is(err, storage.ErrNotConfigured) {
			logger.Warn(ctx, "Photo storage unavailable, uploads disabled", zap.Error(err))
		}
	} else {
		photoStorage = s
	}

	appMetrics := metrics.New()

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	appRepo := repositories.NewApplicationRepository(db)
	codeRepo := repositories.NewVerificationCodeRepository(db)
	resetRepo := repositories.NewPasswordResetTokenRepository(db)
	txRepo := repositories.NewTransactionRepository(db)
	templateRepo := repositories.NewEmailTemplateRepository(db)
	adminRepo := repositories.NewAdminRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// Usecases
	verificationUsecase := usecases.NewVerificationUsecase(uow, userRepo, codeRepo, templateRepo, sender, redis.Cooldown{}, appMetrics, publisher,
		usecases.VerificationConfig{
			CodeTTL:        cfg.Verification.CodeTTL,
			ResendCooldown: cfg.Verification.ResendCooldown,
		})
	authUsecase := usecases.NewAuthUsecase(uow, userRepo, appRepo, verificationUsecase, jwtService, sessionStore, publisher,
		cfg.Verification.ExposeCodeOnEmailFailure)
	passwordResetUsecase := usecases.NewPasswordResetUsecase(uow, userRepo, resetRepo, templateRepo, sender, appMetrics,
		cfg.Verification.ResetTokenTTL, cfg.Server.FrontendURL)
	applicationUsecase := usecases.NewApplicationUsecase(uow, appRepo, userRepo, photoStorage, publisher, cfg.Storage.MaxPhotoBytes)
	paymentUsecase := usecases.NewPaymentUsecase(userRepo, appRepo, txRepo, payment.NewCheckoutClient(cfg.Payment, logger.Named("payment")),
		appMetrics, publisher, usecases.PaymentConfig{
			Prices:      priceList(cfg.Packages),
			Currency:    cfg.Packages.Currency,
			FrontendURL: cfg.Server.FrontendURL,
		})
	templateUsecase := usecases.NewTemplateUsecase(templateRepo, sender, appMetrics)
	adminUsecase := usecases.NewAdminUsecase(adminRepo, userRepo, appRepo, txRepo, jwtService)

	// Background jobs
	jobCtx, cancelJobs := context.WithCancel(ctx)
	defer cancelJobs()
	cleanupJob := jobs.NewCredentialCleanupJob(codeRepo, resetRepo, cfg.Verification.CleanupInterval, logger.Named("jobs"))
	go cleanupJob.Start(jobCtx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.TracingMiddleware(serviceName))
	r.Use(middleware.LoggerMiddleware(healthPath, metricsPath))
	r.Use(middleware.MetricsMiddleware(appMetrics))

	applyCORSMiddleware(r, cfg.Server.CORSOrigins)
	registerHealthRoute(r, cfg.Server.Version)
	registerMetricsRoute(r, appMetrics)
	registerAPIRoutes(r, routeDeps{
		authHandler:             handlers.NewAuthHandler(authUsecase, verificationUsecase, passwordResetUsecase),
		paymentHandler:          handlers.NewPaymentHandler(paymentUsecase),
		webhookHandler:          handlers.NewWebhookHandler(payment.NewWebhookVerifier(cfg.Payment.WebhookSecret), paymentUsecase),
		applicationHandler:      handlers.NewApplicationHandler(applicationUsecase),
		adminHandler:            handlers.NewAdminHandler(adminUsecase),
		adminApplicationHandler: handlers.NewAdminApplicationHandler(applicationUsecase),
		templateHandler:         handlers.NewTemplateHandler(templateUsecase),
		authMiddleware:          middleware.AuthMiddleware(jwtService, sessionStore),
		optionalAuthMiddleware:  middleware.OptionalAuthMiddleware(jwtService, sessionStore),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info(ctx, "Shutting down server")
		cleanupJob.Stop()
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "Graceful shutdown failed", zap.Error(err))
		}
	}()

	logger.Info(ctx, "DV lottery backend starting",
		zap.String("port", cfg.Server.Port),
		zap.Int("routes", len(r.Routes())),
	)

	if err := runServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func priceList(cfg config.PackagesConfig) entities.PriceList {
	prices := entities.DefaultPrices()
	if cfg.IndividualCents > 0 {
		prices[entities.PackageIndividual] = cfg.IndividualCents
	}
	if cfg.CoupleCents > 0 {
		prices[entities.PackageCouple] = cfg.CoupleCents
	}
	if cfg.FamilyCents > 0 {
		prices[entities.PackageFamily] = cfg.FamilyCents
	}
	return prices
}
