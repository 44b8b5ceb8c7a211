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
	"gorm.io/gorm"

	"avilegal.backend/internal/config"
	"avilegal.backend/internal/infrastructure/datasources/postgres"
	"avilegal.backend/internal/infrastructure/gateways"
	"avilegal.backend/internal/infrastructure/jobs"
	"avilegal.backend/internal/infrastructure/mail"
	"avilegal.backend/internal/infrastructure/messaging"
	"avilegal.backend/internal/infrastructure/notification"
	"avilegal.backend/internal/infrastructure/repositories"
	"avilegal.backend/internal/infrastructure/settings"
	"avilegal.backend/internal/infrastructure/storage"
	"avilegal.backend/internal/interfaces/http/handlers"
	"avilegal.backend/internal/interfaces/http/middleware"
	"avilegal.backend/internal/usecases"
	"avilegal.backend/pkg/jwt"
	"avilegal.backend/pkg/logger"
	"avilegal.backend/pkg/redis"
)

const (
	serviceName    = "avilegal-backend"
	serviceVersion = "1.0.0"
	shutdownGrace  = 15 * time.Second
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(cfg config.DatabaseConfig) (*gorm.DB, error) {
		sqlDB, err := postgres.NewConnection(cfg)
		if err != nil {
			return nil, err
		}
		return postgres.NewGorm(sqlDB)
	}
	newStorage  = storage.New
	newProducer = func(brokers []string, topic string) *messaging.Producer {
		return messaging.NewProducer(brokers, topic)
	}
	runServer = func(srv *http.Server) error { return srv.ListenAndServe() }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
	signals   = func() <-chan os.Signal {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		return quit
	}
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
	ctx := context.Background()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(ctx, "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()
	logger.Info(ctx, "Connected to PostgreSQL via GORM")

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	serviceRepo := repositories.NewServiceRepository(db)
	appRepo := repositories.NewApplicationRepository(db)
	milestoneRepo := repositories.NewMilestoneRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	documentRepo := repositories.NewDocumentRepository(db)
	settingRepo := repositories.NewSettingRepository(db)
	templateRepo := repositories.NewEmailTemplateRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// Infrastructure
	settingsProvider := settings.NewProvider(settingRepo)
	gatewayRegistry := gateways.NewRegistry(
		gateways.NewPaystack(cfg.Payment.PaystackBaseURL, cfg.Payment.GatewayTimeout, settingsProvider),
		gateways.NewFlutterwave(cfg.Payment.FlutterwaveBaseURL, cfg.Payment.GatewayTimeout, settingsProvider),
	)

	fileStorage, err := newStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	renderer := notification.NewRenderer(templateRepo, settingsProvider, notification.Defaults{
		CompanyName: cfg.App.CompanyName,
		FrontendURL: cfg.App.FrontendURL,
	})
	directDispatcher := notification.NewDirectDispatcher(renderer, mail.NewSMTPSender(settingsProvider))

	var dispatcher notification.Dispatcher = directDispatcher
	if cfg.Kafka.Enabled() {
		producer := newProducer(cfg.Kafka.Brokers, cfg.Kafka.EmailTopic)
		defer producer.Close()
		dispatcher = notification.NewKafkaDispatcher(producer)
		logger.Info(ctx, "Queued email delivery enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.EmailTopic))
	}
	notifier := notification.NewNotifier(dispatcher)

	// Usecases
	authUsecase := usecases.NewAuthUsecase(uow, userRepo, roleRepo, jwtService, redis.NewTokenDenylist(), notifier)
	serviceUsecase := usecases.NewServiceUsecase(serviceRepo)
	settingsUsecase := usecases.NewSettingsUsecase(settingsProvider, directDispatcher, usecases.PublicDefaults{CompanyName: cfg.App.CompanyName})
	dashboardUsecase := usecases.NewDashboardUsecase(appRepo, userRepo, paymentRepo)
	applicationUsecase := usecases.NewApplicationUsecase(uow, appRepo, serviceRepo, milestoneRepo, paymentRepo, documentRepo, fileStorage, notifier)
	paymentUsecase := usecases.NewPaymentUsecase(uow, paymentRepo, appRepo, serviceRepo, milestoneRepo, userRepo, gatewayRegistry, settingsProvider, notifier, usecases.PaymentOptions{
		MaxVerifyAttempts:  cfg.Payment.MaxVerifyAttempts,
		DefaultFrontendURL: cfg.App.FrontendURL,
		DefaultCompanyName: cfg.App.CompanyName,
	})
	documentUsecase := usecases.NewDocumentUsecase(documentRepo, appRepo, fileStorage, notifier, cfg.Storage.MaxUploadSize)
	userUsecase := usecases.NewUserUsecase(uow, userRepo, roleRepo)
	roleUsecase := usecases.NewRoleUsecase(uow, roleRepo, userRepo)
	templateUsecase := usecases.NewEmailTemplateUsecase(templateRepo, renderer, directDispatcher)

	healthHandler := handlers.NewHealthHandler(serviceName, serviceVersion, map[string]handlers.Pinger{
		"database": sqlDB.PingContext,
		"redis": func(ctx context.Context) error {
			c := redis.GetClient()
			if c == nil {
				return errors.New("redis not initialized")
			}
			return c.Ping(ctx).Err()
		},
	})

	// Background jobs
	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	expiryJob := jobs.NewPaymentExpiryJob(paymentRepo, cfg.Payment.ExpiryInterval, cfg.Payment.PendingTTL)
	go expiryJob.Start(jobCtx)

	r := gin.New()
	r.MaxMultipartMemory = cfg.Storage.MaxUploadSize * 2
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r, healthHandler)
	if cfg.Storage.CloudinaryURL == "" {
		r.Static("/storage", cfg.Storage.Root)
	}
	registerAPIV1Routes(r, routeDeps{
		authHandler:          handlers.NewAuthHandler(authUsecase),
		serviceHandler:       handlers.NewServiceHandler(serviceUsecase),
		settingsHandler:      handlers.NewSettingsHandler(settingsUsecase),
		dashboardHandler:     handlers.NewDashboardHandler(dashboardUsecase),
		applicationHandler:   handlers.NewApplicationHandler(applicationUsecase),
		paymentHandler:       handlers.NewPaymentHandler(paymentUsecase),
		documentHandler:      handlers.NewDocumentHandler(documentUsecase),
		userHandler:          handlers.NewUserHandler(userUsecase),
		roleHandler:          handlers.NewRoleHandler(roleUsecase),
		emailTemplateHandler: handlers.NewEmailTemplateHandler(templateUsecase),
		healthHandler:        healthHandler,
		authMiddleware:       middleware.AuthMiddleware(authUsecase),
		principalMiddleware:  middleware.PrincipalMiddleware(authUsecase),
	})

	logger.Debug(ctx, "Routes registered", zap.Int("count", len(r.Routes())))

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := signals()
	go func() {
		<-quit
		logger.Info(ctx, "Shutting down server")
		expiryJob.Stop()
		cancel()

		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownGrace)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "Graceful shutdown failed", zap.Error(err))
		}
	}()

	logger.Info(ctx, "AviLegal backend starting",
		zap.String("port", cfg.Server.Port),
		zap.String("api", "http://localhost:"+cfg.Server.Port+"/api/v1"),
	)

	if err := runServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
