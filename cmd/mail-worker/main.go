package main

import (
	"context"
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
	"avilegal.backend/internal/infrastructure/mail"
	"avilegal.backend/internal/infrastructure/messaging"
	"avilegal.backend/internal/infrastructure/notification"
	"avilegal.backend/internal/infrastructure/repositories"
	"avilegal.backend/internal/infrastructure/settings"
	"avilegal.backend/pkg/logger"
	"avilegal.backend/pkg/metrics"
	"avilegal.backend/pkg/redis"
)

// emailConsumer is the subset of messaging.Consumer the worker drives.
type emailConsumer interface {
	Start(ctx context.Context, handler messaging.Handler)
	Close() error
}

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
	newConsumer = func(cfg config.KafkaConfig) emailConsumer {
		return messaging.NewConsumer(cfg.Brokers, cfg.EmailTopic, cfg.GroupID)
	}
	runMetrics = func(srv *http.Server) error { return srv.ListenAndServe() }
	signals    = func() <-chan os.Signal {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		return quit
	}
)

func main() {
	if err := runWorker(); err != nil {
		log.Fatal(err)
	}
}

func runWorker() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()
	initLog(cfg.Server.Env)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !cfg.Kafka.Enabled() {
		return errors.New("KAFKA_BROKERS is not set; emails are sent in-process by the server")
	}

	// The settings cache is optional here; without Redis every lookup
	// goes to the database.
	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Warn(ctx, "Redis unavailable, settings cache disabled", zap.Error(err))
		redis.SetClient(nil)
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	settingsProvider := settings.NewProvider(repositories.NewSettingRepository(db))
	renderer := notification.NewRenderer(repositories.NewEmailTemplateRepository(db), settingsProvider, notification.Defaults{
		CompanyName: cfg.App.CompanyName,
		FrontendURL: cfg.App.FrontendURL,
	})
	dispatcher := notification.NewDirectDispatcher(renderer, mail.NewSMTPSender(settingsProvider))

	consumer := newConsumer(cfg.Kafka)
	defer consumer.Close()

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "avilegal-mail-worker"}) })
	srv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := runMetrics(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "Metrics listener stopped", zap.Error(err))
		}
	}()

	quit := signals()
	go func() {
		select {
		case <-quit:
			logger.Info(ctx, "Shutting down mail worker")
			cancel()
		case <-ctx.Done():
		}
	}()

	logger.Info(ctx, "Mail worker consuming",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.EmailTopic),
		zap.String("group", cfg.Kafka.GroupID),
	)
	consumer.Start(ctx, dispatcher.Handle)

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	_ = srv.Shutdown(shutdownCtx)
	return nil
}
