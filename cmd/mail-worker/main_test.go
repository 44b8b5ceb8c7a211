package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"avilegal.backend/internal/config"
	"avilegal.backend/internal/infrastructure/messaging"
	plog "avilegal.backend/pkg/logger"
)

type fakeConsumer struct {
	started atomic.Bool
	closed  atomic.Bool
	handled chan error
	payload []byte
}

func (f *fakeConsumer) Start(ctx context.Context, handler messaging.Handler) {
	f.started.Store(true)
	if f.payload != nil {
		f.handled <- handler(ctx, nil, f.payload)
	}
	<-ctx.Done()
}

func (f *fakeConsumer) Close() error {
	f.closed.Store(true)
	return nil
}

func withWorkerHooks(t *testing.T) {
	t.Helper()
	origLoadDotenv, origLoadCfg, origInitLog := loadDotenv, loadCfg, initLog
	origInitRedis, origOpenDB, origNewConsumer := initRedis, openDB, newConsumer
	origRunMetrics, origSignals := runMetrics, signals
	t.Cleanup(func() {
		loadDotenv, loadCfg, initLog = origLoadDotenv, origLoadCfg, origInitLog
		initRedis, openDB, newConsumer = origInitRedis, origOpenDB, origNewConsumer
		runMetrics, signals = origRunMetrics, origSignals
	})

	loadDotenv = func(...string) error { return nil }
	initLog = plog.Init
	initRedis = func(string, string) error { return errors.New("redis down") }
	runMetrics = func(*http.Server) error { return http.ErrServerClosed }
	openDB = func(config.DatabaseConfig) (*gorm.DB, error) {
		return gorm.Open(sqlite.Open("file:mail_worker?mode=memory&cache=shared"), &gorm.Config{})
	}
}

func workerConfig(brokers ...string) func() *config.Config {
	return func() *config.Config {
		return &config.Config{
			Server: config.ServerConfig{Port: "0", Env: "development"},
			Kafka:  config.KafkaConfig{Brokers: brokers, EmailTopic: "emails", GroupID: "mail-worker"},
			App:    config.AppConfig{CompanyName: "AviLegal"},
		}
	}
}

func TestRunWorker_RequiresKafka(t *testing.T) {
	withWorkerHooks(t)
	loadCfg = workerConfig()

	err := runWorker()
	assert.ErrorContains(t, err, "KAFKA_BROKERS")
}

func TestRunWorker_DBError(t *testing.T) {
	withWorkerHooks(t)
	loadCfg = workerConfig("127.0.0.1:9092")
	openDB = func(config.DatabaseConfig) (*gorm.DB, error) { return nil, errors.New("db down") }

	err := runWorker()
	assert.ErrorContains(t, err, "failed to connect to database")
}

func TestRunWorker_ConsumesUntilSignal(t *testing.T) {
	withWorkerHooks(t)
	loadCfg = workerConfig("127.0.0.1:9092")

	consumer := &fakeConsumer{handled: make(chan error, 1), payload: []byte("not json")}
	newConsumer = func(config.KafkaConfig) emailConsumer { return consumer }
	quit := make(chan os.Signal, 1)
	signals = func() <-chan os.Signal { return quit }

	done := make(chan error, 1)
	go func() { done <- runWorker() }()

	select {
	case err := <-consumer.handled:
		// malformed jobs are dropped rather than retried
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("consumer never invoked the handler")
	}

	quit <- syscall.SIGTERM
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
	assert.True(t, consumer.started.Load())
	assert.True(t, consumer.closed.Load())
}
