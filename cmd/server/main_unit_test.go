package main

import (
	"errors"
	"net/http"
	"os"
	"syscall"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"avilegal.backend/internal/config"
	"avilegal.backend/internal/infrastructure/storage"
	plog "avilegal.backend/pkg/logger"
)

func withMainHooks(t *testing.T) {
	t.Helper()
	origLoadDotenv := loadDotenv
	origLoadCfg := loadCfg
	origInitLog := initLog
	origInitRedis := initRedis
	origOpenDB := openDB
	origNewStorage := newStorage
	origNewProducer := newProducer
	origRunServer := runServer
	origSignals := signals

	t.Cleanup(func() {
		loadDotenv = origLoadDotenv
		loadCfg = origLoadCfg
		initLog = origInitLog
		initRedis = origInitRedis
		openDB = origOpenDB
		newStorage = origNewStorage
		newProducer = origNewProducer
		runServer = origRunServer
		signals = origSignals
	})

	loadDotenv = func(...string) error { return nil }
	initLog = plog.Init
	initRedis = func(string, string) error { return nil }
	signals = func() <-chan os.Signal { return make(chan os.Signal) }
}

func sqliteOpener(name string) func(config.DatabaseConfig) (*gorm.DB, error) {
	return func(config.DatabaseConfig) (*gorm.DB, error) {
		return gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	}
}

func baseTestConfig(t *testing.T) func() *config.Config {
	root := t.TempDir()
	return func() *config.Config {
		return &config.Config{
			Server: config.ServerConfig{
				Port: "0",
				Env:  "development",
			},
			Database: config.DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "postgres",
				Password: "postgres",
				DBName:   "avilegal",
				SSLMode:  "disable",
			},
			Redis: config.RedisConfig{URL: "redis://localhost:6379"},
			JWT: config.JWTConfig{
				Secret:        "secret",
				AccessExpiry:  15 * time.Minute,
				RefreshExpiry: 24 * time.Hour,
			},
			Payment: config.PaymentConfig{
				GatewayTimeout:    5 * time.Second,
				MaxVerifyAttempts: 5,
				PendingTTL:        time.Hour,
				ExpiryInterval:    time.Hour,
			},
			Storage: config.StorageConfig{
				Root:          root,
				PublicURL:     "http://localhost:8080/storage",
				MaxUploadSize: 5 * 1024 * 1024,
			},
			App: config.AppConfig{
				FrontendURL: "http://localhost:3000",
				CompanyName: "AviLegal",
			},
		}
	}
}

func TestRunMainProcess_RedisInitError(t *testing.T) {
	withMainHooks(t)
	loadCfg = baseTestConfig(t)
	initRedis = func(string, string) error { return errors.New("redis down") }

	if err := runMainProcess(); err == nil {
		t.Fatal("expected redis init error")
	}
}

func TestRunMainProcess_DBOpenError(t *testing.T) {
	withMainHooks(t)
	loadCfg = baseTestConfig(t)
	openDB = func(config.DatabaseConfig) (*gorm.DB, error) { return nil, errors.New("db open failed") }

	if err := runMainProcess(); err == nil {
		t.Fatal("expected db open error")
	}
}

func TestRunMainProcess_StorageError(t *testing.T) {
	withMainHooks(t)
	loadCfg = baseTestConfig(t)
	openDB = sqliteOpener("main_storage_err")
	newStorage = func(config.StorageConfig) (storage.Storage, error) { return nil, errors.New("bad cloudinary url") }

	if err := runMainProcess(); err == nil {
		t.Fatal("expected storage error")
	}
}

func TestRunMainProcess_ServerRunError(t *testing.T) {
	withMainHooks(t)
	loadCfg = baseTestConfig(t)
	openDB = sqliteOpener("main_server_err")
	runServer = func(*http.Server) error { return errors.New("listen failed") }

	if err := runMainProcess(); err == nil {
		t.Fatal("expected server run error")
	}
}

func TestRunMainProcess_SuccessPath(t *testing.T) {
	withMainHooks(t)
	loadCfg = baseTestConfig(t)
	openDB = sqliteOpener("main_success")

	var srvAddr string
	runServer = func(srv *http.Server) error {
		srvAddr = srv.Addr
		return http.ErrServerClosed
	}

	if err := runMainProcess(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if srvAddr != ":0" {
		t.Fatalf("unexpected server addr %q", srvAddr)
	}
}

func TestRunMainProcess_KafkaDispatch(t *testing.T) {
	withMainHooks(t)
	base := baseTestConfig(t)
	loadCfg = func() *config.Config {
		cfg := base()
		cfg.Kafka = config.KafkaConfig{Brokers: []string{"127.0.0.1:9092"}, EmailTopic: "emails", GroupID: "mail-worker"}
		return cfg
	}
	openDB = sqliteOpener("main_kafka")
	runServer = func(*http.Server) error { return nil }

	if err := runMainProcess(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunMainProcess_GracefulShutdown(t *testing.T) {
	withMainHooks(t)
	loadCfg = baseTestConfig(t)
	openDB = sqliteOpener("main_shutdown")

	quit := make(chan os.Signal, 1)
	signals = func() <-chan os.Signal { return quit }
	runServer = func(srv *http.Server) error {
		quit <- syscall.SIGTERM
		return srv.ListenAndServe()
	}

	done := make(chan error, 1)
	go func() { done <- runMainProcess() }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
