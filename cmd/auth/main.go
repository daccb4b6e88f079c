package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/bbangting/auth/internal/config"
	"github.com/bbangting/auth/internal/db"
	"github.com/bbangting/auth/internal/es"
	"github.com/bbangting/auth/internal/handlers"
	"github.com/bbangting/auth/internal/hash"
	"github.com/bbangting/auth/internal/logging"
	"github.com/bbangting/auth/internal/mykafka"
	"github.com/bbangting/auth/internal/notify"
	"github.com/bbangting/auth/internal/repo"
	"github.com/bbangting/auth/internal/service"
	"github.com/bbangting/auth/internal/tokens"
	httpserver "github.com/bbangting/auth/internal/transport/http"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DBDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	tokenSvc, err := tokens.NewService(tokens.Config{
		Secret:     cfg.JWTSecret,
		RefreshTTL: cfg.RefreshTTL,
		Issuer:     cfg.JWTIssuer,
	})
	if err != nil {
		log.Fatalf("token service error: %v", err)
	}

	var (
		sinks    notify.Fanout
		producer *mykafka.Producer
		audit    *notify.AuditIndexer
	)
	if len(cfg.KafkaBrokers) > 0 {
		producer = mykafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		sinks = append(sinks, notify.KafkaNotifier{Producer: producer})
	}
	if cfg.ESURL != "" {
		esClient, err := es.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			logger.Warn("login audit disabled", "error", err)
		} else {
			audit = &notify.AuditIndexer{ES: esClient, Index: cfg.ESIndex}
			sinks = append(sinks, audit)
		}
	}
	dispatcher := notify.NewDispatcher(sinks, cfg.NotifyQueueSize, cfg.NotifyWorkers, logger)

	svc := &service.AuthService{
		Repo:          repo.New(gdb),
		Tokens:        tokenSvc,
		Hasher:        hash.NewBcrypt(cfg.BcryptCost),
		Notifier:      dispatcher,
		StrictRefresh: cfg.RefreshStrict,
	}

	var history handlers.LoginHistory
	if audit != nil {
		history = audit
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		middleware.Recover(),
		middleware.RequestID(),
		logging.RequestLogger(logger),
		middleware.CORSWithConfig(middleware.CORSConfig{
			ExposeHeaders: []string{
				echo.HeaderAuthorization,
				handlers.HeaderRefreshToken,
				handlers.HeaderAccessExpiresAt,
			},
		}),
	)

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: handlers.NewAuthHandler(svc),
		UserHandler: handlers.NewUserHandler(svc, history),
		Tokens:      tokenSvc,
		Ready: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})

	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr)
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo shutdown", "error", err)
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Error("notification dispatcher close", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close", "error", err)
		}
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db close", "error", err)
	}

	logger.Info("shutdown complete")
}
