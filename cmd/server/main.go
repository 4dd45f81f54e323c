package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "findash/docs" // swagger docs

	"github.com/labstack/echo/v4"

	"findash/internal/auth"
	"findash/internal/cache"
	"findash/internal/config"
	"findash/internal/db"
	"findash/internal/handler"
	"findash/internal/logging"
	"findash/internal/notify"
	"findash/internal/repository"
	"findash/internal/router"
	"findash/internal/service"
)

// @title Finance Dashboard API
// @version 1.0
// @description Personal finance dashboard API: JWT authentication, owner-scoped transactions, dashboard statistics and CSV export.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(logger)
	log := logging.WithComponent(logger, logging.ComponentApp)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	log := logging.WithComponent(logger, logging.ComponentApp)
	storeLog := logging.WithComponent(logger, logging.ComponentStorage)

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN, storeLog)
	if err != nil {
		return err
	}
	defer db.Close(gormDB)

	if err := db.Migrate(gormDB, cfg.ResetDB, storeLog); err != nil {
		return err
	}
	storeLog.Info("database ready", "driver", cfg.DBDriver)

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		storeLog.Warn("redis unreachable, continuing without cache", "addr", cfg.RedisAddr, "error", err)
	}
	cancelPing()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	txRepo := repository.NewTransactionRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiresIn)
	tokenStore := auth.NewTokenStore(cacheClient)

	notifier, closeNotifier, err := newNotifier(cfg, logger)
	if err != nil {
		return err
	}
	defer closeNotifier()

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, notifier, cfg.BcryptCost,
		logging.WithComponent(logger, logging.ComponentAuth))
	txService := service.NewTransactionService(txRepo, cacheClient,
		logging.WithComponent(logger, logging.ComponentLedger))

	e := echo.New()
	e.HidePort = true
	router.Register(e, cfg, logger, jwtService, tokenStore, router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Transactions: handler.NewTransactionHandler(txService),
	})

	log.Info("swagger documentation available", "url", swaggerURL(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.ServerPort
		log.Info("starting server", "addr", addr, "env", cfg.AppEnv)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// newNotifier picks reset-mail delivery: the AMQP queue when configured,
// otherwise direct SMTP, otherwise none.
func newNotifier(cfg *config.Config, logger *slog.Logger) (notify.Notifier, func(), error) {
	mailLog := logging.WithComponent(logger, logging.ComponentMail)
	noop := func() {}

	switch {
	case cfg.AMQPURL != "":
		client, err := notify.NewAMQPClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, mailLog)
		if err != nil {
			return nil, noop, err
		}
		mailLog.Info("reset mails are queued", "queue", cfg.AMQPQueue)
		return client, func() { _ = client.Close() }, nil
	case cfg.MailConfigured():
		mailLog.Info("reset mails are sent over SMTP", "host", cfg.SMTPHost)
		return notify.NewSMTPNotifier(smtpConfig(cfg), mailLog), noop, nil
	default:
		mailLog.Warn("no mail delivery configured, reset tokens are returned in responses")
		return nil, noop, nil
	}
}

func smtpConfig(cfg *config.Config) notify.SMTPConfig {
	return notify.SMTPConfig{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		Username:    cfg.SMTPUsername,
		Password:    cfg.SMTPPassword,
		From:        cfg.SMTPFrom,
		FrontendURL: cfg.FrontendURL,
	}
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return strings.TrimRight(host, "/") + "/swagger/index.html"
}
