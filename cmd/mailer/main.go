package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"findash/internal/config"
	"findash/internal/logging"
	"findash/internal/notify"
)

// mailer drains the password reset queue and delivers each notice over SMTP.
func main() {
	cfg := config.Load()

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log := logging.WithComponent(logger, logging.ComponentMail)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" || !cfg.MailConfigured() {
		log.Error("mailer needs AMQP_URL, SMTP_HOST and SMTP_FROM")
		os.Exit(1)
	}

	client, err := notify.NewAMQPClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, log)
	if err != nil {
		log.Error("failed to connect to broker", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	smtp := notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		Username:    cfg.SMTPUsername,
		Password:    cfg.SMTPPassword,
		From:        cfg.SMTPFrom,
		FrontendURL: cfg.FrontendURL,
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := client.Consume(ctx, smtp.SendPasswordReset); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("consumer stopped", "error", err)
		stop()
		client.Close()
		os.Exit(1)
	}
	log.Info("mailer stopped")
}
