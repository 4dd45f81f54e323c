package main

import (
	"context"
	"os"
	"time"

	"findash/internal/config"
	"findash/internal/db"
	"findash/internal/logging"
	"findash/internal/repository"
)

func main() {
	cfg := config.Load()

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log := logging.WithComponent(logger, logging.ComponentSeed)
	log.Info("starting seed script")

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN, logging.WithComponent(logger, logging.ComponentStorage))
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close(gormDB)

	if err := db.Migrate(gormDB, false, log); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	s := &seeder{
		users:        repository.NewUserRepository(gormDB),
		transactions: repository.NewTransactionRepository(gormDB),
		bcryptCost:   cfg.BcryptCost,
		logger:       log,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res, err := s.run(ctx, time.Now().UTC(), time.Now().UnixNano())
	if err != nil {
		log.Error("seed failed", "error", err)
		os.Exit(1)
	}

	log.Info("seed completed",
		"users_created", res.created,
		"users_reset", res.reset,
		"transactions", res.transactions)
	for _, u := range demoUsers {
		log.Info("sample login", "email", u.Email, "password", demoPassword)
	}
}
