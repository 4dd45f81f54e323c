package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"findash/internal/model"
	"findash/internal/repository"
)

const (
	demoPassword     = "password123"
	sampleCount      = 50
	sampleWindowDays = 180
)

var demoUsers = []model.User{
	{Email: "john@example.com", FirstName: "John", LastName: "Doe", Role: model.RoleUser},
	{Email: "jane@example.com", FirstName: "Jane", LastName: "Smith", Role: model.RoleUser},
	{Email: "admin@example.com", FirstName: "Admin", LastName: "User", Role: model.RoleAdmin},
}

type template struct {
	description string
	amount      string
	typ         model.TransactionType
	category    string
	tags        []string
}

var templates = []template{
	{"Monthly Salary", "5000", model.TransactionTypeIncome, "Salary", []string{"salary", "monthly"}},
	{"Freelance Project", "1500", model.TransactionTypeIncome, "Freelance", []string{"freelance", "project"}},
	{"Dividend Payment", "300", model.TransactionTypeIncome, "Investment", []string{"investment", "dividend"}},
	{"Grocery Shopping", "120.50", model.TransactionTypeExpense, "Food", []string{"essential", "weekly"}},
	{"Gas Station", "45", model.TransactionTypeExpense, "Transportation", []string{"fuel", "car"}},
	{"Netflix Subscription", "15.99", model.TransactionTypeExpense, "Entertainment", []string{"subscription", "entertainment"}},
	{"Restaurant Dinner", "85", model.TransactionTypeExpense, "Food", []string{"dining", "social"}},
	{"Clothing Purchase", "200", model.TransactionTypeExpense, "Shopping", []string{"clothing", "personal"}},
	{"Doctor Visit", "150", model.TransactionTypeExpense, "Healthcare", []string{"health", "annual"}},
	{"Electricity Bill", "75", model.TransactionTypeExpense, "Utilities", []string{"utilities", "monthly"}},
}

type seeder struct {
	users        repository.UserRepository
	transactions repository.TransactionRepository
	bcryptCost   int
	logger       *slog.Logger
}

type result struct {
	created      int
	reset        int
	transactions int
}

// run makes the demo users exist with the demo password, replaces their
// transactions with fresh samples, and returns what it did.
func (s *seeder) run(ctx context.Context, now time.Time, seed int64) (result, error) {
	var res result

	owners := make([]uuid.UUID, 0, len(demoUsers))
	for _, demo := range demoUsers {
		user, created, err := s.upsertUser(ctx, demo)
		if err != nil {
			return res, err
		}
		if created {
			res.created++
		} else {
			res.reset++
			if err := s.transactions.DeleteByOwner(ctx, user.ID); err != nil {
				return res, fmt.Errorf("clear transactions of %s: %w", user.Email, err)
			}
		}
		owners = append(owners, user.ID)
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed>>32)))
	txs, err := sampleTransactions(rng, owners, now, sampleCount)
	if err != nil {
		return res, err
	}
	if err := s.transactions.CreateBatch(ctx, txs); err != nil {
		return res, fmt.Errorf("insert sample transactions: %w", err)
	}
	res.transactions = len(txs)
	return res, nil
}

func (s *seeder) upsertUser(ctx context.Context, demo model.User) (*model.User, bool, error) {
	existing, err := s.users.FindByEmail(ctx, demo.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("look up %s: %w", demo.Email, err)
	}

	if existing != nil {
		existing.FirstName = demo.FirstName
		existing.LastName = demo.LastName
		existing.Role = demo.Role
		existing.ClearResetToken()
		if err := existing.SetPassword(demoPassword, s.bcryptCost); err != nil {
			return nil, false, err
		}
		if err := s.users.Update(ctx, existing); err != nil {
			return nil, false, fmt.Errorf("update %s: %w", demo.Email, err)
		}
		s.logger.Debug("reset demo user", "email", demo.Email)
		return existing, false, nil
	}

	user := demo
	user.Email = model.NormalizeEmail(demo.Email)
	if err := user.SetPassword(demoPassword, s.bcryptCost); err != nil {
		return nil, false, err
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return nil, false, fmt.Errorf("create %s: %w", demo.Email, err)
	}
	s.logger.Debug("created demo user", "email", user.Email)
	return &user, true, nil
}

// sampleTransactions draws n transactions from templates, spread over the
// last sampleWindowDays and randomly assigned to owners. Amounts are jittered
// by up to 25 either way and never drop below zero.
func sampleTransactions(rng *rand.Rand, owners []uuid.UUID, now time.Time, n int) ([]model.Transaction, error) {
	if len(owners) == 0 {
		return nil, fmt.Errorf("no owners to seed")
	}
	window := time.Duration(sampleWindowDays) * 24 * time.Hour

	out := make([]model.Transaction, 0, n)
	for i := 0; i < n; i++ {
		tpl := templates[rng.IntN(len(templates))]
		base := decimal.RequireFromString(tpl.amount)
		jitter := decimal.NewFromFloat((rng.Float64() - 0.5) * 50)
		amount := decimal.Max(decimal.Zero, base.Add(jitter)).Round(2)

		tx, err := model.NewTransaction(owners[rng.IntN(len(owners))], model.TransactionInput{
			Description: tpl.description,
			Amount:      amount,
			Type:        tpl.typ,
			Category:    tpl.category,
			Status:      model.TransactionStatusPaid,
			Date:        now.Add(-time.Duration(rng.Int64N(int64(window)))),
			Tags:        tpl.tags,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, *tx)
	}
	return out, nil
}
