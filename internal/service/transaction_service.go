package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"findash/internal/cache"
	apperrors "findash/internal/errors"
	"findash/internal/export"
	"findash/internal/model"
	"findash/internal/query"
	"findash/internal/repository"
)

const statsCacheTTL = 5 * time.Minute

// Page is one page of a transaction listing.
type Page struct {
	Items      []model.Transaction
	Page       int
	Limit      int
	Total      int64
	TotalPages int
}

// TransactionService handles the owner-scoped transaction ledger.
type TransactionService interface {
	List(ctx context.Context, f query.Filter, p query.Pagination) (*Page, error)
	Get(ctx context.Context, owner, id uuid.UUID) (*model.Transaction, error)
	Create(ctx context.Context, owner uuid.UUID, in model.TransactionInput) (*model.Transaction, error)
	Update(ctx context.Context, owner, id uuid.UUID, in model.TransactionInput) (*model.Transaction, error)
	Delete(ctx context.Context, owner, id uuid.UUID) error
	DashboardStats(ctx context.Context, owner uuid.UUID) (*query.DashboardStats, error)
	Export(ctx context.Context, owner uuid.UUID, columns []string, c query.Criteria) ([]byte, error)
}

type transactionService struct {
	repo   repository.TransactionRepository
	cache  *cache.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewTransactionService creates a new transaction service. cache may be nil.
func NewTransactionService(repo repository.TransactionRepository, cache *cache.Client, logger *slog.Logger) TransactionService {
	return &transactionService{
		repo:   repo,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

func (s *transactionService) statsKey(owner uuid.UUID) string {
	return fmt.Sprintf("stats:%s", owner.String())
}

// List returns one page of the owner's transactions matching f.
func (s *transactionService) List(ctx context.Context, f query.Filter, p query.Pagination) (*Page, error) {
	items, total, err := s.repo.Search(ctx, f, p)
	if err != nil {
		return nil, apperrors.Internal("search transactions", err)
	}
	return &Page{
		Items:      items,
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: query.TotalPages(total, p.Limit),
	}, nil
}

// Get returns one transaction. Foreign transactions are reported as missing.
func (s *transactionService) Get(ctx context.Context, owner, id uuid.UUID) (*model.Transaction, error) {
	tx, err := s.repo.FindByIDForOwner(ctx, owner, id)
	if err != nil {
		return nil, mapNotFound(err, "find transaction")
	}
	return tx, nil
}

// Create records a new transaction for owner.
func (s *transactionService) Create(ctx context.Context, owner uuid.UUID, in model.TransactionInput) (*model.Transaction, error) {
	tx, err := model.NewTransaction(owner, in)
	if err != nil {
		return nil, apperrors.Validation("%s", err.Error())
	}
	if err := s.repo.Create(ctx, tx); err != nil {
		return nil, apperrors.Internal("create transaction", err)
	}
	s.invalidateStats(ctx, owner)
	return tx, nil
}

// Update replaces the mutable fields of one of owner's transactions.
func (s *transactionService) Update(ctx context.Context, owner, id uuid.UUID, in model.TransactionInput) (*model.Transaction, error) {
	tx, err := s.repo.FindByIDForOwner(ctx, owner, id)
	if err != nil {
		return nil, mapNotFound(err, "find transaction")
	}
	if err := tx.Apply(in); err != nil {
		return nil, apperrors.Validation("%s", err.Error())
	}
	if err := s.repo.Update(ctx, tx); err != nil {
		return nil, mapNotFound(err, "update transaction")
	}
	s.invalidateStats(ctx, owner)
	return tx, nil
}

// Delete removes one of owner's transactions.
func (s *transactionService) Delete(ctx context.Context, owner, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, owner, id); err != nil {
		return mapNotFound(err, "delete transaction")
	}
	s.invalidateStats(ctx, owner)
	return nil
}

// DashboardStats computes totals, the top categories and recent monthly
// trends for owner. Results are cached until the owner's next write.
func (s *transactionService) DashboardStats(ctx context.Context, owner uuid.UUID) (*query.DashboardStats, error) {
	var cached query.DashboardStats
	if s.cache.GetJSON(ctx, s.statsKey(owner), &cached) {
		return &cached, nil
	}

	totals, err := s.repo.Totals(ctx, owner)
	if err != nil {
		return nil, apperrors.Internal("sum transactions", err)
	}
	categories, err := s.repo.CategoryTotals(ctx, owner, query.TopCategories)
	if err != nil {
		return nil, apperrors.Internal("group categories", err)
	}
	rows, err := s.repo.AmountsSince(ctx, owner, query.TrendWindowStart(s.now()))
	if err != nil {
		return nil, apperrors.Internal("load monthly amounts", err)
	}

	stats := query.NewDashboardStats(totals,
		query.RankCategories(categories, query.TopCategories),
		query.MonthlyTrends(rows))

	if err := s.cache.SetJSON(ctx, s.statsKey(owner), stats, statsCacheTTL); err != nil {
		s.logger.WarnContext(ctx, "failed to cache dashboard stats", "error", err)
	}
	return &stats, nil
}

// Export renders the owner's transactions matching c as CSV with the given columns.
func (s *transactionService) Export(ctx context.Context, owner uuid.UUID, columns []string, c query.Criteria) ([]byte, error) {
	if err := export.ValidateColumns(columns); err != nil {
		return nil, err
	}
	f, err := query.BuildFilter(c, owner)
	if err != nil {
		return nil, err
	}

	txs, err := s.repo.FindAll(ctx, f)
	if err != nil {
		return nil, apperrors.Internal("load transactions", err)
	}

	out, err := export.CSV(columns, txs)
	if err != nil {
		return nil, apperrors.Internal("encode csv", err)
	}
	s.logger.InfoContext(ctx, "exported transactions", "owner", owner, "rows", len(txs), "columns", len(columns))
	return out, nil
}

func (s *transactionService) invalidateStats(ctx context.Context, owner uuid.UUID) {
	_ = s.cache.Delete(ctx, s.statsKey(owner))
}

func mapNotFound(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrTransactionNotFound
	}
	return apperrors.Internal(op, err)
}
