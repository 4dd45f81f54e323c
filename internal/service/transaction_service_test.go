package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"findash/internal/cache"
	apperrors "findash/internal/errors"
	"findash/internal/logging"
	"findash/internal/model"
	"findash/internal/query"
)

func newTestTransactionService(repo *MockTransactionRepository, c *cache.Client) *transactionService {
	return NewTransactionService(repo, c, logging.Discard()).(*transactionService)
}

func coffeeInput() model.TransactionInput {
	return model.TransactionInput{
		Description: "Coffee",
		Amount:      decimal.RequireFromString("-4.5"),
		Type:        model.TransactionTypeExpense,
		Category:    "Food",
		Date:        time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestTransactionService_Create(t *testing.T) {
	owner := uuid.New()

	t.Run("normalizes and stores", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Transaction")).Return(nil)

		svc := newTestTransactionService(repo, nil)
		tx, err := svc.Create(context.Background(), owner, coffeeInput())
		require.NoError(t, err)
		assert.Equal(t, owner, tx.UserID)
		assert.Equal(t, "4.5", tx.Amount.String())
		assert.Equal(t, model.TransactionStatusPaid, tx.Status)
		repo.AssertExpectations(t)
	})

	t.Run("invalid input never reaches the store", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		in := coffeeInput()
		in.Type = "transfer"

		svc := newTestTransactionService(repo, nil)
		_, err := svc.Create(context.Background(), owner, in)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestTransactionService_NotFound(t *testing.T) {
	owner, id := uuid.New(), uuid.New()
	repo := new(MockTransactionRepository)
	repo.On("FindByIDForOwner", mock.Anything, owner, id).Return(nil, gorm.ErrRecordNotFound)
	repo.On("Delete", mock.Anything, owner, id).Return(gorm.ErrRecordNotFound)

	svc := newTestTransactionService(repo, nil)

	_, err := svc.Get(context.Background(), owner, id)
	assert.Equal(t, apperrors.ErrTransactionNotFound, err)

	_, err = svc.Update(context.Background(), owner, id, coffeeInput())
	assert.Equal(t, apperrors.ErrTransactionNotFound, err)

	assert.Equal(t, apperrors.ErrTransactionNotFound, svc.Delete(context.Background(), owner, id))
}

func TestTransactionService_UpdateKeepsEntityOnInvalidInput(t *testing.T) {
	owner := uuid.New()
	existing, err := model.NewTransaction(owner, coffeeInput())
	require.NoError(t, err)

	repo := new(MockTransactionRepository)
	repo.On("FindByIDForOwner", mock.Anything, owner, existing.ID).Return(existing, nil)

	in := coffeeInput()
	in.Description = "   "
	svc := newTestTransactionService(repo, nil)
	_, err = svc.Update(context.Background(), owner, existing.ID, in)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Equal(t, "Coffee", existing.Description)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestTransactionService_List(t *testing.T) {
	owner := uuid.New()
	f := query.OwnerFilter(owner)
	p, err := query.ParsePagination(query.PageParams{Page: "3", Limit: "10"})
	require.NoError(t, err)

	items := make([]model.Transaction, 5)
	repo := new(MockTransactionRepository)
	repo.On("Search", mock.Anything, f, p).Return(items, int64(25), nil)

	svc := newTestTransactionService(repo, nil)
	page, err := svc.List(context.Background(), f, p)
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 10, page.Limit)
	assert.EqualValues(t, 25, page.Total)
	assert.Equal(t, 3, page.TotalPages)
}

func TestTransactionService_DashboardStats(t *testing.T) {
	owner := uuid.New()
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	repo := new(MockTransactionRepository)
	repo.On("Totals", mock.Anything, owner).Return(query.Totals{
		Revenue:  decimal.RequireFromString("3000"),
		Expenses: decimal.RequireFromString("1204.5"),
		Count:    3,
	}, nil).Once()
	repo.On("CategoryTotals", mock.Anything, owner, query.TopCategories).Return([]query.CategoryTotal{
		{Category: "Salary", Amount: decimal.RequireFromString("3000"), Count: 1},
		{Category: "Housing", Amount: decimal.RequireFromString("1200"), Count: 1},
		{Category: "Food", Amount: decimal.RequireFromString("4.5"), Count: 1},
	}, nil).Once()
	repo.On("AmountsSince", mock.Anything, owner, time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)).Return([]query.AmountRow{
		{Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Type: model.TransactionTypeExpense, Amount: decimal.RequireFromString("1200")},
		{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Type: model.TransactionTypeIncome, Amount: decimal.RequireFromString("3000")},
		{Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), Type: model.TransactionTypeExpense, Amount: decimal.RequireFromString("4.5")},
	}, nil).Once()

	mr := miniredis.RunT(t)
	c := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })

	svc := newTestTransactionService(repo, c)
	svc.now = func() time.Time { return now }

	stats, err := svc.DashboardStats(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, "1795.5", stats.NetIncome.String())
	assert.EqualValues(t, 3, stats.TransactionCount)
	require.Len(t, stats.CategoryBreakdown, 3)
	assert.Equal(t, "Salary", stats.CategoryBreakdown[0].Category)
	require.Len(t, stats.MonthlyTrends, 2)
	assert.Equal(t, "2024-02", stats.MonthlyTrends[0].Month)
	assert.Equal(t, "2024-03", stats.MonthlyTrends[1].Month)
	assert.Equal(t, "4.5", stats.MonthlyTrends[1].Expenses.String())

	// second read is served from cache; the mocks only answer once
	cached, err := svc.DashboardStats(context.Background(), owner)
	require.NoError(t, err)
	assert.True(t, stats.NetIncome.Equal(cached.NetIncome))
	assert.Len(t, cached.MonthlyTrends, 2)
	repo.AssertExpectations(t)

	// a write invalidates the cached rollup
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Transaction")).Return(nil)
	_, err = svc.Create(context.Background(), owner, coffeeInput())
	require.NoError(t, err)
	assert.False(t, mr.Exists("stats:"+owner.String()))
}

func TestTransactionService_DashboardStatsEmptyOwner(t *testing.T) {
	owner := uuid.New()
	repo := new(MockTransactionRepository)
	repo.On("Totals", mock.Anything, owner).Return(query.Totals{Revenue: decimal.Zero, Expenses: decimal.Zero}, nil)
	repo.On("CategoryTotals", mock.Anything, owner, query.TopCategories).Return([]query.CategoryTotal{}, nil)
	repo.On("AmountsSince", mock.Anything, owner, mock.Anything).Return([]query.AmountRow{}, nil)

	stats, err := newTestTransactionService(repo, nil).DashboardStats(context.Background(), owner)
	require.NoError(t, err)
	assert.True(t, stats.NetIncome.IsZero())
	assert.NotNil(t, stats.CategoryBreakdown)
	assert.Empty(t, stats.CategoryBreakdown)
	assert.NotNil(t, stats.MonthlyTrends)
	assert.Empty(t, stats.MonthlyTrends)
}

func TestTransactionService_DashboardStatsStoreFailure(t *testing.T) {
	owner := uuid.New()
	repo := new(MockTransactionRepository)
	repo.On("Totals", mock.Anything, owner).Return(query.Totals{}, errors.New("db down"))

	_, err := newTestTransactionService(repo, nil).DashboardStats(context.Background(), owner)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
}

func TestTransactionService_Export(t *testing.T) {
	owner := uuid.New()
	tx, err := model.NewTransaction(owner, coffeeInput())
	require.NoError(t, err)

	t.Run("columns are required", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		_, err := newTestTransactionService(repo, nil).Export(context.Background(), owner, nil, query.Criteria{})
		require.Error(t, err)
		assert.Equal(t, "columns are required", err.Error())
		repo.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
	})

	t.Run("unknown column", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		_, err := newTestTransactionService(repo, nil).Export(context.Background(), owner, []string{"password"}, query.Criteria{})
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	})

	t.Run("bad filter", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		_, err := newTestTransactionService(repo, nil).Export(context.Background(), owner, []string{"amount"}, query.Criteria{StartDate: "yesterday"})
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	})

	t.Run("renders filtered rows", func(t *testing.T) {
		repo := new(MockTransactionRepository)
		repo.On("FindAll", mock.Anything, mock.MatchedBy(func(f query.Filter) bool {
			return f.OwnerID == owner && f.Type == model.TransactionTypeExpense
		})).Return([]model.Transaction{*tx}, nil)

		out, err := newTestTransactionService(repo, nil).Export(context.Background(), owner,
			[]string{"description", "amount", "type"}, query.Criteria{Type: "expense"})
		require.NoError(t, err)

		records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
		require.NoError(t, err)
		assert.Equal(t, [][]string{
			{"Description", "Amount", "Type"},
			{"Coffee", "4.5", "expense"},
		}, records)
	})
}
