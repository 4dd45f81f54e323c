package query

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "findash/internal/errors"
	"findash/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestBuildFilter_OmitsUnsupplied(t *testing.T) {
	owner := uuid.New()

	f, err := BuildFilter(Criteria{}, owner)
	require.NoError(t, err)

	assert.Equal(t, OwnerFilter(owner), f)
}

func TestBuildFilter_AllFields(t *testing.T) {
	owner := uuid.New()

	f, err := BuildFilter(Criteria{
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31",
		MinAmount: "10",
		MaxAmount: "99.99",
		Category:  " Food ",
		Status:    "pending",
		Type:      "expense",
		Search:    " coffee ",
	}, owner)
	require.NoError(t, err)

	assert.Equal(t, owner, f.OwnerID)
	require.NotNil(t, f.From)
	require.NotNil(t, f.To)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *f.From)
	assert.Equal(t, time.Date(2024, 1, 31, 23, 59, 59, 999999999, time.UTC), *f.To, "bare end date covers the whole day")
	assert.True(t, f.MinAmount.Equal(dec("10")))
	assert.True(t, f.MaxAmount.Equal(dec("99.99")))
	assert.Equal(t, "Food", f.Category)
	assert.Equal(t, model.TransactionStatusPending, f.Status)
	assert.Equal(t, model.TransactionTypeExpense, f.Type)
	assert.Equal(t, "coffee", f.Search)
}

func TestBuildFilter_RFC3339EndDateIsExact(t *testing.T) {
	f, err := BuildFilter(Criteria{EndDate: "2024-01-31T10:00:00+02:00"}, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC), *f.To)
}

func TestBuildFilter_Errors(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		wantMsg  string
	}{
		{"bad start", Criteria{StartDate: "yesterday"}, "invalid startDate"},
		{"bad end", Criteria{EndDate: "31/01/2024"}, "invalid endDate"},
		{"inverted range", Criteria{StartDate: "2024-02-01", EndDate: "2024-01-01"}, "endDate must not be before startDate"},
		{"bad min", Criteria{MinAmount: "ten"}, "invalid minAmount"},
		{"bad max", Criteria{MaxAmount: "1,000"}, "invalid maxAmount"},
		{"bad status", Criteria{Status: "completed"}, "status must be paid or pending"},
		{"bad type", Criteria{Type: "transfer"}, "type must be income or expense"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildFilter(tt.criteria, uuid.New())
			require.Error(t, err)
			assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestBuildFilter_RequiresOwner(t *testing.T) {
	_, err := BuildFilter(Criteria{Category: "Food"}, uuid.Nil)
	assert.Error(t, err)
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name   string
		params PageParams
		want   Pagination
	}{
		{"defaults", PageParams{}, Pagination{Page: 1, Limit: 10, SortColumn: "date", Desc: true}},
		{"explicit", PageParams{Page: "3", Limit: "25", SortBy: "amount", SortOrder: "asc"}, Pagination{Page: 3, Limit: 25, SortColumn: "amount", Desc: false}},
		{"clamped limit", PageParams{Limit: "100000"}, Pagination{Page: 1, Limit: MaxLimit, SortColumn: "date", Desc: true}},
		{"clamped page", PageParams{Page: "9223372036854775807", Limit: "100"}, Pagination{Page: MaxPage, Limit: MaxLimit, SortColumn: "date", Desc: true}},
		{"non-positive values", PageParams{Page: "-2", Limit: "0"}, Pagination{Page: 1, Limit: 10, SortColumn: "date", Desc: true}},
		{"camel case column", PageParams{SortBy: "createdAt", SortOrder: "DESC"}, Pagination{Page: 1, Limit: 10, SortColumn: "created_at", Desc: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePagination(tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePagination_Errors(t *testing.T) {
	for _, params := range []PageParams{
		{Page: "one"},
		{Limit: "ten"},
		{SortBy: "amount; DROP TABLE transactions"},
		{SortOrder: "sideways"},
	} {
		_, err := ParsePagination(params)
		assert.Error(t, err, "%+v", params)
	}
}

func TestPaginationOffsetAndOrder(t *testing.T) {
	p := Pagination{Page: 3, Limit: 10, SortColumn: "date", Desc: true}
	assert.Equal(t, 20, p.Offset())
	assert.Equal(t, "date DESC", p.OrderClause())

	last, err := ParsePagination(PageParams{Page: "9223372036854775807", Limit: "100"})
	require.NoError(t, err)
	assert.Positive(t, last.Offset())
	assert.Equal(t, (MaxPage-1)*MaxLimit, last.Offset())
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 3, TotalPages(25, 10))
	assert.Equal(t, 2, TotalPages(20, 10))
	assert.Equal(t, 1, TotalPages(1, 10))
	assert.Equal(t, 0, TotalPages(0, 10))
}

func TestMonthlyTrends(t *testing.T) {
	rows := []AmountRow{
		{Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), Type: model.TransactionTypeIncome, Amount: dec("100")},
		{Date: time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC), Type: model.TransactionTypeExpense, Amount: dec("20.5")},
		{Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), Type: model.TransactionTypeExpense, Amount: dec("30")},
		{Date: time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), Type: model.TransactionTypeIncome, Amount: dec("0.5")},
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Type: model.TransactionTypeExpense, Amount: dec("1")},
	}

	trends := MonthlyTrends(rows)

	require.Len(t, trends, 3)
	assert.Equal(t, "2023-12", trends[0].Month)
	assert.True(t, trends[0].Expenses.Equal(dec("20.5")))
	assert.True(t, trends[0].Revenue.IsZero())
	assert.Equal(t, "2024-01", trends[1].Month)
	assert.Equal(t, "2024-03", trends[2].Month)
	assert.True(t, trends[2].Revenue.Equal(dec("100.5")))
	assert.True(t, trends[2].Expenses.Equal(dec("30")))
}

func TestMonthlyTrends_Empty(t *testing.T) {
	assert.Empty(t, MonthlyTrends(nil))
}

func TestTrendWindowStart(t *testing.T) {
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), TrendWindowStart(time.Date(2024, 6, 30, 18, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC), TrendWindowStart(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestRankCategories(t *testing.T) {
	rows := []CategoryTotal{
		{Category: "Rent", Amount: dec("900"), Count: 1},
		{Category: "Food", Amount: dec("120"), Count: 4},
		{Category: "Bills", Amount: dec("120"), Count: 2},
		{Category: "Salary", Amount: dec("5000"), Count: 1},
	}

	ranked := RankCategories(rows, 3)

	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"Salary", "Rent", "Bills"}, []string{ranked[0].Category, ranked[1].Category, ranked[2].Category})
	assert.Equal(t, "Rent", rows[0].Category, "input is not reordered")
}

func TestNewDashboardStats(t *testing.T) {
	stats := NewDashboardStats(Totals{Revenue: dec("100.10"), Expenses: dec("40.05"), Count: 3}, nil, nil)

	assert.True(t, stats.NetIncome.Equal(dec("60.05")))
	assert.True(t, stats.TotalRevenue.Sub(stats.TotalExpenses).Equal(stats.NetIncome))
	assert.NotNil(t, stats.CategoryBreakdown)
	assert.NotNil(t, stats.MonthlyTrends)
}
