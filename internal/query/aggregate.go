package query

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"findash/internal/model"
)

const (
	// TopCategories is the size of the dashboard category breakdown.
	TopCategories = 10
	// TrendMonths is the number of calendar months in the dashboard trend, current month included.
	TrendMonths = 6
)

// Totals holds the per-type sums over an owner's transactions.
type Totals struct {
	Revenue  decimal.Decimal
	Expenses decimal.Decimal
	Count    int64
}

// CategoryTotal is one row of the category breakdown.
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Count    int64           `json:"count"`
}

// MonthlyTrend is the income and expense sum of one calendar month.
type MonthlyTrend struct {
	Month    string          `json:"month"`
	Revenue  decimal.Decimal `json:"revenue"`
	Expenses decimal.Decimal `json:"expenses"`
}

// DashboardStats is the rollup shown on the dashboard.
type DashboardStats struct {
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	TotalExpenses     decimal.Decimal `json:"totalExpenses"`
	NetIncome         decimal.Decimal `json:"netIncome"`
	TransactionCount  int64           `json:"transactionCount"`
	CategoryBreakdown []CategoryTotal `json:"categoryBreakdown"`
	MonthlyTrends     []MonthlyTrend  `json:"monthlyTrends"`
}

// AmountRow is the projection monthly trends are reduced from.
type AmountRow struct {
	Date   time.Time
	Type   model.TransactionType
	Amount decimal.Decimal
}

// NewDashboardStats assembles the stats; netIncome is always revenue minus expenses.
func NewDashboardStats(t Totals, categories []CategoryTotal, trends []MonthlyTrend) DashboardStats {
	if categories == nil {
		categories = []CategoryTotal{}
	}
	if trends == nil {
		trends = []MonthlyTrend{}
	}
	return DashboardStats{
		TotalRevenue:      t.Revenue,
		TotalExpenses:     t.Expenses,
		NetIncome:         t.Revenue.Sub(t.Expenses),
		TransactionCount:  t.Count,
		CategoryBreakdown: categories,
		MonthlyTrends:     trends,
	}
}

// TrendWindowStart returns midnight UTC on the first day of the earliest
// month in the trend window ending at now.
func TrendWindowStart(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month()-time.Month(TrendMonths-1), 1, 0, 0, 0, 0, time.UTC)
}

type monthKey struct {
	year  int
	month time.Month
}

// MonthlyTrends groups rows by calendar (year, month) and sums them per type.
// Only months with rows are returned, oldest first.
func MonthlyTrends(rows []AmountRow) []MonthlyTrend {
	buckets := make(map[monthKey]*MonthlyTrend)
	keys := make([]monthKey, 0)

	for _, r := range rows {
		d := r.Date.UTC()
		k := monthKey{d.Year(), d.Month()}
		b, ok := buckets[k]
		if !ok {
			b = &MonthlyTrend{
				Month:    fmt.Sprintf("%04d-%02d", k.year, int(k.month)),
				Revenue:  decimal.Zero,
				Expenses: decimal.Zero,
			}
			buckets[k] = b
			keys = append(keys, k)
		}
		switch r.Type {
		case model.TransactionTypeIncome:
			b.Revenue = b.Revenue.Add(r.Amount)
		case model.TransactionTypeExpense:
			b.Expenses = b.Expenses.Add(r.Amount)
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	out := make([]MonthlyTrend, 0, len(keys))
	for _, k := range keys {
		out = append(out, *buckets[k])
	}
	return out
}

// RankCategories orders categories by amount descending, breaking ties by
// name, and keeps at most limit entries.
func RankCategories(rows []CategoryTotal, limit int) []CategoryTotal {
	out := append([]CategoryTotal(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
