package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"findash/internal/model"
	"findash/internal/query"
)

// TransactionRepository defines transaction persistence operations. Every
// read and write is scoped to a single owner.
type TransactionRepository interface {
	Create(ctx context.Context, tx *model.Transaction) error
	CreateBatch(ctx context.Context, txs []model.Transaction) error
	Update(ctx context.Context, tx *model.Transaction) error
	Delete(ctx context.Context, owner, id uuid.UUID) error
	DeleteByOwner(ctx context.Context, owner uuid.UUID) error
	FindByIDForOwner(ctx context.Context, owner, id uuid.UUID) (*model.Transaction, error)
	Search(ctx context.Context, f query.Filter, p query.Pagination) ([]model.Transaction, int64, error)
	FindAll(ctx context.Context, f query.Filter) ([]model.Transaction, error)
	Totals(ctx context.Context, owner uuid.UUID) (query.Totals, error)
	CategoryTotals(ctx context.Context, owner uuid.UUID, limit int) ([]query.CategoryTotal, error)
	AmountsSince(ctx context.Context, owner uuid.UUID, since time.Time) ([]query.AmountRow, error)
}

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository.
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// Create creates a new transaction record.
func (r *transactionRepository) Create(ctx context.Context, tx *model.Transaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// CreateBatch inserts many transactions at once.
func (r *transactionRepository) CreateBatch(ctx context.Context, txs []model.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(txs, 100).Error
}

// Update overwrites the mutable fields of an existing transaction. A row that
// vanished or belongs to someone else yields gorm.ErrRecordNotFound.
func (r *transactionRepository) Update(ctx context.Context, tx *model.Transaction) error {
	res := r.db.WithContext(ctx).
		Model(tx).
		Where("user_id = ?", tx.UserID).
		Select("description", "amount", "type", "category", "status", "date", "tags", "updated_at").
		Updates(tx)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes one of owner's transactions.
func (r *transactionRepository) Delete(ctx context.Context, owner, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, owner).
		Delete(&model.Transaction{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteByOwner removes every transaction of owner.
func (r *transactionRepository) DeleteByOwner(ctx context.Context, owner uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", owner).Delete(&model.Transaction{}).Error
}

// FindByIDForOwner finds a transaction by ID, only if owner owns it.
func (r *transactionRepository) FindByIDForOwner(ctx context.Context, owner, id uuid.UUID) (*model.Transaction, error) {
	var tx model.Transaction
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, owner).First(&tx).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

// Search returns one page of matching transactions and the total match count.
func (r *transactionRepository) Search(ctx context.Context, f query.Filter, p query.Pagination) ([]model.Transaction, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Transaction{}).Scopes(filterScope(f)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	txs := make([]model.Transaction, 0, p.Limit)
	if total == 0 {
		return txs, 0, nil
	}
	err := r.db.WithContext(ctx).
		Scopes(filterScope(f)).
		Order(p.OrderClause()).
		Order("id ASC").
		Offset(p.Offset()).
		Limit(p.Limit).
		Find(&txs).Error
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// FindAll returns every matching transaction, newest first.
func (r *transactionRepository) FindAll(ctx context.Context, f query.Filter) ([]model.Transaction, error) {
	txs := make([]model.Transaction, 0)
	err := r.db.WithContext(ctx).
		Scopes(filterScope(f)).
		Order("date DESC").
		Order("id ASC").
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

// Totals sums owner's income and expenses.
func (r *transactionRepository) Totals(ctx context.Context, owner uuid.UUID) (query.Totals, error) {
	var row struct {
		Revenue  decimal.Decimal
		Expenses decimal.Decimal
		TxCount  int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Select("COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS revenue, "+
			"COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS expenses, "+
			"COUNT(*) AS tx_count",
			model.TransactionTypeIncome, model.TransactionTypeExpense).
		Where("user_id = ?", owner).
		Scan(&row).Error
	if err != nil {
		return query.Totals{}, err
	}
	return query.Totals{
		Revenue:  roundCents(row.Revenue),
		Expenses: roundCents(row.Expenses),
		Count:    row.TxCount,
	}, nil
}

// CategoryTotals groups owner's transactions by category, largest sum first.
func (r *transactionRepository) CategoryTotals(ctx context.Context, owner uuid.UUID, limit int) ([]query.CategoryTotal, error) {
	var rows []struct {
		Category string
		Total    decimal.Decimal
		TxCount  int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Select("category, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS tx_count").
		Where("user_id = ?", owner).
		Group("category").
		Order("total DESC").
		Order("category ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]query.CategoryTotal, 0, len(rows))
	for _, row := range rows {
		out = append(out, query.CategoryTotal{
			Category: row.Category,
			Amount:   roundCents(row.Total),
			Count:    row.TxCount,
		})
	}
	return out, nil
}

// AmountsSince projects (date, type, amount) of owner's transactions dated at or after since.
func (r *transactionRepository) AmountsSince(ctx context.Context, owner uuid.UUID, since time.Time) ([]query.AmountRow, error) {
	rows := make([]query.AmountRow, 0)
	err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Select("date, type, amount").
		Where("user_id = ? AND date >= ?", owner, since.UTC()).
		Order("date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// filterScope applies f, owner first. Empty fields add no predicate.
func filterScope(f query.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("user_id = ?", f.OwnerID)
		if f.From != nil {
			db = db.Where("date >= ?", f.From.UTC())
		}
		if f.To != nil {
			db = db.Where("date <= ?", f.To.UTC())
		}
		if f.MinAmount != nil {
			db = db.Where("amount >= ?", *f.MinAmount)
		}
		if f.MaxAmount != nil {
			db = db.Where("amount <= ?", *f.MaxAmount)
		}
		if f.Category != "" {
			db = db.Where("category = ?", f.Category)
		}
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		if f.Type != "" {
			db = db.Where("type = ?", f.Type)
		}
		if f.Search != "" {
			pattern := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
			db = db.Where("(LOWER(description) LIKE ? ESCAPE '!' OR LOWER(category) LIKE ? ESCAPE '!')", pattern, pattern)
		}
		return db
	}
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// roundCents drops float noise some drivers introduce when summing decimal columns.
func roundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
