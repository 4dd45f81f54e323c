package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// The dashboard client expects numeric amounts, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// MaxDescriptionLength bounds Transaction.Description.
const MaxDescriptionLength = 500

// TransactionType tells income from expense. Amounts are stored unsigned and
// the type carries the sign.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Valid reports whether t is a known type.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// TransactionStatus represents the settlement status of a transaction.
type TransactionStatus string

const (
	TransactionStatusPaid    TransactionStatus = "paid"
	TransactionStatusPending TransactionStatus = "pending"
)

// Valid reports whether s is a known status.
func (s TransactionStatus) Valid() bool {
	return s == TransactionStatusPaid || s == TransactionStatusPending
}

// Transaction is a single income or expense entry owned by one user.
type Transaction struct {
	ID          uuid.UUID         `json:"_id" gorm:"type:char(36);primaryKey"`
	UserID      uuid.UUID         `json:"userId" gorm:"type:char(36);not null;index;index:idx_tx_user_date,priority:1;index:idx_tx_user_category,priority:1;index:idx_tx_user_type,priority:1;index:idx_tx_user_status,priority:1"`
	Description string            `json:"description" gorm:"size:500;not null"`
	Amount      decimal.Decimal   `json:"amount" gorm:"type:decimal(20,2);not null"`
	Type        TransactionType   `json:"type" gorm:"type:varchar(20);not null;index:idx_tx_user_type,priority:2"`
	Category    string            `json:"category" gorm:"size:100;not null;index:idx_tx_user_category,priority:2"`
	Status      TransactionStatus `json:"status" gorm:"type:varchar(20);not null;default:'paid';index:idx_tx_user_status,priority:2"`
	Date        time.Time         `json:"date" gorm:"not null;index:idx_tx_user_date,priority:2,sort:desc"`
	Tags        []string          `json:"tags" gorm:"serializer:json"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TransactionInput carries the mutable fields of a transaction.
type TransactionInput struct {
	Description string
	Amount      decimal.Decimal
	Type        TransactionType
	Category    string
	Status      TransactionStatus
	Date        time.Time
	Tags        []string
}

// NewTransaction builds a transaction for owner from input, enforcing entity invariants.
func NewTransaction(owner uuid.UUID, in TransactionInput) (*Transaction, error) {
	t := &Transaction{UserID: owner}
	if err := t.Apply(in); err != nil {
		return nil, err
	}
	return t, nil
}

// Apply replaces the mutable fields with in, normalizing and validating them.
// On error t is left unchanged.
func (t *Transaction) Apply(in TransactionInput) error {
	next := *t
	next.Description = strings.TrimSpace(in.Description)
	next.Amount = in.Amount.Abs()
	next.Type = in.Type
	next.Category = strings.TrimSpace(in.Category)
	next.Status = in.Status
	if next.Status == "" {
		next.Status = TransactionStatusPaid
	}
	next.Date = in.Date.UTC()
	next.Tags = normalizeTags(in.Tags)

	if err := next.Validate(); err != nil {
		return err
	}
	*t = next
	return nil
}

// Validate checks the entity invariants.
func (t *Transaction) Validate() error {
	switch {
	case t.UserID == uuid.Nil:
		return fmt.Errorf("transaction must have an owner")
	case t.Description == "":
		return fmt.Errorf("description is required")
	case len([]rune(t.Description)) > MaxDescriptionLength:
		return fmt.Errorf("description cannot exceed %d characters", MaxDescriptionLength)
	case t.Category == "":
		return fmt.Errorf("category is required")
	case !t.Type.Valid():
		return fmt.Errorf("type must be income or expense")
	case !t.Status.Valid():
		return fmt.Errorf("status must be paid or pending")
	case t.Date.IsZero():
		return fmt.Errorf("date is required")
	case t.Amount.IsNegative():
		return fmt.Errorf("amount cannot be negative")
	}
	return nil
}

// SignedAmount returns the amount with the sign implied by its type.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionTypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
