package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func validInput() TransactionInput {
	return TransactionInput{
		Description: "  Coffee ",
		Amount:      decimal.RequireFromString("-4.50"),
		Type:        TransactionTypeExpense,
		Category:    "Food",
		Date:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Tags:        []string{" morning ", ""},
	}
}

func TestNewTransaction_Normalizes(t *testing.T) {
	owner := uuid.New()

	tx, err := NewTransaction(owner, validInput())
	require.NoError(t, err)

	assert.Equal(t, owner, tx.UserID)
	assert.Equal(t, "Coffee", tx.Description)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("4.5")), "amount stored as magnitude")
	assert.True(t, tx.SignedAmount().Equal(decimal.RequireFromString("-4.5")))
	assert.Equal(t, TransactionStatusPaid, tx.Status)
	assert.Equal(t, []string{"morning"}, tx.Tags)
}

func TestTransactionApply_Invariants(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TransactionInput)
		wantErr string
	}{
		{"empty description", func(in *TransactionInput) { in.Description = "   " }, "description is required"},
		{"long description", func(in *TransactionInput) { in.Description = strings.Repeat("x", 501) }, "cannot exceed 500"},
		{"empty category", func(in *TransactionInput) { in.Category = "" }, "category is required"},
		{"bad type", func(in *TransactionInput) { in.Type = "transfer" }, "type must be"},
		{"bad status", func(in *TransactionInput) { in.Status = "completed" }, "status must be"},
		{"zero date", func(in *TransactionInput) { in.Date = time.Time{} }, "date is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original, err := NewTransaction(uuid.New(), validInput())
			require.NoError(t, err)
			before := *original

			in := validInput()
			tt.mutate(&in)
			err = original.Apply(in)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, before, *original, "failed Apply must not mutate")
		})
	}
}

func TestTransactionJSON_AmountIsNumber(t *testing.T) {
	tx, err := NewTransaction(uuid.New(), validInput())
	require.NoError(t, err)

	raw, err := json.Marshal(tx)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"amount":4.5`)
}

func TestUserPassword(t *testing.T) {
	u := &User{}
	require.NoError(t, u.SetPassword("Secret1", bcrypt.MinCost))

	assert.NotEqual(t, "Secret1", u.PasswordHash)
	assert.True(t, u.ComparePassword("Secret1"))
	assert.False(t, u.ComparePassword("Secret2"))

	raw, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), u.PasswordHash)
}

func TestUserResetToken(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	u := &User{}

	assert.False(t, u.ResetTokenValid("abc", now))

	u.IssueResetToken("abc", now)
	require.NotNil(t, u.ResetPasswordExpires)
	assert.Equal(t, now.Add(time.Hour), *u.ResetPasswordExpires)

	assert.True(t, u.ResetTokenValid("abc", now.Add(59*time.Minute)))
	assert.False(t, u.ResetTokenValid("abd", now))
	assert.False(t, u.ResetTokenValid("abc", now.Add(time.Hour)), "expires exactly one hour after issue")

	u.ClearResetToken()
	assert.False(t, u.ResetTokenValid("abc", now))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
}
