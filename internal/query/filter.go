// Package query turns user-supplied transaction criteria into owner-scoped
// filters, paginates them and reduces aggregated rows for the dashboard.
package query

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "findash/internal/errors"
	"findash/internal/model"
)

// Criteria is the raw filter shape accepted by list and export requests.
type Criteria struct {
	StartDate string `json:"startDate" query:"startDate"`
	EndDate   string `json:"endDate" query:"endDate"`
	MinAmount string `json:"minAmount" query:"minAmount"`
	MaxAmount string `json:"maxAmount" query:"maxAmount"`
	Category  string `json:"category" query:"category"`
	Status    string `json:"status" query:"status"`
	Type      string `json:"type" query:"type"`
	Search    string `json:"search" query:"search"`
}

// Filter is a parsed predicate over one owner's transactions. Nil or empty
// fields are not applied.
type Filter struct {
	OwnerID   uuid.UUID
	From      *time.Time
	To        *time.Time
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	Category  string
	Status    model.TransactionStatus
	Type      model.TransactionType
	Search    string
}

// OwnerFilter matches every transaction of owner.
func OwnerFilter(owner uuid.UUID) Filter {
	return Filter{OwnerID: owner}
}

// BuildFilter parses c into a Filter scoped to owner.
func BuildFilter(c Criteria, owner uuid.UUID) (Filter, error) {
	if owner == uuid.Nil {
		return Filter{}, apperrors.Validation("owner is required")
	}
	f := Filter{OwnerID: owner}

	if s := strings.TrimSpace(c.StartDate); s != "" {
		from, _, err := ParseDate(s)
		if err != nil {
			return Filter{}, apperrors.Validation("invalid startDate")
		}
		f.From = &from
	}
	if s := strings.TrimSpace(c.EndDate); s != "" {
		to, dateOnly, err := ParseDate(s)
		if err != nil {
			return Filter{}, apperrors.Validation("invalid endDate")
		}
		if dateOnly {
			// A bare end date includes the whole day.
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		f.To = &to
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return Filter{}, apperrors.Validation("endDate must not be before startDate")
	}

	if s := strings.TrimSpace(c.MinAmount); s != "" {
		v, err := decimal.NewFromString(s)
		if err != nil {
			return Filter{}, apperrors.Validation("invalid minAmount")
		}
		f.MinAmount = &v
	}
	if s := strings.TrimSpace(c.MaxAmount); s != "" {
		v, err := decimal.NewFromString(s)
		if err != nil {
			return Filter{}, apperrors.Validation("invalid maxAmount")
		}
		f.MaxAmount = &v
	}

	f.Category = strings.TrimSpace(c.Category)

	if s := strings.TrimSpace(c.Status); s != "" {
		f.Status = model.TransactionStatus(s)
		if !f.Status.Valid() {
			return Filter{}, apperrors.Validation("status must be paid or pending")
		}
	}
	if s := strings.TrimSpace(c.Type); s != "" {
		f.Type = model.TransactionType(s)
		if !f.Type.Valid() {
			return Filter{}, apperrors.Validation("type must be income or expense")
		}
	}

	f.Search = strings.TrimSpace(c.Search)
	return f, nil
}

var dateTimeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"}

// ParseDate accepts YYYY-MM-DD or an RFC3339 timestamp and returns the UTC
// instant. dateOnly is true for the bare date form.
func ParseDate(s string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.ParseInLocation("2006-01-02", s, time.UTC); err == nil {
		return t, true, nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err = time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), false, nil
		}
	}
	return time.Time{}, false, err
}
