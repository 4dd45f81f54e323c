package query

import (
	"strconv"
	"strings"

	apperrors "findash/internal/errors"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	// MaxLimit caps the page size a client may request.
	MaxLimit = 100
	// MaxPage keeps Offset well inside int range.
	MaxPage = 1_000_000
)

// sortColumns maps API sort fields to columns; anything else is rejected.
var sortColumns = map[string]string{
	"date":        "date",
	"amount":      "amount",
	"category":    "category",
	"description": "description",
	"status":      "status",
	"type":        "type",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

// Pagination is a validated page request.
type Pagination struct {
	Page       int
	Limit      int
	SortColumn string
	Desc       bool
}

// Offset returns the number of rows to skip.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// OrderClause renders the ORDER BY expression. Column names only ever come from sortColumns.
func (p Pagination) OrderClause() string {
	if p.Desc {
		return p.SortColumn + " DESC"
	}
	return p.SortColumn + " ASC"
}

// PageParams is the raw paging shape of list requests.
type PageParams struct {
	Page      string `query:"page"`
	Limit     string `query:"limit"`
	SortBy    string `query:"sortBy"`
	SortOrder string `query:"sortOrder"`
}

// ParsePagination validates p, applying defaults and clamping page and limit
// to MaxPage and MaxLimit.
func ParsePagination(p PageParams) (Pagination, error) {
	out := Pagination{Page: DefaultPage, Limit: DefaultLimit, SortColumn: "date", Desc: true}

	if s := strings.TrimSpace(p.Page); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Pagination{}, apperrors.Validation("page must be a number")
		}
		switch {
		case n > MaxPage:
			out.Page = MaxPage
		case n > 1:
			out.Page = n
		}
	}
	if s := strings.TrimSpace(p.Limit); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Pagination{}, apperrors.Validation("limit must be a number")
		}
		switch {
		case n > MaxLimit:
			out.Limit = MaxLimit
		case n >= 1:
			out.Limit = n
		}
	}
	if s := strings.TrimSpace(p.SortBy); s != "" {
		col, ok := sortColumns[s]
		if !ok {
			return Pagination{}, apperrors.Validation("cannot sort by %q", s)
		}
		out.SortColumn = col
	}
	switch strings.ToLower(strings.TrimSpace(p.SortOrder)) {
	case "", "desc":
		out.Desc = true
	case "asc":
		out.Desc = false
	default:
		return Pagination{}, apperrors.Validation("sortOrder must be asc or desc")
	}
	return out, nil
}

// TotalPages returns ceil(total / limit).
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
