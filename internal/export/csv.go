// Package export serializes transactions to CSV.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	apperrors "findash/internal/errors"
	"findash/internal/model"
)

type columnFunc func(t *model.Transaction) string

var columns = map[string]columnFunc{
	"_id":         func(t *model.Transaction) string { return t.ID.String() },
	"id":          func(t *model.Transaction) string { return t.ID.String() },
	"description": func(t *model.Transaction) string { return t.Description },
	"amount":      func(t *model.Transaction) string { return t.Amount.String() },
	"type":        func(t *model.Transaction) string { return string(t.Type) },
	"category":    func(t *model.Transaction) string { return t.Category },
	"status":      func(t *model.Transaction) string { return string(t.Status) },
	"date":        func(t *model.Transaction) string { return t.Date.UTC().Format("2006-01-02") },
	"tags":        func(t *model.Transaction) string { return strings.Join(t.Tags, ";") },
	"createdAt":   func(t *model.Transaction) string { return t.CreatedAt.UTC().Format(time.RFC3339) },
	"updatedAt":   func(t *model.Transaction) string { return t.UpdatedAt.UTC().Format(time.RFC3339) },
}

// ValidateColumns checks that at least one column is requested and all are known.
func ValidateColumns(cols []string) error {
	if len(cols) == 0 {
		return apperrors.Validation("columns are required")
	}
	for _, c := range cols {
		if _, ok := columns[c]; !ok {
			return apperrors.Validation("unknown export column %q", c)
		}
	}
	return nil
}

// Header derives a column label by upper-casing the first letter of the id.
func Header(col string) string {
	r, size := utf8.DecodeRuneInString(col)
	if r == utf8.RuneError {
		return col
	}
	return string(unicode.ToUpper(r)) + col[size:]
}

// CSV renders one header row and one row per transaction.
func CSV(cols []string, txs []model.Transaction) ([]byte, error) {
	if err := ValidateColumns(cols); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = Header(c)
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(cols))
	for i := range txs {
		for j, c := range cols {
			record[j] = columns[c](&txs[i])
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
