package service

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one entry of a bank-exported import file.
type Record struct {
	Amount    json.Number   `json:"amount"`
	Category  *string       `json:"category"`
	Cleared   Truthy        `json:"cleared"`
	Date      string        `json:"date"`
	Memo      *string       `json:"memo"`
	Num       *string       `json:"num"`
	Payee     *string       `json:"payee"`
	ToAccount *string       `json:"to_account"`
	Splits    []SplitRecord `json:"splits"`
}

// SplitRecord is one leg of a split import record. The legs' amounts sum
// to the parent record's amount; the exporter arranges that, not us.
type SplitRecord struct {
	Amount    json.Number `json:"amount"`
	Category  *string     `json:"category"`
	Memo      *string     `json:"memo"`
	ToAccount *string     `json:"to_account"`
}

// Truthy is a JSON field that may arrive as a bool, a number, a string or
// be absent entirely. Banks are not consistent about the cleared flag.
type Truthy bool

func (t *Truthy) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	switch s {
	case "null", "false", "0", `""`, `"false"`, `"0"`:
		*t = false
		return nil
	}
	*t = true
	return nil
}

// AmountValue returns the record amount as an exact decimal.
func (r Record) AmountValue() (decimal.Decimal, error) {
	return parseAmount(r.Amount)
}

// AmountValue returns the split amount as an exact decimal.
func (r SplitRecord) AmountValue() (decimal.Decimal, error) {
	return parseAmount(r.Amount)
}

func parseAmount(n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, fmt.Errorf("missing amount")
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", n, err)
	}
	return d, nil
}

// ParseImportFile decodes the JSON array of import records.
func ParseImportFile(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode import file: %w", err)
	}
	return records, nil
}

// ParseDate parses a date-only field ("2006-01-02" or "2006/01/02") at
// fixed local noon in loc. Stored rows were written the same way, so
// equality survives re-imports.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	sep := "-"
	if strings.Contains(s, "/") {
		sep = "/"
	}
	layout := strings.Join([]string{"2006", "01", "02"}, sep)
	d, err := time.ParseInLocation(layout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return noon(d.Year(), d.Month(), d.Day(), loc), nil
}
