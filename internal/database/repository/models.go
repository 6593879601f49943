package repository

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AmountPlaces is the fixed number of fractional digits carried by every
// transaction amount. Amounts are persisted as integer milliunits.
const AmountPlaces = 3

// Category represents a category row. Name holds the full colon-separated
// path (e.g. "Tax:Federal"); ParentID points at the row whose name is the
// path minus its last segment.
type Category struct {
	ID          string
	Name        string
	Description *string
	ParentID    *string
}

// ExternalAccount represents an account row. Names come from a closed set
// of recognized institutions, validated at construction.
type ExternalAccount struct {
	ID           string
	Name         string
	Description  string
	InterestRate *float64
	Notes        *string
}

// Transaction represents a transaction row. ParentID is set on split
// children; TransferAccountID marks one leg of an inter-account transfer.
type Transaction struct {
	ID                string
	AccountID         string
	ParentID          *string
	Description       string
	Amount            decimal.Decimal
	Date              time.Time
	Num               *string
	Notes             *string
	TransferAccountID *string
	Reconciled        bool
	CategoryID        *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsSplitParent reports whether t heads a split group: a top-level row
// with no category of its own.
func (t Transaction) IsSplitParent() bool {
	return t.ParentID == nil && t.CategoryID == nil
}

// Milli returns the amount as integer milliunits, the storage representation.
func (t Transaction) Milli() int64 {
	return t.Amount.Shift(AmountPlaces).IntPart()
}

// FromMilli converts a stored milliunit value back to a decimal amount.
func FromMilli(v int64) decimal.Decimal {
	return decimal.New(v, -AmountPlaces)
}

// knownInstitutions is the built-in closed set of account names. Extra
// names can be allowed per deployment through configuration.
var knownInstitutions = map[string]struct{}{
	"patelco":  {},
	"citibank": {},
	"chase":    {},
	"schwab":   {},
	"wells":    {},
}

// NewExternalAccount validates name against the institution set plus any
// deployment-specific allowed names and returns an unsaved account.
func NewExternalAccount(id, name, description string, allowed []string) (ExternalAccount, error) {
	if name == "" {
		return ExternalAccount{}, fmt.Errorf("account name required")
	}
	if _, ok := knownInstitutions[name]; !ok {
		found := false
		for _, a := range allowed {
			if a == name {
				found = true
				break
			}
		}
		if !found {
			return ExternalAccount{}, fmt.Errorf("account name %q is not a recognized institution", name)
		}
	}
	return ExternalAccount{ID: id, Name: name, Description: description}, nil
}
