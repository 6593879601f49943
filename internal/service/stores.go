package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nathanj/homeledger/internal/database/repository"
)

// ErrUnresolvedReference is returned when a name given explicitly in an
// import record (inside a split) has no stored entity. It aborts the rest
// of the file rather than silently dropping a split leg.
var ErrUnresolvedReference = errors.New("unresolved reference")

// ErrInvalidChoice is returned for a decision the current step cannot
// accept (bad index, wrong action). The step stays pending.
var ErrInvalidChoice = errors.New("invalid choice")

// CategoryStore is the slice of the category repository the services need.
type CategoryStore interface {
	FindByName(ctx context.Context, name string) (*repository.Category, error)
	FindByNameContains(ctx context.Context, substr string) ([]repository.Category, error)
	Insert(ctx context.Context, c repository.Category) error
	Update(ctx context.Context, c repository.Category) error
}

// AccountStore is the slice of the account repository the services need.
type AccountStore interface {
	FindByName(ctx context.Context, name string) (*repository.ExternalAccount, error)
	FindByNameContains(ctx context.Context, substr string) ([]repository.ExternalAccount, error)
	Get(ctx context.Context, id string) (*repository.ExternalAccount, error)
	Insert(ctx context.Context, a repository.ExternalAccount) error
	List(ctx context.Context) ([]repository.ExternalAccount, error)
}

// TransactionStore is the slice of the transaction repository the services
// need.
type TransactionStore interface {
	Insert(ctx context.Context, t repository.Transaction) error
	InsertGroup(ctx context.Context, parent repository.Transaction, children []repository.Transaction) error
	InsertPair(ctx context.Context, first, second repository.Transaction) error
	Update(ctx context.Context, t repository.Transaction) error
	Get(ctx context.Context, id string) (*repository.Transaction, error)
	FindMatches(ctx context.Context, q repository.MatchQuery) ([]repository.Transaction, error)
	SumTopLevel(ctx context.Context, accountID string) (decimal.Decimal, error)
	Recent(ctx context.Context, accountID string, limit int) ([]repository.Transaction, error)
	Search(ctx context.Context, query string) ([]repository.Transaction, error)
	NextNum(ctx context.Context, accountID string) (string, error)
}

// noon pins a date-only value to midday so that small clock skews between
// statement export and entry never push a transaction across a day
// boundary.
func noon(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, loc)
}
