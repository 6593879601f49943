package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/nathanj/homeledger/internal/database"
	"github.com/nathanj/homeledger/internal/database/repository"
)

// importZone mirrors the default fixed offset used for date-only parsing.
var importZone = time.FixedZone("import", 8*60*60)

type testStores struct {
	categories   *repository.CategoryRepo
	accounts     *repository.AccountRepo
	transactions *repository.TransactionRepo
}

func newTestStores(t *testing.T) testStores {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, database.RunMigrations(dbPath))

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return testStores{
		categories:   repository.NewCategoryRepo(db),
		accounts:     repository.NewAccountRepo(db),
		transactions: repository.NewTransactionRepo(db),
	}
}

func (s testStores) account(t *testing.T, name string) repository.ExternalAccount {
	t.Helper()
	a := repository.ExternalAccount{ID: uuid.NewString(), Name: name}
	require.NoError(t, s.accounts.Insert(context.Background(), a))
	return a
}

func (s testStores) category(t *testing.T, name string) repository.Category {
	t.Helper()
	c := repository.Category{ID: uuid.NewString(), Name: name}
	require.NoError(t, s.categories.Insert(context.Background(), c))
	return c
}

func (s testStores) transaction(t *testing.T, acct repository.ExternalAccount, amount string, date time.Time, mutate func(*repository.Transaction)) repository.Transaction {
	t.Helper()
	d, err := decimal.NewFromString(amount)
	require.NoError(t, err)
	txn := repository.Transaction{
		ID:        uuid.NewString(),
		AccountID: acct.ID,
		Amount:    d,
		Date:      date,
	}
	if mutate != nil {
		mutate(&txn)
	}
	require.NoError(t, s.transactions.Insert(context.Background(), txn))
	return txn
}

func (s testStores) matcher() *Matcher {
	return &Matcher{
		Transactions: s.transactions,
		Categories:   s.categories,
		Accounts:     s.accounts,
		ImportZone:   importZone,
	}
}

func (s testStores) session(acct repository.ExternalAccount, records []Record) *Session {
	return NewSession(acct, records,
		s.matcher(),
		&SplitResolver{Categories: s.categories, Accounts: s.accounts},
		&TemplateSearch{Transactions: s.transactions},
		s.transactions,
	)
}

func strptr(s string) *string { return &s }

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func dayAt(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, importZone)
}
