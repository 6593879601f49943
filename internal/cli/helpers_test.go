package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/nathanj/homeledger/internal/config"
	"github.com/nathanj/homeledger/internal/database"
	"github.com/nathanj/homeledger/internal/database/repository"
)

var testZone = time.FixedZone("import", 8*60*60)

func newTestApp(t *testing.T) *app {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, database.RunMigrations(dbPath))
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{
		Database: config.DatabaseConfig{Path: dbPath},
		Import:   config.ImportConfig{UTCOffsetMinutes: 8 * 60},
		UI:       config.UIConfig{CurrencySymbol: "$", HistoryCount: 10},
	}
	return newApp(cfg, db)
}

// scriptPrompter feeds canned input lines and captures everything printed.
func scriptPrompter(lines ...string) (*Prompter, *bytes.Buffer) {
	var in io.Reader = strings.NewReader(strings.Join(lines, "\n") + "\n")
	out := &bytes.Buffer{}
	return NewPrompter(in, out), out
}

func (a *app) testAccount(t *testing.T, name string) repository.ExternalAccount {
	t.Helper()
	acct := repository.ExternalAccount{ID: uuid.NewString(), Name: name}
	require.NoError(t, a.accounts.Insert(context.Background(), acct))
	return acct
}

func (a *app) testTransaction(t *testing.T, acct repository.ExternalAccount, amount string, date time.Time, mutate func(*repository.Transaction)) repository.Transaction {
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
	require.NoError(t, a.transactions.Insert(context.Background(), txn))
	return txn
}

func testDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, testZone)
}
