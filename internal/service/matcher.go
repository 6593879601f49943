package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nathanj/homeledger/internal/database/repository"
)

// matchWindowDays bounds the date distance for amount-only matching.
// The window is exclusive: a row dated exactly seven days away is not a
// match.
const matchWindowDays = 7

// Matcher decides whether an incoming record corresponds to an existing
// stored transaction.
type Matcher struct {
	Transactions TransactionStore
	Categories   CategoryStore
	Accounts     AccountStore

	// ImportZone is the fixed offset applied to date-only import fields.
	ImportZone *time.Location
}

// BuildCandidate constructs the in-memory, never-yet-persisted transaction
// an import record describes. Category and transfer-account names resolve
// by exact lookup; at this level an unknown name simply leaves the
// reference unset.
func (m *Matcher) BuildCandidate(ctx context.Context, account repository.ExternalAccount, rec Record) (repository.Transaction, error) {
	amount, err := rec.AmountValue()
	if err != nil {
		return repository.Transaction{}, err
	}
	date, err := ParseDate(rec.Date, m.ImportZone)
	if err != nil {
		return repository.Transaction{}, err
	}

	t := repository.Transaction{
		ID:         uuid.NewString(),
		AccountID:  account.ID,
		Amount:     amount,
		Date:       date,
		Reconciled: bool(rec.Cleared),
	}
	if rec.Num != nil && strings.TrimSpace(*rec.Num) != "" {
		num := strings.TrimSpace(*rec.Num)
		t.Num = &num
	}

	if rec.Category != nil && *rec.Category != "" {
		c, err := m.Categories.FindByName(ctx, *rec.Category)
		if err != nil {
			return repository.Transaction{}, fmt.Errorf("lookup category %q: %w", *rec.Category, err)
		}
		if c != nil {
			t.CategoryID = &c.ID
		}
	}

	var transfer *repository.ExternalAccount
	if rec.ToAccount != nil && *rec.ToAccount != "" {
		a, err := m.Accounts.FindByName(ctx, *rec.ToAccount)
		if err != nil {
			return repository.Transaction{}, fmt.Errorf("lookup account %q: %w", *rec.ToAccount, err)
		}
		if a != nil {
			t.TransferAccountID = &a.ID
			transfer = a
		}
	}

	t.Description = candidateDescription(rec, transfer, amount)
	return t, nil
}

// candidateDescription picks the payee, then the memo, then synthesizes a
// transfer label when the record names a counter-account and carries no
// text of its own.
func candidateDescription(rec Record, transfer *repository.ExternalAccount, amount decimal.Decimal) string {
	if rec.Payee != nil && *rec.Payee != "" {
		return *rec.Payee
	}
	if rec.Memo != nil && *rec.Memo != "" {
		return *rec.Memo
	}
	if transfer != nil {
		if amount.IsNegative() {
			return "Transfer to " + transfer.Name
		}
		return "Transfer from " + transfer.Name
	}
	return ""
}

// Find builds the candidate for rec and returns it with the stored
// transactions that could be the same event. Rows whose id is in excluded
// were claimed earlier in the batch and never match again.
//
// With a reference number the match is exact on amount+num+account.
// Without one it is amount+account with the date strictly inside a
// ±7-day window.
func (m *Matcher) Find(ctx context.Context, account repository.ExternalAccount, rec Record, excluded map[string]struct{}) (repository.Transaction, []repository.Transaction, error) {
	cand, err := m.BuildCandidate(ctx, account, rec)
	if err != nil {
		return repository.Transaction{}, nil, err
	}

	q := repository.MatchQuery{
		AccountID: account.ID,
		Amount:    cand.Amount,
		Num:       cand.Num,
	}
	if cand.Num == nil {
		q.After = cand.Date.AddDate(0, 0, -matchWindowDays)
		q.Before = cand.Date.AddDate(0, 0, matchWindowDays)
	}

	rows, err := m.Transactions.FindMatches(ctx, q)
	if err != nil {
		return repository.Transaction{}, nil, fmt.Errorf("find matches: %w", err)
	}

	var matches []repository.Transaction
	for _, r := range rows {
		if _, claimed := excluded[r.ID]; claimed {
			continue
		}
		matches = append(matches, r)
	}
	return cand, matches, nil
}
