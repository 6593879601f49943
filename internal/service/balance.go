package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nathanj/homeledger/internal/database/repository"
)

// BalanceCalculator aggregates account balances. Only top-level rows count
// toward a balance; split children would double what their parent already
// carries.
type BalanceCalculator struct {
	Transactions TransactionStore
}

// CurrentBalance returns the sum over all top-level transactions of the
// account. An account with no transactions has a zero balance.
func (b *BalanceCalculator) CurrentBalance(ctx context.Context, account repository.ExternalAccount) (decimal.Decimal, error) {
	sum, err := b.Transactions.SumTopLevel(ctx, account.ID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum balance: %w", err)
	}
	return sum, nil
}

// HistoryEntry pairs a transaction with the running balance at that row.
type HistoryEntry struct {
	Txn     repository.Transaction
	Balance decimal.Decimal
}

// RecentHistory returns the newest count transactions (split children
// included) with a running balance per row, computed by starting at the
// current total and subtracting each amount in display order.
func (b *BalanceCalculator) RecentHistory(ctx context.Context, account repository.ExternalAccount, count int) ([]HistoryEntry, error) {
	balance, err := b.Transactions.SumTopLevel(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("sum balance: %w", err)
	}
	rows, err := b.Transactions.Recent(ctx, account.ID, count)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}

	out := make([]HistoryEntry, 0, len(rows))
	for _, t := range rows {
		out = append(out, HistoryEntry{Txn: t, Balance: balance})
		balance = balance.Sub(t.Amount)
	}
	return out, nil
}
