package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nathanj/homeledger/internal/database/repository"
)

// TransferPairBuilder creates both legs of a manually entered transfer.
// Batch import deliberately creates only one leg; the counter-account's
// own export supplies the other when it is imported later.
type TransferPairBuilder struct {
	Transactions TransactionStore
}

// BuildPair returns the mirrored sibling of txn in counter: negated
// amount, same date, description, notes and category, with the transfer
// reference pointing back at txn's account.
func BuildPair(txn repository.Transaction, counter repository.ExternalAccount) repository.Transaction {
	origin := txn.AccountID
	return repository.Transaction{
		ID:                uuid.NewString(),
		AccountID:         counter.ID,
		Description:       txn.Description,
		Amount:            txn.Amount.Neg(),
		Date:              txn.Date,
		Notes:             txn.Notes,
		TransferAccountID: &origin,
		CategoryID:        txn.CategoryID,
	}
}

// Create persists txn and, when a counter-account is chosen, its mirrored
// sibling. Both legs commit in one transaction so a lone leg can never be
// left behind. It returns the persisted original and the sibling (nil
// when no counter-account was given).
func (b *TransferPairBuilder) Create(ctx context.Context, txn repository.Transaction, counter *repository.ExternalAccount) (repository.Transaction, *repository.Transaction, error) {
	if counter == nil {
		if err := b.Transactions.Insert(ctx, txn); err != nil {
			return repository.Transaction{}, nil, fmt.Errorf("insert transaction: %w", err)
		}
		return txn, nil, nil
	}
	txn.TransferAccountID = &counter.ID
	sibling := BuildPair(txn, *counter)
	if err := b.Transactions.InsertPair(ctx, txn, sibling); err != nil {
		return repository.Transaction{}, nil, fmt.Errorf("insert transfer pair: %w", err)
	}
	return txn, &sibling, nil
}
