package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nathanj/homeledger/internal/database/repository"
)

// SplitResolver expands one imported record into a split group: a parent
// carrying the total (and no category) plus one child per split leg. The
// legs' amounts already sum to the parent amount in any well-formed export;
// no re-derivation happens here.
type SplitResolver struct {
	Categories CategoryStore
	Accounts   AccountStore
}

// Resolve builds the children for parent from records. A split that names
// a category or counter-account that does not exist is a fatal lookup
// error; the caller abandons the rest of the file. Children inherit the
// parent's date and account.
func (s *SplitResolver) Resolve(ctx context.Context, parent repository.Transaction, records []SplitRecord) ([]repository.Transaction, error) {
	children := make([]repository.Transaction, 0, len(records))
	for i, rec := range records {
		amount, err := rec.AmountValue()
		if err != nil {
			return nil, fmt.Errorf("split %d: %w", i, err)
		}
		child := repository.Transaction{
			ID:        uuid.NewString(),
			AccountID: parent.AccountID,
			Amount:    amount,
			Date:      parent.Date,
		}

		var categoryName, accountName string
		if rec.ToAccount != nil && *rec.ToAccount != "" {
			a, err := s.Accounts.FindByName(ctx, *rec.ToAccount)
			if err != nil {
				return nil, fmt.Errorf("split %d: lookup account %q: %w", i, *rec.ToAccount, err)
			}
			if a == nil {
				return nil, fmt.Errorf("split %d: transfer account %q: %w", i, *rec.ToAccount, ErrUnresolvedReference)
			}
			child.TransferAccountID = &a.ID
			accountName = a.Name
		}
		if rec.Category != nil && *rec.Category != "" {
			c, err := s.Categories.FindByName(ctx, *rec.Category)
			if err != nil {
				return nil, fmt.Errorf("split %d: lookup category %q: %w", i, *rec.Category, err)
			}
			if c == nil {
				return nil, fmt.Errorf("split %d: category %q: %w", i, *rec.Category, ErrUnresolvedReference)
			}
			child.CategoryID = &c.ID
			categoryName = c.Name
		}

		switch {
		case rec.Memo != nil && *rec.Memo != "":
			child.Description = *rec.Memo
		case categoryName != "":
			child.Description = categoryName
		case accountName != "":
			child.Description = accountName
		}

		children = append(children, child)
	}
	return children, nil
}

// Persist writes the group in one transaction: the parent and each child
// with its parent reference set commit together, so a failure leaves no
// half-written group behind. The parent never carries a category.
func (s *SplitResolver) Persist(ctx context.Context, store TransactionStore, parent repository.Transaction, children []repository.Transaction) error {
	parent.CategoryID = nil
	for i := range children {
		children[i].ParentID = &parent.ID
	}
	if err := store.InsertGroup(ctx, parent, children); err != nil {
		return fmt.Errorf("insert split group: %w", err)
	}
	return nil
}
