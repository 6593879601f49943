package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nathanj/homeledger/internal/database/repository"
)

// TemplateSearch finds historical transactions to clone as the starting
// point for a new one.
type TemplateSearch struct {
	Transactions TransactionStore
}

// Search matches query as a substring of the descriptive fields and
// orders the results by edit distance between the query and the
// description, closest first.
func (s *TemplateSearch) Search(ctx context.Context, query string) ([]repository.Transaction, error) {
	rows, err := s.Transactions.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search transactions: %w", err)
	}
	q := strings.ToUpper(query)
	sort.SliceStable(rows, func(i, j int) bool {
		di := levenshtein.ComputeDistance(q, strings.ToUpper(rows[i].Description))
		dj := levenshtein.ComputeDistance(q, strings.ToUpper(rows[j].Description))
		return di < dj
	})
	return rows, nil
}

// CloneFromTemplate builds a new transaction from template, substituting
// the account, date and amount from the incoming context and copying the
// descriptive fields verbatim. A numbered template gets the account's next
// free check number.
func (s *TemplateSearch) CloneFromTemplate(ctx context.Context, template repository.Transaction, account repository.ExternalAccount, date time.Time, amount decimal.Decimal) (repository.Transaction, error) {
	t := repository.Transaction{
		ID:          uuid.NewString(),
		AccountID:   account.ID,
		Description: template.Description,
		Amount:      amount,
		Date:        date,
		Notes:       template.Notes,
		CategoryID:  template.CategoryID,
	}
	if template.Num != nil {
		num, err := s.Transactions.NextNum(ctx, account.ID)
		if err != nil {
			return repository.Transaction{}, fmt.Errorf("next check number: %w", err)
		}
		t.Num = &num
	}
	return t, nil
}
