package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nathanj/homeledger/internal/database/repository"
)

func TestSessionImportWithSplitsCreatesGroup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStores(t)
	acct := s.account(t, "checking")
	dest := s.account(t, "dummy2")
	charges := s.category(t, "Bank Charges")

	records := []Record{{
		Amount:  "-61.5",
		Payee:   strptr("ATM Withdrawal"),
		Date:    "1999-10-23",
		Cleared: true,
		Splits: []SplitRecord{
			{Amount: "-61.0", ToAccount: strptr("dummy2")},
			{Amount: "-0.5", Category: strptr("Bank Charges")},
		},
	}}
	sess := s.session(acct, records)

	step, err := sess.Next(ctx)
	require.NoError(t, err)
	require.NotNil(t, step)
	require.Empty(t, step.Matches)
	require.Equal(t, "ATM Withdrawal", step.Candidate.Description)

	out, err := sess.Apply(ctx, Decision{Action: ActionNew})
	require.NoError(t, err)
	require.Len(t, out.Created, 3)

	step, err = sess.Next(ctx)
	require.NoError(t, err)
	require.Nil(t, step)

	rows, err := s.transactions.Recent(ctx, acct.ID, 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	var parents, transfers, categorized int
	for _, row := range rows {
		switch {
		case row.ParentID == nil:
			parents++
			require.Nil(t, row.CategoryID)
			require.Equal(t, "-61.500", row.Amount.StringFixed(3))
		case row.TransferAccountID != nil:
			transfers++
			require.Equal(t, dest.ID, *row.TransferAccountID)
			require.Equal(t, "-61.000", row.Amount.StringFixed(3))
		default:
			categorized++
			require.Equal(t, charges.ID, *row.CategoryID)
			require.Equal(t, "-0.500", row.Amount.StringFixed(3))
		}
	}
	require.Equal(t, 1, parents)
	require.Equal(t, 1, transfers)
	require.Equal(t, 1, categorized)
}

func TestSessionClaimPreventsDoubleMatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStores(t)
	acct := s.account(t, "checking")

	stored := s.transaction(t, acct, "-20", dayAt(2020, time.January, 15), nil)

	// Two near-identical records; only one may claim the stored row.
	records := []Record{
		{Amount: "-20", Date: "2020-01-15", Payee: strptr("Cafe")},
		{Amount: "-20", Date: "2020-01-16", Payee: strptr("Cafe")},
	}
	sess := s.session(acct, records)

	step, err := sess.Next(ctx)
	require.NoError(t, err)
	require.Len(t, step.Matches, 1)
	require.Equal(t, stored.ID, step.Matches[0].ID)

	out, err := sess.Apply(ctx, Decision{Action: ActionReconcile, Index: 0})
	require.NoError(t, err)
	require.NotNil(t, out.Reconciled)
	require.True(t, out.Reconciled.Reconciled)

	step, err = sess.Next(ctx)
	require.NoError(t, err)
	require.NotNil(t, step)
	require.Empty(t, step.Matches)
}

func TestSessionIgnoreClaimsWithoutWriting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStores(t)
	acct := s.account(t, "checking")

	stored := s.transaction(t, acct, "-20", dayAt(2020, time.January, 15), nil)

	records := []Record{
		{Amount: "-20", Date: "2020-01-15"},
		{Amount: "-20", Date: "2020-01-15"},
	}
	sess := s.session(acct, records)

	step, err := sess.Next(ctx)
	require.NoError(t, err)
	require.Len(t, step.Matches, 1)

	out, err := sess.Apply(ctx, Decision{Action: ActionIgnore, Index: 0})
	require.NoError(t, err)
	require.Nil(t, out.Reconciled)
	require.Empty(t, out.Created)

	got, err := s.transactions.Get(ctx, stored.ID)
	require.NoError(t, err)
	require.False(t, got.Reconciled)

	// The ignored row is still claimed for the rest of the batch.
	step, err = sess.Next(ctx)
	require.NoError(t, err)
	require.Empty(t, step.Matches)
}

func TestSessionAutoConfirmsSingleReconciledMatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStores(t)
	acct := s.account(t, "checking")

	stored := s.transaction(t, acct, "-20", dayAt(2020, time.January, 15), func(txn *repository.Transaction) {
		txn.Reconciled = true
	})

	records := []Record{
		{Amount: "-20", Date: "2020-01-15"},
		{Amount: "-20", Date: "2020-01-15"},
	}
	sess := s.session(acct, records)

	step, err := sess.Next(ctx)
	require.NoError(t, err)
	require.True(t, step.AutoConfirmed)
	require.Equal(t, stored.ID, step.Matches[0].ID)

	// No decision needed; the next record cannot see the claimed row.
	step, err = sess.Next(ctx)
	require.NoError(t, err)
	require.False(t, step.AutoConfirmed)
	require.Empty(t, step.Matches)
}

func TestSessionInvalidChoiceKeepsStepPending(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStores(t)
	acct := s.account(t, "checking")

	s.transaction(t, acct, "-20", dayAt(2020, time.January, 15), nil)

	sess := s.session(acct, []Record{{Amount: "-20", Date: "2020-01-15"}})

	step, err := sess.Next(ctx)
	require.NoError(t, err)
	require.Len(t, step.Matches, 1)

	_, err = sess.Apply(ctx, Decision{Action: ActionReconcile, Index: 5})
	require.ErrorIs(t, err, ErrInvalidChoice)

	again, err := sess.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, step, again)

	_, err = sess.Apply(ctx, Decision{Action: ActionReconcile, Index: 0})
	require.NoError(t, err)
}

func TestSessionReconcileAlreadyReconciledIsNoop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStores(t)
	acct := s.account(t, "checking")

	// Two matches so the reconciled one is not auto-confirmed.
	done := s.transaction(t, acct, "-20", dayAt(2020, time.January, 14), func(txn *repository.Transaction) {
		txn.Reconciled = true
	})
	s.transaction(t, acct, "-20", dayAt(2020, time.January, 16), nil)

	sess := s.session(acct, []Record{{Amount: "-20", Date: "2020-01-15"}})

	step, err := sess.Next(ctx)
	require.NoError(t, err)
	require.Len(t, step.Matches, 2)

	var idx int
	for i, m := range step.Matches {
		if m.ID == done.ID {
			idx = i
		}
	}
	out, err := sess.Apply(ctx, Decision{Action: ActionReconcile, Index: idx})
	require.NoError(t, err)
	require.Nil(t, out.Reconciled)
}

func TestSessionNewAppliesOverrides(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStores(t)
	acct := s.account(t, "checking")
	cat := s.category(t, "Groceries")
	other := s.account(t, "savings")

	sess := s.session(acct, []Record{{Amount: "-30", Date: "2020-05-05"}})

	_, err := sess.Next(ctx)
	require.NoError(t, err)

	out, err := sess.Apply(ctx, Decision{Action: ActionNew, New: &NewInput{
		Category:        &cat,
		TransferAccount: &other,
		Reconciled:      true,
		Description:     "weekly shop",
		Notes:           "cash back",
	}})
	require.NoError(t, err)
	require.Len(t, out.Created, 1)

	got, err := s.transactions.Get(ctx, out.Created[0].ID)
	require.NoError(t, err)
	require.Equal(t, cat.ID, *got.CategoryID)
	require.Equal(t, other.ID, *got.TransferAccountID)
	require.True(t, got.Reconciled)
	require.Equal(t, "weekly shop", got.Description)
	require.Equal(t, "cash back", *got.Notes)
}

func TestSessionUnresolvedSplitAbortsBatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStores(t)
	acct := s.account(t, "checking")

	sess := s.session(acct, []Record{{
		Amount: "-10",
		Date:   "2020-05-05",
		Splits: []SplitRecord{{Amount: "-10", Category: strptr("No Such Category")}},
	}})

	_, err := sess.Next(ctx)
	require.NoError(t, err)

	_, err = sess.Apply(ctx, Decision{Action: ActionNew})
	require.ErrorIs(t, err, ErrUnresolvedReference)

	// Nothing was written.
	rows, err := s.transactions.Recent(ctx, acct.ID, 10)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestSessionTemplateClonesWithIncomingFields(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStores(t)
	acct := s.account(t, "checking")
	cat := s.category(t, "Utilities")

	template := s.transaction(t, acct, "-55", dayAt(2020, time.April, 1), func(txn *repository.Transaction) {
		txn.Description = "Power Co"
		txn.CategoryID = &cat.ID
	})

	sess := s.session(acct, []Record{{Amount: "-57.25", Date: "2020-05-01"}})

	_, err := sess.Next(ctx)
	require.NoError(t, err)

	out, err := sess.Apply(ctx, Decision{Action: ActionTemplate, Template: &template})
	require.NoError(t, err)
	require.Len(t, out.Created, 1)

	clone := out.Created[0]
	require.NotEqual(t, template.ID, clone.ID)
	require.Equal(t, "Power Co", clone.Description)
	require.Equal(t, cat.ID, *clone.CategoryID)
	require.Equal(t, "-57.250", clone.Amount.StringFixed(3))
	require.True(t, clone.Date.Equal(dayAt(2020, time.May, 1)))
}
