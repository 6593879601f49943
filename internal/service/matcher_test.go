package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nathanj/homeledger/internal/database/repository"
)

func TestBuildCandidateDescriptionPrecedence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStores(t)
	acct := s.account(t, "checking")
	other := s.account(t, "savings")
	m := s.matcher()

	cases := []struct {
		name string
		rec  Record
		want string
	}{
		{"payee wins", Record{Amount: "-5", Date: "2020-01-02", Payee: strptr("Cafe"), Memo: strptr("coffee")}, "Cafe"},
		{"memo next", Record{Amount: "-5", Date: "2020-01-02", Memo: strptr("coffee")}, "coffee"},
		{"transfer out", Record{Amount: "-5", Date: "2020-01-02", ToAccount: strptr("savings")}, "Transfer to savings"},
		{"transfer in", Record{Amount: "5", Date: "2020-01-02", ToAccount: strptr("savings")}, "Transfer from savings"},
		{"nothing", Record{Amount: "-5", Date: "2020-01-02"}, ""},
	}
	for _, tc := range cases {
		cand, err := m.BuildCandidate(ctx, acct, tc.rec)
		require.NoError(t, err, tc.name)
		require.Equal(t, tc.want, cand.Description, tc.name)
	}

	// Transfer reference resolves to the stored account.
	cand, err := m.BuildCandidate(ctx, acct, Record{Amount: "-5", Date: "2020-01-02", ToAccount: strptr("savings")})
	require.NoError(t, err)
	require.NotNil(t, cand.TransferAccountID)
	require.Equal(t, other.ID, *cand.TransferAccountID)
}

func TestBuildCandidateUnknownNamesAreNotFatal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStores(t)
	acct := s.account(t, "checking")
	m := s.matcher()

	cand, err := m.BuildCandidate(ctx, acct, Record{
		Amount:    "-5",
		Date:      "2020-01-02",
		Category:  strptr("No Such Category"),
		ToAccount: strptr("no-such-account"),
	})
	require.NoError(t, err)
	require.Nil(t, cand.CategoryID)
	require.Nil(t, cand.TransferAccountID)
}

func TestBuildCandidateClearedAndDate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStores(t)
	acct := s.account(t, "checking")
	m := s.matcher()

	cand, err := m.BuildCandidate(ctx, acct, Record{Amount: "-5", Date: "1999-10-23", Cleared: true})
	require.NoError(t, err)
	require.True(t, cand.Reconciled)
	require.Equal(t, time.Date(1999, time.October, 23, 12, 0, 0, 0, importZone), cand.Date.In(importZone))
}

func TestFindMatchesByNum(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStores(t)
	acct := s.account(t, "checking")
	m := s.matcher()

	// Same num and amount, a month apart: the window does not apply.
	stored := s.transaction(t, acct, "-20", dayAt(2020, time.January, 2), func(txn *repository.Transaction) {
		txn.Num = strptr("101")
	})
	s.transaction(t, acct, "-20", dayAt(2020, time.February, 2), func(txn *repository.Transaction) {
		txn.Num = strptr("102")
	})

	_, matches, err := m.Find(ctx, acct, Record{Amount: "-20", Date: "2020-02-01", Num: strptr("101")}, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, stored.ID, matches[0].ID)
}

func TestFindWindowBoundaryIsExclusive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStores(t)
	acct := s.account(t, "checking")
	m := s.matcher()

	candDate := "2020-01-15"
	s.transaction(t, acct, "-20", dayAt(2020, time.January, 8), nil)  // exactly 7 days before
	s.transaction(t, acct, "-20", dayAt(2020, time.January, 22), nil) // exactly 7 days after
	inside := s.transaction(t, acct, "-20", dayAt(2020, time.January, 9), nil)

	_, matches, err := m.Find(ctx, acct, Record{Amount: "-20", Date: candDate}, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, inside.ID, matches[0].ID)
}

func TestFindRequiresSameAccountAndAmount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStores(t)
	acct := s.account(t, "checking")
	other := s.account(t, "savings")
	m := s.matcher()

	s.transaction(t, other, "-20", dayAt(2020, time.January, 15), nil)
	s.transaction(t, acct, "-20.001", dayAt(2020, time.January, 15), nil)

	_, matches, err := m.Find(ctx, acct, Record{Amount: "-20", Date: "2020-01-15"}, nil)
	require.NoError(t, err)
	require.Empty(t, matches)
}

func TestFindHonorsExcludedSet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStores(t)
	acct := s.account(t, "checking")
	m := s.matcher()

	stored := s.transaction(t, acct, "-20", dayAt(2020, time.January, 15), nil)

	excluded := map[string]struct{}{stored.ID: {}}
	_, matches, err := m.Find(ctx, acct, Record{Amount: "-20", Date: "2020-01-15"}, excluded)
	require.NoError(t, err)
	require.Empty(t, matches)
}
