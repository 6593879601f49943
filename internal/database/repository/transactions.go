package repository

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// MatchQuery narrows stored transactions to those that could represent the
// same real-world event as an incoming record. When Num is set the window
// is ignored and the match is exact on amount+num; otherwise the date must
// fall strictly inside (After, Before).
type MatchQuery struct {
	AccountID string
	Amount    decimal.Decimal
	Num       *string
	After     time.Time
	Before    time.Time
}

// TransactionRepo handles transactions.
type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

const txnColumns = `id, account_id, parent_id, description, amount_milli, date, num, notes, transfer_account_id, reconciled, category_id, created_at, updated_at`

func (r *TransactionRepo) Insert(ctx context.Context, t Transaction) error {
	return insertTransaction(ctx, r.db, t)
}

// InsertGroup writes a split group in one transaction: the parent and
// every child commit together or not at all. A partially written group
// would break the amount-sum relationship between parent and children.
func (r *TransactionRepo) InsertGroup(ctx context.Context, parent Transaction, children []Transaction) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if err := insertTransaction(ctx, tx, parent); err != nil {
			return err
		}
		for _, c := range children {
			if err := insertTransaction(ctx, tx, c); err != nil {
				return err
			}
		}
		return nil
	})
}

// InsertPair writes both legs of a transfer in one transaction.
func (r *TransactionRepo) InsertPair(ctx context.Context, first, second Transaction) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if err := insertTransaction(ctx, tx, first); err != nil {
			return err
		}
		return insertTransaction(ctx, tx, second)
	})
}

func (r *TransactionRepo) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// execer covers *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertTransaction(ctx context.Context, e execer, t Transaction) error {
	_, err := e.ExecContext(ctx, `
	INSERT INTO transactions(
	 id, account_id, parent_id, description, amount_milli, date, num, notes,
	 transfer_account_id, reconciled, category_id, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`,
		t.ID, t.AccountID, t.ParentID, t.Description, t.Milli(), t.Date, t.Num,
		t.Notes, t.TransferAccountID, t.Reconciled, t.CategoryID)
	return err
}

// Update rewrites the mutable fields: description, notes, category,
// transfer account, reconciled flag and parent link.
func (r *TransactionRepo) Update(ctx context.Context, t Transaction) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE transactions SET
	 parent_id = ?, description = ?, notes = ?, transfer_account_id = ?,
	 reconciled = ?, category_id = ?, updated_at = CURRENT_TIMESTAMP
	WHERE id = ?;
	`, t.ParentID, t.Description, t.Notes, t.TransferAccountID, t.Reconciled, t.CategoryID, t.ID)
	return err
}

func (r *TransactionRepo) Get(ctx context.Context, id string) (*Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+txnColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// FindMatches returns candidate rows for q in insertion order. The date
// window is exclusive on both ends.
func (r *TransactionRepo) FindMatches(ctx context.Context, q MatchQuery) ([]Transaction, error) {
	var rows *sql.Rows
	var err error
	if q.Num != nil {
		rows, err = r.db.QueryContext(ctx, `
		SELECT `+txnColumns+` FROM transactions
		WHERE account_id = ? AND amount_milli = ? AND num = ?
		ORDER BY date ASC, id ASC`,
			q.AccountID, q.Amount.Shift(AmountPlaces).IntPart(), *q.Num)
	} else {
		rows, err = r.db.QueryContext(ctx, `
		SELECT `+txnColumns+` FROM transactions
		WHERE account_id = ? AND amount_milli = ? AND date > ? AND date < ?
		ORDER BY date ASC, id ASC`,
			q.AccountID, q.Amount.Shift(AmountPlaces).IntPart(), q.After, q.Before)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// SumTopLevel returns the current balance: the sum over rows with no
// parent. Split children are excluded so group amounts are not counted
// twice. No rows yields zero.
func (r *TransactionRepo) SumTopLevel(ctx context.Context, accountID string) (decimal.Decimal, error) {
	var milli int64
	err := r.db.QueryRowContext(ctx, `
	SELECT COALESCE(SUM(amount_milli), 0) FROM transactions
	WHERE account_id = ? AND parent_id IS NULL`, accountID).Scan(&milli)
	if err != nil {
		return decimal.Zero, err
	}
	return FromMilli(milli), nil
}

// Recent returns up to limit rows for the account (split children
// included), newest first with a deterministic tie-break.
func (r *TransactionRepo) Recent(ctx context.Context, accountID string, limit int) ([]Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT `+txnColumns+` FROM transactions
	WHERE account_id = ?
	ORDER BY date DESC, num DESC, id DESC
	LIMIT ?`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// Search matches query as a substring of the description, the notes or the
// category name.
func (r *TransactionRepo) Search(ctx context.Context, query string) ([]Transaction, error) {
	like := "%" + query + "%"
	rows, err := r.db.QueryContext(ctx, `
	SELECT t.id, t.account_id, t.parent_id, t.description, t.amount_milli, t.date,
	       t.num, t.notes, t.transfer_account_id, t.reconciled, t.category_id,
	       t.created_at, t.updated_at
	FROM transactions t
	LEFT JOIN categories c ON c.id = t.category_id
	WHERE t.description LIKE ? OR t.notes LIKE ? OR c.name LIKE ?
	ORDER BY t.date DESC, t.id DESC`, like, like, like)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// NextNum returns the next free check number for the account: one past the
// highest numeric num seen, "100" when none exists.
func (r *TransactionRepo) NextNum(ctx context.Context, accountID string) (string, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT num FROM transactions WHERE account_id = ? AND num IS NOT NULL`, accountID)
	if err != nil {
		return "", err
	}
	defer rows.Close()
	var highest int64
	for rows.Next() {
		var num string
		if err := rows.Scan(&num); err != nil {
			return "", err
		}
		if n, err := strconv.ParseInt(num, 10, 64); err == nil && n > highest {
			highest = n
		}
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if highest == 0 {
		return "100", nil
	}
	return strconv.FormatInt(highest+1, 10), nil
}

// scanner handles both Row and Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func collectTransactions(rows *sql.Rows) ([]Transaction, error) {
	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTransaction(row scanner) (Transaction, error) {
	var t Transaction
	var parent, num, notes, transfer, category sql.NullString
	var milli int64
	if err := row.Scan(&t.ID, &t.AccountID, &parent, &t.Description, &milli, &t.Date,
		&num, &notes, &transfer, &t.Reconciled, &category, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return Transaction{}, err
	}
	t.Amount = FromMilli(milli)
	if parent.Valid {
		t.ParentID = &parent.String
	}
	if num.Valid {
		t.Num = &num.String
	}
	if notes.Valid {
		t.Notes = &notes.String
	}
	if transfer.Valid {
		t.TransferAccountID = &transfer.String
	}
	if category.Valid {
		t.CategoryID = &category.String
	}
	return t, nil
}
