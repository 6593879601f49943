package repository

import (
	"context"
	"database/sql"
)

// AccountRepo handles external accounts.
type AccountRepo struct {
	db *sql.DB
}

func NewAccountRepo(db *sql.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

func (r *AccountRepo) Insert(ctx context.Context, a ExternalAccount) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO accounts(id, name, description, interest_rate, notes)
	VALUES (?, ?, ?, ?, ?);
	`, a.ID, a.Name, a.Description, a.InterestRate, a.Notes)
	return err
}

// FindByName looks up an account by exact name. Returns nil when absent.
func (r *AccountRepo) FindByName(ctx context.Context, name string) (*ExternalAccount, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, description, interest_rate, notes FROM accounts WHERE name = ?`, name)
	a, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// FindByNameContains returns accounts whose name contains substr, ordered
// by name for stable prompting.
func (r *AccountRepo) FindByNameContains(ctx context.Context, substr string) ([]ExternalAccount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description, interest_rate, notes FROM accounts WHERE name LIKE ? ORDER BY name`, "%"+substr+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ExternalAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Get looks up an account by id. Returns nil when absent.
func (r *AccountRepo) Get(ctx context.Context, id string) (*ExternalAccount, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, description, interest_rate, notes FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) List(ctx context.Context) ([]ExternalAccount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description, interest_rate, notes FROM accounts ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ExternalAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAccount(row scanner) (ExternalAccount, error) {
	var a ExternalAccount
	var rate sql.NullFloat64
	var notes sql.NullString
	if err := row.Scan(&a.ID, &a.Name, &a.Description, &rate, &notes); err != nil {
		return ExternalAccount{}, err
	}
	if rate.Valid {
		a.InterestRate = &rate.Float64
	}
	if notes.Valid {
		a.Notes = &notes.String
	}
	return a, nil
}
