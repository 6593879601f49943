package repository

import (
	"context"
	"database/sql"
)

// CategoryRepo handles categories.
type CategoryRepo struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

func (r *CategoryRepo) Insert(ctx context.Context, c Category) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO categories(id, name, description, parent_id)
	VALUES (?, ?, ?, ?);
	`, c.ID, c.Name, c.Description, c.ParentID)
	return err
}

func (r *CategoryRepo) Update(ctx context.Context, c Category) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE categories SET name = ?, description = ?, parent_id = ? WHERE id = ?;
	`, c.Name, c.Description, c.ParentID, c.ID)
	return err
}

// FindByName looks up a category by its exact full path name.
// Returns nil when absent.
func (r *CategoryRepo) FindByName(ctx context.Context, name string) (*Category, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, description, parent_id FROM categories WHERE name = ?`, name)
	c, err := scanCategory(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// FindByNameContains returns categories whose name contains substr, ordered
// by name for stable prompting.
func (r *CategoryRepo) FindByNameContains(ctx context.Context, substr string) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description, parent_id FROM categories WHERE name LIKE ? ORDER BY name`, "%"+substr+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoryRepo) List(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description, parent_id FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCategory(row scanner) (Category, error) {
	var c Category
	var desc, parent sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &desc, &parent); err != nil {
		return Category{}, err
	}
	if desc.Valid {
		c.Description = &desc.String
	}
	if parent.Valid {
		c.ParentID = &parent.String
	}
	return c, nil
}
