package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nathanj/homeledger/internal/database/repository"
)

// CategoryTree resolves colon-separated category paths, lazily creating
// the missing prefix chain. "Tax:Federal" resolves to a child of "Tax",
// both created on first sight. Categories are never deleted.
type CategoryTree struct {
	Categories CategoryStore
}

// Resolve walks path left to right and returns the category for the full
// path. Resolving the same path twice creates nothing new.
func (t *CategoryTree) Resolve(ctx context.Context, path string) (*repository.Category, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("empty category path")
	}

	var parent *repository.Category
	full := ""
	for _, seg := range strings.Split(path, ":") {
		if full == "" {
			full = seg
		} else {
			full = full + ":" + seg
		}

		existing, err := t.Categories.FindByName(ctx, full)
		if err != nil {
			return nil, fmt.Errorf("lookup category %q: %w", full, err)
		}
		if existing == nil {
			c := repository.Category{ID: uuid.NewString(), Name: full}
			if parent != nil {
				c.ParentID = &parent.ID
			}
			if err := t.Categories.Insert(ctx, c); err != nil {
				return nil, fmt.Errorf("create category %q: %w", full, err)
			}
			existing = &c
		} else if existing.ParentID == nil && parent != nil {
			// Row predates its parent (created by hand); attach once.
			existing.ParentID = &parent.ID
			if err := t.Categories.Update(ctx, *existing); err != nil {
				return nil, fmt.Errorf("attach parent to %q: %w", full, err)
			}
		}
		parent = existing
	}
	return parent, nil
}
