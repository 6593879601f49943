package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/nathanj/homeledger/internal/database/repository"
)

// SeedDefaults ensures a baseline category tree exists for new databases.
// It is idempotent and safe to run on every startup; a database that
// already has categories is left untouched.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	catRepo := repository.NewCategoryRepo(db)
	existing, err := catRepo.List(ctx)
	if err == nil && len(existing) > 0 {
		return nil
	}
	defaults := []string{
		"Income",
		"Groceries",
		"Dining",
		"Auto:Fuel",
		"Auto:Service",
		"Utilities:Electric",
		"Utilities:Water",
		"Bank Charges",
		"Tax:Federal",
		"Tax:State",
	}
	for _, path := range defaults {
		var parentID *string
		full := ""
		for _, seg := range strings.Split(path, ":") {
			if full == "" {
				full = seg
			} else {
				full = full + ":" + seg
			}
			existing, err := catRepo.FindByName(ctx, full)
			if err != nil {
				return err
			}
			if existing != nil {
				parentID = &existing.ID
				continue
			}
			id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("cat:"+full)).String()
			if err := catRepo.Insert(ctx, repository.Category{ID: id, Name: full, ParentID: parentID}); err != nil {
				return err
			}
			parentID = &id
		}
	}
	return nil
}
