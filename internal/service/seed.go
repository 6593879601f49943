package service

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/nathanj/homeledger/internal/database/repository"
)

// SeedResult summarizes a seed-file ingestion. Malformed lines land in
// Errors and never stop the run.
type SeedResult struct {
	Created int
	Skipped int
	Errors  []error
}

// categoryLine matches "<possibly-colon-nested-name>: <count>". The count
// is export metadata and is discarded.
var categoryLine = regexp.MustCompile(`^(.+):\s+(\d+)\s*$`)

// accountLine matches "Name: <name>, <ignored trailing text>".
var accountLine = regexp.MustCompile(`^Name:\s*([^,]+),`)

// SeedService ingests category and account seed files.
type SeedService struct {
	Tree     *CategoryTree
	Accounts AccountStore

	// AllowedAccounts extends the built-in institution enumeration.
	AllowedAccounts []string
}

// LoadCategoryFile reads one category path per line, resolving each
// through the tree. Lines that do not match the pattern are reported and
// skipped.
func (s *SeedService) LoadCategoryFile(ctx context.Context, r io.Reader) (SeedResult, error) {
	res := SeedResult{}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		m := categoryLine.FindStringSubmatch(text)
		if m == nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: malformed category line %q", line, text))
			continue
		}
		name := strings.TrimSpace(m[1])
		if _, err := s.Tree.Resolve(ctx, name); err != nil {
			return res, fmt.Errorf("line %d: %w", line, err)
		}
		res.Created++
	}
	if err := sc.Err(); err != nil {
		return res, fmt.Errorf("read category file: %w", err)
	}
	return res, nil
}

// LoadAccountFile reads one account per line. Names are validated against
// the closed institution set; an existing account is skipped, not an
// error.
func (s *SeedService) LoadAccountFile(ctx context.Context, r io.Reader) (SeedResult, error) {
	res := SeedResult{}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		m := accountLine.FindStringSubmatch(text)
		if m == nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: malformed account line %q", line, text))
			continue
		}
		name := strings.TrimSpace(m[1])

		existing, err := s.Accounts.FindByName(ctx, name)
		if err != nil {
			return res, fmt.Errorf("line %d: lookup account %q: %w", line, name, err)
		}
		if existing != nil {
			res.Skipped++
			continue
		}

		acct, err := repository.NewExternalAccount(uuid.NewString(), name, "", s.AllowedAccounts)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		if err := s.Accounts.Insert(ctx, acct); err != nil {
			return res, fmt.Errorf("line %d: create account %q: %w", line, name, err)
		}
		res.Created++
	}
	if err := sc.Err(); err != nil {
		return res, fmt.Errorf("read account file: %w", err)
	}
	return res, nil
}
