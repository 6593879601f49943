package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/subcommands"

	"github.com/nathanj/homeledger/internal/config"
	"github.com/nathanj/homeledger/internal/database"
	"github.com/nathanj/homeledger/internal/database/repository"
	"github.com/nathanj/homeledger/internal/service"
)

// Commands is the full subcommand set, registered by cmd/homeledger.
var Commands = []subcommands.Command{
	&configInitCmd{},
	&seedCategoriesCmd{},
	&seedAccountsCmd{},
	&reconcileCmd{},
	&balanceCmd{},
	&recentCmd{},
	&newCmd{},
	&cloneCmd{},
}

// app wires configuration, storage and services for one command run.
type app struct {
	cfg config.Config
	db  *sql.DB

	categories   *repository.CategoryRepo
	accounts     *repository.AccountRepo
	transactions *repository.TransactionRepo

	tree      *service.CategoryTree
	matcher   *service.Matcher
	splits    *service.SplitResolver
	transfers *service.TransferPairBuilder
	balances  *service.BalanceCalculator
	templates *service.TemplateSearch
	seeds     *service.SeedService
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := database.SeedDefaults(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed defaults: %w", err)
	}

	return newApp(cfg, db), nil
}

func newApp(cfg config.Config, db *sql.DB) *app {
	a := &app{
		cfg:          cfg,
		db:           db,
		categories:   repository.NewCategoryRepo(db),
		accounts:     repository.NewAccountRepo(db),
		transactions: repository.NewTransactionRepo(db),
	}
	a.tree = &service.CategoryTree{Categories: a.categories}
	a.matcher = &service.Matcher{
		Transactions: a.transactions,
		Categories:   a.categories,
		Accounts:     a.accounts,
		ImportZone:   cfg.Import.Location(),
	}
	a.splits = &service.SplitResolver{Categories: a.categories, Accounts: a.accounts}
	a.transfers = &service.TransferPairBuilder{Transactions: a.transactions}
	a.balances = &service.BalanceCalculator{Transactions: a.transactions}
	a.templates = &service.TemplateSearch{Transactions: a.transactions}
	a.seeds = &service.SeedService{Tree: a.tree, Accounts: a.accounts, AllowedAccounts: cfg.Accounts.Allowed}
	return a
}

func (a *app) Close() {
	_ = a.db.Close()
}

// requireAccount resolves an -account flag value or fails the command.
func (a *app) requireAccount(ctx context.Context, name string) (*repository.ExternalAccount, error) {
	if name == "" {
		return nil, fmt.Errorf("-account is required")
	}
	acct, err := a.accounts.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("lookup account %q: %w", name, err)
	}
	if acct == nil {
		return nil, fmt.Errorf("account %q not found", name)
	}
	return acct, nil
}

// nameIndex maps entity ids to display names for detail lines.
type nameIndex struct {
	categories map[string]string
	accounts   map[string]string
}

func (a *app) loadNames(ctx context.Context) (nameIndex, error) {
	idx := nameIndex{categories: map[string]string{}, accounts: map[string]string{}}
	cats, err := a.categories.List(ctx)
	if err != nil {
		return idx, err
	}
	for _, c := range cats {
		idx.categories[c.ID] = c.Name
	}
	accts, err := a.accounts.List(ctx)
	if err != nil {
		return idx, err
	}
	for _, acct := range accts {
		idx.accounts[acct.ID] = acct.Name
	}
	return idx, nil
}

func (idx nameIndex) detail(t repository.Transaction) string {
	category := "None"
	if t.CategoryID != nil {
		category = idx.categories[*t.CategoryID]
	}
	transfer := "None"
	if t.TransferAccountID != nil {
		transfer = idx.accounts[*t.TransferAccountID]
	}
	return fmt.Sprintf("Category: %s,\tTransfer account: %s,\tReconciled: %t", category, transfer, t.Reconciled)
}

func (a *app) printBalance(ctx context.Context, p *Prompter, label string, acct repository.ExternalAccount) error {
	balance, err := a.balances.CurrentBalance(ctx, acct)
	if err != nil {
		return err
	}
	p.printf("%s balance on account %s is:\t%s", label, acct.Name, renderAmount(a.cfg.UI.CurrencySymbol, balance))
	return nil
}
