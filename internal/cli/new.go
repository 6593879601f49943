package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nathanj/homeledger/internal/database/repository"
	"github.com/nathanj/homeledger/internal/service"
)

type newCmd struct {
	account     string
	amount      string
	date        string
	description string
	notes       string
	num         string
	category    string
}

func (*newCmd) Name() string     { return "new" }
func (*newCmd) Synopsis() string { return "manually enter a transaction" }
func (*newCmd) Usage() string {
	return `homeledger new -account <name> -amount <A> -date <YYYY-MM-DD> -desc <text> [-category <path>] [-num <ref>] [-notes <text>]

  Creates a transaction. Prompts for a category when none is given, and
  for a transfer counter-account; choosing one creates the mirrored leg
  in that account.
`
}

func (c *newCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account name.")
	f.StringVar(&c.amount, "amount", "", "Signed amount, up to 3 decimal places.")
	f.StringVar(&c.date, "date", "", "Transaction date (YYYY-MM-DD or YYYY/MM/DD).")
	f.StringVar(&c.description, "desc", "", "Description.")
	f.StringVar(&c.notes, "notes", "", "Notes.")
	f.StringVar(&c.num, "num", "", "Reference or check number.")
	f.StringVar(&c.category, "category", "", "Category path, created if missing.")
}

func (c *newCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	p := NewPrompter(os.Stdin, os.Stdout)
	if err := c.run(ctx, a, p); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *newCmd) run(ctx context.Context, a *app, p *Prompter) error {
	acct, err := a.requireAccount(ctx, c.account)
	if err != nil {
		return err
	}
	amount, err := decimal.NewFromString(c.amount)
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", c.amount, err)
	}
	date, err := service.ParseDate(c.date, a.cfg.Import.Location())
	if err != nil {
		return err
	}

	txn := repository.Transaction{
		ID:          uuid.NewString(),
		AccountID:   acct.ID,
		Description: c.description,
		Amount:      amount,
		Date:        date,
	}
	if c.num != "" {
		txn.Num = &c.num
	}

	if c.category != "" {
		cat, err := a.tree.Resolve(ctx, c.category)
		if err != nil {
			return err
		}
		txn.CategoryID = &cat.ID
	} else {
		cat, err := p.PickCategory(ctx, a.categories)
		if err != nil {
			return err
		}
		if cat != nil {
			txn.CategoryID = &cat.ID
		}
	}

	// A manual transfer appears in both accounts; imports create one leg
	// only, since the counter-account's own export carries the other.
	counter, err := p.PickAccount(ctx, a.accounts, "transfer account")
	if err != nil {
		return err
	}

	notes := c.notes
	if notes == "" {
		notes = p.Ask("Input any notes for this transaction: ")
	}
	if strings.TrimSpace(notes) != "" {
		txn.Notes = &notes
	}

	if _, _, err := a.transfers.Create(ctx, txn, counter); err != nil {
		return err
	}
	return a.printBalance(ctx, p, "New", *acct)
}
