package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/nathanj/homeledger/internal/service"
)

type cloneCmd struct {
	account string
}

func (*cloneCmd) Name() string     { return "clone" }
func (*cloneCmd) Synopsis() string { return "create a transaction from a historical template" }
func (*cloneCmd) Usage() string {
	return `homeledger clone -account <name> <query>

  Searches stored transactions for the query, clones the selected result
  and walks through confirming each field before saving.
`
}

func (c *cloneCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account for the new transaction.")
}

func (c *cloneCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "expected exactly one search query")
		return subcommands.ExitUsageError
	}
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	p := NewPrompter(os.Stdin, os.Stdout)
	if err := c.run(ctx, a, p, f.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *cloneCmd) run(ctx context.Context, a *app, p *Prompter, query string) error {
	acct, err := a.requireAccount(ctx, c.account)
	if err != nil {
		return err
	}

	results, err := a.templates.Search(ctx, query)
	if err != nil {
		return err
	}
	idx, err := a.loadNames(ctx)
	if err != nil {
		return err
	}
	symbol := a.cfg.UI.CurrencySymbol
	template := p.PickTransaction(symbol, results, idx.detail)
	if template == nil {
		p.printf("No matched transaction found to use as a template.")
		return nil
	}

	loc := a.cfg.Import.Location()
	now := time.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, loc)
	txn, err := a.templates.CloneFromTemplate(ctx, *template, *acct, today, template.Amount)
	if err != nil {
		return err
	}

	for {
		if answer := p.Ask(fmt.Sprintf("New date: %s: ", txn.Date.Format("2006-01-02"))); answer != "" {
			d, err := service.ParseDate(answer, loc)
			if err != nil {
				p.printf("Invalid date, please try again.")
				continue
			}
			txn.Date = d
		}
		if answer := p.Ask(fmt.Sprintf("New amount: %s: ", txn.Amount.StringFixed(3))); answer != "" {
			amount, err := decimal.NewFromString(answer)
			if err != nil {
				p.printf("Invalid amount, please try again.")
				continue
			}
			txn.Amount = amount
		}
		if answer := p.Ask("New description: "); answer != "" {
			txn.Description = answer
		}
		if answer := p.Ask("New notes: "); answer != "" {
			txn.Notes = &answer
		}
		if answer := p.Ask("New num: "); answer != "" {
			txn.Num = &answer
		}
		if answer := p.Ask(fmt.Sprintf("Keep account %s [Y|n]: ", acct.Name)); strings.HasPrefix(answer, "n") {
			if other, err := p.PickAccount(ctx, a.accounts, "account"); err != nil {
				return err
			} else if other != nil {
				txn.AccountID = other.ID
				acct = other
			}
		}
		category := "None"
		if txn.CategoryID != nil {
			category = idx.categories[*txn.CategoryID]
		}
		if answer := p.Ask(fmt.Sprintf("Keep category %s [Y|n]: ", category)); strings.HasPrefix(answer, "n") {
			if cat, err := p.PickCategory(ctx, a.categories); err != nil {
				return err
			} else if cat != nil {
				txn.CategoryID = &cat.ID
			}
		}
		if answer := p.Ask("Make it reconciled [N|y]: "); strings.HasPrefix(strings.ToLower(answer), "y") {
			txn.Reconciled = true
		}

		accept := p.Ask(fmt.Sprintf("Accept: %s: %-4s %s, %s [Y|n|q]: ", renderDate(txn.Date),
			orBlank(txn.Num), renderAmount(symbol, txn.Amount), txn.Description))
		if strings.HasPrefix(accept, "q") {
			return nil
		}
		if accept == "" || strings.HasPrefix(strings.ToLower(accept), "y") {
			if err := a.transactions.Insert(ctx, txn); err != nil {
				return err
			}
			return a.printBalance(ctx, p, "New", *acct)
		}
	}
}
