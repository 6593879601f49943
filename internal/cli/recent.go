package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type recentCmd struct {
	account string
	count   int
}

func (*recentCmd) Name() string     { return "recent" }
func (*recentCmd) Synopsis() string { return "list recent transactions with a running balance" }
func (*recentCmd) Usage() string {
	return `homeledger recent -account <name> [-n <count>]

  Shows the newest transactions for the account, each with the balance as
  of that row.
`
}

func (c *recentCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account name.")
	f.IntVar(&c.count, "n", 0, "How many transactions to show (default from config).")
}

func (c *recentCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	acct, err := a.requireAccount(ctx, c.account)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	count := c.count
	if count <= 0 {
		count = a.cfg.UI.HistoryCount
	}
	entries, err := a.balances.RecentHistory(ctx, *acct, count)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	idx, err := a.loadNames(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	symbol := a.cfg.UI.CurrencySymbol
	for _, e := range entries {
		t := e.Txn
		fmt.Printf("%s: %-4s %s %s, %s, %s\n", renderDate(t.Date), orBlank(t.Num),
			renderAmount(symbol, e.Balance), renderAmount(symbol, t.Amount),
			t.Description, orBlank(t.Notes))
		fmt.Printf("\t%s\n", idx.detail(t))
	}
	return subcommands.ExitSuccess
}
