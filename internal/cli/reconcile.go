package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/subcommands"

	"github.com/nathanj/homeledger/internal/service"
)

type reconcileCmd struct {
	account string
}

func (*reconcileCmd) Name() string     { return "reconcile" }
func (*reconcileCmd) Synopsis() string { return "interactively reconcile a bank export against the ledger" }
func (*reconcileCmd) Usage() string {
	return `homeledger reconcile -account <name> <import.json>

  Walks each record in the export. For records with possible matches:
  "s" accepts the list as shown, "r<N>" reconciles candidate N, "i<N>"
  ignores it. For records with no match: "n" creates a new transaction,
  "s" searches for a template to clone, anything else skips.
`
}

func (c *reconcileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account the export belongs to.")
}

func (c *reconcileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "expected exactly one import file")
		return subcommands.ExitUsageError
	}
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

	file, err := os.Open(f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	records, err := service.ParseImportFile(file)
	_ = file.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	p := NewPrompter(os.Stdin, os.Stdout)
	p.printf("Found %d transactions in the file: %s", len(records), f.Arg(0))
	if err := a.printBalance(ctx, p, "Starting", *acct); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	sess := service.NewSession(*acct, records, a.matcher, a.splits, a.templates, a.transactions)
	if err := c.run(ctx, a, p, sess); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if err := a.printBalance(ctx, p, "Ending", *acct); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *reconcileCmd) run(ctx context.Context, a *app, p *Prompter, sess *service.Session) error {
	symbol := a.cfg.UI.CurrencySymbol
	for {
		step, err := sess.Next(ctx)
		if err != nil {
			return err
		}
		if step == nil {
			return nil
		}

		cand := step.Candidate
		if len(step.Matches) > 0 {
			idx, err := a.loadNames(ctx)
			if err != nil {
				return err
			}
			p.printf("Possible matches of: %s: %s, %s", renderDate(cand.Date),
				renderAmount(symbol, cand.Amount), cand.Description)
			for i, m := range step.Matches {
				p.printf("\t%d: %s: %-4s %s, %s", i, renderDate(m.Date), orBlank(m.Num),
					renderAmount(symbol, m.Amount), m.Description)
				p.printf("\t\t%s", idx.detail(m))
			}
			if step.AutoConfirmed {
				p.printf("Above transaction was found and is reconciled, so no action is needed.")
				continue
			}
			if err := c.decideMatches(ctx, p, sess, step); err != nil {
				return err
			}
			continue
		}

		if err := c.decideNoMatch(ctx, a, p, sess, step); err != nil {
			return err
		}
	}
}

// decideMatches prompts until the session accepts a decision for a step
// with candidates.
func (c *reconcileCmd) decideMatches(ctx context.Context, p *Prompter, sess *service.Session, step *service.Step) error {
	for {
		input := p.Ask(`If this transaction appears above and you are happy with it, input "s". ` +
			`To reconcile or ignore a transaction from the list type "r<num>" or "i<num>": `)

		var d service.Decision
		switch {
		case strings.HasPrefix(input, "r"), strings.HasPrefix(input, "i"):
			n, err := strconv.Atoi(input[1:])
			if err != nil {
				p.printf("Failed to parse input as an integer.")
				continue
			}
			d = service.Decision{Action: service.ActionReconcile, Index: n}
			if input[0] == 'i' {
				d.Action = service.ActionIgnore
			}
		case strings.HasPrefix(input, "s"):
			d = service.Decision{Action: service.ActionSkip}
		default:
			continue
		}

		_, err := sess.Apply(ctx, d)
		if errors.Is(err, service.ErrInvalidChoice) {
			p.printf("Cannot reconcile or ignore item number %d since it is outside of the range.", d.Index)
			continue
		}
		if err != nil {
			return err
		}
		switch d.Action {
		case service.ActionReconcile:
			p.printf("Reconciled transaction.")
		case service.ActionIgnore:
			p.printf("Ignored transaction.")
		default:
			p.printf("Skipping transaction: %s", step.Candidate.Description)
		}
		return nil
	}
}

// decideNoMatch prompts for a record with no stored counterpart.
func (c *reconcileCmd) decideNoMatch(ctx context.Context, a *app, p *Prompter, sess *service.Session, step *service.Step) error {
	symbol := a.cfg.UI.CurrencySymbol
	cand := step.Candidate
	for {
		p.printf("No matching transactions found. %s: %s, %s", renderDate(cand.Date),
			renderAmount(symbol, cand.Amount), cand.Description)
		input := p.Ask(`Input "n" to create a new one from scratch, "s" to search for a template or anything else to skip: `)

		switch strings.ToLower(input) {
		case "n":
			in, err := c.promptNewInput(ctx, a, p, cand.Description)
			if err != nil {
				return err
			}
			out, err := sess.Apply(ctx, service.Decision{Action: service.ActionNew, New: in})
			if err != nil {
				return err
			}
			p.printf("Created %d transaction(s).", len(out.Created))
			return a.printBalance(ctx, p, "New", sess.Account)
		case "s":
			query := p.Ask("Search criteria for a template transaction: ")
			if len(query) <= 2 {
				p.printf("Please type more than 2 characters when searching for a template.")
				continue
			}
			results, err := a.templates.Search(ctx, query)
			if err != nil {
				return err
			}
			idx, err := a.loadNames(ctx)
			if err != nil {
				return err
			}
			template := p.PickTransaction(symbol, results, idx.detail)
			if template == nil {
				continue
			}
			if _, err := sess.Apply(ctx, service.Decision{Action: service.ActionTemplate, Template: template}); err != nil {
				return err
			}
			return a.printBalance(ctx, p, "New", sess.Account)
		default:
			p.printf("Ignoring transaction.")
			_, err := sess.Apply(ctx, service.Decision{Action: service.ActionSkip})
			return err
		}
	}
}

// promptNewInput gathers the create-new overrides: category, transfer
// account, reconciled flag, description and notes.
func (c *reconcileCmd) promptNewInput(ctx context.Context, a *app, p *Prompter, currentDescription string) (*service.NewInput, error) {
	in := &service.NewInput{}
	category, err := p.PickCategory(ctx, a.categories)
	if err != nil {
		return nil, err
	}
	in.Category = category

	transfer, err := p.PickAccount(ctx, a.accounts, "transfer account")
	if err != nil {
		return nil, err
	}
	in.TransferAccount = transfer

	cleared := p.Ask(`This transaction will be set as reconciled, type "no" to change that: `)
	in.Reconciled = !strings.EqualFold(cleared, "no")

	if desc := p.Ask(fmt.Sprintf("Type a new description (or just enter to keep %q): ", currentDescription)); len(desc) > 1 {
		in.Description = desc
	}
	if notes := p.Ask("Type notes to add, or enter to skip: "); len(notes) > 1 {
		in.Notes = notes
	}
	return in, nil
}
