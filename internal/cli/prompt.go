package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nathanj/homeledger/internal/database/repository"
	"github.com/nathanj/homeledger/internal/service"
)

// Prompter drives the stdin token surface. It reads from an injected
// reader and writes to an injected writer so flows are testable without a
// terminal.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewPrompter(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(r), out: w}
}

func (p *Prompter) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Ask prints prompt and returns the next input line, trimmed. EOF reads
// as an empty line, which every caller treats as skip/accept-default.
func (p *Prompter) Ask(prompt string) string {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		fmt.Fprintln(p.out)
		return ""
	}
	return strings.TrimSpace(p.in.Text())
}

// pickIndex asks for a list index until it gets a valid one or "none".
// Parse failures and out-of-range values re-prompt.
func (p *Prompter) pickIndex(label string, n int) (int, bool) {
	for {
		answer := p.Ask(fmt.Sprintf("Which %s number do you want to select, or \"none\" to skip: ", label))
		if strings.EqualFold(answer, "none") {
			return 0, false
		}
		idx, err := strconv.Atoi(answer)
		if err != nil {
			p.printf("Failed to parse input as an integer.")
			continue
		}
		if idx < 0 || idx >= n {
			p.printf("Input provided is out of range.")
			continue
		}
		return idx, true
	}
}

// PickCategory finds a category by name interactively. Returns nil when
// the operator answers "none".
func (p *Prompter) PickCategory(ctx context.Context, store service.CategoryStore) (*repository.Category, error) {
	for {
		query := p.Ask(`Input the name of a category to find, or "none" to skip category lookup: `)
		if strings.EqualFold(query, "none") {
			return nil, nil
		}
		items, err := store.FindByNameContains(ctx, query)
		if err != nil {
			return nil, err
		}
		for i, c := range items {
			p.printf("\t%d: %s", i, c.Name)
		}
		if len(items) == 0 {
			p.printf("No categories match %q.", query)
			continue
		}
		if idx, ok := p.pickIndex("category", len(items)); ok {
			return &items[idx], nil
		}
		return nil, nil
	}
}

// PickAccount finds an account by name interactively. Returns nil when
// the operator answers "none".
func (p *Prompter) PickAccount(ctx context.Context, store service.AccountStore, label string) (*repository.ExternalAccount, error) {
	for {
		query := p.Ask(fmt.Sprintf("Input the name of a %s to find, or \"none\" to skip %s lookup: ", label, label))
		if strings.EqualFold(query, "none") {
			return nil, nil
		}
		items, err := store.FindByNameContains(ctx, query)
		if err != nil {
			return nil, err
		}
		for i, a := range items {
			p.printf("\t%d: %s", i, a.Name)
		}
		if len(items) == 0 {
			p.printf("No accounts match %q.", query)
			continue
		}
		if idx, ok := p.pickIndex(label, len(items)); ok {
			return &items[idx], nil
		}
		return nil, nil
	}
}

// PickTransaction shows search results and asks for a selection. Returns
// nil when the operator answers "none".
func (p *Prompter) PickTransaction(symbol string, items []repository.Transaction, describe func(repository.Transaction) string) *repository.Transaction {
	if len(items) == 0 {
		p.printf("No matching transactions found.")
		return nil
	}
	for i, t := range items {
		p.printf("%d: %s: %-4s %s, %s, %s", i, renderDate(t.Date), orBlank(t.Num),
			renderAmount(symbol, t.Amount), t.Description, orBlank(t.Notes))
		p.printf("\t%s", describe(t))
	}
	if idx, ok := p.pickIndex("transaction", len(items)); ok {
		return &items[idx]
	}
	return nil
}
