package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/nathanj/homeledger/internal/service"
)

type seedCategoriesCmd struct{}

func (*seedCategoriesCmd) Name() string     { return "seed-categories" }
func (*seedCategoriesCmd) Synopsis() string { return "ingest a category seed file" }
func (*seedCategoriesCmd) Usage() string {
	return `homeledger seed-categories <file>

  Reads one category per line ("Tax:Federal:  12"), creating the missing
  path prefixes. Malformed lines are reported and skipped.
`
}
func (*seedCategoriesCmd) SetFlags(*flag.FlagSet) {}

func (c *seedCategoriesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "expected exactly one seed file")
		return subcommands.ExitUsageError
	}
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	file, err := os.Open(f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer file.Close()

	res, err := a.seeds.LoadCategoryFile(ctx, file)
	reportSeed("categories", res)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type seedAccountsCmd struct{}

func (*seedAccountsCmd) Name() string     { return "seed-accounts" }
func (*seedAccountsCmd) Synopsis() string { return "ingest an account seed file" }
func (*seedAccountsCmd) Usage() string {
	return `homeledger seed-accounts <file>

  Reads one account per line ("Name: patelco, checking"). Names outside
  the recognized institution set are reported and skipped.
`
}
func (*seedAccountsCmd) SetFlags(*flag.FlagSet) {}

func (c *seedAccountsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "expected exactly one seed file")
		return subcommands.ExitUsageError
	}
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	file, err := os.Open(f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer file.Close()

	res, err := a.seeds.LoadAccountFile(ctx, file)
	reportSeed("accounts", res)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func reportSeed(what string, res service.SeedResult) {
	fmt.Printf("%s: %d created, %d skipped\n", what, res.Created, res.Skipped)
	for _, e := range res.Errors {
		fmt.Fprintln(os.Stderr, e)
	}
}
