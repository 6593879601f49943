package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/nathanj/homeledger/internal/config"
)

type configInitCmd struct{}

func (*configInitCmd) Name() string     { return "config-init" }
func (*configInitCmd) Synopsis() string { return "write the active configuration to disk" }
func (*configInitCmd) Usage() string {
	return `homeledger config-init

  Writes the merged configuration (defaults, existing file, environment)
  to the config path so it can be edited.
`
}
func (*configInitCmd) SetFlags(*flag.FlagSet) {}

func (c *configInitCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := config.Save(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("wrote %s\n", config.Path())
	return subcommands.ExitSuccess
}
