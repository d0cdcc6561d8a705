package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"
)

type reportCmd struct {
	flags reportFlags
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "analyze the data directory and write the charts" }
func (*reportCmd) Usage() string {
	return `report [-data dir] [-out dir] [-start YYYY-MM-DD] [-end YYYY-MM-DD] [-duplicates error|first|last] [-plain]

  Loads every per-stock file of the data directory, computes annual returns and
  the correlation of daily returns, writes the three charts, and prints a summary.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	c.flags.register(f)
}

func (c *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(&c.flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := a.pipeline()
	if err != nil {
		a.log.Error().Err(err).Msg("build pipeline")
		return subcommands.ExitFailure
	}
	res, err := p.Run(ctx)
	if err != nil {
		a.log.Error().Err(err).Msg("report failed")
		return subcommands.ExitFailure
	}
	if err := printResult(os.Stdout, res, c.flags.plain); err != nil {
		a.log.Error().Err(err).Msg("print summary")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
