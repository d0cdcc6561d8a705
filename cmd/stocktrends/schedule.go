package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"

	"StockTrends/internal/scheduler"
)

type scheduleCmd struct {
	flags   reportFlags
	cron    string
	onStart bool
}

func (*scheduleCmd) Name() string     { return "schedule" }
func (*scheduleCmd) Synopsis() string { return "re-run the report on a cron schedule" }
func (*scheduleCmd) Usage() string {
	return `schedule [-cron "sec min hour dom month dow"] [-now] [report flags]

  Runs the report every time the cron expression fires until interrupted.
  Failed runs are logged and the schedule continues.
`
}

func (c *scheduleCmd) SetFlags(f *flag.FlagSet) {
	c.flags.register(f)
	f.StringVar(&c.cron, "cron", "", "cron expression with a seconds field, default from config")
	f.BoolVar(&c.onStart, "now", false, "also run once immediately")
}

func (c *scheduleCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(&c.flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer a.close()

	expr := a.cfg.Schedule.Cron
	if c.cron != "" {
		expr = c.cron
	}

	p, err := a.pipeline()
	if err != nil {
		a.log.Error().Err(err).Msg("build pipeline")
		return subcommands.ExitFailure
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(ctx, func(ctx context.Context) error {
		res, err := p.Run(ctx)
		if err != nil {
			return err
		}
		return printResult(os.Stdout, res, c.flags.plain)
	}, a.log)

	id, err := sched.Register(expr)
	if err != nil {
		a.log.Error().Err(err).Msg("register schedule")
		return subcommands.ExitUsageError
	}
	sched.Start()
	a.log.Info().Str("cron", expr).Time("next", sched.Next(id)).Msg("waiting for next run, press Ctrl+C to stop")

	if c.onStart {
		sched.Trigger()
	}

	<-ctx.Done()
	a.log.Info().Msg("shutdown signal received, stopping")
	sched.Stop()
	return subcommands.ExitSuccess
}
