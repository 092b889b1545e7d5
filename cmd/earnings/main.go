/*
main.go - Command-line client for the earnings engine

PURPOSE:
  Answers "how much have I earned" from a terminal, against the same
  SQLite database the server uses.

COMMANDS:
  status [--at TIME]              Today, month and year earnings
  range START END                 Earnings between two instants
  workdays YEAR MONTH             Workday count and rates of a month
  holidays list|add|delete|sync   Manage holiday records
  config show|set                 Read or change the salary config
  export FILE, import FILE        Snapshot files ("-" for stdio)

GLOBAL FLAGS:
  --db   SQLite database path (default: EARNINGS_DB or earnings.db)
  --tz   IANA time zone (default: EARNINGS_TZ or Local)

SEE ALSO:
  - cmd/server/main.go: The HTTP server
  - store/store.go: LoadEngine
*/
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/warp/earnings-engine/config"
	"github.com/warp/earnings-engine/earnings"
	"github.com/warp/earnings-engine/store"
	"github.com/warp/earnings-engine/store/sqlite"
)

// app carries what every subcommand needs once the root has opened it.
type app struct {
	cfg   *config.Config
	store store.ConfigStore
	loc   *time.Location
	now   func() time.Time
}

func (a *app) open() error {
	loc, err := a.cfg.Location()
	if err != nil {
		return err
	}
	st, err := sqlite.New(a.cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", a.cfg.DatabasePath, err)
	}
	a.loc = loc
	a.store = st
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

func (a *app) currentTime() time.Time {
	return a.now().In(a.loc)
}

func (a *app) engine(ctx context.Context) (*earnings.Engine, error) {
	return store.LoadEngine(ctx, a.store, a.now())
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	a := &app{cfg: cfg, now: time.Now}

	root := &cobra.Command{
		Use:   "earnings",
		Short: "Real-time salary earnings from a work calendar",
		Long: `earnings computes what you have earned so far today, this month and
this year from a monthly salary, working hours and a holiday calendar.
Data lives in the same SQLite database as the earnings server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	root.PersistentFlags().StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "SQLite database path")
	root.PersistentFlags().StringVar(&cfg.TimeZone, "tz", cfg.TimeZone, "IANA time zone")

	root.AddCommand(
		newStatusCmd(a),
		newRangeCmd(a),
		newWorkdaysCmd(a),
		newHolidaysCmd(a),
		newConfigCmd(a),
		newExportCmd(a),
		newImportCmd(a),
	)
	return root
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := newRootCmd(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
