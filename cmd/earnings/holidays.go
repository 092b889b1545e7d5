package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/warp/earnings-engine/calendar"
	"github.com/warp/earnings-engine/holidays"
	"github.com/warp/earnings-engine/store"
)

func newHolidaysCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "Manage holidays and compensated workdays",
	}
	cmd.AddCommand(
		newHolidaysListCmd(a),
		newHolidaysAddCmd(a),
		newHolidaysDeleteCmd(a),
		newHolidaysSyncCmd(a),
	)
	return cmd
}

func newHolidaysListCmd(a *app) *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List holiday records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := store.LoadCalendar(cmd.Context(), a.store)
			if err != nil {
				return err
			}
			records := cal.Records()
			if year != 0 {
				records = cal.RecordsIn(calendar.YearPeriod(year))
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No holidays.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tKIND\tNAME\tID")
			for _, h := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", h.Date, h.Kind(), h.Name, h.ID)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "only list this year")
	return cmd
}

func newHolidaysAddCmd(a *app) *cobra.Command {
	var workday bool
	cmd := &cobra.Command{
		Use:   "add DATE NAME",
		Short: "Add a holiday, or a compensated workday with --workday",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := calendar.ParseDate(args[0])
			if err != nil {
				return err
			}
			saved, err := a.store.SaveHoliday(cmd.Context(), calendar.HolidayConfig{
				Date:      d,
				Name:      args[1],
				IsWorkday: workday,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s (%s)\n", saved.Kind(), saved.Date, saved.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&workday, "workday", false, "mark the date as a compensated workday")
	return cmd
}

func newHolidaysDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a holiday record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.DeleteHoliday(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("holiday %s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted", args[0])
			return nil
		},
	}
}

func newHolidaysSyncCmd(a *app) *cobra.Command {
	var (
		year   int
		source string
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Replace a year of records from the holiday source",
		Long: `sync fetches a year from the holiday feed (--source or EARNINGS_HOLIDAY_URL)
or, without one, from the built-in calendar, and replaces that year's records.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if source == "" {
				source = a.cfg.HolidaySource
			}
			var provider holidays.Provider = holidays.StaticProvider{}
			if source != "" {
				provider = holidays.NewHTTPProvider(source)
			}
			if year == 0 {
				year = a.currentTime().Year()
			}

			r := holidays.NewRefresher(a.store, provider)
			n, err := r.SyncYear(cmd.Context(), year)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Synced %d records for %d\n", n, year)
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "year to sync (default: current year)")
	cmd.Flags().StringVar(&source, "source", "", "holiday feed base URL")
	return cmd
}
