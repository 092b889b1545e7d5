package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/warp/earnings-engine/calendar"
	"github.com/warp/earnings-engine/earnings"
)

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func newStatusCmd(a *app) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show earnings so far",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			instant := a.currentTime()
			if at != "" {
				var err error
				if instant, err = calendar.ParseInstant(at, a.loc); err != nil {
					return err
				}
			}

			engine, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}
			s, err := engine.Summary(instant)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", instant.Format("Mon 2006-01-02 15:04"), s.Status)
			if !s.IsWorkday {
				fmt.Fprintln(out, "  Day off")
			}
			fmt.Fprintf(out, "  Worked:    %s of %s\n",
				time.Duration(s.ElapsedSeconds)*time.Second, time.Duration(s.DailySeconds)*time.Second)
			if s.RatePerSecond != nil {
				fmt.Fprintf(out, "  Rate:      %s/s\n", s.RatePerSecond.StringFixed(6))
			} else {
				fmt.Fprintln(out, "  Rate:      - (no workdays this month)")
			}
			fmt.Fprintf(out, "  Today:     %s\n", money(s.Today))
			fmt.Fprintf(out, "  Month:     %s\n", money(s.Month))
			fmt.Fprintf(out, "  Year:      %s\n", money(s.Year))
			if !s.Overtime.IsZero() {
				fmt.Fprintf(out, "  Overtime:  %s\n", money(s.Overtime))
			}
			if !s.HolidayOvertime.IsZero() {
				fmt.Fprintf(out, "  Holiday:   %s\n", money(s.HolidayOvertime))
			}
			if s.NextWorkday != nil {
				fmt.Fprintf(out, "  Next workday: %s\n", s.NextWorkday)
			}
			if s.NextHoliday != nil && s.DaysUntilHoliday != nil {
				fmt.Fprintf(out, "  Next holiday: %s %s (in %d days)\n", s.NextHoliday.Date, s.NextHoliday.Name, *s.DaysUntilHoliday)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "instant to report on (RFC 3339, YYYY-MM-DDTHH:MM or YYYY-MM-DD)")
	return cmd
}

func newRangeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "range START END",
		Short: "Show earnings between two instants",
		Example: `  earnings range 2024-03-01 2024-04-01
  earnings range 2024-03-08T10:00 2024-03-08T14:00`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := calendar.ParseInstant(args[0], a.loc)
			if err != nil {
				return err
			}
			end, err := calendar.ParseInstant(args[1], a.loc)
			if err != nil {
				return err
			}

			engine, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}
			total, err := engine.RangeEarnings(start, end)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), money(total))
			return nil
		},
	}
}

func newWorkdaysCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "workdays [YEAR MONTH]",
		Short: "Show workdays and rates of a month",
		Args:  cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := a.currentTime()
			year, month := now.Year(), now.Month()
			if len(args) == 2 {
				y, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("year: %w", err)
				}
				m, err := strconv.Atoi(args[1])
				if err != nil || m < 1 || m > 12 {
					return fmt.Errorf("month must be 1-12, got %q", args[1])
				}
				year, month = y, time.Month(m)
			} else if len(args) == 1 {
				return fmt.Errorf("give both YEAR and MONTH, or neither")
			}

			engine, err := a.engine(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d-%02d: %d workdays\n", year, month, engine.WorkDaysInMonth(year, month))
			daily, err := engine.DailySalary(year, month)
			if err != nil {
				if errors.Is(err, earnings.ErrDegenerateDivision) {
					fmt.Fprintln(out, "  No pay rate: the month has no workdays")
					return nil
				}
				return err
			}
			rate, err := engine.SalaryPerSecond(year, month)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "  Daily salary: %s\n", money(daily))
			fmt.Fprintf(out, "  Per second:   %s\n", rate.StringFixed(6))
			return nil
		},
	}
}
