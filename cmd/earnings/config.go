package main

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/warp/earnings-engine/factory"
	"github.com/warp/earnings-engine/store"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the salary configuration",
	}
	cmd.AddCommand(newConfigShowCmd(a), newConfigSetCmd(a))
	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the salary configuration as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.CurrentConfig(cmd.Context(), a.store, a.now())
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(factory.NewConfigFactory().ToJSON(cfg), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

// configFlags mirrors factory.UpdateJSON; only flags the user set are applied.
type configFlags struct {
	salary        string
	workStart     string
	workEnd       string
	lunchStart    string
	lunchEnd      string
	noLunch       bool
	workDays      []int
	overtimeRate  string
	overtimeStart string
	overtimeEnd   string
	noOvertime    bool
	holidayRate   string
	noHolidayRate bool
}

func newConfigSetCmd(a *app) *cobra.Command {
	var f configFlags
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change fields of the salary configuration",
		Example: `  earnings config set --salary 4500
  earnings config set --work-start 08:30 --work-end 17:30 --lunch-start 12:00 --lunch-end 12:30
  earnings config set --work-days 1,2,3,4,5,6
  earnings config set --overtime-rate 1.5 --overtime-start 18:00 --overtime-end 21:00`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			current, err := store.CurrentConfig(ctx, a.store, a.now())
			if err != nil {
				return err
			}

			uj, err := f.update(cmd)
			if err != nil {
				return err
			}
			cf := factory.NewConfigFactory()
			update, err := cf.ToUpdate(uj, current)
			if err != nil {
				return err
			}
			next, err := current.Apply(update, a.now())
			if err != nil {
				return err
			}
			if err := a.store.Save(ctx, next); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Saved.")
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.salary, "salary", "", "monthly salary")
	fl.StringVar(&f.workStart, "work-start", "", "start of the working day (HH:MM)")
	fl.StringVar(&f.workEnd, "work-end", "", "end of the working day (HH:MM)")
	fl.StringVar(&f.lunchStart, "lunch-start", "", "start of the unpaid lunch break (HH:MM)")
	fl.StringVar(&f.lunchEnd, "lunch-end", "", "end of the unpaid lunch break (HH:MM)")
	fl.BoolVar(&f.noLunch, "no-lunch", false, "remove the lunch break")
	fl.IntSliceVar(&f.workDays, "work-days", nil, "working weekdays, 0=Sunday (e.g. 1,2,3,4,5)")
	fl.StringVar(&f.overtimeRate, "overtime-rate", "", "overtime pay multiplier (>= 1)")
	fl.StringVar(&f.overtimeStart, "overtime-start", "", "start of the overtime window (HH:MM)")
	fl.StringVar(&f.overtimeEnd, "overtime-end", "", "end of the overtime window (HH:MM)")
	fl.BoolVar(&f.noOvertime, "no-overtime", false, "remove overtime pay")
	fl.StringVar(&f.holidayRate, "holiday-rate", "", "pay multiplier for working a day off (>= 1)")
	fl.BoolVar(&f.noHolidayRate, "no-holiday-rate", false, "remove holiday overtime pay")

	cmd.MarkFlagsRequiredTogether("lunch-start", "lunch-end")
	cmd.MarkFlagsRequiredTogether("overtime-rate", "overtime-start", "overtime-end")
	cmd.MarkFlagsMutuallyExclusive("no-lunch", "lunch-start")
	cmd.MarkFlagsMutuallyExclusive("no-overtime", "overtime-rate")
	cmd.MarkFlagsMutuallyExclusive("no-holiday-rate", "holiday-rate")
	return cmd
}

func (f *configFlags) update(cmd *cobra.Command) (factory.UpdateJSON, error) {
	changed := cmd.Flags().Changed
	u := factory.UpdateJSON{
		ClearLunch:           f.noLunch,
		ClearOvertime:        f.noOvertime,
		ClearHolidayOvertime: f.noHolidayRate,
	}

	if changed("salary") {
		d, err := decimal.NewFromString(f.salary)
		if err != nil {
			return u, fmt.Errorf("--salary: %w", err)
		}
		u.MonthlySalary = &d
	}
	if changed("work-start") {
		u.WorkStart = &f.workStart
	}
	if changed("work-end") {
		u.WorkEnd = &f.workEnd
	}
	if changed("lunch-start") {
		u.Lunch = &factory.WindowJSON{Start: f.lunchStart, End: f.lunchEnd}
	}
	if changed("work-days") {
		u.WorkDays = f.workDays
	}
	if changed("overtime-rate") {
		rate, err := decimal.NewFromString(f.overtimeRate)
		if err != nil {
			return u, fmt.Errorf("--overtime-rate: %w", err)
		}
		u.Overtime = &factory.OvertimeJSON{Rate: rate, Start: f.overtimeStart, End: f.overtimeEnd}
	}
	if changed("holiday-rate") {
		rate, err := decimal.NewFromString(f.holidayRate)
		if err != nil {
			return u, fmt.Errorf("--holiday-rate: %w", err)
		}
		u.HolidayOvertimeRate = &rate
	}
	return u, nil
}
