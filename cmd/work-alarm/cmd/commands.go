package cmd

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/work-alarm/internal/domain/alarm"
	client "github.com/oshokin/work-alarm/internal/service/client"
)

// errNothingToChange is returned by rule without any flag.
var errNothingToChange = errors.New("nothing to change, set one of --days, --start, --end, --interval")

var (
	// ruleDays holds the --days values.
	ruleDays []string
	// ruleStart holds --start.
	ruleStart int
	// ruleEnd holds --end.
	ruleEnd int
	// ruleInterval holds --interval.
	ruleInterval int
	// previewDays holds --days of preview.
	previewDays int
	// lookback holds --lookback of catch-up.
	lookback time.Duration

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show the alarm settings and the daemon state.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return client.Status(cmd.Context(), options(cmd))
		},
	}

	enableCmd = &cobra.Command{
		Use:   "enable",
		Short: "Turn alarms on.",
		Long:  "Turns alarms on. Fails when notifications are not permitted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return client.Enable(cmd.Context(), options(cmd))
		},
	}

	disableCmd = &cobra.Command{
		Use:   "disable",
		Short: "Turn alarms off.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return client.Disable(cmd.Context(), options(cmd))
		},
	}

	ruleCmd = &cobra.Command{
		Use:   "rule",
		Short: "Change the alarm schedule.",
		Long: `Changes the alarm schedule. Only the given flags are changed.

Days accept numbers (0 is Sunday) or names, e.g. --days sun,mon,tue,wed,thu.
Alarms fire at minute 0, interval, 2*interval... of every hour in [start, end).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			change, err := ruleChange(cmd)
			if err != nil {
				return err
			}

			return client.UpdateRule(cmd.Context(), options(cmd), change)
		},
	}

	previewCmd = &cobra.Command{
		Use:   "preview",
		Short: "List the alarms of the coming days.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return client.Preview(cmd.Context(), options(cmd), previewDays)
		},
	}

	catchUpCmd = &cobra.Command{
		Use:   "catch-up",
		Short: "Show alarms missed within the lookback window.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return client.CatchUp(cmd.Context(), options(cmd), lookback)
		},
	}
)

// ruleChange collects the flags set on the command line.
func ruleChange(cmd *cobra.Command) (*client.RuleChange, error) {
	change := new(client.RuleChange)
	flags := cmd.Flags()

	if flags.Changed("days") {
		for _, value := range ruleDays {
			day, err := alarm.ParseWeekday(value)
			if err != nil {
				return nil, err
			}

			change.Days = append(change.Days, day)
		}
	}

	if flags.Changed("start") {
		change.StartHour = &ruleStart
	}

	if flags.Changed("end") {
		change.EndHour = &ruleEnd
	}

	if flags.Changed("interval") {
		change.IntervalMinutes = &ruleInterval
	}

	if change.Empty() {
		return nil, errNothingToChange
	}

	return change, nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	ruleCmd.Flags().StringSliceVar(&ruleDays, "days", nil, "weekdays alarms fire on")
	ruleCmd.Flags().IntVar(&ruleStart, "start", alarm.DefaultStartHour, "first hour of the alarm window")
	ruleCmd.Flags().IntVar(&ruleEnd, "end", alarm.DefaultEndHour, "exclusive last hour of the alarm window")
	ruleCmd.Flags().IntVar(&ruleInterval, "interval", alarm.DefaultIntervalMinutes, "minutes between alarms")

	previewCmd.Flags().IntVar(&previewDays, "days", 0, "number of calendar days to list (0 uses the daemon default)")

	catchUpCmd.Flags().DurationVar(&lookback, "lookback", 0, "how far back to look (0 uses the configured lookback)")
}
