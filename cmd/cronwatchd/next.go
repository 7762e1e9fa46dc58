package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amir-mohammad-HP/cronwatch/internal/schedule"
)

func newNextCmd() *cobra.Command {
	var (
		count    int
		timezone string
		from     string
	)

	cmd := &cobra.Command{
		Use:   "next <schedule>",
		Short: "Print the next fire times of a schedule",
		Example: `  cronwatchd next "every 24h"
  cronwatchd next "at Monday 09:00" -n 3 --tz Europe/Berlin
  cronwatchd next "cron 0 */6 * * *"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1, got %d", count)
			}
			spec, err := schedule.Parse(strings.Join(args, " "))
			if err != nil {
				return err
			}

			loc, err := time.LoadLocation(timezone)
			if err != nil {
				return fmt.Errorf("invalid timezone: %w", err)
			}
			start := time.Now().In(loc)
			if from != "" {
				if start, err = time.Parse(time.RFC3339, from); err != nil {
					return fmt.Errorf("invalid --from: %w", err)
				}
				start = start.In(loc)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, spec.String())
			for _, t := range schedule.Preview(spec, start, count) {
				fmt.Fprintf(out, "  %s\n", t.Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 5, "number of fire times")
	cmd.Flags().StringVar(&timezone, "tz", "UTC", "IANA time zone")
	cmd.Flags().StringVar(&from, "from", "", "RFC 3339 start time (default now)")
	return cmd
}
