package main

import (
	"fmt"
	"time"

	"github.com/jrsteele09/bell-client/guard"
	"github.com/jrsteele09/bell-client/model"
	"github.com/spf13/cobra"
)

func (c *cli) logsCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show when the bell rang",
		Long:  "Show the ring log. With --from (and optionally --to) only entries in that range are listed. Dates are YYYY-MM-DD or RFC 3339.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var start, end time.Time
			if from != "" {
				var err error
				if start, err = parseWhen(from, false); err != nil {
					return err
				}
				end = time.Now()
				if to != "" {
					if end, err = parseWhen(to, true); err != nil {
						return err
					}
				}
			} else if to != "" {
				return fmt.Errorf("--to needs --from")
			}
			if err := c.enter(guard.RouteLogs); err != nil {
				return err
			}

			ctx, cancel := c.context(cmd)
			defer cancel()
			var (
				entries []model.LogEntry
				err     error
			)
			if from != "" {
				entries, err = c.app.Logs.FetchLogsByRange(ctx, start, end)
			} else {
				entries, err = c.app.Logs.FetchLogs(ctx)
			}
			if err != nil {
				return fmt.Errorf("%s", c.app.Logs.Error())
			}
			if len(entries) == 0 {
				fmt.Fprintln(c.out, "No log entries")
				return nil
			}
			return renderLogs(c.out, entries)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "start of the range")
	cmd.Flags().StringVar(&to, "to", "", "end of the range, defaults to now")
	return cmd
}

// parseWhen accepts RFC 3339 or a local date. A date given as the end of a
// range covers the whole day.
func parseWhen(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	day, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, want YYYY-MM-DD or RFC 3339", raw)
	}
	if endOfDay {
		return day.Add(24*time.Hour - time.Second), nil
	}
	return day, nil
}
