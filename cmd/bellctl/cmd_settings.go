package main

import (
	"fmt"

	"github.com/jrsteele09/bell-client/guard"
	"github.com/jrsteele09/bell-client/settings"
	"github.com/spf13/cobra"
)

func (c *cli) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show and change the bell settings",
	}
	cmd.AddCommand(c.settingsGetCmd(), c.settingsSetCmd(), c.timezonesCmd())
	return cmd
}

func (c *cli) settingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.enter(guard.RouteSettings); err != nil {
				return err
			}
			ctx, cancel := c.context(cmd)
			defer cancel()
			current, err := c.app.Settings.FetchSettings(ctx)
			if err != nil {
				return fmt.Errorf("%s", c.app.Settings.Error())
			}
			return renderSettings(c.out, current)
		},
	}
}

func (c *cli) settingsSetCmd() *cobra.Command {
	var (
		ringDuration, gpioPin int
		timezone              string
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change one or more settings",
		Example: `  bellctl settings set --ring-duration 8
  bellctl settings set --timezone Europe/London --gpio-pin 17`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			changes := map[settings.Key]any{}
			if cmd.Flags().Changed("ring-duration") {
				changes[settings.KeyRingDuration] = ringDuration
			}
			if cmd.Flags().Changed("timezone") {
				changes[settings.KeyTimezone] = timezone
			}
			if cmd.Flags().Changed("gpio-pin") {
				changes[settings.KeyGPIOPin] = gpioPin
			}
			if len(changes) == 0 {
				return fmt.Errorf("nothing to change, pass --ring-duration, --timezone or --gpio-pin")
			}
			if err := c.enter(guard.RouteSettings); err != nil {
				return err
			}

			store := c.app.Settings
			ctx, cancel := c.context(cmd)
			defer cancel()
			if _, err := store.FetchSettings(ctx); err != nil {
				return fmt.Errorf("%s", store.Error())
			}
			for key, value := range changes {
				if err := store.UpdateSetting(key, value); err != nil {
					return err
				}
			}
			updated, err := store.UpdateSettings(ctx, store.Settings())
			if err != nil {
				return fmt.Errorf("%s", store.Error())
			}
			return renderSettings(c.out, updated)
		},
	}
	cmd.Flags().IntVar(&ringDuration, "ring-duration", 0, "seconds the bell rings for")
	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA timezone of the schedules")
	cmd.Flags().IntVar(&gpioPin, "gpio-pin", 0, "GPIO pin driving the bell")
	return cmd
}

func (c *cli) timezonesCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "timezones",
		Short:       "List the selectable timezones",
		Annotations: map[string]string{"offline": "true"},
		Args:        cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			for _, tz := range settings.Timezones() {
				fmt.Fprintln(c.out, tz)
			}
			return nil
		},
	}
}
