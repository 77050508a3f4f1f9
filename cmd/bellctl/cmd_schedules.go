package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jrsteele09/bell-client/guard"
	"github.com/jrsteele09/bell-client/model"
	"github.com/spf13/cobra"
)

func (c *cli) schedulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schedules",
		Aliases: []string{"schedule"},
		Short:   "List and manage bell schedules",
	}
	cmd.AddCommand(
		c.schedulesListCmd(),
		c.schedulesShowCmd(),
		c.schedulesCreateCmd(),
		c.schedulesDeleteCmd(),
		c.scheduleToggleCmd("default", "Make a schedule the default", c.setDefault),
		c.scheduleToggleCmd("active", "Make a schedule the active one", c.setActive),
		c.schedulesTemporaryCmd(),
		c.triggerCmd(),
	)
	return cmd
}

func (c *cli) schedulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List schedules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.enter(guard.RouteSchedules); err != nil {
				return err
			}
			ctx, cancel := c.context(cmd)
			defer cancel()
			items, err := c.app.Schedules.FetchSchedules(ctx)
			if err != nil {
				return fmt.Errorf("%s", c.app.Schedules.Error())
			}
			if len(items) == 0 {
				fmt.Fprintln(c.out, "No schedules")
				return nil
			}
			return renderSchedules(c.out, items)
		},
	}
}

func (c *cli) schedulesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a schedule and its time slots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.enter(guard.RouteSchedules); err != nil {
				return err
			}
			ctx, cancel := c.context(cmd)
			defer cancel()
			sc, err := c.app.Schedules.FetchSchedule(ctx, id)
			if err != nil {
				return fmt.Errorf("%s", c.app.Schedules.Error())
			}
			return renderSchedule(c.out, sc)
		},
	}
}

func (c *cli) schedulesCreateCmd() *cobra.Command {
	var (
		req   model.ScheduleRequest
		slots []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a schedule",
		Example: `  bellctl schedules create --name "School day" \
    --slot "08:45=Monday,Tuesday,Wednesday,Thursday,Friday" \
    --slot "15:15=Monday,Tuesday,Wednesday,Thursday,Friday=End of day"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, raw := range slots {
				slot, err := parseSlot(raw)
				if err != nil {
					return err
				}
				req.TimeSlots = append(req.TimeSlots, slot)
			}
			if err := c.enter(guard.RouteSchedules); err != nil {
				return err
			}
			ctx, cancel := c.context(cmd)
			defer cancel()
			sc, err := c.app.Schedules.CreateSchedule(ctx, req)
			if err != nil {
				return fmt.Errorf("%s", c.app.Schedules.Error())
			}
			fmt.Fprintf(c.out, "Created schedule %q (#%d)\n", sc.Name, sc.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "schedule name")
	cmd.Flags().StringVar(&req.Description, "description", "", "schedule description")
	cmd.Flags().BoolVar(&req.IsDefault, "default", false, "mark as the default schedule")
	cmd.Flags().BoolVar(&req.IsTemporary, "temporary", false, "mark as a temporary schedule")
	cmd.Flags().StringArrayVar(&slots, "slot", nil, "time slot as HH:MM=Day,Day[=description], repeatable")
	return cmd
}

func (c *cli) schedulesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.enter(guard.RouteSchedules); err != nil {
				return err
			}
			ctx, cancel := c.context(cmd)
			defer cancel()
			if err := c.app.Schedules.DeleteSchedule(ctx, id); err != nil {
				return fmt.Errorf("%s", c.app.Schedules.Error())
			}
			fmt.Fprintf(c.out, "Deleted schedule #%d\n", id)
			return nil
		},
	}
}

type toggleFunc func(cmd *cobra.Command, id int64) ([]model.Schedule, error)

func (c *cli) setDefault(cmd *cobra.Command, id int64) ([]model.Schedule, error) {
	ctx, cancel := c.context(cmd)
	defer cancel()
	return c.app.Schedules.SetDefaultSchedule(ctx, id)
}

func (c *cli) setActive(cmd *cobra.Command, id int64) ([]model.Schedule, error) {
	ctx, cancel := c.context(cmd)
	defer cancel()
	return c.app.Schedules.SetActiveSchedule(ctx, id)
}

func (c *cli) scheduleToggleCmd(use, short string, apply toggleFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.enter(guard.RouteSchedules); err != nil {
				return err
			}
			items, err := apply(cmd, id)
			if err != nil {
				return fmt.Errorf("%s", c.app.Schedules.Error())
			}
			return renderSchedules(c.out, items)
		},
	}
}

func (c *cli) schedulesTemporaryCmd() *cobra.Command {
	var off bool
	cmd := c.scheduleToggleCmd("temporary", "Mark a schedule as temporary", func(cmd *cobra.Command, id int64) ([]model.Schedule, error) {
		ctx, cancel := c.context(cmd)
		defer cancel()
		return c.app.Schedules.SetTemporarySchedule(ctx, id, !off)
	})
	cmd.Flags().BoolVar(&off, "off", false, "clear the temporary flag instead")
	return cmd
}

func (c *cli) triggerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trigger",
		Short: "Ring the bell now using the default schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.enter(guard.RouteDashboard); err != nil {
				return err
			}
			ctx, cancel := c.context(cmd)
			defer cancel()
			if _, err := c.app.Schedules.FetchSchedules(ctx); err != nil {
				return fmt.Errorf("%s", c.app.Schedules.Error())
			}
			sc, err := c.app.Schedules.TriggerBell(ctx)
			if err != nil {
				return fmt.Errorf("%s", c.app.Schedules.Error())
			}
			fmt.Fprintf(c.out, "Bell triggered with schedule %q\n", sc.Name)
			return nil
		},
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// parseSlot reads HH:MM=Day,Day[=description].
func parseSlot(raw string) (model.TimeSlot, error) {
	parts := strings.SplitN(raw, "=", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return model.TimeSlot{}, fmt.Errorf("invalid slot %q, want HH:MM=Day,Day", raw)
	}
	var days []string
	for _, day := range strings.Split(parts[1], ",") {
		if day = strings.TrimSpace(day); day != "" {
			days = append(days, day)
		}
	}
	encoded, err := json.Marshal(days)
	if err != nil {
		return model.TimeSlot{}, err
	}
	slot := model.TimeSlot{TriggerTime: strings.TrimSpace(parts[0]), Days: string(encoded)}
	if len(parts) == 3 {
		slot.Description = parts[2]
	}
	return slot, nil
}
