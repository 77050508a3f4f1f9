package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jrsteele09/bell-client/model"
)

func table(out io.Writer, header ...string) *tabwriter.Writer {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	return w
}

func row(w io.Writer, cols ...any) {
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = fmt.Sprint(col)
	}
	fmt.Fprintln(w, strings.Join(parts, "\t"))
}

func mark(set bool, label string) string {
	if set {
		return label
	}
	return ""
}

func renderSchedules(out io.Writer, items []model.Schedule) error {
	w := table(out, "ID", "NAME", "SLOTS", "FLAGS")
	for _, sc := range items {
		flags := strings.Join(nonEmpty(mark(sc.IsDefault, "default"), mark(sc.IsActive, "active"), mark(sc.IsTemporary, "temporary")), ",")
		row(w, sc.ID, sc.Name, len(sc.TimeSlots), flags)
	}
	return w.Flush()
}

func renderSchedule(out io.Writer, sc model.Schedule) error {
	fmt.Fprintf(out, "%s (#%d)\n", sc.Name, sc.ID)
	if sc.Description != "" {
		fmt.Fprintln(out, sc.Description)
	}
	w := table(out, "TIME", "DAYS", "DESCRIPTION")
	for _, slot := range sc.TimeSlots {
		row(w, slot.TriggerTime, strings.Join(slotDays(slot.Days), ","), slot.Description)
	}
	return w.Flush()
}

func renderUsers(out io.Writer, page model.UserPage, pageNo int) error {
	w := table(out, "ID", "USERNAME", "EMAIL", "ROLE", "ACTIVE")
	for _, u := range page.Users {
		row(w, u.ID, u.Username, u.Email, u.Role, u.IsActive)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "page %d, %d of %d users\n", pageNo, len(page.Users), page.Total)
	return nil
}

func renderLogs(out io.Writer, entries []model.LogEntry) error {
	w := table(out, "TIME", "TRIGGER", "SCHEDULE", "USER")
	for _, e := range entries {
		schedule := e.ScheduleName
		if e.ScheduleTime != "" {
			schedule = strings.TrimSpace(schedule + " " + e.ScheduleTime)
		}
		row(w, e.Timestamp.Local().Format(time.DateTime), e.Trigger, schedule, e.Username)
	}
	return w.Flush()
}

func renderSettings(out io.Writer, s model.Settings) error {
	w := table(out, "SETTING", "VALUE")
	row(w, "ringDuration", fmt.Sprintf("%ds", s.RingDuration))
	row(w, "timezone", s.Timezone)
	row(w, "gpioPin", s.GPIOPin)
	return w.Flush()
}

// slotDays decodes the JSON array of day names a time slot carries.
func slotDays(raw string) []string {
	var days []string
	if err := json.Unmarshal([]byte(raw), &days); err != nil {
		return []string{raw}
	}
	return days
}

func nonEmpty(values ...string) []string {
	out := values[:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
