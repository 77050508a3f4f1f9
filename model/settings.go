package model

import "time"

// Settings is the singleton configuration of the bell controller.
// RingDuration is expressed in seconds on the wire.
type Settings struct {
	RingDuration int    `json:"ringDuration"`
	Timezone     string `json:"timezone"`
	GPIOPin      int    `json:"gpioPin"`
}

// DefaultSettings is what the client shows before the first fetch.
func DefaultSettings() Settings {
	return Settings{
		RingDuration: 30,
		Timezone:     "UTC",
	}
}

// RingDurationValue converts the wire seconds into a time.Duration.
func (s Settings) RingDurationValue() time.Duration {
	return time.Duration(s.RingDuration) * time.Second
}

// LogEntry records one bell ringing event.
type LogEntry struct {
	ID           int64     `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Trigger      string    `json:"trigger"` // "schedule" or "manual"
	UserID       int64     `json:"userId,omitempty"`
	Username     string    `json:"username,omitempty"`
	ScheduleID   int64     `json:"scheduleId,omitempty"`
	ScheduleName string    `json:"scheduleName,omitempty"`
	ScheduleTime string    `json:"scheduleTime,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
