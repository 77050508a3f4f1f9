package model

import "time"

// Schedule is a named set of bell times. IsDefault and IsActive are flags the
// server maintains; the client never enforces that only one schedule carries them.
type Schedule struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	IsDefault   bool       `json:"isDefault"`
	IsActive    bool       `json:"isActive"`
	IsTemporary bool       `json:"isTemporary"`
	TimeSlots   []TimeSlot `json:"timeSlots"`
	CreatedAt   time.Time  `json:"createdAt,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt,omitempty"`
}

// TimeSlot is a single bell ring inside a schedule.
type TimeSlot struct {
	ID          int64  `json:"id,omitempty"`
	ScheduleID  int64  `json:"scheduleId,omitempty"`
	// TriggerTime is HH:MM.
	TriggerTime string `json:"triggerTime" validate:"required,datetime=15:04"`
	// Days is a JSON array of day names.
	Days        string `json:"days"`
	Description string `json:"description"`
}

// ScheduleRequest is the body of POST /schedules and PUT /schedules/:id.
type ScheduleRequest struct {
	Name        string     `json:"name" validate:"required"`
	Description string     `json:"description"`
	IsDefault   bool       `json:"isDefault"`
	IsTemporary bool       `json:"isTemporary"`
	TimeSlots   []TimeSlot `json:"timeSlots" validate:"dive"`
}

// TemporaryRequest is the body of PUT /schedules/:id/temporary.
type TemporaryRequest struct {
	IsTemporary bool `json:"isTemporary"`
}

// ScheduleToggleResponse is returned by the default/active/temporary endpoints.
type ScheduleToggleResponse struct {
	Message  string   `json:"message"`
	Schedule Schedule `json:"schedule"`
}
