package fakeapi

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jrsteele09/bell-client/model"
)

// AddSchedule stores s with a fresh id and returns the stored copy.
func (a *API) AddSchedule(s model.Schedule) model.Schedule {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.addSchedule(s)
}

// Schedules returns the stored schedules ordered by id.
func (a *API) Schedules() []model.Schedule {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.scheduleList()
}

// addSchedule must be called with mu held.
func (a *API) addSchedule(s model.Schedule) model.Schedule {
	now := time.Now().UTC()
	s.ID = a.id()
	s.CreatedAt, s.UpdatedAt = now, now
	for i := range s.TimeSlots {
		s.TimeSlots[i].ID = a.id()
		s.TimeSlots[i].ScheduleID = s.ID
	}
	if s.IsDefault {
		a.clearFlag(s.ID, func(other *model.Schedule) { other.IsDefault = false })
	}
	stored := s
	a.schedules[s.ID] = &stored
	return s
}

func (a *API) scheduleList() []model.Schedule {
	list := make([]model.Schedule, 0, len(a.schedules))
	for _, s := range a.schedules {
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// clearFlag applies unset to every schedule other than id.
func (a *API) clearFlag(id int64, unset func(*model.Schedule)) {
	for otherID, other := range a.schedules {
		if otherID != id {
			unset(other)
		}
	}
}

func scheduleID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortError(c, http.StatusBadRequest, "Invalid schedule ID")
		return 0, false
	}
	return id, true
}

func (a *API) listSchedules(c *gin.Context) {
	c.JSON(http.StatusOK, a.Schedules())
}

func (a *API) getSchedule(c *gin.Context) {
	id, ok := scheduleID(c)
	if !ok {
		return
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	s, found := a.schedules[id]
	if !found {
		abortError(c, http.StatusNotFound, "Schedule not found")
		return
	}
	c.JSON(http.StatusOK, s)
}

func (a *API) createSchedule(c *gin.Context) {
	var req model.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		abortError(c, http.StatusBadRequest, "Name is required")
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.addSchedule(model.Schedule{
		Name:        req.Name,
		Description: req.Description,
		IsDefault:   req.IsDefault,
		IsTemporary: req.IsTemporary,
		TimeSlots:   req.TimeSlots,
	})
	c.JSON(http.StatusCreated, s)
}

func (a *API) updateSchedule(c *gin.Context) {
	id, ok := scheduleID(c)
	if !ok {
		return
	}
	var req model.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	s, found := a.schedules[id]
	if !found {
		abortError(c, http.StatusNotFound, "Schedule not found")
		return
	}
	s.Name = req.Name
	s.Description = req.Description
	s.IsDefault = req.IsDefault
	s.IsTemporary = req.IsTemporary
	s.TimeSlots = make([]model.TimeSlot, len(req.TimeSlots))
	for i, slot := range req.TimeSlots {
		if slot.ID == 0 {
			slot.ID = a.id()
		}
		slot.ScheduleID = id
		s.TimeSlots[i] = slot
	}
	s.UpdatedAt = time.Now().UTC()
	if s.IsDefault {
		a.clearFlag(id, func(other *model.Schedule) { other.IsDefault = false })
	}
	c.JSON(http.StatusOK, s)
}

func (a *API) deleteSchedule(c *gin.Context) {
	id, ok := scheduleID(c)
	if !ok {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.schedules, id)
	c.JSON(http.StatusOK, model.MessageResponse{Message: "Schedule deleted successfully"})
}

func (a *API) triggerSchedule(c *gin.Context) {
	id, ok := scheduleID(c)
	if !ok {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	entry := model.LogEntry{
		ID:         a.id(),
		Timestamp:  time.Now().UTC(),
		Trigger:    "manual",
		ScheduleID: id,
		CreatedAt:  time.Now().UTC(),
	}
	if s, found := a.schedules[id]; found {
		entry.ScheduleName = s.Name
	}
	if acc, found := a.accounts[c.GetInt64(ctxUserID)]; found {
		entry.UserID = acc.user.ID
		entry.Username = acc.user.Username
	}
	a.logs = append(a.logs, entry)
	c.JSON(http.StatusOK, model.MessageResponse{Message: "Bell triggered successfully"})
}

func (a *API) setDefault(c *gin.Context) {
	a.toggle(c, "Schedule set as default successfully", func(s *model.Schedule) {
		a.clearFlag(s.ID, func(other *model.Schedule) { other.IsDefault = false })
		s.IsDefault = true
	})
}

func (a *API) setActive(c *gin.Context) {
	a.toggle(c, "Schedule set as active successfully", func(s *model.Schedule) {
		a.clearFlag(s.ID, func(other *model.Schedule) { other.IsActive = false })
		s.IsActive = true
	})
}

func (a *API) setTemporary(c *gin.Context) {
	var req model.TemporaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}
	a.toggle(c, "Schedule temporary status updated successfully", func(s *model.Schedule) {
		s.IsTemporary = req.IsTemporary
	})
}

// toggle answers with the schedule as it was before apply, like the real server.
func (a *API) toggle(c *gin.Context, message string, apply func(*model.Schedule)) {
	id, ok := scheduleID(c)
	if !ok {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	s, found := a.schedules[id]
	if !found {
		abortError(c, http.StatusNotFound, "Schedule not found")
		return
	}
	before := *s
	apply(s)
	s.UpdatedAt = time.Now().UTC()
	c.JSON(http.StatusOK, model.ScheduleToggleResponse{Message: message, Schedule: before})
}
