package fakeapi

import (
	"net/http"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/jrsteele09/bell-client/model"
)

// SetSettings replaces the stored settings.
func (a *API) SetSettings(s model.Settings) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.settings = s
}

// AddLog appends a log entry with a fresh id and returns it.
func (a *API) AddLog(entry model.LogEntry) model.LogEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	entry.ID = a.id()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = entry.Timestamp
	}
	a.logs = append(a.logs, entry)
	return entry
}

func (a *API) getSettings(c *gin.Context) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	c.JSON(http.StatusOK, a.settings)
}

func (a *API) updateSettings(c *gin.Context) {
	var req model.Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.RingDuration < 1 || req.RingDuration > 60 {
		abortError(c, http.StatusBadRequest, "ringDuration must be between 1 and 60")
		return
	}
	if req.GPIOPin < 1 || req.GPIOPin > 40 {
		abortError(c, http.StatusBadRequest, "gpioPin must be between 1 and 40")
		return
	}
	if _, err := time.LoadLocation(req.Timezone); req.Timezone == "" || err != nil {
		abortError(c, http.StatusBadRequest, "Invalid timezone")
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.settings = req
	c.JSON(http.StatusOK, a.settings)
}

func (a *API) listLogs(c *gin.Context) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	c.JSON(http.StatusOK, append([]model.LogEntry{}, a.logs...))
}

func (a *API) logsByRange(c *gin.Context) {
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		abortError(c, http.StatusBadRequest, "Invalid start date format")
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		abortError(c, http.StatusBadRequest, "Invalid end date format")
		return
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	logs := []model.LogEntry{}
	for _, entry := range a.logs {
		if !entry.Timestamp.Before(start) && !entry.Timestamp.After(end) {
			logs = append(logs, entry)
		}
	}
	c.JSON(http.StatusOK, logs)
}
