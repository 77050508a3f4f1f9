// Package fakeapi is an in-memory bell scheduler API served with gin. It
// mirrors the routes and response shapes of the real server closely enough
// for the client stores to be exercised end to end.
package fakeapi

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jrsteele09/bell-client/model"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Hook runs before every handler. Tests use it to block a request mid flight.
type Hook func(c *gin.Context)

type failure struct {
	status  int
	message string
}

// API holds the fake server state. All methods are safe for concurrent use.
type API struct {
	mu        sync.RWMutex
	secret    []byte
	tokenTTL  time.Duration
	accounts  map[int64]*account
	schedules map[int64]*model.Schedule
	settings  model.Settings
	logs      []model.LogEntry
	revoked   map[string]bool
	nextID    int64
	requests  []string
	failures  map[string]failure
	hook      Hook
	engine    *gin.Engine
	logger    zerolog.Logger
}

// Option configures an API.
type Option func(*API)

// WithSecret sets the HS256 signing secret.
func WithSecret(secret string) Option {
	return func(a *API) {
		a.secret = []byte(secret)
	}
}

// WithTokenTTL sets how long issued tokens stay valid.
func WithTokenTTL(ttl time.Duration) Option {
	return func(a *API) {
		a.tokenTTL = ttl
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *API) {
		a.logger = logger
	}
}

// New creates an empty API with default settings.
func New(opts ...Option) *API {
	gin.SetMode(gin.TestMode)
	a := &API{
		secret:    []byte("bell-test-secret"),
		tokenTTL:  24 * time.Hour,
		accounts:  make(map[int64]*account),
		schedules: make(map[int64]*model.Schedule),
		settings:  model.Settings{RingDuration: 5, GPIOPin: 18, Timezone: "UTC"},
		revoked:   make(map[string]bool),
		failures:  make(map[string]failure),
		logger:    log.Logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.engine = a.routes()
	return a
}

// Handler returns the http.Handler serving the API under /api.
func (a *API) Handler() http.Handler {
	return a.engine
}

func (a *API) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), a.observe())

	api := r.Group("/api")
	api.POST("/auth/login", a.login)
	api.POST("/auth/register", a.register)
	api.POST("/auth/forgot-password", a.forgotPassword)
	api.POST("/auth/reset-password", a.resetPassword)

	protected := api.Group("")
	protected.Use(a.requireAuth())
	protected.GET("/auth/me", a.me)
	protected.POST("/auth/change-password", a.changePassword)

	protected.GET("/users", a.listUsers)
	protected.POST("/users", a.createUser)
	protected.PUT("/users/:id", a.updateUser)
	protected.DELETE("/users/:id", a.deleteUser)

	protected.GET("/schedules", a.listSchedules)
	protected.POST("/schedules", a.createSchedule)
	protected.GET("/schedules/:id", a.getSchedule)
	protected.PUT("/schedules/:id", a.updateSchedule)
	protected.DELETE("/schedules/:id", a.deleteSchedule)
	protected.POST("/schedules/:id/trigger", a.triggerSchedule)
	protected.PUT("/schedules/:id/default", a.setDefault)
	protected.PUT("/schedules/:id/temporary", a.setTemporary)
	protected.PUT("/schedules/:id/active", a.setActive)

	protected.GET("/settings", a.getSettings)
	protected.PUT("/settings", a.updateSettings)

	protected.GET("/logs", a.listLogs)
	protected.GET("/logs/range", a.logsByRange)
	return r
}

// observe records the request, runs the hook and serves injected failures.
func (a *API) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Request.Method + " " + strings.TrimPrefix(c.Request.URL.Path, "/api")

		a.mu.Lock()
		a.requests = append(a.requests, key)
		f, failing := a.failures[key]
		if failing {
			delete(a.failures, key)
		}
		hook := a.hook
		a.mu.Unlock()

		a.logger.Debug().Str("request", key).Msg("Fake API request")
		if hook != nil {
			hook(c)
		}
		if failing {
			if f.message == "" {
				c.AbortWithStatus(f.status)
				return
			}
			c.AbortWithStatusJSON(f.status, gin.H{"error": f.message})
		}
	}
}

// SetHook installs h, replacing any previous hook. A nil h removes it.
func (a *API) SetHook(h Hook) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hook = h
}

// FailNext makes the next request matching method and path (without the
// /api prefix, e.g. "/schedules/3") answer status. An empty message sends
// no body.
func (a *API) FailNext(method, path string, status int, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures[method+" "+path] = failure{status: status, message: message}
}

// Requests returns every request seen so far as "METHOD /path".
func (a *API) Requests() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]string(nil), a.requests...)
}

// CountRequests returns how many requests matched "METHOD /path".
func (a *API) CountRequests(key string) int {
	n := 0
	for _, r := range a.Requests() {
		if r == key {
			n++
		}
	}
	return n
}

// ResetRequests forgets the recorded requests.
func (a *API) ResetRequests() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests = nil
}

// id must be called with mu held.
func (a *API) id() int64 {
	a.nextID++
	return a.nextID
}

func abortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
