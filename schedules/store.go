// Package schedules mirrors the server's bell schedules. CRUD intents patch
// the mirror from the response body; the default, active and temporary
// toggles re-read the whole collection because the server may change other
// entries as a side effect.
package schedules

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/jrsteele09/bell-client/httpclient"
	apperrors "github.com/jrsteele09/bell-client/internal/errors"
	"github.com/jrsteele09/bell-client/internal/intent"
	"github.com/jrsteele09/bell-client/internal/validate"
	"github.com/jrsteele09/bell-client/model"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	intentFetchAll     = intent.Intent{Name: "fetchSchedules", Fallback: "Failed to fetch schedules"}
	intentFetch        = intent.Intent{Name: "fetchSchedule", Fallback: "Failed to fetch schedule"}
	intentCreate       = intent.Intent{Name: "createSchedule", Fallback: "Failed to create schedule"}
	intentUpdate       = intent.Intent{Name: "updateSchedule", Fallback: "Failed to update schedule"}
	intentDelete       = intent.Intent{Name: "deleteSchedule", Fallback: "Failed to delete schedule"}
	intentSetDefault   = intent.Intent{Name: "setDefaultSchedule", Fallback: "Failed to set default schedule"}
	intentSetTemporary = intent.Intent{Name: "setTemporarySchedule", Fallback: "Failed to set temporary schedule"}
	intentSetActive    = intent.Intent{Name: "setActiveSchedule", Fallback: "Failed to set active schedule"}
	intentTrigger      = intent.Intent{Name: "triggerBell", Fallback: "Failed to trigger bell"}
)

// Store is the schedules mirror.
type Store struct {
	intent.Flags
	api      httpclient.Requester
	validate *validate.Validator
	logger   zerolog.Logger

	mu      sync.RWMutex
	items   []model.Schedule
	current *model.Schedule
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func NewStore(api httpclient.Requester, opts ...Option) *Store {
	s := &Store{
		api:      api,
		validate: validate.New(),
		logger:   log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Items returns a copy of the mirrored collection in server order.
func (s *Store) Items() []model.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Current returns the schedule last opened with FetchSchedule, or nil.
func (s *Store) Current() *model.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	c := *s.current
	return &c
}

// DefaultSchedule returns the first schedule flagged default, or nil.
func (s *Store) DefaultSchedule() *model.Schedule {
	return s.find(func(sc model.Schedule) bool { return sc.IsDefault })
}

// ActiveSchedule returns the first schedule flagged active, or nil.
func (s *Store) ActiveSchedule() *model.Schedule {
	return s.find(func(sc model.Schedule) bool { return sc.IsActive })
}

func (s *Store) find(match func(model.Schedule) bool) *model.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := slices.IndexFunc(s.items, match); i >= 0 {
		found := s.items[i]
		return &found
	}
	return nil
}

// FetchSchedules replaces the mirror with the server's collection.
func (s *Store) FetchSchedules(ctx context.Context) ([]model.Schedule, error) {
	return intent.Run(ctx, &s.Flags, s.logger, intentFetchAll, s.list, s.replaceAll)
}

// FetchSchedule loads one schedule into Current.
func (s *Store) FetchSchedule(ctx context.Context, id int64) (model.Schedule, error) {
	return intent.Run(ctx, &s.Flags, s.logger, intentFetch,
		func(ctx context.Context) (model.Schedule, error) {
			var sc model.Schedule
			err := s.api.Send(ctx, httpclient.Request{Method: http.MethodGet, Path: schedulePath(id)}, &sc)
			return sc, err
		},
		func(sc model.Schedule) {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.current = &sc
		},
	)
}

// CreateSchedule creates a schedule and adds the server's copy, replacing
// an entry with the same id that a concurrent fetch already brought in.
func (s *Store) CreateSchedule(ctx context.Context, req model.ScheduleRequest) (model.Schedule, error) {
	return intent.Run(ctx, &s.Flags, s.logger, intentCreate,
		func(ctx context.Context) (model.Schedule, error) {
			var sc model.Schedule
			if err := s.validate.Struct(req); err != nil {
				return sc, err
			}
			err := s.api.Send(ctx, httpclient.Request{Method: http.MethodPost, Path: "/schedules", Body: req}, &sc)
			return sc, err
		},
		s.upsert,
	)
}

// UpdateSchedule updates a schedule and swaps the server's copy into the
// mirror and into Current when it is the one open.
func (s *Store) UpdateSchedule(ctx context.Context, id int64, req model.ScheduleRequest) (model.Schedule, error) {
	return intent.Run(ctx, &s.Flags, s.logger, intentUpdate,
		func(ctx context.Context) (model.Schedule, error) {
			var sc model.Schedule
			if err := s.validate.Struct(req); err != nil {
				return sc, err
			}
			err := s.api.Send(ctx, httpclient.Request{Method: http.MethodPut, Path: schedulePath(id), Body: req}, &sc)
			return sc, err
		},
		s.replaceOne,
	)
}

// DeleteSchedule deletes a schedule and drops it from the mirror.
func (s *Store) DeleteSchedule(ctx context.Context, id int64) error {
	_, err := intent.Run(ctx, &s.Flags, s.logger, intentDelete,
		func(ctx context.Context) (int64, error) {
			err := s.api.Send(ctx, httpclient.Request{Method: http.MethodDelete, Path: schedulePath(id)}, nil)
			return id, err
		},
		s.removeOne,
	)
	return err
}

// SetDefaultSchedule flags a schedule as default and re-reads the collection.
func (s *Store) SetDefaultSchedule(ctx context.Context, id int64) ([]model.Schedule, error) {
	return s.toggle(ctx, intentSetDefault, httpclient.Request{Method: http.MethodPut, Path: schedulePath(id) + "/default"})
}

// SetTemporarySchedule sets a schedule's temporary flag and re-reads the collection.
func (s *Store) SetTemporarySchedule(ctx context.Context, id int64, isTemporary bool) ([]model.Schedule, error) {
	return s.toggle(ctx, intentSetTemporary, httpclient.Request{
		Method: http.MethodPut,
		Path:   schedulePath(id) + "/temporary",
		Body:   model.TemporaryRequest{IsTemporary: isTemporary},
	})
}

// SetActiveSchedule flags a schedule as active and re-reads the collection.
func (s *Store) SetActiveSchedule(ctx context.Context, id int64) ([]model.Schedule, error) {
	return s.toggle(ctx, intentSetActive, httpclient.Request{Method: http.MethodPut, Path: schedulePath(id) + "/active"})
}

// toggle sends the update and the refetch under one intent, so loading
// stays raised across both calls.
func (s *Store) toggle(ctx context.Context, in intent.Intent, req httpclient.Request) ([]model.Schedule, error) {
	return intent.Run(ctx, &s.Flags, s.logger, in,
		func(ctx context.Context) ([]model.Schedule, error) {
			var resp model.ScheduleToggleResponse
			if err := s.api.Send(ctx, req, &resp); err != nil {
				return nil, err
			}
			return s.list(ctx)
		},
		s.replaceAll,
	)
}

// TriggerBell rings the bell through the default schedule, or the first
// mirrored schedule when none is default. The target is resolved from the
// last fetched collection only.
func (s *Store) TriggerBell(ctx context.Context) (model.Schedule, error) {
	return intent.Run(ctx, &s.Flags, s.logger, intentTrigger,
		func(ctx context.Context) (model.Schedule, error) {
			target, ok := s.triggerTarget()
			if !ok {
				return model.Schedule{}, &apperrors.ValidationError{Reason: apperrors.ErrNoSchedules.Error(), Err: apperrors.ErrNoSchedules}
			}
			var resp model.MessageResponse
			err := s.api.Send(ctx, httpclient.Request{Method: http.MethodPost, Path: schedulePath(target.ID) + "/trigger"}, &resp)
			return target, err
		},
		func(target model.Schedule) {
			s.logger.Info().Int64("schedule_id", target.ID).Str("schedule", target.Name).Msg("Bell triggered")
		},
	)
}

func (s *Store) triggerTarget() (model.Schedule, bool) {
	if d := s.DefaultSchedule(); d != nil {
		return *d, true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.items) == 0 {
		return model.Schedule{}, false
	}
	return s.items[0], true
}

func (s *Store) list(ctx context.Context) ([]model.Schedule, error) {
	var items []model.Schedule
	err := s.api.Send(ctx, httpclient.Request{Method: http.MethodGet, Path: "/schedules"}, &items)
	return items, err
}

func (s *Store) replaceAll(items []model.Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.Clone(items)
}

func (s *Store) replaceOne(sc model.Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slices.IndexFunc(s.items, func(x model.Schedule) bool { return x.ID == sc.ID }); i >= 0 {
		s.items[i] = sc
	}
	if s.current != nil && s.current.ID == sc.ID {
		s.current = &sc
	}
}

func (s *Store) upsert(sc model.Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slices.IndexFunc(s.items, func(x model.Schedule) bool { return x.ID == sc.ID }); i >= 0 {
		s.items[i] = sc
		return
	}
	s.items = append(s.items, sc)
}

func (s *Store) removeOne(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.DeleteFunc(s.items, func(x model.Schedule) bool { return x.ID == id })
	if s.current != nil && s.current.ID == id {
		s.current = nil
	}
}

func schedulePath(id int64) string {
	return fmt.Sprintf("/schedules/%d", id)
}
