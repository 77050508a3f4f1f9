// Package settings mirrors the bell controller's singleton settings record.
package settings

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/jrsteele09/bell-client/httpclient"
	apperrors "github.com/jrsteele09/bell-client/internal/errors"
	"github.com/jrsteele09/bell-client/internal/intent"
	"github.com/jrsteele09/bell-client/model"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	intentFetch  = intent.Intent{Name: "fetchSettings", Fallback: "Failed to fetch settings"}
	intentUpdate = intent.Intent{Name: "updateSettings", Fallback: "Failed to update settings"}
)

// Key names a single setting for UpdateSetting.
type Key string

const (
	KeyRingDuration Key = "ringDuration"
	KeyTimezone     Key = "timezone"
	KeyGPIOPin      Key = "gpioPin"
)

// updateRequest is the only body PUT /settings is sent.
type updateRequest struct {
	RingDuration int    `json:"ringDuration"`
	Timezone     string `json:"timezone"`
	GPIOPin      int    `json:"gpioPin"`
}

// Store is the settings mirror.
type Store struct {
	intent.Flags
	api    httpclient.Requester
	logger zerolog.Logger

	mu       sync.RWMutex
	settings model.Settings
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a Store holding model.DefaultSettings.
func NewStore(api httpclient.Requester, opts ...Option) *Store {
	s := &Store{
		api:      api,
		logger:   log.Logger,
		settings: model.DefaultSettings(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Settings returns the mirrored record.
func (s *Store) Settings() model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// RingDuration returns the ring length.
func (s *Store) RingDuration() time.Duration {
	return s.Settings().RingDurationValue()
}

// Timezone returns the controller's timezone name.
func (s *Store) Timezone() string {
	return s.Settings().Timezone
}

// FetchSettings replaces the mirror with the server's record.
func (s *Store) FetchSettings(ctx context.Context) (model.Settings, error) {
	return intent.Run(ctx, &s.Flags, s.logger, intentFetch,
		func(ctx context.Context) (model.Settings, error) {
			var out model.Settings
			err := s.api.Send(ctx, httpclient.Request{Method: http.MethodGet, Path: "/settings"}, &out)
			return out, err
		},
		s.commit,
	)
}

// UpdateSettings sends ringDuration, timezone and gpioPin from in and
// mirrors the server's answer. Nothing else is forwarded.
func (s *Store) UpdateSettings(ctx context.Context, in model.Settings) (model.Settings, error) {
	return intent.Run(ctx, &s.Flags, s.logger, intentUpdate,
		func(ctx context.Context) (model.Settings, error) {
			body := updateRequest{RingDuration: in.RingDuration, Timezone: in.Timezone, GPIOPin: in.GPIOPin}
			var out model.Settings
			err := s.api.Send(ctx, httpclient.Request{Method: http.MethodPut, Path: "/settings", Body: body}, &out)
			return out, err
		},
		s.commit,
	)
}

// UpdateSetting changes one field of the local mirror only; the next fetch
// overwrites it. value must be an int for the ring duration (seconds) and
// GPIO pin, and a loadable location name for the timezone.
func (s *Store) UpdateSetting(key Key, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch key {
	case KeyRingDuration, KeyGPIOPin:
		n, ok := value.(int)
		if !ok {
			return apperrors.NewValidationError(string(key), fmt.Sprintf("must be an integer, got %T", value))
		}
		if key == KeyRingDuration {
			s.settings.RingDuration = n
		} else {
			s.settings.GPIOPin = n
		}
	case KeyTimezone:
		tz, ok := value.(string)
		if !ok {
			return apperrors.NewValidationError(string(key), fmt.Sprintf("must be a string, got %T", value))
		}
		if _, err := time.LoadLocation(tz); err != nil || tz == "" {
			return apperrors.NewValidationError(string(key), "is not a known timezone")
		}
		s.settings.Timezone = tz
	default:
		return apperrors.NewValidationError(string(key), "is not a setting")
	}
	return nil
}

func (s *Store) commit(out model.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = out
}
