// Package logs mirrors the bell ringing history.
package logs

import (
	"context"
	"net/http"
	"net/url"
	"slices"
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
	intentFetch        = intent.Intent{Name: "fetchLogs", Fallback: "Failed to fetch logs"}
	intentFetchByRange = intent.Intent{Name: "fetchLogsByRange", Fallback: "Failed to fetch logs"}
)

// Store is the log mirror.
type Store struct {
	intent.Flags
	api    httpclient.Requester
	logger zerolog.Logger

	mu    sync.RWMutex
	items []model.LogEntry
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
	s := &Store{api: api, logger: log.Logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Items returns a copy of the mirrored entries.
func (s *Store) Items() []model.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// FetchLogs loads the full history.
func (s *Store) FetchLogs(ctx context.Context) ([]model.LogEntry, error) {
	return intent.Run(ctx, &s.Flags, s.logger, intentFetch,
		func(ctx context.Context) ([]model.LogEntry, error) {
			return s.fetch(ctx, httpclient.Request{Method: http.MethodGet, Path: "/logs"})
		},
		s.commit,
	)
}

// FetchLogsByRange loads the entries timestamped within [start, end].
func (s *Store) FetchLogsByRange(ctx context.Context, start, end time.Time) ([]model.LogEntry, error) {
	return intent.Run(ctx, &s.Flags, s.logger, intentFetchByRange,
		func(ctx context.Context) ([]model.LogEntry, error) {
			if end.Before(start) {
				return nil, apperrors.NewValidationError("end", "must not be before start")
			}
			q := url.Values{}
			q.Set("start", start.Format(time.RFC3339))
			q.Set("end", end.Format(time.RFC3339))
			return s.fetch(ctx, httpclient.Request{Method: http.MethodGet, Path: "/logs/range", Query: q})
		},
		s.commit,
	)
}

func (s *Store) fetch(ctx context.Context, req httpclient.Request) ([]model.LogEntry, error) {
	var entries []model.LogEntry
	err := s.api.Send(ctx, req, &entries)
	return entries, err
}

func (s *Store) commit(entries []model.LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.Clone(entries)
}
