package users

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/jrsteele09/bell-client/httpclient"
	"github.com/jrsteele09/bell-client/internal/intent"
	"github.com/jrsteele09/bell-client/internal/validate"
	"github.com/jrsteele09/bell-client/model"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	intentFetch  = intent.Intent{Name: "fetchUsers", Fallback: "Failed to fetch users"}
	intentCreate = intent.Intent{Name: "createUser", Fallback: "Failed to create user"}
	intentUpdate = intent.Intent{Name: "updateUser", Fallback: "Failed to update user"}
	intentDelete = intent.Intent{Name: "deleteUser", Fallback: "Failed to delete user"}
)

// Store is the users mirror and its query state.
type Store struct {
	intent.Flags
	api      httpclient.Requester
	validate *validate.Validator
	logger   zerolog.Logger

	mu    sync.RWMutex
	items []model.User
	query Query
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a Store holding DefaultQuery.
func NewStore(api httpclient.Requester, opts ...Option) *Store {
	s := &Store{
		api:      api,
		validate: validate.New(),
		logger:   log.Logger,
		query:    DefaultQuery(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Items returns a copy of the mirrored page.
func (s *Store) Items() []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Query returns a copy of the query state.
func (s *Store) Query() Query {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query.clone()
}

// Pagination returns the pagination state.
func (s *Store) Pagination() Pagination {
	return s.Query().Pagination
}

// UpdatePagination selects a page. Non-positive values keep the current
// setting. It does not fetch.
func (s *Store) UpdatePagination(page, pageSize int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if page > 0 {
		s.query.Pagination.Page = page
	}
	if pageSize > 0 {
		s.query.Pagination.PageSize = pageSize
	}
}

// UpdateSort replaces the sort keys. With no keys the default order is
// restored. It does not fetch.
func (s *Store) UpdateSort(keys ...SortKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(keys) == 0 {
		s.query.Sort = DefaultQuery().Sort
		return
	}
	s.query.Sort = Sort{Keys: slices.Clone(keys)}
}

// UpdateFilter replaces the filter. It does not fetch.
func (s *Store) UpdateFilter(filter Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query.Filter = filter
}

// FetchUsers loads the page selected by the current query.
func (s *Store) FetchUsers(ctx context.Context) (model.UserPage, error) {
	return intent.Run(ctx, &s.Flags, s.logger, intentFetch, s.list, s.commitPage)
}

// CreateUser creates an account and refetches the current page.
func (s *Store) CreateUser(ctx context.Context, req model.CreateUserRequest) (model.UserPage, error) {
	return s.mutate(ctx, intentCreate, req, httpclient.Request{Method: http.MethodPost, Path: "/users", Body: req})
}

// UpdateUser updates an account and refetches the current page.
func (s *Store) UpdateUser(ctx context.Context, id int64, req model.UpdateUserRequest) (model.UserPage, error) {
	return s.mutate(ctx, intentUpdate, req, httpclient.Request{Method: http.MethodPut, Path: userPath(id), Body: req})
}

// DeleteUser deletes an account and refetches the current page.
func (s *Store) DeleteUser(ctx context.Context, id int64) (model.UserPage, error) {
	return s.mutate(ctx, intentDelete, nil, httpclient.Request{Method: http.MethodDelete, Path: userPath(id)})
}

// mutate validates body when present, sends req and then refetches, all
// under one intent.
func (s *Store) mutate(ctx context.Context, in intent.Intent, body any, req httpclient.Request) (model.UserPage, error) {
	return intent.Run(ctx, &s.Flags, s.logger, in,
		func(ctx context.Context) (model.UserPage, error) {
			if body != nil {
				if err := s.validate.Struct(body); err != nil {
					return model.UserPage{}, err
				}
			}
			if err := s.api.Send(ctx, req, nil); err != nil {
				return model.UserPage{}, err
			}
			return s.list(ctx)
		},
		s.commitPage,
	)
}

func (s *Store) list(ctx context.Context) (model.UserPage, error) {
	var page model.UserPage
	err := s.api.Send(ctx, httpclient.Request{Method: http.MethodGet, Path: "/users", Query: s.Query().Values()}, &page)
	return page, err
}

func (s *Store) commitPage(page model.UserPage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.Clone(page.Users)
	if s.items == nil {
		s.items = []model.User{}
	}
	s.query.Pagination.TotalItems = page.Total
}

func userPath(id int64) string {
	return fmt.Sprintf("/users/%d", id)
}
