// Package app wires the session, stores, router and HTTP client together
// from configuration and runs the startup sequence.
package app

import (
	"context"
	"io"
	"net/http"

	"github.com/jrsteele09/bell-client/guard"
	"github.com/jrsteele09/bell-client/httpclient"
	"github.com/jrsteele09/bell-client/internal/config"
	"github.com/jrsteele09/bell-client/logs"
	"github.com/jrsteele09/bell-client/persist"
	"github.com/jrsteele09/bell-client/persist/badgerstore"
	"github.com/jrsteele09/bell-client/schedules"
	"github.com/jrsteele09/bell-client/sessions"
	"github.com/jrsteele09/bell-client/settings"
	"github.com/jrsteele09/bell-client/users"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// App holds every component of a running client.
type App struct {
	Config    config.Config
	Storage   persist.Storage
	Session   *sessions.Session
	Router    *guard.Router
	Client    *httpclient.Client
	Metrics   *httpclient.Metrics
	Auth      *sessions.Store
	Schedules *schedules.Store
	Users     *users.Store
	Settings  *settings.Store
	Logs      *logs.Store

	logger zerolog.Logger
	closer io.Closer
}

type options struct {
	logger     zerolog.Logger
	storage    persist.Storage
	httpClient *http.Client
	registerer prometheus.Registerer
}

// Option configures New.
type Option func(*options)

// WithLogger sets the logger handed to every component.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStorage uses s instead of the configured storage driver.
func WithStorage(s persist.Storage) Option {
	return func(o *options) {
		o.storage = s
	}
}

// WithHTTPClient sets the underlying HTTP client, for its transport. The
// configured request timeout still applies.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithMetrics registers the client metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// New builds an App from cfg. Nothing is fetched until Start.
func New(cfg config.Config, opts ...Option) (*App, error) {
	o := options{logger: log.Logger}
	for _, opt := range opts {
		opt(&o)
	}
	a := &App{Config: cfg, logger: o.logger}

	storage := o.storage
	if storage == nil {
		var err error
		if storage, a.closer, err = openStorage(cfg, o.logger); err != nil {
			return nil, err
		}
	}
	a.Storage = storage

	bridge := persist.NewBridge(storage, persist.WithLogger(o.logger))
	a.Session = sessions.NewSession(sessions.WithPersister(bridge), sessions.WithSessionLogger(o.logger))
	a.Router = guard.NewRouter(a.Session, guard.WithRouterLogger(o.logger))

	var clientOpts []httpclient.Option
	if o.httpClient != nil {
		clientOpts = append(clientOpts, httpclient.WithHTTPClient(o.httpClient))
	}
	clientOpts = append(clientOpts,
		httpclient.WithTimeout(cfg.GetRequestTimeout()),
		httpclient.WithNavigator(a.Router),
		httpclient.WithLogger(o.logger),
	)
	if o.registerer != nil {
		a.Metrics = httpclient.NewMetrics(o.registerer)
		clientOpts = append(clientOpts, httpclient.WithMetrics(a.Metrics))
	}
	a.Client = httpclient.New(cfg.GetAPIURL(), a.Session, clientOpts...)

	a.Auth = sessions.NewStore(a.Session, a.Client, sessions.WithLogger(o.logger))
	a.Schedules = schedules.NewStore(a.Client, schedules.WithLogger(o.logger))
	a.Users = users.NewStore(a.Client, users.WithLogger(o.logger))
	a.Settings = settings.NewStore(a.Client, settings.WithLogger(o.logger))
	a.Logs = logs.NewStore(a.Client, logs.WithLogger(o.logger))
	return a, nil
}

func openStorage(cfg config.StorageConfig, logger zerolog.Logger) (persist.Storage, io.Closer, error) {
	switch cfg.GetStorageDriver() {
	case config.StorageMemory:
		return persist.NewMemoryStorage(), nil, nil
	case config.StorageBadger:
		s, err := badgerstore.Open(cfg.GetDataFolder())
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		s, err := persist.NewFileStorage(cfg.GetDataFolder(), persist.WithFileLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	}
}

// Start restores the persisted session and revalidates it. When the session
// survives, schedules and settings are loaded concurrently and the router
// moves to the landing view; otherwise it moves to the login view.
func (a *App) Start(ctx context.Context) error {
	restored := a.Session.Restore()
	a.logger.Debug().Bool("restored", restored).Msg("Session restore")

	if !a.Auth.CheckAuth(ctx) {
		a.Router.Navigate(guard.RouteLogin)
		return nil
	}
	if _, err := a.Router.Push(guard.RouteDashboard); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := a.Schedules.FetchSchedules(gctx)
		return errors.Wrap(err, "loading schedules")
	})
	g.Go(func() error {
		_, err := a.Settings.FetchSettings(gctx)
		return errors.Wrap(err, "loading settings")
	})
	return g.Wait()
}

// WatchPersisted reloads the session whenever another process rewrites the
// session file, leaving protected views when that logged the user out. It
// is a no-op for other storage drivers.
func (a *App) WatchPersisted(ctx context.Context) error {
	fs, ok := a.Storage.(*persist.FileStorage)
	if !ok {
		return nil
	}
	return fs.Watch(ctx, func() {
		if !a.Session.Restore() && a.Router.Current().RequiresAuth {
			a.Router.Navigate(guard.RouteLogin)
		}
	}, a.logger)
}

// Close releases the storage backend.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
