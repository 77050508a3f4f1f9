package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/bell-client/app"
	"github.com/jrsteele09/bell-client/guard"
	apperrors "github.com/jrsteele09/bell-client/internal/errors"
	"github.com/jrsteele09/bell-client/internal/config"
	"github.com/jrsteele09/bell-client/internal/fakeapi"
	"github.com/jrsteele09/bell-client/model"
	"github.com/jrsteele09/bell-client/persist"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func setupTestFixture(t *testing.T, storage persist.Storage) (*fakeapi.API, *app.App) {
	t.Helper()
	api, baseURL := fakeapi.Start(t, fakeapi.WithLogger(zerolog.Nop()))
	api.AddUser("admin", "admin@example.com", "password123", model.RoleAdmin, false)
	t.Setenv("BELL_API_URL", baseURL)
	t.Setenv("BELL_STORAGE", "memory")

	a, err := app.New(config.New(), app.WithLogger(zerolog.Nop()), app.WithStorage(storage))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, a.Close()) })
	return api, a
}

func TestStartWithoutSessionGoesToLogin(t *testing.T) {
	api, a := setupTestFixture(t, persist.NewMemoryStorage())

	require.NoError(t, a.Start(context.Background()))
	require.Equal(t, guard.RouteLogin, a.Router.CurrentRoute())
	require.Empty(t, api.Requests())
}

func TestStartRestoresRevalidatesAndLoads(t *testing.T) {
	storage := persist.NewMemoryStorage()
	api, a := setupTestFixture(t, storage)
	api.AddSchedule(model.Schedule{Name: "Weekday", IsDefault: true})
	api.SetSettings(model.Settings{RingDuration: 7, Timezone: "Europe/London", GPIOPin: 18})
	require.NoError(t, persist.NewBridge(storage).Save(api.IssueToken("admin"), &model.UserProfile{Username: "admin", Role: model.RoleAdmin}))

	require.NoError(t, a.Start(context.Background()))
	require.True(t, a.Session.IsAuthenticated())
	require.Equal(t, guard.RouteDashboard, a.Router.CurrentRoute())
	require.Len(t, a.Schedules.Items(), 1)
	require.Equal(t, "Europe/London", a.Settings.Timezone())
	require.Equal(t, 1, api.CountRequests("GET /auth/me"))
}

func TestStartWithRevokedTokenLogsOut(t *testing.T) {
	storage := persist.NewMemoryStorage()
	api, a := setupTestFixture(t, storage)
	token := api.IssueToken("admin")
	api.Revoke(token)
	require.NoError(t, persist.NewBridge(storage).Save(token, &model.UserProfile{Username: "admin"}))

	require.NoError(t, a.Start(context.Background()))
	require.False(t, a.Session.IsAuthenticated())
	require.Equal(t, guard.RouteLogin, a.Router.CurrentRoute())
	_, hasToken, err := storage.Get(persist.KeyToken)
	require.NoError(t, err)
	require.False(t, hasToken)
	require.Equal(t, 0, api.CountRequests("GET /schedules"))
}

func TestStartWithForcedChangeLandsOnPasswordChange(t *testing.T) {
	storage := persist.NewMemoryStorage()
	api, a := setupTestFixture(t, storage)
	api.AddUser("jo", "jo@example.com", "temporary1", model.RoleUser, true)
	require.NoError(t, persist.NewBridge(storage).Save(api.IssueToken("jo"), &model.UserProfile{Username: "jo"}))

	require.NoError(t, a.Start(context.Background()))
	require.Equal(t, guard.RouteForcePasswordChange, a.Router.CurrentRoute())
}

func TestStartReportsLoadFailure(t *testing.T) {
	storage := persist.NewMemoryStorage()
	api, a := setupTestFixture(t, storage)
	require.NoError(t, persist.NewBridge(storage).Save(api.IssueToken("admin"), &model.UserProfile{Username: "admin"}))
	api.FailNext(http.MethodGet, "/settings", http.StatusInternalServerError, "")

	err := a.Start(context.Background())
	require.Error(t, err)
	require.Equal(t, "Failed to fetch settings", a.Settings.Error())
}

func TestUnauthorizedResponseRedirectsThroughRouter(t *testing.T) {
	api, a := setupTestFixture(t, persist.NewMemoryStorage())
	ctx := context.Background()

	_, err := a.Auth.Login(ctx, model.LoginRequest{Username: "admin", Password: "password123"})
	require.NoError(t, err)
	_, err = a.Router.Push(guard.RouteSchedules)
	require.NoError(t, err)
	require.Equal(t, guard.RouteSchedules, a.Router.CurrentRoute())

	token, _ := a.Session.Token()
	api.Revoke(token)
	_, err = a.Schedules.FetchSchedules(ctx)
	require.Error(t, err)
	require.False(t, a.Session.IsAuthenticated())
	require.Equal(t, guard.RouteLogin, a.Router.CurrentRoute())
	require.Equal(t, "Invalid token", a.Schedules.Error())
}

func TestMetricsAreRegistered(t *testing.T) {
	api, baseURL := fakeapi.Start(t, fakeapi.WithLogger(zerolog.Nop()))
	api.AddUser("admin", "admin@example.com", "password123", model.RoleAdmin, false)
	t.Setenv("BELL_API_URL", baseURL)

	reg := prometheus.NewRegistry()
	a, err := app.New(config.New(), app.WithLogger(zerolog.Nop()), app.WithStorage(persist.NewMemoryStorage()), app.WithMetrics(reg))
	require.NoError(t, err)

	_, err = a.Auth.Login(context.Background(), model.LoginRequest{Username: "admin", Password: "password123"})
	require.NoError(t, err)
	require.Equal(t, float64(1), testutil.ToFloat64(a.Metrics.Requests(http.MethodPost, "2xx")))
}

func TestNewOpensConfiguredStorage(t *testing.T) {
	t.Setenv("BELL_DATA_FOLDER", t.TempDir())

	t.Setenv("BELL_STORAGE", "file")
	a, err := app.New(config.New(), app.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	require.IsType(t, &persist.FileStorage{}, a.Storage)
	require.NoError(t, a.Close())

	t.Setenv("BELL_STORAGE", "badger")
	a, err = app.New(config.New(), app.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	require.NoError(t, a.Storage.Set("token", "x"))
	require.NoError(t, a.Close())
}

func TestWatchPersistedFollowsOtherProcesses(t *testing.T) {
	api, baseURL := fakeapi.Start(t, fakeapi.WithLogger(zerolog.Nop()))
	api.AddUser("admin", "admin@example.com", "password123", model.RoleAdmin, false)
	t.Setenv("BELL_API_URL", baseURL)
	t.Setenv("BELL_STORAGE", "file")
	t.Setenv("BELL_DATA_FOLDER", t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	watching, err := app.New(config.New(), app.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	other, err := app.New(config.New(), app.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	require.NoError(t, watching.WatchPersisted(ctx))

	_, err = other.Auth.Login(ctx, model.LoginRequest{Username: "admin", Password: "password123"})
	require.NoError(t, err)
	require.Eventually(t, watching.Session.IsAuthenticated, 2*time.Second, 10*time.Millisecond)

	_, err = watching.Router.Push(guard.RouteSettings)
	require.NoError(t, err)
	other.Auth.Logout()
	require.Eventually(t, func() bool {
		return !watching.Session.IsAuthenticated() && watching.Router.CurrentRoute() == guard.RouteLogin
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCustomHTTPClientKeepsConfiguredTimeout(t *testing.T) {
	stalled := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(stalled.Close)
	t.Setenv("BELL_API_URL", stalled.URL)
	t.Setenv("BELL_REQUEST_TIMEOUT", "100ms")

	custom := &http.Client{Transport: http.DefaultTransport}
	a, err := app.New(config.New(), app.WithLogger(zerolog.Nop()), app.WithStorage(persist.NewMemoryStorage()), app.WithHTTPClient(custom))
	require.NoError(t, err)

	started := time.Now()
	_, err = a.Schedules.FetchSchedules(context.Background())
	require.ErrorIs(t, err, apperrors.ErrTimeout)
	require.Less(t, time.Since(started), time.Second)
	require.Zero(t, custom.Timeout, "caller's client is not modified")
}
