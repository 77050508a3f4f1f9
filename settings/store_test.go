package settings_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/bell-client/httpclient"
	apperrors "github.com/jrsteele09/bell-client/internal/errors"
	"github.com/jrsteele09/bell-client/internal/fakeapi"
	"github.com/jrsteele09/bell-client/model"
	"github.com/jrsteele09/bell-client/sessions"
	"github.com/jrsteele09/bell-client/settings"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func setupTestFixture(t *testing.T) (*fakeapi.API, *settings.Store) {
	t.Helper()
	api, baseURL := fakeapi.Start(t, fakeapi.WithLogger(zerolog.Nop()))
	api.AddUser("admin", "admin@example.com", "password123", model.RoleAdmin, false)

	session := sessions.NewSession(sessions.WithSessionLogger(zerolog.Nop()))
	session.Set(api.IssueToken("admin"), &model.UserProfile{Username: "admin", Role: model.RoleAdmin})
	client := httpclient.New(baseURL, session, httpclient.WithLogger(zerolog.Nop()))
	return api, settings.NewStore(client, settings.WithLogger(zerolog.Nop()))
}

func TestDefaultsBeforeFetch(t *testing.T) {
	_, store := setupTestFixture(t)
	require.Equal(t, 30*time.Second, store.RingDuration())
	require.Equal(t, "UTC", store.Timezone())
}

func TestFetchSettings(t *testing.T) {
	api, store := setupTestFixture(t)
	api.SetSettings(model.Settings{RingDuration: 8, Timezone: "Europe/London", GPIOPin: 17})

	got, err := store.FetchSettings(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.Settings{RingDuration: 8, Timezone: "Europe/London", GPIOPin: 17}, got)
	require.Equal(t, 8*time.Second, store.RingDuration())
	require.Equal(t, "Europe/London", store.Timezone())
}

func TestUpdateSettingsMirrorsServerAnswer(t *testing.T) {
	_, store := setupTestFixture(t)

	got, err := store.UpdateSettings(context.Background(), model.Settings{RingDuration: 10, Timezone: "Asia/Tokyo", GPIOPin: 4})
	require.NoError(t, err)
	require.Equal(t, got, store.Settings())
	require.Equal(t, "Asia/Tokyo", store.Timezone())
}

func TestUpdateSettingsFailureKeepsMirror(t *testing.T) {
	_, store := setupTestFixture(t)

	_, err := store.UpdateSettings(context.Background(), model.Settings{RingDuration: 500, Timezone: "UTC", GPIOPin: 4})
	require.Error(t, err)
	require.Equal(t, "ringDuration must be between 1 and 60", store.Error())
	require.Equal(t, model.DefaultSettings(), store.Settings())
	require.False(t, store.Loading())
}

func TestUpdateSettingsSendsOnlyWhitelistedFields(t *testing.T) {
	bodies := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		bodies <- body
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(raw)
	}))
	t.Cleanup(srv.Close)
	store := settings.NewStore(httpclient.New(srv.URL, sessions.NewSession(), httpclient.WithLogger(zerolog.Nop())), settings.WithLogger(zerolog.Nop()))

	_, err := store.UpdateSettings(context.Background(), model.Settings{RingDuration: 3, Timezone: "UTC", GPIOPin: 2})
	require.NoError(t, err)
	body := <-bodies
	require.Len(t, body, 3)
	require.Contains(t, body, "ringDuration")
	require.Contains(t, body, "timezone")
	require.Contains(t, body, "gpioPin")
}

func TestUpdateSettingIsLocal(t *testing.T) {
	api, store := setupTestFixture(t)

	require.NoError(t, store.UpdateSetting(settings.KeyRingDuration, 12))
	require.NoError(t, store.UpdateSetting(settings.KeyTimezone, "Europe/Paris"))
	require.NoError(t, store.UpdateSetting(settings.KeyGPIOPin, 21))
	require.Equal(t, model.Settings{RingDuration: 12, Timezone: "Europe/Paris", GPIOPin: 21}, store.Settings())
	require.Empty(t, api.Requests())

	_, err := store.FetchSettings(context.Background())
	require.NoError(t, err)
	require.Equal(t, "UTC", store.Timezone(), "fetch overwrites local edits")
}

func TestUpdateSettingRejectsBadInput(t *testing.T) {
	_, store := setupTestFixture(t)

	require.ErrorIs(t, store.UpdateSetting(settings.KeyRingDuration, "ten"), apperrors.ErrValidation)
	require.ErrorIs(t, store.UpdateSetting(settings.KeyTimezone, "Mars/Olympus"), apperrors.ErrValidation)
	require.ErrorIs(t, store.UpdateSetting("volume", 3), apperrors.ErrValidation)
	require.Equal(t, model.DefaultSettings(), store.Settings())
}

func TestTimezonesStartWithUTC(t *testing.T) {
	zones := settings.Timezones()
	require.Equal(t, "UTC", zones[0])
	for _, tz := range zones {
		_, err := time.LoadLocation(tz)
		require.NoError(t, err, tz)
	}
}

func TestEveryOfferedTimezoneIsAccepted(t *testing.T) {
	_, store := setupTestFixture(t)
	for _, tz := range settings.Timezones() {
		require.NoError(t, store.UpdateSetting(settings.KeyTimezone, tz), tz)
	}
	require.Contains(t, settings.Timezones(), "Pacific/Honolulu")
}
