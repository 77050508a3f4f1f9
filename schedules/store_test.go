package schedules_test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jrsteele09/bell-client/httpclient"
	apperrors "github.com/jrsteele09/bell-client/internal/errors"
	"github.com/jrsteele09/bell-client/internal/fakeapi"
	"github.com/jrsteele09/bell-client/model"
	"github.com/jrsteele09/bell-client/schedules"
	"github.com/jrsteele09/bell-client/sessions"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func setupTestFixture(t *testing.T) (*fakeapi.API, *schedules.Store) {
	t.Helper()
	api, baseURL := fakeapi.Start(t, fakeapi.WithLogger(zerolog.Nop()))
	admin := api.AddUser("admin", "admin@example.com", "password123", model.RoleAdmin, false)

	session := sessions.NewSession(sessions.WithSessionLogger(zerolog.Nop()))
	session.Set(api.IssueToken("admin"), &model.UserProfile{ID: admin.ID, Username: admin.Username, Role: admin.Role})
	client := httpclient.New(baseURL, session, httpclient.WithLogger(zerolog.Nop()))
	return api, schedules.NewStore(client, schedules.WithLogger(zerolog.Nop()))
}

func TestFetchSchedulesKeepsServerOrder(t *testing.T) {
	api, store := setupTestFixture(t)
	api.AddSchedule(model.Schedule{Name: "Weekday"})
	api.AddSchedule(model.Schedule{Name: "Exam", IsDefault: true})

	items, err := store.FetchSchedules(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, []string{"Weekday", "Exam"}, []string{store.Items()[0].Name, store.Items()[1].Name})
	require.Equal(t, "Exam", store.DefaultSchedule().Name)
	require.Nil(t, store.ActiveSchedule())
}

func TestFetchSchedulesFailureReRaises(t *testing.T) {
	api, store := setupTestFixture(t)
	api.FailNext(http.MethodGet, "/schedules", http.StatusInternalServerError, "")

	_, err := store.FetchSchedules(context.Background())
	require.Error(t, err)
	require.Equal(t, http.StatusInternalServerError, apperrors.StatusCode(err))
	require.Equal(t, "Failed to fetch schedules", store.Error())
	require.False(t, store.Loading())
}

func TestErrorClearedByNextIntent(t *testing.T) {
	api, store := setupTestFixture(t)
	api.FailNext(http.MethodGet, "/schedules", http.StatusInternalServerError, "Failed to get schedules")

	_, err := store.FetchSchedules(context.Background())
	require.Error(t, err)
	require.Equal(t, "Failed to get schedules", store.Error())

	_, err = store.FetchSchedules(context.Background())
	require.NoError(t, err)
	require.Empty(t, store.Error())
}

func TestLoadingIsTrueWhileRequestIsInFlight(t *testing.T) {
	api, store := setupTestFixture(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	api.SetHook(func(*gin.Context) {
		close(entered)
		<-release
	})

	done := make(chan error, 1)
	go func() {
		_, err := store.FetchSchedules(context.Background())
		done <- err
	}()

	<-entered
	require.True(t, store.Loading())
	close(release)
	require.NoError(t, <-done)
	require.False(t, store.Loading())
}

func TestCreateScheduleAppendsServerCopyOnce(t *testing.T) {
	api, store := setupTestFixture(t)
	ctx := context.Background()
	_, err := store.FetchSchedules(ctx)
	require.NoError(t, err)
	api.ResetRequests()

	created, err := store.CreateSchedule(ctx, model.ScheduleRequest{
		Name:      "S1",
		TimeSlots: []model.TimeSlot{{TriggerTime: "08:45", Days: `["Monday"]`}},
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	items := store.Items()
	require.Len(t, items, 1)
	require.Equal(t, created.ID, items[0].ID)
	require.Equal(t, "S1", items[0].Name)
	require.Equal(t, []string{"POST /schedules"}, api.Requests(), "no refetch after create")
}

func TestCreateScheduleValidation(t *testing.T) {
	api, store := setupTestFixture(t)

	_, err := store.CreateSchedule(context.Background(), model.ScheduleRequest{})
	require.ErrorIs(t, err, apperrors.ErrValidation)
	require.Equal(t, "name is required", store.Error())

	_, err = store.CreateSchedule(context.Background(), model.ScheduleRequest{
		Name:      "S1",
		TimeSlots: []model.TimeSlot{{TriggerTime: "25:99"}},
	})
	require.ErrorIs(t, err, apperrors.ErrValidation)
	require.Empty(t, api.Requests())
}

func TestUpdateScheduleReplacesItemAndCurrent(t *testing.T) {
	api, store := setupTestFixture(t)
	ctx := context.Background()
	sc := api.AddSchedule(model.Schedule{Name: "Weekday"})
	_, err := store.FetchSchedules(ctx)
	require.NoError(t, err)
	_, err = store.FetchSchedule(ctx, sc.ID)
	require.NoError(t, err)

	_, err = store.UpdateSchedule(ctx, sc.ID, model.ScheduleRequest{Name: "Weekday (new)"})
	require.NoError(t, err)
	require.Equal(t, "Weekday (new)", store.Items()[0].Name)
	require.Equal(t, "Weekday (new)", store.Current().Name)
}

func TestDeleteScheduleRemovesItemAndCurrent(t *testing.T) {
	api, store := setupTestFixture(t)
	ctx := context.Background()
	keep := api.AddSchedule(model.Schedule{Name: "Keep"})
	drop := api.AddSchedule(model.Schedule{Name: "Drop"})
	_, err := store.FetchSchedules(ctx)
	require.NoError(t, err)
	_, err = store.FetchSchedule(ctx, drop.ID)
	require.NoError(t, err)

	require.NoError(t, store.DeleteSchedule(ctx, drop.ID))
	require.Nil(t, store.Current())
	items := store.Items()
	require.Len(t, items, 1)
	require.Equal(t, keep.ID, items[0].ID)
}

func TestRoleTogglesRefetchTheCollection(t *testing.T) {
	api, store := setupTestFixture(t)
	ctx := context.Background()
	first := api.AddSchedule(model.Schedule{Name: "Weekday", IsDefault: true})
	second := api.AddSchedule(model.Schedule{Name: "Exam"})
	_, err := store.FetchSchedules(ctx)
	require.NoError(t, err)
	api.ResetRequests()

	_, err = store.SetDefaultSchedule(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, second.ID, store.DefaultSchedule().ID)
	require.Equal(t, []string{"PUT /schedules/" + itoa(second.ID) + "/default", "GET /schedules"}, api.Requests())

	_, err = store.SetActiveSchedule(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, store.ActiveSchedule().ID)

	_, err = store.SetTemporarySchedule(ctx, second.ID, true)
	require.NoError(t, err)
	require.True(t, store.Items()[1].IsTemporary)
	require.False(t, store.Loading())
}

func TestRoleToggleFailureSkipsRefetch(t *testing.T) {
	api, store := setupTestFixture(t)

	_, err := store.SetDefaultSchedule(context.Background(), 404)
	require.Error(t, err)
	require.Equal(t, "Schedule not found", store.Error())
	require.Equal(t, 0, api.CountRequests("GET /schedules"))
}

func TestTriggerBellTargetResolution(t *testing.T) {
	t.Run("default wins", func(t *testing.T) {
		api, store := setupTestFixture(t)
		api.AddSchedule(model.Schedule{Name: "One"})
		def := api.AddSchedule(model.Schedule{Name: "Two", IsDefault: true})
		_, err := store.FetchSchedules(context.Background())
		require.NoError(t, err)

		target, err := store.TriggerBell(context.Background())
		require.NoError(t, err)
		require.Equal(t, def.ID, target.ID)
		require.Equal(t, 1, api.CountRequests("POST /schedules/"+itoa(def.ID)+"/trigger"))
	})

	t.Run("first item without a default", func(t *testing.T) {
		api, store := setupTestFixture(t)
		only := api.AddSchedule(model.Schedule{Name: "Only"})
		_, err := store.FetchSchedules(context.Background())
		require.NoError(t, err)

		target, err := store.TriggerBell(context.Background())
		require.NoError(t, err)
		require.Equal(t, only.ID, target.ID)
	})

	t.Run("empty collection", func(t *testing.T) {
		api, store := setupTestFixture(t)

		_, err := store.TriggerBell(context.Background())
		require.ErrorIs(t, err, apperrors.ErrNoSchedules)
		require.ErrorIs(t, err, apperrors.ErrValidation)
		require.Equal(t, "No schedules available to trigger", store.Error())
		require.Empty(t, api.Requests())
		require.False(t, store.Loading())
	})
}

func TestOverlappingUpdatesLastResponseWins(t *testing.T) {
	api, store := setupTestFixture(t)
	ctx := context.Background()
	sc := api.AddSchedule(model.Schedule{Name: "Original"})
	_, err := store.FetchSchedules(ctx)
	require.NoError(t, err)

	var puts atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	api.SetHook(func(c *gin.Context) {
		if c.Request.Method == http.MethodPut && puts.Add(1) == 1 {
			close(entered)
			<-release
		}
	})

	slow := make(chan error, 1)
	go func() {
		_, err := store.UpdateSchedule(ctx, sc.ID, model.ScheduleRequest{Name: "Sent first"})
		slow <- err
	}()
	<-entered

	_, err = store.UpdateSchedule(ctx, sc.ID, model.ScheduleRequest{Name: "Sent second"})
	require.NoError(t, err)
	require.Equal(t, "Sent second", store.Items()[0].Name)

	close(release)
	require.NoError(t, <-slow)
	require.Equal(t, "Sent first", store.Items()[0].Name, "the response that arrived last wins")
}

func TestCreateDoesNotDuplicateItemFetchedMeanwhile(t *testing.T) {
	created := model.Schedule{ID: 7, Name: "S1"}
	api := newGatedAPI([]model.Schedule{created}, created)
	store := schedules.NewStore(api, schedules.WithLogger(zerolog.Nop()))
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := store.CreateSchedule(ctx, model.ScheduleRequest{Name: "S1"})
		done <- err
	}()
	<-api.entered

	_, err := store.FetchSchedules(ctx)
	require.NoError(t, err)
	require.Equal(t, []model.Schedule{created}, store.Items())

	close(api.release)
	require.NoError(t, <-done)
	require.Equal(t, []model.Schedule{created}, store.Items())
}
