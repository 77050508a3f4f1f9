package intent_test

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/jrsteele09/bell-client/internal/errors"
	"github.com/jrsteele09/bell-client/internal/intent"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var fetchThings = intent.Intent{Name: "fetchThings", Fallback: "Failed to fetch things"}

func TestRunSuccessCommitsAndReleasesLoading(t *testing.T) {
	var flags intent.Flags
	var committed []string

	result, err := intent.Run(context.Background(), &flags, zerolog.Nop(), fetchThings,
		func(context.Context) ([]string, error) {
			require.True(t, flags.Loading())
			require.False(t, flags.HasError())
			return []string{"a", "b"}, nil
		},
		func(r []string) { committed = r },
	)

	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, result)
	require.Equal(t, result, committed)
	require.False(t, flags.Loading())
	require.Equal(t, "", flags.Error())
}

func TestRunFailureRecordsMessageAndReraises(t *testing.T) {
	var flags intent.Flags
	serverErr := &apperrors.HTTPError{StatusCode: 500, Message: "database locked"}
	committed := false

	_, err := intent.Run(context.Background(), &flags, zerolog.Nop(), fetchThings,
		func(context.Context) (int, error) { return 0, serverErr },
		func(int) { committed = true },
	)

	require.ErrorIs(t, err, serverErr)
	require.False(t, committed)
	require.False(t, flags.Loading())
	require.Equal(t, "database locked", flags.Error())
}

func TestErrorClearedAtStartOfNextInvocation(t *testing.T) {
	var flags intent.Flags

	err := intent.Do(context.Background(), &flags, zerolog.Nop(), fetchThings, func(context.Context) error {
		return errors.New("boom")
	})
	require.Error(t, err)
	require.Equal(t, "Failed to fetch things", flags.Error())

	err = intent.Do(context.Background(), &flags, zerolog.Nop(), fetchThings, func(context.Context) error {
		require.Equal(t, "", flags.Error())
		return nil
	})
	require.NoError(t, err)
	require.False(t, flags.HasError())
}

func TestLoadingReleasedOnPanic(t *testing.T) {
	var flags intent.Flags

	require.Panics(t, func() {
		_ = intent.Do(context.Background(), &flags, zerolog.Nop(), fetchThings, func(context.Context) error {
			panic("unexpected")
		})
	})
	require.False(t, flags.Loading())
}
