package utils_test

import (
	"testing"

	"github.com/jrsteele09/bell-client/internal/utils"
	"github.com/jrsteele09/bell-client/model"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	require.Equal(t, model.UserProfile{}, utils.Value[model.UserProfile](nil))
	require.Equal(t, "admin", utils.Value(utils.Ptr("admin")))
}

func TestPtrCopies(t *testing.T) {
	original := model.Settings{RingDuration: 5}
	p := utils.Ptr(original)
	p.RingDuration = 9
	require.Equal(t, 5, original.RingDuration)
}
