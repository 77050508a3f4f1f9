package guard_test

import (
	"testing"

	"github.com/jrsteele09/bell-client/guard"
	apperrors "github.com/jrsteele09/bell-client/internal/errors"
	"github.com/stretchr/testify/require"
)

type facts struct {
	authenticated bool
	forceChange   bool
}

func (f *facts) IsAuthenticated() bool     { return f.authenticated }
func (f *facts) ForcePasswordChange() bool { return f.forceChange }

func route(t *testing.T, name string) guard.Route {
	t.Helper()
	r, ok := guard.Lookup(name)
	require.True(t, ok, name)
	return r
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		facts    facts
		expected guard.Decision
	}{
		{"anonymous to protected", guard.RouteSchedules, facts{}, guard.Decision{Outcome: guard.RedirectLogin, Redirect: "/login"}},
		{"anonymous to forced change route", guard.RouteForcePasswordChange, facts{}, guard.Decision{Outcome: guard.RedirectLogin, Redirect: "/login"}},
		{"anonymous to guest", guard.RouteLogin, facts{}, guard.Decision{Outcome: guard.Allow}},
		{"anonymous to register", guard.RouteRegister, facts{}, guard.Decision{Outcome: guard.Allow}},
		{"authenticated to guest", guard.RouteRegister, facts{authenticated: true}, guard.Decision{Outcome: guard.RedirectHome, Redirect: "/"}},
		{"authenticated to protected", guard.RouteUsers, facts{authenticated: true}, guard.Decision{Outcome: guard.Allow}},
		{"forced user to protected", guard.RouteSettings, facts{authenticated: true, forceChange: true}, guard.Decision{Outcome: guard.RedirectPasswordChange, Redirect: "/force-password-change"}},
		{"forced user to guest route goes home first", guard.RouteLogin, facts{authenticated: true, forceChange: true}, guard.Decision{Outcome: guard.RedirectHome, Redirect: "/"}},
		{"forced user to forced change route", guard.RouteForcePasswordChange, facts{authenticated: true, forceChange: true}, guard.Decision{Outcome: guard.Allow}},
		{"force flag without token is ignored", guard.RouteLogin, facts{forceChange: true}, guard.Decision{Outcome: guard.Allow}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := tc.facts
			require.Equal(t, tc.expected, guard.Decide(route(t, tc.target), &f))
		})
	}
}

func TestDecideIsDeterministic(t *testing.T) {
	f := &facts{authenticated: true, forceChange: true}
	target := route(t, guard.RouteLogs)
	first := guard.Decide(target, f)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, guard.Decide(target, f))
	}
}

func TestLookupPath(t *testing.T) {
	r, ok := guard.LookupPath("/")
	require.True(t, ok)
	require.Equal(t, guard.RouteDashboard, r.Name)

	_, ok = guard.LookupPath("/nowhere")
	require.False(t, ok)
}

func TestRouterFollowsRedirects(t *testing.T) {
	f := &facts{}
	router := guard.NewRouter(f)

	settled, err := router.Push(guard.RouteSchedules)
	require.NoError(t, err)
	require.Equal(t, guard.RouteLogin, settled.Name)
	require.Equal(t, guard.RouteLogin, router.CurrentRoute())

	f.authenticated = true
	f.forceChange = true
	settled, err = router.Push(guard.RouteLogin)
	require.NoError(t, err)
	require.Equal(t, guard.RouteForcePasswordChange, settled.Name)

	f.forceChange = false
	settled, err = router.Push(guard.RouteSchedules)
	require.NoError(t, err)
	require.Equal(t, guard.RouteSchedules, settled.Name)
	require.Equal(t, []string{guard.RouteLogin, guard.RouteForcePasswordChange, guard.RouteSchedules}, router.History())
}

func TestRouterUnknownRoute(t *testing.T) {
	router := guard.NewRouter(&facts{})
	_, err := router.Push("Nowhere")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.Equal(t, "", router.CurrentRoute())
}
