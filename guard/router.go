package guard

import (
	"fmt"
	"sync"

	apperrors "github.com/jrsteele09/bell-client/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// maxRedirects bounds redirect chains; the longest legitimate chain is
// guest route -> home -> forced password change.
const maxRedirects = 3

// Router tracks the current view and runs the guard before every transition.
type Router struct {
	facts   SessionFacts
	logger  zerolog.Logger
	mu      sync.RWMutex
	current Route
	history []string
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithRouterLogger sets the logger.
func WithRouterLogger(logger zerolog.Logger) RouterOption {
	return func(r *Router) {
		r.logger = logger
	}
}

// NewRouter creates a router that has not navigated anywhere yet.
func NewRouter(facts SessionFacts, opts ...RouterOption) *Router {
	r := &Router{
		facts:  facts,
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Current returns the route currently displayed.
func (r *Router) Current() Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// CurrentRoute returns the name of the current route.
func (r *Router) CurrentRoute() string {
	return r.Current().Name
}

// History lists the names of every route the router settled on.
func (r *Router) History() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.history))
	copy(out, r.history)
	return out
}

// Push navigates to the named route, following guard redirects, and
// returns the route it settled on.
func (r *Router) Push(name string) (Route, error) {
	target, ok := Lookup(name)
	if !ok {
		return Route{}, apperrors.Wrapf(apperrors.ErrNotFound, "route %q", name)
	}
	for i := 0; i <= maxRedirects; i++ {
		decision := Decide(target, r.facts)
		if decision.Allowed() {
			r.settle(target)
			return target, nil
		}
		r.logger.Debug().Str("from", target.Name).Str("to", decision.Redirect).Str("outcome", decision.Outcome.String()).Msg("Navigation redirected")
		next, ok := LookupPath(decision.Redirect)
		if !ok {
			return Route{}, apperrors.Wrapf(apperrors.ErrNotFound, "redirect to %q", decision.Redirect)
		}
		target = next
	}
	return Route{}, fmt.Errorf("too many redirects navigating to %q", name)
}

// Navigate is Push for callers that only request the transition, such as
// the HTTP client after a 401.
func (r *Router) Navigate(name string) {
	if _, err := r.Push(name); err != nil {
		r.logger.Err(err).Str("route", name).Msg("Navigation failed")
	}
}

func (r *Router) settle(route Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = route
	r.history = append(r.history, route.Name)
}
