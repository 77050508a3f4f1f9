// Package intent implements the loading/error discipline shared by every
// store intent: raise loading and clear the error, do the work, record a
// display message on failure, and always drop loading on the way out.
package intent

import (
	"context"
	"sync"

	apperrors "github.com/jrsteele09/bell-client/internal/errors"
	"github.com/rs/zerolog"
)

// Flags is the loading/error pair a store exposes to its views.
type Flags struct {
	mu      sync.RWMutex
	loading bool
	err     string
}

// Loading reports whether an intent is in flight.
func (f *Flags) Loading() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.loading
}

// Error returns the message of the last failed intent, or "" when absent.
func (f *Flags) Error() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.err
}

// HasError reports whether an error message is present.
func (f *Flags) HasError() bool {
	return f.Error() != ""
}

func (f *Flags) begin() {
	f.mu.Lock()
	f.loading = true
	f.err = ""
	f.mu.Unlock()
}

func (f *Flags) fail(msg string) {
	f.mu.Lock()
	f.err = msg
	f.mu.Unlock()
}

func (f *Flags) end() {
	f.mu.Lock()
	f.loading = false
	f.mu.Unlock()
}

// Intent describes one store operation.
type Intent struct {
	Name     string // used in logs
	Fallback string // message recorded when the failure carries none
}

// Run executes call under the four phase contract. commit runs only when
// call succeeds and receives its result. The error from call is returned
// unchanged so callers can react to it as well.
func Run[T any](ctx context.Context, f *Flags, logger zerolog.Logger, in Intent, call func(context.Context) (T, error), commit func(T)) (T, error) {
	f.begin()
	defer f.end()

	result, err := call(ctx)
	if err != nil {
		msg := apperrors.DisplayMessage(err, in.Fallback)
		f.fail(msg)
		logger.Warn().Err(err).Str("intent", in.Name).Str("message", msg).Msg("Intent failed")
		var zero T
		return zero, err
	}
	if commit != nil {
		commit(result)
	}
	return result, nil
}

// Do is Run for intents without a result payload.
func Do(ctx context.Context, f *Flags, logger zerolog.Logger, in Intent, call func(context.Context) error) error {
	_, err := Run(ctx, f, logger, in, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, call(ctx)
	}, nil)
	return err
}
