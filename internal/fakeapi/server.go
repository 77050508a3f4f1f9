package fakeapi

import (
	"net/http/httptest"
	"testing"
)

// Start serves a new API on a local listener for the duration of the test.
// It returns the API and its base URL, including the /api prefix.
func Start(t testing.TB, opts ...Option) (*API, string) {
	t.Helper()
	a := New(opts...)
	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)
	return a, srv.URL + "/api"
}
