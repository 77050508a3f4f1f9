package httpclient

import (
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// BearerInterceptor attaches the session token, read at dispatch time, as a
// bearer credential. Without a token the request goes out unauthenticated.
func BearerInterceptor(session Session) RequestInterceptor {
	return func(req *http.Request) error {
		if session == nil {
			return nil
		}
		token, ok := session.Token()
		if !ok || token == "" {
			return nil
		}
		(&oauth2.Token{AccessToken: token}).SetAuthHeader(req)
		return nil
	}
}

// RequestIDInterceptor tags each request with a fresh ID for log correlation.
func RequestIDInterceptor() RequestInterceptor {
	return func(req *http.Request) error {
		if req.Header.Get(headerRequestID) == "" {
			req.Header.Set(headerRequestID, uuid.NewString())
		}
		return nil
	}
}
