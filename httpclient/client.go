// Package httpclient is the single outbound path to the bell API. Every
// request passes through a request interceptor stage (bearer credential,
// request ID) and a response interceptor stage (session teardown on 401).
// A request is exactly one attempt; nothing here retries.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/bell-client/guard"
	apperrors "github.com/jrsteele09/bell-client/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultTimeout = 5 * time.Second

	contentTypeJSON = "application/json"
	headerRequestID = "X-Request-ID"
)

// Session is the owned session handle the client reads the token from and
// tears down on an authentication failure.
type Session interface {
	Token() (string, bool)
	Clear()
}

// Navigator is the view layer the client asks to show the login page.
type Navigator interface {
	CurrentRoute() string
	Navigate(route string)
}

// Request describes one call to the API. Path is relative to the base URL.
type Request struct {
	Method string
	Path   string
	Body   any
	Query  url.Values
}

// Requester is implemented by Client and consumed by the stores.
type Requester interface {
	Send(ctx context.Context, req Request, out any) error
}

// RequestInterceptor may modify an outgoing request. An error aborts the request.
type RequestInterceptor func(req *http.Request) error

// ResponseInterceptor sees every outcome. err is the failure so far
// (*errors.HTTPError, *errors.NetworkError or nil) and the returned error
// replaces it.
type ResponseInterceptor func(req *http.Request, resp *http.Response, err error) error

// Client sends JSON requests to the bell API.
type Client struct {
	baseURL              string
	httpClient           *http.Client
	session              Session
	navigator            Navigator
	loginRoute           string
	logger               zerolog.Logger
	metrics              *Metrics
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

var _ Requester = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per request ceiling.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient uses a copy of hc as the underlying http.Client. Its
// Timeout is kept unless WithTimeout is applied afterwards.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		copied := *hc
		c.httpClient = &copied
	}
}

// WithNavigator sets who is asked to show the login view after a 401.
func WithNavigator(n Navigator) Option {
	return func(c *Client) {
		c.navigator = n
	}
}

// WithLoginRoute overrides the route name of the login view.
func WithLoginRoute(name string) Option {
	return func(c *Client) {
		c.loginRoute = name
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics records request counts and latencies.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithRequestInterceptor appends a request interceptor after the built-in ones.
func WithRequestInterceptor(i RequestInterceptor) Option {
	return func(c *Client) {
		c.requestInterceptors = append(c.requestInterceptors, i)
	}
}

// WithResponseInterceptor appends a response interceptor after the built-in ones.
func WithResponseInterceptor(i ResponseInterceptor) Option {
	return func(c *Client) {
		c.responseInterceptors = append(c.responseInterceptors, i)
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, session Session, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		session:    session,
		loginRoute: guard.RouteLogin,
		logger:     log.Logger,
	}
	c.requestInterceptors = []RequestInterceptor{
		BearerInterceptor(session),
		RequestIDInterceptor(),
	}
	c.responseInterceptors = []ResponseInterceptor{
		c.authFailureInterceptor,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Send performs req and decodes a successful JSON body into out (which may be nil).
func (c *Client) Send(ctx context.Context, req Request, out any) error {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return err
	}
	for _, intercept := range c.requestInterceptors {
		if err := intercept(httpReq); err != nil {
			return errors.Wrap(err, "request interceptor")
		}
	}

	op := fmt.Sprintf("%s %s", req.Method, req.Path)
	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	elapsed := time.Since(start)

	var body []byte
	if err != nil {
		err = &apperrors.NetworkError{Op: op, Err: err, Timeout: isTimeout(err)}
	} else {
		body, err = readBody(resp)
		if err != nil {
			err = &apperrors.NetworkError{Op: op, Err: err, Timeout: isTimeout(err)}
		} else if resp.StatusCode >= http.StatusBadRequest {
			err = newHTTPError(req, resp.StatusCode, body)
		}
	}

	c.metrics.observe(req.Method, resp, elapsed)
	c.logResult(httpReq, req, resp, elapsed, err)

	for _, intercept := range c.responseInterceptors {
		err = intercept(httpReq, resp, err)
	}
	if err != nil {
		return err
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "decoding %s response", op)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, errors.Wrapf(err, "encoding %s %s body", req.Method, req.Path)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	httpReq.Header.Set("Content-Type", contentTypeJSON)
	httpReq.Header.Set("Accept", contentTypeJSON)
	return httpReq, nil
}

// authFailureInterceptor clears the session on a 401 and asks for the login
// view unless it is already showing. The original failure is passed on.
func (c *Client) authFailureInterceptor(req *http.Request, resp *http.Response, err error) error {
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		return err
	}
	c.logger.Info().Str("path", req.URL.Path).Msg("Authorization expired, ending session")
	if c.session != nil {
		c.session.Clear()
	}
	if c.navigator != nil && c.navigator.CurrentRoute() != c.loginRoute {
		c.navigator.Navigate(c.loginRoute)
	}
	return err
}

func (c *Client) logResult(httpReq *http.Request, req Request, resp *http.Response, elapsed time.Duration, err error) {
	event := c.logger.Debug()
	if err != nil {
		event = c.logger.Warn().Err(err)
	}
	if resp != nil {
		event = event.Int("status", resp.StatusCode)
	}
	event.Str("method", req.Method).
		Str("path", req.Path).
		Str("request_id", httpReq.Header.Get(headerRequestID)).
		Dur("duration", elapsed).
		Msg("API request")
}

func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func newHTTPError(req Request, status int, body []byte) *apperrors.HTTPError {
	httpErr := &apperrors.HTTPError{
		Method:     req.Method,
		Path:       req.Path,
		StatusCode: status,
		Body:       body,
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		httpErr.Message = payload.Error
		if httpErr.Message == "" {
			httpErr.Message = payload.Message
		}
	}
	return httpErr
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
