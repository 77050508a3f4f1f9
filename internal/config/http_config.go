package config

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	apiURLVar         = "BELL_API_URL"
	requestTimeoutVar = "BELL_REQUEST_TIMEOUT"

	DefaultAPIURL         = "http://localhost:8080/api"
	DefaultRequestTimeout = 5 * time.Second
)

type HTTP struct {
	file *File
}

var _ HTTPConfig = HTTP{}

// GetAPIURL returns the base URL every request path is appended to, without a trailing slash.
func (h HTTP) GetAPIURL() string {
	return strings.TrimRight(h.file.GetEnv(apiURLVar, DefaultAPIURL), "/")
}

func (h HTTP) GetRequestTimeout() time.Duration {
	value := h.file.GetEnv(requestTimeoutVar, "")
	if value == "" {
		return DefaultRequestTimeout
	}
	timeout, err := time.ParseDuration(value)
	if err != nil || timeout <= 0 {
		log.Warn().Str("value", value).Msg("Ignoring invalid " + requestTimeoutVar)
		return DefaultRequestTimeout
	}
	return timeout
}
