package httpclient

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the client's Prometheus collectors.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bell_client_requests_total",
			Help: "Requests sent to the bell API by method and status class.",
		}, []string{"method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bell_client_request_duration_seconds",
			Help:    "Latency of requests sent to the bell API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// Requests returns the counter for a method and status class ("2xx", "4xx", "network").
func (m *Metrics) Requests(method, status string) prometheus.Counter {
	return m.requests.WithLabelValues(method, status)
}

func (m *Metrics) observe(method string, resp *http.Response, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, statusClass(resp)).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func statusClass(resp *http.Response) string {
	if resp == nil {
		return "network"
	}
	return fmt.Sprintf("%dxx", resp.StatusCode/100)
}
