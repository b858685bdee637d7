package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "corpdir_api_requests_total",
			Help: "Directory API requests by resource, route and status class",
		},
		[]string{"resource", "method", "route", "class"},
	)

	// login runs bcrypt, so the upper buckets leave room for it
	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "corpdir_api_request_duration_seconds",
			Help:    "Directory API latency in seconds by resource",
			Buckets: []float64{.002, .005, .01, .025, .05, .1, .2, .4, .8, 1.6},
		},
		[]string{"resource", "method"},
	)

	apiInflight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "corpdir_api_inflight_requests",
			Help: "Directory API requests currently being served",
		},
	)
)

// MetricsConfig configures the metrics middleware
type MetricsConfig struct {
	// Skip function
	Skip func(*fiber.Ctx) bool
	// PathNormalizer maps a request to its metrics label
	PathNormalizer func(*fiber.Ctx) string
}

// DefaultMetricsConfig returns default metrics config
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Skip:           HealthSkipper,
		PathNormalizer: RoutePath,
	}
}

// RoutePath labels a request with its route pattern (/users/:id) so ids do
// not explode label cardinality. Unmatched requests share one label.
func RoutePath(c *fiber.Ctx) string {
	route := c.Route()
	if route == nil || route.Path == "" || route.Path == "/" && c.Path() != "/" {
		return "unmatched"
	}
	return route.Path
}

// Resource is the first segment of a route label ("/users/:id" is "users").
func Resource(route string) string {
	if route == "unmatched" {
		return route
	}
	resource, _, _ := strings.Cut(strings.TrimPrefix(route, "/"), "/")
	if resource == "" {
		return "root"
	}
	return resource
}

// statusClass buckets a status code as "2xx", "4xx" and so on
func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}

// MetricsMiddleware creates a Prometheus metrics middleware
type MetricsMiddleware struct {
	config MetricsConfig
}

// NewMetricsMiddleware creates a new metrics middleware
func NewMetricsMiddleware(config MetricsConfig) *MetricsMiddleware {
	if config.PathNormalizer == nil {
		config.PathNormalizer = RoutePath
	}
	return &MetricsMiddleware{
		config: config,
	}
}

// Handler returns the metrics handler
func (m *MetricsMiddleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m.config.Skip != nil && m.config.Skip(c) {
			return c.Next()
		}

		start := time.Now()
		method := c.Method()

		apiInflight.Inc()
		defer apiInflight.Dec()

		err := c.Next()

		// the route is only known once routing has run
		route := m.config.PathNormalizer(c)
		resource := Resource(route)

		apiRequests.WithLabelValues(resource, method, route, statusClass(c.Response().StatusCode())).Inc()
		apiRequestDuration.WithLabelValues(resource, method).Observe(time.Since(start).Seconds())

		return err
	}
}
