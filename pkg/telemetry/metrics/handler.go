package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns an HTTP handler for the Prometheus metrics endpoint.
// It should be mounted at MetricsConfig.Path (typically "/metrics").
//
// Example:
//
//	collector := metrics.NewCollector(cfg, nil)
//	mux.Handle(cfg.Path, collector.Handler())
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(
		c.registry,
		promhttp.HandlerOpts{
			// Enable OpenMetrics encoding (preferred over Prometheus text format)
			EnableOpenMetrics: true,

			// Error handling
			ErrorHandling: promhttp.ContinueOnError,
		},
	)
}

// HandlerWithOptions returns an HTTP handler with custom options.
func (c *Collector) HandlerWithOptions(opts promhttp.HandlerOpts) http.Handler {
	return promhttp.HandlerFor(c.registry, opts)
}
