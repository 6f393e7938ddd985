package metrics

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []SinkConfig `json:"sinks"`
	// PrometheusAddr is the listen address of the /metrics endpoint.
	// Empty disables the HTTP server.
	PrometheusAddr string `json:"prometheus_addr"`
}
