package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rotaops/rota/core/factory"
	coremetrics "github.com/rotaops/rota/core/metrics"
	"github.com/rotaops/rota/core/metrics/workload"
	"github.com/rotaops/rota/infra/kpi"
)

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterSink("prometheus", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		// The listen address is consumed by the HTTP server, not the sink.
		return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	})

	_ = coremetrics.RegisterSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c struct {
			URL    string `json:"url"`
			Token  string `json:"token"`
			Org    string `json:"org"`
			Bucket string `json:"bucket"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	})

	_ = coremetrics.RegisterSink("workload", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			return NewWorkloadSink(workload.NewMemoryStore(), prometheus.DefaultRegisterer)
		}
		store, err := kpi.NewSQLiteStore(c.Path)
		if err != nil {
			return nil, err
		}
		return NewWorkloadSink(store, prometheus.DefaultRegisterer)
	})
}
