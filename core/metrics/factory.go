package metrics

import (
	"fmt"
	"sync"

	"github.com/go-viper/mapstructure/v2"
)

// SinkConfig contains the type name and raw configuration for one sink.
type SinkConfig struct {
	Type string         `json:"type"`
	Conf map[string]any `json:"conf"`
}

// SinkFactory constructs a sink from its raw configuration.
type SinkFactory func(map[string]any) (MetricsSink, error)

var (
	registryMu    sync.RWMutex
	sinkFactories = map[string]SinkFactory{}
)

// RegisterSink adds a sink factory identified by name. Registering the
// same name twice is an error.
func RegisterSink(name string, f SinkFactory) error {
	if f == nil {
		return fmt.Errorf("metrics: nil factory for %s", name)
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := sinkFactories[name]; ok {
		return fmt.Errorf("metrics: factory already registered for %s", name)
	}
	sinkFactories[name] = f
	return nil
}

// NewSink creates a MetricsSink from the provided configurations. With no
// configuration a NopSink is returned; with several, a MultiSink.
func NewSink(cfgs []SinkConfig) (MetricsSink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	sinks := make([]MetricsSink, len(cfgs))
	for i, c := range cfgs {
		registryMu.RLock()
		f, ok := sinkFactories[c.Type]
		registryMu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("metrics: unknown sink type %s", c.Type)
		}
		s, err := f(c.Conf)
		if err != nil {
			return nil, fmt.Errorf("metrics: build sink %s: %w", c.Type, err)
		}
		sinks[i] = s
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return NewMultiSink(sinks...), nil
}

// Decode fills out the provided struct from raw sink configuration using
// json tags.
func Decode(data map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "json", Result: out})
	if err != nil {
		return err
	}
	return dec.Decode(data)
}
