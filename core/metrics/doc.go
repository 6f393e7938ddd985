package metrics

// Package metrics defines the sink interfaces used to record scheduling
// events. Sinks like PromSink and InfluxSink record schedule runs,
// overrides, mirror syncs and chat deliveries and can be combined with
// NewMultiSink. The factory helpers return a MultiSink automatically when
// multiple sinks are configured.
