// Package metrics defines the sinks recording computed production plans and
// API traffic. Sinks such as the Prometheus and InfluxDB ones live in
// infra/metrics and register themselves with RegisterMetricsSink.
// NewMetricsSink returns a MultiSink when several sinks are configured.
package metrics
