// Package infra contains technical adapters: the MQTT plan publisher, the
// Sentry monitor, the zerolog logger and the Prometheus and InfluxDB metrics
// sinks. These packages depend only on the interfaces defined in core.
package infra
