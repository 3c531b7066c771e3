package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/powerplan/core/metrics"
	"github.com/kilianp07/powerplan/infra/logger"
)

// InfluxConfig configures an InfluxSink.
type InfluxConfig struct {
	URL     string        `json:"url"`
	Token   string        `json:"token"`
	Org     string        `json:"org"`
	Bucket  string        `json:"bucket"`
	Timeout time.Duration `json:"timeout"`
}

func (c *InfluxConfig) setDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	c.URL = strings.TrimSuffix(c.URL, "/api/v2/write")
}

// InfluxSink writes production plans to an InfluxDB instance using the
// official client. Each plan yields one production_plan point and one
// plant_setpoint point per plant.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	timeout  time.Duration
	log      logger.Logger
}

// NewInfluxSink creates a sink for the configured endpoint without checking
// it is reachable.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	cfg.setDefaults()
	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		timeout:  cfg.Timeout,
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// if the health check fails, so a missing database never blocks planning.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), sink.timeout)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordPlan writes the plan summary and its setpoints in a single request.
func (s *InfluxSink) RecordPlan(rec coremetrics.PlanRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	ts := rec.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	points := make([]*write.Point, 0, len(rec.Plan)+1)
	points = append(points, write.NewPointWithMeasurement("production_plan").
		AddTag("plan_id", rec.PlanID).
		AddTag("strategy", rec.Strategy).
		AddTag("outcome", rec.Outcome).
		AddField("load_mw", round3(rec.Load)).
		AddField("wind_mw", round3(rec.Wind)).
		AddField("cost_euro", round3(rec.Cost)).
		AddField("residual_mw", round3(rec.Residual)).
		AddField("duration_ms", round3(float64(rec.Duration)/float64(time.Millisecond))).
		SetTime(ts))
	for _, a := range rec.Plan {
		points = append(points, write.NewPointWithMeasurement("plant_setpoint").
			AddTag("plan_id", rec.PlanID).
			AddTag("plant", a.Name).
			AddField("p_mw", round3(a.P)).
			SetTime(ts))
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
