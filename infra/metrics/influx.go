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

	"github.com/aau-energy/microgrid/core/logger"
	coremetrics "github.com/aau-energy/microgrid/core/metrics"
	infralogger "github.com/aau-energy/microgrid/infra/logger"
)

// InfluxSink writes query outcomes and battery state to an InfluxDB instance
// using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      infralogger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
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

// RecordQuery writes query outcomes as line protocol points.
func (s *InfluxSink) RecordQuery(res []coremetrics.QueryResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range res {
		outcome := "ok"
		if r.Reason != "" {
			outcome = r.Reason
		}
		p := write.NewPointWithMeasurement("energy_query").
			AddTag("kind", r.Kind).
			AddTag("outcome", outcome).
			AddField("windows", r.Windows).
			AddField("duration_ms", round3(float64(r.Duration.Microseconds())/1000.0)).
			SetTime(r.At)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordBatteryState writes battery state samples as line protocol points.
func (s *InfluxSink) RecordBatteryState(samples []coremetrics.BatterySample) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, b := range samples {
		p := write.NewPointWithMeasurement("battery_state").
			AddField("soc_kwh", round3(b.SocKWh)).
			AddField("capacity_kwh", round3(b.CapacityKWh)).
			SetTime(b.At)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
