package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/rotaops/rota/core/metrics"
	"github.com/rotaops/rota/core/model"
	"github.com/rotaops/rota/infra/logger"
)

// InfluxSink writes scheduling events to an InfluxDB instance using the
// official client.
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
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
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

// RecordScheduleRun writes one generation run summary.
func (s *InfluxSink) RecordScheduleRun(ev coremetrics.RunResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("schedule_run").
		AddTag("component", "roster_engine").
		AddTag("window_start", ev.WindowStart.Format(model.DateFormat)).
		AddTag("window_end", ev.WindowEnd.Format(model.DateFormat)).
		AddField("assignments", ev.Assignments).
		AddField("weeks", ev.Weeks).
		AddField("relaxed", ev.Relaxed).
		AddField("forced", ev.Forced).
		AddField("uncovered", ev.Uncovered).
		AddField("mean_hours", round3(ev.MeanHours)).
		AddField("stddev_hours", round3(ev.StddevHours)).
		AddField("duration_ms", ev.Duration.Milliseconds()).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordAssignments writes one point per persisted slot decision.
func (s *InfluxSink) RecordAssignments(evs []coremetrics.AssignmentEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, ev := range evs {
		fallback := ev.Fallback
		if fallback == "" {
			fallback = "none"
		}
		p := write.NewPointWithMeasurement("slot_assignment").
			AddTag("rotation", ev.Rotation.String()).
			AddTag("engineer", ev.Engineer).
			AddTag("fallback", fallback).
			AddTag("component", "roster_engine").
			AddField("date", ev.Date.Format(model.DateFormat)).
			AddField("hours", ev.Rotation.Hours()).
			SetTime(ev.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordOverride writes one override request outcome.
func (s *InfluxSink) RecordOverride(ev coremetrics.OverrideEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("override_request").
		AddTag("rotation", ev.Rotation.String()).
		AddTag("success", strconv.FormatBool(ev.Success)).
		AddTag("component", "override_engine")
	if ev.ErrorType != "" {
		p = p.AddTag("error_type", ev.ErrorType)
	}
	p = p.AddField("dates", ev.Dates).
		AddField("replaced", ev.Replaced).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordMirrorSync writes one document mirror synchronisation.
func (s *InfluxSink) RecordMirrorSync(ev coremetrics.MirrorSyncEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("mirror_sync").
		AddTag("component", "mirror").
		AddField("start", ev.Start.Format(model.DateFormat)).
		AddField("end", ev.End.Format(model.DateFormat)).
		AddField("created", ev.Created).
		AddField("updated", ev.Updated).
		AddField("skipped", ev.Skipped).
		AddField("errors", ev.Error).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordDirectMessage writes one chat delivery attempt.
func (s *InfluxSink) RecordDirectMessage(ev coremetrics.DirectMessageEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("direct_message").
		AddTag("recipient", ev.Recipient).
		AddTag("acknowledged", strconv.FormatBool(ev.Acknowledged)).
		AddTag("component", "chat_bridge").
		AddField("attempts", ev.Attempts).
		AddField("latency_ms", round3(ev.Latency.Seconds()*1000)).
		AddField("errors", ev.Error).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordPresencePush writes one presence window push.
func (s *InfluxSink) RecordPresencePush(ev coremetrics.PresenceEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("presence_push").
		AddTag("component", "presence").
		AddField("dates", ev.Dates).
		AddField("keys", ev.Keys).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
