// Package metrics exports validate and publish outcomes as a Prometheus
// textfile, for the node_exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/chmouel/lazyplaylist/internal/git"
	log "github.com/chmouel/lazyplaylist/internal/log"
	"github.com/chmouel/lazyplaylist/internal/validate"
)

// Recorder holds the metrics of one process and writes them to a textfile.
// A Recorder with an empty path records nothing.
type Recorder struct {
	path string
	reg  *prometheus.Registry

	ValidateChannels  *prometheus.GaugeVec
	ValidateLastRun   prometheus.Gauge
	PublishStepsTotal *prometheus.CounterVec
	PublishLastRun    prometheus.Gauge
}

// New returns a Recorder writing to path.
func New(path string) *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		path: path,
		reg:  reg,
		ValidateChannels: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lazyplaylist_validate_channels",
				Help: "Channels found by the last validate run, by state",
			},
			[]string{"state"},
		),
		ValidateLastRun: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "lazyplaylist_validate_last_run_timestamp_seconds",
				Help: "Unix timestamp of the last validate run",
			},
		),
		PublishStepsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lazyplaylist_publish_steps_total",
				Help: "Git steps run by publish, by step and result",
			},
			[]string{"step", "result"},
		),
		PublishLastRun: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "lazyplaylist_publish_last_run_timestamp_seconds",
				Help: "Unix timestamp of the last publish",
			},
		),
	}
}

// Enabled reports whether a textfile path is set.
func (r *Recorder) Enabled() bool {
	return r != nil && r.path != ""
}

// ObserveValidate records a validate report and writes the textfile.
func (r *Recorder) ObserveValidate(report *validate.Report, at time.Time) error {
	if !r.Enabled() || report == nil {
		return nil
	}
	r.ValidateChannels.WithLabelValues("valid").Set(float64(report.Valid))
	r.ValidateChannels.WithLabelValues("failed").Set(float64(report.Failed))
	r.ValidateChannels.WithLabelValues("filtered").Set(float64(len(report.Rejected)))
	r.ValidateLastRun.Set(float64(at.Unix()))
	return r.flush()
}

// ObservePublish records the steps of one publish and writes the textfile.
func (r *Recorder) ObservePublish(results []git.Result, at time.Time) error {
	if !r.Enabled() {
		return nil
	}
	for _, res := range results {
		result := "ok"
		if !res.OK() {
			result = "failed"
		}
		r.PublishStepsTotal.WithLabelValues(git.StepName(res), result).Inc()
	}
	r.PublishLastRun.Set(float64(at.Unix()))
	return r.flush()
}

func (r *Recorder) flush() error {
	if err := prometheus.WriteToTextfile(r.path, r.reg); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", r.path, err)
	}
	log.Printf("metrics: wrote %s", r.path)
	return nil
}
