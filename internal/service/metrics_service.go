package service

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline stage labels.
const (
	StageLoad   = "load"
	StagePivot  = "pivot"
	StageRender = "render"
)

// MetricsService encapsulates Prometheus instrumentation for one timetable run.
// Batch runs have no scrape endpoint, so the registry is flushed to a
// node-exporter textfile instead.
type MetricsService struct {
	registry       *prometheus.Registry
	recordsLoaded  prometheus.Counter
	recordsDropped *prometheus.CounterVec
	cellOverwrites prometheus.Counter
	timeRanges     prometheus.Gauge
	outputsWritten *prometheus.CounterVec
	stageDuration  *prometheus.HistogramVec
	lastSuccess    prometheus.Gauge
}

// NewMetricsService registers the pipeline collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	recordsLoaded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_records_loaded_total",
		Help: "Schedule records read from the source",
	})

	recordsDropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_records_dropped_total",
		Help: "Schedule records left out of the rendered timetable",
	}, []string{"reason"})

	cellOverwrites := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_cell_overwrites_total",
		Help: "Slots whose class was replaced by a later record",
	})

	timeRanges := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetable_time_ranges",
		Help: "Distinct time ranges in the rendered timetable",
	})

	outputsWritten := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_outputs_written_total",
		Help: "Rendered output files written",
	}, []string{"format"})

	stageDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetable_stage_duration_seconds",
		Help:    "Duration of each pipeline stage",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	lastSuccess := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetable_last_success_timestamp_seconds",
		Help: "Unix time of the last successful run",
	})

	registry.MustRegister(recordsLoaded, recordsDropped, cellOverwrites, timeRanges, outputsWritten, stageDuration, lastSuccess)

	return &MetricsService{
		registry:       registry,
		recordsLoaded:  recordsLoaded,
		recordsDropped: recordsDropped,
		cellOverwrites: cellOverwrites,
		timeRanges:     timeRanges,
		outputsWritten: outputsWritten,
		stageDuration:  stageDuration,
		lastSuccess:    lastSuccess,
	}
}

// ObserveLoad records how many records a source produced.
func (m *MetricsService) ObserveLoad(records int) {
	if m == nil {
		return
	}
	m.recordsLoaded.Add(float64(records))
}

// ObservePivot records the pivot outcome.
func (m *MetricsService) ObservePivot(stats PivotStats) {
	if m == nil {
		return
	}
	m.recordsDropped.WithLabelValues("invalid_day").Add(float64(stats.InvalidDays))
	m.cellOverwrites.Add(float64(stats.Overwrites))
	m.timeRanges.Set(float64(stats.TimeRanges))
}

// ObserveOutput counts a written artefact.
func (m *MetricsService) ObserveOutput(format string) {
	if m == nil {
		return
	}
	m.outputsWritten.WithLabelValues(format).Inc()
}

// ObserveStage records the duration of a pipeline stage.
func (m *MetricsService) ObserveStage(stage string, duration time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// MarkSuccess stamps the completion time.
func (m *MetricsService) MarkSuccess(at time.Time) {
	if m == nil {
		return
	}
	m.lastSuccess.Set(float64(at.Unix()))
}

// WriteTextfile atomically writes the registry in the Prometheus text format.
func (m *MetricsService) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
