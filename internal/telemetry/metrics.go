// Package telemetry exposes Prometheus metrics for recording and conversion.
package telemetry

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/starford/streammark/internal/apperr"
	"github.com/starford/streammark/internal/youtube"
)

// Conversion outcomes used as the "result" label.
const (
	ResultOK         = "ok"
	ResultInvalid    = "invalid_input"
	ResultNotFound   = "not_found"
	ResultNotLive    = "not_live"
	ResultUpstream   = "upstream_error"
	ResultCancelled  = "cancelled"
	ResultOtherError = "error"
)

var (
	once sync.Once

	MomentsRecorded prometheus.Counter
	Conversions     *prometheus.CounterVec
	LookupDuration  prometheus.Observer
	LogEntries      prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		MomentsRecorded = promauto.NewCounter(prometheus.CounterOpts{Name: "streammark_moments_recorded_total", Help: "Number of moments recorded"})
		Conversions = promauto.NewCounterVec(prometheus.CounterOpts{Name: "streammark_conversions_total", Help: "Chapter conversions by result"}, []string{"result"})
		LookupDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "streammark_start_time_lookup_seconds", Help: "YouTube start time lookup duration seconds", Buckets: prometheus.DefBuckets})
		LogEntries = promauto.NewGauge(prometheus.GaugeOpts{Name: "streammark_log_entries", Help: "Current number of recorded moments"})
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordMoment counts one recorded moment.
func RecordMoment() {
	if MomentsRecorded != nil {
		MomentsRecorded.Inc()
	}
}

// SetLogEntries records the current log length.
func SetLogEntries(n int) {
	if LogEntries != nil {
		LogEntries.Set(float64(n))
	}
}

// ObserveLookup records one metadata lookup duration.
func ObserveLookup(d time.Duration) {
	if LookupDuration != nil {
		LookupDuration.Observe(d.Seconds())
	}
}

// ConversionFinished counts a conversion outcome.
func ConversionFinished(err error) {
	if Conversions != nil {
		Conversions.WithLabelValues(Result(err)).Inc()
	}
}

// Result classifies a conversion error into a metric label.
func Result(err error) string {
	var le *youtube.LookupError
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, apperr.ErrInvalidInput):
		return ResultInvalid
	case errors.Is(err, youtube.ErrVideoNotFound):
		return ResultNotFound
	case errors.Is(err, youtube.ErrNotLiveArchive):
		return ResultNotLive
	case errors.As(err, &le):
		return ResultUpstream
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ResultCancelled
	}
	return ResultOtherError
}
