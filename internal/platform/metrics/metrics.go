package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ProjectionRecomputeTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "geoview_projection_recompute_total",
		Help: "Total number of filter/sort projection recomputations",
	})
	ProjectionDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "geoview_projection_duration_ms",
		Help:    "Projection recomputation duration in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 50, 100},
	})
	ProjectionSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "geoview_projection_records",
		Help: "Number of records in the current projection",
	})
	RecordSetSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "geoview_record_set_records",
		Help: "Number of records in the loaded record set",
	})
	LoadTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geoview_load_total",
		Help: "Record set loads by result",
	}, []string{"result"})
	SourceRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "geoview_source_requests_total",
		Help: "Underlying record source requests (after in-flight collapsing)",
	})
	CameraFlightsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geoview_camera_flights_total",
		Help: "Camera fly-to transitions by outcome",
	}, []string{"outcome"})
	MeasurementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geoview_measurements_total",
		Help: "Row measurement callbacks by result",
	}, []string{"result"})
	ExportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geoview_exports_total",
		Help: "Exports by format",
	}, []string{"format"})
)

// Handler exposes the default registry for scraping.
func Handler() http.Handler { return promhttp.Handler() }
