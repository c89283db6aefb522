package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bomplanner"

// Insertion results used as label values
const (
	ResultOK             = "ok"
	ResultValidation     = "validation"
	ResultParentNotFound = "parent_not_found"
	ResultEmptyTree      = "empty_tree"
	ResultError          = "error"
)

// Recorder holds the collectors for BOM and MRP activity
type Recorder struct {
	registry        *prometheus.Registry
	insertions      *prometheus.CounterVec
	calculations    *prometheus.CounterVec
	nodes           prometheus.Gauge
	roots           prometheus.Gauge
	calcDuration    prometheus.Histogram
	resultMaterials prometheus.Gauge
}

// NewRecorder registers the collectors on a private registry
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		insertions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_insertions_total",
			Help:      "Node insertion attempts by result.",
		}, []string{"result"}),
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mrp_calculations_total",
			Help:      "MRP calculations by result.",
		}, []string{"result"}),
		nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nodes",
			Help:      "Nodes currently in the forest.",
		}),
		roots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "roots",
			Help:      "Roots currently in the forest.",
		}),
		calcDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mrp_calculation_seconds",
			Help:      "Time spent aggregating requirements.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
		}),
		resultMaterials: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mrp_result_materials",
			Help:      "Distinct materials in the last MRP result.",
		}),
	}

	r.registry.MustRegister(
		r.insertions,
		r.calculations,
		r.nodes,
		r.roots,
		r.calcDuration,
		r.resultMaterials,
	)
	return r
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveInsertion counts an insertion attempt
func (r *Recorder) ObserveInsertion(result string) {
	r.insertions.WithLabelValues(result).Inc()
}

// ObserveForest records the current forest size
func (r *Recorder) ObserveForest(nodes, roots int) {
	r.nodes.Set(float64(nodes))
	r.roots.Set(float64(roots))
}

// ObserveCalculation counts an MRP run
func (r *Recorder) ObserveCalculation(result string, seconds float64, materials int) {
	r.calculations.WithLabelValues(result).Inc()
	if result == ResultOK {
		r.calcDuration.Observe(seconds)
		r.resultMaterials.Set(float64(materials))
	}
}
