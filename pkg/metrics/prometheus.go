// Package metrics provides Prometheus metrics for the transit fitter.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric namespace constants.
const (
	namespace = "transitfit"
)

var (
	// Model evaluation metrics: the hot path during sampling.
	modelEvaluations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "model_evaluations_total",
		Help:      "Total number of flux model evaluations.",
	})
	invalidParams = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invalid_parameters_total",
		Help:      "Model evaluations rejected for unphysical parameters.",
	})
	evalDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "model_evaluation_seconds",
		Help:      "Latency of a single flux model evaluation.",
		Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
	})

	// Sampler metrics.
	samplerSteps = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sampler_steps_total",
		Help:      "Total ensemble sampler steps executed.",
	})
	acceptanceFraction = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sampler_acceptance_fraction",
		Help:      "Mean acceptance fraction of the last sampling run.",
	})
	walkerCount = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sampler_walkers",
		Help:      "Number of walkers in the current ensemble.",
	})

	// Persistence metrics.
	storeSaves = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_saves_total",
		Help:      "Successful fit persistence operations.",
	})
	storeLoads = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_loads_total",
		Help:      "Successful fit load operations.",
	})
	storeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_errors_total",
		Help:      "Failed persistence operations.",
	})
)

// RecordModelEvaluation increments the model evaluation counter.
func RecordModelEvaluation() { modelEvaluations.Inc() }

// RecordInvalidParameters increments the unphysical-parameter counter.
func RecordInvalidParameters() { invalidParams.Inc() }

// RecordEvaluationSeconds observes a single evaluation latency.
func RecordEvaluationSeconds(s float64) { evalDuration.Observe(s) }

// RecordSamplerSteps adds n executed sampler steps.
func RecordSamplerSteps(n int) { samplerSteps.Add(float64(n)) }

// UpdateAcceptanceFraction sets the mean acceptance fraction gauge.
func UpdateAcceptanceFraction(f float64) { acceptanceFraction.Set(f) }

// UpdateWalkerCount sets the walker count gauge.
func UpdateWalkerCount(n int) { walkerCount.Set(float64(n)) }

// RecordStoreSave increments the save counter.
func RecordStoreSave() { storeSaves.Inc() }

// RecordStoreLoad increments the load counter.
func RecordStoreLoad() { storeLoads.Inc() }

// RecordStoreError increments the store error counter.
func RecordStoreError() { storeErrors.Inc() }
