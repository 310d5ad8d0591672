package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	iterationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mintrader_iterations_total",
		Help: "Iterations by terminal outcome",
	}, []string{"outcome"})

	iterationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mintrader_iteration_duration_seconds",
		Help:    "Wall time of one full iteration",
		Buckets: []float64{5, 15, 30, 60, 120, 300, 600},
	})

	stepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mintrader_step_duration_seconds",
		Help:    "Wall time per workflow step",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120},
	}, []string{"phase"})

	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mintrader_analyses_total",
		Help: "Completed analyses by recommendation",
	}, []string{"recommendation", "degraded"})

	tradesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mintrader_trades_total",
		Help: "Order submissions by action and status",
	}, []string{"action", "status"})

	constraintRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mintrader_constraint_rejections_total",
		Help: "Trade intents refused by the risk validator, by rule",
	}, []string{"rule"})

	checkpointSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mintrader_checkpoint_saves_total",
		Help: "Checkpoint writes by result",
	}, []string{"result"})
)

// RecordIteration records one finished iteration
func RecordIteration(outcome string, elapsed time.Duration) {
	iterationsTotal.WithLabelValues(outcome).Inc()
	iterationDuration.Observe(elapsed.Seconds())
}

// RecordStep records one completed step
func RecordStep(phase string, elapsed time.Duration) {
	stepDuration.WithLabelValues(phase).Observe(elapsed.Seconds())
}

// RecordAnalysis records one completed analysis
func RecordAnalysis(recommendation string, degraded bool) {
	d := "false"
	if degraded {
		d = "true"
	}
	analysesTotal.WithLabelValues(recommendation, d).Inc()
}

// RecordTrade records one order submission outcome
func RecordTrade(action, status string) {
	tradesTotal.WithLabelValues(action, status).Inc()
}

// RecordConstraintRejection records one refused intent
func RecordConstraintRejection(rule string) {
	constraintRejections.WithLabelValues(rule).Inc()
}

// RecordCheckpointSave records one checkpoint write
func RecordCheckpointSave(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	checkpointSaves.WithLabelValues(result).Inc()
}
