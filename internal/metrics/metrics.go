package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reposcout_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reposcout_run_duration_seconds",
			Help:    "Duration of each recommendation run in seconds.",
			Buckets: []float64{1, 5, 15, 60, 300, 600},
		},
	)
	RunStepDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "reposcout_run_step_duration_seconds",
			Help:       "Duration of each step in the recommendation run.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step"},
	)
	CandidatesFetchedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reposcout_candidates_fetched_total",
			Help: "Total number of candidates resolved, by source.",
		},
		[]string{"source"},
	)
	RecommendationsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reposcout_recommendations_total",
			Help: "Total number of recommendations persisted.",
		},
	)
	NotificationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reposcout_notifications_total",
			Help: "Total number of notification deliveries, by channel and outcome.",
		},
		[]string{"channel", "outcome"},
	)
)

func StartMetricsServer() {

	prometheus.MustRegister(ErrorsCounter)
	prometheus.MustRegister(RunDuration)
	prometheus.MustRegister(RunStepDuration)
	prometheus.MustRegister(CandidatesFetchedCounter)
	prometheus.MustRegister(RecommendationsCounter)
	prometheus.MustRegister(NotificationsCounter)

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(":8080", nil))
	}()
}
