package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	TriageMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_messages_total",
			Help: "Total number of messages processed by the triage pipeline (count)",
		},
		[]string{"decision"},
	)

	TriageProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "triage_processing_duration_ms",
			Help:    "End-to-end processing duration for one message in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"decision"},
	)

	RuleEvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rule_engine_evaluations_total",
			Help: "Total number of rule engine evaluations by triggered rule (count)",
		},
		[]string{"rule_name", "decision"},
	)

	UrgencyClassifierTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "urgency_classifier_total",
			Help: "Secondary urgency classifier outcomes (count)",
		},
		[]string{"outcome"},
	)

	UrgencyOverridesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "urgency_overrides_total",
			Help: "Urgent verdicts downgraded by the conservative override (count)",
		},
	)

	RoutingDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routing_decisions_total",
			Help: "Final routing decisions by category (count)",
		},
		[]string{"routing", "category"},
	)

	InferenceRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inference_requests_total",
			Help: "Requests to the inference capability (count)",
		},
		[]string{"provider", "status"},
	)

	InferenceDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inference_duration_ms",
			Help:    "Duration of inference capability calls in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"provider"},
	)

	HistoryLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "history_lookups_total",
			Help: "Historical context lookups by result (count)",
		},
		[]string{"provider", "status"},
	)

	HistoryLookupDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "history_lookup_duration_ms",
			Help:    "Duration of historical context lookups in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"provider"},
	)

	FallbackUsageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fallback_usage_total",
			Help: "Total number of times conservative fallback paths were used (count)",
		},
		[]string{"component", "reason"},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of retry attempts (count)",
		},
		[]string{"service", "topic"},
	)

	DLQMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dlq_messages_total",
			Help: "Total number of messages sent to DLQ (count)",
		},
		[]string{"service", "topic", "reason"},
	)

	KafkaMessagesReadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_read_total",
			Help: "Total number of messages read from Kafka (count)",
		},
		[]string{"service", "topic"},
	)

	KafkaMessagesWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_written_total",
			Help: "Total number of messages written to Kafka (count)",
		},
		[]string{"service", "topic"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)

	ResultsPersistedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "results_persisted_total",
			Help: "Processing results persisted to the results store (count)",
		},
		[]string{"status"},
	)
)

func RegisterTriageMetrics() {
	prometheus.MustRegister(TriageMessagesTotal)
	prometheus.MustRegister(TriageProcessingDuration)
	prometheus.MustRegister(RuleEvaluationsTotal)
	prometheus.MustRegister(UrgencyClassifierTotal)
	prometheus.MustRegister(UrgencyOverridesTotal)
	prometheus.MustRegister(RoutingDecisionsTotal)
	prometheus.MustRegister(InferenceRequestsTotal)
	prometheus.MustRegister(InferenceDuration)
	prometheus.MustRegister(HistoryLookupsTotal)
	prometheus.MustRegister(HistoryLookupDuration)
	prometheus.MustRegister(FallbackUsageTotal)
	prometheus.MustRegister(ResultsPersistedTotal)
}

func RegisterBrokerMetrics() {
	prometheus.MustRegister(RetryAttemptsTotal)
	prometheus.MustRegister(DLQMessagesTotal)
	prometheus.MustRegister(KafkaMessagesReadTotal)
	prometheus.MustRegister(KafkaMessagesWrittenTotal)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(CircuitBreakerState)
	prometheus.MustRegister(CircuitBreakerRequests)
	prometheus.MustRegister(CircuitBreakerFailures)
}

func RegisterAPIMetrics() {
	prometheus.MustRegister(RateLimitRequestsTotal)
}

func ObserveTriageDuration(duration time.Duration, decision string) {
	TriageProcessingDuration.WithLabelValues(decision).Observe(float64(duration.Milliseconds()))
}

func ObserveInferenceDuration(provider string, duration time.Duration) {
	InferenceDuration.WithLabelValues(provider).Observe(float64(duration.Milliseconds()))
}

func ObserveHistoryLookupDuration(provider string, duration time.Duration) {
	HistoryLookupDuration.WithLabelValues(provider).Observe(float64(duration.Milliseconds()))
}

func IncKafkaMessagesRead(service, topic string) {
	KafkaMessagesReadTotal.WithLabelValues(service, topic).Inc()
}

func IncKafkaMessagesWritten(service, topic string) {
	KafkaMessagesWrittenTotal.WithLabelValues(service, topic).Inc()
}

func IncRuleEvaluation(ruleName, decision string) {
	RuleEvaluationsTotal.WithLabelValues(ruleName, decision).Inc()
}
