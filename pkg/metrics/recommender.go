package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the recommendations HTTP handler
	RecommendLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "reco_recommend_latency_seconds",
		Help:    "Latency of the recommendations endpoint",
		Buckets: prometheus.DefBuckets,
	})

	// Recommendations served, labelled by the strategy tier that produced them
	RecommendTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reco_recommend_total",
		Help: "Total recommendations served per strategy",
	}, []string{"strategy"})

	CacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reco_cache_hits_total",
		Help: "Cache hits per namespace",
	}, []string{"namespace"})

	CacheMisses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reco_cache_misses_total",
		Help: "Cache misses per namespace",
	}, []string{"namespace"})

	EventsIngested = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reco_events_ingested_total",
		Help: "Events accepted by the ingestion endpoint per type",
	}, []string{"event_type"})

	MalformedEvents = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reco_malformed_events_total",
		Help: "Events skipped by pipelines or rejected at ingestion",
	})

	PipelineDuration = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "reco_pipeline_duration_seconds",
		Help: "Wall-clock duration of the last pipeline run",
	}, []string{"pipeline"})

	PipelineLastSuccess = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "reco_pipeline_last_success_timestamp",
		Help: "Unix time of the last successful pipeline run",
	}, []string{"pipeline"})
)

func Init() {
	prometheus.MustRegister(
		RecommendLatency,
		RecommendTotal,
		CacheHits,
		CacheMisses,
		EventsIngested,
		MalformedEvents,
		PipelineDuration,
		PipelineLastSuccess,
	)
}
