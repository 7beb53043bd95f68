package prometheus

import (
	"strconv"
	"time"
)

// Label values shared by several metrics.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var (
	ParseDurationBuckets = []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, 1}
	SizeBuckets          = []float64{10, 50, 100, 250, 500, 1000, 5000, 25000}
)

// AppMetrics holds the metric families recorded by the service.
type AppMetrics struct {
	ParsesTotal           CounterVec
	ParseDuration         HistogramVec
	MoleculeAtoms         HistogramVec
	ComplianceNotesTotal  CounterVec
	ComplianceInvalid     CounterVec
	AromaticRings         HistogramVec
	StereoCandidatesTotal CounterVec
	EquivalenceTotal      CounterVec
	EquivalenceDuration   HistogramVec

	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec

	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec

	WorkerMessagesTotal CounterVec
	WorkerInFlight      GaugeVec
}

// NewAppMetrics registers every family on c.
func NewAppMetrics(c MetricsCollector) *AppMetrics {
	return &AppMetrics{
		ParsesTotal:           c.RegisterCounter("molfile_parses_total", "Molfile parse attempts.", "version", "status"),
		ParseDuration:         c.RegisterHistogram("molfile_parse_duration_seconds", "Molfile parse latency.", ParseDurationBuckets, "version"),
		MoleculeAtoms:         c.RegisterHistogram("molecule_atoms", "Atoms per parsed molecule.", SizeBuckets),
		ComplianceNotesTotal:  c.RegisterCounter("compliance_notes_total", "Compliance notes raised.", "kind"),
		ComplianceInvalid:     c.RegisterCounter("compliance_invalid_total", "Molfiles using invalid features.", "level"),
		AromaticRings:         c.RegisterHistogram("aromatic_rings", "Aromatic rings per molecule.", []float64{0, 1, 2, 3, 5, 8, 13}, "mode"),
		StereoCandidatesTotal: c.RegisterCounter("stereo_candidates_total", "Stereo rubric candidates found.", "category"),
		EquivalenceTotal:      c.RegisterCounter("equivalence_checks_total", "Equivalence screenings.", "outcome"),
		EquivalenceDuration:   c.RegisterHistogram("equivalence_duration_seconds", "Equivalence screening latency.", nil),
		CacheHitsTotal:        c.RegisterCounter("cache_hits_total", "Annotation cache hits.", "cache"),
		CacheMissesTotal:      c.RegisterCounter("cache_misses_total", "Annotation cache misses.", "cache"),
		HTTPRequestsTotal:     c.RegisterCounter("http_requests_total", "HTTP requests.", "method", "route", "status"),
		HTTPRequestDuration:   c.RegisterHistogram("http_request_duration_seconds", "HTTP request latency.", nil, "method", "route"),
		WorkerMessagesTotal:   c.RegisterCounter("worker_messages_total", "Ingest messages handled.", "topic", "status"),
		WorkerInFlight:        c.RegisterGauge("worker_in_flight", "Ingest messages being processed.", "topic"),
	}
}

// RecordParse records one parse attempt.
func (m *AppMetrics) RecordParse(version string, atoms int, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	if version == "" {
		version = "unknown"
	}
	m.ParsesTotal.WithLabelValues(version, status).Inc()
	m.ParseDuration.WithLabelValues(version).Observe(d.Seconds())
	if err == nil {
		m.MoleculeAtoms.WithLabelValues().Observe(float64(atoms))
	}
}

// RecordEquivalence records one screening outcome: "equivalent",
// "different" or "error".
func (m *AppMetrics) RecordEquivalence(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.EquivalenceTotal.WithLabelValues(outcome).Inc()
	m.EquivalenceDuration.WithLabelValues().Observe(d.Seconds())
}

// RecordCache records a lookup on the named cache.
func (m *AppMetrics) RecordCache(cache string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

// RecordHTTPRequest records one served request.
func (m *AppMetrics) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordCompliance records the notes and validity of one parsed molfile.
func (m *AppMetrics) RecordCompliance(level string, invalid bool, kinds []string) {
	if m == nil {
		return
	}
	for _, k := range kinds {
		m.ComplianceNotesTotal.WithLabelValues(k).Inc()
	}
	if invalid {
		m.ComplianceInvalid.WithLabelValues(level).Inc()
	}
}

// RecordAnnotation records aromatic ring and stereo candidate counts.
func (m *AppMetrics) RecordAnnotation(mode string, rings int, stereo map[string]int) {
	if m == nil {
		return
	}
	m.AromaticRings.WithLabelValues(mode).Observe(float64(rings))
	for category, n := range stereo {
		m.StereoCandidatesTotal.WithLabelValues(category).Add(float64(n))
	}
}

// RecordWorkerMessage counts one handled ingest message.
func (m *AppMetrics) RecordWorkerMessage(topic, status string) {
	if m == nil {
		return
	}
	m.WorkerMessagesTotal.WithLabelValues(topic, status).Inc()
}

// WorkerStarted marks one ingest message in flight on topic and returns the
// matching completion.
func (m *AppMetrics) WorkerStarted(topic string) func() {
	if m == nil {
		return func() {}
	}
	g := m.WorkerInFlight.WithLabelValues(topic)
	g.Inc()
	return g.Dec
}

//Personal.AI order the ending
