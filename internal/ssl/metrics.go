package ssl

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRecorder receives TLS provisioning and handshake events.
type MetricsRecorder interface {
	// RecordEngineCreated records that a per-connection engine was
	// derived for the given listener.
	RecordEngineCreated(listener Listener)

	// RecordHandshakeError records a failed handshake on the given
	// listener.
	RecordHandshakeError(listener Listener)

	// RecordCertificateExpiry records the expiry timestamp of the leaf
	// certificate serving the given listener. Set once at construction.
	RecordCertificateExpiry(listener Listener, notAfter time.Time)
}

// Metrics is a Prometheus-backed MetricsRecorder.
type Metrics struct {
	enginesCreated  *prometheus.CounterVec
	handshakeErrors *prometheus.CounterVec
	certExpiry      *prometheus.GaugeVec
}

// NewMetrics creates TLS metrics registered with the given registerer.
// A nil registerer falls back to the default one.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &Metrics{
		enginesCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ssl",
				Subsystem: "engine",
				Name:      "created_total",
				Help:      "Total number of per-connection TLS engines created",
			},
			[]string{"listener"},
		),
		handshakeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ssl",
				Subsystem: "handshake",
				Name:      "errors_total",
				Help:      "Total number of failed TLS handshakes",
			},
			[]string{"listener"},
		),
		certExpiry: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "ssl",
				Subsystem: "certificate",
				Name:      "expiry_timestamp_seconds",
				Help:      "Unix timestamp when the listener's leaf certificate expires",
			},
			[]string{"listener"},
		),
	}
}

// RecordEngineCreated implements MetricsRecorder.
func (m *Metrics) RecordEngineCreated(listener Listener) {
	m.enginesCreated.WithLabelValues(listener.String()).Inc()
}

// RecordHandshakeError implements MetricsRecorder.
func (m *Metrics) RecordHandshakeError(listener Listener) {
	m.handshakeErrors.WithLabelValues(listener.String()).Inc()
}

// RecordCertificateExpiry implements MetricsRecorder.
func (m *Metrics) RecordCertificateExpiry(listener Listener, notAfter time.Time) {
	m.certExpiry.WithLabelValues(listener.String()).Set(float64(notAfter.Unix()))
}

// NopMetrics is a MetricsRecorder that discards all events.
type NopMetrics struct{}

// RecordEngineCreated implements MetricsRecorder.
func (NopMetrics) RecordEngineCreated(Listener) {}

// RecordHandshakeError implements MetricsRecorder.
func (NopMetrics) RecordHandshakeError(Listener) {}

// RecordCertificateExpiry implements MetricsRecorder.
func (NopMetrics) RecordCertificateExpiry(Listener, time.Time) {}
