// Package telemetry métricas Prometheus del editor de facturas y del servidor HTTP.
package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/invoice-builder/internal/application/billing"
)

// Metrics implementa billing.Metrics y expone contadores HTTP.
type Metrics struct {
	totalsRecomputed prometheus.Counter
	codesEncoded     *prometheus.CounterVec
	encodeDuration   prometheus.Histogram
	codesSuperseded  prometheus.Counter
	draftOps         *prometheus.CounterVec

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

var _ billing.Metrics = (*Metrics)(nil)

// DefaultNamespace prefijo de todas las métricas.
const DefaultNamespace = "invoice"

// NewMetrics crea y registra las métricas en reg (prometheus.DefaultRegisterer en producción).
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	m := &Metrics{
		totalsRecomputed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "totals_recomputed_total",
			Help:      "Recálculos de totales tras una edición",
		}),
		codesEncoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compliance_codes_total",
			Help:      "Códigos QR generados, por estado final",
		}, []string{"status"}),
		encodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compliance_code_duration_seconds",
			Help:      "Duración de la generación del QR",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		codesSuperseded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compliance_codes_superseded_total",
			Help:      "Generaciones de QR reemplazadas por un pedido más nuevo",
		}),
		draftOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draft_operations_total",
			Help:      "Operaciones de persistencia del borrador",
		}, []string{"op", "result"}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total de peticiones HTTP",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de las peticiones HTTP",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"method", "route"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.totalsRecomputed, m.codesEncoded, m.encodeDuration, m.codesSuperseded,
			m.draftOps, m.requestsTotal, m.requestDuration,
		)
	}
	return m
}

func (m *Metrics) TotalsRecomputed() { m.totalsRecomputed.Inc() }

func (m *Metrics) CodeEncoded(status billing.CodeStatus, elapsed time.Duration) {
	m.codesEncoded.WithLabelValues(string(status)).Inc()
	m.encodeDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) CodeSuperseded() { m.codesSuperseded.Inc() }

func (m *Metrics) DraftPersisted(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.draftOps.WithLabelValues(op, result).Inc()
}

// ObserveRequest registra una petición HTTP; route es el patrón, no la URL.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
