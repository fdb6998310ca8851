package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "threadline"

// Commerce records checkout, order transition and payment gateway activity.
// A nil *Commerce is a valid no-op recorder.
type Commerce struct {
	quotes      *prometheus.CounterVec
	warnings    *prometheus.CounterVec
	transitions *prometheus.CounterVec
	gateway     *prometheus.HistogramVec
}

// NewCommerce registers the commerce metrics on the provided registerer.
func NewCommerce(reg prometheus.Registerer) *Commerce {
	if reg == nil {
		return &Commerce{}
	}
	quotes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_quotes_total",
		Help:      "Checkout pricing requests by outcome (ok or rejection code).",
	}, []string{"outcome"})
	warnings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_warnings_total",
		Help:      "Non-fatal checkout warnings by type.",
	}, []string{"type"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_transitions_total",
		Help:      "Order state machine transition attempts by result.",
	}, []string{"transition", "result"})
	gateway := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "payment_gateway_duration_seconds",
		Help:      "Latency of payment gateway calls.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"provider", "operation", "outcome"})
	reg.MustRegister(quotes, warnings, transitions, gateway)
	return &Commerce{
		quotes:      quotes,
		warnings:    warnings,
		transitions: transitions,
		gateway:     gateway,
	}
}

// Handler exposes a registry over HTTP.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// IncQuote counts a pricing request. outcome is "ok" or the rejection code.
func (c *Commerce) IncQuote(outcome string) {
	if c == nil || c.quotes == nil {
		return
	}
	c.quotes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncWarning counts a non-fatal warning attached to a quote.
func (c *Commerce) IncWarning(kind string) {
	if c == nil || c.warnings == nil {
		return
	}
	c.warnings.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncTransition counts a transition attempt.
func (c *Commerce) IncTransition(transition, result string) {
	if c == nil || c.transitions == nil {
		return
	}
	c.transitions.WithLabelValues(normalizeLabel(transition), normalizeLabel(result)).Inc()
}

// ObserveGateway records the duration of a gateway call.
func (c *Commerce) ObserveGateway(provider, operation, outcome string, duration time.Duration) {
	if c == nil || c.gateway == nil {
		return
	}
	c.gateway.WithLabelValues(normalizeLabel(provider), normalizeLabel(operation), normalizeLabel(outcome)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
