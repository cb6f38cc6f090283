package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const NAMESPACE = "ipfixdecode"

var (
	MessagesFramed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "messages_framed_total",
			Help:      "Collect calls that finished without error.",
			Namespace: NAMESPACE,
		},
		[]string{"protocol"},
	)
	SetsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "sets_processed_total",
			Help:      "Sets dispatched to the content handler, by kind.",
			Namespace: NAMESPACE,
		},
		[]string{"protocol", "kind"},
	)
	RecordsDecoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "records_decoded_total",
			Help:      "Data records run through a compiled decode plan.",
			Namespace: NAMESPACE,
		},
		[]string{"domain", "set_id"},
	)
	TemplatesInstalled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "templates_installed_total",
			Help:      "Template install outcomes, by domain and outcome.",
			Namespace: NAMESPACE,
		},
		[]string{"domain", "outcome"},
	)
	DecodeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "decode_errors_total",
			Help:      "Errors raised while framing or decoding, by kind and severity.",
			Namespace: NAMESPACE,
		},
		[]string{"kind", "severity"},
	)
	MessageDecodeTime = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "message_decode_time_us",
			Help:       "Wall time spent in a single Collect call.",
			Namespace:  NAMESPACE,
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"protocol"},
	)
)

func init() {
	prometheus.MustRegister(
		MessagesFramed,
		SetsProcessed,
		RecordsDecoded,
		TemplatesInstalled,
		DecodeErrors,
		MessageDecodeTime,
	)
}
