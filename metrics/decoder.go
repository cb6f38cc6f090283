package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/flowkit/ipfixdecode/ferr"
)

// InstrumentCollect wraps a single Collect call, observing its wall time
// under protocol and, on a non-nil result, counting the error by kind and
// severity.
func InstrumentCollect(protocol string, collect func() *ferr.Error) *ferr.Error {
	start := TimeMeasureNow()
	err := collect()
	start.ObserveMicros(MessageDecodeTime.With(prometheus.Labels{"protocol": protocol}))

	if err != nil {
		DecodeErrors.With(prometheus.Labels{
			"kind":     err.Kind.String(),
			"severity": err.Severity.String(),
		}).Inc()
		return err
	}
	MessagesFramed.With(prometheus.Labels{"protocol": protocol}).Inc()
	return nil
}

// RecordSet increments the set-kind counter for one dispatched set.
func RecordSet(protocol, kind string) {
	SetsProcessed.With(prometheus.Labels{"protocol": protocol, "kind": kind}).Inc()
}

// RecordDecoded increments the per-(domain, set id) record counter; wired
// to content.Handler.OnRecordDecoded.
func RecordDecoded(domain uint32, setID uint16) {
	RecordsDecoded.With(prometheus.Labels{
		"domain": strconv.FormatUint(uint64(domain), 10),
		"set_id": strconv.Itoa(int(setID)),
	}).Inc()
}
