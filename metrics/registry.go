package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/flowkit/ipfixdecode/content"
	"github.com/flowkit/ipfixdecode/ietemplate"
)

// InstrumentHandler wires h's template-install, record-decode and set-end
// hooks to this package's counters. The teacher's PromTemplateRegistry wraps an
// interface-typed template registry to intercept AddTemplate calls;
// content.Handler exposes concrete OnTemplateInstall/OnRecordDecoded hook
// fields instead of an interface to wrap, so instrumentation attaches
// directly to those hooks rather than through a wrapping registry type.
func InstrumentHandler(h *content.Handler, protocol string) {
	h.OnTemplateInstall = func(domain uint32, templateID uint16, outcome ietemplate.Outcome) {
		TemplatesInstalled.With(prometheus.Labels{
			"domain":  strconv.FormatUint(uint64(domain), 10),
			"outcome": outcomeLabel(outcome),
		}).Inc()
		_ = templateID
	}
	h.OnRecordDecoded = func(domain uint32, setID uint16) {
		RecordDecoded(domain, setID)
	}
	h.OnSetEnd = func(_ uint32, setID uint16) {
		kind := "data"
		switch {
		case protocol == "ipfix" && setID == 2, protocol == "netflowv9" && setID == 0:
			kind = "template"
		case protocol == "ipfix" && setID == 3, protocol == "netflowv9" && setID == 1:
			kind = "options_template"
		}
		RecordSet(protocol, kind)
	}
}

func outcomeLabel(o ietemplate.Outcome) string {
	switch o {
	case ietemplate.Installed:
		return "installed"
	case ietemplate.Unchanged:
		return "unchanged"
	case ietemplate.Replaced:
		return "replaced"
	default:
		return "unknown"
	}
}
