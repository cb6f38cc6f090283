package content

import (
	log "github.com/sirupsen/logrus"

	"github.com/flowkit/ipfixdecode/ferr"
	"github.com/flowkit/ipfixdecode/ietemplate"
)

// UnhandledDataSet is the handler-wide fallback invoked when no wire
// template exists for a data set's set id. It may install a template into
// h.Registry() on the fly and return again=true to request the same bytes
// be retried once against the registry's new state.
type UnhandledDataSet func(domain uint32, setID uint16, data []byte) (again bool, err error)

// HandleDataSet processes one data set's payload against whatever wire
// template is registered for (domain, setID), driving zero or more
// records through the matched placement's collector.
//
// unhandled is consulted only when no wire template is registered; pass
// nil to fall through to each registered collector's own UnhandledDataSet,
// and finally to the warn-once-per-id skip behavior if none of them claim
// the set either.
func (h *Handler) HandleDataSet(domain uint32, setID uint16, buf []byte, unhandled UnhandledDataSet) *ferr.Error {
	wire := h.registry.Lookup(domain, setID)
	if wire == nil {
		return h.handleUnknownTemplate(domain, setID, buf, unhandled)
	}

	mp, ok, err := h.match(wire)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	return h.runRecords(mp, wire, buf, domain, setID)
}

// handleUnknownTemplate is reached when no wire template is registered
// for (domain, setID). The handler-level unhandled callback, if given,
// gets first refusal; if it is nil or declines, each registered collector's
// own UnhandledDataSet is offered the set in registration order, since any of
// them may recognize the set id even though none of their placements
// could be matched. The first one to request a retry (or to error) wins;
// if none do, the set is logged and dropped.
func (h *Handler) handleUnknownTemplate(domain uint32, setID uint16, buf []byte, unhandled UnhandledDataSet) *ferr.Error {
	if unhandled != nil {
		again, err := unhandled(domain, setID, buf)
		if err != nil {
			return ferr.Wrap(ferr.InconsistentState, ferr.Recoverable, 0, err)
		}
		if again {
			return h.retryAfterUnhandled(domain, setID, buf)
		}
	}

	for _, reg := range h.registrations {
		again, err := reg.collector.UnhandledDataSet(domain, setID, buf)
		if err != nil {
			return ferr.Wrap(ferr.InconsistentState, ferr.Recoverable, 0, err)
		}
		if again {
			return h.retryAfterUnhandled(domain, setID, buf)
		}
	}

	key := ietemplate.Key(domain, setID)
	if !h.unmatchedTemplateIDs[key] {
		h.unmatchedTemplateIDs[key] = true
		log.WithFields(log.Fields{"domain": domain, "set_id": setID}).
			Warn("content: data set references unknown template id, skipping")
	}
	return nil
}

// retryAfterUnhandled re-attempts a data set once, after some
// UnhandledDataSet callback reported it may have installed a template
// that now resolves the lookup.
func (h *Handler) retryAfterUnhandled(domain uint32, setID uint16, buf []byte) *ferr.Error {
	wire := h.registry.Lookup(domain, setID)
	if wire == nil {
		return nil
	}
	mp, ok, err := h.match(wire)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return h.runRecords(mp, wire, buf, domain, setID)
}

// runRecords walks buf record by record, bracketing each with the
// matched collector's StartPlacement/EndPlacement pair.
func (h *Handler) runRecords(mp *matchedPlan, wire *ietemplate.Template, buf []byte, domain uint32, setID uint16) *ferr.Error {
	cur := 0
	for cur < len(buf) && len(buf)-cur >= wire.MinLen() {
		remaining := len(buf) - cur

		mp.reg.collector.StartPlacement(mp.reg.template)
		consumed, err := mp.plan.Execute(buf[cur:], remaining)
		mp.reg.collector.EndPlacement(mp.reg.template)

		if err != nil {
			return err.WithSetOffset(cur)
		}
		if h.OnRecordDecoded != nil {
			h.OnRecordDecoded(domain, setID)
		}
		cur += consumed
	}
	return nil
}
