// Package content implements the content handler a stream parser drives:
// it turns template-set and data-set payloads into registry updates and
// per-record placement callbacks, dispatching each set to the wire
// template it declares instead of decoding against a single hard-coded
// flow message shape.
package content

import (
	log "github.com/sirupsen/logrus"

	"github.com/flowkit/ipfixdecode/decodeplan"
	"github.com/flowkit/ipfixdecode/ferr"
	"github.com/flowkit/ipfixdecode/ietemplate"
	"github.com/flowkit/ipfixdecode/ipfixinfo"
	"github.com/flowkit/ipfixdecode/placement"
)

// registration pairs a caller-declared placement template with the
// collector that should be driven when a data set matches it.
type registration struct {
	template  *placement.PlacementTemplate
	collector placement.Collector
}

// matchedPlan caches the outcome of matching a wire template against the
// registered placements, keyed by wire template pointer.
type matchedPlan struct {
	reg  registration
	plan *decodeplan.Plan
}

// Handler is one pipeline's content handler: it owns the wire-template
// registry, the caller's registered placements, and the warn-once
// bookkeeping used to avoid repeating the same log line for every record
// of an unmatched or partially-matched template. It is not safe for
// concurrent use by more than one stream parser.
type Handler struct {
	model    *ipfixinfo.Model
	registry *ietemplate.Registry

	registrations []registration
	matchCache    map[*ietemplate.Template]*matchedPlan

	unmatchedTemplateIDs map[uint64]bool
	partialWarned        map[*ietemplate.Template]bool

	// OnTemplateInstall, if set, is called whenever a template set record
	// is installed into the registry, naming the outcome. Left nil by
	// default; the metrics package wires it to per-domain install counters.
	OnTemplateInstall func(domain uint32, templateID uint16, outcome ietemplate.Outcome)
	// OnRecordDecoded, if set, is called once per record successfully
	// run through a compiled decode plan.
	OnRecordDecoded func(domain uint32, setID uint16)

	// OnMessageStart and OnMessageEnd, if set, bracket the processing of
	// one transport message: a stream parser calls OnMessageStart once it
	// has read the message header, and OnMessageEnd once every set in the
	// message has been dispatched (whether or not dispatch succeeded).
	OnMessageStart func(domain uint32)
	OnMessageEnd   func(domain uint32)
	// OnSetStart and OnSetEnd, if set, bracket the dispatch of a single
	// set within a message, in wire order. setID is the set's own id
	// (for IPFIX: 2 for template sets, 3 for options-template sets, >=256
	// for data sets carrying that set's template id; NetFlow v9 uses 0 and
	// 1 for its template and options-template sets, and NetFlow v5 reports
	// its synthetic set id 5).
	OnSetStart func(domain uint32, setID uint16)
	OnSetEnd   func(domain uint32, setID uint16)
}

// NewHandler creates a content handler bound to model (used to resolve
// field specifiers, including unknowns) and an empty per-pipeline wire
// template registry.
func NewHandler(model *ipfixinfo.Model) *Handler {
	return &Handler{
		model:                model,
		registry:             ietemplate.NewRegistry(),
		matchCache:           make(map[*ietemplate.Template]*matchedPlan),
		unmatchedTemplateIDs: make(map[uint64]bool),
		partialWarned:        make(map[*ietemplate.Template]bool),
	}
}

// Registry exposes the handler's wire-template registry, mainly so an
// unhandled_data_set callback can install a template on the fly.
func (h *Handler) Registry() *ietemplate.Registry { return h.registry }

// RegisterPlacement declares that records decoded against tmpl should be
// delivered to collector. Multiple placements may be registered; the
// first one that matches a data set's wire template wins.
func (h *Handler) RegisterPlacement(tmpl *placement.PlacementTemplate, collector placement.Collector) {
	h.registrations = append(h.registrations, registration{template: tmpl, collector: collector})
}

// invalidate drops any cached match referencing tmpl, called when the
// wire-template registry replaces a template definition.
func (h *Handler) invalidate(tmpl *ietemplate.Template) {
	delete(h.matchCache, tmpl)
}

// match resolves which registered placement (and, by extension, which
// collector and compiled plan) applies to wire, consulting and populating
// the match cache. It returns ok=false if no registered placement shares
// any field with wire.
func (h *Handler) match(wire *ietemplate.Template) (*matchedPlan, bool, *ferr.Error) {
	if cached, ok := h.matchCache[wire]; ok {
		return cached, true, nil
	}

	var best registration
	var bestMatched int
	var bestUnmatched []*ipfixinfo.InfoElement
	found := false

	for _, reg := range h.registrations {
		matched, unmatched := reg.template.IsMatch(wire)
		if matched > 0 {
			best, bestMatched, bestUnmatched, found = reg, matched, unmatched, true
			break
		}
	}

	if !found {
		return nil, false, nil
	}

	if bestMatched < wire.Len() && !h.partialWarned[wire] {
		h.partialWarned[wire] = true
		log.WithField("unmatched", bestUnmatched).Warn("content: placement covers only part of the wire template")
	}

	plan, err := decodeplan.Compile(best.template, wire)
	if err != nil {
		return nil, false, ferr.Wrap(ferr.InconsistentState, ferr.Recoverable, 0, err)
	}

	mp := &matchedPlan{reg: best, plan: plan}
	h.matchCache[wire] = mp
	return mp, true, nil
}
