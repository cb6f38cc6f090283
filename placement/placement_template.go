package placement

import (
	"fmt"

	"github.com/flowkit/ipfixdecode/ietemplate"
	"github.com/flowkit/ipfixdecode/ipfixinfo"
)

// Entry pairs one InfoElement with the caller-owned Destination its decoded
// value is written to. Order matches registration order, not wire order;
// the decode-plan compiler is what reconciles the two.
type Entry struct {
	IE   *ipfixinfo.InfoElement
	Dest *Destination
}

// PlacementTemplate is a caller-declared "I want these fields, at these
// addresses" wish list: an ordered InfoElement -> Destination mapping
// built up by repeated Register calls before a pipeline starts receiving
// data sets. It is immutable once handed to a decode-plan compilation and
// safe to reuse (and recompile against) many different wire templates.
type PlacementTemplate struct {
	entries []Entry
	byKey   map[uint64]*Destination
}

// NewTemplate returns an empty PlacementTemplate.
func NewTemplate() *PlacementTemplate {
	return &PlacementTemplate{byKey: make(map[uint64]*Destination)}
}

// Register declares that decoded values for ie should be written into
// *dest, a pointer to a caller-owned location whose Go type must agree
// with ie's IEType. It is an error to register the same information
// element twice.
func (p *PlacementTemplate) Register(ie *ipfixinfo.InfoElement, dest any) error {
	if ie == nil {
		return fmt.Errorf("placement: nil information element")
	}
	if _, exists := p.byKey[ie.Key()]; exists {
		return fmt.Errorf("placement: %s already registered", ie)
	}
	d, err := newDestination(ie.IEType(), dest)
	if err != nil {
		return err
	}
	p.entries = append(p.entries, Entry{IE: ie, Dest: d})
	p.byKey[ie.Key()] = d
	return nil
}

// Entries returns the registered (InfoElement, Destination) pairs in
// registration order. Callers must not mutate the returned slice.
func (p *PlacementTemplate) Entries() []Entry { return p.entries }

// Lookup returns the destination registered for ie, if any. Matching is by
// pen+number (ie.Key()), not pointer identity, since a wire template field
// and a placement field may resolve to distinct *InfoElement instances of
// reduced length that nonetheless name the same element. The decode-plan
// compiler uses this to decide, per wire field, whether to emit a skip or
// a transfer decision.
func (p *PlacementTemplate) Lookup(ie *ipfixinfo.InfoElement) (*Destination, bool) {
	d, ok := p.byKey[ie.Key()]
	return d, ok
}

// IsMatch scores wire against the placement: it returns the number of
// wire fields for which the placement has a registered destination, and
// appends every wire field that has none to unmatched.
// A content handler uses the score to pick, among several registered
// placements, the first (in registration order) whose score is nonzero.
func (p *PlacementTemplate) IsMatch(wire *ietemplate.Template) (matched int, unmatched []*ipfixinfo.InfoElement) {
	for _, f := range wire.Fields() {
		if _, ok := p.Lookup(f); ok {
			matched++
		} else {
			unmatched = append(unmatched, f)
		}
	}
	return matched, unmatched
}
