package ipfixinfo

import (
	"fmt"
	"sync"
)

// Model is the process-wide (or test-scoped) canonical registry mapping
// (pen, number) to InfoElement, plus a by-name index. It grows
// monotonically; entries are never removed. Reads and the add-unknown path
// are serialized the same way state.BasicTemplateSystem guards its
// template map: one RWMutex, readers take RLock, mutators take Lock.
type Model struct {
	mu      sync.RWMutex
	byKey   map[uint64]*InfoElement
	byName  map[string]*InfoElement
	reduced map[uint64]map[uint16]*InfoElement // canonical key -> length -> derived IE
}

// NewModel creates an empty registry. Use LoadDefaultRegistry to populate
// it with the bundled IANA information elements, or Add to insert elements
// one at a time (e.g. from a custom enterprise registry).
func NewModel() *Model {
	return &Model{
		byKey:   make(map[uint64]*InfoElement),
		byName:  make(map[string]*InfoElement),
		reduced: make(map[uint64]map[uint16]*InfoElement),
	}
}

// Add installs a canonical InfoElement, indexed by (pen, number) and by
// name. It is idempotent for identical redefinitions and overwrites the
// index otherwise (used by registry loading, not by the decode hot path).
func (m *Model) Add(ie *InfoElement) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byKey[ie.Key()] = ie
	m.byName[ie.name] = ie
}

// Lookup returns the canonical InfoElement for (pen, number), adjusted to
// the given wire length. If the canonical element's native length already
// equals len, the canonical element itself is returned; otherwise a
// length-adjusted sibling is created on first use and cached, so repeated
// lookups with the same (pen, number, len) return the identical pointer.
//
// Lookup does not install unknown elements; use LookupOrUnknown for the
// template-parsing path that must keep going on unrecognized IEs.
func (m *Model) Lookup(pen uint32, number uint16, length uint16) *InfoElement {
	key := keyFor(pen, number)

	m.mu.RLock()
	canonical, ok := m.byKey[key]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	if canonical.length == length {
		return canonical
	}
	return m.forLen(canonical, key, length)
}

func (m *Model) forLen(canonical *InfoElement, key uint64, length uint16) *InfoElement {
	m.mu.RLock()
	if siblings, ok := m.reduced[key]; ok {
		if ie, ok := siblings[length]; ok {
			m.mu.RUnlock()
			return ie
		}
	}
	m.mu.RUnlock()

	derived := &InfoElement{
		name: canonical.name, pen: canonical.pen, number: canonical.number,
		ietype: canonical.ietype, length: length, canonical: canonical,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	siblings, ok := m.reduced[key]
	if !ok {
		siblings = make(map[uint16]*InfoElement)
		m.reduced[key] = siblings
	}
	if existing, ok := siblings[length]; ok {
		return existing
	}
	siblings[length] = derived
	return derived
}

// LookupByName returns the canonical InfoElement registered under name, or
// nil.
func (m *Model) LookupByName(name string) *InfoElement {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byName[name]
}

// AddUnknown synthesizes and permanently installs an octetArray placeholder
// for an (pen, number) pair not present in the registry, so that template
// parsing can continue across unrecognized enterprise IEs. The
// installation is permanent for the Model's lifetime — a later call with
// the same (pen, number) and a different length produces a length-adjusted
// sibling of the same synthesized canonical element, not a second
// canonical entry.
func (m *Model) AddUnknown(pen uint32, number uint16, length uint16) *InfoElement {
	key := keyFor(pen, number)

	m.mu.RLock()
	canonical, ok := m.byKey[key]
	m.mu.RUnlock()
	if ok {
		if canonical.length == length {
			return canonical
		}
		return m.forLen(canonical, key, length)
	}

	name := fmt.Sprintf("_unknown_%d_%d", pen, number)
	canonical = &InfoElement{name: name, pen: pen, number: number, ietype: OctetArray, length: length}

	m.mu.Lock()
	if existing, ok := m.byKey[key]; ok {
		m.mu.Unlock()
		if existing.length == length {
			return existing
		}
		return m.forLen(existing, key, length)
	}
	m.byKey[key] = canonical
	m.byName[name] = canonical
	m.mu.Unlock()
	return canonical
}

// LookupOrUnknown is the template-parsing entry point: it returns the
// canonical (length-adjusted) InfoElement for (pen, number, length),
// synthesizing and installing an unknown octetArray placeholder if the pair
// is not registered.
func (m *Model) LookupOrUnknown(pen uint32, number uint16, length uint16) *InfoElement {
	if ie := m.Lookup(pen, number, length); ie != nil {
		return ie
	}
	return m.AddUnknown(pen, number, length)
}
