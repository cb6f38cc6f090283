// Package ietemplate implements the wire-template data model: an ordered
// sequence of InfoElements describing a data set's layout (Template), and
// a registry keyed by (observation domain, template id) that tracks which
// templates are currently live for a pipeline.
package ietemplate

import "github.com/flowkit/ipfixdecode/ipfixinfo"

const varLen = ipfixinfo.VarLen

// Template is an ordered, immutable-once-sealed sequence of InfoElements.
// Equality is element-wise by pointer identity against the canonical
// InfoModel, plus an equal ScopeCount.
type Template struct {
	fields []*ipfixinfo.InfoElement
	minlen int

	// ScopeCount is nonzero for options templates: the number of leading
	// fields that are scope fields. Scope fields are otherwise ordinary
	// template fields for matching and decode-plan purposes.
	ScopeCount int
}

// NewBuilder returns an empty Template under construction; call Add for
// each field specifier encountered while parsing a template record, then
// use the returned Template once the record is complete.
func NewBuilder() *Template {
	return &Template{}
}

// Add appends a field to the template, updating the cached minimum length:
// VARLEN fields contribute 1 (the length-prefix octet), fixed fields
// contribute their encoded length.
func (t *Template) Add(ie *ipfixinfo.InfoElement) {
	t.fields = append(t.fields, ie)
	if ie.Length() == varLen {
		t.minlen++
	} else {
		t.minlen += int(ie.Length())
	}
}

// Fields returns the ordered field list. Callers must not mutate the
// returned slice.
func (t *Template) Fields() []*ipfixinfo.InfoElement { return t.fields }

// Len returns the number of fields in the template.
func (t *Template) Len() int { return len(t.fields) }

// MinLen is the sum over all fields of (VARLEN ? 1 : length): the minimum
// number of bytes a single record can occupy on the wire.
func (t *Template) MinLen() int { return t.minlen }

// Contains reports whether ie (by pen+number) appears anywhere in t.
func (t *Template) Contains(ie *ipfixinfo.InfoElement) bool {
	return t.Find(ie) >= 0
}

// Find returns the index of the first field matching ie by pen+number, or
// -1 if none matches.
func (t *Template) Find(ie *ipfixinfo.InfoElement) int {
	for i, f := range t.fields {
		if f.Matches(ie) {
			return i
		}
	}
	return -1
}

// Equal reports element-wise pointer-identity equality with rhs, with
// equal ScopeCount.
func (t *Template) Equal(rhs *Template) bool {
	if rhs == nil || len(t.fields) != len(rhs.fields) {
		return false
	}
	for i := range t.fields {
		if t.fields[i] != rhs.fields[i] {
			return false
		}
	}
	return t.ScopeCount == rhs.ScopeCount
}
