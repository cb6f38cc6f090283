package content

import (
	"encoding/binary"

	log "github.com/sirupsen/logrus"

	"github.com/flowkit/ipfixdecode/ferr"
	"github.com/flowkit/ipfixdecode/ietemplate"
)

const enterpriseBit = 1 << 15

// HandleTemplateSet processes the payload of an ordinary (non-options)
// template set (set id 2): zero or more back-to-back template records,
// each installed into the registry under (domain, template_id) following
// the registry's install/replace/duplicate rules.
//
// A structural error in one template record is recoverable: the rest of
// the set is abandoned, but prior sibling records in the same set remain
// installed.
func (h *Handler) HandleTemplateSet(domain uint32, buf []byte) *ferr.Error {
	offset := 0
	for offset+4 <= len(buf) {
		tmpl, templateID, consumed, err := h.parseTemplateRecord(buf[offset:], 0)
		if err != nil {
			return err.WithSetOffset(offset)
		}
		h.install(domain, templateID, tmpl)
		offset += consumed
	}
	return nil
}

// HandleOptionsTemplateSet processes the payload of an options-template
// set (set id 3): records additionally carry a scope_field_count before
// the field specifiers, whose leading fields are scope fields. Scope
// fields are otherwise decoded exactly like ordinary fields.
func (h *Handler) HandleOptionsTemplateSet(domain uint32, buf []byte) *ferr.Error {
	offset := 0
	for offset+6 <= len(buf) {
		scopeCount := int(binary.BigEndian.Uint16(buf[offset+4 : offset+6]))
		tmpl, templateID, consumed, err := h.parseTemplateRecord(buf[offset:], scopeCount)
		if err != nil {
			return err.WithSetOffset(offset)
		}
		h.install(domain, templateID, tmpl)
		offset += consumed
	}
	return nil
}

// install applies the registry's overwrite/duplicate-detection outcome
// and invalidates any cached placement match for a replaced template.
func (h *Handler) install(domain uint32, templateID uint16, tmpl *ietemplate.Template) {
	outcome, old := h.registry.Install(domain, templateID, tmpl)
	switch outcome {
	case ietemplate.Replaced:
		log.WithFields(log.Fields{"domain": domain, "template_id": templateID}).
			Warn("content: template redefinition differs from previous definition, replacing")
		h.invalidate(old)
	case ietemplate.Unchanged, ietemplate.Installed:
	}
	if h.OnTemplateInstall != nil {
		h.OnTemplateInstall(domain, templateID, outcome)
	}
}

// parseTemplateRecord reads one template record from the start of buf. A
// record's on-wire header is template_id:u16, field_count:u16, and — for
// an options template, signaled by scopeCount > 0 having already been
// read by the caller — a scope_field_count:u16 the caller has stripped
// out of field_count accounting by passing it in directly; this function
// only needs to skip past those two extra octets, since it receives
// scopeCount already decoded.
//
// Returns the built template, its template id, and the number of bytes
// this record occupied (header plus every field specifier), so the
// caller can advance to the next record in the set.
func (h *Handler) parseTemplateRecord(buf []byte, scopeCount int) (*ietemplate.Template, uint16, int, *ferr.Error) {
	headerLen := 4
	if scopeCount > 0 {
		headerLen = 6
	}
	if len(buf) < headerLen {
		return nil, 0, 0, ferr.New(ferr.FormatError, ferr.Recoverable, 0, "template record header truncated")
	}

	templateID := binary.BigEndian.Uint16(buf[0:2])
	fieldCount := int(binary.BigEndian.Uint16(buf[2:4]))

	tmpl := ietemplate.NewBuilder()
	tmpl.ScopeCount = scopeCount

	offset := headerLen
	for i := 0; i < fieldCount; i++ {
		if offset+4 > len(buf) {
			return nil, 0, 0, ferr.New(ferr.LongFieldSpec, ferr.Recoverable, offset,
				"field specifier runs past template record")
		}

		rawID := binary.BigEndian.Uint16(buf[offset : offset+2])
		length := binary.BigEndian.Uint16(buf[offset+2 : offset+4])
		offset += 4

		var pen uint32
		ieNumber := rawID
		if rawID&enterpriseBit != 0 {
			if offset+4 > len(buf) {
				return nil, 0, 0, ferr.New(ferr.LongFieldSpec, ferr.Recoverable, offset,
					"enterprise number runs past template record")
			}
			pen = binary.BigEndian.Uint32(buf[offset : offset+4])
			ieNumber = rawID &^ enterpriseBit
			offset += 4
		}

		ie := h.model.LookupOrUnknown(pen, ieNumber, length)
		tmpl.Add(ie)
	}

	return tmpl, templateID, offset, nil
}
