// Package streamparser implements byte-level framing of IPFIX, NetFlow v9,
// and NetFlow v5 messages and sets, each driving the same content.Handler
// per record. Unlike a decoder that assembles an intermediate flow
// message struct, it writes straight into caller-registered destinations
// as it walks each set.
package streamparser

import (
	"encoding/binary"
	"io"

	"github.com/flowkit/ipfixdecode/content"
	"github.com/flowkit/ipfixdecode/ferr"
)

const (
	ipfixHeaderLen = 16
	setHeaderLen   = 4

	ipfixVersion           = 10
	ipfixTemplateSetID     = 2
	ipfixOptionsTemplateID = 3
)

// ParseIPFIX reads messages from r until EOF, framing each one and
// dispatching its sets to h. It returns on the first fatal error — the
// parser must not be reused after one — or cleanly on a zero-byte read at
// a message boundary.
func ParseIPFIX(r io.Reader, h *content.Handler, unhandled content.UnhandledDataSet) *ferr.Error {
	for {
		header := make([]byte, ipfixHeaderLen)
		n, err := io.ReadFull(r, header)
		if err == io.EOF && n == 0 {
			return nil
		}
		if err != nil {
			return ferr.Wrap(ferr.ShortHeader, ferr.Fatal, 0, err)
		}

		version := binary.BigEndian.Uint16(header[0:2])
		if version != ipfixVersion {
			return ferr.New(ferr.MessageVersionNumber, ferr.Fatal, 0,
				"IPFIX message header must carry version 10")
		}

		length := binary.BigEndian.Uint16(header[2:4])
		if length < ipfixHeaderLen {
			return ferr.New(ferr.ShortHeader, ferr.Fatal, 0, "IPFIX message length shorter than its own header")
		}
		exportTime := binary.BigEndian.Uint32(header[4:8])
		sequence := binary.BigEndian.Uint32(header[8:12])
		domain := binary.BigEndian.Uint32(header[12:16])
		_ = exportTime
		_ = sequence

		body := make([]byte, int(length)-ipfixHeaderLen)
		if _, err := io.ReadFull(r, body); err != nil {
			return ferr.Wrap(ferr.ShortBody, ferr.Fatal, ipfixHeaderLen, err)
		}

		if h.OnMessageStart != nil {
			h.OnMessageStart(domain)
		}
		setIDs := setIDMapping{template: ipfixTemplateSetID, options: ipfixOptionsTemplateID}
		ferrErr := dispatchSets(h, domain, body, setIDs, unhandled)
		if h.OnMessageEnd != nil {
			h.OnMessageEnd(domain)
		}
		if ferrErr != nil {
			return ferrErr
		}
	}
}

// setIDMapping tells dispatchSets which reserved set ids mean "template
// set" and "options template set"; IPFIX and NetFlow v9 assign these
// differently.
type setIDMapping struct {
	template int32
	options  int32
}

// dispatchSets walks the sets within a single message body, which is
// framed identically between IPFIX and NetFlow v9: iterate sets while at
// least one set header's worth of bytes remains. Only the reserved
// template/options set id values differ between the two.
func dispatchSets(h *content.Handler, domain uint32, body []byte, setIDs setIDMapping, unhandled content.UnhandledDataSet) *ferr.Error {
	offset := 0
	for len(body)-offset >= setHeaderLen {
		setID := binary.BigEndian.Uint16(body[offset : offset+2])
		setLength := binary.BigEndian.Uint16(body[offset+2 : offset+4])

		if int(setLength) < setHeaderLen || offset+int(setLength) > len(body) {
			return ferr.New(ferr.LongSet, ferr.Fatal, offset, "set length overruns message body")
		}

		payload := body[offset+setHeaderLen : offset+int(setLength)]

		if h.OnSetStart != nil {
			h.OnSetStart(domain, setID)
		}
		var ferrErr *ferr.Error
		switch int32(setID) {
		case setIDs.template:
			ferrErr = h.HandleTemplateSet(domain, payload)
		case setIDs.options:
			ferrErr = h.HandleOptionsTemplateSet(domain, payload)
		default:
			ferrErr = h.HandleDataSet(domain, setID, payload, unhandled)
		}
		if h.OnSetEnd != nil {
			h.OnSetEnd(domain, setID)
		}
		if ferrErr != nil && ferrErr.Fatal() {
			return ferrErr
		}

		offset += int(setLength)
	}
	return nil
}
