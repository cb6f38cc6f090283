package streamparser

import (
	"encoding/binary"
	"io"

	"github.com/flowkit/ipfixdecode/content"
	"github.com/flowkit/ipfixdecode/ferr"
)

const (
	netflowV9HeaderLen = 20

	netflowVersion9        = 9
	netflowV9TemplateSetID = 0
	netflowV9OptionsSetID  = 1
)

// ParseNetFlowV9 reads messages from r until EOF. NetFlow v9's header
// carries a count instead of a byte length, read here as the number of
// flowsets in the message; sets are framed
// exactly like IPFIX's, just with different reserved template/options set
// ids (0 and 1, versus IPFIX's 2 and 3).
//
// base_time reports the exporter's uptime in milliseconds at export time,
// i.e. sysUptime from the NetFlow v9 header; callers that need wall-clock
// flow timestamps combine it with unixSeconds themselves, since this
// package carries no notion of a destination for that pair beyond what
// the caller's placement templates declare.
func ParseNetFlowV9(r io.Reader, h *content.Handler, unhandled content.UnhandledDataSet) (baseTimeMillis uint32, parseErr *ferr.Error) {
	for {
		header := make([]byte, 2)
		n, err := io.ReadFull(r, header)
		if err == io.EOF && n == 0 {
			return baseTimeMillis, nil
		}
		if err != nil {
			return baseTimeMillis, ferr.Wrap(ferr.ShortHeader, ferr.Fatal, 0, err)
		}
		version := binary.BigEndian.Uint16(header)
		if version != netflowVersion9 {
			return baseTimeMillis, ferr.New(ferr.MessageVersionNumber, ferr.Fatal, 0,
				"NetFlow v9 message header must carry version 9")
		}

		rest := make([]byte, netflowV9HeaderLen-2)
		if _, err := io.ReadFull(r, rest); err != nil {
			return baseTimeMillis, ferr.Wrap(ferr.ShortHeader, ferr.Fatal, 2, err)
		}

		count := binary.BigEndian.Uint16(rest[0:2])
		sysUptime := binary.BigEndian.Uint32(rest[2:6])
		domain := binary.BigEndian.Uint32(rest[14:18])
		baseTimeMillis = sysUptime

		body, err := readNetFlowV9Body(r, int(count))
		if err != nil {
			return baseTimeMillis, ferr.Wrap(ferr.ShortBody, ferr.Fatal, netflowV9HeaderLen, err)
		}

		if h.OnMessageStart != nil {
			h.OnMessageStart(domain)
		}
		setIDs := setIDMapping{template: netflowV9TemplateSetID, options: netflowV9OptionsSetID}
		ferrErr := dispatchSets(h, domain, body, setIDs, unhandled)
		if h.OnMessageEnd != nil {
			h.OnMessageEnd(domain)
		}
		if ferrErr != nil {
			return baseTimeMillis, ferrErr
		}
	}
}

// readNetFlowV9Body reads sets until count flow-set entries have been
// seen (NetFlow v9 has no overall message length field, unlike IPFIX; the
// header's count field is taken as the number of sets this message
// contains). Since a single read
// call can't know set boundaries ahead of time, it reads one set header
// at a time and extends the buffer by that set's declared length.
func readNetFlowV9Body(r io.Reader, count int) ([]byte, error) {
	var body []byte
	for i := 0; i < count; i++ {
		setHeader := make([]byte, setHeaderLen)
		if _, err := io.ReadFull(r, setHeader); err != nil {
			if err == io.EOF && i > 0 {
				break
			}
			return nil, err
		}
		setLength := int(binary.BigEndian.Uint16(setHeader[2:4]))
		if setLength < setHeaderLen {
			return append(body, setHeader...), nil
		}
		payload := make([]byte, setLength-setHeaderLen)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, err
		}
		body = append(body, setHeader...)
		body = append(body, payload...)
	}
	return body, nil
}
