package streamparser

import (
	"encoding/binary"
	"io"

	"github.com/flowkit/ipfixdecode/content"
	"github.com/flowkit/ipfixdecode/ferr"
	"github.com/flowkit/ipfixdecode/ietemplate"
	"github.com/flowkit/ipfixdecode/ipfixinfo"
)

const (
	netflowV5HeaderLen = 24
	netflowV5RecordLen = 48
	netflowVersion5    = 5

	// NetFlowV5Domain and NetFlowV5SetID are the synthetic (observation
	// domain, set id) pair under which NetFlow v5's single fixed record
	// layout is installed, since v5 carries no observation domain field
	// and has no template sets to assign a real set id (grounded on
	// decoders/netflowlegacy/packet.go's fixed RecordsNetFlowV5 struct;
	// v5 has no template system at all, so one is synthesized here to
	// reuse the same content.Handler data-set path as IPFIX/v9).
	NetFlowV5Domain = 0
	NetFlowV5SetID  = 5
)

// netFlowV5Fields names, in wire order, the IANA information elements
// RecordsNetFlowV5's fixed 48-octet layout corresponds to. srcMask/dstMask
// map to the IPv4 prefix-length elements; the pad1 (one octet) and pad2
// (two octets) fillers have no element of their own and are carried as
// paddingOctets siblings of those lengths.
var netFlowV5Fields = []struct {
	name   string
	length uint16
}{
	{"sourceIPv4Address", 4},
	{"destinationIPv4Address", 4},
	{"ipNextHopIPv4Address", 4},
	{"ingressInterface", 2},
	{"egressInterface", 2},
	{"packetDeltaCount", 4},
	{"octetDeltaCount", 4},
	{"flowStartSysUpTime", 4},
	{"flowEndSysUpTime", 4},
	{"sourceTransportPort", 2},
	{"destinationTransportPort", 2},
	{"paddingOctets", 1}, // pad1
	{"tcpControlBits", 1},
	{"protocolIdentifier", 1},
	{"ipClassOfService", 1},
	{"bgpSourceAsNumber", 2},
	{"bgpDestinationAsNumber", 2},
	{"sourceIPv4PrefixLength", 1},
	{"destinationIPv4PrefixLength", 1},
	{"paddingOctets", 2}, // pad2
}

// buildNetFlowV5Template constructs the static wire template for NetFlow
// v5's fixed record layout, resolving every field through model so its
// InfoElement pointers share identity with anything else resolved from
// the same model (required for PlacementTemplate matching).
func buildNetFlowV5Template(model *ipfixinfo.Model) *ietemplate.Template {
	tmpl := ietemplate.NewBuilder()
	for _, f := range netFlowV5Fields {
		canonical := model.LookupByName(f.name)
		ie := model.Lookup(canonical.PEN(), canonical.Number(), f.length)
		tmpl.Add(ie)
	}
	return tmpl
}

// ParseNetFlowV5 reads messages from r until EOF. Unlike IPFIX and
// NetFlow v9, v5 has no template sets: every record has the fixed 48-byte
// layout built by buildNetFlowV5Template, installed once into h's
// registry under (NetFlowV5Domain, NetFlowV5SetID) so the rest of the
// pipeline (placement matching, decode-plan compilation and execution)
// is unchanged from the templated protocols.
func ParseNetFlowV5(r io.Reader, h *content.Handler, model *ipfixinfo.Model) *ferr.Error {
	if h.Registry().Lookup(NetFlowV5Domain, NetFlowV5SetID) == nil {
		h.Registry().Install(NetFlowV5Domain, NetFlowV5SetID, buildNetFlowV5Template(model))
	}

	for {
		header := make([]byte, 2)
		n, err := io.ReadFull(r, header)
		if err == io.EOF && n == 0 {
			return nil
		}
		if err != nil {
			return ferr.Wrap(ferr.ShortHeader, ferr.Fatal, 0, err)
		}
		version := binary.BigEndian.Uint16(header)
		if version != netflowVersion5 {
			return ferr.New(ferr.MessageVersionNumber, ferr.Fatal, 0,
				"NetFlow v5 message header must carry version 5")
		}

		rest := make([]byte, netflowV5HeaderLen-2)
		if _, err := io.ReadFull(r, rest); err != nil {
			return ferr.Wrap(ferr.ShortHeader, ferr.Fatal, 2, err)
		}
		count := int(binary.BigEndian.Uint16(rest[0:2]))

		body := make([]byte, count*netflowV5RecordLen)
		if _, err := io.ReadFull(r, body); err != nil {
			return ferr.Wrap(ferr.ShortBody, ferr.Fatal, netflowV5HeaderLen, err)
		}

		if h.OnMessageStart != nil {
			h.OnMessageStart(NetFlowV5Domain)
		}
		if h.OnSetStart != nil {
			h.OnSetStart(NetFlowV5Domain, NetFlowV5SetID)
		}
		ferrErr := h.HandleDataSet(NetFlowV5Domain, NetFlowV5SetID, body, nil)
		if h.OnSetEnd != nil {
			h.OnSetEnd(NetFlowV5Domain, NetFlowV5SetID)
		}
		if h.OnMessageEnd != nil {
			h.OnMessageEnd(NetFlowV5Domain)
		}
		if ferrErr != nil {
			return ferrErr
		}
	}
}
