package placement

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowkit/ipfixdecode/ietemplate"
	"github.com/flowkit/ipfixdecode/ipfixinfo"
)

var (
	srcV4 = ipfixinfo.New("sourceIPv4Address", 0, 8, ipfixinfo.Ipv4Address, 4)
	dstV4 = ipfixinfo.New("destinationIPv4Address", 0, 12, ipfixinfo.Ipv4Address, 4)
	proto = ipfixinfo.New("protocolIdentifier", 0, 4, ipfixinfo.Unsigned8, 1)
	octets = ipfixinfo.New("octetDeltaCount", 0, 1, ipfixinfo.Unsigned64, 8)
)

func TestRegisterTypeMismatchIsRejected(t *testing.T) {
	p := NewTemplate()
	var wrongType uint32
	err := p.Register(srcV4, &wrongType)
	assert.Error(t, err)
}

func TestRegisterDuplicateIsRejected(t *testing.T) {
	p := NewTemplate()
	var ip net.IP
	require.NoError(t, p.Register(srcV4, &ip))
	err := p.Register(srcV4, &ip)
	assert.Error(t, err)
}

func TestRegisterAndSetRoundTrip(t *testing.T) {
	p := NewTemplate()
	var ip net.IP
	var protoVal uint8
	require.NoError(t, p.Register(srcV4, &ip))
	require.NoError(t, p.Register(proto, &protoVal))

	entries := p.Entries()
	require.Len(t, entries, 2)

	for _, e := range entries {
		switch e.IE {
		case srcV4:
			e.Dest.SetBytes([]byte{192, 0, 2, 1})
		case proto:
			e.Dest.SetUint(6)
		}
	}

	assert.Equal(t, net.IP{192, 0, 2, 1}, ip)
	assert.Equal(t, uint8(6), protoVal)
}

func TestIsMatchScoresAndReportsUnmatched(t *testing.T) {
	p := NewTemplate()
	var ip net.IP
	var octetsVal uint64
	require.NoError(t, p.Register(srcV4, &ip))
	require.NoError(t, p.Register(octets, &octetsVal))

	wire := ietemplate.NewBuilder()
	wire.Add(srcV4)
	wire.Add(dstV4)
	wire.Add(proto)

	matched, unmatched := p.IsMatch(wire)
	assert.Equal(t, 1, matched)
	require.Len(t, unmatched, 2)
	assert.Contains(t, unmatched, dstV4)
	assert.Contains(t, unmatched, proto)
}

func TestIsMatchFullCoverage(t *testing.T) {
	p := NewTemplate()
	var ip net.IP
	require.NoError(t, p.Register(srcV4, &ip))

	wire := ietemplate.NewBuilder()
	wire.Add(srcV4)

	matched, unmatched := p.IsMatch(wire)
	assert.Equal(t, 1, matched)
	assert.Empty(t, unmatched)
}
