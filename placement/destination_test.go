package placement

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowkit/ipfixdecode/ipfixinfo"
)

func TestNewDestinationMacAddress(t *testing.T) {
	var mac [6]byte
	d, err := newDestination(ipfixinfo.MacAddress, &mac)
	require.NoError(t, err)
	assert.Equal(t, 6, d.Size())

	d.SetBytes([]byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55})
	assert.Equal(t, [6]byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}, mac)
}

func TestNewDestinationIPv6AsNetIP(t *testing.T) {
	var ip net.IP
	d, err := newDestination(ipfixinfo.Ipv6Address, &ip)
	require.NoError(t, err)
	assert.Equal(t, 16, d.Size())

	want := net.ParseIP("2001:db8::1").To16()
	d.SetBytes(want)
	assert.Equal(t, net.IP(want), ip)
}

func TestNewDestinationIPv6AsFixedArray(t *testing.T) {
	var raw [16]byte
	d, err := newDestination(ipfixinfo.Ipv6Address, &raw)
	require.NoError(t, err)

	want := net.ParseIP("2001:db8::1").To16()
	d.SetBytes(want)
	assert.Equal(t, want, net.IP(raw[:]))
}

func TestNewDestinationOctetArray(t *testing.T) {
	var oa OctetArray
	d, err := newDestination(ipfixinfo.String, &oa)
	require.NoError(t, err)
	assert.Equal(t, 0, d.Size(), "octet array destinations have no fixed size")

	d.OctetArray().set([]byte("eth0"))
	assert.Equal(t, "eth0", string(oa.Bytes()))
}

func TestNewDestinationBoolean(t *testing.T) {
	var b bool
	d, err := newDestination(ipfixinfo.Boolean, &b)
	require.NoError(t, err)
	d.SetBool(true)
	assert.True(t, b)
}

func TestNewDestinationRejectsWrongGoType(t *testing.T) {
	var wrong int
	_, err := newDestination(ipfixinfo.MacAddress, &wrong)
	assert.Error(t, err)

	_, err = newDestination(ipfixinfo.Unsigned32, &wrong)
	assert.Error(t, err, "uint IE types must bind to an unsigned Go type")
}

func TestNewDestinationReducedLengthUint(t *testing.T) {
	var v32 uint32
	d, err := newDestination(ipfixinfo.Unsigned32, &v32)
	require.NoError(t, err)
	assert.Equal(t, 4, d.Size())

	d.SetUint(0x2a)
	assert.Equal(t, uint32(0x2a), v32)
}

func TestNewDestinationFloat32WidenedIntoFloat64(t *testing.T) {
	var f64 float64
	d, err := newDestination(ipfixinfo.Float64, &f64)
	require.NoError(t, err)

	d.SetFloat64(float64(float32(3.5)))
	assert.Equal(t, 3.5, f64)
}
