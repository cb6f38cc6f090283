package ipfixcollect

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowkit/ipfixdecode/placement"
)

type capturingCollector struct {
	placement.NopUnhandled
	records int
}

func (c *capturingCollector) StartPlacement(*placement.PlacementTemplate) { c.records++ }
func (c *capturingCollector) EndPlacement(*placement.PlacementTemplate)   {}

func TestLoadDefaultIPFIXRegistryResolvesKnownElement(t *testing.T) {
	model, err := LoadDefaultIPFIXRegistry()
	require.NoError(t, err)
	assert.NotNil(t, model.LookupByName("sourceIPv4Address"))
}

func TestCollectorIPFIXEndToEnd(t *testing.T) {
	model, err := LoadDefaultIPFIXRegistry()
	require.NoError(t, err)

	c := New(IPFIX, model)
	srcV4 := model.LookupByName("sourceIPv4Address")

	pt := placement.NewTemplate()
	var ip [4]byte
	require.NoError(t, pt.Register(srcV4, &ip))
	collector := &capturingCollector{}
	c.RegisterPlacement(pt, collector)

	msg := []byte{
		0x00, 0x0A, 0x00, 0x24,
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x02, 0x00, 0x0C,
		0x01, 0x00, 0x00, 0x01,
		0x00, 0x08, 0x00, 0x04,
		0x01, 0x00, 0x00, 0x08,
		0xC0, 0x00, 0x02, 0x01,
	}

	ferrErr := c.Collect(bytes.NewReader(msg))
	require.Nil(t, ferrErr)
	assert.Equal(t, [4]byte{0xC0, 0x00, 0x02, 0x01}, ip)
	assert.Equal(t, 1, collector.records)
}

func TestCollectorNetFlowV5EndToEnd(t *testing.T) {
	model, err := LoadDefaultIPFIXRegistry()
	require.NoError(t, err)

	c := New(NetFlowV5, model)
	srcV4 := model.LookupByName("sourceIPv4Address")

	pt := placement.NewTemplate()
	var ip [4]byte
	require.NoError(t, pt.Register(srcV4, &ip))
	collector := &capturingCollector{}
	c.RegisterPlacement(pt, collector)

	header := make([]byte, 24)
	header[0], header[1] = 0x00, 0x05
	header[3] = 0x01 // count=1
	record := make([]byte, 48)
	copy(record[0:4], []byte{0xC0, 0x00, 0x02, 0x01})

	msg := append(header, record...)
	ferrErr := c.Collect(bytes.NewReader(msg))
	require.Nil(t, ferrErr)
	assert.Equal(t, [4]byte{0xC0, 0x00, 0x02, 0x01}, ip)
}
