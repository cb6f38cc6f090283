package streamparser

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowkit/ipfixdecode/content"
	"github.com/flowkit/ipfixdecode/placement"
)

func TestParseNetFlowV9TemplateThenDataSet(t *testing.T) {
	model := newTestModel(t)
	h := content.NewHandler(model)
	srcV4 := model.LookupByName("sourceIPv4Address")

	pt := placement.NewTemplate()
	var ip [4]byte
	require.NoError(t, pt.Register(srcV4, &ip))
	collector := &countingCollector{}
	h.RegisterPlacement(pt, collector)

	msg := []byte{
		0x00, 0x09, 0x00, 0x02, // version=9, count=2 flowsets
		0x00, 0x00, 0x10, 0x00, // sysUptime
		0x00, 0x00, 0x00, 0x01, // export seconds
		0x00, 0x00, 0x00, 0x01, // package sequence
		0x00, 0x00, 0x00, 0x05, // source id / observation domain
		0x00, 0x00, 0x00, 0x0C, // flowset id=0 (template), length=12
		0x01, 0x00, 0x00, 0x01, // template_id=256, field_count=1
		0x00, 0x08, 0x00, 0x04, // ie=8, len=4
		0x01, 0x00, 0x00, 0x08, // flowset id=256 (data), length=8
		0xC0, 0x00, 0x02, 0x01,
	}

	baseTime, err := ParseNetFlowV9(bytes.NewReader(msg), h, nil)
	require.Nil(t, err)
	assert.Equal(t, uint32(0x1000), baseTime)
	assert.Equal(t, [4]byte{0xC0, 0x00, 0x02, 0x01}, ip)
	assert.Equal(t, 1, collector.starts)
}

func TestParseNetFlowV9RejectsWrongVersion(t *testing.T) {
	model := newTestModel(t)
	h := content.NewHandler(model)

	msg := []byte{0x00, 0x05, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	_, err := ParseNetFlowV9(bytes.NewReader(msg), h, nil)
	require.NotNil(t, err)
	assert.Equal(t, "message_version_number", err.Kind.String())
	assert.True(t, err.Fatal())
}
