package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowkit/ipfixdecode/ietemplate"
	"github.com/flowkit/ipfixdecode/ipfixinfo"
	"github.com/flowkit/ipfixdecode/placement"
)

func newTestModel(t *testing.T) *ipfixinfo.Model {
	t.Helper()
	m := ipfixinfo.NewModel()
	require.NoError(t, ipfixinfo.LoadDefaultRegistry(m))
	return m
}

// fakeCollector counts StartPlacement/EndPlacement pairs so tests can
// assert that every decoded record is bracketed exactly once.
type fakeCollector struct {
	placement.NopUnhandled
	starts, ends int
}

func (f *fakeCollector) StartPlacement(*placement.PlacementTemplate) { f.starts++ }
func (f *fakeCollector) EndPlacement(*placement.PlacementTemplate)   { f.ends++ }

// installingCollector claims an unhandled data set by installing the
// wire template itself and asking for a retry.
type installingCollector struct {
	fakeCollector
	h       *Handler
	claimed bool
}

func (c *installingCollector) UnhandledDataSet(domain uint32, setID uint16, data []byte) (bool, error) {
	c.claimed = true
	tmpl := ietemplate.NewBuilder()
	tmpl.Add(mustLookup(c.h.model, "sourceIPv4Address"))
	c.h.registry.Install(domain, setID, tmpl)
	return true, nil
}

func mustLookup(m *ipfixinfo.Model, name string) *ipfixinfo.InfoElement {
	return m.LookupByName(name)
}

func TestHandleTemplateSetThenDataSetDecodesRecord(t *testing.T) {
	model := newTestModel(t)
	h := NewHandler(model)

	srcV4 := model.LookupByName("sourceIPv4Address")
	require.NotNil(t, srcV4)

	pt := placement.NewTemplate()
	var ip [4]byte
	require.NoError(t, pt.Register(srcV4, &ip))

	collector := &fakeCollector{}
	h.RegisterPlacement(pt, collector)

	// template set: template_id=256, field_count=1, field (ie=8,len=4)
	templateSet := []byte{0x01, 0x00, 0x00, 0x01, 0x00, 0x08, 0x00, 0x04}
	require.Nil(t, h.HandleTemplateSet(1, templateSet))

	dataSet := []byte{0xC0, 0x00, 0x02, 0x01}
	require.Nil(t, h.HandleDataSet(1, 256, dataSet, nil))

	assert.Equal(t, [4]byte{0xC0, 0x00, 0x02, 0x01}, ip)
	assert.Equal(t, 1, collector.starts)
	assert.Equal(t, 1, collector.ends)
}

func TestHandleDataSetTwoRecordsBracketedSeparately(t *testing.T) {
	model := newTestModel(t)
	h := NewHandler(model)
	srcV4 := model.LookupByName("sourceIPv4Address")

	pt := placement.NewTemplate()
	var ip [4]byte
	require.NoError(t, pt.Register(srcV4, &ip))
	collector := &fakeCollector{}
	h.RegisterPlacement(pt, collector)

	templateSet := []byte{0x01, 0x00, 0x00, 0x01, 0x00, 0x08, 0x00, 0x04}
	require.Nil(t, h.HandleTemplateSet(1, templateSet))

	dataSet := []byte{0xC0, 0x00, 0x02, 0x01, 0x0A, 0x00, 0x00, 0x01}
	require.Nil(t, h.HandleDataSet(1, 256, dataSet, nil))

	assert.Equal(t, [4]byte{0x0A, 0x00, 0x00, 0x01}, ip, "destination holds the last record's value")
	assert.Equal(t, 2, collector.starts)
	assert.Equal(t, 2, collector.ends)
}

func TestTemplateRedefinitionReplacesAndInvalidatesCache(t *testing.T) {
	model := newTestModel(t)
	h := NewHandler(model)
	srcV4 := model.LookupByName("sourceIPv4Address")
	dstV4 := model.LookupByName("destinationIPv4Address")

	pt := placement.NewTemplate()
	var src, dst [4]byte
	require.NoError(t, pt.Register(srcV4, &src))
	require.NoError(t, pt.Register(dstV4, &dst))
	collector := &fakeCollector{}
	h.RegisterPlacement(pt, collector)

	t1 := []byte{0x01, 0x00, 0x00, 0x01, 0x00, 0x08, 0x00, 0x04}
	require.Nil(t, h.HandleTemplateSet(1, t1))

	oldWire := h.registry.Lookup(1, 256)
	require.NotNil(t, oldWire)

	require.Nil(t, h.HandleDataSet(1, 256, []byte{0xC0, 0x00, 0x02, 0x01}, nil))
	_, cached := h.matchCache[oldWire]
	require.True(t, cached, "decoding against the first template must populate its cached match")

	t2 := []byte{
		0x01, 0x00, 0x00, 0x02,
		0x00, 0x08, 0x00, 0x04,
		0x00, 0x0C, 0x00, 0x04,
	}
	require.Nil(t, h.HandleTemplateSet(1, t2))

	newWire := h.registry.Lookup(1, 256)
	assert.NotSame(t, oldWire, newWire)
	_, cached = h.matchCache[oldWire]
	assert.False(t, cached, "replacing a template must evict its cached match")

	dataSet := []byte{0xC0, 0x00, 0x02, 0x01, 0x0A, 0x00, 0x00, 0x01}
	require.Nil(t, h.HandleDataSet(1, 256, dataSet, nil))
	assert.Equal(t, [4]byte{0xC0, 0x00, 0x02, 0x01}, src)
	assert.Equal(t, [4]byte{0x0A, 0x00, 0x00, 0x01}, dst)
}

func TestUnknownTemplateIDWarnsOnceAndReturnsNoError(t *testing.T) {
	model := newTestModel(t)
	h := NewHandler(model)

	err := h.HandleDataSet(1, 300, []byte{1, 2, 3, 4}, nil)
	assert.Nil(t, err)
	err = h.HandleDataSet(1, 300, []byte{5, 6, 7, 8}, nil)
	assert.Nil(t, err)
	assert.True(t, h.unmatchedTemplateIDs[1<<16|300])
}

func TestHandleDataSetFallsBackToRegisteredCollectorsUnhandledDataSet(t *testing.T) {
	model := newTestModel(t)
	h := NewHandler(model)
	srcV4 := model.LookupByName("sourceIPv4Address")

	pt := placement.NewTemplate()
	var ip [4]byte
	require.NoError(t, pt.Register(srcV4, &ip))

	collector := &installingCollector{h: h}
	h.RegisterPlacement(pt, collector)

	dataSet := []byte{0xC0, 0x00, 0x02, 0x01}
	err := h.HandleDataSet(1, 500, dataSet, nil)
	require.Nil(t, err)
	assert.True(t, collector.claimed)
	assert.Equal(t, [4]byte{0xC0, 0x00, 0x02, 0x01}, ip)
	assert.Equal(t, 1, collector.starts)
	assert.Equal(t, 1, collector.ends)
}

func TestOptionsTemplateSetScopeFieldsDecodeLikeOrdinaryFields(t *testing.T) {
	model := newTestModel(t)
	h := NewHandler(model)
	srcV4 := model.LookupByName("sourceIPv4Address")
	proto := model.LookupByName("protocolIdentifier")

	pt := placement.NewTemplate()
	var ip [4]byte
	var protoVal uint8
	require.NoError(t, pt.Register(srcV4, &ip))
	require.NoError(t, pt.Register(proto, &protoVal))
	collector := &fakeCollector{}
	h.RegisterPlacement(pt, collector)

	// options template: template_id=257, field_count=2, scope_field_count=1
	optsTemplate := []byte{
		0x01, 0x01, 0x00, 0x02, 0x00, 0x01,
		0x00, 0x08, 0x00, 0x04, // scope field: sourceIPv4Address
		0x00, 0x04, 0x00, 0x01, // ordinary field: protocolIdentifier
	}
	require.Nil(t, h.HandleOptionsTemplateSet(1, optsTemplate))

	wire := h.registry.Lookup(1, 257)
	require.NotNil(t, wire)
	assert.Equal(t, 1, wire.ScopeCount)
	assert.Equal(t, 2, wire.Len())

	dataSet := []byte{0xC0, 0x00, 0x02, 0x01, 0x06}
	require.Nil(t, h.HandleDataSet(1, 257, dataSet, nil))
	assert.Equal(t, [4]byte{0xC0, 0x00, 0x02, 0x01}, ip)
	assert.Equal(t, uint8(6), protoVal)
}
