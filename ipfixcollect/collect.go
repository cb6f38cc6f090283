// Package ipfixcollect is the public entry point of this library: it ties
// together the information model, the content handler, and the
// per-protocol stream parsers behind a small surface — construct a
// Collector for a protocol, register placement templates and callbacks,
// then call Collect on an input source. It has no network or
// output-format concerns of its own; callers own the transport and hand
// this package a plain io.Reader.
package ipfixcollect

import (
	"fmt"
	"io"

	"github.com/flowkit/ipfixdecode/content"
	"github.com/flowkit/ipfixdecode/ferr"
	"github.com/flowkit/ipfixdecode/ietemplate"
	"github.com/flowkit/ipfixdecode/ipfixinfo"
	"github.com/flowkit/ipfixdecode/metrics"
	"github.com/flowkit/ipfixdecode/placement"
	"github.com/flowkit/ipfixdecode/streamparser"
)

// Protocol selects which wire framing Collect uses.
type Protocol int

const (
	IPFIX Protocol = iota
	NetFlowV9
	NetFlowV5
)

func (p Protocol) String() string {
	switch p {
	case IPFIX:
		return "ipfix"
	case NetFlowV9:
		return "netflowv9"
	case NetFlowV5:
		return "netflowv5"
	default:
		return "unknown"
	}
}

// LoadDefaultIPFIXRegistry builds an information model preloaded with the
// IANA-assigned IPFIX information elements.
func LoadDefaultIPFIXRegistry() (*ipfixinfo.Model, error) {
	model := ipfixinfo.NewModel()
	if err := ipfixinfo.LoadDefaultRegistry(model); err != nil {
		return nil, fmt.Errorf("load default ipfix registry: %w", err)
	}
	return model, nil
}

// Collector is one pipeline instance bound to a single protocol and
// information model. It is not safe for concurrent use, a restriction
// inherited from the content handler it wraps.
type Collector struct {
	protocol  Protocol
	model     *ipfixinfo.Model
	handler   *content.Handler
	unhandled content.UnhandledDataSet

	lastBaseTimeMillis uint32
}

// New creates a Collector for protocol, resolving field specifiers (and
// unknowns) against model.
func New(protocol Protocol, model *ipfixinfo.Model) *Collector {
	h := content.NewHandler(model)
	metrics.InstrumentHandler(h, protocol.String())
	return &Collector{protocol: protocol, model: model, handler: h}
}

// RegisterPlacement declares that records decoded against tmpl are
// delivered to collector.
func (c *Collector) RegisterPlacement(tmpl *placement.PlacementTemplate, collector placement.Collector) {
	c.handler.RegisterPlacement(tmpl, collector)
}

// SetUnhandledDataSet installs the fallback invoked when a data set
// references a template id this Collector has never seen.
func (c *Collector) SetUnhandledDataSet(fn content.UnhandledDataSet) {
	c.unhandled = fn
}

// Registry exposes the underlying wire-template registry, mainly so an
// unhandled_data_set callback can install a template on the fly.
func (c *Collector) Registry() *ietemplate.Registry { return c.handler.Registry() }

// BaseTimeMillis reports the most recently observed NetFlow v9 base_time
// (the exporter's sysUptime in milliseconds at export time). Zero for
// IPFIX, which carries no such value, and for NetFlow v5, whose header
// sysUptime is read past but not reported.
func (c *Collector) BaseTimeMillis() uint32 { return c.lastBaseTimeMillis }

// Collect reads and decodes messages from input until EOF or a fatal
// error, dispatching every record among the placements registered so far.
// It returns nil on a clean EOF, and a non-nil error (fatal or not)
// otherwise. The Collector must not be reused after a fatal error.
func (c *Collector) Collect(input io.Reader) *ferr.Error {
	return metrics.InstrumentCollect(c.protocol.String(), func() *ferr.Error {
		switch c.protocol {
		case IPFIX:
			return streamparser.ParseIPFIX(input, c.handler, c.unhandled)
		case NetFlowV9:
			baseTime, err := streamparser.ParseNetFlowV9(input, c.handler, c.unhandled)
			c.lastBaseTimeMillis = baseTime
			return err
		case NetFlowV5:
			return streamparser.ParseNetFlowV5(input, c.handler, c.model)
		default:
			return ferr.New(ferr.InconsistentState, ferr.Fatal, 0, "unknown protocol")
		}
	})
}
