// Package decodeplan compiles a placement.PlacementTemplate and a matching
// ietemplate.Template into a flat sequence of Decisions, then executes
// that sequence against a single wire-format record.
//
// C decoders commonly split each numeric transfer into host-endianness-aware
// variants, since they copy raw bytes into a natively-typed C variable and
// must byte-reverse on little-endian hosts. Go has no equivalent notion of
// "cast these bytes onto an int" — numeric decisions here always read the
// wire's big-endian bytes with encoding/binary and assign through
// reflection, which is correct on every host and collapses the
// endian-swapped/non-swapped decision pairs into one. Address-shaped
// transfers (MAC, IPv4, IPv6) keep their wire byte order untouched, since
// that order is already a dotted/colon display order, not a number to
// reinterpret.
package decodeplan

import "github.com/flowkit/ipfixdecode/placement"

// Kind tags which executor step a Decision performs.
type Kind int

const (
	SkipFixlen Kind = iota
	SkipVarlen
	TransferUint
	TransferInt
	TransferFloat32
	TransferFloat64
	TransferFloat32IntoFloat64
	TransferBoolean
	TransferFixedBytes
	TransferFixlenOctets
	TransferVarlen
)

func (k Kind) String() string {
	switch k {
	case SkipFixlen:
		return "skip_fixlen"
	case SkipVarlen:
		return "skip_varlen"
	case TransferUint:
		return "transfer_uint"
	case TransferInt:
		return "transfer_int"
	case TransferFloat32:
		return "transfer_float32"
	case TransferFloat64:
		return "transfer_float64"
	case TransferFloat32IntoFloat64:
		return "transfer_float32_into_float64"
	case TransferBoolean:
		return "transfer_boolean"
	case TransferFixedBytes:
		return "transfer_fixed_bytes"
	case TransferFixlenOctets:
		return "transfer_fixlen_octets"
	case TransferVarlen:
		return "transfer_varlen"
	default:
		return "unknown"
	}
}

// Decision is one step of a compiled plan. Length's meaning depends on
// Kind: the number of bytes to skip for SkipFixlen, or the wire-encoded
// field width for fixed-width Transfer* (the "len" the reduced-length
// policy applies to). It is 0 for SkipVarlen and TransferVarlen, whose
// width is read from the record, and for TransferBoolean, which always
// reads one octet. Dest is nil for every Skip* decision.
type Decision struct {
	Kind   Kind
	Length int
	Dest   *placement.Destination
}

// Plan is a compiled, ready-to-execute decision sequence for one
// (placement, wire template) pairing. It is safe to execute concurrently
// against different records only if the underlying Destinations are not
// shared; in the library's single-threaded-per-pipeline model a Plan is
// built once per matched wire template and reused for every record of
// that type.
type Plan struct {
	decisions []Decision
}

// Decisions returns the compiled step sequence. Callers must not mutate
// the returned slice.
func (p *Plan) Decisions() []Decision { return p.decisions }
