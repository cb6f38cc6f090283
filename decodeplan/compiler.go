package decodeplan

import (
	"fmt"

	"github.com/flowkit/ipfixdecode/ietemplate"
	"github.com/flowkit/ipfixdecode/ipfixinfo"
	"github.com/flowkit/ipfixdecode/placement"
)

// Compile builds a Plan for wire against p: for each field in wire, in
// wire order, it emits a skip decision if p has no destination for that
// field's information element, or a transfer decision selected by the
// field's IEType otherwise. A single coalescing pass then merges
// consecutive skip_fixlen decisions.
//
// Compile returns an error (never used at decode time — this is a
// one-time, per-template compilation step) when a field's wire-encoded
// length cannot possibly fit the destination it was matched to, e.g. a
// reduced-length transfer whose length exceeds the destination's native
// size, or a fixed-size kind (MAC/IPv4/IPv6) whose wire length isn't
// exactly its required size.
func Compile(p *placement.PlacementTemplate, wire *ietemplate.Template) (*Plan, error) {
	decisions := make([]Decision, 0, wire.Len())

	for _, field := range wire.Fields() {
		dest, ok := p.Lookup(field)
		if !ok {
			if field.IsVarLen() {
				decisions = append(decisions, Decision{Kind: SkipVarlen})
			} else {
				decisions = append(decisions, Decision{Kind: SkipFixlen, Length: int(field.Length())})
			}
			continue
		}

		d, err := compileTransfer(field, dest)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}

	return &Plan{decisions: coalesceSkips(decisions)}, nil
}

func compileTransfer(field *ipfixinfo.InfoElement, dest *placement.Destination) (Decision, error) {
	switch field.IEType() {
	case ipfixinfo.OctetArray, ipfixinfo.String:
		if field.IsVarLen() {
			return Decision{Kind: TransferVarlen, Dest: dest}, nil
		}
		return Decision{Kind: TransferFixlenOctets, Length: int(field.Length()), Dest: dest}, nil

	case ipfixinfo.Boolean:
		return Decision{Kind: TransferBoolean, Dest: dest}, nil

	case ipfixinfo.MacAddress:
		if field.Length() != 6 {
			return Decision{}, fmt.Errorf("decodeplan: macAddress field must be exactly 6 octets, got %d", field.Length())
		}
		return Decision{Kind: TransferFixedBytes, Length: 6, Dest: dest}, nil

	case ipfixinfo.Ipv4Address:
		if field.Length() != 4 {
			return Decision{}, fmt.Errorf("decodeplan: ipv4Address field must be exactly 4 octets, got %d", field.Length())
		}
		return Decision{Kind: TransferFixedBytes, Length: 4, Dest: dest}, nil

	case ipfixinfo.Ipv6Address:
		if field.Length() != 16 {
			return Decision{}, fmt.Errorf("decodeplan: ipv6Address field must be exactly 16 octets, got %d", field.Length())
		}
		return Decision{Kind: TransferFixedBytes, Length: 16, Dest: dest}, nil

	case ipfixinfo.Float32:
		if field.Length() != 4 {
			return Decision{}, fmt.Errorf("decodeplan: float32 field must be exactly 4 octets, got %d", field.Length())
		}
		return Decision{Kind: TransferFloat32, Length: 4, Dest: dest}, nil

	case ipfixinfo.Float64:
		switch field.Length() {
		case 4:
			return Decision{Kind: TransferFloat32IntoFloat64, Length: 4, Dest: dest}, nil
		case 8:
			return Decision{Kind: TransferFloat64, Length: 8, Dest: dest}, nil
		default:
			return Decision{}, fmt.Errorf("decodeplan: float64 field must be 4 or 8 octets, got %d", field.Length())
		}

	case ipfixinfo.Unsigned8, ipfixinfo.Unsigned16, ipfixinfo.Unsigned32, ipfixinfo.Unsigned64,
		ipfixinfo.DateTimeSeconds, ipfixinfo.DateTimeMilliseconds, ipfixinfo.DateTimeMicroseconds, ipfixinfo.DateTimeNanoseconds:
		if err := checkReducedLength(field, dest); err != nil {
			return Decision{}, err
		}
		return Decision{Kind: TransferUint, Length: int(field.Length()), Dest: dest}, nil

	case ipfixinfo.Signed8, ipfixinfo.Signed16, ipfixinfo.Signed32, ipfixinfo.Signed64:
		if err := checkReducedLength(field, dest); err != nil {
			return Decision{}, err
		}
		return Decision{Kind: TransferInt, Length: int(field.Length()), Dest: dest}, nil

	default:
		return Decision{}, fmt.Errorf("decodeplan: unsupported information element type %s", field.IEType())
	}
}

// checkReducedLength rejects a reduced-length numeric field whose wire
// length exceeds its matched destination's native size: it is a compile
// error, not a decode-time one, since both lengths are known up front.
func checkReducedLength(field *ipfixinfo.InfoElement, dest *placement.Destination) error {
	if int(field.Length()) > dest.Size() {
		return fmt.Errorf("decodeplan: %s wire length %d exceeds destination size %d", field, field.Length(), dest.Size())
	}
	return nil
}

// coalesceSkips merges consecutive skip_fixlen decisions into one.
// skip_varlen is never merged: its length is only known at execute time.
func coalesceSkips(in []Decision) []Decision {
	out := make([]Decision, 0, len(in))
	for _, d := range in {
		if d.Kind == SkipFixlen && len(out) > 0 && out[len(out)-1].Kind == SkipFixlen {
			out[len(out)-1].Length += d.Length
			continue
		}
		out = append(out, d)
	}
	return out
}
