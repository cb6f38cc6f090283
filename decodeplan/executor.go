package decodeplan

import (
	"encoding/binary"
	"math"

	"github.com/flowkit/ipfixdecode/ferr"
)

// Execute walks p's decisions against buf[:length], writing decoded values
// into the destinations the plan was compiled against, and returns the
// number of bytes consumed by exactly one record. length must be at least
// the compiled wire template's MinLen; callers are expected to have
// checked that before calling Execute.
//
// Any condition that would read past length is reported as a fatal
// format_error carrying the offset at which the overrun was detected;
// decode errors during record execution are always fatal — the caller
// must discard the rest of the message.
func (p *Plan) Execute(buf []byte, length int) (int, *ferr.Error) {
	cursor := 0

	for _, d := range p.decisions {
		switch d.Kind {
		case SkipFixlen:
			if cursor+d.Length > length {
				return cursor, overrun(cursor, "skip_fixlen")
			}
			cursor += d.Length

		case SkipVarlen:
			payloadLen, prefix, ferrErr := decodeVarlen(buf, cursor, length)
			if ferrErr != nil {
				return cursor, ferrErr
			}
			cursor += prefix + payloadLen

		case TransferUint:
			if cursor+d.Length > length {
				return cursor, overrun(cursor, "transfer_uint")
			}
			d.Dest.SetUint(decodeZeroExtendedUint(buf[cursor : cursor+d.Length]))
			cursor += d.Length

		case TransferInt:
			if cursor+d.Length > length {
				return cursor, overrun(cursor, "transfer_int")
			}
			d.Dest.SetInt(decodeZeroExtendedUint(buf[cursor : cursor+d.Length]))
			cursor += d.Length

		case TransferFloat32:
			if cursor+4 > length {
				return cursor, overrun(cursor, "transfer_float32")
			}
			bits := binary.BigEndian.Uint32(buf[cursor : cursor+4])
			d.Dest.SetFloat32(math.Float32frombits(bits))
			cursor += 4

		case TransferFloat32IntoFloat64:
			if cursor+4 > length {
				return cursor, overrun(cursor, "transfer_float32_into_float64")
			}
			bits := binary.BigEndian.Uint32(buf[cursor : cursor+4])
			d.Dest.SetFloat64(float64(math.Float32frombits(bits)))
			cursor += 4

		case TransferFloat64:
			if cursor+8 > length {
				return cursor, overrun(cursor, "transfer_float64")
			}
			bits := binary.BigEndian.Uint64(buf[cursor : cursor+8])
			d.Dest.SetFloat64(math.Float64frombits(bits))
			cursor += 8

		case TransferBoolean:
			if cursor+1 > length {
				return cursor, overrun(cursor, "transfer_boolean")
			}
			switch buf[cursor] {
			case 1:
				d.Dest.SetBool(true)
			case 2:
				d.Dest.SetBool(false)
			default:
				return cursor, ferr.New(ferr.FormatError, ferr.Fatal, cursor,
					"boolean field must encode 1 (true) or 2 (false)")
			}
			cursor++

		case TransferFixedBytes:
			if cursor+d.Length > length {
				return cursor, overrun(cursor, "transfer_fixed_bytes")
			}
			d.Dest.SetBytes(buf[cursor : cursor+d.Length])
			cursor += d.Length

		case TransferFixlenOctets:
			if cursor+d.Length > length {
				return cursor, overrun(cursor, "transfer_fixlen_octets")
			}
			d.Dest.SetOctets(buf[cursor : cursor+d.Length])
			cursor += d.Length

		case TransferVarlen:
			payloadLen, prefix, ferrErr := decodeVarlen(buf, cursor, length)
			if ferrErr != nil {
				return cursor, ferrErr
			}
			d.Dest.SetOctets(buf[cursor+prefix : cursor+prefix+payloadLen])
			cursor += prefix + payloadLen
		}
	}

	return cursor, nil
}

func overrun(offset int, step string) *ferr.Error {
	return ferr.New(ferr.FormatError, ferr.Fatal, offset, step+" runs past end of record")
}

// decodeZeroExtendedUint reads b as a big-endian value and returns it
// zero-extended to 64 bits, for any length 1..8. Reinterpreting the same
// bit pattern as int64 (via Destination.SetInt) implements the
// reduced-length policy for signed IEs: zero-extend, never sign-extend.
func decodeZeroExtendedUint(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

// decodeVarlen reads an IPFIX variable-length prefix at buf[cursor:],
// returning the payload length and how many prefix octets it occupied:
// one octet if it is less than 255, else that octet is a sentinel and the
// real length follows in the next two octets.
func decodeVarlen(buf []byte, cursor, length int) (payloadLen, prefix int, err *ferr.Error) {
	if cursor+1 > length {
		return 0, 0, overrun(cursor, "varlen length prefix")
	}
	b0 := buf[cursor]
	if b0 < 255 {
		payloadLen, prefix = int(b0), 1
	} else {
		if cursor+3 > length {
			return 0, 0, overrun(cursor, "varlen 3-octet length prefix")
		}
		payloadLen = int(buf[cursor+1])<<8 | int(buf[cursor+2])
		prefix = 3
	}
	if cursor+prefix+payloadLen > length {
		return 0, 0, overrun(cursor, "varlen payload")
	}
	return payloadLen, prefix, nil
}
