package placement

import (
	"fmt"
	"net"
	"reflect"

	"github.com/flowkit/ipfixdecode/ipfixinfo"
)

// destKind tags which typed setter a Destination dispatches to: a closed
// set of typed setters rather than a free-form pointer cast.
type destKind int

const (
	destUint destKind = iota
	destInt
	destFloat32
	destFloat64
	destBool
	destFixedBytes // *[N]byte — MAC/IPv4/IPv6 raw octets
	destNetIP      // net.IP, backed by a caller-owned net.IP
	destOctetArray // *OctetArray — octetArray/string, fixed or variable
)

// Destination is a caller-owned location a decoded value is written to.
// Callers construct one implicitly via PlacementTemplate.Register; the
// decode-plan compiler records a Destination per transfer Decision and the
// executor writes into it once per record.
type Destination struct {
	kind      destKind
	value     reflect.Value // addressable Elem() of the caller's pointer
	fixedSize int           // byte width of the destination; 0 for destOctetArray
}

// Size returns the destination's byte width, used by the decode-plan
// compiler to reject an encoded length that would overflow it. Variable-
// size destinations (octet arrays) return 0, meaning no fixed-size check
// applies.
func (d *Destination) Size() int {
	return d.fixedSize
}

// newDestination validates dest (which must be a non-nil pointer) against
// ietype and builds the corresponding typed setter.
func newDestination(ietype ipfixinfo.IEType, dest any) (*Destination, error) {
	if dest == nil {
		return nil, fmt.Errorf("placement: nil destination")
	}

	switch ietype {
	case ipfixinfo.OctetArray, ipfixinfo.String:
		oa, ok := dest.(*OctetArray)
		if !ok {
			return nil, fmt.Errorf("placement: %s destination must be *OctetArray, got %T", ietype, dest)
		}
		return &Destination{kind: destOctetArray, value: reflect.ValueOf(oa).Elem()}, nil

	case ipfixinfo.Boolean:
		v, err := settablePointer(dest, reflect.Bool)
		if err != nil {
			return nil, fmt.Errorf("placement: boolean destination must be *bool: %w", err)
		}
		return &Destination{kind: destBool, value: v, fixedSize: 1}, nil

	case ipfixinfo.MacAddress:
		arr, ok := dest.(*[6]byte)
		if !ok {
			return nil, fmt.Errorf("placement: macAddress destination must be *[6]byte, got %T", dest)
		}
		return &Destination{kind: destFixedBytes, value: reflect.ValueOf(arr).Elem(), fixedSize: 6}, nil

	case ipfixinfo.Ipv4Address:
		if ip, ok := dest.(*net.IP); ok {
			return &Destination{kind: destNetIP, value: reflect.ValueOf(ip).Elem(), fixedSize: 4}, nil
		}
		arr, ok := dest.(*[4]byte)
		if !ok {
			return nil, fmt.Errorf("placement: ipv4Address destination must be *net.IP or *[4]byte, got %T", dest)
		}
		return &Destination{kind: destFixedBytes, value: reflect.ValueOf(arr).Elem(), fixedSize: 4}, nil

	case ipfixinfo.Ipv6Address:
		arr, ok := dest.(*[16]byte)
		if !ok {
			if ip, ok := dest.(*net.IP); ok {
				return &Destination{kind: destNetIP, value: reflect.ValueOf(ip).Elem(), fixedSize: 16}, nil
			}
			return nil, fmt.Errorf("placement: ipv6Address destination must be *net.IP or *[16]byte, got %T", dest)
		}
		return &Destination{kind: destFixedBytes, value: reflect.ValueOf(arr).Elem(), fixedSize: 16}, nil

	case ipfixinfo.Float32:
		v, err := settablePointer(dest, reflect.Float32)
		if err != nil {
			return nil, fmt.Errorf("placement: float32 destination must be *float32: %w", err)
		}
		return &Destination{kind: destFloat32, value: v, fixedSize: 4}, nil

	case ipfixinfo.Float64:
		v, err := settablePointer(dest, reflect.Float64)
		if err != nil {
			return nil, fmt.Errorf("placement: float64 destination must be *float64: %w", err)
		}
		return &Destination{kind: destFloat64, value: v, fixedSize: 8}, nil

	case ipfixinfo.Unsigned8, ipfixinfo.Unsigned16, ipfixinfo.Unsigned32, ipfixinfo.Unsigned64,
		ipfixinfo.DateTimeSeconds, ipfixinfo.DateTimeMilliseconds, ipfixinfo.DateTimeMicroseconds, ipfixinfo.DateTimeNanoseconds:
		v, size, err := settableUint(dest)
		if err != nil {
			return nil, fmt.Errorf("placement: %s destination: %w", ietype, err)
		}
		return &Destination{kind: destUint, value: v, fixedSize: size}, nil

	case ipfixinfo.Signed8, ipfixinfo.Signed16, ipfixinfo.Signed32, ipfixinfo.Signed64:
		v, size, err := settableInt(dest)
		if err != nil {
			return nil, fmt.Errorf("placement: %s destination: %w", ietype, err)
		}
		return &Destination{kind: destInt, value: v, fixedSize: size}, nil

	default:
		return nil, fmt.Errorf("placement: unsupported information element type %s", ietype)
	}
}

func settablePointer(dest any, wantKind reflect.Kind) (reflect.Value, error) {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return reflect.Value{}, fmt.Errorf("destination must be a non-nil pointer, got %T", dest)
	}
	elem := rv.Elem()
	if elem.Kind() != wantKind {
		return reflect.Value{}, fmt.Errorf("destination must point to a %s, got %T", wantKind, dest)
	}
	return elem, nil
}

var uintKindSizes = map[reflect.Kind]int{
	reflect.Uint8: 1, reflect.Uint16: 2, reflect.Uint32: 4, reflect.Uint64: 8,
}

var intKindSizes = map[reflect.Kind]int{
	reflect.Int8: 1, reflect.Int16: 2, reflect.Int32: 4, reflect.Int64: 8,
}

func settableUint(dest any) (reflect.Value, int, error) {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return reflect.Value{}, 0, fmt.Errorf("must be a non-nil pointer, got %T", dest)
	}
	elem := rv.Elem()
	size, ok := uintKindSizes[elem.Kind()]
	if !ok {
		return reflect.Value{}, 0, fmt.Errorf("must point to an unsigned integer, got %T", dest)
	}
	return elem, size, nil
}

func settableInt(dest any) (reflect.Value, int, error) {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return reflect.Value{}, 0, fmt.Errorf("must be a non-nil pointer, got %T", dest)
	}
	elem := rv.Elem()
	size, ok := intKindSizes[elem.Kind()]
	if !ok {
		return reflect.Value{}, 0, fmt.Errorf("must point to a signed integer, got %T", dest)
	}
	return elem, size, nil
}

// SetUint stores a zero-extended unsigned value, used for reduced-length
// numeric transfers.
func (d *Destination) SetUint(v uint64) { d.value.SetUint(v) }

// SetInt stores a zero-extended signed value. Reduced-length signed IEs
// are zero-extended, not sign-extended, so this takes the already
// zero-extended bit pattern as a uint64 and reinterprets it.
func (d *Destination) SetInt(v uint64) { d.value.SetInt(int64(v)) }

// SetFloat32 stores a float32 value.
func (d *Destination) SetFloat32(v float32) { d.value.SetFloat(float64(v)) }

// SetFloat64 stores a float64 value (possibly widened from a wire float32).
func (d *Destination) SetFloat64(v float64) { d.value.SetFloat(v) }

// SetBool stores a decoded boolean (wire 1=true, 2=false).
func (d *Destination) SetBool(v bool) { d.value.SetBool(v) }

// SetBytes copies raw address/hardware octets (MAC, IPv4, IPv6) into the
// destination verbatim — wire order is already the address's natural
// display order, so no numeric reinterpretation applies, unlike the
// SetUint/SetInt/SetFloat* reduced-length paths.
func (d *Destination) SetBytes(b []byte) {
	if d.kind == destNetIP {
		d.value.Set(reflect.ValueOf(net.IP(append([]byte(nil), b...))))
		return
	}
	reflect.Copy(d.value, reflect.ValueOf(b))
}

// OctetArray returns the destination's backing OctetArray, for
// transfer_fixlen_octets and transfer_varlen decisions.
func (d *Destination) OctetArray() *OctetArray {
	return d.value.Addr().Interface().(*OctetArray)
}

// SetOctets replaces the contents of an octet-array destination, used by
// the decode-plan executor's transfer_fixlen_octets and transfer_varlen
// decisions. It panics if the destination was not built for an
// octetArray/string information element; the decode-plan compiler only
// ever emits those decisions against octet-array destinations, so this
// cannot happen through normal use.
func (d *Destination) SetOctets(b []byte) {
	d.OctetArray().set(b)
}
