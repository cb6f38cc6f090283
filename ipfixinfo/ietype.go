// Package ipfixinfo implements the canonical information-element registry:
// the InfoModel and InfoElement types of the IPFIX decoding pipeline.
package ipfixinfo

// IEType tags the small closed set of wire-type kinds an information
// element can carry, matching RFC 7011's abstract data types.
type IEType int

const (
	OctetArray IEType = iota
	Unsigned8
	Unsigned16
	Unsigned32
	Unsigned64
	Signed8
	Signed16
	Signed32
	Signed64
	Float32
	Float64
	Boolean
	MacAddress
	String
	DateTimeSeconds
	DateTimeMilliseconds
	DateTimeMicroseconds
	DateTimeNanoseconds
	Ipv4Address
	Ipv6Address
)

var ieTypeNames = [...]string{
	"octetArray", "unsigned8", "unsigned16", "unsigned32", "unsigned64",
	"signed8", "signed16", "signed32", "signed64", "float32", "float64",
	"boolean", "macAddress", "string", "dateTimeSeconds",
	"dateTimeMilliseconds", "dateTimeMicroseconds", "dateTimeNanoseconds",
	"ipv4Address", "ipv6Address",
}

func (t IEType) String() string {
	if int(t) < 0 || int(t) >= len(ieTypeNames) {
		return "unknown"
	}
	return ieTypeNames[t]
}

// NativeSize returns the encoded size of the type's "natural" (unreduced)
// wire representation, or 0 for variable-length/open-ended kinds.
func (t IEType) NativeSize() int {
	switch t {
	case Unsigned8, Signed8, Boolean:
		return 1
	case Unsigned16, Signed16:
		return 2
	case Unsigned32, Signed32, Float32, DateTimeSeconds:
		return 4
	case Unsigned64, Signed64, Float64, DateTimeMilliseconds,
		DateTimeMicroseconds, DateTimeNanoseconds:
		return 8
	case MacAddress:
		return 6
	case Ipv4Address:
		return 4
	case Ipv6Address:
		return 16
	default:
		return 0
	}
}

// IETypeByName maps the RFC 7011 type names (as used in the default
// registry YAML) to their IEType tag.
func IETypeByName(name string) (IEType, bool) {
	for i, n := range ieTypeNames {
		if n == name {
			return IEType(i), true
		}
	}
	return 0, false
}
