// Package ferr defines the error taxonomy used across the decode
// pipeline: a small Kind enum, a severity classification, and a wrapping
// Error type that carries where in the message the failure was detected.
// A single struct plus enum stands in for the class hierarchy a decoder
// written in a language with exceptions would use.
package ferr

import "fmt"

// Kind identifies what went wrong.
type Kind int

const (
	NoError Kind = iota
	ShortHeader
	ShortBody
	LongSet
	LongFieldSpec
	MessageVersionNumber
	ShortMessage
	IPFIXBaseTime
	FormatError
	ReadError
	InconsistentState
	AbortedByUser
	Again
)

func (k Kind) String() string {
	switch k {
	case NoError:
		return "no_error"
	case ShortHeader:
		return "short_header"
	case ShortBody:
		return "short_body"
	case LongSet:
		return "long_set"
	case LongFieldSpec:
		return "long_fieldspec"
	case MessageVersionNumber:
		return "message_version_number"
	case ShortMessage:
		return "short_message"
	case IPFIXBaseTime:
		return "ipfix_basetime"
	case FormatError:
		return "format_error"
	case ReadError:
		return "read_error"
	case InconsistentState:
		return "inconsistent_state"
	case AbortedByUser:
		return "aborted_by_user"
	case Again:
		return "again"
	default:
		return fmt.Sprintf("ferr.Kind(%d)", int(k))
	}
}

// Severity classifies how much of the stream an error takes down with
// it: fine, warning, recoverable, or fatal.
type Severity int

const (
	// Fine means no error occurred.
	Fine Severity = iota
	// Warning means the message is weird but not wrong; processing
	// continues (e.g. a warn-once for an unrecognized template id).
	Warning
	// Recoverable means the current message (or the current template/data
	// set within it) is discarded, but the stream continues with the next
	// message.
	Recoverable
	// Fatal means the entire stream must be abandoned.
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Fine:
		return "fine"
	case Warning:
		return "warning"
	case Recoverable:
		return "recoverable"
	case Fatal:
		return "fatal"
	default:
		return fmt.Sprintf("ferr.Severity(%d)", int(s))
	}
}

// Error is the error context threaded through the decode pipeline: a kind
// and severity, the byte offset at which it was detected (within the
// current message and, if applicable, the current set), and an optional
// wrapped cause. It implements error and Unwrap so callers can use
// errors.Is/errors.As against Kind-specific sentinels if they wish, though
// the common case is to switch on Kind directly.
type Error struct {
	Kind     Kind
	Severity Severity
	// MessageOffset is the byte offset into the current message at which
	// the error was detected.
	MessageOffset int
	// SetOffset is the byte offset into the current set, or -1 if the
	// error was detected outside of any set (e.g. in the message header).
	SetOffset int
	Detail    string
	Err       error
}

// New builds an Error with no wrapped cause and no set offset.
func New(kind Kind, severity Severity, messageOffset int, detail string) *Error {
	return &Error{Kind: kind, Severity: severity, MessageOffset: messageOffset, SetOffset: -1, Detail: detail}
}

// Wrap builds an Error around an existing error, preserving it for Unwrap.
func Wrap(kind Kind, severity Severity, messageOffset int, err error) *Error {
	return &Error{Kind: kind, Severity: severity, MessageOffset: messageOffset, SetOffset: -1, Err: err}
}

// WithSetOffset returns a copy of e with SetOffset set, for the common
// pattern of a low-level decode function raising an error without
// knowing the enclosing set's position, and a caller higher up the stack
// filling it in.
func (e *Error) WithSetOffset(off int) *Error {
	cp := *e
	cp.SetOffset = off
	return &cp
}

func (e *Error) Error() string {
	if e.SetOffset >= 0 {
		if e.Detail != "" {
			return fmt.Sprintf("%s at message offset %d, set offset %d: %s", e.Kind, e.MessageOffset, e.SetOffset, e.Detail)
		}
		return fmt.Sprintf("%s at message offset %d, set offset %d: %v", e.Kind, e.MessageOffset, e.SetOffset, e.Err)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s at message offset %d: %s", e.Kind, e.MessageOffset, e.Detail)
	}
	return fmt.Sprintf("%s at message offset %d: %v", e.Kind, e.MessageOffset, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Fatal reports whether e's severity terminates the entire stream.
func (e *Error) Fatal() bool { return e.Severity == Fatal }

// Recoverable reports whether e's severity only discards the current
// message (or set) while leaving the stream intact.
func (e *Error) Recoverable() bool { return e.Severity == Recoverable }
