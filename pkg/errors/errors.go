// Package errors carries coded, structured errors across the library's seams.
// An Error pairs a classification code with the wrapped cause and a bag of
// key-value context, so a caller can switch on what went wrong without
// parsing message strings.
package errors

import (
	"fmt"
	"sort"
	"strings"
)

// ErrorCode classifies what went wrong.
type ErrorCode int

const (
	Unknown ErrorCode = iota

	// InvalidInput marks arguments or state the caller got wrong.
	InvalidInput

	// Parsing marks malformed input files: configs, register patterns,
	// serialized dumps.
	Parsing

	// EmulationFailed and RegisterUnavailable are reserved for execution
	// adapters, which wrap backend infrastructure failures distinct from
	// the faults a candidate earns on its own.
	EmulationFailed
	RegisterUnavailable
)

func (c ErrorCode) String() string {
	switch c {
	case InvalidInput:
		return "invalid input"
	case Parsing:
		return "parsing"
	case EmulationFailed:
		return "emulation failed"
	case RegisterUnavailable:
		return "register unavailable"
	default:
		return "unknown"
	}
}

// Fields carries structured context about an error.
type Fields map[string]interface{}

// Error is the coded error type. Construct one with New or Wrap and attach
// context with WithFields; the fields live on the error, not in the message,
// so tests and callers read them back without string matching.
type Error struct {
	code     ErrorCode
	message  string
	original error
	fields   Fields
}

// Error renders the message, the cause, and the fields in sorted key order,
// so the same failure always prints the same way.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.message)
	if e.original != nil {
		if e.message != "" {
			b.WriteString(": ")
		}
		b.WriteString(e.original.Error())
	}

	if len(e.fields) > 0 {
		keys := make([]string, 0, len(e.fields))
		for k := range e.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString(" [")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.fields[k])
		}
		b.WriteString("]")
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.original
}

func (e *Error) Code() ErrorCode {
	return e.code
}

// Fields returns a copy of the error's context. Mutating the copy does not
// touch the error.
func (e *Error) Fields() Fields {
	fields := make(Fields, len(e.fields))
	for k, v := range e.fields {
		fields[k] = v
	}
	return fields
}

// Is matches errors by code, so errors.Is(err, New(Parsing, "")) asks
// "was this a parse failure" regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.code == t.code
}

// As extracts the structured error for callers that want the code or fields.
func (e *Error) As(target interface{}) bool {
	p, ok := target.(**Error)
	if !ok {
		return false
	}
	*p = e
	return true
}

// New creates a coded error with no cause.
func New(code ErrorCode, message string) error {
	return &Error{code: code, message: message}
}

// Wrap classifies an existing error. A nil cause stays nil, so call sites
// can wrap unconditionally.
func Wrap(err error, code ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	return &Error{code: code, message: message, original: err}
}

// WithFields attaches context to an error. On an already-coded error the
// fields merge, newer keys winning; any other error is first wrapped under
// Unknown. A nil error stays nil.
func WithFields(err error, fields Fields) error {
	if err == nil {
		return nil
	}

	if e, ok := err.(*Error); ok {
		merged := make(Fields, len(e.fields)+len(fields))
		for k, v := range e.fields {
			merged[k] = v
		}
		for k, v := range fields {
			merged[k] = v
		}
		return &Error{code: e.code, message: e.message, original: e.original, fields: merged}
	}

	return &Error{code: Unknown, original: err, fields: fields}
}
