package tagfile

import "fmt"

// DecodeError is the single error kind produced by this package, covering
// every data-driven failure: bad magic, unsupported version, unknown tag
// ids, malformed schemas, missing definitions or fields, bitfields with
// stray bits, dangling or unfilled references, and truncated reads. There
// is no retry path; decoding stops at the first error encountered.
type DecodeError struct {
	Message string
}

func (e *DecodeError) Error() string {
	return "tagfile: invalid: " + e.Message
}

func newInvalid(format string, args ...any) *DecodeError {
	return &DecodeError{Message: fmt.Sprintf(format, args...)}
}

// NewInvalid builds a *DecodeError for callers outside this package (e.g.
// the animation sub-package), preserving the single Invalid(message) error
// taxonomy across the whole module.
func NewInvalid(format string, args ...any) *DecodeError {
	return newInvalid(format, args...)
}

// recoverInvalid turns a panic raised by the primitive reader (out of
// bounds reads, programmer-contract violations surfaced as panics) into a
// *DecodeError, so no panic escapes a public entry point. Mirrors the
// internal-panic / external-error split kungfusheep-glint/reader.go uses,
// without needing recover() at every primitive call site.
func recoverInvalid(err *error) {
	if r := recover(); r != nil {
		switch v := r.(type) {
		case *DecodeError:
			*err = v
		case error:
			*err = newInvalid("%s", v.Error())
		default:
			*err = newInvalid("%v", v)
		}
	}
}
