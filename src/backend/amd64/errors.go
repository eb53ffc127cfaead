package amd64

import (
	"errors"
	"fmt"
)

// Sentinel errors for the fatal diagnostics this backend can raise. Every
// error here terminates code generation; there is no recovery story, and
// the engine is single-threaded so nothing needs to collect errors from
// parallel workers.
var (
	ErrUnknownVariable      = errors.New("amd64: unknown variable")
	ErrUnknownFunction      = errors.New("amd64: unknown function")
	ErrReturnOutsideFunction = errors.New("amd64: return outside function")
	ErrMissingReturn        = errors.New("amd64: function body missing return")
	ErrIllegalLHS           = errors.New("amd64: illegal assignment target")
	ErrNullValue            = errors.New("amd64: null value reached codegen")
	ErrByteWidthUnsupported = errors.New("amd64: byte width unsupported by register renderer")
	ErrTooManyParameters    = errors.New("amd64: too many parameters")
	ErrUnsupportedOperator  = errors.New("amd64: unsupported operator")
)

// Errorf wraps sentinel with a formatted diagnostic naming the offending
// variable/function, preserving errors.Is(err, sentinel) for callers.
func Errorf(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, sentinel)...)
}
