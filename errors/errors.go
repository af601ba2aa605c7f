package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidAddress is returned when an address string does not
	// pass the syntactic validation of the ledger encoding.
	ErrInvalidAddress = Register(2, "invalid address")

	// ErrNotFound is returned when the requested account does not
	// exist on the queried ledger.
	ErrNotFound = Register(3, "account not found")

	// ErrNotBurned is returned when the old ledger account was not
	// deactivated and is therefore not eligible for migration.
	ErrNotBurned = Register(4, "account not burned")

	// ErrAlreadyMigrated is returned when a migration for the
	// address was completed before, either observed through the
	// idempotency store or lost as a write-time race on the ledger.
	ErrAlreadyMigrated = Register(5, "already migrated")

	// ErrLockTimeout is returned when the per-address lock could not
	// be acquired within its bound. No ledger state was touched.
	ErrLockTimeout = Register(6, "lock acquisition timed out")

	// ErrInvalidAmount is returned for balance values that cannot be
	// represented, e.g. malformed or negative ledger amounts.
	ErrInvalidAmount = Register(7, "invalid amount")

	// ErrEmpty is returned when a required value is missing.
	ErrEmpty = Register(8, "value is empty")

	// ErrState is returned when an external collaborator responds
	// with a shape the service cannot interpret.
	ErrState = Register(9, "invalid state")

	// ErrPanic is only set when we recover from a panic, so we know
	// to redact potentially sensitive system info.
	ErrPanic = Register(111222, "panic")
)

// Register returns an error instance that should be used as the base
// for creating error instances during runtime.
//
// Popular root errors are declared in this package. This function
// ensures that no error code is used twice. Attempt to reuse an error
// code results in a panic.
//
// Use this function only during a program startup phase.
func Register(code uint32, description string) *Error {
	if e, ok := usedCodes[code]; ok {
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, e.desc))
	}
	err := &Error{
		code: code,
		desc: description,
	}
	usedCodes[err.code] = err
	return err
}

// usedCodes is keeping track of used codes to ensure their uniqueness.
// No two error instances should share the same error code.
var usedCodes = map[uint32]*Error{
	1: nil, // Code 1 is reserved for unclassified internal errors.
}

// Error represents a root error.
//
// Each error instance created during the runtime should wrap one of
// the declared root errors. This allows error tests and returning all
// errors to the client in a safe manner.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

// Code returns the stable numeric identifier of this error class.
func (e Error) Code() uint32 {
	return e.code
}

// New returns a new error. The returned instance has the root cause
// set to this error, so the two lines below are equal:
//   e.New("my description")
//   Wrap(e, "my description")
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Newf is basically New with formatting capabilities.
func (e *Error) Newf(description string, args ...interface{}) error {
	return e.New(fmt.Sprintf(description, args...))
}

// Is checks if the given error instance is of this kind. This involves
// unwrapping the error using the Cause method when available.
func (kind *Error) Is(err error) bool {
	// Reflect usage is necessary to correctly compare with
	// a nil implementation of an error.
	if kind == nil {
		if err == nil {
			return true
		}
		return reflect.ValueOf(err).IsNil()
	}

	for {
		if err == kind {
			return true
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return false
		}
	}
}

// Wrap extends the given error with an additional description.
//
// If err is nil, this returns nil, avoiding the need for an if
// statement when wrapping an error returned at the end of a function.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}

	// If this error does not carry the stacktrace information yet,
	// attach one. This should be done only once per error at the
	// lowest frame possible (most inner wrap).
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}

	return &wrappedError{
		parent: err,
		msg:    description,
	}
}

// Wrapf extends the given error with an additional description,
// formatting the input as specified.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

type wrappedError struct {
	// This error layer description.
	msg string
	// The underlying error that triggered this one.
	parent error
}

func (e *wrappedError) Error() string {
	return fmt.Sprintf("%s: %s", e.msg, e.parent.Error())
}

func (e *wrappedError) Cause() error {
	return e.parent
}

func (e *wrappedError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "%+v\n", e.parent)
			fmt.Fprint(s, e.msg)
			return
		}
		fallthrough
	case 's':
		fmt.Fprint(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

// Recover captures a panic and stops its propagation. If a panic
// happens it is transformed into an ErrPanic instance and assigned to
// the given error. Call this function using defer.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

// causer is an interface implemented by an error that supports
// wrapping. Use it to test if an error wraps another error instance.
type causer interface {
	Cause() error
}

// stackTracer is implemented by errors carrying a pkg/errors call
// stack.
type stackTracer interface {
	error
	StackTrace() errors.StackTrace
}

// stackTrace returns the call stack attached to the error, unwrapping
// as necessary, or nil when no layer carries one.
func stackTrace(err error) errors.StackTrace {
	for {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return nil
		}
	}
}
