package errors

import (
	"fmt"
	"net/http"
	"reflect"
)

const (
	// internalCode clubs together all unclassified errors. These are
	// never described to the client beyond a generic message.
	internalCode    uint32 = 1
	internalLabel          = "internal"
	internalMessage        = "internal error"
)

// Stable machine readable labels, keyed by root error code. Clients
// branch on these, so they must never change once published.
var httpLabels = map[uint32]string{
	ErrInvalidAddress.code:  "invalid_address",
	ErrNotFound.code:        "account_not_found",
	ErrNotBurned.code:       "account_not_burned",
	ErrAlreadyMigrated.code: "already_migrated",
	ErrLockTimeout.code:     "lock_timeout",
}

var httpStatuses = map[uint32]int{
	ErrInvalidAddress.code:  http.StatusBadRequest,
	ErrNotFound.code:        http.StatusNotFound,
	ErrNotBurned.code:       http.StatusBadRequest,
	ErrAlreadyMigrated.code: http.StatusConflict,
	ErrLockTimeout.code:     http.StatusServiceUnavailable,
}

// HTTPInfo translates an error into what can cross the HTTP boundary:
// a status code, a stable machine readable label and a message. Any
// error that does not wrap a registered root is categorized as
// internal and its message is replaced with a generic one, unless
// running in debug mode where the full description (including a
// stacktrace, when present) is exposed.
func HTTPInfo(err error, debug bool) (status int, label, message string) {
	if errIsNil(err) {
		return http.StatusOK, "", ""
	}

	code := errCode(err)
	if l, ok := httpLabels[code]; ok {
		if debug {
			return httpStatuses[code], l, fmt.Sprintf("%+v", err)
		}
		return httpStatuses[code], l, err.Error()
	}

	if debug {
		return http.StatusInternalServerError, internalLabel, fmt.Sprintf("%+v", err)
	}
	// Hide the original message of internal errors. It was already
	// logged with full context server side.
	return http.StatusInternalServerError, internalLabel, internalMessage
}

type coder interface {
	Code() uint32
}

// errCode tests if the given error wraps a registered root and returns
// its code. This function is testing for the causer interface as well
// and unwraps the error.
func errCode(err error) uint32 {
	if errIsNil(err) {
		return 0
	}

	for {
		if c, ok := err.(coder); ok {
			return c.Code()
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return internalCode
		}
	}
}

// errIsNil returns true if the value represented by the given error is
// nil.
//
// Most of the time a simple == check is enough. There is a very
// narrow spectrum of cases (mostly in tests) where a more
// sophisticated check is required.
func errIsNil(err error) bool {
	if err == nil {
		return true
	}
	if val := reflect.ValueOf(err); val.Kind() == reflect.Ptr {
		return val.IsNil()
	}
	return false
}
