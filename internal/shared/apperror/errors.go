// Package apperror defines the typed outcomes returned by the parking core.
// Transports (HTTP, Kafka) map these to their own representation; the core
// itself never performs transport specific actions.
package apperror

import (
	"errors"
	"fmt"
)

// Code identifies a business or resource-state outcome.
type Code string

const (
	CodeGarageNotFound       Code = "GARAGE_NOT_FOUND"
	CodeNoDefaultGarage      Code = "NO_DEFAULT_GARAGE"
	CodeSectorNotFound       Code = "SECTOR_NOT_FOUND"
	CodeSectorFull           Code = "SECTOR_FULL"
	CodeVehicleAlreadyActive Code = "VEHICLE_ALREADY_ACTIVE"
	CodeNoActiveSession      Code = "NO_ACTIVE_SESSION"
	CodeSpotNotFound         Code = "SPOT_NOT_FOUND"
	CodeAmbiguousSpotMatch   Code = "AMBIGUOUS_SPOT_MATCH"
	CodeSpotAlreadyOccupied  Code = "SPOT_ALREADY_OCCUPIED"
	CodeNoPricingStrategy    Code = "NO_PRICING_STRATEGY"
	CodeInvalidTimeRange     Code = "INVALID_TIME_RANGE"
	CodeTransientConflict    Code = "TRANSIENT_CONFLICT"
	CodeMissingArgument      Code = "MISSING_ARGUMENT"
	CodeInvalidEvent         Code = "INVALID_EVENT"
)

// Kind groups codes by how a caller is expected to react.
type Kind string

const (
	KindNotFound    Kind = "not_found"
	KindConflict    Kind = "conflict"
	KindInvalid     Kind = "invalid"
	KindUnavailable Kind = "unavailable"
	KindInternal    Kind = "internal"
)

// Error is a typed failure. Two errors are considered equal by errors.Is
// when their codes match, so wrapped instances still match the sentinels.
type Error struct {
	Code    Code
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels, one per code.
var (
	ErrGarageNotFound       = &Error{Code: CodeGarageNotFound, Kind: KindNotFound, Message: "garage not found"}
	ErrNoDefaultGarage      = &Error{Code: CodeNoDefaultGarage, Kind: KindUnavailable, Message: "no default garage configured"}
	ErrSectorNotFound       = &Error{Code: CodeSectorNotFound, Kind: KindNotFound, Message: "sector not found"}
	ErrSectorFull           = &Error{Code: CodeSectorFull, Kind: KindConflict, Message: "sector is full"}
	ErrVehicleAlreadyActive = &Error{Code: CodeVehicleAlreadyActive, Kind: KindConflict, Message: "vehicle already has an active session"}
	ErrNoActiveSession      = &Error{Code: CodeNoActiveSession, Kind: KindNotFound, Message: "no active session for vehicle"}
	ErrSpotNotFound         = &Error{Code: CodeSpotNotFound, Kind: KindNotFound, Message: "no spot matches the coordinates"}
	ErrAmbiguousSpotMatch   = &Error{Code: CodeAmbiguousSpotMatch, Kind: KindConflict, Message: "coordinates match more than one spot"}
	ErrSpotAlreadyOccupied  = &Error{Code: CodeSpotAlreadyOccupied, Kind: KindConflict, Message: "spot is already occupied"}
	ErrNoPricingStrategy    = &Error{Code: CodeNoPricingStrategy, Kind: KindInvalid, Message: "no pricing strategy matches the occupancy"}
	ErrInvalidTimeRange     = &Error{Code: CodeInvalidTimeRange, Kind: KindInvalid, Message: "exit time is before entry time"}
	ErrTransientConflict    = &Error{Code: CodeTransientConflict, Kind: KindUnavailable, Message: "concurrent update conflict, retry later"}
	ErrMissingArgument      = &Error{Code: CodeMissingArgument, Kind: KindInvalid, Message: "missing argument"}
	ErrInvalidEvent         = &Error{Code: CodeInvalidEvent, Kind: KindInvalid, Message: "invalid event"}
)

// Wrap returns a copy of sentinel with a more specific message and an
// optional cause taken from the format arguments (%w).
func Wrap(sentinel *Error, format string, args ...interface{}) *Error {
	cause := fmt.Errorf(format, args...)
	return &Error{
		Code:    sentinel.Code,
		Kind:    sentinel.Kind,
		Message: sentinel.Message,
		Err:     cause,
	}
}

// CodeOf extracts the code of the first *Error in err's chain.
func CodeOf(err error) (Code, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code, true
	}
	return "", false
}

// KindOf returns the kind of err, KindInternal for untyped errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsRetryable reports whether err is the bounded-retry exhaustion outcome.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransientConflict)
}
