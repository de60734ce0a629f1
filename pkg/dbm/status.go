package dbm

import (
	"fmt"

	"github.com/Ratio1/dbm_sdk_go/internal/rpcx"
	"github.com/Ratio1/dbm_sdk_go/internal/wire"
)

// StatusCode enumerates operation outcomes. Values match the wire.
type StatusCode int32

const (
	Success StatusCode = iota
	UnknownError
	SystemError
	NotImplementedError
	PreconditionError
	InvalidArgumentError
	CanceledError
	NotFoundError
	PermissionError
	InfeasibleError
	DuplicationError
	BrokenDataError
	NetworkError
	ApplicationError
)

var codeNames = [...]string{
	"SUCCESS",
	"UNKNOWN_ERROR",
	"SYSTEM_ERROR",
	"NOT_IMPLEMENTED_ERROR",
	"PRECONDITION_ERROR",
	"INVALID_ARGUMENT_ERROR",
	"CANCELED_ERROR",
	"NOT_FOUND_ERROR",
	"PERMISSION_ERROR",
	"INFEASIBLE_ERROR",
	"DUPLICATION_ERROR",
	"BROKEN_DATA_ERROR",
	"NETWORK_ERROR",
	"APPLICATION_ERROR",
}

// CodeName returns the name of code, or "unknown" for values outside the
// enumeration.
func CodeName(code StatusCode) string {
	if code >= 0 && int(code) < len(codeNames) {
		return codeNames[code]
	}
	return "unknown"
}

// ParseCodeName is the inverse of CodeName.
func ParseCodeName(name string) (StatusCode, bool) {
	for i, n := range codeNames {
		if n == name {
			return StatusCode(i), true
		}
	}
	return UnknownError, false
}

func (c StatusCode) String() string {
	return CodeName(c)
}

// Status is the result of an operation. A nil *Status reads as success.
type Status struct {
	Code    StatusCode
	Message string
}

// NewStatus builds a status. Extra message arguments are concatenated.
func NewStatus(code StatusCode, message ...string) *Status {
	s := &Status{}
	s.Set(code, message...)
	return s
}

// Set overwrites the status in place.
func (s *Status) Set(code StatusCode, message ...string) {
	s.Code = code
	s.Message = ""
	for _, m := range message {
		s.Message += m
	}
}

// Join adopts other only while s is still a success, so the first failure
// is never overwritten.
func (s *Status) Join(other *Status) {
	if s.Code != Success || other == nil {
		return
	}
	s.Code = other.Code
	s.Message = other.Message
}

func (s *Status) IsOK() bool {
	return s == nil || s.Code == Success
}

// GetCode returns the code, treating nil as success.
func (s *Status) GetCode() StatusCode {
	if s == nil {
		return Success
	}
	return s.Code
}

// Equals compares codes only.
func (s *Status) Equals(other *Status) bool {
	return s.GetCode() == other.GetCode()
}

func (s *Status) String() string {
	if s == nil {
		return CodeName(Success)
	}
	if s.Message == "" {
		return CodeName(s.Code)
	}
	return CodeName(s.Code) + ": " + s.Message
}

// Err returns nil on success and a *StatusError otherwise.
func (s *Status) Err() error {
	if s.IsOK() {
		return nil
	}
	return &StatusError{status: *s}
}

// OrDie panics with a *StatusError when s is not a success.
func (s *Status) OrDie() {
	if err := s.Err(); err != nil {
		panic(err)
	}
}

// StatusError carries a failed Status through error-returning code paths.
type StatusError struct {
	status Status
}

// NewStatusError builds a StatusError from a code and optional message.
func NewStatusError(code StatusCode, message ...string) *StatusError {
	return &StatusError{status: *NewStatus(code, message...)}
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("dbm: %s", e.status.String())
}

// Status returns the wrapped status verbatim.
func (e *StatusError) Status() *Status {
	s := e.status
	return &s
}

// Is matches any *StatusError with the same code.
func (e *StatusError) Is(target error) bool {
	t, ok := target.(*StatusError)
	return ok && t.status.Code == e.status.Code
}

func fromProto(p *wire.StatusProto) *Status {
	if p == nil {
		return NewStatus(Success)
	}
	return NewStatus(StatusCode(p.Code), p.Message)
}

func networkStatus(err error) *Status {
	return NewStatus(NetworkError, rpcx.Normalize(err).Error())
}

func notConnected() *Status {
	return NewStatus(PreconditionError, "not opened connection")
}
