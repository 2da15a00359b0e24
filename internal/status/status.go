// Package status defines the structured, non-exception error surface used
// throughout the compiler and evaluator, and a small leveled logger used by
// the engine and cache to report diagnostics.
package status

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code distinguishes the four error taxonomies named in spec §7.
type Code int

const (
	// OK indicates success.
	OK Code = iota
	// Invalid indicates caller misuse: wrong schema, empty batch, too-wide
	// batch, null output pointer, malformed buffer.
	Invalid
	// ExpressionValidationError indicates a §4.2 validation failure.
	ExpressionValidationError
	// CodeGenError indicates the back-end refused to compile the module.
	CodeGenError
	// ExecutionError indicates a runtime failure reported by an intrinsic
	// through the execution context.
	ExecutionError
)

func (c Code) String() string {
	switch c {
	case OK:
		return "OK"
	case Invalid:
		return "Invalid"
	case ExpressionValidationError:
		return "ExpressionValidationError"
	case CodeGenError:
		return "CodeGenError"
	case ExecutionError:
		return "ExecutionError"
	default:
		return "Unknown"
	}
}

// Status is a structured result that is never represented as a panic.
type Status struct {
	Code    Code
	Message string
	// Node names the offending expression node, when known (§4.2).
	Node string
	cause error
}

// Error implements the error interface so a *Status can be returned anywhere
// a plain error is expected.
func (s *Status) Error() string {
	if s == nil {
		return "OK"
	}
	if s.Node != "" {
		return fmt.Sprintf("%s: %s (at %s)", s.Code, s.Message, s.Node)
	}
	return fmt.Sprintf("%s: %s", s.Code, s.Message)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (s *Status) Unwrap() error {
	if s == nil {
		return nil
	}
	return s.cause
}

// Ok reports whether the status represents success. A nil *Status is OK.
func (s *Status) Ok() bool {
	return s == nil || s.Code == OK
}

// New builds a Status, wrapping a stack trace via pkg/errors so a make-time
// failure retains a trace back to the failing compiler stage.
func New(code Code, format string, args ...interface{}) *Status {
	msg := fmt.Sprintf(format, args...)
	return &Status{Code: code, Message: msg, cause: errors.New(msg)}
}

// NewAt is New with an offending node name attached, per §4.2's contract
// that the first validation failure names the offending node.
func NewAt(code Code, node, format string, args ...interface{}) *Status {
	s := New(code, format, args...)
	s.Node = node
	return s
}

// Wrap attaches a Code and stack-preserving context to an existing error.
func Wrap(code Code, err error, format string, args ...interface{}) *Status {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	return &Status{Code: code, Message: msg + ": " + err.Error(), cause: errors.Wrap(err, msg)}
}

// Invalidf is shorthand for New(Invalid, ...).
func Invalidf(format string, args ...interface{}) *Status { return New(Invalid, format, args...) }

// ExecutionErrorf is shorthand for New(ExecutionError, ...).
func ExecutionErrorf(format string, args ...interface{}) *Status {
	return New(ExecutionError, format, args...)
}
