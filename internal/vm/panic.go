package vm

import (
	"fmt"
	"strings"

	"lisle/internal/diag"
	"lisle/internal/source"
)

// PanicCode identifies a runtime failure.
type PanicCode int

// Stable codes - do not change values.
const (
	// heap integrity
	PanicUseAfterFree      PanicCode = 1101 // VM1101: use after free
	PanicDoubleFree        PanicCode = 1102 // VM1102: double release
	PanicInvalidHandle     PanicCode = 1103 // VM1103: invalid handle
	PanicRefcountUnderflow PanicCode = 1104 // VM1104: refcount underflow

	// names
	PanicUnboundName      PanicCode = 2001 // VM2001: unbound identifier
	PanicReservedName     PanicCode = 2002 // VM2002: 'globals' cannot be rebound
	PanicFunctionNotFound PanicCode = 2003 // VM2003: entry function not found

	// types and values
	PanicTypeMismatch   PanicCode = 2101 // VM2101: operand kinds do not fit
	PanicArity          PanicCode = 2102 // VM2102: wrong argument count
	PanicNotCallable    PanicCode = 2103 // VM2103: call of a non-function
	PanicZeroStep       PanicCode = 2104 // VM2104: for step is zero
	PanicOutOfBounds    PanicCode = 2201 // VM2201: index out of range
	PanicConversion     PanicCode = 2301 // VM2301: unparsable coercion input
	PanicDivisionByZero PanicCode = 2401 // VM2401: division or modulo by zero

	// control flow
	PanicBreakOutside  PanicCode = 3001 // VM3001: break without loop
	PanicReturnOutside PanicCode = 3002 // VM3002: return without function
	PanicCallDepth     PanicCode = 3003 // VM3003: call depth exceeded

	// host
	PanicHostFailed      PanicCode = 3101 // VM3101: host call failed
	PanicUnknownFunction PanicCode = 3102 // VM3102: no such host function
	PanicCanceled        PanicCode = 3103 // VM3103: execution canceled
)

// String returns the code as "VM1101".
func (c PanicCode) String() string {
	return fmt.Sprintf("VM%d", c)
}

// Kind maps the code to its error class.
func (c PanicCode) Kind() diag.Kind {
	switch {
	case c >= 2001 && c < 2100:
		return diag.KindName
	case c == PanicOutOfBounds:
		return diag.KindIndex
	case c == PanicConversion:
		return diag.KindConversion
	case c == PanicDivisionByZero:
		return diag.KindArithmetic
	case c >= 2100 && c < 2200:
		return diag.KindType
	case c >= 3001 && c < 3100:
		return diag.KindControlFlow
	case c >= 3101 && c < 3200:
		return diag.KindHost
	}
	return diag.KindUnknown
}

// BacktraceFrame is one active function call, innermost first.
type BacktraceFrame struct {
	FuncName string
	Line     uint32
}

// VMError is a runtime failure with the statement it happened in and the
// function calls that were active.
type VMError struct {
	Code      PanicCode
	Message   string
	Line      uint32
	Stmt      string
	Backtrace []BacktraceFrame
	Cause     error
}

func newVMError(code PanicCode, msg string) *VMError {
	return &VMError{Code: code, Message: msg}
}

// Error implements the error interface.
func (e *VMError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind().String())
	sb.WriteString(": ")
	if e.Line > 0 {
		fmt.Fprintf(&sb, "line %d: ", e.Line)
	}
	sb.WriteString(e.Message)
	if e.Stmt != "" {
		sb.WriteString(" (in ")
		sb.WriteString(e.Stmt)
		sb.WriteString(")")
	}
	return sb.String()
}

func (e *VMError) Unwrap() error { return e.Cause }

// Kind reports the error class.
func (e *VMError) Kind() diag.Kind { return e.Code.Kind() }

// Format renders the error with its backtrace:
//
//	panic VM2201: index 3 out of range [0, 2)
//	at line 7 (Let)
//	backtrace:
//	  0: get at line 7
//	  1: <main> at line 12
func (e *VMError) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "panic %s: %s\n", e.Code, e.Message)
	if e.Line > 0 {
		fmt.Fprintf(&sb, "at line %d", e.Line)
		if e.Stmt != "" {
			fmt.Fprintf(&sb, " (%s)", e.Stmt)
		}
		sb.WriteString("\n")
	}
	if len(e.Backtrace) > 0 {
		sb.WriteString("backtrace:\n")
		for i, f := range e.Backtrace {
			fmt.Fprintf(&sb, "  %d: %s at line %d\n", i, f.FuncName, f.Line)
		}
	}
	return sb.String()
}

// Diagnostic converts the error for diag.Bag based reporting.
func (e *VMError) Diagnostic() diag.Diagnostic {
	d := diag.Diagnostic{
		Severity: diag.SevError,
		Message:  fmt.Sprintf("%s %s: %s", e.Code, e.Kind(), e.Message),
		Line:     e.Line,
	}
	for _, f := range e.Backtrace {
		d = d.WithNote(f.Line, source.Span{}, "called from "+f.FuncName)
	}
	return d
}

// ExitRequest is returned by a host to stop the program with an exit code.
// The engine unwinds every frame and Session.Run reports the code through
// Session.ExitCode.
type ExitRequest struct {
	Code int
}

func (e *ExitRequest) Error() string {
	return fmt.Sprintf("exit %d", e.Code)
}
