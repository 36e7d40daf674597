package errors

import (
	"fmt"
	"os"
	"strings"
)

// ScriptrtError is the interface implemented by all Scriptrt errors.
type ScriptrtError interface {
	error // Embed the standard error interface
	Pos() Position
	Kind() string // e.g., "Syntax", "Type", "Compile", "Runtime"
	// Message returns the specific error message without position info.
	// This might be useful if the caller wants to format the error differently.
	Message() string
	// Backtrace returns the call stack captured when the error was raised,
	// innermost frame first. May be empty for errors raised before any
	// frame existed (e.g. a top-level stack overflow).
	Backtrace() []StackFrame
}

// StackFrame is one entry of a captured call-stack backtrace: the
// function name, source path and source position execution was at when
// the frame below it was entered.
type StackFrame struct {
	FunctionName string
	Path         string
	Line         int
	Column       int
}

// --- Concrete Error Types ---

// SyntaxError represents an error during lexing or parsing.
type SyntaxError struct {
	Position
	Msg   string
	Trace []StackFrame
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Syntax Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *SyntaxError) Pos() Position          { return e.Position }
func (e *SyntaxError) Kind() string           { return "Syntax" }
func (e *SyntaxError) Message() string        { return e.Msg }
func (e *SyntaxError) Backtrace() []StackFrame { return e.Trace }

// TypeError represents an error during static type checking.
type TypeError struct {
	Position
	Msg   string
	Trace []StackFrame
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("Type Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *TypeError) Pos() Position          { return e.Position }
func (e *TypeError) Kind() string           { return "Type" }
func (e *TypeError) Message() string        { return e.Msg }
func (e *TypeError) Backtrace() []StackFrame { return e.Trace }

// CompileError represents an error during bytecode compilation.
type CompileError struct {
	Position
	Msg   string
	Trace []StackFrame
}

func (e *CompileError) Error() string {
	// Compile errors might sometimes lack precise position,
	// but we include it for consistency.
	// We might refine formatting later based on whether Pos is zero.
	return fmt.Sprintf("Compile Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *CompileError) Pos() Position          { return e.Position }
func (e *CompileError) Kind() string           { return "Compile" }
func (e *CompileError) Message() string        { return e.Msg }
func (e *CompileError) Backtrace() []StackFrame { return e.Trace }

// RuntimeError represents an error during program execution in the VM.
type RuntimeError struct {
	// Position might be less precise for runtime errors, potentially
	// pointing to the start of the operation that failed rather than
	// a specific token. We'll still store it.
	Position
	Msg   string
	Trace []StackFrame
}

func (e *RuntimeError) Error() string {
	// Similar to CompileError, we might refine formatting based on Position validity.
	return fmt.Sprintf("Runtime Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *RuntimeError) Pos() Position          { return e.Position }
func (e *RuntimeError) Kind() string           { return "Runtime" }
func (e *RuntimeError) Message() string        { return e.Msg }
func (e *RuntimeError) Backtrace() []StackFrame { return e.Trace }

// --- Helper for creating errors ---
// (We might add helper functions here later if needed, e.g., NewSyntaxError)

// OpaqueError is the host-facing, serializable form of a ScriptrtError: the
// "opaque error reference" spec.md §7/§8 requires every fallible engine
// entry point to be able to hand back and later reconstruct, with the
// backtrace surviving the round trip intact.
type OpaqueError struct {
	Kind      string
	Message   string
	Position  Position
	Backtrace []StackFrame
}

// ToOpaque converts a ScriptrtError into its opaque, host-storable form.
func ToOpaque(err ScriptrtError) OpaqueError {
	return OpaqueError{
		Kind:      err.Kind(),
		Message:   err.Message(),
		Position:  err.Pos(),
		Backtrace: err.Backtrace(),
	}
}

// FromOpaque reconstructs a ScriptrtError from its opaque form, preserving
// the backtrace captured at ToOpaque time. Unrecognized kinds reconstruct
// as a RuntimeError rather than panicking, since an opaque value may have
// crossed a host boundary that doesn't know about every Kind.
func FromOpaque(o OpaqueError) ScriptrtError {
	switch o.Kind {
	case "Syntax":
		return &SyntaxError{Position: o.Position, Msg: o.Message, Trace: o.Backtrace}
	case "Type":
		return &TypeError{Position: o.Position, Msg: o.Message, Trace: o.Backtrace}
	case "Compile":
		return &CompileError{Position: o.Position, Msg: o.Message, Trace: o.Backtrace}
	default:
		return &RuntimeError{Position: o.Position, Msg: o.Message, Trace: o.Backtrace}
	}
}

// DisplayErrors prints each error to stderr, one per line, annotated with its
// kind and, when sourceCode is non-empty and the error's position falls
// within it, the offending source line with a caret under the column.
func DisplayErrors(errs []ScriptrtError, sourceCode string) {
	var lines []string
	if sourceCode != "" {
		lines = strings.Split(sourceCode, "\n")
	}

	for _, e := range errs {
		pos := e.Pos()
		fmt.Fprintf(os.Stderr, "%s Error at %d:%d: %s\n", e.Kind(), pos.Line, pos.Column, e.Message())

		if pos.Line >= 1 && pos.Line <= len(lines) {
			srcLine := lines[pos.Line-1]
			fmt.Fprintf(os.Stderr, "  %s\n", srcLine)
			if pos.Column >= 1 {
				fmt.Fprintf(os.Stderr, "  %s^\n", strings.Repeat(" ", pos.Column-1))
			}
		}
	}
}
