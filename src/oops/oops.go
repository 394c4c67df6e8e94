package oops

import (
	"fmt"

	"github.com/go-stack/stack"
	"github.com/rs/zerolog"
)

// Error annotates a wrapped error with a message and the call stack at the
// point it was created. The pipeline wraps one of the pngerr sentinels in
// every Error it returns, so errors.Is keeps working across the wrapping.
type Error struct {
	Message string
	Wrapped error
	Stack   CallStack
}

func (e *Error) Error() string {
	if e.Wrapped == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Wrapped)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

type CallStack []StackFrame

func (s CallStack) MarshalZerologArray(a *zerolog.Array) {
	for _, frame := range s {
		a.Object(frame)
	}
}

type StackFrame struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}

func (f StackFrame) MarshalZerologObject(e *zerolog.Event) {
	e.
		Str("file", f.File).
		Int("line", f.Line).
		Str("function", f.Function)
}

var ZerologStackMarshaler = func(err error) interface{} {
	if asOops, ok := err.(*Error); ok {
		return asOops.Stack
	}
	return nil
}

// Trace captures the call stack starting at the caller of Trace, minus
// runtime frames.
func Trace() CallStack {
	return trace(1)
}

// TraceFrom is Trace with skip more frames dropped from the top, for helpers
// that should not appear in their own traces.
func TraceFrom(skip int) CallStack {
	return trace(skip + 1)
}

// trace drops itself and skip further frames.
func trace(skip int) CallStack {
	calls := stack.Trace().TrimRuntime()
	if skip+1 > len(calls) {
		return CallStack{}
	}
	calls = calls[skip+1:]
	frames := make(CallStack, len(calls))
	for i, call := range calls {
		callFrame := call.Frame()
		frames[i] = StackFrame{
			File:     callFrame.File,
			Line:     callFrame.Line,
			Function: callFrame.Function,
		}
	}
	return frames
}

func New(wrapped error, format string, args ...interface{}) error {
	return &Error{
		Message: fmt.Sprintf(format, args...),
		Wrapped: wrapped,
		Stack:   trace(1),
	}
}
