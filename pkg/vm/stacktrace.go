package vm

import (
	"fmt"
	"strings"

	"scriptrt/pkg/errors"
)

// CaptureStackFrames walks the VM's live call frames, innermost first, and
// returns the backtrace spec.md's opaque-error contract (§7, §8) requires
// errors to carry: function name, source path and position for each frame.
//
// A Chunk does not currently carry its originating file's path (an
// interpreter session compiles one source unit at a time), so Path is
// fixed at "<script>" for every frame; per-instruction column tracking
// does not exist either (see pkg/vm/bytecode.go's Lines slice), so Column
// is always 0. Both are named gaps rather than fabricated precision.
func (vm *VM) CaptureStackFrames() []errors.StackFrame {
	frames := make([]errors.StackFrame, 0, vm.frameCount)
	for i := vm.frameCount - 1; i >= 0; i-- {
		frame := &vm.frames[i]
		if frame.closure == nil || frame.closure.Fn == nil {
			continue
		}
		fn := frame.closure.Fn
		line := 0
		if fn.Chunk != nil {
			instructionPos := frame.ip - 1
			if instructionPos >= 0 && instructionPos < len(fn.Chunk.Lines) {
				line = fn.Chunk.GetLine(instructionPos)
			} else if frame.ip >= 0 && frame.ip < len(fn.Chunk.Lines) {
				line = fn.Chunk.GetLine(frame.ip)
			}
		}
		name := fn.Name
		if name == "" {
			name = "<anonymous>"
		}
		frames = append(frames, errors.StackFrame{
			FunctionName: name,
			Path:         "<script>",
			Line:         line,
			Column:       0,
		})
	}
	return frames
}

// CaptureStackTrace renders the current call stack as a V8-style multi-line
// string, used both for debug logging and for the "stack" property attached
// to thrown Error instances.
func (vm *VM) CaptureStackTrace() string {
	frames := vm.CaptureStackFrames()
	if len(frames) == 0 {
		return ""
	}
	var b strings.Builder
	for _, f := range frames {
		fmt.Fprintf(&b, "    at %s (%s:%d)\n", f.FunctionName, f.Path, f.Line)
	}
	return strings.TrimRight(b.String(), "\n")
}
