package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpaqueErrorRoundTripPreservesBacktrace(t *testing.T) {
	original := &RuntimeError{
		Position: Position{Line: 12, Column: 4},
		Msg:      "x is not a function",
		Trace: []StackFrame{
			{FunctionName: "inner", Path: "<script>", Line: 12, Column: 4},
			{FunctionName: "outer", Path: "<script>", Line: 20, Column: 1},
			{FunctionName: "<script>", Path: "<script>", Line: 25, Column: 0},
		},
	}

	opaque := ToOpaque(original)
	assert.Equal(t, "Runtime", opaque.Kind)
	assert.Equal(t, original.Msg, opaque.Message)
	assert.Equal(t, original.Position, opaque.Position)
	require.Len(t, opaque.Backtrace, 3)

	reconstructed := FromOpaque(opaque)
	require.IsType(t, &RuntimeError{}, reconstructed)
	assert.Equal(t, original.Kind(), reconstructed.Kind())
	assert.Equal(t, original.Message(), reconstructed.Message())
	assert.Equal(t, original.Pos(), reconstructed.Pos())
	assert.Equal(t, original.Backtrace(), reconstructed.Backtrace())
}

func TestOpaqueErrorRoundTripPerKind(t *testing.T) {
	cases := []ScriptrtError{
		&SyntaxError{Position: Position{Line: 1, Column: 1}, Msg: "unexpected token"},
		&TypeError{Position: Position{Line: 2, Column: 3}, Msg: "expected string"},
		&CompileError{Position: Position{Line: 5, Column: 2}, Msg: "unresolved label"},
		&RuntimeError{Position: Position{Line: 9, Column: 0}, Msg: "stack overflow"},
	}

	for _, original := range cases {
		opaque := ToOpaque(original)
		reconstructed := FromOpaque(opaque)
		assert.Equal(t, original.Kind(), reconstructed.Kind())
		assert.Equal(t, original.Message(), reconstructed.Message())
		assert.Equal(t, original.Pos(), reconstructed.Pos())
	}
}

func TestFromOpaqueUnknownKindFallsBackToRuntimeError(t *testing.T) {
	opaque := OpaqueError{Kind: "SomeFutureKind", Message: "boom", Position: Position{Line: 1}}
	reconstructed := FromOpaque(opaque)
	assert.Equal(t, "Runtime", reconstructed.Kind())
	assert.Equal(t, "boom", reconstructed.Message())
}
