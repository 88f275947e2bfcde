package vm

import (
	"github.com/vela-lang/vela/internal/bytecode"
	"github.com/vela-lang/vela/internal/rterror"
	"github.com/vela-lang/vela/internal/typelattice"
	"github.com/vela-lang/vela/internal/value"
)

// Upvalue is a boxed variable shared between a closure and the frame that
// created it, so mutating a captured variable from inside the closure body
// is visible to the enclosing scope and vice versa.
type Upvalue struct {
	Val value.Value
}

// activeHandler is one live entry on a Frame's exception-handler stack,
// pushed by Try and popped by PopHandler/normal fallthrough or consumed by
// Throw during unwinding (§3.3, §7).
type activeHandler struct {
	handler    bytecode.Handler
	stackDepth int // operand-stack depth to restore before running the catch body
}

// Frame is one call's activation record: its own operand stack, local
// slots, captured upvalues, bound type variables from `where`-clause
// dispatch, and the try/catch handler chain currently in scope. Mirrors
// the teacher's bytecode.CallFrame shape (IP + locals + operand stack per
// call) generalized with the handler stack and type-variable bindings this
// runtime's dispatch and exceptions need.
type Frame struct {
	Chunk    *bytecode.Chunk
	IP       int
	Locals   []value.Value
	Upvalues []*Upvalue
	Bindings map[string]typelattice.ID
	Operands []value.Value
	Handlers []activeHandler

	// FunctionName names the generic function this frame's method belongs
	// to, purely for stack-trace rendering.
	FunctionName string
}

func NewFrame(chunk *bytecode.Chunk, funcName string, bindings map[string]typelattice.ID) *Frame {
	return &Frame{
		Chunk:        chunk,
		Locals:       make([]value.Value, chunk.LocalCount),
		Bindings:     bindings,
		FunctionName: funcName,
	}
}

func (f *Frame) Push(v value.Value) { f.Operands = append(f.Operands, v) }

func (f *Frame) Pop() value.Value {
	n := len(f.Operands) - 1
	v := f.Operands[n]
	f.Operands = f.Operands[:n]
	return v
}

func (f *Frame) Peek() value.Value { return f.Operands[len(f.Operands)-1] }

func (f *Frame) fetch() bytecode.Instruction {
	i := f.Chunk.Code[f.IP]
	f.IP++
	return i
}

// frameForStackTrace converts this frame's position into a StackFrame
// entry, using the chunk's line table for the currently executing
// instruction.
func (f *Frame) frameForStackTrace() rterror.StackFrame {
	line := f.Chunk.LineFor(f.IP - 1)
	return rterror.NewStackFrame(f.FunctionName, &rterror.Position{Line: line})
}
