package vm

import (
	"github.com/vela-lang/vela/internal/bytecode"
	"github.com/vela-lang/vela/internal/value"
)

// closure implements value.Callable for a do-block/lambda: a chunk plus
// the upvalues it captured from its defining frame, per §3.3's closure
// model. It isn't registered in the MethodTable — `map(x -> x+1, xs)`
// calls it directly rather than through dispatch, since an anonymous
// function has no generic-function name to dispatch on.
type closure struct {
	vm       *VM
	chunk    *bytecode.Chunk
	upvalues []*Upvalue
}

func (c *closure) Call(args []value.Value) (value.Value, error) {
	frame := NewFrame(c.chunk, "<closure>", nil)
	frame.Upvalues = c.upvalues
	for i := 0; i < len(args) && i < len(frame.Locals); i++ {
		frame.Locals[i] = args[i]
	}
	c.vm.pushFrame(frame)
	return c.vm.execUntil(len(c.vm.frames))
}

// makeClosure builds the upvalue array for a Closure instruction: each
// UpvalueDef either reaches into the defining frame's locals (Local) or
// forwards an upvalue the defining frame itself captured (for a closure
// nested inside another closure).
func (vm *VM) makeClosure(defining *Frame, template *bytecode.Chunk) *closure {
	ups := make([]*Upvalue, len(template.Upvalues))
	for i, def := range template.Upvalues {
		if def.Local {
			ups[i] = &Upvalue{Val: defining.Locals[def.Index]}
		} else {
			ups[i] = defining.Upvalues[def.Index]
		}
	}
	return &closure{vm: vm, chunk: template, upvalues: ups}
}
