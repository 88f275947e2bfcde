package vm

import (
	"github.com/vela-lang/vela/internal/bytecode"
	"github.com/vela-lang/vela/internal/value"
)

// step executes one instruction in frame. It returns (result, true, nil)
// when the instruction was a Return (the caller should pop the frame and
// hand result to whoever called it), or (_, false, err) on a raised
// exception for execUntil to unwind.
func (vm *VM) step(frame *Frame, instr bytecode.Instruction) (value.Value, bool, error) {
	op := instr.OpCode()
	switch op {
	case bytecode.OpLoadConst:
		frame.Push(frame.Chunk.Constants[instr.B()])
	case bytecode.OpLoadNil:
		frame.Push(value.Nothing())
	case bytecode.OpLoadMissing:
		frame.Push(value.Missing())
	case bytecode.OpLoadTrue:
		frame.Push(value.Bool(true))
	case bytecode.OpLoadFalse:
		frame.Push(value.Bool(false))

	case bytecode.OpLoadLocal:
		frame.Push(frame.Locals[instr.B()])
	case bytecode.OpStoreLocal:
		frame.Locals[instr.B()] = frame.Peek()
	case bytecode.OpLoadUpvalue:
		frame.Push(frame.Upvalues[instr.B()].Val)
	case bytecode.OpStoreUpvalue:
		frame.Upvalues[instr.B()].Val = frame.Peek()

	case bytecode.OpLoadGlobal:
		name := value.AsString(frame.Chunk.Constants[instr.B()])
		v, ok := vm.Globals[name]
		if !ok {
			return value.Value{}, false, &vmError{message: "UndefVarError: " + name + " not defined"}
		}
		frame.Push(v)
	case bytecode.OpStoreGlobal:
		name := value.AsString(frame.Chunk.Constants[instr.B()])
		vm.Globals[name] = frame.Peek()

	case bytecode.OpPop:
		frame.Pop()
	case bytecode.OpDup:
		frame.Push(frame.Peek())
	case bytecode.OpSwap:
		n := len(frame.Operands)
		frame.Operands[n-1], frame.Operands[n-2] = frame.Operands[n-2], frame.Operands[n-1]

	case bytecode.OpJump:
		frame.IP += int(instr.SignedB())
	case bytecode.OpJumpIfFalse:
		cond := frame.Pop()
		if !value.AsBool(cond) {
			frame.IP += int(instr.SignedB())
		}
	case bytecode.OpReturn:
		return frame.Pop(), true, nil

	case bytecode.OpCall:
		return value.Value{}, false, vm.execCall(frame, int(instr.A()), false)
	case bytecode.OpCallKw:
		return value.Value{}, false, vm.execCallKw(frame, int(instr.A()), int(instr.B()))
	case bytecode.OpCallSplat:
		return value.Value{}, false, vm.execCallSplat(frame)
	case bytecode.OpCallKwSplat:
		return value.Value{}, false, vm.execCallKwSplat(frame, int(instr.A()))
	case bytecode.OpCallBroadcast:
		return value.Value{}, false, vm.execBroadcastCall(frame, int(instr.A()))
	case bytecode.OpCallDyn:
		name := value.AsString(frame.Chunk.Constants[instr.B()])
		return value.Value{}, false, vm.execDispatchCall(frame, name, int(instr.A()))
	case bytecode.OpClosure:
		template := frame.Chunk.Constants[instr.B()]
		c := vm.makeClosure(frame, closureChunk(template))
		frame.Push(value.ClosureValue(c))

	case bytecode.OpAddI64, bytecode.OpSubI64, bytecode.OpMulI64, bytecode.OpDivI64,
		bytecode.OpAddF64, bytecode.OpSubF64, bytecode.OpMulF64, bytecode.OpDivF64:
		return value.Value{}, false, vm.execArithHint(frame, op)

	case bytecode.OpTry:
		frame.Handlers = append(frame.Handlers, activeHandler{
			handler:    bytecode.Handler{CatchTarget: frame.IP + int(instr.SignedB())},
			stackDepth: len(frame.Operands),
		})
	case bytecode.OpPopHandler:
		frame.Handlers = frame.Handlers[:len(frame.Handlers)-1]
	case bytecode.OpThrow:
		excVal := frame.Pop()
		return value.Value{}, false, errorFromExceptionValue(excVal)
	case bytecode.OpRethrow:
		if len(frame.Operands) == 0 {
			return value.Value{}, false, &vmError{message: "ErrorException: no active exception to rethrow"}
		}
		return value.Value{}, false, errorFromExceptionValue(frame.Peek())

	case bytecode.OpNewStruct:
		return value.Value{}, false, vm.execNewStruct(frame, int(instr.A()), int(instr.B()))
	case bytecode.OpGetField:
		name := value.AsString(frame.Chunk.Constants[instr.B()])
		return value.Value{}, false, vm.execGetField(frame, name)
	case bytecode.OpSetField:
		name := value.AsString(frame.Chunk.Constants[instr.B()])
		return value.Value{}, false, vm.execSetField(frame, name)
	case bytecode.OpNewArray:
		return value.Value{}, false, vm.execNewArray(frame, int(instr.A()))
	case bytecode.OpGetIndex:
		return value.Value{}, false, vm.execGetIndex(frame)
	case bytecode.OpSetIndex:
		return value.Value{}, false, vm.execSetIndex(frame)

	case bytecode.OpIsA:
		return value.Value{}, false, vm.execIsA(frame, int(instr.B()))
	case bytecode.OpTypeOf:
		v := frame.Pop()
		id := value.TypeOf(vm.Registry, v)
		frame.Push(value.DataTypeValue(id))

	case bytecode.OpMakeRange:
		return value.Value{}, false, vm.execMakeRange(frame)
	case bytecode.OpIterInit:
		return value.Value{}, false, vm.execIterInit(frame)
	case bytecode.OpIterNext:
		return value.Value{}, false, vm.execIterNext(frame)
	case bytecode.OpGenNew:
		return value.Value{}, false, vm.execGenNew(frame)
	case bytecode.OpGenAppend:
		return value.Value{}, false, vm.execGenAppend(frame)

	case bytecode.OpHalt:
		return value.Nothing(), true, nil

	default:
		return value.Value{}, false, &vmError{message: "unimplemented opcode " + op.String()}
	}
	return value.Value{}, false, nil
}

func closureChunk(v value.Value) *bytecode.Chunk {
	c, _ := v.Data.(*bytecode.Chunk)
	return c
}

// vmError is a plain runtime fault that isn't one of the named §7
// exceptions (an undefined global, an unimplemented opcode reached by a
// malformed chunk); step's callers wrap it as an ErrorException before
// unwinding, the same fallback `toException` gives any other Go error.
type vmError struct{ message string }

func (e *vmError) Error() string { return e.message }
