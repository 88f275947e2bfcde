// Package bytecode implements the flat instruction stream (§4.1) the
// lowerer emits and the interpreter consumes: a fixed-width opcode set, a
// packed 32-bit instruction encoding, and a per-program constants table.
//
// Format: [8-bit opcode][8-bit A][16-bit B], the same layout the teacher's
// bytecode package uses, chosen for the same reason (a byte opcode keeps
// the interpreter's dispatch switch inside Go's fast small-switch path).
package bytecode

// OpCode identifies one instruction. The grouping below follows the
// families named in spec §4.1's opcode table.
type OpCode byte

const (
	// Constants
	OpLoadConst OpCode = iota
	OpLoadNil
	OpLoadMissing
	OpLoadTrue
	OpLoadFalse

	// Locals
	OpLoadLocal
	OpStoreLocal
	OpLoadUpvalue
	OpStoreUpvalue

	// Globals (process-wide namespace, §5)
	OpLoadGlobal
	OpStoreGlobal

	// Stack
	OpPop
	OpDup
	OpSwap

	// Control
	OpJump
	OpJumpIfFalse
	OpReturn

	// Calls
	OpCall      // A = positional arg count
	OpCallKw    // A = positional count, B = keyword-pair count
	OpCallSplat // expand a tuple/Pairs into positional args
	OpCallKwSplat
	OpCallBroadcast // A = arg count; call site was `f.(args...)`
	OpClosure       // B = function template const index; captures upvalues per UpvalueDefs

	// Dispatch hints (§4.1: "a hint, not a contract")
	OpAddI64
	OpSubI64
	OpMulI64
	OpDivI64
	OpAddF64
	OpSubF64
	OpMulF64
	OpDivF64
	OpCallDyn // A = arg count, B = operator symbol const index; full dispatch path

	// Exceptions
	OpTry // B = relative offset to the handler entry
	OpPopHandler
	OpThrow
	OpRethrow

	// Struct/Array
	OpNewStruct // A = field count, B = field-name template const index
	OpGetField  // B = field-name const index
	OpSetField  // B = field-name const index
	OpNewArray  // A = element count; pops the elements, pushes a 1-D array literal
	OpGetIndex
	OpSetIndex

	// Type ops
	OpIsA // B = target-type const index
	OpTypeOf

	// Ranges/generators (§9): a for-loop or comprehension compiles to
	// OpIterInit once then loops OpIterNext; OpGenNew/OpGenAppend build up a
	// comprehension's accumulated result alongside it.
	OpMakeRange // pops hi then lo, pushes a Range
	OpIterInit  // pops an iterable, pushes an Iterator
	OpIterNext  // pops an Iterator, pushes the next element and true, or just false at exhaustion
	OpGenNew    // pushes a fresh empty Generator
	OpGenAppend // pops a value then a Generator, appends, pushes the Generator back

	OpHalt
)

var opcodeNames = [...]string{
	OpLoadConst: "LoadConst", OpLoadNil: "LoadNil", OpLoadMissing: "LoadMissing",
	OpLoadTrue: "LoadTrue", OpLoadFalse: "LoadFalse",
	OpLoadLocal: "LoadLocal", OpStoreLocal: "StoreLocal",
	OpLoadUpvalue: "LoadUpvalue", OpStoreUpvalue: "StoreUpvalue",
	OpLoadGlobal: "LoadGlobal", OpStoreGlobal: "StoreGlobal",
	OpPop: "Pop", OpDup: "Dup", OpSwap: "Swap",
	OpJump: "Jump", OpJumpIfFalse: "JumpIfFalse", OpReturn: "Return",
	OpCall: "Call", OpCallKw: "CallKw", OpCallSplat: "CallSplat", OpCallKwSplat: "CallKwSplat",
	OpCallBroadcast: "CallBroadcast", OpClosure: "Closure",
	OpAddI64: "AddI64", OpSubI64: "SubI64", OpMulI64: "MulI64", OpDivI64: "DivI64",
	OpAddF64: "AddF64", OpSubF64: "SubF64", OpMulF64: "MulF64", OpDivF64: "DivF64",
	OpCallDyn: "CallDyn",
	OpTry:     "Try", OpPopHandler: "PopHandler", OpThrow: "Throw", OpRethrow: "Rethrow",
	OpNewStruct: "NewStruct", OpGetField: "GetField", OpSetField: "SetField",
	OpNewArray: "NewArray", OpGetIndex: "GetIndex", OpSetIndex: "SetIndex",
	OpIsA: "IsA", OpTypeOf: "TypeOf",
	OpMakeRange: "MakeRange", OpIterInit: "IterInit", OpIterNext: "IterNext",
	OpGenNew: "GenNew", OpGenAppend: "GenAppend",
	OpHalt: "Halt",
}

func (op OpCode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return "Unknown"
}

// Instruction is a packed 32-bit instruction: [opcode:8][A:8][B:16].
type Instruction uint32

// Encode packs an opcode with its A/B operands into an Instruction.
func Encode(op OpCode, a uint8, b uint16) Instruction {
	return Instruction(uint32(op))<<24 | Instruction(uint32(a))<<16 | Instruction(uint32(b))
}

// EncodeSigned packs a signed 16-bit B operand (used by Jump/JumpIfFalse
// relative offsets), via its two's-complement bit pattern.
func EncodeSigned(op OpCode, a uint8, b int16) Instruction {
	return Encode(op, a, uint16(b))
}

func (i Instruction) OpCode() OpCode { return OpCode(i >> 24) }
func (i Instruction) A() uint8       { return uint8(i >> 16) }
func (i Instruction) B() uint16      { return uint16(i) }
func (i Instruction) SignedB() int16 { return int16(uint16(i)) }
