package bytecode

import "github.com/vela-lang/vela/internal/value"

// UpvalueDef tells a Closure instruction's interpreter where to find each
// captured variable: either a slot in the enclosing frame (Local) or an
// index into the enclosing closure's own upvalue array.
type UpvalueDef struct {
	Local bool
	Index uint16
}

// Handler describes one entry in a Try instruction's catch table: the type
// the handler accepts (by lattice ID, resolved at link time from TypeConst),
// the instruction offset of its catch body, and whether a Finally block
// follows it.
type Handler struct {
	TypeConst     int // index into Chunk.Constants naming the caught type, or -1 for catch-all
	CatchTarget   int
	HasFinally    bool
	FinallyTarget int
}

// Chunk is one compiled function body: its code, the constants it
// references, and enough metadata for the VM to build a Frame.
type Chunk struct {
	Name       string
	Code       []Instruction
	Constants  []value.Value
	LocalCount int
	ParamCount int
	Variadic   bool
	Upvalues   []UpvalueDef
	Handlers   []Handler

	// Keyword-parameter layout. Keyword slots follow the positional
	// parameter slots in Frame.Locals: KwNames[i] binds local slot
	// ParamCount+i with KwDefaults[i] when the call site supplies no value
	// for it; a non-empty KwCollector binds the slot after the last keyword
	// to a Pairs bundle of whatever keywords remain unmatched (always a
	// Pairs, possibly empty — never Nothing).
	KwNames     []string
	KwDefaults  []value.Value
	KwCollector string

	// TypeVarSlots maps each `where`-clause type variable to the local
	// slot its resolved DataType is written into at frame setup, so bodies
	// can read T like any other binding — including when the call arrived
	// through a specialised opcode's fallback path.
	TypeVarSlots map[string]int

	// ReturnKind, when not KindNothing-by-default (HasReturnType set),
	// names the declared return annotation: Return converts the result to
	// it, and narrow integer annotations keep their width (§3.1).
	HasReturnType bool
	ReturnKind    value.Kind
	// Lines maps instruction index to source line, for stack traces;
	// parallel to Code and may be shorter if trailing instructions share
	// the final entry.
	Lines []int
}

func NewChunk(name string) *Chunk {
	return &Chunk{Name: name}
}

// Emit appends an instruction and records its source line, returning the
// instruction's index (used by the lowerer to patch forward jumps).
func (c *Chunk) Emit(i Instruction, line int) int {
	c.Code = append(c.Code, i)
	c.Lines = append(c.Lines, line)
	return len(c.Code) - 1
}

// Patch overwrites an already-emitted instruction, used to back-fill a
// jump target once the lowerer knows where a block ends.
func (c *Chunk) Patch(at int, i Instruction) {
	c.Code[at] = i
}

// AddConstant interns a value into the constants pool and returns its
// index, reusing an existing entry when one compares equal so identical
// literals across a function body share a slot.
func (c *Chunk) AddConstant(v value.Value) int {
	for i, existing := range c.Constants {
		if value.Identical(existing, v) {
			return i
		}
	}
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

func (c *Chunk) LineFor(ip int) int {
	if ip < 0 || ip >= len(c.Lines) {
		return 0
	}
	return c.Lines[ip]
}
