package asm

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/vela-lang/vela/internal/bytecode"
	"github.com/vela-lang/vela/internal/dispatch"
	"github.com/vela-lang/vela/internal/typelattice"
	"github.com/vela-lang/vela/internal/value"
)

// Compiler lowers a parsed Program into bytecode: one Chunk per `func`
// declaration, registered into the shared MethodTable exactly like a
// builtin family would be (internal/builtins/register.go's pattern), plus
// one entry Chunk for the program's top-level statements.
type Compiler struct {
	registry *typelattice.Registry
	methods  *dispatch.MethodTable
	structs  map[string]*structInfo
}

// structInfo records a `struct` declaration's registered DataType ID and its
// field order, so a later construction call `Point(1, 2)` can build a typed
// NamedTuple template without re-parsing the declaration.
type structInfo struct {
	typeID typelattice.ID
	fields []string
}

func NewCompiler(r *typelattice.Registry, mt *dispatch.MethodTable) *Compiler {
	return &Compiler{registry: r, methods: mt, structs: make(map[string]*structInfo)}
}

// returnKinds maps a return-annotation type name to the value kind Return
// converts to. Only the width-preserving §3.1 set is annotatable here.
var returnKinds = map[string]value.Kind{
	"Int8": value.KindInt8, "Int16": value.KindInt16, "Int32": value.KindInt32,
	"Int64": value.KindInt64, "Int128": value.KindInt128,
	"UInt8": value.KindUInt8, "UInt16": value.KindUInt16, "UInt32": value.KindUInt32,
	"UInt64": value.KindUInt64, "UInt128": value.KindUInt128,
	"Bool": value.KindBool, "Float32": value.KindFloat32, "Float64": value.KindFloat64,
	"BigInt": value.KindBigInt,
}

// Compile expands macros, registers type declarations, lowers every `func`
// into the compiler's MethodTable, and returns the Chunk for prog's
// top-level statements — the value vm.VM.Run should execute as the
// program's entry point.
func (c *Compiler) Compile(prog *Program) (*bytecode.Chunk, error) {
	if err := ExpandProgram(prog); err != nil {
		return nil, err
	}

	for _, ad := range prog.Abstracts {
		parent := c.registry.Any
		if ad.Parent != "" {
			pid, ok := c.registry.Lattice.Lookup(ad.Parent)
			if !ok {
				return nil, fmt.Errorf("asm: unknown parent type %q for abstract %q at line %d", ad.Parent, ad.Name, ad.Line)
			}
			parent = pid
		}
		c.registry.Lattice.RegisterAbstract(ad.Name, parent)
	}

	for _, sd := range prog.Structs {
		parent := c.registry.Any
		if sd.Parent != "" {
			pid, ok := c.registry.Lattice.Lookup(sd.Parent)
			if !ok {
				return nil, fmt.Errorf("asm: unknown parent type %q for struct %q at line %d", sd.Parent, sd.Name, sd.Line)
			}
			parent = pid
		}
		fields := make([]string, len(sd.Fields))
		fieldTypes := make([]typelattice.ID, len(sd.Fields))
		for i, f := range sd.Fields {
			fields[i] = f.Name
			ftype := c.registry.Any
			if f.Type != "" {
				tid, ok := c.registry.Lattice.Lookup(f.Type)
				if !ok {
					return nil, fmt.Errorf("asm: unknown type %q for field %q of struct %q at line %d", f.Type, f.Name, sd.Name, sd.Line)
				}
				ftype = tid
			}
			fieldTypes[i] = ftype
		}
		typeID := c.registry.Lattice.RegisterStruct(sd.Name, parent, fields, fieldTypes)
		c.structs[sd.Name] = &structInfo{typeID: typeID, fields: fields}
	}

	for _, fn := range prog.Funcs {
		m, err := c.compileFunc(fn)
		if err != nil {
			return nil, err
		}
		c.methods.AddMethod(m)
	}

	main := bytecode.NewChunk("<top-level>")
	fc := newFuncCompiler(c, main, nil)

	endsInExpr := false
	for i, s := range prog.Main {
		last := i == len(prog.Main)-1
		if last {
			if es, ok := s.(*ExprStmt); ok {
				if err := fc.compileExpr(es.Value, es.Line); err != nil {
					return nil, err
				}
				fc.emit(bytecode.OpReturn, 0, 0, es.Line)
				endsInExpr = true
				continue
			}
		}
		if err := fc.compileStmt(s); err != nil {
			return nil, err
		}
	}
	if !endsInExpr {
		fc.emit(bytecode.OpLoadNil, 0, 0, 0)
		fc.emit(bytecode.OpReturn, 0, 0, 0)
	}
	main.LocalCount = fc.nextLocal
	return main, nil
}

func (c *Compiler) compileFunc(fn *FuncDecl) (*dispatch.Method, error) {
	chunk := bytecode.NewChunk(fn.Name)
	fc := newFuncCompiler(c, chunk, nil)

	typeVars := make(map[string]typelattice.TypeVar)
	for _, tv := range fn.TypeVars {
		upper := c.registry.Any
		if tv.Bound != "" {
			bid, ok := c.registry.Lattice.Lookup(tv.Bound)
			if !ok {
				return nil, fmt.Errorf("asm: unknown bound %q for type variable %q of %s at line %d", tv.Bound, tv.Name, fn.Name, fn.Line)
			}
			upper = bid
		}
		typeVars[tv.Name] = typelattice.TypeVar{Name: tv.Name, Upper: upper, Lower: c.registry.Bottom}
	}

	varSlots := make(map[int]string)
	paramTypes := make([]typelattice.ID, len(fn.Params))
	for i, p := range fn.Params {
		fc.declareLocal(p.Name)
		id := c.registry.Any
		if p.Type != "" {
			if tv, ok := typeVars[p.Type]; ok {
				varSlots[i] = p.Type
				id = tv.Upper
			} else {
				tid, ok := c.registry.Lattice.Lookup(p.Type)
				if !ok {
					return nil, fmt.Errorf("asm: unknown type %q for parameter %q of %s at line %d", p.Type, p.Name, fn.Name, fn.Line)
				}
				id = tid
			}
		}
		paramTypes[i] = id
	}
	chunk.ParamCount = len(fn.Params)

	// Keyword parameters occupy the slots after the positionals, the
	// collector (always bound, possibly to an empty Pairs) after those.
	for _, kp := range fn.KwParams {
		fc.declareLocal(kp.Name)
		def, err := literalValue(kp.Default)
		if err != nil {
			return nil, fmt.Errorf("asm: keyword default for %q of %s must be a literal at line %d: %v", kp.Name, fn.Name, fn.Line, err)
		}
		chunk.KwNames = append(chunk.KwNames, kp.Name)
		chunk.KwDefaults = append(chunk.KwDefaults, def)
	}
	if fn.KwCollector != "" {
		fc.declareLocal(fn.KwCollector)
		chunk.KwCollector = fn.KwCollector
	}

	// Each type variable also gets a readable local (bound at frame setup).
	if len(typeVars) > 0 {
		chunk.TypeVarSlots = make(map[string]int)
		for _, tv := range fn.TypeVars {
			chunk.TypeVarSlots[tv.Name] = fc.declareLocal(tv.Name)
		}
	}

	if fn.ReturnType != "" {
		kind, ok := returnKinds[fn.ReturnType]
		if !ok {
			return nil, fmt.Errorf("asm: unsupported return annotation %q on %s at line %d", fn.ReturnType, fn.Name, fn.Line)
		}
		chunk.HasReturnType = true
		chunk.ReturnKind = kind
	}

	for _, s := range fn.Body {
		if err := fc.compileStmt(s); err != nil {
			return nil, err
		}
	}
	fc.emit(bytecode.OpLoadNil, 0, 0, fn.Line)
	fc.emit(bytecode.OpReturn, 0, 0, fn.Line)

	chunk.LocalCount = fc.nextLocal
	m := &dispatch.Method{
		FunctionName: fn.Name,
		ParamTypes:   paramTypes,
		Chunk:        chunk,
	}
	if len(varSlots) > 0 {
		m.VarSlots = varSlots
		m.TypeVars = typeVars
	}
	return m, nil
}

// literalValue materializes a literal default expression into a constant,
// the only default shape keyword parameters accept.
func literalValue(e Expr) (value.Value, error) {
	switch ex := e.(type) {
	case *IntLit:
		return value.Int64Value(ex.Value), nil
	case *FloatLit:
		return value.Float64Value(ex.Value), nil
	case *Float32Lit:
		return value.Float32Value(float32(ex.Value)), nil
	case *StringLit:
		return value.String(ex.Value), nil
	case *BoolLit:
		return value.Bool(ex.Value), nil
	case *NothingLit:
		return value.Nothing(), nil
	case *MissingLit:
		return value.Missing(), nil
	case *SymbolLit:
		return value.SymbolValue(ex.Name), nil
	case *UnaryExpr:
		if ex.Op == "-" {
			inner, err := literalValue(ex.Operand)
			if err != nil {
				return value.Value{}, err
			}
			switch inner.Kind {
			case value.KindInt64:
				return value.Int64Value(-value.AsInt64(inner)), nil
			case value.KindFloat64:
				return value.Float64Value(-value.AsFloat64(inner)), nil
			}
		}
	}
	return value.Value{}, fmt.Errorf("not a literal: %T", e)
}

// funcCompiler compiles one Chunk's worth of statements: a flat local-slot
// namespace (no block scoping — every `let`/parameter/catch binding in a
// function body gets one slot for the whole function, the simplest scheme
// that still lets loops and branches share bindings across iterations;
// `let x = v { }` blocks scope by temporary renaming instead). Names the
// current scope doesn't know resolve, in order, to an enclosing lambda
// frame's captured upvalue, a registered type name, a registered generic
// function, or a global (§5's process-wide namespace).
type funcCompiler struct {
	c         *Compiler
	chunk     *bytecode.Chunk
	enclosing *funcCompiler
	locals    map[string]int
	upvalues  map[string]int
	nextLocal int
	tempCount int
}

func newFuncCompiler(c *Compiler, chunk *bytecode.Chunk, enclosing *funcCompiler) *funcCompiler {
	return &funcCompiler{
		c:         c,
		chunk:     chunk,
		enclosing: enclosing,
		locals:    make(map[string]int),
		upvalues:  make(map[string]int),
	}
}

func (fc *funcCompiler) declareLocal(name string) int {
	if idx, ok := fc.locals[name]; ok {
		return idx
	}
	idx := fc.nextLocal
	fc.locals[name] = idx
	fc.nextLocal++
	return idx
}

// freshLocal allocates a local slot under a name no source-level `let`
// could ever collide with, for compiler-internal state like a for-loop's
// Iterator or a generator's Generator accumulator.
func (fc *funcCompiler) freshLocal(prefix string) int {
	fc.tempCount++
	return fc.declareLocal(fmt.Sprintf(" %s%d", prefix, fc.tempCount))
}

// resolveUpvalue finds name in an enclosing lambda scope, threading an
// UpvalueDef chain through any intermediate lambdas, and returns this
// chunk's upvalue index for it; ok is false when no enclosing scope binds
// the name.
func (fc *funcCompiler) resolveUpvalue(name string) (int, bool) {
	if fc.enclosing == nil {
		return 0, false
	}
	if idx, ok := fc.upvalues[name]; ok {
		return idx, true
	}
	if localIdx, ok := fc.enclosing.locals[name]; ok {
		return fc.addUpvalue(name, bytecode.UpvalueDef{Local: true, Index: uint16(localIdx)}), true
	}
	if upIdx, ok := fc.enclosing.resolveUpvalue(name); ok {
		return fc.addUpvalue(name, bytecode.UpvalueDef{Local: false, Index: uint16(upIdx)}), true
	}
	return 0, false
}

func (fc *funcCompiler) addUpvalue(name string, def bytecode.UpvalueDef) int {
	idx := len(fc.chunk.Upvalues)
	fc.chunk.Upvalues = append(fc.chunk.Upvalues, def)
	fc.upvalues[name] = idx
	return idx
}

func (fc *funcCompiler) emit(op bytecode.OpCode, a uint8, b uint16, line int) int {
	return fc.chunk.Emit(bytecode.Encode(op, a, b), line)
}

func (fc *funcCompiler) emitJump(op bytecode.OpCode, line int) int {
	return fc.chunk.Emit(bytecode.EncodeSigned(op, 0, 0), line)
}

// patchJumpTo backfills a placeholder jump/try instruction emitted by
// emitJump so it targets target, preserving the instruction's opcode and A
// operand. Offsets are relative to the instruction after pos, matching
// disasm.go's `ip + 1 + signedB` convention and the OpTry handling in
// internal/vm/exec.go (CatchTarget = frame.IP + offset, where frame.IP has
// already advanced past the Try instruction by the time it runs).
func (fc *funcCompiler) patchJumpTo(pos, target int) {
	instr := fc.chunk.Code[pos]
	offset := int16(target - (pos + 1))
	fc.chunk.Patch(pos, bytecode.EncodeSigned(instr.OpCode(), instr.A(), offset))
}

func (fc *funcCompiler) patchJumpHere(pos int) {
	fc.patchJumpTo(pos, len(fc.chunk.Code))
}

func (fc *funcCompiler) compileStmt(s Stmt) error {
	switch st := s.(type) {
	case *LetStmt:
		if err := fc.compileExpr(st.Value, st.Line); err != nil {
			return err
		}
		idx := fc.declareLocal(st.Name)
		fc.emit(bytecode.OpStoreLocal, 0, uint16(idx), st.Line)
		fc.emit(bytecode.OpPop, 0, 0, st.Line)
		return nil

	case *LetBlockStmt:
		return fc.compileLetBlock(st)

	case *GlobalStmt:
		if err := fc.compileExpr(st.Value, st.Line); err != nil {
			return err
		}
		idx := fc.chunk.AddConstant(value.String(st.Name))
		fc.emit(bytecode.OpStoreGlobal, 0, uint16(idx), st.Line)
		fc.emit(bytecode.OpPop, 0, 0, st.Line)
		return nil

	case *AssignStmt:
		if err := fc.compileExpr(st.Value, st.Line); err != nil {
			return err
		}
		if idx, ok := fc.locals[st.Name]; ok {
			fc.emit(bytecode.OpStoreLocal, 0, uint16(idx), st.Line)
		} else if upIdx, ok := fc.resolveUpvalue(st.Name); ok {
			fc.emit(bytecode.OpStoreUpvalue, 0, uint16(upIdx), st.Line)
		} else {
			idx := fc.chunk.AddConstant(value.String(st.Name))
			fc.emit(bytecode.OpStoreGlobal, 0, uint16(idx), st.Line)
		}
		fc.emit(bytecode.OpPop, 0, 0, st.Line)
		return nil

	case *ExprStmt:
		if err := fc.compileExpr(st.Value, st.Line); err != nil {
			return err
		}
		fc.emit(bytecode.OpPop, 0, 0, st.Line)
		return nil

	case *ReturnStmt:
		if st.Value != nil {
			if err := fc.compileExpr(st.Value, st.Line); err != nil {
				return err
			}
		} else {
			fc.emit(bytecode.OpLoadNil, 0, 0, st.Line)
		}
		fc.emit(bytecode.OpReturn, 0, 0, st.Line)
		return nil

	case *ThrowStmt:
		if err := fc.compileExpr(st.Value, st.Line); err != nil {
			return err
		}
		fc.emit(bytecode.OpThrow, 0, 0, st.Line)
		return nil

	case *IfStmt:
		return fc.compileIf(st)

	case *WhileStmt:
		return fc.compileWhile(st)

	case *TryStmt:
		return fc.compileTry(st)

	case *ForStmt:
		return fc.compileFor(st)

	case *SetFieldStmt:
		if err := fc.compileExpr(st.Object, st.Line); err != nil {
			return err
		}
		if err := fc.compileExpr(st.Value, st.Line); err != nil {
			return err
		}
		idx := fc.chunk.AddConstant(value.String(st.Field))
		fc.emit(bytecode.OpSetField, 0, uint16(idx), st.Line)
		return nil

	case *SetIndexStmt:
		if err := fc.compileExpr(st.Target, st.Line); err != nil {
			return err
		}
		if err := fc.compileExpr(st.Index, st.Line); err != nil {
			return err
		}
		if err := fc.compileExpr(st.Value, st.Line); err != nil {
			return err
		}
		fc.emit(bytecode.OpSetIndex, 0, 0, st.Line)
		return nil

	default:
		return fmt.Errorf("asm: unhandled statement type %T", s)
	}
}

// compileLetBlock scopes `let x = init { body }`: the binding gets a fresh
// slot mapped under x only while body compiles, so it neither leaks out
// nor clobbers an enclosing x (§4.3, §8 property 8).
func (fc *funcCompiler) compileLetBlock(st *LetBlockStmt) error {
	if err := fc.compileExpr(st.Value, st.Line); err != nil {
		return err
	}
	slot := fc.freshLocal("let")
	fc.emit(bytecode.OpStoreLocal, 0, uint16(slot), st.Line)
	fc.emit(bytecode.OpPop, 0, 0, st.Line)

	outer, shadowed := fc.locals[st.Name]
	fc.locals[st.Name] = slot
	for _, s := range st.Body {
		if err := fc.compileStmt(s); err != nil {
			return err
		}
	}
	if shadowed {
		fc.locals[st.Name] = outer
	} else {
		delete(fc.locals, st.Name)
	}
	return nil
}

// compileFor lowers `for v in iterable { body }` onto the IterInit/IterNext
// loop shape: the Iterator lives in a dedicated local slot so each pass
// through the loop can reload it (OpIterNext doesn't push it back), the same
// loopStart/exitJump/back pattern compileWhile uses.
func (fc *funcCompiler) compileFor(st *ForStmt) error {
	if err := fc.compileExpr(st.Iterable, st.Line); err != nil {
		return err
	}
	fc.emit(bytecode.OpIterInit, 0, 0, st.Line)
	iterSlot := fc.freshLocal("iter")
	fc.emit(bytecode.OpStoreLocal, 0, uint16(iterSlot), st.Line)
	fc.emit(bytecode.OpPop, 0, 0, st.Line)

	loopStart := len(fc.chunk.Code)
	fc.emit(bytecode.OpLoadLocal, 0, uint16(iterSlot), st.Line)
	fc.emit(bytecode.OpIterNext, 0, 0, st.Line)
	exitJump := fc.emitJump(bytecode.OpJumpIfFalse, st.Line)

	varSlot := fc.declareLocal(st.Var)
	fc.emit(bytecode.OpStoreLocal, 0, uint16(varSlot), st.Line)
	fc.emit(bytecode.OpPop, 0, 0, st.Line)

	for _, s := range st.Body {
		if err := fc.compileStmt(s); err != nil {
			return err
		}
	}
	back := fc.emitJump(bytecode.OpJump, st.Line)
	fc.patchJumpTo(back, loopStart)
	fc.patchJumpHere(exitJump)
	return nil
}

func (fc *funcCompiler) compileIf(st *IfStmt) error {
	if err := fc.compileExpr(st.Cond, st.Line); err != nil {
		return err
	}
	elseJump := fc.emitJump(bytecode.OpJumpIfFalse, st.Line)
	for _, s := range st.Then {
		if err := fc.compileStmt(s); err != nil {
			return err
		}
	}
	if len(st.Else) > 0 {
		endJump := fc.emitJump(bytecode.OpJump, st.Line)
		fc.patchJumpHere(elseJump)
		for _, s := range st.Else {
			if err := fc.compileStmt(s); err != nil {
				return err
			}
		}
		fc.patchJumpHere(endJump)
	} else {
		fc.patchJumpHere(elseJump)
	}
	return nil
}

func (fc *funcCompiler) compileWhile(st *WhileStmt) error {
	loopStart := len(fc.chunk.Code)
	if err := fc.compileExpr(st.Cond, st.Line); err != nil {
		return err
	}
	exitJump := fc.emitJump(bytecode.OpJumpIfFalse, st.Line)
	for _, s := range st.Body {
		if err := fc.compileStmt(s); err != nil {
			return err
		}
	}
	back := fc.emitJump(bytecode.OpJump, st.Line)
	fc.patchJumpTo(back, loopStart)
	fc.patchJumpHere(exitJump)
	return nil
}

// compileTry lowers try/catch/finally onto OpTry/OpPopHandler. A typed
// catch (`catch e::T`) narrows by subtype: the handler body tests the
// caught value with IsA and rethrows anything that doesn't match, so an
// outer handler (or the top level) sees the original exception (§7).
func (fc *funcCompiler) compileTry(st *TryStmt) error {
	tryPos := fc.emitJump(bytecode.OpTry, st.Line)
	for _, s := range st.Body {
		if err := fc.compileStmt(s); err != nil {
			return err
		}
	}
	fc.emit(bytecode.OpPopHandler, 0, 0, st.Line)
	skipCatch := fc.emitJump(bytecode.OpJump, st.Line)

	fc.patchJumpHere(tryPos)
	var excSlot int
	if st.CatchName != "" {
		excSlot = fc.declareLocal(st.CatchName)
	} else {
		excSlot = fc.freshLocal("exc")
	}
	fc.emit(bytecode.OpStoreLocal, 0, uint16(excSlot), st.Line)
	fc.emit(bytecode.OpPop, 0, 0, st.Line)

	if st.CatchType != "" {
		tid, ok := fc.c.registry.Lattice.Lookup(st.CatchType)
		if !ok {
			return fmt.Errorf("asm: unknown catch type %q at line %d", st.CatchType, st.Line)
		}
		typeConst := fc.chunk.AddConstant(value.DataTypeValue(tid))
		fc.emit(bytecode.OpLoadLocal, 0, uint16(excSlot), st.Line)
		fc.emit(bytecode.OpIsA, 0, uint16(typeConst), st.Line)
		rethrowJump := fc.emitJump(bytecode.OpJumpIfFalse, st.Line)
		skipRethrow := fc.emitJump(bytecode.OpJump, st.Line)
		fc.patchJumpHere(rethrowJump)
		fc.emit(bytecode.OpLoadLocal, 0, uint16(excSlot), st.Line)
		fc.emit(bytecode.OpRethrow, 0, 0, st.Line)
		fc.patchJumpHere(skipRethrow)
	}

	for _, s := range st.CatchBody {
		if err := fc.compileStmt(s); err != nil {
			return err
		}
	}
	fc.patchJumpHere(skipCatch)

	for _, s := range st.FinallyBody {
		if err := fc.compileStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (fc *funcCompiler) compileExpr(e Expr, line int) error {
	switch ex := e.(type) {
	case *IntLit:
		idx := fc.chunk.AddConstant(value.Int64Value(ex.Value))
		fc.emit(bytecode.OpLoadConst, 0, uint16(idx), line)
	case *FloatLit:
		idx := fc.chunk.AddConstant(value.Float64Value(ex.Value))
		fc.emit(bytecode.OpLoadConst, 0, uint16(idx), line)
	case *Float32Lit:
		idx := fc.chunk.AddConstant(value.Float32Value(float32(ex.Value)))
		fc.emit(bytecode.OpLoadConst, 0, uint16(idx), line)
	case *ImagLit:
		var cv value.Value
		if ex.IsFloat {
			cv = value.NewComplexFromFloat(0, ex.Float)
		} else {
			cv = value.NewComplexFromInt(0, ex.Int)
		}
		idx := fc.chunk.AddConstant(cv)
		fc.emit(bytecode.OpLoadConst, 0, uint16(idx), line)
	case *StringLit:
		idx := fc.chunk.AddConstant(value.String(ex.Value))
		fc.emit(bytecode.OpLoadConst, 0, uint16(idx), line)
	case *SymbolLit:
		idx := fc.chunk.AddConstant(value.SymbolValue(ex.Name))
		fc.emit(bytecode.OpLoadConst, 0, uint16(idx), line)
	case *PrefixStringLit:
		return fc.compilePrefixString(ex, line)
	case *BoolLit:
		if ex.Value {
			fc.emit(bytecode.OpLoadTrue, 0, 0, line)
		} else {
			fc.emit(bytecode.OpLoadFalse, 0, 0, line)
		}
	case *NothingLit:
		fc.emit(bytecode.OpLoadNil, 0, 0, line)
	case *MissingLit:
		fc.emit(bytecode.OpLoadMissing, 0, 0, line)

	case *Ident:
		return fc.compileIdent(ex.Name, line)

	case *UnaryExpr:
		if err := fc.compileExpr(ex.Operand, line); err != nil {
			return err
		}
		idx := fc.chunk.AddConstant(value.String(ex.Op))
		fc.emit(bytecode.OpCallDyn, 1, uint16(idx), line)

	case *BinaryExpr:
		if op, ok := arithHintOpcode(ex.Op, ex.Left, ex.Right); ok {
			if err := fc.compileExpr(ex.Left, line); err != nil {
				return err
			}
			if err := fc.compileExpr(ex.Right, line); err != nil {
				return err
			}
			fc.emit(op, 0, 0, line)
			return nil
		}
		if err := fc.compileExpr(ex.Left, line); err != nil {
			return err
		}
		if err := fc.compileExpr(ex.Right, line); err != nil {
			return err
		}
		idx := fc.chunk.AddConstant(value.String(ex.Op))
		fc.emit(bytecode.OpCallDyn, 2, uint16(idx), line)

	case *CallExpr:
		return fc.compileCall(ex, line)

	case *LambdaExpr:
		return fc.compileLambda(ex, line)

	case *BlockExpr:
		for _, s := range ex.Stmts {
			if err := fc.compileStmt(s); err != nil {
				return err
			}
		}
		if ex.Value != nil {
			return fc.compileExpr(ex.Value, line)
		}
		fc.emit(bytecode.OpLoadNil, 0, 0, line)

	case *FieldExpr:
		if err := fc.compileExpr(ex.Target, line); err != nil {
			return err
		}
		idx := fc.chunk.AddConstant(value.String(ex.Field))
		fc.emit(bytecode.OpGetField, 0, uint16(idx), line)

	case *ArrayLit:
		for _, elem := range ex.Elems {
			if err := fc.compileExpr(elem, line); err != nil {
				return err
			}
		}
		fc.emit(bytecode.OpNewArray, uint8(len(ex.Elems)), 0, line)

	case *IndexExpr:
		if err := fc.compileExpr(ex.Target, line); err != nil {
			return err
		}
		if err := fc.compileExpr(ex.Index, line); err != nil {
			return err
		}
		fc.emit(bytecode.OpGetIndex, 0, 0, line)

	case *RangeExpr:
		if err := fc.compileExpr(ex.Lo, line); err != nil {
			return err
		}
		if err := fc.compileExpr(ex.Hi, line); err != nil {
			return err
		}
		fc.emit(bytecode.OpMakeRange, 0, 0, line)

	case *GeneratorExpr:
		return fc.compileGenerator(ex, line)

	default:
		return fmt.Errorf("asm: unhandled expression type %T", e)
	}
	return nil
}

// compileIdent resolves a name in scope order: local slot, captured
// upvalue, registered type name (a DataType constant, so `MethodError` and
// `Float64` are first-class values), generic function name, then global.
func (fc *funcCompiler) compileIdent(name string, line int) error {
	if idx, ok := fc.locals[name]; ok {
		fc.emit(bytecode.OpLoadLocal, 0, uint16(idx), line)
		return nil
	}
	if upIdx, ok := fc.resolveUpvalue(name); ok {
		fc.emit(bytecode.OpLoadUpvalue, 0, uint16(upIdx), line)
		return nil
	}
	if tid, ok := fc.c.registry.Lattice.Lookup(name); ok {
		idx := fc.chunk.AddConstant(value.DataTypeValue(tid))
		fc.emit(bytecode.OpLoadConst, 0, uint16(idx), line)
		return nil
	}
	if fc.c.methods.HasGenericFunction(name) {
		// A bare function name evaluates to its generic-function identity,
		// so `map(double, xs)` can pass it along.
		idx := fc.chunk.AddConstant(value.GenericFunctionValue(name))
		fc.emit(bytecode.OpLoadConst, 0, uint16(idx), line)
		return nil
	}
	idx := fc.chunk.AddConstant(value.String(name))
	fc.emit(bytecode.OpLoadGlobal, 0, uint16(idx), line)
	return nil
}

// compileCall lowers the call shapes: struct construction, broadcast,
// keyword calls, do-blocks, and the plain dispatched call.
func (fc *funcCompiler) compileCall(ex *CallExpr, line int) error {
	// Struct construction stays positional; a keyword call on a struct
	// name dispatches to its (e.g. @kwdef-generated) keyword constructor.
	if si, ok := fc.c.structs[ex.Callee]; ok && len(ex.Kw) == 0 && !ex.Broadcast && ex.Do == nil {
		for _, arg := range ex.Args {
			if err := fc.compileExpr(arg, line); err != nil {
				return err
			}
		}
		template := value.NamedTupleValueTyped(si.typeID, si.fields, nil)
		idx := fc.chunk.AddConstant(template)
		fc.emit(bytecode.OpNewStruct, uint8(len(ex.Args)), uint16(idx), line)
		return nil
	}

	fc.compileCallee(ex.Callee, line)

	args := ex.Args
	if ex.Do != nil {
		// `h(args) do p { body }` desugars to `h((p) -> body, args)` (§4.3).
		if err := fc.compileLambda(ex.Do, line); err != nil {
			return err
		}
	}
	for _, arg := range args {
		if err := fc.compileExpr(arg, line); err != nil {
			return err
		}
	}
	argc := len(args)
	if ex.Do != nil {
		argc++
	}

	switch {
	case ex.Broadcast:
		fc.emit(bytecode.OpCallBroadcast, uint8(argc), 0, line)
	case len(ex.Kw) > 0:
		for _, kw := range ex.Kw {
			symIdx := fc.chunk.AddConstant(value.SymbolValue(kw.Name))
			fc.emit(bytecode.OpLoadConst, 0, uint16(symIdx), line)
			if err := fc.compileExpr(kw.Value, line); err != nil {
				return err
			}
		}
		fc.emit(bytecode.OpCallKw, uint8(argc), uint16(len(ex.Kw)), line)
	default:
		fc.emit(bytecode.OpCall, uint8(argc), 0, line)
	}
	return nil
}

// compileCallee loads the callee value for a call site: a local or
// captured variable (a first-class closure or function value) when one is
// in scope, otherwise the name's generic-function identity for dispatch —
// so `Float64(x)` calls the conversion builtin even though Float64 is also
// a type name.
func (fc *funcCompiler) compileCallee(name string, line int) {
	if idx, ok := fc.locals[name]; ok {
		fc.emit(bytecode.OpLoadLocal, 0, uint16(idx), line)
		return
	}
	if upIdx, ok := fc.resolveUpvalue(name); ok {
		fc.emit(bytecode.OpLoadUpvalue, 0, uint16(upIdx), line)
		return
	}
	idx := fc.chunk.AddConstant(value.GenericFunctionValue(name))
	fc.emit(bytecode.OpLoadConst, 0, uint16(idx), line)
}

// compileLambda lowers an anonymous function: its body compiles into its
// own chunk with free variables captured as upvalues from the enclosing
// compiler, and a Closure instruction materializes it at runtime.
func (fc *funcCompiler) compileLambda(ex *LambdaExpr, line int) error {
	chunk := bytecode.NewChunk("<anonymous>")
	inner := newFuncCompiler(fc.c, chunk, fc)
	for _, p := range ex.Params {
		inner.declareLocal(p)
	}
	chunk.ParamCount = len(ex.Params)
	for _, s := range ex.Body {
		if err := inner.compileStmt(s); err != nil {
			return err
		}
	}
	inner.emit(bytecode.OpLoadNil, 0, 0, line)
	inner.emit(bytecode.OpReturn, 0, 0, line)
	chunk.LocalCount = inner.nextLocal

	idx := fc.chunk.AddConstant(value.Value{Kind: value.KindFunction, Data: chunk})
	fc.emit(bytecode.OpClosure, 0, uint16(idx), line)
	return nil
}

// compilePrefixString materializes the §6 literal prefixes the lowerer
// itself understands (big/b/v/r) as constants, and lowers any other prefix
// to a dispatched `pfx_str(body)` call so user-registered string macros
// work with no front-end change.
func (fc *funcCompiler) compilePrefixString(ex *PrefixStringLit, line int) error {
	switch ex.Prefix {
	case "big":
		v, err := bigLiteral(ex.Body)
		if err != nil {
			return fmt.Errorf("asm: invalid big literal %q at line %d: %v", ex.Body, ex.Line, err)
		}
		idx := fc.chunk.AddConstant(v)
		fc.emit(bytecode.OpLoadConst, 0, uint16(idx), line)
	case "b":
		arr := value.NewArray(value.KindUInt8, []int{len(ex.Body)}, value.Nothing())
		for i := 0; i < len(ex.Body); i++ {
			arr.Parent.Set(i, value.UInt8Value(ex.Body[i]))
		}
		idx := fc.chunk.AddConstant(value.ArrayValue(arr))
		fc.emit(bytecode.OpLoadConst, 0, uint16(idx), line)
	case "v":
		vn, err := parseVersionLiteral(ex.Body)
		if err != nil {
			return fmt.Errorf("asm: invalid version literal %q at line %d: %v", ex.Body, ex.Line, err)
		}
		idx := fc.chunk.AddConstant(value.VersionNumberValue(vn))
		fc.emit(bytecode.OpLoadConst, 0, uint16(idx), line)
	case "r":
		rv, err := value.RegexValue(ex.Body)
		if err != nil {
			return fmt.Errorf("asm: %v at line %d", err, ex.Line)
		}
		idx := fc.chunk.AddConstant(rv)
		fc.emit(bytecode.OpLoadConst, 0, uint16(idx), line)
	default:
		nameIdx := fc.chunk.AddConstant(value.GenericFunctionValue(ex.Prefix + "_str"))
		fc.emit(bytecode.OpLoadConst, 0, uint16(nameIdx), line)
		bodyIdx := fc.chunk.AddConstant(value.String(ex.Body))
		fc.emit(bytecode.OpLoadConst, 0, uint16(bodyIdx), line)
		fc.emit(bytecode.OpCall, 1, 0, line)
	}
	return nil
}

// bigLiteral parses `big"…"`: BigInt when integer-shaped, BigFloat
// otherwise (§6).
func bigLiteral(body string) (value.Value, error) {
	if i, ok := new(big.Int).SetString(body, 10); ok {
		return value.BigIntValue(i), nil
	}
	f, _, err := big.ParseFloat(body, 10, 256, big.ToNearestEven)
	if err != nil {
		return value.Value{}, err
	}
	return value.BigFloatValue(f), nil
}

// parseVersionLiteral reads `v"major[.minor[.patch]][-pre][+build]"` with
// minor/patch defaulting to 0 (§6).
func parseVersionLiteral(s string) (value.VersionNumber, error) {
	var vn value.VersionNumber
	rest := s
	if i := strings.IndexByte(rest, '+'); i >= 0 {
		vn.Build = rest[i+1:]
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '-'); i >= 0 {
		vn.Prerelease = rest[i+1:]
		rest = rest[:i]
	}
	parts := strings.Split(rest, ".")
	if len(parts) > 3 {
		return vn, fmt.Errorf("too many version components")
	}
	nums := [3]int{}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return vn, err
		}
		nums[i] = n
	}
	vn.Major, vn.Minor, vn.Patch = nums[0], nums[1], nums[2]
	return vn, nil
}

// compileGenerator lowers `(body for v in iterable [if cond])` onto a fresh
// Generator accumulator plus the same IterInit/IterNext loop compileFor
// uses, appending the evaluated body once per accepted element and leaving
// the finished Generator as the expression's value.
func (fc *funcCompiler) compileGenerator(ex *GeneratorExpr, line int) error {
	fc.emit(bytecode.OpGenNew, 0, 0, line)
	genSlot := fc.freshLocal("gen")
	fc.emit(bytecode.OpStoreLocal, 0, uint16(genSlot), line)
	fc.emit(bytecode.OpPop, 0, 0, line)

	if err := fc.compileExpr(ex.Iterable, line); err != nil {
		return err
	}
	fc.emit(bytecode.OpIterInit, 0, 0, line)
	iterSlot := fc.freshLocal("iter")
	fc.emit(bytecode.OpStoreLocal, 0, uint16(iterSlot), line)
	fc.emit(bytecode.OpPop, 0, 0, line)

	loopStart := len(fc.chunk.Code)
	fc.emit(bytecode.OpLoadLocal, 0, uint16(iterSlot), line)
	fc.emit(bytecode.OpIterNext, 0, 0, line)
	exitJump := fc.emitJump(bytecode.OpJumpIfFalse, line)

	varSlot := fc.declareLocal(ex.Var)
	fc.emit(bytecode.OpStoreLocal, 0, uint16(varSlot), line)
	fc.emit(bytecode.OpPop, 0, 0, line)

	if ex.Cond != nil {
		if err := fc.compileExpr(ex.Cond, line); err != nil {
			return err
		}
		skipAppend := fc.emitJump(bytecode.OpJumpIfFalse, line)
		if err := fc.emitGenAppend(ex.Body, genSlot, line); err != nil {
			return err
		}
		fc.patchJumpHere(skipAppend)
	} else {
		if err := fc.emitGenAppend(ex.Body, genSlot, line); err != nil {
			return err
		}
	}

	back := fc.emitJump(bytecode.OpJump, line)
	fc.patchJumpTo(back, loopStart)
	fc.patchJumpHere(exitJump)

	fc.emit(bytecode.OpLoadLocal, 0, uint16(genSlot), line)
	return nil
}

func (fc *funcCompiler) emitGenAppend(body Expr, genSlot int, line int) error {
	fc.emit(bytecode.OpLoadLocal, 0, uint16(genSlot), line)
	if err := fc.compileExpr(body, line); err != nil {
		return err
	}
	fc.emit(bytecode.OpGenAppend, 0, 0, line)
	fc.emit(bytecode.OpPop, 0, 0, line)
	return nil
}

// arithHintOpcode reports the dispatch-hint opcode (§4.1) to use for a
// binary `+ - * /` when both operands are literals of the same scalar
// kind, so a source expression like `1 + 2` exercises the hint path
// instead of always going through full operator dispatch; anything else
// (a variable, a mixed-kind literal pair, comparisons) compiles through
// OpCallDyn.
func arithHintOpcode(op string, left, right Expr) (bytecode.OpCode, bool) {
	_, li := left.(*IntLit)
	_, ri := right.(*IntLit)
	_, lf := left.(*FloatLit)
	_, rf := right.(*FloatLit)

	switch {
	case li && ri:
		switch op {
		case "+":
			return bytecode.OpAddI64, true
		case "-":
			return bytecode.OpSubI64, true
		case "*":
			return bytecode.OpMulI64, true
		case "/":
			return bytecode.OpDivI64, true
		}
	case lf && rf:
		switch op {
		case "+":
			return bytecode.OpAddF64, true
		case "-":
			return bytecode.OpSubF64, true
		case "*":
			return bytecode.OpMulF64, true
		case "/":
			return bytecode.OpDivF64, true
		}
	}
	return 0, false
}
