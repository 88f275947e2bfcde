// Package vela is the embedding surface: construct an Engine, register
// builtins/types, load a program, run it. Shaped after a DWScript-style
// engine (`New(opts...)`, `engine.RegisterFunction`, `engine.Eval`,
// `engine.SetOutput`) but the functional options configure this runtime's
// VM rather than a DWScript compiler pipeline, and loading is split into
// an explicit Parser/Lowerer pair rather than baked into Eval, since the
// concrete surface syntax is out of scope here.
package vela

import (
	"io"

	"github.com/vela-lang/vela/internal/builtins"
	"github.com/vela-lang/vela/internal/bytecode"
	"github.com/vela-lang/vela/internal/dispatch"
	"github.com/vela-lang/vela/internal/rterror"
	"github.com/vela-lang/vela/internal/typelattice"
	"github.com/vela-lang/vela/internal/value"
	"github.com/vela-lang/vela/internal/vm"
)

// Parser turns source text into whatever intermediate representation the
// matching Lowerer expects. internal/asm supplies one concrete pair
// (*asm.Program, asm.Parse/asm.NewCompiler); an embedder wanting a
// different surface syntax supplies its own.
type Parser interface {
	Parse(source string) (any, error)
}

// Lowerer compiles a Parser's intermediate representation into a Chunk,
// registering any function declarations it contains into the Engine's
// shared MethodTable as a side effect.
type Lowerer interface {
	Lower(program any) (*bytecode.Chunk, error)
}

// Program is a lowered, ready-to-run unit returned by LoadProgram.
type Program struct {
	chunk *bytecode.Chunk
}

// Chunk exposes the lowered bytecode for embedders that need to inspect or
// disassemble a Program without re-running it (the `disasm` CLI
// subcommand's only use of the engine).
func (p Program) Chunk() *bytecode.Chunk { return p.chunk }

// Engine owns the process-wide interpreter state: type lattice, method
// table, and the VM that runs chunks against them. One Engine is one
// independent Vela "process" — nothing here is safe to share across
// concurrent goroutines mutating the method table, matching §1's
// single-threaded scope.
type Engine struct {
	registry *typelattice.Registry
	taxonomy *rterror.Taxonomy
	methods  *dispatch.MethodTable
	machine  *vm.VM

	parser  Parser
	lowerer Lowerer
}

// Option configures an Engine at construction time, mirroring the
// teacher's WithTypeCheck/With* functional-option pattern.
type Option func(*Engine)

// WithTrace enables per-instruction disassembly logging to w, the
// adapted analogue of the teacher's `run.go --trace` flag.
func WithTrace(w io.Writer) Option {
	return func(e *Engine) { e.machine.Config.Trace = w }
}

// WithOutput directs program output (`print`, `println`, `@info`) to w;
// the CLI passes os.Stdout, tests a bytes.Buffer.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) { e.machine.Config.Output = w }
}

// WithBigFloatPrecision overrides the default (infer-from-operand)
// BigFloat precision new BigFloat values are constructed with.
func WithBigFloatPrecision(prec uint) Option {
	return func(e *Engine) { e.machine.Config.BigFloatPrecision = prec }
}

// WithParser overrides the front end used by LoadProgram. The default,
// set by New, is internal/asm's assembler-and-expression front end.
func WithParser(p Parser, l Lowerer) Option {
	return func(e *Engine) { e.parser, e.lowerer = p, l }
}

// New constructs an Engine with the standard taxonomy and builtin
// registry wired in, ready to load and run programs.
func New(opts ...Option) *Engine {
	r := typelattice.Bootstrap()
	tax := rterror.RegisterTaxonomy(r)
	mt := dispatch.NewMethodTable()
	promotions := dispatch.NewPromotionTable()
	cfg := vm.DefaultConfig()
	builtins.RegisterAll(mt, r, promotions, cfg)

	e := &Engine{
		registry: r,
		taxonomy: tax,
		methods:  mt,
		machine:  vm.NewWithConfig(r, tax, mt, cfg),
	}
	// The higher-order builtins (map, foreach, filter) call back into
	// interpreted code, so they register against the constructed VM.
	builtins.RegisterFunctional(mt, r, e.machine)
	e.parser, e.lowerer = defaultFrontEnd(e)

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetTrace redirects the per-instruction trace sink after construction;
// pass nil to disable tracing.
func (e *Engine) SetTrace(w io.Writer) { e.machine.Config.Trace = w }

// Registry exposes the engine's type lattice, for embedders that need to
// resolve or register DataType/UnionAll entries directly (RegisterType,
// RegisterAbstract below delegate to it).
func (e *Engine) Registry() *typelattice.Registry { return e.registry }

// Methods exposes the shared MethodTable, for embedders wiring their own
// Lowerer against this Engine's dispatch state.
func (e *Engine) Methods() *dispatch.MethodTable { return e.methods }

// LoadProgram parses and lowers source into a runnable Program, using the
// Engine's configured Parser/Lowerer (internal/asm by default).
func (e *Engine) LoadProgram(source string) (Program, error) {
	tree, err := e.parser.Parse(source)
	if err != nil {
		return Program{}, err
	}
	chunk, err := e.lowerer.Lower(tree)
	if err != nil {
		return Program{}, err
	}
	return Program{chunk: chunk}, nil
}

// Run executes a previously loaded Program and returns its final
// top-level expression value, per the Interpreter's §3.3 contract.
func (e *Engine) Run(p Program) (value.Value, error) {
	return e.machine.Run(p.chunk)
}

// Eval is a convenience wrapper combining LoadProgram and Run, matching
// the teacher's single-shot `engine.Eval(source)` entry point.
func (e *Engine) Eval(source string) (value.Value, error) {
	prog, err := e.LoadProgram(source)
	if err != nil {
		return value.Value{}, err
	}
	return e.Run(prog)
}

// Call invokes a generic function by name with already-constructed
// argument values, dispatching through the same MethodTable a CallDyn
// instruction would use. Used by embedders driving Vela functions from Go
// rather than from loaded program text.
func (e *Engine) Call(name string, args []value.Value) (value.Value, error) {
	argTypes := make([]typelattice.ID, len(args))
	for i, a := range args {
		argTypes[i] = value.TypeOf(e.registry, a)
	}
	resolution, err := dispatch.Dispatch(e.methods, e.registry.Lattice, name, argTypes)
	if err != nil {
		return value.Value{}, err
	}
	if resolution.Method.Native != nil {
		return resolution.Method.Native(args, resolution.Bindings)
	}
	return e.machine.CallMethod(resolution.Method, args)
}

// RegisterBuiltin adds a single native method to the shared MethodTable,
// the embedding-level analogue of the teacher's `engine.RegisterFunction`
// (there: one Go func reflected into a DWScript external; here: one
// already-typed native method slotted directly into multi-dispatch).
func (e *Engine) RegisterBuiltin(name string, paramTypes []typelattice.ID, variadic bool, fn dispatch.BuiltinFunc) {
	e.methods.AddMethod(&dispatch.Method{FunctionName: name, ParamTypes: paramTypes, Variadic: variadic, Native: fn})
}

// RegisterType adds a new concrete DataType to the lattice beneath
// parent, for embedders extending the numeric/container tower.
func (e *Engine) RegisterType(name string, parent typelattice.ID) typelattice.ID {
	return e.registry.Lattice.RegisterConcrete(name, parent)
}

// RegisterAbstract adds a new abstract (non-instantiable) node to the
// lattice beneath parent, usable only as a dispatch bound.
func (e *Engine) RegisterAbstract(name string, parent typelattice.ID) typelattice.ID {
	return e.registry.Lattice.RegisterAbstract(name, parent)
}
