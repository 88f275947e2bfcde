// Package vm implements the interpreter loop: the fetch-decode-execute
// cycle over a Chunk's instruction stream, call handling (direct,
// dispatched, splatted, broadcast), closures, and exception unwinding
// (§3.3, §7). Structured after the teacher's internal/bytecode VM
// (vm_core.go/vm_exec.go/vm_calls.go's split between a thin VM struct and
// the big opcode switch) but built over this runtime's typed Value/
// MethodTable instead of DWScript's class-based call model.
package vm

import (
	"fmt"

	"github.com/vela-lang/vela/internal/bytecode"
	"github.com/vela-lang/vela/internal/dispatch"
	"github.com/vela-lang/vela/internal/rterror"
	"github.com/vela-lang/vela/internal/typelattice"
	"github.com/vela-lang/vela/internal/value"
)

// VM owns the shared, process-wide state a running program needs: the
// type lattice, the method table every Call/CallDyn dispatches through,
// the global namespace, and one SiteCache per call-site instruction.
type VM struct {
	Registry   *typelattice.Registry
	Taxonomy   *rterror.Taxonomy
	Methods    *dispatch.MethodTable
	Promotions *dispatch.PromotionTable
	Globals    map[string]value.Value
	Config     *Config

	sites  map[siteKey]*dispatch.SiteCache
	frames []*Frame
}

type siteKey struct {
	chunk *bytecode.Chunk
	ip    int
}

func New(r *typelattice.Registry, tax *rterror.Taxonomy, methods *dispatch.MethodTable) *VM {
	return NewWithConfig(r, tax, methods, DefaultConfig())
}

// NewWithConfig is New with an explicit, already-constructed Config, for
// callers (pkg/vela.New, test helpers) that need the builtins registered
// against the very same Config object the VM will read `setprecision`/
// `setrounding` writes back into, rather than each independently defaulting
// one via DefaultConfig.
func NewWithConfig(r *typelattice.Registry, tax *rterror.Taxonomy, methods *dispatch.MethodTable, cfg *Config) *VM {
	return &VM{
		Registry:   r,
		Taxonomy:   tax,
		Methods:    methods,
		Promotions: dispatch.NewPromotionTable(),
		Globals:    make(map[string]value.Value),
		Config:     cfg,
		sites:      make(map[siteKey]*dispatch.SiteCache),
	}
}

func (vm *VM) top() *Frame { return vm.frames[len(vm.frames)-1] }

func (vm *VM) pushFrame(f *Frame) { vm.frames = append(vm.frames, f) }

func (vm *VM) popFrame() *Frame {
	n := len(vm.frames) - 1
	f := vm.frames[n]
	vm.frames = vm.frames[:n]
	return f
}

// Run executes chunk as a top-level program (no arguments, no enclosing
// frame) and returns its final expression value.
func (vm *VM) Run(chunk *bytecode.Chunk) (value.Value, error) {
	return vm.runChunk(chunk, "<top-level>", nil, nil)
}

// CallMethod invokes a resolved method directly (bypassing dispatch),
// used once a call site's method is already known — either from the
// CallDyn path after Dispatch, or internally by builtins that need to
// call back into interpreted code (e.g. `map`, `sort` with a callback).
func (vm *VM) CallMethod(m *dispatch.Method, args []value.Value) (value.Value, error) {
	if m.Native != nil {
		return m.Native(args, nil)
	}
	return vm.runChunk(m.Chunk, m.FunctionName, args, nil)
}

func (vm *VM) runChunk(chunk *bytecode.Chunk, funcName string, args []value.Value, bindings map[string]typelattice.ID) (value.Value, error) {
	return vm.runChunkKw(chunk, funcName, args, nil, nil, bindings)
}

// runChunkKw is runChunk with keyword arguments: kwKeys/kwVals are the call
// site's symbol/value pairs, matched against the chunk's declared keyword
// parameters before execution starts. A keyword-collecting chunk always
// gets a Pairs bundle for its collector slot, even when both lists are nil.
func (vm *VM) runChunkKw(chunk *bytecode.Chunk, funcName string, args []value.Value, kwKeys []*value.Symbol, kwVals []value.Value, bindings map[string]typelattice.ID) (value.Value, error) {
	frame := NewFrame(chunk, funcName, bindings)
	if err := bindFrameArgs(frame, chunk, args, kwKeys, kwVals); err != nil {
		return value.Value{}, err
	}
	bindTypeVarLocals(frame, chunk)
	vm.pushFrame(frame)
	baseDepth := len(vm.frames)

	result, err := vm.execUntil(baseDepth)
	if err != nil {
		return result, err
	}
	if chunk.HasReturnType {
		return convertReturn(result, chunk.ReturnKind)
	}
	return result, nil
}

// bindFrameArgs lays out a callee frame's locals: positional parameters
// first, declared keyword parameters next (call-site value or declared
// default), then the Pairs collector slot when the chunk declares one.
func bindFrameArgs(frame *Frame, chunk *bytecode.Chunk, args []value.Value, kwKeys []*value.Symbol, kwVals []value.Value) error {
	for i := 0; i < len(args) && i < len(frame.Locals); i++ {
		frame.Locals[i] = args[i]
	}
	if len(chunk.KwNames) == 0 && chunk.KwCollector == "" {
		if len(kwKeys) > 0 {
			return &rterror.ArgumentError{Message: "function " + chunk.Name + " does not accept keyword arguments"}
		}
		return nil
	}

	used := make([]bool, len(kwKeys))
	for i, name := range chunk.KwNames {
		slot := chunk.ParamCount + i
		bound := false
		for j, k := range kwKeys {
			if k.String() == name {
				frame.Locals[slot] = kwVals[j]
				used[j] = true
				bound = true
				break
			}
		}
		if !bound {
			frame.Locals[slot] = chunk.KwDefaults[i]
		}
	}

	var restKeys []*value.Symbol
	var restVals []value.Value
	for j := range kwKeys {
		if !used[j] {
			restKeys = append(restKeys, kwKeys[j])
			restVals = append(restVals, kwVals[j])
		}
	}
	if chunk.KwCollector != "" {
		frame.Locals[chunk.ParamCount+len(chunk.KwNames)] = value.PairsValue(restKeys, restVals)
	} else if len(restKeys) > 0 {
		return &rterror.ArgumentError{Message: "function " + chunk.Name + " got unsupported keyword argument \"" + restKeys[0].String() + "\""}
	}
	return nil
}

// bindTypeVarLocals writes each resolved `where`-clause variable into its
// declared local slot so the body can read it as a DataType value.
func bindTypeVarLocals(frame *Frame, chunk *bytecode.Chunk) {
	for name, slot := range chunk.TypeVarSlots {
		if id, ok := frame.Bindings[name]; ok {
			frame.Locals[slot] = value.DataTypeValue(id)
		}
	}
}

// execUntil runs instructions until the frame stack depth drops below
// baseDepth (the call that invoked execUntil has returned) or an
// unrecovered exception propagates out of it.
func (vm *VM) execUntil(baseDepth int) (value.Value, error) {
	for len(vm.frames) >= baseDepth {
		frame := vm.top()
		if frame.IP >= len(frame.Chunk.Code) {
			vm.popFrame()
			if len(vm.frames) < baseDepth {
				return value.Nothing(), nil
			}
			vm.top().Push(value.Nothing())
			continue
		}

		ip := frame.IP
		instr := frame.fetch()
		if vm.Config.Trace != nil {
			fmt.Fprintln(vm.Config.Trace, bytecode.DisassembleInstr(frame.Chunk, ip, instr))
		}
		ret, done, err := vm.step(frame, instr)
		if err != nil {
			exc := vm.toException(err)
			if handled, rerr := vm.unwind(exc, baseDepth); !handled {
				return value.Nothing(), rerr
			}
			continue
		}
		if done {
			vm.popFrame()
			if len(vm.frames) < baseDepth {
				return ret, nil
			}
			vm.top().Push(ret)
		}
	}
	return value.Nothing(), nil
}

// toException normalizes any error into an rterror.Exception, wrapping a
// non-Exception Go error (e.g. from a Memory bounds check) as a plain
// ErrorException the way `error(msg)` would construct one.
func (vm *VM) toException(err error) rterror.Exception {
	if exc, ok := err.(rterror.Exception); ok {
		return exc
	}
	return &rterror.ErrorException{Message: err.Error()}
}
