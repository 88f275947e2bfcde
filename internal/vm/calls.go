package vm

import (
	"github.com/vela-lang/vela/internal/bytecode"
	"github.com/vela-lang/vela/internal/dispatch"
	"github.com/vela-lang/vela/internal/rterror"
	"github.com/vela-lang/vela/internal/typelattice"
	"github.com/vela-lang/vela/internal/value"
)

// Call-site stack convention: the callee value is pushed before its
// arguments, so `f(a, b)` compiles to push(f); push(a); push(b); Call 2.
// CallDyn is the one exception — its callee is named by a constant, not a
// stack value, since the dispatch-hint opcodes (CallDyn included) exist to
// resolve an *operator* by symbol, not to invoke an arbitrary first-class
// function value.

func (vm *VM) popArgs(frame *Frame, n int) []value.Value {
	args := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = frame.Pop()
	}
	return args
}

func (vm *VM) execCall(frame *Frame, argc int, _ bool) error {
	args := vm.popArgs(frame, argc)
	callee := frame.Pop()
	result, err := vm.invoke(frame, callee, args)
	if err != nil {
		return err
	}
	frame.Push(result)
	return nil
}

// invoke calls a first-class callee value: a closure, a named generic
// function (dispatched by runtime argument types), or an already-bound
// method/function identity.
func (vm *VM) invoke(frame *Frame, callee value.Value, args []value.Value) (value.Value, error) {
	switch callee.Kind {
	case value.KindClosure:
		return value.AsCallable(callee).Call(args)
	case value.KindGenericFunction:
		name := value.AsGenericFunctionIdentity(callee).Name
		return vm.dispatchAndCall(frame, name, args)
	case value.KindFunction:
		name := value.AsFunctionIdentity(callee).Name
		return vm.dispatchAndCall(frame, name, args)
	default:
		return value.Value{}, &rterror.TypeError{Context: "call", Expected: "a callable", Got: callee}
	}
}

// dispatchAndCall resolves name against argTypes via the call site's
// cache and runs the resulting method.
func (vm *VM) dispatchAndCall(frame *Frame, name string, args []value.Value) (value.Value, error) {
	argTypes := make([]typelattice.ID, len(args))
	for i, a := range args {
		argTypes[i] = value.TypeOf(vm.Registry, a)
	}

	key := siteKey{chunk: frame.Chunk, ip: frame.IP - 1}
	site, ok := vm.sites[key]
	if !ok {
		site = dispatch.NewSiteCache()
		vm.sites[key] = site
	}

	res, err := dispatch.DispatchCached(site, vm.Methods, vm.Registry.Lattice, name, argTypes)
	if err != nil {
		return value.Value{}, err
	}
	return vm.callResolved(res, args)
}

func (vm *VM) callResolved(res *dispatch.Resolution, args []value.Value) (value.Value, error) {
	m := res.Method
	if m.Native != nil {
		return m.Native(args, res.Bindings)
	}
	return vm.runChunk(m.Chunk, m.FunctionName, args, res.Bindings)
}

func (vm *VM) execDispatchCall(frame *Frame, name string, argc int) error {
	args := vm.popArgs(frame, argc)
	result, err := vm.dispatchAndCall(frame, name, args)
	if err != nil {
		return err
	}
	frame.Push(result)
	return nil
}

// execCallSplat expands a trailing Tuple argument into positional
// arguments: the stack holds [callee, fixedArgs..., tupleToSplat].
func (vm *VM) execCallSplat(frame *Frame) error {
	splat := frame.Pop()
	fixedCount := int(value.AsInt64(frame.Pop())) // arg count marker pushed by the lowerer
	fixed := vm.popArgs(frame, fixedCount)
	callee := frame.Pop()

	tup := value.AsTuple(splat)
	args := append(fixed, tup.Elems...)
	result, err := vm.invoke(frame, callee, args)
	if err != nil {
		return err
	}
	frame.Push(result)
	return nil
}

// execBroadcastCall implements `f.(args...)`: if every argument is an
// Array, f is applied elementwise and the result collected into a new
// Array of the same shape; otherwise it behaves like a plain Call (§3.1
// broadcasting over scalars is a no-op elementwise application of one).
func (vm *VM) execBroadcastCall(frame *Frame, argc int) error {
	args := vm.popArgs(frame, argc)
	callee := frame.Pop()

	var shape *value.Array
	for _, a := range args {
		if a.Kind == value.KindArray {
			shape = value.AsArray(a)
			break
		}
	}
	if shape == nil {
		result, err := vm.invoke(frame, callee, args)
		if err != nil {
			return err
		}
		frame.Push(result)
		return nil
	}

	n := shape.Len()
	results := make([]value.Value, n)
	for i := 0; i < n; i++ {
		elemArgs := make([]value.Value, len(args))
		for j, a := range args {
			if a.Kind == value.KindArray {
				arr := value.AsArray(a)
				v, err := arr.Parent.Get(arr.Offset + i)
				if err != nil {
					return err
				}
				elemArgs[j] = v
			} else {
				elemArgs[j] = a
			}
		}
		r, err := vm.invoke(frame, callee, elemArgs)
		if err != nil {
			return err
		}
		results[i] = r
	}

	// Result element type is the promoted common kind of the elementwise
	// results; the shape follows the container argument.
	out := value.NewArray(value.CommonElemKind(results), shape.Dims, value.Nothing())
	for i, r := range results {
		if err := out.Parent.Set(i, r); err != nil {
			return err
		}
	}
	frame.Push(value.ArrayValue(out))
	return nil
}

// execCallKw expects the stack, bottom to top, to hold:
// [callee, positional args (posCount), (keyword symbol, value) pairs
// (kwCount)]. Dispatch is over positional argument types only (§4.2);
// keywords are matched against the resolved method's declared keyword
// parameters afterwards, with the unmatched remainder flowing to the
// method's Pairs collector.
func (vm *VM) execCallKw(frame *Frame, posCount, kwCount int) error {
	keys := make([]*value.Symbol, kwCount)
	vals := make([]value.Value, kwCount)
	for i := kwCount - 1; i >= 0; i-- {
		vals[i] = frame.Pop()
		keys[i] = value.AsSymbol(frame.Pop())
	}
	positional := vm.popArgs(frame, posCount)
	callee := frame.Pop()

	result, err := vm.invokeKw(frame, callee, positional, keys, vals)
	if err != nil {
		return err
	}
	frame.Push(result)
	return nil
}

// execCallKwSplat expands an already-bundled Pairs value into keyword
// arguments: the stack holds [callee, positional args (posCount), bundle].
func (vm *VM) execCallKwSplat(frame *Frame, posCount int) error {
	bundle := frame.Pop()
	positional := vm.popArgs(frame, posCount)
	callee := frame.Pop()

	pairs := value.AsPairs(bundle)
	result, err := vm.invokeKw(frame, callee, positional, pairs.Keys, pairs.Elems)
	if err != nil {
		return err
	}
	frame.Push(result)
	return nil
}

func (vm *VM) invokeKw(frame *Frame, callee value.Value, args []value.Value, kwKeys []*value.Symbol, kwVals []value.Value) (value.Value, error) {
	if len(kwKeys) == 0 {
		// Still route through the kw-aware path so a keyword-collecting
		// callee observes an empty Pairs, never Nothing (§4.3).
		switch callee.Kind {
		case value.KindClosure:
			return value.AsCallable(callee).Call(args)
		}
	}
	var name string
	switch callee.Kind {
	case value.KindGenericFunction:
		name = value.AsGenericFunctionIdentity(callee).Name
	case value.KindFunction:
		name = value.AsFunctionIdentity(callee).Name
	case value.KindClosure:
		return value.Value{}, &rterror.ArgumentError{Message: "anonymous function does not accept keyword arguments"}
	default:
		return value.Value{}, &rterror.TypeError{Context: "call", Expected: "a callable", Got: callee}
	}

	argTypes := make([]typelattice.ID, len(args))
	for i, a := range args {
		argTypes[i] = value.TypeOf(vm.Registry, a)
	}
	key := siteKey{chunk: frame.Chunk, ip: frame.IP - 1}
	site, ok := vm.sites[key]
	if !ok {
		site = dispatch.NewSiteCache()
		vm.sites[key] = site
	}
	res, err := dispatch.DispatchCached(site, vm.Methods, vm.Registry.Lattice, name, argTypes)
	if err != nil {
		return value.Value{}, err
	}
	m := res.Method
	if m.Native != nil {
		if len(kwKeys) > 0 {
			return value.Value{}, &rterror.ArgumentError{Message: "function " + name + " does not accept keyword arguments"}
		}
		return m.Native(args, res.Bindings)
	}
	return vm.runChunkKw(m.Chunk, m.FunctionName, args, kwKeys, kwVals, res.Bindings)
}

// execArithHint implements a specialized numeric opcode: it checks both
// operands carry the expected native kind and computes directly, falling
// back to full operator dispatch (as if this had been CallDyn) when the
// hint doesn't apply — exactly the "a hint, not a contract" behavior §4.1
// specifies, so `1 + 1.0` compiled with an AddI64 hint still produces the
// promoted Float64 result instead of silently truncating.
func (vm *VM) execArithHint(frame *Frame, op bytecode.OpCode) error {
	b := frame.Pop()
	a := frame.Pop()

	switch op {
	case bytecode.OpAddI64:
		if a.Kind == value.KindInt64 && b.Kind == value.KindInt64 {
			frame.Push(value.Int64Value(value.AsInt64(a) + value.AsInt64(b)))
			return nil
		}
	case bytecode.OpSubI64:
		if a.Kind == value.KindInt64 && b.Kind == value.KindInt64 {
			frame.Push(value.Int64Value(value.AsInt64(a) - value.AsInt64(b)))
			return nil
		}
	case bytecode.OpMulI64:
		if a.Kind == value.KindInt64 && b.Kind == value.KindInt64 {
			frame.Push(value.Int64Value(value.AsInt64(a) * value.AsInt64(b)))
			return nil
		}
	case bytecode.OpDivI64:
		// `/` on integers produces a float, exactly like the dispatched
		// `/` overload the fallback path would reach — a hint may never
		// change a result (§4.1).
		if a.Kind == value.KindInt64 && b.Kind == value.KindInt64 {
			frame.Push(value.Float64Value(float64(value.AsInt64(a)) / float64(value.AsInt64(b))))
			return nil
		}
	case bytecode.OpAddF64:
		if a.Kind == value.KindFloat64 && b.Kind == value.KindFloat64 {
			frame.Push(value.Float64Value(value.AsFloat64(a) + value.AsFloat64(b)))
			return nil
		}
	case bytecode.OpSubF64:
		if a.Kind == value.KindFloat64 && b.Kind == value.KindFloat64 {
			frame.Push(value.Float64Value(value.AsFloat64(a) - value.AsFloat64(b)))
			return nil
		}
	case bytecode.OpMulF64:
		if a.Kind == value.KindFloat64 && b.Kind == value.KindFloat64 {
			frame.Push(value.Float64Value(value.AsFloat64(a) * value.AsFloat64(b)))
			return nil
		}
	case bytecode.OpDivF64:
		if a.Kind == value.KindFloat64 && b.Kind == value.KindFloat64 {
			frame.Push(value.Float64Value(value.AsFloat64(a) / value.AsFloat64(b)))
			return nil
		}
	}

	name := arithHintSymbol(op)
	result, err := vm.dispatchAndCall(frame, name, []value.Value{a, b})
	if err != nil {
		return err
	}
	frame.Push(result)
	return nil
}

func arithHintSymbol(op bytecode.OpCode) string {
	switch op {
	case bytecode.OpAddI64, bytecode.OpAddF64:
		return "+"
	case bytecode.OpSubI64, bytecode.OpSubF64:
		return "-"
	case bytecode.OpMulI64, bytecode.OpMulF64:
		return "*"
	case bytecode.OpDivI64, bytecode.OpDivF64:
		return "/"
	default:
		return "?"
	}
}
