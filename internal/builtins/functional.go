package builtins

import (
	"github.com/vela-lang/vela/internal/dispatch"
	"github.com/vela-lang/vela/internal/rterror"
	"github.com/vela-lang/vela/internal/typelattice"
	"github.com/vela-lang/vela/internal/value"
)

// Invoker runs an already-resolved interpreted method; the VM satisfies it.
// Builtins that call back into program code (map with a do-block, map with
// a named function) go through this rather than importing the VM's loop.
type Invoker interface {
	CallMethod(m *dispatch.Method, args []value.Value) (value.Value, error)
}

// RegisterFunctional wires the higher-order builtins. Registered after VM
// construction (unlike RegisterAll's families) since they need the Invoker
// to run interpreted callees.
func RegisterFunctional(mt *dispatch.MethodTable, r *typelattice.Registry, inv Invoker) {
	mapBody := func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		elems, err := elementsOf(a[1])
		if err != nil {
			return value.Value{}, err
		}
		results := make([]value.Value, len(elems))
		for i, e := range elems {
			res, err := applyCallable(mt, r, inv, a[0], []value.Value{e})
			if err != nil {
				return value.Value{}, err
			}
			results[i] = res
		}
		return arrayOf(results), nil
	}
	method(mt, "map", []typelattice.ID{r.Function, r.Array}, false, mapBody)
	method(mt, "map", []typelattice.ID{r.Function, r.Range}, false, mapBody)
	method(mt, "map", []typelattice.ID{r.Function, r.Generator}, false, mapBody)
	method(mt, "map", []typelattice.ID{r.Function, r.Tuple}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		t := value.AsTuple(a[1])
		results := make([]value.Value, len(t.Elems))
		for i, e := range t.Elems {
			res, err := applyCallable(mt, r, inv, a[0], []value.Value{e})
			if err != nil {
				return value.Value{}, err
			}
			results[i] = res
		}
		return value.TupleValue(results...), nil
	})

	method(mt, "foreach", []typelattice.ID{r.Function, r.Array}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		elems, err := elementsOf(a[1])
		if err != nil {
			return value.Value{}, err
		}
		for _, e := range elems {
			if _, err := applyCallable(mt, r, inv, a[0], []value.Value{e}); err != nil {
				return value.Value{}, err
			}
		}
		return value.Nothing(), nil
	})

	method(mt, "filter", []typelattice.ID{r.Function, r.Array}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		elems, err := elementsOf(a[1])
		if err != nil {
			return value.Value{}, err
		}
		var kept []value.Value
		for _, e := range elems {
			res, err := applyCallable(mt, r, inv, a[0], []value.Value{e})
			if err != nil {
				return value.Value{}, err
			}
			if value.AsBool(res) {
				kept = append(kept, e)
			}
		}
		return arrayOf(kept), nil
	})
}

// applyCallable invokes f — a closure, or a generic-function identity
// resolved through dispatch — with args.
func applyCallable(mt *dispatch.MethodTable, r *typelattice.Registry, inv Invoker, f value.Value, args []value.Value) (value.Value, error) {
	switch f.Kind {
	case value.KindClosure:
		return value.AsCallable(f).Call(args)
	case value.KindGenericFunction, value.KindFunction:
		name := callableName(f)
		argTypes := make([]typelattice.ID, len(args))
		for i, a := range args {
			argTypes[i] = value.TypeOf(r, a)
		}
		res, err := dispatch.Dispatch(mt, r.Lattice, name, argTypes)
		if err != nil {
			return value.Value{}, err
		}
		if res.Method.Native != nil {
			return res.Method.Native(args, res.Bindings)
		}
		return inv.CallMethod(res.Method, args)
	default:
		return value.Value{}, &rterror.TypeError{Context: "map", Expected: "a callable", Got: f}
	}
}

func callableName(f value.Value) string {
	if f.Kind == value.KindGenericFunction {
		return value.AsGenericFunctionIdentity(f).Name
	}
	return value.AsFunctionIdentity(f).Name
}

// elementsOf flattens any iterable builtins fold over into a slice.
func elementsOf(v value.Value) ([]value.Value, error) {
	switch v.Kind {
	case value.KindArray:
		a := value.AsArray(v)
		out := make([]value.Value, a.Len())
		for i := range out {
			e, err := a.Parent.Get(a.Offset + i)
			if err != nil {
				return nil, err
			}
			out[i] = e
		}
		return out, nil
	case value.KindRange:
		rg := value.AsRange(v)
		var out []value.Value
		for i := rg.Lo; i <= rg.Hi; i++ {
			out = append(out, value.Int64Value(i))
		}
		return out, nil
	case value.KindGenerator:
		return value.AsGenerator(v).Elems, nil
	case value.KindTuple:
		return value.AsTuple(v).Elems, nil
	default:
		return nil, &rterror.ArgumentError{Message: "not an iterable: " + v.Kind.String()}
	}
}

// arrayOf builds a 1-D Array whose element kind is the promoted common
// kind of elems (value.CommonElemKind's rule).
func arrayOf(elems []value.Value) value.Value {
	return value.ArrayValue(value.NewArrayFrom(elems))
}
