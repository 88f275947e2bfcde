package builtins

import (
	"github.com/vela-lang/vela/internal/dispatch"
	"github.com/vela-lang/vela/internal/rterror"
	"github.com/vela-lang/vela/internal/typelattice"
	"github.com/vela-lang/vela/internal/value"
)

// RegisterContainers wires `push!, pop!, length, size, ndims, stride,
// strides, copy, fill!, getindex, setindex!, view` over Array/Memory/Tuple/
// Set, grounded on the teacher's builtin dispatch for DWScript's array
// intrinsics generalized from a single-type array family to this runtime's
// full container set (§4.4 "Containers").
func RegisterContainers(mt *dispatch.MethodTable, r *typelattice.Registry) {
	method(mt, "length", []typelattice.ID{r.Array}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Int64Value(int64(value.AsArray(a[0]).Len())), nil
	})
	method(mt, "length", []typelattice.ID{r.Memory}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Int64Value(int64(a[0].Data.(*value.Memory).Len())), nil
	})
	method(mt, "length", []typelattice.ID{r.Tuple}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Int64Value(int64(len(value.AsTuple(a[0]).Elems))), nil
	})
	method(mt, "getindex", []typelattice.ID{r.Tuple, r.Int64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		elems := value.AsTuple(a[0]).Elems
		i := int(value.AsInt64(a[1]))
		if i < 1 || i > len(elems) {
			return value.Value{}, &rterror.StringIndexError{Index: i}
		}
		return elems[i-1], nil
	})
	method(mt, "length", []typelattice.ID{r.NamedTuple}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Int64Value(int64(len(value.AsNamedTuple(a[0]).Elems))), nil
	})
	method(mt, "length", []typelattice.ID{r.Pairs}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Int64Value(int64(value.AsPairs(a[0]).Len())), nil
	})
	method(mt, "getindex", []typelattice.ID{r.Pairs, r.Symbol}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		p := value.AsPairs(a[0])
		if v, ok := p.Get(value.AsSymbol(a[1]).String()); ok {
			return v, nil
		}
		return value.Value{}, &rterror.KeyError{Key: a[1]}
	})
	method(mt, "haskey", []typelattice.ID{r.Pairs, r.Symbol}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		_, ok := value.AsPairs(a[0]).Get(value.AsSymbol(a[1]).String())
		return value.Bool(ok), nil
	})
	method(mt, "length", []typelattice.ID{r.Set}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Int64Value(int64(value.AsSet(a[0]).Len())), nil
	})
	method(mt, "length", []typelattice.ID{r.String}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Int64Value(int64(len([]rune(value.AsString(a[0]))))), nil
	})

	method(mt, "ndims", []typelattice.ID{r.Array}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Int64Value(int64(value.AsArray(a[0]).Rank())), nil
	})

	method(mt, "size", []typelattice.ID{r.Array}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		arr := value.AsArray(a[0])
		elems := make([]value.Value, arr.Rank())
		for i, d := range arr.Dims {
			elems[i] = value.Int64Value(int64(d))
		}
		return value.TupleValue(elems...), nil
	})

	method(mt, "stride", []typelattice.ID{r.Array, r.Int64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		arr := value.AsArray(a[0])
		k := int(value.AsInt64(a[1]))
		if k < 1 || k > len(arr.Strides) {
			return value.Value{}, &rterror.DimensionMismatch{Message: "stride: dimension out of range"}
		}
		return value.Int64Value(int64(arr.Strides[k-1])), nil
	})

	method(mt, "strides", []typelattice.ID{r.Array}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		arr := value.AsArray(a[0])
		elems := make([]value.Value, len(arr.Strides))
		for i, s := range arr.Strides {
			elems[i] = value.Int64Value(int64(s))
		}
		return value.TupleValue(elems...), nil
	})

	method(mt, "copy", []typelattice.ID{r.Array}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		src := value.AsArray(a[0])
		out := value.NewArray(src.ElemKind, append([]int(nil), src.Dims...), value.Nothing())
		n := src.Len()
		for i := 0; i < n; i++ {
			v, err := src.Parent.Get(src.Offset + i*src.Strides[0])
			if err != nil {
				return value.Value{}, err
			}
			if err := out.Parent.Set(i, v); err != nil {
				return value.Value{}, err
			}
		}
		return value.ArrayValue(out), nil
	})

	method(mt, "fill!", []typelattice.ID{r.Array, r.Any}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		arr := value.AsArray(a[0])
		for i := 0; i < arr.Parent.Len(); i++ {
			if err := arr.Parent.Set(i, a[1]); err != nil {
				return value.Value{}, err
			}
		}
		return a[0], nil
	})

	method(mt, "view", []typelattice.ID{r.Array, r.Int64, r.Int64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		arr := value.AsArray(a[0])
		start := int(value.AsInt64(a[1]))
		length := int(value.AsInt64(a[2]))
		return value.ArrayValue(arr.View(start, length)), nil
	})

	// Set(xs...) builds an unordered unique collection; duplicates in the
	// argument list collapse.
	method(mt, "Set", []typelattice.ID{r.Any}, true, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		s := value.NewSet()
		for _, v := range a {
			s.Add(v)
		}
		return value.SetValue(s), nil
	})
	method(mt, "in", []typelattice.ID{r.Any, r.Set}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Bool(value.AsSet(a[1]).Has(a[0])), nil
	})

	// Pair{first, second} and its accessors. Distinct from Pairs, the
	// keyword-argument bundle.
	method(mt, "Pair", []typelattice.ID{r.Any, r.Any}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.PairValue(a[0], a[1]), nil
	})
	method(mt, "first", []typelattice.ID{r.Pair}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.AsPair(a[0]).First, nil
	})
	method(mt, "last", []typelattice.ID{r.Pair}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.AsPair(a[0]).Second, nil
	})
	method(mt, "first", []typelattice.ID{r.Range}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Int64Value(value.AsRange(a[0]).Lo), nil
	})
	method(mt, "last", []typelattice.ID{r.Range}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Int64Value(value.AsRange(a[0]).Hi), nil
	})

	// push!/pop! on a 1-D array grow/shrink its backing Memory in place, so
	// every alias of the array observes the new length (§5 value ownership).
	method(mt, "push!", []typelattice.ID{r.Array, r.Any}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		arr := value.AsArray(a[0])
		if arr.Rank() != 1 {
			return value.Value{}, &rterror.DimensionMismatch{Message: "push!: array must be 1-dimensional"}
		}
		arr.Parent.Data = append(arr.Parent.Data, a[1])
		arr.Dims[0]++
		return a[0], nil
	})
	method(mt, "pop!", []typelattice.ID{r.Array}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		arr := value.AsArray(a[0])
		if arr.Rank() != 1 || arr.Dims[0] == 0 {
			return value.Value{}, &rterror.ArgumentError{Message: "pop!: array must be 1-dimensional and non-empty"}
		}
		last := arr.Parent.Data[len(arr.Parent.Data)-1]
		arr.Parent.Data = arr.Parent.Data[:len(arr.Parent.Data)-1]
		arr.Dims[0]--
		return last, nil
	})

	method(mt, "push!", []typelattice.ID{r.Set, r.Any}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		value.AsSet(a[0]).Add(a[1])
		return a[0], nil
	})
	method(mt, "pop!", []typelattice.ID{r.Set, r.Any}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		s := value.AsSet(a[0])
		if !s.Has(a[1]) {
			return value.Value{}, &rterror.KeyError{Key: a[1]}
		}
		s.Delete(a[1])
		return a[1], nil
	})

	method(mt, "getindex", []typelattice.ID{r.Array, r.Int64}, true, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		arr := value.AsArray(a[0])
		idx := make([]int, len(a)-1)
		for i, v := range a[1:] {
			idx[i] = int(value.AsInt64(v))
		}
		v, err := arr.Get(idx...)
		if err != nil {
			return value.Value{}, &rterror.DimensionMismatch{Message: err.Error()}
		}
		return v, nil
	})
	method(mt, "setindex!", []typelattice.ID{r.Array, r.Any, r.Int64}, true, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		arr := value.AsArray(a[0])
		idx := make([]int, len(a)-2)
		for i, v := range a[2:] {
			idx[i] = int(value.AsInt64(v))
		}
		if err := arr.Set(a[1], idx...); err != nil {
			return value.Value{}, &rterror.DimensionMismatch{Message: err.Error()}
		}
		return a[0], nil
	})
}
