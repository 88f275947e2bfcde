package builtins

import (
	"github.com/vela-lang/vela/internal/dispatch"
	"github.com/vela-lang/vela/internal/typelattice"
	"github.com/vela-lang/vela/internal/value"
)

// RegisterComparison wires `== < <= > >= ! === !==` (`!=` is registered
// by RegisterStrings). `==` uses value equality (NaN != NaN, per IEEE 754,
// reused via Go's native float comparison); `===`/`!==` use the
// dual-parity identity rule (§4.2): scalar kinds (Nothing, Missing, Bool,
// Symbol, fixed-width integers, Float32/Float64, Char, String, DataType)
// compare by value, Array/Memory/Set/closures by reference identity, and
// any other compound is never `===` another value.
func RegisterComparison(mt *dispatch.MethodTable, r *typelattice.Registry) {
	i64, f64 := r.Int64, r.Float64

	method(mt, "==", []typelattice.ID{i64, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Bool(value.AsInt64(a[0]) == value.AsInt64(a[1])), nil
	})
	method(mt, "==", []typelattice.ID{f64, f64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Bool(value.AsFloat64(a[0]) == value.AsFloat64(a[1])), nil
	})
	method(mt, "==", []typelattice.ID{r.String, r.String}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Bool(value.AsString(a[0]) == value.AsString(a[1])), nil
	})
	method(mt, "==", []typelattice.ID{r.Any, r.Any}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Bool(value.Identical(a[0], a[1])), nil
	})

	method(mt, "<", []typelattice.ID{i64, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Bool(value.AsInt64(a[0]) < value.AsInt64(a[1])), nil
	})
	method(mt, "<", []typelattice.ID{f64, f64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Bool(value.AsFloat64(a[0]) < value.AsFloat64(a[1])), nil
	})
	method(mt, "<=", []typelattice.ID{i64, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Bool(value.AsInt64(a[0]) <= value.AsInt64(a[1])), nil
	})
	method(mt, "<=", []typelattice.ID{f64, f64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Bool(value.AsFloat64(a[0]) <= value.AsFloat64(a[1])), nil
	})
	method(mt, ">", []typelattice.ID{i64, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Bool(value.AsInt64(a[0]) > value.AsInt64(a[1])), nil
	})
	method(mt, ">", []typelattice.ID{f64, f64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Bool(value.AsFloat64(a[0]) > value.AsFloat64(a[1])), nil
	})
	method(mt, ">=", []typelattice.ID{i64, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Bool(value.AsInt64(a[0]) >= value.AsInt64(a[1])), nil
	})
	method(mt, ">=", []typelattice.ID{f64, f64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Bool(value.AsFloat64(a[0]) >= value.AsFloat64(a[1])), nil
	})

	method(mt, "!", []typelattice.ID{r.Bool}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Bool(!value.AsBool(a[0])), nil
	})

	method(mt, "===", []typelattice.ID{r.Any, r.Any}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Bool(identicalByReference(a[0], a[1])), nil
	})
	method(mt, "!==", []typelattice.ID{r.Any, r.Any}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Bool(!identicalByReference(a[0], a[1])), nil
	})
}

// identicalByReference implements `===`'s dual-parity rule: canonical
// singleton-like kinds compare by value (they're always the same object
// for a given value per spec), pointer-boxing containers by Go identity of
// the boxed payload, and every other compound reports false.
func identicalByReference(a, b value.Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case value.KindNothing, value.KindMissing, value.KindBool, value.KindSymbol,
		value.KindInt8, value.KindInt16, value.KindInt32, value.KindInt64,
		value.KindUInt8, value.KindUInt16, value.KindUInt32, value.KindUInt64,
		value.KindFloat32, value.KindFloat64, value.KindChar, value.KindString,
		value.KindDataType:
		return value.Identical(a, b)
	case value.KindArray, value.KindMemory, value.KindSet, value.KindClosure:
		// These box a pointer (or a Callable interface over one), so `==`
		// on the boxed `any` is always safe and means what reference
		// identity should mean here.
		return a.Data == b.Data
	default:
		// Everything else (Tuple, NamedTuple, Rational, Complex, Method,
		// Expr, HTML/Text/Some, ...) boxes a struct containing a slice or
		// a nested Value, which makes `==` on the boxed `any` panic at
		// runtime rather than report false. There's no well-defined
		// referential identity for these value-semantics compounds
		// anyway, so two instances are never `===`-identical even when
		// structurally equal.
		return false
	}
}
