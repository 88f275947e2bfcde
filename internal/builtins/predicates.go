package builtins

import (
	"math"

	"github.com/vela-lang/vela/internal/dispatch"
	"github.com/vela-lang/vela/internal/typelattice"
	"github.com/vela-lang/vela/internal/value"
)

// RegisterPredicates wires the numeric predicate family: `isnan, isinf,
// isfinite, iszero, isone, signbit, iseven, isodd`.
func RegisterPredicates(mt *dispatch.MethodTable, r *typelattice.Registry) {
	method(mt, "isnan", []typelattice.ID{r.Float64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Bool(math.IsNaN(value.AsFloat64(a[0]))), nil
	})
	method(mt, "isinf", []typelattice.ID{r.Float64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Bool(math.IsInf(value.AsFloat64(a[0]), 0)), nil
	})
	method(mt, "isfinite", []typelattice.ID{r.Float64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		f := value.AsFloat64(a[0])
		return value.Bool(!math.IsNaN(f) && !math.IsInf(f, 0)), nil
	})
	method(mt, "iszero", []typelattice.ID{r.Int64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Bool(value.AsInt64(a[0]) == 0), nil
	})
	method(mt, "iszero", []typelattice.ID{r.Float64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Bool(value.AsFloat64(a[0]) == 0), nil
	})
	method(mt, "isone", []typelattice.ID{r.Int64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Bool(value.AsInt64(a[0]) == 1), nil
	})
	method(mt, "signbit", []typelattice.ID{r.Float64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Bool(math.Signbit(value.AsFloat64(a[0]))), nil
	})
	method(mt, "iseven", []typelattice.ID{r.Int64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Bool(value.AsInt64(a[0])%2 == 0), nil
	})
	method(mt, "isodd", []typelattice.ID{r.Int64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Bool(value.AsInt64(a[0])%2 != 0), nil
	})
	method(mt, "ispow2", []typelattice.ID{r.Int64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		n := value.AsInt64(a[0])
		return value.Bool(n > 0 && n&(n-1) == 0), nil
	})

	method(mt, "ismissing", []typelattice.ID{r.Any}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Bool(a[0].IsMissing()), nil
	})
	method(mt, "isnothing", []typelattice.ID{r.Any}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Bool(a[0].IsNothing()), nil
	})
}
