package builtins

import (
	"github.com/vela-lang/vela/internal/dispatch"
	"github.com/vela-lang/vela/internal/rterror"
	"github.com/vela-lang/vela/internal/typelattice"
	"github.com/vela-lang/vela/internal/value"
)

// RegisterGenerators wires `collect, sum, prod, any, all` over Generator
// (§4.3 "Let, begin, generators", §9 "Generators"), the reduction builtins
// a `(expr for v in iter)` comprehension's result feeds into. These fold
// natively over the Generator's already-collected elements rather than
// redispatching through the method table per element; unlike the
// higher-order builtins of RegisterFunctional (map, foreach, filter),
// which call back into interpreted code through the VM, they take no
// callback and need no handle to the VM.
func RegisterGenerators(mt *dispatch.MethodTable, r *typelattice.Registry) {
	method(mt, "collect", []typelattice.ID{r.Generator}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return arrayOf(value.AsGenerator(a[0]).Elems), nil
	})
	method(mt, "collect", []typelattice.ID{r.Range}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		elems := value.NewIterator(a[0])
		out := []value.Value{}
		for {
			v, ok := elems.Next()
			if !ok {
				break
			}
			out = append(out, v)
		}
		return arrayOf(out), nil
	})

	method(mt, "sum", []typelattice.ID{r.Generator}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return reduceNumeric(value.AsGenerator(a[0]).Elems, 0, func(acc int64, x int64) int64 { return acc + x }, func(acc float64, x float64) float64 { return acc + x })
	})
	method(mt, "prod", []typelattice.ID{r.Generator}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return reduceNumeric(value.AsGenerator(a[0]).Elems, 1, func(acc int64, x int64) int64 { return acc * x }, func(acc float64, x float64) float64 { return acc * x })
	})

	method(mt, "any", []typelattice.ID{r.Generator}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		for _, v := range value.AsGenerator(a[0]).Elems {
			if value.AsBool(v) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	})
	method(mt, "all", []typelattice.ID{r.Generator}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		for _, v := range value.AsGenerator(a[0]).Elems {
			if !value.AsBool(v) {
				return value.Bool(false), nil
			}
		}
		return value.Bool(true), nil
	})
}

// reduceNumeric folds elems with intFn as long as every element seen so far
// is an integer kind, switching once and for all to floatFn (re-running the
// fold in float64) the moment a float element is encountered — the same
// int-stays-exact-until-it-can't rule `^` and `/` follow elsewhere in the
// numeric tower.
func reduceNumeric(elems []value.Value, identity int64, intFn func(int64, int64) int64, floatFn func(float64, float64) float64) (value.Value, error) {
	iacc := identity
	for i, v := range elems {
		if v.IsFloat() {
			facc := float64(iacc)
			for _, v2 := range elems[i:] {
				switch {
				case v2.IsFloat():
					facc = floatFn(facc, value.AsFloat64(v2))
				case v2.IsInteger():
					facc = floatFn(facc, float64(value.AsInt64(v2)))
				default:
					return value.Value{}, &rterror.TypeError{Context: "sum/prod", Expected: "a numeric generator", Got: v2}
				}
			}
			return value.Float64Value(facc), nil
		}
		if !v.IsInteger() {
			return value.Value{}, &rterror.TypeError{Context: "sum/prod", Expected: "a numeric generator", Got: v}
		}
		iacc = intFn(iacc, value.AsInt64(v))
	}
	return value.Int64Value(iacc), nil
}
