// Package builtins implements the native method bodies the VM dispatches
// into exactly like user-defined methods (§4.2: "every builtin is
// registered in the method table as if user-defined"). Each Register*
// function adds one family of builtins to a shared dispatch.MethodTable.
package builtins

import (
	"github.com/vela-lang/vela/internal/dispatch"
	"github.com/vela-lang/vela/internal/typelattice"
	"github.com/vela-lang/vela/internal/vm"
)

// RegisterAll wires every builtin family into mt, using r for type IDs and
// promotions for the numeric tower's widening rules. cfg is the same
// *vm.Config the VM running this program will consult, so `setprecision`/
// `setrounding` (registered by RegisterIntrospection) actually take effect
// rather than mutating a throwaway Config nothing reads. Called once at VM
// construction (pkg/vela.New), mirroring the teacher's
// `internal/interp/builtins_*.go` registration-at-startup pattern.
func RegisterAll(mt *dispatch.MethodTable, r *typelattice.Registry, promotions *dispatch.PromotionTable, cfg *vm.Config) {
	registerPromotions(promotions, r)
	RegisterArithmetic(mt, r, promotions, cfg)
	RegisterDivMod(mt, r)
	RegisterComparison(mt, r)
	RegisterIntrospection(mt, r, cfg)
	RegisterPredicates(mt, r)
	RegisterConversion(mt, r, promotions)
	RegisterContainers(mt, r)
	RegisterStrings(mt, r)
	RegisterGenerators(mt, r)
	RegisterExceptionConstructors(mt, r)
	RegisterIO(mt, r, cfg)
}

func registerPromotions(p *dispatch.PromotionTable, r *typelattice.Registry) {
	ints := []typelattice.ID{r.Int8, r.Int16, r.Int32, r.Int64}
	for _, small := range ints {
		p.Register(small, r.Int64, r.Int64)
	}
	floats := []typelattice.ID{r.Float16, r.Float32}
	for _, f := range floats {
		p.Register(f, r.Float64, r.Float64)
	}
	for _, i := range append(ints, r.Int64) {
		p.Register(i, r.Float64, r.Float64)
	}
	p.Register(r.Int64, r.BigInt, r.BigInt)
	p.Register(r.Float64, r.BigFloat, r.BigFloat)
	p.Register(r.BigInt, r.BigFloat, r.BigFloat)
	p.Register(r.Rational, r.Float64, r.Float64)
	p.Register(r.Bool, r.Int64, r.Int64)
	// Int + Rational -> Rational, Bool + Float -> Float (§8 properties 3/4).
	p.Register(r.Int64, r.Rational, r.Rational)
	p.Register(r.Bool, r.Float64, r.Float64)
	p.Register(r.Int64, r.Complex, r.Complex)
	p.Register(r.Float64, r.Complex, r.Complex)
}

func method(mt *dispatch.MethodTable, name string, params []typelattice.ID, variadic bool, fn dispatch.BuiltinFunc) {
	mt.AddMethod(&dispatch.Method{FunctionName: name, ParamTypes: params, Variadic: variadic, Native: fn})
}
