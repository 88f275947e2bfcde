package builtins

import (
	"math"
	"math/big"

	"github.com/vela-lang/vela/internal/dispatch"
	"github.com/vela-lang/vela/internal/rterror"
	"github.com/vela-lang/vela/internal/typelattice"
	"github.com/vela-lang/vela/internal/value"
	"github.com/vela-lang/vela/internal/vm"
)

// RegisterArithmetic wires `+ - * / div rem mod gcd lcm` over
// Int64/Float64/BigInt/BigFloat/Rational/Complex — the numeric tower
// corners §8's test scenarios exercise directly (B: BigInt, C:
// Rational, D: Complex). The remaining narrow-width tower (Int8..Int128,
// UInt*, Float16) dispatches through the same generic-function names once
// internal/asm's lowerer emits the narrower-width constructors; the
// arithmetic hint opcodes in internal/vm already fall back to these exact
// method names (`arithHintSymbol`) on any kind mismatch, so adding a
// narrower-width overload later is purely additive.
func RegisterArithmetic(mt *dispatch.MethodTable, r *typelattice.Registry, promotions *dispatch.PromotionTable, cfg *vm.Config) {
	i64, f64, bi, bf, rat, cplx := r.Int64, r.Float64, r.BigInt, r.BigFloat, r.Rational, r.Complex

	method(mt, "+", []typelattice.ID{i64, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Int64Value(value.AsInt64(a[0]) + value.AsInt64(a[1])), nil
	})
	method(mt, "+", []typelattice.ID{f64, f64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Float64Value(value.AsFloat64(a[0]) + value.AsFloat64(a[1])), nil
	})
	method(mt, "+", []typelattice.ID{i64, f64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Float64Value(float64(value.AsInt64(a[0])) + value.AsFloat64(a[1])), nil
	})
	method(mt, "+", []typelattice.ID{f64, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Float64Value(value.AsFloat64(a[0]) + float64(value.AsInt64(a[1]))), nil
	})
	method(mt, "+", []typelattice.ID{bi, bi}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.BigIntValue(new(big.Int).Add(value.AsBigInt(a[0]), value.AsBigInt(a[1]))), nil
	})

	method(mt, "-", []typelattice.ID{i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Int64Value(-value.AsInt64(a[0])), nil
	})
	method(mt, "-", []typelattice.ID{f64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Float64Value(-value.AsFloat64(a[0])), nil
	})
	method(mt, "-", []typelattice.ID{i64, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Int64Value(value.AsInt64(a[0]) - value.AsInt64(a[1])), nil
	})
	method(mt, "-", []typelattice.ID{f64, f64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Float64Value(value.AsFloat64(a[0]) - value.AsFloat64(a[1])), nil
	})
	method(mt, "-", []typelattice.ID{bi, bi}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.BigIntValue(new(big.Int).Sub(value.AsBigInt(a[0]), value.AsBigInt(a[1]))), nil
	})

	method(mt, "*", []typelattice.ID{i64, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Int64Value(value.AsInt64(a[0]) * value.AsInt64(a[1])), nil
	})
	method(mt, "*", []typelattice.ID{f64, f64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Float64Value(value.AsFloat64(a[0]) * value.AsFloat64(a[1])), nil
	})
	method(mt, "*", []typelattice.ID{bi, bi}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.BigIntValue(new(big.Int).Mul(value.AsBigInt(a[0]), value.AsBigInt(a[1]))), nil
	})
	method(mt, "*", []typelattice.ID{r.String, r.String}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.String(value.AsString(a[0]) + value.AsString(a[1])), nil
	})

	method(mt, "/", []typelattice.ID{f64, f64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Float64Value(value.AsFloat64(a[0]) / value.AsFloat64(a[1])), nil
	})
	method(mt, "/", []typelattice.ID{i64, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		// `/` always produces a float, per the numeric tower's promotion
		// rule (integer division is the separate `÷`/`div` builtin below).
		return value.Float64Value(float64(value.AsInt64(a[0])) / float64(value.AsInt64(a[1]))), nil
	})

	// div/rem are also spelled `÷`/`%` (§4.4); both names dispatch to the
	// same native body rather than one aliasing the other through the
	// method table, since BuiltinFunc has no indirection for that.
	divFn := func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		x, y := value.AsInt64(a[0]), value.AsInt64(a[1])
		if y == 0 {
			return value.Value{}, &rterror.DivideError{}
		}
		return value.Int64Value(x / y), nil
	}
	method(mt, "div", []typelattice.ID{i64, i64}, false, divFn)
	method(mt, "÷", []typelattice.ID{i64, i64}, false, divFn)

	remFn := func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		x, y := value.AsInt64(a[0]), value.AsInt64(a[1])
		if y == 0 {
			return value.Value{}, &rterror.DivideError{}
		}
		return value.Int64Value(x % y), nil
	}
	method(mt, "rem", []typelattice.ID{i64, i64}, false, remFn)
	method(mt, "%", []typelattice.ID{i64, i64}, false, remFn)

	method(mt, "mod", []typelattice.ID{i64, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		x, y := value.AsInt64(a[0]), value.AsInt64(a[1])
		if y == 0 {
			return value.Value{}, &rterror.DivideError{}
		}
		m := x % y
		if (m < 0) != (y < 0) && m != 0 {
			m += y
		}
		return value.Int64Value(m), nil
	})

	// BigFloat over the full tower: both operands already arbitrary
	// precision, so no promotion table lookup is needed for this corner.
	// newBigFloat seeds the result with cfg's configured precision/rounding
	// (set by the `setprecision`/`setrounding` builtins) rather than a bare
	// new(big.Float){}; precision 0 keeps math/big's own infer-from-operand
	// default, so this is a no-op until an embedder or program overrides it.
	method(mt, "+", []typelattice.ID{bf, bf}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.BigFloatValue(newBigFloat(cfg).Add(value.AsBigFloat(a[0]), value.AsBigFloat(a[1]))), nil
	})
	method(mt, "-", []typelattice.ID{bf, bf}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.BigFloatValue(newBigFloat(cfg).Sub(value.AsBigFloat(a[0]), value.AsBigFloat(a[1]))), nil
	})
	method(mt, "*", []typelattice.ID{bf, bf}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.BigFloatValue(newBigFloat(cfg).Mul(value.AsBigFloat(a[0]), value.AsBigFloat(a[1]))), nil
	})
	method(mt, "/", []typelattice.ID{bf, bf}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.BigFloatValue(newBigFloat(cfg).Quo(value.AsBigFloat(a[0]), value.AsBigFloat(a[1]))), nil
	})

	// Rational{T}: `1 // 2 + 2` (§8 scenario C) needs Rational op Rational
	// and the Int-promotes-to-Rational mixed corners both ways, since `+`
	// must be commutative (§8 property 4) across Int × Rational.
	method(mt, "+", []typelattice.ID{rat, rat}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return ratValue(value.AsRational(a[0]).Add(value.AsRational(a[1]))), nil
	})
	method(mt, "+", []typelattice.ID{rat, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return ratValue(value.AsRational(a[0]).Add(value.RationalFromInt(value.AsBigInt(a[1])))), nil
	})
	method(mt, "+", []typelattice.ID{i64, rat}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return ratValue(value.RationalFromInt(value.AsBigInt(a[0])).Add(value.AsRational(a[1]))), nil
	})
	method(mt, "-", []typelattice.ID{rat, rat}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return ratValue(value.AsRational(a[0]).Sub(value.AsRational(a[1]))), nil
	})
	method(mt, "-", []typelattice.ID{rat, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return ratValue(value.AsRational(a[0]).Sub(value.RationalFromInt(value.AsBigInt(a[1])))), nil
	})
	method(mt, "-", []typelattice.ID{i64, rat}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return ratValue(value.RationalFromInt(value.AsBigInt(a[0])).Sub(value.AsRational(a[1]))), nil
	})
	method(mt, "*", []typelattice.ID{rat, rat}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return ratValue(value.AsRational(a[0]).Mul(value.AsRational(a[1]))), nil
	})
	method(mt, "*", []typelattice.ID{rat, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return ratValue(value.AsRational(a[0]).Mul(value.RationalFromInt(value.AsBigInt(a[1])))), nil
	})
	method(mt, "*", []typelattice.ID{i64, rat}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return ratValue(value.RationalFromInt(value.AsBigInt(a[0])).Mul(value.AsRational(a[1]))), nil
	})
	method(mt, "/", []typelattice.ID{rat, rat}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		o := value.AsRational(a[1])
		if o.Num.Sign() == 0 {
			return value.Value{}, &rterror.DivideError{}
		}
		return ratValue(value.AsRational(a[0]).Quo(o)), nil
	})

	// Complex{T}: `(1+2im) + (3+4im)` (§8 scenario D).
	method(mt, "+", []typelattice.ID{cplx, cplx}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		c := value.AsComplex(a[0]).Add(value.AsComplex(a[1]))
		return value.ComplexValue(c.Re, c.Im, c.ElemKind), nil
	})
	method(mt, "-", []typelattice.ID{cplx, cplx}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		c := value.AsComplex(a[0]).Sub(value.AsComplex(a[1]))
		return value.ComplexValue(c.Re, c.Im, c.ElemKind), nil
	})
	method(mt, "*", []typelattice.ID{cplx, cplx}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		c := value.AsComplex(a[0]).Mul(value.AsComplex(a[1]))
		return value.ComplexValue(c.Re, c.Im, c.ElemKind), nil
	})
	method(mt, "/", []typelattice.ID{cplx, cplx}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		c := value.AsComplex(a[0]).Quo(value.AsComplex(a[1]))
		return value.ComplexValue(c.Re, c.Im, c.ElemKind), nil
	})

	// `^` (power, §4.4): Int64^Int64 stays exact via repeated squaring for
	// non-negative exponents and falls back to float for negative ones
	// (matching `/`'s always-float-for-non-exact-results rule); the mixed
	// and BigInt corners promote the same way +/-/* do above.
	method(mt, "^", []typelattice.ID{i64, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		base, exp := value.AsInt64(a[0]), value.AsInt64(a[1])
		if exp < 0 {
			return value.Float64Value(math.Pow(float64(base), float64(exp))), nil
		}
		return value.Int64Value(intPow(base, exp)), nil
	})
	method(mt, "^", []typelattice.ID{f64, f64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Float64Value(math.Pow(value.AsFloat64(a[0]), value.AsFloat64(a[1]))), nil
	})
	method(mt, "^", []typelattice.ID{i64, f64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Float64Value(math.Pow(float64(value.AsInt64(a[0])), value.AsFloat64(a[1]))), nil
	})
	method(mt, "^", []typelattice.ID{f64, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Float64Value(math.Pow(value.AsFloat64(a[0]), float64(value.AsInt64(a[1])))), nil
	})
	method(mt, "^", []typelattice.ID{bi, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		exp := value.AsInt64(a[1])
		if exp < 0 {
			return value.Value{}, &rterror.DomainError{Message: "negative exponent for BigInt ^"}
		}
		return value.BigIntValue(new(big.Int).Exp(value.AsBigInt(a[0]), big.NewInt(exp), nil)), nil
	})

	// Mixed Int/Float × Complex corners, both orders, so `+`/`*` stay
	// commutative across the tower (§8 property 4 exercises Int × Complex).
	for _, op := range []struct {
		name string
		fn   func(x, y value.Complex) value.Complex
	}{
		{"+", func(x, y value.Complex) value.Complex { return x.Add(y) }},
		{"-", func(x, y value.Complex) value.Complex { return x.Sub(y) }},
		{"*", func(x, y value.Complex) value.Complex { return x.Mul(y) }},
	} {
		fn := op.fn
		method(mt, op.name, []typelattice.ID{i64, cplx}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
			c := fn(value.AsComplex(value.NewComplexFromInt(value.AsInt64(a[0]), 0)), value.AsComplex(a[1]))
			return value.ComplexValue(c.Re, c.Im, c.ElemKind), nil
		})
		method(mt, op.name, []typelattice.ID{cplx, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
			c := fn(value.AsComplex(a[0]), value.AsComplex(value.NewComplexFromInt(value.AsInt64(a[1]), 0)))
			return value.ComplexValue(c.Re, c.Im, c.ElemKind), nil
		})
		method(mt, op.name, []typelattice.ID{f64, cplx}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
			c := fn(value.AsComplex(value.NewComplexFromFloat(value.AsFloat64(a[0]), 0)), value.AsComplex(a[1]))
			return value.ComplexValue(c.Re, c.Im, c.ElemKind), nil
		})
		method(mt, op.name, []typelattice.ID{cplx, f64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
			c := fn(value.AsComplex(a[0]), value.AsComplex(value.NewComplexFromFloat(value.AsFloat64(a[1]), 0)))
			return value.ComplexValue(c.Re, c.Im, c.ElemKind), nil
		})
	}

	// Bool coerces numerically (§3.1): Bool × Float promotes to Float64,
	// Bool × Int to Int64, again registered both ways for commutativity.
	boolAsF64 := func(v value.Value) float64 {
		if value.AsBool(v) {
			return 1
		}
		return 0
	}
	boolAsI64 := func(v value.Value) int64 {
		if value.AsBool(v) {
			return 1
		}
		return 0
	}
	method(mt, "+", []typelattice.ID{r.Bool, f64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Float64Value(boolAsF64(a[0]) + value.AsFloat64(a[1])), nil
	})
	method(mt, "+", []typelattice.ID{f64, r.Bool}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Float64Value(value.AsFloat64(a[0]) + boolAsF64(a[1])), nil
	})
	method(mt, "*", []typelattice.ID{r.Bool, f64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Float64Value(boolAsF64(a[0]) * value.AsFloat64(a[1])), nil
	})
	method(mt, "*", []typelattice.ID{f64, r.Bool}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Float64Value(value.AsFloat64(a[0]) * boolAsF64(a[1])), nil
	})
	method(mt, "+", []typelattice.ID{r.Bool, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Int64Value(boolAsI64(a[0]) + value.AsInt64(a[1])), nil
	})
	method(mt, "+", []typelattice.ID{i64, r.Bool}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Int64Value(value.AsInt64(a[0]) + boolAsI64(a[1])), nil
	})

	method(mt, "-", []typelattice.ID{bi}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.BigIntValue(new(big.Int).Neg(value.AsBigInt(a[0]))), nil
	})
	method(mt, "-", []typelattice.ID{rat}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		rr := value.AsRational(a[0])
		return value.RationalValue(new(big.Int).Neg(rr.Num), new(big.Int).Set(rr.Den)), nil
	})

	method(mt, "gcd", []typelattice.ID{i64, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Int64Value(gcdInt64(value.AsInt64(a[0]), value.AsInt64(a[1]))), nil
	})
	method(mt, "lcm", []typelattice.ID{i64, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		x, y := value.AsInt64(a[0]), value.AsInt64(a[1])
		if x == 0 || y == 0 {
			return value.Int64Value(0), nil
		}
		g := gcdInt64(x, y)
		return value.Int64Value(abs64(x/g) * abs64(y)), nil
	})

	_ = promotions
}

// ratValue wraps a reduced Rational back into a Value, since NewRational's
// invariants (den>0, gcd(|num|,den)=1, §3.1) are already enforced by the
// Rational methods themselves (Add/Sub/Mul/Quo all return via NewRational).
func ratValue(r value.Rational) value.Value {
	return value.Value{Kind: value.KindRational, Data: r}
}

// newBigFloat seeds a fresh big.Float with cfg's configured precision and
// rounding mode, so every BigFloat op above honors whatever `setprecision`/
// `setrounding` last set instead of math/big's per-call inference.
func newBigFloat(cfg *vm.Config) *big.Float {
	return new(big.Float).SetPrec(cfg.BigFloatPrecision).SetMode(cfg.BigFloatRounding)
}

// intPow computes base**exp for exp >= 0 via repeated squaring, staying in
// Int64 exactly (no float rounding) the way `+`/`-`/`*` do for this corner.
func intPow(base, exp int64) int64 {
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

func gcdInt64(a, b int64) int64 {
	a, b = abs64(a), abs64(b)
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
