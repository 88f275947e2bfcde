package builtins

import (
	"math/big"

	"github.com/vela-lang/vela/internal/dispatch"
	"github.com/vela-lang/vela/internal/rterror"
	"github.com/vela-lang/vela/internal/typelattice"
	"github.com/vela-lang/vela/internal/value"
)

// RegisterDivMod wires the floored/ceiling division family, modular
// arithmetic (`powermod`, `invmod`, `gcdx`), bit shifts, rational
// construction (`//`), and left division (`\`) — the §4.4 arithmetic
// entries beyond the basic four operators.
func RegisterDivMod(mt *dispatch.MethodTable, r *typelattice.Registry) {
	i64, f64, bi := r.Int64, r.Float64, r.BigInt

	method(mt, "fld", []typelattice.ID{i64, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		x, y := value.AsInt64(a[0]), value.AsInt64(a[1])
		if y == 0 {
			return value.Value{}, &rterror.DivideError{}
		}
		return value.Int64Value(fldInt64(x, y)), nil
	})
	method(mt, "cld", []typelattice.ID{i64, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		x, y := value.AsInt64(a[0]), value.AsInt64(a[1])
		if y == 0 {
			return value.Value{}, &rterror.DivideError{}
		}
		return value.Int64Value(-fldInt64(-x, y)), nil
	})
	method(mt, "fldmod", []typelattice.ID{i64, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		x, y := value.AsInt64(a[0]), value.AsInt64(a[1])
		if y == 0 {
			return value.Value{}, &rterror.DivideError{}
		}
		return value.TupleValue(value.Int64Value(fldInt64(x, y)), value.Int64Value(modInt64(x, y))), nil
	})

	// The 1-based variants index into {1..y} instead of {0..y-1}, the
	// convention 1-origin container math wants.
	method(mt, "mod1", []typelattice.ID{i64, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		x, y := value.AsInt64(a[0]), value.AsInt64(a[1])
		if y == 0 {
			return value.Value{}, &rterror.DivideError{}
		}
		return value.Int64Value(modInt64(x-1, y) + 1), nil
	})
	method(mt, "fld1", []typelattice.ID{i64, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		x, y := value.AsInt64(a[0]), value.AsInt64(a[1])
		if y == 0 {
			return value.Value{}, &rterror.DivideError{}
		}
		return value.Int64Value(fldInt64(x-1, y) + 1), nil
	})
	method(mt, "fldmod1", []typelattice.ID{i64, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		x, y := value.AsInt64(a[0]), value.AsInt64(a[1])
		if y == 0 {
			return value.Value{}, &rterror.DivideError{}
		}
		return value.TupleValue(value.Int64Value(fldInt64(x-1, y)+1), value.Int64Value(modInt64(x-1, y)+1)), nil
	})

	powermodFn := func(b, e, m *big.Int) (value.Value, error) {
		if m.Sign() == 0 {
			return value.Value{}, &rterror.DivideError{}
		}
		if e.Sign() < 0 {
			inv := new(big.Int).ModInverse(b, new(big.Int).Abs(m))
			if inv == nil {
				return value.Value{}, &rterror.DomainError{Message: "powermod: base not invertible modulo m"}
			}
			b, e = inv, new(big.Int).Neg(e)
		}
		return value.BigIntValue(new(big.Int).Exp(b, e, m)), nil
	}
	method(mt, "powermod", []typelattice.ID{i64, i64, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		res, err := powermodFn(big.NewInt(value.AsInt64(a[0])), big.NewInt(value.AsInt64(a[1])), big.NewInt(value.AsInt64(a[2])))
		if err != nil {
			return value.Value{}, err
		}
		// All-machine-width inputs stay machine width.
		return value.Int64Value(value.AsBigInt(res).Int64()), nil
	})
	method(mt, "powermod", []typelattice.ID{bi, i64, bi}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return powermodFn(value.AsBigInt(a[0]), big.NewInt(value.AsInt64(a[1])), value.AsBigInt(a[2]))
	})

	method(mt, "invmod", []typelattice.ID{i64, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		m := big.NewInt(value.AsInt64(a[1]))
		if m.Sign() == 0 {
			return value.Value{}, &rterror.DivideError{}
		}
		inv := new(big.Int).ModInverse(big.NewInt(value.AsInt64(a[0])), new(big.Int).Abs(m))
		if inv == nil {
			return value.Value{}, &rterror.DomainError{Message: "invmod: no inverse exists"}
		}
		return value.Int64Value(inv.Int64()), nil
	})

	method(mt, "gcdx", []typelattice.ID{i64, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		u, v := new(big.Int), new(big.Int)
		g := new(big.Int).GCD(u, v, big.NewInt(value.AsInt64(a[0])), big.NewInt(value.AsInt64(a[1])))
		return value.TupleValue(value.Int64Value(g.Int64()), value.Int64Value(u.Int64()), value.Int64Value(v.Int64())), nil
	})

	method(mt, "<<", []typelattice.ID{i64, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		x, n := value.AsInt64(a[0]), value.AsInt64(a[1])
		if n < 0 {
			return value.Int64Value(x >> uint(-n)), nil
		}
		return value.Int64Value(x << uint(n)), nil
	})
	method(mt, ">>", []typelattice.ID{i64, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		x, n := value.AsInt64(a[0]), value.AsInt64(a[1])
		if n < 0 {
			return value.Int64Value(x << uint(-n)), nil
		}
		return value.Int64Value(x >> uint(n)), nil
	})

	// `num // den` constructs a reduced Rational (§6 literal form; §8
	// scenario C reaches it through ordinary dispatch).
	method(mt, "//", []typelattice.ID{i64, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		den := value.AsInt64(a[1])
		if den == 0 {
			return value.Value{}, &rterror.DivideError{}
		}
		return value.RationalValue(big.NewInt(value.AsInt64(a[0])), big.NewInt(den)), nil
	})
	method(mt, "//", []typelattice.ID{bi, bi}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		if value.AsBigInt(a[1]).Sign() == 0 {
			return value.Value{}, &rterror.DivideError{}
		}
		return value.RationalValue(value.AsBigInt(a[0]), value.AsBigInt(a[1])), nil
	})

	// `x \ y` is y/x, the left-division spelling.
	method(mt, "\\", []typelattice.ID{f64, f64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Float64Value(value.AsFloat64(a[1]) / value.AsFloat64(a[0])), nil
	})
	method(mt, "\\", []typelattice.ID{i64, i64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Float64Value(float64(value.AsInt64(a[1])) / float64(value.AsInt64(a[0]))), nil
	})
}

// fldInt64 is floored division: rounds toward negative infinity, unlike
// Go's truncating `/`.
func fldInt64(x, y int64) int64 {
	q := x / y
	if (x%y != 0) && ((x < 0) != (y < 0)) {
		q--
	}
	return q
}

func modInt64(x, y int64) int64 {
	m := x % y
	if (m < 0) != (y < 0) && m != 0 {
		m += y
	}
	return m
}
