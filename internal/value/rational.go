package value

import "math/big"

// Rational holds {num, den} over the BigInt element type, with den>0 and
// gcd(|num|,den)=1 maintained as an invariant by NewRational. The spec
// allows Rational{T} over any integer element type, but the reduction step
// (exact gcd) is only meaningful over arbitrary precision, so the canonical
// storage is always *big.Int; narrower element types are tracked via the
// wrapped operand Values at the call site, not inside Rational itself.
type Rational struct {
	Num *big.Int
	Den *big.Int
}

// NewRational reduces num/den to lowest terms with a positive denominator.
// Division by zero is the caller's responsibility to reject beforehand
// (DivideError, §7) — NewRational itself would otherwise panic inside
// big.Int.GCD on a zero denominator.
func NewRational(num, den *big.Int) Rational {
	if den.Sign() == 0 {
		panic("value: rational with zero denominator")
	}
	n := new(big.Int).Set(num)
	d := new(big.Int).Set(den)
	if d.Sign() < 0 {
		n.Neg(n)
		d.Neg(d)
	}
	g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(n), d)
	if g.Sign() != 0 && g.Cmp(big.NewInt(1)) != 0 {
		n.Quo(n, g)
		d.Quo(d, g)
	}
	return Rational{Num: n, Den: d}
}

func RationalValue(num, den *big.Int) Value {
	return Value{Kind: KindRational, Data: NewRational(num, den)}
}

func AsRational(v Value) Rational {
	r, _ := v.Data.(Rational)
	return r
}

// Add, Sub, Mul, Quo implement rational arithmetic over the reduced form.
func (r Rational) Add(o Rational) Rational {
	num := new(big.Int).Add(new(big.Int).Mul(r.Num, o.Den), new(big.Int).Mul(o.Num, r.Den))
	den := new(big.Int).Mul(r.Den, o.Den)
	return NewRational(num, den)
}

func (r Rational) Sub(o Rational) Rational {
	num := new(big.Int).Sub(new(big.Int).Mul(r.Num, o.Den), new(big.Int).Mul(o.Num, r.Den))
	den := new(big.Int).Mul(r.Den, o.Den)
	return NewRational(num, den)
}

func (r Rational) Mul(o Rational) Rational {
	return NewRational(new(big.Int).Mul(r.Num, o.Num), new(big.Int).Mul(r.Den, o.Den))
}

func (r Rational) Quo(o Rational) Rational {
	return NewRational(new(big.Int).Mul(r.Num, o.Den), new(big.Int).Mul(r.Den, o.Num))
}

// Cmp compares two rationals via cross-multiplication.
func (r Rational) Cmp(o Rational) int {
	lhs := new(big.Int).Mul(r.Num, o.Den)
	rhs := new(big.Int).Mul(o.Num, r.Den)
	return lhs.Cmp(rhs)
}

func (r Rational) Float64() float64 {
	f := new(big.Rat).SetFrac(r.Num, r.Den)
	out, _ := f.Float64()
	return out
}

// RationalFromInt builds the rational n/1, used when promoting an Integer operand
// into a mixed Int/Rational binary operation (§8 scenario C).
func RationalFromInt(n *big.Int) Rational {
	return Rational{Num: new(big.Int).Set(n), Den: big.NewInt(1)}
}
