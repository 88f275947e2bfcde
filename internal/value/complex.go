package value

import "math/big"

// Complex holds {re, im} with a single element type. Re/Im are stored as
// *big.Float for a uniform exact-enough representation across the tower;
// the element type the spec requires (e.g. Complex{Int64} vs
// Complex{Float64}) is tracked by ElemKind so that typeof() and dispatch
// see the correct parametric type even though storage is unified.
type Complex struct {
	Re, Im   *big.Float
	ElemKind Kind
}

func ComplexValue(re, im *big.Float, elemKind Kind) Value {
	return Value{Kind: KindComplex, Data: Complex{Re: re, Im: im, ElemKind: elemKind}}
}

// NewComplexFromInt builds an exact Complex{Int64}-shaped value from two
// int64 components — the common case from `a+bim` literals (§6).
func NewComplexFromInt(re, im int64) Value {
	return ComplexValue(new(big.Float).SetInt64(re), new(big.Float).SetInt64(im), KindInt64)
}

func NewComplexFromFloat(re, im float64) Value {
	return ComplexValue(new(big.Float).SetFloat64(re), new(big.Float).SetFloat64(im), KindFloat64)
}

func AsComplex(v Value) Complex {
	c, _ := v.Data.(Complex)
	return c
}

func (c Complex) Add(o Complex) Complex {
	return Complex{
		Re:       new(big.Float).Add(c.Re, o.Re),
		Im:       new(big.Float).Add(c.Im, o.Im),
		ElemKind: widerElemKind(c.ElemKind, o.ElemKind),
	}
}

func (c Complex) Sub(o Complex) Complex {
	return Complex{
		Re:       new(big.Float).Sub(c.Re, o.Re),
		Im:       new(big.Float).Sub(c.Im, o.Im),
		ElemKind: widerElemKind(c.ElemKind, o.ElemKind),
	}
}

func (c Complex) Mul(o Complex) Complex {
	// (a+bi)(c+di) = (ac-bd) + (ad+bc)i
	ac := new(big.Float).Mul(c.Re, o.Re)
	bd := new(big.Float).Mul(c.Im, o.Im)
	ad := new(big.Float).Mul(c.Re, o.Im)
	bc := new(big.Float).Mul(c.Im, o.Re)
	return Complex{
		Re:       new(big.Float).Sub(ac, bd),
		Im:       new(big.Float).Add(ad, bc),
		ElemKind: widerElemKind(c.ElemKind, o.ElemKind),
	}
}

func (c Complex) Quo(o Complex) Complex {
	// (a+bi)/(c+di) = ((ac+bd) + (bc-ad)i) / (c^2+d^2)
	ac := new(big.Float).Mul(c.Re, o.Re)
	bd := new(big.Float).Mul(c.Im, o.Im)
	bc := new(big.Float).Mul(c.Im, o.Re)
	ad := new(big.Float).Mul(c.Re, o.Im)
	denom := new(big.Float).Add(new(big.Float).Mul(o.Re, o.Re), new(big.Float).Mul(o.Im, o.Im))
	re := new(big.Float).Quo(new(big.Float).Add(ac, bd), denom)
	im := new(big.Float).Quo(new(big.Float).Sub(bc, ad), denom)
	return Complex{Re: re, Im: im, ElemKind: KindFloat64}
}

func (c Complex) Equal(o Complex) bool {
	return c.Re.Cmp(o.Re) == 0 && c.Im.Cmp(o.Im) == 0
}

func widerElemKind(a, b Kind) Kind {
	if NumericRank(a) >= NumericRank(b) {
		return a
	}
	return b
}
