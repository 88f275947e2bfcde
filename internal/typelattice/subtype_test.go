package typelattice

import "testing"

func TestSubtypeReflexiveTransitive(t *testing.T) {
	r := Bootstrap()
	l := r.Lattice

	types := []ID{r.Int64, r.Signed, r.Integer, r.Real, r.Number, r.Any, r.Float64}
	for _, a := range types {
		if !l.IsSubtype(a, a) {
			t.Errorf("%s <: %s should hold (reflexivity)", l.Name(a), l.Name(a))
		}
	}

	// Int64 <: Signed <: Integer <: Real <: Number <: Any, transitively.
	if !l.IsSubtype(r.Int64, r.Signed) {
		t.Fatal("Int64 <: Signed")
	}
	if !l.IsSubtype(r.Signed, r.Integer) {
		t.Fatal("Signed <: Integer")
	}
	if !l.IsSubtype(r.Int64, r.Integer) {
		t.Error("transitivity: Int64 <: Integer")
	}
	if !l.IsSubtype(r.Int64, r.Any) {
		t.Error("transitivity: Int64 <: Any")
	}
	if l.IsSubtype(r.Integer, r.Int64) {
		t.Error("Integer should NOT be <: Int64 (antisymmetry)")
	}
}

func TestNumericTowerShape(t *testing.T) {
	r := Bootstrap()
	l := r.Lattice

	cases := []struct {
		name string
		a, b ID
		want bool
	}{
		{"Int64<:Signed", r.Int64, r.Signed, true},
		{"Int64<:Integer", r.Int64, r.Integer, true},
		{"Int64<:Real", r.Int64, r.Real, true},
		{"Int64<:Unsigned", r.Int64, r.Unsigned, false},
		{"Bool<:Integer", r.Bool, r.Integer, true},
		{"Float64<:AbstractFloat", r.Float64, r.AbstractFloat, true},
		{"Float64<:Integer", r.Float64, r.Integer, false},
		{"Rational<:Real", r.Rational, r.Real, true},
		{"Complex<:Number", r.Complex, r.Number, true},
		{"Complex<:Real", r.Complex, r.Real, false},
	}
	for _, c := range cases {
		got := l.IsSubtype(c.a, c.b)
		if got != c.want {
			t.Errorf("%s: got %v want %v", c.name, got, c.want)
		}
	}
}

func TestUnionSubtyping(t *testing.T) {
	r := Bootstrap()
	l := r.Lattice

	u := l.Union(r.Int64, r.Float64)

	if !l.IsSubtype(r.Int64, u) {
		t.Error("Int64 <: Union{Int64,Float64}")
	}
	if !l.IsSubtype(r.Float64, u) {
		t.Error("Float64 <: Union{Int64,Float64}")
	}
	if l.IsSubtype(r.String, u) {
		t.Error("String should not be <: Union{Int64,Float64}")
	}
	if !l.IsSubtype(u, r.Number) {
		t.Error("Union{Int64,Float64} <: Number (every member is)")
	}
	if l.IsSubtype(u, r.Integer) {
		t.Error("Union{Int64,Float64} should NOT be <: Integer (Float64 isn't)")
	}
}

func TestParametricInvariance(t *testing.T) {
	r := Bootstrap()
	l := r.Lattice

	vecInt := l.RegisterParametric("Vector", r.Any, r.Int64)
	vecReal := l.RegisterParametric("Vector", r.Any, r.Real)

	if l.IsSubtype(vecInt, vecReal) {
		t.Error("Vector{Int64} should NOT be <: Vector{Real} (parametric invariance)")
	}
	if !l.IsSubtype(vecInt, vecInt) {
		t.Error("Vector{Int64} <: Vector{Int64} (identity)")
	}
}

func TestNonMissingType(t *testing.T) {
	r := Bootstrap()
	l := r.Lattice

	if got := l.NonMissingType(r.Missing, r.Missing); got != r.Bottom {
		t.Errorf("nonmissingtype(Missing) = %s, want Bottom", l.Name(got))
	}
	if got := l.NonMissingType(r.Int64, r.Missing); got != r.Int64 {
		t.Errorf("nonmissingtype(Int64) = %s, want Int64", l.Name(got))
	}
	u := l.Union(r.Int64, r.Missing)
	if got := l.NonMissingType(u, r.Missing); got != r.Int64 {
		t.Errorf("nonmissingtype(Union{Int64,Missing}) = %s, want Int64", l.Name(got))
	}
}

func TestMostSpecific(t *testing.T) {
	r := Bootstrap()
	l := r.Lattice

	if !l.MostSpecific(r.Int64, r.Integer) {
		t.Error("Int64 more specific than Integer")
	}
	if l.MostSpecific(r.Integer, r.Int64) {
		t.Error("Integer is not more specific than Int64")
	}
	if l.MostSpecific(r.Int64, r.Int64) {
		t.Error("a type is not strictly more specific than itself")
	}
}
