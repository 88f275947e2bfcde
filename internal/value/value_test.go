package value

import (
	"math/big"
	"testing"

	"github.com/vela-lang/vela/internal/typelattice"
)

func TestNarrowIntegerKindsPreserved(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		kind Kind
	}{
		{"Int8", Int8Value(-5), KindInt8},
		{"Int16", Int16Value(5), KindInt16},
		{"Int32", Int32Value(5), KindInt32},
		{"Int64", Int64Value(5), KindInt64},
		{"UInt8", UInt8Value(5), KindUInt8},
		{"Bool", Bool(true), KindBool},
	}
	for _, c := range cases {
		if c.v.Kind != c.kind {
			t.Errorf("%s: got kind %s, want %s", c.name, c.v.Kind, c.kind)
		}
	}
}

func TestTypeOfReflectsConcreteType(t *testing.T) {
	r := typelattice.Bootstrap()

	if got := TypeOf(r, Int64Value(3)); got != r.Int64 {
		t.Errorf("typeof(Int64(3)) = %s, want Int64", r.Lattice.Name(got))
	}
	if got := TypeOf(r, Bool(true)); got != r.Bool {
		t.Errorf("typeof(true) = %s, want Bool", r.Lattice.Name(got))
	}

	arr := NewArray(KindFloat64, []int{2, 3}, Float64Value(0))
	got := TypeOf(r, ArrayValue(arr))
	if name := r.Lattice.Name(got); name != "Array{Float64,Dim2}" {
		t.Errorf("typeof(Array{Float64,2}) = %s", name)
	}
}

func TestRationalReduces(t *testing.T) {
	v := RationalValue(big.NewInt(4), big.NewInt(8))
	r := AsRational(v)
	if r.Num.Int64() != 1 || r.Den.Int64() != 2 {
		t.Errorf("4/8 should reduce to 1/2, got %s/%s", r.Num, r.Den)
	}

	half := AsRational(RationalValue(big.NewInt(1), big.NewInt(2)))
	two := RationalFromInt(big.NewInt(2))
	sum := half.Add(two)
	if sum.Num.Int64() != 5 || sum.Den.Int64() != 2 {
		t.Errorf("1/2 + 2 = 5/2, got %s/%s", sum.Num, sum.Den)
	}
}

func TestComplexArithmeticCommutes(t *testing.T) {
	a := AsComplex(NewComplexFromInt(1, 2))
	b := AsComplex(NewComplexFromInt(3, 4))

	sumAB := a.Add(b)
	sumBA := b.Add(a)
	if !sumAB.Equal(sumBA) {
		t.Error("complex addition should commute")
	}

	mulAB := a.Mul(b)
	mulBA := b.Mul(a)
	if !mulAB.Equal(mulBA) {
		t.Error("complex multiplication should commute")
	}

	if mulAB.Re.Cmp(big.NewFloat(-5)) != 0 || mulAB.Im.Cmp(big.NewFloat(10)) != 0 {
		t.Errorf("(1+2i)*(3+4i) should be -5+10i, got %s+%si", mulAB.Re, mulAB.Im)
	}
}

func TestArrayViewAliasesParent(t *testing.T) {
	arr := NewArray(KindInt64, []int{5}, Int64Value(0))
	_ = arr.Set(Int64Value(10), 1)
	_ = arr.Set(Int64Value(20), 2)
	_ = arr.Set(Int64Value(30), 3)

	v := arr.View(2, 2) // view over arr[2:3]
	got, err := v.Get(1)
	if err != nil || AsInt64(got) != 20 {
		t.Fatalf("view[1] should alias arr[2]=20, got %v err=%v", got, err)
	}

	if err := v.Set(Int64Value(99), 1); err != nil {
		t.Fatal(err)
	}
	back, _ := arr.Get(2)
	if AsInt64(back) != 99 {
		t.Errorf("mutating view should be visible in parent, arr[2] = %v", back)
	}
}

func TestSetMembership(t *testing.T) {
	s := NewSet()
	s.Add(Int64Value(1))
	s.Add(Int64Value(2))
	s.Add(Int64Value(1)) // duplicate

	if s.Len() != 2 {
		t.Errorf("set should dedupe to 2 elements, got %d", s.Len())
	}
	if !s.Has(Int64Value(1)) {
		t.Error("set should contain 1")
	}
}
