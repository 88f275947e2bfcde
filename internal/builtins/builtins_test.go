package builtins

import (
	"math/big"
	"testing"

	"github.com/vela-lang/vela/internal/dispatch"
	"github.com/vela-lang/vela/internal/rterror"
	"github.com/vela-lang/vela/internal/typelattice"
	"github.com/vela-lang/vela/internal/value"
	"github.com/vela-lang/vela/internal/vm"
)

// newTable builds a fully-wired method table the way pkg/vela.New does,
// for builtin-level dispatch tests that don't need the VM/asm front end at
// all.
func newTable(t *testing.T) (*dispatch.MethodTable, *typelattice.Registry, *dispatch.PromotionTable) {
	t.Helper()
	r := typelattice.Bootstrap()
	rterror.RegisterTaxonomy(r)
	mt := dispatch.NewMethodTable()
	promotions := dispatch.NewPromotionTable()
	RegisterAll(mt, r, promotions, vm.DefaultConfig())
	return mt, r, promotions
}

func dispatchCall(t *testing.T, mt *dispatch.MethodTable, r *typelattice.Registry, name string, args ...value.Value) value.Value {
	t.Helper()
	argTypes := make([]typelattice.ID, len(args))
	for i, a := range args {
		argTypes[i] = value.TypeOf(r, a)
	}
	res, err := dispatch.Dispatch(mt, r.Lattice, name, argTypes)
	if err != nil {
		t.Fatalf("dispatch %s%v: %v", name, argTypes, err)
	}
	out, err := res.Method.Native(args, res.Bindings)
	if err != nil {
		t.Fatalf("call %s: %v", name, err)
	}
	return out
}

// §8 scenario B: double(x::Number)=x+x called on big(21) must stay BigInt.
func TestArithmeticBigIntAdditionStaysBigInt(t *testing.T) {
	mt, r, _ := newTable(t)
	a := value.BigIntValue(big.NewInt(21))
	got := dispatchCall(t, mt, r, "+", a, a)
	if got.Kind != value.KindBigInt {
		t.Fatalf("expected BigInt, got %s", got.Kind)
	}
	if value.AsBigInt(got).Cmp(big.NewInt(42)) != 0 {
		t.Fatalf("expected 42, got %s", value.AsBigInt(got))
	}
}

// §8 scenario C: 1 // 2 + 2 == 5 // 2, a Rational result.
func TestArithmeticRationalPlusIntIsRational(t *testing.T) {
	mt, r, _ := newTable(t)
	half := value.RationalValue(big.NewInt(1), big.NewInt(2))
	two := value.Int64Value(2)

	got := dispatchCall(t, mt, r, "+", half, two)
	if got.Kind != value.KindRational {
		t.Fatalf("expected Rational, got %s", got.Kind)
	}
	rat := value.AsRational(got)
	if rat.Num.Cmp(big.NewInt(5)) != 0 || rat.Den.Cmp(big.NewInt(2)) != 0 {
		t.Fatalf("expected 5//2, got %s//%s", rat.Num, rat.Den)
	}

	// Commutative: 2 + 1//2 must produce the same reduced fraction (§8 property 4).
	reversed := dispatchCall(t, mt, r, "+", two, half)
	reversedRat := value.AsRational(reversed)
	if reversedRat.Num.Cmp(rat.Num) != 0 || reversedRat.Den.Cmp(rat.Den) != 0 {
		t.Fatalf("Int+Rational not commutative with Rational+Int: %v vs %v", reversedRat, rat)
	}
}

// §8 scenario D: (1+2im) + (3+4im) == 4+6im, a Complex{Int64} result.
func TestArithmeticComplexAddition(t *testing.T) {
	mt, r, _ := newTable(t)
	a := value.NewComplexFromInt(1, 2)
	b := value.NewComplexFromInt(3, 4)

	got := dispatchCall(t, mt, r, "+", a, b)
	if got.Kind != value.KindComplex {
		t.Fatalf("expected Complex, got %s", got.Kind)
	}
	c := value.AsComplex(got)
	re, _ := c.Re.Float64()
	im, _ := c.Im.Float64()
	if re != 4 || im != 6 {
		t.Fatalf("expected 4+6im, got %v+%vim", re, im)
	}
}

// §8 property 4: Int×Rational and Int×Complex multiplication commute.
func TestArithmeticMultiplicationCommutes(t *testing.T) {
	mt, r, _ := newTable(t)
	half := value.RationalValue(big.NewInt(1), big.NewInt(2))
	three := value.Int64Value(3)

	ab := value.AsRational(dispatchCall(t, mt, r, "*", half, three))
	ba := value.AsRational(dispatchCall(t, mt, r, "*", three, half))
	if ab.Num.Cmp(ba.Num) != 0 || ab.Den.Cmp(ba.Den) != 0 {
		t.Fatalf("Rational*Int not commutative: %v vs %v", ab, ba)
	}
}

func TestArithmeticRationalDivideByZeroRaisesDivideError(t *testing.T) {
	mt, r, _ := newTable(t)
	half := value.RationalValue(big.NewInt(1), big.NewInt(2))
	zero := value.RationalValue(big.NewInt(0), big.NewInt(1))

	argTypes := []typelattice.ID{value.TypeOf(r, half), value.TypeOf(r, zero)}
	res, err := dispatch.Dispatch(mt, r.Lattice, "/", argTypes)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	_, err = res.Method.Native([]value.Value{half, zero}, res.Bindings)
	if err == nil {
		t.Fatal("expected DivideError dividing by zero rational")
	}
}

func TestBigFloatArithmeticRoundTrips(t *testing.T) {
	mt, r, _ := newTable(t)
	a := value.BigFloatValue(big.NewFloat(1.5))
	b := value.BigFloatValue(big.NewFloat(2.25))
	got := dispatchCall(t, mt, r, "+", a, b)
	if got.Kind != value.KindBigFloat {
		t.Fatalf("expected BigFloat, got %s", got.Kind)
	}
	f, _ := value.AsBigFloat(got).Float64()
	if f != 3.75 {
		t.Fatalf("expected 3.75, got %v", f)
	}
}

func TestPromoteTypeIsSymmetric(t *testing.T) {
	mt, r, _ := newTable(t)
	i64 := value.DataTypeValue(r.Int64)
	f64 := value.DataTypeValue(r.Float64)

	ab := dispatchCall(t, mt, r, "promote_type", i64, f64)
	ba := dispatchCall(t, mt, r, "promote_type", f64, i64)
	if value.AsDataType(ab).TypeID != value.AsDataType(ba).TypeID {
		t.Fatalf("promote_type not symmetric: %v vs %v", ab, ba)
	}
	if value.AsDataType(ab).TypeID != r.Float64 {
		t.Fatalf("expected promote_type(Int64,Float64)==Float64, got %s", r.Lattice.Name(value.AsDataType(ab).TypeID))
	}
}

// §8 property 10: singleton comparison parity for Symbol and Char.
func TestSingletonComparisonParity(t *testing.T) {
	mt, r, _ := newTable(t)
	sym1 := value.SymbolValue("foo")
	sym2 := value.SymbolValue("foo")

	eq := dispatchCall(t, mt, r, "==", sym1, sym2)
	identical := dispatchCall(t, mt, r, "===", sym1, sym2)
	if value.AsBool(eq) != value.AsBool(identical) {
		t.Fatalf("== and === diverge for identical symbols: %v vs %v", eq, identical)
	}

	ch1 := value.Char('x')
	ch2 := value.Char('x')
	eqCh := dispatchCall(t, mt, r, "==", ch1, ch2)
	identicalCh := dispatchCall(t, mt, r, "===", ch1, ch2)
	if value.AsBool(eqCh) != value.AsBool(identicalCh) {
		t.Fatalf("== and === diverge for identical chars: %v vs %v", eqCh, identicalCh)
	}
}

func TestIntrospectionTypeofReportsConcreteParametricType(t *testing.T) {
	mt, r, _ := newTable(t)
	c := value.NewComplexFromInt(1, 2)
	got := dispatchCall(t, mt, r, "typeof", c)
	name := r.Lattice.Name(value.AsDataType(got).TypeID)
	if name != "Complex{Int64}" && name != "Complex" {
		t.Fatalf("expected a Complex-rooted type name, got %q", name)
	}
}

func TestStringConcatenation(t *testing.T) {
	mt, r, _ := newTable(t)
	got := dispatchCall(t, mt, r, "*", value.String("foo"), value.String("bar"))
	if value.AsString(got) != "foobar" {
		t.Fatalf("expected foobar, got %q", value.AsString(got))
	}
}

func TestNumericPredicates(t *testing.T) {
	mt, r, _ := newTable(t)
	if !value.AsBool(dispatchCall(t, mt, r, "iszero", value.Int64Value(0))) {
		t.Fatal("iszero(0) should be true")
	}
	if !value.AsBool(dispatchCall(t, mt, r, "iseven", value.Int64Value(4))) {
		t.Fatal("iseven(4) should be true")
	}
	if value.AsBool(dispatchCall(t, mt, r, "isodd", value.Int64Value(4))) {
		t.Fatal("isodd(4) should be false")
	}
}

func TestFlooredDivisionAgainstTruncated(t *testing.T) {
	mt, r, _ := newTable(t)
	got := dispatchCall(t, mt, r, "fld", value.Int64Value(-7), value.Int64Value(2))
	if value.AsInt64(got) != -4 {
		t.Fatalf("fld(-7,2): got %v, want -4", got)
	}
	got = dispatchCall(t, mt, r, "div", value.Int64Value(-7), value.Int64Value(2))
	if value.AsInt64(got) != -3 {
		t.Fatalf("div(-7,2): got %v, want -3", got)
	}
}

func TestFldmodPairsUp(t *testing.T) {
	mt, r, _ := newTable(t)
	got := dispatchCall(t, mt, r, "fldmod", value.Int64Value(7), value.Int64Value(3))
	tup := value.AsTuple(got)
	if value.AsInt64(tup.Elems[0]) != 2 || value.AsInt64(tup.Elems[1]) != 1 {
		t.Fatalf("fldmod(7,3): got %v, want (2, 1)", got)
	}
}

func TestPowermodMatchesBigIntExp(t *testing.T) {
	mt, r, _ := newTable(t)
	got := dispatchCall(t, mt, r, "powermod",
		value.Int64Value(5), value.Int64Value(117), value.Int64Value(19))
	want := new(big.Int).Exp(big.NewInt(5), big.NewInt(117), big.NewInt(19)).Int64()
	if value.AsInt64(got) != want {
		t.Fatalf("powermod(5,117,19): got %v, want %d", got, want)
	}
}

func TestRationalOperatorReduces(t *testing.T) {
	mt, r, _ := newTable(t)
	got := dispatchCall(t, mt, r, "//", value.Int64Value(6), value.Int64Value(-4))
	rat := value.AsRational(got)
	if rat.Num.Int64() != -3 || rat.Den.Int64() != 2 {
		t.Fatalf("6 // -4: got %s//%s, want -3//2 (den > 0 invariant)", rat.Num, rat.Den)
	}
}

func TestPairsLengthAndLookup(t *testing.T) {
	mt, r, _ := newTable(t)
	bundle := value.PairsValue(
		[]*value.Symbol{value.Intern("a"), value.Intern("b")},
		[]value.Value{value.Int64Value(1), value.Int64Value(2)},
	)
	got := dispatchCall(t, mt, r, "length", bundle)
	if value.AsInt64(got) != 2 {
		t.Fatalf("length(pairs): got %v, want 2", got)
	}
	got = dispatchCall(t, mt, r, "getindex", bundle, value.SymbolValue("b"))
	if value.AsInt64(got) != 2 {
		t.Fatalf("getindex(pairs, :b): got %v, want 2", got)
	}
}

func TestExceptionConstructorsProduceTypedValues(t *testing.T) {
	mt, r, _ := newTable(t)
	got := dispatchCall(t, mt, r, "ArgumentError", value.String("bad"))
	if got.Kind != value.KindException {
		t.Fatalf("expected an exception value, got %v", got.Kind)
	}
	id := value.TypeOf(r, got)
	if name := r.Lattice.Name(id); name != "ArgumentError" {
		t.Fatalf("typeof(ArgumentError(...)): got %s", name)
	}
}

func TestNarrowCastsRangeCheck(t *testing.T) {
	mt, r, _ := newTable(t)
	got := dispatchCall(t, mt, r, "Int8", value.Int64Value(100))
	if got.Kind != value.KindInt8 || value.AsInt8(got) != 100 {
		t.Fatalf("Int8(100): got %v (%v)", got, got.Kind)
	}

	argTypes := []typelattice.ID{r.Int64}
	res, err := dispatch.Dispatch(mt, r.Lattice, "Int8", argTypes)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := res.Method.Native([]value.Value{value.Int64Value(1000)}, nil); err == nil {
		t.Fatalf("Int8(1000) should raise InexactError")
	}
}
