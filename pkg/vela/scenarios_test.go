package vela

import (
	"math"
	"strings"
	"testing"

	"github.com/vela-lang/vela/internal/rterror"
	"github.com/vela-lang/vela/internal/value"
)

// End-to-end scenarios from the runtime's acceptance checklist, driven
// through the public embedding surface the way the CLI drives it.

func evalOrFatal(t *testing.T, e *Engine, src string) value.Value {
	t.Helper()
	result, err := e.Eval(src)
	if err != nil {
		t.Fatalf("eval error: %v\nsource:\n%s", err, src)
	}
	return result
}

func TestScenarioShapeDispatch(t *testing.T) {
	e := New()
	src := `
		abstract Shape;
		struct Circle :: Shape { r::Float64 }
		struct Rectangle :: Shape { w::Float64, h::Float64 }
		func area(s::Circle) { return 3.141592653589793 * s.r * s.r; }
		func area(s::Rectangle) { return s.w * s.h; }
		area(Circle(2.0));
	`
	result := evalOrFatal(t, e, src)
	if got := value.AsFloat64(result); math.Abs(got-12.566370614359172) > 1e-9 {
		t.Fatalf("expected area(Circle(2.0)) ≈ 12.566, got %v", got)
	}
	result = evalOrFatal(t, e, "area(Rectangle(3.0, 4.0));")
	if value.AsFloat64(result) != 12.0 {
		t.Fatalf("expected 12.0, got %v", result)
	}
}

func TestScenarioBigIntPreservesType(t *testing.T) {
	e := New()
	src := `
		func double(x::Number) { return x + x; }
		double(big"21");
	`
	result := evalOrFatal(t, e, src)
	if result.Kind != value.KindBigInt {
		t.Fatalf("expected BigInt, got %v", result.Kind)
	}
	if value.AsBigInt(result).Int64() != 42 {
		t.Fatalf("expected big 42, got %v", result)
	}
}

func TestScenarioGeneratorSum(t *testing.T) {
	e := New()
	result := evalOrFatal(t, e, "sum(x^2 for x in 1:10);")
	if value.AsInt64(result) != 385 {
		t.Fatalf("expected 385, got %v", result)
	}
}

func TestScenarioKwdefStruct(t *testing.T) {
	e := New()
	src := `
		@kwdef struct P { x::Float64 = 0.0, y::Float64 = 0.0 }
		let p = P(y = 2.0);
		p.y;
	`
	result := evalOrFatal(t, e, src)
	if value.AsFloat64(result) != 2.0 {
		t.Fatalf("expected y=2.0, got %v", result)
	}
	result = evalOrFatal(t, e, "let p2 = P(y = 2.0); p2.x;")
	if value.AsFloat64(result) != 0.0 {
		t.Fatalf("expected defaulted x=0.0, got %v", result)
	}
}

func TestScenarioUserOperatorMethod(t *testing.T) {
	e := New()
	src := `
		struct Point { x::Int64, y::Int64 }
		func +(a::Point, b::Point) {
			return Point(a.x + b.x, a.y + b.y);
		}
		let p = Point(1, 2) + Point(3, 4);
		p.x + p.y;
	`
	result := evalOrFatal(t, e, src)
	if value.AsInt64(result) != 10 {
		t.Fatalf("expected Point(4,6), got sum %v", result)
	}
}

func TestScenarioTestThrowsMacro(t *testing.T) {
	e := New()
	src := `
		struct Opaque { v::Int64 }
		@test_throws MethodError (-Opaque(1));
	`
	result := evalOrFatal(t, e, src)
	if !value.AsBool(result) {
		t.Fatalf("expected @test_throws to pass")
	}
}

func TestTestThrowsRejectsWrongExceptionType(t *testing.T) {
	e := New()
	src := `@test_throws DivideError (1 // 0);`
	result := evalOrFatal(t, e, src)
	if !value.AsBool(result) {
		t.Fatalf("expected DivideError to satisfy @test_throws")
	}

	_, err := e.Eval(`@test_throws DivideError throwArg();`)
	if err == nil {
		t.Fatalf("expected @test_throws to fail when no exception is thrown")
	}
}

func TestTestMacroRaisesAssertionOnFailure(t *testing.T) {
	e := New()
	if _, err := e.Eval("@test 1 == 2;"); err == nil {
		t.Fatalf("expected a failing @test to raise")
	} else if _, ok := err.(*rterror.AssertionError); !ok {
		t.Fatalf("expected AssertionError, got %T", err)
	}
	result := evalOrFatal(t, e, "@test 1 + 1 == 2;")
	if !value.AsBool(result) {
		t.Fatalf("expected passing @test to yield true")
	}
}

func TestTestsetAndTestBroken(t *testing.T) {
	e := New()
	result := evalOrFatal(t, e, `
		@testset "arith" {
			@test 1 + 1 == 2;
			@test_broken 1 == 2;
		};
	`)
	if !value.AsBool(result) {
		t.Fatalf("expected the testset to pass")
	}
}

func TestElapsedAndTimedMacros(t *testing.T) {
	e := New()
	result := evalOrFatal(t, e, "@elapsed sum(x for x in 1:100);")
	if result.Kind != value.KindFloat64 || value.AsFloat64(result) < 0 {
		t.Fatalf("expected non-negative Float64 seconds, got %v (%v)", result, result.Kind)
	}

	result = evalOrFatal(t, e, "let r = @timed(2 + 3); r.value;")
	if value.AsInt64(result) != 5 {
		t.Fatalf("expected the timed value 5, got %v", result)
	}
	result = evalOrFatal(t, e, "let r2 = @timed(2 + 3); r2.time;")
	if result.Kind != value.KindFloat64 {
		t.Fatalf("expected Float64 time, got %v", result.Kind)
	}
}

func TestCoalesceMacroSkipsMissing(t *testing.T) {
	e := New()
	result := evalOrFatal(t, e, "@coalesce missing 7 9;")
	if value.AsInt64(result) != 7 {
		t.Fatalf("expected the first non-missing argument, got %v", result)
	}
}

func TestInfoMacroWritesToOutput(t *testing.T) {
	var sb strings.Builder
	e := New(WithOutput(&sb))
	evalOrFatal(t, e, `@info "starting";`)
	if !strings.Contains(sb.String(), "[ Info: starting") {
		t.Fatalf("expected info output, got %q", sb.String())
	}
}

// Quantified properties (§8).

func TestPropertyDispatchAmbiguityRaises(t *testing.T) {
	e := New()
	src := `
		func f(x::Integer, y::Int64) { return 1; }
		func f(x::Int64, y::Integer) { return 2; }
		f(1, 2);
	`
	_, err := e.Eval(src)
	if _, ok := err.(*rterror.AmbiguityError); !ok {
		t.Fatalf("expected AmbiguityError, got %T (%v)", err, err)
	}
}

func TestPropertyDispatchPicksMostSpecific(t *testing.T) {
	e := New()
	src := `
		func g(x::Number) { return "number"; }
		func g(x::Integer) { return "integer"; }
		func g(x::Int64) { return "int64"; }
		g(1);
	`
	result := evalOrFatal(t, e, src)
	if value.AsString(result) != "int64" {
		t.Fatalf("expected the concrete overload, got %v", result)
	}
}

func TestPropertySubtypeReflexiveTransitive(t *testing.T) {
	e := New()
	r := e.Registry()
	all := []struct{ name string }{{"Int64"}, {"Integer"}, {"Real"}, {"Number"}, {"Any"}}
	for _, tc := range all {
		id, ok := r.Lattice.Lookup(tc.name)
		if !ok {
			t.Fatalf("missing type %s", tc.name)
		}
		if !r.Lattice.IsSubtype(id, id) {
			t.Fatalf("%s not <: itself", tc.name)
		}
	}
	i64, _ := r.Lattice.Lookup("Int64")
	integer, _ := r.Lattice.Lookup("Integer")
	number, _ := r.Lattice.Lookup("Number")
	if !r.Lattice.IsSubtype(i64, integer) || !r.Lattice.IsSubtype(integer, number) {
		t.Fatalf("expected Int64 <: Integer <: Number")
	}
	if !r.Lattice.IsSubtype(i64, number) {
		t.Fatalf("subtype relation not transitive")
	}
}

func TestPropertyPromotionSymmetry(t *testing.T) {
	e := New()
	pairs := [][2]string{
		{"Int64", "Float64"},
		{"Int64", "Rational"},
		{"Bool", "Float64"},
		{"Int64", "BigInt"},
		{"Float64", "Complex"},
	}
	for _, p := range pairs {
		a := evalOrFatal(t, e, "promote_type("+p[0]+", "+p[1]+");")
		b := evalOrFatal(t, e, "promote_type("+p[1]+", "+p[0]+");")
		if value.AsDataType(a).TypeID != value.AsDataType(b).TypeID {
			t.Fatalf("promote_type(%s,%s) not symmetric", p[0], p[1])
		}
	}
}

func TestPropertyNumericCommutativity(t *testing.T) {
	e := New()
	exprs := [][2]string{
		{"2 + 1 // 2;", "1 // 2 + 2;"},
		{"(3 * (1 // 2));", "((1 // 2) * 3);"},
		{"2 + (1 + 1im);", "(1 + 1im) + 2;"},
		{"true + 1.5;", "1.5 + true;"},
	}
	for _, pair := range exprs {
		a := evalOrFatal(t, e, pair[0])
		b := evalOrFatal(t, e, pair[1])
		if a.Kind != b.Kind {
			t.Fatalf("%s vs %s: kinds differ (%v vs %v)", pair[0], pair[1], a.Kind, b.Kind)
		}
		if a.String() != b.String() {
			t.Fatalf("%s vs %s: %v != %v", pair[0], pair[1], a, b)
		}
	}
}

func TestPropertySingletonComparisonParity(t *testing.T) {
	e := New()
	exprs := []string{
		"(nothing == nothing) == (nothing === nothing);",
		"(:a == :a) == (:a === :a);",
		"(:a == :b) == (:a === :b);",
		"(Int64 == Int64) == (Int64 === Int64);",
	}
	for _, src := range exprs {
		result := evalOrFatal(t, e, src)
		if !value.AsBool(result) {
			t.Fatalf("parity violated for %s", src)
		}
	}
}

func TestPropertyMethodRedefinitionReplaces(t *testing.T) {
	e := New()
	evalOrFatal(t, e, "func ver(x::Int64) { return 1; }")
	evalOrFatal(t, e, "func ver(x::Int64) { return 2; }")
	result := evalOrFatal(t, e, "ver(0);")
	if value.AsInt64(result) != 2 {
		t.Fatalf("expected last registration to win, got %v", result)
	}
}

func TestIsaFunctionReturnsTrueForFunctionValues(t *testing.T) {
	// The source runtime returned false here; this implementation fixes
	// the quirk (functions sit under Function in the lattice).
	e := New()
	src := `
		func h(x::Int64) { return x; }
		isa(h, Function);
	`
	result := evalOrFatal(t, e, src)
	if !value.AsBool(result) {
		t.Fatalf("expected isa(h, Function) to be true")
	}
}

func TestGlobalAssignmentInNestedScopeBindsOuterSlot(t *testing.T) {
	e := New()
	src := `
		global counter = 0;
		func bump() { global counter = counter + 1; return counter; }
		bump();
		bump();
	`
	result := evalOrFatal(t, e, src)
	if value.AsInt64(result) != 2 {
		t.Fatalf("expected the global slot to accumulate, got %v", result)
	}
}

func TestSetPrecisionRoundTrips(t *testing.T) {
	e := New()
	evalOrFatal(t, e, "setprecision(BigFloat, 128);")
	result := evalOrFatal(t, e, "precision(BigFloat);")
	if value.AsInt64(result) != 128 {
		t.Fatalf("expected precision 128, got %v", result)
	}
}
