package asm

import (
	"testing"

	"github.com/vela-lang/vela/internal/builtins"
	"github.com/vela-lang/vela/internal/bytecode"
	"github.com/vela-lang/vela/internal/dispatch"
	"github.com/vela-lang/vela/internal/rterror"
	"github.com/vela-lang/vela/internal/typelattice"
	"github.com/vela-lang/vela/internal/value"
	"github.com/vela-lang/vela/internal/vm"
)

func newTestVM() *vm.VM {
	r := typelattice.Bootstrap()
	tax := rterror.RegisterTaxonomy(r)
	mt := dispatch.NewMethodTable()
	cfg := vm.DefaultConfig()
	builtins.RegisterAll(mt, r, dispatch.NewPromotionTable(), cfg)
	machine := vm.NewWithConfig(r, tax, mt, cfg)
	builtins.RegisterFunctional(mt, r, machine)
	return machine
}

func runSource(t *testing.T, machine *vm.VM, src string) (value.Value, error) {
	t.Helper()
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	compiled, err := NewCompiler(machine.Registry, machine.Methods).Compile(prog)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	return machine.Run(compiled)
}

func TestTopLevelExpressionIsProgramResult(t *testing.T) {
	result, err := runSource(t, newTestVM(), "1 + 2;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.AsInt64(result) != 3 {
		t.Fatalf("expected 3, got %v", result)
	}
}

func TestLiteralArithmeticUsesHintOpcodes(t *testing.T) {
	machine := newTestVM()
	prog, err := Parse("1 + 2 * 3;")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	chunk, err := NewCompiler(machine.Registry, machine.Methods).Compile(prog)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	var sawHint bool
	for _, instr := range chunk.Code {
		switch instr.OpCode() {
		case bytecode.OpAddI64, bytecode.OpMulI64:
			sawHint = true
		}
	}
	if !sawHint {
		t.Fatalf("expected a literal arithmetic expression to compile to a hint opcode")
	}
	result, err := machine.Run(chunk)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.AsInt64(result) != 7 {
		t.Fatalf("expected 7, got %v", result)
	}
}

func TestFunctionDispatchesOnParameterType(t *testing.T) {
	machine := newTestVM()
	src := `
		func describe(x::Int64) { return "int"; }
		func describe(x::String) { return "string"; }
		describe(42);
	`
	result, err := runSource(t, machine, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.AsString(result) != "int" {
		t.Fatalf("expected the Int64 overload to win, got %v", result)
	}

	src2 := `describe("hi");`
	result2, err := runSource(t, machine, src2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.AsString(result2) != "string" {
		t.Fatalf("expected the String overload to win, got %v", result2)
	}
}

func TestWhileLoopAccumulates(t *testing.T) {
	src := `
		func sumTo(n::Int64) {
			let total = 0;
			let i = 1;
			while i <= n {
				total = total + i;
				i = i + 1;
			}
			return total;
		}
		sumTo(5);
	`
	result, err := runSource(t, newTestVM(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.AsInt64(result) != 15 {
		t.Fatalf("expected 15, got %v", result)
	}
}

func TestTryCatchRecoversFromThrow(t *testing.T) {
	src := `
		global ok = false;
		try {
			throw error("boom");
		} catch e {
			ok = true;
		}
		ok;
	`
	result, err := runSource(t, newTestVM(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !value.AsBool(result) {
		t.Fatalf("expected the catch clause to run and set ok=true")
	}
}

func TestUndefinedFunctionRaisesMethodError(t *testing.T) {
	_, err := runSource(t, newTestVM(), "nonexistent(1);")
	if _, ok := err.(*rterror.MethodError); !ok {
		t.Fatalf("expected *rterror.MethodError, got %T (%v)", err, err)
	}
}

func TestRadixAndSeparatorIntegerLiterals(t *testing.T) {
	cases := []struct {
		src  string
		want int64
	}{
		{"0b1010;", 10},
		{"0o17;", 15},
		{"0xff;", 255},
		{"1_000_000;", 1000000},
		{"0xDE_AD;", 0xDEAD},
	}
	for _, tc := range cases {
		result, err := runSource(t, newTestVM(), tc.src)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.src, err)
		}
		if value.AsInt64(result) != tc.want {
			t.Fatalf("%s: expected %d, got %v", tc.src, tc.want, result)
		}
	}
}

func TestFloat32AndHexFloatLiterals(t *testing.T) {
	result, err := runSource(t, newTestVM(), "1f0;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind != value.KindFloat32 || value.AsFloat32(result) != 1.0 {
		t.Fatalf("expected Float32 1.0, got %v (%v)", result, result.Kind)
	}

	result, err = runSource(t, newTestVM(), "1.5f-1;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind != value.KindFloat32 || value.AsFloat32(result) != 0.15 {
		t.Fatalf("expected Float32 0.15, got %v", result)
	}

	result, err = runSource(t, newTestVM(), "0x1p1;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind != value.KindFloat64 || value.AsFloat64(result) != 2.0 {
		t.Fatalf("expected Float64 2.0 from hex float, got %v", result)
	}
}

func TestRationalOperatorBuildsReducedRational(t *testing.T) {
	result, err := runSource(t, newTestVM(), "2 // 4;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind != value.KindRational {
		t.Fatalf("expected a Rational, got %v", result.Kind)
	}
	rat := value.AsRational(result)
	if rat.Num.Int64() != 1 || rat.Den.Int64() != 2 {
		t.Fatalf("expected 1//2, got %s//%s", rat.Num, rat.Den)
	}
}

func TestRationalPlusIntegerPromotes(t *testing.T) {
	// 1//2 + 2 == 5//2 (§8 scenario C).
	result, err := runSource(t, newTestVM(), "1 // 2 + 2;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rat := value.AsRational(result)
	if rat.Num.Int64() != 5 || rat.Den.Int64() != 2 {
		t.Fatalf("expected 5//2, got %s//%s", rat.Num, rat.Den)
	}
}

func TestImaginaryLiteralAndComplexSum(t *testing.T) {
	// (1+2im) + (3+4im) == 4+6im (§8 scenario D).
	result, err := runSource(t, newTestVM(), "(1 + 2im) + (3 + 4im);")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind != value.KindComplex {
		t.Fatalf("expected Complex, got %v", result.Kind)
	}
	c := value.AsComplex(result)
	re, _ := c.Re.Float64()
	im, _ := c.Im.Float64()
	if re != 4 || im != 6 {
		t.Fatalf("expected 4+6im, got %v+%vim", re, im)
	}
}

func TestBigPrefixLiterals(t *testing.T) {
	result, err := runSource(t, newTestVM(), `big"123456789012345678901234567890";`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind != value.KindBigInt {
		t.Fatalf("expected BigInt, got %v", result.Kind)
	}

	result, err = runSource(t, newTestVM(), `big"1.5";`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind != value.KindBigFloat {
		t.Fatalf("expected BigFloat, got %v", result.Kind)
	}
}

func TestVersionRegexAndByteLiterals(t *testing.T) {
	result, err := runSource(t, newTestVM(), `v"1.2";`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vn := value.AsVersionNumber(result)
	if vn.Major != 1 || vn.Minor != 2 || vn.Patch != 0 {
		t.Fatalf("expected v1.2.0, got %v", vn)
	}

	result, err = runSource(t, newTestVM(), `r"a+b";`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind != value.KindRegex {
		t.Fatalf("expected Regex, got %v", result.Kind)
	}

	result, err = runSource(t, newTestVM(), `b"hi";`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	arr := value.AsArray(result)
	if arr.ElemKind != value.KindUInt8 || arr.Len() != 2 {
		t.Fatalf("expected a 2-byte vector, got %v", result)
	}
}

func TestUnknownPrefixStringDispatchesToStrFunction(t *testing.T) {
	machine := newTestVM()
	src := `
		func foo_str(s::String) { return "got:" * s; }
		foo"bar";
	`
	result, err := runSource(t, machine, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.AsString(result) != "got:bar" {
		t.Fatalf("expected the foo_str method to receive the body, got %v", result)
	}
}

func TestLetBlockScopingDoesNotLeak(t *testing.T) {
	// §8 property 8: begin persists assignments, let-blocks don't leak.
	src := `
		global x = 1;
		let x = 99 {
			x = x + 1;
		}
		x;
	`
	result, err := runSource(t, newTestVM(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.AsInt64(result) != 1 {
		t.Fatalf("let-block binding leaked: got %v", result)
	}
}

func TestBeginBlockPersistsAssignmentsAndYieldsLastValue(t *testing.T) {
	src := `
		global y = 0;
		let r = begin { y = 5; y + 1; };
		r + y;
	`
	result, err := runSource(t, newTestVM(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.AsInt64(result) != 11 {
		t.Fatalf("expected begin to persist y=5 and yield 6, got %v", result)
	}
}

func TestLambdaAndDoBlockAgree(t *testing.T) {
	// §8 property 7: map(xs) do x ... end == map(x -> ..., xs).
	machine := newTestVM()
	viaLambda, err := runSource(t, machine, "sum(x * x for x in 1:4);")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	src := `
		let doubledA = map(x -> x * x, collect(1:4));
		let doubledB = map(collect(1:4)) do x { return x * x; };
		getindex(doubledA, 3) == getindex(doubledB, 3);
	`
	result, err := runSource(t, machine, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !value.AsBool(result) {
		t.Fatalf("do-block and lambda disagree")
	}
	if value.AsInt64(viaLambda) != 30 {
		t.Fatalf("expected 30, got %v", viaLambda)
	}
}

func TestClosureCapturesEnclosingLocal(t *testing.T) {
	src := `
		func makeAdder(n::Int64) {
			return x -> x + n;
		}
		let add3 = makeAdder(3);
		add3(4);
	`
	result, err := runSource(t, newTestVM(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.AsInt64(result) != 7 {
		t.Fatalf("expected captured n=3 to produce 7, got %v", result)
	}
}

func TestKeywordParametersAndDefaults(t *testing.T) {
	src := `
		func greet(name::String; punct = "!") {
			return name * punct;
		}
		greet("hi", punct = "?");
	`
	result, err := runSource(t, newTestVM(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.AsString(result) != "hi?" {
		t.Fatalf("expected keyword override, got %v", result)
	}

	src2 := `
		func greet2(name::String; punct = "!") { return name * punct; }
		greet2("hi");
	`
	result, err = runSource(t, newTestVM(), src2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.AsString(result) != "hi!" {
		t.Fatalf("expected default keyword, got %v", result)
	}
}

func TestKwargsCollectorObservesEmptyPairsNeverNothing(t *testing.T) {
	// §8 property 9.
	src := `
		func count(; kw...) { return length(kw); }
		count();
	`
	result, err := runSource(t, newTestVM(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind != value.KindInt64 || value.AsInt64(result) != 0 {
		t.Fatalf("expected length(kw) == 0, got %v (%v)", result, result.Kind)
	}
}

func TestKwargsCollectorReceivesUnmatchedKeywords(t *testing.T) {
	src := `
		func pick(; a = 0, kw...) { return getindex(kw, :b); }
		pick(a = 1, b = 42);
	`
	result, err := runSource(t, newTestVM(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.AsInt64(result) != 42 {
		t.Fatalf("expected the collector to hold b=42, got %v", result)
	}
}

func TestReturnAnnotationPreservesNarrowType(t *testing.T) {
	// §8 property 5.
	cases := []struct {
		typ  string
		kind value.Kind
	}{
		{"Int8", value.KindInt8},
		{"Int16", value.KindInt16},
		{"Int32", value.KindInt32},
		{"Int64", value.KindInt64},
		{"Int128", value.KindInt128},
		{"UInt8", value.KindUInt8},
		{"UInt16", value.KindUInt16},
		{"UInt32", value.KindUInt32},
		{"UInt64", value.KindUInt64},
		{"UInt128", value.KindUInt128},
	}
	for _, tc := range cases {
		src := `
			func narrow(x::Int64)::` + tc.typ + ` { return x; }
			narrow(7);
		`
		result, err := runSource(t, newTestVM(), src)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.typ, err)
		}
		if result.Kind != tc.kind {
			t.Fatalf("%s: expected kind %v, got %v", tc.typ, tc.kind, result.Kind)
		}
	}
}

func TestReturnAnnotationBoolPreserved(t *testing.T) {
	src := `
		func flag(x::Int64)::Bool { return x; }
		flag(1);
	`
	result, err := runSource(t, newTestVM(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind != value.KindBool || !value.AsBool(result) {
		t.Fatalf("expected Bool true, got %v (%v)", result, result.Kind)
	}
}

func TestReturnAnnotationOutOfRangeRaisesInexact(t *testing.T) {
	src := `
		func tiny(x::Int64)::Int8 { return x; }
		tiny(1000);
	`
	_, err := runSource(t, newTestVM(), src)
	if _, ok := err.(*rterror.InexactError); !ok {
		t.Fatalf("expected *rterror.InexactError, got %T (%v)", err, err)
	}
}

func TestTypedCatchNarrowsBySubtypeAndRethrows(t *testing.T) {
	// A handler for DivideError must not swallow an ArgumentError (§7).
	src := `
		global saw = "none";
		try {
			try {
				throw ArgumentError("bad");
			} catch e::DivideError {
				saw = "divide";
			}
		} catch e::ArgumentError {
			saw = "argument";
		}
		saw;
	`
	result, err := runSource(t, newTestVM(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.AsString(result) != "argument" {
		t.Fatalf("expected the outer typed handler to catch, got %v", result)
	}
}

func TestWhereClauseBindsTypeVariable(t *testing.T) {
	// §9: the body observes T even though dispatch resolved it.
	src := `
		func describeElem(x::T) where T <: Number {
			return T;
		}
		describeElem(1.5);
	`
	machine := newTestVM()
	result, err := runSource(t, machine, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind != value.KindDataType {
		t.Fatalf("expected a DataType, got %v", result.Kind)
	}
	if got := machine.Registry.Lattice.Name(value.AsDataType(result).TypeID); got != "Float64" {
		t.Fatalf("expected T == Float64, got %s", got)
	}
}

func TestWhereClauseSharedVariableRequiresEqualTypes(t *testing.T) {
	src := `
		func same(x::T, y::T) where T { return true; }
		same(1, "two");
	`
	_, err := runSource(t, newTestVM(), src)
	if _, ok := err.(*rterror.MethodError); !ok {
		t.Fatalf("expected MethodError for mismatched T, got %T (%v)", err, err)
	}
}

func TestBroadcastCallAppliesElementwise(t *testing.T) {
	src := `
		func double(x::Int64) { return x * 2; }
		let xs = collect(1:3);
		let ys = double.(xs);
		getindex(ys, 3);
	`
	result, err := runSource(t, newTestVM(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.AsInt64(result) != 6 {
		t.Fatalf("expected 6, got %v", result)
	}
}

func TestViewAliasesParentStorage(t *testing.T) {
	// §8 property 6: writes through a view land in the parent.
	src := `
		let a = collect(1:5);
		let w = view(a, 2, 3);
		setindex!(w, 99, 1);
		getindex(a, 2);
	`
	result, err := runSource(t, newTestVM(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.AsInt64(result) != 99 {
		t.Fatalf("expected the parent to observe the view write, got %v", result)
	}
}

func TestFlooredDivisionFamily(t *testing.T) {
	cases := []struct {
		src  string
		want int64
	}{
		{"fld(-7, 2);", -4},
		{"cld(7, 2);", 4},
		{"mod1(10, 5);", 5},
		{"fld1(10, 5);", 2},
		{"powermod(2, 10, 1000);", 24},
		{"invmod(3, 7);", 5},
		{"3 << 2;", 12},
		{"12 >> 2;", 3},
		{"7 ÷ 2;", 3},
		{"7 % 3;", 1},
	}
	for _, tc := range cases {
		result, err := runSource(t, newTestVM(), tc.src)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.src, err)
		}
		if value.AsInt64(result) != tc.want {
			t.Fatalf("%s: expected %d, got %v", tc.src, tc.want, result)
		}
	}
}

func TestGcdxReturnsBezoutCoefficients(t *testing.T) {
	src := `
		let t = gcdx(12, 8);
		getindex(t, 1);
	`
	result, err := runSource(t, newTestVM(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.AsInt64(result) != 4 {
		t.Fatalf("expected gcd 4, got %v", result)
	}
}

func TestSymbolLiteralEvaluatesToSymbol(t *testing.T) {
	result, err := runSource(t, newTestVM(), ":hello;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind != value.KindSymbol || value.AsSymbol(result).String() != "hello" {
		t.Fatalf("expected :hello, got %v", result)
	}
}

func TestArrayLiteralPromotesElementKind(t *testing.T) {
	src := `
		let a = [1, 2, 3];
		a[2];
	`
	result, err := runSource(t, newTestVM(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.AsInt64(result) != 2 {
		t.Fatalf("expected 1-based a[2] == 2, got %v", result)
	}

	result, err = runSource(t, newTestVM(), "[1, 2.5];")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	arr := value.AsArray(result)
	if arr.ElemKind != value.KindFloat64 {
		t.Fatalf("expected mixed Int/Float literal to widen to Float64, got %v", arr.ElemKind)
	}
	if arr.Len() != 2 {
		t.Fatalf("expected 2 elements, got %d", arr.Len())
	}
}

func TestIndexAssignmentWritesThroughAliases(t *testing.T) {
	src := `
		let a = [10, 20, 30];
		let b = a;
		b[1] = 99;
		a[1];
	`
	result, err := runSource(t, newTestVM(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.AsInt64(result) != 99 {
		t.Fatalf("expected the alias write to land in a, got %v", result)
	}
}

func TestIndexOutOfBoundsRaises(t *testing.T) {
	_, err := runSource(t, newTestVM(), "let a = [1]; a[5];")
	if err == nil {
		t.Fatalf("expected an out-of-bounds index to raise")
	}
}

func TestSetConstructorAndMutation(t *testing.T) {
	src := `
		let s = Set(1, 2, 2, 3);
		push!(s, 4);
		pop!(s, 1);
		length(s);
	`
	result, err := runSource(t, newTestVM(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.AsInt64(result) != 3 {
		t.Fatalf("expected {2,3,4} after dedup/push!/pop!, got length %v", result)
	}

	result, err = runSource(t, newTestVM(), "in(2, Set(1, 2));")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !value.AsBool(result) {
		t.Fatalf("expected membership test to hold")
	}
}

func TestPairConstructorAndAccessors(t *testing.T) {
	machine := newTestVM()
	result, err := runSource(t, machine, `let p = Pair(:a, 2); first(p);`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind != value.KindSymbol || value.AsSymbol(result).String() != "a" {
		t.Fatalf("expected first(p) == :a, got %v", result)
	}

	result, err = runSource(t, machine, `last(Pair(:a, 2));`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.AsInt64(result) != 2 {
		t.Fatalf("expected last(p) == 2, got %v", result)
	}

	result, err = runSource(t, machine, `typeof(Pair(1, 2)) == Pair;`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !value.AsBool(result) {
		t.Fatalf("expected typeof(Pair(1,2)) to be Pair")
	}
}
