package vm

import (
	"testing"

	"github.com/vela-lang/vela/internal/bytecode"
	"github.com/vela-lang/vela/internal/dispatch"
	"github.com/vela-lang/vela/internal/rterror"
	"github.com/vela-lang/vela/internal/typelattice"
	"github.com/vela-lang/vela/internal/value"
)

func newTestVM() (*VM, *typelattice.Registry) {
	r := typelattice.Bootstrap()
	tax := rterror.RegisterTaxonomy(r)
	return New(r, tax, dispatch.NewMethodTable()), r
}

func TestRunAddI64Hint(t *testing.T) {
	vm, _ := newTestVM()
	c := bytecode.NewChunk("main")
	c.Emit(bytecode.Encode(bytecode.OpLoadConst, 0, uint16(c.AddConstant(value.Int64Value(2)))), 1)
	c.Emit(bytecode.Encode(bytecode.OpLoadConst, 0, uint16(c.AddConstant(value.Int64Value(3)))), 1)
	c.Emit(bytecode.Encode(bytecode.OpAddI64, 0, 0), 1)
	c.Emit(bytecode.Encode(bytecode.OpReturn, 0, 0), 1)

	result, err := vm.Run(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.AsInt64(result) != 5 {
		t.Fatalf("got %v, want 5", result)
	}
}

func TestRunAddI64HintFallsBackOnMixedKinds(t *testing.T) {
	vm, r := newTestVM()
	vm.Methods.AddMethod(&dispatch.Method{
		FunctionName: "+",
		ParamTypes:   []typelattice.ID{r.Int64, r.Float64},
		Native: func(args []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
			return value.Float64Value(float64(value.AsInt64(args[0])) + value.AsFloat64(args[1])), nil
		},
	})

	c := bytecode.NewChunk("main")
	c.Emit(bytecode.Encode(bytecode.OpLoadConst, 0, uint16(c.AddConstant(value.Int64Value(2)))), 1)
	c.Emit(bytecode.Encode(bytecode.OpLoadConst, 0, uint16(c.AddConstant(value.Float64Value(1.5)))), 1)
	c.Emit(bytecode.Encode(bytecode.OpAddI64, 0, 0), 1)
	c.Emit(bytecode.Encode(bytecode.OpReturn, 0, 0), 1)

	result, err := vm.Run(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.AsFloat64(result) != 3.5 {
		t.Fatalf("got %v, want 3.5", result)
	}
}

func TestRunTryCatchRecoversThrow(t *testing.T) {
	vm, _ := newTestVM()
	c := bytecode.NewChunk("main")

	tryIP := c.Emit(bytecode.EncodeSigned(bytecode.OpTry, 0, 0), 1)
	c.Emit(bytecode.Encode(bytecode.OpLoadConst, 0, uint16(c.AddConstant(value.String("boom")))), 2)
	throwIP := c.Emit(bytecode.Encode(bytecode.OpThrow, 0, 0), 2)
	jumpOverCatchIP := c.Emit(bytecode.EncodeSigned(bytecode.OpJump, 0, 0), 2)

	catchStart := len(c.Code)
	c.Emit(bytecode.Encode(bytecode.OpPop, 0, 0), 3) // discard the bound exception
	c.Emit(bytecode.Encode(bytecode.OpLoadConst, 0, uint16(c.AddConstant(value.Int64Value(99)))), 3)
	retIP := c.Emit(bytecode.Encode(bytecode.OpReturn, 0, 0), 3)

	c.Patch(tryIP, bytecode.EncodeSigned(bytecode.OpTry, 0, int16(catchStart-(tryIP+1))))
	c.Patch(jumpOverCatchIP, bytecode.EncodeSigned(bytecode.OpJump, 0, int16(retIP-(jumpOverCatchIP+1))))
	_ = throwIP

	result, err := vm.Run(c)
	if err != nil {
		t.Fatalf("exception should have been caught, got error: %v", err)
	}
	if value.AsInt64(result) != 99 {
		t.Fatalf("got %v, want 99", result)
	}
}

func TestRunUncaughtThrowPropagates(t *testing.T) {
	vm, _ := newTestVM()
	c := bytecode.NewChunk("main")
	c.Emit(bytecode.Encode(bytecode.OpLoadConst, 0, uint16(c.AddConstant(value.String("boom")))), 1)
	c.Emit(bytecode.Encode(bytecode.OpThrow, 0, 0), 1)

	_, err := vm.Run(c)
	if err == nil {
		t.Fatal("expected an uncaught exception error")
	}
	if _, ok := err.(*rterror.ErrorException); !ok {
		t.Fatalf("expected *rterror.ErrorException, got %T", err)
	}
}

func TestInvokeClosureCapturesLocal(t *testing.T) {
	vm, _ := newTestVM()

	inner := bytecode.NewChunk("closure-body")
	inner.LocalCount = 0
	inner.Upvalues = []bytecode.UpvalueDef{{Local: true, Index: 0}}
	inner.Emit(bytecode.Encode(bytecode.OpLoadUpvalue, 0, 0), 1)
	inner.Emit(bytecode.Encode(bytecode.OpReturn, 0, 0), 1)

	outer := bytecode.NewChunk("outer")
	outer.LocalCount = 1
	outer.Emit(bytecode.Encode(bytecode.OpLoadConst, 0, uint16(outer.AddConstant(value.Int64Value(7)))), 1)
	outer.Emit(bytecode.Encode(bytecode.OpStoreLocal, 0, 0), 1)
	outer.Emit(bytecode.Encode(bytecode.OpPop, 0, 0), 1)

	closureConstIdx := len(outer.Constants)
	outer.Constants = append(outer.Constants, value.Value{Kind: value.KindFunction, Data: inner})
	outer.Emit(bytecode.Encode(bytecode.OpClosure, 0, uint16(closureConstIdx)), 1)
	outer.Emit(bytecode.Encode(bytecode.OpReturn, 0, 0), 1)

	result, err := vm.Run(outer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	closureVal := value.AsCallable(result)
	out, err := closureVal.Call(nil)
	if err != nil {
		t.Fatalf("unexpected error calling closure: %v", err)
	}
	if value.AsInt64(out) != 7 {
		t.Fatalf("got %v, want 7", out)
	}
}

func TestReturnConversionPreservesNarrowKinds(t *testing.T) {
	cases := []struct {
		in   value.Value
		kind value.Kind
	}{
		{value.Int64Value(5), value.KindInt8},
		{value.Int64Value(300), value.KindInt16},
		{value.Int64Value(1), value.KindBool},
		{value.Float64Value(4), value.KindInt32},
		{value.Int64Value(7), value.KindUInt64},
	}
	for _, tc := range cases {
		out, err := convertReturn(tc.in, tc.kind)
		if err != nil {
			t.Fatalf("convertReturn(%v, %v): %v", tc.in, tc.kind, err)
		}
		if out.Kind != tc.kind {
			t.Fatalf("convertReturn(%v, %v): got kind %v", tc.in, tc.kind, out.Kind)
		}
	}
}

func TestReturnConversionRejectsLossy(t *testing.T) {
	if _, err := convertReturn(value.Int64Value(200), value.KindInt8); err == nil {
		t.Fatal("Int8 return of 200 should raise InexactError")
	}
	if _, err := convertReturn(value.Int64Value(2), value.KindBool); err == nil {
		t.Fatal("Bool return of 2 should raise InexactError")
	}
	if _, err := convertReturn(value.Float64Value(1.5), value.KindInt64); err == nil {
		t.Fatal("non-integral float to Int64 should fail")
	}
}

func TestBindFrameArgsAlwaysSuppliesCollectorPairs(t *testing.T) {
	chunk := bytecode.NewChunk("kw")
	chunk.ParamCount = 1
	chunk.KwNames = []string{"opt"}
	chunk.KwDefaults = []value.Value{value.Int64Value(9)}
	chunk.KwCollector = "rest"
	chunk.LocalCount = 3

	frame := NewFrame(chunk, "kw", nil)
	if err := bindFrameArgs(frame, chunk, []value.Value{value.Int64Value(1)}, nil, nil); err != nil {
		t.Fatal(err)
	}
	if value.AsInt64(frame.Locals[1]) != 9 {
		t.Fatalf("expected the keyword default in slot 1, got %v", frame.Locals[1])
	}
	if frame.Locals[2].Kind != value.KindPairs || value.AsPairs(frame.Locals[2]).Len() != 0 {
		t.Fatalf("expected an empty Pairs in the collector slot, got %v", frame.Locals[2])
	}
}
