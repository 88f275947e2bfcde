package vela

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vela-lang/vela/internal/typelattice"
	"github.com/vela-lang/vela/internal/value"
)

func TestEvalReturnsTopLevelExpression(t *testing.T) {
	e := New()
	result, err := e.Eval("1 + 2 * 3;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.AsInt64(result) != 7 {
		t.Fatalf("expected 7, got %v", result)
	}
}

func TestLoadProgramThenRunIsEquivalentToEval(t *testing.T) {
	e := New()
	prog, err := e.LoadProgram(`
		func square(x::Int64) { return x * x; }
		square(6);
	`)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	result, err := e.Run(prog)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if value.AsInt64(result) != 36 {
		t.Fatalf("expected 36, got %v", result)
	}
}

func TestCallDispatchesARegisteredBuiltin(t *testing.T) {
	e := New()
	result, err := e.Call("+", []value.Value{value.Int64Value(2), value.Int64Value(3)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.AsInt64(result) != 5 {
		t.Fatalf("expected 5, got %v", result)
	}
}

func TestRegisterBuiltinIsDispatchableFromLoadedPrograms(t *testing.T) {
	e := New()
	e.RegisterBuiltin("double", []typelattice.ID{e.Registry().Int64}, false, func(a []value.Value, _ map[string]typelattice.ID) (value.Value, error) {
		return value.Int64Value(value.AsInt64(a[0]) * 2), nil
	})
	result, err := e.Eval("double(21);")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.AsInt64(result) != 42 {
		t.Fatalf("expected 42, got %v", result)
	}
}

func TestWithTraceLogsEveryExecutedInstruction(t *testing.T) {
	var buf bytes.Buffer
	e := New(WithTrace(&buf))
	if _, err := e.Eval("1 + 2;"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "AddI64") && !strings.Contains(buf.String(), "CallDyn") {
		t.Fatalf("expected the trace sink to record executed opcodes, got %q", buf.String())
	}
}
