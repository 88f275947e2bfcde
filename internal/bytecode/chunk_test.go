package bytecode

import (
	"strings"
	"testing"

	"github.com/vela-lang/vela/internal/value"
)

func TestAddConstantDeduplicates(t *testing.T) {
	c := NewChunk("main")
	a := c.AddConstant(value.String("hello"))
	b := c.AddConstant(value.String("hello"))
	if a != b {
		t.Fatalf("expected shared constant slot, got %d and %d", a, b)
	}
	if len(c.Constants) != 1 {
		t.Fatalf("expected 1 constant, got %d", len(c.Constants))
	}
}

func TestAddConstantDistinctKindsNotDeduped(t *testing.T) {
	c := NewChunk("main")
	a := c.AddConstant(value.Int64Value(1))
	b := c.AddConstant(value.Float64Value(1))
	if a == b {
		t.Fatalf("Int64(1) and Float64(1) must not share a constant slot")
	}
}

func TestDisassembleRendersConstPreview(t *testing.T) {
	c := NewChunk("greet")
	idx := c.AddConstant(value.String("hi"))
	c.Emit(Encode(OpLoadConst, 0, uint16(idx)), 1)
	c.Emit(Encode(OpReturn, 0, 0), 1)

	out := Disassemble(c)
	if !strings.Contains(out, "LoadConst") || !strings.Contains(out, "(hi)") {
		t.Fatalf("disassembly missing expected content: %s", out)
	}
}

func TestDisassembleJumpShowsTarget(t *testing.T) {
	c := NewChunk("loop")
	c.Emit(EncodeSigned(OpJump, 0, -1), 1)
	out := Disassemble(c)
	if !strings.Contains(out, "-> 0") {
		t.Fatalf("expected backward jump to target 0, got: %s", out)
	}
}
