package asm

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/vela-lang/vela/internal/bytecode"
)

// TestDisassemblySnapshots pins the opcode stream the compiler emits for a
// handful of representative programs, the way the teacher's fixture suite
// pins interpreter output. A diff here means the compiler's opcode
// selection (constant pool layout, hint-opcode fallback, jump targets)
// changed, intentionally or not.
func TestDisassemblySnapshots(t *testing.T) {
	machine := newTestVM()

	cases := []struct {
		name string
		src  string
	}{
		{"arithmetic_hints", "1 + 2 * 3;"},
		{"dynamic_dispatch", "func add(x, y) { return x + y; } add(1, 2);"},
		{"control_flow", "func abs(x::Int64) { if (x < 0) { return 0 - x; } return x; } abs(-5);"},
		{"try_catch", "let x = 0; try { x = 1 / 0; } catch e { x = -1; } x;"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			prog, err := Parse(c.src)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}
			chunk, err := NewCompiler(machine.Registry, machine.Methods).Compile(prog)
			if err != nil {
				t.Fatalf("compile error: %v", err)
			}
			snaps.MatchSnapshot(t, bytecode.Disassemble(chunk))
		})
	}
}
