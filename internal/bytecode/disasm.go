package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble renders a Chunk as human-readable text, one instruction per
// line, for snapshot tests (go-snaps) and the `disasm` CLI subcommand.
func Disassemble(c *Chunk) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "== %s ==\n", c.Name)
	for ip, instr := range c.Code {
		sb.WriteString(disassembleInstr(c, ip, instr))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// DisassembleInstr renders a single instruction the same way Disassemble
// does, for the VM's per-instruction trace sink (`--trace`).
func DisassembleInstr(c *Chunk, ip int, instr Instruction) string {
	return disassembleInstr(c, ip, instr)
}

func disassembleInstr(c *Chunk, ip int, instr Instruction) string {
	op := instr.OpCode()
	line := fmt.Sprintf("%04d (line %d) %-14s", ip, c.LineFor(ip), op.String())

	switch op {
	case OpLoadConst, OpNewStruct, OpCallDyn, OpGetField, OpSetField:
		idx := instr.B()
		if op == OpNewStruct {
			return fmt.Sprintf("%s fields=%d const=%d %s", line, instr.A(), idx, constPreview(c, int(idx)))
		}
		return fmt.Sprintf("%s %d %s", line, idx, constPreview(c, int(idx)))
	case OpLoadLocal, OpStoreLocal, OpLoadUpvalue, OpStoreUpvalue,
		OpLoadGlobal, OpStoreGlobal, OpIsA:
		return fmt.Sprintf("%s %d", line, instr.B())
	case OpNewArray:
		return fmt.Sprintf("%s count=%d", line, instr.A())
	case OpJump, OpJumpIfFalse, OpTry:
		target := ip + 1 + int(instr.SignedB())
		return fmt.Sprintf("%s -> %d", line, target)
	case OpCall, OpCallSplat, OpCallKwSplat, OpCallBroadcast:
		return fmt.Sprintf("%s argc=%d", line, instr.A())
	case OpCallKw:
		return fmt.Sprintf("%s argc=%d kwargs=%d", line, instr.A(), instr.B())
	case OpClosure:
		return fmt.Sprintf("%s template=%d upvalues=%d", line, instr.B(), len(c.Upvalues))
	default:
		return strings.TrimRight(line, " ")
	}
}

func constPreview(c *Chunk, idx int) string {
	if idx < 0 || idx >= len(c.Constants) {
		return ""
	}
	return "(" + c.Constants[idx].String() + ")"
}
