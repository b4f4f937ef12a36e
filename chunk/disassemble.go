package chunk

import (
	"fmt"
	"strings"
)

// Disassemble renders the entire instruction stream as stable, idempotent
// text: one line per instruction, `offset [opcode-byte] MNEMONIC operand`.
// Grounded on original_source/src/vm/chunk/disassemble.rs's table-driven
// approach, extended here to cover every opcode in the wire table
// (the Rust version the spec was distilled from left Branch/BranchBack/
// BeginScope/EndScope/Function without mnemonics).
func (c *Chunk) Disassemble(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)
	offset := 0
	for offset < len(c.Code) {
		offset = c.disassembleInstruction(&b, offset)
	}
	return b.String()
}

func (c *Chunk) disassembleInstruction(b *strings.Builder, offset int) int {
	op := Op(c.ReadByte(offset))
	operandOffset := offset + 1

	fmt.Fprintf(b, "%08d [%02x] %-16s", offset, byte(op), op)

	switch op {
	case IntConstant, FloatConstant, BoolConstant, StringConstant:
		fmt.Fprintf(b, " %v\n", c.ConstantValue(op, operandOffset))
	case GetEnv, SetEnv, DefineLocal, PinLocal, GetLocal, SetLocal, IdentRef, SysCall:
		id := c.ReadU64(operandOffset)
		fmt.Fprintf(b, " %d\n", id)
	case Command:
		id := c.ReadU64(operandOffset)
		fmt.Fprintf(b, " %d (%q)\n", id, c.safeString(id))
	case Function:
		id := c.ReadU64(operandOffset)
		fmt.Fprintf(b, " %d (%q)\n", id, c.GetFunction(id).Name)
	case Branch, BranchIfFalse, BranchBack:
		dist := c.ReadU64(operandOffset)
		fmt.Fprintf(b, " %d\n", dist)
	case Call:
		id := c.ReadU64(operandOffset)
		arity := c.ReadByte(operandOffset + 8)
		fmt.Fprintf(b, " %d arity=%d\n", id, arity)
	default:
		fmt.Fprintf(b, "\n")
	}

	return offset + 1 + op.OperandWidth()
}

// InstructionAt renders the single instruction at offset the same way
// Disassemble does, returning its text (without a trailing newline) and the
// offset of the next instruction. Used by the CLI's -trace flag (SPEC_FULL
// §10) to print one line per executed opcode without duplicating the
// mnemonic/operand-width table disassembleInstruction already owns.
func (c *Chunk) InstructionAt(offset int) (string, int) {
	var b strings.Builder
	next := c.disassembleInstruction(&b, offset)
	return strings.TrimSuffix(b.String(), "\n"), next
}

func (c *Chunk) safeString(id uint64) string {
	if int(id) >= len(c.Strings) {
		return ""
	}
	return c.Strings[id]
}
