package chunk

import (
	"encoding/binary"
	"fmt"
	"math"

	"insh/value"
)

// FunctionEntry is a row in a Chunk's function table: everything the Call
// opcode needs to invoke a function value without the function owning its
// own copy of the chunk (SPEC_FULL §9's Function-representation note).
type FunctionEntry struct {
	Name       string
	Params     []string
	EntryPoint int
}

// Chunk is a single compiled unit: an append-only instruction byte stream
// plus two append-only side tables (an interned string pool and a function
// table), matching the data model in SPEC_FULL §3. Operands are written
// little-endian (DESIGN.md decision 7).
type Chunk struct {
	Code      []byte
	Strings   []string
	Functions []FunctionEntry
}

// New returns an empty Chunk ready for a Compiler to emit into.
func New() *Chunk {
	return &Chunk{}
}

// Len returns the number of bytes written to the instruction stream so far;
// it also doubles as "the offset the next write will land at."
func (c *Chunk) Len() int {
	return len(c.Code)
}

// WriteByte appends a single raw byte (used for opcodes and Bool operands).
func (c *Chunk) WriteByte(b byte) int {
	offset := len(c.Code)
	c.Code = append(c.Code, b)
	return offset
}

// WriteOp appends an opcode byte.
func (c *Chunk) WriteOp(op Op) int {
	return c.WriteByte(byte(op))
}

// WriteU64 appends an 8-byte little-endian unsigned integer, used for
// string/function ids and branch distances.
func (c *Chunk) WriteU64(v uint64) int {
	offset := len(c.Code)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	c.Code = append(c.Code, buf[:]...)
	return offset
}

// WriteI64 appends an 8-byte little-endian signed integer (IntConstant
// operands).
func (c *Chunk) WriteI64(v int64) int {
	return c.WriteU64(uint64(v))
}

// WriteF64 appends an 8-byte little-endian IEEE-754 float (FloatConstant
// operands).
func (c *Chunk) WriteF64(v float64) int {
	return c.WriteU64(math.Float64bits(v))
}

// ReadByte reads one byte at offset.
func (c *Chunk) ReadByte(offset int) byte {
	return c.Code[offset]
}

// ReadU64 reads an 8-byte little-endian unsigned integer at offset.
func (c *Chunk) ReadU64(offset int) uint64 {
	return binary.LittleEndian.Uint64(c.Code[offset : offset+8])
}

// ReadI64 reads an 8-byte little-endian signed integer at offset.
func (c *Chunk) ReadI64(offset int) int64 {
	return int64(c.ReadU64(offset))
}

// ReadF64 reads an 8-byte little-endian IEEE-754 float at offset.
func (c *Chunk) ReadF64(offset int) float64 {
	return math.Float64frombits(c.ReadU64(offset))
}

// PatchU64 rewrites an 8-byte placeholder previously written at offset (by
// WriteU64, typically via a branch-emitting helper) with a new value. It
// only refuses writes whose 8 bytes do not lie inside the code written so
// far; it does not record placeholder offsets, so it does not check that
// offset was reserved as a placeholder.
func (c *Chunk) PatchU64(offset int, v uint64) error {
	if offset < 0 || offset+8 > len(c.Code) {
		return fmt.Errorf("chunk: patch offset %d out of range (len %d)", offset, len(c.Code))
	}
	binary.LittleEndian.PutUint64(c.Code[offset:offset+8], v)
	return nil
}

// AddString interns text into the string pool. Lookup is a linear scan
// (original_source's own approach, carried forward per SPEC_FULL §9 — O(n²)
// on unique strings but chunks here are short-lived per-line/per-script
// artifacts) so two calls with equal text return equal ids.
func (c *Chunk) AddString(text string) uint64 {
	for i, s := range c.Strings {
		if s == text {
			return uint64(i)
		}
	}
	c.Strings = append(c.Strings, text)
	return uint64(len(c.Strings) - 1)
}

// GetString returns the interned string at id.
func (c *Chunk) GetString(id uint64) string {
	return c.Strings[id]
}

// AddFunction registers a function table row and returns its id.
func (c *Chunk) AddFunction(fn FunctionEntry) uint64 {
	c.Functions = append(c.Functions, fn)
	return uint64(len(c.Functions) - 1)
}

// GetFunction returns the function table row at id.
func (c *Chunk) GetFunction(id uint64) FunctionEntry {
	return c.Functions[id]
}

// ConstantValue materializes the Value a constant-producing opcode at
// offset would push, used by the disassembler to print operands in their
// native form without duplicating the VM's own decode logic.
func (c *Chunk) ConstantValue(op Op, operandOffset int) value.Value {
	switch op {
	case IntConstant:
		return value.Int(c.ReadI64(operandOffset))
	case FloatConstant:
		return value.Float(c.ReadF64(operandOffset))
	case BoolConstant:
		return value.Bool(c.ReadByte(operandOffset) != 0)
	case StringConstant:
		return value.String(c.GetString(c.ReadU64(operandOffset)))
	default:
		return value.None()
	}
}
