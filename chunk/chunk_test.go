package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddStringIsIdempotent(t *testing.T) {
	c := New()
	id1 := c.AddString("hello")
	id2 := c.AddString("world")
	id3 := c.AddString("hello")

	assert.Equal(t, id1, id3, "interning the same text twice should return the same id")
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, "hello", c.GetString(id1))
	assert.Equal(t, "world", c.GetString(id2))
}

func TestWriteReadRoundTrip(t *testing.T) {
	c := New()
	c.WriteOp(IntConstant)
	c.WriteI64(-42)
	c.WriteOp(FloatConstant)
	c.WriteF64(3.25)

	assert.Equal(t, int64(-42), c.ReadI64(1))
	assert.Equal(t, 3.25, c.ReadF64(10))
}

func TestPatchU64RefusesOutOfRange(t *testing.T) {
	c := New()
	c.WriteOp(Branch)
	c.WriteU64(0)

	err := c.PatchU64(1, 7)
	assert.NoError(t, err)
	assert.Equal(t, uint64(7), c.ReadU64(1))

	err = c.PatchU64(100, 1)
	assert.Error(t, err)
}

func TestDisassembleIsStable(t *testing.T) {
	c := New()
	id := c.AddString("x")
	c.WriteOp(StringConstant)
	c.WriteU64(id)
	c.WriteOp(Return)

	first := c.Disassemble("test")
	second := c.Disassemble("test")
	assert.Equal(t, first, second)
	assert.Contains(t, first, "STRING_CONSTANT")
	assert.Contains(t, first, "RETURN")
}
