package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"insh/chunk"
)

func compileOrFail(t *testing.T, source string) *chunk.Chunk {
	t.Helper()
	c := New(source)
	ch, err := c.Compile()
	if err != nil {
		t.Fatalf("Compile(%q) raised an error: %v", source, err)
	}
	return ch
}

func TestCompileIntLiteral(t *testing.T) {
	ch := compileOrFail(t, "5\n")
	dis := ch.Disassemble("test")
	assert.Contains(t, dis, "INT_CONSTANT")
	assert.Contains(t, dis, "RETURN")
}

func TestCompileArithmeticPrecedence(t *testing.T) {
	ch := compileOrFail(t, "1 + 2 * 3\n")
	dis := ch.Disassemble("test")
	assert.Contains(t, dis, "MULTIPLY")
	assert.Contains(t, dis, "ADD")
}

func TestCompileLetAssignment(t *testing.T) {
	ch := compileOrFail(t, "let @x = 5\n")
	assert.Equal(t, []string{"x"}, ch.Strings)
	dis := ch.Disassemble("test")
	assert.Contains(t, dis, "DEFINE_LOCAL")
}

func TestCompileLocalGetSet(t *testing.T) {
	ch := compileOrFail(t, "let @x = 1\n@x = 2\n@x\n")
	dis := ch.Disassemble("test")
	assert.Contains(t, dis, "SET_LOCAL")
	assert.Contains(t, dis, "GET_LOCAL")
}

func TestCompileIfThenElse(t *testing.T) {
	ch := compileOrFail(t, "if true then 1 else 2\n")
	dis := ch.Disassemble("test")
	assert.Contains(t, dis, "BRANCH_IF_FALSE")
	assert.Contains(t, dis, "BRANCH")
}

func TestCompileWhileEmitsBackwardBranch(t *testing.T) {
	ch := compileOrFail(t, "let @i = 0\nwhile @i < 3 { @i = @i + 1 }\n")
	dis := ch.Disassemble("test")
	assert.Contains(t, dis, "LESS")
	assert.Contains(t, dis, "BRANCH_BACK")
}

func TestCompileBlockScope(t *testing.T) {
	ch := compileOrFail(t, "{ let @x = 1 }\n")
	dis := ch.Disassemble("test")
	assert.Contains(t, dis, "BEGIN_SCOPE")
	assert.Contains(t, dis, "END_SCOPE")
}

func TestCompileFunctionDefinitionAndCall(t *testing.T) {
	ch := compileOrFail(t, "let @add a b => a + b\nadd(2, 3)\n")
	assert.Len(t, ch.Functions, 1)
	assert.Equal(t, "add", ch.Functions[0].Name)
	assert.Equal(t, []string{"a", "b"}, ch.Functions[0].Params)

	dis := ch.Disassemble("test")
	assert.Contains(t, dis, "FUNCTION")
	assert.Contains(t, dis, "CALL")
}

func TestCompileParseFromExpression(t *testing.T) {
	ch := compileOrFail(t, `parse "number" from "42"`+"\n")
	dis := ch.Disassemble("test")
	assert.Contains(t, dis, "SYS_CALL")
}

func TestCompileCommandInvocation(t *testing.T) {
	ch := compileOrFail(t, "echo hello world\n")
	dis := ch.Disassemble("test")
	assert.Contains(t, dis, "COMMAND")
}

func TestCompilePipe(t *testing.T) {
	ch := compileOrFail(t, "ls | wc\n")
	dis := ch.Disassemble("test")
	assert.Contains(t, dis, "PIPE")
}

func TestCompileMissingThenIsAnError(t *testing.T) {
	c := New("if true 1\n")
	_, err := c.Compile()
	assert.Error(t, err)
}

func TestCompileInvalidAssignmentTarget(t *testing.T) {
	c := New("1 = 2\n")
	_, err := c.Compile()
	assert.Error(t, err)
}
