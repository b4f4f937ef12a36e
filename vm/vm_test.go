package vm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"insh/compiler"
	"insh/runtime"
	"insh/value"
)

// fakeHost is a recording Host for tests, avoiding real subprocess spawns —
// grounded in the teacher's own vm_test.go style of constructing a bare
// vm.New() and asserting directly on results, extended here to the one
// piece of real-world I/O the VM depends on (SPEC_FULL §12).
type fakeHost struct {
	env    map[string]string
	spawns []string
	pipes  [][]runtime.Invocation
	stdin  []string
	exit   int
	stdout string
}

func newFakeHost() *fakeHost {
	return &fakeHost{env: map[string]string{}}
}

func (h *fakeHost) Spawn(_ context.Context, name string, _ []string, captureStdout bool) (int, string, error) {
	h.spawns = append(h.spawns, name)
	if captureStdout {
		return h.exit, h.stdout, nil
	}
	return h.exit, "", nil
}

func (h *fakeHost) Pipe(_ context.Context, stages []runtime.Invocation, captureStdout bool) (int, string, error) {
	h.pipes = append(h.pipes, stages)
	if captureStdout {
		return h.exit, h.stdout, nil
	}
	return h.exit, "", nil
}

func (h *fakeHost) Getenv(name string) (string, bool) {
	v, ok := h.env[name]
	return v, ok
}

func (h *fakeHost) Setenv(name, value string) error {
	h.env[name] = value
	return nil
}

func (h *fakeHost) ReadLine() (string, error) {
	if len(h.stdin) == 0 {
		return "", nil
	}
	line := h.stdin[0]
	h.stdin = h.stdin[1:]
	return line, nil
}

func runSource(t *testing.T, host *fakeHost, source string) value.Value {
	t.Helper()
	c := compiler.New(source)
	ch, err := c.Compile()
	if err != nil {
		t.Fatalf("Compile(%q): %v", source, err)
	}
	result, err := New(host).Run(context.Background(), ch)
	if err != nil {
		t.Fatalf("Run(%q): %v", source, err)
	}
	return result
}

func TestArithmeticPrecedence(t *testing.T) {
	result := runSource(t, newFakeHost(), "2 + 3 * 4\n")
	assert.Equal(t, value.Int(14), result)
}

func TestLetAndLocalLookup(t *testing.T) {
	result := runSource(t, newFakeHost(), "let @x = 2 + 3 * 4\n@x\n")
	assert.Equal(t, value.Int(14), result)
}

func TestIfThenElse(t *testing.T) {
	assert.Equal(t, value.String("yes"), runSource(t, newFakeHost(), `if 1 == 1 then "yes" else "no"`+"\n"))
	assert.Equal(t, value.String("no"), runSource(t, newFakeHost(), `if 0 then "y" else "no"`+"\n"))
}

func TestWhileLoopsToCompletion(t *testing.T) {
	result := runSource(t, newFakeHost(), "let @i = 0\nwhile @i < 3 { @i = @i + 1 }\n@i\n")
	assert.Equal(t, value.Int(3), result)
}

func TestBlockScopeShadowing(t *testing.T) {
	result := runSource(t, newFakeHost(), "{ let @x = 1\n{ let @x = 2\n@x\n} }\n")
	assert.Equal(t, value.Int(2), result)
}

func TestPinnedLocalRejectsMutation(t *testing.T) {
	host := newFakeHost()
	c := compiler.New("pin @k = 7\n@k = 8\n")
	ch, err := c.Compile()
	assert.NoError(t, err)

	_, err = New(host).Run(context.Background(), ch)
	assert.Error(t, err)
	vmErr, ok := err.(VmError)
	assert.True(t, ok)
	assert.Equal(t, PinnedLocal, vmErr.Kind)
}

func TestRedefiningLocalIsRejected(t *testing.T) {
	host := newFakeHost()
	c := compiler.New("let @x = 1\nlet @x = 2\n")
	ch, err := c.Compile()
	assert.NoError(t, err)

	_, err = New(host).Run(context.Background(), ch)
	assert.Error(t, err)
	vmErr, ok := err.(VmError)
	assert.True(t, ok)
	assert.Equal(t, LocalAlreadyDefined, vmErr.Kind)
}

func TestFunctionDefinitionAndCall(t *testing.T) {
	result := runSource(t, newFakeHost(), "let @add a b => a + b\nadd(2, 3)\n")
	assert.Equal(t, value.Int(5), result)
}

func TestCommandExitStatusInNoneContext(t *testing.T) {
	host := newFakeHost()
	host.exit = 0
	result := runSource(t, host, "echo hello world\n")
	assert.Equal(t, value.Int(0), result)
	assert.Equal(t, []string{"echo"}, host.spawns)
}

func TestCommandCapturedStdoutInAssignment(t *testing.T) {
	host := newFakeHost()
	host.stdout = "hi\n"
	result := runSource(t, host, "let @s = echo hi\n@s\n")
	assert.Equal(t, value.String("hi\n"), result)
}

func TestPipeWiresTwoCommandsTogether(t *testing.T) {
	host := newFakeHost()
	host.exit = 0
	result := runSource(t, host, "ps aux | grep init\n")
	assert.Equal(t, value.Int(0), result)
	assert.Len(t, host.pipes, 1)
	assert.Equal(t, "ps", host.pipes[0][0].Name)
	assert.Equal(t, "grep", host.pipes[0][1].Name)
}

func TestEnvGetSet(t *testing.T) {
	host := newFakeHost()
	result := runSource(t, host, `$PATH = "/usr/bin"`+"\n")
	assert.Equal(t, value.String(""), result)
	assert.Equal(t, "/usr/bin", host.env["PATH"])
}

func TestParseSyscallExtractsNumber(t *testing.T) {
	result := runSource(t, newFakeHost(), `parse "number" from "answer: 42"`+"\n")
	assert.Equal(t, value.Int(42), result)
}

func TestReadSyscallFromConsole(t *testing.T) {
	host := newFakeHost()
	host.stdin = []string{"7 apples\n"}
	result := runSource(t, host, `read "number" from "console"`+"\n")
	assert.Equal(t, value.Int(7), result)
}
