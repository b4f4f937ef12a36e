// Package vm implements the stack-based bytecode interpreter: instruction
// dispatch, the scope/local model, arithmetic and comparison, and the
// evaluation-context contract that decides whether a deferred Command
// becomes an exit status or captured stdout. Ported from
// original_source/src/vm/vm.rs, src/vm/local.rs and src/vm/evaluate.rs, with
// the Go struct/error idiom taken from the teacher's vm/vm.go and
// vm/errors.go.
package vm

import (
	"context"
	"fmt"
	"os"

	"insh/chunk"
	"insh/runtime"
	"insh/value"
)

// Context distinguishes how a Command value on the stack is evaluated
// (SPEC_FULL §4.5).
type Context int

const (
	// None evaluates a Command by spawning it with inherited stdout/stderr,
	// producing Int(exit_status).
	None Context = iota
	// Assignment evaluates a Command by capturing its stdout, producing
	// String(stdout).
	Assignment
)

// VM is a stack-based interpreter: one instruction pointer into a chunk's
// byte stream, a value stack, a stack of lexical scopes (the outermost is
// the persistent global scope), and an internal call-stack of return
// addresses backing the Call/Return opcode pair (SPEC_FULL §4.2/§4.5).
type VM struct {
	host runtime.Host

	chunk *chunk.Chunk
	ip    int

	stack     Stack
	scopes    []Scope
	callStack []int

	debug bool
}

// New constructs a VM with one persistent global scope, delegating every
// host effect to host.
func New(host runtime.Host) *VM {
	return &VM{
		host:   host,
		scopes: []Scope{newScope()},
	}
}

// SetDebug enables per-instruction trace output (SPEC_FULL §10's -trace
// flag), consumed by the CLI layer via Disassemble-shaped lines.
func (vm *VM) SetDebug(debug bool) {
	vm.debug = debug
}

// Run installs ch, resets the instruction pointer, value stack and call
// stack, drops any scopes above the global one (left behind by a run that
// ended in an error), keeps the global scope so a REPL session's local
// variables persist across lines, and runs the dispatch loop to completion,
// returning the program's result Value.
func (vm *VM) Run(ctx context.Context, ch *chunk.Chunk) (value.Value, error) {
	vm.chunk = ch
	vm.ip = 0
	vm.stack = nil
	vm.callStack = nil
	vm.scopes = vm.scopes[:1]

	return vm.dispatch(ctx)
}

func (vm *VM) push(v value.Value) { vm.stack.Push(v) }

func (vm *VM) pop() (value.Value, error) {
	v, ok := vm.stack.Pop()
	if !ok {
		panic("vm: stack underflow")
	}
	return v, nil
}

func (vm *VM) peek() (value.Value, error) {
	v, ok := vm.stack.Peek()
	if !ok {
		panic("vm: peek on empty stack")
	}
	return v, nil
}

func (vm *VM) dispatch(ctx context.Context) (value.Value, error) {
	for {
		if vm.ip >= vm.chunk.Len() {
			panic("vm: instruction pointer ran past end of chunk")
		}

		op := chunk.Op(vm.chunk.ReadByte(vm.ip))
		opStart := vm.ip
		vm.ip++

		if vm.debug {
			line, _ := vm.chunk.InstructionAt(opStart)
			fmt.Fprintln(os.Stderr, line)
		}

		result, done, err := vm.step(ctx, op, opStart)
		if err != nil {
			return value.Value{}, err
		}
		if done {
			return result, nil
		}
	}
}

// step executes one instruction and advances vm.ip past its operands. It
// returns (result, true, nil) when Return should end the whole run (no
// active call to resume into).
func (vm *VM) step(ctx context.Context, op chunk.Op, opStart int) (value.Value, bool, error) {
	switch op {
	case chunk.Return:
		return vm.execReturn(ctx)

	case chunk.IntConstant:
		vm.push(value.Int(vm.chunk.ReadI64(vm.ip)))
		vm.ip += 8

	case chunk.FloatConstant:
		vm.push(value.Float(vm.chunk.ReadF64(vm.ip)))
		vm.ip += 8

	case chunk.StringConstant:
		id := vm.chunk.ReadU64(vm.ip)
		vm.ip += 8
		vm.push(value.String(vm.chunk.GetString(id)))

	case chunk.BoolConstant:
		vm.push(value.Bool(vm.chunk.ReadByte(vm.ip) != 0))
		vm.ip++

	case chunk.NoneConstant:
		vm.push(value.None())

	case chunk.Pop:
		v, _ := vm.pop()
		if _, err := vm.evaluate(ctx, v, None); err != nil {
			return value.Value{}, false, err
		}

	case chunk.GetEnv:
		id := vm.chunk.ReadU64(vm.ip)
		vm.ip += 8
		text, ok := vm.host.Getenv(vm.chunk.GetString(id))
		if !ok {
			text = ""
		}
		vm.push(value.String(text))

	case chunk.SetEnv:
		id := vm.chunk.ReadU64(vm.ip)
		vm.ip += 8
		name := vm.chunk.GetString(id)
		raw, _ := vm.pop()
		v, err := vm.evaluate(ctx, raw, Assignment)
		if err != nil {
			return value.Value{}, false, err
		}
		prev, ok := vm.host.Getenv(name)
		if !ok {
			prev = ""
		}
		if err := vm.host.Setenv(name, v.ToNativeString()); err != nil {
			return value.Value{}, false, VmError{Kind: InvalidOperation, Message: err.Error()}
		}
		vm.push(value.String(prev))

	case chunk.DefineLocal, chunk.PinLocal:
		if err := vm.execDefine(ctx, op); err != nil {
			return value.Value{}, false, err
		}

	case chunk.GetLocal:
		id := vm.chunk.ReadU64(vm.ip)
		vm.ip += 8
		v, err := vm.getLocal(vm.chunk.GetString(id))
		if err != nil {
			return value.Value{}, false, err
		}
		vm.push(v)

	case chunk.IdentRef:
		id := vm.chunk.ReadU64(vm.ip)
		vm.ip += 8
		name := vm.chunk.GetString(id)
		if v, err := vm.getLocal(name); err == nil {
			vm.push(v)
		} else {
			vm.push(value.String(name))
		}

	case chunk.SetLocal:
		if err := vm.execSetLocal(ctx); err != nil {
			return value.Value{}, false, err
		}

	case chunk.Negate, chunk.Add, chunk.Subtract, chunk.Multiply, chunk.Divide:
		if err := vm.execArith(ctx, op); err != nil {
			return value.Value{}, false, err
		}

	case chunk.Equal, chunk.NotEqual, chunk.Less, chunk.LessEqual, chunk.Greater, chunk.GreaterEqual:
		if err := vm.execCompare(ctx, op); err != nil {
			return value.Value{}, false, err
		}

	case chunk.Pipe:
		if err := vm.execPipe(ctx); err != nil {
			return value.Value{}, false, err
		}

	case chunk.Swap:
		a, _ := vm.pop()
		b, _ := vm.pop()
		vm.push(a)
		vm.push(b)

	case chunk.Command:
		if err := vm.execCommand(); err != nil {
			return value.Value{}, false, err
		}

	case chunk.Branch:
		dist := vm.chunk.ReadU64(vm.ip)
		vm.ip += 8
		vm.ip += int(dist)

	case chunk.BranchIfFalse:
		dist := vm.chunk.ReadU64(vm.ip)
		vm.ip += 8
		top, _ := vm.peek()
		evaluated, err := vm.evaluate(ctx, top, None)
		if err != nil {
			return value.Value{}, false, err
		}
		if !evaluated.ToNativeBool() {
			vm.ip += int(dist)
		}

	case chunk.BranchBack:
		dist := vm.chunk.ReadU64(vm.ip)
		vm.ip += 8
		vm.ip -= int(dist)

	case chunk.SysCall:
		if err := vm.execSysCall(ctx); err != nil {
			return value.Value{}, false, err
		}

	case chunk.Function:
		id := vm.chunk.ReadU64(vm.ip)
		vm.ip += 8
		entry := vm.chunk.GetFunction(id)
		vm.push(value.NewFunction(value.Function{
			Name:       entry.Name,
			Params:     entry.Params,
			EntryPoint: entry.EntryPoint,
		}))

	case chunk.Call:
		if err := vm.execCall(); err != nil {
			return value.Value{}, false, err
		}

	case chunk.BeginScope:
		vm.beginScope()

	case chunk.EndScope:
		vm.endScope()

	default:
		// Unknown opcodes are logged and skipped by one byte (SPEC_FULL §4.5
		// "defensive"); this path is unreachable from compiler-emitted bytecode.
		fmt.Fprintf(os.Stderr, "vm: unknown opcode %d at offset %d\n", byte(op), opStart)
		vm.ip += op.OperandWidth()
	}

	return value.Value{}, false, nil
}

func (vm *VM) execReturn(ctx context.Context) (value.Value, bool, error) {
	top, _ := vm.pop()
	result, err := vm.evaluate(ctx, top, None)
	if err != nil {
		return value.Value{}, false, err
	}

	if len(vm.callStack) == 0 {
		return result, true, nil
	}

	ret := vm.callStack[len(vm.callStack)-1]
	vm.callStack = vm.callStack[:len(vm.callStack)-1]
	vm.ip = ret
	vm.endScope() // pops the parameter scope execCall pushed
	vm.push(result)
	return value.Value{}, false, nil
}

func (vm *VM) execDefine(ctx context.Context, op chunk.Op) error {
	id := vm.chunk.ReadU64(vm.ip)
	vm.ip += 8
	name := vm.chunk.GetString(id)

	raw, _ := vm.pop()
	v, err := vm.evaluate(ctx, raw, Assignment)
	if err != nil {
		return err
	}

	if err := vm.defineLocal(name, v, op == chunk.PinLocal); err != nil {
		return err
	}
	vm.push(v)
	return nil
}

func (vm *VM) execSetLocal(ctx context.Context) error {
	id := vm.chunk.ReadU64(vm.ip)
	vm.ip += 8
	name := vm.chunk.GetString(id)

	raw, _ := vm.pop()
	v, err := vm.evaluate(ctx, raw, Assignment)
	if err != nil {
		return err
	}

	if err := vm.setLocal(name, v); err != nil {
		return err
	}
	vm.push(v)
	return nil
}

func (vm *VM) execArith(ctx context.Context, op chunk.Op) error {
	if op == chunk.Negate {
		raw, _ := vm.pop()
		operand, err := vm.evaluate(ctx, raw, None)
		if err != nil {
			return err
		}
		result, err := negate(operand)
		if err != nil {
			return toVmError(err)
		}
		vm.push(result)
		return nil
	}

	rhsRaw, _ := vm.pop()
	lhsRaw, _ := vm.pop()
	rhs, err := vm.evaluate(ctx, rhsRaw, None)
	if err != nil {
		return err
	}
	lhs, err := vm.evaluate(ctx, lhsRaw, None)
	if err != nil {
		return err
	}

	var result value.Value
	switch op {
	case chunk.Add:
		result, err = add(lhs, rhs)
	case chunk.Subtract:
		result, err = subtract(lhs, rhs)
	case chunk.Multiply:
		result, err = multiply(lhs, rhs)
	case chunk.Divide:
		result, err = divide(lhs, rhs)
	}
	if err != nil {
		return toVmError(err)
	}
	vm.push(result)
	return nil
}

func (vm *VM) execCompare(ctx context.Context, op chunk.Op) error {
	rhsRaw, _ := vm.pop()
	lhsRaw, _ := vm.pop()
	rhs, err := vm.evaluate(ctx, rhsRaw, None)
	if err != nil {
		return err
	}
	lhs, err := vm.evaluate(ctx, lhsRaw, None)
	if err != nil {
		return err
	}

	if op == chunk.Equal || op == chunk.NotEqual {
		eq, err := value.Equal(lhs, rhs)
		if err != nil {
			return toVmError(err)
		}
		if op == chunk.NotEqual {
			eq = !eq
		}
		vm.push(value.Bool(eq))
		return nil
	}

	cmp, err := value.Compare(lhs, rhs)
	if err != nil {
		return toVmError(err)
	}
	var result bool
	switch op {
	case chunk.Less:
		result = cmp < 0
	case chunk.LessEqual:
		result = cmp <= 0
	case chunk.Greater:
		result = cmp > 0
	case chunk.GreaterEqual:
		result = cmp >= 0
	}
	vm.push(value.Bool(result))
	return nil
}

func (vm *VM) execCommand() error {
	countVal, _ := vm.pop()
	count, err := countVal.ToInt()
	if err != nil {
		return toVmError(err)
	}

	args := make([]value.Value, count)
	for i := int64(0); i < count; i++ {
		args[count-1-i], _ = vm.pop()
	}

	id := vm.chunk.ReadU64(vm.ip)
	vm.ip += 8
	name := vm.chunk.GetString(id)

	vm.push(value.NewCommand(name, args))
	return nil
}

func toVmError(err error) error {
	if _, ok := err.(VmError); ok {
		return err
	}
	return VmError{Kind: InvalidOperation, Message: err.Error()}
}
