package vm

import (
	"context"

	"insh/runtime"
)

// execSysCall implements SysCall (DESIGN.md decision 6, SPEC_FULL §4.5):
// pop the source value (the `from` expression), pop the kind selector (the
// first expression, e.g. "number"), and dispatch by the syscall's own
// interned name — "parse" and "read" are both recognized and share the same
// handler, reusing original_source's numeric-extraction algorithm via the
// runtime package.
func (vm *VM) execSysCall(ctx context.Context) error {
	id := vm.chunk.ReadU64(vm.ip)
	vm.ip += 8
	name := vm.chunk.GetString(id)

	fromRaw, _ := vm.pop()
	from, err := vm.evaluate(ctx, fromRaw, Assignment)
	if err != nil {
		return err
	}

	whatRaw, _ := vm.pop()
	what, err := vm.evaluate(ctx, whatRaw, Assignment)
	if err != nil {
		return err
	}

	switch name {
	case "parse", "read":
		if what.ToNativeString() != "number" {
			return VmError{Kind: UnknownSysCall, Message: "unsupported " + name + " kind " + what.ToNativeString()}
		}
		result, err := runtime.ReadNumber(vm.host, from)
		if err != nil {
			return syscallVmError(err)
		}
		vm.push(result)
		return nil
	default:
		return VmError{Kind: UnknownSysCall, Message: name}
	}
}

func syscallVmError(err error) error {
	if se, ok := err.(runtime.SyscallError); ok {
		if se.InvalidOperation {
			return VmError{Kind: InvalidOperation, Message: se.Message}
		}
		return VmError{Kind: InvalidValue, Message: se.Message}
	}
	return VmError{Kind: InvalidValue, Message: err.Error()}
}
