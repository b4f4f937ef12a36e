package vm

import "insh/value"

// execCall implements the Call opcode supplement (DESIGN.md decision 1,
// SPEC_FULL §4.2): look up name as a local (search all scopes), require a
// Function value whose arity matches, push a new scope binding each popped
// argument to its parameter name (arguments pop in reverse, restoring
// left-to-right order), push the return address, and jump into the
// function's entry point in the same chunk.
func (vm *VM) execCall() error {
	id := vm.chunk.ReadU64(vm.ip)
	vm.ip += 8
	arity := int(vm.chunk.ReadByte(vm.ip))
	vm.ip++

	name := vm.chunk.GetString(id)

	callee, err := vm.getLocal(name)
	if err != nil {
		return VmError{Kind: UnknownFunction, Message: name}
	}
	if callee.Kind != value.KindFunction {
		return VmError{Kind: UnknownFunction, Message: name}
	}
	if len(callee.Function.Params) != arity {
		return VmError{Kind: ArityMismatch, Message: name}
	}

	args := make([]value.Value, arity)
	for i := arity - 1; i >= 0; i-- {
		args[i], _ = vm.pop()
	}

	vm.callStack = append(vm.callStack, vm.ip)
	vm.beginScope()
	for i, param := range callee.Function.Params {
		if err := vm.defineLocal(param, args[i], false); err != nil {
			return err
		}
	}

	vm.ip = callee.Function.EntryPoint
	return nil
}
