package vm

import (
	"context"

	"insh/runtime"
	"insh/value"
)

// evaluate is the single place a deferred Command value turns into a real
// subprocess invocation (SPEC_FULL §9's "Command as a value" design note —
// the Command opcode handler itself never spawns anything). For any
// non-Command value it is identity.
func (vm *VM) evaluate(ctx context.Context, v value.Value, evalCtx Context) (value.Value, error) {
	if v.Kind != value.KindCommand {
		return v, nil
	}

	captureStdout := evalCtx == Assignment

	if v.Command.Stages != nil {
		return vm.evaluatePipeline(ctx, v.Command.Stages, captureStdout)
	}

	args, err := vm.nativeArgs(ctx, v.Command.Args)
	if err != nil {
		return value.Value{}, err
	}

	exitCode, stdout, err := vm.host.Spawn(ctx, v.Command.Name, args, captureStdout)
	if err != nil {
		return value.Value{}, VmError{Kind: InvalidOperation, Message: err.Error()}
	}
	if captureStdout {
		return value.String(stdout), nil
	}
	return value.Int(int64(exitCode)), nil
}

func (vm *VM) evaluatePipeline(ctx context.Context, stages []value.CommandStage, captureStdout bool) (value.Value, error) {
	invocations := make([]runtime.Invocation, len(stages))
	for i, stage := range stages {
		args, err := vm.nativeArgs(ctx, stage.Args)
		if err != nil {
			return value.Value{}, err
		}
		invocations[i] = runtime.Invocation{Name: stage.Name, Args: args}
	}

	exitCode, stdout, err := vm.host.Pipe(ctx, invocations, captureStdout)
	if err != nil {
		return value.Value{}, VmError{Kind: InvalidOperation, Message: err.Error()}
	}
	if captureStdout {
		return value.String(stdout), nil
	}
	return value.Int(int64(exitCode)), nil
}

// nativeArgs resolves each argument to its native string form, evaluating
// any argument that is itself a still-deferred Command (so a command
// substitution nested as another command's argument actually runs, with its
// stdout captured as that argument's text).
func (vm *VM) nativeArgs(ctx context.Context, args []value.Value) ([]string, error) {
	native := make([]string, len(args))
	for i, arg := range args {
		resolved, err := vm.evaluate(ctx, arg, Assignment)
		if err != nil {
			return nil, err
		}
		native[i] = resolved.ToNativeString()
	}
	return native, nil
}

// execPipe implements the Pipe opcode (SPEC_FULL §4.5 supplement,
// DESIGN.md decision 3). When both operands are still-deferred Commands
// (including a deferred pipeline from a chained `a | b | c`), it builds a
// longer pipeline value instead of evaluating either side yet, so the whole
// chain is evaluated once, per the ambient evaluation context, exactly like
// a single Command (Return/Pop/BranchIfFalse/Set*). When either side is not
// a Command (already evaluated to a String, say, by a prior operation), it
// falls back to treating both sides as literal text and concatenating them,
// since there is no longer a process on that side to pipe into.
func (vm *VM) execPipe(ctx context.Context) error {
	rhs, _ := vm.pop()
	lhs, _ := vm.pop()

	lhsStages, lhsOk := commandStages(lhs)
	rhsStages, rhsOk := commandStages(rhs)

	if lhsOk && rhsOk {
		stages := append(append([]value.CommandStage{}, lhsStages...), rhsStages...)
		vm.push(value.NewPipeline(stages))
		return nil
	}

	left, err := vm.evaluate(ctx, lhs, None)
	if err != nil {
		return err
	}
	right, err := vm.evaluate(ctx, rhs, None)
	if err != nil {
		return err
	}
	vm.push(value.String(left.ToNativeString() + right.ToNativeString()))
	return nil
}

// commandStages reports the pipeline-stage sequence a value contributes to
// a Pipe chain: a plain Command contributes itself as a single stage, an
// already-pipelined value contributes its existing stages, and anything
// else contributes none.
func commandStages(v value.Value) ([]value.CommandStage, bool) {
	if v.Kind != value.KindCommand {
		return nil, false
	}
	if v.Command.Stages != nil {
		return v.Command.Stages, true
	}
	return []value.CommandStage{{Name: v.Command.Name, Args: v.Command.Args}}, true
}
