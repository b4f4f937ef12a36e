package vm

import (
	"strings"

	"insh/value"
)

// negate implements the Negate opcode (SPEC_FULL §4.5).
func negate(v value.Value) (value.Value, error) {
	switch v.Kind {
	case value.KindInt:
		return value.Int(-v.Int), nil
	case value.KindFloat:
		return value.Float(-v.Float), nil
	default:
		return value.Value{}, value.OperationError{Op: "-", Lhs: v.Kind, Rhs: v.Kind}
	}
}

// add implements the Add opcode: string concatenation wins if either side is
// a String, else float if either side is a Float, else int; None acts as the
// additive identity on either side (SPEC_FULL §4.5).
func add(lhs, rhs value.Value) (value.Value, error) {
	if lhs.Kind == value.KindString || rhs.Kind == value.KindString {
		return value.String(lhs.ToNativeString() + rhs.ToNativeString()), nil
	}
	if lhs.Kind == value.KindFloat || rhs.Kind == value.KindFloat {
		l, err := lhs.ToFloat()
		if err != nil {
			return value.Value{}, err
		}
		r, err := rhs.ToFloat()
		if err != nil {
			return value.Value{}, err
		}
		return value.Float(l + r), nil
	}
	if lhs.IsNumeric() && rhs.IsNumeric() {
		l, _ := lhs.ToInt()
		r, _ := rhs.ToInt()
		return value.Int(l + r), nil
	}
	return value.Value{}, value.OperationError{Op: "+", Lhs: lhs.Kind, Rhs: rhs.Kind}
}

// subtract implements Subtract: numeric subtraction; a String LHS with a
// numeric RHS truncates that many trailing characters; String-String
// removes all occurrences of RHS in LHS (SPEC_FULL §4.5).
func subtract(lhs, rhs value.Value) (value.Value, error) {
	if lhs.Kind == value.KindString {
		if rhs.Kind == value.KindString {
			return value.String(strings.ReplaceAll(lhs.Str, rhs.Str, "")), nil
		}
		n, err := rhs.ToInt()
		if err != nil {
			return value.Value{}, err
		}
		cut := len(lhs.Str) - int(n)
		if cut < 0 {
			cut = 0
		}
		return value.String(lhs.Str[:cut]), nil
	}
	if lhs.Kind == value.KindFloat || rhs.Kind == value.KindFloat {
		l, err := lhs.ToFloat()
		if err != nil {
			return value.Value{}, err
		}
		r, err := rhs.ToFloat()
		if err != nil {
			return value.Value{}, err
		}
		return value.Float(l - r), nil
	}
	l, err := lhs.ToInt()
	if err != nil {
		return value.Value{}, err
	}
	r, err := rhs.ToInt()
	if err != nil {
		return value.Value{}, err
	}
	return value.Int(l - r), nil
}

// multiply implements Multiply: numeric * numeric; String * Int repeats the
// string that many times; None counts as 0 (SPEC_FULL §4.5).
func multiply(lhs, rhs value.Value) (value.Value, error) {
	if lhs.Kind == value.KindString {
		n, err := rhs.ToInt()
		if err != nil || n < 0 {
			return value.Value{}, value.OperationError{Op: "*", Lhs: lhs.Kind, Rhs: rhs.Kind}
		}
		return value.String(strings.Repeat(lhs.Str, int(n))), nil
	}
	if rhs.Kind == value.KindString {
		return multiply(rhs, lhs)
	}
	if lhs.Kind == value.KindFloat || rhs.Kind == value.KindFloat {
		l, err := lhs.ToFloat()
		if err != nil {
			return value.Value{}, err
		}
		r, err := rhs.ToFloat()
		if err != nil {
			return value.Value{}, err
		}
		return value.Float(l * r), nil
	}
	l, err := lhs.ToInt()
	if err != nil {
		return value.Value{}, err
	}
	r, err := rhs.ToInt()
	if err != nil {
		return value.Value{}, err
	}
	return value.Int(l * r), nil
}

// divide implements Divide: numeric division only (SPEC_FULL §4.5 groups it
// with Subtract under "numeric"; original_source's own divide has no string
// variant, unlike subtract).
func divide(lhs, rhs value.Value) (value.Value, error) {
	if lhs.Kind == value.KindFloat || rhs.Kind == value.KindFloat {
		l, err := lhs.ToFloat()
		if err != nil {
			return value.Value{}, err
		}
		r, err := rhs.ToFloat()
		if err != nil {
			return value.Value{}, err
		}
		if r == 0 {
			return value.Value{}, VmError{Kind: InvalidValue, Message: "division by zero"}
		}
		return value.Float(l / r), nil
	}
	l, err := lhs.ToInt()
	if err != nil {
		return value.Value{}, err
	}
	r, err := rhs.ToInt()
	if err != nil {
		return value.Value{}, err
	}
	if r == 0 {
		return value.Value{}, VmError{Kind: InvalidValue, Message: "division by zero"}
	}
	return value.Int(l / r), nil
}
