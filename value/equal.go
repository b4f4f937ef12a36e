package value

import "fmt"

// OperationError reports a binary operation applied to value kinds that do
// not support it (VmError InvalidOperation in SPEC_FULL §7).
type OperationError struct {
	Op   string
	Lhs  Kind
	Rhs  Kind
}

func (e OperationError) Error() string {
	return fmt.Sprintf("invalid operation %s between %s and %s", e.Op, e.Lhs, e.Rhs)
}

// Equal implements the variant-sensitive equality with coercion described in
// SPEC_FULL §4.5: None equals only None; numeric values are compared after
// coercing rhs to lhs's numeric kind; strings compare as strings; a Bool
// compares against the other operand's truthiness; Maps are always unequal
// (no structural map comparison is specified); Commands and Functions are
// not comparable at all.
func Equal(lhs, rhs Value) (bool, error) {
	switch lhs.Kind {
	case KindNone:
		return rhs.Kind == KindNone, nil
	case KindInt:
		switch rhs.Kind {
		case KindInt:
			return lhs.Int == rhs.Int, nil
		case KindFloat, KindString, KindBool, KindNone:
			r, err := rhs.ToInt()
			if err != nil {
				return false, err
			}
			return lhs.Int == r, nil
		default:
			return false, OperationError{Op: "==", Lhs: lhs.Kind, Rhs: rhs.Kind}
		}
	case KindFloat:
		switch rhs.Kind {
		case KindInt, KindFloat, KindString, KindBool, KindNone:
			r, err := rhs.ToFloat()
			if err != nil {
				return false, err
			}
			return lhs.Float == r, nil
		default:
			return false, OperationError{Op: "==", Lhs: lhs.Kind, Rhs: rhs.Kind}
		}
	case KindString:
		if rhs.Kind != KindString {
			return lhs.Str == rhs.ToNativeString(), nil
		}
		return lhs.Str == rhs.Str, nil
	case KindBool:
		return lhs.Bool == rhs.ToNativeBool(), nil
	case KindMap:
		return false, nil
	case KindCommand, KindFunction:
		return false, OperationError{Op: "==", Lhs: lhs.Kind, Rhs: rhs.Kind}
	default:
		return false, OperationError{Op: "==", Lhs: lhs.Kind, Rhs: rhs.Kind}
	}
}

// Compare implements the ordering used by Less/LessEqual/Greater/
// GreaterEqual (SPEC_FULL §4.5 comparison supplement): numeric values are
// compared after coercing rhs to lhs's numeric kind (mirroring Equal's own
// coercion rule), strings compare lexicographically, and any other pairing
// is InvalidOperation.
func Compare(lhs, rhs Value) (int, error) {
	switch lhs.Kind {
	case KindInt, KindNone:
		l, _ := lhs.ToInt()
		r, err := rhs.ToInt()
		if err != nil {
			return 0, err
		}
		switch {
		case l < r:
			return -1, nil
		case l > r:
			return 1, nil
		default:
			return 0, nil
		}
	case KindFloat:
		l := lhs.Float
		r, err := rhs.ToFloat()
		if err != nil {
			return 0, err
		}
		switch {
		case l < r:
			return -1, nil
		case l > r:
			return 1, nil
		default:
			return 0, nil
		}
	case KindString:
		rs := rhs.ToNativeString()
		switch {
		case lhs.Str < rs:
			return -1, nil
		case lhs.Str > rs:
			return 1, nil
		default:
			return 0, nil
		}
	default:
		return 0, OperationError{Op: "compare", Lhs: lhs.Kind, Rhs: rhs.Kind}
	}
}
