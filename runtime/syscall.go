package runtime

import (
	"strconv"
	"strings"

	"insh/value"
)

// SyscallError reports a "read"/"parse" syscall failure; the vm package maps
// this to VmError{InvalidValue} or VmError{InvalidOperation} (SPEC_FULL §7).
type SyscallError struct {
	InvalidOperation bool
	Message          string
}

func (e SyscallError) Error() string {
	return e.Message
}

// getValue resolves the source text for a "number" read: "console" reads one
// line from the host's stdin, anything else is used literally as the
// subject string (original_source's get_value).
func getValue(host Host, from string) (value.Value, error) {
	if from == "console" {
		line, err := host.ReadLine()
		if err != nil {
			return value.Value{}, SyscallError{InvalidOperation: true, Message: "read from console failed"}
		}
		return value.String(line), nil
	}
	return value.String(from), nil
}

// ReadNumber implements "parse"/"read"'s numeric extraction: find the first
// run of digits and '.' characters in the resolved source text and parse it
// as an Int or a Float depending on whether a '.' appeared (a run with more
// than one '.', such as "1.2.3", fails to parse and returns an error),
// ported directly from original_source/src/vm/syscall/read.rs's read_number.
func ReadNumber(host Host, from value.Value) (value.Value, error) {
	switch from.Kind {
	case value.KindBool:
		i, _ := from.ToInt()
		return value.Int(i), nil
	case value.KindString:
		resolved, err := getValue(host, from.Str)
		if err != nil {
			return value.Value{}, err
		}
		return extractNumber(resolved.ToNativeString())
	default:
		return value.Value{}, SyscallError{InvalidOperation: true, Message: "read_number: unsupported source kind " + from.Kind.String()}
	}
}

func extractNumber(text string) (value.Value, error) {
	start := strings.IndexFunc(text, func(r rune) bool { return r >= '0' && r <= '9' })
	if start < 0 {
		return value.Value{}, SyscallError{Message: "no digits found in " + strconv.Quote(text)}
	}

	end := start
	for end < len(text) {
		c := text[end]
		if (c >= '0' && c <= '9') || c == '.' {
			end++
			continue
		}
		break
	}
	numberText := text[start:end]

	if strings.Contains(numberText, ".") {
		f, err := strconv.ParseFloat(numberText, 64)
		if err != nil {
			return value.Value{}, SyscallError{Message: "could not parse float " + strconv.Quote(numberText)}
		}
		return value.Float(f), nil
	}

	i, err := strconv.ParseInt(numberText, 10, 64)
	if err != nil {
		return value.Value{}, SyscallError{Message: "could not parse int " + strconv.Quote(numberText)}
	}
	return value.Int(i), nil
}
