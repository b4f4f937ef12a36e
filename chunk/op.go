// Package chunk implements the bytecode container the compiler emits into
// and the VM executes: an append-only instruction stream plus an interned
// string pool and a function table, and the disassembler that renders that
// stream back to readable mnemonics.
package chunk

// Op is a single bytecode instruction's opcode. The numeric values match the
// wire contract in SPEC_FULL §6 exactly, including the gaps between ranges
// (reserved the way the teacher's original wire table reserved them).
type Op byte

const (
	Return Op = 1

	IntConstant    Op = 8
	FloatConstant  Op = 9
	StringConstant Op = 10
	BoolConstant   Op = 11
	NoneConstant   Op = 12

	Pop Op = 16

	GetEnv Op = 24
	SetEnv Op = 25

	DefineLocal Op = 32
	PinLocal    Op = 33
	GetLocal    Op = 34
	SetLocal    Op = 35

	// IdentRef is a supplement (SPEC_FULL §4.2/§9, DESIGN.md): a bare
	// identifier in expression position resolves to a same-named local if
	// one is bound (the Call opcode's parameter-binding mechanism, DESIGN.md
	// decision 1, binds parameters under their bare names), falling back to
	// the identifier's own text as a String literal otherwise — preserving
	// original_source's "identifier in expression position is a String
	// constant" rule for every bare word that isn't a bound parameter.
	IdentRef Op = 36

	Negate   Op = 48
	Add      Op = 49
	Subtract Op = 50
	Multiply Op = 51
	Divide   Op = 52
	Pipe     Op = 53
	Swap     Op = 54
	Equal    Op = 55

	// NotEqual/Less/LessEqual/Greater/GreaterEqual are a supplement over the
	// distilled wire table (SPEC_FULL §4.2/§11, DESIGN.md decision 5): the
	// distilled spec only reserves a byte for Equal among comparisons, but
	// names a Comparison precedence level with nothing to back it.
	NotEqual     Op = 56
	Less         Op = 57
	LessEqual    Op = 58
	Greater      Op = 59
	GreaterEqual Op = 60

	Command Op = 64

	Branch        Op = 96
	BranchIfFalse Op = 97
	BranchBack    Op = 98

	SysCall  Op = 128
	Function Op = 129

	// Call is a supplement (SPEC_FULL §4.2/§9, DESIGN.md decision 1): no byte
	// in the distilled wire table backs function invocation.
	Call Op = 130

	BeginScope Op = 224
	EndScope   Op = 225
)

var mnemonics = map[Op]string{
	Return:         "RETURN",
	IntConstant:    "INT_CONSTANT",
	FloatConstant:  "FLOAT_CONSTANT",
	StringConstant: "STRING_CONSTANT",
	BoolConstant:   "BOOL_CONSTANT",
	NoneConstant:   "NONE_CONSTANT",
	Pop:            "POP",
	GetEnv:         "GET_ENV",
	SetEnv:         "SET_ENV",
	DefineLocal:    "DEFINE_LOCAL",
	PinLocal:       "PIN_LOCAL",
	GetLocal:       "GET_LOCAL",
	SetLocal:       "SET_LOCAL",
	IdentRef:       "IDENT_REF",
	Negate:         "NEGATE",
	Add:            "ADD",
	Subtract:       "SUBTRACT",
	Multiply:       "MULTIPLY",
	Divide:         "DIVIDE",
	Pipe:           "PIPE",
	Swap:           "SWAP",
	Equal:          "EQUAL",
	NotEqual:       "NOT_EQUAL",
	Less:           "LESS",
	LessEqual:      "LESS_EQUAL",
	Greater:        "GREATER",
	GreaterEqual:   "GREATER_EQUAL",
	Command:        "COMMAND",
	Branch:         "BRANCH",
	BranchIfFalse:  "BRANCH_IF_FALSE",
	BranchBack:     "BRANCH_BACK",
	SysCall:        "SYS_CALL",
	Function:       "FUNCTION",
	Call:           "CALL",
	BeginScope:     "BEGIN_SCOPE",
	EndScope:       "END_SCOPE",
}

// OperandWidth is the number of operand bytes following an opcode's own
// single byte. Call is the one irregular shape (an 8-byte id plus a 1-byte
// arity); OperandWidth returns the *total* operand bytes (9) so callers
// don't special-case it.
func (op Op) OperandWidth() int {
	switch op {
	case IntConstant, FloatConstant, StringConstant,
		GetEnv, SetEnv,
		DefineLocal, PinLocal, GetLocal, SetLocal, IdentRef,
		Command,
		Branch, BranchIfFalse, BranchBack,
		SysCall, Function:
		return 8
	case BoolConstant:
		return 1
	case Call:
		return 9
	default:
		return 0
	}
}

func (op Op) String() string {
	if s, ok := mnemonics[op]; ok {
		return s
	}
	return "UNKNOWN"
}
