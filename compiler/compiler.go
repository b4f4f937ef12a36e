// Package compiler implements the single-pass Pratt parser that compiles
// source text directly into a chunk.Chunk, with no intermediate AST. Ported
// from original_source/src/compile/compiler.rs and precedence.rs, with the
// Go method-table idiom (map[TokenType]parseRule of bound method values)
// taken from the teacher's compiler/compiler.go.
package compiler

import (
	"strconv"

	"insh/chunk"
	"insh/scanner"
	"insh/token"
)

// Compiler turns a token stream into bytecode written directly into a
// chunk.Chunk as parsing proceeds.
type Compiler struct {
	scanner *scanner.Scanner
	chunk   *chunk.Chunk

	previous token.Token
	current  token.Token

	parseRules map[token.TokenType]parseRule
}

// New constructs a Compiler over source text, writing into a fresh Chunk.
func New(source string) *Compiler {
	return &Compiler{
		scanner:    scanner.New(source),
		chunk:      chunk.New(),
		parseRules: buildParseRules(),
	}
}

// Chunk returns the chunk compiled into so far.
func (c *Compiler) Chunk() *chunk.Chunk {
	return c.chunk
}

func (c *Compiler) advance() error {
	tok, err := c.scanner.NextToken()
	if err != nil {
		return CompileError{Message: err.Error()}
	}
	c.previous = c.current
	c.current = tok
	return nil
}

func (c *Compiler) check(tt token.TokenType) bool {
	return c.current.TokenType == tt
}

func (c *Compiler) matchType(tt token.TokenType) (bool, error) {
	if !c.check(tt) {
		return false, nil
	}
	return true, c.advance()
}

func (c *Compiler) consume(tt token.TokenType) error {
	if c.check(tt) {
		return c.advance()
	}
	return errMissingToken(tt, c.current)
}

func (c *Compiler) expression() error {
	return c.parsePrecedence(PrecAssignment)
}

// Compile runs the top-level loop: skip blank lines, parse one expression,
// terminate on EndOfLine/EndOfFile (a command line has already consumed its
// own EndCommand), Pop statement results that aren't the last, then emit
// Return. A semicolon does not end a statement: the scanner produces no
// SEMICOLON token.
func (c *Compiler) Compile() (*chunk.Chunk, error) {
	if err := c.advance(); err != nil {
		return nil, err
	}

	for {
		matched, err := c.matchType(token.EOF)
		if err != nil {
			return nil, err
		}
		if matched {
			break
		}

		for {
			m, err := c.matchType(token.END_OF_LINE)
			if err != nil {
				return nil, err
			}
			if !m {
				break
			}
		}

		if err := c.expression(); err != nil {
			return nil, err
		}

		if c.previous.TokenType != token.END_COMMAND {
			if err := c.consume(token.END_OF_LINE); err != nil {
				if err := c.consume(token.EOF); err != nil {
					return nil, err
				}
			}
		}

		if !c.check(token.EOF) {
			c.chunk.WriteOp(chunk.Pop)
		}
	}

	c.chunk.WriteOp(chunk.Return)
	return c.chunk, nil
}

// --- branch / loop emission ---

func (c *Compiler) emitBranch(op chunk.Op) int {
	c.chunk.WriteOp(op)
	offset := c.chunk.Len()
	c.chunk.WriteU64(0)
	return offset
}

func (c *Compiler) patchBranch(offset int) {
	distance := uint64(c.chunk.Len() - offset - 8)
	// offset was just reserved by emitBranch a few writes ago, so it is
	// always in range; the error return only guards against misuse.
	_ = c.chunk.PatchU64(offset, distance)
}

func (c *Compiler) emitLoop(start int) {
	c.chunk.WriteOp(chunk.BranchBack)
	distance := uint64(c.chunk.Len() - start + 8)
	c.chunk.WriteU64(distance)
}

// --- prefix rules ---

func (c *Compiler) grouping(_ bool) error {
	if err := c.expression(); err != nil {
		return err
	}
	return c.consume(token.RPA)
}

func (c *Compiler) unary(_ bool) error {
	operator := c.previous.TokenType

	if err := c.parsePrecedence(PrecUnary); err != nil {
		return err
	}

	switch operator {
	case token.MINUS:
		c.chunk.WriteOp(chunk.Negate)
	case token.PLUS:
		// unary plus is a no-op
	default:
		return errUnknownUnaryOperator(operator)
	}
	return nil
}

func (c *Compiler) block(_ bool) error {
	// Line ends separate the block's statements; each statement pops the
	// value before it, so the block leaves only its last value (None if empty).
	c.chunk.WriteOp(chunk.BeginScope)
	c.chunk.WriteOp(chunk.NoneConstant)
	for !c.check(token.RCUR) && !c.check(token.EOF) {
		if c.check(token.END_OF_LINE) {
			if err := c.advance(); err != nil {
				return err
			}
			continue
		}
		c.chunk.WriteOp(chunk.Pop)
		if err := c.expression(); err != nil {
			return err
		}
	}
	if err := c.consume(token.RCUR); err != nil {
		return err
	}
	c.chunk.WriteOp(chunk.EndScope)
	return nil
}

// command compiles a bare-word invocation: zero or more argument expressions
// up to EndCommand/EndOfLine/EndOfFile, then `IntConstant count` `Command
// name-id`. A following "|", "}" or ")" also ends the arguments and is left
// for the enclosing rule; arguments parse above "|" so it joins whole commands.
func (c *Compiler) command(_ bool) error {
	name := c.previous.Text
	count := int64(0)

loop:
	for {
		switch c.current.TokenType {
		case token.PIPE, token.RCUR, token.RPA:
			break loop
		}
		if err := c.parsePrecedence(PrecPrimary + 1); err != nil {
			return err
		}

		switch c.previous.TokenType {
		case token.END_COMMAND, token.EOF, token.END_OF_LINE:
			break loop
		}

		count++
	}

	c.chunk.WriteOp(chunk.IntConstant)
	c.chunk.WriteI64(count)

	id := c.chunk.AddString(name)
	c.chunk.WriteOp(chunk.Command)
	c.chunk.WriteU64(id)
	return nil
}

// parseOrRead compiles `parse <expr> from <expr>` / `read <expr> from
// <expr>`, both emitting `SysCall name-id` with the keyword's own text as
// the syscall name (DESIGN.md decision 6).
func (c *Compiler) parseOrRead(_ bool) error {
	name := c.previous.Text

	if err := c.expression(); err != nil {
		return err
	}
	if err := c.consume(token.FROM); err != nil {
		return err
	}
	if err := c.expression(); err != nil {
		return err
	}

	id := c.chunk.AddString(name)
	c.chunk.WriteOp(chunk.SysCall)
	c.chunk.WriteU64(id)
	return nil
}

// stringConstant backs STRING tokens in prefix position: the literal is its
// own string value. IDENTIFIER tokens go through identifierOrCall instead.
func (c *Compiler) stringConstant(_ bool) error {
	id := c.chunk.AddString(c.previous.Text)
	c.chunk.WriteOp(chunk.StringConstant)
	c.chunk.WriteU64(id)
	return nil
}

// identifierOrCall handles the Call-opcode supplement: an identifier
// immediately followed by "(" is a call site; otherwise it emits IdentRef,
// which resolves to a same-named local (a bound function parameter) at
// runtime if one exists, falling back to the identifier's own text
// (original_source's plain "identifier is a String constant" rule).
func (c *Compiler) identifierOrCall(canAssign bool) error {
	name := c.previous.Text

	if !c.check(token.LPA) {
		id := c.chunk.AddString(name)
		c.chunk.WriteOp(chunk.IdentRef)
		c.chunk.WriteU64(id)
		return nil
	}

	if err := c.advance(); err != nil { // consume '('
		return err
	}

	arity := 0
	if !c.check(token.RPA) {
		for {
			if err := c.expression(); err != nil {
				return err
			}
			arity++

			matched, err := c.matchType(token.COMMA)
			if err != nil {
				return err
			}
			if !matched {
				break
			}
		}
	}
	if err := c.consume(token.RPA); err != nil {
		return err
	}

	id := c.chunk.AddString(name)
	c.chunk.WriteOp(chunk.Call)
	c.chunk.WriteU64(id)
	c.chunk.WriteByte(byte(arity))
	return nil
}

func (c *Compiler) trueLiteral(_ bool) error {
	c.chunk.WriteOp(chunk.BoolConstant)
	c.chunk.WriteByte(1)
	return nil
}

func (c *Compiler) falseLiteral(_ bool) error {
	c.chunk.WriteOp(chunk.BoolConstant)
	c.chunk.WriteByte(0)
	return nil
}

func (c *Compiler) intConstant(_ bool) error {
	v, err := strconv.ParseInt(c.previous.Text, 10, 64)
	if err != nil {
		return errNumberLiteral(c.previous.Text)
	}
	c.chunk.WriteOp(chunk.IntConstant)
	c.chunk.WriteI64(v)
	return nil
}

func (c *Compiler) floatConstant(_ bool) error {
	v, err := strconv.ParseFloat(c.previous.Text, 64)
	if err != nil {
		return errNumberLiteral(c.previous.Text)
	}
	c.chunk.WriteOp(chunk.FloatConstant)
	c.chunk.WriteF64(v)
	return nil
}

func (c *Compiler) envVar(_ bool) error {
	id := c.chunk.AddString(c.previous.Text)

	matched, err := c.matchType(token.ASSIGN)
	if err != nil {
		return err
	}
	op := chunk.GetEnv
	if matched {
		if err := c.expression(); err != nil {
			return err
		}
		op = chunk.SetEnv
	}

	c.chunk.WriteOp(op)
	c.chunk.WriteU64(id)
	return nil
}

func (c *Compiler) localVar(canAssign bool) error {
	id := c.chunk.AddString(c.previous.Text)

	isSet := false
	if canAssign {
		matched, err := c.matchType(token.ASSIGN)
		if err != nil {
			return err
		}
		isSet = matched
	}

	op := chunk.GetLocal
	if isSet {
		if err := c.expression(); err != nil {
			return err
		}
		op = chunk.SetLocal
	}

	c.chunk.WriteOp(op)
	c.chunk.WriteU64(id)
	return nil
}

// letVar compiles `let @name = <expr>` or, when zero or more bare parameter
// identifiers followed by "=>" appear, a function definition (SPEC_FULL
// §4.2's "Function definitions").
func (c *Compiler) letVar(_ bool) error {
	if err := c.consume(token.LOCAL_VARIABLE); err != nil {
		return err
	}
	name := c.previous.Text

	if c.check(token.ASSIGN) {
		if err := c.advance(); err != nil {
			return err
		}
		if err := c.expression(); err != nil {
			return err
		}
		id := c.chunk.AddString(name)
		c.chunk.WriteOp(chunk.DefineLocal)
		c.chunk.WriteU64(id)
		return nil
	}

	var params []string
	for c.check(token.IDENTIFIER) {
		if err := c.advance(); err != nil {
			return err
		}
		params = append(params, c.previous.Text)
	}
	if err := c.consume(token.FAT_ARROW); err != nil {
		return err
	}

	return c.compileFunction(name, params)
}

// compileFunction emits the Branch-skip/body/patch/Function/DefineLocal
// sequence described in SPEC_FULL §4.2. Parameter-to-local binding happens
// in the VM's Call handler (decision 1 in DESIGN.md), not via bytecode
// emitted here.
func (c *Compiler) compileFunction(name string, params []string) error {
	skip := c.emitBranch(chunk.Branch)
	entryPoint := c.chunk.Len()

	if err := c.expression(); err != nil {
		return err
	}
	c.chunk.WriteOp(chunk.Return)

	c.patchBranch(skip)

	fnID := c.chunk.AddFunction(chunk.FunctionEntry{
		Name:       name,
		Params:     params,
		EntryPoint: entryPoint,
	})
	c.chunk.WriteOp(chunk.Function)
	c.chunk.WriteU64(fnID)

	nameID := c.chunk.AddString(name)
	c.chunk.WriteOp(chunk.DefineLocal)
	c.chunk.WriteU64(nameID)
	return nil
}

func (c *Compiler) pinVar(_ bool) error {
	if err := c.consume(token.LOCAL_VARIABLE); err != nil {
		return err
	}
	name := c.previous.Text

	if _, err := c.matchType(token.ASSIGN); err != nil {
		return err
	}
	if err := c.expression(); err != nil {
		return err
	}

	id := c.chunk.AddString(name)
	c.chunk.WriteOp(chunk.PinLocal)
	c.chunk.WriteU64(id)
	return nil
}

func (c *Compiler) ifExpr(_ bool) error {
	if err := c.expression(); err != nil {
		return err
	}
	if err := c.consume(token.THEN); err != nil {
		return err
	}

	thenSkip := c.emitBranch(chunk.BranchIfFalse)
	c.chunk.WriteOp(chunk.Pop)

	if err := c.expression(); err != nil {
		return err
	}

	elseSkip := c.emitBranch(chunk.Branch)

	c.patchBranch(thenSkip)
	c.chunk.WriteOp(chunk.Pop)

	matched, err := c.matchType(token.ELSE)
	if err != nil {
		return err
	}
	if matched {
		if err := c.expression(); err != nil {
			return err
		}
	} else {
		c.chunk.WriteOp(chunk.NoneConstant)
	}

	c.patchBranch(elseSkip)
	return nil
}

func (c *Compiler) and(_ bool) error {
	offset := c.emitBranch(chunk.BranchIfFalse)
	c.chunk.WriteOp(chunk.Pop)
	if err := c.parsePrecedence(PrecAnd); err != nil {
		return err
	}
	c.patchBranch(offset)
	return nil
}

func (c *Compiler) or(_ bool) error {
	elseOffset := c.emitBranch(chunk.BranchIfFalse)
	endOffset := c.emitBranch(chunk.Branch)

	c.patchBranch(elseOffset)
	c.chunk.WriteOp(chunk.Pop)

	if err := c.parsePrecedence(PrecOr); err != nil {
		return err
	}

	c.patchBranch(endOffset)
	return nil
}

// whileExpr compiles `while <cond> <body>` with a real backward branch, a
// correctness fix over original_source (DESIGN.md decision 8) whose own
// while_ never loops.
func (c *Compiler) whileExpr(_ bool) error {
	loopStart := c.chunk.Len()

	if err := c.expression(); err != nil {
		return err
	}

	endOffset := c.emitBranch(chunk.BranchIfFalse)
	c.chunk.WriteOp(chunk.Pop)

	if err := c.expression(); err != nil {
		return err
	}
	c.chunk.WriteOp(chunk.Pop)

	c.emitLoop(loopStart)

	c.patchBranch(endOffset)
	c.chunk.WriteOp(chunk.Pop)
	c.chunk.WriteOp(chunk.NoneConstant) // the loop's own value
	return nil
}

// binary compiles the RHS of an infix arithmetic/comparison/pipe operator at
// one precedence level above the operator's own, then emits the matching
// opcode.
func (c *Compiler) binary(_ bool) error {
	operator := c.previous.TokenType
	prec := c.ruleFor(operator).precedence

	if err := c.parsePrecedence(prec + 1); err != nil {
		return err
	}

	switch operator {
	case token.PLUS:
		c.chunk.WriteOp(chunk.Add)
	case token.MINUS:
		c.chunk.WriteOp(chunk.Subtract)
	case token.STAR:
		c.chunk.WriteOp(chunk.Multiply)
	case token.SLASH:
		c.chunk.WriteOp(chunk.Divide)
	case token.PIPE:
		c.chunk.WriteOp(chunk.Pipe)
	case token.EQUAL_EQUAL:
		c.chunk.WriteOp(chunk.Equal)
	case token.NOT_EQUAL:
		c.chunk.WriteOp(chunk.NotEqual)
	case token.LESS:
		c.chunk.WriteOp(chunk.Less)
	case token.LESS_EQUAL:
		c.chunk.WriteOp(chunk.LessEqual)
	case token.LARGER:
		c.chunk.WriteOp(chunk.Greater)
	case token.LARGER_EQUAL:
		c.chunk.WriteOp(chunk.GreaterEqual)
	default:
		return DeveloperError{Message: "binary() called for a token with no opcode mapping"}
	}
	return nil
}
