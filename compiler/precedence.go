package compiler

import "insh/token"

// Precedence levels, lowest to highest, matching original_source's own
// Precedence enum order (compile/precedence.rs) — including the Equality
// and Comparison levels it declares but never wires an operator to.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

// parseFn is a prefix or infix parsing rule. canAssign gates whether a
// trailing "=" may be consumed as an assignment, per parsePrecedence's
// Assignment-level check.
type parseFn func(c *Compiler, canAssign bool) error

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

func buildParseRules() map[token.TokenType]parseRule {
	return map[token.TokenType]parseRule{
		token.LPA:            {prefix: (*Compiler).grouping},
		token.MINUS:          {prefix: (*Compiler).unary, infix: (*Compiler).binary, precedence: PrecTerm},
		token.PLUS:           {prefix: (*Compiler).unary, infix: (*Compiler).binary, precedence: PrecTerm},
		token.STAR:           {infix: (*Compiler).binary, precedence: PrecFactor},
		token.SLASH:          {infix: (*Compiler).binary, precedence: PrecFactor},
		token.PIPE:           {infix: (*Compiler).binary, precedence: PrecPrimary},
		token.EQUAL_EQUAL:    {infix: (*Compiler).binary, precedence: PrecEquality},
		token.NOT_EQUAL:      {infix: (*Compiler).binary, precedence: PrecEquality},
		token.LESS:           {infix: (*Compiler).binary, precedence: PrecComparison},
		token.LESS_EQUAL:     {infix: (*Compiler).binary, precedence: PrecComparison},
		token.LARGER:         {infix: (*Compiler).binary, precedence: PrecComparison},
		token.LARGER_EQUAL:   {infix: (*Compiler).binary, precedence: PrecComparison},
		token.AND:            {infix: (*Compiler).and, precedence: PrecAnd},
		token.OR:              {infix: (*Compiler).or, precedence: PrecOr},
		token.IDENTIFIER:     {prefix: (*Compiler).identifierOrCall},
		token.STRING:         {prefix: (*Compiler).stringConstant},
		token.INT:            {prefix: (*Compiler).intConstant},
		token.FLOAT:          {prefix: (*Compiler).floatConstant},
		token.TRUE:           {prefix: (*Compiler).trueLiteral},
		token.FALSE:          {prefix: (*Compiler).falseLiteral},
		token.COMMAND:        {prefix: (*Compiler).command},
		token.PARSE:          {prefix: (*Compiler).parseOrRead},
		token.READ:           {prefix: (*Compiler).parseOrRead},
		token.ENV_VARIABLE:   {prefix: (*Compiler).envVar},
		token.LOCAL_VARIABLE: {prefix: (*Compiler).localVar},
		token.LCUR:           {prefix: (*Compiler).block},
		token.LET:            {prefix: (*Compiler).letVar},
		token.PIN:            {prefix: (*Compiler).pinVar},
		token.IF:              {prefix: (*Compiler).ifExpr},
		token.WHILE:           {prefix: (*Compiler).whileExpr},
	}
}

func (c *Compiler) ruleFor(tt token.TokenType) parseRule {
	return c.parseRules[tt]
}

// parsePrecedence is the Pratt engine: advance once, dispatch the prefix
// rule for `previous`, then keep consuming infix operators whose precedence
// is at least `min`.
func (c *Compiler) parsePrecedence(min Precedence) error {
	if err := c.advance(); err != nil {
		return err
	}

	canAssign := min <= PrecAssignment

	rule := c.ruleFor(c.previous.TokenType)
	if rule.prefix == nil {
		return nil
	}
	if err := rule.prefix(c, canAssign); err != nil {
		return err
	}

	for {
		infixRule := c.ruleFor(c.current.TokenType)
		if min > infixRule.precedence {
			break
		}

		if err := c.advance(); err != nil {
			return err
		}
		rule := c.ruleFor(c.previous.TokenType)
		if rule.infix != nil {
			if err := rule.infix(c, canAssign); err != nil {
				return err
			}
		}
	}

	if canAssign {
		matched, err := c.matchType(token.ASSIGN)
		if err != nil {
			return err
		}
		if matched {
			return errInvalidAssignment()
		}
	}

	return nil
}
