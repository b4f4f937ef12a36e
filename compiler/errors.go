package compiler

import (
	"fmt"

	"insh/token"
)

// CompileError is the compiler's typed error, following the teacher's
// emoji-prefixed typed-error convention (compiler/errors.go, vm/errors.go).
type CompileError struct {
	Message string
}

func (e CompileError) Error() string {
	return fmt.Sprintf("💥 CompileError: %s", e.Message)
}

func errMissingToken(want token.TokenType, got token.Token) error {
	return CompileError{Message: fmt.Sprintf("expected %s, got %s", want, got)}
}

func errUnknownUnaryOperator(tt token.TokenType) error {
	return CompileError{Message: fmt.Sprintf("unknown unary operator %s", tt)}
}

func errInvalidAssignment() error {
	return CompileError{Message: "invalid assignment target"}
}

func errNumberLiteral(text string) error {
	return CompileError{Message: fmt.Sprintf("could not parse numeric literal %q", text)}
}

// DeveloperError marks a condition that should be impossible given the
// grammar (a parse rule table with a gap), matching the teacher's
// distinction between "script is wrong" and "compiler is wrong".
type DeveloperError struct {
	Message string
}

func (e DeveloperError) Error() string {
	return fmt.Sprintf("🤖 DeveloperError: %s", e.Message)
}
