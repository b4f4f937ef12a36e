// Package scanner implements the mode-switching lexer described in
// SPEC_FULL §4.1: a small pushdown automaton over three modes (Command,
// Argument, Expression) that determines how the next run of characters is
// read. Ported from original_source/src/scan/scanner.rs's read_token mode
// table, which is the authoritative source for this component (spec.md
// describes the modes in prose; the Rust source is the literal transition
// table this file mirrors).
package scanner

import (
	"strings"
	"unicode"

	"insh/token"
)

// Scanner pulls tokens lazily, one at a time, from source text — required
// because the Compiler (insh/compiler) is single-pass and emits bytecode as
// it parses, unlike the teacher's lexer.Lexer which tokenizes a whole line
// up front.
type Scanner struct {
	chars []rune

	startOffset   int
	currentOffset int
	currentLine   int32
	currentColumn int

	mode      Mode
	modeStack []Mode
}

// New constructs a Scanner over source text, starting in Command mode.
func New(source string) *Scanner {
	return &Scanner{
		chars:       []rune(source),
		currentLine: 1,
		mode:        Command,
	}
}

func (s *Scanner) pushMode(m Mode) {
	// Command mode is never pushed: popping back to it must always be
	// possible without it having been explicitly saved (SPEC_FULL §9).
	if s.mode != Command {
		s.modeStack = append(s.modeStack, s.mode)
	}
	s.mode = m
}

func (s *Scanner) popMode() {
	if len(s.modeStack) == 0 {
		s.mode = Command
		return
	}
	last := len(s.modeStack) - 1
	s.mode = s.modeStack[last]
	s.modeStack = s.modeStack[:last]
}

func (s *Scanner) isAtEnd() bool {
	return s.currentOffset >= len(s.chars)
}

func (s *Scanner) nextChar() rune {
	c := s.chars[s.currentOffset]
	s.currentOffset++
	s.currentColumn++
	return c
}

func (s *Scanner) currentChar() rune {
	if s.isAtEnd() {
		return 0
	}
	return s.chars[s.currentOffset]
}

func (s *Scanner) peekMatch(c rune) bool {
	if s.isAtEnd() {
		return false
	}
	return s.chars[s.currentOffset] == c
}

func (s *Scanner) tokenIfMatch(c rune, match, noMatch token.TokenType) token.TokenType {
	if s.peekMatch(c) {
		s.nextChar()
		return match
	}
	return noMatch
}

func (s *Scanner) skipWhitespace() {
	for s.currentChar() == ' ' || s.currentChar() == '\r' || s.currentChar() == '\t' || s.currentChar() == '#' {
		if s.currentChar() == '#' {
			for !s.isAtEnd() && s.currentChar() != '\n' {
				s.nextChar()
			}
			continue
		}
		s.nextChar()
	}
}

func (s *Scanner) newToken(tokenType token.TokenType, text string) token.Token {
	return token.New(tokenType, text, s.currentLine, s.currentColumn)
}

func (s *Scanner) rawSlice(startDelta, endDelta int) string {
	start := s.startOffset + startDelta
	end := s.currentOffset + endDelta
	if start < 0 {
		start = 0
	}
	if end > len(s.chars) {
		end = len(s.chars)
	}
	if end < start {
		end = start
	}
	return string(s.chars[start:end])
}

func isLetter(c rune) bool {
	return unicode.IsLetter(c) || c == '_'
}

func isAlphanumeric(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_'
}

func (s *Scanner) readNumber() (token.Token, error) {
	dots := 0
	for !s.isAtEnd() && (unicode.IsDigit(s.currentChar()) || s.currentChar() == '.') {
		if s.currentChar() == '.' {
			dots++
		}
		s.nextChar()
	}

	var tt token.TokenType
	switch dots {
	case 0:
		tt = token.INT
	case 1:
		tt = token.FLOAT
	case 3:
		tt = token.IPV4
	default:
		return token.Token{}, ScanError{Kind: InvalidNumber, Line: int(s.currentLine), Column: s.currentColumn}
	}

	return s.newToken(tt, s.rawSlice(0, 0)), nil
}

func (s *Scanner) readString() (token.Token, error) {
	for !s.isAtEnd() && s.currentChar() != '"' {
		if s.currentChar() == '\n' {
			s.currentLine++
		}
		s.nextChar()
	}

	if s.isAtEnd() {
		return token.Token{}, ScanError{Kind: MissingStringDelimiter, Line: int(s.currentLine), Column: s.currentColumn}
	}
	s.nextChar() // closing quote
	return s.newToken(token.STRING, s.rawSlice(1, -1)), nil
}

// identifierType classifies the run of letters between startOffset and
// currentOffset, recognising exactly the keyword set SPEC_FULL §3 names
// (plus "do", which §4.1 treats alongside then/else as a command-starter).
func (s *Scanner) identifierType() token.TokenType {
	word := s.rawSlice(0, 0)
	if tt, ok := token.Keywords[word]; ok {
		return tt
	}
	return token.IDENTIFIER
}

func (s *Scanner) readIdentifier() (token.Token, error) {
	for !s.isAtEnd() && isAlphanumeric(s.currentChar()) {
		s.nextChar()
	}

	tt := s.identifierType()
	if tt == token.DO || tt == token.IF || tt == token.THEN || tt == token.ELSE {
		s.pushMode(Command)
	}

	return s.newToken(tt, s.rawSlice(0, 0)), nil
}

func (s *Scanner) readCommand() (token.Token, error) {
	for !s.isAtEnd() && !unicode.IsSpace(s.currentChar()) && s.currentChar() != '(' {
		s.nextChar()
	}

	word := s.rawSlice(0, 0)
	tt, isKeyword := token.Keywords[word]

	var mode Mode
	var resultType token.TokenType
	switch {
	case isKeyword:
		mode, resultType = Expression, tt
	case !s.isAtEnd() && s.currentChar() == '(':
		// a word directly followed by "(" starts a function call
		mode, resultType = Expression, token.IDENTIFIER
	default:
		mode, resultType = Argument, token.COMMAND
	}

	s.pushMode(mode)
	return s.newToken(resultType, word), nil
}

func (s *Scanner) readArgument() (token.Token, error) {
	for !s.isAtEnd() && !unicode.IsSpace(s.currentChar()) && s.currentChar() != ')' {
		s.nextChar()
	}

	word := s.rawSlice(0, 0)
	tt, isKeyword := token.Keywords[word]
	resultType := token.STRING
	if isKeyword {
		switch tt {
		case token.THEN, token.ELSE, token.DO:
			resultType = tt
		default:
			resultType = token.STRING
		}
	}

	if resultType == token.DO || resultType == token.THEN || resultType == token.ELSE {
		s.pushMode(Command)
	}

	return s.newToken(resultType, word), nil
}

func (s *Scanner) readVariable() (token.Token, error) {
	sigil := s.chars[s.currentOffset-1]
	var tt token.TokenType
	switch sigil {
	case '$':
		tt = token.ENV_VARIABLE
	case '@':
		tt = token.LOCAL_VARIABLE
	default:
		return token.Token{}, ScanError{Kind: UnknownVariableType, Line: int(s.currentLine), Column: s.currentColumn}
	}

	for !s.isAtEnd() && isLetter(s.currentChar()) {
		s.nextChar()
	}

	return s.newToken(tt, s.rawSlice(1, 0)), nil
}

// NextToken reads and returns the next token from the source, advancing the
// scanner's position. It is the one entry point the Compiler pulls from,
// one token at a time.
func (s *Scanner) NextToken() (token.Token, error) {
	s.skipWhitespace()
	s.startOffset = s.currentOffset

	if s.isAtEnd() {
		return s.newToken(token.EOF, ""), nil
	}

	c := s.nextChar()

	for {
		if c == '\n' {
			tt := token.END_OF_LINE
			if s.mode == Argument {
				tt = token.END_COMMAND
			}
			s.currentLine++
			s.currentColumn = 0
			s.pushMode(Command)
			return s.newToken(tt, "\n"), nil
		}
		if c == '#' {
			for !s.isAtEnd() && s.nextChar() != '\n' {
			}
			continue
		}

		switch s.mode {
		case Command:
			switch {
			case strings.ContainsRune("(\"@$-", c):
				s.pushMode(Expression)
			case c == '{':
				s.pushMode(Command)
				return s.newToken(token.LCUR, "{"), nil
			case c == '}':
				s.popMode()
				return s.newToken(token.RCUR, "}"), nil
			case unicode.IsDigit(c):
				s.mode = Expression
			default:
				return s.readCommand()
			}

		case Argument:
			switch {
			case c == '(':
				s.pushMode(Expression)
			case c == '"':
				return s.readString()
			case c == '|':
				s.pushMode(Expression)
			case c == '@' || c == '$':
				return s.readVariable()
			case c == ')':
				s.popMode()
				return s.newToken(token.RPA, ")"), nil
			case c == '}':
				s.popMode()
				return s.newToken(token.RCUR, "}"), nil
			default:
				return s.readArgument()
			}

		case Expression:
			switch {
			case c == '(':
				s.pushMode(Command)
				return s.newToken(token.LPA, "("), nil
			case c == ')':
				s.popMode()
				return s.newToken(token.RPA, ")"), nil
			case c == '{':
				s.pushMode(Command)
				return s.newToken(token.LCUR, "{"), nil
			case c == '}':
				s.popMode()
				return s.newToken(token.RCUR, "}"), nil
			case c == ',':
				return s.newToken(token.COMMA, ","), nil
			case c == '-':
				tt := s.tokenIfMatch('>', token.ARROW, token.MINUS)
				return s.newToken(tt, "-"), nil
			case c == '+':
				return s.newToken(token.PLUS, "+"), nil
			case c == '*':
				return s.newToken(token.STAR, "*"), nil
			case c == '/':
				return s.newToken(token.SLASH, "/"), nil
			case c == '?':
				s.pushMode(Command)
				tt := s.tokenIfMatch('=', token.QUESTION_EQUAL, token.QUESTION)
				return s.newToken(tt, "?"), nil
			case c == ':':
				s.pushMode(Command)
				return s.newToken(token.COLON, ":"), nil
			case c == '!':
				tt := s.tokenIfMatch('=', token.NOT_EQUAL, token.BANG)
				return s.newToken(tt, "!"), nil
			case c == '=':
				if s.peekMatch('=') {
					s.nextChar()
					s.pushMode(Command)
					return s.newToken(token.EQUAL_EQUAL, "=="), nil
				}
				if s.peekMatch('>') {
					s.nextChar()
					// Unlike bare "=" and "==", "=>" introduces a function
					// body, which must stay in Expression mode (SPEC_FULL
					// §4.2's Call supplement has no command-mode analogue in
					// original_source's let_var to mirror here).
					return s.newToken(token.FAT_ARROW, "=>"), nil
				}
				s.pushMode(Command)
				return s.newToken(token.ASSIGN, "="), nil
			case c == '<':
				if s.peekMatch('=') {
					s.nextChar()
					if s.peekMatch('>') {
						s.nextChar()
						return s.newToken(token.SPACESHIP, "<=>"), nil
					}
					return s.newToken(token.LESS_EQUAL, "<="), nil
				}
				return s.newToken(token.LESS, "<"), nil
			case c == '>':
				tt := s.tokenIfMatch('=', token.LARGER_EQUAL, token.LARGER)
				return s.newToken(tt, ">"), nil
			case c == '|':
				s.pushMode(Command)
				return s.newToken(token.PIPE, "|"), nil
			case c == '@' || c == '$':
				return s.readVariable()
			case c == '"':
				return s.readString()
			case unicode.IsDigit(c):
				return s.readNumber()
			case unicode.IsLetter(c):
				return s.readIdentifier()
			default:
				return token.Token{}, ScanError{Kind: UnrecognisedCharacter, Line: int(s.currentLine), Column: s.currentColumn}
			}
		}
	}
}
