package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"insh/compiler"
	"insh/runtime"
	"insh/scanner"
	"insh/token"
	"insh/value"
	"insh/vm"
)

// replCmd implements the "repl" verb (SPEC_FULL §6/§13): a single vm.VM and
// its global scope persist for the whole session, one logical line (brace-
// and operator-tail-balanced across physical lines, adapted from the
// teacher's cmd_repl_compiled.go isInputReady) is compiled into a fresh
// Chunk and run against that shared VM.
type replCmd struct {
	trace bool
}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive insh session" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive REPL session.
`
}

func (r *replCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&r.trace, "trace", false, "print one line per executed opcode to stderr")
}

func historyFilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "insh", "history")
}

func (r *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "insh"
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          fmt.Sprintf("%s >> ", cwd),
		HistoryFile:     historyFilePath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to start readline: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	machine := vm.New(runtime.NewOSHost())
	machine.SetDebug(r.trace)

	var buffer strings.Builder

	for {
		if buffer.Len() == 0 {
			rl.SetPrompt(fmt.Sprintf("%s >> ", cwd))
		} else {
			rl.SetPrompt("... ")
		}

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				buffer.Reset()
				continue
			}
			if errors.Is(err, io.EOF) {
				return subcommands.ExitSuccess
			}
			fmt.Fprintf(os.Stderr, "💥 %v\n", err)
			return subcommands.ExitFailure
		}

		if strings.TrimSpace(line) == "exit" && buffer.Len() == 0 {
			return subcommands.ExitSuccess
		}

		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)
		source := buffer.String()

		ready, scanErr := isInputReady(source)
		if scanErr != nil {
			fmt.Fprintln(os.Stderr, scanErr)
			buffer.Reset()
			continue
		}
		if !ready {
			continue
		}

		ch, err := compiler.New(source).Compile()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			buffer.Reset()
			continue
		}

		result, err := machine.Run(ctx, ch)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			buffer.Reset()
			continue
		}

		if result.Kind != value.KindNone {
			fmt.Println(result.String())
		}
		buffer.Reset()
	}
}

// isInputReady tokenizes source with the scanner directly (the Compiler has
// no exported way to peek at the token stream ahead of compiling) and
// reports whether it looks complete: braces balanced and the last
// meaningful token isn't one that always expects a following expression.
// An unterminated string is also treated as "not ready yet" rather than an
// error, since the user is typically still typing it across lines.
func isInputReady(source string) (bool, error) {
	s := scanner.New(source)

	var tokens []token.Token
	for {
		tok, err := s.NextToken()
		if err != nil {
			var scanErr scanner.ScanError
			if errors.As(err, &scanErr) && scanErr.Kind == scanner.MissingStringDelimiter {
				return false, nil
			}
			return false, err
		}
		tokens = append(tokens, tok)
		if tok.TokenType == token.EOF {
			break
		}
	}

	braceBalance := 0
	for _, tok := range tokens {
		switch tok.TokenType {
		case token.LCUR:
			braceBalance++
		case token.RCUR:
			braceBalance--
		}
	}
	if braceBalance > 0 {
		return false, nil
	}

	last := lastNonEOF(tokens)
	if last == nil {
		return true, nil
	}

	switch last.TokenType {
	case token.ASSIGN, token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PIPE,
		token.BANG, token.EQUAL_EQUAL, token.NOT_EQUAL, token.LESS, token.LESS_EQUAL,
		token.LARGER, token.LARGER_EQUAL, token.FAT_ARROW, token.ARROW, token.SPACESHIP,
		token.COMMA, token.LPA, token.LCUR,
		token.IF, token.THEN, token.ELSE, token.WHILE, token.LET, token.PIN,
		token.AND, token.OR, token.FROM, token.PARSE, token.READ, token.DO:
		return false, nil
	}

	return true, nil
}

func lastNonEOF(tokens []token.Token) *token.Token {
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].TokenType != token.EOF {
			return &tokens[i]
		}
	}
	return nil
}
