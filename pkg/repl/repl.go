// Package repl is an interactive loop over anything that executes yalp
// commands.
package repl

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/luthersystems/yalp/pkg/parser/lexer"
	"github.com/luthersystems/yalp/pkg/parser/token"
)

// BindingsCommand lists the session's variables instead of executing lisp.
const BindingsCommand = ".bindings"

// Host executes commands in a session.
type Host interface {
	Exec(ctx context.Context, cmd string) (string, error)
	ListBindings(ctx context.Context) (string, error)
}

// LineReader reads lines of input.  A *readline.Instance is a LineReader.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// RunRepl runs a readline loop over host until the input is closed.
func RunRepl(ctx context.Context, host Host, prompt string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()
	return Loop(ctx, host, rl, prompt, rl.Stdout(), rl.Stderr())
}

// Loop reads commands from lines and prints their results to stdout.
// Input with unbalanced parentheses continues on the next line.  An
// interrupt discards partial input.  Loop returns nil when lines reaches
// EOF.
func Loop(ctx context.Context, host Host, lines LineReader, prompt string, stdout, stderr io.Writer) error {
	contPrompt := strings.Repeat(" ", len(prompt)) // prompt had better be ascii...

	var buf []string
	for {
		line, err := lines.Readline()
		if err == readline.ErrInterrupt {
			buf = nil
			lines.SetPrompt(prompt)
			continue
		}
		if err == io.EOF {
			if len(buf) != 0 {
				fmt.Fprintln(stderr, "discarding incomplete input")
			}
			return nil
		}
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(buf) == 0 && strings.TrimSpace(line) == "" {
			continue
		}
		if len(buf) == 0 && strings.TrimSpace(line) == BindingsCommand {
			names, err := host.ListBindings(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, names)
			continue
		}
		buf = append(buf, line)
		text := strings.Join(buf, "\n")
		if !Complete(text) {
			lines.SetPrompt(contPrompt)
			continue
		}
		buf = nil
		lines.SetPrompt(prompt)
		result, err := host.Exec(ctx, text)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, result)
	}
}

// Complete returns false if text has more open parentheses than closing
// ones.  Text that fails to scan is complete so that its error can be
// reported.
func Complete(text string) bool {
	lex := lexer.New(token.NewScanner("", text))
	depth := 0
	for {
		tok := lex.NextToken()
		switch tok.Type {
		case token.PAREN_L:
			depth++
		case token.PAREN_R:
			depth--
		case token.EOF:
			return depth <= 0
		case token.ERROR, token.INVALID:
			return true
		}
	}
}
