package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"titan/internal/clix"
	"titan/scanner"
	"titan/token"
	"titan/vm"
)

// replCmd implements `titan repl` and the bare `titan` invocation: an
// interactive read-eval-print loop that keeps one VM alive across
// lines, so global variables persist the way cmd_repl_compiled.go's
// cRepl kept one vm.New() for the whole session.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive Titan session" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive read-eval-print loop.
`
}
func (*replCmd) SetFlags(f *flag.FlagSet) {}

func (r *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.New("> ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "💥", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	runRepl(rl, os.Stdout)
	return ExitOK
}

// runRepl drives the loop itself, split out from Execute so it can be
// exercised with an in-memory readline instance in tests.
func runRepl(rl *readline.Instance, out io.Writer) {
	m := vm.New()
	m.Stdout = out
	var buf strings.Builder

	for {
		if buf.Len() == 0 {
			rl.SetPrompt("> ")
		} else {
			rl.SetPrompt("... ")
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return
			}
			continue
		}
		if err == io.EOF {
			return
		}

		if buf.Len() == 0 && strings.TrimSpace(line) == "exit" {
			return
		}

		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(line)

		if !bracesBalanced(buf.String()) {
			continue
		}

		source := buf.String()
		buf.Reset()

		_, runErr := clix.CompileAndRun(m, source)
		if runErr != nil {
			fmt.Fprintln(os.Stderr, runErr.Error())
		}
	}
}

// bracesBalanced reports whether source has no unmatched `{`, the same
// check cmd_repl_compiled.go's isInputReady used to decide whether the
// REPL should keep buffering a multi-line block.
func bracesBalanced(source string) bool {
	s := scanner.New(source)
	depth := 0
	for {
		tok := s.NextToken()
		if tok.TokenType == token.EOF {
			return depth <= 0
		}
		switch tok.TokenType {
		case token.LCUR:
			depth++
		case token.RCUR:
			depth--
		}
	}
}
