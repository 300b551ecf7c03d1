/*
Cilantro-repl is a line-editing front end over the lex -> parse -> trim
pipeline: each line typed is lexed, parsed as a standalone program, and its
concrete tree printed, the same trace output cilantroc prints for a whole
file but one line at a time.

It uses github.com/chzyer/readline for history and editing, exactly as
TunaQuest's game console does.
*/
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/shine00chang/cilantro/internal/ccerrors"
	"github.com/shine00chang/cilantro/internal/compiler/grammar"
	"github.com/shine00chang/cilantro/internal/compiler/lex"
	"github.com/shine00chang/cilantro/internal/compiler/parse"
	"github.com/shine00chang/cilantro/internal/compiler/scope"
	"github.com/shine00chang/cilantro/internal/compiler/semantic"
	"github.com/shine00chang/cilantro/internal/compiler/tree"
	"github.com/shine00chang/cilantro/internal/compiler/trim"
)

const prompt = "cilantro> "

func main() {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFile(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: create readline config: %s\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	g := grammar.Cilantro()
	table, err := parse.BuildTable(g)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: build parse table: %s\n", err)
		os.Exit(1)
	}

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == io.EOF || err == readline.ErrInterrupt {
				return
			}
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		evalLine(g, table, line)
	}
}

// evalLine runs one line through lex -> parse -> trim -> scope, printing the
// concrete tree and, for a line that resolves cleanly, the extracted
// semantic form. Scope resolution and extraction run against the line alone,
// so identifiers that would only be valid with earlier REPL input already in
// scope are reported as undeclared; this mirrors spec.md's per-unit pipeline
// rather than modeling a persistent REPL environment.
func evalLine(g *grammar.Grammar, table parse.Table, line string) {
	toks, err := lex.Lex(line)
	if err != nil {
		fmt.Println(render(err, line))
		return
	}

	roots, err := parse.Parse(g, table, toks, line)
	if err != nil {
		fmt.Println(render(err, line))
		return
	}

	for _, r := range roots {
		elem := trim.Trim(r)
		fmt.Println(elem.Node)

		if err := scope.Resolve([]*tree.Node{elem.Node}, nil); err != nil {
			fmt.Println(render(err, line))
			continue
		}
		sn, err := semantic.Extract(elem.Node)
		if err != nil {
			fmt.Println(render(err, line))
			continue
		}
		fmt.Println(sn)
	}
}

func render(err error, src string) string {
	switch e := err.(type) {
	case *ccerrors.LexError:
		return e.Render(src)
	case *ccerrors.SyntaxError:
		return e.Render(src)
	case *ccerrors.ScopeError:
		return e.Render(src)
	case *ccerrors.TypeError:
		return e.Render(src)
	default:
		return err.Error()
	}
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.cilantro_history"
}
