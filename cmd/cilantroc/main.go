/*
Cilantroc compiles a single Cilantro source file to WebAssembly text format.

Usage:

	cilantroc FILE

There are no flags: the single positional argument is the path to the
source file to compile. Diagnostics are written to standard error; trace
output (the token stream, the concrete parse tree, and the checked semantic
tree) is written to standard output. The compiled module is written to
<out_dir>/prog.wat, where out_dir comes from cilantro.toml if present in the
working directory, defaulting to "out".

Exit codes:

	ExitSuccess      - compiled successfully
	ExitCompileError - lex/parse/scope/type error in the source
	ExitIOError      - could not read the source, library, or write the output
*/
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shine00chang/cilantro/internal/ccerrors"
	"github.com/shine00chang/cilantro/internal/compiler/check"
	"github.com/shine00chang/cilantro/internal/compiler/codegen"
	"github.com/shine00chang/cilantro/internal/compiler/grammar"
	"github.com/shine00chang/cilantro/internal/compiler/lex"
	"github.com/shine00chang/cilantro/internal/compiler/parse"
	"github.com/shine00chang/cilantro/internal/compiler/scope"
	"github.com/shine00chang/cilantro/internal/compiler/semantic"
	"github.com/shine00chang/cilantro/internal/compiler/stdlib"
	"github.com/shine00chang/cilantro/internal/compiler/tree"
	"github.com/shine00chang/cilantro/internal/compiler/trim"
	"github.com/shine00chang/cilantro/internal/config"
	"github.com/shine00chang/cilantro/internal/tablecache"
)

const (
	// ExitSuccess indicates a successful compilation.
	ExitSuccess = iota

	// ExitCompileError indicates a lex/syntax/scope/type error in the
	// source being compiled.
	ExitCompileError

	// ExitIOError indicates a failure to read an input or write the
	// output, unrelated to the source's validity.
	ExitIOError
)

var returnCode = ExitSuccess

func main() {
	defer func() { os.Exit(returnCode) }()

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: cilantroc FILE")
		returnCode = ExitIOError
		return
	}
	srcPath := os.Args[1]

	cfg, err := config.Load(config.DefaultFileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		returnCode = ExitIOError
		return
	}

	srcBytes, err := os.ReadFile(srcPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: reading %s: %s\n", srcPath, err)
		returnCode = ExitIOError
		return
	}
	src := string(srcBytes)

	libBytes, err := os.ReadFile(cfg.Library)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: reading library %s: %s\n", cfg.Library, err)
		returnCode = ExitIOError
		return
	}
	libSrc := string(libBytes)

	lib, err := stdlib.Load(libSrc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: invalid library %s: %s\n", cfg.Library, err)
		returnCode = ExitIOError
		return
	}

	reserved := lib.ReservedBytes
	if cfg.ReserveBytes > 0 {
		reserved = cfg.ReserveBytes
	}

	wat, compileErr := compile(src, lib, reserved, libSrc)
	if compileErr != nil {
		fmt.Fprintln(os.Stderr, render(compileErr, src))
		returnCode = ExitCompileError
		return
	}

	if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: creating %s: %s\n", cfg.OutDir, err)
		returnCode = ExitIOError
		return
	}
	outPath := filepath.Join(cfg.OutDir, "prog.wat")
	if err := os.WriteFile(outPath, []byte(wat), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: writing %s: %s\n", outPath, err)
		returnCode = ExitIOError
		return
	}

	fmt.Printf("compiled %s -> %s\n", srcPath, outPath)
}

// compile runs the full lex -> parse -> trim -> scope -> extract -> check ->
// codegen pipeline, printing trace output to stdout along the way per
// spec.md §6.
func compile(src string, lib *stdlib.Library, reserved int, librarySource string) (string, error) {
	toks, err := lex.Lex(src)
	if err != nil {
		return "", err
	}

	fmt.Println("-- tokens --")
	for _, t := range toks {
		fmt.Println(t)
	}

	g := grammar.Cilantro()

	const cachePath = ".cilantro-table.rezi"
	table, ok, err := tablecache.Load(cachePath)
	if err != nil || !ok {
		table, err = parse.BuildTable(g)
		if err != nil {
			return "", err
		}
		_ = tablecache.Save(cachePath, table)
	}

	roots, err := parse.Parse(g, table, toks, src)
	if err != nil {
		return "", err
	}

	fmt.Println("-- concrete tree --")
	trimmed := make([]*tree.Node, 0, len(roots))
	for _, r := range roots {
		elem := trim.Trim(r)
		fmt.Println(elem.Node)
		trimmed = append(trimmed, elem.Node)
	}

	if err := scope.Resolve(trimmed, lib.Names()); err != nil {
		return "", err
	}

	semNodes := make([]*semantic.Node, 0, len(trimmed))
	for _, n := range trimmed {
		sn, err := semantic.Extract(n)
		if err != nil {
			return "", err
		}
		semNodes = append(semNodes, sn)
	}

	checkTable := check.NewTable()
	if err := lib.PopulateTypeTable(checkTable); err != nil {
		return "", err
	}
	if err := check.Check(semNodes, checkTable); err != nil {
		return "", err
	}

	fmt.Println("-- semantic tree --")
	for _, sn := range semNodes {
		fmt.Println(sn)
	}

	return codegen.Generate(semNodes, reserved, librarySource)
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
