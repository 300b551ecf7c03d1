// Package codegen is the WAT emitter: it walks a checked semantic tree and
// produces a textual WebAssembly module, spec.md §6's "Outputs" section.
//
// The indentation bookkeeping (track a running paren-depth, indent each
// emitted line by it, deepen/shallow around the line depending on whether it
// opens more parens than it closes) is grounded on
// original_source/src/cilantro/codegen/gen.rs's Func/Glob push helpers. That
// file only ever emitted Declaration/Invoke/Args/Expr into one `$_main`
// function; this package generalizes it to every statement spec.md §6 names
// (If, Return, nested Block, user Function definitions with parameters) and
// adds the string-literal data-segment layout and library-function
// verbatim inclusion the distillation left unimplemented.
//
// Runtime value representation: every Cilantro value (Int, Bool, Str) is
// carried on the Wasm operand stack and in locals/params/results as a single
// i64, per spec.md §6's description of the string encoding as a 64-bit
// value. This keeps one representation for every type instead of switching
// Wasm value types per Cilantro type: Int literals are natively i64; Bool
// values are the i64 0 or 1 a comparison produces (promoted with
// i64.extend_i32_u, since Wasm's compare instructions always yield i32); Str
// values are `len << 32 | ptr` built the same way. The one place Wasm itself
// demands i32 — the `if` instruction's condition operand — wraps the i64
// value back down with i32.wrap_i64 at the point of use.
package codegen

import (
	"fmt"
	"strings"

	"github.com/shine00chang/cilantro/internal/compiler/semantic"
	"github.com/shine00chang/cilantro/internal/compiler/token"
)

// emitter is an indentation-tracking line writer, generalizing gen.rs's
// Func::push: a line that opens more parens than it closes deepens
// indentation for the lines after it; a line that closes more than it opens
// shallows indentation for itself first.
type emitter struct {
	sb    strings.Builder
	depth int
}

func (e *emitter) line(format string, args ...any) {
	s := fmt.Sprintf(format, args...)
	delta := parenDelta(s)
	if delta < 0 {
		e.depth += delta
	}
	if e.depth < 0 {
		e.depth = 0
	}
	e.sb.WriteString(strings.Repeat("  ", e.depth))
	e.sb.WriteString(s)
	e.sb.WriteByte('\n')
	if delta > 0 {
		e.depth += delta
	}
}

func parenDelta(s string) int {
	d := 0
	for _, c := range s {
		switch c {
		case '(':
			d++
		case ')':
			d--
		}
	}
	return d
}

// funcBuilder accumulates one Wasm function's signature, its prefix block of
// local declarations, and its body, mirroring gen.rs's Func{sig, p, v}.
type funcBuilder struct {
	sig           string
	params        []string
	result        string
	locals        []string
	declaredLocal map[string]bool
	body          emitter
}

func newFuncBuilder(name string) *funcBuilder {
	return &funcBuilder{sig: name, declaredLocal: map[string]bool{}, body: emitter{depth: 2}}
}

// declareLocal adds a `(local $name i64)` to the function's prefix the first
// time name is seen; a name already declared is left alone, since sibling
// blocks that reuse the same scope level (and so the same annotated name)
// share one storage slot rather than conflicting — their lifetimes never
// overlap.
func (f *funcBuilder) declareLocal(name string) {
	if f.declaredLocal[name] {
		return
	}
	f.declaredLocal[name] = true
	f.locals = append(f.locals, fmt.Sprintf("(local $%s i64)", name))
}

func (f *funcBuilder) addParam(name string) {
	f.params = append(f.params, fmt.Sprintf("(param $%s i64)", name))
}

func (f *funcBuilder) render() string {
	var sb strings.Builder
	sb.WriteString("  (func $")
	sb.WriteString(f.sig)
	for _, p := range f.params {
		sb.WriteString(" ")
		sb.WriteString(p)
	}
	if f.result != "" {
		sb.WriteString(" ")
		sb.WriteString(f.result)
	}
	sb.WriteString("\n")
	for _, l := range f.locals {
		sb.WriteString("    ")
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	sb.WriteString(f.body.sb.String())
	sb.WriteString("  )\n")
	return sb.String()
}

// strings pool: string literals are interned by value and placed in linear
// memory immediately after the library's reserved prelude.
type stringPool struct {
	reserved   int
	nextOffset int
	offsets    map[string]int
	order      []string
}

func newStringPool(reserved int) *stringPool {
	return &stringPool{reserved: reserved, nextOffset: reserved, offsets: map[string]int{}}
}

func (p *stringPool) intern(s string) int {
	if off, ok := p.offsets[s]; ok {
		return off
	}
	off := p.nextOffset
	p.offsets[s] = off
	p.order = append(p.order, s)
	p.nextOffset += len(s)
	return off
}

// gen holds state threaded through a single module's codegen.
type gen struct {
	pool *stringPool
}

// funcIdent strips the scope-level suffix a function's own name always
// carries ("name@0", since C6 can only declare a function at global scope)
// — spec.md §6's worked example S4 calls functions by their bare name
// (`$add`), unlike variable locals which keep their level annotation to stay
// distinct across sibling scopes.
func funcIdent(name string) string {
	return strings.TrimSuffix(name, "@0")
}

// Generate renders a full WAT module from a checked top-level node list, the
// library's reserved-byte count (C9's `;;@reserve`, or
// stdlib.DefaultReservedBytes), and the library's raw WAT source (its
// function bodies, pasted in verbatim after stripping the C9 annotation
// comments).
func Generate(nodes []*semantic.Node, reservedBytes int, librarySource string) (string, error) {
	g := &gen{pool: newStringPool(reservedBytes)}

	main := newFuncBuilder("_main")
	var userFuncs []string

	for _, n := range nodes {
		if n.Kind == semantic.KFunction {
			rendered, err := g.genFunction(n)
			if err != nil {
				return "", err
			}
			userFuncs = append(userFuncs, rendered)
			continue
		}
		if err := g.genStatement(n, main); err != nil {
			return "", err
		}
	}

	var out strings.Builder
	out.WriteString("(module\n")
	out.WriteString(`  (import "wasi_unstable" "fd_write" (func $fd_write (param i32 i32 i32 i32) (result i32)))` + "\n")
	// One 64 KiB page at least, and enough pages to hold the reserved
	// prelude plus every interned string literal.
	pages := (g.pool.nextOffset + 65535) / 65536
	if pages < 1 {
		pages = 1
	}
	out.WriteString(fmt.Sprintf("  (memory %d)\n", pages))

	for _, lit := range g.pool.order {
		out.WriteString(fmt.Sprintf("  (data (i32.const %d) %q)\n", g.pool.offsets[lit], lit))
	}

	if lib := libraryFuncsWAT(librarySource); lib != "" {
		out.WriteString(lib)
		if !strings.HasSuffix(lib, "\n") {
			out.WriteString("\n")
		}
	}

	for _, f := range userFuncs {
		out.WriteString(f)
	}

	out.WriteString(main.render())
	out.WriteString(`  (export "_start" (func $_main))` + "\n")
	out.WriteString(")")

	return out.String(), nil
}

// libraryFuncsWAT strips the C9 annotation comment lines from a library
// source file, leaving the actual `(func ...)` definitions (and any other
// top-level forms the library declares) to be pasted verbatim into the
// output module.
func libraryFuncsWAT(src string) string {
	var kept []string
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, ";;@signature") || strings.HasPrefix(trimmed, ";;@reserve") {
			continue
		}
		if trimmed == "" {
			continue
		}
		kept = append(kept, line)
	}
	if len(kept) == 0 {
		return ""
	}
	return strings.Join(kept, "\n") + "\n"
}

func (g *gen) genFunction(n *semantic.Node) (string, error) {
	f := newFuncBuilder(funcIdent(n.Name))

	if n.Params != nil {
		for _, p := range n.Params.ParamItems {
			f.addParam(p.Name)
		}
	}
	if n.ReturnType != "void" {
		f.result = "(result i64)"
	}

	if err := g.collectLocals(n.Body, f); err != nil {
		return "", err
	}
	for _, stmt := range n.Body.Statements {
		if err := g.genStatement(stmt, f); err != nil {
			return "", err
		}
	}

	return f.render(), nil
}

// collectLocals walks a function body ahead of codegen to pre-declare every
// local a Declaration introduces anywhere beneath it (including inside
// nested If bodies), since Wasm requires all of a function's locals listed
// once up front rather than interleaved with its instructions.
func (g *gen) collectLocals(n *semantic.Node, f *funcBuilder) error {
	switch n.Kind {
	case semantic.KBlock:
		for _, stmt := range n.Statements {
			if err := g.collectLocals(stmt, f); err != nil {
				return err
			}
		}
	case semantic.KDeclaration:
		f.declareLocal(n.Name)
	case semantic.KIf:
		return g.collectLocals(n.Body, f)
	case semantic.KReturn, semantic.KInvoke, semantic.KExpr, semantic.KUExpr:
		// no locals of their own
	default:
		return fmt.Errorf("internal error: codegen: collectLocals: unexpected node kind %s", n.Kind)
	}
	return nil
}

// genStatement emits one top-level-or-nested statement into f's body.
func (g *gen) genStatement(n *semantic.Node, f *funcBuilder) error {
	switch n.Kind {
	case semantic.KDeclaration:
		return g.genDeclaration(n, f)
	case semantic.KIf:
		return g.genIf(n, f)
	case semantic.KReturn:
		return g.genReturn(n, f)
	case semantic.KInvoke:
		return g.genInvokeStatement(n, f)
	case semantic.KBlock:
		for _, stmt := range n.Statements {
			if err := g.genStatement(stmt, f); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("internal error: codegen: genStatement: unexpected node kind %s", n.Kind)
	}
}

func (g *gen) genDeclaration(n *semantic.Node, f *funcBuilder) error {
	f.declareLocal(n.Name)
	f.body.line("(local.set $%s", n.Name)
	if err := g.genElem(n.Initializer, f); err != nil {
		return err
	}
	f.body.line(")")
	return nil
}

func (g *gen) genIf(n *semantic.Node, f *funcBuilder) error {
	f.body.line("(if")
	f.body.line("(i32.wrap_i64")
	if err := g.genElem(n.Condition, f); err != nil {
		return err
	}
	f.body.line(")")
	f.body.line("(then")
	if err := g.genStatement(n.Body, f); err != nil {
		return err
	}
	f.body.line(")")
	f.body.line(")")
	return nil
}

func (g *gen) genReturn(n *semantic.Node, f *funcBuilder) error {
	if n.Value.Type == semantic.TVoid {
		// A void-typed expression (e.g. invoking a void function) leaves
		// nothing on the stack to return; emit it as a bare statement.
		return g.genVoidElemStatement(n.Value, f)
	}
	f.body.line("(return")
	if err := g.genElem(n.Value, f); err != nil {
		return err
	}
	f.body.line(")")
	return nil
}

// genInvokeStatement emits a call made as a statement (its result, if any,
// is discarded rather than fed into an enclosing expression).
func (g *gen) genInvokeStatement(n *semantic.Node, f *funcBuilder) error {
	if n.Type == semantic.TVoid {
		return g.genInvoke(n, f)
	}
	f.body.line("(drop")
	if err := g.genInvoke(n, f); err != nil {
		return err
	}
	f.body.line(")")
	return nil
}

// genVoidElemStatement emits e for its side effect only, dropping any
// result it is statically known not to produce.
func (g *gen) genVoidElemStatement(e semantic.Elem, f *funcBuilder) error {
	if e.IsToken {
		return nil
	}
	return g.genStatement(e.Node, f)
}

func (g *gen) genElem(e semantic.Elem, f *funcBuilder) error {
	if e.IsToken {
		return g.genToken(e.Token, f)
	}
	switch e.Node.Kind {
	case semantic.KInvoke:
		return g.genInvoke(e.Node, f)
	case semantic.KExpr:
		return g.genExpr(e.Node, f)
	case semantic.KUExpr:
		return g.genUExpr(e.Node, f)
	default:
		return fmt.Errorf("internal error: codegen: genElem: unexpected node kind %s in expression position", e.Node.Kind)
	}
}

func (g *gen) genToken(t token.Token, f *funcBuilder) error {
	switch t.Kind {
	case token.Int:
		f.body.line("(i64.const %d)", t.IntVal)
	case token.Bool:
		v := 0
		if t.BoolVal {
			v = 1
		}
		f.body.line("(i64.const %d)", v)
	case token.Str:
		off := g.pool.intern(t.StrVal)
		f.body.line("(i64.add (i64.shl (i64.extend_i32_u (i32.const %d)) (i64.const 32)) (i64.extend_i32_u (i32.const %d)))",
			len(t.StrVal), off)
	case token.Ident:
		f.body.line("(local.get $%s)", t.Ident)
	default:
		return fmt.Errorf("internal error: codegen: genToken: unexpected leaf token kind %s", t.Kind)
	}
	return nil
}

func (g *gen) genInvoke(n *semantic.Node, f *funcBuilder) error {
	f.body.line("(call $%s", funcIdent(n.Name))
	for _, arg := range n.Arguments {
		if err := g.genElem(arg, f); err != nil {
			return err
		}
	}
	f.body.line(")")
	return nil
}

var exprOps = map[string]string{
	"==": "(i64.extend_i32_u (i64.eq",
	"!=": "(i64.extend_i32_u (i64.ne",
	"&&": "(i64.and",
	"||": "(i64.or",
	"+":  "(i64.add",
	"-":  "(i64.sub",
	"*":  "(i64.mul",
	"/":  "(i64.div_s",
}

func (g *gen) genExpr(n *semantic.Node, f *funcBuilder) error {
	op, ok := exprOps[n.Op]
	if !ok {
		return fmt.Errorf("internal error: codegen: genExpr: unknown binary operator %q", n.Op)
	}
	f.body.line(op)
	if err := g.genElem(n.Left, f); err != nil {
		return err
	}
	if err := g.genElem(n.Right, f); err != nil {
		return err
	}
	if n.Op == "==" || n.Op == "!=" {
		f.body.line("))")
	} else {
		f.body.line(")")
	}
	return nil
}

func (g *gen) genUExpr(n *semantic.Node, f *funcBuilder) error {
	if n.Op != "!" {
		return fmt.Errorf("internal error: codegen: genUExpr: unknown unary operator %q", n.Op)
	}
	f.body.line("(i64.xor (i64.const 1)")
	if err := g.genElem(n.Operand, f); err != nil {
		return err
	}
	f.body.line(")")
	return nil
}
