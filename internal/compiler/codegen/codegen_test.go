package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shine00chang/cilantro/internal/compiler/semantic"
	"github.com/shine00chang/cilantro/internal/compiler/token"
)

// flat collapses whitespace runs to single spaces, and drops the space left
// before a closing paren that the emitter put on a line of its own, so
// assertions aren't coupled to this package's exact line-wrapping choices.
func flat(s string) string {
	return strings.ReplaceAll(strings.Join(strings.Fields(s), " "), " )", ")")
}

func tokInt(v int64) token.Token  { return token.Token{Kind: token.Int, IntVal: v} }
func tokIdent(s string) token.Token { return token.Token{Kind: token.Ident, Ident: s} }

func Test_Generate_declarationWithExpr(t *testing.T) {
	// let a@0 = 1 + 2
	decl := &semantic.Node{
		Kind: semantic.KDeclaration,
		Name: "a@0",
		Initializer: semantic.OfNode(&semantic.Node{
			Kind: semantic.KExpr,
			Op:   "+",
			Left: semantic.OfToken(tokInt(1)),
			Right: semantic.OfToken(tokInt(2)),
		}),
	}

	out, err := Generate([]*semantic.Node{decl}, 40, "")
	require.NoError(t, err)

	assert.Contains(t, flat(out), "(local $a@0 i64)")
	assert.Contains(t, flat(out), "(local.set $a@0 (i64.add (i64.const 1) (i64.const 2)))")
	assert.Contains(t, out, `(export "_start" (func $_main))`)
	assert.Contains(t, out, `(import "wasi_unstable" "fd_write"`)
}

func Test_Generate_functionWithParamsAndReturn(t *testing.T) {
	// func add(x@1: i64, y@1: i64) -> i64 { return x@1 + y@1 }
	fn := &semantic.Node{
		Kind:       semantic.KFunction,
		Name:       "add@0",
		ReturnType: "i64",
		Params: &semantic.Node{
			Kind: semantic.KParams,
			ParamItems: []semantic.Param{
				{Name: "x@1", TypeName: "i64"},
				{Name: "y@1", TypeName: "i64"},
			},
		},
		Body: &semantic.Node{
			Kind: semantic.KBlock,
			Statements: []*semantic.Node{
				{
					Kind: semantic.KReturn,
					Value: semantic.OfNode(&semantic.Node{
						Kind:  semantic.KExpr,
						Op:    "+",
						Left:  semantic.OfToken(tokIdent("x@1")),
						Right: semantic.OfToken(tokIdent("y@1")),
					}),
				},
			},
		},
	}

	call := &semantic.Node{
		Kind: semantic.KInvoke,
		Name: "add@0",
		Type: semantic.TInt,
		Arguments: []semantic.Elem{
			semantic.OfToken(tokInt(1)),
			semantic.OfToken(tokInt(2)),
		},
	}

	out, err := Generate([]*semantic.Node{fn, call}, 40, "")
	require.NoError(t, err)

	flat := flat(out)
	assert.Contains(t, flat, "(func $add (param $x@1 i64) (param $y@1 i64) (result i64)")
	assert.Contains(t, flat, "(return (i64.add (local.get $x@1) (local.get $y@1)))")
	assert.Contains(t, flat, "(call $add (i64.const 1) (i64.const 2))")
	// a call used as a statement whose result is unused is dropped
	assert.Contains(t, flat, "(drop (call $add")
}

func Test_Generate_ifWithBooleanAnd(t *testing.T) {
	// if true && false { let a@1 = 1 }
	ifNode := &semantic.Node{
		Kind: semantic.KIf,
		Condition: semantic.OfNode(&semantic.Node{
			Kind:  semantic.KExpr,
			Op:    "&&",
			Left:  semantic.OfToken(token.Token{Kind: token.Bool, BoolVal: true}),
			Right: semantic.OfToken(token.Token{Kind: token.Bool, BoolVal: false}),
		}),
		Body: &semantic.Node{
			Kind: semantic.KBlock,
			Statements: []*semantic.Node{
				{
					Kind: semantic.KDeclaration,
					Name: "a@1",
					Initializer: semantic.OfToken(tokInt(1)),
				},
			},
		},
	}

	out, err := Generate([]*semantic.Node{ifNode}, 40, "")
	require.NoError(t, err)

	flat := flat(out)
	assert.Contains(t, flat, "(if (i32.wrap_i64 (i64.and (i64.const 1) (i64.const 0)))")
	assert.Contains(t, flat, "(local.set $a@1 (i64.const 1))")
}

func Test_Generate_stringLiteralIsInternedIntoDataSegment(t *testing.T) {
	decl := &semantic.Node{
		Kind:        semantic.KDeclaration,
		Name:        "s@0",
		Initializer: semantic.OfToken(token.Token{Kind: token.Str, StrVal: "hi"}),
	}

	out, err := Generate([]*semantic.Node{decl}, 40, "")
	require.NoError(t, err)

	assert.Contains(t, out, `(data (i32.const 40) "hi")`)
	assert.Contains(t, flat(out), "(i64.extend_i32_u (i32.const 2))")
}

func Test_Generate_libraryFuncsPastedVerbatim(t *testing.T) {
	lib := ";;@signature $print : void (i64)\n" +
		"(func $print (param $x i64)\n" +
		"  nop)\n"

	out, err := Generate(nil, 40, lib)
	require.NoError(t, err)

	assert.Contains(t, out, "(func $print (param $x i64)")
	assert.NotContains(t, out, ";;@signature")
}
