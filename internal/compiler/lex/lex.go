// Package lex tokenizes Cilantro source text. It is deliberately separate
// from the table-driven parser: spec.md §2 calls the lexer an "external
// collaborator" whose contract, not implementation, is fixed by the core
// compiler. The recognizer style — a sequence of alternatives tried in
// order, longest-match-first for operators — follows
// original_source/src/cilantro/lexer.rs's combinator chain, restated as a
// plain hand-rolled scanner since Go's standard library has no parser
// combinator idiom equivalent to nom's. Identifiers accept any Unicode
// letter, not just ASCII, and are folded to NFC with
// golang.org/x/text/unicode/norm before being handed to later passes.
package lex

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/shine00chang/cilantro/internal/ccerrors"
	"github.com/shine00chang/cilantro/internal/compiler/token"
)

var keywords = map[string]token.Kind{
	"let":    token.KwLet,
	"func":   token.KwFunc,
	"return": token.KwReturn,
	"if":     token.KwIf,
}

var typeNames = map[string]bool{
	"i64":  true,
	"bool": true,
	"str":  true,
	"void": true,
}

// Lex tokenizes src in full, per spec.md §6's source language surface, and
// always terminates the returned slice with a token.EOF sentinel. It returns
// the first *ccerrors.LexError encountered, since spec.md §7 specifies no
// recovery past the first failure.
func Lex(src string) ([]token.Token, error) {
	var toks []token.Token
	i := 0
	n := len(src)

	for i < n {
		c := src[i]

		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
			continue

		case c == '/' && i+1 < n && src[i+1] == '/':
			for i < n && src[i] != '\n' {
				i++
			}
			continue

		case c >= '0' && c <= '9':
			start := i
			var digits strings.Builder
			for i < n && (isDigit(src[i]) || src[i] == '_') {
				if src[i] != '_' {
					digits.WriteByte(src[i])
				}
				i++
			}
			val, err := parseInt(digits.String())
			if err != nil {
				return nil, ccerrors.NewLexError(start, "malformed integer literal")
			}
			toks = append(toks, token.Token{Start: start, End: i, Kind: token.Int, IntVal: val})

		case c == '"':
			start := i
			i++
			var sb strings.Builder
			closed := false
			for i < n {
				if src[i] == '"' {
					closed = true
					i++
					break
				}
				sb.WriteByte(src[i])
				i++
			}
			if !closed {
				return nil, ccerrors.NewLexError(start, "unterminated string literal")
			}
			toks = append(toks, token.Token{Start: start, End: i, Kind: token.Str, StrVal: sb.String()})

		case isIdentStart(src, i):
			start := i
			i += runeWidth(src, i)
			for i < n && isIdentCont(src, i) {
				i += runeWidth(src, i)
			}
			// Two byte-distinct spellings of the same identifier (e.g. a
			// combining-mark accent vs. its precomposed form) should bind
			// to the same symbol, so source is folded to NFC before the
			// scope resolver ever sees it.
			word := norm.NFC.String(src[start:i])
			kw, isKeyword := keywords[word]
			switch {
			case word == "true" || word == "false":
				toks = append(toks, token.Token{Start: start, End: i, Kind: token.Bool, BoolVal: word == "true"})
			case isKeyword:
				toks = append(toks, token.Token{Start: start, End: i, Kind: kw})
			case typeNames[word]:
				toks = append(toks, token.Token{Start: start, End: i, Kind: token.TypeLit, TypeName: word})
			default:
				toks = append(toks, token.Token{Start: start, End: i, Kind: token.Ident, Ident: word})
			}

		case c == '(':
			toks = append(toks, token.Token{Start: i, End: i + 1, Kind: token.ParenL})
			i++
		case c == ')':
			toks = append(toks, token.Token{Start: i, End: i + 1, Kind: token.ParenR})
			i++
		case c == '{':
			toks = append(toks, token.Token{Start: i, End: i + 1, Kind: token.CurlyL})
			i++
		case c == '}':
			toks = append(toks, token.Token{Start: i, End: i + 1, Kind: token.CurlyR})
			i++
		case c == ',':
			toks = append(toks, token.Token{Start: i, End: i + 1, Kind: token.Comma})
			i++
		case c == ':':
			toks = append(toks, token.Token{Start: i, End: i + 1, Kind: token.Colon})
			i++

		case c == '-' && i+1 < n && src[i+1] == '>':
			toks = append(toks, token.Token{Start: i, End: i + 2, Kind: token.Arrow})
			i += 2
		case c == '-':
			toks = append(toks, token.Token{Start: i, End: i + 1, Kind: token.Op3, Op: "-"})
			i++
		case c == '+':
			toks = append(toks, token.Token{Start: i, End: i + 1, Kind: token.Op3, Op: "+"})
			i++
		case c == '*':
			toks = append(toks, token.Token{Start: i, End: i + 1, Kind: token.Op4, Op: "*"})
			i++
		case c == '/':
			toks = append(toks, token.Token{Start: i, End: i + 1, Kind: token.Op4, Op: "/"})
			i++

		case c == '=' && i+1 < n && src[i+1] == '=':
			toks = append(toks, token.Token{Start: i, End: i + 2, Kind: token.Op1, Op: "=="})
			i += 2
		case c == '!' && i+1 < n && src[i+1] == '=':
			toks = append(toks, token.Token{Start: i, End: i + 2, Kind: token.Op1, Op: "!="})
			i += 2
		case c == '=':
			toks = append(toks, token.Token{Start: i, End: i + 1, Kind: token.Assign})
			i++
		case c == '!':
			toks = append(toks, token.Token{Start: i, End: i + 1, Kind: token.Unary, Op: "!"})
			i++

		case c == '&' && i+1 < n && src[i+1] == '&':
			toks = append(toks, token.Token{Start: i, End: i + 2, Kind: token.Op2, Op: "&&"})
			i += 2
		case c == '|' && i+1 < n && src[i+1] == '|':
			toks = append(toks, token.Token{Start: i, End: i + 2, Kind: token.Op2, Op: "||"})
			i += 2

		default:
			return nil, ccerrors.NewLexError(i, "unrecognised character")
		}
	}

	toks = append(toks, token.Token{Start: n, End: n, Kind: token.EOF})
	return toks, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(src string, i int) bool {
	r, _ := utf8.DecodeRuneInString(src[i:])
	return r == '_' || unicode.IsLetter(r)
}

func isIdentCont(src string, i int) bool {
	r, _ := utf8.DecodeRuneInString(src[i:])
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// runeWidth returns the byte length of the rune starting at src[i], for
// advancing the scan cursor past identifier characters outside ASCII.
func runeWidth(src string, i int) int {
	_, size := utf8.DecodeRuneInString(src[i:])
	return size
}

func parseInt(s string) (int64, error) {
	var v int64
	for i := 0; i < len(s); i++ {
		v = v*10 + int64(s[i]-'0')
	}
	return v, nil
}
