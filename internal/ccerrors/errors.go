// Package ccerrors holds the structured error types surfaced by each pass of
// the Cilantro compiler (spec.md §7): LexError, SyntaxError, ScopeError, and
// TypeError. Each carries enough structured context (byte offset, optional
// expected/found descriptions) to be rendered against the original source.
//
// This mirrors github.com/dekarrin/tunaq/internal/tqerrors's habit of giving
// every error kind both a machine Error() string and a richer rendering
// method, and tables/windows are drawn with github.com/dekarrin/rosed, the
// same library the ictiobus parser-generator package uses to print its own
// state tables and conflict diagnoses.
package ccerrors

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rosed"
)

// windowRadius is how many bytes of context are shown on either side of an
// error offset, per spec.md §4.4.
const windowRadius = 20

// sourceWindow extracts a ±windowRadius-byte slice of src around offset,
// escapes control characters so the window renders on one line, and returns
// the escaped window along with a caret line underlining the original
// offset's position within it.
func sourceWindow(src string, offset int) (window string, caret string) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(src) {
		offset = len(src)
	}

	start := offset - windowRadius
	if start < 0 {
		start = 0
	}
	end := offset + windowRadius
	if end > len(src) {
		end = len(src)
	}

	raw := src[start:end]
	caretPos := offset - start

	var esc strings.Builder
	caretCol := 0
	for i, r := range raw {
		if i == caretPos {
			caretCol = esc.Len()
		}
		switch r {
		case '\n':
			esc.WriteString(`\n`)
		case '\t':
			esc.WriteString(`\t`)
		case '\r':
			esc.WriteString(`\r`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&esc, `\x%02x`, r)
			} else {
				esc.WriteRune(r)
			}
		}
	}
	if caretPos >= len(raw) {
		caretCol = esc.Len()
	}

	return esc.String(), strings.Repeat(" ", caretCol) + "^"
}

// renderAt produces the standard "message\n\n<window>\n<caret>" rendering
// shared by every error kind here.
func renderAt(src string, offset int, msg string) string {
	window, caret := sourceWindow(src, offset)
	return fmt.Sprintf("%s\n\n    %s\n    %s", msg, window, caret)
}

// LexError reports an unrecognised token: spec.md §7's LexError.
type LexError struct {
	Offset int
	Msg    string
}

func NewLexError(offset int, msg string) *LexError {
	return &LexError{Offset: offset, Msg: msg}
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at byte %d: %s", e.Offset, e.Msg)
}

// Render renders the error against the original source with a ±20 byte
// window and a caret underline, per spec.md §4.4 and §7.
func (e *LexError) Render(src string) string {
	return renderAt(src, e.Offset, e.Msg)
}

// SyntaxError reports an unexpected token during the LR drive: spec.md §7's
// SyntaxError. Expected lists the human names of the grammar elements that
// would have been accepted instead.
type SyntaxError struct {
	Offset   int
	End      int
	Found    string
	Expected []string
}

func NewSyntaxError(offset, end int, found string, expected []string) *SyntaxError {
	return &SyntaxError{Offset: offset, End: end, Found: found, Expected: expected}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at byte %d: unexpected %s", e.Offset, e.Found)
}

// Render renders the offending token's source window with a caret, followed
// by a table of the elements that were expected instead (the "expected" set
// named in spec.md §4.4).
func (e *SyntaxError) Render(src string) string {
	msg := fmt.Sprintf("unexpected %s", e.Found)
	base := renderAt(src, e.Offset, msg)

	if len(e.Expected) == 0 {
		return base
	}

	data := make([][]string, 0, len(e.Expected))
	for _, exp := range e.Expected {
		data = append(data, []string{exp})
	}

	table := rosed.Edit("expected one of:").
		InsertTableOpts(0, data, 60, rosed.Options{
			NoTrailingLineSeparators: true,
		}).
		String()

	return base + "\n\n" + table
}

// ScopeError reports an undeclared/redeclared identifier or a function
// defined outside global scope: spec.md §7's ScopeError.
type ScopeError struct {
	Offset int
	Msg    string
}

func NewScopeError(offset int, msg string) *ScopeError {
	return &ScopeError{Offset: offset, Msg: msg}
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("scope error at byte %d: %s", e.Offset, e.Msg)
}

func (e *ScopeError) Render(src string) string {
	return renderAt(src, e.Offset, e.Msg)
}

// TypeError reports a type mismatch: spec.md §7's TypeError. Expected/Found
// are free-text type names rather than a concrete Type value so this package
// does not need to depend on the type-checker's type representation.
type TypeError struct {
	Offset   int
	Msg      string
	Expected string
	Found    string
}

func NewTypeError(offset int, msg string) *TypeError {
	return &TypeError{Offset: offset, Msg: msg}
}

func NewTypeErrorWithTypes(offset int, msg, expected, found string) *TypeError {
	return &TypeError{Offset: offset, Msg: msg, Expected: expected, Found: found}
}

func (e *TypeError) Error() string {
	if e.Expected != "" || e.Found != "" {
		return fmt.Sprintf("type error at byte %d: %s (expected %s, found %s)", e.Offset, e.Msg, e.Expected, e.Found)
	}
	return fmt.Sprintf("type error at byte %d: %s", e.Offset, e.Msg)
}

func (e *TypeError) Render(src string) string {
	msg := e.Msg
	if e.Expected != "" || e.Found != "" {
		msg = fmt.Sprintf("%s (expected %s, found %s)", msg, e.Expected, e.Found)
	}
	return renderAt(src, e.Offset, msg)
}
