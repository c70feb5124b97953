// internal/rules/path.go
package rules

import (
	"fmt"
	"strings"

	"github.com/caseworks/reportable/internal/types"
)

/*
 * Path expression compiler.
 *
 * Compiles the dotted path mini-language into an immutable []Step chain
 * before any record is touched. A path that fails to compile is rejected
 * here with a descriptive error; extraction never sees malformed input.
 * Compiled paths are reusable across many extraction calls (the Engine
 * caches them, see engine.go).
 *
 * Grammar:
 *   path    := segment ("." segment)*
 *   segment := "**" | ident ["." "where" "(" ident "=" string ")"]
 *   ident   := [A-Za-z_][A-Za-z0-9_]*
 *   string  := '"' <any chars except '"'> '"'
 *
 * The first segment names the resource type the path applies to; when it
 * does not match a record's resourceType the traversal naturally yields
 * nothing. "**" is the descendant wildcard: valid, but flagged by the
 * validator as potentially expensive.
 *
 * Why hand-rolled: the grammar is a dozen productions with no ambiguity.
 * A tokenizer plus recursive descent keeps error positions exact and
 * avoids a parser-generator dependency for a language this small.
 */

// FieldFilter is an inline equality filter on a segment:
// segment.where(field="value"). String equality, case-sensitive.
type FieldFilter struct {
	Field string
	Value string
}

// Step is one compiled traversal step.
type Step struct {
	Name       string       // segment name (empty for descendant wildcard)
	Descendant bool         // true for the "**" descendant wildcard
	Filter     *FieldFilter // optional inline filter, nil when absent
}

// Path is a compiled, immutable path expression.
type Path struct {
	raw   string
	steps []Step
}

// String returns the original path expression.
func (p *Path) String() string { return p.raw }

// Steps returns the compiled traversal steps.
func (p *Path) Steps() []Step { return p.steps }

// token kinds produced by the lexer.
type tokenKind int

const (
	tokIdent tokenKind = iota
	tokDot
	tokLParen
	tokRParen
	tokEquals
	tokString
	tokDescend // "**"
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int // byte offset in the expression, for error messages
}

// CompilePath compiles a path expression into traversal steps.
// Returns an error wrapping types.ErrInvalidPath for malformed syntax and
// types.ErrPathTooDeep when the segment count exceeds types.MaxPathDepth.
func CompilePath(expr string) (*Path, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("%w: %w", types.ErrInvalidPath, types.ErrEmptyPath)
	}

	tokens, err := lex(expr)
	if err != nil {
		return nil, err
	}

	steps, err := parse(expr, tokens)
	if err != nil {
		return nil, err
	}

	if len(steps) > types.MaxPathDepth {
		return nil, fmt.Errorf("%w: %d segments exceeds limit of %d",
			types.ErrPathTooDeep, len(steps), types.MaxPathDepth)
	}

	return &Path{raw: expr, steps: steps}, nil
}

// lex scans the expression into tokens. Position tracking is byte-based;
// identifiers are ASCII per the grammar so byte and rune offsets agree.
func lex(expr string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == '.':
			tokens = append(tokens, token{tokDot, ".", i})
			i++
		case c == '(':
			tokens = append(tokens, token{tokLParen, "(", i})
			i++
		case c == ')':
			tokens = append(tokens, token{tokRParen, ")", i})
			i++
		case c == '=':
			tokens = append(tokens, token{tokEquals, "=", i})
			i++
		case c == '*':
			if i+1 < len(expr) && expr[i+1] == '*' {
				tokens = append(tokens, token{tokDescend, "**", i})
				i += 2
				break
			}
			return nil, syntaxError(expr, i, "single '*' is not a valid segment")
		case c == '"':
			end := strings.IndexByte(expr[i+1:], '"')
			if end < 0 {
				return nil, syntaxError(expr, i, "unterminated string literal")
			}
			tokens = append(tokens, token{tokString, expr[i+1 : i+1+end], i})
			i += end + 2
		case isIdentStart(c):
			start := i
			for i < len(expr) && isIdentPart(expr[i]) {
				i++
			}
			tokens = append(tokens, token{tokIdent, expr[start:i], start})
		default:
			return nil, syntaxError(expr, i, fmt.Sprintf("unexpected character %q", c))
		}
	}
	tokens = append(tokens, token{tokEOF, "", len(expr)})
	return tokens, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// parser is a minimal recursive-descent parser over the token stream.
type parser struct {
	expr   string
	tokens []token
	pos    int
}

func parse(expr string, tokens []token) ([]Step, error) {
	p := &parser{expr: expr, tokens: tokens}

	var steps []Step
	for {
		step, err := p.segment()
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)

		if p.peek().kind == tokEOF {
			return steps, nil
		}
		if _, err := p.expect(tokDot, "'.'"); err != nil {
			return nil, err
		}
		// Trailing dot: "Patient." ends after the separator.
		if p.peek().kind == tokEOF {
			return nil, syntaxError(expr, p.peek().pos, "path ends with '.'")
		}
	}
}

// segment parses one traversal step: "**" or ident with optional filter.
func (p *parser) segment() (Step, error) {
	tok := p.peek()
	if tok.kind == tokDescend {
		p.pos++
		return Step{Descendant: true}, nil
	}

	ident, err := p.expect(tokIdent, "segment name")
	if err != nil {
		return Step{}, err
	}

	step := Step{Name: ident.text}

	// Lookahead for ".where(" - a bare segment named "where" stays a
	// segment; only the full call form is a filter.
	if p.peek().kind == tokDot && p.peekAt(1).kind == tokIdent &&
		p.peekAt(1).text == "where" && p.peekAt(2).kind == tokLParen {
		p.pos += 3 // consume ".", "where", "("
		filter, err := p.filterBody()
		if err != nil {
			return Step{}, err
		}
		step.Filter = filter
	}

	return step, nil
}

// filterBody parses `ident = "literal" )` after "where(" is consumed.
func (p *parser) filterBody() (*FieldFilter, error) {
	field, err := p.expect(tokIdent, "filter field name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokEquals, "'='"); err != nil {
		return nil, err
	}
	value, err := p.expect(tokString, "quoted string literal")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	return &FieldFilter{Field: field.text, Value: value.text}, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) peekAt(offset int) token {
	if p.pos+offset >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos+offset]
}

func (p *parser) expect(kind tokenKind, want string) (token, error) {
	tok := p.peek()
	if tok.kind != kind {
		got := tok.text
		if tok.kind == tokEOF {
			got = "end of expression"
		} else {
			got = fmt.Sprintf("%q", got)
		}
		return token{}, syntaxError(p.expr, tok.pos, fmt.Sprintf("expected %s, got %s", want, got))
	}
	p.pos++
	return tok, nil
}

// syntaxError builds a compile error naming the offending position.
// All syntax failures wrap types.ErrInvalidPath so the validator and the
// extractor agree on a single definition of "valid".
func syntaxError(expr string, pos int, msg string) error {
	return fmt.Errorf("%w: %s at position %d in %q", types.ErrInvalidPath, msg, pos, expr)
}
