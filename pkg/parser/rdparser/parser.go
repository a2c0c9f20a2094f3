// Package rdparser is a recursive descent reader that turns source text
// into lisp values, interning symbols as it goes.
package rdparser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/luthersystems/yalp/pkg/lisp"
	"github.com/luthersystems/yalp/pkg/parser/lexer"
	"github.com/luthersystems/yalp/pkg/parser/token"
	"github.com/luthersystems/yalp/pkg/symbol"
)

// QuoteSymbol is the name of the special form that 'x expands into.
const QuoteSymbol = "quote"

// DefaultMaxDepth is the default limit on nested lists and quotes.
const DefaultMaxDepth = 10000

// Interner assigns symbol IDs to names.  A symbol.Table is an Interner.
type Interner interface {
	Intern(name string) symbol.ID
}

// Error is a parse error.  Condition classifies the error, Source locates
// it in the input.
type Error struct {
	Condition string
	Source    *token.Location
	Msg       string
}

func (err *Error) Error() string {
	if err.Source == nil {
		return err.Msg
	}
	return fmt.Sprintf("%v: %s", err.Source, err.Msg)
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxDepth limits how deeply lists and quotes may nest.  Input nested
// deeper than n fails with a nesting-depth-exceeded error.  Values of n less
// than 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxDepth = n
		}
	}
}

// Parse reads exactly one expression from text.  Empty input and text
// following the first expression are errors.
func Parse(name string, text string, table Interner, options ...Option) (lisp.LVal, error) {
	p := New(token.NewScanner(name, text), table, options...)
	return p.ParseSingle()
}

// ParseProgram reads every expression in text.
func ParseProgram(name string, text string, table Interner, options ...Option) ([]lisp.LVal, error) {
	p := New(token.NewScanner(name, text), table, options...)
	return p.ParseProgram()
}

// Parser is a lisp parser.
type Parser struct {
	lex      *lexer.Lexer
	table    Interner
	curr     *token.Token
	peek     *token.Token
	depth    int
	maxDepth int
}

// New initializes and returns a new Parser that reads tokens from scanner
// and interns symbols into table.
func New(scanner *token.Scanner, table Interner, options ...Option) *Parser {
	p := &Parser{
		lex:      lexer.New(scanner),
		table:    table,
		maxDepth: DefaultMaxDepth,
	}
	for _, fn := range options {
		fn(p)
	}
	// Setup the peek token so the parser is in the proper state when the
	// first parse function is called.
	p.ReadToken()
	return p
}

// ParseProgram parses expressions until the end of input.
func (p *Parser) ParseProgram() ([]lisp.LVal, error) {
	var exprs []lisp.LVal
	for {
		p.skipComments()
		if p.expect(token.EOF) {
			break
		}
		expr, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return exprs, nil
}

// ParseSingle parses one expression and requires that nothing but comments
// follow it.
func (p *Parser) ParseSingle() (lisp.LVal, error) {
	p.skipComments()
	if p.PeekType() == token.EOF {
		p.ReadToken()
		return lisp.Nil(), p.errorf("empty-input", "no expression in input")
	}
	expr, err := p.ParseExpression()
	if err != nil {
		return lisp.Nil(), err
	}
	p.skipComments()
	if !p.expect(token.EOF) {
		p.ReadToken()
		return lisp.Nil(), p.errorf("trailing-input", "unexpected %s following expression", p.Token().Type)
	}
	return expr, nil
}

// ParseExpression parses the next expression.
func (p *Parser) ParseExpression() (lisp.LVal, error) {
	p.skipComments()
	switch p.PeekType() {
	case token.INT:
		return p.ParseLiteralInt()
	case token.BOOL:
		return p.ParseLiteralBool()
	case token.NEGATIVE:
		return p.ParseNegative()
	case token.QUOTE:
		if err := p.enter(); err != nil {
			return lisp.Nil(), err
		}
		defer p.leave()
		return p.ParseQuote()
	case token.SYMBOL:
		return p.ParseSymbol()
	case token.PAREN_L:
		if err := p.enter(); err != nil {
			return lisp.Nil(), err
		}
		defer p.leave()
		return p.ParseConsExpression()
	case token.ERROR, token.INVALID:
		p.ReadToken()
		return lisp.Nil(), p.errorf("scan-error", "%s", p.Token().Text)
	case token.EOF:
		p.ReadToken()
		return lisp.Nil(), p.errorf("unexpected-eof", "unexpected end of input")
	default:
		p.ReadToken()
		return lisp.Nil(), p.errorf("unexpected-token", "unexpected %s", p.Token().Type)
	}
}

// enter descends one level into a list or quote.  The recursion of the
// parser is bounded by maxDepth.
func (p *Parser) enter() error {
	if p.depth >= p.maxDepth {
		p.ReadToken()
		return p.errorf("nesting-depth-exceeded", "maximum nesting depth exceeded: %d", p.maxDepth)
	}
	p.depth++
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

// ParseLiteralInt parses a decimal integer.
func (p *Parser) ParseLiteralInt() (lisp.LVal, error) {
	if !p.expect(token.INT) {
		return lisp.Nil(), p.errorf("parse-error", "invalid integer literal: %v", p.PeekType())
	}
	return p.parseInt(p.Token().Text)
}

func (p *Parser) parseInt(text string) (lisp.LVal, error) {
	digits := strings.TrimPrefix(text, "-")
	if strings.HasPrefix(digits, "0") && digits != "0" {
		return lisp.Nil(), p.errorf("invalid-integer-literal", "integer literal starts with 0: %v", text)
	}
	x, err := strconv.Atoi(text)
	if err != nil {
		return lisp.Nil(), p.errorf("integer-overflow-error", "integer literal overflows int: %v", text)
	}
	return lisp.Int(x), nil
}

// ParseLiteralBool parses #t or #f.
func (p *Parser) ParseLiteralBool() (lisp.LVal, error) {
	if !p.expect(token.BOOL) {
		return lisp.Nil(), p.errorf("parse-error", "invalid boolean literal: %v", p.PeekType())
	}
	return lisp.Bool(p.Token().Text == "#t"), nil
}

// ParseNegative parses a negative integer literal.
func (p *Parser) ParseNegative() (lisp.LVal, error) {
	if !p.expect(token.NEGATIVE) {
		return lisp.Nil(), p.errorf("parse-error", "invalid negative: %v", p.PeekType())
	}
	if !p.expect(token.INT) {
		p.ReadToken()
		return lisp.Nil(), p.errorf("unexpected-token", "unexpected %s following -", p.Token().Type)
	}
	return p.parseInt("-" + p.Token().Text)
}

// ParseQuote parses 'datum as (quote datum).
func (p *Parser) ParseQuote() (lisp.LVal, error) {
	if !p.expect(token.QUOTE) {
		return lisp.Nil(), p.errorf("parse-error", "invalid quote: %v", p.PeekType())
	}
	v, err := p.ParseExpression()
	if err != nil {
		return lisp.Nil(), err
	}
	return lisp.List(lisp.Symbol(p.table.Intern(QuoteSymbol)), v), nil
}

// ParseSymbol parses a symbol and interns it.
func (p *Parser) ParseSymbol() (lisp.LVal, error) {
	if !p.expect(token.SYMBOL) {
		return lisp.Nil(), p.errorf("parse-error", "invalid symbol: %v", p.PeekType())
	}
	return lisp.Symbol(p.table.Intern(p.Token().Text)), nil
}

// ParseConsExpression parses a parenthesized list.
func (p *Parser) ParseConsExpression() (lisp.LVal, error) {
	if !p.expect(token.PAREN_L) {
		return lisp.Nil(), p.errorf("parse-error", "invalid list: %v", p.PeekType())
	}
	open := p.Token()
	var cells []lisp.LVal
	for {
		p.skipComments()
		if p.expect(token.EOF) {
			return lisp.Nil(), p.errorAt(open.Source, "unmatched-syntax", "unmatched %s", open.Text)
		}
		if p.expect(token.PAREN_R) {
			break
		}
		x, err := p.ParseExpression()
		if err != nil {
			return lisp.Nil(), err
		}
		cells = append(cells, x)
	}
	return lisp.List(cells...), nil
}

// ReadToken advances the parser by one token.
func (p *Parser) ReadToken() *token.Token {
	p.curr = p.peek
	p.peek = p.lex.NextToken()
	return p.curr
}

// Token returns the most recently read token.
func (p *Parser) Token() *token.Token {
	return p.curr
}

// PeekType returns the type of the next token.
func (p *Parser) PeekType() token.Type {
	return p.peek.Type
}

func (p *Parser) skipComments() {
	for p.expect(token.COMMENT) {
	}
}

func (p *Parser) expect(typ ...token.Type) bool {
	peekType := p.peek.Type
	for _, typ := range typ {
		if typ == peekType {
			p.ReadToken()
			return true
		}
	}
	return false
}

func (p *Parser) errorf(condition string, format string, v ...interface{}) error {
	var loc *token.Location
	if tok := p.Token(); tok != nil {
		loc = tok.Source
	}
	return p.errorAt(loc, condition, format, v...)
}

func (p *Parser) errorAt(loc *token.Location, condition string, format string, v ...interface{}) error {
	return &Error{
		Condition: condition,
		Source:    loc,
		Msg:       fmt.Sprintf(format, v...),
	}
}
