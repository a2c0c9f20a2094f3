package lexer

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/luthersystems/yalp/pkg/parser/token"
)

const miscWordRunes = "0123456789" + miscWordSymbols
const miscWordSymbols = "._+-*/=<>!&~%?$"

// Lexer splits source text into tokens.
type Lexer struct {
	scanner *token.Scanner
	ch      rune // current unicode rune

	// readErr is the first error returned by the scanner.  Once set every
	// call to NextToken returns a corresponding token.
	readErr error
}

// New returns a Lexer that reads runes from s.
func New(s *token.Scanner) *Lexer {
	lex := &Lexer{
		scanner: s,
	}
	return lex
}

// NextToken scans and returns the next token.  At the end of input NextToken
// returns EOF tokens indefinitely.
func (lex *Lexer) NextToken() *token.Token {
	if lex.readErr != nil {
		return lex.emitError(lex.readErr, true)
	}
	lex.readErr = lex.skipWhitespace()
	if lex.readErr != nil {
		return lex.emitError(lex.readErr, true)
	}
	if lex.readChar() != nil {
		return lex.emitError(lex.readErr, true)
	}
	switch lex.ch {
	case '(':
		return lex.charToken(token.PAREN_L)
	case ')':
		return lex.charToken(token.PAREN_R)
	case '\'':
		return lex.charToken(token.QUOTE)
	case ':':
		if !isWordStart(lex.peekRune()) {
			return lex.charToken(token.QUALIFY)
		}
		return lex.readSymbol()
	case ';':
		for lex.peekRune() != '\n' {
			err := lex.readChar()
			if err == io.EOF {
				lex.readErr = nil
				return lex.scanner.EmitToken(token.COMMENT)
			}
			if err != nil {
				return lex.emitError(err, false)
			}
		}
		return lex.scanner.EmitToken(token.COMMENT)
	case '#':
		if lex.readChar() != nil {
			return lex.emitError(lex.readErr, false)
		}
		switch lex.ch {
		case 't', 'f':
			if isWord(lex.peekRune()) {
				return lex.errorf("invalid boolean literal starting with %q", lex.scanner.Text())
			}
			return lex.scanner.EmitToken(token.BOOL)
		default:
			return lex.errorf("invalid meta character %q", lex.ch)
		}
	case '-':
		if isDigit(lex.peekRune()) {
			return lex.scanner.EmitToken(token.NEGATIVE)
		}
		return lex.readSymbol()
	default:
		if isDigit(lex.ch) {
			return lex.readNumber()
		}
		if isWordStart(lex.ch) {
			return lex.readSymbol()
		}
		return lex.errorf("unexpected text starting with %q", lex.ch)
	}
}

func (lex *Lexer) emit(typ token.Type, text string) *token.Token {
	tok := &token.Token{
		Type:   typ,
		Text:   text,
		Source: lex.scanner.LocStart(),
	}
	lex.scanner.Ignore()
	return tok
}

func (lex *Lexer) emitError(err error, expectEOF bool) *token.Token {
	if err == io.EOF {
		if expectEOF {
			return lex.emit(token.EOF, "")
		}
		return lex.emit(token.ERROR, "unexpected EOF")
	}
	return lex.emit(token.ERROR, err.Error())
}

func (lex *Lexer) errorf(format string, v ...interface{}) *token.Token {
	return lex.emit(token.ERROR, fmt.Sprintf(format, v...))
}

func (lex *Lexer) charToken(typ token.Type) *token.Token {
	return lex.scanner.EmitToken(typ)
}

func (lex *Lexer) readSymbol() *token.Token {
	for isWord(lex.peekRune()) {
		err := lex.readChar()
		if err != nil {
			return lex.emitError(err, false)
		}
	}
	return lex.scanner.EmitToken(token.SYMBOL)
}

// readNumber scans an integer literal.  Digits followed by other word runes
// form a symbol (e.g. "1+").
func (lex *Lexer) readNumber() *token.Token {
	for isDigit(lex.peekRune()) {
		err := lex.readChar()
		if err != nil {
			return lex.emitError(err, false)
		}
	}
	if isWord(lex.peekRune()) {
		return lex.readSymbol()
	}
	// the returned string may not actually be a usable number (overflow), but
	// we can find that out at parse time -- not scan time.
	return lex.scanner.EmitToken(token.INT)
}

func (lex *Lexer) skipWhitespace() error {
	for unicode.IsSpace(lex.peekRune()) {
		err := lex.readChar()
		if err != nil {
			return err
		}
	}
	lex.scanner.Ignore()
	return nil
}

func (lex *Lexer) peekRune() rune {
	r, _ := lex.scanner.Peek()
	return r
}

func (lex *Lexer) readChar() error {
	lex.readErr = lex.scanner.ScanRune()
	if lex.readErr != nil {
		return lex.readErr
	}
	lex.ch = lex.scanner.Rune()
	return nil
}

func isWordStart(c rune) bool {
	return unicode.IsLetter(c) || strings.ContainsRune(miscWordSymbols, c)
}

func isWord(c rune) bool {
	return unicode.IsLetter(c) || strings.ContainsRune(miscWordRunes, c)
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}
