package token

import (
	"fmt"
	"io"
	"unicode/utf8"
)

// Scanner facilitates construction of tokens from source text.  The whole
// text is held in memory; commands are small and arrive complete.
type Scanner struct {
	file string
	src  string

	start     int // byte offset of the current token
	startLine int
	startCol  int

	next int // byte offset of the rune following c
	line int // line of the rune following c
	col  int // column of the rune following c
	c    rune
}

// NewScanner initializes and returns a new Scanner over src.  The file name
// is only used to describe token locations.
func NewScanner(file string, src string) *Scanner {
	s := &Scanner{
		file: file,
		src:  src,
		line: 1,
		col:  1,
	}
	s.Ignore()
	return s
}

// EmitToken returns a token containing the text scanned since the last call to
// either EmitToken or Ignore.
func (s *Scanner) EmitToken(typ Type) *Token {
	tok := &Token{
		Type:   typ,
		Text:   s.Text(),
		Source: s.LocStart(),
	}
	s.Ignore()
	return tok
}

// Ignore causes the scanner to skip all text scanned since the last call to
// either EmitToken or Ignore.
func (s *Scanner) Ignore() {
	s.start = s.next
	s.startLine = s.line
	s.startCol = s.col
}

// Text returns a string containing text scanned since the last call to either
// EmitToken or Ignore.
func (s *Scanner) Text() string {
	return s.src[s.start:s.next]
}

// Rune returns the current unicode rune that is being scanned.  The rune
// returned by Rune is the last rune in a token returned by EmitToken.
func (s *Scanner) Rune() rune {
	return s.c
}

// Peek returns the next rune to be scanned, if there are any.  If an invalid
// utf-8 sequence or EOF prevents futher runes from being scanned Peek returns
// a false second value.  If Peek returns a false value the next call to
// s.ScanRune will return an error that reflects of the cause.
func (s *Scanner) Peek() (rune, bool) {
	if s.next >= len(s.src) {
		return 0, false
	}
	c, n := utf8.DecodeRuneInString(s.src[s.next:])
	if c == utf8.RuneError && n == 1 {
		return utf8.RuneError, false
	}
	return c, true
}

// ScanRune attempts to scan a utf-8 rune from the input for inclusion in the
// current token.  ScanRune returns io.EOF when the input is exhausted and an
// *InvalidUTF8Error if the input is not valid utf-8.
func (s *Scanner) ScanRune() error {
	if s.next >= len(s.src) {
		return io.EOF
	}
	c, n := utf8.DecodeRuneInString(s.src[s.next:])
	if c == utf8.RuneError && n == 1 {
		return &InvalidUTF8Error{Loc: s.loc(s.next, s.line, s.col), Byte: s.src[s.next]}
	}
	s.c = c
	s.next += n
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return nil
}

// LocStart returns a Location referencing the beginning of the current token,
// just beyond the end of the previous token.
func (s *Scanner) LocStart() *Location {
	return s.loc(s.start, s.startLine, s.startCol)
}

// Loc returns a Location referencing the current scanner position.
func (s *Scanner) Loc() *Location {
	return s.loc(s.next, s.line, s.col)
}

func (s *Scanner) loc(pos, line, col int) *Location {
	return &Location{
		File: s.file,
		Pos:  pos,
		Line: line,
		Col:  col,
	}
}

// InvalidUTF8Error reports source text that is not valid utf-8.
type InvalidUTF8Error struct {
	Loc  *Location
	Byte byte
}

func (err *InvalidUTF8Error) Error() string {
	return fmt.Sprintf("%s: invalid utf-8 sequence in source text starting with byte %#x", err.Loc, err.Byte)
}
