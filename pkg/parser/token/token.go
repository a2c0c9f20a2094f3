package token

import "fmt"

// Token is a lexical unit of source text.
type Token struct {
	Type   Type
	Text   string
	Source *Location
}

// Type is the lexical class of a Token.
type Type uint

// Type constants used for the lexer/parser.
const (
	INVALID Type = iota
	ERROR
	EOF

	// Atomic expressions & literals
	SYMBOL
	INT
	BOOL

	COMMENT

	// Operators
	NEGATIVE // arithmetic negation is parsed specially
	QUALIFY
	QUOTE

	// Delimiters
	PAREN_L
	PAREN_R

	numTokenTypes
)

func (typ Type) String() string {
	typeStrings := [numTokenTypes]string{
		INVALID:  "invalid",
		ERROR:    "error",
		EOF:      "EOF",
		SYMBOL:   "symbol",
		INT:      "int",
		BOOL:     "bool",
		COMMENT:  ";",
		NEGATIVE: "-",
		QUALIFY:  ":",
		QUOTE:    "'",
		PAREN_L:  "(",
		PAREN_R:  ")",
	}
	if typ >= numTokenTypes {
		return typeStrings[INVALID]
	}
	return typeStrings[typ]
}

// Location is a position in named source text.
type Location struct {
	File string
	Pos  int // byte offset
	Line int // line number (starting at 1 when tracked)
	Col  int // line column number (starting at 1 when tracked)
}

func (loc *Location) String() string {
	switch {
	case loc.Line == 0:
		return fmt.Sprintf("%s[%d]", loc.File, loc.Pos)
	case loc.Col == 0:
		return fmt.Sprintf("%s:%d", loc.File, loc.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Col)
	}
}
