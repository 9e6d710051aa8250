package compiler

import (
	"strconv"
)

// ---------------------------------------------------------------------------
// Lexer: tokenizer for stax source
// ---------------------------------------------------------------------------

// Lexer tokenizes stax source code. Source is treated as a flat byte
// sequence; the surface grammar is ASCII. Column tracking matches the
// error-reporting convention of the rest of the pipeline: columns are
// 1-based, a newline resets the column counter to 0, and a multi-char
// token reports the column of its first character.
type Lexer struct {
	input string
	idx   int // current position in input
	pos   int // column of the last consumed character (1-based)
	line  int // current line (1-based)
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, line: 1}
}

// Tokenize consumes the whole input and returns the token sequence.
// The first unrecognized character or word aborts with an
// UnknownTokenError carrying its position.
func (l *Lexer) Tokenize() ([]Token, error) {
	tokens := []Token{}

	for l.idx < len(l.input) {
		c := l.input[l.idx]
		l.idx++
		l.pos++

		switch {
		case c == ' ' || c == '\t':
			// Separator.

		case c == '\n':
			l.line++
			l.pos = 0

		case c == '\r':
			l.pos = 0

		case c == '#':
			// Line comment: skip to end of line, leaving the newline
			// for the main loop so line counting stays in one place.
			for l.idx < len(l.input) && l.input[l.idx] != '\n' {
				l.idx++
				l.pos++
			}

		case c == '+':
			tokens = append(tokens, Token{Type: TokenPlus, Literal: "+", Pos: l.pos, Line: l.line})

		case c == '-':
			tokens = append(tokens, Token{Type: TokenMinus, Literal: "-", Pos: l.pos, Line: l.line})

		case c == '*':
			tokens = append(tokens, Token{Type: TokenStar, Literal: "*", Pos: l.pos, Line: l.line})

		case c == '/':
			tokens = append(tokens, Token{Type: TokenSlash, Literal: "/", Pos: l.pos, Line: l.line})

		case isDigit(c):
			word := l.readWhile(c, isDigit)
			start := l.pos - len(word) + 1
			n, err := strconv.ParseInt(word, 10, 32)
			if err != nil {
				return nil, &UnknownTokenError{Word: word, Pos: start, Line: l.line}
			}
			tokens = append(tokens, Token{Type: TokenNumber, Num: int32(n), Literal: word, Pos: start, Line: l.line})

		case isWordChar(c):
			word := l.readWhile(c, isWordChar)
			start := l.pos - len(word) + 1
			if typ, ok := reservedWords[word]; ok {
				tokens = append(tokens, Token{Type: typ, Literal: word, Pos: start, Line: l.line})
			} else {
				tokens = append(tokens, Token{Type: TokenIdent, Literal: word, Pos: start, Line: l.line})
			}

		default:
			return nil, &UnknownTokenError{Word: string(c), Pos: l.pos, Line: l.line}
		}
	}

	return tokens, nil
}

// readWhile consumes characters matching pred and returns the word
// including the already-consumed first character.
func (l *Lexer) readWhile(first byte, pred func(byte) bool) string {
	buf := []byte{first}
	for l.idx < len(l.input) && pred(l.input[l.idx]) {
		buf = append(buf, l.input[l.idx])
		l.idx++
		l.pos++
	}
	return string(buf)
}

// Helper functions

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || isDigit(c) || c == '_'
}

// Tokenize returns all tokens from the input.
func Tokenize(input string) ([]Token, error) {
	return NewLexer(input).Tokenize()
}
