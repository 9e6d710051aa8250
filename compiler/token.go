// Package compiler turns stax source text into an executable Program:
// the lexer produces a flat token sequence with source positions, and the
// single-pass parser resolves structured control flow into flat jump
// targets over the instruction sequence.
package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Token types for the stax lexer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	TokenNumber TokenType = iota // integer literal

	// Arithmetic operators
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash

	// Stack words
	TokenPrint
	TokenPop
	TokenDup
	TokenSwap
	TokenRot
	TokenOver
	TokenNip

	// Control flow
	TokenWhile
	TokenEnd
	TokenIf
	TokenElse

	// Functions
	TokenFun
	TokenRet
	TokenIdent // call site or function name
)

var tokenNames = map[TokenType]string{
	TokenNumber: "NUMBER",
	TokenPlus:   "+",
	TokenMinus:  "-",
	TokenStar:   "*",
	TokenSlash:  "/",
	TokenPrint:  "print",
	TokenPop:    "pop",
	TokenDup:    "dup",
	TokenSwap:   "swap",
	TokenRot:    "rot",
	TokenOver:   "over",
	TokenNip:    "nip",
	TokenWhile:  "while",
	TokenEnd:    "end",
	TokenIf:     "if",
	TokenElse:   "else",
	TokenFun:    "fun",
	TokenRet:    "ret",
	TokenIdent:  "IDENT",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// Token is one lexical unit of a stax source file. Pos is the 1-based
// column of the token's first character; Line is the 1-based line number.
// Num carries the value of a NUMBER token; Literal the raw word.
type Token struct {
	Type    TokenType
	Num     int32
	Literal string
	Pos     int
	Line    int
}

func (t Token) String() string {
	if t.Type == TokenNumber {
		return fmt.Sprintf("NUMBER(%d)", t.Num)
	}
	if t.Type == TokenIdent {
		return fmt.Sprintf("IDENT(%q)", t.Literal)
	}
	return t.Type.String()
}

// Reserved words mapped to their token types.
var reservedWords = map[string]TokenType{
	"print": TokenPrint,
	"pop":   TokenPop,
	"dup":   TokenDup,
	"swap":  TokenSwap,
	"rot":   TokenRot,
	"over":  TokenOver,
	"nip":   TokenNip,
	"while": TokenWhile,
	"end":   TokenEnd,
	"if":    TokenIf,
	"else":  TokenElse,
	"fun":   TokenFun,
	"ret":   TokenRet,
}
