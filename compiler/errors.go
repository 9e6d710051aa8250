package compiler

import "fmt"

// UnknownTokenError reports a character or word the lexer does not
// recognize. Pos is the 1-based column of the word's first character.
type UnknownTokenError struct {
	Word string
	Pos  int
	Line int
}

func (e *UnknownTokenError) Error() string {
	return fmt.Sprintf("unknown token %q at %d:%d", e.Word, e.Line, e.Pos)
}

// ParseError reports a structural error: an unmatched while/if/else/end
// or a malformed function declaration. Word is the offending source word,
// Comment a free-form explanation.
type ParseError struct {
	Word    string
	Pos     int
	Line    int
	Comment string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %q: %s", e.Line, e.Pos, e.Word, e.Comment)
}
