package compiler

import (
	"github.com/chazu/stax/pkg/bytecode"
)

// ---------------------------------------------------------------------------
// Parser/Resolver: tokens -> resolved Program
// ---------------------------------------------------------------------------

// simpleOps maps tokens that become exactly one instruction with no
// unresolved fields.
var simpleOps = map[TokenType]bytecode.Opcode{
	TokenPlus:  bytecode.OpAdd,
	TokenMinus: bytecode.OpSub,
	TokenStar:  bytecode.OpMul,
	TokenSlash: bytecode.OpDiv,
	TokenPrint: bytecode.OpPrint,
	TokenPop:   bytecode.OpPop,
	TokenDup:   bytecode.OpDup,
	TokenSwap:  bytecode.OpSwap,
	TokenRot:   bytecode.OpRot,
	TokenOver:  bytecode.OpOver,
	TokenNip:   bytecode.OpNip,
	TokenRet:   bytecode.OpRet,
}

// Parse consumes the token sequence once, left to right, emitting the flat
// instruction sequence and the function table.
//
// Nested control structures are resolved with an explicit stack of opener
// indices: while/if/else push the index of their placeholder instruction,
// and the matching closer overwrites that placeholder's target once its
// own index is known. A jump target always names the partner instruction
// itself; the machine applies its ordinary increment after jumping.
//
// Call sites bind to functions declared earlier in the token stream only.
// A forward reference fails with a function-not-found error; this matches
// the single left-to-right pass and is deliberate.
func Parse(tokens []Token) (*bytecode.Program, error) {
	prog := bytecode.NewProgram()
	var open []int // resolution stack: indices of unmatched openers

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		if op, ok := simpleOps[tok.Type]; ok {
			prog.Append(bytecode.Instruction{Op: op, Pos: tok.Pos, Line: tok.Line})
			continue
		}

		switch tok.Type {
		case TokenNumber:
			prog.Append(bytecode.Instruction{Op: bytecode.OpPush, Arg: tok.Num, Pos: tok.Pos, Line: tok.Line})

		case TokenWhile:
			open = append(open, prog.Len())
			prog.Append(bytecode.Instruction{Op: bytecode.OpWhile, Pos: tok.Pos, Line: tok.Line})

		case TokenIf:
			open = append(open, prog.Len())
			prog.Append(bytecode.Instruction{Op: bytecode.OpIf, Pos: tok.Pos, Line: tok.Line})

		case TokenElse:
			if len(open) == 0 {
				return nil, &ParseError{Word: "else", Pos: tok.Pos, Line: tok.Line, Comment: "this else has no matching if"}
			}
			opener := open[len(open)-1]
			open = open[:len(open)-1]
			if prog.Instructions[opener].Op != bytecode.OpIf {
				return nil, &ParseError{Word: "else", Pos: tok.Pos, Line: tok.Line, Comment: "this else has no matching if"}
			}
			elseIdx := prog.Len()
			// When the condition is false the if skips the then-branch by
			// jumping to this else.
			prog.Patch(opener, elseIdx)
			open = append(open, elseIdx)
			prog.Append(bytecode.Instruction{Op: bytecode.OpElse, Pos: tok.Pos, Line: tok.Line})

		case TokenEnd:
			if len(open) == 0 {
				return nil, &ParseError{Word: "end", Pos: tok.Pos, Line: tok.Line, Comment: "unexpected end"}
			}
			opener := open[len(open)-1]
			open = open[:len(open)-1]
			closer := prog.Len()
			switch prog.Instructions[opener].Op {
			case bytecode.OpWhile:
				prog.Append(bytecode.Instruction{Op: bytecode.OpEndWhile, Target: opener, Pos: tok.Pos, Line: tok.Line})
				prog.Patch(opener, closer)
			case bytecode.OpIf, bytecode.OpElse:
				prog.Append(bytecode.Instruction{Op: bytecode.OpEndIf, Pos: tok.Pos, Line: tok.Line})
				prog.Patch(opener, closer)
			default:
				// The resolution stack only ever holds while/if/else
				// indices, so this cannot happen from well-formed pushes.
				return nil, &ParseError{Word: "end", Pos: tok.Pos, Line: tok.Line, Comment: "opener is not a control instruction"}
			}

		case TokenFun:
			i++
			if i >= len(tokens) || tokens[i].Type != TokenIdent {
				return nil, &ParseError{Word: "fun", Pos: tok.Pos, Line: tok.Line, Comment: "expected function name after fun"}
			}
			// The next instruction emitted is the function's entry point.
			prog.Functions[tokens[i].Literal] = prog.Len()

		case TokenIdent:
			entry, ok := prog.Functions[tok.Literal]
			if !ok {
				return nil, &bytecode.FunctionNotFoundError{Name: tok.Literal, Pos: tok.Pos, Line: tok.Line}
			}
			prog.Append(bytecode.Instruction{Op: bytecode.OpCall, Target: entry, Pos: tok.Pos, Line: tok.Line})

		default:
			return nil, &ParseError{Word: tok.Literal, Pos: tok.Pos, Line: tok.Line, Comment: "unexpected token"}
		}
	}

	if len(open) > 0 {
		// Report the outermost unmatched opener at its original position.
		in := prog.Instructions[open[0]]
		word := "while"
		if in.Op == bytecode.OpIf {
			word = "if"
		} else if in.Op == bytecode.OpElse {
			word = "else"
		}
		return nil, &ParseError{Word: word, Pos: in.Pos, Line: in.Line, Comment: "this " + word + " has no matching end"}
	}

	return prog, nil
}

// Compile tokenizes and parses source text in one step.
func Compile(source string) (*bytecode.Program, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}
