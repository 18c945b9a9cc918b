// Package token defines the lexical token vocabulary produced by the B
// lexer and consumed by the parser.
package token

import "github.com/db47h/b/source"

// Kind tags the variant of a Token.
type Kind int

// Token kinds.
const (
	EOF Kind = iota
	Ident
	Keyword
	Number
	CharConst
	StringConst
	Punct
	Operator
	CompoundAssign
	RelAssign
	IncDec

	// Error marks a fatal I/O failure on the underlying source.Reader: the
	// lexer could not read further input at all, as opposed to having
	// cleanly reached the end of it. It is terminal, like EOF, but callers
	// that care about the distinction should check it separately so a
	// genuine read failure is not mistaken for a clean end of input.
	Error
)

// Op identifies an operator embedded in an operator-family token
// (Operator, CompoundAssign, RelAssign, IncDec).
type Op int

// Binary/unary operator identities. Not every Op applies to every Kind; see
// the field comments on Token.
const (
	OpNone Op = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpShl
	OpShr
	OpAnd // bitwise/logical &
	OpOr  // bitwise/logical |
	OpXor
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpNot    // unary !
	OpCompl  // unary ~
	OpNeg    // unary -
	OpAddr   // unary &
	OpDeref  // unary *
	OpInc    // ++
	OpDec    // --
)

// Keywords is the set of B keyword spellings, used by the lexer to classify
// identifiers as Keyword-kind tokens.
var Keywords = map[string]bool{
	"auto": true, "extrn": true, "if": true, "else": true, "while": true,
	"return": true, "goto": true, "switch": true, "case": true,
	"default": true, "break": true, "continue": true,
}

// Token is a single lexical token with its source location.
type Token struct {
	Kind Kind
	Pos  source.Position

	// Text is the raw spelling for Ident/Keyword/Punct, or the opcode
	// spelling ("=+" , "=<=", "++", ...) for operator-family kinds.
	Text string

	// Op carries the embedded operator for Operator, CompoundAssign,
	// RelAssign and IncDec tokens.
	Op Op

	// IntValue carries the decoded value for Number (the integer value)
	// and CharConst (the packed word value).
	IntValue int64

	// Base is 8 or 10, recorded for Number tokens so literals can be
	// round-tripped in diagnostics.
	Base int

	// Bytes carries the decoded byte sequence (including the trailing EOT
	// sentinel) for StringConst tokens.
	Bytes []byte
}

// Terminal reports whether t ends the token stream, either cleanly (EOF) or
// because the source could no longer be read (Error).
func (t Token) Terminal() bool {
	return t.Kind == EOF || t.Kind == Error
}

func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return "<eof>"
	case Error:
		return "<error>"
	case Ident, Keyword, Punct:
		return t.Text
	case Number:
		return t.Text
	case CharConst:
		return "'" + t.Text + "'"
	case StringConst:
		return "\"" + t.Text + "\""
	default:
		return t.Text
	}
}
