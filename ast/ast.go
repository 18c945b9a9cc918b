// This file is part of b - a core compiler for the historical B language.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ast defines the tagged tree produced by the parser: declarations,
// statements and expressions, each carrying its source location. Every node
// is created by the parser and is immutable after semantic analysis except
// for the annotation fields noted on each type, which the semantic analyzer
// sets exactly once.
package ast

import (
	"github.com/db47h/b/source"
	"github.com/db47h/b/sym"
)

// Node is implemented by every tree node.
type Node interface {
	Location() source.Position
}

// Loc embeds a Position and supplies Node's Location method.
type Loc struct {
	Pos source.Position
}

// Location returns the node's source position.
func (b Loc) Location() source.Position { return b.Pos }

// ---------------------------------------------------------------------
// Declarations
// ---------------------------------------------------------------------

// Decl is implemented by the two external-definition node kinds.
type Decl interface {
	Node
	declNode()
}

// ExternalVariable is a top-level `name [size] init, init, …;` definition.
type ExternalVariable struct {
	Loc
	Name        string
	ArraySize   Expr // nil if no [size] was given
	Initializer []Expr
	Symbol      *sym.Symbol // set by the semantic analyzer
}

func (*ExternalVariable) declNode() {}

// FunctionDefinition is a top-level `name(params) body` definition.
type FunctionDefinition struct {
	Loc
	Name   string
	Params []string
	Body   *Block

	Symbol *sym.Symbol // set by the semantic analyzer

	// The following are populated by the semantic analyzer's per-function
	// passes.
	ParamSymbols []*sym.Symbol
	Locals       []*sym.Symbol // Auto locals in declaration order
	Labels       map[string]*Labeled
	Switches     []*Switch
	FrameSize    int
}

func (*FunctionDefinition) declNode() {}

// TranslationUnit is the top-level sequence of external definitions from
// all input units of one compiler invocation, in source order.
type TranslationUnit struct {
	Decls []Decl
}

// ---------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// AutoDecl is one `auto` binding inside a Block's declaration list.
type AutoDecl struct {
	Loc
	Name      string
	ArraySize Expr // nil if scalar
	Init      Expr // nil if uninitialized
	Symbol    *sym.Symbol
}

// ExternDecl is one `extrn name, …;` declaration inside a Block.
type ExternDecl struct {
	Loc
	Names   []string
	Symbols []*sym.Symbol
}

// Block is `{ declarations; statements }`; it opens a new lexical scope.
type Block struct {
	Loc
	Autos   []*AutoDecl
	Externs []*ExternDecl
	Stmts   []Stmt
}

func (*Block) stmtNode() {}

// ExprStmt is an expression used as a statement.
type ExprStmt struct {
	Loc
	X Expr
}

func (*ExprStmt) stmtNode() {}

// If is `if (cond) then [else else_]`.
type If struct {
	Loc
	Cond Expr
	Then Stmt
	Else Stmt // nil if no else clause
}

func (*If) stmtNode() {}

// While is `while (cond) body`.
type While struct {
	Loc
	Cond Expr
	Body Stmt
}

func (*While) stmtNode() {}

// Return is `return [expr];`.
type Return struct {
	Loc
	X Expr // nil for the bare form
}

func (*Return) stmtNode() {}

// Goto is `goto expr;`. Classical B allows any expression; in practice it
// is always an identifier, recorded in Label when the target was a bare
// identifier so the analyzer can resolve it.
type Goto struct {
	Loc
	X     Expr
	Label string // "" if X was not a bare identifier
}

func (*Goto) stmtNode() {}

// Labeled is `name: stmt`.
type Labeled struct {
	Loc
	Name string
	Stmt Stmt

	Symbol *sym.Symbol // set by the semantic analyzer
}

func (*Labeled) stmtNode() {}

// Switch is `switch expr { body }`. Case and Default nodes are collected
// from the body at arbitrary nesting depth by the semantic analyzer.
type Switch struct {
	Loc
	Scrutinee Expr
	Body      Stmt

	// Cases and Default are populated by the semantic analyzer's
	// switch/case collection pass, in source order.
	Cases   []*Case
	Default *Default
}

func (*Switch) stmtNode() {}

// Case is `case constant: ` attached, as a label, to the following
// statement. LocMarker distinguishes repeated Case nodes at the same
// address during dispatch-table generation.
type Case struct {
	Loc
	ConstExpr Expr
	Value     int64 // set by the semantic analyzer after constant folding
	Next      Stmt  // the statement the case label attaches to

	IRLabel string // set by the emitter
}

func (*Case) stmtNode() {}

// Default is `default:`.
type Default struct {
	Loc
	Next Stmt

	IRLabel string // set by the emitter
}

func (*Default) stmtNode() {}

// Break is `break;`.
type Break struct{ Loc }

func (*Break) stmtNode() {}

// Continue is `continue;`.
type Continue struct{ Loc }

func (*Continue) stmtNode() {}

// Null is the empty statement `;`.
type Null struct{ Loc }

func (*Null) stmtNode() {}

// ---------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------

// Expr is implemented by every expression node. After semantic analysis,
// IsLvalue reports whether the expression is assignable.
type Expr interface {
	Node
	exprNode()
}

// exprAnnot carries the fields the semantic analyzer sets on every
// expression node exactly once.
type exprAnnot struct {
	IsLvalue bool
}

// IntegerLiteral is a decimal or octal integer constant.
type IntegerLiteral struct {
	Loc
	Value int64
	Base  int // 8 or 10
	exprAnnot
}

func (*IntegerLiteral) exprNode() {}

// CharLiteral is a packed multi-character constant.
type CharLiteral struct {
	Loc
	Value int64
	exprAnnot
}

func (*CharLiteral) exprNode() {}

// StringLiteral is a byte sequence with an EOT terminator appended by the
// lexer.
type StringLiteral struct {
	Loc
	Bytes []byte // includes the trailing EOT (4) byte
	exprAnnot
}

func (*StringLiteral) exprNode() {}

// NameReference is an identifier used as an expression; Symbol is resolved
// by the semantic analyzer.
type NameReference struct {
	Loc
	Name   string
	Symbol *sym.Symbol
	exprAnnot
}

func (*NameReference) exprNode() {}

// UnaryOp identifies a unary operator.
type UnaryOp int

// Unary operators.
const (
	UNeg UnaryOp = iota
	UNot
	UCompl
	UAddr
	UDeref
	UPreInc
	UPreDec
	UPostInc
	UPostDec
)

// Unary is a prefix or postfix unary operation.
type Unary struct {
	Loc
	Op      UnaryOp
	Operand Expr
	exprAnnot
}

func (*Unary) exprNode() {}

// BinaryOp identifies a binary operator.
type BinaryOp int

// Binary operators.
const (
	BAdd BinaryOp = iota
	BSub
	BMul
	BDiv
	BMod
	BShl
	BShr
	BAnd
	BOr
	BXor
	BLt
	BLe
	BGt
	BGe
	BEq
	BNe
)

// Binary is a binary operation.
type Binary struct {
	Loc
	Op    BinaryOp
	Left  Expr
	Right Expr
	exprAnnot
}

func (*Binary) exprNode() {}

// AssignOp identifies the operation embedded in an Assign node.
type AssignOp int

// Assignment operator forms: plain `=`, compound `=op`, and relational
// `=rel` (yielding 0 or 1).
const (
	APlain AssignOp = iota
	AAdd
	ASub
	AMul
	ADiv
	AMod
	AShl
	AShr
	AAnd
	AOr
	AXor
	ALt
	ALe
	AGt
	AGe
	AEq
	ANe
)

// Assign is `target op= value` (or plain `target = value`).
type Assign struct {
	Loc
	Op     AssignOp
	Target Expr
	Value  Expr
	exprAnnot
}

func (*Assign) exprNode() {}

// Conditional is `cond ? then : else`.
type Conditional struct {
	Loc
	Cond Expr
	Then Expr
	Else Expr
	exprAnnot
}

func (*Conditional) exprNode() {}

// Call is `callee(args…)`.
type Call struct {
	Loc
	Callee Expr
	Args   []Expr
	exprAnnot
}

func (*Call) exprNode() {}

// Index is `array[index]`, equivalent to `*(array + index)`.
type Index struct {
	Loc
	Array Expr
	Idx   Expr
	exprAnnot
}

func (*Index) exprNode() {}

// SetLvalue and Lvalue let the semantic analyzer and emitter read/write the
// shared lvalue annotation without a type switch on every Expr variant; it
// is implemented on every concrete Expr type below.
type Lvaluer interface {
	SetLvalue(bool)
	Lvalue() bool
}

func (e *IntegerLiteral) SetLvalue(v bool) { e.IsLvalue = v }
func (e *IntegerLiteral) Lvalue() bool     { return e.IsLvalue }
func (e *CharLiteral) SetLvalue(v bool)    { e.IsLvalue = v }
func (e *CharLiteral) Lvalue() bool        { return e.IsLvalue }
func (e *StringLiteral) SetLvalue(v bool)  { e.IsLvalue = v }
func (e *StringLiteral) Lvalue() bool      { return e.IsLvalue }
func (e *NameReference) SetLvalue(v bool)  { e.IsLvalue = v }
func (e *NameReference) Lvalue() bool      { return e.IsLvalue }
func (e *Unary) SetLvalue(v bool)          { e.IsLvalue = v }
func (e *Unary) Lvalue() bool              { return e.IsLvalue }
func (e *Binary) SetLvalue(v bool)         { e.IsLvalue = v }
func (e *Binary) Lvalue() bool             { return e.IsLvalue }
func (e *Assign) SetLvalue(v bool)         { e.IsLvalue = v }
func (e *Assign) Lvalue() bool             { return e.IsLvalue }
func (e *Conditional) SetLvalue(v bool)    { e.IsLvalue = v }
func (e *Conditional) Lvalue() bool        { return e.IsLvalue }
func (e *Call) SetLvalue(v bool)           { e.IsLvalue = v }
func (e *Call) Lvalue() bool               { return e.IsLvalue }
func (e *Index) SetLvalue(v bool)          { e.IsLvalue = v }
func (e *Index) Lvalue() bool              { return e.IsLvalue }
