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

// Package compiler orchestrates the pipeline stages (lexer, parser,
// semantic analyzer, emitter) over one or more translation-unit inputs,
// sharing a single Diagnostics Sink and a single global symbol scope so
// that a name defined in one unit is visible from every other unit, in
// either declaration order.
package compiler

import (
	"github.com/db47h/b/ast"
	"github.com/db47h/b/config"
	"github.com/db47h/b/diag"
	"github.com/db47h/b/emit"
	"github.com/db47h/b/ir"
	"github.com/db47h/b/lexer"
	"github.com/db47h/b/parser"
	"github.com/db47h/b/runtime"
	"github.com/db47h/b/sema"
	"github.com/db47h/b/source"
	"github.com/db47h/b/sym"
)

// Result holds everything a compiler invocation produced: the merged AST,
// the diagnostics accumulated across every stage, and the lowered program
// (nil if any stage reported an error, since emitting from a tree with
// unresolved symbols or malformed nodes would be meaningless).
type Result struct {
	Unit  *ast.TranslationUnit
	Diags *diag.Sink
	IR    *ir.Program
}

// CompileUnits runs the full pipeline over units, in order. Parsing happens
// per unit so that a syntax error in one unit does not prevent the others
// from being parsed and reported; all units are then merged into one
// translation unit before semantic analysis, since B has no module system
// and every external name lives in one flat, whole-program namespace.
func CompileUnits(units []source.Unit, cfg config.Config) *Result {
	sink := diag.NewSink()
	tu := &ast.TranslationUnit{Decls: runtimeUnitGlobals()}

	for _, u := range units {
		rd := source.NewReader(u.Name, u.R)
		lex := lexer.New(rd, sink, cfg.WordSize.Bits())
		p := parser.New(lex, sink)
		unitTree := p.ParseFile()
		tu.Decls = append(tu.Decls, unitTree.Decls...)
	}

	global := sym.NewGlobalScope()
	sema.CollectGlobals(tu, global, sink)
	sema.AnalyzeFunctions(tu, global, cfg, sink)
	if sink.HasErrors() {
		return &Result{Unit: tu, Diags: sink}
	}

	prog := emit.Program(tu, cfg, sink)
	if sink.HasErrors() {
		return &Result{Unit: tu, Diags: sink}
	}
	return &Result{Unit: tu, Diags: sink, IR: prog}
}

// runtimeUnitGlobals returns the pre-declared external variables for the
// I/O unit globals rd.unit and wr.unit (runtime.IOUnitGlobals), with their
// documented defaults (runtime.RdUnitDefault, runtime.WrUnitDefault). They
// are synthesized as ordinary ExternalVariable declarations, placed ahead
// of every parsed unit's declarations, so a program may reference them,
// with or without a plain `extrn`, exactly as if they had been declared in
// source; defining either name again is a redefinition error.
func runtimeUnitGlobals() []ast.Decl {
	return []ast.Decl{
		&ast.ExternalVariable{
			Name:        "rd.unit",
			Initializer: []ast.Expr{&ast.IntegerLiteral{Value: int64(runtime.RdUnitDefault), Base: 10}},
		},
		&ast.ExternalVariable{
			Name: "wr.unit",
			Initializer: []ast.Expr{&ast.Unary{
				Op:      ast.UNeg,
				Operand: &ast.IntegerLiteral{Value: 1, Base: 10},
			}},
		},
	}
}
