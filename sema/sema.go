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

// Package sema implements the semantic analyzer: name resolution against
// the chained sym.Scope tables, lvalue validation, function-flat label
// resolution, switch/case collection, and stack-frame slot assignment.
//
// Analysis of a program runs in two passes across all of its translation
// units, mirroring the teacher assembler's forward-reference resolution:
// CollectGlobals registers every external definition's name before any
// function body is examined, so a function may freely reference a global
// or another function defined later in the same unit or in a unit compiled
// after it.
package sema

import (
	"github.com/db47h/b/ast"
	"github.com/db47h/b/config"
	"github.com/db47h/b/diag"
	"github.com/db47h/b/sym"
)

// Analyze runs both passes over a single translation unit with a fresh
// global scope, for callers that only ever compile one unit. Multi-unit
// compilations (see package compiler) call CollectGlobals and
// AnalyzeFunctions directly so every unit shares one global scope.
func Analyze(tu *ast.TranslationUnit, cfg config.Config, sink *diag.Sink) *sym.Scope {
	global := sym.NewGlobalScope()
	CollectGlobals(tu, global, sink)
	AnalyzeFunctions(tu, global, cfg, sink)
	return global
}

// CollectGlobals registers the name of every external definition in tu into
// global, reporting an error for any name already present (a duplicate
// definition, possibly from an earlier unit sharing the same scope).
func CollectGlobals(tu *ast.TranslationUnit, global *sym.Scope, sink *diag.Sink) {
	for _, decl := range tu.Decls {
		switch v := decl.(type) {
		case *ast.ExternalVariable:
			s := &sym.Symbol{Name: v.Name, Kind: sym.Global, Pos: v.Location(), IRName: v.Name}
			if v.ArraySize != nil {
				if n, ok := evalConst(v.ArraySize); ok && n >= 0 {
					s.ArraySize = int(n)
				} else {
					sink.Errorf(v.ArraySize.Location(), "array size must be a non-negative constant expression")
				}
			}
			if !global.DefineLocal(s) {
				sink.Errorf(v.Location(), "redefinition of %q", v.Name)
				continue
			}
			v.Symbol = s
		case *ast.FunctionDefinition:
			s := &sym.Symbol{Name: v.Name, Kind: sym.Function, Pos: v.Location(), IRName: v.Name}
			if !global.DefineLocal(s) {
				sink.Errorf(v.Location(), "redefinition of %q", v.Name)
				continue
			}
			v.Symbol = s
		}
	}
}

// AnalyzeFunctions resolves names, validates lvalues, and assigns frame
// slots inside every function body and every global initializer in tu,
// against the already-populated global scope.
func AnalyzeFunctions(tu *ast.TranslationUnit, global *sym.Scope, cfg config.Config, sink *diag.Sink) {
	for _, decl := range tu.Decls {
		switch v := decl.(type) {
		case *ast.ExternalVariable:
			for _, init := range v.Initializer {
				resolveExpr(init, global, nil, cfg, sink)
			}
		case *ast.FunctionDefinition:
			analyzeFunction(v, global, cfg, sink)
		}
	}
}

func analyzeFunction(fn *ast.FunctionDefinition, global *sym.Scope, cfg config.Config, sink *diag.Sink) {
	fnScope := sym.NewFunctionScope(global)

	fn.ParamSymbols = make([]*sym.Symbol, len(fn.Params))
	frame := 0
	for i, name := range fn.Params {
		s := &sym.Symbol{Name: name, Kind: sym.Parameter, Pos: fn.Location(), FrameSlot: frame}
		frame++
		if !fnScope.DefineLocal(s) {
			sink.Errorf(fn.Location(), "duplicate parameter name %q", name)
			continue
		}
		fn.ParamSymbols[i] = s
	}

	fn.Labels = make(map[string]*ast.Labeled)
	collectLabels(fn.Body, fnScope, fn, sink)

	fn.Switches = nil
	collectSwitches(fn.Body, nil, fn, sink)
	for _, sw := range fn.Switches {
		foldSwitchCases(sw, sink)
	}

	frame = resolveBlock(fn.Body, fnScope, fn, cfg, sink, frame)
	fn.FrameSize = frame
}

// ---------------------------------------------------------------------
// Pass: label collection (function-flat namespace, forward references)
// ---------------------------------------------------------------------

func collectLabels(s ast.Stmt, fnScope *sym.Scope, fn *ast.FunctionDefinition, sink *diag.Sink) {
	switch v := s.(type) {
	case nil:
		return
	case *ast.Block:
		for _, st := range v.Stmts {
			collectLabels(st, fnScope, fn, sink)
		}
	case *ast.If:
		collectLabels(v.Then, fnScope, fn, sink)
		collectLabels(v.Else, fnScope, fn, sink)
	case *ast.While:
		collectLabels(v.Body, fnScope, fn, sink)
	case *ast.Switch:
		collectLabels(v.Body, fnScope, fn, sink)
	case *ast.Case:
		collectLabels(v.Next, fnScope, fn, sink)
	case *ast.Default:
		collectLabels(v.Next, fnScope, fn, sink)
	case *ast.Labeled:
		ls := &sym.Symbol{Name: v.Name, Kind: sym.Label, Pos: v.Location(), IRName: fn.Name + "." + v.Name}
		if !fnScope.DefineLocal(ls) {
			sink.Errorf(v.Location(), "duplicate label %q in function %q", v.Name, fn.Name)
		} else {
			fn.Labels[v.Name] = v
		}
		v.Symbol = ls
		collectLabels(v.Stmt, fnScope, fn, sink)
	}
}

// ---------------------------------------------------------------------
// Pass: switch/case collection
// ---------------------------------------------------------------------

func collectSwitches(s ast.Stmt, sw *ast.Switch, fn *ast.FunctionDefinition, sink *diag.Sink) {
	switch v := s.(type) {
	case nil:
		return
	case *ast.Block:
		for _, st := range v.Stmts {
			collectSwitches(st, sw, fn, sink)
		}
	case *ast.If:
		collectSwitches(v.Then, sw, fn, sink)
		collectSwitches(v.Else, sw, fn, sink)
	case *ast.While:
		collectSwitches(v.Body, sw, fn, sink)
	case *ast.Labeled:
		collectSwitches(v.Stmt, sw, fn, sink)
	case *ast.Switch:
		fn.Switches = append(fn.Switches, v)
		collectSwitches(v.Body, v, fn, sink)
	case *ast.Case:
		if sw == nil {
			sink.Errorf(v.Location(), "case label not within a switch statement")
		} else {
			sw.Cases = append(sw.Cases, v)
		}
		collectSwitches(v.Next, sw, fn, sink)
	case *ast.Default:
		if sw == nil {
			sink.Errorf(v.Location(), "default label not within a switch statement")
		} else if sw.Default != nil {
			sink.Errorf(v.Location(), "multiple default labels in one switch statement")
		} else {
			sw.Default = v
		}
		collectSwitches(v.Next, sw, fn, sink)
	}
}

func foldSwitchCases(sw *ast.Switch, sink *diag.Sink) {
	seen := make(map[int64]bool, len(sw.Cases))
	for _, c := range sw.Cases {
		n, ok := evalConst(c.ConstExpr)
		if !ok {
			sink.Errorf(c.ConstExpr.Location(), "case label is not a constant expression")
			continue
		}
		c.Value = n
		if seen[n] {
			sink.Errorf(c.Location(), "duplicate case value %d", n)
		}
		seen[n] = true
	}
}

// EvalConst folds the restricted constant-expression grammar accepted in
// case labels, array-size declarations and global initializers: integer
// and character literals, and unary negation/complement thereof.
func EvalConst(e ast.Expr) (int64, bool) {
	return evalConst(e)
}

func evalConst(e ast.Expr) (int64, bool) {
	switch v := e.(type) {
	case *ast.IntegerLiteral:
		return v.Value, true
	case *ast.CharLiteral:
		return v.Value, true
	case *ast.Unary:
		n, ok := evalConst(v.Operand)
		if !ok {
			return 0, false
		}
		switch v.Op {
		case ast.UNeg:
			return -n, true
		case ast.UCompl:
			return ^n, true
		}
	}
	return 0, false
}

// ---------------------------------------------------------------------
// Pass: name resolution, lvalue validation, frame slot assignment
// ---------------------------------------------------------------------

func resolveBlock(s ast.Stmt, scope *sym.Scope, fn *ast.FunctionDefinition, cfg config.Config, sink *diag.Sink, frame int) int {
	b, ok := s.(*ast.Block)
	if !ok {
		resolveStmt(s, scope, fn, cfg, sink)
		return frame
	}
	inner := sym.NewBlockScope(scope)
	for _, ad := range b.Autos {
		frame = defineAuto(ad, inner, fn, cfg, sink, frame)
	}
	for _, ed := range b.Externs {
		defineExtern(ed, inner, sink)
	}
	for _, st := range b.Stmts {
		frame = resolveStmtFrame(st, inner, fn, cfg, sink, frame)
	}
	return frame
}

// resolveStmtFrame dispatches to resolveBlock for nested blocks (so their
// autos extend the running frame counter) and to resolveStmt otherwise.
func resolveStmtFrame(s ast.Stmt, scope *sym.Scope, fn *ast.FunctionDefinition, cfg config.Config, sink *diag.Sink, frame int) int {
	switch v := s.(type) {
	case *ast.Block:
		return resolveBlock(v, scope, fn, cfg, sink, frame)
	case *ast.If:
		resolveExpr(v.Cond, scope, fn, cfg, sink)
		frame = resolveStmtFrame(v.Then, scope, fn, cfg, sink, frame)
		if v.Else != nil {
			frame = resolveStmtFrame(v.Else, scope, fn, cfg, sink, frame)
		}
		return frame
	case *ast.While:
		resolveExpr(v.Cond, scope, fn, cfg, sink)
		return resolveStmtFrame(v.Body, scope, fn, cfg, sink, frame)
	case *ast.Switch:
		resolveExpr(v.Scrutinee, scope, fn, cfg, sink)
		return resolveStmtFrame(v.Body, scope, fn, cfg, sink, frame)
	case *ast.Labeled:
		return resolveStmtFrame(v.Stmt, scope, fn, cfg, sink, frame)
	case *ast.Case:
		return resolveStmtFrame(v.Next, scope, fn, cfg, sink, frame)
	case *ast.Default:
		return resolveStmtFrame(v.Next, scope, fn, cfg, sink, frame)
	default:
		resolveStmt(s, scope, fn, cfg, sink)
		return frame
	}
}

func resolveStmt(s ast.Stmt, scope *sym.Scope, fn *ast.FunctionDefinition, cfg config.Config, sink *diag.Sink) {
	switch v := s.(type) {
	case *ast.ExprStmt:
		resolveExpr(v.X, scope, fn, cfg, sink)
	case *ast.Return:
		if v.X != nil {
			resolveExpr(v.X, scope, fn, cfg, sink)
		}
	case *ast.Goto:
		resolveExpr(v.X, scope, fn, cfg, sink)
		if v.Label != "" {
			if fn == nil || fn.Labels[v.Label] == nil {
				sink.Errorf(v.Location(), "goto: undefined label %q", v.Label)
			}
		}
	case *ast.Break, *ast.Continue, *ast.Null:
		// no names to resolve
	}
}

func defineAuto(ad *ast.AutoDecl, scope *sym.Scope, fn *ast.FunctionDefinition, cfg config.Config, sink *diag.Sink, frame int) int {
	s := &sym.Symbol{Name: ad.Name, Kind: sym.Auto, Pos: ad.Location(), FrameSlot: frame}
	if ad.ArraySize != nil {
		if n, ok := evalConst(ad.ArraySize); ok && n >= 0 {
			s.ArraySize = int(n)
		} else {
			sink.Errorf(ad.ArraySize.Location(), "array size must be a non-negative constant expression")
		}
	}
	frame += 1 + s.ArraySize
	if !scope.DefineLocal(s) {
		sink.Errorf(ad.Location(), "redeclaration of %q in this block", ad.Name)
		return frame
	}
	ad.Symbol = s
	fn.Locals = append(fn.Locals, s)
	if ad.Init != nil {
		resolveExpr(ad.Init, scope, fn, cfg, sink)
	}
	return frame
}

func defineExtern(ed *ast.ExternDecl, scope *sym.Scope, sink *diag.Sink) {
	global := scope.Global()
	ed.Symbols = make([]*sym.Symbol, len(ed.Names))
	for i, name := range ed.Names {
		s, found := global.LookupLocal(name)
		if !found {
			s = &sym.Symbol{Name: name, Kind: sym.Extern, Pos: ed.Location(), IRName: name}
			global.DefineLocal(s)
		}
		ed.Symbols[i] = s
		if !scope.DefineLocal(s) {
			sink.Errorf(ed.Location(), "name %q already declared in this scope", name)
		}
	}
}

func resolveExpr(e ast.Expr, scope *sym.Scope, fn *ast.FunctionDefinition, cfg config.Config, sink *diag.Sink) {
	switch v := e.(type) {
	case *ast.IntegerLiteral, *ast.CharLiteral, *ast.StringLiteral:
		// no names to resolve, never an lvalue
	case *ast.NameReference:
		s, found := scope.Lookup(v.Name)
		if found == nil {
			global := scope.Global()
			s = &sym.Symbol{Name: v.Name, Kind: sym.Extern, Pos: v.Location(), IRName: v.Name, Implicit: true}
			global.DefineLocal(s)
			sink.Warnf(v.Location(), "%q is not declared; treating it as an implicit extrn", v.Name)
		}
		v.Symbol = s
		v.SetLvalue(s.Kind.IsLvalueKind())
	case *ast.Unary:
		resolveExpr(v.Operand, scope, fn, cfg, sink)
		switch v.Op {
		case ast.UAddr:
			if !isLvalue(v.Operand) {
				sink.Errorf(v.Location(), "operand of unary & must be an lvalue")
			}
		case ast.UDeref:
			v.SetLvalue(true)
		case ast.UPreInc, ast.UPreDec, ast.UPostInc, ast.UPostDec:
			if !isLvalue(v.Operand) {
				sink.Errorf(v.Location(), "operand of %s must be an lvalue", incDecName(v.Op))
			}
		}
	case *ast.Binary:
		resolveExpr(v.Left, scope, fn, cfg, sink)
		resolveExpr(v.Right, scope, fn, cfg, sink)
	case *ast.Assign:
		resolveExpr(v.Target, scope, fn, cfg, sink)
		resolveExpr(v.Value, scope, fn, cfg, sink)
		if !isLvalue(v.Target) {
			sink.Errorf(v.Location(), "assignment to non-lvalue expression")
		}
	case *ast.Conditional:
		resolveExpr(v.Cond, scope, fn, cfg, sink)
		resolveExpr(v.Then, scope, fn, cfg, sink)
		resolveExpr(v.Else, scope, fn, cfg, sink)
	case *ast.Call:
		resolveExpr(v.Callee, scope, fn, cfg, sink)
		for _, a := range v.Args {
			resolveExpr(a, scope, fn, cfg, sink)
		}
	case *ast.Index:
		resolveExpr(v.Array, scope, fn, cfg, sink)
		resolveExpr(v.Idx, scope, fn, cfg, sink)
		v.SetLvalue(true)
	}
}

func isLvalue(e ast.Expr) bool {
	lv, ok := e.(ast.Lvaluer)
	return ok && lv.Lvalue()
}

func incDecName(op ast.UnaryOp) string {
	switch op {
	case ast.UPreInc, ast.UPostInc:
		return "++"
	default:
		return "--"
	}
}
