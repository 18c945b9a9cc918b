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

// Package emit lowers a semantically analyzed ast.TranslationUnit into an
// ir.Program. Every expression is lowered through one of two entry points,
// mirroring the classical lvalue/rvalue duality: lowerAddr produces the
// operand naming a storage location's address, lowerValue produces the
// operand naming a value, loading from an address when one is needed.
//
// Frame-local variables (auto and parameter) are addressed symbolically as
// "$slot"; their contents are read directly as a value with no explicit
// load, the way a register would be, while &x on a local still costs an
// explicit addr instruction since the downstream toolchain is free to keep
// locals in registers until their address is actually taken. Global,
// extern and function symbols are addressed as "@name"; an array or
// function name used as a value decays to its own address with no load,
// while reading a scalar global incurs one.
package emit

import (
	"strconv"

	"github.com/db47h/b/ast"
	"github.com/db47h/b/config"
	"github.com/db47h/b/diag"
	"github.com/db47h/b/ir"
	"github.com/db47h/b/sema"
	"github.com/db47h/b/sym"
	"github.com/db47h/b/word"
)

// stringPool assigns stable, deterministic IDs to interned string literals
// in first-use order.
type stringPool struct {
	items []ir.StringConst
}

func (p *stringPool) intern(b []byte) string {
	id := "@str" + strconv.Itoa(len(p.items))
	p.items = append(p.items, ir.StringConst{ID: id, Bytes: append([]byte(nil), b...)})
	return id
}

// Program lowers every external definition in tu to an ir.Program. The
// caller must not invoke Program once sink already holds an error (the
// compiler package enforces this gate); analysis failures leave the AST in
// a state that would make emission produce meaningless IR, not a crash,
// but there is no reason to pay for it.
func Program(tu *ast.TranslationUnit, cfg config.Config, sink *diag.Sink) *ir.Program {
	prog := &ir.Program{WordBits: cfg.WordSize.Bits(), PointerMode: cfg.PointerMode.String()}
	pool := &stringPool{}

	for _, decl := range tu.Decls {
		switch v := decl.(type) {
		case *ast.ExternalVariable:
			prog.Globals = append(prog.Globals, lowerGlobal(v, cfg, pool, sink))
		case *ast.FunctionDefinition:
			prog.Funcs = append(prog.Funcs, lowerFunction(v, cfg, pool, sink))
		}
	}
	prog.Strings = pool.items
	return prog
}

func lowerGlobal(v *ast.ExternalVariable, cfg config.Config, pool *stringPool, sink *diag.Sink) ir.Global {
	g := ir.Global{Name: v.Symbol.IRName, Size: v.Symbol.ArraySize}
	for _, init := range v.Initializer {
		g.Init = append(g.Init, lowerConstInit(init, cfg, pool, sink))
	}
	return g
}

func lowerConstInit(e ast.Expr, cfg config.Config, pool *stringPool, sink *diag.Sink) string {
	switch v := e.(type) {
	case *ast.StringLiteral:
		return pool.intern(v.Bytes)
	case *ast.NameReference:
		return "@" + v.Name
	default:
		n, ok := sema.EvalConst(e)
		if !ok {
			sink.Errorf(e.Location(), "global initializer must be a constant expression")
			return "0"
		}
		return maskedLiteral(n, cfg)
	}
}

func maskedLiteral(v int64, cfg config.Config) string {
	return strconv.FormatInt(int64(word.Mask(word.Word(v), cfg.WordSize.Bits())), 10)
}

// ---------------------------------------------------------------------
// Functions
// ---------------------------------------------------------------------

type funcCtx struct {
	b        *ir.Builder
	cfg      config.Config
	pool     *stringPool
	sink     *diag.Sink
	breaks   []string
	continues []string
}

func lowerFunction(fn *ast.FunctionDefinition, cfg config.Config, pool *stringPool, sink *diag.Sink) ir.Function {
	ctx := &funcCtx{
		b:    ir.NewBuilder(fn.Symbol.IRName, len(fn.Params), fn.FrameSize),
		cfg:  cfg,
		pool: pool,
		sink: sink,
	}
	lowerStmt(fn.Body, ctx)
	ctx.b.Emit(ir.OpReturn, "")
	return ctx.b.Function()
}

func bits(cfg config.Config) int { return cfg.WordSize.Bits() }

func scale(cfg config.Config) string {
	if cfg.PointerMode == config.WordAddressed {
		return "1"
	}
	b := cfg.WordSize.Bits()
	if b == 0 {
		b = 64
	}
	return strconv.Itoa(b / 8)
}

// ---------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------

func lowerStmt(s ast.Stmt, ctx *funcCtx) {
	switch v := s.(type) {
	case *ast.Block:
		for _, ad := range v.Autos {
			lowerAutoInit(ad, ctx)
		}
		for _, st := range v.Stmts {
			lowerStmt(st, ctx)
		}
	case *ast.ExprStmt:
		lowerValue(v.X, ctx)
	case *ast.If:
		lowerIf(v, ctx)
	case *ast.While:
		lowerWhile(v, ctx)
	case *ast.Switch:
		lowerSwitch(v, ctx)
	case *ast.Case:
		ctx.b.Emit(ir.OpLabel, v.IRLabel)
		lowerStmt(v.Next, ctx)
	case *ast.Default:
		ctx.b.Emit(ir.OpLabel, v.IRLabel)
		lowerStmt(v.Next, ctx)
	case *ast.Labeled:
		ctx.b.Emit(ir.OpLabel, v.Symbol.IRName)
		lowerStmt(v.Stmt, ctx)
	case *ast.Return:
		if v.X != nil {
			val := lowerValue(v.X, ctx)
			ctx.b.Emit(ir.OpReturn, "", val)
		} else {
			ctx.b.Emit(ir.OpReturn, "")
		}
	case *ast.Goto:
		lowerGoto(v, ctx)
	case *ast.Break:
		if len(ctx.breaks) == 0 {
			ctx.sink.Errorf(v.Location(), "break outside a loop or switch statement")
			return
		}
		ctx.b.Emit(ir.OpGoto, "", ctx.breaks[len(ctx.breaks)-1])
	case *ast.Continue:
		if len(ctx.continues) == 0 {
			ctx.sink.Errorf(v.Location(), "continue outside a loop")
			return
		}
		ctx.b.Emit(ir.OpGoto, "", ctx.continues[len(ctx.continues)-1])
	case *ast.Null:
		// nothing to emit
	}
}

// lowerAutoInit wires an auto array's frame slot to the address of its
// backing storage, reserved immediately after it by the frame layout
// sema assigned; a scalar auto needs no prologue.
func lowerAutoInit(ad *ast.AutoDecl, ctx *funcCtx) {
	if ad.Symbol.ArraySize > 0 {
		slot := "$" + strconv.Itoa(ad.Symbol.FrameSlot)
		backing := "$" + strconv.Itoa(ad.Symbol.FrameSlot+1)
		t := ctx.b.NewTemp()
		ctx.b.Emit(ir.OpAddr, t, backing)
		ctx.b.Emit(ir.OpMove, slot, t)
	}
	if ad.Init != nil {
		val := lowerValue(ad.Init, ctx)
		ctx.b.Emit(ir.OpMove, "$"+strconv.Itoa(ad.Symbol.FrameSlot), val)
	}
}

func lowerIf(v *ast.If, ctx *funcCtx) {
	cond := lowerValue(v.Cond, ctx)
	elseLabel := ctx.b.NewLabel("else")
	ctx.b.Emit(ir.OpIfZero, "", cond, elseLabel)
	lowerStmt(v.Then, ctx)
	if v.Else != nil {
		endLabel := ctx.b.NewLabel("endif")
		ctx.b.Emit(ir.OpGoto, "", endLabel)
		ctx.b.Emit(ir.OpLabel, elseLabel)
		lowerStmt(v.Else, ctx)
		ctx.b.Emit(ir.OpLabel, endLabel)
	} else {
		ctx.b.Emit(ir.OpLabel, elseLabel)
	}
}

func lowerWhile(v *ast.While, ctx *funcCtx) {
	startLabel := ctx.b.NewLabel("whilestart")
	endLabel := ctx.b.NewLabel("whileend")
	ctx.breaks = append(ctx.breaks, endLabel)
	ctx.continues = append(ctx.continues, startLabel)

	ctx.b.Emit(ir.OpLabel, startLabel)
	cond := lowerValue(v.Cond, ctx)
	ctx.b.Emit(ir.OpIfZero, "", cond, endLabel)
	lowerStmt(v.Body, ctx)
	ctx.b.Emit(ir.OpGoto, "", startLabel)
	ctx.b.Emit(ir.OpLabel, endLabel)

	ctx.breaks = ctx.breaks[:len(ctx.breaks)-1]
	ctx.continues = ctx.continues[:len(ctx.continues)-1]
}

// lowerSwitch emits a chain of equality tests against the scrutinee
// followed by the switch body lowered in place, so fall-through between
// case labels at any nesting depth falls naturally out of straight-line
// code with labels dropped at each label site (see lowerStmt's Case and
// Default arms).
func lowerSwitch(v *ast.Switch, ctx *funcCtx) {
	scrutinee := lowerValue(v.Scrutinee, ctx)
	endLabel := ctx.b.NewLabel("switchend")

	for _, c := range v.Cases {
		c.IRLabel = ctx.b.NewLabel("case")
		cmp := ctx.b.NewTemp()
		ctx.b.Emit(ir.OpBinary, cmp, "eq", scrutinee, maskedLiteral(c.Value, ctx.cfg))
		ctx.b.Emit(ir.OpIfNotZero, "", cmp, c.IRLabel)
	}
	if v.Default != nil {
		v.Default.IRLabel = ctx.b.NewLabel("default")
		ctx.b.Emit(ir.OpGoto, "", v.Default.IRLabel)
	} else {
		ctx.b.Emit(ir.OpGoto, "", endLabel)
	}

	ctx.breaks = append(ctx.breaks, endLabel)
	lowerStmt(v.Body, ctx)
	ctx.breaks = ctx.breaks[:len(ctx.breaks)-1]

	ctx.b.Emit(ir.OpLabel, endLabel)
}

func lowerGoto(v *ast.Goto, ctx *funcCtx) {
	if v.Label != "" {
		if nr, ok := v.X.(*ast.NameReference); ok && nr.Symbol != nil && nr.Symbol.Kind == sym.Label {
			ctx.b.Emit(ir.OpGoto, "", nr.Symbol.IRName)
			return
		}
	}
	// Computed goto: the target is an arbitrary pointer-valued expression.
	target := lowerValue(v.X, ctx)
	ctx.b.Emit(ir.OpGotoIndirect, "", target)
}

// ---------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------

var binOpNames = map[ast.BinaryOp]string{
	ast.BAdd: "add", ast.BSub: "sub", ast.BMul: "mul", ast.BDiv: "div", ast.BMod: "mod",
	ast.BShl: "shl", ast.BShr: "shr", ast.BAnd: "and", ast.BOr: "or", ast.BXor: "xor",
	ast.BLt: "lt", ast.BLe: "le", ast.BGt: "gt", ast.BGe: "ge", ast.BEq: "eq", ast.BNe: "ne",
}

func isArithmeticBinOp(op ast.BinaryOp) bool {
	switch op {
	case ast.BLt, ast.BLe, ast.BGt, ast.BGe, ast.BEq, ast.BNe:
		return false
	default:
		return true
	}
}

var assignOpToBinOp = map[ast.AssignOp]ast.BinaryOp{
	ast.AAdd: ast.BAdd, ast.ASub: ast.BSub, ast.AMul: ast.BMul, ast.ADiv: ast.BDiv, ast.AMod: ast.BMod,
	ast.AShl: ast.BShl, ast.AShr: ast.BShr, ast.AAnd: ast.BAnd, ast.AOr: ast.BOr, ast.AXor: ast.BXor,
	ast.ALt: ast.BLt, ast.ALe: ast.BLe, ast.AGt: ast.BGt, ast.AGe: ast.BGe, ast.AEq: ast.BEq, ast.ANe: ast.BNe,
}

// lowerValue lowers e to an operand naming its value.
func lowerValue(e ast.Expr, ctx *funcCtx) string {
	switch v := e.(type) {
	case *ast.IntegerLiteral:
		t := ctx.b.NewTemp()
		ctx.b.Emit(ir.OpConst, t, maskedLiteral(v.Value, ctx.cfg))
		return t
	case *ast.CharLiteral:
		t := ctx.b.NewTemp()
		ctx.b.Emit(ir.OpConst, t, maskedLiteral(v.Value, ctx.cfg))
		return t
	case *ast.StringLiteral:
		id := ctx.pool.intern(v.Bytes)
		t := ctx.b.NewTemp()
		ctx.b.Emit(ir.OpStringRef, t, id)
		return t
	case *ast.NameReference:
		return lowerNameValue(v, ctx)
	case *ast.Unary:
		return lowerUnaryValue(v, ctx)
	case *ast.Binary:
		a := lowerValue(v.Left, ctx)
		b := lowerValue(v.Right, ctx)
		t := ctx.b.NewTemp()
		emitBinary(ctx, t, v.Op, a, b)
		return t
	case *ast.Assign:
		return lowerAssign(v, ctx)
	case *ast.Conditional:
		return lowerConditional(v, ctx)
	case *ast.Call:
		return lowerCall(v, ctx)
	case *ast.Index:
		addr := lowerIndexAddr(v, ctx)
		t := ctx.b.NewTemp()
		ctx.b.Emit(ir.OpLoad, t, addr)
		return t
	default:
		ctx.sink.Errorf(e.Location(), "internal: unhandled expression in emitter")
		return "0"
	}
}

func emitBinary(ctx *funcCtx, dst string, op ast.BinaryOp, a, b string) {
	name := binOpNames[op]
	if isArithmeticBinOp(op) {
		ctx.b.Emit(ir.OpBinary, dst, name, a, b, strconv.Itoa(bits(ctx.cfg)))
	} else {
		ctx.b.Emit(ir.OpBinary, dst, name, a, b)
	}
}

func lowerNameValue(v *ast.NameReference, ctx *funcCtx) string {
	s := v.Symbol
	switch s.Kind {
	case sym.Auto, sym.Parameter:
		return "$" + strconv.Itoa(s.FrameSlot)
	case sym.Function, sym.Label:
		return "@" + s.IRName
	default: // Global, Extern
		if s.ArraySize > 0 {
			return "@" + s.IRName
		}
		t := ctx.b.NewTemp()
		ctx.b.Emit(ir.OpLoad, t, "@"+s.IRName)
		return t
	}
}

func lowerUnaryValue(v *ast.Unary, ctx *funcCtx) string {
	switch v.Op {
	case ast.UAddr:
		return lowerAddr(v.Operand, ctx)
	case ast.UDeref:
		addr := lowerValue(v.Operand, ctx)
		t := ctx.b.NewTemp()
		ctx.b.Emit(ir.OpLoad, t, addr)
		return t
	case ast.UNeg:
		a := lowerValue(v.Operand, ctx)
		t := ctx.b.NewTemp()
		ctx.b.Emit(ir.OpUnary, t, "neg", a, strconv.Itoa(bits(ctx.cfg)))
		return t
	case ast.UCompl:
		a := lowerValue(v.Operand, ctx)
		t := ctx.b.NewTemp()
		ctx.b.Emit(ir.OpUnary, t, "compl", a, strconv.Itoa(bits(ctx.cfg)))
		return t
	case ast.UNot:
		a := lowerValue(v.Operand, ctx)
		t := ctx.b.NewTemp()
		ctx.b.Emit(ir.OpUnary, t, "not", a)
		return t
	case ast.UPreInc, ast.UPreDec, ast.UPostInc, ast.UPostDec:
		return lowerIncDec(v, ctx)
	}
	ctx.sink.Errorf(v.Location(), "internal: unhandled unary operator in emitter")
	return "0"
}

func lowerIncDec(v *ast.Unary, ctx *funcCtx) string {
	addr := lowerAddr(v.Operand, ctx)
	old := ctx.b.NewTemp()
	ctx.b.Emit(ir.OpLoad, old, addr)
	opName := "add"
	if v.Op == ast.UPreDec || v.Op == ast.UPostDec {
		opName = "sub"
	}
	updated := ctx.b.NewTemp()
	ctx.b.Emit(ir.OpBinary, updated, opName, old, "1", strconv.Itoa(bits(ctx.cfg)))
	ctx.b.Emit(ir.OpStore, "", addr, updated)
	if v.Op == ast.UPreInc || v.Op == ast.UPreDec {
		return updated
	}
	return old
}

func lowerAssign(v *ast.Assign, ctx *funcCtx) string {
	addr := lowerAddr(v.Target, ctx)
	if v.Op == ast.APlain {
		val := lowerValue(v.Value, ctx)
		ctx.b.Emit(ir.OpStore, "", addr, val)
		return val
	}
	old := ctx.b.NewTemp()
	ctx.b.Emit(ir.OpLoad, old, addr)
	val := lowerValue(v.Value, ctx)
	t := ctx.b.NewTemp()
	emitBinary(ctx, t, assignOpToBinOp[v.Op], old, val)
	ctx.b.Emit(ir.OpStore, "", addr, t)
	return t
}

func lowerConditional(v *ast.Conditional, ctx *funcCtx) string {
	cond := lowerValue(v.Cond, ctx)
	elseLabel := ctx.b.NewLabel("condelse")
	endLabel := ctx.b.NewLabel("condend")
	result := ctx.b.NewTemp()

	ctx.b.Emit(ir.OpIfZero, "", cond, elseLabel)
	thenVal := lowerValue(v.Then, ctx)
	ctx.b.Emit(ir.OpMove, result, thenVal)
	ctx.b.Emit(ir.OpGoto, "", endLabel)
	ctx.b.Emit(ir.OpLabel, elseLabel)
	elseVal := lowerValue(v.Else, ctx)
	ctx.b.Emit(ir.OpMove, result, elseVal)
	ctx.b.Emit(ir.OpLabel, endLabel)
	return result
}

func lowerCall(v *ast.Call, ctx *funcCtx) string {
	callee := lowerValue(v.Callee, ctx)
	args := make([]string, len(v.Args))
	for i, a := range v.Args {
		args[i] = lowerValue(a, ctx)
	}
	for _, a := range args {
		ctx.b.Emit(ir.OpParam, "", a)
	}
	t := ctx.b.NewTemp()
	ctx.b.Emit(ir.OpCall, t, callee, strconv.Itoa(len(args)))
	return t
}

// lowerAddr lowers e, which must be an lvalue, to an operand naming its
// address.
func lowerAddr(e ast.Expr, ctx *funcCtx) string {
	switch v := e.(type) {
	case *ast.NameReference:
		return lowerNameAddr(v, ctx)
	case *ast.Unary:
		if v.Op == ast.UDeref {
			return lowerValue(v.Operand, ctx)
		}
	case *ast.Index:
		return lowerIndexAddr(v, ctx)
	}
	ctx.sink.Errorf(e.Location(), "internal: not an lvalue in emitter")
	return "0"
}

func lowerNameAddr(v *ast.NameReference, ctx *funcCtx) string {
	s := v.Symbol
	switch s.Kind {
	case sym.Auto, sym.Parameter:
		t := ctx.b.NewTemp()
		ctx.b.Emit(ir.OpAddr, t, "$"+strconv.Itoa(s.FrameSlot))
		return t
	default: // Global, Extern, Function, Label: the symbol name already is the address.
		return "@" + s.IRName
	}
}

func lowerIndexAddr(v *ast.Index, ctx *funcCtx) string {
	base := lowerValue(v.Array, ctx)
	idx := lowerValue(v.Idx, ctx)
	t := ctx.b.NewTemp()
	ctx.b.Emit(ir.OpElemAddr, t, base, idx, scale(ctx.cfg))
	return t
}
