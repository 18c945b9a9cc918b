package parser

import (
	"strings"
	"testing"

	"github.com/db47h/b/ast"
	"github.com/db47h/b/diag"
	"github.com/db47h/b/lexer"
	"github.com/db47h/b/source"
)

func parse(t *testing.T, src string) (*ast.TranslationUnit, *diag.Sink) {
	t.Helper()
	sink := diag.NewSink()
	rd := source.NewReader("t.b", strings.NewReader(src))
	lx := lexer.New(rd, sink, 0)
	p := New(lx, sink)
	return p.ParseFile(), sink
}

func TestParseFunctionDefinition(t *testing.T) {
	tu, sink := parse(t, "main(argc, argv) { return 0; }")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Err())
	}
	if len(tu.Decls) != 1 {
		t.Fatalf("expected 1 decl, got %d", len(tu.Decls))
	}
	fn, ok := tu.Decls[0].(*ast.FunctionDefinition)
	if !ok {
		t.Fatalf("expected FunctionDefinition, got %T", tu.Decls[0])
	}
	if fn.Name != "main" || len(fn.Params) != 2 || fn.Params[0] != "argc" || fn.Params[1] != "argv" {
		t.Fatalf("bad function def: %+v", fn)
	}
	if len(fn.Body.Stmts) != 1 {
		t.Fatalf("expected 1 statement in body, got %d", len(fn.Body.Stmts))
	}
	ret, ok := fn.Body.Stmts[0].(*ast.Return)
	if !ok {
		t.Fatalf("expected Return, got %T", fn.Body.Stmts[0])
	}
	lit, ok := ret.X.(*ast.IntegerLiteral)
	if !ok || lit.Value != 0 {
		t.Fatalf("expected return 0, got %+v", ret.X)
	}
}

func TestParseExternalVariableWithArray(t *testing.T) {
	tu, sink := parse(t, "v[3] 1, 2, 3;")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Err())
	}
	ev, ok := tu.Decls[0].(*ast.ExternalVariable)
	if !ok {
		t.Fatalf("expected ExternalVariable, got %T", tu.Decls[0])
	}
	if ev.ArraySize == nil || len(ev.Initializer) != 3 {
		t.Fatalf("bad external variable: %+v", ev)
	}
}

func TestParseAutoAndExtrn(t *testing.T) {
	tu, sink := parse(t, "f() { auto x, y[10]; extrn z; x = y[0]; }")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Err())
	}
	fn := tu.Decls[0].(*ast.FunctionDefinition)
	if len(fn.Body.Autos) != 2 || fn.Body.Autos[1].ArraySize == nil {
		t.Fatalf("bad autos: %+v", fn.Body.Autos)
	}
	if len(fn.Body.Externs) != 1 || fn.Body.Externs[0].Names[0] != "z" {
		t.Fatalf("bad externs: %+v", fn.Body.Externs)
	}
}

func TestDanglingElseBindsToNearestIf(t *testing.T) {
	tu, sink := parse(t, "f() { if (a) if (b) x; else y; }")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Err())
	}
	fn := tu.Decls[0].(*ast.FunctionDefinition)
	outer := fn.Body.Stmts[0].(*ast.If)
	if outer.Else != nil {
		t.Fatalf("outer if should have no else")
	}
	inner, ok := outer.Then.(*ast.If)
	if !ok || inner.Else == nil {
		t.Fatalf("inner if should carry the else clause, got %+v", outer.Then)
	}
}

func TestLabeledStatementVsExpressionStatement(t *testing.T) {
	tu, sink := parse(t, "f() { loop: x = 1; y = 2; }")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Err())
	}
	fn := tu.Decls[0].(*ast.FunctionDefinition)
	lbl, ok := fn.Body.Stmts[0].(*ast.Labeled)
	if !ok || lbl.Name != "loop" {
		t.Fatalf("expected Labeled statement, got %+v", fn.Body.Stmts[0])
	}
	if _, ok := lbl.Stmt.(*ast.ExprStmt); !ok {
		t.Fatalf("expected labeled stmt to wrap an ExprStmt, got %T", lbl.Stmt)
	}
	if _, ok := fn.Body.Stmts[1].(*ast.ExprStmt); !ok {
		t.Fatalf("expected plain ExprStmt, got %T", fn.Body.Stmts[1])
	}
}

func TestSwitchWithNestedCases(t *testing.T) {
	src := `f() {
		switch (x) {
			case 1:
			case 2:
				y = 1;
				break;
			default:
				y = 2;
		}
	}`
	tu, sink := parse(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Err())
	}
	fn := tu.Decls[0].(*ast.FunctionDefinition)
	sw, ok := fn.Body.Stmts[0].(*ast.Switch)
	if !ok {
		t.Fatalf("expected Switch, got %T", fn.Body.Stmts[0])
	}
	body, ok := sw.Body.(*ast.Block)
	if !ok || len(body.Stmts) != 3 {
		t.Fatalf("expected switch body block with 3 stmts (case chain, break, default), got %+v", sw.Body)
	}
	c1, ok := body.Stmts[0].(*ast.Case)
	if !ok {
		t.Fatalf("expected top Case, got %T", body.Stmts[0])
	}
	if _, ok := c1.Next.(*ast.Case); !ok {
		t.Fatalf("expected chained Case, got %T", c1.Next)
	}
}

func TestSwitchScrutineeParenthesesAreOptional(t *testing.T) {
	src := `f() {
		switch x {
			case 1:
				y = 1;
		}
	}`
	tu, sink := parse(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Err())
	}
	fn := tu.Decls[0].(*ast.FunctionDefinition)
	sw, ok := fn.Body.Stmts[0].(*ast.Switch)
	if !ok {
		t.Fatalf("expected Switch, got %T", fn.Body.Stmts[0])
	}
	ref, ok := sw.Scrutinee.(*ast.NameReference)
	if !ok || ref.Name != "x" {
		t.Fatalf("expected scrutinee to be a bare NameReference to x, got %+v", sw.Scrutinee)
	}
}

func TestGotoCapturesLabelName(t *testing.T) {
	tu, sink := parse(t, "f() { goto done; done: return; }")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Err())
	}
	fn := tu.Decls[0].(*ast.FunctionDefinition)
	g, ok := fn.Body.Stmts[0].(*ast.Goto)
	if !ok || g.Label != "done" {
		t.Fatalf("expected Goto with Label=done, got %+v", fn.Body.Stmts[0])
	}
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	tu, sink := parse(t, "f() { x = y = 1; }")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Err())
	}
	fn := tu.Decls[0].(*ast.FunctionDefinition)
	es := fn.Body.Stmts[0].(*ast.ExprStmt)
	outer, ok := es.X.(*ast.Assign)
	if !ok || outer.Op != ast.APlain {
		t.Fatalf("expected outer plain assign, got %+v", es.X)
	}
	inner, ok := outer.Value.(*ast.Assign)
	if !ok || inner.Op != ast.APlain {
		t.Fatalf("expected nested plain assign, got %+v", outer.Value)
	}
}

func TestCompoundAssignMinusOne(t *testing.T) {
	// x=-1 lexes as CompoundAssign '=-' followed by 1, so it parses as
	// a subtraction-assign, not a plain assign of a negative literal.
	tu, sink := parse(t, "f() { x=-1; }")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Err())
	}
	fn := tu.Decls[0].(*ast.FunctionDefinition)
	es := fn.Body.Stmts[0].(*ast.ExprStmt)
	asn, ok := es.X.(*ast.Assign)
	if !ok || asn.Op != ast.ASub {
		t.Fatalf("expected compound sub-assign, got %+v", es.X)
	}
	lit, ok := asn.Value.(*ast.IntegerLiteral)
	if !ok || lit.Value != 1 {
		t.Fatalf("expected value 1, got %+v", asn.Value)
	}
}

func TestPrecedenceBitwiseVsRelational(t *testing.T) {
	// a & b == c parses as a & (b == c): & binds looser than equality in
	// this grammar.
	tu, sink := parse(t, "f() { x = a & b == c; }")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Err())
	}
	fn := tu.Decls[0].(*ast.FunctionDefinition)
	es := fn.Body.Stmts[0].(*ast.ExprStmt)
	asn := es.X.(*ast.Assign)
	bin, ok := asn.Value.(*ast.Binary)
	if !ok || bin.Op != ast.BAnd {
		t.Fatalf("expected top-level BAnd, got %+v", asn.Value)
	}
	if _, ok := bin.Right.(*ast.Binary); !ok {
		t.Fatalf("expected equality nested under &, got %+v", bin.Right)
	}
}

func TestCallAndIndexPostfix(t *testing.T) {
	tu, sink := parse(t, "f() { x = a[i](1, 2); }")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Err())
	}
	fn := tu.Decls[0].(*ast.FunctionDefinition)
	es := fn.Body.Stmts[0].(*ast.ExprStmt)
	asn := es.X.(*ast.Assign)
	call, ok := asn.Value.(*ast.Call)
	if !ok || len(call.Args) != 2 {
		t.Fatalf("expected Call with 2 args, got %+v", asn.Value)
	}
	if _, ok := call.Callee.(*ast.Index); !ok {
		t.Fatalf("expected Index callee, got %T", call.Callee)
	}
}

func TestUnaryAddrAndDeref(t *testing.T) {
	tu, sink := parse(t, "f() { x = *&y; }")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Err())
	}
	fn := tu.Decls[0].(*ast.FunctionDefinition)
	es := fn.Body.Stmts[0].(*ast.ExprStmt)
	asn := es.X.(*ast.Assign)
	deref, ok := asn.Value.(*ast.Unary)
	if !ok || deref.Op != ast.UDeref {
		t.Fatalf("expected UDeref, got %+v", asn.Value)
	}
	addr, ok := deref.Operand.(*ast.Unary)
	if !ok || addr.Op != ast.UAddr {
		t.Fatalf("expected UAddr operand, got %+v", deref.Operand)
	}
}
