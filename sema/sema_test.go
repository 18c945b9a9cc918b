package sema

import (
	"strings"
	"testing"

	"github.com/db47h/b/ast"
	"github.com/db47h/b/config"
	"github.com/db47h/b/diag"
	"github.com/db47h/b/lexer"
	"github.com/db47h/b/parser"
	"github.com/db47h/b/source"
	"github.com/db47h/b/sym"
)

func analyze(t *testing.T, src string) (*ast.TranslationUnit, *sym.Scope, *diag.Sink) {
	t.Helper()
	sink := diag.NewSink()
	rd := source.NewReader("t.b", strings.NewReader(src))
	lx := lexer.New(rd, sink, 0)
	p := parser.New(lx, sink)
	tu := p.ParseFile()
	if sink.HasErrors() {
		t.Fatalf("parse errors: %v", sink.Err())
	}
	global := Analyze(tu, config.Default(), sink)
	return tu, global, sink
}

func findFunc(tu *ast.TranslationUnit, name string) *ast.FunctionDefinition {
	for _, d := range tu.Decls {
		if fn, ok := d.(*ast.FunctionDefinition); ok && fn.Name == name {
			return fn
		}
	}
	return nil
}

func TestImplicitExternWarns(t *testing.T) {
	_, global, sink := analyze(t, "f() { return undeclared_name; }")
	if sink.HasErrors() {
		t.Fatalf("implicit extern should warn, not error: %v", sink.Err())
	}
	if sink.Len() == 0 {
		t.Fatal("expected a warning for the implicit extern")
	}
	s, ok := global.LookupLocal("undeclared_name")
	if !ok || s.Kind != sym.Extern || !s.Implicit {
		t.Fatalf("expected an implicit Extern symbol, got %+v", s)
	}
}

func TestDuplicateGlobalIsError(t *testing.T) {
	_, _, sink := analyze(t, "x; x;")
	if !sink.HasErrors() {
		t.Fatal("expected a redefinition error")
	}
}

func TestAddressOfNonLvalueIsError(t *testing.T) {
	_, _, sink := analyze(t, "f() { return &1; }")
	if !sink.HasErrors() {
		t.Fatal("expected an error for &1")
	}
}

func TestIncrementOfNonLvalueIsError(t *testing.T) {
	_, _, sink := analyze(t, "f() { auto x; x = (x+1)++; }")
	if !sink.HasErrors() {
		t.Fatal("expected an error for incrementing a non-lvalue")
	}
}

func TestDerefIsAlwaysLvalue(t *testing.T) {
	_, _, sink := analyze(t, "f() { auto p; *p = 1; }")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Err())
	}
}

func TestIndexIsAlwaysLvalue(t *testing.T) {
	_, _, sink := analyze(t, "v[10]; f() { v[0] = 1; }")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Err())
	}
}

func TestForwardGotoResolves(t *testing.T) {
	tu, _, sink := analyze(t, "f() { goto done; done: return; }")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Err())
	}
	fn := findFunc(tu, "f")
	if fn.Labels["done"] == nil {
		t.Fatal("expected label 'done' to be collected")
	}
}

func TestUndefinedGotoLabelIsError(t *testing.T) {
	_, _, sink := analyze(t, "f() { goto nowhere; }")
	if !sink.HasErrors() {
		t.Fatal("expected an undefined-label error")
	}
}

func TestDuplicateCaseValueIsError(t *testing.T) {
	src := `f() {
		switch (x) {
			case 1: y = 1; break;
			case 1: y = 2; break;
		}
	}`
	_, _, sink := analyze(t, src)
	if !sink.HasErrors() {
		t.Fatal("expected a duplicate case value error")
	}
}

func TestDuplicateDefaultIsError(t *testing.T) {
	src := `f() {
		switch (x) {
			default: y = 1;
			default: y = 2;
		}
	}`
	_, _, sink := analyze(t, src)
	if !sink.HasErrors() {
		t.Fatal("expected a duplicate default error")
	}
}

func TestNestedSwitchCasesDoNotLeakToOuter(t *testing.T) {
	src := `f() {
		switch (x) {
			case 1:
				switch (y) {
					case 1: z = 1; break;
				}
				break;
		}
	}`
	tu, _, sink := analyze(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Err())
	}
	fn := findFunc(tu, "f")
	if len(fn.Switches) != 2 {
		t.Fatalf("expected 2 switches collected, got %d", len(fn.Switches))
	}
	if len(fn.Switches[0].Cases) != 1 || len(fn.Switches[1].Cases) != 1 {
		t.Fatalf("expected 1 case per switch, got %+v", fn.Switches)
	}
}

func TestAutoArrayReservesFrameSlots(t *testing.T) {
	tu, _, sink := analyze(t, "f() { auto x, y[4]; x = y[0]; }")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Err())
	}
	fn := findFunc(tu, "f")
	if len(fn.Locals) != 2 {
		t.Fatalf("expected 2 locals, got %d", len(fn.Locals))
	}
	x, y := fn.Locals[0], fn.Locals[1]
	if x.FrameSlot != 0 {
		t.Fatalf("expected x at slot 0, got %d", x.FrameSlot)
	}
	if y.FrameSlot != 1 || y.ArraySize != 4 {
		t.Fatalf("expected y at slot 1 with array size 4, got %+v", y)
	}
	if fn.FrameSize != 6 {
		t.Fatalf("expected frame size 6 (1 scalar + 1 pointer + 4 backing), got %d", fn.FrameSize)
	}
}

func TestExternResolvesToExistingGlobal(t *testing.T) {
	src := "counter; f() { extrn counter; counter = 1; }"
	tu, global, sink := analyze(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Err())
	}
	fn := findFunc(tu, "f")
	globalSym, _ := global.LookupLocal("counter")
	if fn.Body.Externs[0].Symbols[0] != globalSym {
		t.Fatal("expected extrn to bind to the existing global symbol")
	}
}
