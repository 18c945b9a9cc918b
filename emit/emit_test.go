package emit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/db47h/b/config"
	"github.com/db47h/b/diag"
	"github.com/db47h/b/internal/iow"
	"github.com/db47h/b/lexer"
	"github.com/db47h/b/parser"
	"github.com/db47h/b/sema"
	"github.com/db47h/b/source"
	"github.com/gkampitakis/go-snaps/snaps"
)

func compileToIR(t *testing.T, src string, cfg config.Config) (string, *diag.Sink) {
	t.Helper()
	sink := diag.NewSink()
	rd := source.NewReader("test.b", strings.NewReader(src))
	lex := lexer.New(rd, sink, cfg.WordSize.Bits())
	p := parser.New(lex, sink)
	tu := p.ParseFile()
	sema.Analyze(tu, cfg, sink)
	if sink.HasErrors() {
		return "", sink
	}
	prog := Program(tu, cfg, sink)
	var buf bytes.Buffer
	ew := iow.NewErrWriter(&buf)
	prog.WriteIndented(ew)
	return buf.String(), sink
}

func TestEmitFactorialRecursion(t *testing.T) {
	src := `fact(n) {
		if (n <= 1) return(1);
		return(n * fact(n - 1));
	}`
	out, sink := compileToIR(t, src, config.Default())
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	snaps.MatchSnapshot(t, "factorial", out)
}

func TestEmitSwitchFallThrough(t *testing.T) {
	src := `main() {
		auto x;
		x = 2;
		switch (x) {
		case 1: putchar(97);
		case 2: putchar(98);
		case 3: putchar(99);
		}
		return(0);
	}`
	out, sink := compileToIR(t, src, config.Default())
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	snaps.MatchSnapshot(t, "switch_fallthrough", out)
}

func TestEmitCompoundAssignPrecedence(t *testing.T) {
	src := `main() {
		auto x;
		x = 10;
		x =- 1;
		return(x);
	}`
	out, sink := compileToIR(t, src, config.Default())
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	if !strings.Contains(out, "sub") {
		t.Fatalf("expected a subtraction from the =- compound assign, got:\n%s", out)
	}
}

func TestEmitWordWrapOverflow(t *testing.T) {
	cfg := config.Default()
	cfg.WordSize = config.W16
	src := `main() {
		auto x;
		x = 40000;
		x = x + 40000;
		return(x);
	}`
	out, sink := compileToIR(t, src, cfg)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	if !strings.Contains(out, ", 16") {
		t.Fatalf("expected width-16 masking argument on arithmetic ops, got:\n%s", out)
	}
}

func TestEmitStringTerminatorAndCharAccess(t *testing.T) {
	src := `main() {
		auto s;
		s = "hi";
		return(char(s, 0) + char(s, 1));
	}`
	out, sink := compileToIR(t, src, config.Default())
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	if !strings.Contains(out, `"hi\x04"`) {
		t.Fatalf("expected the string literal to carry its EOT terminator, got:\n%s", out)
	}
}

func TestEmitGotoAndLabel(t *testing.T) {
	src := `main() {
		goto done;
		return(1);
	done:
		return(0);
	}`
	out, sink := compileToIR(t, src, config.Default())
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	if !strings.Contains(out, "goto main.done") {
		t.Fatalf("expected a goto to the mangled label name, got:\n%s", out)
	}
	if !strings.Contains(out, "main.done:") {
		t.Fatalf("expected the label definition to be emitted, got:\n%s", out)
	}
}

func TestEmitAddressOfAutoRequiresExplicitAddr(t *testing.T) {
	src := `main() {
		auto x, p;
		p = &x;
		return(*p);
	}`
	out, sink := compileToIR(t, src, config.Default())
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	if !strings.Contains(out, "addr") {
		t.Fatalf("expected an explicit addr instruction for &x, got:\n%s", out)
	}
}

func TestEmitGlobalArrayDecaysToOwnAddress(t *testing.T) {
	src := `buf[4];
	main() {
		extrn buf;
		return(buf[0]);
	}`
	out, sink := compileToIR(t, src, config.Default())
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	if !strings.Contains(out, "@buf") {
		t.Fatalf("expected the global array to decay to its own @-address, got:\n%s", out)
	}
}

func TestEmitWordAddressedIndexUsesUnitScale(t *testing.T) {
	cfg := config.Default()
	cfg.PointerMode = config.WordAddressed
	src := `main() {
		auto a[4];
		return(a[1]);
	}`
	out, sink := compileToIR(t, src, cfg)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	if !strings.Contains(out, "elemaddr") {
		t.Fatalf("expected an elemaddr instruction, got:\n%s", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "elemaddr") && !strings.HasSuffix(strings.TrimSpace(line), ", 1") {
			t.Fatalf("expected the elemaddr scale argument to be 1 in word-addressed mode, got: %s", line)
		}
	}
}
