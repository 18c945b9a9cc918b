package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/db47h/b/config"
	"github.com/db47h/b/source"
)

func compileSrc(t *testing.T, src string, cfg config.Config) *Result {
	t.Helper()
	units := []source.Unit{{Name: "test.b", R: strings.NewReader(src)}}
	return CompileUnits(units, cfg)
}

func TestCompileSimpleFunction(t *testing.T) {
	res := compileSrc(t, `main() { return(0); }`, config.Default())
	if res.Diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", res.Diags.All())
	}
	if res.IR == nil {
		t.Fatal("expected a lowered program")
	}
	if len(res.IR.Funcs) != 1 || res.IR.Funcs[0].Name != "main" {
		t.Fatalf("expected one function named main, got %+v", res.IR.Funcs)
	}
}

func TestCompileMultipleUnitsShareGlobalScope(t *testing.T) {
	unitA := `counter 0;`
	unitB := `main() { extrn counter; counter = counter + 1; return(counter); }`
	units := []source.Unit{
		{Name: "a.b", R: strings.NewReader(unitA)},
		{Name: "b.b", R: strings.NewReader(unitB)},
	}
	res := CompileUnits(units, config.Default())
	if res.Diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", res.Diags.All())
	}
	if res.IR == nil {
		t.Fatal("expected a lowered program")
	}
	var found bool
	for _, g := range res.IR.Globals {
		if g.Name == "counter" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a counter global, got %+v", res.IR.Globals)
	}
}

func TestCompileReportsUndefinedGotoLabel(t *testing.T) {
	res := compileSrc(t, `main() { goto nowhere; }`, config.Default())
	if !res.Diags.HasErrors() {
		t.Fatal("expected an error for the undefined goto label")
	}
	if res.IR != nil {
		t.Fatal("expected no IR to be produced when analysis failed")
	}
}

func TestCompilePredeclaresIOUnitGlobals(t *testing.T) {
	res := compileSrc(t, `main() { extrn rd.unit, wr.unit; return(rd.unit + wr.unit); }`, config.Default())
	if res.Diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", res.Diags.All())
	}
	want := map[string][]string{"rd.unit": {"0"}, "wr.unit": {"-1"}}
	got := map[string][]string{}
	for _, g := range res.IR.Globals {
		got[g.Name] = g.Init
	}
	for name, init := range want {
		if got[name] == nil || got[name][0] != init[0] {
			t.Fatalf("expected %s to initialize to %v, got %v", name, init, got[name])
		}
	}
}

func TestCompileWordWrapConfiguration(t *testing.T) {
	cfg := config.Default()
	cfg.WordSize = config.W16
	res := compileSrc(t, `v 70000;`, cfg)
	if res.Diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", res.Diags.All())
	}
	if res.IR.WordBits != 16 {
		t.Fatalf("expected word_bits=16, got %d", res.IR.WordBits)
	}
}

// TestCompileTestdataPrograms runs the end-to-end scenario programs listed
// in the specification's testable properties through the full pipeline and
// checks that each compiles clean to IR. Running the resulting IR through a
// downstream toolchain and checking its exit status is out of scope here.
func TestCompileTestdataPrograms(t *testing.T) {
	cfgFor := func(name string) config.Config {
		cfg := config.Default()
		if name == "word_wrap_overflow_16.b" {
			cfg.WordSize = config.W16
		}
		return cfg
	}

	dir := filepath.Join("..", "testdata", "programs")
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading testdata programs: %v", err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".b" {
			continue
		}
		name := e.Name()
		t.Run(name, func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				t.Fatalf("reading %s: %v", name, err)
			}
			units := []source.Unit{{Name: name, R: strings.NewReader(string(src))}}
			res := CompileUnits(units, cfgFor(name))
			if res.Diags.HasErrors() {
				t.Fatalf("unexpected errors compiling %s: %v", name, res.Diags.All())
			}
			if res.IR == nil || len(res.IR.Funcs) == 0 {
				t.Fatalf("expected lowered functions for %s", name)
			}
		})
	}
}
