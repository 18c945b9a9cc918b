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

package cmd

import (
	"fmt"
	"os"

	"github.com/db47h/b/compiler"
	"github.com/db47h/b/internal/iow"
	"github.com/db47h/b/ir"
	"github.com/db47h/b/source"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	emitIR     bool
	outputPath string
)

var buildCmd = &cobra.Command{
	Use:   "build [files...]",
	Short: "Compile one or more B source files",
	Long: `build runs the full lex/parse/sema/emit pipeline over one or more B
source files, sharing a single global scope across them, and writes the
resulting intermediate representation.

Exit status is 0 only if the emitter produced IR with no errors reported;
invoking the downstream native toolchain is out of this command's scope,
so --emit-ir is implied whenever the toolchain hook is not configured.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().BoolVar(&emitIR, "emit-ir", false, "write the IR text instead of invoking a downstream toolchain")
	buildCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file for the IR text (default: stdout)")
}

func runBuild(_ *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	units := make([]source.Unit, len(args))
	files := make([]*os.File, len(args))
	for i, name := range args {
		f, err := os.Open(name)
		if err != nil {
			return errors.Wrap(err, "bc")
		}
		files[i] = f
		units[i] = source.Unit{Name: name, R: f}
	}
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()

	res := compiler.CompileUnits(units, cfg)
	res.Diags.WriteTo(os.Stderr)
	if res.Diags.HasErrors() {
		return errors.New("bc: compilation failed with errors")
	}

	if !cfg.EmitIntermediate && !emitIR {
		fmt.Fprintln(os.Stderr, "bc: downstream toolchain invocation is not implemented; writing the intermediate representation instead")
	}
	return writeIR(res.IR, outputPath)
}

func writeIR(prog *ir.Program, path string) error {
	w := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrap(err, "bc")
		}
		defer f.Close()
		w = f
	}
	ew := iow.NewErrWriter(w)
	prog.WriteIndented(ew)
	if ew.Err != nil {
		return errors.Wrap(ew.Err, "bc")
	}
	return nil
}
