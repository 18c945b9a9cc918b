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
	"strings"

	"github.com/db47h/b/ast"
	"github.com/db47h/b/diag"
	"github.com/db47h/b/lexer"
	"github.com/db47h/b/parser"
	"github.com/db47h/b/source"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a B source file and print the resulting AST",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(_ *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return errors.Wrap(err, "bc")
	}
	defer f.Close()

	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	sink := diag.NewSink()
	rd := source.NewReader(args[0], f)
	lex := lexer.New(rd, sink, cfg.WordSize.Bits())
	p := parser.New(lex, sink)
	tu := p.ParseFile()

	for _, decl := range tu.Decls {
		dumpDecl(decl, 0)
	}

	sink.WriteTo(os.Stderr)
	if sink.HasErrors() {
		return errors.New("bc: parsing reported errors")
	}
	return nil
}

func indent(n int) string { return strings.Repeat("  ", n) }

func dumpDecl(d ast.Decl, depth int) {
	switch v := d.(type) {
	case *ast.ExternalVariable:
		fmt.Printf("%sExternalVariable %s\n", indent(depth), v.Name)
	case *ast.FunctionDefinition:
		fmt.Printf("%sFunctionDefinition %s(%s)\n", indent(depth), v.Name, strings.Join(v.Params, ", "))
		dumpStmt(v.Body, depth+1)
	}
}

func dumpStmt(s ast.Stmt, depth int) {
	if s == nil {
		return
	}
	switch v := s.(type) {
	case *ast.Block:
		fmt.Printf("%sBlock\n", indent(depth))
		for _, st := range v.Stmts {
			dumpStmt(st, depth+1)
		}
	case *ast.If:
		fmt.Printf("%sIf\n", indent(depth))
		dumpStmt(v.Then, depth+1)
		if v.Else != nil {
			dumpStmt(v.Else, depth+1)
		}
	case *ast.While:
		fmt.Printf("%sWhile\n", indent(depth))
		dumpStmt(v.Body, depth+1)
	case *ast.Switch:
		fmt.Printf("%sSwitch\n", indent(depth))
		dumpStmt(v.Body, depth+1)
	case *ast.Labeled:
		fmt.Printf("%sLabeled %s\n", indent(depth), v.Name)
		dumpStmt(v.Stmt, depth+1)
	case *ast.Case:
		fmt.Printf("%sCase\n", indent(depth))
		dumpStmt(v.Next, depth)
	case *ast.Default:
		fmt.Printf("%sDefault\n", indent(depth))
		dumpStmt(v.Next, depth)
	case *ast.Return:
		fmt.Printf("%sReturn\n", indent(depth))
	case *ast.ExprStmt:
		fmt.Printf("%sExprStmt\n", indent(depth))
	default:
		fmt.Printf("%s%T\n", indent(depth), v)
	}
}
