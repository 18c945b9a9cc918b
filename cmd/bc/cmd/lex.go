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

	"github.com/db47h/b/diag"
	"github.com/db47h/b/lexer"
	"github.com/db47h/b/source"
	"github.com/db47h/b/token"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a B source file and print the resulting tokens",
	Long: `lex tokenizes a B source file and prints one line per token, for
debugging the lexer. It mirrors the role cmd/retro's -dump flag plays for
inspecting the teacher's virtual machine state.`,
	Args: cobra.ExactArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
}

func runLex(_ *cobra.Command, args []string) error {
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

	for {
		tok := lex.Next()
		fmt.Printf("%-20s %-12s %q\n", tok.Pos, kindName(tok.Kind), tok.String())
		if tok.Terminal() {
			break
		}
	}

	sink.WriteTo(os.Stderr)
	if sink.HasErrors() {
		return errors.New("bc: lexing reported errors")
	}
	return nil
}

func kindName(k token.Kind) string {
	switch k {
	case token.EOF:
		return "eof"
	case token.Error:
		return "error"
	case token.Ident:
		return "ident"
	case token.Keyword:
		return "keyword"
	case token.Number:
		return "number"
	case token.CharConst:
		return "char"
	case token.StringConst:
		return "string"
	case token.Punct:
		return "punct"
	case token.Operator:
		return "operator"
	case token.CompoundAssign:
		return "compound-assign"
	case token.RelAssign:
		return "rel-assign"
	case token.IncDec:
		return "incdec"
	default:
		return "?"
	}
}
