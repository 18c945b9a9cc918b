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

	"github.com/db47h/b/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Version is set by the release build; it has no effect on compiler
// behavior.
var Version = "0.1.0-dev"

var (
	configPath  string
	pointerMode string
	wordSize    string
)

var rootCmd = &cobra.Command{
	Use:     "bc",
	Short:   "Core compiler for the historical B programming language",
	Version: Version,
	Long: `bc lexes, parses, analyzes and emits portable IR for programs written
in the historical B programming language: the lexer, parser, semantic
analyzer and emitter the language needs, handed off to an external
runtime library and native toolchain for anything beyond that.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML configuration file")
	rootCmd.PersistentFlags().StringVar(&pointerMode, "pointer-mode", "", "override pointer_mode (byte-addressed|word-addressed)")
	rootCmd.PersistentFlags().StringVar(&wordSize, "word-size", "", "override word_size (host|16|32)")
}

// resolveConfig builds the effective Configuration Record: the file at
// configPath (if set) overlaid onto the documented defaults, then the
// root command's persistent flags overlaid on top of that.
func resolveConfig() (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	switch pointerMode {
	case "":
	case "byte-addressed":
		cfg.PointerMode = config.ByteAddressed
	case "word-addressed":
		cfg.PointerMode = config.WordAddressed
	default:
		return cfg, errors.Errorf("unknown --pointer-mode %q", pointerMode)
	}
	switch wordSize {
	case "":
	case "host":
		cfg.WordSize = config.Host
	case "16":
		cfg.WordSize = config.W16
	case "32":
		cfg.WordSize = config.W32
	default:
		return cfg, errors.Errorf("unknown --word-size %q", wordSize)
	}
	return cfg, nil
}

func exitWithError(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "bc: "+msg+"\n", args...)
	os.Exit(1)
}
