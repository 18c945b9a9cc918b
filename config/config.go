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

// Package config holds the Configuration Record shared, read-only, by every
// pipeline stage: pointer addressing mode, word size, and the handful of
// pass-through options that shape emission and downstream invocation.
package config

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// PointerMode selects how pointer arithmetic and character access are
// lowered by the emitter.
type PointerMode int

// Pointer addressing modes.
const (
	// ByteAddressed steps pointer arithmetic by one byte per unit. This is
	// the default for modern hosts.
	ByteAddressed PointerMode = iota
	// WordAddressed steps pointer arithmetic by one machine word per unit,
	// matching classical B on word-addressed hardware.
	WordAddressed
)

func (m PointerMode) String() string {
	if m == WordAddressed {
		return "word-addressed"
	}
	return "byte-addressed"
}

// WordSize selects the width used for wraparound arithmetic.
type WordSize int

// Supported word sizes. Host means "native signed word, no explicit wrap".
const (
	Host WordSize = 0
	W16  WordSize = 16
	W32  WordSize = 32
)

// Bits returns the width in bits, or 0 for Host (meaning "native size").
func (w WordSize) Bits() int { return int(w) }

// Config is the Configuration Record (spec §6). It is built once per
// compiler invocation and is read-only thereafter; no pipeline stage
// mutates it.
type Config struct {
	PointerMode PointerMode `toml:"pointer_mode"`
	WordSize    WordSize    `toml:"word_size"`

	// EmitIntermediate, when true, means the IR text is wanted and no
	// downstream toolchain is invoked. bc build writes the IR to --output
	// or stdout whatever this is set to; it does not write a file alongside
	// the input.
	EmitIntermediate bool `toml:"emit_intermediate"`

	// LinkLibraries is passed through verbatim to the downstream linker.
	LinkLibraries []string `toml:"link_libraries"`

	// ExtraDownstreamFlags is passed through verbatim to the downstream
	// compiler.
	ExtraDownstreamFlags []string `toml:"extra_downstream_flags"`
}

// Default returns the Configuration Record's documented defaults:
// byte-addressed pointers, host word size, IR not retained.
func Default() Config {
	return Config{
		PointerMode: ByteAddressed,
		WordSize:    Host,
	}
}

// rawConfig mirrors Config but with string fields for the enumerations, so
// that TOML files can spell "byte-addressed" / "word-addressed" and
// "16" / "32" / "host" instead of raw integers.
type rawConfig struct {
	PointerMode          string   `toml:"pointer_mode"`
	WordSize             string   `toml:"word_size"`
	EmitIntermediate     bool     `toml:"emit_intermediate"`
	LinkLibraries        []string `toml:"link_libraries"`
	ExtraDownstreamFlags []string `toml:"extra_downstream_flags"`
}

// Load reads a TOML configuration file and overlays it onto Default(). A
// missing field in the file leaves the corresponding default untouched.
// This overlay is optional: a compiler invocation with no config file never
// calls Load and simply uses Default().
func Load(path string) (Config, error) {
	cfg := Default()
	var raw rawConfig
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return cfg, errors.Wrapf(err, "config: failed to load %s", path)
	}
	switch raw.PointerMode {
	case "", "byte-addressed":
		cfg.PointerMode = ByteAddressed
	case "word-addressed":
		cfg.PointerMode = WordAddressed
	default:
		return cfg, errors.Errorf("config: unknown pointer_mode %q", raw.PointerMode)
	}
	switch raw.WordSize {
	case "", "host":
		cfg.WordSize = Host
	case "16":
		cfg.WordSize = W16
	case "32":
		cfg.WordSize = W32
	default:
		return cfg, errors.Errorf("config: unknown word_size %q", raw.WordSize)
	}
	cfg.EmitIntermediate = raw.EmitIntermediate
	cfg.LinkLibraries = raw.LinkLibraries
	cfg.ExtraDownstreamFlags = raw.ExtraDownstreamFlags
	return cfg, nil
}
