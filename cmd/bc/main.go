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

// Command bc is a thin driver over the core compiler packages: it reads
// input files, runs the lex/parse/sema/emit pipeline, and writes either
// the portable IR text or, eventually, hands off to a downstream native
// toolchain. It is explicitly out of the core's scope (see the compiler
// package) and exists to prove the pipeline's wiring end to end.
package main

import (
	"os"

	"github.com/db47h/b/cmd/bc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
