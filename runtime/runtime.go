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

// Package runtime names the collaborator interface the core compiler
// assumes but does not implement: the set of functions and globals that a
// compiled program may call or reference without a matching definition
// anywhere in its own translation units, and that the downstream runtime
// library is expected to provide. The core treats every one of these as
// an ordinary implicit extern; this package exists so the rest of the
// compiler can name them symbolically instead of repeating string
// literals, and so a future link-time checker has one place to look up
// the expected surface.
package runtime

// CharIO lists the character-oriented I/O primitives.
var CharIO = []string{"putchar", "getchar", "putstr", "getstr", "flush"}

// FormattedOutput lists the formatted-output primitives.
var FormattedOutput = []string{"printf", "print", "putnum", "printn"}

// StringPrimitives lists the packed-character string helpers whose
// lowering depends on the active pointer mode (word- or byte-addressed).
var StringPrimitives = []string{"char", "lchar"}

// FileIO lists the file-descriptor based I/O primitives.
var FileIO = []string{
	"open", "creat", "close", "read", "write", "seek",
	"openr", "openw", "getc", "putc", "getw", "putw",
	"fopen", "fcreat", "fclose",
}

// Process lists the process-control primitives.
var Process = []string{"fork", "wait", "execl", "execv", "exit", "system"}

// Memory lists the heap-management primitives.
var Memory = []string{"alloc", "malloc", "memset", "rlsevec"}

// Compatibility lists primitives kept for compatibility with hosted B
// dialects wider than the historical 16-bit word.
var Compatibility = []string{"sx64"}

// IOUnitGlobals lists the word-typed external variables controlling which
// open file the unqualified character I/O primitives read from and write
// to. RdUnitDefault and WrUnitDefault are their documented defaults:
// standard input and standard output.
var IOUnitGlobals = []string{"rd.unit", "wr.unit"}

// Documented defaults for the I/O unit globals.
const (
	RdUnitDefault = 0
	WrUnitDefault = -1
)

// Functions returns every collaborator function name the core may emit a
// reference to, across all categories.
func Functions() []string {
	var all []string
	all = append(all, CharIO...)
	all = append(all, FormattedOutput...)
	all = append(all, StringPrimitives...)
	all = append(all, FileIO...)
	all = append(all, Process...)
	all = append(all, Memory...)
	all = append(all, Compatibility...)
	return all
}

// IsCollaborator reports whether name is one of the runtime-provided
// functions, as opposed to a program-defined or genuinely undeclared
// identifier.
func IsCollaborator(name string) bool {
	for _, f := range Functions() {
		if f == name {
			return true
		}
	}
	return false
}
