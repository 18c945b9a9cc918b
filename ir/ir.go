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

// Package ir defines the portable, textual target intermediate
// representation the emitter lowers a translation unit to: a flat
// three-address form of globals, string constants and per-function
// instruction lists, meant to be read by a downstream native toolchain
// rather than executed directly by this compiler.
package ir

import (
	"fmt"
	"strconv"

	"github.com/db47h/b/internal/iow"
)

// Op identifies one IR instruction.
type Op string

// Instruction opcodes.
const (
	OpLabel     Op = "label"
	OpGoto      Op = "goto"
	OpIfZero    Op = "ifz"   // ifz cond, label: branch to label if cond == 0
	OpIfNotZero Op = "ifnz"  // ifnz cond, label: branch to label if cond != 0
	OpParam     Op = "param" // push one call argument
	OpCall      Op = "call"  // dst = call callee, nargs
	OpReturn    Op = "ret"   // ret [value]
	OpMove      Op = "mov"   // dst = src
	OpConst     Op = "const" // dst = immediate integer
	OpStringRef Op = "strref" // dst = address of string table entry
	OpAddr      Op = "addr"  // dst = &src  (src must be a storage location)
	OpLoad      Op = "load"  // dst = *addr
	OpStore     Op = "store" // *addr = value
	OpElemAddr  Op = "elemaddr" // dst = base + idx, scaled per pointer mode
	OpBinary    Op = "binop" // dst = a OP b [, bits]  (bits present for arithmetic/bitwise ops)
	OpUnary     Op = "unop"  // dst = OP a [, bits]
	OpGotoIndirect Op = "gotoind" // goto *addr (computed goto)
)

// Instr is one IR instruction. Dst and Args name operands: an immediate
// ("123"), a temporary ("%t3"), a global or extern symbol ("@name"), a
// compiler-generated label (".Lname"), a user label ("func.name"), or a
// frame slot ("$3").
type Instr struct {
	Op      Op
	Dst     string
	Args    []string
	Comment string
}

// Function is one lowered function body.
type Function struct {
	Name      string
	Params    int
	FrameSize int
	Instrs    []Instr
}

// Global is one lowered top-level variable. Size is > 0 for a vector; Init
// holds the lowered initial values (immediates or string table references),
// in source order, shorter than Size when the remainder is implicitly zero.
type Global struct {
	Name string
	Size int
	Init []string
}

// StringConst is one string literal promoted to the program's string table,
// referenced from function bodies by ID via OpStringRef.
type StringConst struct {
	ID    string
	Bytes []byte
}

// Program is a whole lowered translation unit, ready to be written out as
// text for the downstream toolchain.
type Program struct {
	WordBits    int
	PointerMode string

	Globals []Global
	Strings []StringConst
	Funcs   []Function
}

// Builder accumulates the instructions of one Function, generating fresh
// temporaries and labels as the emitter requests them.
type Builder struct {
	fn       Function
	tmpSeq   int
	labelSeq int
}

// NewBuilder starts building a Function named name.
func NewBuilder(name string, params, frameSize int) *Builder {
	return &Builder{fn: Function{Name: name, Params: params, FrameSize: frameSize}}
}

// NewTemp returns a fresh temporary name, unique within this function.
func (b *Builder) NewTemp() string {
	t := "%t" + strconv.Itoa(b.tmpSeq)
	b.tmpSeq++
	return t
}

// NewLabel returns a fresh label name tagged with hint, unique within this
// function.
func (b *Builder) NewLabel(hint string) string {
	l := ".L" + hint + strconv.Itoa(b.labelSeq)
	b.labelSeq++
	return l
}

// Emit appends one instruction.
func (b *Builder) Emit(op Op, dst string, args ...string) {
	b.fn.Instrs = append(b.fn.Instrs, Instr{Op: op, Dst: dst, Args: args})
}

// EmitComment appends an instruction carrying only a Comment, rendered as a
// standalone comment line by WriteIndented.
func (b *Builder) EmitComment(format string, args ...interface{}) {
	b.fn.Instrs = append(b.fn.Instrs, Instr{Comment: fmt.Sprintf(format, args...)})
}

// Function returns the built function.
func (b *Builder) Function() Function { return b.fn }

// WriteIndented renders the program as indented text, one global/string per
// line and one function per block, suitable for the downstream toolchain or
// for golden-file comparison in tests.
func (p *Program) WriteIndented(w *iow.ErrWriter) {
	w.WriteString(fmt.Sprintf("; word_bits=%d pointer_mode=%s\n", p.WordBits, p.PointerMode))
	for _, g := range p.Globals {
		w.WriteString(fmt.Sprintf("global %s size=%d init=%v\n", g.Name, g.Size, g.Init))
	}
	for _, s := range p.Strings {
		w.WriteString(fmt.Sprintf("string %s %q\n", s.ID, string(s.Bytes)))
	}
	for _, fn := range p.Funcs {
		w.WriteString(fmt.Sprintf("func %s params=%d frame=%d {\n", fn.Name, fn.Params, fn.FrameSize))
		for _, in := range fn.Instrs {
			writeInstr(w, in)
		}
		w.WriteString("}\n")
	}
}

func writeInstr(w *iow.ErrWriter, in Instr) {
	if in.Op == "" {
		w.WriteString(fmt.Sprintf("\t; %s\n", in.Comment))
		return
	}
	switch in.Op {
	case OpLabel:
		w.WriteString(fmt.Sprintf("%s:\n", in.Dst))
	case OpReturn:
		if len(in.Args) == 0 {
			w.WriteString("\tret\n")
		} else {
			w.WriteString(fmt.Sprintf("\tret %s\n", in.Args[0]))
		}
	default:
		if in.Dst != "" {
			w.WriteString(fmt.Sprintf("\t%s = %s %s\n", in.Dst, in.Op, joinArgs(in.Args)))
		} else {
			w.WriteString(fmt.Sprintf("\t%s %s\n", in.Op, joinArgs(in.Args)))
		}
	}
}

func joinArgs(args []string) string {
	s := ""
	for i, a := range args {
		if i > 0 {
			s += ", "
		}
		s += a
	}
	return s
}
