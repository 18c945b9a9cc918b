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

// Package source provides a lookahead-1 byte reader over a single input
// unit, tracking file, line and column for diagnostics.
package source

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

// EOF is the sentinel byte value returned by Reader.Peek and Reader.Advance
// once the input is exhausted. It is distinct from any valid input byte
// (which are restricted to 0-255, hence the -1).
const EOF = -1

// Position is an immutable (file, line, column) triple attached to every
// token and tree node.
type Position struct {
	File   string
	Line   int
	Column int
}

// IsValid reports whether p was actually produced by a Reader (as opposed to
// being a zero Position used as a placeholder).
func (p Position) IsValid() bool { return p.File != "" }

func (p Position) String() string {
	if !p.IsValid() {
		return "<unknown>"
	}
	return p.File + ":" + itoa(p.Line) + ":" + itoa(p.Column)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Unit names one translation-unit input: either a named file or an
// in-memory buffer (useful for tests and for driver-supplied text).
type Unit struct {
	Name string
	R    io.Reader
}

// Reader presents a byte stream as a character source with a small internal
// lookahead buffer, tracking source location as bytes are consumed. It
// holds at most one underlying io.Reader open; closing (if the underlying
// reader is an io.Closer) is the caller's responsibility once reading is
// complete or has failed.
//
// Peek reports the immediate next byte, matching the Source Reader's
// lookahead-1 contract. PeekAt additionally lets the lexer look one further
// byte ahead, which it needs to resolve multi-character operator forms
// (e.g. distinguishing `==` from `===`) without speculatively consuming and
// being unable to push bytes back.
type Reader struct {
	name string
	r    *bufio.Reader
	line int
	col  int
	buf  []int // lookahead queue, buf[0] is the next byte Advance returns
	atEOF bool
}

// NewReader wraps r as a Reader reporting positions under the given unit
// name.
func NewReader(name string, r io.Reader) *Reader {
	return &Reader{
		name: name,
		r:    bufio.NewReader(r),
		line: 1,
		col:  0,
	}
}

// Pos returns the location of the byte that would be returned by the next
// call to Advance.
func (rd *Reader) Pos() Position {
	return Position{File: rd.name, Line: rd.line, Column: rd.col + 1}
}

// fill ensures the lookahead queue holds at least n+1 bytes (or runs into
// EOF trying).
func (rd *Reader) fill(n int) error {
	for len(rd.buf) <= n {
		if rd.atEOF {
			rd.buf = append(rd.buf, EOF)
			continue
		}
		b, err := rd.r.ReadByte()
		if err != nil {
			if err == io.EOF {
				rd.atEOF = true
				rd.buf = append(rd.buf, EOF)
				continue
			}
			return errors.Wrapf(err, "%s: read failed", rd.Pos())
		}
		rd.buf = append(rd.buf, int(b))
	}
	return nil
}

// Peek returns the next byte without consuming it, or EOF.
func (rd *Reader) Peek() (int, error) {
	return rd.PeekAt(0)
}

// PeekAt returns the byte n positions ahead (0 is the same as Peek) without
// consuming anything, or EOF.
func (rd *Reader) PeekAt(n int) (int, error) {
	if err := rd.fill(n); err != nil {
		return EOF, err
	}
	return rd.buf[n], nil
}

// Advance consumes and returns the next byte, or EOF. It updates line/column
// bookkeeping: '\n' advances the line counter and resets the column.
func (rd *Reader) Advance() (int, error) {
	if err := rd.fill(0); err != nil {
		return EOF, err
	}
	b := rd.buf[0]
	rd.buf = rd.buf[1:]
	if b == EOF {
		return EOF, nil
	}
	if b == '\n' {
		rd.line++
		rd.col = 0
	} else {
		rd.col++
	}
	return b, nil
}
