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

// Package iow holds small io helpers shared by the ir package and the bc
// command.
package iow

import (
	"io"

	"github.com/pkg/errors"
)

// ErrWriter wraps an io.Writer and latches the first write error, so a
// pretty-printer emitting many small Write calls can ignore each individual
// return value and check Err once at the end.
type ErrWriter struct {
	w   io.Writer
	n   int64
	Err error
}

func (w *ErrWriter) Write(p []byte) (n int, err error) {
	if w.Err != nil {
		return 0, w.Err
	}
	n, err = w.w.Write(p)
	w.n += int64(n)
	if err != nil {
		w.Err = errors.Wrap(err, "write failed")
	}
	return n, w.Err
}

// WriteString is a convenience wrapper avoiding a []byte conversion at each
// call site.
func (w *ErrWriter) WriteString(s string) {
	if w.Err != nil {
		return
	}
	io.WriteString(w, s)
}

// N returns the total byte count successfully written so far.
func (w *ErrWriter) N() int64 { return w.n }

// NewErrWriter returns a new ErrWriter wrapping w.
func NewErrWriter(w io.Writer) *ErrWriter {
	return &ErrWriter{w: w}
}
