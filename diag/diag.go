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

// Package diag implements the Diagnostics Sink shared by the lexer, parser,
// semantic analyzer and emitter. Diagnostics accumulate across an entire
// compiler invocation and are reported in source order once the pipeline
// finishes a pass; they are not Go errors until the caller asks for one with
// Sink.Err.
package diag

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/db47h/b/source"
	"github.com/pkg/errors"
)

// Severity classifies a Diagnostic.
type Severity int

// Severities, ordered from least to most severe for stable sort purposes.
const (
	Note Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Note:
		return "note"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "diagnostic"
	}
}

// Diagnostic is one reported condition with its source location.
type Diagnostic struct {
	Severity Severity
	Pos      source.Position
	Message  string
	Cause    error // set only by Sink.Fatal: the wrapped I/O error
}

// Format renders the diagnostic as "file:line:col: severity: message".
func (d Diagnostic) Format() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message)
}

// Sink accumulates Diagnostics in encounter order; it does not stop a pass
// early regardless of how many diagnostics are reported (lexer, parser and
// semantic analyzer run to completion to maximize information per run, per
// the error handling design).
type Sink struct {
	diags []Diagnostic
}

// NewSink returns an empty Sink.
func NewSink() *Sink { return &Sink{} }

// Add appends a diagnostic.
func (s *Sink) Add(sev Severity, pos source.Position, format string, args ...interface{}) {
	s.diags = append(s.diags, Diagnostic{Severity: sev, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// Errorf records an Error-severity diagnostic.
func (s *Sink) Errorf(pos source.Position, format string, args ...interface{}) {
	s.Add(Error, pos, format, args...)
}

// Warnf records a Warning-severity diagnostic.
func (s *Sink) Warnf(pos source.Position, format string, args ...interface{}) {
	s.Add(Warning, pos, format, args...)
}

// Notef records a Note-severity diagnostic.
func (s *Sink) Notef(pos source.Position, format string, args ...interface{}) {
	s.Add(Note, pos, format, args...)
}

// Fatal records an unrecoverable I/O failure on the underlying source at its
// last known position. Unlike Errorf, the wrapped error's chain is preserved
// in the Diagnostic's Cause field, so a caller that needs the original cause
// can still recover it with errors.Cause.
func (s *Sink) Fatal(pos source.Position, err error) {
	wrapped := errors.Wrap(err, "unrecoverable read error")
	s.diags = append(s.diags, Diagnostic{Severity: Error, Pos: pos, Message: wrapped.Error(), Cause: wrapped})
}

// HasErrors reports whether any Error-severity diagnostic was recorded.
// Per the emitter's gating rule, emission must be skipped whenever this is
// true.
func (s *Sink) HasErrors() bool {
	for _, d := range s.diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Len returns the number of diagnostics recorded so far.
func (s *Sink) Len() int { return len(s.diags) }

// All returns a stably-ordered copy of the recorded diagnostics, sorted by
// (file, line, column, severity) as required for reproducibility.
func (s *Sink) All() []Diagnostic {
	out := make([]Diagnostic, len(s.diags))
	copy(out, s.diags)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Pos.File != b.Pos.File {
			return a.Pos.File < b.Pos.File
		}
		if a.Pos.Line != b.Pos.Line {
			return a.Pos.Line < b.Pos.Line
		}
		if a.Pos.Column != b.Pos.Column {
			return a.Pos.Column < b.Pos.Column
		}
		return a.Severity > b.Severity
	})
	return out
}

// WriteTo writes every recorded diagnostic, one per line, in stable source
// order, to w.
func (s *Sink) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, d := range s.All() {
		m, err := io.WriteString(w, d.Format()+"\n")
		n += int64(m)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// Err returns an Errors value wrapping every recorded diagnostic if any
// Error-severity diagnostic was recorded, else nil. Modeled on
// asm.ErrAsm: a slice-backed error aggregating every diagnostic from a
// single pass.
func (s *Sink) Err() error {
	if !s.HasErrors() {
		return nil
	}
	return Errors(s.All())
}

// Errors is an error aggregating every diagnostic from a single compiler
// invocation, in stable source order.
type Errors []Diagnostic

func (e Errors) Error() string {
	l := make([]string, 0, len(e))
	for _, d := range e {
		l = append(l, d.Format())
	}
	return strings.Join(l, "\n")
}
