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

// Package sym implements the chained symbol tables used by the semantic
// analyzer to resolve names: a Global scope at the root, one Function scope
// per function, and nested Block scopes inside function bodies.
package sym

import "github.com/db47h/b/source"

// Kind classifies a Symbol.
type Kind int

// Symbol kinds.
const (
	Global Kind = iota
	Extern
	Auto
	Parameter
	Function
	Label
)

func (k Kind) String() string {
	switch k {
	case Global:
		return "global"
	case Extern:
		return "extern"
	case Auto:
		return "auto"
	case Parameter:
		return "parameter"
	case Function:
		return "function"
	case Label:
		return "label"
	default:
		return "symbol"
	}
}

// Symbol is one resolved name: its kind, storage location, and definition
// site.
type Symbol struct {
	Name string
	Kind Kind
	Pos  source.Position

	// FrameSlot is the stack index for Auto/Parameter symbols, assigned by
	// the semantic analyzer's frame assignment pass.
	FrameSlot int

	// ArraySize is > 0 for an Auto/Global array: the declared element
	// count. FrameSlot/the global's storage reserves this many contiguous
	// slots.
	ArraySize int

	// IRName is the symbolic name used in the emitted IR for
	// Global/Extern/Function symbols, and the IR label for Label symbols.
	// It is assigned once, at symbol creation.
	IRName string

	// Implicit marks a placeholder Extern symbol materialized because a
	// free identifier was not found in any visible scope (implicit
	// extern, spec §4.4).
	Implicit bool
}

// IsLvalueKind reports whether a bare NameReference to a symbol of this
// kind is an lvalue: Auto, Parameter, Global and Extern are storage; the
// others are not directly assignable.
func (k Kind) IsLvalueKind() bool {
	switch k {
	case Auto, Parameter, Global, Extern:
		return true
	default:
		return false
	}
}

// Scope is one lexical scope: a symbol table chained to its parent.
type Scope struct {
	parent  *Scope
	symbols map[string]*Symbol
	isFunc  bool // true for a Function-level scope: labels live here
}

// NewGlobalScope returns a fresh root scope with no parent.
func NewGlobalScope() *Scope {
	return &Scope{symbols: make(map[string]*Symbol)}
}

// NewFunctionScope pushes a function scope (holding the function's
// parameters and, flatly, all of its labels) as a child of parent.
func NewFunctionScope(parent *Scope) *Scope {
	return &Scope{parent: parent, symbols: make(map[string]*Symbol), isFunc: true}
}

// NewBlockScope pushes a nested block scope as a child of parent.
func NewBlockScope(parent *Scope) *Scope {
	return &Scope{parent: parent, symbols: make(map[string]*Symbol)}
}

// Parent returns the enclosing scope, or nil for the global scope.
func (s *Scope) Parent() *Scope { return s.parent }

// DefineLocal inserts sym into this scope. It returns false without
// inserting if a symbol with the same name already exists directly in this
// scope (shadowing an outer scope's symbol of the same name is allowed; a
// second symbol in the *same* scope is not, per the no-duplicate-names
// invariant).
func (s *Scope) DefineLocal(symbol *Symbol) bool {
	if _, exists := s.symbols[symbol.Name]; exists {
		return false
	}
	s.symbols[symbol.Name] = symbol
	return true
}

// Lookup walks innermost to outermost looking for name, returning the first
// match and the scope it was found in.
func (s *Scope) Lookup(name string) (*Symbol, *Scope) {
	for sc := s; sc != nil; sc = sc.parent {
		if sym, ok := sc.symbols[name]; ok {
			return sym, sc
		}
	}
	return nil, nil
}

// LookupLocal looks up name only in this scope, not its ancestors.
func (s *Scope) LookupLocal(name string) (*Symbol, bool) {
	sym, ok := s.symbols[name]
	return sym, ok
}

// FunctionScope walks outward from s to find the enclosing function scope,
// which owns the function-flat label namespace. Returns nil if s is (or is
// only reachable from) the global scope.
func (s *Scope) FunctionScope() *Scope {
	for sc := s; sc != nil; sc = sc.parent {
		if sc.isFunc {
			return sc
		}
	}
	return nil
}

// Global walks outward from s to the root scope.
func (s *Scope) Global() *Scope {
	sc := s
	for sc.parent != nil {
		sc = sc.parent
	}
	return sc
}
