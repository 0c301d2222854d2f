// Package symtab implements the scope tree (spec.md §3, §4.1): nested
// symbol tables with ordered entries, multi-kind lookup, and the
// inherited-scope traversals used by semantic checking and layout.
//
// Grounded on the teacher's compiler/internal/symbol_table.go
// (ClassSymbolTable/FuncSymbolTable/SymbolDesc, lookUpClass/
// lookUpFuncInClass/lookUpVarInFunc) generalized from Jack's flat
// class/method tables to the arbitrarily-nested scope tree the
// struct/inheritance language needs.
package symtab

import (
	"fmt"
	"strconv"
	"strings"
)

// EntryKind is the role an entry plays in its owning scope.
type EntryKind int

const (
	KindStruct EntryKind = iota
	KindFunc
	KindImpl
	KindVar
	KindParam
	KindTempVar
	KindInherit
)

func (k EntryKind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindFunc:
		return "func"
	case KindImpl:
		return "impl"
	case KindVar:
		return "var"
	case KindParam:
		return "param"
	case KindTempVar:
		return "tempvar"
	case KindInherit:
		return "inherit"
	}
	return "unknown"
}

// Visibility marks var/func entries declared inside a struct.
type Visibility int

const (
	NoVisibility Visibility = iota
	Public
	Private
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Private:
		return "private"
	}
	return ""
}

// Entry is one symbol-table row. Link is non-nil for struct/func/impl
// entries (it names their subordinate Scope); it is nil for var/param/
// tempvar/inherit entries. Size and Offset are zero until the layout
// pass (C6) runs.
type Entry struct {
	Name       string
	Kind       EntryKind
	Type       string
	Link       *Scope
	Visibility Visibility
	Size       int
	Offset     int

	// Implemented is set by the impl relocator (C3) when a struct's
	// declared method entry is matched and merged with an impl
	// definition. Meaningless for entries outside a struct scope.
	Implemented bool

	// Node is the *ast.Node that declared this entry. Declared as
	// interface{} to avoid an import cycle between ast and symtab;
	// callers that need it cast to *ast.Node.
	Node interface{}
}

// Scope is a symbol table tied to one lexical region (spec.md §3).
// Level 0 is global, 1 is struct-or-free-function, 2 is method or
// method parameter list; nothing nests deeper.
type Scope struct {
	Name    string
	Level   int
	Upper   *Scope
	Entries []*Entry
	Size    int
	Offset  int
}

// NewScope creates a scope nested directly under upper.
func NewScope(name string, level int, upper *Scope) *Scope {
	return &Scope{Name: name, Level: level, Upper: upper}
}

// Insert appends entry in source order (spec.md §4.1 insert).
func (s *Scope) Insert(e *Entry) {
	s.Entries = append(s.Entries, e)
}

// Remove deletes entry from this scope. Used only by the impl
// relocator (C3) to move an impl entry out of global scope.
func (s *Scope) Remove(e *Entry) {
	for i, cand := range s.Entries {
		if cand == e {
			s.Entries = append(s.Entries[:i], s.Entries[i+1:]...)
			return
		}
	}
}

// Lookup returns the first entry matching name (case-insensitive) and
// kind (exact), or nil.
func (s *Scope) Lookup(name string, kind EntryKind) *Entry {
	for _, e := range s.Entries {
		if e.Kind == kind && strings.EqualFold(e.Name, name) {
			return e
		}
	}
	return nil
}

// LookupAll returns every entry matching name and kind, in insertion
// order (needed for overload sets, spec.md §4.1).
func (s *Scope) LookupAll(name string, kind EntryKind) []*Entry {
	var out []*Entry
	for _, e := range s.Entries {
		if e.Kind == kind && strings.EqualFold(e.Name, name) {
			out = append(out, e)
		}
	}
	return out
}

// LookupAllOfKind returns every entry of the given kind.
func (s *Scope) LookupAllOfKind(kind EntryKind) []*Entry {
	var out []*Entry
	for _, e := range s.Entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// LookupNamesOfKind returns the names only, in insertion order (used
// for iterating inherit lists, spec.md §4.1).
func (s *Scope) LookupNamesOfKind(kind EntryKind) []string {
	var out []string
	for _, e := range s.Entries {
		if e.Kind == kind {
			out = append(out, e.Name)
		}
	}
	return out
}

// Global walks Upper links to the root (level-0) scope. Struct names
// are always resolved globally, never shadowed by a nested scope —
// confirmed by original_source/codegen/codegen/codegen.cpp's
// sizeofEntry/sizeofType, which walk currentScope->upperScope to the
// root before calling lookup(type, "struct").
func (s *Scope) Global() *Scope {
	g := s
	for g.Upper != nil {
		g = g.Upper
	}
	return g
}

// LookupStruct resolves a struct name against the global scope.
func (s *Scope) LookupStruct(name string) *Entry {
	return s.Global().Lookup(name, KindStruct)
}

// InheritedScopes returns, in declaration order, the subordinate scope
// of each struct this (struct) scope inherits from. A parent name that
// does not resolve to a declared struct is skipped; no pass reports it
// as a diagnostic.
func (s *Scope) InheritedScopes() []*Scope {
	var out []*Scope
	for _, name := range s.LookupNamesOfKind(KindInherit) {
		if parent := s.LookupStruct(name); parent != nil && parent.Link != nil {
			out = append(out, parent.Link)
		}
	}
	return out
}

// ResolveVarInFunctionScope implements spec.md §4.1's ordered search:
// (a) locals, (b) parameters, (c) if the enclosing scope is a method,
// the owning struct's members, (d) each inherited struct in
// declaration order. owningStruct is the struct scope that owns this
// function scope when it is a method, or nil for a free function.
func (s *Scope) ResolveVarInFunctionScope(name string, owningStruct *Scope) *Entry {
	if e := s.Lookup(name, KindVar); e != nil {
		return e
	}
	if e := s.Lookup(name, KindParam); e != nil {
		return e
	}
	if owningStruct == nil {
		return nil
	}
	return owningStruct.ResolveMemberInStruct(name)
}

// ResolveMemberInStruct implements spec.md §4.1: (a) this struct's var
// entries, (b) each inherited struct's var entries in declaration
// order. Called on a struct scope. Cyclic inheritance is fatal for C7
// but not for C5 (spec.md §4.4), so this walk tracks visited scopes to
// stay finite even when C4 has not yet rejected the program.
func (s *Scope) ResolveMemberInStruct(name string) *Entry {
	return s.resolveMemberInStruct(name, map[*Scope]bool{})
}

func (s *Scope) resolveMemberInStruct(name string, seen map[*Scope]bool) *Entry {
	if seen[s] {
		return nil
	}
	seen[s] = true
	if e := s.Lookup(name, KindVar); e != nil {
		return e
	}
	for _, parent := range s.InheritedScopes() {
		if e := parent.resolveMemberInStruct(name, seen); e != nil {
			return e
		}
	}
	return nil
}

// ResolveMethodInStruct mirrors ResolveMemberInStruct for func entries,
// returning every overload found at the first scope (own or inherited)
// that declares the name, in declaration order within that scope.
func (s *Scope) ResolveMethodInStruct(name string) []*Entry {
	return s.resolveMethodInStruct(name, map[*Scope]bool{})
}

func (s *Scope) resolveMethodInStruct(name string, seen map[*Scope]bool) []*Entry {
	if seen[s] {
		return nil
	}
	seen[s] = true
	if fns := s.LookupAll(name, KindFunc); len(fns) > 0 {
		return fns
	}
	for _, parent := range s.InheritedScopes() {
		if fns := parent.resolveMethodInStruct(name, seen); len(fns) > 0 {
			return fns
		}
	}
	return nil
}

// Box is a minimal printable snapshot used by package report; exposed
// here so report need not reach into Scope internals.
type Box struct {
	Name    string
	Level   int
	Entries []*Entry
	Nested  []*Box
}

func (s *Scope) Snapshot() *Box {
	b := &Box{Name: s.Name, Level: s.Level, Entries: s.Entries}
	for _, e := range s.Entries {
		if e.Link != nil {
			b.Nested = append(b.Nested, e.Link.Snapshot())
		}
	}
	return b
}

// ---- Type string grammar (spec.md §3) ----

// Trim strips every "[...]" suffix from a type string.
func Trim(t string) string {
	if i := strings.IndexByte(t, '['); i >= 0 {
		return t[:i]
	}
	return t
}

// Dims yields the number of "[...]" suffixes on a type string.
func Dims(t string) int {
	return strings.Count(t, "[")
}

// Cells multiplies the bracketed integers of an array type string; it
// returns 1 for a non-array type.
func Cells(t string) int {
	cells := 1
	rest := t
	for {
		i := strings.IndexByte(rest, '[')
		if i < 0 {
			break
		}
		j := strings.IndexByte(rest[i:], ']')
		if j < 0 {
			break
		}
		n, err := strconv.Atoi(rest[i+1 : i+j])
		if err == nil {
			cells *= n
		}
		rest = rest[i+j+1:]
	}
	return cells
}

// ArrayType builds "base[d1][d2]..." from dimension sizes.
func ArrayType(base string, dims []int) string {
	var b strings.Builder
	b.WriteString(base)
	for _, d := range dims {
		fmt.Fprintf(&b, "[%d]", d)
	}
	return b.String()
}
