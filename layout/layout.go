// Package layout implements the layout pass (C6, spec.md §4.6): sizes
// for every type, stack-frame offsets for every named entity, and
// temporaries synthesized for every intermediate expression result.
//
// Grounded on the teacher's compiler/internal/symbol_table.go (Kind,
// Size, Offset fields already present on SymbolDesc) and the
// sizeofTable/sizeofEntry/sizeofType trio retrieved from
// original_source/codegen/codegen/codegen.cpp, generalized here from
// Jack's single fixed-word size to this language's INT_SIZE/FLOAT_SIZE
// split and multi-dimensional array cells.
package layout

import (
	"fmt"

	"softwares_for_struct_lang/ast"
	"softwares_for_struct_lang/symtab"
)

const (
	IntSize   = 4
	FloatSize = 8
	WordSize  = 4
)

// SizeofType is spec.md §4.6's sizeof_type: scalar sizes for
// integer/float/void, a struct's own (memoized) scope size for a named
// struct type, and base-size × cell-count for an array type.
func SizeofType(t string, global *symtab.Scope) int {
	base := symtab.Trim(t)
	var baseSize int
	switch base {
	case "void", "integer":
		baseSize = IntSize
	case "float":
		baseSize = FloatSize
	case "":
		baseSize = IntSize
	default:
		if se := global.Lookup(base, symtab.KindStruct); se != nil {
			baseSize = SizeofStructScope(se.Link, global)
		}
	}
	return baseSize * symtab.Cells(t)
}

// SizeofStructScope sums the size of every var member plus, for each
// inherited struct, its own (recursively computed) scope size.
// Memoized onto the scope's Size field: a non-zero Size is returned as
// is, so each struct is summed once. The memo test is Size != 0, so an
// empty struct is summed again on every call (always yielding 0).
func SizeofStructScope(s *symtab.Scope, global *symtab.Scope) int {
	if s.Size != 0 {
		return s.Size
	}
	total := 0
	for _, m := range s.LookupAllOfKind(symtab.KindVar) {
		sz := SizeofType(m.Type, global)
		m.Size = sz
		total += sz
	}
	for _, parent := range s.InheritedScopes() {
		total += SizeofStructScope(parent, global)
	}
	s.Size = total
	return total
}

// AssignMemberOffsets lays out s's own var members (spec.md §4.6 is
// silent on field order; this implementation places each struct's
// inherited blocks first, in inherit-list order, followed by its own
// members, mirroring the teacher's layout of base-class fields ahead
// of a subclass's own — a conventional single-inheritance prefix
// layout). Offsets are positive, relative to the struct instance's own
// base address (as opposed to the negative, frame-pointer-relative
// offsets a function scope's entries receive).
func AssignMemberOffsets(s *symtab.Scope, global *symtab.Scope) {
	base := 0
	for _, parent := range s.InheritedScopes() {
		AssignMemberOffsets(parent, global)
		base += SizeofStructScope(parent, global)
	}
	cursor := base
	for _, m := range s.LookupAllOfKind(symtab.KindVar) {
		m.Offset = cursor
		cursor += m.Size
	}
}

// MemberOffsetWithin resolves member's address offset relative to an
// instance of struct scope s, accounting for the inherited-block
// prefix when member was declared on an ancestor rather than s itself.
// Returns -1 if member cannot be found under s at all.
func MemberOffsetWithin(s *symtab.Scope, member *symtab.Entry, global *symtab.Scope) int {
	for _, m := range s.LookupAllOfKind(symtab.KindVar) {
		if m == member {
			return member.Offset
		}
	}
	base := 0
	for _, parent := range s.InheritedScopes() {
		if off := MemberOffsetWithin(parent, member, global); off >= 0 {
			return base + off
		}
		base += SizeofStructScope(parent, global)
	}
	return -1
}

// Run lays out every struct's size and member offsets and then, for
// every free function and relocated method body in source order,
// allocates its temporaries and computes its frame offsets. It must
// run after C5 has annotated every expression node's SemanticType.
func Run(global *symtab.Scope, prog *ast.Node) {
	for _, se := range global.LookupAllOfKind(symtab.KindStruct) {
		SizeofStructScope(se.Link, global)
		AssignMemberOffsets(se.Link, global)
	}
	for _, child := range prog.Children {
		switch child.Kind {
		case ast.FuncDef:
			layoutFuncDef(child, global)
		case ast.ImplDef:
			for _, fd := range child.Child(1).Children {
				layoutFuncDef(fd, global)
			}
		}
	}
}

func layoutFuncDef(funcDef *ast.Node, global *symtab.Scope) {
	entry, ok := funcDef.EntryPtr.(*symtab.Entry)
	if !ok || entry == nil || entry.Link == nil {
		return
	}
	isMain := funcDef.Parent != nil && funcDef.Parent.Kind == ast.Prog && funcDef.Child(0).Value == "main"
	allocator := &tempAllocator{scope: entry.Link, global: global}
	allocator.walkBlock(funcDef.Child(3))
	layoutFrame(entry, isMain, global)
}

func layoutFrame(funcEntry *symtab.Entry, isMain bool, global *symtab.Scope) {
	s := funcEntry.Link
	running := 0
	if !isMain {
		fixed := SizeofType(funcEntry.Type, global) + WordSize + WordSize
		s.Offset = fixed
		running = -fixed
	}
	for _, e := range s.Entries {
		switch e.Kind {
		case symtab.KindVar, symtab.KindParam:
			e.Size = SizeofType(e.Type, global)
			running -= e.Size
			e.Offset = running
		case symtab.KindTempVar:
			running -= e.Size
			e.Offset = running
		}
	}
	s.Size = -running
}

// tempAllocator mirrors C5's expression walk, creating one tempvar
// entry per arithmetic/relational/call/literal node (spec.md §4.6).
type tempAllocator struct {
	scope   *symtab.Scope
	global  *symtab.Scope
	counter int
}

func (a *tempAllocator) walkBlock(block *ast.Node) {
	for _, wrapper := range block.Children {
		inner := wrapper.Child(0)
		switch inner.Kind {
		case ast.VarDecl:
		case ast.IfStat:
			a.walkExpr(inner.Child(0))
			a.walkBlock(inner.Child(1))
			a.walkBlock(inner.Child(2))
		case ast.WhileStat:
			a.walkExpr(inner.Child(0))
			a.walkBlock(inner.Child(1))
		case ast.ReadStat, ast.WriteStat, ast.ReturnStat:
			a.walkExpr(inner.Child(0))
		case ast.AssignStat:
			a.walkExpr(inner.Child(0))
			a.walkExpr(inner.Child(1))
		default:
			a.walkExpr(inner)
		}
	}
}

func (a *tempAllocator) walkExpr(node *ast.Node) {
	if node == nil {
		return
	}
	for _, c := range node.Children {
		a.walkExpr(c)
	}
	switch node.Kind {
	case ast.IntLit, ast.FloatLit, ast.AddOp, ast.MultOp, ast.RelExpr, ast.FunctionCall:
		a.allocate(node)
	}
}

func (a *tempAllocator) allocate(node *ast.Node) {
	if node.SemanticType == "" || node.SemanticType == ast.ErrorType {
		return
	}
	typ := symtab.Trim(node.SemanticType)
	entry := &symtab.Entry{
		Name: fmt.Sprintf("t%d", a.counter),
		Kind: symtab.KindTempVar,
		Type: typ,
		Size: SizeofType(typ, a.global),
	}
	a.counter++
	a.scope.Insert(entry)
	node.TempPtr = entry
}
