package sema

import (
	"fmt"

	"softwares_for_struct_lang/ast"
	"softwares_for_struct_lang/symtab"
)

// RelocateImpls is C3 (spec.md §4.3). It moves each impl block's method
// entries out of the temporary global-scope impl entry C2 created and
// into the matching struct's scope, re-parenting each method scope's
// Upper link to the struct scope directly (so a method scope's Upper
// is always the owning struct scope — spec.md §3's level rule, "2 is
// method or method parameter; nothing nests deeper", holds with no
// extra impl layer in between).
//
// Per 6.1/6.2's "declared and defined must correspond exactly",
// relocation resolves onto the matching declared entry in place
// (swapping its header-only Link for the impl method's body-bearing
// one) rather than inserting a second, ambiguous entry with the same
// name and signature.
func RelocateImpls(global *symtab.Scope, diags *Diagnostics) {
	implEntries := global.LookupAllOfKind(symtab.KindImpl)
	for _, implEntry := range implEntries {
		implNode, _ := implEntry.Node.(*ast.Node)
		line := 0
		if implNode != nil {
			line = implNode.Line
		}
		structEntry := global.Lookup(implEntry.Name, symtab.KindStruct)
		if structEntry == nil {
			diags.Error(CodeImplUnknownStruct, fmt.Sprintf("impl block for unknown struct %q", implEntry.Name), line)
			continue
		}
		structScope := structEntry.Link
		for _, methodEntry := range implEntry.Link.Entries {
			relocateMethod(structScope, methodEntry, diags)
		}
		global.Remove(implEntry)
	}
}

func relocateMethod(structScope *symtab.Scope, methodEntry *symtab.Entry, diags *Diagnostics) {
	methodEntry.Link.Upper = structScope
	fdNode, _ := methodEntry.Node.(*ast.Node)
	line := 0
	if fdNode != nil {
		line = fdNode.Line
	}

	decl := findMatchingDecl(structScope, methodEntry)
	if decl == nil {
		diags.Error(CodeImplMethodNoDecl, fmt.Sprintf("impl method %s.%s has no matching declaration", structScope.Name, methodEntry.Name), line)
		methodEntry.Implemented = true
		structScope.Insert(methodEntry)
		if fdNode != nil {
			fdNode.ScopePtr, fdNode.EntryPtr = structScope, methodEntry
		}
		return
	}
	decl.Link = methodEntry.Link
	decl.Implemented = true
	if fdNode != nil {
		fdNode.ScopePtr, fdNode.EntryPtr = structScope, decl
	}
}

func findMatchingDecl(structScope *symtab.Scope, methodEntry *symtab.Entry) *symtab.Entry {
	params := paramTypesOfEntry(methodEntry.Link)
	for _, cand := range structScope.LookupAll(methodEntry.Name, symtab.KindFunc) {
		if signatureMatches(cand.Type, paramTypesOfEntry(cand.Link), methodEntry.Type, params) {
			return cand
		}
	}
	return nil
}

// BuildGraphs assembles the inheritance and member-dependency graphs
// (spec.md §4.3) used by C4's cycle detection, preserving struct
// declaration order so DFS traversal order — and therefore the
// reported cycle path — is deterministic.
func BuildGraphs(global *symtab.Scope) (inherit, depend *Graph) {
	structs := global.LookupAllOfKind(symtab.KindStruct)
	inherit = &Graph{Edges: map[string][]string{}}
	depend = &Graph{Edges: map[string][]string{}}
	for _, e := range structs {
		inherit.Order = append(inherit.Order, e.Name)
		depend.Order = append(depend.Order, e.Name)
		inherit.Edges[e.Name] = e.Link.LookupNamesOfKind(symtab.KindInherit)

		var deps []string
		for _, member := range e.Link.LookupAllOfKind(symtab.KindVar) {
			base := symtab.Trim(member.Type)
			if base != "integer" && base != "float" {
				deps = append(deps, base)
			}
		}
		depend.Edges[e.Name] = deps
	}
	return inherit, depend
}
