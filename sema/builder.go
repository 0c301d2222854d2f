package sema

import (
	"fmt"

	"softwares_for_struct_lang/ast"
	"softwares_for_struct_lang/symtab"
)

// BuildScopes is C2 (spec.md §4.2): a depth-first walk of the Prog tree
// that creates the global scope, one subordinate scope per struct/free
// function/impl block/method, inserts every declaration as an Entry,
// and performs the duplicate-declaration checks 8.1–8.4 and the
// overload warnings 9.1–9.2. It attaches ScopePtr/EntryPtr to every
// node it visits so later passes never re-walk the tree to find them.
func BuildScopes(prog *ast.Node) (*symtab.Scope, *Diagnostics) {
	diags := &Diagnostics{}
	global := symtab.NewScope("global", 0, nil)
	prog.ScopePtr = global

	for _, child := range prog.Children {
		switch child.Kind {
		case ast.StructDecl:
			buildStruct(global, child, diags)
		case ast.ImplDef:
			buildImpl(global, child, diags)
		case ast.FuncDef:
			buildFreeFunc(global, child, diags)
		}
	}
	return global, diags
}

func buildStruct(global *symtab.Scope, node *ast.Node, diags *Diagnostics) {
	name := node.Child(0).Value
	if global.Lookup(name, symtab.KindStruct) != nil {
		diags.Error(CodeDupStruct, fmt.Sprintf("struct %q already declared", name), node.Line)
	}
	structScope := symtab.NewScope(name, 1, global)
	entry := &symtab.Entry{Name: name, Kind: symtab.KindStruct, Link: structScope, Node: node}
	global.Insert(entry)
	node.ScopePtr = global
	node.EntryPtr = entry

	inheritList := node.Child(1)
	inheritList.ScopePtr = structScope
	for _, idNode := range inheritList.Children {
		idNode.ScopePtr = structScope
		structScope.Insert(&symtab.Entry{Name: idNode.Value, Kind: symtab.KindInherit, Type: idNode.Value})
	}

	memberList := node.Child(2)
	memberList.ScopePtr = structScope
	for _, member := range memberList.Children {
		member.ScopePtr = structScope
		visNode := member.Child(0)
		visNode.ScopePtr = structScope
		declNode := member.Child(1)
		if declNode.Kind == ast.FuncDecl {
			buildStructMethodDecl(structScope, declNode, visNode.Value, diags)
		} else {
			buildStructMember(structScope, declNode, visNode.Value, diags)
		}
	}
}

func visibilityOf(word string) symtab.Visibility {
	if word == "public" {
		return symtab.Public
	}
	return symtab.Private
}

func buildStructMember(structScope *symtab.Scope, varDecl *ast.Node, visWord string, diags *Diagnostics) {
	name := varDecl.Child(0).Value
	typeNode, sizesNode := varDecl.Child(1), varDecl.Child(2)
	typ := declaredType(typeNode, sizesNode)
	if structScope.Lookup(name, symtab.KindVar) != nil {
		diags.Error(CodeDupMember, fmt.Sprintf("member %q already declared in struct %q", name, structScope.Name), varDecl.Line)
	}
	entry := &symtab.Entry{Name: name, Kind: symtab.KindVar, Type: typ, Visibility: visibilityOf(visWord), Node: varDecl}
	structScope.Insert(entry)
	varDecl.ScopePtr, varDecl.EntryPtr = structScope, entry
	typeNode.ScopePtr, sizesNode.ScopePtr = structScope, structScope
}

func buildStructMethodDecl(structScope *symtab.Scope, funcDecl *ast.Node, visWord string, diags *Diagnostics) {
	name := funcDecl.Child(0).Value
	paramsNode, retTypeNode := funcDecl.Child(1), funcDecl.Child(2)
	retType := retTypeNode.Value
	params := paramTypesOf(paramsNode)

	existing := structScope.LookupAll(name, symtab.KindFunc)
	dup := false
	for _, e := range existing {
		if signatureMatches(e.Type, paramTypesOfEntry(e.Link), retType, params) {
			diags.Error(CodeDupMember, fmt.Sprintf("method %q already declared with the same signature in struct %q", name, structScope.Name), funcDecl.Line)
			dup = true
			break
		}
	}
	if !dup && len(existing) > 0 {
		diags.Warning(CodeOverloadMemberFunc, fmt.Sprintf("method %q overloaded in struct %q", name, structScope.Name), funcDecl.Line)
	}

	methodScope := symtab.NewScope(name, 2, structScope)
	entry := &symtab.Entry{Name: name, Kind: symtab.KindFunc, Type: retType, Link: methodScope, Visibility: visibilityOf(visWord), Node: funcDecl}
	structScope.Insert(entry)
	funcDecl.ScopePtr, funcDecl.EntryPtr = structScope, entry
	buildFParamList(methodScope, paramsNode, diags)
}

func buildFParamList(scope *symtab.Scope, paramsNode *ast.Node, diags *Diagnostics) {
	paramsNode.ScopePtr = scope
	for _, p := range paramsNode.Children {
		p.ScopePtr = scope
		name := p.Child(0).Value
		typeNode, sizesNode := p.Child(1), p.Child(2)
		typeNode.ScopePtr, sizesNode.ScopePtr = scope, scope
		typ := declaredType(typeNode, sizesNode)
		if scope.Lookup(name, symtab.KindParam) != nil {
			diags.Error(CodeDupParamOrLocal, fmt.Sprintf("parameter %q already declared", name), p.Line)
		}
		entry := &symtab.Entry{Name: name, Kind: symtab.KindParam, Type: typ, Node: p}
		scope.Insert(entry)
		p.EntryPtr = entry
	}
}

func buildFreeFunc(global *symtab.Scope, node *ast.Node, diags *Diagnostics) {
	name := node.Child(0).Value
	paramsNode, retTypeNode, bodyNode := node.Child(1), node.Child(2), node.Child(3)
	retType := retTypeNode.Value
	params := paramTypesOf(paramsNode)

	existing := global.LookupAll(name, symtab.KindFunc)
	dup := false
	for _, e := range existing {
		if signatureMatches(e.Type, paramTypesOfEntry(e.Link), retType, params) {
			diags.Error(CodeDupFreeFunc, fmt.Sprintf("function %q already declared with the same signature", name), node.Line)
			dup = true
			break
		}
	}
	if !dup && len(existing) > 0 {
		diags.Warning(CodeOverloadFreeFunc, fmt.Sprintf("function %q overloaded", name), node.Line)
	}

	funcScope := symtab.NewScope(name, 1, global)
	entry := &symtab.Entry{Name: name, Kind: symtab.KindFunc, Type: retType, Link: funcScope, Node: node}
	global.Insert(entry)
	node.ScopePtr, node.EntryPtr = global, entry

	buildFParamList(funcScope, paramsNode, diags)
	buildBlock(funcScope, bodyNode, diags)
}

func buildImpl(global *symtab.Scope, node *ast.Node, diags *Diagnostics) {
	name := node.Child(0).Value
	implScope := symtab.NewScope(name+"$impl", 1, global)
	entry := &symtab.Entry{Name: name, Kind: symtab.KindImpl, Link: implScope, Node: node}
	global.Insert(entry)
	node.ScopePtr, node.EntryPtr = global, entry

	funcList := node.Child(1)
	funcList.ScopePtr = implScope
	for _, fd := range funcList.Children {
		buildImplMethodDef(implScope, fd, diags)
	}
}

func buildImplMethodDef(implScope *symtab.Scope, funcDef *ast.Node, diags *Diagnostics) {
	name := funcDef.Child(0).Value
	paramsNode, retTypeNode, bodyNode := funcDef.Child(1), funcDef.Child(2), funcDef.Child(3)
	methodScope := symtab.NewScope(name, 2, implScope)
	entry := &symtab.Entry{Name: name, Kind: symtab.KindFunc, Type: retTypeNode.Value, Link: methodScope, Node: funcDef}
	implScope.Insert(entry)
	funcDef.ScopePtr, funcDef.EntryPtr = implScope, entry

	buildFParamList(methodScope, paramsNode, diags)
	buildBlock(methodScope, bodyNode, diags)
}

// buildBlock walks one StatBlock's VarDeclOrStatBlock children, folding
// locals into funcScope (spec.md §4.2: a method/function has a single
// flat scope no matter how deeply its if/while bodies nest) and
// attaching ScopePtr through every statement and expression node so C5
// never needs to re-derive "which scope is this node in".
func buildBlock(funcScope *symtab.Scope, block *ast.Node, diags *Diagnostics) {
	block.ScopePtr = funcScope
	for _, wrapper := range block.Children {
		wrapper.ScopePtr = funcScope
		inner := wrapper.Child(0)
		switch inner.Kind {
		case ast.VarDecl:
			buildLocalVarDecl(funcScope, inner, diags)
		case ast.IfStat:
			buildIfStat(funcScope, inner, diags)
		case ast.WhileStat:
			buildWhileStat(funcScope, inner, diags)
		default:
			attachScope(inner, funcScope)
		}
	}
}

func buildLocalVarDecl(funcScope *symtab.Scope, varDecl *ast.Node, diags *Diagnostics) {
	name := varDecl.Child(0).Value
	typeNode, sizesNode := varDecl.Child(1), varDecl.Child(2)
	typ := declaredType(typeNode, sizesNode)
	if funcScope.Lookup(name, symtab.KindVar) != nil || funcScope.Lookup(name, symtab.KindParam) != nil {
		diags.Error(CodeDupParamOrLocal, fmt.Sprintf("local %q already declared in %q", name, funcScope.Name), varDecl.Line)
	}
	entry := &symtab.Entry{Name: name, Kind: symtab.KindVar, Type: typ, Node: varDecl}
	funcScope.Insert(entry)
	varDecl.ScopePtr, varDecl.EntryPtr = funcScope, entry
	typeNode.ScopePtr, sizesNode.ScopePtr = funcScope, funcScope
}

func buildIfStat(funcScope *symtab.Scope, ifNode *ast.Node, diags *Diagnostics) {
	ifNode.ScopePtr = funcScope
	attachScope(ifNode.Child(0), funcScope)
	buildBlock(funcScope, ifNode.Child(1), diags)
	buildBlock(funcScope, ifNode.Child(2), diags)
}

func buildWhileStat(funcScope *symtab.Scope, whileNode *ast.Node, diags *Diagnostics) {
	whileNode.ScopePtr = funcScope
	attachScope(whileNode.Child(0), funcScope)
	buildBlock(funcScope, whileNode.Child(1), diags)
}

// attachScope sets ScopePtr through a pure statement/expression subtree
// (one with no declarations of its own).
func attachScope(node *ast.Node, scope *symtab.Scope) {
	if node == nil {
		return
	}
	node.ScopePtr = scope
	for _, c := range node.Children {
		attachScope(c, scope)
	}
}
