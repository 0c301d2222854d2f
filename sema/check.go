package sema

import (
	"fmt"
	"strings"

	"softwares_for_struct_lang/ast"
	"softwares_for_struct_lang/symtab"
)

// Check is C5 (spec.md §4.5): the single type-propagating walk over
// every function/method body, plus the struct-level checks (6.2, 8.5,
// 8.6, 9.3, 11.5) that need the fully built, fully relocated scope
// tree rather than a single declaration node. It assumes BuildScopes
// and RelocateImpls have already run over prog/global.
func Check(global *symtab.Scope, prog *ast.Node) *Diagnostics {
	diags := &Diagnostics{}
	checkDeclaredButNotImplemented(global, diags)
	checkTypeNames(global, diags)
	checkShadowing(global, diags)
	checkOverrides(global, diags)

	for _, child := range prog.Children {
		switch child.Kind {
		case ast.FuncDef:
			checkFuncBody(child, nil, diags)
		case ast.ImplDef:
			structEntry := global.Lookup(child.Child(0).Value, symtab.KindStruct)
			if structEntry == nil {
				continue
			}
			for _, fd := range child.Child(1).Children {
				checkFuncBody(fd, structEntry.Link, diags)
			}
		}
	}
	return diags
}

func checkDeclaredButNotImplemented(global *symtab.Scope, diags *Diagnostics) {
	for _, se := range global.LookupAllOfKind(symtab.KindStruct) {
		for _, fe := range se.Link.LookupAllOfKind(symtab.KindFunc) {
			if !fe.Implemented {
				diags.Error(CodeDeclNoImpl, fmt.Sprintf("declared method %s.%s has no implementation", se.Name, fe.Name), lineOfNode(fe.Node))
			}
		}
	}
}

func checkTypeNames(global *symtab.Scope, diags *Diagnostics) {
	seen := map[*symtab.Entry]bool{}
	var walk func(s *symtab.Scope)
	walk = func(s *symtab.Scope) {
		for _, e := range s.Entries {
			if (e.Kind == symtab.KindVar || e.Kind == symtab.KindParam) && !seen[e] {
				seen[e] = true
				base := symtab.Trim(e.Type)
				if base != "integer" && base != "float" && base != "void" && base != "" {
					if global.Lookup(base, symtab.KindStruct) == nil {
						diags.Error(CodeUnknownStructName, fmt.Sprintf("unknown type %q", base), lineOfNode(e.Node))
					}
				}
			}
			if e.Link != nil {
				walk(e.Link)
			}
		}
	}
	walk(global)
}

func checkShadowing(global *symtab.Scope, diags *Diagnostics) {
	for _, se := range global.LookupAllOfKind(symtab.KindStruct) {
		structScope := se.Link
		for _, member := range structScope.LookupAllOfKind(symtab.KindVar) {
			for _, parent := range structScope.InheritedScopes() {
				if parent.ResolveMemberInStruct(member.Name) != nil {
					diags.Warning(CodeMemberShadowsInherit, fmt.Sprintf("member %q shadows an inherited member", member.Name), lineOfNode(member.Node))
					break
				}
			}
		}
		for _, methodEntry := range structScope.LookupAllOfKind(symtab.KindFunc) {
			if methodEntry.Link == nil {
				continue
			}
			for _, local := range methodEntry.Link.LookupAllOfKind(symtab.KindVar) {
				if structScope.ResolveMemberInStruct(local.Name) != nil {
					diags.Warning(CodeLocalShadowsMember, fmt.Sprintf("local %q shadows struct member", local.Name), lineOfNode(local.Node))
				}
			}
		}
	}
}

func checkOverrides(global *symtab.Scope, diags *Diagnostics) {
	for _, se := range global.LookupAllOfKind(symtab.KindStruct) {
		structScope := se.Link
		for _, fe := range structScope.LookupAllOfKind(symtab.KindFunc) {
			params := paramTypesOfEntry(fe.Link)
			for _, parent := range structScope.InheritedScopes() {
				for _, pfe := range parent.ResolveMethodInStruct(fe.Name) {
					if signatureMatches(pfe.Type, paramTypesOfEntry(pfe.Link), fe.Type, params) {
						diags.Warning(CodeOverrideInherited, fmt.Sprintf("%s.%s overrides an inherited method", se.Name, fe.Name), lineOfNode(fe.Node))
					}
				}
			}
		}
	}
}

func checkFuncBody(funcDef *ast.Node, owningStruct *symtab.Scope, diags *Diagnostics) {
	entry, ok := funcDef.EntryPtr.(*symtab.Entry)
	if !ok || entry == nil || entry.Link == nil {
		return
	}
	returnType := funcDef.Child(2).Value
	checkBlock(funcDef.Child(3), entry.Link, owningStruct, returnType, diags)
}

func checkBlock(block *ast.Node, funcScope, owningStruct *symtab.Scope, returnType string, diags *Diagnostics) {
	for _, wrapper := range block.Children {
		inner := wrapper.Child(0)
		switch inner.Kind {
		case ast.VarDecl:
			// no initializer in this grammar; nothing to type-check.
		case ast.IfStat:
			checkExpr(inner.Child(0), funcScope, owningStruct, diags)
			checkBlock(inner.Child(1), funcScope, owningStruct, returnType, diags)
			checkBlock(inner.Child(2), funcScope, owningStruct, returnType, diags)
		case ast.WhileStat:
			checkExpr(inner.Child(0), funcScope, owningStruct, diags)
			checkBlock(inner.Child(1), funcScope, owningStruct, returnType, diags)
		case ast.ReadStat:
			checkExpr(inner.Child(0), funcScope, owningStruct, diags)
		case ast.WriteStat:
			checkExpr(inner.Child(0), funcScope, owningStruct, diags)
		case ast.ReturnStat:
			checkReturnStat(inner, returnType, funcScope, owningStruct, diags)
		case ast.AssignStat:
			checkAssignStat(inner, funcScope, owningStruct, diags)
		default:
			checkExpr(inner, funcScope, owningStruct, diags)
		}
	}
}

func checkReturnStat(node *ast.Node, returnType string, funcScope, owningStruct *symtab.Scope, diags *Diagnostics) {
	t := checkExpr(node.Child(0), funcScope, owningStruct, diags)
	if t != ast.ErrorType && returnType != ast.ErrorType && t != returnType {
		diags.Error(CodeReturnTypeMismatch, fmt.Sprintf("return type %s does not match declared return type %s", t, returnType), node.Line)
	}
}

func checkAssignStat(node *ast.Node, funcScope, owningStruct *symtab.Scope, diags *Diagnostics) {
	lt := checkExpr(node.Child(0), funcScope, owningStruct, diags)
	rt := checkExpr(node.Child(1), funcScope, owningStruct, diags)
	if lt != ast.ErrorType && rt != ast.ErrorType && lt != rt {
		diags.Error(CodeAssignTypeMismatch, fmt.Sprintf("cannot assign %s to %s", rt, lt), node.Line)
	}
}

// checkExpr type-propagates one expression node, recording its result
// on SemanticType, and returns that type string.
func checkExpr(node *ast.Node, funcScope, owningStruct *symtab.Scope, diags *Diagnostics) string {
	var t string
	switch node.Kind {
	case ast.IntLit:
		t = "integer"
	case ast.FloatLit:
		t = "float"
	case ast.Sign:
		t = checkExpr(node.Child(0), funcScope, owningStruct, diags)
	case ast.Not:
		checkExpr(node.Child(0), funcScope, owningStruct, diags)
		t = "integer"
	case ast.AddOp, ast.MultOp:
		lt := checkExpr(node.Child(0), funcScope, owningStruct, diags)
		rt := checkExpr(node.Child(1), funcScope, owningStruct, diags)
		if lt == ast.ErrorType || rt == ast.ErrorType {
			t = ast.ErrorType
		} else if lt != rt {
			diags.Error(CodeArithTypeMismatch, fmt.Sprintf("operand type mismatch: %s %s %s", lt, node.Value, rt), node.Line)
			t = ast.ErrorType
		} else {
			t = lt
		}
	case ast.RelExpr:
		lt := checkExpr(node.Child(0), funcScope, owningStruct, diags)
		rt := checkExpr(node.Child(1), funcScope, owningStruct, diags)
		if lt != ast.ErrorType && rt != ast.ErrorType && lt != rt {
			diags.Error(CodeArithTypeMismatch, fmt.Sprintf("operand type mismatch: %s %s %s", lt, node.Value, rt), node.Line)
			t = ast.ErrorType
		} else {
			t = "integer"
		}
	case ast.Variable:
		t = checkVariable(node, funcScope, owningStruct, diags)
	case ast.Dot:
		t = checkDot(node, funcScope, owningStruct, diags)
	case ast.FunctionCall:
		t = checkFreeCall(node, funcScope, diags)
	default:
		t = ast.ErrorType
	}
	node.SemanticType = t
	return t
}

func checkVariable(node *ast.Node, funcScope, owningStruct *symtab.Scope, diags *Diagnostics) string {
	idNode, indices := node.Child(0), node.Child(1)
	entry := funcScope.ResolveVarInFunctionScope(idNode.Value, owningStruct)
	if entry == nil {
		diags.Error(CodeUndeclaredVar, fmt.Sprintf("undeclared variable %q", idNode.Value), node.Line)
		return ast.ErrorType
	}
	node.EntryPtr = entry
	return checkIndices(entry, indices, node, funcScope, owningStruct, diags)
}

// checkIndices validates an indexing expression's index count and
// index types against entry's declared dimensions, returning the
// resulting (possibly still-array) type. A bare reference (no
// brackets) passes the whole array type through unchanged; any other
// count must equal the declared dimension count exactly — partial or
// excess indexing is a mismatch (spec.md §4.5's 13.1/13.3).
func checkIndices(entry *symtab.Entry, indices, node *ast.Node, funcScope, owningStruct *symtab.Scope, diags *Diagnostics) string {
	for _, idx := range indices.Children {
		it := checkExpr(idx, funcScope, owningStruct, diags)
		if it != "integer" && it != ast.ErrorType {
			diags.Error(CodeNonIntegerIndex, "array index must be an integer expression", idx.Line)
		}
	}
	declaredDims := symtab.Dims(entry.Type)
	usedDims := len(indices.Children)
	if usedDims == 0 {
		// A bare reference with no brackets at all passes the whole
		// array through unindexed (e.g. as a call argument); any
		// other count must match the declared dimension count exactly.
		return entry.Type
	}
	if usedDims != declaredDims {
		code := CodeArrayDimMismatch
		if entry.Kind == symtab.KindParam {
			code = CodeArrayParamDimMismatch
		}
		diags.Error(code, fmt.Sprintf("%q indexed with %d dimensions but declared with %d", entry.Name, usedDims, declaredDims), node.Line)
		return ast.ErrorType
	}
	return dropLeadingDims(entry.Type, usedDims)
}

func checkDot(node *ast.Node, funcScope, owningStruct *symtab.Scope, diags *Diagnostics) string {
	left, right := node.Child(0), node.Child(1)
	lt := checkExpr(left, funcScope, owningStruct, diags)
	if lt == ast.ErrorType {
		return ast.ErrorType
	}
	if symtab.Dims(lt) > 0 {
		diags.Error(CodeDotOnNonStruct, fmt.Sprintf("cannot use %q on array type %s", ".", lt), node.Line)
		return ast.ErrorType
	}
	base := symtab.Trim(lt)
	if base == "integer" || base == "float" || base == "void" {
		diags.Error(CodeDotOnNonStruct, fmt.Sprintf("cannot use %q on non-struct type %s", ".", lt), node.Line)
		return ast.ErrorType
	}
	structEntry := funcScope.Global().Lookup(base, symtab.KindStruct)
	if structEntry == nil {
		diags.Error(CodeUnknownStructName, fmt.Sprintf("unknown struct type %q", base), node.Line)
		return ast.ErrorType
	}
	structScope := structEntry.Link

	switch right.Kind {
	case ast.Variable:
		idNode, indices := right.Child(0), right.Child(1)
		member := structScope.ResolveMemberInStruct(idNode.Value)
		if member == nil {
			diags.Error(CodeUndeclaredVar, fmt.Sprintf("struct %q has no member %q", base, idNode.Value), right.Line)
			right.SemanticType = ast.ErrorType
			return ast.ErrorType
		}
		right.EntryPtr = member
		t := checkIndices(member, indices, right, funcScope, owningStruct, diags)
		right.SemanticType = t
		return t
	case ast.FunctionCall:
		t := checkMethodCall(structScope, base, right, funcScope, owningStruct, diags)
		right.SemanticType = t
		return t
	}
	return ast.ErrorType
}

func checkFreeCall(node *ast.Node, funcScope *symtab.Scope, diags *Diagnostics) string {
	idNode, argsNode := node.Child(0), node.Child(1)
	argTypes := checkArgs(argsNode, funcScope, nil, diags)
	candidates := funcScope.Global().LookupAll(idNode.Value, symtab.KindFunc)
	return resolveOverload(candidates, idNode.Value, argTypes, node, diags, false)
}

func checkMethodCall(structScope *symtab.Scope, structName string, node *ast.Node, funcScope, owningStruct *symtab.Scope, diags *Diagnostics) string {
	idNode, argsNode := node.Child(0), node.Child(1)
	argTypes := checkArgs(argsNode, funcScope, owningStruct, diags)
	candidates := structScope.ResolveMethodInStruct(idNode.Value)
	return resolveOverload(candidates, idNode.Value, argTypes, node, diags, true)
}

func checkArgs(argsNode *ast.Node, funcScope, owningStruct *symtab.Scope, diags *Diagnostics) []string {
	var out []string
	for _, a := range argsNode.Children {
		out = append(out, checkExpr(a, funcScope, owningStruct, diags))
	}
	return out
}

// resolveOverload picks the candidate whose parameters match argTypes
// by arity and per-parameter (trim, dims) pair (spec.md §4.5). With
// zero candidates it reports 11.3/11.4; with candidates but no arity
// match, 12.1. With exactly one arity-matching candidate, a
// dimension-count mismatch on some parameter reports 13.3 (per
// parameter) instead of the generic 12.2; with multiple arity-matching
// candidates (an overload set), a non-matching candidate is simply
// skipped in favor of one that matches exactly, falling back to 12.2
// only if none do.
func resolveOverload(candidates []*symtab.Entry, name string, argTypes []string, callNode *ast.Node, diags *Diagnostics, isMember bool) string {
	if len(candidates) == 0 {
		code := CodeUndeclaredFreeFunc
		if isMember {
			code = CodeUndeclaredMemberFunc
		}
		diags.Error(code, fmt.Sprintf("undeclared function %q", name), callNode.Line)
		return ast.ErrorType
	}
	var arityMatches []*symtab.Entry
	for _, c := range candidates {
		if len(paramTypesOfEntry(c.Link)) == len(argTypes) {
			arityMatches = append(arityMatches, c)
		}
	}
	if len(arityMatches) == 0 {
		diags.Error(CodeWrongArgCount, fmt.Sprintf("%q called with %d arguments; no matching overload", name, len(argTypes)), callNode.Line)
		return ast.ErrorType
	}
	if len(arityMatches) == 1 {
		c := arityMatches[0]
		params := paramTypesOfEntry(c.Link)
		match := true
		dimMismatch := false
		for i := range params {
			if argTypes[i] == ast.ErrorType {
				continue
			}
			if symtab.Trim(params[i]) != symtab.Trim(argTypes[i]) {
				match = false
				continue
			}
			if symtab.Dims(params[i]) != symtab.Dims(argTypes[i]) {
				match = false
				dimMismatch = true
				diags.Error(CodeArrayParamDimMismatch, fmt.Sprintf("%q parameter %d expects %d array dimensions but argument has %d", name, i+1, symtab.Dims(params[i]), symtab.Dims(argTypes[i])), callNode.Line)
			}
		}
		if match {
			callNode.EntryPtr = c
			return c.Type
		}
		if !dimMismatch {
			diags.Error(CodeWrongArgTypes, fmt.Sprintf("%q called with argument types (%s); no matching overload", name, strings.Join(argTypes, ", ")), callNode.Line)
		}
		return ast.ErrorType
	}
	for _, c := range arityMatches {
		params := paramTypesOfEntry(c.Link)
		match := true
		for i := range params {
			if argTypes[i] == ast.ErrorType {
				continue
			}
			if symtab.Trim(params[i]) != symtab.Trim(argTypes[i]) || symtab.Dims(params[i]) != symtab.Dims(argTypes[i]) {
				match = false
				break
			}
		}
		if match {
			callNode.EntryPtr = c
			return c.Type
		}
	}
	diags.Error(CodeWrongArgTypes, fmt.Sprintf("%q called with argument types (%s); no matching overload", name, strings.Join(argTypes, ", ")), callNode.Line)
	return ast.ErrorType
}
