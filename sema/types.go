package sema

import (
	"strconv"
	"strings"

	"softwares_for_struct_lang/ast"
	"softwares_for_struct_lang/symtab"
)

// declaredType builds the spec.md §3 type string ("integer", "Point",
// "integer[4][4]", ...) from a Type node and the ArraySizeList node
// that follows it in VarDecl/FParam productions.
func declaredType(typeNode, sizesNode *ast.Node) string {
	base := typeNode.Value
	if sizesNode == nil || len(sizesNode.Children) == 0 {
		return base
	}
	dims := make([]int, len(sizesNode.Children))
	for i, c := range sizesNode.Children {
		n, _ := strconv.Atoi(c.Value)
		dims[i] = n
	}
	return symtab.ArrayType(base, dims)
}

func isScalarType(t string) bool {
	base := symtab.Trim(t)
	return base == "integer" || base == "float" || base == "void" || base == ast.ErrorType
}

// signatureMatches compares two (returnType, paramTypes) signatures by
// arity and per-parameter type, used for duplicate/override/impl-match
// detection (spec.md §4.2, §4.3, §4.5).
func signatureMatches(retA string, paramsA []string, retB string, paramsB []string) bool {
	if retA != retB {
		return false
	}
	if len(paramsA) != len(paramsB) {
		return false
	}
	for i := range paramsA {
		if paramsA[i] != paramsB[i] {
			return false
		}
	}
	return true
}

func paramTypesOf(fparamListNode *ast.Node) []string {
	var out []string
	for _, p := range fparamListNode.Children {
		out = append(out, declaredType(p.Child(1), p.Child(2)))
	}
	return out
}

func paramTypesOfEntry(methodScope *symtab.Scope) []string {
	if methodScope == nil {
		return nil
	}
	var out []string
	for _, e := range methodScope.LookupAllOfKind(symtab.KindParam) {
		out = append(out, e.Type)
	}
	return out
}

// dropLeadingDims strips the outermost n "[k]" groups from a type
// string. checkIndices only calls it once usedDims == declaredDims, so
// in practice n always equals the type's full dimension count and the
// result is always the base scalar/struct type.
func dropLeadingDims(t string, n int) string {
	base := symtab.Trim(t)
	rest := t[len(base):]
	var parts []string
	for len(rest) > 0 {
		j := strings.IndexByte(rest, ']')
		if j < 0 {
			break
		}
		parts = append(parts, rest[:j+1])
		rest = rest[j+1:]
	}
	if n >= len(parts) {
		return base
	}
	return base + strings.Join(parts[n:], "")
}

func lineOfNode(n interface{}) int {
	if node, ok := n.(*ast.Node); ok && node != nil {
		return node.Line
	}
	return 0
}
