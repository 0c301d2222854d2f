package sema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"softwares_for_struct_lang/ast"
	"softwares_for_struct_lang/frontend"
	"softwares_for_struct_lang/symtab"
)

func parse(t *testing.T, src string) *ast.Node {
	t.Helper()
	p := frontend.NewParser()
	prog, err := p.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return prog
}

func hasCode(diags *Diagnostics, code string) bool {
	for _, d := range diags.Items {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestBuildScopes_EmptyProgram(t *testing.T) {
	prog := parse(t, "")
	global, diags := BuildScopes(prog)
	assert.True(t, diags.Accept())
	assert.Equal(t, 0, global.Level)
}

func TestBuildScopes_DuplicateStruct(t *testing.T) {
	prog := parse(t, `
	struct A { public let x: integer; }
	struct A { public let y: float; }
	`)
	_, diags := BuildScopes(prog)
	assert.True(t, hasCode(diags, CodeDupStruct))
	assert.False(t, diags.Accept())
}

func TestBuildScopes_OverloadFreeFunc(t *testing.T) {
	prog := parse(t, `
	func f(a: integer): integer { return (a); }
	func f(a: float): integer { return (1); }
	`)
	_, diags := BuildScopes(prog)
	assert.True(t, hasCode(diags, CodeOverloadFreeFunc))
	assert.True(t, diags.Accept())
}

func TestBuildScopes_DuplicateLocal(t *testing.T) {
	prog := parse(t, `
	func main(): void {
		let a: integer;
		let a: float;
	}
	`)
	_, diags := BuildScopes(prog)
	assert.True(t, hasCode(diags, CodeDupParamOrLocal))
}

func TestRelocateImpls_MissingDeclAndMissingImpl(t *testing.T) {
	prog := parse(t, `
	struct Point {
		public let x: integer;
		public func getX(): integer;
	}
	impl Point {
		func getY(): integer { return (1); }
	}
	`)
	global, diags := BuildScopes(prog)
	RelocateImpls(global, diags)
	assert.True(t, hasCode(diags, CodeImplMethodNoDecl))

	check := &Diagnostics{}
	checkDeclaredButNotImplemented(global, check)
	assert.True(t, hasCode(check, CodeDeclNoImpl))
}

func TestRelocateImpls_UnknownStruct(t *testing.T) {
	prog := parse(t, `
	impl Ghost {
		func f(): integer { return (1); }
	}
	`)
	global, diags := BuildScopes(prog)
	RelocateImpls(global, diags)
	assert.True(t, hasCode(diags, CodeImplUnknownStruct))
}

func TestRelocateImpls_MatchedMergesBody(t *testing.T) {
	prog := parse(t, `
	struct Point {
		public let x: integer;
		public func getX(): integer;
	}
	impl Point {
		func getX(): integer { return (x); }
	}
	`)
	global, diags := BuildScopes(prog)
	RelocateImpls(global, diags)
	assert.False(t, hasCode(diags, CodeImplMethodNoDecl))

	structEntry := global.Lookup("Point", symtab.KindStruct)
	require.NotNil(t, structEntry)
	method := structEntry.Link.Lookup("getX", symtab.KindFunc)
	require.NotNil(t, method)
	assert.True(t, method.Implemented)
	require.NotNil(t, method.Link)
	require.Len(t, method.Link.Entries, 0) // no locals/params beyond none declared
}

func TestDetectCycle_Inheritance(t *testing.T) {
	prog := parse(t, `
	struct A inherits B { public let x: integer; }
	struct B inherits A { public let y: integer; }
	`)
	global, _ := BuildScopes(prog)
	inherit, _ := BuildGraphs(global)
	path, found := DetectCycle(inherit)
	assert.True(t, found)
	assert.Contains(t, PathString(path), "A")
	assert.Contains(t, PathString(path), "B")
}

func TestDetectCycle_NoCycle(t *testing.T) {
	prog := parse(t, `
	struct A { public let x: integer; }
	struct B inherits A { public let y: integer; }
	`)
	global, _ := BuildScopes(prog)
	inherit, depend := BuildGraphs(global)
	_, found := DetectCycle(inherit)
	assert.False(t, found)
	_, found = DetectCycle(depend)
	assert.False(t, found)
}

func compileAndCheck(t *testing.T, src string) *Diagnostics {
	t.Helper()
	prog := parse(t, src)
	global, diags := BuildScopes(prog)
	RelocateImpls(global, diags)
	diags.Merge(Check(global, prog))
	return diags
}

func TestCheck_HelloInteger_NoDiagnostics(t *testing.T) {
	diags := compileAndCheck(t, `
	func main(): void {
		let a: integer;
		a := 1 + 2 * 3;
		write(a);
	}
	`)
	assert.True(t, diags.Accept())
	assert.Empty(t, diags.Items)
}

func TestCheck_ArithTypeMismatch(t *testing.T) {
	diags := compileAndCheck(t, `
	func main(): void {
		let a: integer;
		let b: float;
		a := a + b;
	}
	`)
	assert.True(t, hasCode(diags, CodeArithTypeMismatch))
}

func TestCheck_AssignTypeMismatch(t *testing.T) {
	diags := compileAndCheck(t, `
	func main(): void {
		let a: integer;
		let b: float;
		a := b;
	}
	`)
	assert.True(t, hasCode(diags, CodeAssignTypeMismatch))
}

func TestCheck_UndeclaredVar(t *testing.T) {
	diags := compileAndCheck(t, `
	func main(): void {
		write(a);
	}
	`)
	assert.True(t, hasCode(diags, CodeUndeclaredVar))
}

func TestCheck_WrongArgCount(t *testing.T) {
	diags := compileAndCheck(t, `
	func f(a: integer): integer { return (a); }
	func main(): void {
		write(f(1, 2));
	}
	`)
	assert.True(t, hasCode(diags, CodeWrongArgCount))
}

func TestCheck_WrongArgTypes(t *testing.T) {
	diags := compileAndCheck(t, `
	func f(a: integer): integer { return (a); }
	func main(): void {
		let b: float;
		write(f(b));
	}
	`)
	assert.True(t, hasCode(diags, CodeWrongArgTypes))
}

func TestCheck_ArrayDimMismatch(t *testing.T) {
	diags := compileAndCheck(t, `
	func main(): void {
		let a: integer[4][4];
		write(a[1][2][3]);
	}
	`)
	assert.True(t, hasCode(diags, CodeArrayDimMismatch))
}

func TestCheck_ArrayDimMismatch_UnderIndexing(t *testing.T) {
	diags := compileAndCheck(t, `
	func main(): void {
		let a: integer[4][4];
		a[1] := 2;
	}
	`)
	assert.True(t, hasCode(diags, CodeArrayDimMismatch))
	assert.False(t, hasCode(diags, CodeAssignTypeMismatch))
}

func TestCheck_ArrayParamDimMismatch_OnCallArgument(t *testing.T) {
	diags := compileAndCheck(t, `
	func f(a: integer[4]): void {}
	func main(): void {
		let b: integer[4][4];
		f(b);
	}
	`)
	assert.True(t, hasCode(diags, CodeArrayParamDimMismatch))
	assert.False(t, hasCode(diags, CodeWrongArgTypes))
}

func TestCheck_WholeArrayReference_PassesWithMatchingDims(t *testing.T) {
	diags := compileAndCheck(t, `
	func f(a: integer[4]): void {}
	func main(): void {
		let b: integer[4];
		f(b);
	}
	`)
	assert.False(t, hasCode(diags, CodeArrayParamDimMismatch))
	assert.False(t, hasCode(diags, CodeWrongArgTypes))
	assert.False(t, hasCode(diags, CodeArrayDimMismatch))
}

func TestCheck_NonIntegerIndex(t *testing.T) {
	diags := compileAndCheck(t, `
	func main(): void {
		let a: integer[4];
		let f: float;
		write(a[f]);
	}
	`)
	assert.True(t, hasCode(diags, CodeNonIntegerIndex))
}

func TestCheck_DotOnNonStruct(t *testing.T) {
	diags := compileAndCheck(t, `
	func main(): void {
		let a: integer;
		write(a.x);
	}
	`)
	assert.True(t, hasCode(diags, CodeDotOnNonStruct))
}

func TestCheck_ReturnTypeMismatch(t *testing.T) {
	diags := compileAndCheck(t, `
	func f(): integer {
		return (1.5);
	}
	func main(): void {
		write(f());
	}
	`)
	assert.True(t, hasCode(diags, CodeReturnTypeMismatch))
}

func TestCheck_StructMemberAndMethod(t *testing.T) {
	diags := compileAndCheck(t, `
	struct Point {
		public let x: integer;
		public func getX(): integer;
	}
	impl Point {
		func getX(): integer { return (x); }
	}
	func main(): void {
		let p: Point;
		write(p.getX());
		write(p.x);
	}
	`)
	assert.True(t, diags.Accept())
}

func TestCheck_OverrideWarning(t *testing.T) {
	diags := compileAndCheck(t, `
	struct Base {
		public func area(): integer;
	}
	impl Base {
		func area(): integer { return (0); }
	}
	struct Derived inherits Base {
		public func area(): integer;
	}
	impl Derived {
		func area(): integer { return (1); }
	}
	func main(): void {
		let d: Derived;
		write(d.area());
	}
	`)
	assert.True(t, hasCode(diags, CodeOverrideInherited))
	assert.True(t, diags.Accept())
}

func TestCheck_UnknownTypeName(t *testing.T) {
	diags := compileAndCheck(t, `
	func main(): void {
		let a: Ghost;
	}
	`)
	assert.True(t, hasCode(diags, CodeUnknownStructName))
}

func TestCheck_ShadowMemberAndLocal(t *testing.T) {
	diags := compileAndCheck(t, `
	struct Base {
		public let x: integer;
	}
	struct Derived inherits Base {
		public let x: float;
		public func f(): integer;
	}
	impl Derived {
		func f(): integer {
			let x: integer;
			return (x);
		}
	}
	func main(): void {
		let d: Derived;
		write(d.x);
	}
	`)
	assert.True(t, hasCode(diags, CodeMemberShadowsInherit))
	assert.True(t, hasCode(diags, CodeLocalShadowsMember))
}
