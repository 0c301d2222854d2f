package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"softwares_for_struct_lang/ast"
	"softwares_for_struct_lang/frontend"
	"softwares_for_struct_lang/sema"
	"softwares_for_struct_lang/symtab"
)

func build(t *testing.T, src string) (*symtab.Scope, *ast.Node) {
	t.Helper()
	p := frontend.NewParser()
	prog, err := p.Parse(strings.NewReader(src))
	require.NoError(t, err)
	global, diags := sema.BuildScopes(prog)
	sema.RelocateImpls(global, diags)
	require.True(t, diags.Accept(), diags.Items)
	checkDiags := sema.Check(global, prog)
	require.True(t, checkDiags.Accept(), checkDiags.Items)
	return global, prog
}

func TestSizeofType_Scalars(t *testing.T) {
	global, _ := build(t, `func main(): void { }`)
	assert.Equal(t, IntSize, SizeofType("integer", global))
	assert.Equal(t, FloatSize, SizeofType("float", global))
	assert.Equal(t, IntSize, SizeofType("integer[4][4]", global)/16)
	assert.Equal(t, 16*IntSize, SizeofType("integer[4][4]", global))
}

func TestSizeofStructScope_WithInheritance(t *testing.T) {
	global, _ := build(t, `
	struct Base {
		public let a: integer;
	}
	struct Derived inherits Base {
		public let b: float;
	}
	func main(): void { }
	`)
	derived := global.Lookup("Derived", symtab.KindStruct)
	require.NotNil(t, derived)
	assert.Equal(t, IntSize+FloatSize, SizeofStructScope(derived.Link, global))
}

func TestRun_MainFrame(t *testing.T) {
	global, prog := build(t, `
	func main(): void {
		let a: integer;
		a := 1 + 2;
	}
	`)
	Run(global, prog)

	mainEntry := global.Lookup("main", symtab.KindFunc)
	require.NotNil(t, mainEntry)
	scope := mainEntry.Link
	a := scope.Lookup("a", symtab.KindVar)
	require.NotNil(t, a)
	assert.Equal(t, -IntSize, a.Offset)

	temps := scope.LookupAllOfKind(symtab.KindTempVar)
	require.Len(t, temps, 3) // 1, 2, and 1+2
	assert.Equal(t, -2*IntSize, temps[0].Offset)
	assert.Equal(t, scope.Size, -temps[len(temps)-1].Offset)
}

func TestRun_NonMainFrameReservesFixedSlots(t *testing.T) {
	global, prog := build(t, `
	func f(a: integer): integer {
		return (a);
	}
	func main(): void {
		let x: integer;
		x := f(1);
	}
	`)
	Run(global, prog)

	fEntry := global.Lookup("f", symtab.KindFunc)
	require.NotNil(t, fEntry)
	scope := fEntry.Link
	assert.Equal(t, IntSize+WordSize+WordSize, scope.Offset)

	param := scope.Lookup("a", symtab.KindParam)
	require.NotNil(t, param)
	assert.Equal(t, -(scope.Offset + IntSize), param.Offset)
}

func TestRun_LiteralGetsOneTemporary(t *testing.T) {
	global, prog := build(t, `func main(): void { let a: integer; a := 1; }`)
	Run(global, prog)
	mainEntry := global.Lookup("main", symtab.KindFunc)
	temps := mainEntry.Link.LookupAllOfKind(symtab.KindTempVar)
	require.Len(t, temps, 1)
	assert.Equal(t, "integer", temps[0].Type)
}
