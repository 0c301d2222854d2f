package frontend

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"softwares_for_struct_lang/ast"
)

func TestParser_StructWithInheritanceAndMembers(t *testing.T) {
	src := `
	struct Base {
		public let x: integer;
	}
	struct Derived inherits Base {
		private let y: float;
		public func area(): integer;
	}
	`
	parser := NewParser()
	prog, err := parser.Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, prog.Children, 2)

	derived := prog.Children[1]
	assert.Equal(t, ast.StructDecl, derived.Kind)
	assert.Equal(t, "Derived", derived.Child(0).Value)
	inherit := derived.Child(1)
	assert.Equal(t, ast.InheritList, inherit.Kind)
	require.Len(t, inherit.Children, 1)
	assert.Equal(t, "Base", inherit.Child(0).Value)

	members := derived.Child(2)
	require.Len(t, members.Children, 2)
	assert.Equal(t, "public", members.Child(0).Child(0).Value)
}

func TestParser_ImplAndFuncDef(t *testing.T) {
	src := `
	struct Point {
		public let x: integer;
		public func getX(): integer;
	}
	impl Point {
		func getX(): integer {
			return (x);
		}
	}
	func main(): void {
		let a: integer;
		a := 1 + 2 * 3;
		write(a);
	}
	`
	parser := NewParser()
	prog, err := parser.Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, prog.Children, 3)
	assert.Equal(t, ast.StructDecl, prog.Children[0].Kind)
	assert.Equal(t, ast.ImplDef, prog.Children[1].Kind)
	assert.Equal(t, ast.FuncDef, prog.Children[2].Kind)

	mainFn := prog.Children[2]
	body := mainFn.Child(3)
	assert.Equal(t, ast.StatBlock, body.Kind)
	require.Len(t, body.Children, 3)

	assignWrap := body.Children[1]
	assign := assignWrap.Child(0)
	assert.Equal(t, ast.AssignStat, assign.Kind)
	rhs := assign.Child(1)
	assert.Equal(t, ast.AddOp, rhs.Kind)
	assert.Equal(t, ast.MultOp, rhs.Child(1).Kind)
}

func TestParser_ArraysAndDotChains(t *testing.T) {
	src := `
	func main(): void {
		let a: integer[4][4];
		a[1][2] := 3;
		write(obj.field.compute(1, 2));
	}
	`
	parser := NewParser()
	prog, err := parser.Parse(strings.NewReader(src))
	require.NoError(t, err)
	mainFn := prog.Children[0]
	body := mainFn.Child(3)

	varDecl := body.Children[0].Child(0)
	assert.Equal(t, ast.VarDecl, varDecl.Kind)
	sizes := varDecl.Child(2)
	require.Len(t, sizes.Children, 2)
	assert.Equal(t, "4", sizes.Child(0).Value)

	writeStat := body.Children[2].Child(0)
	assert.Equal(t, ast.WriteStat, writeStat.Kind)
	dotChain := writeStat.Child(0)
	assert.Equal(t, ast.Dot, dotChain.Kind)
	assert.Equal(t, ast.FunctionCall, dotChain.Child(1).Kind)
}

func TestParser_IfWhileRead(t *testing.T) {
	src := `
	func main(): void {
		let a: integer;
		read(a);
		if (a < 10) {
			write(a);
		} else {
			write(0);
		};
		while (a <> 0) {
			a := a - 1;
		};
	}
	`
	parser := NewParser()
	prog, err := parser.Parse(strings.NewReader(src))
	require.NoError(t, err)
	body := prog.Children[0].Child(3)
	require.Len(t, body.Children, 4)
	assert.Equal(t, ast.ReadStat, body.Children[1].Child(0).Kind)
	ifStat := body.Children[2].Child(0)
	assert.Equal(t, ast.IfStat, ifStat.Kind)
	assert.Equal(t, ast.RelExpr, ifStat.Child(0).Kind)
	whileStat := body.Children[3].Child(0)
	assert.Equal(t, ast.WhileStat, whileStat.Kind)
}

func TestParser_SyntaxError(t *testing.T) {
	parser := NewParser()
	_, err := parser.Parse(strings.NewReader("struct { }"))
	assert.Error(t, err)
}
