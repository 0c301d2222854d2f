package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"softwares_for_struct_lang/ast"
	"softwares_for_struct_lang/frontend"
	"softwares_for_struct_lang/layout"
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
	layout.Run(global, prog)
	return global, prog
}

func TestEmit_HelloInteger(t *testing.T) {
	global, prog := build(t, `
	func main(): void {
		let a: integer;
		a := 1;
		write(a);
	}
	`)
	asm := Emit(global, prog)

	assert.Contains(t, asm, "main")
	assert.Contains(t, asm, "align")
	assert.Contains(t, asm, "entry")
	assert.Contains(t, asm, "addi r14,r0,topaddr")
	assert.Contains(t, asm, "addi r1,r0,1")
	assert.Contains(t, asm, "jl r15,intstr")
	assert.Contains(t, asm, "jl r15,putstr")
	assert.Contains(t, asm, "hlt")
	assert.Contains(t, asm, "buf")
	assert.Contains(t, asm, "res 20")
	assert.Contains(t, asm, "cr")
	assert.Contains(t, asm, "db 13,10,0")
}

func TestEmit_ArithmeticStoresIntoTemporary(t *testing.T) {
	global, prog := build(t, `
	func main(): void {
		let a: integer;
		a := 1 + 2;
	}
	`)
	asm := Emit(global, prog)
	assert.Contains(t, asm, "add ")
	assert.Contains(t, asm, "sw ")
}

func TestEmit_IfEmitsTwoLabelsAndBranch(t *testing.T) {
	global, prog := build(t, `
	func main(): void {
		let a: integer;
		if (1 < 2) {
			a := 1;
		} else {
			a := 2;
		}
	}
	`)
	asm := Emit(global, prog)
	assert.Contains(t, asm, "clt ")
	assert.Contains(t, asm, "bz ")
	assert.Contains(t, asm, "tag0")
	assert.Contains(t, asm, "tag1")
}

func TestEmit_WhileLoopsBackToTopLabel(t *testing.T) {
	global, prog := build(t, `
	func main(): void {
		let a: integer;
		a := 0;
		while (a < 10) {
			a := a + 1;
		}
	}
	`)
	asm := Emit(global, prog)
	assert.Contains(t, asm, "j tag0")
}

func TestEmit_FreeFunctionCallUsesJlAndRestoresStack(t *testing.T) {
	global, prog := build(t, `
	func f(a: integer): integer {
		return (a);
	}
	func main(): void {
		let x: integer;
		x := f(1);
	}
	`)
	asm := Emit(global, prog)
	assert.Contains(t, asm, "jl r15,f")
	assert.Contains(t, asm, "jr r15")
}

func TestEmit_OverloadedFreeFunctionsGetDistinctLabels(t *testing.T) {
	global, prog := build(t, `
	func f(a: integer): integer { return (a); }
	func f(a: float): integer { return (1); }
	func main(): void { }
	`)
	asm := Emit(global, prog)
	assert.Contains(t, strings.Split(asm, "\n"), "main")
	lines := strings.Split(asm, "\n")
	var labels []string
	for _, l := range lines {
		if l == "f" || l == "f_1" {
			labels = append(labels, l)
		}
	}
	assert.ElementsMatch(t, []string{"f", "f_1"}, labels)
}

func TestEmit_MethodCallAsValueStillEmitsCall(t *testing.T) {
	global, prog := build(t, `
	struct Counter {
		public let n: integer;
		public func bump(): integer;
	}
	impl Counter {
		func bump(): integer { return (1); }
	}
	func main(): void {
		let c: Counter;
		write(c.bump());
	}
	`)
	asm := Emit(global, prog)
	assert.Contains(t, asm, "Counter_bump")
	assert.Contains(t, asm, "jl r15,Counter_bump")
}

func TestEmit_MethodCallAsBareStatement(t *testing.T) {
	global, prog := build(t, `
	struct Counter {
		public let n: integer;
		public func bump(): integer;
	}
	impl Counter {
		func bump(): integer { return (1); }
	}
	func main(): void {
		let c: Counter;
		c.bump();
	}
	`)
	asm := Emit(global, prog)
	assert.Contains(t, asm, "jl r15,Counter_bump")
}

func TestEmit_NonMainFunctionHasPrologueAndEpilogue(t *testing.T) {
	global, prog := build(t, `
	func f(a: integer): integer {
		return (a);
	}
	func main(): void {
		let x: integer;
		x := f(1);
	}
	`)
	asm := Emit(global, prog)
	assert.Contains(t, asm, "sw -")
	assert.Contains(t, asm, "jr r15")
}

func TestEmit_ShortCircuitOrUsesTwoLabels(t *testing.T) {
	global, prog := build(t, `
	func main(): void {
		let a: integer;
		a := 1 | 0;
	}
	`)
	asm := Emit(global, prog)
	assert.Contains(t, asm, "bnz ")
	assert.Contains(t, asm, "tag0")
	assert.Contains(t, asm, "tag1")
}

func TestEmit_ShortCircuitAndUsesTwoLabels(t *testing.T) {
	global, prog := build(t, `
	func main(): void {
		let a: integer;
		a := 1 & 0;
	}
	`)
	asm := Emit(global, prog)
	assert.Contains(t, asm, "bz ")
	assert.Contains(t, asm, "tag0")
	assert.Contains(t, asm, "tag1")
}

func TestEmit_ReadStatementCallsGetint(t *testing.T) {
	global, prog := build(t, `
	func main(): void {
		let a: integer;
		read(a);
	}
	`)
	asm := Emit(global, prog)
	assert.Contains(t, asm, "jl r15,getint")
	assert.Contains(t, asm, "sw ")
}

func TestEmit_ArrayElementAssignmentComputesIndexAddress(t *testing.T) {
	global, prog := build(t, `
	func main(): void {
		let a: integer[4];
		a[1] := 5;
	}
	`)
	asm := Emit(global, prog)
	assert.Contains(t, asm, "muli ")
	assert.Contains(t, asm, "add ")
}

func TestEmit_StructMemberAccessComputesInheritedOffset(t *testing.T) {
	global, prog := build(t, `
	struct Base {
		public let a: integer;
	}
	struct Derived inherits Base {
		public let b: float;
	}
	func main(): void {
		let d: Derived;
		let x: integer;
		x := d.a;
	}
	`)
	asm := Emit(global, prog)
	assert.Contains(t, asm, "lw ")
	assert.Contains(t, asm, "lw r1,-12(r12)")
}
