package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScope_InsertAndLookup(t *testing.T) {
	global := NewScope("global", 0, nil)
	a := &Entry{Name: "Point", Kind: KindStruct}
	global.Insert(a)

	assert.Equal(t, a, global.Lookup("Point", KindStruct))
	assert.Equal(t, a, global.Lookup("point", KindStruct)) // case-insensitive
	assert.Nil(t, global.Lookup("Point", KindFunc))
	assert.Nil(t, global.Lookup("Other", KindStruct))
}

func TestScope_LookupAll_OverloadOrder(t *testing.T) {
	global := NewScope("global", 0, nil)
	f1 := &Entry{Name: "f", Kind: KindFunc, Type: "integer"}
	f2 := &Entry{Name: "f", Kind: KindFunc, Type: "float"}
	global.Insert(f1)
	global.Insert(f2)

	got := global.LookupAll("f", KindFunc)
	assert.Equal(t, []*Entry{f1, f2}, got)
}

func TestScope_Remove(t *testing.T) {
	global := NewScope("global", 0, nil)
	impl := &Entry{Name: "Point", Kind: KindImpl}
	global.Insert(impl)
	assert.NotNil(t, global.Lookup("Point", KindImpl))

	global.Remove(impl)
	assert.Nil(t, global.Lookup("Point", KindImpl))
}

func TestScope_Global(t *testing.T) {
	global := NewScope("global", 0, nil)
	structScope := NewScope("Point", 1, global)
	methodScope := NewScope("area", 2, structScope)

	assert.Same(t, global, methodScope.Global())
	assert.Same(t, global, structScope.Global())
	assert.Same(t, global, global.Global())
}

func TestScope_ResolveMemberInStruct_Inherited(t *testing.T) {
	global := NewScope("global", 0, nil)

	base := NewScope("Base", 1, global)
	baseX := &Entry{Name: "x", Kind: KindVar, Type: "integer"}
	base.Insert(baseX)
	global.Insert(&Entry{Name: "Base", Kind: KindStruct, Link: base})

	derived := NewScope("Derived", 1, global)
	derived.Insert(&Entry{Name: "Base", Kind: KindInherit, Type: "Base"})
	derivedY := &Entry{Name: "y", Kind: KindVar, Type: "integer"}
	derived.Insert(derivedY)
	global.Insert(&Entry{Name: "Derived", Kind: KindStruct, Link: derived})

	assert.Equal(t, derivedY, derived.ResolveMemberInStruct("y"))
	assert.Equal(t, baseX, derived.ResolveMemberInStruct("x"))
	assert.Nil(t, derived.ResolveMemberInStruct("z"))
}

func TestScope_ResolveVarInFunctionScope_Order(t *testing.T) {
	global := NewScope("global", 0, nil)
	structScope := NewScope("Point", 1, global)
	member := &Entry{Name: "v", Kind: KindVar, Type: "integer"}
	structScope.Insert(member)
	global.Insert(&Entry{Name: "Point", Kind: KindStruct, Link: structScope})

	method := NewScope("move", 2, structScope)
	local := &Entry{Name: "v", Kind: KindVar, Type: "integer"}
	method.Insert(local)
	param := &Entry{Name: "p", Kind: KindParam, Type: "integer"}
	method.Insert(param)

	// Local shadows member of the same name.
	assert.Same(t, local, method.ResolveVarInFunctionScope("v", structScope))
	assert.Same(t, param, method.ResolveVarInFunctionScope("p", structScope))
	assert.Nil(t, method.ResolveVarInFunctionScope("nope", structScope))
}

func TestScope_ResolveMemberInStruct_CyclicInheritanceTerminates(t *testing.T) {
	global := NewScope("global", 0, nil)

	a := NewScope("A", 1, global)
	a.Insert(&Entry{Name: "B", Kind: KindInherit, Type: "B"})
	global.Insert(&Entry{Name: "A", Kind: KindStruct, Link: a})

	b := NewScope("B", 1, global)
	b.Insert(&Entry{Name: "A", Kind: KindInherit, Type: "A"})
	global.Insert(&Entry{Name: "B", Kind: KindStruct, Link: b})

	assert.Nil(t, a.ResolveMemberInStruct("nope"))
	assert.Nil(t, a.ResolveMethodInStruct("nope"))
}

func TestTrimDimsCells(t *testing.T) {
	assert.Equal(t, "integer", Trim("integer[4][4]"))
	assert.Equal(t, 2, Dims("integer[4][4]"))
	assert.Equal(t, 16, Cells("integer[4][4]"))
	assert.Equal(t, 1, Cells("integer"))
	assert.Equal(t, "Point[3]", ArrayType("Point", []int{3}))
}
