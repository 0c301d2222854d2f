// Package codegen implements the code emitter (C7, spec.md §4.7): a
// single AST walk that turns an annotated, fully laid-out program into
// target-VM assembly text.
//
// Grounded on the teacher's compiler/internal/code_generator.go
// (writer-per-unit, a package-level label counter, one generateXCode
// method per AST shape) generalized from Jack's stack-machine PUSH/POP
// vocabulary to this spec's register-register machine and from Jack's
// "Label %s" / "IF-GOTO %s" text to the tag-counter labels and
// bz/bnz/j control flow spec.md §4.7 names directly.
//
// This pass assumes C5 (sema.Check) accepted the program and C6
// (layout.Run) has already assigned every entry's Size/Offset and
// every expression node's temporary — it never emits a diagnostic and
// never second-guesses a type it is handed.
package codegen

import (
	"fmt"
	"strings"

	"softwares_for_struct_lang/ast"
	"softwares_for_struct_lang/layout"
	"softwares_for_struct_lang/symtab"
)

const (
	regZero  = "r0"
	regFP    = "r12"
	regRet   = "r13"
	regSP    = "r14"
	regLink  = "r15"
	dataBuf  = "buf"
	dataCR   = "cr"
	instrIdt = "          " // ten spaces, spec.md §6: "a fixed indent for instructions"
)

// Emitter holds the register pool, label counter, and output buffer for
// one program. The pool is a stack: acquire takes the most recently
// released register. Single threaded (spec.md §5).
type Emitter struct {
	global *symtab.Scope
	lines  []string
	pool   []string
	tagNo  int
	labels map[*symtab.Entry]string
}

// NewEmitter creates an emitter with a fresh r1..r11 pool, ready to
// acquire r1 first (spec.md §4.7: "a fixed pool ... managed as a
// stack").
func NewEmitter(global *symtab.Scope) *Emitter {
	e := &Emitter{global: global}
	for i := 11; i >= 1; i-- {
		e.pool = append(e.pool, fmt.Sprintf("r%d", i))
	}
	return e
}

func (e *Emitter) acquire() string {
	if len(e.pool) == 0 {
		panic("codegen: register pool exhausted")
	}
	reg := e.pool[len(e.pool)-1]
	e.pool = e.pool[:len(e.pool)-1]
	return reg
}

func (e *Emitter) release(reg string) {
	if reg == regFP || reg == regSP || reg == regRet || reg == regLink || reg == regZero {
		return
	}
	e.pool = append(e.pool, reg)
}

func (e *Emitter) newLabel() string {
	l := fmt.Sprintf("tag%d", e.tagNo)
	e.tagNo++
	return l
}

func (e *Emitter) emit(format string, args ...interface{}) {
	e.lines = append(e.lines, instrIdt+fmt.Sprintf(format, args...))
}

func (e *Emitter) emitComment(format string, args ...interface{}) {
	e.lines = append(e.lines, "% "+fmt.Sprintf(format, args...))
}

func (e *Emitter) emitLabel(label string) {
	e.lines = append(e.lines, label)
}

// Emit runs C7 end to end and returns the full assembly text (spec.md
// §6 stream 1): instruction section first, data section last.
func Emit(global *symtab.Scope, prog *ast.Node) string {
	e := NewEmitter(global)
	e.labels = buildLabelTable(global)

	mainDef := findMainDef(prog)
	if mainDef != nil {
		e.emitFuncDef(mainDef, true)
	}
	for _, child := range prog.Children {
		switch child.Kind {
		case ast.FuncDef:
			if child != mainDef {
				e.emitFuncDef(child, false)
			}
		case ast.ImplDef:
			structEntry := global.Lookup(child.Child(0).Value, symtab.KindStruct)
			if structEntry == nil {
				continue
			}
			for _, fd := range child.Child(1).Children {
				e.emitFuncDef(fd, false)
			}
		}
	}
	e.emitDataSection()
	return strings.Join(e.lines, "\n") + "\n"
}

func findMainDef(prog *ast.Node) *ast.Node {
	for _, child := range prog.Children {
		if child.Kind == ast.FuncDef && child.Child(0).Value == "main" {
			return child
		}
	}
	return nil
}

func (e *Emitter) emitDataSection() {
	e.emitLabel(dataBuf)
	e.emit("res 20")
	e.emitLabel(dataCR)
	e.emit("db 13,10,0")
}

// buildLabelTable assigns every free function and method a unique,
// flat assembly label: plain name when no other function shares it
// (main always keeps "main"), struct-qualified for methods, and an
// ordinal suffix for overloads so two same-named, differently-typed
// entries never collide in the flat label namespace spec.md §4.7
// implies for `jl r15,<funcName>`.
func buildLabelTable(global *symtab.Scope) map[*symtab.Entry]string {
	labels := map[*symtab.Entry]string{}
	counts := map[string]int{}
	assign := func(base string, e *symtab.Entry) {
		n := counts[base]
		counts[base]++
		if n == 0 {
			labels[e] = base
		} else {
			labels[e] = fmt.Sprintf("%s_%d", base, n)
		}
	}
	for _, fe := range global.LookupAllOfKind(symtab.KindFunc) {
		if strings.EqualFold(fe.Name, "main") {
			labels[fe] = "main"
			continue
		}
		assign(fe.Name, fe)
	}
	for _, se := range global.LookupAllOfKind(symtab.KindStruct) {
		for _, me := range se.Link.LookupAllOfKind(symtab.KindFunc) {
			assign(se.Name+"_"+me.Name, me)
		}
	}
	return labels
}

// ---- function-level skeleton (spec.md §4.7 "Program skeleton" /
// "Prologue / epilogue") ----

func (e *Emitter) emitFuncDef(funcDef *ast.Node, isMain bool) {
	entry, ok := funcDef.EntryPtr.(*symtab.Entry)
	if !ok || entry == nil || entry.Link == nil {
		return
	}
	owningStruct := owningStructOf(funcDef, e.global)
	label := e.labels[entry]
	if label == "" {
		label = entry.Name
	}
	e.emitLabel(label)

	if isMain {
		e.emit("align")
		e.emit("entry")
		e.emit("addi %s,%s,topaddr", regSP, regZero)
		e.emit("addi %s,%s,0", regFP, regSP)
		e.emitBlock(funcDef.Child(3), entry.Link, nil, entry.Type)
		e.emit("hlt")
		return
	}

	fixed := entry.Link.Offset
	oldFPOffset := -fixed
	newFP := e.acquire()
	e.emit("addi %s,%s,%d", newFP, regSP, fixed)
	e.emit("sw %d(%s),%s", oldFPOffset, newFP, regFP)
	e.emit("addi %s,%s,0", regFP, newFP)
	e.release(newFP)

	e.emitBlock(funcDef.Child(3), entry.Link, owningStruct, entry.Type)

	savedFP := e.acquire()
	e.emit("lw %s,%d(%s)", savedFP, oldFPOffset, regFP)
	e.emit("addi %s,%s,0", regSP, regFP)
	e.emit("addi %s,%s,0", regFP, savedFP)
	e.release(savedFP)
	e.emit("jr %s", regLink)
}

// owningStructOf finds the struct scope a method's FuncDef lives under
// (nil for a free function). C3's relocator repoints a relocated
// method's ScopePtr straight at its owning struct scope
// (sema/relocate.go); a free function's ScopePtr is the global scope
// itself, so comparing against global tells the two apart.
func owningStructOf(funcDef *ast.Node, global *symtab.Scope) *symtab.Scope {
	s, _ := funcDef.ScopePtr.(*symtab.Scope)
	if s == nil || s == global {
		return nil
	}
	return s
}

// ---- statements ----

func (e *Emitter) emitBlock(block *ast.Node, funcScope, owningStruct *symtab.Scope, returnType string) {
	for _, wrapper := range block.Children {
		e.emitStat(wrapper.Child(0), funcScope, owningStruct, returnType)
	}
}

func (e *Emitter) emitStat(stat *ast.Node, funcScope, owningStruct *symtab.Scope, returnType string) {
	switch stat.Kind {
	case ast.VarDecl:
		// storage only; nothing to emit.
	case ast.IfStat:
		e.emitIf(stat, funcScope, owningStruct, returnType)
	case ast.WhileStat:
		e.emitWhile(stat, funcScope, owningStruct, returnType)
	case ast.ReadStat:
		e.emitRead(stat, funcScope, owningStruct)
	case ast.WriteStat:
		e.emitWrite(stat, funcScope, owningStruct)
	case ast.ReturnStat:
		e.emitReturn(stat, funcScope, owningStruct, returnType)
	case ast.AssignStat:
		e.emitAssign(stat, funcScope, owningStruct)
	default:
		// a bare call used as a statement.
		e.compute(stat, funcScope, owningStruct)
	}
}

func (e *Emitter) emitIf(stat *ast.Node, funcScope, owningStruct *symtab.Scope, returnType string) {
	elseLabel, endLabel := e.newLabel(), e.newLabel()
	cond := e.loadReg(stat.Child(0), funcScope, owningStruct)
	e.emit("bz %s,%s", cond, elseLabel)
	e.release(cond)
	e.emitBlock(stat.Child(1), funcScope, owningStruct, returnType)
	e.emit("j %s", endLabel)
	e.emitLabel(elseLabel)
	e.emitBlock(stat.Child(2), funcScope, owningStruct, returnType)
	e.emitLabel(endLabel)
}

func (e *Emitter) emitWhile(stat *ast.Node, funcScope, owningStruct *symtab.Scope, returnType string) {
	topLabel, endLabel := e.newLabel(), e.newLabel()
	e.emitLabel(topLabel)
	cond := e.loadReg(stat.Child(0), funcScope, owningStruct)
	e.emit("bz %s,%s", cond, endLabel)
	e.release(cond)
	e.emitBlock(stat.Child(1), funcScope, owningStruct, returnType)
	e.emit("j %s", topLabel)
	e.emitLabel(endLabel)
}

func (e *Emitter) emitReturn(stat *ast.Node, funcScope, owningStruct *symtab.Scope, returnType string) {
	reg := e.loadReg(stat.Child(0), funcScope, owningStruct)
	retOffset := -layout.SizeofType(returnType, e.global)
	e.emit("sw %d(%s),%s", retOffset, regFP, reg)
	e.release(reg)
}

func (e *Emitter) emitAssign(stat *ast.Node, funcScope, owningStruct *symtab.Scope) {
	lhs, rhs := stat.Child(0), stat.Child(1)
	if isStructToStructCopy(lhs, rhs) {
		e.emitComment("struct-to-struct assignment is not implemented")
		return
	}
	reg := e.loadReg(rhs, funcScope, owningStruct)
	base, offset, acquired := e.addressOf(lhs, funcScope, owningStruct)
	e.emit("sw %d(%s),%s", offset, base, reg)
	e.release(reg)
	if acquired {
		e.release(base)
	}
}

func isStructToStructCopy(lhs, rhs *ast.Node) bool {
	return lhs.Kind == ast.Variable && rhs.Kind == ast.Variable &&
		symtab.Dims(lhs.SemanticType) == 0 && !isScalarOrVoid(lhs.SemanticType)
}

func isScalarOrVoid(t string) bool {
	base := symtab.Trim(t)
	return base == "integer" || base == "float" || base == "void" || base == ast.ErrorType
}

func (e *Emitter) emitWrite(stat *ast.Node, funcScope, owningStruct *symtab.Scope) {
	value := e.loadReg(stat.Child(0), funcScope, owningStruct)
	frameSize := funcScope.Size
	e.emit("addi %s,%s,%d", regSP, regSP, -frameSize)
	e.emit("sw -8(%s),%s", regSP, value)
	e.release(value)
	bufAddr := e.acquire()
	e.emit("addi %s,%s,%s", bufAddr, regZero, dataBuf)
	e.emit("sw -12(%s),%s", regSP, bufAddr)
	e.release(bufAddr)
	e.emit("jl %s,intstr", regLink)
	e.emit("jl %s,putstr", regLink)
	e.emit("addi %s,%s,%d", regSP, regSP, frameSize)

	crFrameSize := funcScope.Size
	e.emit("addi %s,%s,%d", regSP, regSP, -crFrameSize)
	crAddr := e.acquire()
	e.emit("addi %s,%s,%s", crAddr, regZero, dataCR)
	e.emit("sw -8(%s),%s", regSP, crAddr)
	e.release(crAddr)
	e.emit("jl %s,putstr", regLink)
	e.emit("addi %s,%s,%d", regSP, regSP, crFrameSize)
}

// emitRead implements SPEC_FULL.md §9's read-statement design: a
// library routine getint, the input-side mirror of intstr, reads a
// decimal integer into r13; the emitter then stores r13 at the
// destination address using the same addressing rules as assignment.
func (e *Emitter) emitRead(stat *ast.Node, funcScope, owningStruct *symtab.Scope) {
	e.emit("jl %s,getint", regLink)
	base, offset, acquired := e.addressOf(stat.Child(0), funcScope, owningStruct)
	e.emit("sw %d(%s),%s", offset, base, regRet)
	if acquired {
		e.release(base)
	}
}

// ---- addressing (spec.md §4.7 "Assignment") ----

// addressOf resolves a Variable or Dot node's storage location,
// returning a base register (r12 when no index arithmetic was
// needed, in which case acquired is false and the caller must not
// release it) and an immediate offset to use in an lw/sw.
func (e *Emitter) addressOf(node *ast.Node, funcScope, owningStruct *symtab.Scope) (string, int, bool) {
	switch node.Kind {
	case ast.Variable:
		entry, _ := node.EntryPtr.(*symtab.Entry)
		if entry == nil {
			return regFP, 0, false
		}
		return e.indexedAddress(entry.Offset, entry.Type, node.Child(1), funcScope, owningStruct)
	case ast.Dot:
		return e.addressOfDot(node, funcScope, owningStruct)
	}
	return regFP, 0, false
}

func (e *Emitter) addressOfDot(node *ast.Node, funcScope, owningStruct *symtab.Scope) (string, int, bool) {
	left, right := node.Child(0), node.Child(1)
	if right.Kind != ast.Variable {
		return regFP, 0, false
	}
	baseEntry, _ := left.EntryPtr.(*symtab.Entry)
	member, _ := right.EntryPtr.(*symtab.Entry)
	if baseEntry == nil || member == nil {
		return regFP, 0, false
	}
	fieldOffset := member.Offset
	if structEntry := e.global.Lookup(symtab.Trim(baseEntry.Type), symtab.KindStruct); structEntry != nil {
		if off := layout.MemberOffsetWithin(structEntry.Link, member, e.global); off >= 0 {
			fieldOffset = off
		}
	}
	return e.indexedAddress(baseEntry.Offset+fieldOffset, member.Type, right.Child(1), funcScope, owningStruct)
}

// indexedAddress handles spec.md §4.7's "array-element l-value:
// compute byte offset = base-offset + index × element-size" for the
// single-index case the current design supports; two or more indices
// are an empty placeholder (spec.md §4.7, §9).
func (e *Emitter) indexedAddress(baseOffset int, declaredType string, indices *ast.Node, funcScope, owningStruct *symtab.Scope) (string, int, bool) {
	switch len(indices.Children) {
	case 0:
		return regFP, baseOffset, false
	case 1:
		elemSize := layout.SizeofType(elementType(declaredType), e.global)
		idx := e.loadReg(indices.Child(0), funcScope, owningStruct)
		addr := e.acquire()
		e.emit("addi %s,%s,%d", addr, regFP, baseOffset)
		e.emit("muli %s,%s,%d", idx, idx, elemSize)
		e.emit("add %s,%s,%s", addr, addr, idx)
		e.release(idx)
		return addr, 0, true
	default:
		e.emitComment("multi-dimensional array addressing is not implemented")
		return regFP, baseOffset, false
	}
}

// elementType strips exactly one leading "[k]" dimension from a type
// string, mirroring sema's dropLeadingDims(t, 1) without importing the
// sema package for one helper.
func elementType(t string) string {
	base := symtab.Trim(t)
	rest := t[len(base):]
	if len(rest) == 0 || rest[0] != '[' {
		return base
	}
	j := strings.IndexByte(rest, ']')
	if j < 0 {
		return base
	}
	return base + rest[j+1:]
}

// ---- expressions ----
//
// spec.md §4.7's "expression codegen pattern": every arithmetic/
// relational/call/literal result is computed into a scratch register
// and stored at its node's temporary frame offset; later uses load
// that word back rather than holding the register open.

// compute evaluates node and, for node kinds C6 gave a temporary,
// leaves the result in that temporary's frame slot.
func (e *Emitter) compute(node *ast.Node, funcScope, owningStruct *symtab.Scope) {
	switch node.Kind {
	case ast.IntLit:
		reg := e.acquire()
		e.emit("addi %s,%s,%s", reg, regZero, node.Value)
		e.storeTemp(node, reg)
		e.release(reg)
	case ast.FloatLit:
		e.emitComment("floating-point literal %s: no code emission beyond reserving size", node.Value)
	case ast.AddOp, ast.MultOp:
		e.computeBinary(node, funcScope, owningStruct, arithMnemonic(node.Value))
	case ast.RelExpr:
		e.computeBinary(node, funcScope, owningStruct, relMnemonic(node.Value))
	case ast.FunctionCall:
		e.emitCall(node, funcScope, owningStruct)
	case ast.Variable:
		// lives at its own address; nothing to precompute.
	case ast.Dot:
		// a member-variable Dot lives at its own address; a method-call
		// Dot must actually run the call for its side effects even when
		// used as a bare statement.
		if right := node.Child(1); right.Kind == ast.FunctionCall {
			e.emitCall(right, funcScope, owningStruct)
		}
	case ast.Sign, ast.Not:
		// no temporary of their own; loadReg recomputes them inline.
	}
}

func (e *Emitter) computeBinary(node *ast.Node, funcScope, owningStruct *symtab.Scope, mnemonic string) {
	if symtab.Trim(node.SemanticType) == "float" {
		e.emitComment("floating-point operator %q: no code emission beyond reserving size", node.Value)
		return
	}
	switch node.Value {
	case "|":
		e.computeShortCircuit(node, funcScope, owningStruct, true)
		return
	case "&":
		e.computeShortCircuit(node, funcScope, owningStruct, false)
		return
	}
	l := e.loadReg(node.Child(0), funcScope, owningStruct)
	r := e.loadReg(node.Child(1), funcScope, owningStruct)
	dst := e.acquire()
	e.emit("%s %s,%s,%s", mnemonic, dst, l, r)
	e.release(l)
	e.release(r)
	e.storeTemp(node, dst)
	e.release(dst)
}

// computeShortCircuit implements spec.md §4.7's "Sequences for | and &
// use conditional branches over two labels to yield 0/1": evaluate the
// left operand; | short-circuits to 1 when it is already true, & to 0
// when it is already false; otherwise the result is the right
// operand's truth value.
func (e *Emitter) computeShortCircuit(node *ast.Node, funcScope, owningStruct *symtab.Scope, isOr bool) {
	shortLabel, endLabel := e.newLabel(), e.newLabel()
	l := e.loadReg(node.Child(0), funcScope, owningStruct)
	if isOr {
		e.emit("bnz %s,%s", l, shortLabel)
	} else {
		e.emit("bz %s,%s", l, shortLabel)
	}
	e.release(l)
	r := e.loadReg(node.Child(1), funcScope, owningStruct)
	dst := e.acquire()
	e.emit("addi %s,%s,0", dst, r)
	e.release(r)
	e.emit("j %s", endLabel)
	e.emitLabel(shortLabel)
	if isOr {
		e.emit("addi %s,%s,1", dst, regZero)
	} else {
		e.emit("addi %s,%s,0", dst, regZero)
	}
	e.emitLabel(endLabel)
	e.storeTemp(node, dst)
	e.release(dst)
}

func arithMnemonic(glyph string) string {
	switch glyph {
	case "+":
		return "add"
	case "-":
		return "sub"
	case "*":
		return "mul"
	case "/":
		return "div"
	}
	return "add"
}

func relMnemonic(glyph string) string {
	switch glyph {
	case "<":
		return "clt"
	case "<=":
		return "cle"
	case ">":
		return "cgt"
	case ">=":
		return "cge"
	case "==":
		return "ceq"
	case "<>":
		return "cne"
	}
	return "ceq"
}

func (e *Emitter) storeTemp(node *ast.Node, reg string) {
	temp, _ := node.TempPtr.(*symtab.Entry)
	if temp == nil {
		return
	}
	e.emit("sw %d(%s),%s", temp.Offset, regFP, reg)
}

// loadReg produces the current value of node in a freshly acquired
// register, computing it first when it has not already been computed
// into a temporary.
func (e *Emitter) loadReg(node *ast.Node, funcScope, owningStruct *symtab.Scope) string {
	switch node.Kind {
	case ast.Sign:
		inner := e.loadReg(node.Child(0), funcScope, owningStruct)
		if node.Value == "-" {
			dst := e.acquire()
			e.emit("sub %s,%s,%s", dst, regZero, inner)
			e.release(inner)
			return dst
		}
		return inner
	case ast.Not:
		inner := e.loadReg(node.Child(0), funcScope, owningStruct)
		dst := e.acquire()
		e.emit("ceq %s,%s,%s", dst, inner, regZero)
		e.release(inner)
		return dst
	case ast.Dot:
		if right := node.Child(1); right.Kind == ast.FunctionCall {
			e.compute(right, funcScope, owningStruct)
			temp, _ := right.TempPtr.(*symtab.Entry)
			reg := e.acquire()
			if temp != nil {
				e.emit("lw %s,%d(%s)", reg, temp.Offset, regFP)
			}
			return reg
		}
		base, offset, acquired := e.addressOf(node, funcScope, owningStruct)
		reg := e.acquire()
		e.emit("lw %s,%d(%s)", reg, offset, base)
		if acquired {
			e.release(base)
		}
		return reg
	case ast.Variable:
		base, offset, acquired := e.addressOf(node, funcScope, owningStruct)
		reg := e.acquire()
		e.emit("lw %s,%d(%s)", reg, offset, base)
		if acquired {
			e.release(base)
		}
		return reg
	}
	e.compute(node, funcScope, owningStruct)
	temp, _ := node.TempPtr.(*symtab.Entry)
	reg := e.acquire()
	if temp != nil {
		e.emit("lw %s,%d(%s)", reg, temp.Offset, regFP)
	} else {
		e.emit("addi %s,%s,0", reg, regZero)
	}
	return reg
}

// ---- calls (spec.md §4.7 "Calls") ----

func (e *Emitter) emitCall(node *ast.Node, funcScope, owningStruct *symtab.Scope) {
	var args *ast.Node
	var callee *symtab.Entry
	if node.Kind == ast.FunctionCall {
		args = node.Child(1)
		callee, _ = node.EntryPtr.(*symtab.Entry)
	}
	if callee == nil {
		e.emitComment("unresolved call")
		return
	}
	label := e.labels[callee]
	if label == "" {
		label = callee.Name
	}
	retSize := layout.SizeofType(callee.Type, e.global)
	fixed := retSize + 2*layout.WordSize

	e.emit("addi %s,%s,%d", regSP, regSP, -retSize)
	e.emit("addi %s,%s,%d", regSP, regSP, -layout.WordSize)
	e.emit("addi %s,%s,%d", regSP, regSP, -layout.WordSize)
	e.emit("sw 0(%s),%s", regSP, regLink)

	argList := args.Children
	paramSizes := paramSizesOf(callee)
	for i := range argList {
		reg := e.loadReg(argList[i], funcScope, owningStruct)
		sz := layout.IntSize
		if i < len(paramSizes) {
			sz = paramSizes[i]
		}
		e.emit("addi %s,%s,%d", regSP, regSP, -sz)
		e.emit("sw 0(%s),%s", regSP, reg)
		e.release(reg)
	}

	e.emit("jl %s,%s", regLink, label)

	argsSize := 0
	for i := range argList {
		sz := layout.IntSize
		if i < len(paramSizes) {
			sz = paramSizes[i]
		}
		argsSize += sz
	}
	e.emit("addi %s,%s,%d", regSP, regSP, argsSize+fixed)

	temp, _ := node.TempPtr.(*symtab.Entry)
	if temp != nil {
		e.emit("sw %d(%s),%s", temp.Offset, regFP, regRet)
	}
}

func paramSizesOf(callee *symtab.Entry) []int {
	if callee.Link == nil {
		return nil
	}
	var out []int
	for _, p := range callee.Link.LookupAllOfKind(symtab.KindParam) {
		out = append(out, p.Size)
	}
	return out
}
