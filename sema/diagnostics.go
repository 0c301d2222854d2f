// Package sema implements the scope builder (C2), the impl relocator
// and dependency/inheritance graph builder (C3), the cycle detector
// (C4), and the semantic checker (C5) from spec.md §4.2–§4.5, §4.8.
//
// Grounded on the teacher's compiler/internal/symbol_table.go
// (buildSymbolTables, buildClassSymbolTable, buildMethod0 — the shape
// of C2's duplicate-checked insertion walk) and
// compiler/type_checker.go (one function per statement/expression
// kind, threading errors through return values — the shape of C5's
// walk, generalized from Jack's existence-then-type two-pass split
// into the single type-propagating pass spec.md §4.5 describes).
package sema

import "fmt"

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "[warning]"
	}
	return "[error]"
}

// Diagnostic is one line of the diagnostics stream (spec.md §4.8, §6).
// Code is the stable classification prefix (e.g. "8.1", "10.2").
type Diagnostic struct {
	Code     string
	Severity Severity
	Message  string
	Line     int
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s %s line %d: %s", d.Code, d.Severity, d.Line, d.Message)
	}
	return fmt.Sprintf("%s %s %s", d.Code, d.Severity, d.Message)
}

// Diagnostics accumulates one pass's findings and the pass's overall
// accept flag (spec.md §4.5: "The checker's final accept flag is the
// conjunction of all per-pass flags"; spec.md §8.6 is a warning that
// never flips accept to false).
type Diagnostics struct {
	Items  []Diagnostic
	failed bool
}

func (d *Diagnostics) Error(code, message string, line int) {
	d.Items = append(d.Items, Diagnostic{Code: code, Severity: SeverityError, Message: message, Line: line})
	d.failed = true
}

func (d *Diagnostics) Warning(code, message string, line int) {
	d.Items = append(d.Items, Diagnostic{Code: code, Severity: SeverityWarning, Message: message, Line: line})
}

// Accept is the per-pass accept flag: true iff no error-severity
// diagnostic was recorded.
func (d *Diagnostics) Accept() bool { return !d.failed }

func (d *Diagnostics) Merge(other *Diagnostics) {
	d.Items = append(d.Items, other.Items...)
	if !other.Accept() {
		d.failed = true
	}
}

// Diagnostic codes (spec.md §4.8).
const (
	CodeImplMethodNoDecl     = "6.1"
	CodeDeclNoImpl           = "6.2"
	CodeImplUnknownStruct    = "6.3"
	CodeDupStruct            = "8.1"
	CodeDupFreeFunc          = "8.2"
	CodeDupMember            = "8.3"
	CodeDupParamOrLocal      = "8.4"
	CodeMemberShadowsInherit = "8.5"
	CodeLocalShadowsMember   = "8.6"
	CodeOverloadFreeFunc     = "9.1"
	CodeOverloadMemberFunc   = "9.2"
	CodeOverrideInherited    = "9.3"
	CodeArithTypeMismatch    = "10.1"
	CodeAssignTypeMismatch   = "10.2"
	CodeReturnTypeMismatch   = "10.3"
	CodeUndeclaredVar        = "11.2"
	CodeUndeclaredMemberFunc = "11.3"
	CodeUndeclaredFreeFunc   = "11.4"
	CodeUnknownStructName    = "11.5"
	CodeWrongArgCount        = "12.1"
	CodeWrongArgTypes        = "12.2"
	CodeArrayDimMismatch     = "13.1"
	CodeNonIntegerIndex      = "13.2"
	CodeArrayParamDimMismatch = "13.3"
	CodeCycle                = "14.1"
	CodeDotOnNonStruct       = "15.1"
)
